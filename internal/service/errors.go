package service

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/bugsbunnee/clickride-backend/internal/domain"
)

var (
	// ErrValidation classifies malformed input. See ValidationError.
	ErrValidation = errors.New("validation failed")

	// ErrSeatConflict classifies seat conflicts. See SeatConflictError.
	ErrSeatConflict = errors.New("seat conflict")

	// ErrScheduleMismatch classifies stale or invalid departure requests.
	ErrScheduleMismatch = errors.New("invalid ticket details provided")

	// ErrCapacityExceeded is returned when a booking would exceed the bus capacity.
	ErrCapacityExceeded = errors.New("please select fewer seats")

	// ErrDriverNotFound is returned when a driver does not exist or has no profile.
	ErrDriverNotFound = errors.New("driver does not exist")

	// ErrTicketNotFound is returned when a trip template does not exist.
	ErrTicketNotFound = errors.New("ticket not found")

	// ErrRideNotFound is returned when a ride does not exist for the caller.
	ErrRideNotFound = errors.New("the given ride was not found")

	// ErrNotADriver is returned when a driver-only operation is called by a rider.
	ErrNotADriver = errors.New("only drivers can perform this action")

	// ErrWrongService classifies profile edits for another service. See WrongServiceError.
	ErrWrongService = errors.New("wrong service")

	// ErrProfileIncomplete is returned when a driver must complete a profile first.
	ErrProfileIncomplete = errors.New("please complete your profile first")

	// ErrUnauthenticated is returned when an operation is called without a principal.
	ErrUnauthenticated = errors.New("authentication required")

	// ErrDuplicateTrip classifies duplicate trip templates. See DuplicateTripError.
	ErrDuplicateTrip = errors.New("duplicate trip")

	// ErrBookingInProgress is returned when another booking holds the trip-day lock.
	ErrBookingInProgress = errors.New("another booking for this trip is in progress")

	// ErrLocationUnresolved is returned when a route cannot be geocoded.
	ErrLocationUnresolved = errors.New("location could not be resolved")
)

// ValidationError reports a malformed input field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// SeatConflictError names the requested seats that are already booked.
type SeatConflictError struct {
	Seats []int
}

func (e *SeatConflictError) Error() string {
	seats := make([]string, len(e.Seats))
	for i, s := range e.Seats {
		seats[i] = strconv.Itoa(s)
	}

	verb := "is"
	if len(e.Seats) > 1 {
		verb = "are"
	}
	return fmt.Sprintf("Seat: %s %s unavailable", strings.Join(seats, ","), verb)
}

func (e *SeatConflictError) Is(target error) bool {
	return target == ErrSeatConflict
}

// ScheduleMismatchError reports a departure that the template does not serve.
type ScheduleMismatchError struct {
	Date string
	Time string
}

func (e *ScheduleMismatchError) Error() string {
	return fmt.Sprintf("Invalid ticket details provided! No departure on %s at %s", e.Date, e.Time)
}

func (e *ScheduleMismatchError) Is(target error) bool {
	return target == ErrScheduleMismatch
}

// DuplicateTripError reports an origin/destination pair the operator already serves.
type DuplicateTripError struct {
	Origin      string
	Destination string
}

func (e *DuplicateTripError) Error() string {
	return fmt.Sprintf("Matching trip with Origin: %s & Destination: %s already exists!", e.Origin, e.Destination)
}

func (e *DuplicateTripError) Is(target error) bool {
	return target == ErrDuplicateTrip
}

// WrongServiceError reports a profile edit reserved to drivers of another service.
type WrongServiceError struct {
	Required domain.ServiceCode
}

func (e *WrongServiceError) Error() string {
	return fmt.Sprintf("Driver must be on %s to update this information", e.Required)
}

func (e *WrongServiceError) Is(target error) bool {
	return target == ErrWrongService
}
