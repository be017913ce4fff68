package service

import "slices"

// CheckUniqueSeats fails with a *SeatConflictError naming, in request
// order, every requested seat that is already booked.
func CheckUniqueSeats(requested, booked []int) error {
	var conflicts []int
	for _, seat := range requested {
		if slices.Contains(booked, seat) && !slices.Contains(conflicts, seat) {
			conflicts = append(conflicts, seat)
		}
	}

	if len(conflicts) > 0 {
		return &SeatConflictError{Seats: conflicts}
	}
	return nil
}
