package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/bugsbunnee/clickride-backend/internal/domain"
)

// NotificationType represents the type of notification.
type NotificationType string

const (
	NotificationCarRideBooked NotificationType = "CAR_RIDE_BOOKED"
	NotificationBusTripBooked NotificationType = "BUS_TRIP_BOOKED"
)

// Routing keys on the booking exchange.
const (
	routingKeyCarBooked = "ride.car.booked"
	routingKeyBusBooked = "ride.bus.booked"
)

// Notification is a push message handed to the delivery workers.
type Notification struct {
	ID          string           `json:"id"`
	Type        NotificationType `json:"type"`
	RecipientID string           `json:"recipientId"`
	DeviceToken string           `json:"deviceToken"`
	Title       string           `json:"title"`
	Body        string           `json:"body"`
	Data        map[string]any   `json:"data"`
	CreatedAt   time.Time        `json:"createdAt"`
}

// Publisher sends a message to a broker exchange.
type Publisher interface {
	Publish(ctx context.Context, exchange, routingKey string, body []byte) error
}

// NotificationService publishes booking notifications. With a nil
// publisher notifications are only logged.
type NotificationService struct {
	publisher Publisher
	exchange  string
}

// NewNotificationService creates a new NotificationService.
func NewNotificationService(publisher Publisher, exchange string) *NotificationService {
	return &NotificationService{publisher: publisher, exchange: exchange}
}

// NotifyCarRideBooked tells the rider their car ride was booked.
func (s *NotificationService) NotifyCarRideBooked(ctx context.Context, user *domain.User, ride *domain.Ride) {
	s.send(ctx, routingKeyCarBooked, user, Notification{
		Type:  NotificationCarRideBooked,
		Title: "Ride booked successfully!",
		Body:  "Your car ride was booked successfully!",
		Data: map[string]any{
			"rideId":   ride.ID,
			"driverId": ride.DriverID,
			"price":    ride.Price,
		},
	})
}

// NotifyBusTripBooked tells the rider their bus seats were booked.
func (s *NotificationService) NotifyBusTripBooked(ctx context.Context, user *domain.User, ride *domain.Ride) {
	s.send(ctx, routingKeyBusBooked, user, Notification{
		Type:  NotificationBusTripBooked,
		Title: "Trip booked successfully!",
		Body:  "Your bus trip was booked successfully!",
		Data: map[string]any{
			"rideId":        ride.ID,
			"busTripId":     ride.BusTripID,
			"seatNumbers":   ride.BookedSeats,
			"departureDate": ride.DepartureDate,
			"price":         ride.Price,
		},
	})
}

// send never fails the caller. Users without a device token are skipped.
func (s *NotificationService) send(ctx context.Context, routingKey string, user *domain.User, n Notification) {
	if user == nil || user.DeviceToken == "" {
		return
	}

	n.ID = uuid.NewString()
	n.RecipientID = user.ID
	n.DeviceToken = user.DeviceToken
	n.CreatedAt = time.Now()

	log.Printf("[NOTIFICATION] Type=%s, Recipient=%s, Title=%s", n.Type, n.RecipientID, n.Title)

	if s.publisher == nil {
		return
	}

	if err := s.publish(ctx, routingKey, n); err != nil {
		log.Printf("[NOTIFICATION] publish %s failed: %v", n.ID, err)
	}
}

func (s *NotificationService) publish(ctx context.Context, routingKey string, n Notification) error {
	body, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}
	return s.publisher.Publish(ctx, s.exchange, routingKey, body)
}
