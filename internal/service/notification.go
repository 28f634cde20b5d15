package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"carpool/internal/domain"
)

// NotificationType represents the type of notification.
type NotificationType string

const (
	NotificationBookingRequested NotificationType = "BOOKING_REQUESTED"
	NotificationBookingAccepted  NotificationType = "BOOKING_ACCEPTED"
	NotificationBookingRejected  NotificationType = "BOOKING_REJECTED"
	NotificationTripCancelled    NotificationType = "TRIP_CANCELLED"
)

// Notification represents a notification to be sent.
type Notification struct {
	ID          string
	Type        NotificationType
	RecipientID string
	Title       string
	Message     string
	Data        map[string]interface{}
	CreatedAt   time.Time
}

// Mailer delivers a rendered notification to its recipient. The
// directory only ever calls it fire-and-forget.
type Mailer interface {
	Send(ctx context.Context, n Notification) error
}

// NotificationService handles notification delivery.
type NotificationService struct {
	mailer Mailer
}

// NewNotificationService creates a new NotificationService. A nil
// mailer falls back to log-only delivery.
func NewNotificationService(mailer Mailer) *NotificationService {
	return &NotificationService{mailer: mailer}
}

// NotifyBookingRequested notifies the driver about a new booking request.
func (s *NotificationService) NotifyBookingRequested(ctx context.Context, booking *domain.Booking, trip *domain.Trip) error {
	return s.send(ctx, Notification{
		Type:        NotificationBookingRequested,
		RecipientID: trip.DriverID,
		Title:       "New Booking Request",
		Message:     fmt.Sprintf("A passenger requested %d seat(s) on your trip %s → %s", booking.Seats, trip.Origin, trip.Destination),
		Data: map[string]interface{}{
			"booking_id": booking.ID,
			"trip_id":    trip.ID,
			"seats":      booking.Seats,
		},
		CreatedAt: time.Now(),
	})
}

// NotifyBookingAccepted notifies the passenger that their booking was accepted.
func (s *NotificationService) NotifyBookingAccepted(ctx context.Context, booking *domain.Booking, trip *domain.Trip) error {
	return s.send(ctx, Notification{
		Type:        NotificationBookingAccepted,
		RecipientID: booking.PassengerID,
		Title:       "Booking Accepted",
		Message:     fmt.Sprintf("Your booking for %s → %s was accepted", trip.Origin, trip.Destination),
		Data: map[string]interface{}{
			"booking_id": booking.ID,
			"trip_id":    trip.ID,
			"departure":  trip.DepartureTime,
		},
		CreatedAt: time.Now(),
	})
}

// NotifyBookingRejected notifies the passenger that their booking was rejected.
func (s *NotificationService) NotifyBookingRejected(ctx context.Context, booking *domain.Booking, trip *domain.Trip) error {
	return s.send(ctx, Notification{
		Type:        NotificationBookingRejected,
		RecipientID: booking.PassengerID,
		Title:       "Booking Rejected",
		Message:     fmt.Sprintf("Your booking for %s → %s was rejected", trip.Origin, trip.Destination),
		Data: map[string]interface{}{
			"booking_id": booking.ID,
			"trip_id":    trip.ID,
		},
		CreatedAt: time.Now(),
	})
}

// NotifyTripCancelled notifies an affected passenger that the trip was cancelled.
func (s *NotificationService) NotifyTripCancelled(ctx context.Context, trip *domain.Trip, passengerID string) error {
	return s.send(ctx, Notification{
		Type:        NotificationTripCancelled,
		RecipientID: passengerID,
		Title:       "Trip Cancelled",
		Message:     fmt.Sprintf("The trip %s → %s was cancelled by the driver", trip.Origin, trip.Destination),
		Data: map[string]interface{}{
			"trip_id": trip.ID,
		},
		CreatedAt: time.Now(),
	})
}

// send delivers a notification through the mailer, falling back to the log.
func (s *NotificationService) send(ctx context.Context, notification Notification) error {
	if s.mailer != nil {
		return s.mailer.Send(ctx, notification)
	}

	log.Printf("[NOTIFICATION] Type=%s, Recipient=%s, Title=%s, Message=%s",
		notification.Type, notification.RecipientID, notification.Title, notification.Message)

	return nil
}
