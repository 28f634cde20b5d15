package service

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"

	"carpool/internal/domain"
	"carpool/internal/redis"
	"carpool/internal/repository"
)

// BookingService handles the booking lifecycle.
type BookingService struct {
	uow          repository.UnitOfWork
	bookingRepo  repository.BookingRepository
	tripRepo     repository.TripRepository
	actorRepo    repository.ActorRepository
	notification *NotificationService
	notifier     redis.NotifierInterface
}

// NewBookingService creates a new BookingService.
func NewBookingService(
	uow repository.UnitOfWork,
	bookingRepo repository.BookingRepository,
	tripRepo repository.TripRepository,
	actorRepo repository.ActorRepository,
	notification *NotificationService,
	notifier redis.NotifierInterface,
) *BookingService {
	return &BookingService{
		uow:          uow,
		bookingRepo:  bookingRepo,
		tripRepo:     tripRepo,
		actorRepo:    actorRepo,
		notification: notification,
		notifier:     notifier,
	}
}

// CreateBookingRequest contains the parameters for requesting a booking.
type CreateBookingRequest struct {
	TripID      string
	PassengerID string
	Seats       int
	Message     string
}

// CreateBooking creates a pending booking request on a scheduled trip.
func (s *BookingService) CreateBooking(ctx context.Context, req CreateBookingRequest) (*domain.Booking, error) {
	if req.TripID == "" {
		return nil, ErrInvalidTripID
	}

	if req.PassengerID == "" {
		return nil, ErrInvalidActorID
	}

	if req.Seats <= 0 {
		return nil, ErrInvalidSeats
	}

	trip, err := s.tripRepo.GetByID(ctx, req.TripID)
	if err != nil {
		return nil, err
	}

	if trip.DriverID == req.PassengerID {
		return nil, ErrSelfBooking
	}

	if trip.Status != domain.TripStatusScheduled {
		return nil, ErrTripNotScheduled
	}

	if trip.DepartureTime.Before(time.Now()) {
		return nil, ErrDepartureInPast
	}

	if req.Seats > trip.AvailableSeats {
		return nil, ErrSeatsUnavailable
	}

	// Existence check; the passenger record itself is not needed.
	if _, err := s.actorRepo.GetByID(ctx, req.PassengerID); err != nil {
		return nil, err
	}

	booking := &domain.Booking{
		ID:          uuid.New().String(),
		TripID:      req.TripID,
		PassengerID: req.PassengerID,
		Seats:       req.Seats,
		Status:      domain.BookingStatusPending,
		Message:     req.Message,
		CreatedAt:   time.Now(),
	}

	if err := s.bookingRepo.Create(ctx, booking); err != nil {
		return nil, err
	}

	if s.notification != nil {
		if err := s.notification.NotifyBookingRequested(ctx, booking, trip); err != nil {
			log.Printf("booking %s: notification dispatch failed: %v", booking.ID, err)
		}
	}

	s.publish(ctx, redis.OpInsert, booking.ID)

	return booking, nil
}

// GetBooking retrieves a booking by ID.
func (s *BookingService) GetBooking(ctx context.Context, bookingID string) (*domain.Booking, error) {
	if bookingID == "" {
		return nil, ErrInvalidBookingID
	}
	return s.bookingRepo.GetByID(ctx, bookingID)
}

// BookingsByTrip retrieves all bookings on a trip; only the trip's
// driver may list them.
func (s *BookingService) BookingsByTrip(ctx context.Context, tripID, actorID string) ([]*domain.Booking, error) {
	if tripID == "" {
		return nil, ErrInvalidTripID
	}

	trip, err := s.tripRepo.GetByID(ctx, tripID)
	if err != nil {
		return nil, err
	}

	if trip.DriverID != actorID {
		return nil, ErrNotTripDriver
	}

	return s.bookingRepo.GetByTripID(ctx, tripID)
}

// BookingsByPassenger retrieves a passenger's bookings.
func (s *BookingService) BookingsByPassenger(ctx context.Context, passengerID string) ([]*domain.Booking, error) {
	if passengerID == "" {
		return nil, ErrInvalidActorID
	}
	return s.bookingRepo.GetByPassengerID(ctx, passengerID)
}

// DecideBookingRequest contains the parameters for accepting or
// rejecting a booking.
type DecideBookingRequest struct {
	BookingID string
	ActorID   string // must be the trip's driver
	Accept    bool
}

// DecideBooking accepts or rejects a pending booking. Accepting also
// decrements the trip's available seats in the same transaction. The
// decision notification is dispatched fire-and-forget afterwards;
// dispatch failure never alters the booking status.
func (s *BookingService) DecideBooking(ctx context.Context, req DecideBookingRequest) (*domain.Booking, error) {
	if req.BookingID == "" {
		return nil, ErrInvalidBookingID
	}

	booking, err := s.bookingRepo.GetByID(ctx, req.BookingID)
	if err != nil {
		return nil, err
	}

	trip, err := s.tripRepo.GetByID(ctx, booking.TripID)
	if err != nil {
		return nil, err
	}

	if trip.DriverID != req.ActorID {
		return nil, ErrNotTripDriver
	}

	if booking.Status != domain.BookingStatusPending {
		return nil, ErrBookingNotPending
	}

	if !req.Accept {
		booking.Status = domain.BookingStatusRejected
		if err := s.bookingRepo.UpdateStatus(ctx, booking.ID, booking.Status); err != nil {
			return nil, err
		}

		s.dispatch(ctx, booking, trip)
		s.publish(ctx, redis.OpUpdate, booking.ID)

		return booking, nil
	}

	if booking.Seats > trip.AvailableSeats {
		return nil, ErrSeatsUnavailable
	}

	// The seat guard above ran on a snapshot; the conditional decrement
	// re-checks inside the transaction so a concurrent accept cannot
	// oversell the trip.
	err = s.uow.WithinTx(ctx, func(bookings repository.BookingRepository, trips repository.TripRepository) error {
		if err := trips.AdjustSeats(ctx, trip.ID, -booking.Seats); err != nil {
			return err
		}
		return bookings.UpdateStatus(ctx, booking.ID, domain.BookingStatusAccepted)
	})
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrSeatsUnavailable
		}
		return nil, err
	}

	booking.Status = domain.BookingStatusAccepted
	trip.AvailableSeats -= booking.Seats

	s.dispatch(ctx, booking, trip)
	s.publish(ctx, redis.OpUpdate, booking.ID)

	return booking, nil
}

// CancelBooking cancels a booking; only its passenger may cancel.
// Cancelling an accepted booking restores the trip's seats.
func (s *BookingService) CancelBooking(ctx context.Context, bookingID, actorID string) (*domain.Booking, error) {
	if bookingID == "" {
		return nil, ErrInvalidBookingID
	}

	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if booking.PassengerID != actorID {
		return nil, ErrNotBookingPassenger
	}

	if booking.Status != domain.BookingStatusPending && booking.Status != domain.BookingStatusAccepted {
		return nil, ErrBookingNotCancellable
	}

	wasAccepted := booking.Status == domain.BookingStatusAccepted
	booking.Status = domain.BookingStatusCancelled

	if !wasAccepted {
		if err := s.bookingRepo.UpdateStatus(ctx, booking.ID, booking.Status); err != nil {
			return nil, err
		}

		s.publish(ctx, redis.OpUpdate, booking.ID)
		return booking, nil
	}

	// Restore the seats with the same conditional adjustment the accept
	// path uses, so concurrent cancels and accepts serialize on the row.
	err = s.uow.WithinTx(ctx, func(bookings repository.BookingRepository, trips repository.TripRepository) error {
		if err := bookings.UpdateStatus(ctx, booking.ID, booking.Status); err != nil {
			return err
		}
		return trips.AdjustSeats(ctx, booking.TripID, booking.Seats)
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, redis.OpUpdate, booking.ID)

	return booking, nil
}

// dispatch sends the decision notification. Failures are logged, never
// surfaced, never retried.
func (s *BookingService) dispatch(ctx context.Context, booking *domain.Booking, trip *domain.Trip) {
	if s.notification == nil {
		return
	}

	var err error
	switch booking.Status {
	case domain.BookingStatusAccepted:
		err = s.notification.NotifyBookingAccepted(ctx, booking, trip)
	case domain.BookingStatusRejected:
		err = s.notification.NotifyBookingRejected(ctx, booking, trip)
	}
	if err != nil {
		log.Printf("booking %s: notification dispatch failed: %v", booking.ID, err)
	}
}

func (s *BookingService) publish(ctx context.Context, op redis.ChangeOp, bookingID string) {
	if s.notifier != nil {
		_ = s.notifier.Publish(ctx, redis.ChangeEvent{
			Kind:     redis.KindBookings,
			Op:       op,
			RecordID: bookingID,
		})
	}
}
