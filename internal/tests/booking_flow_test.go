package tests

import (
	"context"
	"errors"
	"testing"
	"time"

	"carpool/internal/domain"
	"carpool/internal/service"
)

// ──────────────────────────────────────────────
// 5. BOOKING LIFECYCLE EDGE CASES
// ──────────────────────────────────────────────

func newBookingFixture() (*MockTripRepository, *MockBookingRepository, *MockActorRepository, *MockUnitOfWork) {
	tripRepo := NewMockTripRepository()
	bookingRepo := NewMockBookingRepository()
	actorRepo := NewMockActorRepository()
	uow := NewMockUnitOfWork(bookingRepo, tripRepo)

	actorRepo.AddActor(&domain.Actor{ID: "driver-1", Name: "Driver", Phone: "111", Role: domain.RoleDriver})
	actorRepo.AddActor(&domain.Actor{ID: "passenger-1", Name: "Passenger", Phone: "222", Role: domain.RolePassenger})

	tripRepo.AddTrip(&domain.Trip{
		ID:             "trip-1",
		DriverID:       "driver-1",
		Origin:         "Bangalore",
		Destination:    "Mysore",
		DepartureTime:  time.Now().Add(24 * time.Hour),
		Seats:          3,
		AvailableSeats: 3,
		Status:         domain.TripStatusScheduled,
	})

	return tripRepo, bookingRepo, actorRepo, uow
}

func TestBooking_CreatedPending(t *testing.T) {
	t.Parallel()

	tripRepo, bookingRepo, actorRepo, uow := newBookingFixture()
	mailer := NewMockMailer()
	bookingService := service.NewBookingService(uow, bookingRepo, tripRepo, actorRepo, service.NewNotificationService(mailer), NewMockNotifier())

	booking, err := bookingService.CreateBooking(context.Background(), service.CreateBookingRequest{
		TripID:      "trip-1",
		PassengerID: "passenger-1",
		Seats:       2,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if booking.Status != domain.BookingStatusPending {
		t.Errorf("expected status PENDING, got %s", booking.Status)
	}

	// Requesting does not consume seats; only acceptance does.
	if tripRepo.GetTrip("trip-1").AvailableSeats != 3 {
		t.Errorf("expected 3 available seats after a pending request, got %d", tripRepo.GetTrip("trip-1").AvailableSeats)
	}

	// The driver is told about the request.
	sent := mailer.Sent()
	if len(sent) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(sent))
	}
	if sent[0].Type != service.NotificationBookingRequested || sent[0].RecipientID != "driver-1" {
		t.Errorf("expected BOOKING_REQUESTED to driver-1, got %s to %s", sent[0].Type, sent[0].RecipientID)
	}
}

func TestBooking_Overbooking_Rejected(t *testing.T) {
	t.Parallel()

	tripRepo, bookingRepo, actorRepo, uow := newBookingFixture()
	bookingService := service.NewBookingService(uow, bookingRepo, tripRepo, actorRepo, nil, nil)

	_, err := bookingService.CreateBooking(context.Background(), service.CreateBookingRequest{
		TripID:      "trip-1",
		PassengerID: "passenger-1",
		Seats:       4,
	})
	if !errors.Is(err, service.ErrSeatsUnavailable) {
		t.Fatalf("expected ErrSeatsUnavailable, got %v", err)
	}
	if bookingRepo.CountBookings() != 0 {
		t.Error("expected no booking row after a rejected request")
	}
}

func TestBooking_DriverCannotBookOwnTrip(t *testing.T) {
	t.Parallel()

	tripRepo, bookingRepo, actorRepo, uow := newBookingFixture()
	bookingService := service.NewBookingService(uow, bookingRepo, tripRepo, actorRepo, nil, nil)

	_, err := bookingService.CreateBooking(context.Background(), service.CreateBookingRequest{
		TripID:      "trip-1",
		PassengerID: "driver-1",
		Seats:       1,
	})
	if !errors.Is(err, service.ErrSelfBooking) {
		t.Fatalf("expected ErrSelfBooking, got %v", err)
	}
}

func TestBooking_DepartureInPast_Rejected(t *testing.T) {
	t.Parallel()

	tripRepo, bookingRepo, actorRepo, uow := newBookingFixture()
	trip := tripRepo.GetTrip("trip-1")
	trip.DepartureTime = time.Now().Add(-time.Hour)

	bookingService := service.NewBookingService(uow, bookingRepo, tripRepo, actorRepo, nil, nil)

	_, err := bookingService.CreateBooking(context.Background(), service.CreateBookingRequest{
		TripID:      "trip-1",
		PassengerID: "passenger-1",
		Seats:       1,
	})
	if !errors.Is(err, service.ErrDepartureInPast) {
		t.Fatalf("expected ErrDepartureInPast, got %v", err)
	}
}

func TestBooking_Accept_DecrementsSeatsTransactionally(t *testing.T) {
	t.Parallel()

	tripRepo, bookingRepo, actorRepo, uow := newBookingFixture()
	bookingRepo.AddBooking(&domain.Booking{
		ID: "booking-1", TripID: "trip-1", PassengerID: "passenger-1",
		Seats: 2, Status: domain.BookingStatusPending,
	})

	mailer := NewMockMailer()
	bookingService := service.NewBookingService(uow, bookingRepo, tripRepo, actorRepo, service.NewNotificationService(mailer), NewMockNotifier())

	booking, err := bookingService.DecideBooking(context.Background(), service.DecideBookingRequest{
		BookingID: "booking-1",
		ActorID:   "driver-1",
		Accept:    true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if booking.Status != domain.BookingStatusAccepted {
		t.Errorf("expected status ACCEPTED, got %s", booking.Status)
	}
	if uow.WithinTxCallCount != 1 {
		t.Errorf("expected the accept to run in a transaction, WithinTx called %d times", uow.WithinTxCallCount)
	}
	if tripRepo.GetTrip("trip-1").AvailableSeats != 1 {
		t.Errorf("expected 1 available seat after accepting 2, got %d", tripRepo.GetTrip("trip-1").AvailableSeats)
	}

	sent := mailer.Sent()
	if len(sent) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(sent))
	}
	if sent[0].Type != service.NotificationBookingAccepted || sent[0].RecipientID != "passenger-1" {
		t.Errorf("expected BOOKING_ACCEPTED to passenger-1, got %s to %s", sent[0].Type, sent[0].RecipientID)
	}
}

func TestBooking_Accept_SeatsTakenConcurrently_Conflict(t *testing.T) {
	t.Parallel()

	tripRepo, bookingRepo, actorRepo, uow := newBookingFixture()
	bookingRepo.AddBooking(&domain.Booking{
		ID: "booking-1", TripID: "trip-1", PassengerID: "passenger-1",
		Seats: 2, Status: domain.BookingStatusPending,
	})

	// A concurrent accept commits between this accept's seat check and
	// its transaction, leaving only 1 of the 3 seats free.
	uow.BeforeTx = func() {
		tripRepo.GetTrip("trip-1").AvailableSeats = 1
	}

	bookingService := service.NewBookingService(uow, bookingRepo, tripRepo, actorRepo, nil, nil)

	_, err := bookingService.DecideBooking(context.Background(), service.DecideBookingRequest{
		BookingID: "booking-1",
		ActorID:   "driver-1",
		Accept:    true,
	})
	if !errors.Is(err, service.ErrSeatsUnavailable) {
		t.Fatalf("expected ErrSeatsUnavailable, got %v", err)
	}

	// Nothing committed: the booking stays pending, the seat count is
	// whatever the concurrent accept left.
	if bookingRepo.GetBooking("booking-1").Status != domain.BookingStatusPending {
		t.Errorf("expected the booking to stay PENDING, got %s", bookingRepo.GetBooking("booking-1").Status)
	}
	if tripRepo.GetTrip("trip-1").AvailableSeats != 1 {
		t.Errorf("expected 1 available seat, got %d", tripRepo.GetTrip("trip-1").AvailableSeats)
	}
	if tripRepo.AdjustSeatsCallCount != 1 {
		t.Errorf("expected 1 conditional seat adjustment, got %d", tripRepo.AdjustSeatsCallCount)
	}
}

func TestBooking_Accept_MailerFailureDoesNotAlterStatus(t *testing.T) {
	t.Parallel()

	tripRepo, bookingRepo, actorRepo, uow := newBookingFixture()
	bookingRepo.AddBooking(&domain.Booking{
		ID: "booking-1", TripID: "trip-1", PassengerID: "passenger-1",
		Seats: 1, Status: domain.BookingStatusPending,
	})

	mailer := NewMockMailer()
	mailer.SendError = errors.New("smtp unavailable")
	bookingService := service.NewBookingService(uow, bookingRepo, tripRepo, actorRepo, service.NewNotificationService(mailer), nil)

	booking, err := bookingService.DecideBooking(context.Background(), service.DecideBookingRequest{
		BookingID: "booking-1",
		ActorID:   "driver-1",
		Accept:    true,
	})
	if err != nil {
		t.Fatalf("dispatch failure must not surface: %v", err)
	}
	if booking.Status != domain.BookingStatusAccepted {
		t.Errorf("expected status ACCEPTED despite dispatch failure, got %s", booking.Status)
	}
	if bookingRepo.GetBooking("booking-1").Status != domain.BookingStatusAccepted {
		t.Error("expected the stored booking to stay ACCEPTED")
	}
}

func TestBooking_Accept_NonDriver_Forbidden(t *testing.T) {
	t.Parallel()

	tripRepo, bookingRepo, actorRepo, uow := newBookingFixture()
	bookingRepo.AddBooking(&domain.Booking{
		ID: "booking-1", TripID: "trip-1", PassengerID: "passenger-1",
		Seats: 1, Status: domain.BookingStatusPending,
	})

	bookingService := service.NewBookingService(uow, bookingRepo, tripRepo, actorRepo, nil, nil)

	_, err := bookingService.DecideBooking(context.Background(), service.DecideBookingRequest{
		BookingID: "booking-1",
		ActorID:   "passenger-1",
		Accept:    true,
	})
	if !errors.Is(err, service.ErrNotTripDriver) {
		t.Fatalf("expected ErrNotTripDriver, got %v", err)
	}
}

func TestBooking_DecideTwice_Conflict(t *testing.T) {
	t.Parallel()

	tripRepo, bookingRepo, actorRepo, uow := newBookingFixture()
	bookingRepo.AddBooking(&domain.Booking{
		ID: "booking-1", TripID: "trip-1", PassengerID: "passenger-1",
		Seats: 1, Status: domain.BookingStatusAccepted,
	})

	bookingService := service.NewBookingService(uow, bookingRepo, tripRepo, actorRepo, nil, nil)

	_, err := bookingService.DecideBooking(context.Background(), service.DecideBookingRequest{
		BookingID: "booking-1",
		ActorID:   "driver-1",
		Accept:    false,
	})
	if !errors.Is(err, service.ErrBookingNotPending) {
		t.Fatalf("expected ErrBookingNotPending, got %v", err)
	}
}

func TestBooking_Reject_NoSeatChange(t *testing.T) {
	t.Parallel()

	tripRepo, bookingRepo, actorRepo, uow := newBookingFixture()
	bookingRepo.AddBooking(&domain.Booking{
		ID: "booking-1", TripID: "trip-1", PassengerID: "passenger-1",
		Seats: 2, Status: domain.BookingStatusPending,
	})

	mailer := NewMockMailer()
	bookingService := service.NewBookingService(uow, bookingRepo, tripRepo, actorRepo, service.NewNotificationService(mailer), nil)

	booking, err := bookingService.DecideBooking(context.Background(), service.DecideBookingRequest{
		BookingID: "booking-1",
		ActorID:   "driver-1",
		Accept:    false,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if booking.Status != domain.BookingStatusRejected {
		t.Errorf("expected status REJECTED, got %s", booking.Status)
	}
	if tripRepo.GetTrip("trip-1").AvailableSeats != 3 {
		t.Errorf("expected seats untouched on reject, got %d", tripRepo.GetTrip("trip-1").AvailableSeats)
	}
	if uow.WithinTxCallCount != 0 {
		t.Error("expected no transaction for a plain reject")
	}

	sent := mailer.Sent()
	if len(sent) != 1 || sent[0].Type != service.NotificationBookingRejected {
		t.Errorf("expected a BOOKING_REJECTED notification, got %v", sent)
	}
}

func TestBooking_CancelAccepted_RestoresSeats(t *testing.T) {
	t.Parallel()

	tripRepo, bookingRepo, actorRepo, uow := newBookingFixture()
	trip := tripRepo.GetTrip("trip-1")
	trip.AvailableSeats = 1 // two seats already accepted

	bookingRepo.AddBooking(&domain.Booking{
		ID: "booking-1", TripID: "trip-1", PassengerID: "passenger-1",
		Seats: 2, Status: domain.BookingStatusAccepted,
	})

	bookingService := service.NewBookingService(uow, bookingRepo, tripRepo, actorRepo, nil, nil)

	booking, err := bookingService.CancelBooking(context.Background(), "booking-1", "passenger-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if booking.Status != domain.BookingStatusCancelled {
		t.Errorf("expected status CANCELLED, got %s", booking.Status)
	}
	if tripRepo.GetTrip("trip-1").AvailableSeats != 3 {
		t.Errorf("expected seats restored to 3, got %d", tripRepo.GetTrip("trip-1").AvailableSeats)
	}
	if uow.WithinTxCallCount != 1 {
		t.Errorf("expected seat restoration to run in a transaction, WithinTx called %d times", uow.WithinTxCallCount)
	}
}

func TestBooking_CancelByNonPassenger_Forbidden(t *testing.T) {
	t.Parallel()

	tripRepo, bookingRepo, actorRepo, uow := newBookingFixture()
	bookingRepo.AddBooking(&domain.Booking{
		ID: "booking-1", TripID: "trip-1", PassengerID: "passenger-1",
		Seats: 1, Status: domain.BookingStatusPending,
	})

	bookingService := service.NewBookingService(uow, bookingRepo, tripRepo, actorRepo, nil, nil)

	_, err := bookingService.CancelBooking(context.Background(), "booking-1", "driver-1")
	if !errors.Is(err, service.ErrNotBookingPassenger) {
		t.Fatalf("expected ErrNotBookingPassenger, got %v", err)
	}
}

func TestBooking_CancelRejected_Conflict(t *testing.T) {
	t.Parallel()

	tripRepo, bookingRepo, actorRepo, uow := newBookingFixture()
	bookingRepo.AddBooking(&domain.Booking{
		ID: "booking-1", TripID: "trip-1", PassengerID: "passenger-1",
		Seats: 1, Status: domain.BookingStatusRejected,
	})

	bookingService := service.NewBookingService(uow, bookingRepo, tripRepo, actorRepo, nil, nil)

	_, err := bookingService.CancelBooking(context.Background(), "booking-1", "passenger-1")
	if !errors.Is(err, service.ErrBookingNotCancellable) {
		t.Fatalf("expected ErrBookingNotCancellable, got %v", err)
	}
}
