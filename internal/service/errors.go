package service

import "errors"

var (
	// ErrInsecureContext is returned when a location operation is
	// attempted without a secure transport. The operation must not
	// start at all.
	ErrInsecureContext = errors.New("secure context required")

	// ErrPermissionDenied is returned when the device or backend
	// denies location access.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrLocationWriteRejected is returned when the store refuses a
	// location sample. The sharing stream stops and does not retry.
	ErrLocationWriteRejected = errors.New("location write rejected")

	// ErrSampleInFlight is returned when a submission for the same
	// actor is already in progress.
	ErrSampleInFlight = errors.New("location sample already in flight for actor")

	// ErrInvalidActorID is returned when an actor ID is empty.
	ErrInvalidActorID = errors.New("invalid actor id")

	// ErrInvalidTripID is returned when a trip ID is empty.
	ErrInvalidTripID = errors.New("invalid trip id")

	// ErrInvalidBookingID is returned when a booking ID is empty.
	ErrInvalidBookingID = errors.New("invalid booking id")

	// ErrInvalidLocation is returned when coordinates are out of range.
	ErrInvalidLocation = errors.New("invalid location")

	// ErrInvalidSeats is returned when a seat count is not positive.
	ErrInvalidSeats = errors.New("invalid seat count")

	// ErrNotADriver is returned when a passenger attempts a
	// driver-only operation.
	ErrNotADriver = errors.New("actor is not a driver")

	// ErrNotTripDriver is returned when an actor other than the trip's
	// driver attempts to manage it.
	ErrNotTripDriver = errors.New("actor is not the trip driver")

	// ErrNotBookingPassenger is returned when an actor other than the
	// booking's passenger attempts to cancel it.
	ErrNotBookingPassenger = errors.New("actor is not the booking passenger")

	// ErrSelfBooking is returned when a driver tries to book their own trip.
	ErrSelfBooking = errors.New("cannot book own trip")

	// ErrSeatsUnavailable is returned when a booking requests more
	// seats than the trip has available.
	ErrSeatsUnavailable = errors.New("not enough seats available")

	// ErrDepartureInPast is returned when a trip's departure time has
	// already passed.
	ErrDepartureInPast = errors.New("departure time is in the past")

	// ErrTripNotScheduled is returned when an operation needs the trip
	// to still be in the SCHEDULED state.
	ErrTripNotScheduled = errors.New("trip is not scheduled")

	// ErrInvalidTripTransition is returned on a disallowed trip status change.
	ErrInvalidTripTransition = errors.New("invalid trip status transition")

	// ErrBookingNotPending is returned when accept/reject targets a
	// booking that is no longer pending.
	ErrBookingNotPending = errors.New("booking is not pending")

	// ErrBookingNotCancellable is returned when cancel targets a
	// booking that is already rejected or cancelled.
	ErrBookingNotCancellable = errors.New("booking cannot be cancelled")

	// ErrTripHasAcceptedBookings is returned when deleting a trip that
	// still has accepted bookings.
	ErrTripHasAcceptedBookings = errors.New("trip has accepted bookings")
)
