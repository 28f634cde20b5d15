package handler

import (
	"errors"
	"net"
	"net/http"

	"github.com/gin-gonic/gin"

	"carpool/internal/repository"
	"carpool/internal/service"
)

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// respondError sends an error response with the appropriate HTTP status code.
func respondError(c *gin.Context, err error) {
	code := mapErrorToHTTPStatus(err)
	c.JSON(code, ErrorResponse{Error: err.Error()})
}

// respondJSON sends a JSON response with the given status code.
func respondJSON(c *gin.Context, code int, data any) {
	c.JSON(code, data)
}

// mapErrorToHTTPStatus maps service/repository errors to HTTP status codes.
func mapErrorToHTTPStatus(err error) int {
	switch {
	// Not found errors
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound

	// Validation errors - Bad Request
	case errors.Is(err, service.ErrInvalidActorID),
		errors.Is(err, service.ErrInvalidTripID),
		errors.Is(err, service.ErrInvalidBookingID),
		errors.Is(err, service.ErrInvalidLocation),
		errors.Is(err, service.ErrInvalidSeats),
		errors.Is(err, service.ErrDepartureInPast):
		return http.StatusBadRequest

	// Business rule violations
	case errors.Is(err, service.ErrSeatsUnavailable),
		errors.Is(err, service.ErrSelfBooking):
		return http.StatusUnprocessableEntity

	// Conflict errors
	case errors.Is(err, service.ErrTripNotScheduled),
		errors.Is(err, service.ErrInvalidTripTransition),
		errors.Is(err, service.ErrBookingNotPending),
		errors.Is(err, service.ErrBookingNotCancellable),
		errors.Is(err, service.ErrTripHasAcceptedBookings),
		errors.Is(err, service.ErrSampleInFlight):
		return http.StatusConflict

	// Forbidden errors
	case errors.Is(err, service.ErrInsecureContext),
		errors.Is(err, service.ErrPermissionDenied),
		errors.Is(err, service.ErrNotADriver),
		errors.Is(err, service.ErrNotTripDriver),
		errors.Is(err, service.ErrNotBookingPassenger):
		return http.StatusForbidden

	// Upstream store rejected the write
	case errors.Is(err, service.ErrLocationWriteRejected):
		return http.StatusBadGateway

	// Default to internal server error
	default:
		return http.StatusInternalServerError
	}
}

// actorID extracts the caller identity asserted by the upstream
// gateway. Authentication itself is outside this service.
func actorID(c *gin.Context) string {
	return c.GetHeader("X-Actor-ID")
}

// secureTransport reports whether the request arrived over a secure
// context: TLS (direct or asserted by a proxy), or loopback, which
// counts as secure the same way browsers treat localhost.
func secureTransport(c *gin.Context) bool {
	if c.Request.TLS != nil {
		return true
	}
	if c.GetHeader("X-Forwarded-Proto") == "https" {
		return true
	}
	host, _, err := net.SplitHostPort(c.Request.RemoteAddr)
	if err != nil {
		return false
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
