package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"carpool/internal/domain"
	"carpool/internal/service"
)

// BookingHandler handles HTTP requests for bookings.
type BookingHandler struct {
	bookingService *service.BookingService
}

// NewBookingHandler creates a new BookingHandler.
func NewBookingHandler(bookingService *service.BookingService) *BookingHandler {
	return &BookingHandler{bookingService: bookingService}
}

// CreateBookingRequest is the HTTP request body for requesting a booking.
type CreateBookingRequest struct {
	TripID  string `json:"trip_id"`
	Seats   int    `json:"seats"`
	Message string `json:"message,omitempty"`
}

// BookingResponse is the HTTP response for booking operations.
type BookingResponse struct {
	BookingID   string `json:"booking_id"`
	TripID      string `json:"trip_id"`
	PassengerID string `json:"passenger_id"`
	Seats       int    `json:"seats"`
	Status      string `json:"status"`
	Message     string `json:"message,omitempty"`
	CreatedAt   string `json:"created_at"`
}

func bookingResponse(booking *domain.Booking) BookingResponse {
	return BookingResponse{
		BookingID:   booking.ID,
		TripID:      booking.TripID,
		PassengerID: booking.PassengerID,
		Seats:       booking.Seats,
		Status:      string(booking.Status),
		Message:     booking.Message,
		CreatedAt:   booking.CreatedAt.Format(time.RFC3339),
	}
}

// Create handles POST /v1/bookings
func (h *BookingHandler) Create(c *gin.Context) {
	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	booking, err := h.bookingService.CreateBooking(c.Request.Context(), service.CreateBookingRequest{
		TripID:      req.TripID,
		PassengerID: actorID(c),
		Seats:       req.Seats,
		Message:     req.Message,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, bookingResponse(booking))
}

// Get handles GET /v1/bookings/:id
func (h *BookingHandler) Get(c *gin.Context) {
	booking, err := h.bookingService.GetBooking(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, bookingResponse(booking))
}

// Accept handles POST /v1/bookings/:id/accept
func (h *BookingHandler) Accept(c *gin.Context) {
	h.decide(c, true)
}

// Reject handles POST /v1/bookings/:id/reject
func (h *BookingHandler) Reject(c *gin.Context) {
	h.decide(c, false)
}

func (h *BookingHandler) decide(c *gin.Context, accept bool) {
	booking, err := h.bookingService.DecideBooking(c.Request.Context(), service.DecideBookingRequest{
		BookingID: c.Param("id"),
		ActorID:   actorID(c),
		Accept:    accept,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, bookingResponse(booking))
}

// Cancel handles POST /v1/bookings/:id/cancel
func (h *BookingHandler) Cancel(c *gin.Context) {
	booking, err := h.bookingService.CancelBooking(c.Request.Context(), c.Param("id"), actorID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, bookingResponse(booking))
}

// ByTrip handles GET /v1/trips/:id/bookings
func (h *BookingHandler) ByTrip(c *gin.Context) {
	bookings, err := h.bookingService.BookingsByTrip(c.Request.Context(), c.Param("id"), actorID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]BookingResponse, 0, len(bookings))
	for _, booking := range bookings {
		response = append(response, bookingResponse(booking))
	}

	c.JSON(http.StatusOK, response)
}

// Mine handles GET /v1/bookings
func (h *BookingHandler) Mine(c *gin.Context) {
	bookings, err := h.bookingService.BookingsByPassenger(c.Request.Context(), actorID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]BookingResponse, 0, len(bookings))
	for _, booking := range bookings {
		response = append(response, bookingResponse(booking))
	}

	c.JSON(http.StatusOK, response)
}
