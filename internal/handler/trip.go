package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"carpool/internal/domain"
	"carpool/internal/repository"
	"carpool/internal/service"
)

// TripHandler handles HTTP requests for trips.
type TripHandler struct {
	tripService *service.TripService
}

// NewTripHandler creates a new TripHandler.
func NewTripHandler(tripService *service.TripService) *TripHandler {
	return &TripHandler{tripService: tripService}
}

// CoordinatesBody is an optional lat/lng pair in a request body.
type CoordinatesBody struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// CreateTripRequest is the HTTP request body for posting a trip.
type CreateTripRequest struct {
	Origin        string           `json:"origin"`
	Destination   string           `json:"destination"`
	OriginCoords  *CoordinatesBody `json:"origin_coords,omitempty"`
	DestCoords    *CoordinatesBody `json:"dest_coords,omitempty"`
	DepartureTime time.Time        `json:"departure_time"`
	Seats         int              `json:"seats"`
	PricePerSeat  float64          `json:"price_per_seat"`
}

// ChangeTripStatusRequest is the HTTP request body for a status change.
type ChangeTripStatusRequest struct {
	Status string `json:"status"`
}

// TripResponse is the HTTP response for trip operations.
type TripResponse struct {
	TripID         string           `json:"trip_id"`
	DriverID       string           `json:"driver_id"`
	Origin         string           `json:"origin"`
	Destination    string           `json:"destination"`
	OriginCoords   *CoordinatesBody `json:"origin_coords,omitempty"`
	DestCoords     *CoordinatesBody `json:"dest_coords,omitempty"`
	DepartureTime  string           `json:"departure_time"`
	Seats          int              `json:"seats"`
	AvailableSeats int              `json:"available_seats"`
	PricePerSeat   float64          `json:"price_per_seat"`
	Status         string           `json:"status"`
}

func tripResponse(trip *domain.Trip) TripResponse {
	resp := TripResponse{
		TripID:         trip.ID,
		DriverID:       trip.DriverID,
		Origin:         trip.Origin,
		Destination:    trip.Destination,
		DepartureTime:  trip.DepartureTime.Format(time.RFC3339),
		Seats:          trip.Seats,
		AvailableSeats: trip.AvailableSeats,
		PricePerSeat:   trip.PricePerSeat,
		Status:         string(trip.Status),
	}
	if trip.OriginCoords != nil {
		resp.OriginCoords = &CoordinatesBody{Lat: trip.OriginCoords.Lat, Lng: trip.OriginCoords.Lng}
	}
	if trip.DestCoords != nil {
		resp.DestCoords = &CoordinatesBody{Lat: trip.DestCoords.Lat, Lng: trip.DestCoords.Lng}
	}
	return resp
}

func bodyCoords(c *CoordinatesBody) *domain.Coordinates {
	if c == nil {
		return nil
	}
	return &domain.Coordinates{Lat: c.Lat, Lng: c.Lng}
}

// Create handles POST /v1/trips
func (h *TripHandler) Create(c *gin.Context) {
	var req CreateTripRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	if req.Origin == "" || req.Destination == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "origin and destination are required"})
		return
	}

	trip, err := h.tripService.CreateTrip(c.Request.Context(), service.CreateTripRequest{
		DriverID:      actorID(c),
		Origin:        req.Origin,
		Destination:   req.Destination,
		OriginCoords:  bodyCoords(req.OriginCoords),
		DestCoords:    bodyCoords(req.DestCoords),
		DepartureTime: req.DepartureTime,
		Seats:         req.Seats,
		PricePerSeat:  req.PricePerSeat,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, tripResponse(trip))
}

// Get handles GET /v1/trips/:id
func (h *TripHandler) Get(c *gin.Context) {
	trip, err := h.tripService.GetTrip(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, tripResponse(trip))
}

// Search handles GET /v1/trips?origin=&destination=&date=
func (h *TripHandler) Search(c *gin.Context) {
	filter := repository.TripSearch{
		Origin:      c.Query("origin"),
		Destination: c.Query("destination"),
	}

	if dateStr := c.Query("date"); dateStr != "" {
		date, err := time.Parse("2006-01-02", dateStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "date must be YYYY-MM-DD"})
			return
		}
		filter.Date = date
	}

	trips, err := h.tripService.SearchTrips(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]TripResponse, 0, len(trips))
	for _, trip := range trips {
		response = append(response, tripResponse(trip))
	}

	c.JSON(http.StatusOK, response)
}

// ChangeStatus handles POST /v1/trips/:id/status
func (h *TripHandler) ChangeStatus(c *gin.Context) {
	var req ChangeTripStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	trip, err := h.tripService.ChangeStatus(c.Request.Context(), service.ChangeStatusRequest{
		TripID:  c.Param("id"),
		ActorID: actorID(c),
		Status:  domain.TripStatus(req.Status),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, tripResponse(trip))
}

// Delete handles DELETE /v1/trips/:id
func (h *TripHandler) Delete(c *gin.Context) {
	if err := h.tripService.DeleteTrip(c.Request.Context(), c.Param("id"), actorID(c)); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
