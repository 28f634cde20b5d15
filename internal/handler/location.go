package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"carpool/internal/domain"
	"carpool/internal/service"
)

// LocationHandler handles HTTP requests for location samples.
type LocationHandler struct {
	locationService *service.LocationService
}

// NewLocationHandler creates a new LocationHandler.
func NewLocationHandler(locationService *service.LocationService) *LocationHandler {
	return &LocationHandler{locationService: locationService}
}

// SubmitSampleRequest is the HTTP request body for submitting a sample.
type SubmitSampleRequest struct {
	TripID     string    `json:"trip_id,omitempty"`
	Lat        float64   `json:"lat"`
	Lng        float64   `json:"lng"`
	Heading    *float64  `json:"heading,omitempty"`
	Speed      *float64  `json:"speed,omitempty"`
	RecordedAt time.Time `json:"recorded_at,omitempty"`
}

// SampleResponse is the HTTP response for a location sample.
type SampleResponse struct {
	ID         string   `json:"id"`
	ActorID    string   `json:"actor_id"`
	TripID     string   `json:"trip_id,omitempty"`
	Lat        float64  `json:"lat"`
	Lng        float64  `json:"lng"`
	Heading    *float64 `json:"heading,omitempty"`
	Speed      *float64 `json:"speed,omitempty"`
	RecordedAt string   `json:"recorded_at"`
}

func sampleResponse(s *domain.LocationSample) SampleResponse {
	return SampleResponse{
		ID:         s.ID,
		ActorID:    s.ActorID,
		TripID:     s.TripID,
		Lat:        s.Lat,
		Lng:        s.Lng,
		Heading:    s.Heading,
		Speed:      s.Speed,
		RecordedAt: s.RecordedAt.Format(time.RFC3339),
	}
}

// Submit handles POST /v1/locations
func (h *LocationHandler) Submit(c *gin.Context) {
	var req SubmitSampleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	sample, err := h.locationService.SubmitSample(c.Request.Context(), service.SubmitSampleRequest{
		ActorID:    actorID(c),
		TripID:     req.TripID,
		Lat:        req.Lat,
		Lng:        req.Lng,
		Heading:    req.Heading,
		Speed:      req.Speed,
		RecordedAt: req.RecordedAt,
		Secure:     secureTransport(c),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, sampleResponse(sample))
}

// History handles GET /v1/locations/:actorId/history
func (h *LocationHandler) History(c *gin.Context) {
	samples, err := h.locationService.History(c.Request.Context(), c.Param("actorId"), 100)
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]SampleResponse, 0, len(samples))
	for _, s := range samples {
		response = append(response, sampleResponse(s))
	}

	c.JSON(http.StatusOK, response)
}
