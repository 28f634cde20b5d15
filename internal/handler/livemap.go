package handler

import (
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"carpool/internal/domain"
	"carpool/internal/service"
	"carpool/internal/ws"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(*http.Request) bool { return true },
}

// LiveMapHandler serves the live map: marker snapshots over HTTP and a
// websocket stream fed by the presenter.
type LiveMapHandler struct {
	presenter   *service.LiveMapPresenter
	tripService *service.TripService
	hub         *ws.Hub
}

// NewLiveMapHandler creates a new LiveMapHandler.
func NewLiveMapHandler(presenter *service.LiveMapPresenter, tripService *service.TripService, hub *ws.Hub) *LiveMapHandler {
	return &LiveMapHandler{presenter: presenter, tripService: tripService, hub: hub}
}

// MarkersResponse is the HTTP response for the current marker set.
type MarkersResponse struct {
	Markers  []service.Marker  `json:"markers"`
	Viewport *service.Viewport `json:"viewport,omitempty"`
}

// Markers handles GET /v1/map/markers?trip_id=&self_lat=&self_lng=
func (h *LiveMapHandler) Markers(c *gin.Context) {
	response := MarkersResponse{Markers: h.presenter.Markers()}

	// Viewport selection is best-effort: a missing trip or malformed
	// self position just leaves the client's viewport alone.
	var trip *domain.Trip
	if tripID := c.Query("trip_id"); tripID != "" {
		trip, _ = h.tripService.GetTrip(c.Request.Context(), tripID)
	}

	var selfPos *domain.Coordinates
	if latStr, lngStr := c.Query("self_lat"), c.Query("self_lng"); latStr != "" && lngStr != "" {
		lat, latErr := strconv.ParseFloat(latStr, 64)
		lng, lngErr := strconv.ParseFloat(lngStr, 64)
		if latErr == nil && lngErr == nil {
			selfPos = &domain.Coordinates{Lat: lat, Lng: lng}
		}
	}

	if viewport, ok := service.ViewportFor(trip, selfPos); ok {
		response.Viewport = &viewport
	}

	respondJSON(c, http.StatusOK, response)
}

// markersEvent is the websocket frame carrying a marker snapshot.
type markersEvent struct {
	Type    string           `json:"type"`
	Markers []service.Marker `json:"markers"`
}

// Stream handles GET /v1/map/ws
func (h *LiveMapHandler) Stream(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	h.hub.Add(conn)

	// Initial snapshot so the client draws before the first change event.
	if err := h.hub.Send(conn, markersEvent{Type: "markers", Markers: h.presenter.Markers()}); err != nil {
		h.hub.Remove(conn)
		return
	}

	// Drain reads to notice the client going away.
	go func() {
		defer h.hub.Remove(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					log.Printf("livemap: websocket closed: %v", err)
				}
				return
			}
		}
	}()
}

// hubBroadcaster adapts ws.Hub to the presenter's Broadcaster.
type hubBroadcaster struct {
	hub *ws.Hub
}

// NewHubBroadcaster wraps a hub for the presenter.
func NewHubBroadcaster(hub *ws.Hub) service.Broadcaster {
	return &hubBroadcaster{hub: hub}
}

func (b *hubBroadcaster) BroadcastMarkers(markers []service.Marker) {
	b.hub.Broadcast(markersEvent{Type: "markers", Markers: markers})
}
