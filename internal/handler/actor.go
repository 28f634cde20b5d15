package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"carpool/internal/domain"
	"carpool/internal/repository"
)

// ActorHandler handles HTTP requests for actors.
type ActorHandler struct {
	actorRepo repository.ActorRepository
}

// NewActorHandler creates a new ActorHandler.
func NewActorHandler(actorRepo repository.ActorRepository) *ActorHandler {
	return &ActorHandler{actorRepo: actorRepo}
}

// RegisterActorRequest is the HTTP request body for actor registration.
type RegisterActorRequest struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Role  string `json:"role"`
}

// ActorResponse is the HTTP response for actor data.
type ActorResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Role  string `json:"role"`
}

// Register handles POST /v1/actors/register
func (h *ActorHandler) Register(c *gin.Context) {
	var req RegisterActorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	if req.Name == "" || req.Phone == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "name and phone are required"})
		return
	}

	role := domain.ActorRole(req.Role)
	if role != domain.RoleDriver && role != domain.RolePassenger {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "role must be DRIVER or PASSENGER"})
		return
	}

	actor := &domain.Actor{
		ID:        uuid.New().String(),
		Name:      req.Name,
		Phone:     req.Phone,
		Role:      role,
		CreatedAt: time.Now(),
	}

	if err := h.actorRepo.Create(c.Request.Context(), actor); err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, ActorResponse{
		ID:    actor.ID,
		Name:  actor.Name,
		Phone: actor.Phone,
		Role:  string(actor.Role),
	})
}

// GetAll handles GET /v1/actors
func (h *ActorHandler) GetAll(c *gin.Context) {
	actors, err := h.actorRepo.GetAll(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]ActorResponse, 0, len(actors))
	for _, actor := range actors {
		response = append(response, ActorResponse{
			ID:    actor.ID,
			Name:  actor.Name,
			Phone: actor.Phone,
			Role:  string(actor.Role),
		})
	}

	c.JSON(http.StatusOK, response)
}
