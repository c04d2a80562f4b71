package registrations

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ysrc26/footbal-squad-manager/internal/middleware"
	"github.com/ysrc26/footbal-squad-manager/pkg/response"
)

// ETARequest is the body for POST /games/:id/eta.
type ETARequest struct {
	ETAMinutes *int `json:"eta_minutes" binding:"required"`
}

// Handler handles registration HTTP endpoints.
type Handler struct {
	service *Service
	logger  *zap.Logger
}

// NewHandler creates a registrations handler.
func NewHandler(service *Service, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{service: service, logger: logger}
}

func gameID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid game id")
		return uuid.Nil, false
	}
	return id, true
}

// Register handles POST /games/:id/register.
func (h *Handler) Register(c *gin.Context) {
	id, ok := gameID(c)
	if !ok {
		return
	}
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Unauthorized(c, "missing user context")
		return
	}
	player := Player{ID: userID, IsResident: middleware.IsResident(c)}

	result, err := h.service.Register(c.Request.Context(), player, id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Created(c, result)
}

// Cancel handles POST /games/:id/cancel.
func (h *Handler) Cancel(c *gin.Context) {
	id, ok := gameID(c)
	if !ok {
		return
	}
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Unauthorized(c, "missing user context")
		return
	}

	result, err := h.service.Cancel(c.Request.Context(), userID, id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.OK(c, result)
}

// ProcessLateSwaps handles POST /games/:id/late-swaps (admin only).
func (h *Handler) ProcessLateSwaps(c *gin.Context) {
	id, ok := gameID(c)
	if !ok {
		return
	}
	result, err := h.service.ProcessLateSwaps(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.OK(c, result)
}

// ReportETA handles POST /games/:id/eta.
func (h *Handler) ReportETA(c *gin.Context) {
	id, ok := gameID(c)
	if !ok {
		return
	}
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Unauthorized(c, "missing user context")
		return
	}
	var req ETARequest
	if err := c.ShouldBindJSON(&req); err != nil || req.ETAMinutes == nil || *req.ETAMinutes < 0 {
		response.BadRequest(c, "eta_minutes must be a non-negative integer")
		return
	}
	if err := h.service.ReportETA(c.Request.Context(), userID, id, *req.ETAMinutes); err != nil {
		h.writeError(c, err)
		return
	}
	response.OK(c, gin.H{"eta_minutes": *req.ETAMinutes})
}

// Roster handles GET /games/:id/roster.
func (h *Handler) Roster(c *gin.Context) {
	id, ok := gameID(c)
	if !ok {
		return
	}
	roster, err := h.service.Roster(c.Request.Context(), id)
	if err != nil {
		h.logger.Error("list roster failed", zap.Error(err), zap.String("game_id", id.String()))
		response.Internal(c, "failed to load roster")
		return
	}
	response.OK(c, roster)
}

func (h *Handler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrGameNotFound):
		response.NotFound(c, err.Error())
	case errors.Is(err, ErrAlreadyRegistered):
		response.Conflict(c, err.Error())
	case errors.Is(err, ErrNotRegistered):
		response.NotFound(c, err.Error())
	case errors.Is(err, ErrRegistrationClosed), errors.Is(err, ErrStandbyFull):
		response.Forbidden(c, err.Error())
	case errors.Is(err, ErrConflict):
		response.ServiceUnavailable(c, err.Error())
	default:
		h.logger.Error("registration operation failed", zap.Error(err))
		response.Internal(c, "internal error")
	}
}
