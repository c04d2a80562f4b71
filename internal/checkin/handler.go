package checkin

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ysrc26/footbal-squad-manager/internal/middleware"
	"github.com/ysrc26/footbal-squad-manager/internal/registrations"
	"github.com/ysrc26/footbal-squad-manager/pkg/response"
)

// Request is the body for POST /games/:id/checkin.
type Request struct {
	Secret    string   `json:"secret" binding:"required"`
	Latitude  *float64 `json:"latitude" binding:"required"`
	Longitude *float64 `json:"longitude" binding:"required"`
}

// Handler handles the check-in HTTP endpoint.
type Handler struct {
	verifier *Verifier
	logger   *zap.Logger
}

// NewHandler creates a check-in handler.
func NewHandler(verifier *Verifier, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{verifier: verifier, logger: logger}
}

// CheckIn handles POST /games/:id/checkin.
func (h *Handler) CheckIn(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid game id")
		return
	}
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Unauthorized(c, "missing user context")
		return
	}
	var req Request
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	err = h.verifier.CheckIn(c.Request.Context(), userID, id, req.Secret, *req.Latitude, *req.Longitude)
	if err != nil {
		var tooFar *TooFarError
		switch {
		case errors.As(err, &tooFar):
			response.ForbiddenData(c, tooFar.Error(), gin.H{"distance_meters": tooFar.DistanceMeters})
		case errors.Is(err, ErrInvalidCode):
			response.Forbidden(c, err.Error())
		case errors.Is(err, ErrWindowClosed):
			response.Forbidden(c, err.Error())
		case errors.Is(err, ErrNotRegistered):
			response.NotFound(c, err.Error())
		case errors.Is(err, ErrVenueNotConfigured):
			response.ServiceUnavailable(c, err.Error())
		case errors.Is(err, registrations.ErrGameNotFound):
			response.NotFound(c, err.Error())
		case errors.Is(err, registrations.ErrConflict):
			response.ServiceUnavailable(c, err.Error())
		default:
			h.logger.Error("check-in failed", zap.Error(err))
			response.Internal(c, "internal error")
		}
		return
	}
	response.OK(c, gin.H{"checked_in": true})
}
