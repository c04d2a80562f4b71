package games

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/ysrc26/footbal-squad-manager/config"
	"github.com/ysrc26/footbal-squad-manager/internal/models"
	"github.com/ysrc26/footbal-squad-manager/internal/notify"
	"github.com/ysrc26/footbal-squad-manager/pkg/response"
)

// CreateRequest is the body for POST /games. Kickoff, deadline and wave
// timestamps come from the external schedule source.
type CreateRequest struct {
	Date            string     `json:"date" binding:"required"` // YYYY-MM-DD
	KickoffTime     time.Time  `json:"kickoff_time" binding:"required"`
	DeadlineTime    time.Time  `json:"deadline_time" binding:"required"`
	Wave1OpensAt    *time.Time `json:"wave1_opens_at"`
	Wave2OpensAt    *time.Time `json:"wave2_opens_at"`
	MaxPlayers      int        `json:"max_players"`
	MaxStandby      *int       `json:"max_standby"`
	IsAutoGenerated bool       `json:"is_auto_generated"`
}

// UpdateStatusRequest is the body for PATCH /games/:id/status.
type UpdateStatusRequest struct {
	Status models.GameStatus `json:"status" binding:"required"`
}

// Handler handles game HTTP endpoints.
type Handler struct {
	repo       *Repository
	dispatcher *notify.Dispatcher
	defaults   config.GameConfig
	logger     *zap.Logger
}

// NewHandler creates a games handler.
func NewHandler(repo *Repository, dispatcher *notify.Dispatcher, defaults config.GameConfig, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{repo: repo, dispatcher: dispatcher, defaults: defaults, logger: logger}
}

// Current handles GET /games/current.
func (h *Handler) Current(c *gin.Context) {
	g, err := h.repo.Current(c.Request.Context())
	if err != nil {
		h.logger.Error("fetch current game failed", zap.Error(err))
		response.Internal(c, "failed to fetch current game")
		return
	}
	if g == nil {
		response.NotFound(c, "no upcoming game")
		return
	}
	response.OK(c, g)
}

// Get handles GET /games/:id.
func (h *Handler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid game id")
		return
	}
	g, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		h.logger.Error("fetch game failed", zap.Error(err))
		response.Internal(c, "failed to fetch game")
		return
	}
	if g == nil {
		response.NotFound(c, "game not found")
		return
	}
	response.OK(c, g)
}

// Create handles POST /games (admin only).
func (h *Handler) Create(c *gin.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		response.BadRequest(c, "invalid date, expected YYYY-MM-DD")
		return
	}
	maxPlayers := req.MaxPlayers
	if maxPlayers == 0 {
		maxPlayers = h.defaults.DefaultMaxPlayers
	}
	if maxPlayers <= 0 {
		response.BadRequest(c, "max_players must be positive")
		return
	}
	maxStandby := h.defaults.DefaultMaxStandby
	if req.MaxStandby != nil {
		maxStandby = *req.MaxStandby
	}
	if maxStandby < 0 {
		response.BadRequest(c, "max_standby must not be negative")
		return
	}

	// One game per calendar date for the auto-generated weekly slot.
	if req.IsAutoGenerated {
		exists, err := h.repo.ExistsOnDate(c.Request.Context(), date)
		if err != nil {
			response.Internal(c, "failed to check existing game")
			return
		}
		if exists {
			response.Conflict(c, "a game already exists for this date")
			return
		}
	}

	g := &models.Game{
		Date:            date,
		KickoffTime:     req.KickoffTime,
		DeadlineTime:    req.DeadlineTime,
		Wave1OpensAt:    req.Wave1OpensAt,
		Wave2OpensAt:    req.Wave2OpensAt,
		Status:          models.GameScheduled,
		IsAutoGenerated: req.IsAutoGenerated,
		MaxPlayers:      maxPlayers,
		MaxStandby:      maxStandby,
	}
	if err := h.repo.Create(c.Request.Context(), g); err != nil {
		h.logger.Error("create game failed", zap.Error(err))
		response.Internal(c, "failed to create game")
		return
	}
	response.Created(c, g)
}

// UpdateStatus handles PATCH /games/:id/status (admin only). Opening a
// game triggers a best-effort broadcast push.
func (h *Handler) UpdateStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid game id")
		return
	}
	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil || !req.Status.Valid() {
		response.BadRequest(c, "invalid status")
		return
	}
	if err := h.repo.UpdateStatus(c.Request.Context(), id, req.Status); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			response.NotFound(c, "game not found")
			return
		}
		response.Internal(c, "failed to update status")
		return
	}
	if req.Status == models.GameOpenForAll || req.Status == models.GameOpenForResidents {
		h.dispatcher.GameOpen(c.Request.Context(), id)
	}
	response.OK(c, gin.H{"id": id, "status": req.Status})
}

// Delete handles DELETE /games/:id (admin only).
func (h *Handler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid game id")
		return
	}
	if err := h.repo.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			response.NotFound(c, "game not found")
			return
		}
		response.Internal(c, "failed to delete game")
		return
	}
	response.NoContent(c)
}
