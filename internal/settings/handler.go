package settings

import (
	"errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ysrc26/footbal-squad-manager/pkg/response"
)

// UpdateRequest is the body for PUT /settings (admin only).
type UpdateRequest struct {
	FieldLatitude  *float64 `json:"field_latitude"`
	FieldLongitude *float64 `json:"field_longitude"`
	QRSecretKey    string   `json:"qr_secret_key" binding:"required"`
	RulesContent   *string  `json:"rules_content"`
}

// Handler handles app settings HTTP endpoints.
type Handler struct {
	repo   *Repository
	logger *zap.Logger
}

// NewHandler creates a settings handler.
func NewHandler(repo *Repository, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{repo: repo, logger: logger}
}

// Get handles GET /settings (admin only; includes the QR secret).
func (h *Handler) Get(c *gin.Context) {
	s, err := h.repo.Get(c.Request.Context())
	if err != nil {
		if errors.Is(err, ErrNotConfigured) {
			response.NotFound(c, "settings not configured")
			return
		}
		response.Internal(c, "failed to load settings")
		return
	}
	response.OK(c, s)
}

// Rules handles GET /settings/rules. Public content for the rules screen.
func (h *Handler) Rules(c *gin.Context) {
	s, err := h.repo.Get(c.Request.Context())
	if err != nil {
		if errors.Is(err, ErrNotConfigured) {
			response.NotFound(c, "settings not configured")
			return
		}
		response.Internal(c, "failed to load settings")
		return
	}
	rules := ""
	if s.RulesContent != nil {
		rules = *s.RulesContent
	}
	response.OK(c, gin.H{"rules_content": rules})
}

// Update handles PUT /settings (admin only).
func (h *Handler) Update(c *gin.Context) {
	var req UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	s, err := h.repo.Get(c.Request.Context())
	if err != nil {
		if errors.Is(err, ErrNotConfigured) {
			response.NotFound(c, "settings not configured")
			return
		}
		response.Internal(c, "failed to load settings")
		return
	}
	s.FieldLatitude = req.FieldLatitude
	s.FieldLongitude = req.FieldLongitude
	s.QRSecretKey = req.QRSecretKey
	s.RulesContent = req.RulesContent
	if err := h.repo.Update(c.Request.Context(), s); err != nil {
		h.logger.Error("update settings failed", zap.Error(err))
		response.Internal(c, "failed to update settings")
		return
	}
	response.OK(c, s)
}
