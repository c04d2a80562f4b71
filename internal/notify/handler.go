package notify

import (
	"github.com/gin-gonic/gin"

	"github.com/ysrc26/footbal-squad-manager/pkg/response"
)

// BroadcastRequest is the body for POST /notifications/broadcast (admin only).
type BroadcastRequest struct {
	Title string `json:"title" binding:"required"`
	Body  string `json:"body" binding:"required"`
}

// Handler handles admin push endpoints.
type Handler struct {
	dispatcher *Dispatcher
}

// NewHandler creates a notifications handler.
func NewHandler(dispatcher *Dispatcher) *Handler {
	return &Handler{dispatcher: dispatcher}
}

// Broadcast handles POST /notifications/broadcast.
func (h *Handler) Broadcast(c *gin.Context) {
	var req BroadcastRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	h.dispatcher.Broadcast(c.Request.Context(), req.Title, req.Body)
	response.OK(c, gin.H{"queued": true})
}
