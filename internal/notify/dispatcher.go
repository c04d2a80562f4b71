// Package notify fans out push notifications for roster events. Delivery
// is best-effort and decoupled from the registration transactions: the
// dispatcher only enqueues jobs, the worker talks to OneSignal.
package notify

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ysrc26/footbal-squad-manager/pkg/queue"
)

// Dispatcher enqueues push jobs after state-machine commits. Failures are
// logged and swallowed: a lost notification never affects roster state.
type Dispatcher struct {
	queue  *queue.Queue
	logger *zap.Logger
}

// NewDispatcher creates a push dispatcher.
func NewDispatcher(q *queue.Queue, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{queue: q, logger: logger}
}

// Promoted notifies a standby player moved into the active roster.
func (d *Dispatcher) Promoted(ctx context.Context, userID, gameID uuid.UUID) {
	d.enqueue(ctx, queue.PushPayload{
		UserIDs: []string{userID.String()},
		Title:   "You're in!",
		Body:    "A spot opened up and you moved from the waitlist to the active roster.",
		Data:    map[string]string{"game_id": gameID.String(), "event": "promoted"},
	})
}

// LateSwap notifies both sides of a late-swap pairing.
func (d *Dispatcher) LateSwap(ctx context.Context, promotedUserID, demotedUserID, gameID uuid.UUID) {
	d.enqueue(ctx, queue.PushPayload{
		UserIDs: []string{promotedUserID.String()},
		Title:   "You're in!",
		Body:    "You checked in on time and took a spot in the active roster.",
		Data:    map[string]string{"game_id": gameID.String(), "event": "late_swap_in"},
	})
	d.enqueue(ctx, queue.PushPayload{
		UserIDs: []string{demotedUserID.String()},
		Title:   "Moved to the waitlist",
		Body:    "You didn't check in before kickoff, so your spot went to a player on the waitlist.",
		Data:    map[string]string{"game_id": gameID.String(), "event": "late_swap_out"},
	})
}

// GameOpen broadcasts that registration for a game has opened.
func (d *Dispatcher) GameOpen(ctx context.Context, gameID uuid.UUID) {
	d.enqueue(ctx, queue.PushPayload{
		Title: "Registration is open",
		Body:  "Sign-up for this week's game is now open.",
		Data:  map[string]string{"game_id": gameID.String(), "event": "game_open"},
	})
}

// Broadcast sends an admin-composed message to everyone.
func (d *Dispatcher) Broadcast(ctx context.Context, title, body string) {
	d.enqueue(ctx, queue.PushPayload{Title: title, Body: body})
}

func (d *Dispatcher) enqueue(ctx context.Context, payload queue.PushPayload) {
	if d == nil || d.queue == nil {
		return
	}
	if err := d.queue.EnqueuePush(ctx, payload); err != nil {
		d.logger.Warn("enqueue push failed", zap.Error(err), zap.String("title", payload.Title))
	}
}
