package registrations

import (
	"context"

	"github.com/google/uuid"

	"github.com/ysrc26/footbal-squad-manager/internal/models"
)

// Tx exposes the ledger primitives available inside a serialized per-game
// transaction. All reads see the transaction's snapshot; all writes commit
// or roll back together.
type Tx interface {
	// Game returns the locked game row the transaction serializes on.
	Game() models.Game
	// LiveRegistration returns the user's non-cancelled registration, or nil.
	LiveRegistration(ctx context.Context, userID uuid.UUID) (*models.Registration, error)
	// CountActive returns the number of active registrations.
	CountActive(ctx context.Context) (int, error)
	// CountStandby returns the number of standby registrations.
	CountStandby(ctx context.Context) (int, error)
	// ListActive returns active registrations ordered by created_at.
	ListActive(ctx context.Context) ([]models.Registration, error)
	// ListStandby returns standby registrations in promotion order:
	// queue_position ascending with nulls last, then created_at ascending.
	ListStandby(ctx context.Context) ([]models.Registration, error)
	// NextQueuePosition returns max(queue_position)+1 over the current
	// standby set, or 1 when the set is empty or unpositioned.
	NextQueuePosition(ctx context.Context) (int, error)
	// Insert appends a new registration row.
	Insert(ctx context.Context, reg *models.Registration) error
	// SetStatus updates a registration's status and queue position.
	SetStatus(ctx context.Context, id uuid.UUID, status models.RegistrationStatus, queuePosition *int) error
	// SetCheckIn updates a registration's check-in status.
	SetCheckIn(ctx context.Context, id uuid.UUID, status models.CheckInStatus) error
	// SetETA updates a registration's self-reported lateness.
	SetETA(ctx context.Context, id uuid.UUID, etaMinutes *int) error
}

// Ledger is the registration store. InGameTx is the only way to mutate it:
// the callback runs with the game row locked, so concurrent Register,
// Cancel, check-in and late-swap calls for one game serialize.
type Ledger interface {
	InGameTx(ctx context.Context, gameID uuid.UUID, fn func(ctx context.Context, tx Tx) error) error
	// ListRoster returns all non-cancelled registrations for a game joined
	// with player names, actives first, standby in promotion order.
	ListRoster(ctx context.Context, gameID uuid.UUID) ([]models.RosterEntry, error)
}
