package registrations

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ysrc26/footbal-squad-manager/internal/models"
)

// memLedger is an in-memory Ledger. A single mutex stands in for the
// per-game row lock, so callbacks serialize exactly like the real store.
type memLedger struct {
	mu    sync.Mutex
	games map[uuid.UUID]*models.Game
	regs  []*models.Registration
	seq   int
}

func newMemLedger(games ...*models.Game) *memLedger {
	l := &memLedger{games: make(map[uuid.UUID]*models.Game)}
	for _, g := range games {
		l.games[g.ID] = g
	}
	return l
}

func (l *memLedger) InGameTx(ctx context.Context, gameID uuid.UUID, fn func(ctx context.Context, tx Tx) error) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	game, ok := l.games[gameID]
	if !ok {
		return ErrGameNotFound
	}
	return fn(ctx, &memTx{ledger: l, game: *game})
}

func (l *memLedger) ListRoster(ctx context.Context, gameID uuid.UUID) ([]models.RosterEntry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []models.RosterEntry
	for _, r := range l.regs {
		if r.GameID == gameID && r.Live() {
			out = append(out, models.RosterEntry{Registration: *r})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Status != out[j].Status {
			return out[i].Status == models.RegistrationActive
		}
		return queueLess(out[i].Registration, out[j].Registration)
	})
	return out, nil
}

func (l *memLedger) find(id uuid.UUID) *models.Registration {
	for _, r := range l.regs {
		if r.ID == id {
			return r
		}
	}
	return nil
}

// memTx operates on the ledger under the already-held lock.
type memTx struct {
	ledger *memLedger
	game   models.Game
}

func (t *memTx) Game() models.Game { return t.game }

func (t *memTx) live() []*models.Registration {
	var out []*models.Registration
	for _, r := range t.ledger.regs {
		if r.GameID == t.game.ID && r.Live() {
			out = append(out, r)
		}
	}
	return out
}

func (t *memTx) LiveRegistration(_ context.Context, userID uuid.UUID) (*models.Registration, error) {
	for _, r := range t.live() {
		if r.UserID == userID {
			cp := *r
			return &cp, nil
		}
	}
	return nil, nil
}

func (t *memTx) CountActive(_ context.Context) (int, error) {
	n := 0
	for _, r := range t.live() {
		if r.Status == models.RegistrationActive {
			n++
		}
	}
	return n, nil
}

func (t *memTx) CountStandby(_ context.Context) (int, error) {
	n := 0
	for _, r := range t.live() {
		if r.Status == models.RegistrationStandby {
			n++
		}
	}
	return n, nil
}

func (t *memTx) ListActive(_ context.Context) ([]models.Registration, error) {
	var out []models.Registration
	for _, r := range t.live() {
		if r.Status == models.RegistrationActive {
			out = append(out, *r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (t *memTx) ListStandby(_ context.Context) ([]models.Registration, error) {
	var out []models.Registration
	for _, r := range t.live() {
		if r.Status == models.RegistrationStandby {
			out = append(out, *r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return queueLess(out[i], out[j]) })
	return out, nil
}

func (t *memTx) NextQueuePosition(_ context.Context) (int, error) {
	max := 0
	for _, r := range t.live() {
		if r.Status == models.RegistrationStandby && r.QueuePosition != nil && *r.QueuePosition > max {
			max = *r.QueuePosition
		}
	}
	return max + 1, nil
}

func (t *memTx) Insert(_ context.Context, reg *models.Registration) error {
	reg.ID = uuid.New()
	t.ledger.seq++
	reg.CreatedAt = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(t.ledger.seq) * time.Second)
	reg.UpdatedAt = reg.CreatedAt
	cp := *reg
	t.ledger.regs = append(t.ledger.regs, &cp)
	return nil
}

func (t *memTx) SetStatus(_ context.Context, id uuid.UUID, status models.RegistrationStatus, queuePosition *int) error {
	r := t.ledger.find(id)
	if r == nil {
		return ErrNotRegistered
	}
	r.Status = status
	r.QueuePosition = queuePosition
	return nil
}

func (t *memTx) SetCheckIn(_ context.Context, id uuid.UUID, status models.CheckInStatus) error {
	r := t.ledger.find(id)
	if r == nil {
		return ErrNotRegistered
	}
	r.CheckInStatus = status
	return nil
}

func (t *memTx) SetETA(_ context.Context, id uuid.UUID, etaMinutes *int) error {
	r := t.ledger.find(id)
	if r == nil {
		return ErrNotRegistered
	}
	r.ETAMinutes = etaMinutes
	return nil
}

// queueLess orders standby registrations by queue position ascending with
// nulls last, then by created_at.
func queueLess(a, b models.Registration) bool {
	switch {
	case a.QueuePosition != nil && b.QueuePosition != nil:
		if *a.QueuePosition != *b.QueuePosition {
			return *a.QueuePosition < *b.QueuePosition
		}
	case a.QueuePosition != nil:
		return true
	case b.QueuePosition != nil:
		return false
	}
	return a.CreatedAt.Before(b.CreatedAt)
}
