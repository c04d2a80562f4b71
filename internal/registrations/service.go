package registrations

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ysrc26/footbal-squad-manager/internal/models"
)

// txAttempts bounds retries of serialization failures before surfacing
// ErrConflict to the caller.
const txAttempts = 3

// Notifier receives best-effort push events after a transaction commits.
type Notifier interface {
	Promoted(ctx context.Context, userID, gameID uuid.UUID)
	LateSwap(ctx context.Context, promotedUserID, demotedUserID, gameID uuid.UUID)
}

// RosterEvents receives roster-changed events for realtime fan-out.
type RosterEvents interface {
	RosterChanged(gameID uuid.UUID, event string)
}

// Player identifies the registering user as supplied by the auth layer.
type Player struct {
	ID         uuid.UUID
	IsResident bool
}

// RegisterResult is the outcome of Register.
type RegisterResult struct {
	RegistrationID uuid.UUID                 `json:"registration_id"`
	Status         models.RegistrationStatus `json:"status"`
	QueuePosition  *int                      `json:"queue_position,omitempty"`
}

// CancelResult is the outcome of Cancel.
type CancelResult struct {
	CancelledID    uuid.UUID  `json:"cancelled_registration_id"`
	PromotedRegID  *uuid.UUID `json:"promoted_registration_id,omitempty"`
	PromotedUserID *uuid.UUID `json:"promoted_user_id,omitempty"`
}

// Swap is one late-swap pairing.
type Swap struct {
	PromotedUserID uuid.UUID `json:"promoted_user_id"`
	DemotedUserID  uuid.UUID `json:"demoted_user_id"`
}

// SweepResult is the outcome of ProcessLateSwaps.
type SweepResult struct {
	SwapCount int    `json:"swap_count"`
	Swaps     []Swap `json:"swaps"`
}

// Service is the registration state machine. Every operation runs as one
// serialized per-game transaction against the ledger; notifications and
// roster events fire only after the transaction commits.
type Service struct {
	ledger   Ledger
	notifier Notifier
	events   RosterEvents
	logger   *zap.Logger
	now      func() time.Time
}

// NewService creates the registration state machine. notifier and events
// may be nil.
func NewService(ledger Ledger, notifier Notifier, events RosterEvents, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		ledger:   ledger,
		notifier: notifier,
		events:   events,
		logger:   logger,
		now:      time.Now,
	}
}

// inGameTx runs fn with bounded retry on serialization failures.
func (s *Service) inGameTx(ctx context.Context, gameID uuid.UUID, fn func(ctx context.Context, tx Tx) error) error {
	var err error
	for attempt := 0; attempt < txAttempts; attempt++ {
		if err = s.ledger.InGameTx(ctx, gameID, fn); err == nil || !IsSerializationFailure(err) {
			return err
		}
		s.logger.Warn("serialization conflict, retrying",
			zap.String("game_id", gameID.String()), zap.Int("attempt", attempt+1))
		time.Sleep(time.Duration(attempt+1) * 25 * time.Millisecond)
	}
	return fmt.Errorf("%w: %v", ErrConflict, err)
}

// Register signs the player up for the game. The active/standby decision
// is made against the roster count inside the transaction, so a burst of
// concurrent registrations can never overfill the active roster.
func (s *Service) Register(ctx context.Context, player Player, gameID uuid.UUID) (*RegisterResult, error) {
	var result *RegisterResult
	err := s.inGameTx(ctx, gameID, func(ctx context.Context, tx Tx) error {
		result = nil
		game := tx.Game()

		if e := CheckEligibility(game, player.IsResident, s.now()); !e.Allowed {
			return fmt.Errorf("%w: %s", ErrRegistrationClosed, e.Reason)
		}

		existing, err := tx.LiveRegistration(ctx, player.ID)
		if err != nil {
			return err
		}
		if existing != nil {
			return ErrAlreadyRegistered
		}

		active, err := tx.CountActive(ctx)
		if err != nil {
			return err
		}

		reg := &models.Registration{
			UserID:        player.ID,
			GameID:        gameID,
			CheckInStatus: models.CheckInPending,
		}
		if active < game.MaxPlayers {
			reg.Status = models.RegistrationActive
		} else {
			standby, err := tx.CountStandby(ctx)
			if err != nil {
				return err
			}
			if standby >= game.MaxStandby {
				return ErrStandbyFull
			}
			pos, err := tx.NextQueuePosition(ctx)
			if err != nil {
				return err
			}
			reg.Status = models.RegistrationStandby
			reg.QueuePosition = &pos
		}

		if err := tx.Insert(ctx, reg); err != nil {
			return err
		}
		result = &RegisterResult{
			RegistrationID: reg.ID,
			Status:         reg.Status,
			QueuePosition:  reg.QueuePosition,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(gameID, "registered")
	s.logger.Info("player registered",
		zap.String("game_id", gameID.String()),
		zap.String("user_id", player.ID.String()),
		zap.String("status", string(result.Status)))
	return result, nil
}

// Cancel withdraws the player's live registration. Cancelling an active
// registration promotes the head of the standby queue in the same
// transaction, so a concurrent Register can neither steal the freed slot
// nor observe an empty one.
func (s *Service) Cancel(ctx context.Context, userID, gameID uuid.UUID) (*CancelResult, error) {
	var result *CancelResult
	err := s.inGameTx(ctx, gameID, func(ctx context.Context, tx Tx) error {
		result = nil

		reg, err := tx.LiveRegistration(ctx, userID)
		if err != nil {
			return err
		}
		if reg == nil {
			return ErrNotRegistered
		}

		if err := tx.SetStatus(ctx, reg.ID, models.RegistrationCancelled, nil); err != nil {
			return err
		}
		result = &CancelResult{CancelledID: reg.ID}

		if reg.Status != models.RegistrationActive {
			return nil
		}
		standby, err := tx.ListStandby(ctx)
		if err != nil {
			return err
		}
		if len(standby) == 0 {
			return nil
		}
		head := standby[0]
		if err := tx.SetStatus(ctx, head.ID, models.RegistrationActive, nil); err != nil {
			return err
		}
		result.PromotedRegID = &head.ID
		result.PromotedUserID = &head.UserID
		return nil
	})
	if err != nil {
		return nil, err
	}

	if result.PromotedUserID != nil && s.notifier != nil {
		s.notifier.Promoted(ctx, *result.PromotedUserID, gameID)
	}
	s.publish(gameID, "cancelled")
	s.logger.Info("registration cancelled",
		zap.String("game_id", gameID.String()),
		zap.String("user_id", userID.String()),
		zap.Bool("promotion", result.PromotedUserID != nil))
	return result, nil
}

// ProcessLateSwaps pairs checked-in standby players with actives who have
// not checked in, worst offender first. Running the sweep twice without an
// intervening check-in or registration yields zero additional swaps.
func (s *Service) ProcessLateSwaps(ctx context.Context, gameID uuid.UUID) (*SweepResult, error) {
	var result *SweepResult
	err := s.inGameTx(ctx, gameID, func(ctx context.Context, tx Tx) error {
		result = &SweepResult{Swaps: []Swap{}}

		actives, err := tx.ListActive(ctx)
		if err != nil {
			return err
		}
		standbys, err := tx.ListStandby(ctx)
		if err != nil {
			return err
		}

		demote := demotionCandidates(actives)
		promote := make([]models.Registration, 0, len(standbys))
		for _, reg := range standbys {
			if reg.CheckInStatus == models.CheckInCheckedIn {
				promote = append(promote, reg)
			}
		}

		pairs := len(demote)
		if len(promote) < pairs {
			pairs = len(promote)
		}
		if pairs == 0 {
			return nil
		}

		// Tail positions for the demoted, computed against the queue
		// as it stood before the sweep.
		pos, err := tx.NextQueuePosition(ctx)
		if err != nil {
			return err
		}
		for i := 0; i < pairs; i++ {
			d, p := demote[i], promote[i]
			tail := pos
			pos++
			if err := tx.SetStatus(ctx, d.ID, models.RegistrationStandby, &tail); err != nil {
				return err
			}
			if err := tx.SetStatus(ctx, p.ID, models.RegistrationActive, nil); err != nil {
				return err
			}
			result.Swaps = append(result.Swaps, Swap{PromotedUserID: p.UserID, DemotedUserID: d.UserID})
		}
		result.SwapCount = pairs
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.notifier != nil {
		for _, swap := range result.Swaps {
			s.notifier.LateSwap(ctx, swap.PromotedUserID, swap.DemotedUserID, gameID)
		}
	}
	if result.SwapCount > 0 {
		s.publish(gameID, "late_swap")
	}
	s.logger.Info("late-swap sweep finished",
		zap.String("game_id", gameID.String()), zap.Int("swaps", result.SwapCount))
	return result, nil
}

// ReportETA records the player's self-reported lateness in minutes.
func (s *Service) ReportETA(ctx context.Context, userID, gameID uuid.UUID, etaMinutes int) error {
	err := s.inGameTx(ctx, gameID, func(ctx context.Context, tx Tx) error {
		reg, err := tx.LiveRegistration(ctx, userID)
		if err != nil {
			return err
		}
		if reg == nil {
			return ErrNotRegistered
		}
		return tx.SetETA(ctx, reg.ID, &etaMinutes)
	})
	if err != nil {
		return err
	}
	s.publish(gameID, "eta_reported")
	return nil
}

// Roster lists the game's live registrations with player names.
func (s *Service) Roster(ctx context.Context, gameID uuid.UUID) ([]models.RosterEntry, error) {
	return s.ledger.ListRoster(ctx, gameID)
}

// demotionCandidates returns the active registrations that have not
// checked in, worst first: highest reported lateness, then earliest
// registration among equals.
func demotionCandidates(actives []models.Registration) []models.Registration {
	var out []models.Registration
	for _, reg := range actives {
		if reg.CheckInStatus != models.CheckInCheckedIn {
			out = append(out, reg)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		ei, ej := etaOrZero(out[i]), etaOrZero(out[j])
		if ei != ej {
			return ei > ej
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

func etaOrZero(reg models.Registration) int {
	if reg.ETAMinutes == nil {
		return 0
	}
	return *reg.ETAMinutes
}

func (s *Service) publish(gameID uuid.UUID, event string) {
	if s.events != nil {
		s.events.RosterChanged(gameID, event)
	}
}
