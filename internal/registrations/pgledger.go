package registrations

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ysrc26/footbal-squad-manager/internal/models"
)

// PGLedger is the PostgreSQL-backed registration ledger.
type PGLedger struct {
	pool *pgxpool.Pool
}

// NewPGLedger creates a Postgres registration ledger.
func NewPGLedger(pool *pgxpool.Pool) *PGLedger {
	return &PGLedger{pool: pool}
}

const regColumns = `id, user_id, game_id, status, check_in_status, queue_position, eta_minutes, created_at, updated_at`

func scanRegistration(row pgx.Row) (*models.Registration, error) {
	var reg models.Registration
	err := row.Scan(&reg.ID, &reg.UserID, &reg.GameID, &reg.Status, &reg.CheckInStatus,
		&reg.QueuePosition, &reg.ETAMinutes, &reg.CreatedAt, &reg.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &reg, nil
}

func collectRegistrations(rows pgx.Rows) ([]models.Registration, error) {
	defer rows.Close()
	var list []models.Registration
	for rows.Next() {
		var reg models.Registration
		if err := rows.Scan(&reg.ID, &reg.UserID, &reg.GameID, &reg.Status, &reg.CheckInStatus,
			&reg.QueuePosition, &reg.ETAMinutes, &reg.CreatedAt, &reg.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, reg)
	}
	return list, rows.Err()
}

// InGameTx runs fn inside a transaction holding a row lock on the game.
// The lock serializes all roster mutations for that game; games are
// independent of each other.
func (l *PGLedger) InGameTx(ctx context.Context, gameID uuid.UUID, fn func(ctx context.Context, tx Tx) error) error {
	tx, err := l.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	const q = `SELECT id, date, kickoff_time, deadline_time, wave1_opens_at, wave2_opens_at,
			status, is_auto_generated, max_players, max_standby, created_at, updated_at
		FROM games WHERE id = $1 FOR UPDATE`
	var g models.Game
	err = tx.QueryRow(ctx, q, gameID).Scan(&g.ID, &g.Date, &g.KickoffTime, &g.DeadlineTime,
		&g.Wave1OpensAt, &g.Wave2OpensAt, &g.Status, &g.IsAutoGenerated, &g.MaxPlayers, &g.MaxStandby,
		&g.CreatedAt, &g.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrGameNotFound
		}
		return fmt.Errorf("lock game: %w", err)
	}

	if err := fn(ctx, &pgTx{tx: tx, game: g}); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// ListRoster returns live registrations with player names, actives first,
// then standby in promotion order.
func (l *PGLedger) ListRoster(ctx context.Context, gameID uuid.UUID) ([]models.RosterEntry, error) {
	const q = `SELECT r.id, r.user_id, r.game_id, r.status, r.check_in_status, r.queue_position, r.eta_minutes,
			r.created_at, r.updated_at, u.full_name
		FROM registrations r
		JOIN users u ON u.id = r.user_id
		WHERE r.game_id = $1 AND r.status IN ('active', 'standby')
		ORDER BY r.status ASC, r.queue_position ASC NULLS LAST, r.created_at ASC`
	rows, err := l.pool.Query(ctx, q, gameID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.RosterEntry
	for rows.Next() {
		var e models.RosterEntry
		if err := rows.Scan(&e.ID, &e.UserID, &e.GameID, &e.Status, &e.CheckInStatus, &e.QueuePosition,
			&e.ETAMinutes, &e.CreatedAt, &e.UpdatedAt, &e.FullName); err != nil {
			return nil, err
		}
		list = append(list, e)
	}
	return list, rows.Err()
}

// pgTx implements Tx over a pgx transaction with the game row locked.
type pgTx struct {
	tx   pgx.Tx
	game models.Game
}

func (t *pgTx) Game() models.Game { return t.game }

func (t *pgTx) LiveRegistration(ctx context.Context, userID uuid.UUID) (*models.Registration, error) {
	const q = `SELECT ` + regColumns + ` FROM registrations
		WHERE game_id = $1 AND user_id = $2 AND status <> 'cancelled'`
	return scanRegistration(t.tx.QueryRow(ctx, q, t.game.ID, userID))
}

func (t *pgTx) CountActive(ctx context.Context) (int, error) {
	var n int
	err := t.tx.QueryRow(ctx,
		`SELECT COUNT(*) FROM registrations WHERE game_id = $1 AND status = 'active'`, t.game.ID).Scan(&n)
	return n, err
}

func (t *pgTx) CountStandby(ctx context.Context) (int, error) {
	var n int
	err := t.tx.QueryRow(ctx,
		`SELECT COUNT(*) FROM registrations WHERE game_id = $1 AND status = 'standby'`, t.game.ID).Scan(&n)
	return n, err
}

func (t *pgTx) ListActive(ctx context.Context) ([]models.Registration, error) {
	rows, err := t.tx.Query(ctx, `SELECT `+regColumns+` FROM registrations
		WHERE game_id = $1 AND status = 'active' ORDER BY created_at ASC`, t.game.ID)
	if err != nil {
		return nil, err
	}
	return collectRegistrations(rows)
}

func (t *pgTx) ListStandby(ctx context.Context) ([]models.Registration, error) {
	rows, err := t.tx.Query(ctx, `SELECT `+regColumns+` FROM registrations
		WHERE game_id = $1 AND status = 'standby'
		ORDER BY queue_position ASC NULLS LAST, created_at ASC`, t.game.ID)
	if err != nil {
		return nil, err
	}
	return collectRegistrations(rows)
}

func (t *pgTx) NextQueuePosition(ctx context.Context) (int, error) {
	var next int
	err := t.tx.QueryRow(ctx, `SELECT COALESCE(MAX(queue_position), 0) + 1
		FROM registrations WHERE game_id = $1 AND status = 'standby'`, t.game.ID).Scan(&next)
	return next, err
}

func (t *pgTx) Insert(ctx context.Context, reg *models.Registration) error {
	const q = `INSERT INTO registrations (user_id, game_id, status, check_in_status, queue_position)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`
	return t.tx.QueryRow(ctx, q, reg.UserID, t.game.ID, reg.Status, reg.CheckInStatus, reg.QueuePosition).
		Scan(&reg.ID, &reg.CreatedAt, &reg.UpdatedAt)
}

func (t *pgTx) SetStatus(ctx context.Context, id uuid.UUID, status models.RegistrationStatus, queuePosition *int) error {
	_, err := t.tx.Exec(ctx, `UPDATE registrations
		SET status = $2, queue_position = $3, updated_at = NOW() WHERE id = $1`, id, status, queuePosition)
	return err
}

func (t *pgTx) SetCheckIn(ctx context.Context, id uuid.UUID, status models.CheckInStatus) error {
	_, err := t.tx.Exec(ctx, `UPDATE registrations
		SET check_in_status = $2, updated_at = NOW() WHERE id = $1`, id, status)
	return err
}

func (t *pgTx) SetETA(ctx context.Context, id uuid.UUID, etaMinutes *int) error {
	_, err := t.tx.Exec(ctx, `UPDATE registrations
		SET eta_minutes = $2, updated_at = NOW() WHERE id = $1`, id, etaMinutes)
	return err
}

// IsSerializationFailure reports whether err is a Postgres serialization
// or deadlock failure worth retrying.
func IsSerializationFailure(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "40001" || pgErr.Code == "40P01"
	}
	return false
}
