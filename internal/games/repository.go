package games

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ysrc26/footbal-squad-manager/internal/models"
)

// Repository handles game persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a game repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const gameColumns = `id, date, kickoff_time, deadline_time, wave1_opens_at, wave2_opens_at,
	status, is_auto_generated, max_players, max_standby, created_at, updated_at`

func scanGame(row pgx.Row) (*models.Game, error) {
	var g models.Game
	err := row.Scan(&g.ID, &g.Date, &g.KickoffTime, &g.DeadlineTime, &g.Wave1OpensAt, &g.Wave2OpensAt,
		&g.Status, &g.IsAutoGenerated, &g.MaxPlayers, &g.MaxStandby, &g.CreatedAt, &g.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &g, nil
}

// Create inserts a new game.
func (r *Repository) Create(ctx context.Context, g *models.Game) error {
	const q = `INSERT INTO games (date, kickoff_time, deadline_time, wave1_opens_at, wave2_opens_at,
			status, is_auto_generated, max_players, max_standby)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, q, g.Date, g.KickoffTime, g.DeadlineTime, g.Wave1OpensAt, g.Wave2OpensAt,
		g.Status, g.IsAutoGenerated, g.MaxPlayers, g.MaxStandby).
		Scan(&g.ID, &g.CreatedAt, &g.UpdatedAt)
}

// GetByID returns a game by ID, or nil if none exists.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Game, error) {
	return scanGame(r.pool.QueryRow(ctx, `SELECT `+gameColumns+` FROM games WHERE id = $1`, id))
}

// Current returns the earliest upcoming game still accepting players:
// date today or later, status in {scheduled, open_for_residents, open_for_all}.
// Returns nil when no such game exists.
func (r *Repository) Current(ctx context.Context) (*models.Game, error) {
	const q = `SELECT ` + gameColumns + ` FROM games
		WHERE date >= CURRENT_DATE
		  AND status IN ('scheduled', 'open_for_residents', 'open_for_all')
		ORDER BY date ASC
		LIMIT 1`
	return scanGame(r.pool.QueryRow(ctx, q))
}

// ExistsOnDate reports whether any game is already scheduled for the date.
func (r *Repository) ExistsOnDate(ctx context.Context, date time.Time) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM games WHERE date = $1)`, date).Scan(&exists)
	return exists, err
}

// UpdateStatus sets a game's status.
func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, status models.GameStatus) error {
	tag, err := r.pool.Exec(ctx, `UPDATE games SET status = $2, updated_at = NOW() WHERE id = $1`, id, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// Delete removes a game and (via cascade) its registrations.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM games WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
