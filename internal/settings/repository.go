package settings

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ysrc26/footbal-squad-manager/internal/models"
)

// ErrNotConfigured is returned when the singleton settings row is missing.
var ErrNotConfigured = errors.New("app settings not configured")

// Repository handles the singleton app_settings row.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a settings repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const settingsColumns = `id, field_latitude, field_longitude, qr_secret_key, rules_content, created_at, updated_at`

// Get returns the settings row.
func (r *Repository) Get(ctx context.Context) (*models.AppSettings, error) {
	var s models.AppSettings
	err := r.pool.QueryRow(ctx, `SELECT `+settingsColumns+` FROM app_settings LIMIT 1`).
		Scan(&s.ID, &s.FieldLatitude, &s.FieldLongitude, &s.QRSecretKey, &s.RulesContent, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotConfigured
		}
		return nil, err
	}
	return &s, nil
}

// Update overwrites venue coordinates, QR secret and rules content.
func (r *Repository) Update(ctx context.Context, s *models.AppSettings) error {
	const q = `UPDATE app_settings
		SET field_latitude = $2, field_longitude = $3, qr_secret_key = $4, rules_content = $5, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`
	return r.pool.QueryRow(ctx, q, s.ID, s.FieldLatitude, s.FieldLongitude, s.QRSecretKey, s.RulesContent).
		Scan(&s.UpdatedAt)
}
