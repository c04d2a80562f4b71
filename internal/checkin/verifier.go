// Package checkin validates QR check-ins: shared secret, time window and
// the geofence around the venue.
package checkin

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ysrc26/footbal-squad-manager/config"
	"github.com/ysrc26/footbal-squad-manager/internal/models"
	"github.com/ysrc26/footbal-squad-manager/internal/registrations"
	"github.com/ysrc26/footbal-squad-manager/pkg/geo"
)

// SettingsSource provides the venue coordinates and QR secret.
type SettingsSource interface {
	Get(ctx context.Context) (*models.AppSettings, error)
}

var (
	// ErrInvalidCode means the scanned secret does not match the configured QR secret.
	ErrInvalidCode = errors.New("invalid check-in code")
	// ErrWindowClosed means check-in is not open at this time.
	ErrWindowClosed = errors.New("check-in window is closed")
	// ErrNotRegistered means the user has no active registration awaiting check-in.
	ErrNotRegistered = errors.New("no active registration to check in")
	// ErrVenueNotConfigured means the venue coordinates are missing from settings.
	ErrVenueNotConfigured = errors.New("venue location not configured")
)

// TooFarError reports a geofence violation with the measured distance.
type TooFarError struct {
	DistanceMeters float64
	RadiusMeters   float64
}

func (e *TooFarError) Error() string {
	return fmt.Sprintf("too far from the field: %.1fm (allowed %.0fm)", e.DistanceMeters, e.RadiusMeters)
}

// Verifier performs the check-in validation gate and flips the
// registration's check-in flag inside a serialized game transaction.
type Verifier struct {
	ledger   registrations.Ledger
	settings SettingsSource
	events   registrations.RosterEvents
	cfg      config.CheckInConfig
	loc      *time.Location
	logger   *zap.Logger
	now      func() time.Time
}

// NewVerifier creates a check-in verifier. events may be nil. The timezone
// is used for the game-day midnight cutoff; an unknown name falls back to UTC.
func NewVerifier(ledger registrations.Ledger, settingsRepo SettingsSource, events registrations.RosterEvents,
	cfg config.CheckInConfig, timezone string, logger *zap.Logger) *Verifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		logger.Warn("unknown timezone, using UTC", zap.String("timezone", timezone))
		loc = time.UTC
	}
	return &Verifier{
		ledger:   ledger,
		settings: settingsRepo,
		events:   events,
		cfg:      cfg,
		loc:      loc,
		logger:   logger,
		now:      time.Now,
	}
}

// CheckIn validates the scanned secret, the time window, the caller's
// registration and the geofence, then marks the registration checked in.
func (v *Verifier) CheckIn(ctx context.Context, userID, gameID uuid.UUID, scannedSecret string, lat, lon float64) error {
	app, err := v.settings.Get(ctx)
	if err != nil {
		return err
	}
	if scannedSecret != app.QRSecretKey {
		return ErrInvalidCode
	}
	if app.FieldLatitude == nil || app.FieldLongitude == nil {
		return ErrVenueNotConfigured
	}

	distance := geo.Distance(lat, lon, *app.FieldLatitude, *app.FieldLongitude)
	if distance > v.cfg.RadiusMeters {
		return &TooFarError{DistanceMeters: distance, RadiusMeters: v.cfg.RadiusMeters}
	}

	err = v.ledger.InGameTx(ctx, gameID, func(ctx context.Context, tx registrations.Tx) error {
		game := tx.Game()
		if ok, reason := WindowOpen(game, v.now(), v.cfg.OpenLeadMinutes, v.loc); !ok {
			return fmt.Errorf("%w: %s", ErrWindowClosed, reason)
		}

		// Standby players check in too: the late-swap sweep only promotes
		// standbys who are at the field.
		reg, err := tx.LiveRegistration(ctx, userID)
		if err != nil {
			return err
		}
		if reg == nil || reg.CheckInStatus == models.CheckInCheckedIn {
			return ErrNotRegistered
		}
		return tx.SetCheckIn(ctx, reg.ID, models.CheckInCheckedIn)
	})
	if err != nil {
		return err
	}

	if v.events != nil {
		v.events.RosterChanged(gameID, "checked_in")
	}
	v.logger.Info("player checked in",
		zap.String("game_id", gameID.String()),
		zap.String("user_id", userID.String()),
		zap.Float64("distance_m", distance))
	return nil
}
