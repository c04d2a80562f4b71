package checkin

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/ysrc26/footbal-squad-manager/config"
	"github.com/ysrc26/footbal-squad-manager/internal/models"
	"github.com/ysrc26/footbal-squad-manager/internal/registrations"
)

// stubLedger holds one game and at most one registration per user.
type stubLedger struct {
	game models.Game
	regs map[uuid.UUID]*models.Registration
}

func (l *stubLedger) InGameTx(ctx context.Context, gameID uuid.UUID, fn func(ctx context.Context, tx registrations.Tx) error) error {
	if gameID != l.game.ID {
		return registrations.ErrGameNotFound
	}
	return fn(ctx, &stubTx{ledger: l})
}

func (l *stubLedger) ListRoster(context.Context, uuid.UUID) ([]models.RosterEntry, error) {
	return nil, nil
}

type stubTx struct {
	ledger *stubLedger
}

func (t *stubTx) Game() models.Game { return t.ledger.game }

func (t *stubTx) LiveRegistration(_ context.Context, userID uuid.UUID) (*models.Registration, error) {
	if r, ok := t.ledger.regs[userID]; ok && r.Live() {
		cp := *r
		return &cp, nil
	}
	return nil, nil
}

func (t *stubTx) SetCheckIn(_ context.Context, id uuid.UUID, status models.CheckInStatus) error {
	for _, r := range t.ledger.regs {
		if r.ID == id {
			r.CheckInStatus = status
			return nil
		}
	}
	return registrations.ErrNotRegistered
}

func (t *stubTx) CountActive(context.Context) (int, error)                           { return 0, nil }
func (t *stubTx) CountStandby(context.Context) (int, error)                          { return 0, nil }
func (t *stubTx) ListActive(context.Context) ([]models.Registration, error)          { return nil, nil }
func (t *stubTx) ListStandby(context.Context) ([]models.Registration, error)         { return nil, nil }
func (t *stubTx) NextQueuePosition(context.Context) (int, error)                     { return 1, nil }
func (t *stubTx) Insert(context.Context, *models.Registration) error                 { return nil }
func (t *stubTx) SetStatus(context.Context, uuid.UUID, models.RegistrationStatus, *int) error {
	return nil
}
func (t *stubTx) SetETA(context.Context, uuid.UUID, *int) error { return nil }

type stubSettings struct {
	app *models.AppSettings
	err error
}

func (s *stubSettings) Get(context.Context) (*models.AppSettings, error) {
	return s.app, s.err
}

const (
	fieldLat = 32.0853
	fieldLon = 34.7818
)

func newTestVerifier(t *testing.T, ledger *stubLedger, now time.Time) *Verifier {
	t.Helper()
	lat, lon := fieldLat, fieldLon
	v := NewVerifier(ledger, &stubSettings{app: &models.AppSettings{
		FieldLatitude:  &lat,
		FieldLongitude: &lon,
		QRSecretKey:    "field-secret",
	}}, nil, config.CheckInConfig{RadiusMeters: 10, OpenLeadMinutes: 20}, "UTC", nil)
	v.now = func() time.Time { return now }
	return v
}

func openWindowLedger(userID uuid.UUID, status models.RegistrationStatus) (*stubLedger, time.Time) {
	kickoff := time.Date(2026, 8, 29, 18, 45, 0, 0, time.UTC)
	ledger := &stubLedger{
		game: models.Game{
			ID:          uuid.New(),
			Date:        time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC),
			KickoffTime: kickoff,
		},
		regs: map[uuid.UUID]*models.Registration{
			userID: {
				ID:            uuid.New(),
				UserID:        userID,
				Status:        status,
				CheckInStatus: models.CheckInPending,
			},
		},
	}
	return ledger, kickoff.Add(-10 * time.Minute)
}

func TestCheckInSuccess(t *testing.T) {
	userID := uuid.New()
	ledger, now := openWindowLedger(userID, models.RegistrationActive)
	v := newTestVerifier(t, ledger, now)

	if err := v.CheckIn(context.Background(), userID, ledger.game.ID, "field-secret", fieldLat, fieldLon); err != nil {
		t.Fatalf("check in: %v", err)
	}
	if got := ledger.regs[userID].CheckInStatus; got != models.CheckInCheckedIn {
		t.Fatalf("check-in status = %s, want checked_in", got)
	}
}

func TestCheckInWrongSecret(t *testing.T) {
	userID := uuid.New()
	ledger, now := openWindowLedger(userID, models.RegistrationActive)
	v := newTestVerifier(t, ledger, now)

	err := v.CheckIn(context.Background(), userID, ledger.game.ID, "guessed", fieldLat, fieldLon)
	if !errors.Is(err, ErrInvalidCode) {
		t.Fatalf("got %v, want ErrInvalidCode", err)
	}
}

func TestCheckInOutsideGeofence(t *testing.T) {
	userID := uuid.New()
	ledger, now := openWindowLedger(userID, models.RegistrationActive)
	v := newTestVerifier(t, ledger, now)

	// 0.001 degrees of latitude is roughly 111 meters.
	err := v.CheckIn(context.Background(), userID, ledger.game.ID, "field-secret", fieldLat+0.001, fieldLon)
	var tooFar *TooFarError
	if !errors.As(err, &tooFar) {
		t.Fatalf("got %v, want TooFarError", err)
	}
	if tooFar.DistanceMeters < 100 || tooFar.DistanceMeters > 125 {
		t.Fatalf("distance = %.1f, want roughly 111m", tooFar.DistanceMeters)
	}
	if ledger.regs[userID].CheckInStatus != models.CheckInPending {
		t.Fatal("geofence rejection still flipped the check-in flag")
	}
}

func TestCheckInVenueNotConfigured(t *testing.T) {
	userID := uuid.New()
	ledger, now := openWindowLedger(userID, models.RegistrationActive)
	v := NewVerifier(ledger, &stubSettings{app: &models.AppSettings{QRSecretKey: "field-secret"}},
		nil, config.CheckInConfig{RadiusMeters: 10, OpenLeadMinutes: 20}, "UTC", nil)
	v.now = func() time.Time { return now }

	err := v.CheckIn(context.Background(), userID, ledger.game.ID, "field-secret", fieldLat, fieldLon)
	if !errors.Is(err, ErrVenueNotConfigured) {
		t.Fatalf("got %v, want ErrVenueNotConfigured", err)
	}
}

func TestCheckInBeforeWindow(t *testing.T) {
	userID := uuid.New()
	ledger, _ := openWindowLedger(userID, models.RegistrationActive)
	early := ledger.game.KickoffTime.Add(-30 * time.Minute)
	v := newTestVerifier(t, ledger, early)

	err := v.CheckIn(context.Background(), userID, ledger.game.ID, "field-secret", fieldLat, fieldLon)
	if !errors.Is(err, ErrWindowClosed) {
		t.Fatalf("got %v, want ErrWindowClosed", err)
	}
}

// Standby players check in at the field so the late-swap sweep can
// promote them.
func TestCheckInStandby(t *testing.T) {
	userID := uuid.New()
	ledger, now := openWindowLedger(userID, models.RegistrationStandby)
	v := newTestVerifier(t, ledger, now)

	if err := v.CheckIn(context.Background(), userID, ledger.game.ID, "field-secret", fieldLat, fieldLon); err != nil {
		t.Fatalf("standby check in: %v", err)
	}
	if got := ledger.regs[userID].CheckInStatus; got != models.CheckInCheckedIn {
		t.Fatalf("check-in status = %s, want checked_in", got)
	}
}

func TestCheckInNotRegistered(t *testing.T) {
	userID := uuid.New()
	ledger, now := openWindowLedger(userID, models.RegistrationActive)
	v := newTestVerifier(t, ledger, now)

	err := v.CheckIn(context.Background(), uuid.New(), ledger.game.ID, "field-secret", fieldLat, fieldLon)
	if !errors.Is(err, ErrNotRegistered) {
		t.Fatalf("got %v, want ErrNotRegistered", err)
	}
}

func TestCheckInTwice(t *testing.T) {
	userID := uuid.New()
	ledger, now := openWindowLedger(userID, models.RegistrationActive)
	v := newTestVerifier(t, ledger, now)
	ctx := context.Background()

	if err := v.CheckIn(ctx, userID, ledger.game.ID, "field-secret", fieldLat, fieldLon); err != nil {
		t.Fatalf("first check in: %v", err)
	}
	err := v.CheckIn(ctx, userID, ledger.game.ID, "field-secret", fieldLat, fieldLon)
	if !errors.Is(err, ErrNotRegistered) {
		t.Fatalf("second check in: got %v, want ErrNotRegistered", err)
	}
}
