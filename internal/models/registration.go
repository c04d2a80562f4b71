package models

import (
	"time"

	"github.com/google/uuid"
)

// RegistrationStatus is the roster state of a registration.
type RegistrationStatus string

const (
	RegistrationActive    RegistrationStatus = "active"
	RegistrationStandby   RegistrationStatus = "standby"
	RegistrationCancelled RegistrationStatus = "cancelled"
	RegistrationNoShow    RegistrationStatus = "no_show"
)

// CheckInStatus tracks whether a player scanned the QR at the field.
type CheckInStatus string

const (
	CheckInPending   CheckInStatus = "pending"
	CheckInCheckedIn CheckInStatus = "checked_in"
	CheckInNoShow    CheckInStatus = "no_show"
)

// Registration is one user's sign-up for one game. At most one
// non-cancelled registration exists per (user, game).
type Registration struct {
	ID            uuid.UUID          `json:"id"`
	UserID        uuid.UUID          `json:"user_id"`
	GameID        uuid.UUID          `json:"game_id"`
	Status        RegistrationStatus `json:"status"`
	CheckInStatus CheckInStatus      `json:"check_in_status"`
	QueuePosition *int               `json:"queue_position,omitempty"` // meaningful only while status=standby
	ETAMinutes    *int               `json:"eta_minutes,omitempty"`    // self-reported lateness
	CreatedAt     time.Time          `json:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at"`
}

// Live reports whether the registration still occupies a roster or queue slot.
func (r Registration) Live() bool {
	return r.Status == RegistrationActive || r.Status == RegistrationStandby
}

// RosterEntry is a registration joined with the player's display name.
type RosterEntry struct {
	Registration
	FullName string `json:"full_name"`
}
