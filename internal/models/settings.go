package models

import (
	"time"

	"github.com/google/uuid"
)

// AppSettings is the singleton app configuration row: venue GPS
// coordinates for the geofence and the shared QR secret.
type AppSettings struct {
	ID             uuid.UUID `json:"id"`
	FieldLatitude  *float64  `json:"field_latitude,omitempty"`
	FieldLongitude *float64  `json:"field_longitude,omitempty"`
	QRSecretKey    string    `json:"qr_secret_key"`
	RulesContent   *string   `json:"rules_content,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
