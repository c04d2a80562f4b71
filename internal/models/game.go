package models

import (
	"time"

	"github.com/google/uuid"
)

// GameStatus is the lifecycle status of a game.
type GameStatus string

const (
	GameScheduled        GameStatus = "scheduled"
	GameOpenForResidents GameStatus = "open_for_residents"
	GameOpenForAll       GameStatus = "open_for_all"
	GameClosed           GameStatus = "closed"
	GameCompleted        GameStatus = "completed"
	GameCancelled        GameStatus = "cancelled"
)

// Valid reports whether s is a known game status.
func (s GameStatus) Valid() bool {
	switch s {
	case GameScheduled, GameOpenForResidents, GameOpenForAll, GameClosed, GameCompleted, GameCancelled:
		return true
	}
	return false
}

// Game is a weekly match with a capped active roster and a standby queue.
type Game struct {
	ID              uuid.UUID  `json:"id"`
	Date            time.Time  `json:"date"` // calendar date of the match
	KickoffTime     time.Time  `json:"kickoff_time"`
	DeadlineTime    time.Time  `json:"deadline_time"`
	Wave1OpensAt    *time.Time `json:"wave1_opens_at,omitempty"` // residents-only wave
	Wave2OpensAt    *time.Time `json:"wave2_opens_at,omitempty"` // open-for-all wave
	Status          GameStatus `json:"status"`
	IsAutoGenerated bool       `json:"is_auto_generated"`
	MaxPlayers      int        `json:"max_players"`
	MaxStandby      int        `json:"max_standby"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}
