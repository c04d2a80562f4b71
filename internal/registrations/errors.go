package registrations

import "errors"

var (
	// ErrGameNotFound means the game ID does not exist.
	ErrGameNotFound = errors.New("game not found")
	// ErrAlreadyRegistered means a live registration already exists for the user and game.
	ErrAlreadyRegistered = errors.New("already registered for this game")
	// ErrNotRegistered means no live registration exists for the user and game.
	ErrNotRegistered = errors.New("not registered for this game")
	// ErrRegistrationClosed means the game's status or wave windows deny registration.
	ErrRegistrationClosed = errors.New("registration is closed")
	// ErrStandbyFull means both the active roster and the standby queue are at capacity.
	ErrStandbyFull = errors.New("standby queue is full")
	// ErrConflict means the transaction could not commit consistently after retries.
	ErrConflict = errors.New("concurrent update conflict, try again")
)
