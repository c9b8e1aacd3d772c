package service

import (
	"errors"
)

// Sentinel errors returned by engine operations. Callers distinguish the
// failure class with errors.Is; storage failures are wrapped pgx errors and
// deliberately carry no sentinel.
var (
	// ErrGameNotFound is returned when a bet references an external game
	// that the game source cannot resolve.
	ErrGameNotFound = errors.New("referenced game not found")

	// ErrBetNotFound is returned by update/confirm/lookup operations when
	// no bet exists for the given serial.
	ErrBetNotFound = errors.New("bet not found")

	// ErrConfirmConflict is returned when a bet is already confirmed with a
	// different message or channel identity.
	ErrConfirmConflict = errors.New("bet already confirmed with different message")

	// ErrEmptyUpdate is returned when an update carries no fields.
	ErrEmptyUpdate = errors.New("no fields to update")

	// Validation failures rejected before any write.
	ErrInvalidStake = errors.New("stake must be positive")
	ErrInvalidOdds  = errors.New("odds must be a nonzero number")
	ErrNoLegs       = errors.New("parlay requires at least one leg")
)
