package game

import "errors"

var (
	// ErrInsufficientCards is returned when a deck cannot supply a required card.
	// The round is resolved with ResultInsufficientCards.
	ErrInsufficientCards = errors.New("insufficient cards")
	// ErrInvalidActivation is returned when a special card cannot be activated.
	ErrInvalidActivation = errors.New("invalid activation")
	// ErrBusy is returned when an action arrives while another is in flight.
	ErrBusy = errors.New("another action is in progress")
	// ErrNotPlayerTurn is returned for player actions outside the player turn.
	ErrNotPlayerTurn = errors.New("not the player's turn")
	// ErrChoicePending is returned when a choice must be made first.
	ErrChoicePending = errors.New("a choice is pending")
	// ErrNoChoicePending is returned for choices nobody asked for.
	ErrNoChoicePending = errors.New("no choice is pending")
)
