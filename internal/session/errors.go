package session

import "errors"

var (
	// ErrInsufficientFunds is returned when a purchase costs more than the balance.
	ErrInsufficientFunds = errors.New("cannot afford")
	// ErrDeckCapacityExceeded is returned when the play deck or loadout is full.
	ErrDeckCapacityExceeded = errors.New("deck capacity exceeded")
	// ErrCardNotFound is returned when a card id is not where the operation expects it.
	ErrCardNotFound = errors.New("card not found")
	// ErrWrongCardKind is returned when a special card is offered to the play
	// deck or a standard card to the loadout.
	ErrWrongCardKind = errors.New("wrong card kind")
	// ErrNotFound is returned by a Store when no profile has been saved yet.
	ErrNotFound = errors.New("profile not found")
	// ErrInvalidProfile is returned for profile names a Store cannot hold.
	ErrInvalidProfile = errors.New("invalid profile name")
	// ErrInvalidSnapshot is returned when a snapshot breaks a session invariant.
	ErrInvalidSnapshot = errors.New("invalid session snapshot")
)
