package session

import (
	"fmt"
	"slices"

	"github.com/lox/spelljack/internal/deck"
)

// Snapshot is the serializable form of a State.
type Snapshot struct {
	Coins      int         `json:"coins"`
	Collection []deck.Card `json:"collection"`
	PlayDeck   []deck.Card `json:"play_deck"`
	Loadout    []deck.Card `json:"loadout"`
	Shop       []deck.Card `json:"shop"`
}

// Snapshot copies the state.
func (s *State) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{
		Coins:      s.coins,
		Collection: slices.Clone(s.collection),
		PlayDeck:   slices.Clone(s.playDeck),
		Loadout:    slices.Clone(s.loadout),
		Shop:       slices.Clone(s.shop),
	}
}

// Restore replaces the state with snap after checking it.
func (s *State) Restore(snap Snapshot) error {
	if err := snap.Validate(s.deckLimit, s.loadoutLimit); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.coins = snap.Coins
	s.collection = slices.Clone(snap.Collection)
	s.playDeck = slices.Clone(snap.PlayDeck)
	s.loadout = slices.Clone(snap.Loadout)
	s.shop = slices.Clone(snap.Shop)
	return nil
}

// Validate checks the balance, the caps, the card kinds per view and that no
// owned card id appears twice.
func (snap Snapshot) Validate(deckLimit, loadoutLimit int) error {
	if snap.Coins < 0 {
		return fmt.Errorf("%w: negative balance %d", ErrInvalidSnapshot, snap.Coins)
	}
	if deckLimit > 0 && len(snap.PlayDeck) > deckLimit {
		return fmt.Errorf("%w: play deck has %d cards, limit %d", ErrInvalidSnapshot, len(snap.PlayDeck), deckLimit)
	}
	if loadoutLimit > 0 && len(snap.Loadout) > loadoutLimit {
		return fmt.Errorf("%w: loadout has %d cards, limit %d", ErrInvalidSnapshot, len(snap.Loadout), loadoutLimit)
	}
	for _, c := range snap.PlayDeck {
		if c.Special {
			return fmt.Errorf("%w: special card %s in the play deck", ErrInvalidSnapshot, c)
		}
	}
	for _, c := range snap.Loadout {
		if !c.Special {
			return fmt.Errorf("%w: standard card %s in the loadout", ErrInvalidSnapshot, c)
		}
	}

	seen := make(map[int]bool)
	for _, view := range [][]deck.Card{snap.Collection, snap.PlayDeck, snap.Loadout} {
		for _, c := range view {
			if seen[c.ID] {
				return fmt.Errorf("%w: card %d owned twice", ErrInvalidSnapshot, c.ID)
			}
			seen[c.ID] = true
		}
	}
	return nil
}
