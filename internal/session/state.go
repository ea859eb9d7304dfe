// Package session holds the player's state that outlives a round: coins, the
// card collection, the active play deck, the special loadout and the shop.
//
// A *State satisfies game.Session. Shop and deck-editor operations must not
// run while a round is resolving; the mutex only keeps readers consistent.
package session

import (
	"fmt"
	"slices"
	"sync"

	"github.com/lox/spelljack/internal/deck"
)

const (
	// DefaultCoins is the starting balance of a new session.
	DefaultCoins = 100
	// DefaultDeckLimit caps the number of standard cards in the play deck.
	DefaultDeckLimit = 52
	// DefaultLoadoutLimit caps the number of special cards in the loadout.
	DefaultLoadoutLimit = 3
	// FirstCollectionID is the id of the first card in the starting collection.
	FirstCollectionID = 100
)

// StartingCollection returns the 52 standard cards every new session owns,
// with ids 100 through 151.
func StartingCollection() []deck.Card {
	return deck.Standard(deck.NewIDSource(FirstCollectionID))
}

// State is the mutable session record.
type State struct {
	mu sync.RWMutex

	coins        int
	collection   []deck.Card // owned cards that are in neither the deck nor the loadout
	playDeck     []deck.Card
	loadout      []deck.Card
	shop         []deck.Card
	deckLimit    int
	loadoutLimit int
}

// Option configures a new State.
type Option func(*State)

// WithCoins sets the starting balance.
func WithCoins(coins int) Option {
	return func(s *State) {
		if coins >= 0 {
			s.coins = coins
		}
	}
}

// WithLimits overrides the play deck and loadout caps.
func WithLimits(deckLimit, loadoutLimit int) Option {
	return func(s *State) {
		if deckLimit > 0 {
			s.deckLimit = deckLimit
		}
		if loadoutLimit > 0 {
			s.loadoutLimit = loadoutLimit
		}
	}
}

// WithCollection replaces the starting collection.
func WithCollection(cards []deck.Card) Option {
	return func(s *State) {
		s.collection = slices.Clone(cards)
	}
}

// New creates a session with the starting collection, an empty play deck and
// loadout, and shop as the purchasable catalog.
func New(shop []deck.Card, opts ...Option) *State {
	s := &State{
		coins:        DefaultCoins,
		collection:   StartingCollection(),
		shop:         slices.Clone(shop),
		deckLimit:    DefaultDeckLimit,
		loadoutLimit: DefaultLoadoutLimit,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Coins returns the current balance.
func (s *State) Coins() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.coins
}

// AddCoins credits the balance. Non-positive amounts are ignored.
func (s *State) AddCoins(amount int) {
	if amount <= 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.coins += amount
}

// SpendCoins debits the balance if it covers amount.
func (s *State) SpendCoins(amount int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.spend(amount)
}

func (s *State) spend(amount int) bool {
	if amount < 0 || amount > s.coins {
		return false
	}
	s.coins -= amount
	return true
}

// Limits returns the play deck and loadout caps.
func (s *State) Limits() (deckLimit, loadoutLimit int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.deckLimit, s.loadoutLimit
}

// Shop returns the cards still for sale.
func (s *State) Shop() []deck.Card {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.shop)
}

// Owned returns every owned card: the collection, the play deck and the loadout.
func (s *State) Owned() []deck.Card {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]deck.Card, 0, len(s.collection)+len(s.playDeck)+len(s.loadout))
	out = append(out, s.collection...)
	out = append(out, s.playDeck...)
	return append(out, s.loadout...)
}

// ActivePlayDeck returns the standard cards the next round's deck is built from.
func (s *State) ActivePlayDeck() []deck.Card {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.playDeck)
}

// ActiveSpecialLoadout returns the equipped special cards.
func (s *State) ActiveSpecialLoadout() []deck.Card {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.loadout)
}

// AvailableForDeck returns owned standard cards that are not in the play deck.
func (s *State) AvailableForDeck() []deck.Card {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return filter(s.collection, func(c deck.Card) bool { return !c.Special })
}

// AvailableSpecials returns owned special cards that are not equipped.
func (s *State) AvailableSpecials() []deck.Card {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return filter(s.collection, func(c deck.Card) bool { return c.Special })
}

// Buy purchases a shop card. On success the card leaves the shop and joins
// the collection; on failure nothing changes.
func (s *State) Buy(cardID int) (deck.Card, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := indexOf(s.shop, cardID)
	if i < 0 {
		return deck.Card{}, fmt.Errorf("card %d is not in the shop: %w", cardID, ErrCardNotFound)
	}
	card := s.shop[i]
	if !s.spend(card.Cost) {
		return deck.Card{}, fmt.Errorf("%s costs %d coins, balance is %d: %w", card, card.Cost, s.coins, ErrInsufficientFunds)
	}
	s.shop = slices.Delete(s.shop, i, i+1)
	s.collection = append(s.collection, card)
	return card, nil
}

// AddToDeck moves a standard card from the collection into the play deck.
func (s *State) AddToDeck(cardID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.move(&s.collection, &s.playDeck, cardID, false, s.deckLimit, "play deck")
}

// RemoveFromDeck returns a play deck card to the collection.
func (s *State) RemoveFromDeck(cardID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.move(&s.playDeck, &s.collection, cardID, false, 0, "collection")
}

// Equip moves a special card from the collection into the loadout.
func (s *State) Equip(cardID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.move(&s.collection, &s.loadout, cardID, true, s.loadoutLimit, "loadout")
}

// Unequip returns a loadout card to the collection.
func (s *State) Unequip(cardID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.move(&s.loadout, &s.collection, cardID, true, 0, "collection")
}

// move transfers a card between views. A zero limit means unbounded.
func (s *State) move(from, to *[]deck.Card, cardID int, special bool, limit int, dest string) error {
	i := indexOf(*from, cardID)
	if i < 0 {
		return fmt.Errorf("card %d: %w", cardID, ErrCardNotFound)
	}
	card := (*from)[i]
	if card.Special != special {
		return fmt.Errorf("%s cannot go to the %s: %w", card, dest, ErrWrongCardKind)
	}
	if limit > 0 && len(*to) >= limit {
		return fmt.Errorf("%s holds at most %d cards: %w", dest, limit, ErrDeckCapacityExceeded)
	}
	*from = slices.Delete(*from, i, i+1)
	*to = append(*to, card)
	return nil
}

func indexOf(cards []deck.Card, id int) int {
	return slices.IndexFunc(cards, func(c deck.Card) bool { return c.ID == id })
}

func filter(cards []deck.Card, keep func(deck.Card) bool) []deck.Card {
	out := make([]deck.Card, 0, len(cards))
	for _, c := range cards {
		if keep(c) {
			out = append(out, c)
		}
	}
	return out
}
