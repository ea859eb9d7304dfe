package deck

import (
	"sync/atomic"

	"github.com/lox/spelljack/internal/randutil"
)

// StandardSize is the number of cards in a synthesized deck.
const StandardSize = 52

// IDSource mints globally unique card ids.
type IDSource struct {
	next atomic.Int64
}

// NewIDSource creates an IDSource whose first id is start.
func NewIDSource(start int) *IDSource {
	s := &IDSource{}
	s.next.Store(int64(start))
	return s
}

// Next returns a fresh id.
func (s *IDSource) Next() int {
	return int(s.next.Add(1) - 1)
}

// Standard returns the 52 rank×suit combinations with ids minted from ids.
func Standard(ids *IDSource) []Card {
	cards := make([]Card, 0, StandardSize)
	for _, suit := range Suits {
		for rank := Two; rank <= Ace; rank++ {
			cards = append(cards, NewCard(ids.Next(), rank, suit))
		}
	}
	return cards
}

// Deck is a stack of cards; the last element is the top.
type Deck struct {
	cards []Card
}

// New creates a deck from cards without shuffling. The last card is drawn first.
func New(cards []Card) *Deck {
	d := &Deck{cards: make([]Card, len(cards))}
	copy(d.cards, cards)
	return d
}

// Stacked creates a deck that deals top[0] first, then top[1], and so on.
func Stacked(top ...Card) *Deck {
	d := &Deck{cards: make([]Card, len(top))}
	for i, c := range top {
		d.cards[len(top)-1-i] = c
	}
	return d
}

// Build instantiates one card per source entry, preserving identity, or
// synthesizes a fresh 52-card deck when source is empty, then shuffles it.
func Build(source []Card, rng randutil.Source, ids *IDSource) *Deck {
	var cards []Card
	if len(source) > 0 {
		cards = make([]Card, 0, len(source))
		for _, c := range source {
			cards = append(cards, c.Identity())
		}
	} else {
		cards = Standard(ids)
	}
	d := &Deck{cards: cards}
	d.Shuffle(rng)
	return d
}

// Shuffle randomizes the order of cards in the deck using Fisher-Yates
func (d *Deck) Shuffle(rng randutil.Source) {
	for i := len(d.cards) - 1; i > 0; i-- {
		j := rng.IntN(i + 1)
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	}
}

// Draw removes and returns the top card from the deck
func (d *Deck) Draw() (Card, bool) {
	if len(d.cards) == 0 {
		return Card{}, false
	}
	card := d.cards[len(d.cards)-1]
	d.cards = d.cards[:len(d.cards)-1]
	return card, true
}

// DrawN draws up to n cards, top first.
func (d *Deck) DrawN(n int) []Card {
	if n > len(d.cards) {
		n = len(d.cards)
	}
	cards := make([]Card, 0, n)
	for range n {
		card, _ := d.Draw()
		cards = append(cards, card)
	}
	return cards
}

// Peek returns the top card without removing it from the deck
func (d *Deck) Peek() (Card, bool) {
	if len(d.cards) == 0 {
		return Card{}, false
	}
	return d.cards[len(d.cards)-1], true
}

// Return puts a card back on top of the deck.
func (d *Deck) Return(card Card) {
	d.cards = append(d.cards, card.Identity())
}

// Len returns the number of cards left in the deck
func (d *Deck) Len() int {
	return len(d.cards)
}

// IsEmpty returns true if the deck has no cards left
func (d *Deck) IsEmpty() bool {
	return len(d.cards) == 0
}

// Cards returns a copy of the remaining cards, bottom first.
func (d *Deck) Cards() []Card {
	out := make([]Card, len(d.cards))
	copy(out, d.cards)
	return out
}
