package deck

import (
	"fmt"
	"strings"
)

// Suit represents a card suit
type Suit int

const (
	Spades Suit = iota
	Hearts
	Diamonds
	Clubs
)

// Suits lists every suit in display order.
var Suits = [...]Suit{Spades, Hearts, Diamonds, Clubs}

// String returns the string representation of a suit
func (s Suit) String() string {
	switch s {
	case Spades:
		return "♠"
	case Hearts:
		return "♥"
	case Diamonds:
		return "♦"
	case Clubs:
		return "♣"
	default:
		return "?"
	}
}

// Name returns the English name of the suit.
func (s Suit) Name() string {
	switch s {
	case Spades:
		return "spades"
	case Hearts:
		return "hearts"
	case Diamonds:
		return "diamonds"
	case Clubs:
		return "clubs"
	default:
		return "unknown"
	}
}

// Valid reports whether s is one of the four suits.
func (s Suit) Valid() bool {
	return s >= Spades && s <= Clubs
}

// IsRed returns true if the suit is red (Hearts or Diamonds)
func (s Suit) IsRed() bool {
	return s == Hearts || s == Diamonds
}

// ParseSuit accepts a suit symbol, its English name or its first letter.
func ParseSuit(s string) (Suit, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "♠", "s", "spade", "spades":
		return Spades, nil
	case "♥", "h", "heart", "hearts":
		return Hearts, nil
	case "♦", "d", "diamond", "diamonds":
		return Diamonds, nil
	case "♣", "c", "club", "clubs":
		return Clubs, nil
	}
	return 0, fmt.Errorf("invalid suit %q", s)
}

// Rank represents a card rank
type Rank int

const (
	Two Rank = iota + 2
	Three
	Four
	Five
	Six
	Seven
	Eight
	Nine
	Ten
	Jack
	Queen
	King
	Ace
)

// String returns the string representation of a rank
func (r Rank) String() string {
	switch {
	case r >= Two && r <= Ten:
		return fmt.Sprintf("%d", int(r))
	case r == Jack:
		return "J"
	case r == Queen:
		return "Q"
	case r == King:
		return "K"
	case r == Ace:
		return "A"
	default:
		return "?"
	}
}

// Value is the base blackjack value of the rank: numerals count their face,
// court cards count ten and the ace counts eleven before softening.
func (r Rank) Value() int {
	switch {
	case r >= Two && r <= Ten:
		return int(r)
	case r >= Jack && r <= King:
		return 10
	case r == Ace:
		return 11
	default:
		return 0
	}
}

// ParseRank parses "2".."10", "T" and the court letters.
func ParseRank(s string) (Rank, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "2":
		return Two, nil
	case "3":
		return Three, nil
	case "4":
		return Four, nil
	case "5":
		return Five, nil
	case "6":
		return Six, nil
	case "7":
		return Seven, nil
	case "8":
		return Eight, nil
	case "9":
		return Nine, nil
	case "10", "T":
		return Ten, nil
	case "J":
		return Jack, nil
	case "Q":
		return Queen, nil
	case "K":
		return King, nil
	case "A":
		return Ace, nil
	}
	return 0, fmt.Errorf("invalid rank %q", s)
}

// EffectID identifies the behaviour a special card triggers.
type EffectID string

// Activation describes when a special card's effect fires.
type Activation string

const (
	// Manual effects require an explicit player action.
	Manual Activation = "manual"
	// Passive effects fire on a context trigger (currently only round start).
	Passive Activation = "passive"
	// Auto effects fire as soon as the card is drawn.
	Auto Activation = "auto"
)

// ParseActivation validates an activation type name.
func ParseActivation(s string) (Activation, error) {
	switch a := Activation(strings.ToLower(strings.TrimSpace(s))); a {
	case Manual, Passive, Auto:
		return a, nil
	}
	return "", fmt.Errorf("invalid activation type %q", s)
}

// Card is one card instance. ID is unique and immutable once minted.
//
// Multiplier and HalfValue are snapshots taken when the card entered a
// player's hand; they never follow later changes to the live multipliers.
type Card struct {
	ID         int        `json:"id"`
	Rank       Rank       `json:"rank,omitempty"`
	Suit       Suit       `json:"suit"`
	Special    bool       `json:"special,omitempty"`
	Effect     EffectID   `json:"effect,omitempty"`
	Activation Activation `json:"activation,omitempty"`
	Name       string     `json:"name,omitempty"`
	Cost       int        `json:"cost,omitempty"`

	Multiplier Multiplier `json:"multiplier,omitempty"`
	HalfValue  bool       `json:"half_value,omitempty"`
}

// NewCard creates a standard card
func NewCard(id int, rank Rank, suit Suit) Card {
	return Card{ID: id, Rank: rank, Suit: suit}
}

// NewSpecialCard creates a special card carrying an effect.
func NewSpecialCard(id int, name string, effect EffectID, activation Activation) Card {
	return Card{ID: id, Special: true, Name: name, Effect: effect, Activation: activation}
}

// String returns the string representation of a card (e.g., "A♠")
func (c Card) String() string {
	if c.Special {
		if c.Name != "" {
			return "[" + c.Name + "]"
		}
		return "[" + string(c.Effect) + "]"
	}
	return fmt.Sprintf("%s%s", c.Rank, c.Suit)
}

// IsAce returns true if the card is a standard Ace
func (c Card) IsAce() bool {
	return !c.Special && c.Rank == Ace
}

// IsRed returns true if the card is red
func (c Card) IsRed() bool {
	return !c.Special && c.Suit.IsRed()
}

// Identity returns the card without any per-hand snapshots.
func (c Card) Identity() Card {
	c.Multiplier = 0
	c.HalfValue = false
	return c
}

// Describe returns a short player-facing description of a standard card.
func (c Card) Describe() string {
	if c.Special {
		return fmt.Sprintf("Special card with effect %s", c.Effect)
	}
	switch c.Rank {
	case Ace:
		return "Ace - worth 1 or 11 points"
	case King:
		return "King - worth 10 points"
	case Queen:
		return "Queen - worth 10 points"
	case Jack:
		return "Jack - worth 10 points"
	}
	return fmt.Sprintf("Number card worth %d points", c.Rank.Value())
}

// ParseCard parses cards written as rank followed by suit, e.g. "10♠", "Kh", "As".
func ParseCard(id int, s string) (Card, error) {
	s = strings.TrimSpace(s)
	if len(s) < 2 {
		return Card{}, fmt.Errorf("invalid card %q", s)
	}
	runes := []rune(s)
	rank, err := ParseRank(string(runes[:len(runes)-1]))
	if err != nil {
		return Card{}, fmt.Errorf("invalid card %q: %w", s, err)
	}
	suit, err := ParseSuit(string(runes[len(runes)-1]))
	if err != nil {
		return Card{}, fmt.Errorf("invalid card %q: %w", s, err)
	}
	return NewCard(id, rank, suit), nil
}
