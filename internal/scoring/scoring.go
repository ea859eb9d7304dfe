// Package scoring computes hand scores.
//
// Score is pure: it always recomputes from the full hand. Effects that change
// how a rank is valued (fire ace, for example) therefore also change the value
// of cards that were drawn before the effect fired, and the order in which
// special and standard cards are drawn can change a final score. Callers must
// not replace Score with an incremental running total.
package scoring

import "github.com/lox/spelljack/internal/deck"

// Role selects which modifiers apply to a hand.
type Role int

const (
	Player Role = iota
	Dealer
)

func (r Role) String() string {
	if r == Dealer {
		return "dealer"
	}
	return "player"
}

// Modifiers is the slice of round state the scoring rules read.
type Modifiers struct {
	Target      int
	FireAce     bool
	RoyalDecree bool
	AceArmor    bool
	// Live multipliers are used only for player cards without a snapshot.
	Live deck.Multipliers
}

const (
	royalDecreeBonus = 2
	fireAceValue     = 12
)

// BaseValue returns the unmultiplied value of a standard card.
func BaseValue(c deck.Card, fireAce bool) int {
	if c.Special {
		return 0
	}
	if c.Rank == deck.Ace && fireAce {
		return fireAceValue
	}
	return c.Rank.Value()
}

// CardValue returns a single card's contribution before ace softening.
func CardValue(c deck.Card, role Role, mods Modifiers) int {
	if c.Special {
		return 0
	}
	value := BaseValue(c, mods.FireAce)
	if role != Player {
		return value
	}
	m := c.Multiplier
	if m == 0 {
		m = mods.Live.Get(c.Suit)
	}
	value = m.Apply(value)
	if c.HalfValue {
		value /= 2
	}
	return value
}

// Score returns the hand's score, which may exceed the target.
func Score(hand []deck.Card, role Role, mods Modifiers) int {
	total := 0
	standard := 0
	aces := 0
	for _, c := range hand {
		if c.Special {
			continue
		}
		standard++
		if c.Rank == deck.Ace {
			aces++
		}
		total += CardValue(c, role, mods)
	}

	if role == Player && mods.RoyalDecree {
		total += royalDecreeBonus * standard
	}

	soften := 10
	if mods.FireAce {
		soften = fireAceValue - 1
	}
	for remaining := aces; total > mods.Target && remaining > 0; remaining-- {
		total -= soften
	}

	if role == Player && mods.AceArmor && aces > 0 && total > mods.Target {
		total -= soften
	}
	return total
}
