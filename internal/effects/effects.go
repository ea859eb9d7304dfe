// Package effects maps special card effect identifiers to what they do to a
// round.
//
// Every effect is one of four variants:
//   - Flag: switches on a round flag (shield, fire ace, ...).
//   - Immediate: mutates multipliers or counters right away and reports a result.
//   - ChoiceRequest: needs a follow-up player choice before it completes.
//   - RoundAction: a hand or deck manipulation that the round engine performs.
//
// Identifiers without a registered variant are unknown: Apply reports
// ErrUnknownEffect and leaves the state untouched.
package effects

import (
	"github.com/lox/spelljack/internal/deck"
)

// Effect identifiers with registered behaviour.
const (
	Shield           deck.EffectID = "shield"
	DoubleNext       deck.EffectID = "doubleNext"
	DealerTrap       deck.EffectID = "dealerTrap"
	AceArmor         deck.EffectID = "aceArmor"
	FireAce          deck.EffectID = "fireAce"
	DoubleBet        deck.EffectID = "doubleBet"
	LuckySeven       deck.EffectID = "luckySeven"
	RoyalDecree      deck.EffectID = "royalDecree"
	ExtraCard        deck.EffectID = "extraCard"
	RemoveDealerCard deck.EffectID = "removeDealerCard"
	RevealDealerCard deck.EffectID = "revealDealerCard"

	LuckySuit   deck.EffectID = "luckySuit"
	Stabilizer  deck.EffectID = "stabilizer"
	Chronometer deck.EffectID = "chronometer"
	AddCoins    deck.EffectID = "addCoins"

	SuitMagnet     deck.EffectID = "suitMagnet"
	CriticalChoice deck.EffectID = "criticalChoice"

	CardSwap     deck.EffectID = "cardSwap"
	HandReset    deck.EffectID = "handReset"
	Cartographer deck.EffectID = "cartographer"
	LeafFall     deck.EffectID = "leafFall"
	Destiny      deck.EffectID = "destiny"
)

// SlowDraws is how many draws the chronometer halves.
const SlowDraws = 2

// CoinEffectReward is granted by the addCoins effect.
const CoinEffectReward = 10

// Flags are the active effects of the current round.
type Flags struct {
	Shield           bool
	DoubleNext       bool
	DealerTrap       bool
	AceArmor         bool
	FireAce          bool
	DoubleBet        bool
	LuckySeven       bool
	RoyalDecree      bool
	ExtraCard        bool
	RemoveDealerCard bool
	RevealDealerCard bool

	// SlowDraws counts the remaining half-value draws.
	SlowDraws int
}

// Active lists the names of switched-on flags in a stable order.
func (f Flags) Active() []string {
	var names []string
	add := func(on bool, id deck.EffectID) {
		if on {
			names = append(names, string(id))
		}
	}
	add(f.Shield, Shield)
	add(f.DoubleNext, DoubleNext)
	add(f.DealerTrap, DealerTrap)
	add(f.AceArmor, AceArmor)
	add(f.FireAce, FireAce)
	add(f.DoubleBet, DoubleBet)
	add(f.LuckySeven, LuckySeven)
	add(f.RoyalDecree, RoyalDecree)
	add(f.ExtraCard, ExtraCard)
	add(f.RemoveDealerCard, RemoveDealerCard)
	add(f.RevealDealerCard, RevealDealerCard)
	add(f.SlowDraws > 0, Chronometer)
	return names
}

// State is the part of a round that effects mutate directly.
type State struct {
	Flags       Flags
	Multipliers deck.Multipliers
}

// Choice is the follow-up input an effect needs.
type Choice int

const (
	NoChoice Choice = iota
	SuitChoice
	CardChoice
)

func (c Choice) String() string {
	switch c {
	case SuitChoice:
		return "suit"
	case CardChoice:
		return "card"
	default:
		return "none"
	}
}

// Action is a round manipulation performed by the engine.
type Action int

const (
	NoAction Action = iota
	SwapCard
	ResetHand
	RevealNextSuit
	DiscardRandom
	PreviewNextDraw
)

func (a Action) String() string {
	switch a {
	case SwapCard:
		return "card-swap"
	case ResetHand:
		return "hand-reset"
	case RevealNextSuit:
		return "cartographer"
	case DiscardRandom:
		return "leaf-fall"
	case PreviewNextDraw:
		return "destiny"
	default:
		return "none"
	}
}

// Outcome reports what applying an effect did or still needs.
type Outcome struct {
	Effect  deck.EffectID
	Message string
	Choice  Choice
	Action  Action
	// Coins to credit to the player's balance.
	Coins int
}

// Effect is the closed set of effect variants.
type Effect interface {
	variant() string
}

// Flag switches on a round flag.
type Flag struct {
	Set     func(*Flags)
	Message string
}

// Immediate mutates state and describes the result.
type Immediate struct {
	Apply func(st *State, rng Rand) Outcome
}

// ChoiceRequest asks the player for further input.
type ChoiceRequest struct {
	Choice Choice
	Prompt string
}

// RoundAction is carried out by the round engine.
type RoundAction struct {
	Action Action
}

func (Flag) variant() string          { return "flag" }
func (Immediate) variant() string     { return "immediate" }
func (ChoiceRequest) variant() string { return "choice" }
func (RoundAction) variant() string   { return "action" }

// Kind returns the variant name of e.
func Kind(e Effect) string {
	if e == nil {
		return "unknown"
	}
	return e.variant()
}

// Trigger is a context in which passive effects are checked.
type Trigger string

// GameStart fires when a round is set up.
const GameStart Trigger = "gameStart"

// Fires reports whether a card with activation a self-activates on t.
func Fires(a deck.Activation, t Trigger) bool {
	return a == deck.Passive && t == GameStart
}
