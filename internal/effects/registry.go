package effects

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/lox/spelljack/internal/catalog"
	"github.com/lox/spelljack/internal/deck"
)

// ErrUnknownEffect is returned for identifiers without registered behaviour.
var ErrUnknownEffect = errors.New("unknown effect")

// Rand is the randomness effects consume.
type Rand interface {
	IntN(n int) int
}

// Catalog resolves effect ids to their catalog descriptors.
type Catalog interface {
	LookupEffect(id deck.EffectID) (catalog.Descriptor, bool)
}

// Registry applies effects by identifier.
type Registry struct {
	effects map[deck.EffectID]Effect
	catalog Catalog
	logger  *log.Logger
}

// NewRegistry creates a registry with every built-in effect. The catalog is
// optional and only used to name effects in messages.
func NewRegistry(cat Catalog, logger *log.Logger) *Registry {
	return &Registry{
		effects: builtins(),
		catalog: cat,
		logger:  logger.WithPrefix("effects"),
	}
}

// Lookup returns the effect registered for id.
func (r *Registry) Lookup(id deck.EffectID) (Effect, bool) {
	e, ok := r.effects[id]
	return e, ok
}

// Name returns the display name of an effect.
func (r *Registry) Name(id deck.EffectID) string {
	if r.catalog != nil {
		if d, ok := r.catalog.LookupEffect(id); ok && d.Name != "" {
			return d.Name
		}
	}
	return string(id)
}

// Apply applies the effect id to st. Choice and action effects only describe
// what the caller has to do next; they do not touch st.
func (r *Registry) Apply(id deck.EffectID, st *State, rng Rand) (Outcome, error) {
	e, ok := r.effects[id]
	if !ok {
		r.logger.Warn("Unknown effect ignored", "effect", id)
		return Outcome{Effect: id}, fmt.Errorf("%w: %s", ErrUnknownEffect, id)
	}

	var out Outcome
	switch e := e.(type) {
	case Flag:
		e.Set(&st.Flags)
		out = Outcome{Message: e.Message}
	case Immediate:
		out = e.Apply(st, rng)
	case ChoiceRequest:
		out = Outcome{Choice: e.Choice, Message: e.Prompt}
	case RoundAction:
		out = Outcome{Action: e.Action}
	default:
		r.logger.Error("Effect has no handler for its variant", "effect", id, "variant", Kind(e))
		return Outcome{Effect: id}, fmt.Errorf("%w: %s", ErrUnknownEffect, id)
	}
	out.Effect = id
	if out.Message == "" {
		out.Message = r.Name(id) + " activated"
	}

	r.logger.Debug("Effect applied", "effect", id, "variant", Kind(e), "choice", out.Choice, "action", out.Action)
	return out, nil
}

// ChooseSuit completes the suit magnet effect.
func (r *Registry) ChooseSuit(st *State, suit deck.Suit) (Outcome, error) {
	if !suit.Valid() {
		return Outcome{}, fmt.Errorf("invalid suit %d", suit)
	}
	m := BoostSuit(st, suit, 10)
	return Outcome{
		Effect:  SuitMagnet,
		Message: fmt.Sprintf("%s multiplier is now %s", suit, m),
	}, nil
}

// DoubleSuit doubles the multiplier of suit, clamped to the maximum.
func DoubleSuit(st *State, suit deck.Suit) deck.Multiplier {
	st.Multipliers.Set(suit, st.Multipliers.Get(suit)*2)
	return st.Multipliers.Get(suit)
}

// BoostSuit adds delta tenths to the multiplier of suit, clamped to the maximum.
func BoostSuit(st *State, suit deck.Suit, delta deck.Multiplier) deck.Multiplier {
	st.Multipliers.Set(suit, st.Multipliers.Get(suit)+delta)
	return st.Multipliers.Get(suit)
}

func builtins() map[deck.EffectID]Effect {
	return map[deck.EffectID]Effect{
		Shield:           Flag{Set: func(f *Flags) { f.Shield = true }, Message: "Shield raised: your next bust will be blocked"},
		DoubleNext:       Flag{Set: func(f *Flags) { f.DoubleNext = true }, Message: "Your next draw is marked as doubled"},
		DealerTrap:       Flag{Set: func(f *Flags) { f.DealerTrap = true }, Message: "Trap set: the dealer will draw one extra card"},
		AceArmor:         Flag{Set: func(f *Flags) { f.AceArmor = true }, Message: "Ace armor: one extra ace soften this round"},
		FireAce:          Flag{Set: func(f *Flags) { f.FireAce = true }, Message: "Fire ace: aces are worth 12 this round"},
		DoubleBet:        Flag{Set: func(f *Flags) { f.DoubleBet = true }, Message: "Double bet: win rewards are doubled"},
		LuckySeven:       Flag{Set: func(f *Flags) { f.LuckySeven = true }, Message: "Lucky seven is on your side"},
		RoyalDecree:      Flag{Set: func(f *Flags) { f.RoyalDecree = true }, Message: "Royal decree: +2 for every card in your hand"},
		ExtraCard:        Flag{Set: func(f *Flags) { f.ExtraCard = true }, Message: "Your next hit draws an extra card"},
		RemoveDealerCard: Flag{Set: func(f *Flags) { f.RemoveDealerCard = true }, Message: "The dealer will discard a card"},
		RevealDealerCard: Flag{Set: func(f *Flags) { f.RevealDealerCard = true }, Message: "The dealer's hand is revealed"},

		LuckySuit: Immediate{Apply: func(st *State, rng Rand) Outcome {
			suit := deck.Suits[rng.IntN(len(deck.Suits))]
			m := DoubleSuit(st, suit)
			return Outcome{Message: fmt.Sprintf("Lucky suit %s: multiplier is now %s", suit, m)}
		}},
		Stabilizer: Immediate{Apply: func(st *State, _ Rand) Outcome {
			st.Multipliers = deck.Uniform(deck.MinMultiplier)
			return Outcome{Message: "All suit multipliers reset to x1.0"}
		}},
		Chronometer: Immediate{Apply: func(st *State, _ Rand) Outcome {
			st.Flags.SlowDraws = SlowDraws
			return Outcome{Message: fmt.Sprintf("Time slows: your next %d cards score half", SlowDraws)}
		}},
		AddCoins: Immediate{Apply: func(_ *State, _ Rand) Outcome {
			return Outcome{Coins: CoinEffectReward, Message: fmt.Sprintf("+%d coins", CoinEffectReward)}
		}},

		SuitMagnet:     ChoiceRequest{Choice: SuitChoice, Prompt: "Choose a suit to strengthen"},
		CriticalChoice: ChoiceRequest{Choice: CardChoice, Prompt: "Choose one of the revealed cards"},

		CardSwap:     RoundAction{Action: SwapCard},
		HandReset:    RoundAction{Action: ResetHand},
		Cartographer: RoundAction{Action: RevealNextSuit},
		LeafFall:     RoundAction{Action: DiscardRandom},
		Destiny:      RoundAction{Action: PreviewNextDraw},
	}
}
