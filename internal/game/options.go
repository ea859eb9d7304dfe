package game

import (
	"time"

	"github.com/coder/quartz"

	"github.com/lox/spelljack/internal/deck"
	"github.com/lox/spelljack/internal/randutil"
)

// Rules holds the tunable constants of a round.
type Rules struct {
	MinTarget int
	MaxTarget int

	WinReward      int
	PerfectReward  int
	LeafFallReward int

	// Targets up to ClassicTargetLimit use the classic dealer threshold;
	// higher targets use DealerPercent of the target.
	ClassicTargetLimit int
	ClassicThreshold   int
	DealerPercent      int

	// Bonus range added when an opening hand already meets the target.
	TargetBonusMin int
	TargetBonusMax int
}

// DefaultRules returns the standard SpellJack rules.
func DefaultRules() Rules {
	return Rules{
		MinTarget:          21,
		MaxTarget:          100,
		WinReward:          10,
		PerfectReward:      20,
		LeafFallReward:     5,
		ClassicTargetLimit: 30,
		ClassicThreshold:   17,
		DealerPercent:      85,
		TargetBonusMin:     10,
		TargetBonusMax:     30,
	}
}

// DealerThreshold returns the score below which the dealer keeps drawing.
func (r Rules) DealerThreshold(target int) int {
	if target <= r.ClassicTargetLimit {
		return r.ClassicThreshold
	}
	return target * r.DealerPercent / 100
}

// Pacing holds the presentation delays. Zero durations skip the pause.
type Pacing struct {
	Draw       time.Duration
	TrapReveal time.Duration
}

// DefaultPacing returns the interactive delays.
func DefaultPacing() Pacing {
	return Pacing{
		Draw:       500 * time.Millisecond,
		TrapReveal: 3 * time.Second,
	}
}

// EngineOption configures an Engine during creation.
type EngineOption func(*Engine)

// WithClock sets the clock used for pacing and event timestamps.
func WithClock(clock quartz.Clock) EngineOption {
	return func(e *Engine) {
		e.clock = clock
	}
}

// WithRand sets the random source for shuffles, targets, multipliers and
// random effects.
func WithRand(rng randutil.Source) EngineOption {
	return func(e *Engine) {
		e.rng = rng
	}
}

// WithRules overrides the default rules.
func WithRules(rules Rules) EngineOption {
	return func(e *Engine) {
		e.rules = rules
	}
}

// WithPacing overrides the default pacing. Use Pacing{} to disable pauses.
func WithPacing(p Pacing) EngineOption {
	return func(e *Engine) {
		e.pacing = p
	}
}

// WithIDSource sets where synthesized card ids come from.
func WithIDSource(ids *deck.IDSource) EngineOption {
	return func(e *Engine) {
		e.ids = ids
	}
}

// WithRoundIDs sets the round id generator.
func WithRoundIDs(next func() string) EngineOption {
	return func(e *Engine) {
		e.nextRoundID = next
	}
}

// WithEventBus shares an existing bus instead of creating one.
func WithEventBus(bus EventBus) EngineOption {
	return func(e *Engine) {
		e.bus = bus
	}
}

// RoundOption configures a round during StartRound.
type RoundOption func(*roundConfig)

type roundConfig struct {
	playerDeck  *deck.Deck
	dealerDeck  *deck.Deck
	target      int
	multipliers *deck.Multipliers
}

// WithDecks uses pre-arranged decks instead of building and shuffling them.
// Either may be nil to keep the default for that side.
func WithDecks(player, dealer *deck.Deck) RoundOption {
	return func(c *roundConfig) {
		c.playerDeck = player
		c.dealerDeck = dealer
	}
}

// WithTarget fixes the initial target score. The opening-hand rule may still
// raise it.
func WithTarget(target int) RoundOption {
	return func(c *roundConfig) {
		c.target = target
	}
}

// WithMultipliers fixes the initial suit multipliers.
func WithMultipliers(ms deck.Multipliers) RoundOption {
	return func(c *roundConfig) {
		c.multipliers = &ms
	}
}
