package game

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/lox/spelljack/internal/deck"
	"github.com/lox/spelljack/internal/effects"
	"github.com/lox/spelljack/internal/randutil"
	"github.com/lox/spelljack/internal/roundid"
	"github.com/lox/spelljack/internal/scoring"
)

// syntheticIDStart keeps synthesized card ids clear of collection and catalog ids.
const syntheticIDStart = 1_000_000

// Session is the persistent player state a round reads and credits.
type Session interface {
	ActivePlayDeck() []deck.Card
	ActiveSpecialLoadout() []deck.Card
	AddCoins(amount int)
	SpendCoins(amount int) bool
}

// Engine drives rounds for one session.
type Engine struct {
	session     Session
	registry    *effects.Registry
	logger      *log.Logger
	bus         EventBus
	clock       quartz.Clock
	rng         randutil.Source
	ids         *deck.IDSource
	rules       Rules
	pacing      Pacing
	nextRoundID func() string

	busy atomic.Bool

	mu       sync.Mutex
	round    *RoundState
	roundLog *log.Logger
	pending  []GameEvent
}

// NewEngine creates an engine. Without options it uses a real clock, the
// default rules and pacing, and a crypto-seeded random source.
func NewEngine(session Session, registry *effects.Registry, logger *log.Logger, opts ...EngineOption) *Engine {
	e := &Engine{
		session:     session,
		registry:    registry,
		logger:      logger.WithPrefix("engine"),
		clock:       quartz.NewReal(),
		ids:         deck.NewIDSource(syntheticIDStart),
		rules:       DefaultRules(),
		pacing:      DefaultPacing(),
		nextRoundID: roundid.New,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.rng == nil {
		e.rng = randutil.New(randutil.NewSeed())
	}
	if e.bus == nil {
		e.bus = NewEventBus()
	}
	e.roundLog = e.logger
	return e
}

// EventBus returns the event bus for subscribing to round events
func (e *Engine) EventBus() EventBus {
	return e.bus
}

// Rules returns the rules the engine plays by.
func (e *Engine) Rules() Rules {
	return e.rules
}

// RoundState returns a snapshot of the current round.
func (e *Engine) RoundState() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.round.snapshot()
}

// StartRound abandons any current round and sets up a new one.
func (e *Engine) StartRound(ctx context.Context, opts ...RoundOption) (Snapshot, error) {
	cfg := &roundConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	return e.act(ctx, "start round", func(context.Context) error {
		return e.setup(cfg)
	})
}

// Hit fires pending auto loadout cards, then draws one card (two with extra
// card) for the player.
func (e *Engine) Hit(ctx context.Context) (Snapshot, error) {
	return e.act(ctx, "hit", func(ctx context.Context) error {
		r, err := e.playerTurn()
		if err != nil {
			return err
		}
		r.drawn = r.drawn[:0]

		for _, c := range r.Loadout {
			if c.Activation == deck.Auto && !r.Used[c.ID] {
				if err := e.activate(c); err != nil {
					return err
				}
			}
		}

		if err := e.pause(ctx, e.pacing.Draw); err != nil {
			return err
		}
		if err := e.drawPlayer(); err != nil {
			return err
		}
		if r.Effects.Flags.ExtraCard && r.Phase == PhasePlayerTurn {
			r.Effects.Flags.ExtraCard = false
			if err := e.drawPlayer(); err != nil {
				return err
			}
		}
		return e.settle(ctx)
	})
}

// Stand ends the player turn and plays the dealer.
func (e *Engine) Stand(ctx context.Context) (Snapshot, error) {
	return e.act(ctx, "stand", func(ctx context.Context) error {
		if _, err := e.playerTurn(); err != nil {
			return err
		}
		return e.dealerTurn(ctx)
	})
}

// ActivateSpecialCard activates a manual card from the loadout.
func (e *Engine) ActivateSpecialCard(ctx context.Context, cardID int) (Snapshot, error) {
	return e.act(ctx, "activate", func(ctx context.Context) error {
		r, err := e.playerTurn()
		if err != nil {
			return err
		}
		card, ok := r.loadoutCard(cardID)
		switch {
		case !ok:
			return fmt.Errorf("%w: card %d is not in your loadout", ErrInvalidActivation, cardID)
		case r.Used[cardID]:
			return fmt.Errorf("%w: %s was already used this round", ErrInvalidActivation, card)
		case card.Activation != deck.Manual:
			return fmt.Errorf("%w: %s activates on its own", ErrInvalidActivation, card)
		}

		r.drawn = r.drawn[:0]
		if err := e.activate(card); err != nil {
			return err
		}
		return e.settle(ctx)
	})
}

// ChooseSuit completes a pending suit magnet.
func (e *Engine) ChooseSuit(ctx context.Context, suit deck.Suit) (Snapshot, error) {
	return e.act(ctx, "choose suit", func(ctx context.Context) error {
		r, err := e.pendingChoice(effects.SuitChoice)
		if err != nil {
			return err
		}
		out, err := e.registry.ChooseSuit(&r.Effects, suit)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidActivation, err)
		}
		r.PendingChoice = effects.NoChoice
		r.addMessage(out.Message)
		e.emit(EffectActivatedEvent{RoundID: r.ID, Effect: out.Effect, Message: out.Message, timestamp: e.clock.Now()})
		return nil
	})
}

// ChooseCriticalCard keeps option index of a pending critical choice. The
// other revealed cards are removed from the round.
func (e *Engine) ChooseCriticalCard(ctx context.Context, index int) (Snapshot, error) {
	return e.act(ctx, "choose card", func(ctx context.Context) error {
		r, err := e.pendingChoice(effects.CardChoice)
		if err != nil {
			return err
		}
		if index < 0 || index >= len(r.CriticalOptions) {
			return fmt.Errorf("%w: no option %d, pick 0 to %d", ErrInvalidActivation, index, len(r.CriticalOptions)-1)
		}
		chosen := r.CriticalOptions[index]
		removed := len(r.CriticalOptions) - 1
		r.PendingChoice = effects.NoChoice
		r.CriticalOptions = nil

		r.drawn = r.drawn[:0]
		c := e.addPlayerCard(chosen)
		r.addMessage(fmt.Sprintf("You keep %s, %d cards leave the deck", c, removed))
		if c.Special {
			if err := e.activate(c); err != nil {
				return err
			}
		}
		return e.settle(ctx)
	})
}

// act runs fn as the single in-flight action and publishes the events it
// queued once the lock is released.
func (e *Engine) act(ctx context.Context, action string, fn func(context.Context) error) (Snapshot, error) {
	if !e.busy.CompareAndSwap(false, true) {
		snap := e.RoundState()
		e.logger.Debug("Action rejected", "action", action, "reason", ErrBusy)
		e.bus.Publish(ActionRejectedEvent{RoundID: snap.RoundID, Action: action, Reason: ErrBusy.Error(), timestamp: e.clock.Now()})
		return snap, fmt.Errorf("%s: %w", action, ErrBusy)
	}
	defer e.busy.Store(false)

	e.mu.Lock()
	err := fn(ctx)
	if err != nil && !errors.Is(err, ErrInsufficientCards) {
		var roundID string
		if e.round != nil {
			roundID = e.round.ID
			e.round.addMessage(err.Error())
		}
		e.roundLog.Debug("Action rejected", "action", action, "reason", err)
		e.emit(ActionRejectedEvent{RoundID: roundID, Action: action, Reason: err.Error(), timestamp: e.clock.Now()})
	}
	snap := e.round.snapshot()
	events := e.takeEvents()
	e.mu.Unlock()

	e.publishAll(events)
	if err != nil {
		return snap, fmt.Errorf("%s: %w", action, err)
	}
	return snap, nil
}

func (e *Engine) setup(cfg *roundConfig) error {
	r := newRoundState(e.nextRoundID())
	e.round = r
	e.roundLog = e.logger.With("round", shortID(r.ID))

	r.Loadout = slices.Clone(e.session.ActiveSpecialLoadout())

	r.PlayerDeck = cfg.playerDeck
	if r.PlayerDeck == nil {
		play := e.session.ActivePlayDeck()
		if len(play) == 0 {
			play = deck.Standard(e.ids)
		}
		source := make([]deck.Card, 0, len(play)+len(r.Loadout))
		source = append(source, play...)
		source = append(source, r.Loadout...)
		r.PlayerDeck = deck.Build(source, e.rng, e.ids)
	}
	r.DealerDeck = cfg.dealerDeck
	if r.DealerDeck == nil {
		r.DealerDeck = deck.Build(nil, e.rng, e.ids)
	}

	r.Target = cfg.target
	if r.Target <= 0 {
		r.Target = randutil.Between(e.rng, e.rules.MinTarget, e.rules.MaxTarget)
	}
	for _, s := range deck.Suits {
		if cfg.multipliers != nil {
			r.Effects.Multipliers.Set(s, cfg.multipliers.Get(s))
			continue
		}
		r.Effects.Multipliers.Set(s, deck.Multiplier(randutil.Between(e.rng, int(deck.MinMultiplier), int(deck.MaxMultiplier))))
	}

	if r.PlayerDeck.Len() < 2 || r.DealerDeck.Len() < 2 {
		return e.abort(fmt.Sprintf("player deck has %d cards and dealer deck has %d, both need at least 2",
			r.PlayerDeck.Len(), r.DealerDeck.Len()))
	}

	for _, c := range r.Loadout {
		if effects.Fires(c.Activation, effects.GameStart) {
			if err := e.activate(c); err != nil {
				return err
			}
		}
	}

	for range 2 {
		c, _ := r.PlayerDeck.Draw()
		e.holdPlayerCard(c)
		c, _ = r.DealerDeck.Draw()
		r.DealerHand = append(r.DealerHand, c)
	}

	// Opening specials resolve before the target check; a reset or swap
	// redraws the hand.
	for _, c := range slices.Clone(r.PlayerHand) {
		if c.Special && slices.ContainsFunc(r.PlayerHand, func(h deck.Card) bool { return h.ID == c.ID }) {
			if err := e.activate(c); err != nil {
				return err
			}
		}
	}

	for r.PlayerScore() >= r.Target || r.DealerScore() >= r.Target {
		old := r.Target
		r.Target = max(r.Target, r.PlayerScore(), r.DealerScore()) +
			randutil.Between(e.rng, e.rules.TargetBonusMin, e.rules.TargetBonusMax)
		r.addMessage(fmt.Sprintf("Opening hands reached %d, target raised to %d", old, r.Target))
		e.roundLog.Debug("Target raised", "from", old, "to", r.Target)
	}

	r.Phase = PhasePlayerTurn
	e.roundLog.Info("Round started", "target", r.Target, "multipliers", r.Effects.Multipliers,
		"player_deck", r.PlayerDeck.Len(), "loadout", len(r.Loadout))
	e.emit(RoundStartEvent{
		RoundID:     r.ID,
		Target:      r.Target,
		Multipliers: r.Effects.Multipliers,
		PlayerHand:  slices.Clone(r.PlayerHand),
		DealerHand:  slices.Clone(r.DealerHand),
		timestamp:   e.clock.Now(),
	})
	return nil
}

func (e *Engine) playerTurn() (*RoundState, error) {
	r := e.round
	if r == nil || r.Phase != PhasePlayerTurn {
		return nil, ErrNotPlayerTurn
	}
	if r.PendingChoice != effects.NoChoice {
		return nil, fmt.Errorf("%w: choose a %s first", ErrChoicePending, r.PendingChoice)
	}
	return r, nil
}

func (e *Engine) pendingChoice(want effects.Choice) (*RoundState, error) {
	r := e.round
	if r == nil || r.Phase != PhasePlayerTurn {
		return nil, ErrNotPlayerTurn
	}
	if r.PendingChoice != want {
		return nil, fmt.Errorf("%w: nothing asked for a %s", ErrNoChoicePending, want)
	}
	return r, nil
}

// addPlayerCard appends c to the player's hand and announces the draw.
func (e *Engine) addPlayerCard(c deck.Card) deck.Card {
	c = e.holdPlayerCard(c)
	e.emit(CardDrawnEvent{RoundID: e.round.ID, Role: scoring.Player, Card: c, Score: e.round.PlayerScore(), timestamp: e.clock.Now()})
	return c
}

// holdPlayerCard appends c to the player's hand with its draw-time snapshots.
func (e *Engine) holdPlayerCard(c deck.Card) deck.Card {
	r := e.round
	if !c.Special {
		c.Multiplier = r.Effects.Multipliers.Get(c.Suit)
		if r.Effects.Flags.SlowDraws > 0 {
			c.HalfValue = true
			r.Effects.Flags.SlowDraws--
		}
	}
	r.PlayerHand = append(r.PlayerHand, c)
	r.drawn = append(r.drawn, c.ID)
	return c
}

// drawPlayer draws the top player card and resolves it if special.
func (e *Engine) drawPlayer() error {
	r := e.round
	c, ok := r.PlayerDeck.Draw()
	if !ok {
		return e.abort("the player deck is empty")
	}
	c = e.addPlayerCard(c)
	if c.Special {
		return e.activate(c)
	}
	return nil
}

// activate resolves a special card once per round. Unknown effects are
// reported and skipped.
func (e *Engine) activate(card deck.Card) error {
	r := e.round
	if r.Used[card.ID] {
		return nil
	}
	r.Used[card.ID] = true

	out, err := e.registry.Apply(card.Effect, &r.Effects, e.rng)
	if err != nil {
		r.addMessage(fmt.Sprintf("%s has no effect", card))
		return nil
	}
	r.addMessage(out.Message)
	e.roundLog.Debug("Special card activated", "card", card.ID, "effect", card.Effect, "activation", card.Activation)
	e.emit(EffectActivatedEvent{RoundID: r.ID, CardID: card.ID, Effect: out.Effect, Message: out.Message, timestamp: e.clock.Now()})

	if out.Coins > 0 {
		e.session.AddCoins(out.Coins)
	}
	switch out.Choice {
	case effects.SuitChoice:
		r.PendingChoice = effects.SuitChoice
	case effects.CardChoice:
		e.revealCriticalOptions()
	}
	return e.runAction(out.Action)
}

// settle checks the player's score after a hand change: the shield may save a
// bust, reaching the target exactly with a drawn card is a perfect win and
// anything over the target ends the player turn.
func (e *Engine) settle(ctx context.Context) error {
	r := e.round
	if r.Phase != PhasePlayerTurn {
		return nil
	}
	score := r.PlayerScore()
	if score > r.Target && r.Effects.Flags.Shield {
		if i := r.lastDrawnStandard(); i >= 0 {
			discarded := r.PlayerHand[i]
			r.PlayerHand = slices.Delete(r.PlayerHand, i, i+1)
			r.Effects.Flags.Shield = false
			score = r.PlayerScore()
			r.addMessage(fmt.Sprintf("Shield blocks the bust: %s discarded", discarded))
			e.roundLog.Debug("Shield saved bust", "discarded", discarded, "score", score)
			e.emit(ShieldSavedEvent{RoundID: r.ID, Discarded: discarded, Score: score, timestamp: e.clock.Now()})
		}
	}

	switch {
	case score == r.Target && len(r.drawn) > 0:
		e.finish(Outcome{
			Result:      ResultPerfect,
			Reward:      e.reward(e.rules.PerfectReward),
			PlayerScore: score,
			DealerScore: r.DealerScore(),
			Reason:      "exact target",
		})
	case score > r.Target:
		return e.dealerTurn(ctx)
	}
	return nil
}

func (r *RoundState) lastDrawnStandard() int {
	for i := len(r.PlayerHand) - 1; i >= 0; i-- {
		c := r.PlayerHand[i]
		if !c.Special && slices.Contains(r.drawn, c.ID) {
			return i
		}
	}
	return -1
}

func (e *Engine) reward(base int) int {
	if e.round.Effects.Flags.DoubleBet {
		return base * 2
	}
	return base
}

func (e *Engine) finish(o Outcome) {
	r := e.round
	r.Phase = PhaseResolved
	r.PendingChoice = effects.NoChoice
	r.CriticalOptions = nil
	r.Outcome = o
	if o.Reward > 0 {
		e.session.AddCoins(o.Reward)
	}
	r.addMessage(FormatOutcome(o))
	e.roundLog.Info("Round resolved", "result", o.Result, "player", o.PlayerScore, "dealer", o.DealerScore,
		"target", r.Target, "reward", o.Reward)
	e.emit(RoundEndEvent{RoundID: r.ID, Outcome: o, timestamp: e.clock.Now()})
}

func (e *Engine) abort(reason string) error {
	e.finish(Outcome{Result: ResultInsufficientCards, Reason: reason})
	e.roundLog.Warn("Round aborted", "reason", reason)
	return fmt.Errorf("%w: %s", ErrInsufficientCards, reason)
}

// pause releases the engine lock for d, publishing queued events first so
// observers can present them. The busy flag stays set.
func (e *Engine) pause(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	events := e.takeEvents()
	e.mu.Unlock()
	defer e.mu.Lock()

	e.publishAll(events)
	timer := e.clock.NewTimer(d, "engine", "pause")
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (e *Engine) emit(event GameEvent) {
	e.pending = append(e.pending, event)
}

func (e *Engine) takeEvents() []GameEvent {
	events := e.pending
	e.pending = nil
	return events
}

func (e *Engine) publishAll(events []GameEvent) {
	for _, ev := range events {
		e.bus.Publish(ev)
	}
}
