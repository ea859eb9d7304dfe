package game

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/require"

	"github.com/lox/spelljack/internal/catalog"
	"github.com/lox/spelljack/internal/deck"
	"github.com/lox/spelljack/internal/effects"
	"github.com/lox/spelljack/internal/randutil"
)

// fakeSession is an in-memory Session.
type fakeSession struct {
	mu      sync.Mutex
	play    []deck.Card
	loadout []deck.Card
	coins   int
}

func (s *fakeSession) ActivePlayDeck() []deck.Card       { return s.play }
func (s *fakeSession) ActiveSpecialLoadout() []deck.Card { return s.loadout }

func (s *fakeSession) AddCoins(amount int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.coins += amount
}

func (s *fakeSession) SpendCoins(amount int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if amount > s.coins {
		return false
	}
	s.coins -= amount
	return true
}

func (s *fakeSession) Coins() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.coins
}

// eventRecorder captures published events.
type eventRecorder struct {
	mu     sync.Mutex
	events []GameEvent
}

func (r *eventRecorder) OnEvent(event GameEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *eventRecorder) Types() []EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	types := make([]EventType, 0, len(r.events))
	for _, e := range r.events {
		types = append(types, e.EventType())
	}
	return types
}

func (r *eventRecorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}

func testLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.ErrorLevel})
}

func testContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func newTestEngine(t *testing.T, sess Session, opts ...EngineOption) *Engine {
	t.Helper()
	cat, err := catalog.Default()
	require.NoError(t, err)
	reg := effects.NewRegistry(cat, testLogger())

	defaults := []EngineOption{
		WithRand(randutil.New(1)),
		WithPacing(Pacing{}),
		WithRoundIDs(func() string { return "round-test" }),
	}
	return NewEngine(sess, reg, testLogger(), append(defaults, opts...)...)
}

// cardMaker mints parsed cards with unique ids.
type cardMaker struct {
	t   *testing.T
	ids *deck.IDSource
}

func newCardMaker(t *testing.T) *cardMaker {
	return &cardMaker{t: t, ids: deck.NewIDSource(1)}
}

func (m *cardMaker) cards(specs ...string) []deck.Card {
	m.t.Helper()
	out := make([]deck.Card, 0, len(specs))
	for _, s := range specs {
		c, err := deck.ParseCard(m.ids.Next(), s)
		require.NoError(m.t, err)
		out = append(out, c)
	}
	return out
}

func (m *cardMaker) special(effect deck.EffectID, activation deck.Activation) deck.Card {
	return deck.NewSpecialCard(m.ids.Next(), string(effect), effect, activation)
}

// classicRound fixes the target at 21 with every multiplier at x1.0. The
// first two cards of each slice are the opening hand.
func classicRound(player, dealer []deck.Card) []RoundOption {
	return []RoundOption{
		WithTarget(21),
		WithMultipliers(deck.Uniform(deck.MinMultiplier)),
		WithDecks(deck.Stacked(player...), deck.Stacked(dealer...)),
	}
}

func handStrings(cards []deck.Card) []string {
	out := make([]string, 0, len(cards))
	for _, c := range cards {
		out = append(out, c.String())
	}
	return out
}
