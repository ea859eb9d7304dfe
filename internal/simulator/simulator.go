// Package simulator autoplays seeded SpellJack rounds and aggregates the results.
package simulator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"runtime"
	"slices"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/lox/spelljack/internal/catalog"
	"github.com/lox/spelljack/internal/deck"
	"github.com/lox/spelljack/internal/effects"
	"github.com/lox/spelljack/internal/game"
	"github.com/lox/spelljack/internal/randutil"
	"github.com/lox/spelljack/internal/statistics"
)

// maxActions bounds the actions taken in one round.
const maxActions = 200

// Config holds configuration for running simulations
type Config struct {
	Rounds      int
	Workers     int
	Seed        int64
	Timeout     time.Duration // per round
	Strategy    Strategy
	Rules       game.Rules
	Loadout     []deck.EffectID // special cards shuffled into every player deck
	UseSpecials bool            // activate manual loadout cards before drawing
	Catalog     *catalog.Catalog
	Logger      *log.Logger
}

// Simulator runs round simulations
type Simulator struct {
	config   Config
	registry *effects.Registry
	loadout  []deck.Card
}

// New creates a simulator, resolving the loadout against the catalog.
func New(config Config) (*Simulator, error) {
	if config.Rounds <= 0 {
		return nil, fmt.Errorf("rounds must be positive, got %d", config.Rounds)
	}
	if config.Logger == nil {
		config.Logger = log.New(io.Discard)
	}
	if config.Strategy == nil {
		config.Strategy = Threshold{Percent: 80}
	}
	if config.Rules == (game.Rules{}) {
		config.Rules = game.DefaultRules()
	}
	if config.Workers <= 0 {
		config.Workers = runtime.NumCPU()
	}
	config.Workers = min(config.Workers, config.Rounds)
	if config.Timeout <= 0 {
		config.Timeout = 5 * time.Second
	}
	if config.Catalog == nil {
		cat, err := catalog.Default()
		if err != nil {
			return nil, err
		}
		config.Catalog = cat
	}

	s := &Simulator{
		config:   config,
		registry: effects.NewRegistry(config.Catalog, config.Logger),
	}
	for _, id := range config.Loadout {
		d, ok := config.Catalog.LookupEffect(id)
		if !ok {
			return nil, fmt.Errorf("loadout: %w: %s", effects.ErrUnknownEffect, id)
		}
		s.loadout = append(s.loadout, d.Card)
	}
	return s, nil
}

// Run plays every round across the configured workers. Round i uses seed
// Seed+i, so results do not depend on the worker count.
func (s *Simulator) Run(ctx context.Context) (*statistics.Statistics, error) {
	workers := s.config.Workers
	perWorker := make([]*statistics.Statistics, workers)

	g, ctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		stats := statistics.New(s.config.Rules.ClassicTargetLimit)
		perWorker[w] = stats
		g.Go(func() error {
			for i := w; i < s.config.Rounds; i += workers {
				if err := ctx.Err(); err != nil {
					return err
				}
				result, err := s.PlayRound(ctx, s.config.Seed+int64(i))
				if err != nil {
					return fmt.Errorf("round %d: %w", i+1, err)
				}
				stats.Add(result)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	total := statistics.New(s.config.Rules.ClassicTargetLimit)
	for _, stats := range perWorker {
		total.Merge(stats)
	}
	if err := total.Validate(); err != nil {
		return nil, fmt.Errorf("statistics validation failed: %w", err)
	}
	return total, nil
}

// simSession is the throwaway session of one simulated round.
type simSession struct {
	mu      sync.Mutex
	loadout []deck.Card
	coins   int
}

func (s *simSession) ActivePlayDeck() []deck.Card       { return nil }
func (s *simSession) ActiveSpecialLoadout() []deck.Card { return s.loadout }

func (s *simSession) AddCoins(amount int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.coins += amount
}

func (s *simSession) SpendCoins(amount int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if amount > s.coins {
		return false
	}
	s.coins -= amount
	return true
}

// PlayRound autoplays one round from seed.
func (s *Simulator) PlayRound(ctx context.Context, seed int64) (statistics.RoundResult, error) {
	ctx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	sess := &simSession{loadout: slices.Clone(s.loadout)}
	engine := game.NewEngine(sess, s.registry, s.config.Logger,
		game.WithRand(randutil.New(seed)),
		game.WithRules(s.config.Rules),
		game.WithPacing(game.Pacing{}),
		game.WithRoundIDs(func() string { return fmt.Sprintf("sim-%d", seed) }),
	)

	snap, err := engine.StartRound(ctx)
	tried := make(map[int]bool)
	for actions := 0; err == nil && snap.Active(); actions++ {
		if actions >= maxActions {
			return statistics.RoundResult{}, fmt.Errorf("round did not finish after %d actions (seed %d)", maxActions, seed)
		}
		snap, err = s.step(ctx, engine, snap, tried)
	}
	if err != nil && !errors.Is(err, game.ErrInsufficientCards) {
		return statistics.RoundResult{}, fmt.Errorf("seed %d: %w", seed, err)
	}

	s.config.Logger.Debug("Round finished", "seed", seed, "result", snap.Outcome.Result, "score", snap.PlayerScore, "target", snap.Target)
	return statistics.RoundResult{
		Seed:        seed,
		Result:      snap.Outcome.Result,
		Coins:       sess.coins,
		PlayerScore: snap.Outcome.PlayerScore,
		DealerScore: snap.Outcome.DealerScore,
		Target:      snap.Target,
		Cards:       len(snap.PlayerHand),
		Busted:      snap.Outcome.PlayerScore > snap.Target,
		Specials:    len(snap.Used),
	}, nil
}

// step takes the next action for the current snapshot.
func (s *Simulator) step(ctx context.Context, engine *game.Engine, snap game.Snapshot, tried map[int]bool) (game.Snapshot, error) {
	switch snap.PendingChoice {
	case effects.SuitChoice:
		return engine.ChooseSuit(ctx, chooseSuit(snap))
	case effects.CardChoice:
		return engine.ChooseCriticalCard(ctx, chooseCard(snap))
	}

	if s.config.UseSpecials {
		for _, lc := range snap.Loadout {
			if lc.Used || tried[lc.Card.ID] || lc.Card.Activation != deck.Manual {
				continue
			}
			tried[lc.Card.ID] = true
			next, err := engine.ActivateSpecialCard(ctx, lc.Card.ID)
			if errors.Is(err, game.ErrInvalidActivation) {
				return next, nil
			}
			return next, err
		}
	}

	if s.config.Strategy.ShouldHit(snap) {
		return engine.Hit(ctx)
	}
	return engine.Stand(ctx)
}

// PrintSummary writes a summary of simulation results
func PrintSummary(w io.Writer, stats *statistics.Statistics, label string) {
	low, high := stats.ConfidenceInterval95()

	fmt.Fprintf(w, "\n=== RESULTS: %s ===\n", label)
	fmt.Fprintf(w, "Rounds played: %d\n", stats.Rounds)
	fmt.Fprintf(w, "Wins: %d (%.1f%%), perfect: %d (%.1f%%)\n",
		stats.Wins, stats.WinRate()*100, stats.Perfects, stats.Rate(stats.Perfects)*100)
	fmt.Fprintf(w, "Losses: %d (%.1f%%), pushes: %d (%.1f%%), aborted: %d\n",
		stats.Losses, stats.Rate(stats.Losses)*100, stats.Pushes, stats.Rate(stats.Pushes)*100, stats.Aborted)
	fmt.Fprintf(w, "Busts: %d (%.1f%%)\n", stats.Busts, stats.Rate(stats.Busts)*100)

	fmt.Fprintf(w, "\n=== COINS ===\n")
	fmt.Fprintf(w, "Mean: %.3f coins/round\n", stats.Mean())
	fmt.Fprintf(w, "Median: %.3f coins/round\n", stats.Median())
	fmt.Fprintf(w, "Std Dev: %.3f\n", stats.StdDev())
	fmt.Fprintf(w, "95%% CI: [%.3f, %.3f] coins/round\n", low, high)
	fmt.Fprintf(w, "Best round: %d coins, highest target: %d\n", stats.MaxCoins, stats.MaxTarget)

	fmt.Fprintf(w, "\n=== TARGET BANDS ===\n")
	for band, name := range statistics.BandNames {
		b := stats.Bands[band]
		if b.Rounds == 0 {
			continue
		}
		fmt.Fprintf(w, "%-8s %6d rounds, win rate %.1f%%, %.3f coins/round\n",
			name, b.Rounds, float64(b.Wins)/float64(b.Rounds)*100, stats.BandMean(band))
	}
	if stats.Specials > 0 {
		fmt.Fprintf(w, "\nSpecial cards activated: %d\n", stats.Specials)
	}
}
