package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/lox/spelljack/cmd/spelljack/shared"
	"github.com/lox/spelljack/internal/deck"
	"github.com/lox/spelljack/internal/randutil"
	"github.com/lox/spelljack/internal/simulator"
)

type SimulateCmd struct {
	Rounds      int           `kong:"default='10000',help='Number of rounds to play'"`
	Workers     int           `kong:"default='0',help='Parallel workers (0 = NumCPU)'"`
	Seed        *int64        `kong:"help='Base seed; round i uses seed+i (random if unset)'"`
	Strategy    string        `kong:"default='threshold',enum='threshold,dealer,never',help='Hit strategy'"`
	Percent     int           `kong:"default='80',help='Threshold strategy: hit below this percent of the target'"`
	Loadout     []string      `kong:"help='Special effects shuffled into every deck (e.g. shield,doubleBet)'"`
	UseSpecials bool          `kong:"name='use-specials',help='Activate manual loadout cards before drawing'"`
	Timeout     time.Duration `kong:"default='5s',help='Per-round timeout'"`
}

func (c *SimulateCmd) Run(g *Globals) error {
	a, err := newApp(context.Background(), g, false)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := shared.SetupSignalHandler(a.logger)

	strategy, err := simulator.ParseStrategy(c.Strategy, c.Percent, a.cfg.Rules)
	if err != nil {
		return err
	}

	seed := randutil.NewSeed()
	if c.Seed != nil {
		seed = *c.Seed
	}

	loadout := make([]deck.EffectID, 0, len(c.Loadout))
	for _, id := range c.Loadout {
		loadout = append(loadout, deck.EffectID(id))
	}

	sim, err := simulator.New(simulator.Config{
		Rounds:      c.Rounds,
		Workers:     c.Workers,
		Seed:        seed,
		Timeout:     c.Timeout,
		Strategy:    strategy,
		Rules:       a.cfg.Rules,
		Loadout:     loadout,
		UseSpecials: c.UseSpecials,
		Catalog:     a.catalog,
		Logger:      a.logger,
	})
	if err != nil {
		return err
	}

	a.logger.Info("Running simulation", "rounds", c.Rounds, "strategy", strategy.Name(), "seed", seed)
	start := time.Now()
	stats, err := sim.Run(ctx)
	if err != nil {
		return fmt.Errorf("simulation failed: %w", err)
	}
	a.logger.Info("Simulation complete", "duration", time.Since(start).Round(time.Millisecond))

	simulator.PrintSummary(os.Stdout, stats, strategy.Name())
	return nil
}
