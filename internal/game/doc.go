// Package game implements the SpellJack round engine.
//
// The main type is Engine, which owns one RoundState at a time and drives it
// through four phases:
//
//	Setup -> PlayerTurn -> DealerTurn -> Resolved
//
// A new round can be started from any phase; the previous round is abandoned
// and only session state (coins, collection) carries over.
//
// # Basic Usage
//
//	eng := game.NewEngine(sess, effects.NewRegistry(cat, logger), logger)
//	snap, err := eng.StartRound(ctx)
//	snap, err = eng.Hit(ctx)
//	snap, err = eng.Stand(ctx)
//
// Every action returns the updated Snapshot. Rejected actions return an error
// with a readable reason and also publish an ActionRejectedEvent.
//
// # Deterministic Testing
//
// All randomness flows through a randutil.Source and all pacing delays through
// a quartz.Clock, so a round can be replayed exactly:
//
//	eng := game.NewEngine(sess, reg, logger,
//	    game.WithRand(randutil.New(42)),
//	    game.WithPacing(game.Pacing{}))
//	snap, err := eng.StartRound(ctx,
//	    game.WithTarget(21),
//	    game.WithMultipliers(deck.Uniform(deck.MinMultiplier)),
//	    game.WithDecks(deck.Stacked(playerCards...), deck.Stacked(dealerCards...)))
//
// # Concurrency
//
// The engine runs one action at a time. An action submitted while another is in
// flight, including during a pacing pause, is rejected with ErrBusy.
// RoundState may be called at any time.
package game
