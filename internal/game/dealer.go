package game

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/lox/spelljack/internal/effects"
	"github.com/lox/spelljack/internal/scoring"
)

// dealerTurn plays the dealer's hand and resolves the round. A cancelled
// context skips the remaining pauses but still finishes the round.
func (e *Engine) dealerTurn(ctx context.Context) error {
	r := e.round
	r.Phase = PhaseDealerTurn
	r.PendingChoice = effects.NoChoice
	r.CriticalOptions = nil

	threshold := e.rules.DealerThreshold(r.Target)
	e.emit(DealerTurnEvent{RoundID: r.ID, DealerHand: slices.Clone(r.DealerHand), Threshold: threshold, timestamp: e.clock.Now()})

	flags := &r.Effects.Flags
	if flags.RemoveDealerCard {
		flags.RemoveDealerCard = false
		if n := len(r.DealerHand); n > 0 {
			removed := r.DealerHand[n-1]
			r.DealerHand = r.DealerHand[:n-1]
			r.addMessage(fmt.Sprintf("Dealer discards %s", removed))
		}
	}

	paced := true
	wait := func(d time.Duration) {
		if !paced {
			return
		}
		if err := e.pause(ctx, d); err != nil {
			e.roundLog.Debug("Dealer pacing cancelled", "error", err)
			paced = false
		}
	}

	for {
		score := r.DealerScore()
		if score >= threshold || score >= r.Target || r.DealerDeck.IsEmpty() {
			break
		}
		wait(e.pacing.Draw)
		c, _ := r.DealerDeck.Draw()
		r.DealerHand = append(r.DealerHand, c)
		e.emit(CardDrawnEvent{RoundID: r.ID, Role: scoring.Dealer, Card: c, Score: r.DealerScore(), timestamp: e.clock.Now()})
	}

	if flags.DealerTrap && !r.DealerDeck.IsEmpty() {
		c, _ := r.DealerDeck.Draw()
		r.DealerHand = append(r.DealerHand, c)
		flags.DealerTrap = false
		score := r.DealerScore()
		r.addMessage(fmt.Sprintf("Trap! Dealer is forced to draw %s", c))
		e.emit(DealerTrapRevealEvent{RoundID: r.ID, Card: c, DealerScore: score, timestamp: e.clock.Now()})
		wait(e.pacing.TrapReveal)
	}

	e.resolve()
	return nil
}

// resolve determines the winner. Precedence: a shield still up clamps a
// player bust to the target, then player bust, dealer bust, push, higher score.
func (e *Engine) resolve() {
	r := e.round
	player, dealer := r.PlayerScore(), r.DealerScore()
	if r.Effects.Flags.Shield && player > r.Target {
		r.Effects.Flags.Shield = false
		player = r.Target
		r.addMessage(fmt.Sprintf("Shield absorbs the bust, your score counts as %d", player))
	}

	o := Outcome{PlayerScore: player, DealerScore: dealer}
	switch {
	case player > r.Target:
		o.Result = ResultDealerWin
		o.Reason = "player bust"
	case dealer > r.Target:
		o.Result = ResultPlayerWin
		o.Reward = e.reward(e.rules.WinReward)
		o.Reason = "dealer bust"
	case player == dealer:
		o.Result = ResultPush
		o.Reason = "equal scores"
	case player > dealer:
		o.Result = ResultPlayerWin
		o.Reward = e.reward(e.rules.WinReward)
		o.Reason = "higher score"
	default:
		o.Result = ResultDealerWin
		o.Reason = "dealer higher"
	}
	e.finish(o)
}
