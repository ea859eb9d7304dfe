package game

import (
	"fmt"
	"slices"

	"github.com/lox/spelljack/internal/effects"
	"github.com/lox/spelljack/internal/scoring"
)

// criticalOptions is how many cards a critical choice reveals.
const criticalOptions = 3

// runAction performs the hand or deck manipulation an effect asked for.
func (e *Engine) runAction(a effects.Action) error {
	switch a {
	case effects.SwapCard:
		return e.swapCard()
	case effects.ResetHand:
		return e.resetHand()
	case effects.RevealNextSuit:
		e.revealNextSuit()
	case effects.DiscardRandom:
		e.discardRandom()
	case effects.PreviewNextDraw:
		e.previewNextDraw()
	}
	return nil
}

// swapCard returns the most recent standard card to the deck, reshuffles and
// draws a replacement.
func (e *Engine) swapCard() error {
	r := e.round
	i := lastStandard(r)
	if i < 0 {
		r.addMessage("No card to swap")
		return nil
	}
	old := r.PlayerHand[i]
	r.PlayerHand = slices.Delete(r.PlayerHand, i, i+1)
	r.PlayerDeck.Return(old)
	r.PlayerDeck.Shuffle(e.rng)

	c, _ := r.PlayerDeck.Draw()
	c = e.addPlayerCard(c)
	r.addMessage(fmt.Sprintf("Swapped %s for %s", old, c))
	if c.Special {
		return e.activate(c)
	}
	return nil
}

// resetHand discards the whole player hand and deals two new cards.
func (e *Engine) resetHand() error {
	r := e.round
	discarded := len(r.PlayerHand)
	r.PlayerHand = nil
	r.addMessage(fmt.Sprintf("Hand reset: %d cards discarded", discarded))
	for range 2 {
		if err := e.drawPlayer(); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) revealCriticalOptions() {
	r := e.round
	options := r.PlayerDeck.DrawN(criticalOptions)
	if len(options) == 0 {
		r.addMessage("No cards left to choose from")
		return
	}
	r.CriticalOptions = options
	r.PendingChoice = effects.CardChoice
}

func (e *Engine) revealNextSuit() {
	r := e.round
	next, ok := r.PlayerDeck.Peek()
	switch {
	case !ok:
		r.addMessage("The deck is empty")
	case next.Special:
		r.addMessage("The next card is a special card")
	default:
		r.addMessage(fmt.Sprintf("The next card is a %s (%s)", next.Suit.Name(), next.Suit))
	}
}

// discardRandom drops one random card from the player's hand for a coin reward.
func (e *Engine) discardRandom() {
	r := e.round
	if len(r.PlayerHand) == 0 {
		r.addMessage("No card to discard")
		return
	}
	i := e.rng.IntN(len(r.PlayerHand))
	c := r.PlayerHand[i]
	r.PlayerHand = slices.Delete(r.PlayerHand, i, i+1)
	e.session.AddCoins(e.rules.LeafFallReward)
	r.addMessage(fmt.Sprintf("Leaf fall: %s discarded, +%d coins", c, e.rules.LeafFallReward))
}

// previewNextDraw reports how the next card would change the player's score
// without drawing it.
func (e *Engine) previewNextDraw() {
	r := e.round
	next, ok := r.PlayerDeck.Peek()
	if !ok {
		r.addMessage("The deck is empty")
		return
	}
	if !next.Special {
		next.Multiplier = r.Effects.Multipliers.Get(next.Suit)
		next.HalfValue = r.Effects.Flags.SlowDraws > 0
	}
	before := r.PlayerScore()
	after := scoring.Score(append(slices.Clone(r.PlayerHand), next), scoring.Player, r.modifiers())
	r.addMessage(fmt.Sprintf("Destiny: the next card takes you from %d to %d (%+d)", before, after, after-before))
}

func lastStandard(r *RoundState) int {
	for i := len(r.PlayerHand) - 1; i >= 0; i-- {
		if !r.PlayerHand[i].Special {
			return i
		}
	}
	return -1
}
