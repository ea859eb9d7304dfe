package simulator

import (
	"fmt"

	"github.com/lox/spelljack/internal/deck"
	"github.com/lox/spelljack/internal/game"
	"github.com/lox/spelljack/internal/scoring"
)

// Strategy decides whether the autoplayer draws another card.
type Strategy interface {
	Name() string
	ShouldHit(snap game.Snapshot) bool
}

// Threshold hits while the score is below Percent of the target.
type Threshold struct {
	Percent int
}

func (t Threshold) Name() string { return fmt.Sprintf("threshold(%d%%)", t.Percent) }

func (t Threshold) ShouldHit(snap game.Snapshot) bool {
	return snap.PlayerScore*100 < snap.Target*t.Percent
}

// DealerRule plays the dealer's own rule: hit below the dealer threshold.
type DealerRule struct {
	Rules game.Rules
}

func (d DealerRule) Name() string { return "dealer" }

func (d DealerRule) ShouldHit(snap game.Snapshot) bool {
	return snap.PlayerScore < d.Rules.DealerThreshold(snap.Target)
}

// Never always stands on the opening hand.
type Never struct{}

func (Never) Name() string                 { return "never" }
func (Never) ShouldHit(game.Snapshot) bool { return false }

// ParseStrategy resolves a strategy name.
func ParseStrategy(name string, percent int, rules game.Rules) (Strategy, error) {
	switch name {
	case "", "threshold":
		if percent <= 0 || percent > 100 {
			return nil, fmt.Errorf("threshold percent must be in 1..100, got %d", percent)
		}
		return Threshold{Percent: percent}, nil
	case "dealer":
		return DealerRule{Rules: rules}, nil
	case "never":
		return Never{}, nil
	}
	return nil, fmt.Errorf("unknown strategy %q", name)
}

// chooseSuit picks the suit with the lowest multiplier, so the boost has the
// most room before the cap.
func chooseSuit(snap game.Snapshot) deck.Suit {
	best := deck.Spades
	for _, s := range deck.Suits {
		if snap.Multipliers.Get(s) < snap.Multipliers.Get(best) {
			best = s
		}
	}
	return best
}

// chooseCard picks the critical option that scores highest without passing
// the target, falling back to the first option.
func chooseCard(snap game.Snapshot) int {
	mods := scoring.Modifiers{
		Target:      snap.Target,
		FireAce:     snap.Flags.FireAce,
		RoyalDecree: snap.Flags.RoyalDecree,
		AceArmor:    snap.Flags.AceArmor,
		Live:        snap.Multipliers,
	}
	best, bestScore := 0, -1
	for i, option := range snap.CriticalOptions {
		hand := append(append([]deck.Card(nil), snap.PlayerHand...), option)
		score := scoring.Score(hand, scoring.Player, mods)
		if score <= snap.Target && score > bestScore {
			best, bestScore = i, score
		}
	}
	return best
}
