package game

import (
	"fmt"
	"strings"

	"github.com/lox/spelljack/internal/deck"
	"github.com/lox/spelljack/internal/scoring"
)

// FormattingOptions controls how events are formatted for different contexts
type FormattingOptions struct {
	Color      bool // ANSI colour for red suits
	ShowScores bool // Include running scores after draws
}

// EventFormatter provides centralized formatting for round events
type EventFormatter struct {
	opts FormattingOptions
}

// NewEventFormatter creates a new event formatter with the given options
func NewEventFormatter(opts FormattingOptions) *EventFormatter {
	return &EventFormatter{opts: opts}
}

// Format renders any round event as a single human-readable line.
func (ef *EventFormatter) Format(event GameEvent) string {
	switch e := event.(type) {
	case RoundStartEvent:
		return fmt.Sprintf("Round %s: target %d, you hold %s", shortID(e.RoundID), e.Target, ef.formatCards(e.PlayerHand))
	case CardDrawnEvent:
		who := "You draw"
		if e.Role == scoring.Dealer {
			who = "Dealer draws"
		}
		line := fmt.Sprintf("%s %s", who, ef.formatCard(e.Card))
		if ef.opts.ShowScores {
			line += fmt.Sprintf(" (score %d)", e.Score)
		}
		return line
	case EffectActivatedEvent:
		return e.Message
	case ShieldSavedEvent:
		return fmt.Sprintf("Shield blocks the bust: %s discarded, score back to %d", ef.formatCard(e.Discarded), e.Score)
	case DealerTurnEvent:
		return fmt.Sprintf("Dealer reveals %s and plays to %d", ef.formatCards(e.DealerHand), e.Threshold)
	case DealerTrapRevealEvent:
		return fmt.Sprintf("Trap! Dealer is forced to draw %s (score %d)", ef.formatCard(e.Card), e.DealerScore)
	case RoundEndEvent:
		return FormatOutcome(e.Outcome)
	case ActionRejectedEvent:
		return fmt.Sprintf("Cannot %s: %s", e.Action, e.Reason)
	default:
		return string(event.EventType())
	}
}

// FormatOutcome describes a resolved round.
func FormatOutcome(o Outcome) string {
	switch o.Result {
	case ResultPerfect:
		return fmt.Sprintf("Perfect %d! You win %d coins", o.PlayerScore, o.Reward)
	case ResultPlayerWin:
		return fmt.Sprintf("You win %d to %d, +%d coins", o.PlayerScore, o.DealerScore, o.Reward)
	case ResultDealerWin:
		return fmt.Sprintf("Dealer wins %d to %d", o.DealerScore, o.PlayerScore)
	case ResultPush:
		return fmt.Sprintf("Push at %d", o.PlayerScore)
	case ResultInsufficientCards:
		return "Round aborted: " + o.Reason
	default:
		return ""
	}
}

func (ef *EventFormatter) formatCards(cards []deck.Card) string {
	parts := make([]string, 0, len(cards))
	for _, c := range cards {
		parts = append(parts, ef.formatCard(c))
	}
	return "[" + strings.Join(parts, " ") + "]"
}

func (ef *EventFormatter) formatCard(card deck.Card) string {
	if ef.opts.Color && card.IsRed() {
		return fmt.Sprintf("\033[31m%s\033[0m", card.String())
	}
	return card.String()
}

// shortID keeps the random tail of a round id; the head is a timestamp.
func shortID(id string) string {
	if len(id) > 8 {
		return id[len(id)-8:]
	}
	return id
}
