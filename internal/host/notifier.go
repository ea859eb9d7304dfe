// Package host forwards round results to the embedding platform: outcome
// notifications, haptic feedback and score sharing. Every call is
// fire-and-forget; failures are logged and never reach the round.
package host

import (
	"fmt"

	"github.com/charmbracelet/log"
)

// Haptic feedback kinds.
const (
	HapticSuccess = "success"
	HapticWarning = "warning"
	HapticError   = "error"
)

// Notifier is the host platform surface.
type Notifier interface {
	NotifyOutcome(outcome string, score int)
	Haptic(kind string)
	ShareScore(score int)
}

// Nop discards every notification.
type Nop struct{}

func (Nop) NotifyOutcome(string, int) {}
func (Nop) Haptic(string)             {}
func (Nop) ShareScore(int)            {}

// LogNotifier writes notifications to a logger. Used when no host bridge is
// configured.
type LogNotifier struct {
	logger *log.Logger
}

// NewLogNotifier creates a LogNotifier.
func NewLogNotifier(logger *log.Logger) *LogNotifier {
	return &LogNotifier{logger: logger.WithPrefix("host")}
}

func (n *LogNotifier) NotifyOutcome(outcome string, score int) {
	n.logger.Info("Round outcome", "outcome", outcome, "score", score)
}

func (n *LogNotifier) Haptic(kind string) {
	n.logger.Debug("Haptic", "kind", kind)
}

func (n *LogNotifier) ShareScore(score int) {
	n.logger.Info("Share score", "text", ShareText(score))
}

// ShareText is the message posted when a score is shared.
func ShareText(score int) string {
	return fmt.Sprintf("Scored %d in SpellJack! 🃏", score)
}
