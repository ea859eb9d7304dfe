package game

import (
	"slices"

	"github.com/lox/spelljack/internal/deck"
	"github.com/lox/spelljack/internal/effects"
	"github.com/lox/spelljack/internal/scoring"
)

// Phase is the round state machine position.
type Phase int

const (
	PhaseSetup Phase = iota
	PhasePlayerTurn
	PhaseDealerTurn
	PhaseResolved
)

func (p Phase) String() string {
	switch p {
	case PhaseSetup:
		return "setup"
	case PhasePlayerTurn:
		return "player"
	case PhaseDealerTurn:
		return "dealer"
	case PhaseResolved:
		return "resolved"
	default:
		return "unknown"
	}
}

// Result is how a round ended.
type Result int

const (
	ResultNone Result = iota
	ResultPlayerWin
	ResultPerfect
	ResultDealerWin
	ResultPush
	ResultInsufficientCards
)

func (r Result) String() string {
	switch r {
	case ResultPlayerWin:
		return "win"
	case ResultPerfect:
		return "perfect"
	case ResultDealerWin:
		return "loss"
	case ResultPush:
		return "push"
	case ResultInsufficientCards:
		return "insufficient_cards"
	default:
		return "none"
	}
}

// PlayerWon reports whether the player was paid for the round.
func (r Result) PlayerWon() bool {
	return r == ResultPlayerWin || r == ResultPerfect
}

// Outcome is the final result of a resolved round.
type Outcome struct {
	Result      Result
	Reward      int
	PlayerScore int
	DealerScore int
	Reason      string
}

// RoundState is the mutable record of one round. It is owned by the Engine
// and replaced wholesale by StartRound.
type RoundState struct {
	ID     string
	Phase  Phase
	Target int

	Effects effects.State
	Used    map[int]bool

	PlayerHand []deck.Card
	DealerHand []deck.Card
	PlayerDeck *deck.Deck
	DealerDeck *deck.Deck

	// Loadout is the special loadout captured at round start.
	Loadout []deck.Card

	PendingChoice   effects.Choice
	CriticalOptions []deck.Card

	Messages []string
	Outcome  Outcome

	// ids of player cards drawn by the action in flight
	drawn []int
}

func newRoundState(id string) *RoundState {
	return &RoundState{
		ID:      id,
		Phase:   PhaseSetup,
		Effects: effects.State{Multipliers: deck.Uniform(deck.MinMultiplier)},
		Used:    make(map[int]bool),
	}
}

func (r *RoundState) modifiers() scoring.Modifiers {
	f := r.Effects.Flags
	return scoring.Modifiers{
		Target:      r.Target,
		FireAce:     f.FireAce,
		RoyalDecree: f.RoyalDecree,
		AceArmor:    f.AceArmor,
		Live:        r.Effects.Multipliers,
	}
}

// PlayerScore recomputes the player's score from the full hand.
func (r *RoundState) PlayerScore() int {
	return scoring.Score(r.PlayerHand, scoring.Player, r.modifiers())
}

// DealerScore recomputes the dealer's score from the full hand.
func (r *RoundState) DealerScore() int {
	return scoring.Score(r.DealerHand, scoring.Dealer, r.modifiers())
}

func (r *RoundState) addMessage(msg string) {
	if msg != "" {
		r.Messages = append(r.Messages, msg)
	}
}

func (r *RoundState) loadoutCard(id int) (deck.Card, bool) {
	for _, c := range r.Loadout {
		if c.ID == id {
			return c, true
		}
	}
	return deck.Card{}, false
}

// LoadoutCard is a loadout entry as seen by the presentation layer.
type LoadoutCard struct {
	Card deck.Card
	Used bool
}

// Snapshot is a read-only copy of the round for presentation.
type Snapshot struct {
	RoundID string
	Phase   Phase
	Target  int

	Multipliers   deck.Multipliers
	Flags         effects.Flags
	ActiveEffects []string
	Used          []int

	PlayerHand     []deck.Card
	DealerHand     []deck.Card
	PlayerScore    int
	DealerScore    int
	DealerUpScore  int
	PlayerDeckSize int
	DealerDeckSize int

	Loadout         []LoadoutCard
	PendingChoice   effects.Choice
	CriticalOptions []deck.Card

	Messages []string
	Outcome  Outcome
}

// Active reports whether the round still accepts player actions.
func (s Snapshot) Active() bool {
	return s.Phase == PhasePlayerTurn
}

// DealerHidden reports whether the dealer's hole card should be hidden.
func (s Snapshot) DealerHidden() bool {
	return s.Phase == PhasePlayerTurn && !s.Flags.RevealDealerCard
}

// LastMessage returns the most recent round message.
func (s Snapshot) LastMessage() string {
	if len(s.Messages) == 0 {
		return ""
	}
	return s.Messages[len(s.Messages)-1]
}

func (r *RoundState) snapshot() Snapshot {
	if r == nil {
		return Snapshot{Phase: PhaseSetup}
	}
	s := Snapshot{
		RoundID:         r.ID,
		Phase:           r.Phase,
		Target:          r.Target,
		Multipliers:     r.Effects.Multipliers,
		Flags:           r.Effects.Flags,
		ActiveEffects:   r.Effects.Flags.Active(),
		PlayerHand:      slices.Clone(r.PlayerHand),
		DealerHand:      slices.Clone(r.DealerHand),
		PendingChoice:   r.PendingChoice,
		CriticalOptions: slices.Clone(r.CriticalOptions),
		Messages:        slices.Clone(r.Messages),
		Outcome:         r.Outcome,
	}
	if r.Outcome.Result != ResultInsufficientCards {
		s.PlayerScore = r.PlayerScore()
		s.DealerScore = r.DealerScore()
		if len(r.DealerHand) > 0 {
			s.DealerUpScore = scoring.Score(r.DealerHand[:1], scoring.Dealer, r.modifiers())
		}
	}
	if r.PlayerDeck != nil {
		s.PlayerDeckSize = r.PlayerDeck.Len()
	}
	if r.DealerDeck != nil {
		s.DealerDeckSize = r.DealerDeck.Len()
	}
	for id := range r.Used {
		s.Used = append(s.Used, id)
	}
	slices.Sort(s.Used)
	for _, c := range r.Loadout {
		s.Loadout = append(s.Loadout, LoadoutCard{Card: c, Used: r.Used[c.ID]})
	}
	return s
}
