package game

import (
	"sync"
	"time"

	"github.com/lox/spelljack/internal/deck"
	"github.com/lox/spelljack/internal/scoring"
)

// EventType represents a game event type with type safety
type EventType string

// EventType constants for round events
const (
	EventTypeRoundStart       EventType = "round_start"
	EventTypeCardDrawn        EventType = "card_drawn"
	EventTypeEffectActivated  EventType = "effect_activated"
	EventTypeShieldSaved      EventType = "shield_saved"
	EventTypeDealerTurn       EventType = "dealer_turn"
	EventTypeDealerTrapReveal EventType = "dealer_trap_reveal"
	EventTypeRoundEnd         EventType = "round_end"
	EventTypeActionRejected   EventType = "action_rejected"
)

// String returns the string representation of the event type
func (et EventType) String() string {
	return string(et)
}

// GameEvent represents any event that occurs during a round
type GameEvent interface {
	EventType() EventType
	Timestamp() time.Time
}

// RoundStartEvent is published once the opening hands are dealt and any
// specials in them have resolved.
type RoundStartEvent struct {
	RoundID     string
	Target      int
	Multipliers deck.Multipliers
	PlayerHand  []deck.Card
	DealerHand  []deck.Card
	timestamp   time.Time
}

func (e RoundStartEvent) EventType() EventType { return EventTypeRoundStart }
func (e RoundStartEvent) Timestamp() time.Time { return e.timestamp }

// CardDrawnEvent is published for every card added to a hand after the
// opening deal.
type CardDrawnEvent struct {
	RoundID   string
	Role      scoring.Role
	Card      deck.Card
	Score     int
	timestamp time.Time
}

func (e CardDrawnEvent) EventType() EventType { return EventTypeCardDrawn }
func (e CardDrawnEvent) Timestamp() time.Time { return e.timestamp }

// EffectActivatedEvent is published when a special card's effect resolves.
type EffectActivatedEvent struct {
	RoundID   string
	CardID    int
	Effect    deck.EffectID
	Message   string
	timestamp time.Time
}

func (e EffectActivatedEvent) EventType() EventType { return EventTypeEffectActivated }
func (e EffectActivatedEvent) Timestamp() time.Time { return e.timestamp }

// ShieldSavedEvent is published when the shield discards a busting card.
type ShieldSavedEvent struct {
	RoundID   string
	Discarded deck.Card
	Score     int
	timestamp time.Time
}

func (e ShieldSavedEvent) EventType() EventType { return EventTypeShieldSaved }
func (e ShieldSavedEvent) Timestamp() time.Time { return e.timestamp }

// DealerTurnEvent is published when the dealer starts playing.
type DealerTurnEvent struct {
	RoundID    string
	DealerHand []deck.Card
	Threshold  int
	timestamp  time.Time
}

func (e DealerTurnEvent) EventType() EventType { return EventTypeDealerTurn }
func (e DealerTurnEvent) Timestamp() time.Time { return e.timestamp }

// DealerTrapRevealEvent is published when the trap forces an extra dealer draw,
// before the round is resolved.
type DealerTrapRevealEvent struct {
	RoundID     string
	Card        deck.Card
	DealerScore int
	timestamp   time.Time
}

func (e DealerTrapRevealEvent) EventType() EventType { return EventTypeDealerTrapReveal }
func (e DealerTrapRevealEvent) Timestamp() time.Time { return e.timestamp }

// RoundEndEvent is published when a round is resolved.
type RoundEndEvent struct {
	RoundID   string
	Outcome   Outcome
	timestamp time.Time
}

func (e RoundEndEvent) EventType() EventType { return EventTypeRoundEnd }
func (e RoundEndEvent) Timestamp() time.Time { return e.timestamp }

// ActionRejectedEvent is published when an action is refused.
type ActionRejectedEvent struct {
	RoundID   string
	Action    string
	Reason    string
	timestamp time.Time
}

func (e ActionRejectedEvent) EventType() EventType { return EventTypeActionRejected }
func (e ActionRejectedEvent) Timestamp() time.Time { return e.timestamp }

// EventSubscriber can subscribe to game events
type EventSubscriber interface {
	OnEvent(event GameEvent)
}

// SubscriberFunc adapts a function to EventSubscriber.
type SubscriberFunc func(GameEvent)

func (f SubscriberFunc) OnEvent(event GameEvent) { f(event) }

// EventBus manages event publishing and subscription
type EventBus interface {
	Subscribe(subscriber EventSubscriber)
	Unsubscribe(subscriber EventSubscriber)
	Publish(event GameEvent)
}

// SimpleEventBus is a basic in-memory event bus implementation
type SimpleEventBus struct {
	mu          sync.RWMutex
	subscribers []EventSubscriber
}

// NewEventBus creates a new event bus
func NewEventBus() EventBus {
	return &SimpleEventBus{
		subscribers: make([]EventSubscriber, 0),
	}
}

// Subscribe adds a subscriber to receive events
func (bus *SimpleEventBus) Subscribe(subscriber EventSubscriber) {
	bus.mu.Lock()
	defer bus.mu.Unlock()
	bus.subscribers = append(bus.subscribers, subscriber)
}

// Unsubscribe removes a subscriber from receiving events. Subscribers must be
// comparable; SubscriberFunc values cannot be unsubscribed.
func (bus *SimpleEventBus) Unsubscribe(subscriber EventSubscriber) {
	bus.mu.Lock()
	defer bus.mu.Unlock()
	for i, sub := range bus.subscribers {
		if sub == subscriber {
			bus.subscribers = append(bus.subscribers[:i], bus.subscribers[i+1:]...)
			break
		}
	}
}

// Publish sends an event to all subscribers in subscription order.
func (bus *SimpleEventBus) Publish(event GameEvent) {
	bus.mu.RLock()
	subs := make([]EventSubscriber, len(bus.subscribers))
	copy(subs, bus.subscribers)
	bus.mu.RUnlock()

	for _, subscriber := range subs {
		subscriber.OnEvent(event)
	}
}
