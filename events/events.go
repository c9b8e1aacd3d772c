package events

import (
	"context"
	"sync"

	"betbot/models"

	log "github.com/sirupsen/logrus"
)

// EventType represents different types of events in the system
type EventType string

const (
	EventTypeBetPlaced         EventType = "bet_placed"
	EventTypeBetResolved       EventType = "bet_resolved"
	EventTypeUnitTotalsChanged EventType = "unit_totals_changed"
	EventTypeAchievementEarned EventType = "achievement_earned"
)

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// BetPlacedEvent represents a newly created bet
type BetPlacedEvent struct {
	BetSerial int64
	GuildID   int64
	UserID    int64
	BetType   models.BetType
	Units     float64
	Odds      float64
}

func (e BetPlacedEvent) Type() EventType {
	return EventTypeBetPlaced
}

// BetResolvedEvent represents a bet transitioning out of pending
type BetResolvedEvent struct {
	BetSerial   int64
	GuildID     int64
	UserID      int64
	Status      models.BetStatus
	ResultValue float64
}

func (e BetResolvedEvent) Type() EventType {
	return EventTypeBetResolved
}

// UnitTotalsChangedEvent signals that a guild's unit ledger changed and any
// derived displays (voice channel names, scoreboards) should refresh
type UnitTotalsChangedEvent struct {
	GuildID int64
}

func (e UnitTotalsChangedEvent) Type() EventType {
	return EventTypeUnitTotalsChanged
}

// AchievementEarnedEvent represents a user crossing a win milestone
type AchievementEarnedEvent struct {
	GuildID   int64
	UserID    int64
	Milestone int
	Wins      int
}

func (e AchievementEarnedEvent) Type() EventType {
	return EventTypeAchievementEarned
}

// Handler is a function that handles events
type Handler func(ctx context.Context, event Event)

// Bus manages event subscriptions and dispatching
type Bus struct {
	mu       sync.RWMutex
	handlers map[EventType][]Handler
}

// NewBus creates a new event bus
func NewBus() *Bus {
	return &Bus{
		handlers: make(map[EventType][]Handler),
	}
}

// Subscribe adds a handler for a specific event type
func (b *Bus) Subscribe(eventType EventType, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[eventType] = append(b.handlers[eventType], handler)

	log.WithFields(log.Fields{
		"eventType":    eventType,
		"handlerCount": len(b.handlers[eventType]),
	}).Debug("Subscribed handler to event type")
}

// Emit publishes an event to all registered handlers. Handlers run in their
// own goroutines so a slow notification sink never blocks the caller.
func (b *Bus) Emit(ctx context.Context, event Event) {
	b.mu.RLock()
	handlers := make([]Handler, len(b.handlers[event.Type()]))
	copy(handlers, b.handlers[event.Type()])
	b.mu.RUnlock()

	for _, handler := range handlers {
		go func(h Handler) {
			defer func() {
				if r := recover(); r != nil {
					log.WithFields(log.Fields{
						"eventType": event.Type(),
						"panic":     r,
					}).Error("Event handler panicked")
				}
			}()
			h(ctx, event)
		}(handler)
	}
}

// TransactionalBus stashes events published during a unit of work and emits
// them on the real bus only after the database commit succeeds. A rolled-back
// transaction discards its events, so sinks never observe state that was
// never persisted.
type TransactionalBus struct {
	real    *Bus
	pending []Event
}

func NewTransactionalBus(real *Bus) *TransactionalBus {
	return &TransactionalBus{real: real}
}

func (b *TransactionalBus) Publish(e Event) {
	b.pending = append(b.pending, e)
}

// Flush emits all pending events; called after a successful commit.
func (b *TransactionalBus) Flush(ctx context.Context) error {
	log.WithFields(log.Fields{
		"pendingEventCount": len(b.pending),
	}).Debug("Flushing pending events to main event bus")

	// Events outlive the transaction; emit on a fresh context so sink work
	// is not cut short by the request context expiring.
	eventCtx := context.Background()

	for _, ev := range b.pending {
		b.real.Emit(eventCtx, ev)
	}
	b.pending = nil
	return nil
}

// Discard drops pending events; called after rollback.
func (b *TransactionalBus) Discard() {
	b.pending = nil
}
