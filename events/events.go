package events

import (
	"context"
	"sync"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// EventType represents different types of events in the system
type EventType string

const (
	EventTypeLotteryCreated  EventType = "lottery_created"
	EventTypeEntered         EventType = "lottery_entered"
	EventTypeWinner          EventType = "lottery_winner"
	EventTypeFundsWithdrawn  EventType = "funds_withdrawn"
	EventTypeLotteryPaused   EventType = "lottery_paused"
	EventTypeLotteryUnpaused EventType = "lottery_unpaused"
	EventTypeFundsReceived   EventType = "funds_received"
)

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// LotteryCreatedEvent announces a newly opened round together with its
// public seed commitment.
type LotteryCreatedEvent struct {
	LotteryID      uuid.UUID
	OwnerAddress   string
	AdminAddress   string
	EntryFee       int64
	MaxEntries     int
	SeedCommitment string
}

func (e LotteryCreatedEvent) Type() EventType {
	return EventTypeLotteryCreated
}

// EnteredEvent represents an accepted entry into a round
type EnteredEvent struct {
	LotteryID uuid.UUID
	Player    string
}

func (e EnteredEvent) Type() EventType {
	return EventTypeEntered
}

// WinnerEvent represents a completed draw
type WinnerEvent struct {
	LotteryID uuid.UUID
	Winner    string
	Winnings  int64
}

func (e WinnerEvent) Type() EventType {
	return EventTypeWinner
}

// FundsWithdrawnEvent represents a completed pull-based withdrawal
type FundsWithdrawnEvent struct {
	LotteryID uuid.UUID
	Payee     string
	Amount    int64
}

func (e FundsWithdrawnEvent) Type() EventType {
	return EventTypeFundsWithdrawn
}

// LotteryPausedEvent represents a round being paused by an operator
type LotteryPausedEvent struct {
	LotteryID uuid.UUID
	Actor     string
}

func (e LotteryPausedEvent) Type() EventType {
	return EventTypeLotteryPaused
}

// LotteryUnpausedEvent represents a round being resumed by an operator
type LotteryUnpausedEvent struct {
	LotteryID uuid.UUID
	Actor     string
}

func (e LotteryUnpausedEvent) Type() EventType {
	return EventTypeLotteryUnpaused
}

// FundsReceivedEvent represents an unsolicited value receipt into the
// escrow account, outside the entry flow.
type FundsReceivedEvent struct {
	LotteryID uuid.UUID
	Sender    string
	Amount    int64
}

func (e FundsReceivedEvent) Type() EventType {
	return EventTypeFundsReceived
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

	if b.handlers[eventType] == nil {
		b.handlers[eventType] = make([]Handler, 0)
	}
	b.handlers[eventType] = append(b.handlers[eventType], handler)

	log.WithFields(log.Fields{
		"eventType":    eventType,
		"handlerCount": len(b.handlers[eventType]),
	}).Debug("Subscribed handler to event type on main event bus")
}

// Emit publishes an event to all registered handlers
func (b *Bus) Emit(ctx context.Context, event Event) {
	b.mu.RLock()
	handlers := make([]Handler, len(b.handlers[event.Type()]))
	copy(handlers, b.handlers[event.Type()])
	b.mu.RUnlock()

	log.WithFields(log.Fields{
		"eventType":    event.Type(),
		"handlerCount": len(handlers),
	}).Debug("Emitting event to handlers on main event bus")

	// Call handlers asynchronously to avoid blocking
	for i, handler := range handlers {
		go func(h Handler, handlerIndex int) {
			defer func() {
				if r := recover(); r != nil {
					log.WithFields(log.Fields{
						"eventType":    event.Type(),
						"handlerIndex": handlerIndex,
						"panic":        r,
					}).Error("Event handler panicked")
				}
			}()
			h(ctx, event)
		}(handler, i)
	}
}

// A transactional event bus for holding pending events coupled to the Unit of Work.
// Flushes to the underlying event bus only after the transaction commits, so a
// rejected operation never emits an event.
type TransactionalBus struct {
	real    *Bus
	pending []Event // stashed until Flush
}

func NewTransactionalBus(real *Bus) *TransactionalBus {
	return &TransactionalBus{real: real}
}

func (b *TransactionalBus) Publish(e Event) {
	log.WithFields(log.Fields{
		"eventType":    e.Type(),
		"pendingCount": len(b.pending),
	}).Debug("Adding event to transactional bus pending queue")
	b.pending = append(b.pending, e)
}

// called after successful DB commit
func (b *TransactionalBus) Flush(ctx context.Context) error {
	log.WithFields(log.Fields{
		"pendingEventCount": len(b.pending),
	}).Debug("Flushing pending events from transactional bus to main event bus")

	// Use background context for event emission to avoid issues with transaction context expiration
	eventCtx := context.Background()

	for _, ev := range b.pending {
		b.real.Emit(eventCtx, ev)
	}
	b.pending = nil
	return nil
}

// called after db rollback or to clear state.
func (b *TransactionalBus) Discard() {
	b.pending = nil
}
