package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"courtside/contract"
	"courtside/domain"
	"courtside/domain/event"
	"courtside/runtime/workers"
)

// Hub owns the event pipeline between the stores and the live
// subscribers. Publish order equals delivery order for one game,
// which is what lets the message feed treat the stream as the single
// source of truth for ordering.
type Hub struct {
	mu             sync.Mutex
	log            *slog.Logger
	supervisor     contract.ISupervisor
	registry       contract.IRegistry
	events         chan event.DomainEvent
	permanentSinks []contract.EventSink
	sinkTimeout    time.Duration
}

func NewHub(log *slog.Logger, supervisor contract.ISupervisor,
	registry contract.IRegistry, bufferSize int, sinkTimeout time.Duration) *Hub {
	return &Hub{
		log:         log,
		supervisor:  supervisor,
		registry:    registry,
		events:      make(chan event.DomainEvent, bufferSize),
		sinkTimeout: sinkTimeout,
	}
}

// Add registers sinks that receive every event regardless of game,
// such as the search indexer.
func (h *Hub) Add(sinks ...contract.EventSink) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.permanentSinks = append(h.permanentSinks, sinks...)
}

// Publish hands an event to the pipeline without blocking the
// caller. A full buffer drops the event with a warning; durability
// lives in the stores, not here.
func (h *Hub) Publish(e event.DomainEvent) {
	select {
	case h.events <- e:
	default:
		h.log.Warn(fmt.Sprintf("Event channel full for game %d, dropping event", e.GameID()))
	}
}

// SubscribeMessages attaches a sink to one game's event stream and
// returns its handle. Closing the handle twice is safe; the second
// call is a no-op.
func (h *Hub) SubscribeMessages(gameID domain.GameID, sink contract.EventSink) (contract.Subscription, error) {
	h.registry.Subscribe(gameID, sink)
	return &subscription{registry: h.registry, gameID: gameID, sink: sink}, nil
}

// Start wires the fanout worker under the supervisor and launches
// the supervision loop. Returns immediately; Stop tears it down.
func (h *Hub) Start(ctx context.Context) {
	h.mu.Lock()
	fanout := workers.NewEventFanout(h.log, h.events, h.registry, h.permanentSinks, h.sinkTimeout)
	h.supervisor.Add(fanout)
	h.mu.Unlock()

	h.log.Info("Starting realtime hub and supervised workers")
	go h.supervisor.Run(ctx)
}

// Stop cancels the supervision context, which signals every worker
// to stop blocking and exit.
func (h *Hub) Stop() {
	h.log.Info("Requesting realtime hub shutdown")
	h.supervisor.Stop()
}

type subscription struct {
	once     sync.Once
	registry contract.IRegistry
	gameID   domain.GameID
	sink     contract.EventSink
}

func (s *subscription) Close() {
	s.once.Do(func() {
		s.registry.Unsubscribe(s.gameID, s.sink)
	})
}
