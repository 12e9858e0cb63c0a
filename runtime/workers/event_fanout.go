package workers

import (
	"context"
	"log/slog"
	"time"

	"courtside/contract"
	"courtside/domain/event"
)

// EventFanout broadcasts committed change events to the sinks
// subscribed to the event's game, plus the permanent sinks that see
// everything (indexers, projections).
//
// It provides best-effort fan-out with no guarantees regarding
// durability or retries; a slow sink is cut off after the configured
// timeout so one stuck subscriber cannot stall the stream. Events for
// one game leave this worker in the order they were published.
type EventFanout struct {
	log         *slog.Logger
	events      chan event.DomainEvent
	registry    contract.IRegistry
	permanent   []contract.EventSink
	sinkTimeout time.Duration
}

func NewEventFanout(log *slog.Logger, events chan event.DomainEvent,
	registry contract.IRegistry, permanent []contract.EventSink,
	sinkTimeout time.Duration) *EventFanout {
	return &EventFanout{
		log:         log,
		events:      events,
		registry:    registry,
		permanent:   permanent,
		sinkTimeout: sinkTimeout,
	}
}

func (w *EventFanout) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Stopping fanout worker")
			return ctx.Err()
		case evt, ok := <-w.events:
			if !ok {
				return nil
			}
			w.fanout(ctx, evt)
		}
	}
}

func (w *EventFanout) fanout(ctx context.Context, evt event.DomainEvent) {
	sinks := append([]contract.EventSink(nil), w.permanent...)
	sinks = append(sinks, w.registry.SinksForGame(evt.GameID())...)

	for _, sink := range sinks {
		sinkCtx, cancel := context.WithTimeout(ctx, w.sinkTimeout)
		if err := sink.Consume(sinkCtx, evt); err != nil {
			w.log.Error("Sink failed to consume event", "game", evt.GameID(), "err", err)
		}
		cancel()
	}
}
