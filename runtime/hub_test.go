package runtime

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"courtside/domain"
	"courtside/domain/event"
	"courtside/runtime/workers"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func startTestHub(t *testing.T) (*Hub, context.CancelFunc) {
	t.Helper()
	log := slog.Default()
	supervisor := workers.NewSupervisor(log, 10*time.Millisecond)
	hub := NewHub(log, supervisor, NewRegistry(), 64, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	hub.Start(ctx)
	t.Cleanup(cancel)
	return hub, cancel
}

func TestHub_DeliversToSubscribedSink(t *testing.T) {
	req := require.New(t)
	hub, _ := startTestHub(t)

	gameID := domain.NewGameID(time.Now())
	sink := newCaptureSink()
	sub, err := hub.SubscribeMessages(gameID, sink)
	req.NoError(err)
	defer sub.Close()

	published := event.MessageInserted{
		ID:      uuid.New(),
		Game:    int64(gameID),
		Sender:  uuid.New(),
		Content: "anyone up for a rematch?",
		At:      time.Now(),
	}
	hub.Publish(published)

	select {
	case got := <-sink.events:
		inserted, ok := got.(event.MessageInserted)
		req.True(ok)
		req.Equal(published.ID, inserted.ID)
		req.Equal(published.Content, inserted.Content)
	case <-time.After(2 * time.Second):
		t.Fatal("sink never received the event")
	}
}

func TestHub_PreservesPublishOrder(t *testing.T) {
	req := require.New(t)
	hub, _ := startTestHub(t)

	gameID := domain.NewGameID(time.Now())
	sink := newCaptureSink()
	sub, err := hub.SubscribeMessages(gameID, sink)
	req.NoError(err)
	defer sub.Close()

	first := event.MessageInserted{ID: uuid.New(), Game: int64(gameID), Content: "hi", At: time.Now()}
	second := event.MessageInserted{ID: uuid.New(), Game: int64(gameID), Content: "hello", At: time.Now()}
	hub.Publish(first)
	hub.Publish(second)

	got := make([]string, 0, 2)
	for len(got) < 2 {
		select {
		case e := <-sink.events:
			got = append(got, e.(event.MessageInserted).Content)
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for events")
		}
	}
	req.Equal([]string{"hi", "hello"}, got)
}

func TestHub_ClosedSubscriptionStopsDelivery(t *testing.T) {
	req := require.New(t)
	hub, _ := startTestHub(t)

	gameID := domain.NewGameID(time.Now())
	sink := newCaptureSink()
	sub, err := hub.SubscribeMessages(gameID, sink)
	req.NoError(err)

	sub.Close()
	// Second close must be a harmless no-op.
	sub.Close()

	hub.Publish(event.MessageInserted{ID: uuid.New(), Game: int64(gameID), Content: "late", At: time.Now()})

	select {
	case <-sink.events:
		t.Fatal("closed subscription still received an event")
	case <-time.After(200 * time.Millisecond):
	}
}

func TestHub_GameIsolation(t *testing.T) {
	req := require.New(t)
	hub, _ := startTestHub(t)

	gameA := domain.NewGameID(time.Now())
	gameB := domain.NewGameID(time.Now().Add(time.Second))
	sinkA := newCaptureSink()
	sub, err := hub.SubscribeMessages(gameA, sinkA)
	req.NoError(err)
	defer sub.Close()

	hub.Publish(event.MessageInserted{ID: uuid.New(), Game: int64(gameB), Content: "other room", At: time.Now()})

	select {
	case <-sinkA.events:
		t.Fatal("sink received an event for a game it never subscribed to")
	case <-time.After(200 * time.Millisecond):
	}
}
