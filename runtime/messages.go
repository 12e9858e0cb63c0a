package runtime

import (
	"context"

	"courtside/contract"
	"courtside/domain"
	"courtside/domain/event"
)

// MessageWriter decorates a message store so every committed insert
// is announced on the hub. Persisting before publishing keeps the
// live stream's order equal to commit order.
type MessageWriter struct {
	store contract.MessageStore
	hub   *Hub
}

func NewMessageWriter(store contract.MessageStore, hub *Hub) MessageWriter {
	return MessageWriter{store: store, hub: hub}
}

func (w MessageWriter) Insert(ctx context.Context, m domain.Message) error {
	if err := w.store.Insert(ctx, m); err != nil {
		return err
	}
	w.hub.Publish(event.MessageInserted{
		ID:      m.ID,
		Game:    int64(m.GameID),
		Sender:  m.SenderID,
		Content: m.Content,
		At:      m.CreatedAt,
	})
	return nil
}

func (w MessageWriter) ListByGame(ctx context.Context, gameID domain.GameID) ([]domain.Message, error) {
	return w.store.ListByGame(ctx, gameID)
}

func (w MessageWriter) DeleteAllForGame(ctx context.Context, gameID domain.GameID) error {
	return w.store.DeleteAllForGame(ctx, gameID)
}
