package feed

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"courtside/contract"
	"courtside/domain"
	"courtside/domain/event"
	"courtside/errors"

	"github.com/google/uuid"
)

type State int

const (
	StateLoading State = iota
	StateReady
	StateClosed
)

// Feed is the live message view of one game's chat. It subscribes to
// the realtime stream before fetching history so that no message
// committed during the fetch is lost; events that race the fetch are
// buffered and appended afterwards, deduplicated by message id.
type Feed struct {
	log      *slog.Logger
	gameID   domain.GameID
	store    contract.MessageStore
	profiles contract.ProfileStore
	realtime contract.Realtime

	mu        sync.Mutex
	state     State
	items     []domain.Message
	seen      map[uuid.UUID]struct{}
	pending   []domain.Message
	names     map[uuid.UUID]string
	sub       contract.Subscription
	onAppend  func(domain.Message)
	closeOnce sync.Once
}

func NewFeed(
	log *slog.Logger,
	gameID domain.GameID,
	store contract.MessageStore,
	profiles contract.ProfileStore,
	realtime contract.Realtime,
) *Feed {
	return &Feed{
		log:      log,
		gameID:   gameID,
		store:    store,
		profiles: profiles,
		realtime: realtime,
		state:    StateLoading,
		seen:     make(map[uuid.UUID]struct{}),
		names:    make(map[uuid.UUID]string),
	}
}

// OnAppend registers a callback invoked for every message appended to
// the feed, in append order. Must be set before Open.
func (f *Feed) OnAppend(fn func(domain.Message)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.onAppend = fn
}

// Open subscribes to the live stream, then loads history. Events
// received while history is loading land in a buffer that is flushed,
// minus duplicates, once the history is in place.
func (f *Feed) Open(ctx context.Context) error {
	f.mu.Lock()
	if f.state != StateLoading {
		f.mu.Unlock()
		return errors.ErrFeedClosed
	}
	f.mu.Unlock()

	sub, err := f.realtime.SubscribeMessages(f.gameID, f)
	if err != nil {
		return err
	}

	history, err := f.store.ListByGame(ctx, f.gameID)
	if err != nil {
		sub.Close()
		return err
	}
	for i := range history {
		if history[i].SenderName == "" {
			history[i].SenderName = f.senderName(ctx, history[i].SenderID)
		}
	}

	var appended []domain.Message
	f.mu.Lock()
	if f.state == StateClosed {
		f.mu.Unlock()
		sub.Close()
		return errors.ErrFeedClosed
	}
	f.sub = sub
	for _, m := range history {
		if _, dup := f.seen[m.ID]; dup {
			continue
		}
		f.seen[m.ID] = struct{}{}
		f.items = append(f.items, m)
		appended = append(appended, m)
	}
	for _, m := range f.pending {
		if _, dup := f.seen[m.ID]; dup {
			continue
		}
		f.seen[m.ID] = struct{}{}
		f.items = append(f.items, m)
		appended = append(appended, m)
	}
	f.pending = nil
	f.state = StateReady
	notify := f.onAppend
	f.mu.Unlock()

	if notify != nil {
		for _, m := range appended {
			notify(m)
		}
	}
	return nil
}

// Consume receives committed message events from the realtime hub.
// Events carry no display name, so each one is enriched with a
// profile lookup before appending.
func (f *Feed) Consume(ctx context.Context, e event.DomainEvent) error {
	inserted, ok := e.(event.MessageInserted)
	if !ok {
		return nil
	}

	f.mu.Lock()
	if f.state == StateClosed {
		f.mu.Unlock()
		return nil
	}
	f.mu.Unlock()

	name := f.senderName(ctx, inserted.Sender)

	message := domain.Message{
		ID:         inserted.ID,
		GameID:     domain.GameID(inserted.Game),
		SenderID:   inserted.Sender,
		SenderName: name,
		Content:    inserted.Content,
		CreatedAt:  inserted.At,
	}

	f.mu.Lock()
	if f.state == StateClosed {
		f.mu.Unlock()
		return nil
	}
	if f.state == StateLoading {
		f.pending = append(f.pending, message)
		f.mu.Unlock()
		return nil
	}
	if _, dup := f.seen[message.ID]; dup {
		f.mu.Unlock()
		return nil
	}
	f.seen[message.ID] = struct{}{}
	f.items = append(f.items, message)
	notify := f.onAppend
	f.mu.Unlock()

	if notify != nil {
		notify(message)
	}
	return nil
}

// Send persists a message. Whitespace-only content is rejected here,
// before any backend call. The feed does not append optimistically;
// the message shows up through the subscription echo like everyone
// else's.
func (f *Feed) Send(ctx context.Context, senderID uuid.UUID, content string) error {
	if strings.TrimSpace(content) == "" {
		return errors.ErrEmptyMessage
	}

	f.mu.Lock()
	if f.state == StateClosed {
		f.mu.Unlock()
		return errors.ErrFeedClosed
	}
	f.mu.Unlock()

	return f.store.Insert(ctx, domain.Message{
		ID:        uuid.New(),
		GameID:    f.gameID,
		SenderID:  senderID,
		Content:   content,
		CreatedAt: time.Now(),
	})
}

// Messages returns a copy of the feed in append order.
func (f *Feed) Messages() []domain.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.Message, len(f.items))
	copy(out, f.items)
	return out
}

func (f *Feed) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Close releases the subscription exactly once. Events delivered
// after Close are dropped.
func (f *Feed) Close() {
	f.closeOnce.Do(func() {
		f.mu.Lock()
		f.state = StateClosed
		sub := f.sub
		f.sub = nil
		f.mu.Unlock()

		if sub != nil {
			sub.Close()
		}
	})
}

// senderName resolves a display name through the in-feed cache so a
// busy sender costs one profile lookup, not one per message.
func (f *Feed) senderName(ctx context.Context, senderID uuid.UUID) string {
	f.mu.Lock()
	name, known := f.names[senderID]
	f.mu.Unlock()
	if known {
		return name
	}

	profile, err := f.profiles.GetProfile(ctx, senderID)
	if err != nil {
		f.log.Debug("sender profile lookup failed", "user_id", senderID, "error", err)
		return ""
	}

	f.mu.Lock()
	f.names[senderID] = profile.FullName
	f.mu.Unlock()
	return profile.FullName
}
