package feed

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"courtside/contract"
	"courtside/domain"
	"courtside/domain/event"
	"courtside/errors"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type fakeRealtime struct {
	sink       contract.EventSink
	gameID     domain.GameID
	closeCount int
}

func (f *fakeRealtime) SubscribeMessages(gameID domain.GameID, sink contract.EventSink) (contract.Subscription, error) {
	f.sink = sink
	f.gameID = gameID
	return &fakeSubscription{realtime: f}, nil
}

// Emit pushes a committed-message event to the subscribed sink, the
// way the hub's fanout worker would.
func (f *fakeRealtime) Emit(m domain.Message) {
	if f.sink == nil {
		return
	}
	_ = f.sink.Consume(context.Background(), event.MessageInserted{
		ID:      m.ID,
		Game:    int64(m.GameID),
		Sender:  m.SenderID,
		Content: m.Content,
		At:      m.CreatedAt,
	})
}

type fakeSubscription struct {
	realtime *fakeRealtime
}

func (s *fakeSubscription) Close() {
	s.realtime.closeCount++
}

type fakeMessageStore struct {
	history     []domain.Message
	inserted    []domain.Message
	onList      func() // fires while the history fetch is in flight
	listCalls   int
	insertCalls int
}

func (f *fakeMessageStore) ListByGame(context.Context, domain.GameID) ([]domain.Message, error) {
	f.listCalls++
	if f.onList != nil {
		f.onList()
	}
	out := make([]domain.Message, len(f.history))
	copy(out, f.history)
	return out, nil
}

func (f *fakeMessageStore) Insert(_ context.Context, m domain.Message) error {
	f.insertCalls++
	f.inserted = append(f.inserted, m)
	return nil
}

func (f *fakeMessageStore) DeleteAllForGame(context.Context, domain.GameID) error { return nil }

type fakeProfiles struct {
	names map[uuid.UUID]string
	calls int
}

func (f *fakeProfiles) GetProfile(_ context.Context, id uuid.UUID) (domain.Profile, error) {
	f.calls++
	name, ok := f.names[id]
	if !ok {
		return domain.Profile{}, errors.ErrNotFound
	}
	return domain.Profile{ID: id, FullName: name}, nil
}

func (f *fakeProfiles) GetProfileByEmail(context.Context, string) (domain.Profile, error) {
	return domain.Profile{}, errors.ErrNotFound
}

func (f *fakeProfiles) CreateProfile(context.Context, domain.Profile) error { return nil }
func (f *fakeProfiles) UpdateProfile(context.Context, domain.Profile) error { return nil }

func message(gameID domain.GameID, sender uuid.UUID, content string, at time.Time) domain.Message {
	return domain.Message{
		ID:        uuid.New(),
		GameID:    gameID,
		SenderID:  sender,
		Content:   content,
		CreatedAt: at,
	}
}

func TestFeed_OpenLoadsHistoryAndEnrichesNames(t *testing.T) {
	req := require.New(t)
	gameID := domain.NewGameID(time.Now())
	sender := uuid.New()

	store := &fakeMessageStore{history: []domain.Message{
		message(gameID, sender, "first", time.Now()),
		message(gameID, sender, "second", time.Now().Add(time.Second)),
	}}
	profiles := &fakeProfiles{names: map[uuid.UUID]string{sender: "Sam Pro"}}
	realtime := &fakeRealtime{}

	f := NewFeed(slog.Default(), gameID, store, profiles, realtime)
	req.Equal(StateLoading, f.State())
	req.NoError(f.Open(context.Background()))
	req.Equal(StateReady, f.State())

	items := f.Messages()
	req.Len(items, 2)
	req.Equal("first", items[0].Content)
	req.Equal("second", items[1].Content)
	req.Equal("Sam Pro", items[0].SenderName)
	req.Equal("Sam Pro", items[1].SenderName)
	// One lookup for both rows thanks to the name cache.
	req.Equal(1, profiles.calls)
}

func TestFeed_BuffersEventsDuringHistoryFetch(t *testing.T) {
	req := require.New(t)
	gameID := domain.NewGameID(time.Now())
	sender := uuid.New()

	m1 := message(gameID, sender, "m1", time.Now())
	m2 := message(gameID, sender, "m2", time.Now().Add(time.Second))
	m3 := message(gameID, sender, "m3", time.Now().Add(2*time.Second))

	store := &fakeMessageStore{history: []domain.Message{m1, m2}}
	profiles := &fakeProfiles{names: map[uuid.UUID]string{sender: "Sam"}}
	realtime := &fakeRealtime{}
	// m3 commits while the fetch is in flight. The subscription is
	// already live, so the event lands in the pre-ready buffer.
	store.onList = func() { realtime.Emit(m3) }

	f := NewFeed(slog.Default(), gameID, store, profiles, realtime)
	req.NoError(f.Open(context.Background()))

	items := f.Messages()
	req.Len(items, 3)
	req.Equal([]string{"m1", "m2", "m3"},
		[]string{items[0].Content, items[1].Content, items[2].Content})
}

func TestFeed_DeduplicatesBufferedEventAgainstHistory(t *testing.T) {
	req := require.New(t)
	gameID := domain.NewGameID(time.Now())
	sender := uuid.New()

	m1 := message(gameID, sender, "m1", time.Now())
	m2 := message(gameID, sender, "m2", time.Now().Add(time.Second))

	// m2 both races in as an event and shows up in the fetched rows.
	store := &fakeMessageStore{history: []domain.Message{m1, m2}}
	profiles := &fakeProfiles{names: map[uuid.UUID]string{sender: "Sam"}}
	realtime := &fakeRealtime{}
	store.onList = func() { realtime.Emit(m2) }

	f := NewFeed(slog.Default(), gameID, store, profiles, realtime)
	req.NoError(f.Open(context.Background()))

	items := f.Messages()
	req.Len(items, 2)
	req.Equal("m1", items[0].Content)
	req.Equal("m2", items[1].Content)
}

func TestFeed_LiveEventsAppendInReceiptOrder(t *testing.T) {
	req := require.New(t)
	gameID := domain.NewGameID(time.Now())
	alice := uuid.New()
	bob := uuid.New()

	store := &fakeMessageStore{}
	profiles := &fakeProfiles{names: map[uuid.UUID]string{alice: "Alice", bob: "Bob"}}
	realtime := &fakeRealtime{}

	f := NewFeed(slog.Default(), gameID, store, profiles, realtime)
	req.NoError(f.Open(context.Background()))

	hi := message(gameID, alice, "hi", time.Now())
	hello := message(gameID, bob, "hello", time.Now().Add(time.Second))
	realtime.Emit(hi)
	realtime.Emit(hello)

	items := f.Messages()
	req.Len(items, 2)
	req.Equal("hi", items[0].Content)
	req.Equal("Alice", items[0].SenderName)
	req.Equal("hello", items[1].Content)
	req.Equal("Bob", items[1].SenderName)
}

func TestFeed_IgnoresDuplicateLiveEvents(t *testing.T) {
	req := require.New(t)
	gameID := domain.NewGameID(time.Now())
	sender := uuid.New()

	store := &fakeMessageStore{}
	profiles := &fakeProfiles{names: map[uuid.UUID]string{sender: "Sam"}}
	realtime := &fakeRealtime{}

	f := NewFeed(slog.Default(), gameID, store, profiles, realtime)
	req.NoError(f.Open(context.Background()))

	m := message(gameID, sender, "once", time.Now())
	realtime.Emit(m)
	realtime.Emit(m)

	req.Len(f.Messages(), 1)
}

func TestFeed_SendRejectsWhitespaceWithoutBackendCalls(t *testing.T) {
	req := require.New(t)
	gameID := domain.NewGameID(time.Now())

	store := &fakeMessageStore{}
	realtime := &fakeRealtime{}
	f := NewFeed(slog.Default(), gameID, store, &fakeProfiles{}, realtime)
	req.NoError(f.Open(context.Background()))

	for _, content := range []string{"", "   ", "\n\t "} {
		err := f.Send(context.Background(), uuid.New(), content)
		req.ErrorIs(err, errors.ErrEmptyMessage)
	}
	req.Zero(store.insertCalls)
}

func TestFeed_SendDoesNotAppendOptimistically(t *testing.T) {
	req := require.New(t)
	gameID := domain.NewGameID(time.Now())
	sender := uuid.New()

	store := &fakeMessageStore{}
	profiles := &fakeProfiles{names: map[uuid.UUID]string{sender: "Sam"}}
	realtime := &fakeRealtime{}
	f := NewFeed(slog.Default(), gameID, store, profiles, realtime)
	req.NoError(f.Open(context.Background()))

	req.NoError(f.Send(context.Background(), sender, "incoming!"))
	req.Equal(1, store.insertCalls)
	// Nothing rendered until the subscription echoes the commit.
	req.Empty(f.Messages())

	realtime.Emit(store.inserted[0])
	req.Len(f.Messages(), 1)
	req.Equal("incoming!", f.Messages()[0].Content)
}

func TestFeed_CloseIsIdempotentAndDropsLateEvents(t *testing.T) {
	req := require.New(t)
	gameID := domain.NewGameID(time.Now())
	sender := uuid.New()

	store := &fakeMessageStore{}
	profiles := &fakeProfiles{names: map[uuid.UUID]string{sender: "Sam"}}
	realtime := &fakeRealtime{}
	f := NewFeed(slog.Default(), gameID, store, profiles, realtime)
	req.NoError(f.Open(context.Background()))

	f.Close()
	f.Close()
	req.Equal(1, realtime.closeCount, "subscription must be released exactly once")
	req.Equal(StateClosed, f.State())

	// A callback still in flight after close must not mutate the feed.
	realtime.Emit(message(gameID, sender, "too late", time.Now()))
	req.Empty(f.Messages())

	err := f.Send(context.Background(), sender, "hello?")
	req.ErrorIs(err, errors.ErrFeedClosed)
}

func TestFeed_OnAppendObservesAppendOrder(t *testing.T) {
	req := require.New(t)
	gameID := domain.NewGameID(time.Now())
	sender := uuid.New()

	store := &fakeMessageStore{history: []domain.Message{
		message(gameID, sender, "h1", time.Now()),
	}}
	profiles := &fakeProfiles{names: map[uuid.UUID]string{sender: "Sam"}}
	realtime := &fakeRealtime{}
	f := NewFeed(slog.Default(), gameID, store, profiles, realtime)

	var seen []string
	f.OnAppend(func(m domain.Message) { seen = append(seen, m.Content) })

	req.NoError(f.Open(context.Background()))
	realtime.Emit(message(gameID, sender, "live", time.Now()))

	req.Equal([]string{"h1", "live"}, seen)
}

func TestFeed_UnknownSenderGetsEmptyName(t *testing.T) {
	req := require.New(t)
	gameID := domain.NewGameID(time.Now())

	store := &fakeMessageStore{}
	profiles := &fakeProfiles{names: map[uuid.UUID]string{}}
	realtime := &fakeRealtime{}
	f := NewFeed(slog.Default(), gameID, store, profiles, realtime)
	req.NoError(f.Open(context.Background()))

	realtime.Emit(message(gameID, uuid.New(), "ghost message", time.Now()))

	items := f.Messages()
	req.Len(items, 1)
	req.Equal("", items[0].SenderName)
	req.Equal("ghost message", items[0].Content)
}
