package services

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"courtside/contract"
	"courtside/domain"
	"courtside/errors"
	"courtside/feed"
	"courtside/moderation"

	"github.com/abadojack/whatlanggo"
	"github.com/google/uuid"
)

type IChatService interface {
	OpenFeed(ctx context.Context, gameID domain.GameID) (*feed.Feed, error)
	Send(ctx context.Context, f *feed.Feed, senderID uuid.UUID, content string) error
	Post(ctx context.Context, gameID domain.GameID, senderID uuid.UUID, content string) (domain.Message, error)
	History(ctx context.Context, gameID domain.GameID) ([]domain.Message, error)
}

// ChatService fronts the live message feeds. Content is moderated
// once, before persistence, so history reads and live echoes carry
// the same censored text.
type ChatService struct {
	log       *slog.Logger
	messages  contract.MessageStore
	profiles  contract.ProfileStore
	realtime  contract.Realtime
	moderator moderation.Moderator
}

func NewChatService(
	log *slog.Logger,
	messages contract.MessageStore,
	profiles contract.ProfileStore,
	realtime contract.Realtime,
	moderator moderation.Moderator,
) *ChatService {
	return &ChatService{
		log:       log,
		messages:  messages,
		profiles:  profiles,
		realtime:  realtime,
		moderator: moderator,
	}
}

// OpenFeed builds and opens a feed for one game's chat.
func (s *ChatService) OpenFeed(ctx context.Context, gameID domain.GameID) (*feed.Feed, error) {
	f := feed.NewFeed(s.log, gameID, s.messages, s.profiles, s.realtime)
	if err := f.Open(ctx); err != nil {
		return nil, err
	}
	return f, nil
}

// Send moderates and persists a message through the feed. The
// detected language is logged for moderation tuning; detection never
// blocks a send.
func (s *ChatService) Send(ctx context.Context, f *feed.Feed, senderID uuid.UUID, content string) error {
	if strings.TrimSpace(content) == "" {
		return errors.ErrEmptyMessage
	}

	info := whatlanggo.Detect(content)
	censored, found := s.moderator.Censor(content)
	if len(found) > 0 {
		s.log.Info("censored outgoing message",
			"sender_id", senderID,
			"lang", info.Lang.String(),
			"words", len(found))
	} else {
		s.log.Debug("outgoing message", "sender_id", senderID, "lang", info.Lang.String())
	}

	return f.Send(ctx, senderID, censored)
}

// Post writes a message without holding a feed open, for the HTTP
// path. Subscribed feeds still see it through the hub echo.
func (s *ChatService) Post(ctx context.Context, gameID domain.GameID, senderID uuid.UUID, content string) (domain.Message, error) {
	if strings.TrimSpace(content) == "" {
		return domain.Message{}, errors.ErrEmptyMessage
	}

	info := whatlanggo.Detect(content)
	censored, found := s.moderator.Censor(content)
	if len(found) > 0 {
		s.log.Info("censored outgoing message",
			"sender_id", senderID,
			"lang", info.Lang.String(),
			"words", len(found))
	}

	message := domain.Message{
		ID:        uuid.New(),
		GameID:    gameID,
		SenderID:  senderID,
		Content:   censored,
		CreatedAt: time.Now(),
	}
	if err := s.messages.Insert(ctx, message); err != nil {
		return domain.Message{}, err
	}
	return message, nil
}

// History returns a game's past messages in chronological order, with
// sender display names resolved.
func (s *ChatService) History(ctx context.Context, gameID domain.GameID) ([]domain.Message, error) {
	messages, err := s.messages.ListByGame(ctx, gameID)
	if err != nil {
		return nil, err
	}

	names := make(map[uuid.UUID]string)
	for i := range messages {
		name, ok := names[messages[i].SenderID]
		if !ok {
			profile, err := s.profiles.GetProfile(ctx, messages[i].SenderID)
			if err == nil {
				name = profile.FullName
			}
			names[messages[i].SenderID] = name
		}
		messages[i].SenderName = name
	}
	return messages, nil
}
