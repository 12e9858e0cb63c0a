//go:generate go run go.uber.org/mock/mockgen -source=message.go -destination=../mocks/mock_message_repository.go -package=mocks
package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"courtside/contract"
	"courtside/domain"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

type IMessageRepository interface {
	contract.MessageStore
}

type MessageRepository struct {
	db  *badger.DB
	log *slog.Logger
}

func NewMessageRepository(db *badger.DB, log *slog.Logger) MessageRepository {
	return MessageRepository{db: db, log: log}
}

type messageRow struct {
	ID        string `json:"id"`
	GameID    int64  `json:"game_id"`
	UserID    string `json:"user_id"`
	Content   string `json:"content"`
	CreatedAt int64  `json:"created_at"`
}

// messageKey formats "msg:{game_id}:{timestamp_padded}:{uuid}" to:
//  1. Ensure chronological sorting using 19-digit zero padding
//     (lexicographical order equals time order).
//  2. Prevent data loss by using the UUID as a collision
//     disconnector if two messages arrive at the same nanosecond.
func messageKey(m domain.Message) []byte {
	return []byte(fmt.Sprintf("msg:%d:%019d:%s", m.GameID, m.CreatedAt.UnixNano(), m.ID))
}

func (m MessageRepository) Insert(_ context.Context, msg domain.Message) error {
	bytes, err := json.Marshal(fromMessage(msg))
	if err != nil {
		return err
	}
	return m.db.Update(func(txn *badger.Txn) error {
		return txn.Set(messageKey(msg), bytes)
	})
}

// ListByGame retrieves a game's messages using a prefix scan.
// Thanks to the padded timestamp in the key, messages come back
// naturally sorted oldest first.
func (m MessageRepository) ListByGame(_ context.Context, gameID domain.GameID) ([]domain.Message, error) {
	var rows [][]byte
	err := m.db.View(func(txn *badger.Txn) error {
		prefix := []byte(fmt.Sprintf("msg:%d:", gameID))
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(value []byte) error {
				rows = append(rows, append([]byte(nil), value...))
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	var messages []domain.Message
	for _, b := range rows {
		var row messageRow
		if err = json.Unmarshal(b, &row); err != nil {
			return nil, err
		}
		msg, err := toMessage(row)
		if err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}
	return messages, nil
}

func (m MessageRepository) DeleteAllForGame(_ context.Context, gameID domain.GameID) error {
	return m.db.Update(func(txn *badger.Txn) error {
		prefix := []byte(fmt.Sprintf("msg:%d:", gameID))
		it := txn.NewIterator(badger.IteratorOptions{PrefetchValues: false})
		defer it.Close()

		var keys [][]byte
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			keys = append(keys, it.Item().KeyCopy(nil))
		}
		for _, key := range keys {
			if err := txn.Delete(key); err != nil {
				return err
			}
		}
		return nil
	})
}

func fromMessage(m domain.Message) messageRow {
	return messageRow{
		ID:        m.ID.String(),
		GameID:    int64(m.GameID),
		UserID:    m.SenderID.String(),
		Content:   m.Content,
		CreatedAt: m.CreatedAt.UnixNano(),
	}
}

func toMessage(row messageRow) (domain.Message, error) {
	id, err := uuid.Parse(row.ID)
	if err != nil {
		return domain.Message{}, err
	}
	sender, err := uuid.Parse(row.UserID)
	if err != nil {
		return domain.Message{}, err
	}
	return domain.Message{
		ID:        id,
		GameID:    domain.GameID(row.GameID),
		SenderID:  sender,
		Content:   row.Content,
		CreatedAt: time.Unix(0, row.CreatedAt).UTC(),
	}, nil
}
