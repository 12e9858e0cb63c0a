//go:generate go run go.uber.org/mock/mockgen -source=participation.go -destination=../mocks/mock_participation_repository.go -package=mocks
package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"courtside/contract"
	"courtside/domain"
	"courtside/errors"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

type IParticipationRepository interface {
	contract.ParticipationStore
}

// ParticipationRepository stores one row per (game, user) pair under
// "part:{game}:{user}" plus a reverse index "partuser:{user}:{game}"
// so both directions are a single prefix scan.
type ParticipationRepository struct {
	db  *badger.DB
	log *slog.Logger
}

func NewParticipationRepository(db *badger.DB, log *slog.Logger) ParticipationRepository {
	return ParticipationRepository{db: db, log: log}
}

type participationRow struct {
	ID        string `json:"id"`
	GameID    int64  `json:"game_id"`
	UserID    string `json:"user_id"`
	Status    string `json:"status"`
	CreatedAt int64  `json:"created_at"`
}

func participationKey(gameID domain.GameID, userID uuid.UUID) []byte {
	return []byte(fmt.Sprintf("part:%019d:%s", gameID, userID))
}

func userIndexKey(userID uuid.UUID, gameID domain.GameID) []byte {
	return []byte(fmt.Sprintf("partuser:%s:%019d", userID, gameID))
}

// Insert writes the row and its reverse index. A pre-existing row for
// the same pair fails with ErrDuplicateMembership; callers decide
// whether that is an error or an idempotent success.
func (p ParticipationRepository) Insert(_ context.Context, part domain.Participation) error {
	bytes, err := json.Marshal(fromParticipation(part))
	if err != nil {
		return err
	}
	return p.db.Update(func(txn *badger.Txn) error {
		key := participationKey(part.GameID, part.UserID)
		if _, err := txn.Get(key); err == nil {
			return errors.ErrDuplicateMembership
		}
		if err := txn.Set(key, bytes); err != nil {
			return err
		}
		return txn.Set(userIndexKey(part.UserID, part.GameID), nil)
	})
}

// Delete removes the pair's row and index. Badger deletes are blind
// writes, so a missing row is naturally a no-op.
func (p ParticipationRepository) Delete(_ context.Context, gameID domain.GameID, userID uuid.UUID) error {
	return p.db.Update(func(txn *badger.Txn) error {
		if err := txn.Delete(participationKey(gameID, userID)); err != nil {
			return err
		}
		return txn.Delete(userIndexKey(userID, gameID))
	})
}

func (p ParticipationRepository) ListByGame(_ context.Context, gameID domain.GameID) ([]domain.Participation, error) {
	var rows [][]byte
	err := p.db.View(func(txn *badger.Txn) error {
		prefix := []byte(fmt.Sprintf("part:%019d:", gameID))
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

	var parts []domain.Participation
	for _, b := range rows {
		var row participationRow
		if err = json.Unmarshal(b, &row); err != nil {
			return nil, err
		}
		part, err := toParticipation(row)
		if err != nil {
			return nil, err
		}
		parts = append(parts, part)
	}
	return parts, nil
}

// ListGameIDsByUser reads game ids straight out of the reverse index
// keys, no value decoding needed.
func (p ParticipationRepository) ListGameIDsByUser(_ context.Context, userID uuid.UUID) ([]domain.GameID, error) {
	var ids []domain.GameID
	err := p.db.View(func(txn *badger.Txn) error {
		prefixStr := fmt.Sprintf("partuser:%s:", userID)
		prefix := []byte(prefixStr)
		it := txn.NewIterator(badger.IteratorOptions{PrefetchValues: false})
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			suffix := strings.TrimPrefix(string(it.Item().Key()), prefixStr)
			id, err := strconv.ParseInt(suffix, 10, 64)
			if err != nil {
				return fmt.Errorf("malformed participation index key %q: %w", it.Item().Key(), err)
			}
			ids = append(ids, domain.GameID(id))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (p ParticipationRepository) DeleteAllForGame(_ context.Context, gameID domain.GameID) error {
	return p.db.Update(func(txn *badger.Txn) error {
		prefixStr := fmt.Sprintf("part:%019d:", gameID)
		prefix := []byte(prefixStr)
		it := txn.NewIterator(badger.IteratorOptions{PrefetchValues: false})
		defer it.Close()

		var keys [][]byte
		var userIDs []string
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			keys = append(keys, it.Item().KeyCopy(nil))
			userIDs = append(userIDs, strings.TrimPrefix(string(it.Item().Key()), prefixStr))
		}
		for i, key := range keys {
			if err := txn.Delete(key); err != nil {
				return err
			}
			userID, err := uuid.Parse(userIDs[i])
			if err != nil {
				return fmt.Errorf("malformed participation key %q: %w", key, err)
			}
			if err := txn.Delete(userIndexKey(userID, gameID)); err != nil {
				return err
			}
		}
		return nil
	})
}

func fromParticipation(p domain.Participation) participationRow {
	return participationRow{
		ID:        p.ID.String(),
		GameID:    int64(p.GameID),
		UserID:    p.UserID.String(),
		Status:    string(p.Status),
		CreatedAt: p.CreatedAt.UnixNano(),
	}
}

func toParticipation(row participationRow) (domain.Participation, error) {
	id, err := uuid.Parse(row.ID)
	if err != nil {
		return domain.Participation{}, err
	}
	userID, err := uuid.Parse(row.UserID)
	if err != nil {
		return domain.Participation{}, err
	}
	return domain.Participation{
		ID:        id,
		GameID:    domain.GameID(row.GameID),
		UserID:    userID,
		Status:    domain.ParticipationStatus(row.Status),
		CreatedAt: time.Unix(0, row.CreatedAt).UTC(),
	}, nil
}
