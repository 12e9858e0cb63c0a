//go:generate go run go.uber.org/mock/mockgen -source=game.go -destination=../mocks/mock_game_repository.go -package=mocks
package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"courtside/contract"
	"courtside/domain"
	"courtside/errors"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

type IGameRepository interface {
	contract.GameStore
}

type GameRepository struct {
	db  *badger.DB
	log *slog.Logger
}

func NewGameRepository(db *badger.DB, log *slog.Logger) GameRepository {
	return GameRepository{db: db, log: log}
}

type gameRow struct {
	ID          int64  `json:"id"`
	HostID      string `json:"host_id"`
	Title       string `json:"title"`
	Location    string `json:"location"`
	Date        string `json:"date"`
	TennisLevel string `json:"tennis_level"`
	Mode        string `json:"game_mode"`
	ImagePath   string `json:"image_path"`
	CreatedAt   int64  `json:"created_at"`
}

// gameKey pads the id to 19 digits so a prefix scan walks games in
// id order, which equals creation order.
func gameKey(id domain.GameID) []byte {
	return []byte(fmt.Sprintf("game:%019d", id))
}

func (g GameRepository) CreateGame(_ context.Context, game domain.Game) error {
	bytes, err := json.Marshal(fromGame(game))
	if err != nil {
		return err
	}
	return g.db.Update(func(txn *badger.Txn) error {
		return txn.Set(gameKey(game.ID), bytes)
	})
}

func (g GameRepository) UpdateGame(_ context.Context, game domain.Game) error {
	bytes, err := json.Marshal(fromGame(game))
	if err != nil {
		return err
	}
	return g.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(gameKey(game.ID)); err != nil {
			return errors.ErrNotFound
		}
		return txn.Set(gameKey(game.ID), bytes)
	})
}

func (g GameRepository) GetGame(_ context.Context, id domain.GameID) (domain.Game, error) {
	var raw []byte
	err := g.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(gameKey(id))
		if err != nil {
			return errors.ErrNotFound
		}
		raw, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		return domain.Game{}, err
	}

	var row gameRow
	if err = json.Unmarshal(raw, &row); err != nil {
		return domain.Game{}, err
	}
	return toGame(row)
}

func (g GameRepository) DeleteGame(_ context.Context, id domain.GameID) error {
	return g.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(gameKey(id))
	})
}

// ListGames walks the game keyspace backwards so the newest games
// (largest ids) come first.
func (g GameRepository) ListGames(_ context.Context) ([]domain.Game, error) {
	var rows [][]byte
	err := g.db.View(func(txn *badger.Txn) error {
		prefix := []byte("game:")
		options := badger.DefaultIteratorOptions
		options.Reverse = true
		it := txn.NewIterator(options)
		defer it.Close()

		// Seek past the largest possible id, then walk back.
		seekKey := append(append([]byte(nil), prefix...), []byte("9999999999999999999")...)
		for it.Seek(seekKey); it.ValidForPrefix(prefix); it.Next() {
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
	return decodeGames(rows)
}

func (g GameRepository) ListGamesByHost(ctx context.Context, hostID uuid.UUID) ([]domain.Game, error) {
	games, err := g.ListGames(ctx)
	if err != nil {
		return nil, err
	}
	var hosted []domain.Game
	for _, game := range games {
		if game.HostID == hostID {
			hosted = append(hosted, game)
		}
	}
	return hosted, nil
}

func (g GameRepository) ListGamesByIDs(ctx context.Context, ids []domain.GameID) ([]domain.Game, error) {
	var games []domain.Game
	for _, id := range ids {
		game, err := g.GetGame(ctx, id)
		if err != nil {
			// A participation row may outlive its game for a moment
			// during a cascade delete; skip the orphan.
			if errors.ErrNotFound == err {
				continue
			}
			return nil, err
		}
		games = append(games, game)
	}
	return games, nil
}

func decodeGames(rows [][]byte) ([]domain.Game, error) {
	var games []domain.Game
	for _, b := range rows {
		var row gameRow
		if err := json.Unmarshal(b, &row); err != nil {
			return nil, err
		}
		game, err := toGame(row)
		if err != nil {
			return nil, err
		}
		games = append(games, game)
	}
	return games, nil
}

func fromGame(g domain.Game) gameRow {
	return gameRow{
		ID:          int64(g.ID),
		HostID:      g.HostID.String(),
		Title:       g.Title,
		Location:    g.Location,
		Date:        g.Date,
		TennisLevel: g.TennisLevel,
		Mode:        string(g.Mode),
		ImagePath:   g.ImagePath,
		CreatedAt:   g.CreatedAt.UnixNano(),
	}
}

func toGame(row gameRow) (domain.Game, error) {
	hostID, err := uuid.Parse(row.HostID)
	if err != nil {
		return domain.Game{}, err
	}
	return domain.Game{
		ID:          domain.GameID(row.ID),
		HostID:      hostID,
		Title:       row.Title,
		Location:    row.Location,
		Date:        row.Date,
		TennisLevel: row.TennisLevel,
		Mode:        domain.GameMode(row.Mode),
		ImagePath:   row.ImagePath,
		CreatedAt:   time.Unix(0, row.CreatedAt).UTC(),
	}, nil
}
