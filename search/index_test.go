package search

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"courtside/domain"

	"github.com/blugelabs/bluge"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func newTestIndex(t *testing.T) *GameIndex {
	t.Helper()
	writer, err := bluge.OpenWriter(bluge.DefaultConfig(t.TempDir()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = writer.Close() })
	return NewGameIndex(writer, slog.Default())
}

func indexedGame(title, location, level string, at time.Time) domain.Game {
	return domain.Game{
		ID:          domain.NewGameID(at),
		HostID:      uuid.New(),
		Title:       title,
		Location:    location,
		TennisLevel: level,
		CreatedAt:   at,
	}
}

func TestGameIndex_SearchByTitle(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	index := newTestIndex(t)

	game := indexedGame("Sunday morning doubles", "Riverside courts", "intermediate", time.Now())
	req.NoError(index.Index(game))

	ids, err := index.Search(ctx, "doubles", 10)
	req.NoError(err)
	req.Equal([]domain.GameID{game.ID}, ids)
}

func TestGameIndex_SearchByLocationAndLevel(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	index := newTestIndex(t)

	base := time.Now()
	riverside := indexedGame("Casual singles", "Riverside courts", "beginner", base)
	downtown := indexedGame("League night", "Downtown club", "advanced", base.Add(time.Second))
	req.NoError(index.Index(riverside))
	req.NoError(index.Index(downtown))

	ids, err := index.Search(ctx, "riverside", 10)
	req.NoError(err)
	req.Equal([]domain.GameID{riverside.ID}, ids)

	ids, err = index.Search(ctx, "advanced", 10)
	req.NoError(err)
	req.Equal([]domain.GameID{downtown.ID}, ids)
}

func TestGameIndex_UpdateReplacesDocument(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	index := newTestIndex(t)

	game := indexedGame("Old title", "Somewhere", "beginner", time.Now())
	req.NoError(index.Index(game))

	game.Title = "Fresh title"
	req.NoError(index.Index(game))

	ids, err := index.Search(ctx, "fresh", 10)
	req.NoError(err)
	req.Equal([]domain.GameID{game.ID}, ids)

	ids, err = index.Search(ctx, "old", 10)
	req.NoError(err)
	req.Empty(ids)
}

func TestGameIndex_DeleteRemovesFromResults(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	index := newTestIndex(t)

	game := indexedGame("Short lived game", "Anywhere", "any", time.Now())
	req.NoError(index.Index(game))
	req.NoError(index.Delete(game.ID))

	ids, err := index.Search(ctx, "lived", 10)
	req.NoError(err)
	req.Empty(ids)

	// Deleting an unknown game is harmless.
	req.NoError(index.Delete(domain.NewGameID(time.Now())))
}
