package search

import (
	"context"
	"log/slog"
	"strconv"

	"courtside/domain"

	"github.com/blugelabs/bluge"
)

// GameIndex is a full-text index over games, backing the search
// screen. Title, location and skill level are searchable; the game id
// is the stored document identifier.
type GameIndex struct {
	writer *bluge.Writer
	log    *slog.Logger
}

func NewGameIndex(writer *bluge.Writer, log *slog.Logger) *GameIndex {
	return &GameIndex{writer: writer, log: log}
}

// Index upserts a game's searchable fields.
func (i *GameIndex) Index(game domain.Game) error {
	doc := bluge.NewDocument(docID(game.ID)).
		AddField(bluge.NewTextField("title", game.Title)).
		AddField(bluge.NewTextField("location", game.Location)).
		AddField(bluge.NewTextField("tennis_level", game.TennisLevel))

	return i.writer.Update(doc.ID(), doc)
}

// Delete drops the game's document. Deleting an unindexed game is
// harmless.
func (i *GameIndex) Delete(gameID domain.GameID) error {
	return i.writer.Delete(bluge.Identifier(docID(gameID)))
}

// Search matches the query against title, location and level and
// returns game ids, best match first.
func (i *GameIndex) Search(ctx context.Context, query string, limit int) ([]domain.GameID, error) {
	reader, err := i.writer.Reader()
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	q := bluge.NewBooleanQuery().
		AddShould(bluge.NewMatchQuery(query).SetField("title")).
		AddShould(bluge.NewMatchQuery(query).SetField("location")).
		AddShould(bluge.NewMatchQuery(query).SetField("tennis_level"))

	iter, err := reader.Search(ctx, bluge.NewTopNSearch(limit, q))
	if err != nil {
		return nil, err
	}

	var ids []domain.GameID
	for {
		match, err := iter.Next()
		if err != nil {
			return nil, err
		}
		if match == nil {
			break
		}
		err = match.VisitStoredFields(func(field string, value []byte) bool {
			if field == "_id" {
				parsed, parseErr := strconv.ParseInt(string(value), 10, 64)
				if parseErr != nil {
					i.log.Warn("unparseable document id in game index", "value", string(value))
					return true
				}
				ids = append(ids, domain.GameID(parsed))
			}
			return true
		})
		if err != nil {
			return nil, err
		}
	}
	return ids, nil
}

func docID(id domain.GameID) string {
	return strconv.FormatInt(int64(id), 10)
}
