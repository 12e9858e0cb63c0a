package conversations

import (
	"context"
	"log/slog"
	"sort"
	"sync"

	"courtside/contract"
	"courtside/domain"

	"github.com/google/uuid"
)

// Aggregator builds the inbox: every game the user can chat in,
// whether they joined it or host it.
type Aggregator struct {
	log            *slog.Logger
	games          contract.GameStore
	participations contract.ParticipationStore
}

func NewAggregator(log *slog.Logger, games contract.GameStore, participations contract.ParticipationStore) *Aggregator {
	return &Aggregator{log: log, games: games, participations: participations}
}

// List fetches joined games and hosted games concurrently and merges
// them by game id, newest game first. If either fetch fails the whole
// call fails. A user with no games gets an empty slice.
func (a *Aggregator) List(ctx context.Context, userID uuid.UUID) ([]domain.Conversation, error) {
	var (
		wg          sync.WaitGroup
		joined      []domain.Game
		hosted      []domain.Game
		joinedErr   error
		hostedErr   error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		ids, err := a.participations.ListGameIDsByUser(ctx, userID)
		if err != nil {
			joinedErr = err
			return
		}
		joined, joinedErr = a.games.ListGamesByIDs(ctx, ids)
	}()
	go func() {
		defer wg.Done()
		hosted, hostedErr = a.games.ListGamesByHost(ctx, userID)
	}()
	wg.Wait()

	if joinedErr != nil {
		return nil, joinedErr
	}
	if hostedErr != nil {
		return nil, hostedErr
	}

	// Host-sourced records win over participant-sourced ones for the
	// same game.
	byID := make(map[domain.GameID]domain.Conversation, len(joined)+len(hosted))
	for _, g := range joined {
		byID[g.ID] = domain.Conversation{Game: g, IsHost: false}
	}
	for _, g := range hosted {
		byID[g.ID] = domain.Conversation{Game: g, IsHost: true}
	}

	out := make([]domain.Conversation, 0, len(byID))
	for _, c := range byID {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Game.ID > out[j].Game.ID
	})
	return out, nil
}
