// Package runtime is the in-process realtime side of the backend:
// it routes committed change events to the sinks that subscribed to
// a game, under a supervised worker pipeline. It carries no business
// rules of its own.
package runtime

import (
	"sync"

	"courtside/contract"
	"courtside/domain"
)

type sinkSet map[contract.EventSink]struct{}

type Registry struct {
	mu    sync.RWMutex
	games map[domain.GameID]sinkSet
}

func NewRegistry() *Registry {
	return &Registry{
		games: make(map[domain.GameID]sinkSet),
	}
}

// SinksForGame returns the active sinks listening to one game's chat.
// Returns nil when the game has no listeners.
func (r *Registry) SinksForGame(gameID domain.GameID) []contract.EventSink {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sinks, ok := r.games[gameID]
	if !ok {
		return nil
	}
	active := make([]contract.EventSink, 0, len(sinks))
	for sink := range sinks {
		active = append(active, sink)
	}
	return active
}

// Subscribe attaches a sink to a game. The set is initialized on the
// fly for a game nobody listened to yet.
func (r *Registry) Subscribe(gameID domain.GameID, sink contract.EventSink) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.games[gameID]; !ok {
		r.games[gameID] = make(sinkSet)
	}
	r.games[gameID][sink] = struct{}{}
}

// Unsubscribe detaches a sink and drops empty sets so the map does
// not grow with every game ever opened.
func (r *Registry) Unsubscribe(gameID domain.GameID, sink contract.EventSink) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if sinks, ok := r.games[gameID]; ok {
		delete(sinks, sink)
		if len(sinks) == 0 {
			delete(r.games, gameID)
		}
	}
}
