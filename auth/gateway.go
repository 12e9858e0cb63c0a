package auth

import (
	"context"
	"sync"

	"courtside/contract"
	"courtside/domain"
)

// Gateway is the local authentication state holder. It keeps the
// current session in memory and notifies registered handlers of
// sign-in and sign-out transitions, in registration order.
type Gateway struct {
	mu       sync.Mutex
	session  *domain.Session
	handlers []*handlerEntry
	nextID   int
}

type handlerEntry struct {
	id int
	fn contract.AuthStateHandler
}

func NewGateway() *Gateway {
	return &Gateway{}
}

// CurrentSession returns a copy of the signed-in identity, or nil
// without error when nobody is signed in.
func (g *Gateway) CurrentSession(ctx context.Context) (*domain.Session, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.session == nil {
		return nil, nil
	}
	s := *g.session
	return &s, nil
}

// OnAuthStateChange registers a handler and returns its unsubscribe
// function. Unsubscribing twice is harmless.
func (g *Gateway) OnAuthStateChange(h contract.AuthStateHandler) func() {
	g.mu.Lock()
	entry := &handlerEntry{id: g.nextID, fn: h}
	g.nextID++
	g.handlers = append(g.handlers, entry)
	g.mu.Unlock()

	return func() {
		g.mu.Lock()
		defer g.mu.Unlock()
		for i, e := range g.handlers {
			if e.id == entry.id {
				g.handlers = append(g.handlers[:i], g.handlers[i+1:]...)
				return
			}
		}
	}
}

// SignIn replaces the current session and notifies handlers.
func (g *Gateway) SignIn(session domain.Session) {
	g.mu.Lock()
	s := session
	g.session = &s
	handlers := g.snapshotHandlers()
	g.mu.Unlock()

	for _, h := range handlers {
		h(contract.AuthSignedIn, &s)
	}
}

// SignOut clears the current session and notifies handlers with a
// nil session.
func (g *Gateway) SignOut() {
	g.mu.Lock()
	g.session = nil
	handlers := g.snapshotHandlers()
	g.mu.Unlock()

	for _, h := range handlers {
		h(contract.AuthSignedOut, nil)
	}
}

// snapshotHandlers copies the handler list so emission happens
// outside the lock. Callers must hold mu.
func (g *Gateway) snapshotHandlers() []contract.AuthStateHandler {
	out := make([]contract.AuthStateHandler, 0, len(g.handlers))
	for _, e := range g.handlers {
		out = append(out, e.fn)
	}
	return out
}
