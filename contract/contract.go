//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"context"
	"reflect"

	"courtside/domain"
	"courtside/domain/event"

	"github.com/google/uuid"
)

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

type WorkerName string

// Worker doesn't protect itself.
// Can be silly, focused.
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// This is used for logging and supervision purposes during worker
// lifecycle events, avoiding the need for manual naming in the Worker
// interface.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

type EventSink interface {
	Consume(ctx context.Context, e event.DomainEvent) error
}

// IRegistry tracks which sinks listen to which game's events.
// Sinks must be comparable values (pointers in practice) so that
// Unsubscribe can find them again.
type IRegistry interface {
	SinksForGame(gameID domain.GameID) []EventSink
	Subscribe(gameID domain.GameID, sink EventSink)
	Unsubscribe(gameID domain.GameID, sink EventSink)
}

// Subscription is a live-channel handle. Close releases it and is
// safe to call more than once; only the first call has any effect.
type Subscription interface {
	Close()
}

// Realtime delivers committed change events for one game's messages,
// in commit order, to a registered sink.
type Realtime interface {
	SubscribeMessages(gameID domain.GameID, sink EventSink) (Subscription, error)
}

type AuthStateEvent string

const (
	AuthSignedIn  AuthStateEvent = "SIGNED_IN"
	AuthSignedOut AuthStateEvent = "SIGNED_OUT"
)

// AuthStateHandler receives sign-in/sign-out notifications.
// The session is nil on sign-out.
type AuthStateHandler func(evt AuthStateEvent, session *domain.Session)

// AuthGateway is the authentication side of the backend service.
type AuthGateway interface {
	// CurrentSession returns the signed-in identity, or nil without
	// error when nobody is signed in.
	CurrentSession(ctx context.Context) (*domain.Session, error)
	// OnAuthStateChange registers a handler for auth transitions and
	// returns its unsubscribe function. Handlers observe events in
	// the order the gateway emits them.
	OnAuthStateChange(h AuthStateHandler) (unsubscribe func())
}

type ProfileStore interface {
	GetProfile(ctx context.Context, id uuid.UUID) (domain.Profile, error)
	GetProfileByEmail(ctx context.Context, email string) (domain.Profile, error)
	CreateProfile(ctx context.Context, p domain.Profile) error
	UpdateProfile(ctx context.Context, p domain.Profile) error
}

type GameStore interface {
	GetGame(ctx context.Context, id domain.GameID) (domain.Game, error)
	CreateGame(ctx context.Context, g domain.Game) error
	UpdateGame(ctx context.Context, g domain.Game) error
	DeleteGame(ctx context.Context, id domain.GameID) error
	// ListGames returns every game, newest first.
	ListGames(ctx context.Context) ([]domain.Game, error)
	ListGamesByHost(ctx context.Context, hostID uuid.UUID) ([]domain.Game, error)
	// ListGamesByIDs resolves ids to games, silently skipping ids
	// whose game no longer exists.
	ListGamesByIDs(ctx context.Context, ids []domain.GameID) ([]domain.Game, error)
}

type ParticipationStore interface {
	ListByGame(ctx context.Context, gameID domain.GameID) ([]domain.Participation, error)
	ListGameIDsByUser(ctx context.Context, userID uuid.UUID) ([]domain.GameID, error)
	// Insert fails with errors.ErrDuplicateMembership when a row for
	// the same (game, user) pair already exists.
	Insert(ctx context.Context, p domain.Participation) error
	// Delete removes the row for the pair; deleting a missing row is
	// not an error.
	Delete(ctx context.Context, gameID domain.GameID, userID uuid.UUID) error
	DeleteAllForGame(ctx context.Context, gameID domain.GameID) error
}

type MessageStore interface {
	// ListByGame returns the game's messages ordered by creation
	// time ascending.
	ListByGame(ctx context.Context, gameID domain.GameID) ([]domain.Message, error)
	Insert(ctx context.Context, m domain.Message) error
	DeleteAllForGame(ctx context.Context, gameID domain.GameID) error
}
