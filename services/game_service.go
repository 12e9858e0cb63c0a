package services

import (
	"context"
	"log/slog"
	"time"

	"courtside/contract"
	"courtside/domain"
	"courtside/domain/event"
	"courtside/errors"
	"courtside/membership"
	"courtside/runtime"
	"courtside/search"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

type CreateGameRequest struct {
	Title       string `validate:"required,min=3,max=120"`
	Location    string `validate:"required,min=2,max=120"`
	Date        string `validate:"required,max=80"`
	TennisLevel string `validate:"required,max=40"`
	Mode        string `validate:"required,oneof=single double"`
	ImagePath   string `validate:"max=255"`
}

type UpdateGameRequest struct {
	Title       string `validate:"required,min=3,max=120"`
	Location    string `validate:"required,min=2,max=120"`
	Date        string `validate:"required,max=80"`
	TennisLevel string `validate:"required,max=40"`
	Mode        string `validate:"required,oneof=single double"`
	ImagePath   string `validate:"max=255"`
}

// GameDetail is the detail screen payload: the game plus its member
// profiles, host first.
type GameDetail struct {
	Game    domain.Game
	Members []domain.Profile
}

type IGameService interface {
	Create(ctx context.Context, hostID uuid.UUID, req CreateGameRequest) (domain.Game, error)
	Update(ctx context.Context, actorID uuid.UUID, gameID domain.GameID, req UpdateGameRequest) (domain.Game, error)
	Delete(ctx context.Context, actorID uuid.UUID, gameID domain.GameID) error
	Join(ctx context.Context, userID uuid.UUID, gameID domain.GameID) error
	Leave(ctx context.Context, userID uuid.UUID, gameID domain.GameID) error
	Kick(ctx context.Context, actorID uuid.UUID, gameID domain.GameID, targetID uuid.UUID) error
	Detail(ctx context.Context, gameID domain.GameID) (GameDetail, error)
	List(ctx context.Context) ([]domain.Game, error)
	Search(ctx context.Context, query string) ([]domain.Game, error)
}

type GameService struct {
	log        *slog.Logger
	games      contract.GameStore
	reconciler *membership.Reconciler
	index      *search.GameIndex
	hub        *runtime.Hub
	validate   *validator.Validate
}

func NewGameService(
	log *slog.Logger,
	games contract.GameStore,
	reconciler *membership.Reconciler,
	index *search.GameIndex,
	hub *runtime.Hub,
) IGameService {
	return &GameService{
		log:        log,
		games:      games,
		reconciler: reconciler,
		index:      index,
		hub:        hub,
		validate:   validator.New(),
	}
}

func (s *GameService) Create(ctx context.Context, hostID uuid.UUID, req CreateGameRequest) (domain.Game, error) {
	if err := s.validate.Struct(req); err != nil {
		return domain.Game{}, err
	}

	now := time.Now()
	game := domain.Game{
		ID:          domain.NewGameID(now),
		HostID:      hostID,
		Title:       req.Title,
		Location:    req.Location,
		Date:        req.Date,
		TennisLevel: req.TennisLevel,
		Mode:        domain.GameMode(req.Mode),
		ImagePath:   req.ImagePath,
		CreatedAt:   now,
	}

	if err := s.games.CreateGame(ctx, game); err != nil {
		return domain.Game{}, err
	}
	if err := s.index.Index(game); err != nil {
		s.log.Warn("game indexing failed", "game_id", game.ID, "error", err)
	}

	s.log.Info("game created", "game_id", game.ID, "host_id", hostID)
	return game, nil
}

func (s *GameService) Update(ctx context.Context, actorID uuid.UUID, gameID domain.GameID, req UpdateGameRequest) (domain.Game, error) {
	if err := s.validate.Struct(req); err != nil {
		return domain.Game{}, err
	}

	game, err := s.games.GetGame(ctx, gameID)
	if err != nil {
		return domain.Game{}, err
	}
	if game.HostID != actorID {
		return domain.Game{}, errors.ErrForbidden
	}

	game.Title = req.Title
	game.Location = req.Location
	game.Date = req.Date
	game.TennisLevel = req.TennisLevel
	game.Mode = domain.GameMode(req.Mode)
	game.ImagePath = req.ImagePath

	if err := s.games.UpdateGame(ctx, game); err != nil {
		return domain.Game{}, err
	}
	if err := s.index.Index(game); err != nil {
		s.log.Warn("game reindexing failed", "game_id", game.ID, "error", err)
	}
	return game, nil
}

func (s *GameService) Delete(ctx context.Context, actorID uuid.UUID, gameID domain.GameID) error {
	if err := s.reconciler.DeleteGame(ctx, actorID, gameID); err != nil {
		return err
	}
	if err := s.index.Delete(gameID); err != nil {
		s.log.Warn("game de-indexing failed", "game_id", gameID, "error", err)
	}
	s.hub.Publish(event.GameRemoved{Game: int64(gameID)})
	return nil
}

func (s *GameService) Join(ctx context.Context, userID uuid.UUID, gameID domain.GameID) error {
	if _, err := s.games.GetGame(ctx, gameID); err != nil {
		return err
	}
	if err := s.reconciler.Join(ctx, gameID, userID); err != nil {
		return err
	}
	s.hub.Publish(event.ParticipantJoined{Game: int64(gameID), UserID: userID, At: time.Now()})
	return nil
}

func (s *GameService) Leave(ctx context.Context, userID uuid.UUID, gameID domain.GameID) error {
	if err := s.reconciler.Leave(ctx, gameID, userID); err != nil {
		return err
	}
	s.hub.Publish(event.ParticipantLeft{Game: int64(gameID), UserID: userID, At: time.Now()})
	return nil
}

func (s *GameService) Kick(ctx context.Context, actorID uuid.UUID, gameID domain.GameID, targetID uuid.UUID) error {
	if err := s.reconciler.RemoveParticipant(ctx, actorID, gameID, targetID); err != nil {
		return err
	}
	s.hub.Publish(event.ParticipantLeft{Game: int64(gameID), UserID: targetID, At: time.Now()})
	return nil
}

func (s *GameService) Detail(ctx context.Context, gameID domain.GameID) (GameDetail, error) {
	game, err := s.games.GetGame(ctx, gameID)
	if err != nil {
		return GameDetail{}, err
	}
	members, err := s.reconciler.Members(ctx, gameID)
	if err != nil {
		return GameDetail{}, err
	}
	return GameDetail{Game: game, Members: members}, nil
}

// List returns every game, newest first.
func (s *GameService) List(ctx context.Context) ([]domain.Game, error) {
	return s.games.ListGames(ctx)
}

func (s *GameService) Search(ctx context.Context, query string) ([]domain.Game, error) {
	ids, err := s.index.Search(ctx, query, 50)
	if err != nil {
		return nil, err
	}
	return s.games.ListGamesByIDs(ctx, ids)
}
