package membership

import (
	"context"
	stderrors "errors"
	"log/slog"
	"time"

	"courtside/contract"
	"courtside/domain"
	"courtside/errors"

	"github.com/google/uuid"
)

// IsMember reports whether a user belongs to a game: the host is
// always a member, everyone else must hold a participation row.
func IsMember(userID uuid.UUID, game domain.Game, participants []domain.Participation) bool {
	if game.HostID == userID {
		return true
	}
	for _, p := range participants {
		if p.UserID == userID {
			return true
		}
	}
	return false
}

// Reconciler applies membership transitions against the backend
// stores and enforces host-only permissions.
type Reconciler struct {
	log            *slog.Logger
	games          contract.GameStore
	participations contract.ParticipationStore
	messages       contract.MessageStore
	profiles       contract.ProfileStore
}

func NewReconciler(
	log *slog.Logger,
	games contract.GameStore,
	participations contract.ParticipationStore,
	messages contract.MessageStore,
	profiles contract.ProfileStore,
) *Reconciler {
	return &Reconciler{
		log:            log,
		games:          games,
		participations: participations,
		messages:       messages,
		profiles:       profiles,
	}
}

// Join inserts a confirmed participation. Joining a game the user is
// already in succeeds without a second row.
func (r *Reconciler) Join(ctx context.Context, gameID domain.GameID, userID uuid.UUID) error {
	participation := domain.Participation{
		ID:        uuid.New(),
		GameID:    gameID,
		UserID:    userID,
		Status:    domain.ParticipationConfirmed,
		CreatedAt: time.Now(),
	}

	err := r.participations.Insert(ctx, participation)
	if stderrors.Is(err, errors.ErrDuplicateMembership) {
		r.log.Debug("already a participant", "game_id", gameID, "user_id", userID)
		return nil
	}
	return err
}

// Leave removes the user's participation row. Leaving a game the user
// never joined is a no-op.
func (r *Reconciler) Leave(ctx context.Context, gameID domain.GameID, userID uuid.UUID) error {
	return r.participations.Delete(ctx, gameID, userID)
}

// RemoveParticipant kicks a participant out of the game. Only the
// host may do this; anyone else gets ErrForbidden and nothing
// changes.
func (r *Reconciler) RemoveParticipant(ctx context.Context, actorID uuid.UUID, gameID domain.GameID, targetID uuid.UUID) error {
	game, err := r.games.GetGame(ctx, gameID)
	if err != nil {
		return err
	}
	if game.HostID != actorID {
		return errors.ErrForbidden
	}
	return r.participations.Delete(ctx, gameID, targetID)
}

// DeleteGame removes a game and everything hanging off it, in
// dependency order: participations, then messages, then the game row.
// Host only.
func (r *Reconciler) DeleteGame(ctx context.Context, actorID uuid.UUID, gameID domain.GameID) error {
	game, err := r.games.GetGame(ctx, gameID)
	if err != nil {
		return err
	}
	if game.HostID != actorID {
		return errors.ErrForbidden
	}

	if err := r.participations.DeleteAllForGame(ctx, gameID); err != nil {
		return err
	}
	if err := r.messages.DeleteAllForGame(ctx, gameID); err != nil {
		return err
	}
	return r.games.DeleteGame(ctx, gameID)
}

// Members resolves the game's member profiles, host first, with the
// host deduplicated if they also hold a participation row.
func (r *Reconciler) Members(ctx context.Context, gameID domain.GameID) ([]domain.Profile, error) {
	game, err := r.games.GetGame(ctx, gameID)
	if err != nil {
		return nil, err
	}
	participants, err := r.participations.ListByGame(ctx, gameID)
	if err != nil {
		return nil, err
	}

	ids := []uuid.UUID{game.HostID}
	for _, p := range participants {
		if p.UserID != game.HostID {
			ids = append(ids, p.UserID)
		}
	}

	members := make([]domain.Profile, 0, len(ids))
	for _, id := range ids {
		profile, err := r.profiles.GetProfile(ctx, id)
		if stderrors.Is(err, errors.ErrNotFound) {
			r.log.Debug("member profile missing", "user_id", id)
			continue
		}
		if err != nil {
			return nil, err
		}
		members = append(members, profile)
	}
	return members, nil
}
