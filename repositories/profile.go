//go:generate go run go.uber.org/mock/mockgen -source=profile.go -destination=../mocks/mock_profile_repository.go -package=mocks
package repositories

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"courtside/contract"
	"courtside/domain"
	"courtside/errors"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

type IProfileRepository interface {
	contract.ProfileStore
}

// ProfileRepository keeps profiles under "profile:{uuid}" and a
// lookup index "profilemail:{email}" whose value is the profile id.
type ProfileRepository struct {
	db  *badger.DB
	log *slog.Logger
}

func NewProfileRepository(db *badger.DB, log *slog.Logger) ProfileRepository {
	return ProfileRepository{db: db, log: log}
}

type profileRow struct {
	ID           string              `json:"id"`
	Email        string              `json:"email"`
	FullName     string              `json:"full_name"`
	AvatarPath   string              `json:"avatar_url"`
	TennisLevel  string              `json:"tennis_level"`
	PlayHand     string              `json:"play_hand"`
	Goal         string              `json:"goal"`
	Availability map[string][]string `json:"availability"`
	CreatedAt    int64               `json:"created_at"`
	UpdatedAt    int64               `json:"updated_at"`
}

func profileKey(id uuid.UUID) []byte {
	return []byte("profile:" + id.String())
}

func emailKey(email string) []byte {
	return []byte("profilemail:" + email)
}

func (p ProfileRepository) CreateProfile(_ context.Context, profile domain.Profile) error {
	bytes, err := json.Marshal(fromProfile(profile))
	if err != nil {
		return err
	}
	return p.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(emailKey(profile.Email)); err == nil {
			return errors.ErrEmailTaken
		}
		if err := txn.Set(profileKey(profile.ID), bytes); err != nil {
			return err
		}
		return txn.Set(emailKey(profile.Email), []byte(profile.ID.String()))
	})
}

func (p ProfileRepository) UpdateProfile(_ context.Context, profile domain.Profile) error {
	bytes, err := json.Marshal(fromProfile(profile))
	if err != nil {
		return err
	}
	return p.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(profileKey(profile.ID)); err != nil {
			return errors.ErrNotFound
		}
		return txn.Set(profileKey(profile.ID), bytes)
	})
}

func (p ProfileRepository) GetProfile(_ context.Context, id uuid.UUID) (domain.Profile, error) {
	var raw []byte
	err := p.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(profileKey(id))
		if err != nil {
			return errors.ErrNotFound
		}
		raw, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		return domain.Profile{}, err
	}
	return decodeProfile(raw)
}

func (p ProfileRepository) GetProfileByEmail(ctx context.Context, email string) (domain.Profile, error) {
	var idRaw []byte
	err := p.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(emailKey(email))
		if err != nil {
			return errors.ErrNotFound
		}
		idRaw, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		return domain.Profile{}, err
	}

	id, err := uuid.Parse(string(idRaw))
	if err != nil {
		return domain.Profile{}, err
	}
	return p.GetProfile(ctx, id)
}

func decodeProfile(raw []byte) (domain.Profile, error) {
	var row profileRow
	if err := json.Unmarshal(raw, &row); err != nil {
		return domain.Profile{}, err
	}
	return toProfile(row)
}

func fromProfile(p domain.Profile) profileRow {
	return profileRow{
		ID:           p.ID.String(),
		Email:        p.Email,
		FullName:     p.FullName,
		AvatarPath:   p.AvatarPath,
		TennisLevel:  p.TennisLevel,
		PlayHand:     p.PlayHand,
		Goal:         p.Goal,
		Availability: p.Availability,
		CreatedAt:    p.CreatedAt.UnixNano(),
		UpdatedAt:    p.UpdatedAt.UnixNano(),
	}
}

func toProfile(row profileRow) (domain.Profile, error) {
	id, err := uuid.Parse(row.ID)
	if err != nil {
		return domain.Profile{}, err
	}
	return domain.Profile{
		ID:           id,
		Email:        row.Email,
		FullName:     row.FullName,
		AvatarPath:   row.AvatarPath,
		TennisLevel:  row.TennisLevel,
		PlayHand:     row.PlayHand,
		Goal:         row.Goal,
		Availability: row.Availability,
		CreatedAt:    time.Unix(0, row.CreatedAt).UTC(),
		UpdatedAt:    time.Unix(0, row.UpdatedAt).UTC(),
	}, nil
}
