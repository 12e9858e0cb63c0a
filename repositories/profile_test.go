package repositories

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"courtside/domain"
	"courtside/errors"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func testProfile(email string) domain.Profile {
	now := time.Now()
	return domain.Profile{
		ID:          uuid.New(),
		Email:       email,
		FullName:    "Ana Silva",
		TennisLevel: "advanced",
		PlayHand:    "left",
		Goal:        "find regular partners",
		Availability: map[string][]string{
			"sat": {"morning"},
			"sun": {"morning", "evening"},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestProfileRepository_CreateAndGet(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	repo := NewProfileRepository(openTestDB(t), slog.Default())

	profile := testProfile("ana@example.com")
	req.NoError(repo.CreateProfile(ctx, profile))

	fetched, err := repo.GetProfile(ctx, profile.ID)
	req.NoError(err)
	req.Equal(profile.FullName, fetched.FullName)
	req.Equal(profile.Availability, fetched.Availability)

	byEmail, err := repo.GetProfileByEmail(ctx, "ana@example.com")
	req.NoError(err)
	req.Equal(profile.ID, byEmail.ID)
}

func TestProfileRepository_DuplicateEmail(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	repo := NewProfileRepository(openTestDB(t), slog.Default())

	req.NoError(repo.CreateProfile(ctx, testProfile("taken@example.com")))

	err := repo.CreateProfile(ctx, testProfile("taken@example.com"))
	req.ErrorIs(err, errors.ErrEmailTaken)
}

func TestProfileRepository_Update(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	repo := NewProfileRepository(openTestDB(t), slog.Default())

	profile := testProfile("update@example.com")
	req.NoError(repo.CreateProfile(ctx, profile))

	profile.TennisLevel = "expert"
	profile.Goal = "competitive play"
	req.NoError(repo.UpdateProfile(ctx, profile))

	fetched, err := repo.GetProfile(ctx, profile.ID)
	req.NoError(err)
	req.Equal("expert", fetched.TennisLevel)
	req.Equal("competitive play", fetched.Goal)
}

func TestProfileRepository_GetMissing(t *testing.T) {
	req := require.New(t)
	repo := NewProfileRepository(openTestDB(t), slog.Default())

	_, err := repo.GetProfile(context.Background(), uuid.New())
	req.ErrorIs(err, errors.ErrNotFound)

	_, err = repo.GetProfileByEmail(context.Background(), "nobody@example.com")
	req.ErrorIs(err, errors.ErrNotFound)
}

func TestAccountRepository_RoundTrip(t *testing.T) {
	req := require.New(t)
	repo := NewAccountRepository(openTestDB(t))

	id, err := repo.CreateAccount("player@example.com", "hashed-secret")
	req.NoError(err)
	req.NotEmpty(id)

	account, err := repo.GetAccountByEmail("player@example.com")
	req.NoError(err)
	req.Equal(id, account.ID)
	req.Equal("hashed-secret", account.PasswordHash)

	_, err = repo.CreateAccount("player@example.com", "other")
	req.ErrorIs(err, errors.ErrEmailTaken)

	_, err = repo.GetAccountByEmail("ghost@example.com")
	req.ErrorIs(err, errors.ErrNotFound)
}
