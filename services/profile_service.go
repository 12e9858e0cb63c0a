package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"courtside/contract"
	"courtside/domain"
	"courtside/storage"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

type UpdateProfileRequest struct {
	FullName     string              `validate:"required,min=2,max=80"`
	TennisLevel  string              `validate:"max=40"`
	PlayHand     string              `validate:"omitempty,oneof=left right"`
	Goal         string              `validate:"max=200"`
	Availability map[string][]string `validate:"-"`
}

type IProfileService interface {
	Get(ctx context.Context, id uuid.UUID) (domain.Profile, error)
	Update(ctx context.Context, id uuid.UUID, req UpdateProfileRequest) (domain.Profile, error)
	UploadAvatar(ctx context.Context, id uuid.UUID, data []byte) (string, error)
}

type ProfileService struct {
	log      *slog.Logger
	profiles contract.ProfileStore
	bucket   *storage.Bucket
	validate *validator.Validate
}

func NewProfileService(log *slog.Logger, profiles contract.ProfileStore, bucket *storage.Bucket) IProfileService {
	return &ProfileService{
		log:      log,
		profiles: profiles,
		bucket:   bucket,
		validate: validator.New(),
	}
}

func (s *ProfileService) Get(ctx context.Context, id uuid.UUID) (domain.Profile, error) {
	return s.profiles.GetProfile(ctx, id)
}

// Update overwrites the editable onboarding fields. Email and
// identifiers never change through this path.
func (s *ProfileService) Update(ctx context.Context, id uuid.UUID, req UpdateProfileRequest) (domain.Profile, error) {
	if err := s.validate.Struct(req); err != nil {
		return domain.Profile{}, err
	}

	profile, err := s.profiles.GetProfile(ctx, id)
	if err != nil {
		return domain.Profile{}, err
	}

	profile.FullName = req.FullName
	profile.TennisLevel = req.TennisLevel
	profile.PlayHand = req.PlayHand
	profile.Goal = req.Goal
	profile.Availability = req.Availability
	profile.UpdatedAt = time.Now()

	if err := s.profiles.UpdateProfile(ctx, profile); err != nil {
		return domain.Profile{}, err
	}
	return profile, nil
}

// UploadAvatar stores the image and records its path on the profile.
// Returns the public URL of the stored avatar.
func (s *ProfileService) UploadAvatar(ctx context.Context, id uuid.UUID, data []byte) (string, error) {
	objectPath := fmt.Sprintf("avatars/%s.img", id)
	if err := s.bucket.Upload(objectPath, data); err != nil {
		return "", err
	}

	profile, err := s.profiles.GetProfile(ctx, id)
	if err != nil {
		return "", err
	}
	profile.AvatarPath = objectPath
	profile.UpdatedAt = time.Now()
	if err := s.profiles.UpdateProfile(ctx, profile); err != nil {
		return "", err
	}

	s.log.Info("avatar updated", "user_id", id)
	return s.bucket.PublicURL(objectPath), nil
}
