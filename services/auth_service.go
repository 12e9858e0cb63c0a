package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"courtside/auth"
	"courtside/contract"
	"courtside/domain"
	"courtside/errors"
	"courtside/repositories"

	"github.com/google/uuid"
)

type IAuthService interface {
	Register(ctx context.Context, email, password, fullName string) (Token, error)
	Login(ctx context.Context, email, password string) (Token, error)
	Logout()
}

type Token string

// AuthService owns the register/login/logout flows. Credentials live
// in the account repository; the public profile is created alongside
// so the rest of the app never touches password hashes.
type AuthService struct {
	log           *slog.Logger
	accounts      repositories.IAccountRepository
	profiles      contract.ProfileStore
	gateway       *auth.Gateway
	tokenDuration time.Duration
}

func NewAuthService(
	log *slog.Logger,
	accounts repositories.IAccountRepository,
	profiles contract.ProfileStore,
	gateway *auth.Gateway,
	tokenDuration time.Duration,
) IAuthService {
	return &AuthService{
		log:           log,
		accounts:      accounts,
		profiles:      profiles,
		gateway:       gateway,
		tokenDuration: tokenDuration,
	}
}

func (s *AuthService) Register(ctx context.Context, email, password, fullName string) (Token, error) {
	valReq := auth.RegisterRequest{
		Email:    email,
		Password: password,
		FullName: fullName,
	}

	// Validate business rules before any expensive cryptographic work.
	if err := auth.ValidateRegister(valReq); err != nil {
		return "", fmt.Errorf("%w: %v", errors.ErrInvalidPassword, err)
	}

	hashedPassword, err := auth.HashPassword(password)
	if err != nil {
		return "", fmt.Errorf("hashing failed: %w", err)
	}

	// Propagates ErrEmailTaken when the address already has an account.
	userID, err := s.accounts.CreateAccount(email, hashedPassword)
	if err != nil {
		return "", err
	}

	parsedID, err := uuid.Parse(userID)
	if err != nil {
		return "", fmt.Errorf("invalid account id: %w", err)
	}

	now := time.Now()
	err = s.profiles.CreateProfile(ctx, domain.Profile{
		ID:        parsedID,
		Email:     email,
		FullName:  fullName,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return "", err
	}

	token, err := auth.GenerateToken(userID, email, s.tokenDuration)
	if err != nil {
		return "", errors.ErrTokenGeneration
	}

	s.gateway.SignIn(domain.Session{UserID: parsedID, Email: email})
	s.log.Info("registered new player", "user_id", userID)
	return Token(token), nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (Token, error) {
	account, err := s.accounts.GetAccountByEmail(email)
	if err != nil {
		// Generic error to prevent user enumeration attacks.
		return "", errors.ErrInvalidCredentials
	}

	match, err := auth.ComparePassword(password, account.PasswordHash)
	if err != nil || !match {
		return "", errors.ErrInvalidCredentials
	}

	token, err := auth.GenerateToken(account.ID, account.Email, s.tokenDuration)
	if err != nil {
		return "", errors.ErrTokenGeneration
	}

	parsedID, err := uuid.Parse(account.ID)
	if err != nil {
		return "", fmt.Errorf("invalid account id: %w", err)
	}

	s.gateway.SignIn(domain.Session{UserID: parsedID, Email: account.Email})
	return Token(token), nil
}

func (s *AuthService) Logout() {
	s.gateway.SignOut()
}
