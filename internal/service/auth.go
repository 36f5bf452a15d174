package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Dan9191/fraud-service/internal/models"
	"github.com/Dan9191/fraud-service/internal/repository"
	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrEmailTaken is returned by Signup when the email is already registered
	ErrEmailTaken = errors.New("email already registered")
	// ErrInvalidCredentials is returned by Login on a password mismatch
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// Signup creates a new user with hashed password
func (s *Service) Signup(ctx context.Context, name, email, password string) (*models.User, error) {
	existing, err := s.repo.FindUserByEmail(ctx, email)
	if err != nil && !errors.Is(err, repository.ErrUserNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	hashed, err := s.hasher.Hash(password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Name:         name,
		Email:        email,
		PasswordHash: hashed,
	}
	if err := s.repo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	s.log.Infof("User registered: %s", user.Email)
	return user, nil
}

// Login authenticates a user and returns a JWT token.
// An unknown email yields repository.ErrUserNotFound.
func (s *Service) Login(ctx context.Context, email, password string) (string, *models.User, error) {
	user, err := s.repo.FindUserByEmail(ctx, email)
	if err != nil {
		return "", nil, err
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		return "", nil, ErrInvalidCredentials
	}

	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   user.Email,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL())),
	})
	tokenString, err := token.SignedString([]byte(s.config.JWTSecret))
	if err != nil {
		return "", nil, fmt.Errorf("failed to generate token: %w", err)
	}

	s.log.Infof("User logged in: %s", user.Email)
	return tokenString, user, nil
}

func (s *Service) tokenTTL() time.Duration {
	if s.config.JWTTTL > 0 {
		return s.config.JWTTTL
	}
	return 24 * time.Hour
}
