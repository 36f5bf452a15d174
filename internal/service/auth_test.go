package service

import (
	"context"
	"testing"
	"time"

	"github.com/Dan9191/fraud-service/internal/repository"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignupAndLogin(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(repository.NewMemoryRepository(), &stubModel{})

	user, err := svc.Signup(ctx, "Ann", "ann@example.com", "s3cret-pass")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret-pass", user.PasswordHash)

	_, err = svc.Signup(ctx, "Ann again", "ann@example.com", "other-pass")
	assert.ErrorIs(t, err, ErrEmailTaken)

	token, logged, err := svc.Login(ctx, "ann@example.com", "s3cret-pass")
	require.NoError(t, err)
	assert.Equal(t, "ann@example.com", logged.Email)

	claims := &jwt.RegisteredClaims{}
	_, err = jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	}, jwt.WithTimeFunc(func() time.Time { return fixedNow }))
	require.NoError(t, err)
	assert.Equal(t, "ann@example.com", claims.Subject)
	assert.Equal(t, fixedNow.Add(time.Hour).Unix(), claims.ExpiresAt.Unix())
}

func TestLogin_Failures(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(repository.NewMemoryRepository(), &stubModel{})

	_, _, err := svc.Login(ctx, "ghost@example.com", "whatever")
	assert.ErrorIs(t, err, repository.ErrUserNotFound)

	_, err = svc.Signup(ctx, "Bob", "bob@example.com", "right-password")
	require.NoError(t, err)

	_, _, err = svc.Login(ctx, "bob@example.com", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}
