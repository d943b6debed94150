package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"booksstock/internal/entity"
	"booksstock/internal/platform/crypto"
	"booksstock/internal/user"
)

const testSecret = "test-secret"

func newTestService(t *testing.T) (*Service, *user.MemoryRepo) {
	t.Helper()
	repo := user.NewMemoryRepo()
	users := user.NewService(repo)

	hash, err := crypto.HashPassword("Secret123!")
	require.NoError(t, err)
	_, err = users.Register(context.Background(), "admin", "admin@example.com", hash)
	require.NoError(t, err)

	return NewService(testSecret, time.Hour, users, NewMemoryBlacklist()), repo
}

func TestService_Login(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	token, err := svc.Login(ctx, "admin", "Secret123!")
	require.NoError(t, err)
	assert.NotEmpty(t, token.Value)
	assert.WithinDuration(t, time.Now().Add(time.Hour), token.ExpiresAt, time.Minute)

	userID, role, err := svc.ParseToken(ctx, token.Value)
	require.NoError(t, err)
	assert.NotEmpty(t, userID)
	assert.Equal(t, entity.RoleAdmin, role)
}

func TestService_Login_Failures(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	_, err := svc.Login(ctx, "admin", "wrong")
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = svc.Login(ctx, "nobody", "Secret123!")
	assert.ErrorIs(t, err, ErrUnauthorized)

	hash, err := crypto.HashPassword("Secret123!")
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, &entity.User{Login: "reader", Email: "reader@example.com", Password: hash, Role: entity.RoleUser}))

	_, err = svc.Login(ctx, "reader", "Secret123!")
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestService_ParseToken_Rejects(t *testing.T) {
	svc, _ := newTestService(t)

	ctx := context.Background()
	_, _, err := svc.ParseToken(ctx, "garbage")
	assert.ErrorIs(t, err, ErrUnauthorized)

	other, _, _, err := crypto.GenerateToken("other-secret", "id", "admin", entity.RoleAdmin, time.Hour)
	require.NoError(t, err)
	_, _, err = svc.ParseToken(ctx, other)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestService_Logout(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	token, err := svc.Login(ctx, "admin", "Secret123!")
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, token.Value))
	_, _, err = svc.ParseToken(ctx, token.Value)
	assert.ErrorIs(t, err, ErrUnauthorized)

	assert.ErrorIs(t, svc.Logout(ctx, "garbage"), ErrUnauthorized)
}
