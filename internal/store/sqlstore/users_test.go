package sqlstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gizetz/gbairai/internal/models"
	"github.com/gizetz/gbairai/internal/store"
)

func TestCreateUser(t *testing.T) {
	s := SetupTestDB(t)
	u := createUser(t, s, "testuser")
	assert.NotZero(t, u.ID)

	// Test duplicate user
	err := s.CreateUser(context.Background(), &models.User{Username: "testuser", Email: "other@example.com", Password: "x", CreatedAt: epoch})
	assert.ErrorIs(t, err, store.ErrDuplicate)
}

func TestGetUserByUsername(t *testing.T) {
	s := SetupTestDB(t)
	created := createUser(t, s, "testuser")

	user, err := s.GetUserByUsername(context.Background(), "testuser")
	require.NoError(t, err)
	assert.Equal(t, created.ID, user.ID)
	assert.Equal(t, "testuser@example.com", user.Email)
	assert.True(t, user.CreatedAt.Equal(epoch))

	_, err = s.GetUserByUsername(context.Background(), "nonexistent")
	assert.ErrorIs(t, err, store.ErrNotFound)

	_, err = s.GetUserByID(context.Background(), 9999)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestSearchUsers(t *testing.T) {
	s := SetupTestDB(t)
	createUser(t, s, "alice")
	createUser(t, s, "bob")
	createUser(t, s, "alex")
	sys := &models.User{Username: "altbot", Email: "bot@example.com", Password: "x", IsSystem: true, CreatedAt: epoch}
	require.NoError(t, s.CreateUser(context.Background(), sys))

	users, err := s.SearchUsers(context.Background(), "al")
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "alex", users[0].Username)
	assert.Equal(t, "al**@example.com", users[0].Email)
}

func TestVerifyUser(t *testing.T) {
	s := SetupTestDB(t)
	ctx := context.Background()
	u := &models.User{Username: "v", Email: "v@example.com", Password: "x", VerificationToken: "tok-1", CreatedAt: epoch}
	require.NoError(t, s.CreateUser(ctx, u))

	require.NoError(t, s.VerifyUser(ctx, "tok-1"))
	got, err := s.GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, got.IsVerified)
	assert.Empty(t, got.VerificationToken)

	assert.ErrorIs(t, s.VerifyUser(ctx, "tok-1"), store.ErrNotFound)
	assert.ErrorIs(t, s.VerifyUser(ctx, ""), store.ErrNotFound)
}
