package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/blogauth/internal/models"
	"github.com/iudanet/blogauth/internal/server/storage"
)

func TestSessionStorage_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	user := createTestUser(t, ctx, s, "admin")
	expires := time.Date(2030, 1, 2, 3, 4, 5, 0, time.UTC)

	session := &models.Session{ID: "token-1", UserID: user.ID, ExpiresAt: expires}
	require.NoError(t, s.CreateSession(ctx, session))

	got, err := s.GetSession(ctx, "token-1")
	require.NoError(t, err)
	assert.Equal(t, "token-1", got.ID)
	assert.Equal(t, user.ID, got.UserID)
	assert.True(t, expires.Equal(got.ExpiresAt))

	_, err = s.GetSession(ctx, "missing")
	assert.ErrorIs(t, err, storage.ErrSessionNotFound)
}

func TestSessionStorage_CreateForUnknownUser(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	err := s.CreateSession(ctx, &models.Session{ID: "orphan", UserID: 42, ExpiresAt: time.Now().Add(time.Hour)})
	assert.Error(t, err)
}

func TestSessionStorage_DeleteSession_Idempotent(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	user := createTestUser(t, ctx, s, "admin")
	require.NoError(t, s.CreateSession(ctx, &models.Session{ID: "t", UserID: user.ID, ExpiresAt: time.Now().Add(time.Hour)}))

	require.NoError(t, s.DeleteSession(ctx, "t"))
	require.NoError(t, s.DeleteSession(ctx, "t"))
	require.NoError(t, s.DeleteSession(ctx, "never-existed"))

	_, err := s.GetSession(ctx, "t")
	assert.ErrorIs(t, err, storage.ErrSessionNotFound)
}

func TestSessionStorage_DeleteUserSessions(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	alice := createTestUser(t, ctx, s, "alice")
	bob := createTestUser(t, ctx, s, "bob")
	exp := time.Now().Add(time.Hour)

	for _, sess := range []*models.Session{
		{ID: "a1", UserID: alice.ID, ExpiresAt: exp},
		{ID: "a2", UserID: alice.ID, ExpiresAt: exp},
		{ID: "b1", UserID: bob.ID, ExpiresAt: exp},
	} {
		require.NoError(t, s.CreateSession(ctx, sess))
	}

	n, err := s.DeleteUserSessions(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	_, err = s.GetSession(ctx, "b1")
	assert.NoError(t, err)
}

func TestSessionStorage_DeleteExpiredSessions(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	user := createTestUser(t, ctx, s, "admin")
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	for _, sess := range []*models.Session{
		{ID: "past", UserID: user.ID, ExpiresAt: now.Add(-time.Hour)},
		{ID: "exact", UserID: user.ID, ExpiresAt: now},
		{ID: "future", UserID: user.ID, ExpiresAt: now.Add(time.Hour)},
	} {
		require.NoError(t, s.CreateSession(ctx, sess))
	}

	n, err := s.DeleteExpiredSessions(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	_, err = s.GetSession(ctx, "future")
	assert.NoError(t, err)
	_, err = s.GetSession(ctx, "exact")
	assert.ErrorIs(t, err, storage.ErrSessionNotFound)
}
