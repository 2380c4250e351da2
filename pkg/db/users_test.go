package db

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUsers(t *testing.T) {
	t.Parallel()

	r := setupTestDB(t)
	ctx := t.Context()

	_, err := r.UserFirst(ctx)
	require.ErrorIs(t, err, ErrUserNotFound)

	u := testUser(t, r)
	assert.Positive(t, u.ID)

	first, err := r.UserFirst(ctx)
	require.NoError(t, err)
	assert.Equal(t, u.ID, first.ID)
	assert.Equal(t, "hash", first.PasswordHash)

	byName, err := r.UserByName(ctx, "admin")
	require.NoError(t, err)
	assert.Equal(t, u.ID, byName.ID)

	require.NoError(t, r.UpdatePassword(ctx, u.ID, "new-hash"))
	byID, err := r.UserByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "new-hash", byID.PasswordHash)

	err = r.UpdatePassword(ctx, 99, "x")
	require.ErrorIs(t, err, ErrUserNotFound)

	// usernames are unique
	_, err = r.CreateUser(ctx, &User{Username: "admin", PasswordHash: "x"})
	require.Error(t, err)
}

func TestAPIKeys(t *testing.T) {
	t.Parallel()

	r := setupTestDB(t)
	ctx := t.Context()
	u := testUser(t, r)

	k := &APIKey{UserID: u.ID, Name: "cli", Hash: "abc123", Preview: "abcdefgh...", Active: true}
	id, err := r.InsertAPIKey(ctx, k)
	require.NoError(t, err)
	assert.Equal(t, id, k.ID)

	got, err := r.APIKeyByHash(ctx, "abc123")
	require.NoError(t, err)
	assert.Equal(t, "cli", got.Name)
	assert.True(t, got.Active)
	assert.Nil(t, got.LastUsed)

	used := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	require.NoError(t, r.TouchAPIKey(ctx, id, used))

	keys, err := r.APIKeys(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, keys, 1)
	require.NotNil(t, keys[0].LastUsed)
	assert.Equal(t, "2025-01-02T03:04:05Z", *keys[0].LastUsed)

	_, err = r.APIKeyByHash(ctx, "nope")
	require.ErrorIs(t, err, ErrAPIKeyNotFound)

	inactive := &APIKey{UserID: u.ID, Name: "old", Hash: "dead", Preview: "deadbeef..."}
	_, err = r.InsertAPIKey(ctx, inactive)
	require.NoError(t, err)
	_, err = r.APIKeyByHash(ctx, "dead")
	require.ErrorIs(t, err, ErrAPIKeyNotFound)

	deleted, err := r.DeleteAPIKey(ctx, u.ID, id)
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = r.DeleteAPIKey(ctx, u.ID, id)
	require.NoError(t, err)
	assert.False(t, deleted)
}
