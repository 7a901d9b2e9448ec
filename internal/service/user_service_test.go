package service

import (
	"context"
	"strings"
	"testing"

	"agora/internal/cache"
	"agora/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withTestCache(t *testing.T) {
	t.Helper()
	mr := miniredis.RunT(t)
	cache.SetClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { cache.SetClient(nil) })
}

func TestUserService_UpdateProfile_PreservesPasswordAfterCachedRead(t *testing.T) {
	withTestCache(t)
	env := newTestEnv(t)
	ctx := context.Background()

	user := env.createUser(t, "alice", false)

	// First read warms the cache, second read is served from it. The cached
	// entry carries no password hash because the field never survives the
	// JSON round-trip.
	_, err := env.users.GetByID(ctx, user.ID)
	require.NoError(t, err)
	cached, err := env.users.GetByID(ctx, user.ID)
	require.NoError(t, err)
	require.Empty(t, cached.Password)

	updated, err := env.userSvc.UpdateProfile(ctx, UpdateProfileInput{
		UserID:      user.ID,
		DisplayName: "Alice B",
	})
	require.NoError(t, err)
	assert.Equal(t, "Alice B", updated.DisplayName)

	var stored models.User
	require.NoError(t, env.db.First(&stored, user.ID).Error)
	assert.Equal(t, "hashed", stored.Password, "profile update must not touch the stored password hash")
	assert.Equal(t, "Alice B", stored.DisplayName)
}

func TestUserService_UpdateProfile_Validation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user := env.createUser(t, "bob", false)

	t.Run("Display name too long", func(t *testing.T) {
		_, err := env.userSvc.UpdateProfile(ctx, UpdateProfileInput{
			UserID:      user.ID,
			DisplayName: strings.Repeat("x", 51),
		})
		require.Error(t, err)
		appErr, ok := err.(*models.AppError)
		require.True(t, ok)
		assert.Equal(t, "VALIDATION_ERROR", appErr.Code)
	})

	t.Run("Bio too long", func(t *testing.T) {
		_, err := env.userSvc.UpdateProfile(ctx, UpdateProfileInput{
			UserID: user.ID,
			Bio:    strings.Repeat("x", 501),
		})
		require.Error(t, err)
	})

	t.Run("Empty input is a no-op", func(t *testing.T) {
		updated, err := env.userSvc.UpdateProfile(ctx, UpdateProfileInput{UserID: user.ID})
		require.NoError(t, err)
		assert.Equal(t, "bob", updated.Username)
	})

	t.Run("Unknown user", func(t *testing.T) {
		_, err := env.userSvc.UpdateProfile(ctx, UpdateProfileInput{
			UserID:      9999,
			DisplayName: "Ghost",
		})
		require.Error(t, err)
		appErr, ok := err.(*models.AppError)
		require.True(t, ok)
		assert.Equal(t, "NOT_FOUND", appErr.Code)
	})
}

func TestUserService_SetAdmin(t *testing.T) {
	withTestCache(t)
	env := newTestEnv(t)
	ctx := context.Background()

	user := env.createUser(t, "carol", false)

	// Cache-hit read first, then promote; the stored hash must survive.
	_, err := env.users.GetByID(ctx, user.ID)
	require.NoError(t, err)
	_, err = env.users.GetByID(ctx, user.ID)
	require.NoError(t, err)

	promoted, err := env.userSvc.SetAdmin(ctx, user.ID, true)
	require.NoError(t, err)
	assert.True(t, promoted.IsAdmin)

	var stored models.User
	require.NoError(t, env.db.First(&stored, user.ID).Error)
	assert.True(t, stored.IsAdmin)
	assert.Equal(t, "hashed", stored.Password)

	demoted, err := env.userSvc.SetAdmin(ctx, user.ID, false)
	require.NoError(t, err)
	assert.False(t, demoted.IsAdmin)

	_, err = env.userSvc.SetAdmin(ctx, 9999, true)
	require.Error(t, err)
}
