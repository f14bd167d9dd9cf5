package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/curio-learn/profile-service/internal/cache"
	"github.com/curio-learn/profile-service/internal/serializers"
)

const cacheSetDelay = 20 * time.Millisecond

func TestProfileService_ReadAfterWriteWithCache(t *testing.T) {
	env, mr := newCachedTestEnv(t, cacheSetDelay)
	ctx := context.Background()
	admin := env.createUser(t, "admin", true)
	profiles := env.services.UserProfile()

	for i := 0; i < 5; i++ {
		owner := env.createUser(t, fmt.Sprintf("learner%d", i), false)

		created, err := profiles.Create(ctx, &serializers.UserProfileRepresentation{User: owner.ID, StreakDays: intPtr(1)}, admin.ID)
		require.NoError(t, err)

		_, err = profiles.Update(ctx, created.ID, &serializers.UserProfileRepresentation{User: owner.ID, StreakDays: intPtr(2)}, admin.ID)
		require.NoError(t, err)

		got, err := profiles.GetByID(ctx, created.ID)
		require.NoError(t, err)
		require.NotNil(t, got.StreakDays)
		assert.Equal(t, 2, *got.StreakDays)

		// Served again from the cache, still current
		require.True(t, mr.Exists(cache.ProfilePrefix+cache.IDKey(created.ID)))
		got, err = profiles.GetByID(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, 2, *got.StreakDays)

		mr.FlushAll()
		require.NoError(t, profiles.Delete(ctx, created.ID, admin.ID))

		_, err = profiles.GetByID(ctx, created.ID)
		assert.ErrorIs(t, err, ErrNotFound)
		assert.False(t, mr.Exists(cache.ProfilePrefix+cache.IDKey(created.ID)))
	}
}

func TestProfileService_DeleteAfterCachedRead(t *testing.T) {
	env, _ := newCachedTestEnv(t, cacheSetDelay)
	ctx := context.Background()
	admin := env.createUser(t, "admin", true)
	alice := env.createUser(t, "alice", false)
	profiles := env.services.UserProfile()

	created, err := profiles.Create(ctx, &serializers.UserProfileRepresentation{User: alice.ID}, admin.ID)
	require.NoError(t, err)

	_, err = profiles.GetByID(ctx, created.ID)
	require.NoError(t, err)
	_, err = profiles.GetByUser(ctx, alice.ID)
	require.NoError(t, err)

	require.NoError(t, profiles.Delete(ctx, created.ID, admin.ID))

	_, err = profiles.GetByID(ctx, created.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = profiles.GetByUser(ctx, alice.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStudentDataService_UpdateWithCache(t *testing.T) {
	env, _ := newCachedTestEnv(t, cacheSetDelay)
	ctx := context.Background()
	admin := env.createUser(t, "admin", true)
	alice := env.createUser(t, "alice", false)
	students := env.services.StudentData()

	created, err := students.Create(ctx, &serializers.StudentDataRepresentation{User: alice.ID, Age: intPtr(12), Grade: strPtr("7")}, admin.ID)
	require.NoError(t, err)

	_, err = students.GetByUser(ctx, alice.ID)
	require.NoError(t, err)

	_, err = students.Update(ctx, created.ID, &serializers.StudentDataRepresentation{User: alice.ID, Age: intPtr(13)}, admin.ID)
	require.NoError(t, err)

	got, err := students.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, 13, *got.Age)
	assert.Nil(t, got.Grade)

	got, err = students.GetByUser(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, 13, *got.Age)
}

func TestAccountService_DeleteWithCache(t *testing.T) {
	env, _ := newCachedTestEnv(t, cacheSetDelay)
	ctx := context.Background()
	admin := env.createUser(t, "admin", true)
	alice := env.createUser(t, "alice", false)

	profile, err := env.services.UserProfile().Create(ctx, &serializers.UserProfileRepresentation{User: alice.ID}, admin.ID)
	require.NoError(t, err)

	_, err = env.services.Account().GetByID(ctx, alice.ID)
	require.NoError(t, err)
	_, err = env.services.UserProfile().GetByID(ctx, profile.ID)
	require.NoError(t, err)

	require.NoError(t, env.services.Account().Delete(ctx, alice.ID, admin.ID))

	_, err = env.services.Account().GetByID(ctx, alice.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = env.services.UserProfile().GetByID(ctx, profile.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = env.services.UserProfile().GetByUser(ctx, alice.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
