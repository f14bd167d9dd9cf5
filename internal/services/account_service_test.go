package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/curio-learn/profile-service/internal/events"
	"github.com/curio-learn/profile-service/internal/models"
	"github.com/curio-learn/profile-service/internal/repositories"
	"github.com/curio-learn/profile-service/internal/serializers"
)

func TestAccountService_Provision(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	accounts := env.services.Account()

	identity := &Identity{ExternalID: "cd-1", Username: "alice", Email: "alice@example.com"}
	user, err := accounts.Provision(ctx, identity)
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
	assert.False(t, user.IsStaff)

	published := env.publisher.GetPublishedEvents()
	require.Len(t, published, 1)
	assert.Equal(t, events.TypeUserCreated, published[0].Type)

	// Second login reuses the account and syncs the admin flag.
	identity.IsAdmin = true
	again, err := accounts.Provision(ctx, identity)
	require.NoError(t, err)
	assert.Equal(t, user.ID, again.ID)
	assert.True(t, again.IsStaff)
	assert.Len(t, env.publisher.GetPublishedEvents(), 1)

	// Username held by another subject.
	_, err = accounts.Provision(ctx, &Identity{ExternalID: "cd-2", Username: "alice"})
	assert.ErrorIs(t, err, ErrAlreadyExists)

	_, err = accounts.Provision(ctx, &Identity{})
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestAccountService_DeleteCascades(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	adminUser := env.createUser(t, "admin", true)
	alice := env.createUser(t, "alice", false)

	profile, err := env.services.UserProfile().Create(ctx, &serializers.UserProfileRepresentation{User: alice.ID}, adminUser.ID)
	require.NoError(t, err)
	student, err := env.services.StudentData().Create(ctx, &serializers.StudentDataRepresentation{User: alice.ID}, adminUser.ID)
	require.NoError(t, err)

	require.NoError(t, env.services.Account().Delete(ctx, alice.ID, adminUser.ID))

	_, err = env.services.UserProfile().GetByID(ctx, profile.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = env.services.StudentData().GetByID(ctx, student.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	history, err := env.services.AdminLog().History(ctx, repositories.AdminLogFilters{ContentType: models.ContentTypeUser})
	require.NoError(t, err)
	require.Len(t, history.Entries, 1)
	assert.Equal(t, "alice", history.Entries[0].ObjectRepr)

	assert.ErrorIs(t, env.services.Account().Delete(ctx, alice.ID, adminUser.ID), ErrNotFound)
	assert.ErrorIs(t, env.services.Account().Delete(ctx, adminUser.ID, adminUser.ID), ErrForbidden)
}

func TestAccountService_List(t *testing.T) {
	env := newTestEnv(t)
	for _, name := range []string{"carol", "alice", "bob"} {
		env.createUser(t, name, false)
	}

	resp, err := env.services.Account().List(context.Background(), "", 1, 2)
	require.NoError(t, err)
	assert.EqualValues(t, 3, resp.Total)
	require.Len(t, resp.Users, 2)
	assert.Equal(t, "alice", resp.Users[0].Username)
	assert.Equal(t, "bob", resp.Users[1].Username)
}

func TestRecordEventHandler(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.createUser(t, "alice", false)
	handler := env.services.EventHandler()

	require.NoError(t, handler(ctx, events.NewRecordEvent(events.TypeUserCreated, models.ContentTypeUser, alice.ID, alice.ID, nil)))
	rep, err := env.services.UserProfile().GetByUser(ctx, alice.ID)
	require.NoError(t, err)

	// Replays converge on the same profile.
	require.NoError(t, handler(ctx, events.NewRecordEvent(events.TypeUserCreated, models.ContentTypeUser, alice.ID, alice.ID, nil)))
	again, err := env.services.UserProfile().GetByUser(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, rep.ID, again.ID)

	// Missing accounts are skipped.
	assert.NoError(t, handler(ctx, events.NewRecordEvent(events.TypeUserCreated, models.ContentTypeUser, 999, 999, nil)))
	assert.NoError(t, handler(ctx, events.NewRecordEvent(events.TypeUserDeleted, models.ContentTypeUser, alice.ID, alice.ID, nil)))
}
