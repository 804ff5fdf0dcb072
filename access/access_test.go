package access

import (
	"context"
	"testing"

	"raffler/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoleStore(t *testing.T) {
	ctx := context.Background()
	store := NewRoleStore()
	id := uuid.New()

	ok, err := store.HasRole(ctx, id, service.RoleLotteryOwner, "alice")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.GrantRole(ctx, id, service.RoleLotteryOwner, "alice"))

	ok, err = store.HasRole(ctx, id, service.RoleLotteryOwner, "alice")
	require.NoError(t, err)
	assert.True(t, ok)

	// Grants are scoped per round, role, and address
	ok, _ = store.HasRole(ctx, uuid.New(), service.RoleLotteryOwner, "alice")
	assert.False(t, ok)
	ok, _ = store.HasRole(ctx, id, service.RolePlatformAdmin, "alice")
	assert.False(t, ok)
	ok, _ = store.HasRole(ctx, id, service.RoleLotteryOwner, "bob")
	assert.False(t, ok)
}

func TestPauseStore(t *testing.T) {
	ctx := context.Background()
	store := NewPauseStore()
	id := uuid.New()

	paused, err := store.IsPaused(ctx, id)
	require.NoError(t, err)
	assert.False(t, paused)

	require.NoError(t, store.SetPaused(ctx, id, true))
	paused, _ = store.IsPaused(ctx, id)
	assert.True(t, paused)

	// Other rounds are unaffected
	paused, _ = store.IsPaused(ctx, uuid.New())
	assert.False(t, paused)

	require.NoError(t, store.SetPaused(ctx, id, false))
	paused, _ = store.IsPaused(ctx, id)
	assert.False(t, paused)
}
