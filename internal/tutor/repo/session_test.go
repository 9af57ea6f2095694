package repo

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atelier-mentor/server/internal/tutor/model"
)

func TestMemoryRepoRoundTrip(t *testing.T) {
	ctx := context.Background()
	r := NewMemorySessionRepository()
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	state := model.NewConversationState("sess-1", "Design a library.", now)
	state.AppendMessage(model.RoleUser, "Where do I start?", now.Add(time.Minute))
	require.NoError(t, r.SaveState(ctx, state))

	loaded, err := r.LoadState(ctx, "sess-1")
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, "sess-1", loaded.SessionID)
	assert.Equal(t, "Design a library.", loaded.DesignBrief)
	assert.Len(t, loaded.Messages, 2)

	// a load returns an independent copy; mutating it must not leak back
	loaded.AppendMessage(model.RoleUser, "extra", now.Add(2*time.Minute))
	again, err := r.LoadState(ctx, "sess-1")
	require.NoError(t, err)
	assert.Len(t, again.Messages, 2)
}

func TestMemoryRepoMissingSessionIsNilNil(t *testing.T) {
	r := NewMemorySessionRepository()
	state, err := r.LoadState(context.Background(), "nope")
	assert.NoError(t, err)
	assert.Nil(t, state)
}

func TestMemoryRepoClearState(t *testing.T) {
	ctx := context.Background()
	r := NewMemorySessionRepository()
	now := time.Now()

	require.NoError(t, r.SaveState(ctx, model.NewConversationState("sess-1", "brief", now)))
	require.NoError(t, r.ClearState(ctx, "sess-1"))

	state, err := r.LoadState(ctx, "sess-1")
	assert.NoError(t, err)
	assert.Nil(t, state)
}

func TestMemoryRepoMessageCount(t *testing.T) {
	ctx := context.Background()
	r := NewMemorySessionRepository()
	now := time.Now()

	n, err := r.MessageCount(ctx, "missing")
	require.NoError(t, err)
	assert.Zero(t, n)

	state := model.NewConversationState("sess-1", "brief", now)
	state.AppendMessage(model.RoleUser, "hello", now)
	state.AppendMessage(model.RoleAssistant, "hi", now)
	require.NoError(t, r.SaveState(ctx, state))

	n, err = r.MessageCount(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}
