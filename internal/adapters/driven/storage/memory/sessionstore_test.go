package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agora-labs/agora-cli/internal/core/domain"
)

func TestSessionStore_Roundtrip(t *testing.T) {
	store := NewSessionStore()
	ctx := context.Background()

	state := domain.NewConversationState()
	state.Topics = append(state.Topics, domain.Topic{Label: "Staking", Priority: domain.PriorityMedium, Status: domain.TopicPending})
	require.NoError(t, store.Save(ctx, "s1", state))

	loaded, err := store.Load(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, loaded.Topics, 1)
	assert.Equal(t, "Staking", loaded.Topics[0].Label)
}

func TestSessionStore_LoadIsolatedFromCallerMutation(t *testing.T) {
	store := NewSessionStore()
	ctx := context.Background()

	state := domain.NewConversationState()
	require.NoError(t, store.Save(ctx, "s1", state))

	// Mutating the saved or loaded state must not leak into the store.
	state.AnalyzedMessages = 99
	loaded, err := store.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, 0, loaded.AnalyzedMessages)

	loaded.AnalyzedMessages = 42
	again, err := store.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, 0, again.AnalyzedMessages)
}

func TestSessionStore_MissingSession(t *testing.T) {
	store := NewSessionStore()

	_, err := store.Load(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestSessionStore_RequiresSessionID(t *testing.T) {
	store := NewSessionStore()

	err := store.Save(context.Background(), "", domain.NewConversationState())
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSessionStore_DeleteAndList(t *testing.T) {
	store := NewSessionStore()
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "s1", domain.NewConversationState()))
	require.NoError(t, store.Save(ctx, "s2", domain.NewConversationState()))

	ids, err := store.List(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"s1", "s2"}, ids)

	require.NoError(t, store.Delete(ctx, "s1"))
	require.NoError(t, store.Delete(ctx, "s1"))

	ids, err = store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"s2"}, ids)
}

func TestIndexStore_Roundtrip(t *testing.T) {
	store := NewIndexStore()
	ctx := context.Background()

	records := []domain.VectorRecord{
		{ID: "r1", Embedding: []float32{1, 0}, Text: "a"},
		{ID: "r2", Embedding: []float32{0, 1}, Text: "b"},
	}
	require.NoError(t, store.Save(ctx, records))

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, records, loaded)

	// A later save replaces, not appends.
	require.NoError(t, store.Save(ctx, records[:1]))
	loaded, err = store.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, loaded, 1)
}

func TestIndexStore_EmptyLoad(t *testing.T) {
	store := NewIndexStore()

	records, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, records)
}
