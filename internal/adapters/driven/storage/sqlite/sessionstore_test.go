package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agora-labs/agora-cli/internal/core/domain"
)

func testStore(t *testing.T) *SessionStore {
	t.Helper()
	store, err := NewSessionStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func sampleState() *domain.ConversationState {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	return &domain.ConversationState{
		Insights: []domain.Insight{
			{Text: "We need to fund audits", Source: domain.InsightSourceUser, Timestamp: now, Confidence: domain.ConfidenceHigh},
		},
		Topics: []domain.Topic{
			{Label: "Budget allocation", Priority: domain.PriorityHigh, Status: domain.TopicPending, Created: now},
		},
		Contradictions: []domain.Contradiction{
			{StatementA: "no budget", StatementB: "budget is 50k", Status: domain.ContradictionUnresolved, IdentifiedAt: now},
		},
		AnalyzedMessages: 3,
		LastUpdated:      now,
	}
}

func TestNewSessionStore_RequiresDirectory(t *testing.T) {
	_, err := NewSessionStore("")
	assert.ErrorIs(t, err, domain.ErrConfiguration)
}

func TestSaveLoad_Roundtrip(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	state := sampleState()
	require.NoError(t, store.Save(ctx, "s1", state))

	loaded, err := store.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, state, loaded)
}

func TestSave_RequiresSessionID(t *testing.T) {
	store := testStore(t)

	err := store.Save(context.Background(), "", sampleState())
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSave_Upserts(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	state := sampleState()
	require.NoError(t, store.Save(ctx, "s1", state))

	state.AnalyzedMessages = 5
	require.NoError(t, store.Save(ctx, "s1", state))

	loaded, err := store.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, 5, loaded.AnalyzedMessages)

	ids, err := store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, ids, 1)
}

func TestLoad_MissingSession(t *testing.T) {
	store := testStore(t)

	_, err := store.Load(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestDelete_Idempotent(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "s1", sampleState()))
	require.NoError(t, store.Delete(ctx, "s1"))

	_, err := store.Load(ctx, "s1")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)

	// Deleting again is not an error.
	assert.NoError(t, store.Delete(ctx, "s1"))
}

func TestList(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	ids, err := store.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, ids)

	require.NoError(t, store.Save(ctx, "s1", sampleState()))
	require.NoError(t, store.Save(ctx, "s2", sampleState()))

	ids, err = store.List(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"s1", "s2"}, ids)
}

func TestPersistenceAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	store, err := NewSessionStore(dir)
	require.NoError(t, err)
	require.NoError(t, store.Save(ctx, "s1", sampleState()))
	require.NoError(t, store.Close())

	reopened, err := NewSessionStore(dir)
	require.NoError(t, err)
	defer reopened.Close()

	loaded, err := reopened.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, 3, loaded.AnalyzedMessages)
}
