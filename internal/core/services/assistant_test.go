package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agora-labs/agora-cli/internal/adapters/driven/storage/memory"
	"github.com/agora-labs/agora-cli/internal/core/domain"
	"github.com/agora-labs/agora-cli/internal/core/ports/driven"
)

// --- Mock implementations ---

// mockRetriever serves a canned result set and records queries.
type mockRetriever struct {
	results   []domain.ScoredRecord
	searchErr error
	queries   []string
}

func (m *mockRetriever) Search(_ context.Context, query string, _ domain.SearchOptions) ([]domain.ScoredRecord, error) {
	m.queries = append(m.queries, query)
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	return m.results, nil
}

// mockCompletionService returns a canned response and captures what it was
// asked.
type mockCompletionService struct {
	response    string
	completeErr error

	lastSystemPrompt string
	lastMessages     []domain.Message
	lastPrompt       string
}

func (m *mockCompletionService) Complete(_ context.Context, messages []domain.Message, opts driven.CompletionOptions) (string, error) {
	m.lastMessages = messages
	m.lastSystemPrompt = opts.SystemPrompt
	if m.completeErr != nil {
		return "", m.completeErr
	}
	if m.response != "" {
		return m.response, nil
	}
	return "assistant reply", nil
}

func (m *mockCompletionService) Generate(_ context.Context, prompt string, opts driven.CompletionOptions) (string, error) {
	m.lastPrompt = prompt
	m.lastSystemPrompt = opts.SystemPrompt
	if m.completeErr != nil {
		return "", m.completeErr
	}
	return "draft text", nil
}

func (m *mockCompletionService) ModelName() string {
	return "mock-llm"
}

func (m *mockCompletionService) Ping(_ context.Context) error {
	return nil
}

func (m *mockCompletionService) Close() error {
	return nil
}

// mockSessionStore injects save failures.
type mockSessionStore struct {
	saveErr error
	saves   int
}

func (m *mockSessionStore) Save(_ context.Context, _ string, _ *domain.ConversationState) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saves++
	return nil
}

func (m *mockSessionStore) Load(_ context.Context, sessionID string) (*domain.ConversationState, error) {
	return nil, domain.ErrSessionNotFound
}

func (m *mockSessionStore) Delete(_ context.Context, _ string) error {
	return nil
}

func (m *mockSessionStore) List(_ context.Context) ([]string, error) {
	return nil, nil
}

func (m *mockSessionStore) Close() error {
	return nil
}

// --- Test helpers ---

func scoredDoc(id, title, text string, score float64) domain.ScoredRecord {
	return domain.ScoredRecord{
		VectorRecord: domain.VectorRecord{
			ID:       id,
			Text:     text,
			Metadata: domain.RecordMetadata{Title: title},
		},
		Score: score,
	}
}

// --- Tests ---

func TestTurn_BasicFlow(t *testing.T) {
	retriever := &mockRetriever{results: []domain.ScoredRecord{
		scoredDoc("d1", "Treasury report", "The treasury holds 2M tokens.", 0.8),
	}}
	completion := &mockCompletionService{response: "The treasury is healthy."}
	assistant := NewAssistant(retriever, completion, memory.NewSessionStore(), AssistantOptions{})

	result, err := assistant.Turn(context.Background(), "s1", nil, "How is the treasury doing?")
	require.NoError(t, err)

	assert.Equal(t, "The treasury is healthy.", result.Response)
	require.Len(t, result.History, 2)
	assert.Equal(t, domain.RoleUser, result.History[0].Role)
	assert.Equal(t, "How is the treasury doing?", result.History[0].Content)
	assert.Equal(t, domain.RoleAssistant, result.History[1].Role)
	require.Len(t, result.Documents, 1)
	assert.Equal(t, "d1", result.Documents[0].ID)

	// The completion saw the user message and the document in the prompt.
	require.Len(t, completion.lastMessages, 1)
	assert.Contains(t, completion.lastSystemPrompt, "Treasury report")
	assert.Contains(t, completion.lastSystemPrompt, "The treasury holds 2M tokens.")
}

func TestTurn_NoCompletionService(t *testing.T) {
	assistant := NewAssistant(&mockRetriever{}, nil, nil, AssistantOptions{})

	_, err := assistant.Turn(context.Background(), "s1", nil, "hello")
	assert.ErrorIs(t, err, domain.ErrCompletionUnavailable)
}

func TestTurn_RetrievalFailureDegradesToNoDocuments(t *testing.T) {
	retriever := &mockRetriever{searchErr: errors.New("embedding provider down")}
	completion := &mockCompletionService{}
	assistant := NewAssistant(retriever, completion, nil, AssistantOptions{})

	result, err := assistant.Turn(context.Background(), "s1", nil, "hello")
	require.NoError(t, err)

	assert.Empty(t, result.Documents)
	assert.Contains(t, completion.lastSystemPrompt, "No forum documents matched")
}

func TestTurn_CompletionFailurePropagates(t *testing.T) {
	completion := &mockCompletionService{completeErr: errors.New("model overloaded")}
	assistant := NewAssistant(&mockRetriever{}, completion, nil, AssistantOptions{})

	_, err := assistant.Turn(context.Background(), "s1", nil, "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model overloaded")
}

func TestTurn_SessionMemoryReusedWithinTTL(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	retriever := &mockRetriever{results: []domain.ScoredRecord{
		scoredDoc("d1", "Budget thread", "Budget discussion.", 0.9),
	}}
	completion := &mockCompletionService{}
	assistant := NewAssistant(retriever, completion, nil, AssistantOptions{
		Clock: func() time.Time { return now },
	})

	first, err := assistant.Turn(context.Background(), "s1", nil, "What is the budget?")
	require.NoError(t, err)
	require.Len(t, first.Documents, 1)

	// Ten minutes later the follow-up retrieves nothing; the previous
	// evidence set carries the turn.
	now = now.Add(10 * time.Minute)
	retriever.results = nil

	second, err := assistant.Turn(context.Background(), "s1", first.History, "And then?")
	require.NoError(t, err)
	require.Len(t, second.Documents, 1)
	assert.Equal(t, "d1", second.Documents[0].ID)
	assert.Contains(t, completion.lastSystemPrompt, "Budget thread")
}

func TestTurn_SessionMemoryExpiresAfterTTL(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	retriever := &mockRetriever{results: []domain.ScoredRecord{
		scoredDoc("d1", "Budget thread", "Budget discussion.", 0.9),
	}}
	completion := &mockCompletionService{}
	assistant := NewAssistant(retriever, completion, nil, AssistantOptions{
		SessionTTL: 30 * time.Minute,
		Clock:      func() time.Time { return now },
	})

	first, err := assistant.Turn(context.Background(), "s1", nil, "What is the budget?")
	require.NoError(t, err)
	require.Len(t, first.Documents, 1)

	now = now.Add(31 * time.Minute)
	retriever.results = nil

	second, err := assistant.Turn(context.Background(), "s1", first.History, "And then?")
	require.NoError(t, err)
	assert.Empty(t, second.Documents)
	assert.Contains(t, completion.lastSystemPrompt, "No forum documents matched")
}

func TestTurn_FreshHitsOverwriteMemory(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	retriever := &mockRetriever{results: []domain.ScoredRecord{
		scoredDoc("old", "Old thread", "old", 0.9),
	}}
	completion := &mockCompletionService{}
	assistant := NewAssistant(retriever, completion, nil, AssistantOptions{
		Clock: func() time.Time { return now },
	})

	first, err := assistant.Turn(context.Background(), "s1", nil, "first question")
	require.NoError(t, err)

	retriever.results = []domain.ScoredRecord{scoredDoc("new", "New thread", "new", 0.8)}
	second, err := assistant.Turn(context.Background(), "s1", first.History, "second question")
	require.NoError(t, err)
	require.Len(t, second.Documents, 1)
	assert.Equal(t, "new", second.Documents[0].ID)

	// A docless third turn now reuses the second turn's evidence.
	retriever.results = nil
	third, err := assistant.Turn(context.Background(), "s1", second.History, "third question")
	require.NoError(t, err)
	require.Len(t, third.Documents, 1)
	assert.Equal(t, "new", third.Documents[0].ID)
}

func TestTurn_ContradictionSteeringBeatsTopicSteering(t *testing.T) {
	completion := &mockCompletionService{}
	assistant := NewAssistant(&mockRetriever{}, completion, nil, AssistantOptions{})

	// One turn raises a high-priority topic, the next contradicts an
	// earlier statement. The contradiction wins the steering slot.
	first, err := assistant.Turn(context.Background(), "s1", nil, "There are no risks in this budget.")
	require.NoError(t, err)
	assert.Contains(t, completion.lastSystemPrompt, "Steer the conversation toward")

	_, err = assistant.Turn(context.Background(), "s1", first.History, "The risks include a funding gap.")
	require.NoError(t, err)
	assert.Contains(t, completion.lastSystemPrompt, "ask them to reconcile")
	assert.NotContains(t, completion.lastSystemPrompt, "Steer the conversation toward")
}

func TestTurn_StatePersistedBestEffort(t *testing.T) {
	store := &mockSessionStore{saveErr: errors.New("disk full")}
	assistant := NewAssistant(&mockRetriever{}, &mockCompletionService{}, store, AssistantOptions{})

	_, err := assistant.Turn(context.Background(), "s1", nil, "hello")
	assert.NoError(t, err)
}

func TestGetState_AfterTurn(t *testing.T) {
	assistant := NewAssistant(&mockRetriever{}, &mockCompletionService{}, memory.NewSessionStore(), AssistantOptions{})

	_, err := assistant.Turn(context.Background(), "s1", nil, "We need to fix the budget.")
	require.NoError(t, err)

	state, err := assistant.GetState(context.Background(), "s1")
	require.NoError(t, err)
	assert.NotEmpty(t, state.Topics)
	assert.NotEmpty(t, state.Insights)
}

func TestGetState_UnknownSession(t *testing.T) {
	assistant := NewAssistant(&mockRetriever{}, &mockCompletionService{}, memory.NewSessionStore(), AssistantOptions{})

	_, err := assistant.GetState(context.Background(), "nope")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestGetState_LoadsPersistedSession(t *testing.T) {
	store := memory.NewSessionStore()
	persisted := domain.NewConversationState()
	persisted.Topics = append(persisted.Topics, domain.Topic{Label: "Treasury management"})
	require.NoError(t, store.Save(context.Background(), "s1", persisted))

	assistant := NewAssistant(&mockRetriever{}, &mockCompletionService{}, store, AssistantOptions{})

	state, err := assistant.GetState(context.Background(), "s1")
	require.NoError(t, err)
	require.Len(t, state.Topics, 1)
	assert.Equal(t, "Treasury management", state.Topics[0].Label)
}

func TestResolveContradiction(t *testing.T) {
	store := memory.NewSessionStore()
	assistant := NewAssistant(&mockRetriever{}, &mockCompletionService{}, store, AssistantOptions{})

	first, err := assistant.Turn(context.Background(), "s1", nil, "There is no deadline for this.")
	require.NoError(t, err)
	_, err = assistant.Turn(context.Background(), "s1", first.History, "The deadline is March 1st.")
	require.NoError(t, err)

	require.NoError(t, assistant.ResolveContradiction(context.Background(), "s1", 0, "the vote set a date"))

	state, err := store.Load(context.Background(), "s1")
	require.NoError(t, err)
	require.Len(t, state.Contradictions, 1)
	assert.Equal(t, domain.ContradictionResolved, state.Contradictions[0].Status)
	assert.Equal(t, "the vote set a date", state.Contradictions[0].Resolution)
}

func TestResolveContradiction_IndexOutOfRange(t *testing.T) {
	assistant := NewAssistant(&mockRetriever{}, &mockCompletionService{}, nil, AssistantOptions{})

	err := assistant.ResolveContradiction(context.Background(), "s1", 5, "x")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestClearSession(t *testing.T) {
	store := memory.NewSessionStore()
	assistant := NewAssistant(&mockRetriever{}, &mockCompletionService{}, store, AssistantOptions{})

	_, err := assistant.Turn(context.Background(), "s1", nil, "We should review the treasury.")
	require.NoError(t, err)

	require.NoError(t, assistant.ClearSession(context.Background(), "s1"))

	_, err = assistant.GetState(context.Background(), "s1")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)

	// Clearing an already-cleared session is fine.
	assert.NoError(t, assistant.ClearSession(context.Background(), "s1"))
}

func TestSessions_WithStore(t *testing.T) {
	store := memory.NewSessionStore()
	assistant := NewAssistant(&mockRetriever{}, &mockCompletionService{}, store, AssistantOptions{})

	_, err := assistant.Turn(context.Background(), "s1", nil, "hello")
	require.NoError(t, err)
	_, err = assistant.Turn(context.Background(), "s2", nil, "hello")
	require.NoError(t, err)

	ids, err := assistant.Sessions(context.Background())
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"s1", "s2"}, ids)
}

func TestSessions_WithoutStore(t *testing.T) {
	assistant := NewAssistant(&mockRetriever{}, &mockCompletionService{}, nil, AssistantOptions{})

	_, err := assistant.Turn(context.Background(), "s1", nil, "hello")
	require.NoError(t, err)

	ids, err := assistant.Sessions(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"s1"}, ids)
}

func TestDraft(t *testing.T) {
	completion := &mockCompletionService{}
	assistant := NewAssistant(&mockRetriever{}, completion, nil, AssistantOptions{})

	history := []domain.Message{
		{Role: domain.RoleUser, Content: "I want a grants program with a clear budget."},
	}
	draft, err := assistant.Draft(context.Background(), "s1", history)
	require.NoError(t, err)
	assert.Equal(t, "draft text", draft)

	assert.Contains(t, completion.lastPrompt, "I want a grants program with a clear budget")
	assert.Contains(t, completion.lastPrompt, "Grants program")
	assert.Contains(t, completion.lastPrompt, "Summary, Motivation, Specification, Budget, Timeline, Risks")
}

func TestDraft_NoCompletionService(t *testing.T) {
	assistant := NewAssistant(&mockRetriever{}, nil, nil, AssistantOptions{})

	_, err := assistant.Draft(context.Background(), "s1", nil)
	assert.ErrorIs(t, err, domain.ErrCompletionUnavailable)
}
