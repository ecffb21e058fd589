package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/agora-labs/agora-cli/internal/core/domain"
	"github.com/agora-labs/agora-cli/internal/core/ports/driven"
	"github.com/agora-labs/agora-cli/internal/core/ports/driving"
	"github.com/agora-labs/agora-cli/internal/logger"
)

// Ensure Assistant implements the interface.
var _ driving.AssistantService = (*Assistant)(nil)

// DefaultSessionTTL bounds how long a turn's evidence set can be reused by
// follow-up turns that retrieve nothing new.
const DefaultSessionTTL = 30 * time.Minute

// maxPromptDocRunes caps how much of each document is quoted in the prompt.
const maxPromptDocRunes = 1500

// basePrompt is the standing instruction for every turn.
const basePrompt = `You are a governance proposal drafting assistant. You help users turn
forum discussion into well-structured governance proposals. Ground every
answer in the provided documents; cite document titles when you rely on
them.`

// noEvidencePrompt replaces the document block when retrieval found nothing.
const noEvidencePrompt = `No forum documents matched this question. Say so briefly, answer from
general governance knowledge, and ask what the user wants the proposal to
achieve.`

// Retriever is the slice of the indexing surface the assistant needs.
type Retriever interface {
	Search(ctx context.Context, query string, opts domain.SearchOptions) ([]domain.ScoredRecord, error)
}

// AssistantOptions tunes the orchestrator.
type AssistantOptions struct {
	// SessionTTL is how long session memory stays fresh (default 30m).
	SessionTTL time.Duration

	// SearchLimit caps retrieved documents per turn.
	SearchLimit int

	// Threshold is the similarity floor passed to the retriever. Zero
	// means the index default.
	Threshold float64

	// Temperature is passed to the completion service.
	Temperature float64

	// Clock overrides the wall clock. Useful for testing.
	Clock func() time.Time
}

func (o AssistantOptions) withDefaults() AssistantOptions {
	if o.SessionTTL <= 0 {
		o.SessionTTL = DefaultSessionTTL
	}
	if o.SearchLimit <= 0 {
		o.SearchLimit = DefaultSearchLimit
	}
	if o.Clock == nil {
		o.Clock = time.Now
	}
	return o
}

// evidenceMemory is the prior turn's evidence set, kept so follow-up
// questions that retrieve nothing new can still answer from documents.
type evidenceMemory struct {
	query     string
	documents []domain.ScoredRecord
	timestamp time.Time
}

// session holds everything owned by one dialogue session. Same-session
// concurrent turns serialize on mu; cross-session turns do not contend.
type session struct {
	mu     sync.Mutex
	state  *domain.ConversationState
	memory *evidenceMemory
}

// Assistant orchestrates a dialogue turn: retrieval, session memory,
// state tracking, prompt assembly and delegation to the completion
// service. All collaborators are explicit constructor dependencies; there
// is no process-wide provider state.
type Assistant struct {
	retriever  Retriever
	completion driven.CompletionService
	store      driven.SessionStore
	tracker    *Tracker
	opts       AssistantOptions

	mu       sync.Mutex
	sessions map[string]*session
}

// NewAssistant creates the orchestrator. The session store is optional;
// with nil, state lives only in memory.
func NewAssistant(retriever Retriever, completion driven.CompletionService, store driven.SessionStore, opts AssistantOptions) *Assistant {
	return &Assistant{
		retriever:  retriever,
		completion: completion,
		store:      store,
		tracker:    NewTracker().WithClock(opts.Clock),
		opts:       opts.withDefaults(),
		sessions:   make(map[string]*session),
	}
}

// Turn produces the next assistant message for a session.
func (a *Assistant) Turn(ctx context.Context, sessionID string, history []domain.Message, message string) (domain.TurnResult, error) {
	if a.completion == nil {
		return domain.TurnResult{}, domain.ErrCompletionUnavailable
	}

	sess := a.session(ctx, sessionID)
	sess.mu.Lock()
	defer sess.mu.Unlock()

	now := a.opts.Clock().UTC()
	history = append(append([]domain.Message{}, history...), domain.Message{
		Role:    domain.RoleUser,
		Content: message,
	})

	logger.Section("Dialogue Turn")
	logger.Debug("Session %s, history length %d", sessionID, len(history))

	// A retrieval failure degrades the turn to document-free mode rather
	// than failing it.
	documents := a.retrieve(ctx, message)

	switch {
	case len(documents) == 0 && len(history) > 1 && sess.memory != nil:
		if now.Sub(sess.memory.timestamp) < a.opts.SessionTTL {
			documents = sess.memory.documents
			logger.Debug("Reusing %d documents from session memory (query %q)", len(documents), sess.memory.query)
		}
	case len(documents) > 0:
		sess.memory = &evidenceMemory{query: message, documents: documents, timestamp: now}
	}

	a.tracker.Analyze(history, sess.state)

	systemPrompt := buildSystemPrompt(documents, sess.state)
	response, err := a.completion.Complete(ctx, history, driven.CompletionOptions{
		SystemPrompt: systemPrompt,
		Temperature:  a.opts.Temperature,
	})
	if err != nil {
		return domain.TurnResult{}, fmt.Errorf("complete turn: %w", err)
	}

	history = append(history, domain.Message{Role: domain.RoleAssistant, Content: response})
	a.persistState(ctx, sessionID, sess.state)

	return domain.TurnResult{
		Response:  response,
		State:     sess.state,
		History:   history,
		Documents: documents,
	}, nil
}

// retrieve runs adaptive-recall search, treating any failure as zero
// results so the turn can proceed.
func (a *Assistant) retrieve(ctx context.Context, query string) []domain.ScoredRecord {
	if a.retriever == nil {
		return nil
	}
	documents, err := a.retriever.Search(ctx, query, domain.SearchOptions{
		Limit:     a.opts.SearchLimit,
		Threshold: a.opts.Threshold,
	})
	if err != nil {
		logger.Warn("Retrieval failed, continuing without documents: %v", err)
		return nil
	}
	return documents
}

// GetState returns the session's conversation state.
func (a *Assistant) GetState(ctx context.Context, sessionID string) (*domain.ConversationState, error) {
	a.mu.Lock()
	sess, ok := a.sessions[sessionID]
	a.mu.Unlock()
	if ok {
		return sess.state, nil
	}

	if a.store != nil {
		state, err := a.store.Load(ctx, sessionID)
		if err == nil {
			return state, nil
		}
		if !errors.Is(err, domain.ErrSessionNotFound) {
			return nil, fmt.Errorf("load session %s: %w", sessionID, err)
		}
	}
	return nil, fmt.Errorf("%w: %s", domain.ErrSessionNotFound, sessionID)
}

// ResolveContradiction marks one contradiction resolved and persists the
// session state.
func (a *Assistant) ResolveContradiction(ctx context.Context, sessionID string, index int, resolution string) error {
	sess := a.session(ctx, sessionID)
	sess.mu.Lock()
	defer sess.mu.Unlock()

	if err := a.tracker.Resolve(sess.state, index, resolution); err != nil {
		return err
	}
	a.persistState(ctx, sessionID, sess.state)
	return nil
}

// Draft asks the completion service for a structured proposal draft built
// from the accumulated session state and the last evidence set.
func (a *Assistant) Draft(ctx context.Context, sessionID string, history []domain.Message) (string, error) {
	if a.completion == nil {
		return "", domain.ErrCompletionUnavailable
	}

	sess := a.session(ctx, sessionID)
	sess.mu.Lock()
	defer sess.mu.Unlock()

	a.tracker.Analyze(history, sess.state)

	var b strings.Builder
	b.WriteString("Draft a governance proposal from this conversation.\n\n")
	if len(sess.state.Insights) > 0 {
		b.WriteString("Stated goals and opinions:\n")
		for _, insight := range sess.state.Insights {
			fmt.Fprintf(&b, "- %s\n", insight.Text)
		}
		b.WriteString("\n")
	}
	if len(sess.state.Topics) > 0 {
		b.WriteString("Topics raised:\n")
		for _, topic := range sess.state.Topics {
			fmt.Fprintf(&b, "- %s (%s, %s)\n", topic.Label, topic.Priority, topic.Status)
		}
		b.WriteString("\n")
	}
	for _, c := range sess.state.Contradictions {
		if c.Status == domain.ContradictionResolved {
			fmt.Fprintf(&b, "Resolved point: %q vs %q: %s\n", c.StatementA, c.StatementB, c.Resolution)
		}
	}
	if sess.memory != nil {
		b.WriteString("\nSupporting documents:\n")
		for _, doc := range sess.memory.documents {
			fmt.Fprintf(&b, "- %s\n", doc.Metadata.Title)
		}
	}
	b.WriteString("\nProduce sections: Summary, Motivation, Specification, Budget, Timeline, Risks.")

	draft, err := a.completion.Generate(ctx, b.String(), driven.CompletionOptions{
		SystemPrompt: basePrompt,
		Temperature:  a.opts.Temperature,
	})
	if err != nil {
		return "", fmt.Errorf("draft proposal: %w", err)
	}
	return draft, nil
}

// ClearSession drops the session's state and memory, in memory and in the
// store. A later turn under the same id starts a fresh session.
func (a *Assistant) ClearSession(ctx context.Context, sessionID string) error {
	a.mu.Lock()
	delete(a.sessions, sessionID)
	a.mu.Unlock()

	if a.store != nil {
		if err := a.store.Delete(ctx, sessionID); err != nil {
			return fmt.Errorf("delete session %s: %w", sessionID, err)
		}
	}
	return nil
}

// Sessions lists ids with persisted state.
func (a *Assistant) Sessions(ctx context.Context) ([]string, error) {
	if a.store == nil {
		a.mu.Lock()
		defer a.mu.Unlock()
		ids := make([]string, 0, len(a.sessions))
		for id := range a.sessions {
			ids = append(ids, id)
		}
		return ids, nil
	}
	return a.store.List(ctx)
}

// session returns the in-memory session, creating it (and loading any
// persisted state) on first touch.
func (a *Assistant) session(ctx context.Context, sessionID string) *session {
	a.mu.Lock()
	defer a.mu.Unlock()

	if sess, ok := a.sessions[sessionID]; ok {
		return sess
	}

	state := domain.NewConversationState()
	if a.store != nil {
		if loaded, err := a.store.Load(ctx, sessionID); err == nil {
			state = loaded
			logger.Debug("Restored session %s: %d insights, %d topics", sessionID, len(state.Insights), len(state.Topics))
		} else if !errors.Is(err, domain.ErrSessionNotFound) {
			logger.Warn("Failed to load session %s, starting fresh: %v", sessionID, err)
		}
	}

	sess := &session{state: state}
	a.sessions[sessionID] = sess
	return sess
}

// persistState writes session state through the store. Best-effort:
// failures are logged and swallowed.
func (a *Assistant) persistState(ctx context.Context, sessionID string, state *domain.ConversationState) {
	if a.store == nil {
		return
	}
	if err := a.store.Save(ctx, sessionID, state); err != nil {
		logger.Warn("Failed to persist session %s: %v", sessionID, err)
	}
}

// buildSystemPrompt assembles the per-turn system instruction: base text,
// one block per retrieved document, the answer-from-documents directive,
// and at most one steering sentence naming the most salient open item.
func buildSystemPrompt(documents []domain.ScoredRecord, state *domain.ConversationState) string {
	var b strings.Builder
	b.WriteString(basePrompt)
	b.WriteString("\n\n")

	if len(documents) == 0 {
		b.WriteString(noEvidencePrompt)
	} else {
		b.WriteString("Relevant forum documents:\n\n")
		for i, doc := range documents {
			title := doc.Metadata.Title
			if title == "" {
				title = doc.ID
			}
			text := domain.Truncate(domain.CleanMarkup(doc.Text), maxPromptDocRunes)
			fmt.Fprintf(&b, "Document %d: %s\n%s\n\n", i+1, title, text)
		}
		b.WriteString("Answer from these documents before asking follow-up questions.")
	}

	if state != nil {
		if c := state.UnresolvedContradiction(); c != nil {
			fmt.Fprintf(&b, "\n\nThe user has said both %q and %q; ask them to reconcile this.", c.StatementA, c.StatementB)
		} else if topic := state.PendingHighPriorityTopic(); topic != nil {
			fmt.Fprintf(&b, "\n\nSteer the conversation toward the open topic %q.", topic.Label)
		}
	}

	return b.String()
}
