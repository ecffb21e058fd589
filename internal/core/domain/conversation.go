package domain

import "time"

// Message roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is a single dialogue turn.
type Message struct {
	// Role is one of "system", "user", or "assistant".
	Role string `json:"role"`

	// Content is the message text.
	Content string `json:"content"`
}

// Insight sources.
const (
	InsightSourceUser     = "user"
	InsightSourceAgent    = "agent"
	InsightSourceDocument = "document"
)

// Insight confidence tags.
const (
	ConfidenceHigh   = "high"
	ConfidenceMedium = "medium"
	ConfidenceLow    = "low"
)

// Insight is an opinion or intent statement extracted from dialogue.
// Insights are append-only; they accumulate and are never deleted.
type Insight struct {
	// Text is the extracted sentence.
	Text string `json:"text"`

	// Source is "user", "agent", or "document".
	Source string `json:"source"`

	// Timestamp is when the insight was extracted.
	Timestamp time.Time `json:"timestamp"`

	// Confidence is "high", "medium", or "low".
	Confidence string `json:"confidence"`
}

// Topic priorities.
const (
	PriorityHigh   = "high"
	PriorityMedium = "medium"
	PriorityLow    = "low"
)

// Topic statuses.
const (
	TopicPending    = "pending"
	TopicInProgress = "in_progress"
	TopicCompleted  = "completed"
)

// Topic is an exploration area detected in dialogue. Topics form a set
// keyed by label; a topic already present is never re-added.
type Topic struct {
	// Label identifies the topic and enforces uniqueness.
	Label string `json:"label"`

	// Priority is "high", "medium", or "low".
	Priority string `json:"priority"`

	// Status is "pending", "in_progress", or "completed".
	Status string `json:"status"`

	// Created is when the topic was first detected.
	Created time.Time `json:"created"`

	// LastUpdated is when the status last changed, nil if never.
	LastUpdated *time.Time `json:"last_updated,omitempty"`
}

// Contradiction statuses.
const (
	ContradictionUnresolved = "unresolved"
	ContradictionResolved   = "resolved"
)

// Contradiction pairs two user statements that cannot both hold. It is
// mutated only by an explicit resolve operation.
type Contradiction struct {
	// StatementA is the earlier conflicting statement.
	StatementA string `json:"statement_a"`

	// StatementB is the later conflicting statement.
	StatementB string `json:"statement_b"`

	// Status is "unresolved" or "resolved".
	Status string `json:"status"`

	// Resolution explains how the conflict was settled.
	Resolution string `json:"resolution,omitempty"`

	// IdentifiedAt is when the pair was flagged.
	IdentifiedAt time.Time `json:"identified_at"`

	// ResolvedAt is when the pair was resolved, nil while unresolved.
	ResolvedAt *time.Time `json:"resolved_at,omitempty"`
}

// ConversationState is the accumulated structured signal for one dialogue
// session. It is a plain structure so it can be persisted and reloaded
// across process restarts.
type ConversationState struct {
	// Insights are append-only opinion/intent statements.
	Insights []Insight `json:"insights"`

	// Topics is a set of exploration areas keyed by label.
	Topics []Topic `json:"topics"`

	// Contradictions are flagged statement pairs.
	Contradictions []Contradiction `json:"contradictions"`

	// AnalyzedMessages counts how many leading messages of the history
	// have been through single-message analysis, so re-analysis of a
	// growing history never duplicates insights.
	AnalyzedMessages int `json:"analyzed_messages"`

	// LastUpdated is when the tracker last touched this state.
	LastUpdated time.Time `json:"last_updated"`
}

// NewConversationState returns an empty state for a fresh session.
func NewConversationState() *ConversationState {
	return &ConversationState{
		Insights:       []Insight{},
		Topics:         []Topic{},
		Contradictions: []Contradiction{},
	}
}

// HasTopic reports whether a topic with the given label exists.
func (s *ConversationState) HasTopic(label string) bool {
	for i := range s.Topics {
		if s.Topics[i].Label == label {
			return true
		}
	}
	return false
}

// HasContradiction reports whether the statement pair is already recorded,
// in either order.
func (s *ConversationState) HasContradiction(a, b string) bool {
	for i := range s.Contradictions {
		c := &s.Contradictions[i]
		if (c.StatementA == a && c.StatementB == b) || (c.StatementA == b && c.StatementB == a) {
			return true
		}
	}
	return false
}

// PendingHighPriorityTopic returns the first pending high-priority topic,
// or nil if none exists.
func (s *ConversationState) PendingHighPriorityTopic() *Topic {
	for i := range s.Topics {
		if s.Topics[i].Status == TopicPending && s.Topics[i].Priority == PriorityHigh {
			return &s.Topics[i]
		}
	}
	return nil
}

// UnresolvedContradiction returns the first unresolved contradiction, or
// nil if none exists.
func (s *ConversationState) UnresolvedContradiction() *Contradiction {
	for i := range s.Contradictions {
		if s.Contradictions[i].Status == ContradictionUnresolved {
			return &s.Contradictions[i]
		}
	}
	return nil
}
