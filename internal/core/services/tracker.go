package services

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/agora-labs/agora-cli/internal/core/domain"
	"github.com/agora-labs/agora-cli/internal/logger"
)

// topicRule maps message text onto a governance exploration topic.
type topicRule struct {
	pattern  *regexp.Regexp
	label    string
	priority string
}

// insightRule matches an opinion or intent sentence.
type insightRule struct {
	pattern    *regexp.Regexp
	confidence string
}

// contradictionRule pairs two patterns that cannot both hold across one
// conversation. A message matching one side and another message matching
// the other side, in either order, flags a contradiction.
type contradictionRule struct {
	sideA *regexp.Regexp
	sideB *regexp.Regexp
}

// The rule tables are deliberately rule-based rather than model-driven:
// cheap, deterministic and explainable. Patterns are matched against
// lower-cased text.
var (
	topicRules = []topicRule{
		{regexp.MustCompile(`\b(budget|allocation|funding|spend)\b`), "Budget allocation", domain.PriorityHigh},
		{regexp.MustCompile(`\btreasury\b`), "Treasury management", domain.PriorityHigh},
		{regexp.MustCompile(`\b(vote|voting|quorum|ballot)\b`), "Voting mechanics", domain.PriorityHigh},
		{regexp.MustCompile(`\b(risk|risks|downside|vulnerab)`), "Risk assessment", domain.PriorityHigh},
		{regexp.MustCompile(`\b(stake|staking|validator|delegat)`), "Staking", domain.PriorityMedium},
		{regexp.MustCompile(`\b(timeline|roadmap|milestone|deadline)\b`), "Timeline", domain.PriorityMedium},
		{regexp.MustCompile(`\b(grant|grants|bounty|bounties)\b`), "Grants program", domain.PriorityMedium},
		{regexp.MustCompile(`\b(community|outreach|engagement)\b`), "Community engagement", domain.PriorityLow},
		{regexp.MustCompile(`\b(brand|branding|marketing)\b`), "Branding", domain.PriorityLow},
	}

	insightRules = []insightRule{
		{regexp.MustCompile(`^(i think|i believe|i feel)\b`), domain.ConfidenceMedium},
		{regexp.MustCompile(`^(my goal|my aim|my intention)\b`), domain.ConfidenceHigh},
		{regexp.MustCompile(`^(we need to|we should|we must|we have to)\b`), domain.ConfidenceHigh},
		{regexp.MustCompile(`^(i want|i would like|i propose)\b`), domain.ConfidenceHigh},
		{regexp.MustCompile(`^in my opinion\b`), domain.ConfidenceMedium},
		{regexp.MustCompile(`^(maybe|perhaps|possibly) we\b`), domain.ConfidenceLow},
	}

	contradictionRules = []contradictionRule{
		{
			sideA: regexp.MustCompile(`\bno (risk|risks|downsides?)\b`),
			sideB: regexp.MustCompile(`\b(risk|risks|downsides?)\b.*\b(include|are|exist|remain)\b`),
		},
		{
			sideA: regexp.MustCompile(`\b(no|without a?|zero) budget\b`),
			sideB: regexp.MustCompile(`\bbudget (of|is|around|totals?)\b`),
		},
		{
			sideA: regexp.MustCompile(`\b(everyone|all members?) (supports?|agrees?)\b`),
			sideB: regexp.MustCompile(`\b(opposition|objections?|disagreements?|pushback)\b`),
		},
		{
			sideA: regexp.MustCompile(`\bno (deadline|time pressure|rush)\b`),
			sideB: regexp.MustCompile(`\b(deadline|due) (is|by|on)\b`),
		},
	}
)

var sentenceSplitRe = regexp.MustCompile(`[.!?]+\s+|\n+`)

// Tracker derives structured signals from raw dialogue text without any
// model call. Purely a function of message history, independent of
// retrieval.
type Tracker struct {
	clock func() time.Time
}

// NewTracker creates a tracker using the wall clock.
func NewTracker() *Tracker {
	return &Tracker{clock: time.Now}
}

// WithClock overrides the clock. Useful for testing.
func (t *Tracker) WithClock(clock func() time.Time) *Tracker {
	if clock != nil {
		t.clock = clock
	}
	return t
}

// Analyze processes every user message not yet seen for topics and
// insights, then re-runs contradiction detection pairwise across all user
// messages. The pairwise step is O(n^2) in message count, acceptable
// because histories are short-lived and bounded.
func (t *Tracker) Analyze(messages []domain.Message, state *domain.ConversationState) {
	if state == nil {
		return
	}
	now := t.clock().UTC()

	start := state.AnalyzedMessages
	if start > len(messages) {
		start = 0
	}

	for i := start; i < len(messages); i++ {
		if messages[i].Role != domain.RoleUser {
			continue
		}
		t.detectTopics(messages[i].Content, state, now)
		t.extractInsights(messages[i].Content, state, now)
	}
	state.AnalyzedMessages = len(messages)

	t.detectContradictions(messages, state, now)
	state.LastUpdated = now
}

// detectTopics matches the message against the topic table. Topics form a
// set by label.
func (t *Tracker) detectTopics(text string, state *domain.ConversationState, now time.Time) {
	lowered := strings.ToLower(text)
	for _, rule := range topicRules {
		if !rule.pattern.MatchString(lowered) {
			continue
		}
		if state.HasTopic(rule.label) {
			continue
		}
		state.Topics = append(state.Topics, domain.Topic{
			Label:    rule.label,
			Priority: rule.priority,
			Status:   domain.TopicPending,
			Created:  now,
		})
		logger.Debug("Topic detected: %q (%s)", rule.label, rule.priority)
	}
}

// extractInsights splits the message into sentences and keeps any sentence
// opening with an opinion or intent pattern.
func (t *Tracker) extractInsights(text string, state *domain.ConversationState, now time.Time) {
	for _, sentence := range splitSentences(text) {
		lowered := strings.ToLower(sentence)
		for _, rule := range insightRules {
			if !rule.pattern.MatchString(lowered) {
				continue
			}
			state.Insights = append(state.Insights, domain.Insight{
				Text:       sentence,
				Source:     domain.InsightSourceUser,
				Timestamp:  now,
				Confidence: rule.confidence,
			})
			logger.Debug("Insight extracted (%s): %q", rule.confidence, sentence)
			break
		}
	}
}

// detectContradictions checks every pair of user messages against the
// paired rule table, in either order. A pair already recorded by its two
// statement texts is not duplicated.
func (t *Tracker) detectContradictions(messages []domain.Message, state *domain.ConversationState, now time.Time) {
	var userMessages []string
	for i := range messages {
		if messages[i].Role == domain.RoleUser {
			userMessages = append(userMessages, messages[i].Content)
		}
	}

	for i := 0; i < len(userMessages); i++ {
		for j := i + 1; j < len(userMessages); j++ {
			earlier := strings.ToLower(userMessages[i])
			later := strings.ToLower(userMessages[j])
			for _, rule := range contradictionRules {
				matched := (rule.sideA.MatchString(earlier) && rule.sideB.MatchString(later)) ||
					(rule.sideB.MatchString(earlier) && rule.sideA.MatchString(later))
				if !matched {
					continue
				}
				if state.HasContradiction(userMessages[i], userMessages[j]) {
					continue
				}
				state.Contradictions = append(state.Contradictions, domain.Contradiction{
					StatementA:   userMessages[i],
					StatementB:   userMessages[j],
					Status:       domain.ContradictionUnresolved,
					IdentifiedAt: now,
				})
				logger.Debug("Contradiction flagged: %q vs %q", userMessages[i], userMessages[j])
			}
		}
	}
}

// Resolve marks the contradiction at index as resolved with an
// explanation. This is the only mutation path for contradictions.
func (t *Tracker) Resolve(state *domain.ConversationState, index int, resolution string) error {
	if state == nil || index < 0 || index >= len(state.Contradictions) {
		return fmt.Errorf("%w: contradiction index %d", domain.ErrNotFound, index)
	}

	now := t.clock().UTC()
	c := &state.Contradictions[index]
	c.Status = domain.ContradictionResolved
	c.Resolution = resolution
	c.ResolvedAt = &now
	state.LastUpdated = now
	return nil
}

// splitSentences breaks text into sentences on terminators and newlines.
func splitSentences(text string) []string {
	parts := sentenceSplitRe.Split(text, -1)
	sentences := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part != "" {
			sentences = append(sentences, part)
		}
	}
	return sentences
}
