package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConversationState(t *testing.T) {
	state := NewConversationState()

	require.NotNil(t, state)
	assert.Empty(t, state.Insights)
	assert.Empty(t, state.Topics)
	assert.Empty(t, state.Contradictions)
	assert.Equal(t, 0, state.AnalyzedMessages)
}

func TestHasTopic(t *testing.T) {
	state := NewConversationState()
	state.Topics = append(state.Topics, Topic{Label: "Budget allocation"})

	assert.True(t, state.HasTopic("Budget allocation"))
	assert.False(t, state.HasTopic("Staking"))
}

func TestHasContradiction_EitherOrder(t *testing.T) {
	state := NewConversationState()
	state.Contradictions = append(state.Contradictions, Contradiction{
		StatementA: "no budget",
		StatementB: "budget is 50k",
	})

	assert.True(t, state.HasContradiction("no budget", "budget is 50k"))
	assert.True(t, state.HasContradiction("budget is 50k", "no budget"))
	assert.False(t, state.HasContradiction("no budget", "something else"))
}

func TestPendingHighPriorityTopic(t *testing.T) {
	state := NewConversationState()
	assert.Nil(t, state.PendingHighPriorityTopic())

	state.Topics = []Topic{
		{Label: "Branding", Priority: PriorityLow, Status: TopicPending},
		{Label: "Done", Priority: PriorityHigh, Status: TopicCompleted},
		{Label: "Risk assessment", Priority: PriorityHigh, Status: TopicPending},
		{Label: "Voting mechanics", Priority: PriorityHigh, Status: TopicPending},
	}

	topic := state.PendingHighPriorityTopic()
	require.NotNil(t, topic)
	assert.Equal(t, "Risk assessment", topic.Label)
}

func TestUnresolvedContradiction(t *testing.T) {
	state := NewConversationState()
	assert.Nil(t, state.UnresolvedContradiction())

	state.Contradictions = []Contradiction{
		{StatementA: "a", StatementB: "b", Status: ContradictionResolved},
		{StatementA: "c", StatementB: "d", Status: ContradictionUnresolved},
	}

	c := state.UnresolvedContradiction()
	require.NotNil(t, c)
	assert.Equal(t, "c", c.StatementA)
}
