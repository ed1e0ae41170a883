package tests

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/boat-builder/penpal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const essay = `School uniforms are often defended as a way to reduce distraction, but the evidence for that claim is thin and the cost to students' sense of identity is real. Requiring every student to dress the same teaches conformity before it teaches focus.

Supporters point to lower clothing costs for families. Yet uniforms are sold by a handful of approved suppliers, and families with several children often end up paying more over a school year than they would for ordinary clothes.`

func newLiveSession(t *testing.T) *penpal.Session {
	t.Helper()
	config := LoadConfig()
	if config.OpenAIAPIKey == "" {
		t.Skip("OPENAI_API_KEY is not set")
	}

	llmConfig := penpal.LLMConfig{
		APIKey:  config.OpenAIAPIKey,
		BaseURL: config.BaseURL,
		Model:   config.Model,
	}
	session, err := penpal.NewSession(context.Background(), llmConfig.NewLLMClient(), penpal.WithPacing(0))
	require.NoError(t, err)
	return session
}

func liveInput() penpal.SessionConfig {
	return penpal.SessionConfig{
		Essay: essay,
		Tone:  penpal.DefaultTone,
		Style: penpal.DefaultStyle,
	}
}

func TestLiveChat(t *testing.T) {
	session := newLiveSession(t)
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	state, err := session.Send(ctx, liveInput(), "Is my thesis clear? Answer in one sentence.")
	require.NoError(t, err)
	assert.True(t, state.IsComplete)
	assert.NotEmpty(t, strings.TrimSpace(state.AccumulatedText))

	last, ok := session.Messages.Last()
	require.True(t, ok)
	assert.Equal(t, state.AccumulatedText, last.Text)
	t.Log("Received reply:", state.AccumulatedText)
}

func TestLiveFeedback(t *testing.T) {
	session := newLiveSession(t)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	input := liveInput()
	input.RubricText = "Thesis: states a clear, arguable claim\nEvidence: supports claims with specific examples"
	require.NoError(t, session.GenerateFeedback(ctx, input))

	assert.NotZero(t, session.Comments.Len())
	for _, row := range session.Rubric.Rows() {
		assert.GreaterOrEqual(t, row.Score, float64(penpal.MinScore))
		assert.LessOrEqual(t, row.Score, float64(penpal.MaxScore))
	}
	if cost, ok := session.Cost(); ok {
		t.Logf("Feedback cost: $%.4f", cost.TotalCost)
	}
}
