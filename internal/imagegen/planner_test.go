package imagegen

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"posterforge/internal/domain"
	"posterforge/internal/providers/openai"
)

type chatFunc func(ctx context.Context, req openai.ChatRequest) (string, error)

func (f chatFunc) Chat(ctx context.Context, req openai.ChatRequest) (string, error) {
	return f(ctx, req)
}

func TestPlan(t *testing.T) {
	t.Parallel()
	var captured openai.ChatRequest
	p := NewPlanner(chatFunc(func(_ context.Context, req openai.ChatRequest) (string, error) {
		captured = req
		return `{"prompt":" replace text with 'TAX TITAN', warp the headline ","layout":"diagonal","visual_summary":"serpent around a calculator"}`, nil
	}), nil)

	plan, err := p.Plan(context.Background(), "Tax Titan", "https://posters.example.com/refs/a.png")
	require.NoError(t, err)
	assert.Equal(t, "replace text with 'TAX TITAN', warp the headline", plan.Prompt)
	assert.Equal(t, domain.LayoutSingleTop, plan.Layout)
	assert.Equal(t, "serpent around a calculator", plan.VisualSummary)

	assert.True(t, captured.Vision)
	assert.True(t, captured.JSON)
	require.Len(t, captured.Messages, 2)
	require.Len(t, captured.Messages[1].Parts, 2)
	assert.Equal(t, "https://posters.example.com/refs/a.png", captured.Messages[1].Parts[1].ImageURL.URL)
}

func TestPlanKeepsKnownLayout(t *testing.T) {
	t.Parallel()
	p := NewPlanner(chatFunc(func(context.Context, openai.ChatRequest) (string, error) {
		return `{"prompt":"replace text with 'X'","layout":"split_top_bottom"}`, nil
	}), nil)
	plan, err := p.Plan(context.Background(), "X", "https://x.test/refs/a.png")
	require.NoError(t, err)
	assert.Equal(t, domain.LayoutSplitTopBottom, plan.Layout)
}

func TestPlanErrors(t *testing.T) {
	t.Parallel()
	ok := chatFunc(func(context.Context, openai.ChatRequest) (string, error) { return `{}`, nil })

	_, err := NewPlanner(ok, nil).Plan(context.Background(), "", "https://x.test/a.png")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = NewPlanner(ok, nil).Plan(context.Background(), "X", "/refs/a.png")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = NewPlanner(nil, nil).Plan(context.Background(), "X", "https://x.test/a.png")
	assert.ErrorIs(t, err, domain.ErrNotConfigured)

	_, err = NewPlanner(ok, nil).Plan(context.Background(), "X", "https://x.test/a.png")
	assert.ErrorIs(t, err, domain.ErrUpstream)

	garbage := chatFunc(func(context.Context, openai.ChatRequest) (string, error) { return "no json here", nil })
	_, err = NewPlanner(garbage, nil).Plan(context.Background(), "X", "https://x.test/a.png")
	assert.ErrorIs(t, err, domain.ErrUpstream)

	failing := chatFunc(func(context.Context, openai.ChatRequest) (string, error) { return "", errors.New("reset") })
	_, err = NewPlanner(failing, nil).Plan(context.Background(), "X", "https://x.test/a.png")
	assert.ErrorIs(t, err, domain.ErrUpstream)
}
