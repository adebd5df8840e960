package imagegen

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"posterforge/internal/domain"
	"posterforge/internal/providers/replicate"
)

type fakePredictor struct {
	mu       sync.Mutex
	inputs   []replicate.FluxKontextInput
	createFn func(n int, input replicate.FluxKontextInput) (*domain.Prediction, error)
	waitFn   func(p *domain.Prediction) (*replicate.WaitResult, error)
	getFn    func(id, url string) (*domain.Prediction, error)
	waits    atomic.Int32
}

func (f *fakePredictor) CreatePrediction(_ context.Context, input any) (*domain.Prediction, error) {
	f.mu.Lock()
	in := input.(replicate.FluxKontextInput)
	f.inputs = append(f.inputs, in)
	n := len(f.inputs)
	f.mu.Unlock()
	if f.createFn != nil {
		return f.createFn(n, in)
	}
	return &domain.Prediction{ID: fmt.Sprintf("p%d", n), Status: domain.PredictionStarting}, nil
}

func (f *fakePredictor) GetPrediction(_ context.Context, id string) (*domain.Prediction, error) {
	return f.getFn(id, "")
}

func (f *fakePredictor) GetPredictionURL(_ context.Context, rawURL string) (*domain.Prediction, error) {
	return f.getFn("", rawURL)
}

func (f *fakePredictor) Wait(_ context.Context, p *domain.Prediction, _ replicate.WaitOptions) (*replicate.WaitResult, error) {
	f.waits.Add(1)
	if f.waitFn != nil {
		return f.waitFn(p)
	}
	done := *p
	done.Status = domain.PredictionSucceeded
	done.Output = []any{"https://cdn.example.com/" + p.ID + ".jpg"}
	return &replicate.WaitResult{State: replicate.WaitSucceeded, Prediction: &done, Images: []string{"https://cdn.example.com/" + p.ID + ".jpg"}}, nil
}

func (f *fakePredictor) ModelRef() string { return replicate.DefaultModel }

func reference(file string) domain.Reference {
	return domain.Reference{
		ReferenceEntry: domain.ReferenceEntry{File: file, Replace: "skull", Keep: "barbed wire"},
		URL:            "https://posters.example.com/refs/" + file,
		InCatalog:      true,
	}
}

func TestRenderBuildsFixedInput(t *testing.T) {
	t.Parallel()
	fake := &fakePredictor{}
	r := NewRenderer(RendererOptions{Client: fake})

	res, err := r.Render(context.Background(), RenderRequest{Slogan: "Tax Titan", Visual: "plain coins (no symbols)", Reference: reference("a.png")})
	require.NoError(t, err)
	assert.Equal(t, "succeeded", res.State)
	assert.Equal(t, []string{"https://cdn.example.com/p1.jpg"}, res.Images)

	require.Len(t, fake.inputs, 1)
	in := fake.inputs[0]
	assert.Equal(t, "https://posters.example.com/refs/a.png", in.InputImage)
	assert.Equal(t, "match_input_image", in.AspectRatio)
	assert.Equal(t, "jpg", in.OutputFormat)
	assert.Equal(t, 2, in.SafetyTolerance)
	assert.False(t, in.PromptUpsampling)
	assert.Contains(t, in.Prompt, `Replace text in the image with "Tax Titan", replace skull with plain coins (no symbols), keep barbed wire.`)
	assert.Equal(t, in.Prompt, res.Prompt)
}

func TestRenderPromptOverride(t *testing.T) {
	t.Parallel()
	fake := &fakePredictor{}
	r := NewRenderer(RendererOptions{Client: fake})
	_, err := r.Render(context.Background(), RenderRequest{Prompt: "replace text with 'X'", Reference: reference("a.png")})
	require.NoError(t, err)
	assert.Equal(t, "replace text with 'X'", fake.inputs[0].Prompt)
}

func TestRenderValidation(t *testing.T) {
	t.Parallel()
	r := NewRenderer(RendererOptions{Client: &fakePredictor{}})
	_, err := r.Render(context.Background(), RenderRequest{Slogan: "X", Reference: reference("a.png")})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = r.Render(context.Background(), RenderRequest{Slogan: "X", Visual: "y"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = NewRenderer(RendererOptions{}).Render(context.Background(), RenderRequest{Slogan: "X", Visual: "y", Reference: reference("a.png")})
	assert.ErrorIs(t, err, domain.ErrNotConfigured)
}

func TestRenderFailures(t *testing.T) {
	t.Parallel()
	failed := &fakePredictor{waitFn: func(p *domain.Prediction) (*replicate.WaitResult, error) {
		done := *p
		done.Status = domain.PredictionFailed
		return &replicate.WaitResult{State: replicate.WaitFailed, Prediction: &done}, fmt.Errorf("%w: nsfw", domain.ErrPredictionFailed)
	}}
	res, err := NewRenderer(RendererOptions{Client: failed}).Render(context.Background(), RenderRequest{Slogan: "X", Visual: "y", Reference: reference("a.png")})
	assert.ErrorIs(t, err, domain.ErrPredictionFailed)
	require.NotNil(t, res)
	assert.Equal(t, "failed", res.State)

	submitErr := &fakePredictor{createFn: func(int, replicate.FluxKontextInput) (*domain.Prediction, error) {
		return nil, replicate.ErrMissingToken
	}}
	_, err = NewRenderer(RendererOptions{Client: submitErr}).Render(context.Background(), RenderRequest{Slogan: "X", Visual: "y", Reference: reference("a.png")})
	assert.ErrorIs(t, err, domain.ErrNotConfigured)
}

func TestSubmitDoesNotWait(t *testing.T) {
	t.Parallel()
	fake := &fakePredictor{}
	res, err := NewRenderer(RendererOptions{Client: fake}).Submit(context.Background(), RenderRequest{Slogan: "X", Visual: "y", Reference: reference("a.png")})
	require.NoError(t, err)
	assert.Equal(t, "pending", res.State)
	assert.Equal(t, "p1", res.Prediction.ID)
	assert.EqualValues(t, 0, fake.waits.Load())
}

func TestRenderBatch(t *testing.T) {
	t.Parallel()
	fake := &fakePredictor{}
	r := NewRenderer(RendererOptions{Client: fake, SubmitInterval: time.Millisecond})
	refs := []domain.Reference{reference("a.png"), reference("b.png"), reference("c.png")}

	out, err := r.RenderBatch(context.Background(), "Tax Titan", "plain coins (no symbols)", refs)
	require.NoError(t, err)
	assert.Equal(t, 3, out.Count)
	assert.Equal(t, replicate.DefaultModel, out.ModelRef)
	for i, item := range out.Items {
		assert.Equal(t, refs[i].File, item.Reference.File)
		assert.Len(t, item.Images, 1)
	}
	assert.EqualValues(t, 3, fake.waits.Load())
}

func TestRenderBatchFailsOnAnyError(t *testing.T) {
	t.Parallel()
	fake := &fakePredictor{createFn: func(n int, in replicate.FluxKontextInput) (*domain.Prediction, error) {
		if in.InputImage == "https://posters.example.com/refs/b.png" {
			return nil, errors.New("boom")
		}
		return &domain.Prediction{ID: fmt.Sprintf("p%d", n), Status: domain.PredictionStarting}, nil
	}}
	r := NewRenderer(RendererOptions{Client: fake, SubmitInterval: time.Millisecond})
	_, err := r.RenderBatch(context.Background(), "Tax Titan", "coins", []domain.Reference{reference("a.png"), reference("b.png")})
	assert.ErrorIs(t, err, domain.ErrUpstream)
	assert.ErrorContains(t, err, "b.png")

	_, err = r.RenderBatch(context.Background(), "Tax Titan", "coins", nil)
	assert.ErrorIs(t, err, domain.ErrNoReferences)
}

func TestPoll(t *testing.T) {
	t.Parallel()
	var gotID, gotURL string
	fake := &fakePredictor{getFn: func(id, url string) (*domain.Prediction, error) {
		gotID, gotURL = id, url
		return &domain.Prediction{ID: "p1", Status: domain.PredictionSucceeded, Output: "https://cdn.example.com/p1.jpg"}, nil
	}}
	r := NewRenderer(RendererOptions{Client: fake})

	res, err := r.Poll(context.Background(), "p1", "")
	require.NoError(t, err)
	assert.Equal(t, "p1", gotID)
	assert.Equal(t, "succeeded", res.State)
	assert.Equal(t, []string{"https://cdn.example.com/p1.jpg"}, res.Images)

	_, err = r.Poll(context.Background(), "ignored", "https://api.replicate.com/v1/predictions/p1")
	require.NoError(t, err)
	assert.Equal(t, "https://api.replicate.com/v1/predictions/p1", gotURL)

	_, err = r.Poll(context.Background(), " ", "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
