package imagegen

import (
	"context"
	"time"

	"posterforge/internal/domain"
	"posterforge/internal/providers/openai"
	"posterforge/internal/providers/replicate"
)

// Chatter is the subset of the chat client the planner needs.
type Chatter interface {
	Chat(ctx context.Context, req openai.ChatRequest) (string, error)
}

// Predictor is the subset of the predictions client the renderer needs.
type Predictor interface {
	CreatePrediction(ctx context.Context, input any) (*domain.Prediction, error)
	GetPrediction(ctx context.Context, id string) (*domain.Prediction, error)
	GetPredictionURL(ctx context.Context, rawURL string) (*domain.Prediction, error)
	Wait(ctx context.Context, p *domain.Prediction, opts replicate.WaitOptions) (*replicate.WaitResult, error)
	ModelRef() string
}

// RenderRequest asks for one poster edit. A non-empty Prompt replaces the
// instruction built from Slogan, Visual and the reference entry.
type RenderRequest struct {
	Slogan    string
	Visual    string
	Prompt    string
	Reference domain.Reference
}

// RenderResult is one finished (or submitted) render.
type RenderResult struct {
	Reference  domain.Reference   `json:"reference"`
	Prompt     string             `json:"prompt"`
	Prediction *domain.Prediction `json:"prediction"`
	State      string             `json:"state"`
	Images     []string           `json:"images"`
	Elapsed    time.Duration      `json:"-"`
}

// BatchResult groups the renders of one batch in reference order.
type BatchResult struct {
	ModelRef string          `json:"model_ref"`
	Count    int             `json:"count"`
	Items    []*RenderResult `json:"items"`
}

// PollResult is a single status read of a prediction.
type PollResult struct {
	Prediction *domain.Prediction `json:"prediction"`
	State      string             `json:"state"`
	Images     []string           `json:"images"`
}
