package imagegen

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"posterforge/internal/domain"
	"posterforge/internal/infra"
	"posterforge/internal/metrics"
	"posterforge/internal/providers/replicate"
)

// Fixed render parameters.
const (
	AspectRatio      = "match_input_image"
	OutputFormat     = "jpg"
	SafetyTolerance  = 2
	PromptUpsampling = false
)

const defaultSubmitInterval = 500 * time.Millisecond

// RendererOptions configures a Renderer.
type RendererOptions struct {
	Client Predictor
	Wait   replicate.WaitOptions
	// SubmitInterval paces prediction creation inside a batch.
	SubmitInterval time.Duration
	Logger         *infra.Logger
}

// Renderer turns render requests into finished predictions.
type Renderer struct {
	client         Predictor
	wait           replicate.WaitOptions
	submitInterval time.Duration
	logger         *infra.Logger
}

// NewRenderer wires a Renderer with defaults filled in.
func NewRenderer(opts RendererOptions) *Renderer {
	logger := opts.Logger
	if logger == nil {
		discard := zerolog.New(io.Discard)
		logger = &discard
	}
	interval := opts.SubmitInterval
	if interval <= 0 {
		interval = defaultSubmitInterval
	}
	return &Renderer{client: opts.Client, wait: opts.Wait, submitInterval: interval, logger: logger}
}

// ModelRef names the model renders run against.
func (r *Renderer) ModelRef() string {
	if r.client == nil {
		return replicate.DefaultModel
	}
	return r.client.ModelRef()
}

// Input builds the wire input for req along with the prompt it carries.
func Input(req RenderRequest) (replicate.FluxKontextInput, string) {
	prompt := strings.TrimSpace(req.Prompt)
	if prompt == "" {
		prompt = BuildInstruction(req.Slogan, req.Visual, req.Reference.ReferenceEntry)
	}
	return replicate.FluxKontextInput{
		Prompt:           prompt,
		InputImage:       req.Reference.URL,
		AspectRatio:      AspectRatio,
		OutputFormat:     OutputFormat,
		SafetyTolerance:  SafetyTolerance,
		PromptUpsampling: PromptUpsampling,
	}, prompt
}

func (r *Renderer) validate(req RenderRequest) error {
	if strings.TrimSpace(req.Prompt) == "" && (strings.TrimSpace(req.Slogan) == "" || strings.TrimSpace(req.Visual) == "") {
		return fmt.Errorf("%w: slogan and visual (or prompt) are required", domain.ErrInvalidInput)
	}
	if strings.TrimSpace(req.Reference.URL) == "" {
		return fmt.Errorf("%w: reference image is required", domain.ErrInvalidInput)
	}
	if r.client == nil {
		return fmt.Errorf("%w: image client", domain.ErrNotConfigured)
	}
	return nil
}

// Submit creates the prediction and returns without waiting.
func (r *Renderer) Submit(ctx context.Context, req RenderRequest) (*RenderResult, error) {
	if err := r.validate(req); err != nil {
		return nil, err
	}
	input, prompt := Input(req)
	p, err := r.client.CreatePrediction(ctx, input)
	if err != nil {
		metrics.RendersTotal.WithLabelValues("async", "submit_error").Inc()
		return nil, replicate.DomainError(err)
	}
	metrics.RendersTotal.WithLabelValues("async", "submitted").Inc()
	return &RenderResult{
		Reference:  req.Reference,
		Prompt:     prompt,
		Prediction: p,
		State:      replicate.StateOf(p.Status).String(),
		Images:     []string{},
	}, nil
}

// Render creates the prediction and blocks until it settles. On failure the
// partial result is returned with the error.
func (r *Renderer) Render(ctx context.Context, req RenderRequest) (*RenderResult, error) {
	return r.render(ctx, req, "single")
}

func (r *Renderer) render(ctx context.Context, req RenderRequest, mode string) (*RenderResult, error) {
	if err := r.validate(req); err != nil {
		return nil, err
	}
	input, prompt := Input(req)
	p, err := r.client.CreatePrediction(ctx, input)
	if err != nil {
		metrics.RendersTotal.WithLabelValues(mode, "submit_error").Inc()
		return nil, replicate.DomainError(err)
	}
	r.logger.Info().
		Str("prediction_id", p.ID).
		Str("reference", req.Reference.File).
		Msg("render: prediction submitted")

	res := &RenderResult{Reference: req.Reference, Prompt: prompt, Prediction: p, Images: []string{}}
	waited, err := r.client.Wait(ctx, p, r.wait)
	if waited != nil {
		res.Prediction = waited.Prediction
		res.State = waited.State.String()
		res.Elapsed = waited.Elapsed
		if waited.Images != nil {
			res.Images = waited.Images
		}
	}
	if res.State == "" {
		res.State = replicate.StateOf(res.Prediction.Status).String()
	}
	metrics.RendersTotal.WithLabelValues(mode, res.State).Inc()
	if err != nil {
		return res, replicate.DomainError(err)
	}
	return res, nil
}

// RenderBatch renders slogan and visual onto every reference concurrently.
// Submissions are paced by a token bucket; the first failure cancels the
// remaining renders and fails the batch.
func (r *Renderer) RenderBatch(ctx context.Context, slogan, visual string, refs []domain.Reference) (*BatchResult, error) {
	if len(refs) == 0 {
		return nil, fmt.Errorf("%w: no references selected", domain.ErrNoReferences)
	}
	items := make([]*RenderResult, len(refs))
	eg, egCtx := errgroup.WithContext(ctx)
	limiter := rate.NewLimiter(rate.Every(r.submitInterval), 2)

	for i, ref := range refs {
		i, ref := i, ref
		eg.Go(func() error {
			if err := limiter.Wait(egCtx); err != nil {
				return err
			}
			res, err := r.render(egCtx, RenderRequest{Slogan: slogan, Visual: visual, Reference: ref}, "batch")
			if err != nil {
				return fmt.Errorf("reference %s: %w", ref.File, err)
			}
			items[i] = res
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return &BatchResult{ModelRef: r.ModelRef(), Count: len(items), Items: items}, nil
}

// Poll reads a prediction once, by advertised URL when given, else by id.
func (r *Renderer) Poll(ctx context.Context, id, pollURL string) (*PollResult, error) {
	id, pollURL = strings.TrimSpace(id), strings.TrimSpace(pollURL)
	if id == "" && pollURL == "" {
		return nil, fmt.Errorf("%w: id or url is required", domain.ErrInvalidInput)
	}
	if r.client == nil {
		return nil, fmt.Errorf("%w: image client", domain.ErrNotConfigured)
	}
	var (
		p   *domain.Prediction
		err error
	)
	if pollURL != "" {
		p, err = r.client.GetPredictionURL(ctx, pollURL)
	} else {
		p, err = r.client.GetPrediction(ctx, id)
	}
	if err != nil {
		return nil, replicate.DomainError(err)
	}
	out := &PollResult{Prediction: p, State: replicate.StateOf(p.Status).String(), Images: []string{}}
	if p.Status == domain.PredictionSucceeded {
		if imgs := replicate.NormalizeOutput(p.Output); len(imgs) > 0 {
			out.Images = imgs
		}
	}
	return out, nil
}
