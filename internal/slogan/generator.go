// Package slogan asks the language model for slogan options and turns its
// reply into exactly three validated options with normalized motifs.
package slogan

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"

	"posterforge/internal/domain"
	"posterforge/internal/infra"
	"posterforge/internal/metrics"
	"posterforge/internal/motif"
	"posterforge/internal/providers/openai"
)

// RepairBudget is the number of repair calls allowed per request.
const RepairBudget = 1

// Chatter is the subset of the chat client used here.
type Chatter interface {
	Chat(ctx context.Context, req openai.ChatRequest) (string, error)
}

// Options configures a Generator.
type Options struct {
	Client      Chatter
	Normalizer  *motif.Normalizer
	Temperature float64
	Logger      *infra.Logger
}

// Generator produces slogan options for a user phrase.
type Generator struct {
	client      Chatter
	normalizer  *motif.Normalizer
	temperature float64
	logger      *infra.Logger
}

// NewGenerator wires a Generator with defaults filled in.
func NewGenerator(opts Options) *Generator {
	n := opts.Normalizer
	if n == nil {
		n = motif.New()
	}
	temp := opts.Temperature
	if temp <= 0 {
		temp = 0.8
	}
	logger := opts.Logger
	if logger == nil {
		discard := zerolog.New(io.Discard)
		logger = &discard
	}
	return &Generator{client: opts.Client, normalizer: n, temperature: temp, logger: logger}
}

// Generate returns exactly OptionCount options for love. The visual of each
// option is normalized; the model's wording is kept in RawVisual.
func (g *Generator) Generate(ctx context.Context, love string) ([]domain.SloganOption, error) {
	love = strings.TrimSpace(love)
	if love == "" {
		return nil, fmt.Errorf("%w: love is required", domain.ErrInvalidInput)
	}
	if g.client == nil {
		return nil, fmt.Errorf("%w: language model client", domain.ErrNotConfigured)
	}

	reply, err := g.client.Chat(ctx, openai.ChatRequest{
		Temperature: g.temperature,
		Messages: []openai.Message{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: BuildPrompt(love)},
		},
	})
	if err != nil {
		return nil, openai.DomainError(err)
	}
	res := Parse(reply)
	metrics.SloganParseTotal.WithLabelValues("initial", res.Status.String()).Inc()

	for attempt := 0; res.Status == StatusNeedsRepair && attempt < RepairBudget; attempt++ {
		g.logger.Debug().
			Str("reason", res.Reason).
			Int("valid", len(res.Options)).
			Msg("slogan: repairing model reply")
		repaired, err := g.client.Chat(ctx, openai.ChatRequest{
			Temperature: 0,
			Messages: []openai.Message{
				{Role: "system", Content: systemPrompt},
				{Role: "user", Content: buildRepairPrompt(res.Raw)},
			},
		})
		if err != nil {
			return nil, openai.DomainError(err)
		}
		next := Parse(repaired)
		metrics.SloganParseTotal.WithLabelValues("repair", next.Status.String()).Inc()
		if next.Status == StatusNeedsRepair {
			next.Options = filterOptions(append(res.Options, next.Options...))
			if len(next.Options) >= OptionCount {
				next.Status = StatusOK
				next.Options = next.Options[:OptionCount]
			}
		}
		if next.Status != StatusFailed {
			res = next
		}
	}

	if res.Status != StatusOK {
		g.logger.Warn().
			Str("status", res.Status.String()).
			Str("reason", res.Reason).
			Int("valid", len(res.Options)).
			Msg("slogan: giving up on model reply")
		return nil, fmt.Errorf("%w: got %d of %d", domain.ErrInsufficientOptions, len(res.Options), OptionCount)
	}

	out := make([]domain.SloganOption, len(res.Options))
	for i, o := range res.Options {
		out[i] = domain.SloganOption{
			Slogan:    o.Slogan,
			Visual:    g.normalizer.Normalize(o.Visual),
			RawVisual: o.Visual,
		}
	}
	return out, nil
}
