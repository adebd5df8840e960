package imagegen

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/rs/zerolog"

	"posterforge/internal/domain"
	"posterforge/internal/infra"
	"posterforge/internal/providers/openai"
)

var plannerRules = []string{
	"You are a creative director and Flux-Kontext-Max prompt engineer.",
	"Input: a finance-themed slogan and a reference poster image URL.",
	"Output JSON with keys: prompt, layout, visual_summary.",
	"Rules:",
	"- Start prompt with: replace text with '...'.",
	"- Mirror reference headline casing (UPPERCASE vs lowercase).",
	"- If headline is warped/spiked, mention that (e.g., 'warp the headline').",
	"- Decide layout: single_top, stacked_top, or split_top_bottom based on the reference and readability.",
	"- Include one symbolic 'metal' motif (snake, sword, spikes, lightning, fire) AND one finance motif (calculator, spreadsheet, receipts, coins, bills, invoices, ledgers, computers).",
	"- Keep within sensitivity boundary level 2 (no gore/explicit/hate).",
	"- Return strictly JSON, no extra commentary.",
}

type planPayload struct {
	Prompt        string `json:"prompt"`
	Layout        string `json:"layout"`
	VisualSummary string `json:"visual_summary"`
}

// Planner asks a vision model to write the edit prompt for a reference poster.
type Planner struct {
	client Chatter
	logger *infra.Logger
}

// NewPlanner returns a Planner using client. A nil logger discards output.
func NewPlanner(client Chatter, logger *infra.Logger) *Planner {
	if logger == nil {
		discard := zerolog.New(io.Discard)
		logger = &discard
	}
	return &Planner{client: client, logger: logger}
}

// Plan inspects the reference at refURL and returns a prompt plan for slogan.
// Unknown layouts are coerced to domain.LayoutSingleTop.
func (p *Planner) Plan(ctx context.Context, slogan, refURL string) (*domain.PromptPlan, error) {
	slogan = strings.TrimSpace(slogan)
	refURL = strings.TrimSpace(refURL)
	if slogan == "" || refURL == "" {
		return nil, fmt.Errorf("%w: slogan and ref_url are required", domain.ErrInvalidInput)
	}
	if u, err := url.Parse(refURL); err != nil || (u.Scheme != "https" && u.Scheme != "http") || u.Host == "" {
		return nil, fmt.Errorf("%w: ref_url must be an absolute http(s) url", domain.ErrInvalidInput)
	}
	if p.client == nil {
		return nil, fmt.Errorf("%w: language model client", domain.ErrNotConfigured)
	}

	reply, err := p.client.Chat(ctx, openai.ChatRequest{
		Vision:      true,
		Temperature: 0.6,
		JSON:        true,
		Messages: []openai.Message{
			{Role: "system", Content: strings.Join(plannerRules, "\n")},
			{Role: "user", Parts: []openai.ContentPart{
				openai.TextPart("Slogan: " + slogan + "\nReference (analyse headline casing, line count, warp, composition). Follow rules and output JSON."),
				openai.ImagePart(refURL),
			}},
		},
	})
	if err != nil {
		return nil, openai.DomainError(err)
	}
	payload, err := openai.DecodePayload[planPayload](reply)
	if err != nil {
		p.logger.Warn().Err(err).Msg("planner: unparseable model reply")
		return nil, fmt.Errorf("%w: planner reply: %v", domain.ErrUpstream, err)
	}
	plan := &domain.PromptPlan{
		Prompt:        strings.TrimSpace(payload.Prompt),
		Layout:        domain.NormalizeLayout(strings.TrimSpace(payload.Layout)),
		VisualSummary: strings.TrimSpace(payload.VisualSummary),
	}
	if plan.Prompt == "" {
		return nil, fmt.Errorf("%w: planner returned an empty prompt", domain.ErrUpstream)
	}
	return plan, nil
}
