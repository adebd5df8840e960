package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"posterforge/internal/domain"
	"posterforge/internal/imagegen"
	"posterforge/internal/infra"
	"posterforge/internal/refs"

	"github.com/rs/zerolog"
)

const maxBodyBytes = 1 << 20

// SloganGenerator produces slogan options for a phrase.
type SloganGenerator interface {
	Generate(ctx context.Context, love string) ([]domain.SloganOption, error)
}

// PromptPlanner plans an edit prompt by looking at a reference image.
type PromptPlanner interface {
	Plan(ctx context.Context, slogan, refURL string) (*domain.PromptPlan, error)
}

// ImageRenderer runs renders against the image model.
type ImageRenderer interface {
	Submit(ctx context.Context, req imagegen.RenderRequest) (*imagegen.RenderResult, error)
	Render(ctx context.Context, req imagegen.RenderRequest) (*imagegen.RenderResult, error)
	RenderBatch(ctx context.Context, slogan, visual string, refs []domain.Reference) (*imagegen.BatchResult, error)
	Poll(ctx context.Context, id, pollURL string) (*imagegen.PollResult, error)
	ModelRef() string
}

// ReferenceSelector picks reference images.
type ReferenceSelector interface {
	Pick(ctx context.Context, base string) (domain.Reference, error)
	Batch(ctx context.Context, base string, req refs.BatchRequest) ([]domain.Reference, error)
}

// Pinger checks that the language model answers.
type Pinger interface {
	Ping(ctx context.Context) error
}

type App struct {
	Generator     SloganGenerator
	Planner       PromptPlanner
	Renderer      ImageRenderer
	Selector      ReferenceSelector
	Library       *refs.Library
	LLM           Pinger
	PublicBaseURL string
	Logger        *infra.Logger
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, code int, errCode, message string) {
	a.json(w, code, map[string]string{"error": message, "code": errCode})
}

// decode reads a JSON body into v. An empty body leaves v untouched.
func (a *App) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil && !errors.Is(err, io.EOF) {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return false
	}
	return true
}

// fail maps domain errors to a status and code and writes them.
func (a *App) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	status, code := statusForError(err)
	ev := a.log(r).Warn()
	if status >= http.StatusInternalServerError {
		ev = a.log(r).Error()
	}
	ev.Err(err).Str("op", op).Int("status", status).Msg("request failed")

	message := err.Error()
	if code == "internal" {
		message = "internal error"
	}
	a.error(w, status, code, message)
}

func statusForError(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest, "invalid_input"
	case errors.Is(err, domain.ErrNoReferences):
		return http.StatusNotFound, "no_references"
	case errors.Is(err, domain.ErrNotConfigured):
		return http.StatusInternalServerError, "not_configured"
	case errors.Is(err, domain.ErrUpstreamTimeout), errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "upstream_timeout"
	case errors.Is(err, domain.ErrPredictionFailed):
		return http.StatusBadGateway, "prediction_failed"
	case errors.Is(err, domain.ErrNoOutput):
		return http.StatusBadGateway, "no_output"
	case errors.Is(err, domain.ErrInsufficientOptions):
		return http.StatusBadGateway, "insufficient_options"
	case errors.Is(err, domain.ErrUpstream):
		return http.StatusBadGateway, "upstream_failed"
	case errors.Is(err, context.Canceled):
		return 499, "client_closed_request"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

func (a *App) log(r *http.Request) *zerolog.Logger {
	if l := zerolog.Ctx(r.Context()); l.GetLevel() != zerolog.Disabled {
		return l
	}
	if a.Logger != nil {
		return a.Logger
	}
	l := zerolog.Nop()
	return &l
}

func (a *App) baseURL(r *http.Request) string {
	return refs.BaseURL(a.PublicBaseURL, r)
}
