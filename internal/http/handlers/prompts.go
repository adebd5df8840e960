package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"posterforge/internal/domain"
	"posterforge/internal/imagegen"
)

type promptRequest struct {
	Slogan string `json:"slogan"`
	Visual string `json:"visual"`
	File   string `json:"file"`
}

type promptResponse struct {
	Prompt    string           `json:"prompt"`
	Reference domain.Reference `json:"reference"`
}

// Prompt builds the deterministic edit instruction for a slogan and motif.
// Without a file a random reference is chosen.
func (a *App) Prompt(w http.ResponseWriter, r *http.Request) {
	var req promptRequest
	if !a.decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Slogan) == "" && strings.TrimSpace(req.Visual) == "" {
		a.fail(w, r, "prompt", fmt.Errorf("%w: slogan or visual is required", domain.ErrInvalidInput))
		return
	}
	ref, err := a.reference(r, req.File)
	if err != nil {
		a.fail(w, r, "prompt", err)
		return
	}
	a.json(w, http.StatusOK, promptResponse{
		Prompt:    imagegen.BuildInstruction(req.Slogan, req.Visual, ref.ReferenceEntry),
		Reference: ref,
	})
}

type buildPromptRequest struct {
	Slogan string `json:"slogan"`
	RefURL string `json:"refUrl"`
}

// BuildPrompt asks the vision model to plan an edit against a reference.
func (a *App) BuildPrompt(w http.ResponseWriter, r *http.Request) {
	var req buildPromptRequest
	if !a.decode(w, r, &req) {
		return
	}
	if a.Planner == nil {
		a.error(w, http.StatusInternalServerError, "not_configured", "prompt planner not configured")
		return
	}
	plan, err := a.Planner.Plan(r.Context(), req.Slogan, req.RefURL)
	if err != nil {
		a.fail(w, r, "build_prompt", err)
		return
	}
	a.json(w, http.StatusOK, plan)
}

// reference resolves file, or picks one at random when file is empty.
func (a *App) reference(r *http.Request, file string) (domain.Reference, error) {
	base := a.baseURL(r)
	if file = strings.TrimSpace(file); file != "" {
		if a.Library == nil {
			return domain.Reference{}, fmt.Errorf("%w: reference library", domain.ErrNotConfigured)
		}
		return a.Library.Resolve(base, file)
	}
	if a.Selector == nil {
		return domain.Reference{}, fmt.Errorf("%w: reference selector", domain.ErrNotConfigured)
	}
	return a.Selector.Pick(r.Context(), base)
}
