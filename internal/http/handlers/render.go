package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"posterforge/internal/domain"
	"posterforge/internal/imagegen"
	"posterforge/internal/refs"
)

type renderRequest struct {
	Slogan string `json:"slogan"`
	Visual string `json:"visual"`
	Prompt string `json:"prompt"`
	File   string `json:"file"`
	// Wait defaults to true; false returns the created prediction at once.
	Wait *bool `json:"wait"`
}

type renderResponse struct {
	ModelRef string `json:"model_ref"`
	*imagegen.RenderResult
}

// Render edits one reference image with a slogan and motif.
func (a *App) Render(w http.ResponseWriter, r *http.Request) {
	var req renderRequest
	if !a.decode(w, r, &req) {
		return
	}
	if a.Renderer == nil {
		a.error(w, http.StatusInternalServerError, "not_configured", "image renderer not configured")
		return
	}
	if strings.TrimSpace(req.Prompt) == "" && (strings.TrimSpace(req.Slogan) == "" || strings.TrimSpace(req.Visual) == "") {
		a.fail(w, r, "render", fmt.Errorf("%w: slogan and visual (or prompt) are required", domain.ErrInvalidInput))
		return
	}
	ref, err := a.reference(r, req.File)
	if err != nil {
		a.fail(w, r, "render", err)
		return
	}
	renderReq := imagegen.RenderRequest{Slogan: req.Slogan, Visual: req.Visual, Prompt: req.Prompt, Reference: ref}

	if req.Wait != nil && !*req.Wait {
		res, err := a.Renderer.Submit(r.Context(), renderReq)
		if err != nil {
			a.fail(w, r, "render_submit", err)
			return
		}
		a.json(w, http.StatusAccepted, renderResponse{ModelRef: a.Renderer.ModelRef(), RenderResult: res})
		return
	}

	res, err := a.Renderer.Render(r.Context(), renderReq)
	if err != nil {
		if res == nil {
			a.fail(w, r, "render", err)
			return
		}
		status, code := statusForError(err)
		a.log(r).Error().Err(err).Str("op", "render").Int("status", status).Msg("request failed")
		a.json(w, status, map[string]any{"error": err.Error(), "code": code, "result": res})
		return
	}
	a.json(w, http.StatusOK, renderResponse{ModelRef: a.Renderer.ModelRef(), RenderResult: res})
}

type renderBatchRequest struct {
	Slogan       string   `json:"slogan"`
	Visual       string   `json:"visual"`
	Count        int      `json:"count"`
	Files        []string `json:"files"`
	ExcludeFiles []string `json:"exclude_files"`
}

// RenderBatch renders one slogan onto several randomly chosen references.
func (a *App) RenderBatch(w http.ResponseWriter, r *http.Request) {
	var req renderBatchRequest
	if !a.decode(w, r, &req) {
		return
	}
	if a.Renderer == nil || a.Selector == nil {
		a.error(w, http.StatusInternalServerError, "not_configured", "image renderer not configured")
		return
	}
	if strings.TrimSpace(req.Slogan) == "" || strings.TrimSpace(req.Visual) == "" {
		a.fail(w, r, "render_batch", fmt.Errorf("%w: slogan and visual are required", domain.ErrInvalidInput))
		return
	}
	selected, err := a.Selector.Batch(r.Context(), a.baseURL(r), refs.BatchRequest{
		Count:   req.Count,
		Files:   req.Files,
		Exclude: req.ExcludeFiles,
	})
	if err != nil {
		a.fail(w, r, "render_batch", err)
		return
	}
	res, err := a.Renderer.RenderBatch(r.Context(), req.Slogan, req.Visual, selected)
	if err != nil {
		a.fail(w, r, "render_batch", err)
		return
	}
	a.json(w, http.StatusOK, res)
}
