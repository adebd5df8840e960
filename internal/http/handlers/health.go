package handlers

import (
	"context"
	"net/http"
	"time"
)

const pingTimeout = 15 * time.Second

// Health is a liveness probe and never calls upstream.
func (a *App) Health(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, map[string]string{"status": "ok"})
}

// LLMHealth pings the language model.
func (a *App) LLMHealth(w http.ResponseWriter, r *http.Request) {
	if a.LLM == nil {
		a.error(w, http.StatusInternalServerError, "openai_failed", "language model client not configured")
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), pingTimeout)
	defer cancel()
	if err := a.LLM.Ping(ctx); err != nil {
		a.log(r).Error().Err(err).Msg("health: llm ping failed")
		a.error(w, http.StatusInternalServerError, "openai_failed", err.Error())
		return
	}
	a.json(w, http.StatusOK, map[string]bool{"ok": true})
}
