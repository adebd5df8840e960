package handlers

import (
	"net/http"

	"posterforge/internal/domain"
)

type slogansRequest struct {
	Love string `json:"love"`
}

type slogansResponse struct {
	Options []domain.SloganOption `json:"options"`
}

func (a *App) Slogans(w http.ResponseWriter, r *http.Request) {
	var req slogansRequest
	if !a.decode(w, r, &req) {
		return
	}
	if a.Generator == nil {
		a.error(w, http.StatusInternalServerError, "not_configured", "slogan generator not configured")
		return
	}
	opts, err := a.Generator.Generate(r.Context(), req.Love)
	if err != nil {
		a.fail(w, r, "slogans", err)
		return
	}
	a.json(w, http.StatusOK, slogansResponse{Options: opts})
}
