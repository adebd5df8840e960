package handlers

import "net/http"

type pollRequest struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// Poll reads the current state of a prediction by id or status URL.
func (a *App) Poll(w http.ResponseWriter, r *http.Request) {
	var req pollRequest
	if !a.decode(w, r, &req) {
		return
	}
	if a.Renderer == nil {
		a.error(w, http.StatusInternalServerError, "not_configured", "image renderer not configured")
		return
	}
	res, err := a.Renderer.Poll(r.Context(), req.ID, req.URL)
	if err != nil {
		a.fail(w, r, "poll", err)
		return
	}
	a.json(w, http.StatusOK, res)
}
