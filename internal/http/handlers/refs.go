package handlers

import (
	"net/http"
)

type selectRefResponse struct {
	URL      string `json:"url"`
	Filename string `json:"filename"`
}

// SelectRef returns one random reference image.
func (a *App) SelectRef(w http.ResponseWriter, r *http.Request) {
	ref, err := a.reference(r, "")
	if err != nil {
		a.fail(w, r, "select_ref", err)
		return
	}
	a.json(w, http.StatusOK, selectRefResponse{URL: ref.URL, Filename: ref.File})
}

// Refs lists the collection and flags files missing from the catalog.
func (a *App) Refs(w http.ResponseWriter, r *http.Request) {
	if a.Library == nil {
		a.error(w, http.StatusInternalServerError, "not_configured", "reference library not configured")
		return
	}
	listing, err := a.Library.Listing(r.Context(), a.baseURL(r))
	if err != nil {
		a.fail(w, r, "refs", err)
		return
	}
	a.json(w, http.StatusOK, listing)
}

// DebugRefs reports how the catalog file looks on disk.
func (a *App) DebugRefs(w http.ResponseWriter, r *http.Request) {
	if a.Library == nil {
		a.error(w, http.StatusInternalServerError, "not_configured", "reference library not configured")
		return
	}
	a.json(w, http.StatusOK, a.Library.Debug(a.baseURL(r)))
}
