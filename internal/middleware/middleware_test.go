package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

func TestRequestIDAndLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	var seenID string
	r := chi.NewRouter()
	r.Use(RequestID, Logger(logger))
	r.Get("/api/refs/{name}", func(w http.ResponseWriter, r *http.Request) {
		seenID = RequestIDFromContext(r.Context())
		zerolog.Ctx(r.Context()).Info().Msg("inside handler")
		_, _ = w.Write([]byte("ok"))
	})

	req := httptest.NewRequest(http.MethodGet, "/api/refs/a.png", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if seenID != "abc-123" {
		t.Fatalf("request id = %q, want abc-123", seenID)
	}
	if got := rec.Header().Get("X-Request-ID"); got != "abc-123" {
		t.Fatalf("response header = %q", got)
	}
	out := buf.String()
	for _, expect := range []string{`"request_id":"abc-123"`, `"message":"inside handler"`, `"route":"/api/refs/{name}"`, `"status":200`, `"bytes":2`} {
		if !strings.Contains(out, expect) {
			t.Fatalf("log missing %s: %s", expect, out)
		}
	}
}

func TestRequestIDGeneratesWhenMissing(t *testing.T) {
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", strings.Repeat("x", 500))
	h.ServeHTTP(rec, req)
	if got := rec.Header().Get("X-Request-ID"); len(got) != 36 {
		t.Fatalf("generated id = %q", got)
	}
}

func TestCORS(t *testing.T) {
	h := CORS([]string{"https://app.example.com"})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	}))

	req := httptest.NewRequest(http.MethodOptions, "/api/render", nil)
	req.Header.Set("Origin", "https://app.example.com")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("preflight status = %d", rec.Code)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "https://app.example.com" {
		t.Fatalf("allow origin = %q", rec.Header().Get("Access-Control-Allow-Origin"))
	}

	req = httptest.NewRequest(http.MethodPost, "/api/render", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusAccepted || rec.Header().Get("Access-Control-Allow-Origin") != "" {
		t.Fatalf("unexpected cors for unlisted origin: %d %q", rec.Code, rec.Header().Get("Access-Control-Allow-Origin"))
	}

	wild := CORS([]string{"*"})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://any.example.com")
	rec = httptest.NewRecorder()
	wild.ServeHTTP(rec, req)
	if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Fatalf("wildcard allow origin = %q", rec.Header().Get("Access-Control-Allow-Origin"))
	}
}
