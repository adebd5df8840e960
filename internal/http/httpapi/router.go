package httpapi

import (
	"net/http"
	"time"

	"posterforge/internal/http/handlers"
	"posterforge/internal/infra"
	mw "posterforge/internal/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Options configures the cross-cutting middleware.
type Options struct {
	Logger          infra.Logger
	CORSOrigins     []string
	RateLimitPerMin int
}

func NewRouter(app *handlers.App, opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.RealIP,
		mw.RequestID,
		mw.Logger(opts.Logger),
		middleware.Recoverer,
		mw.Metrics,
		mw.CORS(opts.CORSOrigins),
	)

	r.Get("/v1/healthz", app.Health)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", app.LLMHealth)
		r.Get("/selectRef", app.SelectRef)
		r.Get("/refs", app.Refs)
		r.Get("/debug_refs", app.DebugRefs)
		r.Post("/poll", app.Poll)

		// Routes that spend provider credits.
		r.Group(func(r chi.Router) {
			r.Use(mw.RateLimit(opts.RateLimitPerMin, time.Minute))
			r.Post("/slogans", app.Slogans)
			r.Post("/prompt", app.Prompt)
			r.Post("/buildPrompt", app.BuildPrompt)
			r.Post("/render", app.Render)
			r.Post("/render/batch", app.RenderBatch)
		})
	})

	return r
}
