package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"posterforge/internal/http/handlers"
	httpapi "posterforge/internal/http/httpapi"
	"posterforge/internal/imagegen"
	"posterforge/internal/infra"
	"posterforge/internal/motif"
	"posterforge/internal/providers/openai"
	"posterforge/internal/providers/replicate"
	"posterforge/internal/refs"
	"posterforge/internal/slogan"
)

func main() {
	// .env is optional
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	catalog, err := refs.LoadCatalog(cfg.RefsCatalogPath)
	if err != nil {
		logger.Fatal().Err(err).Str("path", cfg.RefsCatalogPath).Msg("failed to load reference catalog")
	}
	logger.Info().
		Str("source", catalog.Source()).
		Int("entries", catalog.Len()).
		Str("refs_dir", cfg.RefsDir).
		Msg("reference catalog loaded")
	library := refs.NewLibrary(cfg.RefsDir, catalog)

	llm := openai.NewClient(openai.Options{
		APIKey:       cfg.OpenAIAPIKey,
		Project:      cfg.OpenAIProjectID,
		Organization: cfg.OpenAIOrg,
		BaseURL:      cfg.OpenAIBaseURL,
		Model:        cfg.OpenAIModel,
		VisionModel:  cfg.OpenAIVisionModel,
		Logger:       &logger,
		OnWarning: func(reason, detail string) {
			logger.Warn().Str("reason", reason).Str("detail", detail).Msg("openai: model override")
		},
	})
	if !llm.HasCredentials() {
		logger.Warn().Msg("OPENAI_API_KEY not set; slogan and planner routes will fail")
	}

	images := replicate.NewClient(replicate.Options{
		Token:   cfg.ReplicateAPIToken,
		BaseURL: cfg.ReplicateBaseURL,
		Model:   cfg.ReplicateModel,
		Version: cfg.ReplicateModelVersion,
		Logger:  &logger,
	})
	if !images.HasCredentials() {
		logger.Warn().Msg("REPLICATE_API_TOKEN not set; render routes will fail")
	}

	app := &handlers.App{
		Generator: slogan.NewGenerator(slogan.Options{
			Client:     llm,
			Normalizer: motif.New(),
			Logger:     &logger,
		}),
		Planner: imagegen.NewPlanner(llm, &logger),
		Renderer: imagegen.NewRenderer(imagegen.RendererOptions{
			Client: images,
			Wait: replicate.WaitOptions{
				Interval:        cfg.RenderPollInterval,
				Timeout:         cfg.RenderTimeout,
				CancelOnTimeout: true,
			},
			SubmitInterval: cfg.RenderSubmitInterval,
			Logger:         &logger,
		}),
		Selector:      refs.NewSelector(library, refs.WithMaxBatch(cfg.RenderBatchMax)),
		Library:       library,
		LLM:           llm,
		PublicBaseURL: cfg.PublicBaseURL,
		Logger:        &logger,
	}

	router := httpapi.NewRouter(app, httpapi.Options{
		Logger:          logger,
		CORSOrigins:     cfg.CORSOrigins,
		RateLimitPerMin: cfg.RateLimitPerMin,
	})
	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Str("model", images.ModelRef()).Msgf("API listening on :%s", cfg.Port)
		if err := server.Start(); err != nil {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	// In-flight renders may still be polling.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.RenderTimeout+10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}
