package infra

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config represents application configuration loaded from environment variables.
// Provider credentials are optional at boot; requests that need a missing
// credential fail individually.
type Config struct {
	AppEnv        string
	Port          string
	PublicBaseURL string

	RefsDir         string
	RefsCatalogPath string

	OpenAIAPIKey      string
	OpenAIProjectID   string
	OpenAIOrg         string
	OpenAIBaseURL     string
	OpenAIModel       string
	OpenAIVisionModel string

	ReplicateAPIToken     string
	ReplicateBaseURL      string
	ReplicateModel        string
	ReplicateModelVersion string

	RenderPollInterval   time.Duration
	RenderTimeout        time.Duration
	RenderBatchMax       int
	RenderSubmitInterval time.Duration

	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
	RateLimitPerMin  int
	CORSOrigins      []string
}

// LoadConfig loads configuration from environment variables and applies defaults where needed.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:        getEnv("APP_ENV", "development"),
		Port:          getEnv("PORT", "8080"),
		PublicBaseURL: strings.TrimRight(os.Getenv("PUBLIC_BASE_URL"), "/"),

		RefsDir:         getEnv("REFS_DIR", "public/refs"),
		RefsCatalogPath: getEnv("REFS_CATALOG_PATH", "public/refs-map.json"),

		OpenAIAPIKey:      os.Getenv("OPENAI_API_KEY"),
		OpenAIProjectID:   os.Getenv("OPENAI_PROJECT_ID"),
		OpenAIOrg:         os.Getenv("OPENAI_ORG"),
		OpenAIBaseURL:     getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		OpenAIModel:       getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		OpenAIVisionModel: getEnv("OPENAI_VISION_MODEL", "gpt-4o"),

		ReplicateAPIToken:     os.Getenv("REPLICATE_API_TOKEN"),
		ReplicateBaseURL:      getEnv("REPLICATE_BASE_URL", "https://api.replicate.com/v1"),
		ReplicateModel:        getEnv("REPLICATE_MODEL", "black-forest-labs/flux-kontext-max"),
		ReplicateModelVersion: os.Getenv("REPLICATE_MODEL_VERSION"),

		RenderPollInterval:   time.Millisecond * time.Duration(getEnvInt("RENDER_POLL_INTERVAL_MS", 1200)),
		RenderTimeout:        time.Second * time.Duration(getEnvInt("RENDER_TIMEOUT_SECONDS", 120)),
		RenderBatchMax:       getEnvInt("RENDER_BATCH_MAX", 4),
		RenderSubmitInterval: time.Millisecond * time.Duration(getEnvInt("RENDER_SUBMIT_INTERVAL_MS", 500)),

		HTTPReadTimeout:  time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout: time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 150)),
		HTTPIdleTimeout:  time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
		RateLimitPerMin:  getEnvInt("RATE_LIMIT_PER_MINUTE", 30),
		CORSOrigins:      splitList(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000")),
	}

	if cfg.PublicBaseURL != "" {
		u, err := url.Parse(cfg.PublicBaseURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return nil, fmt.Errorf("PUBLIC_BASE_URL must be an absolute http(s) url, got %q", cfg.PublicBaseURL)
		}
	}
	if cfg.RenderPollInterval <= 0 {
		return nil, fmt.Errorf("RENDER_POLL_INTERVAL_MS must be positive")
	}
	if cfg.RenderTimeout <= 0 {
		return nil, fmt.Errorf("RENDER_TIMEOUT_SECONDS must be positive")
	}
	if cfg.RenderBatchMax < 1 || cfg.RenderBatchMax > 4 {
		return nil, fmt.Errorf("RENDER_BATCH_MAX must be between 1 and 4, got %d", cfg.RenderBatchMax)
	}
	if cfg.HTTPWriteTimeout > 0 && cfg.HTTPWriteTimeout <= cfg.RenderTimeout {
		return nil, fmt.Errorf("HTTP_WRITE_TIMEOUT_SECONDS (%s) must exceed RENDER_TIMEOUT_SECONDS (%s)", cfg.HTTPWriteTimeout, cfg.RenderTimeout)
	}

	return cfg, nil
}

// IsDevelopment reports whether the service runs with development defaults.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
