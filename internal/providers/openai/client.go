// Package openai is a thin chat-completions client for the slogan generator
// and the prompt planner.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"posterforge/internal/infra"
	"posterforge/internal/metrics"
)

// ErrMissingAPIKey indicates that the client was configured without credentials.
var ErrMissingAPIKey = errors.New("openai: api key is required")

const (
	defaultBaseURL     = "https://api.openai.com/v1"
	defaultModel       = "gpt-4o-mini"
	defaultVisionModel = "gpt-4o"
	defaultTimeout     = 45 * time.Second
)

var modelCanonical = map[string]string{
	"gpt-4o-mini":   "gpt-4o-mini",
	"gpt-4o":        "gpt-4o",
	"gpt-4.1-mini":  "gpt-4.1-mini",
	"gpt-4.1":       "gpt-4.1",
	"gpt-3.5-turbo": "gpt-3.5-turbo",
}

var modelAliases = map[string]string{
	"gpt4o-mini":             "gpt-4o-mini",
	"gpt4omini":              "gpt-4o-mini",
	"gpt-4o-mini-2024-07-18": "gpt-4o-mini",
	"gpt4o":                  "gpt-4o",
	"gpt-4o-2024-08-06":      "gpt-4o",
	"gpt-4o-2024-11-20":      "gpt-4o",
	"gpt-3.5":                "gpt-3.5-turbo",
	"gpt-35-turbo":           "gpt-3.5-turbo",
}

// Options configures the chat-completions client.
type Options struct {
	APIKey         string
	Project        string
	Organization   string
	BaseURL        string
	Model          string
	VisionModel    string
	HTTPClient     *http.Client
	Logger         *infra.Logger
	RequestTimeout time.Duration
	OnWarning      func(reason, detail string)
}

// Client performs chat-completions calls.
type Client struct {
	apiKey       string
	project      string
	organization string
	baseURL      string
	model        string
	visionModel  string
	httpClient   *http.Client
	logger       *infra.Logger
}

// Message is a single chat message. Content holds either plain text or
// multimodal Parts; Parts wins when both are set.
type Message struct {
	Role    string
	Content string
	Parts   []ContentPart
}

// ContentPart is one element of a multimodal message.
type ContentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *ImageURL `json:"image_url,omitempty"`
}

// ImageURL references an image the model should look at.
type ImageURL struct {
	URL string `json:"url"`
}

// TextPart builds a text content part.
func TextPart(text string) ContentPart {
	return ContentPart{Type: "text", Text: text}
}

// ImagePart builds an image_url content part.
func ImagePart(url string) ContentPart {
	return ContentPart{Type: "image_url", ImageURL: &ImageURL{URL: url}}
}

// ChatRequest describes one completion. An empty Model selects the client
// default, or the vision model when Vision is set.
type ChatRequest struct {
	Model       string
	Vision      bool
	Messages    []Message
	Temperature float64
	JSON        bool
}

// APIError is returned when the API answers with a non-2xx status.
type APIError struct {
	StatusCode int
	Type       string
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	if e.Code != "" {
		return fmt.Sprintf("openai: status %d: %s (%s)", e.StatusCode, msg, e.Code)
	}
	return fmt.Sprintf("openai: status %d: %s", e.StatusCode, msg)
}

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []wireMessage   `json:"messages"`
	Temperature    *float64        `json:"temperature,omitempty"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type wireMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

type errorEnvelope struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    any    `json:"code"`
	} `json:"error"`
}

// NewClient constructs a client with defaults filled in. A missing API key is
// not an error here; calls fail with ErrMissingAPIKey instead.
func NewClient(opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.RequestTimeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	model := resolveModel(opts.Model, defaultModel, opts.OnWarning)
	visionModel := resolveModel(opts.VisionModel, defaultVisionModel, opts.OnWarning)

	var logger *infra.Logger
	if opts.Logger != nil {
		logger = opts.Logger
	} else {
		discard := zerolog.New(io.Discard)
		logger = &discard
	}
	return &Client{
		apiKey:       strings.TrimSpace(opts.APIKey),
		project:      strings.TrimSpace(opts.Project),
		organization: strings.TrimSpace(opts.Organization),
		baseURL:      baseURL,
		model:        model,
		visionModel:  visionModel,
		httpClient:   httpClient,
		logger:       logger,
	}
}

// HasCredentials reports whether the client can perform remote calls.
func (c *Client) HasCredentials() bool {
	return c.apiKey != ""
}

// Model returns the default text model.
func (c *Client) Model() string {
	return c.model
}

// Chat runs one completion and returns the trimmed content of the first choice.
func (c *Client) Chat(ctx context.Context, req ChatRequest) (_ string, err error) {
	if !c.HasCredentials() {
		return "", ErrMissingAPIKey
	}
	if len(req.Messages) == 0 {
		return "", errors.New("openai: at least one message is required")
	}
	model := strings.TrimSpace(req.Model)
	if model == "" {
		model = c.model
		if req.Vision {
			model = c.visionModel
		}
	}
	payload := chatRequest{Model: model}
	temperature := req.Temperature
	payload.Temperature = &temperature
	if req.JSON {
		payload.ResponseFormat = &responseFormat{Type: "json_object"}
	}
	for _, m := range req.Messages {
		wm := wireMessage{Role: m.Role, Content: m.Content}
		if len(m.Parts) > 0 {
			wm.Content = m.Parts
		}
		payload.Messages = append(payload.Messages, wm)
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("openai: encode request: %w", err)
	}
	endpoint := c.baseURL + "/chat/completions"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("openai: build request: %w", err)
	}
	c.setHeaders(httpReq)

	started := time.Now()
	defer func() { metrics.ObserveUpstream("openai", "chat", started, err) }()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("openai: http request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("openai: read response: %w", err)
	}
	if resp.StatusCode >= 300 {
		return "", decodeAPIError(resp.StatusCode, raw)
	}

	var decoded chatResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return "", fmt.Errorf("openai: decode response: %w", err)
	}
	if len(decoded.Choices) == 0 {
		return "", errors.New("openai: no choices")
	}
	text := strings.TrimSpace(decoded.Choices[0].Message.Content)
	c.logger.Debug().
		Str("model", model).
		Str("completion_id", decoded.ID).
		Str("finish_reason", decoded.Choices[0].FinishReason).
		Dur("elapsed", time.Since(started)).
		Msg("openai: chat completion")
	return text, nil
}

// Ping issues a minimal completion to prove the credentials and network path.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.Chat(ctx, ChatRequest{
		Messages: []Message{
			{Role: "system", Content: `Reply with a JSON object {"ok":true} and nothing else.`},
			{Role: "user", Content: "ping"},
		},
	})
	return err
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if c.project != "" {
		req.Header.Set("OpenAI-Project", c.project)
	}
	if c.organization != "" {
		req.Header.Set("OpenAI-Organization", c.organization)
	}
}

func decodeAPIError(status int, raw []byte) error {
	apiErr := &APIError{StatusCode: status}
	var env errorEnvelope
	if err := json.Unmarshal(raw, &env); err == nil && env.Error.Message != "" {
		apiErr.Message = env.Error.Message
		apiErr.Type = env.Error.Type
		if env.Error.Code != nil {
			apiErr.Code = fmt.Sprint(env.Error.Code)
		}
		return apiErr
	}
	apiErr.Message = truncate(strings.TrimSpace(string(raw)), 300)
	return apiErr
}

func resolveModel(requested, fallback string, onWarning func(reason, detail string)) string {
	resolved, reason := normalizeModel(requested, fallback)
	if reason != "" && onWarning != nil {
		onWarning("model_"+reason, fmt.Sprintf("requested=%s resolved=%s", requested, resolved))
	}
	return resolved
}

func normalizeModel(name, fallback string) (string, string) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return fallback, ""
	}
	normalized := strings.ToLower(trimmed)
	normalized = strings.ReplaceAll(normalized, "_", "-")
	normalized = strings.ReplaceAll(normalized, " ", "-")
	if canonical, ok := modelCanonical[normalized]; ok {
		return canonical, ""
	}
	if alias, ok := modelAliases[normalized]; ok {
		return alias, "alias"
	}
	return fallback, "defaulted"
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
