// Package replicate talks to the Replicate predictions API.
package replicate

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"posterforge/internal/domain"
	"posterforge/internal/infra"
	"posterforge/internal/metrics"
)

// ErrMissingToken indicates that the client was configured without credentials.
var ErrMissingToken = errors.New("replicate: api token is required")

// DefaultModel is the image edit model used when none is configured.
const DefaultModel = "black-forest-labs/flux-kontext-max"

const (
	defaultBaseURL = "https://api.replicate.com/v1"
	defaultTimeout = 30 * time.Second
)

// Options configures the predictions client.
type Options struct {
	Token          string
	BaseURL        string
	Model          string
	Version        string
	HTTPClient     *http.Client
	Logger         *infra.Logger
	RequestTimeout time.Duration
}

// Client creates and reads predictions.
type Client struct {
	token      string
	baseURL    string
	baseHost   string
	model      string
	version    string
	httpClient *http.Client
	logger     *infra.Logger
}

// FluxKontextInput is the input document for Flux-Kontext style image edits.
type FluxKontextInput struct {
	Prompt           string `json:"prompt"`
	InputImage       string `json:"input_image"`
	AspectRatio      string `json:"aspect_ratio"`
	OutputFormat     string `json:"output_format"`
	SafetyTolerance  int    `json:"safety_tolerance"`
	PromptUpsampling bool   `json:"prompt_upsampling"`
	Seed             *int   `json:"seed,omitempty"`
}

// APIError is returned when the API answers with a non-2xx status.
type APIError struct {
	StatusCode int
	Title      string
	Detail     string
}

func (e *APIError) Error() string {
	msg := e.Detail
	if msg == "" {
		msg = e.Title
	}
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	return fmt.Sprintf("replicate: status %d: %s", e.StatusCode, msg)
}

type createRequest struct {
	Version string `json:"version,omitempty"`
	Input   any    `json:"input"`
}

type errorBody struct {
	Title  string `json:"title"`
	Detail string `json:"detail"`
}

// NewClient constructs a client with defaults filled in. A missing token is
// not an error here; calls fail with ErrMissingToken instead.
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
	var baseHost string
	if u, err := url.Parse(baseURL); err == nil {
		baseHost = u.Host
	}
	model := strings.Trim(strings.TrimSpace(opts.Model), "/")
	if model == "" {
		model = DefaultModel
	}
	var logger *infra.Logger
	if opts.Logger != nil {
		logger = opts.Logger
	} else {
		discard := zerolog.New(io.Discard)
		logger = &discard
	}
	return &Client{
		token:      strings.TrimSpace(opts.Token),
		baseURL:    baseURL,
		baseHost:   baseHost,
		model:      model,
		version:    strings.TrimSpace(opts.Version),
		httpClient: httpClient,
		logger:     logger,
	}
}

// HasCredentials reports whether the client can perform remote calls.
func (c *Client) HasCredentials() bool {
	return c.token != ""
}

// ModelRef names the model or pinned version predictions are created against.
func (c *Client) ModelRef() string {
	if c.version != "" {
		return c.model + ":" + c.version
	}
	return c.model
}

// CreatePrediction submits input to the configured model. With a pinned
// version the generic predictions endpoint is used.
func (c *Client) CreatePrediction(ctx context.Context, input any) (*domain.Prediction, error) {
	if !c.HasCredentials() {
		return nil, ErrMissingToken
	}
	endpoint := c.baseURL + "/models/" + c.model + "/predictions"
	payload := createRequest{Input: input}
	if c.version != "" {
		endpoint = c.baseURL + "/predictions"
		payload.Version = c.version
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("replicate: encode request: %w", err)
	}
	p, err := c.do(ctx, "create", http.MethodPost, endpoint, body)
	if err != nil {
		return nil, err
	}
	c.logger.Debug().
		Str("prediction_id", p.ID).
		Str("model", c.ModelRef()).
		Str("status", string(p.Status)).
		Msg("replicate: prediction created")
	return p, nil
}

// GetPrediction fetches a prediction by id.
func (c *Client) GetPrediction(ctx context.Context, id string) (*domain.Prediction, error) {
	id = strings.TrimSpace(id)
	if id == "" || strings.ContainsAny(id, "/?#") {
		return nil, fmt.Errorf("%w: invalid prediction id", domain.ErrInvalidInput)
	}
	return c.GetPredictionURL(ctx, c.baseURL+"/predictions/"+url.PathEscape(id))
}

// GetPredictionURL fetches a prediction from the URL the API advertised.
// Only URLs on the configured API host are accepted, since the request
// carries the API token.
func (c *Client) GetPredictionURL(ctx context.Context, rawURL string) (*domain.Prediction, error) {
	if !c.HasCredentials() {
		return nil, ErrMissingToken
	}
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || (u.Scheme != "https" && u.Scheme != "http") || u.Host != c.baseHost {
		return nil, fmt.Errorf("%w: prediction url must point at %s", domain.ErrInvalidInput, c.baseHost)
	}
	return c.do(ctx, "get", http.MethodGet, u.String(), nil)
}

// CancelPrediction asks the API to stop a running prediction.
func (c *Client) CancelPrediction(ctx context.Context, p *domain.Prediction) error {
	if !c.HasCredentials() {
		return ErrMissingToken
	}
	endpoint := p.URLs["cancel"]
	if endpoint == "" {
		endpoint = c.baseURL + "/predictions/" + url.PathEscape(p.ID) + "/cancel"
	}
	if u, err := url.Parse(endpoint); err != nil || u.Host != c.baseHost {
		return fmt.Errorf("%w: cancel url must point at %s", domain.ErrInvalidInput, c.baseHost)
	}
	_, err := c.do(ctx, "cancel", http.MethodPost, endpoint, nil)
	return err
}

func (c *Client) do(ctx context.Context, op, method, endpoint string, body []byte) (_ *domain.Prediction, err error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("replicate: build request: %w", err)
	}
	req.Header.Set("Authorization", "Token "+c.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	started := time.Now()
	defer func() { metrics.ObserveUpstream("replicate", op, started, err) }()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("replicate: http request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("replicate: read response: %w", err)
	}
	if resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var eb errorBody
		if json.Unmarshal(raw, &eb) == nil && (eb.Detail != "" || eb.Title != "") {
			apiErr.Title, apiErr.Detail = eb.Title, eb.Detail
		} else {
			apiErr.Detail = strings.TrimSpace(string(raw))
		}
		return nil, apiErr
	}
	var p domain.Prediction
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("replicate: decode response: %w", err)
	}
	return &p, nil
}

// DomainError maps a client error onto the service's sentinel errors.
func DomainError(err error) error {
	var apiErr *APIError
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrMissingToken):
		return fmt.Errorf("%w: %v", domain.ErrNotConfigured, err)
	case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, context.Canceled),
		errors.Is(err, domain.ErrPredictionFailed), errors.Is(err, domain.ErrNoOutput),
		errors.Is(err, domain.ErrUpstreamTimeout), errors.Is(err, domain.ErrUpstream):
		return err
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: replicate: %v", domain.ErrUpstreamTimeout, err)
	case errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	default:
		return fmt.Errorf("%w: %v", domain.ErrUpstream, err)
	}
}
