package domain

import "time"

// PredictionStatus enumerates the lifecycle states reported by the image API.
type PredictionStatus string

const (
	PredictionStarting   PredictionStatus = "starting"
	PredictionQueued     PredictionStatus = "queued"
	PredictionProcessing PredictionStatus = "processing"
	PredictionSucceeded  PredictionStatus = "succeeded"
	PredictionFailed     PredictionStatus = "failed"
	PredictionCanceled   PredictionStatus = "canceled"
)

// Terminal reports whether no further transitions are expected.
func (s PredictionStatus) Terminal() bool {
	switch s {
	case PredictionSucceeded, PredictionFailed, PredictionCanceled:
		return true
	default:
		return false
	}
}

// Prediction is the externally owned render job. Output keeps the raw shape
// (string, array or object); Images holds the flattened URLs.
type Prediction struct {
	ID          string            `json:"id"`
	Model       string            `json:"model,omitempty"`
	Version     string            `json:"version,omitempty"`
	Status      PredictionStatus  `json:"status"`
	Output      any               `json:"output,omitempty"`
	Error       any               `json:"error,omitempty"`
	Logs        string            `json:"logs,omitempty"`
	URLs        map[string]string `json:"urls,omitempty"`
	CreatedAt   *time.Time        `json:"created_at,omitempty"`
	StartedAt   *time.Time        `json:"started_at,omitempty"`
	CompletedAt *time.Time        `json:"completed_at,omitempty"`
}

// PollURL returns the URL the prediction advertises for status checks.
func (p *Prediction) PollURL() string {
	if p == nil {
		return ""
	}
	if u := p.URLs["get"]; u != "" {
		return u
	}
	return p.URLs["self"]
}
