package replicate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"posterforge/internal/domain"
	"posterforge/internal/metrics"
)

// WaitState is the local view of a prediction while waiting on it.
type WaitState int

const (
	WaitPending WaitState = iota
	WaitSucceeded
	WaitFailed
	WaitTimedOut
)

func (s WaitState) String() string {
	switch s {
	case WaitPending:
		return "pending"
	case WaitSucceeded:
		return "succeeded"
	case WaitFailed:
		return "failed"
	default:
		return "timed_out"
	}
}

// StateOf maps a remote status onto a WaitState. Unknown statuses count as
// pending.
func StateOf(status domain.PredictionStatus) WaitState {
	switch status {
	case domain.PredictionSucceeded:
		return WaitSucceeded
	case domain.PredictionFailed, domain.PredictionCanceled:
		return WaitFailed
	default:
		return WaitPending
	}
}

const (
	DefaultPollInterval = 1200 * time.Millisecond
	DefaultWaitTimeout  = 120 * time.Second

	maxConsecutivePollErrors = 3
)

// WaitOptions bounds a Wait call.
type WaitOptions struct {
	Interval time.Duration
	Timeout  time.Duration
	// CancelOnTimeout asks the API to stop the prediction once the wait gives up.
	CancelOnTimeout bool
}

// WaitResult is the final state of a Wait call.
type WaitResult struct {
	State      WaitState
	Prediction *domain.Prediction
	Images     []string
	Polls      int
	Elapsed    time.Duration
}

// Wait polls p until it reaches a terminal state, the timeout elapses or ctx
// is done. The result is returned together with any error so callers can
// report the last seen prediction.
func (c *Client) Wait(ctx context.Context, p *domain.Prediction, opts WaitOptions) (*WaitResult, error) {
	if p == nil {
		return nil, fmt.Errorf("%w: prediction is nil", domain.ErrInvalidInput)
	}
	interval := opts.Interval
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultWaitTimeout
	}
	started := time.Now()
	deadline := started.Add(timeout)
	res := &WaitResult{State: StateOf(p.Status), Prediction: p}
	pollErrors := 0

	timer := time.NewTimer(interval)
	defer timer.Stop()

	for res.State == WaitPending {
		if !time.Now().Before(deadline) {
			res.State = WaitTimedOut
			break
		}
		select {
		case <-ctx.Done():
			res.Elapsed = time.Since(started)
			c.observeWait(res, "canceled")
			return res, ctx.Err()
		case <-timer.C:
		}

		next, err := c.poll(ctx, res.Prediction)
		res.Polls++
		if err != nil {
			if ctx.Err() != nil {
				res.Elapsed = time.Since(started)
				c.observeWait(res, "canceled")
				return res, ctx.Err()
			}
			pollErrors++
			c.logger.Warn().Err(err).
				Str("prediction_id", res.Prediction.ID).
				Int("consecutive", pollErrors).
				Msg("replicate: poll failed")
			if pollErrors >= maxConsecutivePollErrors {
				res.Elapsed = time.Since(started)
				c.observeWait(res, "poll_error")
				return res, DomainError(err)
			}
		} else {
			pollErrors = 0
			res.Prediction = next
			res.State = StateOf(next.Status)
		}
		timer.Reset(interval)
	}

	res.Elapsed = time.Since(started)
	c.observeWait(res, res.State.String())

	switch res.State {
	case WaitSucceeded:
		res.Images = NormalizeOutput(res.Prediction.Output)
		if len(res.Images) == 0 {
			return res, fmt.Errorf("%w: prediction %s", domain.ErrNoOutput, res.Prediction.ID)
		}
		return res, nil
	case WaitFailed:
		return res, fmt.Errorf("%w: prediction %s %s: %s", domain.ErrPredictionFailed,
			res.Prediction.ID, res.Prediction.Status, errorText(res.Prediction.Error))
	default:
		if opts.CancelOnTimeout {
			cancelCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
			if err := c.CancelPrediction(cancelCtx, res.Prediction); err != nil {
				c.logger.Warn().Err(err).Str("prediction_id", res.Prediction.ID).Msg("replicate: cancel after timeout failed")
			}
			cancel()
		}
		return res, fmt.Errorf("%w: prediction %s still %s after %s", domain.ErrUpstreamTimeout,
			res.Prediction.ID, res.Prediction.Status, timeout)
	}
}

func (c *Client) poll(ctx context.Context, p *domain.Prediction) (*domain.Prediction, error) {
	if u := p.PollURL(); u != "" {
		return c.GetPredictionURL(ctx, u)
	}
	if p.ID == "" {
		return nil, errors.New("replicate: prediction has neither id nor poll url")
	}
	return c.GetPrediction(ctx, p.ID)
}

func (c *Client) observeWait(res *WaitResult, label string) {
	metrics.PredictionWaitDuration.WithLabelValues(label).Observe(res.Elapsed.Seconds())
	c.logger.Debug().
		Str("prediction_id", res.Prediction.ID).
		Str("state", label).
		Int("polls", res.Polls).
		Dur("elapsed", res.Elapsed).
		Msg("replicate: wait finished")
}

func errorText(v any) string {
	switch t := v.(type) {
	case nil:
		return "no error detail"
	case string:
		if t == "" {
			return "no error detail"
		}
		return t
	default:
		return fmt.Sprint(t)
	}
}
