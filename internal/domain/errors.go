package domain

import "errors"

var (
	ErrInvalidInput        = errors.New("invalid input")
	ErrNotConfigured       = errors.New("not configured")
	ErrNoReferences        = errors.New("no reference images")
	ErrUpstream            = errors.New("upstream failure")
	ErrUpstreamTimeout     = errors.New("upstream timeout")
	ErrPredictionFailed    = errors.New("prediction failed")
	ErrNoOutput            = errors.New("prediction produced no image")
	ErrInsufficientOptions = errors.New("not enough valid slogan options")
)
