package refs

import (
	"context"
	"fmt"
	"math/rand"

	"posterforge/internal/domain"
)

// Batch size bounds.
const (
	DefaultBatchCount = 4
	MaxBatchCount     = 4
)

// SelectorOption customises a Selector.
type SelectorOption func(*Selector)

// WithIntn replaces the random source; intn(n) must return a value in [0, n).
func WithIntn(intn func(int) int) SelectorOption {
	return func(s *Selector) { s.intn = intn }
}

// WithMaxBatch overrides the batch size ceiling.
func WithMaxBatch(n int) SelectorOption {
	return func(s *Selector) {
		if n > 0 {
			s.maxBatch = n
		}
	}
}

// Selector picks references from a Library.
type Selector struct {
	lib      *Library
	intn     func(int) int
	maxBatch int
}

// NewSelector returns a Selector drawing from lib.
func NewSelector(lib *Library, opts ...SelectorOption) *Selector {
	s := &Selector{lib: lib, intn: rand.Intn, maxBatch: MaxBatchCount}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// MaxBatch is the largest batch Batch returns.
func (s *Selector) MaxBatch() int { return s.maxBatch }

// Pick returns one reference chosen uniformly at random.
func (s *Selector) Pick(ctx context.Context, base string) (domain.Reference, error) {
	files, err := s.lib.List(ctx)
	if err != nil {
		return domain.Reference{}, err
	}
	if len(files) == 0 {
		return domain.Reference{}, fmt.Errorf("%w: collection is empty", domain.ErrNoReferences)
	}
	return s.lib.Resolve(base, files[s.intn(len(files))])
}

// BatchRequest narrows a batch selection.
type BatchRequest struct {
	Count   int
	Files   []string
	Exclude []string
}

// Batch returns up to Count distinct references. The pool is Files (or the
// whole collection when Files is empty) minus Exclude; an empty pool falls
// back to the whole collection. Count is clamped to [1, MaxBatch] and
// defaults to DefaultBatchCount.
func (s *Selector) Batch(ctx context.Context, base string, req BatchRequest) ([]domain.Reference, error) {
	all, err := s.lib.List(ctx)
	if err != nil {
		return nil, err
	}
	if len(all) == 0 {
		return nil, fmt.Errorf("%w: collection is empty", domain.ErrNoReferences)
	}

	pool := all
	if len(req.Files) > 0 {
		want := toSet(req.Files)
		pool = filter(all, func(f string) bool { _, ok := want[f]; return ok })
	}
	if len(req.Exclude) > 0 {
		skip := toSet(req.Exclude)
		pool = filter(pool, func(f string) bool { _, ok := skip[f]; return !ok })
	}
	if len(pool) == 0 {
		pool = all
	}

	count := req.Count
	if count == 0 {
		count = DefaultBatchCount
	}
	count = max(1, min(s.maxBatch, count))

	shuffled := append([]string(nil), pool...)
	for i := len(shuffled) - 1; i > 0; i-- {
		j := s.intn(i + 1)
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	}
	if count > len(shuffled) {
		count = len(shuffled)
	}

	out := make([]domain.Reference, 0, count)
	for _, f := range shuffled[:count] {
		ref, err := s.lib.Resolve(base, f)
		if err != nil {
			return nil, err
		}
		out = append(out, ref)
	}
	return out, nil
}

func toSet(items []string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, it := range items {
		set[it] = struct{}{}
	}
	return set
}

func filter(items []string, keep func(string) bool) []string {
	var out []string
	for _, it := range items {
		if keep(it) {
			out = append(out, it)
		}
	}
	return out
}
