package cluster

import (
	"context"
	"errors"
	"fmt"
	"math"
	"slices"
	"time"
)

var (
	// ErrScoreCount is returned when a scorer returns a vector whose length
	// differs from its batch.
	ErrScoreCount = errors.New("score count mismatch")
	// ErrScoreRange is returned when a scorer returns a value outside [0, 1].
	ErrScoreRange = errors.New("score out of range")
)

// Scorer turns one batch into one score per row.
type Scorer interface {
	Score(ctx context.Context, b Batch) ([]float64, error)
}

// ScorerFunc adapts a function to the Scorer interface.
type ScorerFunc func(ctx context.Context, b Batch) ([]float64, error)

// Score calls f(ctx, b).
func (f ScorerFunc) Score(ctx context.Context, b Batch) ([]float64, error) { return f(ctx, b) }

// Result is the output of one batch.
type Result struct {
	ID      int
	Offset  int
	Scores  []float64
	Elapsed time.Duration
	Err     error
}

// Hook observes every finished batch. It runs on the worker goroutine.
type Hook func(b Batch, elapsed time.Duration, err error)

// Execute scores every batch on pool and waits for all of them.
//
// Results are returned sorted by batch ID regardless of completion order.
// If any batch fails, the error of the lowest failing batch ID is returned
// after all submitted batches have finished.
func Execute(ctx context.Context, pool *WorkerPool, scorer Scorer, batches []Batch, hook Hook) ([]Result, error) {
	done := make(chan Result, len(batches))

	submitted := 0
	var submitErr error
	for _, b := range batches {
		task := func() {
			start := time.Now()
			scores, err := scoreBatch(ctx, scorer, b)
			elapsed := time.Since(start)
			if hook != nil {
				hook(b, elapsed, err)
			}
			done <- Result{ID: b.ID, Offset: b.Offset, Scores: scores, Elapsed: elapsed, Err: err}
		}
		if err := pool.Submit(ctx, task); err != nil {
			submitErr = err
			break
		}
		submitted++
	}

	results := make([]Result, 0, submitted)
	for i := 0; i < submitted; i++ {
		results = append(results, <-done)
	}

	if submitErr != nil {
		return nil, submitErr
	}

	slices.SortFunc(results, func(a, b Result) int { return a.ID - b.ID })

	for _, r := range results {
		if r.Err != nil {
			return nil, r.Err
		}
	}

	return results, nil
}

func scoreBatch(ctx context.Context, scorer Scorer, b Batch) (scores []float64, err error) {
	defer func() {
		if r := recover(); r != nil {
			scores, err = nil, fmt.Errorf("batch %d: panic: %v", b.ID, r)
		}
	}()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	scores, err = scorer.Score(ctx, b)
	if err != nil {
		return nil, err
	}

	if len(scores) != len(b.Rows) {
		return nil, fmt.Errorf("batch %d: %w: got %d, want %d", b.ID, ErrScoreCount, len(scores), len(b.Rows))
	}

	for i, s := range scores {
		if math.IsNaN(s) || s < 0 || s > 1 {
			return nil, fmt.Errorf("batch %d row %d: %w: %v", b.ID, b.Offset+i, ErrScoreRange, s)
		}
	}

	return scores, nil
}
