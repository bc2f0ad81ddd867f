// Package transformer runs an ordered chain of table steps.
package transformer

import (
	"context"
	"fmt"
	"time"

	"csvclean/internal/table"
)

// Step mutates a table in place.
type Step interface {
	Name() string
	Apply(ctx context.Context, t *table.Table) error
}

// Chain is an ordered list of steps.
type Chain []Step

// Observer is told the outcome and duration of every step that ran.
type Observer func(step string, err error, d time.Duration)

// Apply runs each step in order and stops at the first failure. The error
// names the failing step and its position.
func (c Chain) Apply(ctx context.Context, t *table.Table) error {
	return c.ApplyObserved(ctx, t, nil)
}

// ApplyObserved is Apply with an optional per-step observer.
func (c Chain) ApplyObserved(ctx context.Context, t *table.Table, obs Observer) error {
	for i, s := range c {
		if err := ctx.Err(); err != nil {
			return err
		}
		start := time.Now()
		err := s.Apply(ctx, t)
		if obs != nil {
			obs(s.Name(), err, time.Since(start))
		}
		if err != nil {
			return fmt.Errorf("transform[%d] %s: %w", i, s.Name(), err)
		}
	}
	return nil
}

// Func adapts a function into a Step.
type Func struct {
	Kind string
	Fn   func(ctx context.Context, t *table.Table) error
}

// Name implements Step.
func (f Func) Name() string { return f.Kind }

// Apply implements Step.
func (f Func) Apply(ctx context.Context, t *table.Table) error { return f.Fn(ctx, t) }
