// Package throttle paces calls against rate-limited third-party APIs.
package throttle

import (
	"context"
	"time"
)

// Policy decides how long to wait before the next outbound call.
type Policy interface {
	Wait(ctx context.Context) error
}

// Interval spaces calls a fixed duration apart. The first call proceeds
// immediately. A zero interval never waits, which is what tests want.
type Interval struct {
	Every time.Duration

	last time.Time
}

func (p *Interval) Wait(ctx context.Context) error {
	if p.Every <= 0 {
		return nil
	}

	now := time.Now()
	if !p.last.IsZero() {
		remaining := p.Every - now.Sub(p.last)
		if remaining > 0 {
			select {
			case <-time.After(remaining):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
	p.last = time.Now()
	return nil
}

// None is a Policy that never waits.
type None struct{}

func (None) Wait(ctx context.Context) error { return nil }
