// Package ratelimit implements the fixed-window call budget guarding LLM
// scoring calls.
//
// The limiter tracks a single wall-clock window: once the configured number
// of calls has been recorded inside the window, further calls must wait for
// the window to elapse. Waiting is bounded; a caller that would have to wait
// longer than the configured maximum receives ErrBudgetExhausted and treats
// it as a provider failure.
//
// The limiter is deliberately thread-unaware. The feed loop is strictly
// sequential, so there is exactly one caller at any time.
package ratelimit

import (
	"context"
	"errors"
	"time"
)

// ErrBudgetExhausted is returned by Wait when the remaining window exceeds
// the configured maximum wait.
var ErrBudgetExhausted = errors.New("rate budget exhausted within max wait")

// Limiter is a fixed-window call budget.
type Limiter struct {
	max     int
	window  time.Duration
	maxWait time.Duration

	count       int
	windowStart time.Time

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// Option configures a Limiter.
type Option func(*Limiter)

// WithClock replaces the wall clock, for tests.
func WithClock(now func() time.Time) Option {
	return func(l *Limiter) {
		l.now = now
	}
}

// WithSleeper replaces the sleep function, for tests.
func WithSleeper(sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(l *Limiter) {
		l.sleep = sleep
	}
}

// New creates a limiter allowing max calls per window. Wait blocks for at
// most maxWait; zero maxWait means waits are unbounded.
func New(max int, window, maxWait time.Duration, opts ...Option) *Limiter {
	l := &Limiter{
		max:     max,
		window:  window,
		maxWait: maxWait,
		now:     time.Now,
		sleep:   sleepContext,
	}
	for _, opt := range opts {
		opt(l)
	}
	l.windowStart = l.now()
	return l
}

// Allow reports whether another call fits into the current window.
func (l *Limiter) Allow() bool {
	l.roll()
	return l.count < l.max
}

// Record counts one attempted call against the current window. Callers
// record every attempt, success or failure.
func (l *Limiter) Record() {
	l.roll()
	l.count++
}

// Remaining returns the number of calls left in the current window.
func (l *Limiter) Remaining() int {
	l.roll()
	if rem := l.max - l.count; rem > 0 {
		return rem
	}
	return 0
}

// Wait blocks until the current window admits another call.
//
// If the window is full, Wait sleeps until the window elapses, bounded by the
// configured maximum wait. Returns ErrBudgetExhausted when the bound would be
// exceeded, or the context error on cancellation.
func (l *Limiter) Wait(ctx context.Context) error {
	if l.Allow() {
		return nil
	}

	remaining := l.window - l.now().Sub(l.windowStart)
	if remaining < 0 {
		remaining = 0
	}
	if l.maxWait > 0 && remaining > l.maxWait {
		return ErrBudgetExhausted
	}

	if err := l.sleep(ctx, remaining); err != nil {
		return err
	}

	if !l.Allow() {
		return ErrBudgetExhausted
	}
	return nil
}

// Reset clears the count and starts a fresh window immediately.
func (l *Limiter) Reset() {
	l.count = 0
	l.windowStart = l.now()
}

// roll resets the window once it has elapsed.
func (l *Limiter) roll() {
	if l.now().Sub(l.windowStart) >= l.window {
		l.count = 0
		l.windowStart = l.now()
	}
}

// sleepContext sleeps for d or until ctx is cancelled.
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
