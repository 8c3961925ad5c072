// Package scoring adapts the LLM providers into a uniform item-scoring
// capability with provider fallback and rate budgeting.
//
// Score never returns an error to the caller: every failure mode (rate
// budget exhausted, transport error, unparseable reply) collapses into a
// ScoreResult with Valid=false, which the decision policy maps to the
// fail-safe NONE action.
package scoring

import (
	"context"
	"errors"
	"fmt"

	"github.com/feedwise/feedwise/pkg/llm"
	"github.com/feedwise/feedwise/pkg/logging"
	"github.com/feedwise/feedwise/pkg/ratelimit"
	"github.com/feedwise/feedwise/pkg/types"
)

// Error tags a scoring failure after all configured providers were tried.
type Error struct {
	// Item is the title of the item that failed to score
	Item string

	// Cause is the last provider or budget failure
	Cause error
}

func (e *Error) Error() string {
	return fmt.Sprintf("scoring failed for %q: %v", e.Item, e.Cause)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Scorer scores feed items through an ordered provider chain.
type Scorer struct {
	providers []llm.Provider
	limiter   *ratelimit.Limiter
	logger    *logging.Logger

	// calls counts every attempted provider call this run
	calls int
}

// New creates a scorer. Providers are tried in order; the first to return a
// parseable score wins. At least one provider is required.
func New(limiter *ratelimit.Limiter, logger *logging.Logger, providers ...llm.Provider) (*Scorer, error) {
	if len(providers) == 0 {
		return nil, fmt.Errorf("at least one provider is required")
	}
	if limiter == nil {
		return nil, fmt.Errorf("rate limiter is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	return &Scorer{
		providers: providers,
		limiter:   limiter,
		logger:    logger,
	}, nil
}

// Score rates one feed item.
//
// Each provider attempt is guarded by the rate budget and recorded against it
// whether or not the call succeeds. When the budget is exhausted beyond the
// bounded wait there is no point trying the fallback provider (the budget is
// shared), so the chain stops there.
func (s *Scorer) Score(ctx context.Context, item types.FeedItem) types.ScoreResult {
	prompt := BuildPrompt(item)

	var lastErr error
	for _, provider := range s.providers {
		if err := s.limiter.Wait(ctx); err != nil {
			lastErr = err
			if errors.Is(err, ratelimit.ErrBudgetExhausted) {
				s.logger.Warnf("rate budget exhausted, skipping remaining providers for %q", item.Title)
			}
			break
		}

		s.limiter.Record()
		s.calls++

		reply, err := provider.Complete(ctx, prompt)
		if err != nil {
			lastErr = err
			s.logger.Warnf("provider %s failed for %q: %v", provider.Name(), item.Title, err)
			continue
		}

		value, err := ParseScore(reply)
		if err != nil {
			lastErr = err
			s.logger.Warnf("provider %s returned unusable reply for %q: %v", provider.Name(), item.Title, err)
			continue
		}

		return types.ScoreResult{
			Value:    value,
			Valid:    true,
			Provider: provider.Kind(),
		}
	}

	return types.ScoreResult{
		Valid: false,
		Err:   &Error{Item: item.Title, Cause: lastErr},
	}
}

// Calls returns the number of provider calls attempted so far.
func (s *Scorer) Calls() int {
	return s.calls
}
