package feed

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/feedwise/feedwise/pkg/logging"
	"github.com/feedwise/feedwise/pkg/policy"
	"github.com/feedwise/feedwise/pkg/types"
)

// ItemSource yields the new feed items currently rendered on the page.
type ItemSource interface {
	VisibleItems(ctx context.Context) ([]types.FeedItem, error)
}

// ItemScorer rates one feed item. Failures surface in the result, never as a
// panic or error.
type ItemScorer interface {
	Score(ctx context.Context, item types.FeedItem) types.ScoreResult
}

// ItemActor applies a decision to one feed item.
type ItemActor interface {
	Apply(ctx context.Context, item types.FeedItem, decision types.Decision) error
}

// PageScroller advances the feed and paces the loop.
type PageScroller interface {
	ScrollToBottom() error
	Settle(ctx context.Context, d time.Duration) error
}

// ControllerConfig holds the loop's termination and tolerance policy.
type ControllerConfig struct {
	// MaxItems ends the run after this many successfully processed items
	MaxItems int

	// MaxScrolls bounds the total number of page scrolls per run
	MaxScrolls int

	// ScrollRetries is how many consecutive empty extractions (each
	// followed by a scroll with an increasing wait) are tolerated before
	// the feed is considered exhausted
	ScrollRetries int

	// ScrollSettle is the base wait after a scroll; it grows linearly on
	// consecutive empty passes
	ScrollSettle time.Duration

	// MaxConsecutiveErrors escalates to termination when this many item
	// pipelines fail back to back
	MaxConsecutiveErrors int

	// CountFailures controls whether failed items count toward MaxItems
	CountFailures bool

	// Thresholds are the tier boundaries handed to the decision policy
	Thresholds policy.Thresholds
}

// Stats summarizes one run.
type Stats struct {
	// Processed counts items that completed the pipeline (per the
	// CountFailures policy)
	Processed int

	// Tallies per applied action
	Liked       int
	StrongLiked int
	Dismissed   int
	Neutral     int

	// Failures counts items whose pipeline failed (scoring or action)
	Failures int
}

// Controller orchestrates extraction, scoring, deciding, and acting across
// scroll iterations.
//
// The pipeline is strictly sequential: one item is fully scored and acted
// upon before the next begins, because the page session and the rate budget
// are both singular mutable resources. Cancellation is honored at item
// boundaries: an in-flight item always finishes its pipeline so no action is
// left half-applied.
type Controller struct {
	source ItemSource
	scorer ItemScorer
	actor  ItemActor
	pager  PageScroller
	cfg    ControllerConfig
	logger *logging.Logger
}

// NewController wires the loop's collaborators together.
func NewController(source ItemSource, scorer ItemScorer, actor ItemActor, pager PageScroller, cfg ControllerConfig, logger *logging.Logger) *Controller {
	return &Controller{
		source: source,
		scorer: scorer,
		actor:  actor,
		pager:  pager,
		cfg:    cfg,
		logger: logger,
	}
}

// Run executes the feed loop until the item limit, feed exhaustion,
// cancellation, or the consecutive-error threshold.
//
// A single item's failure is logged and absorbed; only a lost session or the
// error threshold aborts the run. The returned stats are valid in every case,
// including on error.
func (c *Controller) Run(ctx context.Context) (*Stats, error) {
	stats := &Stats{}
	scrolls := 0
	emptyPasses := 0
	consecutiveErrors := 0

	c.logger.Infof("feed loop starting (max_items=%d max_scrolls=%d)", c.cfg.MaxItems, c.cfg.MaxScrolls)

	for stats.Processed < c.cfg.MaxItems {
		if ctx.Err() != nil {
			c.logger.Infof("stop signal received, terminating after %d items", stats.Processed)
			return stats, nil
		}

		items, err := c.source.VisibleItems(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return stats, nil
			}
			if IsFatal(err) {
				return stats, err
			}

			consecutiveErrors++
			c.logger.Warnf("extraction failed (%d consecutive): %v", consecutiveErrors, err)
			if consecutiveErrors >= c.cfg.MaxConsecutiveErrors {
				return stats, fmt.Errorf("%w (%d)", ErrTooManyFailures, consecutiveErrors)
			}
			if stop := c.scrollForMore(ctx, &scrolls, 1); stop {
				return stats, nil
			}
			continue
		}

		if len(items) == 0 {
			emptyPasses++
			if emptyPasses > c.cfg.ScrollRetries || scrolls >= c.cfg.MaxScrolls {
				c.logger.Infof("feed exhausted after %d scrolls", scrolls)
				return stats, nil
			}
			// Wait longer on each consecutive empty pass before
			// giving up on the feed.
			if stop := c.scrollForMore(ctx, &scrolls, emptyPasses); stop {
				return stats, nil
			}
			continue
		}
		emptyPasses = 0

		for _, item := range items {
			if stats.Processed >= c.cfg.MaxItems {
				break
			}
			// Honor cancellation between items, never mid-pipeline.
			if ctx.Err() != nil {
				c.logger.Infof("stop signal received, terminating after %d items", stats.Processed)
				return stats, nil
			}

			ok, fatalErr := c.processItem(ctx, item, stats)
			if fatalErr != nil {
				return stats, fatalErr
			}
			if ok {
				consecutiveErrors = 0
			} else {
				consecutiveErrors++
				if consecutiveErrors >= c.cfg.MaxConsecutiveErrors {
					return stats, fmt.Errorf("%w (%d)", ErrTooManyFailures, consecutiveErrors)
				}
			}
		}

		if stats.Processed >= c.cfg.MaxItems {
			break
		}
		if scrolls >= c.cfg.MaxScrolls {
			c.logger.Infof("scroll budget spent after %d items", stats.Processed)
			return stats, nil
		}
		if stop := c.scrollForMore(ctx, &scrolls, 1); stop {
			return stats, nil
		}
	}

	c.logger.Infof("feed loop finished: %d processed, %d failures", stats.Processed, stats.Failures)
	return stats, nil
}

// processItem runs one item through score -> decide -> act. Returns ok=false
// for recoverable failures; a non-nil error only for fatal ones.
func (c *Controller) processItem(ctx context.Context, item types.FeedItem, stats *Stats) (bool, error) {
	result := c.scorer.Score(ctx, item)
	decision := policy.Decide(result, c.cfg.Thresholds)

	if result.Valid {
		c.logger.Infof("scored %d/10 via %s: %q (%s) -> %s", result.Value, result.Provider, item.Title, item.Channel, decision.Action)
	} else {
		c.logger.Warnf("scoring failed for %q: %v", item.Title, result.Err)
	}

	if err := c.actor.Apply(ctx, item, decision); err != nil {
		if IsFatal(err) {
			return false, err
		}
		if ctx.Err() != nil && errors.Is(err, ctx.Err()) {
			// Cancellation surfaced through a timed wait; the loop
			// exits at the next boundary.
			return true, nil
		}
		c.logger.Warnf("action failed for %q: %v", item.Title, err)
		c.recordFailure(stats)
		return false, nil
	}

	if !result.Valid {
		// The fail-safe NONE was applied; the item still failed.
		c.recordFailure(stats)
		return false, nil
	}

	stats.Processed++
	switch decision.Action {
	case types.ActionLikeStrong:
		stats.StrongLiked++
	case types.ActionLike:
		stats.Liked++
	case types.ActionNotInterested:
		stats.Dismissed++
	case types.ActionNone:
		stats.Neutral++
	}
	return true, nil
}

// recordFailure tallies a failed item per the configured counting policy.
func (c *Controller) recordFailure(stats *Stats) {
	stats.Failures++
	if c.cfg.CountFailures {
		stats.Processed++
	}
}

// scrollForMore scrolls the page and waits for new content to settle. The
// wait grows with attempt. Returns true when the run should stop.
func (c *Controller) scrollForMore(ctx context.Context, scrolls *int, attempt int) bool {
	if err := c.pager.ScrollToBottom(); err != nil {
		c.logger.Warnf("scroll failed: %v", err)
	}
	*scrolls++

	wait := c.cfg.ScrollSettle * time.Duration(attempt)
	if err := c.pager.Settle(ctx, wait); err != nil {
		return true
	}
	return false
}
