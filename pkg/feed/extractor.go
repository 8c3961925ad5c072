// Package feed implements the feed-processing pipeline: extracting rendered
// items, applying decisions to them, and the control loop that sequences
// extraction, scoring, deciding, and acting across scroll passes.
package feed

import (
	"context"
	"strings"

	"github.com/playwright-community/playwright-go"

	"github.com/feedwise/feedwise/pkg/browser"
	"github.com/feedwise/feedwise/pkg/logging"
	"github.com/feedwise/feedwise/pkg/types"
)

// Feed cards come in several renderer flavors depending on surface and
// experiment bucket; all three are treated identically.
var feedItemSelectors = []string{
	"ytd-rich-item-renderer",
	"ytd-video-renderer",
	"ytd-reel-item-renderer",
}

// Title and channel live in different spots per renderer flavor, so each is
// resolved through a selector ladder, first hit wins.
var (
	titleSelectors = []string{
		"#video-title",
		"h3 a",
		"a#video-title-link",
		"[aria-label*='title']",
	}

	channelSelectors = []string{
		"#text > a",
		".ytd-channel-name a",
		"#channel-name a",
		"[href*='/channel/']",
		"[href*='/@']",
	}
)

const (
	// minTitleLength filters out icon glyphs and truncated placeholders
	minTitleLength = 5

	// unknownChannel stands in when no channel selector matches
	unknownChannel = "Unknown Channel"

	// maxFallbackTitleLength bounds titles recovered from raw card text
	maxFallbackTitleLength = 100
)

// Extractor reads currently-rendered feed items off the page. It never
// scrolls or waits; pacing is the controller's job.
//
// The extractor owns the run-scoped seen set: an item already returned in an
// earlier pass (keyed by title+channel) is filtered out, so overlapping
// scroll views never yield the same video twice.
type Extractor struct {
	page   playwright.Page
	seen   map[string]struct{}
	logger *logging.Logger
}

// NewExtractor creates an extractor bound to the live page.
func NewExtractor(page playwright.Page, logger *logging.Logger) *Extractor {
	return &Extractor{
		page:   page,
		seen:   make(map[string]struct{}),
		logger: logger,
	}
}

// VisibleItems returns the new feed items currently rendered on the page.
//
// An empty result means every rendered item has already been processed this
// run; the caller should scroll for more or terminate. Element handles in the
// result are valid only until the next DOM-mutating operation.
func (e *Extractor) VisibleItems(ctx context.Context) ([]types.FeedItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var handles []playwright.ElementHandle
	for _, selector := range feedItemSelectors {
		found, err := e.page.QuerySelectorAll(selector)
		if err != nil {
			return nil, &ExtractionError{Cause: err}
		}
		handles = append(handles, found...)
	}

	items := make([]types.FeedItem, 0, len(handles))
	for _, handle := range handles {
		title := e.extractTitle(handle)
		if len(title) < minTitleLength {
			continue
		}

		item := types.FeedItem{
			Title:   title,
			Channel: e.extractChannel(handle),
			Element: handle,
		}

		key := item.Key()
		if _, dup := e.seen[key]; dup {
			continue
		}
		e.seen[key] = struct{}{}

		items = append(items, item)
	}

	e.logger.Debugf("extracted %d new items from %d rendered cards", len(items), len(handles))
	return items, nil
}

// SeenCount returns how many distinct items have been extracted this run.
func (e *Extractor) SeenCount() int {
	return len(e.seen)
}

// extractTitle resolves the card's title via the selector ladder, falling
// back to the first visible text line of the card.
func (e *Extractor) extractTitle(handle playwright.ElementHandle) string {
	for _, selector := range titleSelectors {
		element, err := handle.QuerySelector(selector)
		if err != nil || element == nil {
			continue
		}

		if title := firstAttribute(element, "title", "aria-label"); title != "" {
			return title
		}
		if text, err := element.TextContent(); err == nil {
			if text = strings.TrimSpace(text); text != "" {
				return text
			}
		}
	}

	// Last resort: the first text line of the raw card markup.
	fragment, err := handle.InnerHTML()
	if err != nil {
		return ""
	}
	return browser.FirstTextLine(fragment, maxFallbackTitleLength)
}

// extractChannel resolves the card's channel name via the selector ladder.
func (e *Extractor) extractChannel(handle playwright.ElementHandle) string {
	for _, selector := range channelSelectors {
		element, err := handle.QuerySelector(selector)
		if err != nil || element == nil {
			continue
		}

		if text, err := element.TextContent(); err == nil {
			if text = strings.TrimSpace(text); text != "" {
				return text
			}
		}
		if label := firstAttribute(element, "aria-label"); label != "" {
			return label
		}
	}
	return unknownChannel
}

// firstAttribute returns the first non-empty attribute among names.
func firstAttribute(element playwright.ElementHandle, names ...string) string {
	for _, name := range names {
		value, err := element.GetAttribute(name)
		if err != nil {
			continue
		}
		if value = strings.TrimSpace(value); value != "" {
			return value
		}
	}
	return ""
}
