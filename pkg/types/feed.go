// Package types defines the core data model shared across feedwise
// components: feed items, score results, and decisions.
package types

import (
	"strings"

	"github.com/playwright-community/playwright-go"
)

// FeedItem is a single video entry rendered in the feed's scrollable list.
//
// The Element handle points into live page state and is only valid until the
// next DOM-mutating operation (scroll, action execution). Items are never
// cached across extraction passes; they are re-extracted instead.
type FeedItem struct {
	// Title is the video title as rendered in the feed
	Title string

	// Channel is the channel name, or "Unknown Channel" when not found
	Channel string

	// Element is the live handle to the rendered feed card
	Element playwright.ElementHandle
}

// Key returns the dedupe key for this item within a run.
// Two items with the same title and channel are considered the same video,
// regardless of which extraction pass produced them.
func (i FeedItem) Key() string {
	title := strings.ToLower(strings.TrimSpace(i.Title))
	channel := strings.ToLower(strings.TrimSpace(i.Channel))
	return title + "|" + channel
}
