package feed

import (
	"context"
	"math/rand"
	"time"

	"github.com/playwright-community/playwright-go"

	"github.com/feedwise/feedwise/pkg/browser"
	"github.com/feedwise/feedwise/pkg/logging"
	"github.com/feedwise/feedwise/pkg/types"
)

// Clicking into a video mutates the page, so like flows locate their controls
// on the watch page rather than the card.
var (
	clickableTitleSelectors = []string{
		"#video-title",
		"h3 a",
		"a#video-title-link",
	}

	likeButtonSelectors = []string{
		"#segmented-like-button button",
		"ytd-toggle-button-renderer:first-child button",
		"button[aria-label*='like']",
	}

	saveButtonSelectors = []string{
		"button[aria-label='Save to playlist']",
		"button[aria-label*='Save']",
	}

	cardMenuSelectors = []string{
		"button[aria-label='Action menu']",
		"button[aria-label*='More actions']",
		"ytd-menu-renderer button",
	}

	notInterestedSelectors = []string{
		"text=Not interested",
		"text=Don't recommend channel",
	}
)

const (
	controlTimeout = 5000.0
	menuTimeout    = 3000.0

	watchSettle = 3 * time.Second
	microSettle = time.Second
)

// Executor applies decisions to feed items via the live page.
//
// Every action verifies its control exists and is interactable before
// clicking; a missing control is a recoverable ActionError, not a crash.
// After each real action the executor pauses for a randomized delay so the
// account's interaction pattern stays human-paced.
type Executor struct {
	session  *browser.Session
	delayMin time.Duration
	delayMax time.Duration
	logger   *logging.Logger
	rng      *rand.Rand
}

// NewExecutor creates an executor with the given inter-action delay bounds.
func NewExecutor(session *browser.Session, delayMin, delayMax time.Duration, logger *logging.Logger) *Executor {
	if delayMax < delayMin {
		delayMax = delayMin
	}
	return &Executor{
		session:  session,
		delayMin: delayMin,
		delayMax: delayMax,
		logger:   logger,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Apply performs the decided action on the item.
//
// ActionNone succeeds trivially and touches nothing, so applying it any
// number of times leaves remote state unchanged. Other actions return an
// ActionError on recoverable failure.
func (x *Executor) Apply(ctx context.Context, item types.FeedItem, decision types.Decision) error {
	var err error
	switch decision.Action {
	case types.ActionNone:
		return nil
	case types.ActionLike:
		err = x.like(ctx, item, false)
	case types.ActionLikeStrong:
		err = x.like(ctx, item, true)
	case types.ActionNotInterested:
		err = x.notInterested(ctx, item)
	default:
		return &ActionError{Action: decision.Action, Reason: "unknown action"}
	}
	if err != nil {
		return err
	}

	return x.pause(ctx)
}

// like opens the video from its card and presses the like control. When
// strong is set it additionally saves the video to Watch Later as a
// reinforcing signal. Both steps check current control state first, so a
// retry never un-likes or un-saves.
func (x *Executor) like(ctx context.Context, item types.FeedItem, strong bool) error {
	action := types.ActionLike
	if strong {
		action = types.ActionLikeStrong
	}

	titleLink := x.findInCard(item.Element, clickableTitleSelectors)
	if titleLink == nil {
		return &ActionError{Action: action, Reason: "title link not found in card"}
	}
	if err := titleLink.Click(); err != nil {
		return &ActionError{Action: action, Reason: "failed to open video", Cause: err}
	}
	if err := x.session.Settle(ctx, watchSettle); err != nil {
		return err
	}

	likeButton := x.waitForAny(likeButtonSelectors, controlTimeout)
	if likeButton == nil {
		x.returnToFeed(ctx)
		return &ActionError{Action: action, Reason: "like button not found on watch page"}
	}

	if pressed, _ := likeButton.GetAttribute("aria-pressed"); pressed == "true" {
		x.logger.Debugf("already liked: %s", item.Title)
	} else if err := likeButton.Click(); err != nil {
		x.returnToFeed(ctx)
		return &ActionError{Action: action, Reason: "failed to click like button", Cause: err}
	}

	if strong {
		// Best effort: the like has already landed, so a failed save is
		// only logged.
		if err := x.saveToWatchLater(ctx); err != nil {
			x.logger.Warnf("reinforcing save failed for %q: %v", item.Title, err)
		}
	}

	x.logger.Infof("applied %s to %q", action, item.Title)
	return x.returnToFeed(ctx)
}

// saveToWatchLater adds the currently open video to Watch Later, skipping the
// toggle when it is already saved.
func (x *Executor) saveToWatchLater(ctx context.Context) error {
	saveButton := x.waitForAny(saveButtonSelectors, menuTimeout)
	if saveButton == nil {
		return &ActionError{Action: types.ActionLikeStrong, Reason: "save button not found"}
	}
	if err := saveButton.Click(); err != nil {
		return &ActionError{Action: types.ActionLikeStrong, Reason: "failed to open save dialog", Cause: err}
	}
	if err := x.session.Settle(ctx, microSettle); err != nil {
		return err
	}

	page := x.session.Page()
	checkbox, err := page.WaitForSelector("tp-yt-paper-checkbox[aria-label*='Watch later']", playwright.PageWaitForSelectorOptions{
		Timeout: playwright.Float(menuTimeout),
	})
	if err != nil || checkbox == nil {
		page.Keyboard().Press("Escape")
		return &ActionError{Action: types.ActionLikeStrong, Reason: "watch later option not found", Cause: err}
	}

	if checked, _ := checkbox.GetAttribute("aria-checked"); checked != "true" {
		if err := checkbox.Click(); err != nil {
			page.Keyboard().Press("Escape")
			return &ActionError{Action: types.ActionLikeStrong, Reason: "failed to toggle watch later", Cause: err}
		}
	}

	return page.Keyboard().Press("Escape")
}

// notInterested opens the card's action menu and dismisses the item.
func (x *Executor) notInterested(ctx context.Context, item types.FeedItem) error {
	if err := item.Element.ScrollIntoViewIfNeeded(); err != nil {
		return &ActionError{Action: types.ActionNotInterested, Reason: "failed to scroll card into view", Cause: err}
	}
	if err := x.session.Settle(ctx, microSettle); err != nil {
		return err
	}

	menuButton := x.findInCard(item.Element, cardMenuSelectors)
	if menuButton == nil {
		return &ActionError{Action: types.ActionNotInterested, Reason: "action menu not found in card"}
	}
	if err := menuButton.Click(); err != nil {
		return &ActionError{Action: types.ActionNotInterested, Reason: "failed to open action menu", Cause: err}
	}
	if err := x.session.Settle(ctx, microSettle); err != nil {
		return err
	}

	menuItem := x.waitForAny(notInterestedSelectors, menuTimeout)
	if menuItem == nil {
		// Close the dangling menu so the next item starts clean.
		x.session.Page().Keyboard().Press("Escape")
		return &ActionError{Action: types.ActionNotInterested, Reason: "not-interested option not found in menu"}
	}
	if err := menuItem.Click(); err != nil {
		x.session.Page().Keyboard().Press("Escape")
		return &ActionError{Action: types.ActionNotInterested, Reason: "failed to click not-interested", Cause: err}
	}

	x.logger.Infof("applied %s to %q", types.ActionNotInterested, item.Title)
	return nil
}

// findInCard returns the first visible element matching any selector inside
// the card, or nil.
func (x *Executor) findInCard(card playwright.ElementHandle, selectors []string) playwright.ElementHandle {
	for _, selector := range selectors {
		element, err := card.QuerySelector(selector)
		if err != nil || element == nil {
			continue
		}
		if visible, err := element.IsVisible(); err == nil && visible {
			return element
		}
	}
	return nil
}

// waitForAny waits for the first selector to become visible on the page, or
// nil when none appears within the timeout.
func (x *Executor) waitForAny(selectors []string, timeout float64) playwright.ElementHandle {
	page := x.session.Page()
	state := playwright.WaitForSelectorState("visible")
	for _, selector := range selectors {
		element, err := page.WaitForSelector(selector, playwright.PageWaitForSelectorOptions{
			State:   &state,
			Timeout: playwright.Float(timeout),
		})
		if err == nil && element != nil {
			return element
		}
	}
	return nil
}

// returnToFeed navigates back to the feed after a watch-page detour.
func (x *Executor) returnToFeed(ctx context.Context) error {
	if err := x.session.GoBack(); err != nil {
		return &SessionError{Cause: err}
	}
	return x.session.Settle(ctx, microSettle)
}

// pause sleeps for a random duration within the configured bounds.
func (x *Executor) pause(ctx context.Context) error {
	delay := x.delayMin
	if span := x.delayMax - x.delayMin; span > 0 {
		delay += time.Duration(x.rng.Int63n(int64(span)))
	}
	return x.session.Settle(ctx, delay)
}
