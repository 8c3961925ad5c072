package feed

import (
	"context"
	"strings"
	"time"

	"github.com/playwright-community/playwright-go"

	"github.com/feedwise/feedwise/pkg/browser"
	"github.com/feedwise/feedwise/pkg/logging"
	"github.com/feedwise/feedwise/pkg/types"
)

var searchBoxSelectors = []string{
	"input#search",
	"input[name='search_query']",
	"#search-input input",
}

// premiumKeywords mark a search result as course-grade content worth seeding
// into the recommendation signal.
var premiumKeywords = []string{
	"full course",
	"complete",
	"masterclass",
	"free course",
	"bootcamp",
	"certification",
	"tutorial series",
}

const (
	searchSettle = 3 * time.Second

	// maxSearchResults bounds how many results are inspected per term
	maxSearchResults = 3
)

// Searcher seeds the recommendation signal by searching for course-grade
// content and liking the best hit. Each term is searched at most once per run.
type Searcher struct {
	session  *browser.Session
	executor *Executor
	feedURL  string
	searched map[string]struct{}
	logger   *logging.Logger
}

// NewSearcher creates a searcher that returns to feedURL after each search.
func NewSearcher(session *browser.Session, executor *Executor, feedURL string, logger *logging.Logger) *Searcher {
	return &Searcher{
		session:  session,
		executor: executor,
		feedURL:  feedURL,
		searched: make(map[string]struct{}),
		logger:   logger,
	}
}

// SeedAll runs SeedTerm for every term, absorbing recoverable failures so one
// bad term never blocks the rest. Fatal session errors abort immediately.
func (s *Searcher) SeedAll(ctx context.Context, terms []string) error {
	for _, term := range terms {
		if err := ctx.Err(); err != nil {
			return nil
		}
		if err := s.SeedTerm(ctx, term); err != nil {
			if IsFatal(err) {
				return err
			}
			s.logger.Warnf("seeding %q failed: %v", term, err)
		}
	}
	return nil
}

// SeedTerm searches for term, likes the first premium-looking result among the
// top hits, and navigates back to the feed. A term already seeded this run is
// skipped.
func (s *Searcher) SeedTerm(ctx context.Context, term string) error {
	key := strings.ToLower(strings.TrimSpace(term))
	if key == "" {
		return nil
	}
	if _, done := s.searched[key]; done {
		s.logger.Debugf("already seeded this run: %q", term)
		return nil
	}
	s.searched[key] = struct{}{}

	if err := s.submitSearch(ctx, term); err != nil {
		return err
	}
	defer s.returnHome(ctx)

	result, title := s.findPremiumResult()
	if result == nil {
		s.logger.Infof("no premium result for %q in top %d", term, maxSearchResults)
		return nil
	}

	item := types.FeedItem{Title: title, Channel: unknownChannel, Element: result}
	decision := types.Decision{Tier: types.TierElite, Action: types.ActionLike}
	if err := s.executor.Apply(ctx, item, decision); err != nil {
		return err
	}

	s.logger.Infof("seeded %q via search term %q", title, term)
	return nil
}

// submitSearch types the term into the search box and submits it.
func (s *Searcher) submitSearch(ctx context.Context, term string) error {
	page := s.session.Page()

	var box playwright.ElementHandle
	for _, selector := range searchBoxSelectors {
		element, err := page.QuerySelector(selector)
		if err != nil || element == nil {
			continue
		}
		if visible, err := element.IsVisible(); err == nil && visible {
			box = element
			break
		}
	}
	if box == nil {
		return &ActionError{Action: types.ActionLike, Reason: "search box not found"}
	}

	if err := box.Click(); err != nil {
		return &ActionError{Action: types.ActionLike, Reason: "failed to focus search box", Cause: err}
	}
	if err := box.Fill(term); err != nil {
		return &ActionError{Action: types.ActionLike, Reason: "failed to type search term", Cause: err}
	}
	if err := box.Press("Enter"); err != nil {
		return &ActionError{Action: types.ActionLike, Reason: "failed to submit search", Cause: err}
	}

	return s.session.Settle(ctx, searchSettle)
}

// findPremiumResult scans the top search results for a premium-keyword title.
func (s *Searcher) findPremiumResult() (playwright.ElementHandle, string) {
	page := s.session.Page()
	results, err := page.QuerySelectorAll("ytd-video-renderer")
	if err != nil {
		return nil, ""
	}
	if len(results) > maxSearchResults {
		results = results[:maxSearchResults]
	}

	for _, result := range results {
		title := resultTitle(result)
		if isPremiumTitle(title) {
			return result, title
		}
	}
	return nil, ""
}

// isPremiumTitle reports whether a title contains any premium keyword.
func isPremiumTitle(title string) bool {
	if title == "" {
		return false
	}
	lower := strings.ToLower(title)
	for _, keyword := range premiumKeywords {
		if strings.Contains(lower, keyword) {
			return true
		}
	}
	return false
}

// resultTitle reads the title off a search result card.
func resultTitle(result playwright.ElementHandle) string {
	for _, selector := range titleSelectors {
		element, err := result.QuerySelector(selector)
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
	return ""
}

// returnHome navigates back to the feed URL after a search detour.
func (s *Searcher) returnHome(ctx context.Context) {
	if err := s.session.Navigate(s.feedURL); err != nil {
		s.logger.Warnf("failed to return to feed after search: %v", err)
		return
	}
	if err := s.session.Settle(ctx, searchSettle); err != nil {
		return
	}
}
