package scoring

import (
	"fmt"

	"github.com/feedwise/feedwise/pkg/types"
)

// scorePromptTemplate asks for a bare 1-10 rating of one feed item. The
// rubric rewards premium course material shared for free, since surfacing it
// is the whole point of reshaping the feed.
const scorePromptTemplate = `Rate this YouTube content from 1-10 for educational/productivity value:
Title: %s
Channel: %s

SPECIAL BONUS SCORING:
- Premium course content available free on YouTube: 10/10
- Paid tutorial/masterclass content shared free: 9-10/10
- Professional skills training normally behind paywall: 9-10/10

REGULAR SCORING:
- Educational tutorials, documentaries, skill-building: 7-8/10
- News, tech reviews with learning value: 6-7/10
- Entertainment with some educational aspect: 5-6/10
- Clickbait, drama, mindless content: 1-4/10

Look for keywords like: "full course", "masterclass", "complete tutorial", "premium", "paid course free", "bootcamp", "certification"

Respond with just a number 1-10.`

// BuildPrompt renders the scoring prompt for one feed item.
func BuildPrompt(item types.FeedItem) string {
	return fmt.Sprintf(scorePromptTemplate, item.Title, item.Channel)
}
