package types

// Tier is the quality bucket derived from a numeric score.
type Tier string

const (
	// TierElite is premium-grade content (default 9-10)
	TierElite Tier = "elite"

	// TierHigh is high-quality content (default 7-8)
	TierHigh Tier = "high"

	// TierNeutral is content that warrants no action (default 5-6)
	TierNeutral Tier = "neutral"

	// TierLow is low-quality content (default 1-4)
	TierLow Tier = "low"

	// TierUnknown is assigned when scoring failed
	TierUnknown Tier = "unknown"
)

// Action is the feed-shaping action applied to an item.
type Action string

const (
	// ActionLikeStrong likes the video and adds a reinforcing signal
	ActionLikeStrong Action = "like_strong"

	// ActionLike likes the video
	ActionLike Action = "like"

	// ActionNone leaves the item untouched
	ActionNone Action = "none"

	// ActionNotInterested marks the item as not interesting
	ActionNotInterested Action = "not_interested"
)

// Decision maps a score result to an action tier. It is a pure derivation
// with no independent state.
type Decision struct {
	Tier   Tier
	Action Action
}
