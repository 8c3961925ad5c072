// Package policy maps score results to feed-shaping decisions.
//
// The mapping is a pure function over configurable thresholds:
//
//	elite_min..10   -> ELITE   -> like + reinforcing signal
//	high_min..      -> HIGH    -> like
//	neutral_min..   -> NEUTRAL -> no action
//	1..             -> LOW     -> not interested
//
// A failed score always decides NONE: the policy never acts on unknown
// quality.
package policy

import (
	"fmt"

	"github.com/feedwise/feedwise/pkg/types"
)

// Thresholds holds the lower bound of each score tier.
type Thresholds struct {
	// EliteMin is the lowest score treated as ELITE
	EliteMin int `yaml:"elite_min"`

	// HighMin is the lowest score treated as HIGH
	HighMin int `yaml:"high_min"`

	// NeutralMin is the lowest score treated as NEUTRAL; everything below
	// is LOW
	NeutralMin int `yaml:"neutral_min"`
}

// DefaultThresholds returns the standard tier boundaries.
func DefaultThresholds() Thresholds {
	return Thresholds{
		EliteMin:   9,
		HighMin:    7,
		NeutralMin: 5,
	}
}

// Validate checks that the thresholds describe four non-empty, ordered tiers
// within the 1..10 score range.
func (t Thresholds) Validate() error {
	if t.EliteMin > 10 {
		return fmt.Errorf("elite_min must be at most 10, got %d", t.EliteMin)
	}
	if t.NeutralMin < 2 {
		return fmt.Errorf("neutral_min must be at least 2 to leave room for the LOW tier, got %d", t.NeutralMin)
	}
	if t.EliteMin <= t.HighMin {
		return fmt.Errorf("elite_min (%d) must be greater than high_min (%d)", t.EliteMin, t.HighMin)
	}
	if t.HighMin <= t.NeutralMin {
		return fmt.Errorf("high_min (%d) must be greater than neutral_min (%d)", t.HighMin, t.NeutralMin)
	}
	return nil
}

// Decide maps a score result to a decision. Pure and deterministic; no I/O.
func Decide(score types.ScoreResult, th Thresholds) types.Decision {
	if !score.Valid {
		// Fail-safe: never act on unknown quality.
		return types.Decision{Tier: types.TierUnknown, Action: types.ActionNone}
	}

	switch {
	case score.Value >= th.EliteMin:
		return types.Decision{Tier: types.TierElite, Action: types.ActionLikeStrong}
	case score.Value >= th.HighMin:
		return types.Decision{Tier: types.TierHigh, Action: types.ActionLike}
	case score.Value >= th.NeutralMin:
		return types.Decision{Tier: types.TierNeutral, Action: types.ActionNone}
	default:
		return types.Decision{Tier: types.TierLow, Action: types.ActionNotInterested}
	}
}
