package scoring

import (
	"fmt"
	"regexp"
	"strconv"
)

// firstInteger matches the first integer anywhere in the reply, tolerating
// surrounding prose like "I would rate this an 8 out of 10."
var firstInteger = regexp.MustCompile(`-?\d+`)

// ParseScore extracts the score from a model reply.
//
// The first integer found in the text is taken as the answer. Values outside
// 1..10 are rejected rather than clamped, so a garbled reply can never
// masquerade as a valid decision input.
func ParseScore(reply string) (int, error) {
	match := firstInteger.FindString(reply)
	if match == "" {
		return 0, fmt.Errorf("no integer found in reply %q", truncate(reply, 80))
	}

	value, err := strconv.Atoi(match)
	if err != nil {
		return 0, fmt.Errorf("failed to parse %q as integer: %w", match, err)
	}

	if value < 1 || value > 10 {
		return 0, fmt.Errorf("score %d outside valid range 1-10", value)
	}

	return value, nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
