package feed

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsPremiumTitle(t *testing.T) {
	tests := []struct {
		title string
		want  bool
	}{
		{"Rust Full Course for Beginners", true},
		{"The COMPLETE Guide to Kubernetes", true},
		{"Piano Masterclass with examples", true},
		{"Free Course: Machine Learning 2026", true},
		{"Data Engineering Bootcamp Day 1", true},
		{"AWS Certification prep", true},
		{"Go Tutorial Series Part 4", true},
		{"I tried 10 energy drinks", false},
		{"You won't BELIEVE this trick", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			assert.Equal(t, tt.want, isPremiumTitle(tt.title))
		})
	}
}
