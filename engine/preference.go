package engine

import (
	"time"

	"stylistapi/models"
)

// PreferenceFit turns an item's stored learning state into a desirability
// score. The base term encodes explicit like/dislike feedback; the usage and
// recency penalties encourage wardrobe rotation instead of repeating the
// same favorite.
func PreferenceFit(item models.WardrobeItem, now time.Time) float64 {
	base := (float64(item.PreferenceScore) + 5) / 10
	if base < 0 {
		base = 0
	}
	if base > 1 {
		base = 1
	}

	usagePenalty := float64(item.UsageCount) * UsagePenaltyStep
	if usagePenalty > UsagePenaltyCap {
		usagePenalty = UsagePenaltyCap
	}
	score := base - usagePenalty

	if item.LastUsed != nil && now.Sub(*item.LastUsed) < RecencyWindow {
		score -= RecencyPenalty
	}

	if score < 0 {
		return 0
	}
	return score
}
