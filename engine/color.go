package engine

import (
	"math"

	"stylistapi/models"
)

// IsNeutral reports whether a color sits in the gray/black/white family.
// Malformed colors (anything but exactly 3 channels) are treated as neutral
// so bad upstream data never aborts ranking.
func IsNeutral(c models.RGB) bool {
	if len(c) != 3 {
		return true
	}
	return abs(c[0]-c[1]) < NeutralChannelDelta && abs(c[1]-c[2]) < NeutralChannelDelta
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// distance is the Euclidean distance between two colors with channels
// normalized to [0,1]. Both inputs must be well-formed.
func distance(a, b models.RGB) float64 {
	var sum float64
	for i := 0; i < 3; i++ {
		d := float64(a[i])/255 - float64(b[i])/255
		sum += d * d
	}
	return math.Sqrt(sum)
}

func distanceScore(a, b models.RGB) float64 {
	return math.Max(0, 1-distance(a, b))
}

// ColorMatch scores two colors in [0,1]. Neutral colors are universally
// compatible and short-circuit to a perfect score.
func ColorMatch(a, b models.RGB) float64 {
	if IsNeutral(a) || IsNeutral(b) {
		return 1.0
	}
	return distanceScore(a, b)
}

// AccessoryColorMatch is the softer variant used for extras: instead of
// short-circuiting, neutrality adds a flat bonus on top of the distance
// score, capped at 1.0, so a near-neutral item still benefits from partial
// distance matching.
func AccessoryColorMatch(a, b models.RGB) float64 {
	var score float64
	if len(a) == 3 && len(b) == 3 {
		score = distanceScore(a, b)
	}
	if IsNeutral(a) || IsNeutral(b) {
		score += AccessoryNeutralBonus
	}
	return math.Min(1.0, score)
}

// AccentScore scores each side's secondary color against the counterpart's
// dominant color and returns the better of the two directions, or 0 when
// neither side exposes an accent.
func AccentScore(top, bottom models.WardrobeItem) float64 {
	best := 0.0
	if len(top.Colors) >= 2 && len(top.Colors[1]) == 3 && len(bottom.DominantColor) == 3 {
		if s := distanceScore(top.Colors[1], bottom.DominantColor); s > best {
			best = s
		}
	}
	if len(bottom.Colors) >= 2 && len(bottom.Colors[1]) == 3 && len(top.DominantColor) == 3 {
		if s := distanceScore(bottom.Colors[1], top.DominantColor); s > best {
			best = s
		}
	}
	return best
}
