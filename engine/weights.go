package engine

import "time"

// Weights combines the component scores into the final outfit score.
// Kept as a struct so alternative presets can be wired in without
// touching the ranking code.
type Weights struct {
	Color      float64
	Occasion   float64
	Weather    float64
	Preference float64
}

// DefaultWeights is the production scoring preset.
var DefaultWeights = Weights{Color: 0.4, Occasion: 0.3, Weather: 0.2, Preference: 0.1}

// ExtrasWeights are the additive bonuses used by the shoes/accessory/jewellery
// selectors on top of the color harmony base.
type ExtrasWeights struct {
	NeutralBonus    float64
	OccasionBonus   float64
	PreferenceNudge float64
}

// DefaultExtras is the current selector preset.
var DefaultExtras = ExtrasWeights{NeutralBonus: 0.2, OccasionBonus: 0.2, PreferenceNudge: 0.1}

// LegacyExtras preserves the earlier revision that weighed occasion matches
// heavier for shoes. Kept for behavior comparison only.
var LegacyExtras = ExtrasWeights{NeutralBonus: 0.2, OccasionBonus: 0.5, PreferenceNudge: 0.1}

const (
	// dominant vs accent split inside the color component
	DominantColorWeight = 0.7
	AccentColorWeight   = 0.3

	// a color is neutral when all channels are within this delta
	NeutralChannelDelta = 15

	// flat bonus the accessory color variant adds for neutral colors
	AccessoryNeutralBonus = 0.3

	// mismatched style is penalized, never eliminated
	OccasionMismatchFloor = 0.4

	WeatherFitRainy   = 0.6
	WeatherFitSunny   = 1.0
	WeatherFitDefault = 0.8

	UsagePenaltyStep = 0.02
	UsagePenaltyCap  = 0.2
	RecencyPenalty   = 0.2
	RecencyWindow    = 48 * time.Hour

	// strictly-decreasing per-rank penalty applied after sorting so equal
	// raw scores still produce a reproducible order
	TieBreakEpsilon = 0.001

	// mock score step for the full-body bypass path
	FullBodyScoreStep = 0.1

	DefaultLimit = 3
)
