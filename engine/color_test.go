package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"stylistapi/models"
)

func TestColorMatchSelfIsPerfect(t *testing.T) {
	for _, c := range []models.RGB{
		{200, 30, 40},
		{10, 120, 250},
		{255, 0, 128},
	} {
		assert.Equal(t, 1.0, ColorMatch(c, c))
	}
}

func TestColorMatchSymmetry(t *testing.T) {
	pairs := [][2]models.RGB{
		{{200, 30, 40}, {10, 120, 250}},
		{{255, 0, 0}, {0, 0, 255}},
		{{17, 90, 200}, {180, 44, 12}},
	}
	for _, p := range pairs {
		assert.Equal(t, ColorMatch(p[0], p[1]), ColorMatch(p[1], p[0]))
	}
}

func TestColorMatchNeutralDominates(t *testing.T) {
	black := models.RGB{0, 0, 0}
	white := models.RGB{255, 255, 255}
	gray := models.RGB{120, 125, 130}
	red := models.RGB{230, 20, 20}
	blue := models.RGB{20, 20, 230}

	assert.Equal(t, 1.0, ColorMatch(black, red))
	assert.Equal(t, 1.0, ColorMatch(white, blue))
	assert.Equal(t, 1.0, ColorMatch(gray, red))
	// a clashing non-neutral pair scores strictly below any neutral pairing
	assert.Less(t, ColorMatch(red, blue), 1.0)
}

func TestColorMatchMalformedTreatedAsNeutral(t *testing.T) {
	red := models.RGB{230, 20, 20}
	assert.Equal(t, 1.0, ColorMatch(nil, red))
	assert.Equal(t, 1.0, ColorMatch(models.RGB{1, 2}, red))
	assert.Equal(t, 1.0, ColorMatch(models.RGB{1, 2, 3, 4}, red))
}

func TestIsNeutral(t *testing.T) {
	assert.True(t, IsNeutral(models.RGB{0, 0, 0}))
	assert.True(t, IsNeutral(models.RGB{250, 245, 240}))
	assert.True(t, IsNeutral(nil))
	assert.False(t, IsNeutral(models.RGB{230, 20, 20}))
	// only adjacent channels are compared, so a slow ramp still counts
	assert.True(t, IsNeutral(models.RGB{0, 14, 28}))
}

func TestAccessoryColorMatchBonusCapped(t *testing.T) {
	black := models.RGB{0, 0, 0}
	charcoal := models.RGB{20, 22, 25}
	red := models.RGB{230, 20, 20}

	// neutral-vs-neutral: near-perfect distance plus bonus, capped at 1.0
	assert.Equal(t, 1.0, AccessoryColorMatch(black, charcoal))
	// malformed color gets only the neutrality bonus
	assert.InDelta(t, AccessoryNeutralBonus, AccessoryColorMatch(nil, red), 1e-9)
	// neutral against a strong color: bonus on top of the distance score
	plain := distanceScore(black, red)
	assert.InDelta(t, plain+AccessoryNeutralBonus, AccessoryColorMatch(black, red), 1e-9)
	// non-neutral pair gets no bonus at all
	blue := models.RGB{20, 20, 230}
	assert.Equal(t, distanceScore(red, blue), AccessoryColorMatch(red, blue))
}

func TestAccentScore(t *testing.T) {
	top := models.WardrobeItem{
		DominantColor: models.RGB{230, 20, 20},
		Colors:        models.ColorList{{230, 20, 20}, {20, 20, 230}},
	}
	bottom := models.WardrobeItem{
		DominantColor: models.RGB{20, 20, 230},
		Colors:        models.ColorList{{20, 20, 230}},
	}
	// top accent is an exact match for the bottom dominant
	assert.Equal(t, 1.0, AccentScore(top, bottom))

	// no accents anywhere
	plainTop := models.WardrobeItem{DominantColor: models.RGB{230, 20, 20}}
	plainBottom := models.WardrobeItem{DominantColor: models.RGB{20, 20, 230}}
	assert.Equal(t, 0.0, AccentScore(plainTop, plainBottom))
}
