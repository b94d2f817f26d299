package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stylistapi/models"
)

func strPtr(s string) *string { return &s }

func blackOutfit() RankedOutfit {
	top := casualItem("black tee", models.RGB{0, 0, 0})
	bottom := casualItem("black jeans", models.RGB{0, 0, 0})
	return RankedOutfit{Top: &top, Bottom: &bottom, Score: 0.83}
}

func TestSelectShoesRainExcludesOpenShoes(t *testing.T) {
	shoes := []models.WardrobeItem{
		{
			Name:          "black sandals",
			Style:         models.StyleCasual,
			ItemType:      strPtr("open"),
			Tags:          []string{"open"},
			DominantColor: models.RGB{0, 0, 0}, // perfect color match, still excluded
		},
	}
	ctx := Context{Occasion: models.OccasionCasual, WeatherType: "rainy"}

	assert.Nil(t, SelectShoes(shoes, blackOutfit(), ctx, DefaultExtras))

	// same pool is fine on a sunny day
	ctx.WeatherType = "sunny"
	picked := SelectShoes(shoes, blackOutfit(), ctx, DefaultExtras)
	require.NotNil(t, picked)
	assert.Equal(t, "black sandals", picked.Name)
}

func TestSelectShoesPrefersNeutralAndOccasionMatch(t *testing.T) {
	shoes := []models.WardrobeItem{
		{Name: "red heels", Style: models.StyleParty, DominantColor: models.RGB{220, 20, 40}},
		{Name: "white sneakers", Style: models.StyleCasual, DominantColor: models.RGB{250, 250, 250}},
	}
	ctx := Context{Occasion: models.OccasionCasual, WeatherType: "sunny"}

	picked := SelectShoes(shoes, blackOutfit(), ctx, DefaultExtras)
	require.NotNil(t, picked)
	assert.Equal(t, "white sneakers", picked.Name)
}

func TestSelectShoesPreferenceNudgeBreaksTies(t *testing.T) {
	shoes := []models.WardrobeItem{
		{Name: "old boots", Style: models.StyleCasual, DominantColor: models.RGB{0, 0, 0}, PreferenceScore: 0},
		{Name: "favorite boots", Style: models.StyleCasual, DominantColor: models.RGB{0, 0, 0}, PreferenceScore: 3},
	}
	ctx := Context{Occasion: models.OccasionCasual, WeatherType: "normal"}

	picked := SelectShoes(shoes, blackOutfit(), ctx, DefaultExtras)
	require.NotNil(t, picked)
	assert.Equal(t, "favorite boots", picked.Name)
}

func TestSelectShoesEmptyPool(t *testing.T) {
	ctx := Context{Occasion: models.OccasionCasual, WeatherType: "sunny"}
	assert.Nil(t, SelectShoes(nil, blackOutfit(), ctx, DefaultExtras))
}

func TestSelectAccessoriesOccasionTable(t *testing.T) {
	accessories := []models.WardrobeItem{
		{Name: "steel watch", ItemType: strPtr("watch"), DominantColor: models.RGB{190, 190, 195}},
		{Name: "leather belt", ItemType: strPtr("belt"), Material: strPtr("leather"), DominantColor: models.RGB{90, 50, 20}},
		{Name: "snapback", ItemType: strPtr("cap"), DominantColor: models.RGB{20, 20, 20}},
	}

	office := Context{Occasion: models.OccasionOffice, WeatherType: "sunny"}
	picked := SelectAccessories(accessories, blackOutfit(), office, 0, DefaultExtras)
	require.Len(t, picked, 2)
	for _, item := range picked {
		assert.NotEqual(t, "snapback", item.Name) // caps are not office accessories
	}

	// traditional permits no generic accessories at all
	traditional := Context{Occasion: models.OccasionTraditional, WeatherType: "sunny"}
	assert.Empty(t, SelectAccessories(accessories, blackOutfit(), traditional, 0, DefaultExtras))
}

func TestSelectAccessoriesRainExcludesLeather(t *testing.T) {
	accessories := []models.WardrobeItem{
		{Name: "leather belt", ItemType: strPtr("belt"), Material: strPtr("leather"), DominantColor: models.RGB{90, 50, 20}},
		{Name: "steel watch", ItemType: strPtr("watch"), DominantColor: models.RGB{190, 190, 195}},
	}
	ctx := Context{Occasion: models.OccasionOffice, WeatherType: "rainy"}

	picked := SelectAccessories(accessories, blackOutfit(), ctx, 0, DefaultExtras)
	require.Len(t, picked, 1)
	assert.Equal(t, "steel watch", picked[0].Name)
}

func TestSelectAccessoriesCapsList(t *testing.T) {
	var accessories []models.WardrobeItem
	for i := 0; i < 5; i++ {
		accessories = append(accessories, models.WardrobeItem{
			Name:          "watch",
			ItemType:      strPtr("watch"),
			DominantColor: models.RGB{40 * i, 40 * i, 40 * i},
		})
	}
	ctx := Context{Occasion: models.OccasionCasual, WeatherType: "sunny"}
	picked := SelectAccessories(accessories, blackOutfit(), ctx, 0, DefaultExtras)
	assert.Len(t, picked, DefaultExtrasLimit)
}

func TestSelectJewelleryOccasionGate(t *testing.T) {
	jewellery := []models.WardrobeItem{
		{Name: "gold chain", ItemType: strPtr("chain"), DominantColor: models.RGB{212, 175, 55}},
		{Name: "silver ring", ItemType: strPtr("ring"), DominantColor: models.RGB{192, 192, 198}},
		{Name: "pearl necklace", ItemType: strPtr("necklace"), DominantColor: models.RGB{240, 238, 230}},
	}

	casual := Context{Occasion: models.OccasionCasual, WeatherType: "sunny"}
	assert.Nil(t, SelectJewellery(jewellery, blackOutfit(), casual, 0, DefaultExtras))

	party := Context{Occasion: models.OccasionParty, WeatherType: "sunny"}
	picked := SelectJewellery(jewellery, blackOutfit(), party, 0, DefaultExtras)
	require.Len(t, picked, 2)
	for _, item := range picked {
		assert.NotEqual(t, "pearl necklace", item.Name) // necklaces are traditional-only
	}

	traditional := Context{Occasion: models.OccasionTraditional, WeatherType: "sunny"}
	picked = SelectJewellery(jewellery, blackOutfit(), traditional, 0, DefaultExtras)
	require.Len(t, picked, 1)
	assert.Equal(t, "pearl necklace", picked[0].Name)
}
