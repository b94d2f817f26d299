package engine

import (
	"sort"

	"stylistapi/models"
)

// Allowed accessory subtypes per occasion. Overridable table, not scattered
// string literals, so product tweaks stay in one place.
var AccessoryRules = map[string][]string{
	models.OccasionCasual:      {"watch", "cap", "sunglasses"},
	models.OccasionOffice:      {"watch", "belt"},
	models.OccasionParty:       {"watch", "bracelet"},
	models.OccasionTraditional: {},
}

// Jewellery only comes out for dressed-up occasions; any occasion absent
// from this table gets none at all.
var JewelleryRules = map[string][]string{
	models.OccasionParty:       {"ring", "chain"},
	models.OccasionTraditional: {"necklace", "earrings", "bangles"},
}

// DefaultExtrasLimit caps the accessory and jewellery lists.
const DefaultExtrasLimit = 2

// SelectShoes picks the single best shoe for an already chosen outfit.
// Rain categorically excludes open shoes before any scoring; color, style
// and preference only reorder what survives. Returns nil when nothing is
// eligible.
func SelectShoes(shoes []models.WardrobeItem, outfit RankedOutfit, ctx Context, w ExtrasWeights) *models.WardrobeItem {
	var selected *models.WardrobeItem
	best := 0.0
	for i := range shoes {
		shoe := &shoes[i]
		if ctx.WeatherType == "rainy" && shoe.HasTag("open") {
			continue
		}
		score := ColorMatch(outfit.DominantColor(), shoe.DominantColor)
		if IsNeutral(shoe.DominantColor) {
			score += w.NeutralBonus
		}
		if shoe.Style == ctx.Occasion {
			score += w.OccasionBonus
		}
		score += w.PreferenceNudge * float64(shoe.PreferenceScore)
		if selected == nil || score > best {
			selected = shoe
			best = score
		}
	}
	return selected
}

// SelectAccessories returns up to limit accessories whose subtype the
// occasion permits, ordered by score. Rain excludes leather pieces.
func SelectAccessories(accessories []models.WardrobeItem, outfit RankedOutfit, ctx Context, limit int, w ExtrasWeights) []models.WardrobeItem {
	return selectExtras(accessories, outfit, ctx, AccessoryRules[ctx.Occasion], limit, w)
}

// SelectJewellery mirrors SelectAccessories but is occasion-gated: only
// party and traditional requests get jewellery, and like accessories it
// always returns a capped list rather than a single item.
func SelectJewellery(jewellery []models.WardrobeItem, outfit RankedOutfit, ctx Context, limit int, w ExtrasWeights) []models.WardrobeItem {
	allowed, ok := JewelleryRules[ctx.Occasion]
	if !ok {
		return nil
	}
	return selectExtras(jewellery, outfit, ctx, allowed, limit, w)
}

type scoredItem struct {
	item  *models.WardrobeItem
	score float64
}

func selectExtras(pool []models.WardrobeItem, outfit RankedOutfit, ctx Context, allowed []string, limit int, w ExtrasWeights) []models.WardrobeItem {
	if len(allowed) == 0 {
		return nil
	}
	if limit <= 0 {
		limit = DefaultExtrasLimit
	}

	scored := make([]scoredItem, 0, len(pool))
	for i := range pool {
		item := &pool[i]
		if item.ItemType == nil || !containsString(allowed, *item.ItemType) {
			continue
		}
		if ctx.WeatherType == "rainy" && item.HasTag("leather") {
			continue
		}
		score := outfitColorScore(item.DominantColor, outfit.Colors())
		if item.Style == ctx.Occasion {
			score += w.OccasionBonus
		}
		score += w.PreferenceNudge * float64(item.PreferenceScore)
		scored = append(scored, scoredItem{item: item, score: score})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].score > scored[j].score
	})
	if len(scored) > limit {
		scored = scored[:limit]
	}
	picked := make([]models.WardrobeItem, 0, len(scored))
	for _, s := range scored {
		picked = append(picked, *s.item)
	}
	return picked
}

// outfitColorScore matches an extra against the whole outfit using the
// soft neutral-bonus variant, keeping the best pairing.
func outfitColorScore(c models.RGB, outfitColors []models.RGB) float64 {
	if len(outfitColors) == 0 {
		return AccessoryColorMatch(c, nil)
	}
	best := 0.0
	for _, oc := range outfitColors {
		if s := AccessoryColorMatch(c, oc); s > best {
			best = s
		}
	}
	return best
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
