package engine

import (
	"sort"
	"time"

	"stylistapi/models"
)

// RankedOutfit is either a top+bottom pair or a single full-body garment.
type RankedOutfit struct {
	Top      *models.WardrobeItem `json:"top,omitempty"`
	Bottom   *models.WardrobeItem `json:"bottom,omitempty"`
	FullBody *models.WardrobeItem `json:"full_body,omitempty"`
	Score    float64              `json:"score"`
}

// DominantColor is the outfit's anchor color for extras matching.
func (o RankedOutfit) DominantColor() models.RGB {
	if o.FullBody != nil {
		return o.FullBody.DominantColor
	}
	if o.Top != nil {
		return o.Top.DominantColor
	}
	return nil
}

// Colors lists every dominant color in the outfit, in top-first order.
func (o RankedOutfit) Colors() []models.RGB {
	var colors []models.RGB
	for _, item := range []*models.WardrobeItem{o.Top, o.Bottom, o.FullBody} {
		if item != nil && len(item.DominantColor) == 3 {
			colors = append(colors, item.DominantColor)
		}
	}
	return colors
}

// PairScore is the weighted combination for a single top/bottom pair.
func PairScore(top, bottom *models.WardrobeItem, ctx Context, w Weights, now time.Time) float64 {
	dominant := ColorMatch(top.DominantColor, bottom.DominantColor)
	accent := AccentScore(*top, *bottom)
	colorScore := DominantColorWeight*dominant + AccentColorWeight*accent

	occasionScore := (OccasionFit(*top, ctx.Occasion) + OccasionFit(*bottom, ctx.Occasion)) / 2
	preferenceScore := (PreferenceFit(*top, now) + PreferenceFit(*bottom, now)) / 2

	return w.Color*colorScore +
		w.Occasion*occasionScore +
		w.Weather*WeatherFit(ctx.WeatherType) +
		w.Preference*preferenceScore
}

// RankOutfits scores the full top x bottom cartesian product, sorts by score
// descending and returns the best `limit` pairs. After sorting, each rank
// gets a tiny decreasing penalty so ties still yield a strict order.
// Returns nil when either pool is empty; the caller decides how to signal
// an insufficient wardrobe.
func RankOutfits(tops, bottoms []models.WardrobeItem, ctx Context, limit int, w Weights) []RankedOutfit {
	if len(tops) == 0 || len(bottoms) == 0 {
		return nil
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	now := time.Now().UTC()

	outfits := make([]RankedOutfit, 0, len(tops)*len(bottoms))
	for i := range tops {
		for j := range bottoms {
			outfits = append(outfits, RankedOutfit{
				Top:    &tops[i],
				Bottom: &bottoms[j],
				Score:  PairScore(&tops[i], &bottoms[j], ctx, w, now),
			})
		}
	}

	sort.SliceStable(outfits, func(i, j int) bool {
		return outfits[i].Score > outfits[j].Score
	})
	if len(outfits) > limit {
		outfits = outfits[:limit]
	}
	for i := range outfits {
		outfits[i].Score -= float64(i) * TieBreakEpsilon
	}
	return outfits
}

// RankFullBody bypasses pair scoring entirely: full-body garments are
// ordered by preference and given fixed rank-based scores.
func RankFullBody(items []models.WardrobeItem, limit int) []RankedOutfit {
	if len(items) == 0 {
		return nil
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	ordered := make([]*models.WardrobeItem, 0, len(items))
	for i := range items {
		ordered = append(ordered, &items[i])
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].PreferenceScore > ordered[j].PreferenceScore
	})
	if len(ordered) > limit {
		ordered = ordered[:limit]
	}

	outfits := make([]RankedOutfit, 0, len(ordered))
	for i, item := range ordered {
		outfits = append(outfits, RankedOutfit{
			FullBody: item,
			Score:    1.0 - FullBodyScoreStep*float64(i),
		})
	}
	return outfits
}
