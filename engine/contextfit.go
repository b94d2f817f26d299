package engine

import "stylistapi/models"

// Context is the per-request recommendation context. City, Temperature and
// Weather are passthrough display data; only Occasion and WeatherType feed
// the scoring.
type Context struct {
	Occasion    string  `json:"occasion"`
	City        string  `json:"city"`
	Temperature float64 `json:"temperature"`
	Weather     string  `json:"weather"`
	WeatherType string  `json:"weather_type"` // sunny, rainy, cloudy, hazy, normal
}

var occasionStyles = map[string]string{
	models.OccasionCasual:      models.StyleCasual,
	models.OccasionOffice:      models.StyleFormal,
	models.OccasionParty:       models.StyleParty,
	models.OccasionTraditional: models.StyleTraditional,
}

// StyleForOccasion maps a request occasion to the wardrobe style it calls for.
func StyleForOccasion(occasion string) string {
	if style, ok := occasionStyles[occasion]; ok {
		return style
	}
	return models.StyleCasual
}

// OccasionFit heavily penalizes a stylistically mismatched item without
// eliminating it, so ranking degrades gracefully on sparse wardrobes.
func OccasionFit(item models.WardrobeItem, occasion string) float64 {
	if item.Style == StyleForOccasion(occasion) {
		return 1.0
	}
	return OccasionMismatchFloor
}

// WeatherFit is a fixed comfort prior applied uniformly to the outfit.
// Garment-level rain rules live in the extras selectors instead.
func WeatherFit(weatherType string) float64 {
	switch weatherType {
	case "rainy":
		return WeatherFitRainy
	case "sunny":
		return WeatherFitSunny
	}
	return WeatherFitDefault
}
