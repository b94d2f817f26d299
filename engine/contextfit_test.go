package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"stylistapi/models"
)

func TestStyleForOccasion(t *testing.T) {
	assert.Equal(t, models.StyleCasual, StyleForOccasion(models.OccasionCasual))
	assert.Equal(t, models.StyleFormal, StyleForOccasion(models.OccasionOffice))
	assert.Equal(t, models.StyleParty, StyleForOccasion(models.OccasionParty))
	assert.Equal(t, models.StyleTraditional, StyleForOccasion(models.OccasionTraditional))
	// unknown occasions degrade to casual
	assert.Equal(t, models.StyleCasual, StyleForOccasion("gym"))
}

func TestOccasionFit(t *testing.T) {
	formalShirt := models.WardrobeItem{Style: models.StyleFormal}
	assert.Equal(t, 1.0, OccasionFit(formalShirt, models.OccasionOffice))
	assert.Equal(t, OccasionMismatchFloor, OccasionFit(formalShirt, models.OccasionParty))
}

func TestWeatherFit(t *testing.T) {
	assert.Equal(t, WeatherFitRainy, WeatherFit("rainy"))
	assert.Equal(t, WeatherFitSunny, WeatherFit("sunny"))
	assert.Equal(t, WeatherFitDefault, WeatherFit("cloudy"))
	assert.Equal(t, WeatherFitDefault, WeatherFit("hazy"))
	assert.Equal(t, WeatherFitDefault, WeatherFit("normal"))
	assert.Equal(t, WeatherFitDefault, WeatherFit(""))
}
