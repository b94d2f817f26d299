package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"

	"github.com/dgraph-io/ristretto"
	"github.com/eko/gocache/lib/v4/cache"
	"github.com/eko/gocache/lib/v4/store"
	ristretto_store "github.com/eko/gocache/store/ristretto/v4"
	"github.com/getsentry/sentry-go"
)

// Weather barely moves within this window, and the recommendation screen
// polls on every open.
const weatherCacheTTL = 10 * time.Minute

const defaultCity = "Baku"

// WeatherInfo is the normalized weather snapshot handed to scoring.
// Type is always one of sunny, rainy, cloudy, hazy, normal.
type WeatherInfo struct {
	City        string  `json:"city"`
	Temperature float64 `json:"temperature"`
	Label       string  `json:"weather"`
	Type        string  `json:"weather_type"`
}

type WeatherServiceProvider interface {
	CurrentWeather(ctx context.Context, city string) (WeatherInfo, error)
}

// WeatherService fetches current conditions from OpenWeather and caches
// them per city so a burst of recommendation requests costs one upstream
// call.
type WeatherService struct {
	cache *cache.LoadableCache[WeatherInfo]
}

type openWeatherResponse struct {
	Weather []struct {
		Main        string `json:"main"`
		Description string `json:"description"`
	} `json:"weather"`
	Main struct {
		Temp float64 `json:"temp"`
	} `json:"main"`
	Name string `json:"name"`
}

func NewWeatherService() (*WeatherService, error) {
	ristrettoCache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 1e4,
		MaxCost:     1 << 20,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create ristretto cache: %w", err)
	}

	ristrettoStore := ristretto_store.NewRistretto(ristrettoCache)

	loadFunction := func(ctx context.Context, key any) (WeatherInfo, []store.Option, error) {
		city, ok := key.(string)
		if !ok {
			return WeatherInfo{}, nil, fmt.Errorf("invalid key type provided to weather cache: expected string, got %T", key)
		}

		log.Printf("CACHE MISS for city: %s. Fetching weather.", city)
		info, err := fetchCurrentWeather(ctx, city)
		return info, []store.Option{store.WithExpiration(weatherCacheTTL)}, err
	}

	loadableCache := cache.NewLoadable[WeatherInfo](
		loadFunction,
		cache.New[WeatherInfo](ristrettoStore),
	)
	return &WeatherService{cache: loadableCache}, nil
}

// CurrentWeather never fails the recommendation flow: an upstream outage
// degrades to a sunny default instead of an error.
func (s *WeatherService) CurrentWeather(ctx context.Context, city string) (WeatherInfo, error) {
	if city == "" {
		city = defaultCity
	}
	info, err := s.cache.Get(ctx, city)
	if err != nil {
		sentry.CaptureException(fmt.Errorf("weather fetch failed for %s: %w", city, err))
		fmt.Println("Weather fetch failed, using sunny fallback:", err)
		return WeatherInfo{City: city, Temperature: 25, Label: "Clear", Type: "sunny"}, nil
	}
	return info, nil
}

func fetchCurrentWeather(ctx context.Context, city string) (WeatherInfo, error) {
	apiKey := GetEnv("OPENWEATHER_API_KEY", "")
	if apiKey == "" {
		return WeatherInfo{}, fmt.Errorf("OPENWEATHER_API_KEY is not set")
	}

	endpoint := fmt.Sprintf(
		"https://api.openweathermap.org/data/2.5/weather?q=%s&appid=%s&units=metric",
		url.QueryEscape(city), apiKey,
	)
	req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		return WeatherInfo{}, err
	}

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return WeatherInfo{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return WeatherInfo{}, fmt.Errorf("openweather returned %d: %s", resp.StatusCode, string(body))
	}

	var parsed openWeatherResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return WeatherInfo{}, fmt.Errorf("failed to decode weather response: %v", err)
	}
	if len(parsed.Weather) == 0 {
		return WeatherInfo{}, fmt.Errorf("weather response for %s has no conditions", city)
	}

	label := parsed.Weather[0].Main
	return WeatherInfo{
		City:        parsed.Name,
		Temperature: parsed.Main.Temp,
		Label:       label,
		Type:        NormalizeWeatherType(label),
	}, nil
}

// NormalizeWeatherType buckets the OpenWeather condition group into the
// fixed vocabulary scoring understands.
func NormalizeWeatherType(label string) string {
	switch label {
	case "Clear":
		return "sunny"
	case "Rain", "Drizzle", "Thunderstorm":
		return "rainy"
	case "Clouds":
		return "cloudy"
	case "Haze", "Mist", "Fog", "Smoke", "Dust", "Sand", "Ash":
		return "hazy"
	}
	return "normal"
}
