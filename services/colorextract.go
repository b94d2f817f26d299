package services

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"math"
	"sort"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"stylistapi/models"
)

// Quantization bucket width per channel. 32 keeps close shades of the same
// garment color in one bucket while separating a print's real accents.
const colorBucketSize = 32

// Sampling targets, keeps extraction under a few ms for phone photos.
const maxColorSamples = 10000

// ExtractColors returns the dominant colors of a garment photo, most
// prevalent first. Background-removed uploads have white/transparent
// surroundings, so near-white and transparent pixels are skipped.
func ExtractColors(imageBytes []byte, maxColors int) (models.ColorList, error) {
	if maxColors <= 0 {
		maxColors = 3
	}
	img, _, err := image.Decode(bytes.NewReader(imageBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	if width == 0 || height == 0 {
		return nil, fmt.Errorf("image has no pixels")
	}

	step := int(math.Sqrt(float64(width*height) / float64(maxColorSamples)))
	if step < 1 {
		step = 1
	}

	type bucketStats struct {
		count            int
		sumR, sumG, sumB int
	}
	buckets := map[[3]int]*bucketStats{}

	for y := bounds.Min.Y; y < bounds.Max.Y; y += step {
		for x := bounds.Min.X; x < bounds.Max.X; x += step {
			r, g, b, a := img.At(x, y).RGBA()
			if a < 0x8000 {
				continue // transparent background
			}
			r8 := int(r >> 8)
			g8 := int(g >> 8)
			b8 := int(b >> 8)
			if r8 > 245 && g8 > 245 && b8 > 245 {
				continue // whitened background
			}
			key := [3]int{r8 / colorBucketSize, g8 / colorBucketSize, b8 / colorBucketSize}
			stats := buckets[key]
			if stats == nil {
				stats = &bucketStats{}
				buckets[key] = stats
			}
			stats.count++
			stats.sumR += r8
			stats.sumG += g8
			stats.sumB += b8
		}
	}

	if len(buckets) == 0 {
		// fully white garment on a whitened background
		return models.ColorList{{250, 250, 250}}, nil
	}

	type rankedBucket struct {
		color models.RGB
		count int
	}
	ranked := make([]rankedBucket, 0, len(buckets))
	for _, stats := range buckets {
		ranked = append(ranked, rankedBucket{
			color: models.RGB{stats.sumR / stats.count, stats.sumG / stats.count, stats.sumB / stats.count},
			count: stats.count,
		})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].count > ranked[j].count
	})
	if len(ranked) > maxColors {
		ranked = ranked[:maxColors]
	}

	colors := make(models.ColorList, 0, len(ranked))
	for _, rb := range ranked {
		colors = append(colors, rb.color)
	}
	return colors, nil
}

type namedColor struct {
	name string
	rgb  models.RGB
}

var colorPalette = []namedColor{
	{"black", models.RGB{20, 20, 20}},
	{"white", models.RGB{245, 245, 245}},
	{"gray", models.RGB{128, 128, 128}},
	{"red", models.RGB{200, 30, 40}},
	{"maroon", models.RGB{110, 20, 35}},
	{"orange", models.RGB{235, 130, 30}},
	{"yellow", models.RGB{235, 210, 50}},
	{"green", models.RGB{40, 140, 60}},
	{"olive", models.RGB{110, 115, 50}},
	{"teal", models.RGB{30, 130, 130}},
	{"blue", models.RGB{40, 80, 190}},
	{"navy", models.RGB{25, 35, 90}},
	{"purple", models.RGB{120, 60, 160}},
	{"pink", models.RGB{230, 120, 160}},
	{"brown", models.RGB{120, 75, 40}},
	{"beige", models.RGB{215, 195, 160}},
}

// ColorName maps an RGB triple onto the closest everyday color word.
func ColorName(c models.RGB) string {
	if len(c) != 3 {
		return "gray"
	}
	best := colorPalette[0].name
	bestDist := math.MaxFloat64
	for _, candidate := range colorPalette {
		var sum float64
		for i := 0; i < 3; i++ {
			d := float64(c[i] - candidate.rgb[i])
			sum += d * d
		}
		if sum < bestDist {
			bestDist = sum
			best = candidate.name
		}
	}
	return best
}

var titleCaser = cases.Title(language.English)

// SuggestItemName builds a display name like "Navy Top" when the caption
// generator is unavailable or returns nothing usable.
func SuggestItemName(dominant models.RGB, category string) string {
	return titleCaser.String(fmt.Sprintf("%s %s", ColorName(dominant), category))
}
