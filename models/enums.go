package models

import (
	"regexp"

	"github.com/go-playground/validator"
)

type Platform string

const (
	PlatformIOS     Platform = "ios"
	PlatformAndroid Platform = "android"
	PlatformWeb     Platform = "web"
)

func (l *Platform) Scan(value interface{}) error {
	*l = Platform(value.(string))
	return nil
}

func (l Platform) Value() string {
	return string(l)
}

func ScanPlatform(value string) Platform {
	return Platform(value)
}

// Wardrobe item categories
const (
	CategoryTop       = "top"
	CategoryBottom    = "bottom"
	CategoryShoes     = "shoes"
	CategoryAccessory = "accessory"
	CategoryJewellery = "jewellery"
	CategoryFullBody  = "full_body"
)

// Item styles
const (
	StyleCasual      = "casual"
	StyleFormal      = "formal"
	StyleParty       = "party"
	StyleTraditional = "traditional"
)

// Request occasions
const (
	OccasionCasual      = "casual"
	OccasionOffice      = "office"
	OccasionParty       = "party"
	OccasionTraditional = "traditional"
)

var platformRegex = regexp.MustCompile(`^(ios|android|web)$`)
var occasionRegex = regexp.MustCompile(`^(casual|office|party|traditional)$`)
var categoryRegex = regexp.MustCompile(`^(top|bottom|shoes|accessory|jewellery|full_body)$`)
var styleRegex = regexp.MustCompile(`^(casual|formal|party|traditional)$`)
var genderRegex = regexp.MustCompile(`^(male|female|unisex)$`)

func ValidatePlatform(fl validator.FieldLevel) bool {
	return platformRegex.MatchString(fl.Field().String())
}

func ValidatePlatformRaw(value string) bool {
	return platformRegex.MatchString(value)
}

func ValidateOccasion(fl validator.FieldLevel) bool {
	return occasionRegex.MatchString(fl.Field().String())
}

func ValidateOccasionRaw(value string) bool {
	return occasionRegex.MatchString(value)
}

func ValidateCategory(fl validator.FieldLevel) bool {
	return categoryRegex.MatchString(fl.Field().String())
}

func ValidateCategoryRaw(value string) bool {
	return categoryRegex.MatchString(value)
}

func ValidateStyleRaw(value string) bool {
	return styleRegex.MatchString(value)
}

func ValidateStyle(fl validator.FieldLevel) bool {
	return styleRegex.MatchString(fl.Field().String())
}

func ValidateGender(fl validator.FieldLevel) bool {
	return genderRegex.MatchString(fl.Field().String())
}
