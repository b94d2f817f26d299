package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lib/pq"
)

// RGB is a single extracted color, channels 0-255 in R,G,B order.
// Stored as a jsonb array so it round-trips exactly as the extractor produced it.
type RGB []int

func (c RGB) Value() (driver.Value, error) {
	if c == nil {
		return nil, nil
	}
	return json.Marshal(c)
}

func (c *RGB) Scan(value interface{}) error {
	if value == nil {
		*c = nil
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, c)
	case string:
		return json.Unmarshal([]byte(v), c)
	}
	return fmt.Errorf("cannot scan %T into RGB", value)
}

// ColorList keeps extraction order: first entry is the dominant color,
// second (if any) is the accent.
type ColorList []RGB

func (c ColorList) Value() (driver.Value, error) {
	if c == nil {
		return nil, nil
	}
	return json.Marshal(c)
}

func (c *ColorList) Scan(value interface{}) error {
	if value == nil {
		*c = nil
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, c)
	case string:
		return json.Unmarshal([]byte(v), c)
	}
	return fmt.Errorf("cannot scan %T into ColorList", value)
}

type WardrobeItem struct {
	JsonModel
	Name        string      `json:"name"`
	Description *string     `gorm:"type:text" json:"description"`
	Category    string      `json:"category"` // top, bottom, shoes, accessory, jewellery, full_body
	Style       string      `json:"style"`    // casual, formal, party, traditional
	Gender      string      `gorm:"default:unisex" json:"gender"`
	Owner       UserAccount `json:"-"`
	OwnerID     uint        `json:"-"`

	// subtype: watch/belt/ring/... for accessories and jewellery, open/closed for shoes
	ItemType *string `json:"type"`
	// leather, metal, fabric... (accessory/jewellery only)
	Material *string `json:"material"`
	// capability tags for weather safety rules, e.g. open, leather
	Tags pq.StringArray `gorm:"type:text[]" json:"tags"`

	Colors        ColorList `gorm:"type:jsonb" json:"colors"`
	DominantColor RGB       `gorm:"type:jsonb" json:"dominant_color"`

	// learning state, mutated only by the feedback endpoints
	PreferenceScore int        `gorm:"default:0" json:"preference_score"`
	UsageCount      int        `gorm:"default:0" json:"usage_count"`
	LastUsed        *time.Time `json:"last_used"`

	// file **key** in storage
	ImageURL               *string `json:"image_url"`
	ImageStatus            string  `json:"image_status"`      // draft, uploaded
	ProcessingStatus       string  `json:"processing_status"` // idle, pending, completed, failed
	ProcessRetryTimes      int     `json:"-"`
	ProcessingErrorMessage *string `json:"processing_error_message"`
	AlertWhenProcessed     bool    `json:"alert_when_processed"`
}

// HasTag reports a capability tag; falls back to the legacy type/material
// string match for items uploaded before tags existed.
func (w WardrobeItem) HasTag(tag string) bool {
	for _, t := range w.Tags {
		if t == tag {
			return true
		}
	}
	switch tag {
	case "open":
		return w.ItemType != nil && *w.ItemType == "open"
	case "leather":
		return w.Material != nil && *w.Material == "leather"
	}
	return false
}
