package controllers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"stylistapi/engine"
	"stylistapi/models"
	"stylistapi/services"
)

type RecommendIn struct {
	Occasion string `json:"occasion" validate:"required,occasion"`
	City     string `json:"city" validate:"omitempty,max=100"`
	Limit    int    `json:"limit" validate:"omitempty,min=1,max=10"`
}

type FeedbackIn struct {
	LikedItems    []uint `json:"liked_items"`
	DislikedItems []uint `json:"disliked_items"`
	WornItems     []uint `json:"worn_items"`
	// unchosen outfits shown alongside a liked one, for contrastive learning
	AlternativeItems []uint `json:"alternative_items"`
}

type OutfitResponse struct {
	Top      *WardrobeItemResponse `json:"top,omitempty"`
	Bottom   *WardrobeItemResponse `json:"bottom,omitempty"`
	FullBody *WardrobeItemResponse `json:"full_body,omitempty"`
	Score    float64               `json:"score"`
}

type ExtrasResponse struct {
	Shoes       *WardrobeItemResponse  `json:"shoes"`
	Accessories []WardrobeItemResponse `json:"accessories"`
	Jewellery   []WardrobeItemResponse `json:"jewellery"`
}

type RecommendationsOut struct {
	Best    *OutfitResponse `json:"best"`
	Medium  *OutfitResponse `json:"medium"`
	Average *OutfitResponse `json:"average"`
}

type StylistController struct {
	Weather  services.WeatherServiceProvider
	URLCache services.URLCacheServiceProvider
}

func (controller *StylistController) StylistRoutes(g *echo.Group) {
	g.GET("/context", controller.GetContext)
	g.POST("/recommend", controller.Recommend)
	g.POST("/feedback", controller.Feedback)
}

func (controller *StylistController) buildContext(c echo.Context, user models.UserAccount, occasion string, city string) engine.Context {
	if city == "" {
		city = user.City
	}
	weather, _ := controller.Weather.CurrentWeather(c.Request().Context(), city)
	return engine.Context{
		Occasion:    occasion,
		City:        weather.City,
		Temperature: weather.Temperature,
		Weather:     weather.Label,
		WeatherType: weather.Type,
	}
}

func (controller *StylistController) GetContext(c echo.Context) error {
	user, ok := c.Get("currentUser").(models.UserAccount)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}
	occasion := c.QueryParam("occasion")
	if occasion == "" {
		occasion = models.OccasionCasual
	}
	if !models.ValidateOccasionRaw(occasion) {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid occasion"})
	}
	return c.JSON(http.StatusOK, controller.buildContext(c, user, occasion, c.QueryParam("city")))
}

// fetchPool loads one category of processed candidates for the user.
// Unisex items match any gender, unisex users see everything. An empty
// style means no style filter: mismatched tops/bottoms stay in the pool
// and get penalized by scoring instead.
func fetchPool(db *gorm.DB, user models.UserAccount, category string, style string) ([]models.WardrobeItem, error) {
	query := db.Where("owner_id = ? and category = ? and processing_status = ?", user.ID, category, "completed")
	if style != "" {
		query = query.Where("style = ?", style)
	}
	if user.Gender != "" && user.Gender != "unisex" {
		query = query.Where("gender in (?, 'unisex')", user.Gender)
	}
	var items []models.WardrobeItem
	err := query.Find(&items).Error
	return items, err
}

func (controller *StylistController) outfitResponse(ctx context.Context, outfit engine.RankedOutfit) *OutfitResponse {
	resp := &OutfitResponse{Score: outfit.Score}
	if outfit.Top != nil {
		resp.Top = controller.resolveItem(ctx, *outfit.Top)
	}
	if outfit.Bottom != nil {
		resp.Bottom = controller.resolveItem(ctx, *outfit.Bottom)
	}
	if outfit.FullBody != nil {
		resp.FullBody = controller.resolveItem(ctx, *outfit.FullBody)
	}
	return resp
}

func (controller *StylistController) resolveItem(ctx context.Context, item models.WardrobeItem) *WardrobeItemResponse {
	var imageUrl string
	if item.ImageURL != nil && *item.ImageURL != "" {
		url, err := controller.URLCache.GetReadURL(ctx, *item.ImageURL)
		if err != nil {
			sentry.CaptureException(err)
		} else {
			imageUrl = url
		}
	}
	resp := itemResponse(item, &imageUrl)
	return &resp
}

func (controller *StylistController) Recommend(c echo.Context) error {
	var req RecommendIn
	if err := c.Bind(&req); err != nil {
		fmt.Println(err)
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}
	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	user, ok := c.Get("currentUser").(models.UserAccount)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}
	db, ok := c.Get("__db").(*gorm.DB)
	if !ok {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Database connection error"})
	}

	engineCtx := controller.buildContext(c, user, req.Occasion, req.City)
	limit := req.Limit
	if limit <= 0 {
		limit = engine.DefaultLimit
	}

	// full-body pieces only substitute for pairing when they suit the
	// occasion; a lone lehenga must not hijack a casual request
	fullBody, err := fetchPool(db, user, models.CategoryFullBody, engine.StyleForOccasion(req.Occasion))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to fetch wardrobe"})
	}

	var ranked []engine.RankedOutfit
	if len(fullBody) > 0 {
		ranked = engine.RankFullBody(fullBody, limit)
	} else {
		tops, err := fetchPool(db, user, models.CategoryTop, "")
		if err != nil {
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to fetch wardrobe"})
		}
		bottoms, err := fetchPool(db, user, models.CategoryBottom, "")
		if err != nil {
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to fetch wardrobe"})
		}
		if len(tops) == 0 || len(bottoms) == 0 {
			return c.JSON(http.StatusOK, echo.Map{
				"context":         engineCtx,
				"recommendations": RecommendationsOut{},
				"message":         "Not enough items in your wardrobe for this occasion, add some tops and bottoms first",
			})
		}
		ranked = engine.RankOutfits(tops, bottoms, engineCtx, limit, engine.DefaultWeights)
	}

	reqCtx := c.Request().Context()
	var recommendations RecommendationsOut
	if len(ranked) > 0 {
		recommendations.Best = controller.outfitResponse(reqCtx, ranked[0])
	}
	if len(ranked) > 1 {
		recommendations.Medium = controller.outfitResponse(reqCtx, ranked[1])
	}
	if len(ranked) > 2 {
		recommendations.Average = controller.outfitResponse(reqCtx, ranked[2])
	}

	// extras are always matched against the best outfit
	extras := ExtrasResponse{
		Accessories: []WardrobeItemResponse{},
		Jewellery:   []WardrobeItemResponse{},
	}
	if len(ranked) > 0 {
		best := ranked[0]

		shoes, err := fetchPool(db, user, models.CategoryShoes, "")
		if err == nil {
			if shoe := engine.SelectShoes(shoes, best, engineCtx, engine.DefaultExtras); shoe != nil {
				extras.Shoes = controller.resolveItem(reqCtx, *shoe)
			}
		}
		accessories, err := fetchPool(db, user, models.CategoryAccessory, "")
		if err == nil {
			for _, acc := range engine.SelectAccessories(accessories, best, engineCtx, engine.DefaultExtrasLimit, engine.DefaultExtras) {
				extras.Accessories = append(extras.Accessories, *controller.resolveItem(reqCtx, acc))
			}
		}
		jewellery, err := fetchPool(db, user, models.CategoryJewellery, "")
		if err == nil {
			for _, jw := range engine.SelectJewellery(jewellery, best, engineCtx, engine.DefaultExtrasLimit, engine.DefaultExtras) {
				extras.Jewellery = append(extras.Jewellery, *controller.resolveItem(reqCtx, jw))
			}
		}
	}

	return c.JSON(http.StatusOK, echo.Map{
		"context":         engineCtx,
		"recommendations": recommendations,
		"extras":          extras,
	})
}

// adjustPreference applies a clamped delta server-side so concurrent
// feedback never races a read-modify-write. Stale or foreign ids are a
// silent no-op.
func adjustPreference(db *gorm.DB, ownerID uint, itemID uint, delta int) (bool, error) {
	result := db.Model(&models.WardrobeItem{}).
		Where("id = ? and owner_id = ?", itemID, ownerID).
		UpdateColumn("preference_score", gorm.Expr("LEAST(5, GREATEST(-5, preference_score + ?))", delta))
	return result.RowsAffected > 0, result.Error
}

func markWorn(db *gorm.DB, ownerID uint, itemID uint, now time.Time) (bool, error) {
	result := db.Model(&models.WardrobeItem{}).
		Where("id = ? and owner_id = ?", itemID, ownerID).
		UpdateColumns(map[string]interface{}{
			"usage_count": gorm.Expr("usage_count + 1"),
			"last_used":   now,
		})
	return result.RowsAffected > 0, result.Error
}

func (controller *StylistController) Feedback(c echo.Context) error {
	var req FeedbackIn
	if err := c.Bind(&req); err != nil {
		fmt.Println(err)
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}

	user, ok := c.Get("currentUser").(models.UserAccount)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}
	db, ok := c.Get("__db").(*gorm.DB)
	if !ok {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Database connection error"})
	}

	updated := 0
	skipped := 0
	apply := func(itemID uint, delta int) {
		changed, err := adjustPreference(db, user.ID, itemID, delta)
		if err != nil {
			sentry.CaptureException(err)
			skipped++
			return
		}
		if changed {
			updated++
		} else {
			skipped++
		}
	}

	for _, id := range req.LikedItems {
		apply(id, 1)
	}
	for _, id := range req.DislikedItems {
		apply(id, -1)
	}
	// relative learning: the outfits the user passed over lose a point,
	// but only when something was actually liked
	if len(req.LikedItems) > 0 {
		for _, id := range req.AlternativeItems {
			apply(id, -1)
		}
	}

	now := time.Now().UTC()
	for _, id := range req.WornItems {
		changed, err := markWorn(db, user.ID, id, now)
		if err != nil {
			sentry.CaptureException(err)
			skipped++
			continue
		}
		if changed {
			updated++
		} else {
			skipped++
		}
	}

	fmt.Printf("[User %v] Feedback applied, updated: %v skipped: %v\n", user.ID, updated, skipped)
	return c.JSON(http.StatusOK, echo.Map{
		"updated": updated,
		"skipped": skipped,
	})
}
