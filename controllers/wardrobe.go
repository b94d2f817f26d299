package controllers

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	firebase "firebase.google.com/go/v4"
	"github.com/getsentry/sentry-go"
	"github.com/hibiken/asynq"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"stylistapi/models"
	"stylistapi/services"
	"stylistapi/tasks"
)

// Request structs for validation
type CreateWardrobeItemIn struct {
	Name               string   `json:"name" validate:"omitempty,max=100"`
	FileName           *string  `json:"file_name" validate:"required,max=200"`
	Description        *string  `json:"description" validate:"omitempty,max=500"`
	Category           string   `json:"category" validate:"required,category"`
	Style              string   `json:"style" validate:"required,style"`
	Gender             string   `json:"gender" validate:"omitempty,gender"`
	ItemType           *string  `json:"type" validate:"omitempty,max=50"`
	Material           *string  `json:"material" validate:"omitempty,max=50"`
	Tags               []string `json:"tags" validate:"omitempty,max=10,dive,max=30"`
	AlertWhenProcessed bool     `json:"alert_when_processed"`
}

// Response structs
type WardrobeItemResponse struct {
	ID               uint             `json:"id"`
	Name             string           `json:"name"`
	Description      *string          `json:"description"`
	Category         string           `json:"category"`
	Style            string           `json:"style"`
	Gender           string           `json:"gender"`
	Type             *string          `json:"type"`
	Material         *string          `json:"material"`
	Tags             []string         `json:"tags"`
	Colors           models.ColorList `json:"colors"`
	DominantColor    models.RGB       `json:"dominant_color"`
	PreferenceScore  int              `json:"preference_score"`
	UsageCount       int              `json:"usage_count"`
	LastUsed         *time.Time       `json:"last_used"`
	ProcessingStatus string           `json:"processing_status"`
	Uri              *string          `json:"uri,omitempty"`
	CreatedAt        string           `json:"created_at"`
	UpdatedAt        string           `json:"updated_at"`
}

type WardrobeItemCreatedResponse struct {
	Item          WardrobeItemResponse `json:"item"`
	FileUploadUrl string               `json:"file_upload_url"`
}

type WardrobeListResponse struct {
	Tops        []WardrobeItemResponse `json:"tops"`
	Bottoms     []WardrobeItemResponse `json:"bottoms"`
	Shoes       []WardrobeItemResponse `json:"shoes"`
	Accessories []WardrobeItemResponse `json:"accessories"`
	Jewellery   []WardrobeItemResponse `json:"jewellery"`
	FullBody    []WardrobeItemResponse `json:"full_body"`
}

type WardrobeController struct {
	AWSService  services.AWSServiceProvider
	FirebaseApp *firebase.App
	URLCache    services.URLCacheServiceProvider
}

func (controller *WardrobeController) WardrobeRoutes(g *echo.Group) {
	g.POST("/create", controller.CreateItem)
	g.GET("/list", controller.ListItems)
	g.GET("/stats", controller.WardrobeStats)
	g.DELETE("/:itemId", controller.DeleteItem)
}

func (controller *WardrobeController) CreateItem(c echo.Context) error {
	var req CreateWardrobeItemIn
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
	asynqClient, ok := c.Get("__asynqclient").(*asynq.Client)
	if !ok {
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Service is not available, please try again a bit later"})
	}

	if req.FileName == nil || *req.FileName == "" {
		sentry.CaptureException(fmt.Errorf("Image was not provided when creating wardrobe item %s, user %v", req.Name, user.ID))
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Sorry, it seems image was not provided, please try again"})
	}
	if !services.IsAllowedImageName(*req.FileName) {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Unsupported image format"})
	}

	gender := req.Gender
	if gender == "" {
		gender = "unisex"
	}
	item := models.WardrobeItem{
		Name:               req.Name,
		Description:        req.Description,
		Category:           req.Category,
		Style:              req.Style,
		Gender:             gender,
		ItemType:           req.ItemType,
		Material:           req.Material,
		Tags:               req.Tags,
		OwnerID:            user.ID,
		ImageStatus:        "draft",
		ProcessingStatus:   "pending",
		AlertWhenProcessed: req.AlertWhenProcessed,
	}
	var bucketName = services.GetEnv("R2_BUCKET_NAME", "")
	safeFileName := fmt.Sprintf("wardrobe/%v/%s", user.ID, *req.FileName)

	uploadUrl, presignErr := controller.AWSService.PresignLink(context.Background(), bucketName, safeFileName)
	item.ImageURL = &safeFileName
	if presignErr != nil {
		log.Printf("Unable to presign generate for %s!, %s", item.Name, presignErr)
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"message": "Error while creating wardrobe item with attachment",
		})
	}
	if err := db.Create(&item).Error; err != nil {
		sentry.CaptureException(err)
		return err
	}

	task, err := tasks.NewWardrobeProcessingTask(item.ID)
	if err != nil {
		sentry.CaptureException(err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Sorry, could not process item, please try again"})
	}
	info, err := asynqClient.Enqueue(task, asynq.MaxRetry(3), asynq.Queue("process"))
	if err != nil {
		sentry.CaptureException(err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Sorry, could not process item, please try again"})
	}
	fmt.Println("[Queue] Process wardrobe item task submitted, Item ID: ", item.ID, " Task ID: ", info.ID)

	response := WardrobeItemCreatedResponse{
		Item:          itemResponse(item, nil),
		FileUploadUrl: uploadUrl,
	}

	return c.JSON(http.StatusCreated, response)
}

func itemResponse(item models.WardrobeItem, uri *string) WardrobeItemResponse {
	return WardrobeItemResponse{
		ID:               item.ID,
		Name:             item.Name,
		Description:      item.Description,
		Category:         item.Category,
		Style:            item.Style,
		Gender:           item.Gender,
		Type:             item.ItemType,
		Material:         item.Material,
		Tags:             item.Tags,
		Colors:           item.Colors,
		DominantColor:    item.DominantColor,
		PreferenceScore:  item.PreferenceScore,
		UsageCount:       item.UsageCount,
		LastUsed:         item.LastUsed,
		ProcessingStatus: item.ProcessingStatus,
		Uri:              uri,
		CreatedAt:        item.CreatedAt.Format("2006-01-02T15:04:05Z"),
		UpdatedAt:        item.UpdatedAt.Format("2006-01-02T15:04:05Z"),
	}
}

// populatePresignedItemImages enriches raw wardrobe items with presigned read
// URLs concurrently. Includes a failsafe for when the cache system itself
// fails.
func (controller *WardrobeController) populatePresignedItemImages(ctx context.Context, items []models.WardrobeItem) []WardrobeItemResponse {
	if len(items) == 0 {
		return []WardrobeItemResponse{}
	}

	var wg sync.WaitGroup
	processedResponses := make([]WardrobeItemResponse, len(items))
	bucketName := services.GetEnv("R2_BUCKET_NAME", "")

	for i, wardrobeItem := range items {
		wg.Add(1)
		go func(index int, item models.WardrobeItem) {
			defer wg.Done()

			var imageUrl string
			if item.ImageURL != nil && *item.ImageURL != "" {
				objectKey := *item.ImageURL

				url, err := controller.URLCache.GetReadURL(ctx, objectKey)

				if err == nil {
					imageUrl = url
				} else {
					// Cache system itself failed, bypass it and presign directly.
					log.Printf("CACHE WARNING: Cache system failed for key '%s': %v. Triggering manual R2 fallback.", objectKey, err)

					sentry.WithScope(func(scope *sentry.Scope) {
						scope.SetTag("failure_type", "cache_system")
						scope.SetExtra("objectKey", objectKey)
						sentry.CaptureException(err)
					})

					fallbackUrl, fallbackErr := controller.AWSService.GetPresignedR2FileReadURL(ctx, bucketName, objectKey)
					if fallbackErr != nil {
						log.Printf("CRITICAL: Manual R2 fallback also failed for key '%s': %v", objectKey, fallbackErr)
						sentry.CaptureException(fallbackErr)
						// imageUrl remains empty, but we don't fail the entire request.
					} else {
						imageUrl = fallbackUrl
					}
				}
			}
			processedResponses[index] = itemResponse(item, &imageUrl)
		}(i, wardrobeItem)
	}

	wg.Wait()
	return processedResponses
}

func (controller *WardrobeController) ListItems(c echo.Context) error {
	user, ok := c.Get("currentUser").(models.UserAccount)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}
	db, ok := c.Get("__db").(*gorm.DB)
	if !ok {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Database connection error"})
	}

	query := db.Where("owner_id = ?", user.ID)
	if category := c.QueryParam("category"); category != "" {
		if !models.ValidateCategoryRaw(category) {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid category"})
		}
		query = query.Where("category = ?", category)
	}
	if style := c.QueryParam("style"); style != "" {
		if !models.ValidateStyleRaw(style) {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid style"})
		}
		query = query.Where("style = ?", style)
	}
	if gender := c.QueryParam("gender"); gender != "" {
		// unisex items match any requested gender
		query = query.Where("gender in (?, 'unisex')", gender)
	}

	var items []models.WardrobeItem
	if err := query.Order("created_at desc").Find(&items).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to fetch wardrobe"})
	}
	processedResponses := controller.populatePresignedItemImages(c.Request().Context(), items)

	response := WardrobeListResponse{
		Tops:        []WardrobeItemResponse{},
		Bottoms:     []WardrobeItemResponse{},
		Shoes:       []WardrobeItemResponse{},
		Accessories: []WardrobeItemResponse{},
		Jewellery:   []WardrobeItemResponse{},
		FullBody:    []WardrobeItemResponse{},
	}

	for _, resp := range processedResponses {
		switch resp.Category {
		case models.CategoryTop:
			response.Tops = append(response.Tops, resp)
		case models.CategoryBottom:
			response.Bottoms = append(response.Bottoms, resp)
		case models.CategoryShoes:
			response.Shoes = append(response.Shoes, resp)
		case models.CategoryAccessory:
			response.Accessories = append(response.Accessories, resp)
		case models.CategoryJewellery:
			response.Jewellery = append(response.Jewellery, resp)
		case models.CategoryFullBody:
			response.FullBody = append(response.FullBody, resp)
		}
	}

	return c.JSON(http.StatusOK, response)
}

func (controller *WardrobeController) WardrobeStats(c echo.Context) error {
	user, ok := c.Get("currentUser").(models.UserAccount)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}
	db, ok := c.Get("__db").(*gorm.DB)
	if !ok {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Database connection error"})
	}

	type categoryCount struct {
		Category string
		Count    int64
	}
	var counts []categoryCount
	if err := db.Model(&models.WardrobeItem{}).
		Select("category, count(*) as count").
		Where("owner_id = ?", user.ID).
		Group("category").
		Find(&counts).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to fetch wardrobe stats"})
	}

	byCategory := map[string]int64{}
	var total int64
	for _, cc := range counts {
		byCategory[cc.Category] = cc.Count
		total += cc.Count
	}

	var mostWorn models.WardrobeItem
	mostWornResult := db.Where("owner_id = ? and usage_count > 0", user.ID).
		Order("usage_count desc").Limit(1).Find(&mostWorn)

	response := echo.Map{
		"total_items": total,
		"by_category": byCategory,
	}
	if mostWornResult.RowsAffected > 0 {
		response["most_worn"] = echo.Map{
			"id":          mostWorn.ID,
			"name":        mostWorn.Name,
			"usage_count": mostWorn.UsageCount,
		}
	}
	return c.JSON(http.StatusOK, response)
}

func (controller *WardrobeController) DeleteItem(c echo.Context) error {
	user, ok := c.Get("currentUser").(models.UserAccount)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}
	db, ok := c.Get("__db").(*gorm.DB)
	if !ok {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Database connection error"})
	}

	var itemId uint
	if err := echo.PathParamsBinder(c).Uint("itemId", &itemId).BindError(); err != nil {
		return echo.ErrBadRequest
	}

	result := db.Where("id = ? and owner_id = ?", itemId, user.ID).Delete(&models.WardrobeItem{})
	if result.Error != nil {
		sentry.CaptureException(result.Error)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to delete item"})
	}
	if result.RowsAffected == 0 {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Item not found"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message": "deleted",
	})
}
