package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	firebase "firebase.google.com/go/v4"
	"github.com/getsentry/sentry-go"
	"github.com/hibiken/asynq"
	"gorm.io/gorm"

	"stylistapi/models"
	"stylistapi/services"
)

const (
	TypeWardrobeProcessing = "process:wardrobe_item"
	TypeOutfitReminder     = "process:outfit_reminder"
)

type WardrobeProcessingPayload struct {
	ItemID uint `json:"item_id"`
}

func NewClient() (*asynq.Client, error) {
	client := asynq.NewClient(asynq.RedisClientOpt{Addr: os.Getenv("ASYNC_BROKER_ADDRESS")})
	return client, nil
}

func NewWardrobeProcessingTask(itemID uint) (*asynq.Task, error) {
	payload, err := json.Marshal(WardrobeProcessingPayload{ItemID: itemID})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeWardrobeProcessing, payload), nil
}

func NewOutfitReminderTask() *asynq.Task {
	return asynq.NewTask(TypeOutfitReminder, []byte{})
}

func getFileForItem(awsService services.AWSServiceProvider, item models.WardrobeItem) ([]byte, error) {
	bucketName := services.GetEnv("R2_BUCKET_NAME", "")
	if item.ImageURL == nil || *item.ImageURL == "" {
		return nil, fmt.Errorf("[Item: %v] Image key is empty", item.ID)
	}
	url, err := awsService.GetPresignedR2FileReadURL(context.Background(), bucketName, *item.ImageURL)
	if err != nil {
		sentry.CaptureException(fmt.Errorf("[Item: %v] Error on presigning read url %s: %v", item.ID, *item.ImageURL, err))
		return nil, err
	}
	fileBytes, err := services.ReadFileFromUrl(url)
	if err != nil {
		sentry.CaptureException(fmt.Errorf("[Item: %v] Error on downloading file %s: %v", item.ID, *item.ImageURL, err))
		return nil, err
	}
	return fileBytes, nil
}

// HandleWardrobeProcessingTask extracts the color palette from the uploaded
// image and backfills the item profile from the captioner. Captioning is best
// effort, color extraction is not.
func HandleWardrobeProcessingTask(
	ctx context.Context, t *asynq.Task, db *gorm.DB, stylist services.StylistLLMProvider,
	awsService services.AWSServiceProvider, fbApp *firebase.App) error {

	var payload WardrobeProcessingPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return err
	}
	fmt.Printf("[Item: %v] Start Processing\n", payload.ItemID)
	var item models.WardrobeItem
	res := db.First(&item, payload.ItemID)
	if res.Error != nil {
		sentry.CaptureException(fmt.Errorf("[QUEUE] Error on retrieving wardrobe item for processing %v", payload.ItemID))
		return res.Error
	}

	fileBytes, err := getFileForItem(awsService, item)
	if err != nil {
		saveItemProcessingFail(db, item, "Failed to read item image, please try to upload it again", true)
		return err
	}
	fmt.Printf("[Item: %v] Downloaded file size: %d bytes\n", payload.ItemID, len(fileBytes))

	colors, err := services.ExtractColors(fileBytes, 5)
	if err != nil {
		saveItemProcessingFail(db, item, "Failed to read colors from item image, please try another photo", true)
		sentry.CaptureException(fmt.Errorf("[Item: %v] Error on extracting colors %s: %v", payload.ItemID, *item.ImageURL, err))
		return err
	}
	item.Colors = colors
	item.DominantColor = colors[0]

	filePath, err := services.CreateTempFile(fileBytes, fmt.Sprintf("item-%v.jpg", item.ID))
	if err != nil {
		saveItemProcessingFail(db, item, "Failed to read item image, please try to upload it again", true)
		sentry.CaptureException(fmt.Errorf("[Item: %v] Error on creating temp file: %v", payload.ItemID, err))
		return err
	}
	defer os.Remove(filePath)

	fmt.Printf("[Item: %v] Captioning..\n", payload.ItemID)
	profile, err := stylist.DescribeClothing(filePath, services.Flash25)
	if err != nil {
		// captioner misses are tolerable, the palette already gives a usable item
		fmt.Printf("[Item: %v] Captioner failed, falling back to color name: %v\n", payload.ItemID, err)
		sentry.CaptureException(fmt.Errorf("[Item: %v] Error on describing clothing %s: %v", payload.ItemID, *item.ImageURL, err))
		profile = nil
	}

	if profile != nil {
		if item.Name == "" {
			item.Name = profile.Name
		}
		if item.Description == nil && profile.Description != "" {
			item.Description = services.StrPointer(profile.Description)
		}
		if item.Category == "" && models.ValidateCategoryRaw(profile.Category) {
			item.Category = profile.Category
		}
		if item.Style == "" && models.ValidateStyleRaw(profile.Style) {
			item.Style = profile.Style
		}
		if item.ItemType == nil && profile.Type != "" {
			item.ItemType = services.StrPointer(profile.Type)
		}
		if item.Material == nil && profile.Material != "" {
			item.Material = services.StrPointer(profile.Material)
		}
	}
	if item.Name == "" {
		item.Name = services.SuggestItemName(item.DominantColor, item.Category)
	}
	if item.Style == "" {
		item.Style = models.StyleCasual
	}

	item.ImageStatus = "uploaded"
	item.ProcessingStatus = "completed"
	item.ProcessingErrorMessage = nil
	tx := db.Omit("alert_when_processed").Save(&item)
	if tx.Error != nil {
		sentry.CaptureException(fmt.Errorf("[QUEUE] Error on saving wardrobe item %v", payload.ItemID))
		return tx.Error
	}
	fmt.Printf("[Item: %v] Processing finished succesfully..\n", payload.ItemID)
	if item.AlertWhenProcessed {
		fmt.Printf("[Item: %v] Sending notification to user %v\n", payload.ItemID, item.OwnerID)
		services.SendNotification(fbApp, db, item.OwnerID, "Wardrobe Item Ready", fmt.Sprintf("Your item %s is ready for outfit picks", item.Name), map[string]string{"item_id": fmt.Sprintf("%d", item.ID), "type": "wardrobe_item_processed"})
	} else {
		fmt.Printf("[Item: %v] AlertWhenProcessed is false, not sending notification to user %v\n", payload.ItemID, item.OwnerID)
	}
	return nil
}

func saveItemProcessingFail(db *gorm.DB, item models.WardrobeItem, msg string, shouldRetry bool) error {
	item.ProcessRetryTimes = item.ProcessRetryTimes + 1
	item.ProcessingErrorMessage = &msg
	if !shouldRetry || item.ProcessRetryTimes >= 3 {
		item.ProcessingStatus = "failed"
	}
	tx := db.Omit("alert_when_processed").Save(&item)
	if tx.Error != nil {
		sentry.CaptureException(fmt.Errorf("[Fail Item %v] Error on saving item for failed status", item.ID))
		return tx.Error
	}
	return nil
}

// ScheduledOutfitReminderTask nudges opted-in users who have enough processed
// items to get a morning recommendation.
func ScheduledOutfitReminderTask(ctx context.Context, t *asynq.Task, db *gorm.DB, fbApp *firebase.App) error {

	fmt.Printf("[Outfit Reminder] Processing for all users\n")

	var users []models.UserAccount
	result := db.Where("banned = ? AND receive_notifications = ?", false, true).Find(&users)
	if result.Error != nil {
		sentry.CaptureException(fmt.Errorf("[Outfit Reminder] Error fetching users: %v", result.Error))
		return result.Error
	}

	fmt.Printf("[Outfit Reminder] Found %d users to send notifications\n", len(users))

	for _, user := range users {
		err := sendOutfitReminderToUser(ctx, db, fbApp, user.ID)
		if err != nil {
			fmt.Printf("[Outfit Reminder] Failed to send to user %d: %v\n", user.ID, err)
			sentry.CaptureException(fmt.Errorf("[Outfit Reminder] Failed to send to user %d: %v", user.ID, err))
			continue
		}
		time.Sleep(1 * time.Second) // To avoid hitting rate limits
	}

	return nil
}

func sendOutfitReminderToUser(ctx context.Context, db *gorm.DB, fbApp *firebase.App, userID uint) error {
	countCategory := func(category string) int64 {
		var count int64
		db.Model(&models.WardrobeItem{}).
			Where("owner_id = ? AND category = ? AND processing_status = ?", userID, category, "completed").
			Count(&count)
		return count
	}

	// a reminder only makes sense when a recommendation would succeed
	canPair := countCategory(models.CategoryTop) > 0 && countCategory(models.CategoryBottom) > 0
	if !canPair && countCategory(models.CategoryFullBody) == 0 {
		fmt.Printf("[Outfit Reminder] Not enough items for user %d, skipping\n", userID)
		return nil
	}

	fmt.Println("[Outfit Reminder] Sending notification to user", userID)
	services.SendNotification(fbApp, db, userID, "Outfit of the Day", "Your wardrobe is ready, see what to wear today", map[string]string{"type": "outfit_reminder"})
	return nil
}
