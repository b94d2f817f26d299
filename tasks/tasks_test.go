package tasks

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"stylistapi/dbhelper"
	"stylistapi/models"
	"stylistapi/test"
)

func encodeSolidPNG(t *testing.T, c color.RGBA) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 16, 16))
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("Failed to encode test image: %v", err)
	}
	return buf.Bytes()
}

func TestWardrobeProcessingTask(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	user := test.FakeUser(db)

	item := models.WardrobeItem{
		Category:         "top",
		OwnerID:          user.ID,
		ImageURL:         test.NewRefString("wardrobe/1/tee.png"),
		ImageStatus:      "draft",
		ProcessingStatus: "pending",
	}
	db.Create(&item)

	imageBytes := encodeSolidPNG(t, color.RGBA{R: 10, G: 10, B: 10, A: 255})
	mockServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write(imageBytes)
	}))
	defer mockServer.Close()

	fakeTask, err := NewWardrobeProcessingTask(item.ID)
	if err != nil {
		t.Fatalf("Failed to create task: %v", err)
	}
	awsServiceMock := &test.AWSProviderMock{MockUrl: mockServer.URL}

	err = HandleWardrobeProcessingTask(context.Background(), fakeTask, db, test.StylistLLMMock{}, awsServiceMock, nil)
	assert.NoError(t, err)

	var updated models.WardrobeItem
	err = db.Where("id = ?", item.ID).First(&updated).Error
	assert.NoError(t, err)
	assert.Equal(t, "completed", updated.ProcessingStatus)
	assert.Equal(t, "uploaded", updated.ImageStatus)
	assert.Equal(t, "Black Tee", updated.Name)
	assert.Equal(t, "casual", updated.Style)
	assert.Equal(t, models.RGB{10, 10, 10}, updated.DominantColor)
	if assert.NotNil(t, updated.ItemType) {
		assert.Equal(t, "tshirt", *updated.ItemType)
	}
	assert.Nil(t, updated.ProcessingErrorMessage)
}

func TestWardrobeProcessingTaskCaptionerFallback(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	user := test.FakeUser(db)

	item := models.WardrobeItem{
		Category:         "top",
		OwnerID:          user.ID,
		ImageURL:         test.NewRefString("wardrobe/1/tee.png"),
		ImageStatus:      "draft",
		ProcessingStatus: "pending",
	}
	db.Create(&item)

	imageBytes := encodeSolidPNG(t, color.RGBA{R: 10, G: 10, B: 10, A: 255})
	mockServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write(imageBytes)
	}))
	defer mockServer.Close()

	fakeTask, err := NewWardrobeProcessingTask(item.ID)
	if err != nil {
		t.Fatalf("Failed to create task: %v", err)
	}
	awsServiceMock := &test.AWSProviderMock{MockUrl: mockServer.URL}

	llmMock := test.StylistLLMMock{Err: errors.New("model overloaded")}
	err = HandleWardrobeProcessingTask(context.Background(), fakeTask, db, llmMock, awsServiceMock, nil)
	assert.NoError(t, err)

	var updated models.WardrobeItem
	err = db.Where("id = ?", item.ID).First(&updated).Error
	assert.NoError(t, err)
	// completes with a palette-derived name when the captioner is down
	assert.Equal(t, "completed", updated.ProcessingStatus)
	assert.Equal(t, "Black Top", updated.Name)
}

func TestWardrobeProcessingTaskDownloadFailure(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	user := test.FakeUser(db)

	item := models.WardrobeItem{
		Category:         "top",
		OwnerID:          user.ID,
		ImageURL:         test.NewRefString("wardrobe/1/missing.png"),
		ImageStatus:      "draft",
		ProcessingStatus: "pending",
	}
	db.Create(&item)

	mockServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer mockServer.Close()

	fakeTask, err := NewWardrobeProcessingTask(item.ID)
	if err != nil {
		t.Fatalf("Failed to create task: %v", err)
	}
	awsServiceMock := &test.AWSProviderMock{MockUrl: mockServer.URL}

	err = HandleWardrobeProcessingTask(context.Background(), fakeTask, db, test.StylistLLMMock{}, awsServiceMock, nil)
	assert.Error(t, err)

	var updated models.WardrobeItem
	err = db.Where("id = ?", item.ID).First(&updated).Error
	assert.NoError(t, err)
	assert.Equal(t, "pending", updated.ProcessingStatus)
	assert.Equal(t, 1, updated.ProcessRetryTimes)
	if assert.NotNil(t, updated.ProcessingErrorMessage) {
		assert.Contains(t, *updated.ProcessingErrorMessage, "upload it again")
	}
}
