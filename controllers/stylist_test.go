package controllers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stylistapi/dbhelper"
	"stylistapi/models"
	"stylistapi/test"
)

func completedItem(ownerID uint, name, category, style string, dominant models.RGB) models.WardrobeItem {
	return models.WardrobeItem{
		Name:             name,
		Category:         category,
		Style:            style,
		Gender:           "unisex",
		OwnerID:          ownerID,
		Colors:           models.ColorList{dominant},
		DominantColor:    dominant,
		ProcessingStatus: "completed",
	}
}

type recommendResponse struct {
	Context         map[string]interface{} `json:"context"`
	Recommendations RecommendationsOut     `json:"recommendations"`
	Extras          ExtrasResponse         `json:"extras"`
	Message         string                 `json:"message"`
}

func TestGetContext(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	e := SetupServer(db, test.GoogleServiceMock{}, &test.AWSProviderMock{}, nil, nil, nil, test.URLCacheMock{}, test.WeatherMock{})
	user := test.FakeUser(db)

	req := test.NewJSONAuthRequest("GET", "/stylist/context?occasion=party", strconv.FormatUint(uint64(user.ID), 10), "")
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "party", resp["occasion"])
	// city falls back to the user profile
	assert.Equal(t, "Baku", resp["city"])
	assert.Equal(t, "sunny", resp["weather_type"])
}

func TestRecommendNotEnoughItems(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	e := SetupServer(db, test.GoogleServiceMock{}, &test.AWSProviderMock{}, nil, nil, nil, test.URLCacheMock{}, test.WeatherMock{})
	user := test.FakeUser(db)

	// tops but no bottoms
	top := completedItem(user.ID, "Black Tee", "top", "casual", models.RGB{10, 10, 10})
	require.NoError(t, db.Create(&top).Error)

	reqBody := RecommendIn{Occasion: "casual"}
	req := test.NewJSONAuthRequest("POST", "/stylist/recommend", strconv.FormatUint(uint64(user.ID), 10), reqBody)
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp recommendResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp.Message, "Not enough items")
	assert.Nil(t, resp.Recommendations.Best)
}

func TestRecommendInvalidOccasion(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	e := SetupServer(db, test.GoogleServiceMock{}, &test.AWSProviderMock{}, nil, nil, nil, test.URLCacheMock{}, test.WeatherMock{})
	user := test.FakeUser(db)

	reqBody := RecommendIn{Occasion: "wedding"}
	req := test.NewJSONAuthRequest("POST", "/stylist/recommend", strconv.FormatUint(uint64(user.ID), 10), reqBody)
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
}

func TestRecommendBlackOnBlackCasualSunny(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	e := SetupServer(db, test.GoogleServiceMock{}, &test.AWSProviderMock{}, nil, nil, nil, test.URLCacheMock{}, test.WeatherMock{})
	user := test.FakeUser(db)

	top := completedItem(user.ID, "Black Tee", "top", "casual", models.RGB{10, 10, 10})
	bottom := completedItem(user.ID, "Black Jeans", "bottom", "casual", models.RGB{12, 12, 12})
	require.NoError(t, db.Create(&top).Error)
	require.NoError(t, db.Create(&bottom).Error)

	reqBody := RecommendIn{Occasion: "casual"}
	req := test.NewJSONAuthRequest("POST", "/stylist/recommend", strconv.FormatUint(uint64(user.ID), 10), reqBody)
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp recommendResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.Recommendations.Best)
	require.NotNil(t, resp.Recommendations.Best.Top)
	require.NotNil(t, resp.Recommendations.Best.Bottom)
	assert.Equal(t, "Black Tee", resp.Recommendations.Best.Top.Name)
	// color 0.4*(0.7*1.0) + occasion 0.3*1.0 + weather 0.2*1.0 + pref 0.1*0.5
	assert.InDelta(t, 0.83, resp.Recommendations.Best.Score, 1e-9)
	assert.Nil(t, resp.Recommendations.Medium)
}

func TestRecommendRanksThreeTiers(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	e := SetupServer(db, test.GoogleServiceMock{}, &test.AWSProviderMock{}, nil, nil, nil, test.URLCacheMock{}, test.WeatherMock{})
	user := test.FakeUser(db)

	// a casual black top pairs better than a party red one
	require.NoError(t, db.Create(&models.WardrobeItem{
		Name: "Black Tee", Category: "top", Style: "casual", Gender: "unisex",
		OwnerID: user.ID, DominantColor: models.RGB{10, 10, 10},
		Colors: models.ColorList{{10, 10, 10}}, ProcessingStatus: "completed",
	}).Error)
	require.NoError(t, db.Create(&models.WardrobeItem{
		Name: "Red Shirt", Category: "top", Style: "party", Gender: "unisex",
		OwnerID: user.ID, DominantColor: models.RGB{200, 30, 30},
		Colors: models.ColorList{{200, 30, 30}}, ProcessingStatus: "completed",
	}).Error)
	require.NoError(t, db.Create(&models.WardrobeItem{
		Name: "Black Jeans", Category: "bottom", Style: "casual", Gender: "unisex",
		OwnerID: user.ID, DominantColor: models.RGB{12, 12, 12},
		Colors: models.ColorList{{12, 12, 12}}, ProcessingStatus: "completed",
	}).Error)
	require.NoError(t, db.Create(&models.WardrobeItem{
		Name: "Blue Jeans", Category: "bottom", Style: "casual", Gender: "unisex",
		OwnerID: user.ID, DominantColor: models.RGB{40, 60, 160},
		Colors: models.ColorList{{40, 60, 160}}, ProcessingStatus: "completed",
	}).Error)

	reqBody := RecommendIn{Occasion: "casual"}
	req := test.NewJSONAuthRequest("POST", "/stylist/recommend", strconv.FormatUint(uint64(user.ID), 10), reqBody)
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp recommendResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.Recommendations.Best)
	require.NotNil(t, resp.Recommendations.Medium)
	require.NotNil(t, resp.Recommendations.Average)
	assert.Equal(t, "Black Tee", resp.Recommendations.Best.Top.Name)
	assert.Greater(t, resp.Recommendations.Best.Score, resp.Recommendations.Medium.Score)
	assert.Greater(t, resp.Recommendations.Medium.Score, resp.Recommendations.Average.Score)
}

func TestRecommendFullBodyBypass(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	e := SetupServer(db, test.GoogleServiceMock{}, &test.AWSProviderMock{}, nil, nil, nil, test.URLCacheMock{}, test.WeatherMock{})
	user := test.FakeUser(db)

	dress := completedItem(user.ID, "Lehenga", "full_body", "traditional", models.RGB{180, 40, 90})
	dress.PreferenceScore = 3
	require.NoError(t, db.Create(&dress).Error)
	// pairable items exist but the full-body pool wins
	top := completedItem(user.ID, "Black Tee", "top", "casual", models.RGB{10, 10, 10})
	bottom := completedItem(user.ID, "Black Jeans", "bottom", "casual", models.RGB{12, 12, 12})
	require.NoError(t, db.Create(&top).Error)
	require.NoError(t, db.Create(&bottom).Error)

	reqBody := RecommendIn{Occasion: "traditional"}
	req := test.NewJSONAuthRequest("POST", "/stylist/recommend", strconv.FormatUint(uint64(user.ID), 10), reqBody)
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp recommendResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.Recommendations.Best)
	require.NotNil(t, resp.Recommendations.Best.FullBody)
	assert.Nil(t, resp.Recommendations.Best.Top)
	assert.Equal(t, "Lehenga", resp.Recommendations.Best.FullBody.Name)
	assert.InDelta(t, 1.0, resp.Recommendations.Best.Score, 1e-9)
}

func TestRecommendFullBodyRequiresMatchingStyle(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	e := SetupServer(db, test.GoogleServiceMock{}, &test.AWSProviderMock{}, nil, nil, nil, test.URLCacheMock{}, test.WeatherMock{})
	user := test.FakeUser(db)

	// a traditional one-piece must not hijack a casual request
	dress := completedItem(user.ID, "Lehenga", "full_body", "traditional", models.RGB{180, 40, 90})
	dress.PreferenceScore = 5
	require.NoError(t, db.Create(&dress).Error)
	top := completedItem(user.ID, "Black Tee", "top", "casual", models.RGB{10, 10, 10})
	bottom := completedItem(user.ID, "Black Jeans", "bottom", "casual", models.RGB{12, 12, 12})
	require.NoError(t, db.Create(&top).Error)
	require.NoError(t, db.Create(&bottom).Error)

	reqBody := RecommendIn{Occasion: "casual"}
	req := test.NewJSONAuthRequest("POST", "/stylist/recommend", strconv.FormatUint(uint64(user.ID), 10), reqBody)
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp recommendResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.Recommendations.Best)
	assert.Nil(t, resp.Recommendations.Best.FullBody)
	require.NotNil(t, resp.Recommendations.Best.Top)
	assert.Equal(t, "Black Tee", resp.Recommendations.Best.Top.Name)
}

func TestRecommendExtras(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	e := SetupServer(db, test.GoogleServiceMock{}, &test.AWSProviderMock{}, nil, nil, nil, test.URLCacheMock{}, test.WeatherMock{})
	user := test.FakeUser(db)

	top := completedItem(user.ID, "Black Tee", "top", "casual", models.RGB{10, 10, 10})
	bottom := completedItem(user.ID, "Black Jeans", "bottom", "casual", models.RGB{12, 12, 12})
	sneakers := completedItem(user.ID, "White Sneakers", "shoes", "casual", models.RGB{245, 245, 245})
	watch := completedItem(user.ID, "Steel Watch", "accessory", "casual", models.RGB{160, 160, 160})
	watch.ItemType = stringPtr("watch")
	necklace := completedItem(user.ID, "Gold Necklace", "jewellery", "traditional", models.RGB{212, 175, 55})
	necklace.ItemType = stringPtr("necklace")
	require.NoError(t, db.Create(&top).Error)
	require.NoError(t, db.Create(&bottom).Error)
	require.NoError(t, db.Create(&sneakers).Error)
	require.NoError(t, db.Create(&watch).Error)
	require.NoError(t, db.Create(&necklace).Error)

	reqBody := RecommendIn{Occasion: "casual"}
	req := test.NewJSONAuthRequest("POST", "/stylist/recommend", strconv.FormatUint(uint64(user.ID), 10), reqBody)
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp recommendResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.Extras.Shoes)
	assert.Equal(t, "White Sneakers", resp.Extras.Shoes.Name)
	require.Len(t, resp.Extras.Accessories, 1)
	assert.Equal(t, "Steel Watch", resp.Extras.Accessories[0].Name)
	// jewellery is not part of a casual look
	assert.Len(t, resp.Extras.Jewellery, 0)
}

func TestFeedbackClampAndUsage(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	e := SetupServer(db, test.GoogleServiceMock{}, &test.AWSProviderMock{}, nil, nil, nil, test.URLCacheMock{}, test.WeatherMock{})
	user := test.FakeUser(db)

	item := completedItem(user.ID, "Black Tee", "top", "casual", models.RGB{10, 10, 10})
	item.PreferenceScore = 4
	require.NoError(t, db.Create(&item).Error)

	like := FeedbackIn{LikedItems: []uint{item.ID}}
	req := test.NewJSONAuthRequest("POST", "/stylist/feedback", strconv.FormatUint(uint64(user.ID), 10), like)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var updated models.WardrobeItem
	require.NoError(t, db.First(&updated, item.ID).Error)
	assert.Equal(t, 5, updated.PreferenceScore)

	// repeated likes saturate at the cap
	for i := 0; i < 100; i++ {
		req2 := test.NewJSONAuthRequest("POST", "/stylist/feedback", strconv.FormatUint(uint64(user.ID), 10), like)
		rec2 := httptest.NewRecorder()
		e.ServeHTTP(rec2, req2)
		require.Equal(t, http.StatusOK, rec2.Code)
	}
	require.NoError(t, db.First(&updated, item.ID).Error)
	assert.Equal(t, 5, updated.PreferenceScore)

	worn := FeedbackIn{WornItems: []uint{item.ID}}
	req3 := test.NewJSONAuthRequest("POST", "/stylist/feedback", strconv.FormatUint(uint64(user.ID), 10), worn)
	rec3 := httptest.NewRecorder()
	e.ServeHTTP(rec3, req3)
	require.Equal(t, http.StatusOK, rec3.Code)
	require.NoError(t, db.First(&updated, item.ID).Error)
	assert.Equal(t, 1, updated.UsageCount)
	assert.NotNil(t, updated.LastUsed)
}

func TestFeedbackIgnoresForeignAndStaleIds(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	e := SetupServer(db, test.GoogleServiceMock{}, &test.AWSProviderMock{}, nil, nil, nil, test.URLCacheMock{}, test.WeatherMock{})
	user := test.FakeUser(db)
	stranger := test.FakeUserV2(db, "Stranger", "stranger@example.com")

	theirs := completedItem(stranger.ID, "Theirs", "top", "casual", models.RGB{10, 10, 10})
	require.NoError(t, db.Create(&theirs).Error)

	feedback := FeedbackIn{LikedItems: []uint{theirs.ID, 999999}}
	req := test.NewJSONAuthRequest("POST", "/stylist/feedback", strconv.FormatUint(uint64(user.ID), 10), feedback)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp map[string]int
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 0, resp["updated"])
	assert.Equal(t, 2, resp["skipped"])

	var untouched models.WardrobeItem
	require.NoError(t, db.First(&untouched, theirs.ID).Error)
	assert.Equal(t, 0, untouched.PreferenceScore)
}

func TestFeedbackAlternativesOnlyWithLikes(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	e := SetupServer(db, test.GoogleServiceMock{}, &test.AWSProviderMock{}, nil, nil, nil, test.URLCacheMock{}, test.WeatherMock{})
	user := test.FakeUser(db)

	liked := completedItem(user.ID, "Liked", "top", "casual", models.RGB{10, 10, 10})
	passedOver := completedItem(user.ID, "Passed Over", "top", "casual", models.RGB{10, 10, 10})
	require.NoError(t, db.Create(&liked).Error)
	require.NoError(t, db.Create(&passedOver).Error)

	// alternatives alone are a no-op
	onlyAlternatives := FeedbackIn{AlternativeItems: []uint{passedOver.ID}}
	req := test.NewJSONAuthRequest("POST", "/stylist/feedback", strconv.FormatUint(uint64(user.ID), 10), onlyAlternatives)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var item models.WardrobeItem
	require.NoError(t, db.First(&item, passedOver.ID).Error)
	assert.Equal(t, 0, item.PreferenceScore)

	// alongside a like they lose a point
	withLike := FeedbackIn{LikedItems: []uint{liked.ID}, AlternativeItems: []uint{passedOver.ID}}
	req2 := test.NewJSONAuthRequest("POST", "/stylist/feedback", strconv.FormatUint(uint64(user.ID), 10), withLike)
	rec2 := httptest.NewRecorder()
	e.ServeHTTP(rec2, req2)
	require.Equal(t, http.StatusOK, rec2.Code)

	require.NoError(t, db.First(&item, passedOver.ID).Error)
	assert.Equal(t, -1, item.PreferenceScore)
	var likedItem models.WardrobeItem
	require.NoError(t, db.First(&likedItem, liked.ID).Error)
	assert.Equal(t, 1, likedItem.PreferenceScore)
}
