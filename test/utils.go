package test

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"google.golang.org/api/idtoken"
	"gorm.io/gorm"

	"stylistapi/models"
	"stylistapi/services"
)

func JsonString(model interface{}) string {
	bytes, _ := json.Marshal(model)
	return string(bytes)
}

func NewJSONRequest(method string, target string, param interface{}) *http.Request {

	req := httptest.NewRequest(method, target, strings.NewReader(JsonString(param)))
	req.Header.Add("Content-Type", "application/json")
	req.Header.Add("Accept", "application/json")
	return req
}

func GenerateUserToken(userPk string) string {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   userPk,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour * 72)),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	})
	t, err := token.SignedString([]byte(os.Getenv("JWT_SECRET")))
	if err != nil {
		log.Fatalf("Error when signing user token for %s. Error %s ", userPk, err)
	}
	return t
}

func NewJSONAuthRequest(method string, target string, userPk string, param interface{}) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(JsonString(param)))
	req.Header.Add("Content-Type", "application/json")
	req.Header.Add("Accept", "application/json")
	token := GenerateUserToken(userPk)
	req.Header.Add("Authorization", fmt.Sprintf("Bearer %s", token))
	return req
}

func NewJSONAuthRequestRaw(method string, target string, userPk string, json string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(json))
	req.Header.Add("Content-Type", "application/json")
	req.Header.Add("Accept", "application/json")
	token := GenerateUserToken(userPk)
	req.Header.Add("Authorization", fmt.Sprintf("Bearer %s", token))
	return req
}

func NewRefString(data string) *string {
	return &data
}

func FakeUser(db *gorm.DB) *models.UserAccount {
	user := &models.UserAccount{
		Name:                 "OurName",
		Email:                "email@example.com",
		GoogleID:             "12232",
		Platform:             models.PlatformIOS,
		LastIp:               "123.122.122.122",
		Gender:               "male",
		City:                 "Baku",
		ReceiveNotifications: true,
		AvatarURL:            "pictureurl",
	}
	db.Create(&user)

	tokenDb := models.UserPushToken{
		UserAccountID: user.ID,
		Platform:      "android",
		Token:         "cX-UZ3zwQEiPt-2GJkG2gA:APA91bGqRflaGrJrnynhRwZ442HdgUjVcO7mWMFnx6IwAdJ9RRKopvSP4QU7hbvTmk1XAp8XGvtHZLvo5JmOPTVKBbGqqvhfbZWKlXA9csEjx1hgpNvrWepU-rqG1sxS8_WCF5cGZchf",
		Active:        true,
	}
	db.Save(&tokenDb)
	db.First(&user, user.ID)

	return user
}

func FakeUserV2(db *gorm.DB, userName string, email string) *models.UserAccount {

	if email == "" {
		email = "email@example.com"
	}
	user := &models.UserAccount{
		Name:      userName,
		Email:     email,
		GoogleID:  "12232",
		Platform:  models.PlatformIOS,
		LastIp:    "123.122.122.122",
		AvatarURL: "pictureurl",
	}
	db.Create(&user)
	db.First(&user, user.ID)
	return user
}

type GoogleServiceMock struct{}

func (gsm GoogleServiceMock) ValidateIdToken(ctx context.Context, idToken string, audience string) (*idtoken.Payload, error) {

	return &idtoken.Payload{Issuer: "Issue", Audience: "AAA", Expires: 119919191919, IssuedAt: 12312321321, Subject: "fake@example.com", Claims: map[string]interface{}{
		"email":   "fake@example.com",
		"picture": "pictureurl",
		"sub":     "123googleid",
	}}, nil

}

type AWSProviderMock struct {
	MockUrl string
}

func (awsService AWSProviderMock) InitPresignClient(ctx context.Context) error {
	return nil
}

func (awsService AWSProviderMock) PresignLink(ctx context.Context, bucketName string, fileName string) (string, error) {

	return fmt.Sprintf("https://fakebucketurl.com/%s", fileName), nil
}

func (awsService AWSProviderMock) GetPresignedR2FileReadURL(ctx context.Context, bucketName, fileKey string) (string, error) {
	if awsService.MockUrl != "" {
		return awsService.MockUrl, nil
	}
	return fmt.Sprintf("https://fakebucketurl.com/%s", fileKey), nil
}

func (awsService AWSProviderMock) UploadToPresignedURL(ctx context.Context, bucketName, url string, fileContent []byte) (string, int, error) {
	// Simulate a successful upload
	return url, 204, nil
}

type URLCacheMock struct{}

func (URLCacheMock) GetReadURL(ctx context.Context, objectKey string) (string, error) {
	return fmt.Sprintf("https://fakebucketurl.com/%s", objectKey), nil
}

type WeatherMock struct {
	Info services.WeatherInfo
}

func (m WeatherMock) CurrentWeather(ctx context.Context, city string) (services.WeatherInfo, error) {
	if m.Info.City == "" {
		return services.WeatherInfo{City: city, Temperature: 25, Label: "Clear", Type: "sunny"}, nil
	}
	return m.Info, nil
}

type StylistLLMMock struct {
	Profile *services.ClothingProfile
	Err     error
}

func (m StylistLLMMock) DescribeClothing(filePath string, modelName services.LLMModelName) (*services.ClothingProfile, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Profile != nil {
		return m.Profile, nil
	}
	return &services.ClothingProfile{
		Name:        "Black Tee",
		Description: "A plain black cotton t-shirt",
		Category:    "top",
		Style:       "casual",
		Type:        "tshirt",
		Material:    "cotton",
	}, nil
}
