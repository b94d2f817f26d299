package controllers

import (
	"context"
	"log"
	"net/http"
	"os"

	firebase "firebase.google.com/go/v4"
	"github.com/go-playground/validator"
	"github.com/hibiken/asynq"
	echojwt "github.com/labstack/echo-jwt"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"gorm.io/gorm"

	"stylistapi/models"
	"stylistapi/services"
)

type CustomValidator struct {
	validator *validator.Validate
}

func (cv *CustomValidator) Validate(i interface{}) error {
	if err := cv.validator.Struct(i); err != nil {
		// Optionally, you could return the error to give each route more control over the status code
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}

func SetupServer(
	db *gorm.DB,
	googleService services.GoogleServiceProvider,
	awsService services.AWSServiceProvider,
	firebaseApp *firebase.App,
	asynqClient *asynq.Client,
	asynqInspector *asynq.Inspector,
	urlCache services.URLCacheServiceProvider,
	weatherService services.WeatherServiceProvider,
) *echo.Echo {

	err := awsService.InitPresignClient(context.Background())
	if err != nil {
		log.Fatal("Failed to initialize AWS provider: S3")
	}

	e := echo.New()
	v := validator.New()
	v.RegisterValidation("platform", models.ValidatePlatform)
	v.RegisterValidation("occasion", models.ValidateOccasion)
	v.RegisterValidation("category", models.ValidateCategory)
	v.RegisterValidation("style", models.ValidateStyle)
	v.RegisterValidation("gender", models.ValidateGender)
	e.Validator = &CustomValidator{validator: v}
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set("__db", db)
			c.Set("__asynqclient", asynqClient)
			c.Set("__asynqinspector", asynqInspector)
			return next(c)
		}
	})

	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
	}))

	authGroup := e.Group("auth")

	authController := AuthController{Google: googleService, FirebaseApp: firebaseApp, AWSService: awsService}
	authController.AuthRoutes(authGroup)

	wardrobeController := WardrobeController{
		AWSService:  awsService,
		FirebaseApp: firebaseApp,
		URLCache:    urlCache,
	}
	wardrobeGroup := e.Group("wardrobe", echojwt.JWT([]byte(os.Getenv("JWT_SECRET"))), UserMiddleware)
	wardrobeController.WardrobeRoutes(wardrobeGroup)

	stylistController := StylistController{
		Weather:  weatherService,
		URLCache: urlCache,
	}
	stylistGroup := e.Group("stylist", echojwt.JWT([]byte(os.Getenv("JWT_SECRET"))), UserMiddleware)
	stylistController.StylistRoutes(stylistGroup)

	return e
}
