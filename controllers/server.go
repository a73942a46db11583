package controllers

import (
	"context"
	"net/http"

	"wardrobeapi/config"
	"wardrobeapi/inference"
	"wardrobeapi/metrics"
	"wardrobeapi/services"
	"wardrobeapi/stats"
	"wardrobeapi/tasks"
	"wardrobeapi/wardrobe"

	"github.com/go-playground/validator"
	echojwt "github.com/labstack/echo-jwt"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"
)

type CustomValidator struct {
	validator *validator.Validate
}

func (cv *CustomValidator) Validate(i interface{}) error {
	if err := cv.validator.Struct(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}

// ServerDeps are the services the HTTP layer is built on. Dispatcher may be
// nil when no broker is configured; uploads are then classified inline.
type ServerDeps struct {
	Config     *config.Config
	Log        *logrus.Logger
	Registry   *wardrobe.Registry
	Uploads    *inference.Service
	Stats      *stats.Service
	Dispatcher *tasks.Dispatcher
	AWSService services.AWSServiceProvider
	URLCache   services.URLCacheServiceProvider
	Metrics    *metrics.Metrics
}

func SetupServer(deps ServerDeps) *echo.Echo {
	log := deps.Log
	if err := deps.AWSService.InitPresignClient(context.Background()); err != nil {
		log.WithError(err).Warn("Failed to initialize AWS provider: S3, presigned urls disabled")
	}

	e := echo.New()
	e.HideBanner = true
	e.Validator = &CustomValidator{validator: validator.New()}

	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))
	if deps.Metrics != nil {
		e.Use(deps.Metrics.Middleware())
		e.GET("/metrics", echo.WrapHandler(deps.Metrics.Handler()))
	}
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	images := &imageResolver{
		AWSService: deps.AWSService,
		URLCache:   deps.URLCache,
		BucketName: deps.Config.BucketName,
		Log:        log,
	}

	wardrobeGroup := e.Group("/wardrobe", echojwt.JWT([]byte(deps.Config.JWTSecret)))
	wardrobeGroup.Use(UserMiddleware(deps.Registry))

	itemsController := ItemsController{Images: images}
	itemsController.ItemRoutes(wardrobeGroup.Group("/items"))

	outfitsController := OutfitsController{Images: images}
	outfitsController.OutfitRoutes(wardrobeGroup.Group("/outfits"))

	uiController := UIController{Registry: deps.Registry, Images: images}
	uiController.UIRoutes(wardrobeGroup)

	statsController := StatsController{Stats: deps.Stats}
	statsController.StatsRoutes(wardrobeGroup.Group("/stats"))

	uploadsController := UploadsController{
		Uploads:    deps.Uploads,
		Dispatcher: deps.Dispatcher,
		Images:     images,
	}
	uploadsController.UploadRoutes(wardrobeGroup.Group("/uploads"))
	uploadsController.RecentUploadRoutes(wardrobeGroup.Group("/recent-uploads"))

	return e
}
