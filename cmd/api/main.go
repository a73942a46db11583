package main

import (
	"fmt"
	"log"
	"time"

	"wardrobeapi/config"
	"wardrobeapi/controllers"
	"wardrobeapi/dbhelper"
	"wardrobeapi/inference"
	"wardrobeapi/kvstore"
	"wardrobeapi/logger"
	"wardrobeapi/metrics"
	"wardrobeapi/services"
	"wardrobeapi/stats"
	"wardrobeapi/tasks"
	"wardrobeapi/wardrobe"

	"github.com/getsentry/sentry-go"
	sentryecho "github.com/getsentry/sentry-go/echo"
	"github.com/hibiken/asynq"
	"github.com/labstack/echo/v4/middleware"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// sessions left open longer than this are dropped by the cleanup job
const sessionMaxAge = time.Hour

func openStore(cfg *config.Config) (kvstore.Store, error) {
	var store kvstore.Store
	switch cfg.StoreBackend {
	case config.StoreMemory:
		store = kvstore.NewMemoryStore()
	case config.StorePostgres:
		db, err := dbhelper.SetupDB()
		if err != nil {
			return nil, err
		}
		store = kvstore.NewGormStore(db)
	default:
		return nil, fmt.Errorf("unknown STORE_BACKEND %q", cfg.StoreBackend)
	}
	if !cfg.StoreCache {
		return store, nil
	}
	return kvstore.NewCachedStore(store)
}

func startSessionCleanup(uploads *inference.Service, log *logrus.Logger) *cron.Cron {
	c := cron.New()
	_, err := c.AddFunc("@every 10m", func() {
		if expired := uploads.ExpireSessions(sessionMaxAge); expired > 0 {
			log.WithField("expired", expired).Info("dropped stale upload sessions")
		}
	})
	if err != nil {
		log.WithError(err).Fatal("Failed to schedule upload session cleanup")
	}
	c.Start()
	return c
}

func main() {
	cfg := config.Load()
	appLog := logger.New(cfg.LogLevel)

	err := sentry.Init(sentry.ClientOptions{
		Dsn:              cfg.SentryDSN,
		Environment:      cfg.Env,
		Release:          "wardrobeapi@1.0.0",
		Debug:            false,
		TracesSampleRate: 1.0,
	})
	if err != nil {
		log.Fatalf("sentry.Init: %s", err)
	}
	defer sentry.Recover()
	defer sentry.Flush(2 * time.Second)

	if cfg.JWTSecret == "" {
		appLog.Fatal("JWT_SECRET environment variable is not set!")
	}

	store, err := openStore(cfg)
	if err != nil {
		appLog.WithError(err).Fatal("Failed to open wardrobe storage")
	}
	registry := wardrobe.NewRegistry(store, appLog)

	statsService, err := stats.NewService(appLog)
	if err != nil {
		appLog.WithError(err).Fatal("Failed to initialize stats cache")
	}
	registry.OnOpen(statsService.Watch)

	m := metrics.New()
	uploads := inference.NewService(inference.NewSimulator(cfg.InferenceDelay), registry, cfg.ConfidenceThreshold, appLog).
		WithObserver(m)
	cleanup := startSessionCleanup(uploads, appLog)
	defer cleanup.Stop()

	var dispatcher *tasks.Dispatcher
	if cfg.AsyncBrokerAddress != "" {
		redisOpt := asynq.RedisClientOpt{Addr: cfg.AsyncBrokerAddress}
		asynqClient := asynq.NewClient(redisOpt)
		defer asynqClient.Close()
		asynqInspector := asynq.NewInspector(redisOpt)
		defer asynqInspector.Close()
		dispatcher = tasks.NewDispatcher(asynqClient, asynqInspector, registry, cfg.ConfidenceThreshold).
			WithObserver(m)
	} else {
		appLog.Info("ASYNC_BROKER_ADDRESS not set, auto confirmed uploads are classified inline")
	}

	awsService := &services.AWSService{}
	urlCache, err := services.NewURLCacheService(awsService, cfg.BucketName, appLog)
	if err != nil {
		appLog.WithError(err).Fatal("Failed to initialize URL cache service")
	}

	e := controllers.SetupServer(controllers.ServerDeps{
		Config:     cfg,
		Log:        appLog,
		Registry:   registry,
		Uploads:    uploads,
		Stats:      statsService,
		Dispatcher: dispatcher,
		AWSService: awsService,
		URLCache:   urlCache,
		Metrics:    m,
	})
	e.Debug = cfg.Env == "local"
	e.Use(middleware.RateLimiter(middleware.NewRateLimiterMemoryStore(20)))
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(sentryecho.New(sentryecho.Options{Repanic: true}))

	appLog.WithFields(logrus.Fields{"port": cfg.Port, "store": cfg.StoreBackend}).Info("starting wardrobe api")
	e.Logger.Fatal(e.Start(":" + cfg.Port))
}
