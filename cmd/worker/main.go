package main

import (
	"context"
	"log"
	"time"

	"wardrobeapi/config"
	"wardrobeapi/inference"
	"wardrobeapi/logger"
	"wardrobeapi/tasks"

	"github.com/getsentry/sentry-go"
	"github.com/hibiken/asynq"
)

func main() {
	cfg := config.Load()
	appLog := logger.New(cfg.LogLevel)
	if cfg.AsyncBrokerAddress == "" {
		log.Fatal("ASYNC_BROKER_ADDRESS environment variable is not set!")
	}
	if err := sentry.Init(sentry.ClientOptions{Dsn: cfg.SentryDSN, Environment: cfg.Env}); err != nil {
		log.Fatalf("sentry.Init: %s", err)
	}
	defer sentry.Flush(2 * time.Second)

	srv := asynq.NewServer(
		asynq.RedisClientOpt{Addr: cfg.AsyncBrokerAddress},
		asynq.Config{Concurrency: 10, Queues: map[string]int{
			tasks.QueueInference: 7,
		}},
	)

	sim := inference.NewSimulator(cfg.InferenceDelay)
	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypeInferenceClassify, func(ctx context.Context, t *asynq.Task) error {
		return tasks.HandleInferenceTask(ctx, t, sim, appLog)
	})

	appLog.WithField("queue", tasks.QueueInference).Info("starting inference worker")
	if err := srv.Run(mux); err != nil {
		log.Fatal(err)
	}
}
