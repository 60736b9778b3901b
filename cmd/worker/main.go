package main

import (
	"log"
	"log/slog"

	"go-jobboard-backend/config"
	"go-jobboard-backend/internal/metrics"
	"go-jobboard-backend/internal/worker"
	"go-jobboard-backend/pkg/email"
	"go-jobboard-backend/pkg/logger"
	"go-jobboard-backend/pkg/redis"

	"github.com/hibiken/asynq"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger.Init(cfg.LogLevel)

	redisOpt, err := worker.RedisConnOpt(redis.Config{URL: cfg.RedisURL, Password: cfg.RedisPassword})
	if err != nil {
		log.Fatalf("redis config: %v", err)
	}

	emailService := email.NewEmailService(cfg)
	if !emailService.IsConfigured() {
		logger.Log.Warn("SMTP not configured, notification emails will be dropped")
	}

	server := asynq.NewServer(redisOpt, asynq.Config{
		Concurrency: cfg.WorkerConcurrency,
		Queues: map[string]int{
			worker.QueueNotifications: 1,
		},
	})

	mux := asynq.NewServeMux()
	mux.Use(metrics.AsynqMetricsMiddleware())
	mux.Handle(worker.TypeNotificationEmail, worker.NewEmailTaskHandler(emailService, logger.Log))

	logger.Log.Info("worker service started", slog.String("redis_addr", redisOpt.Addr), slog.Int("concurrency", cfg.WorkerConcurrency))
	if err := server.Run(mux); err != nil {
		logger.Log.Error("worker server stopped", slog.Any("error", err))
	}
}
