package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go-jobboard-backend/config"
	_ "go-jobboard-backend/docs" // Important for Swagger
	v1 "go-jobboard-backend/internal/delivery/http/v1"
	"go-jobboard-backend/internal/domain"
	"go-jobboard-backend/internal/realtime"
	"go-jobboard-backend/internal/repository/postgres"
	"go-jobboard-backend/internal/usecase"
	"go-jobboard-backend/internal/worker"
	"go-jobboard-backend/pkg/auth"
	"go-jobboard-backend/pkg/database"
	"go-jobboard-backend/pkg/logger"
	"go-jobboard-backend/pkg/redis"
	"go-jobboard-backend/pkg/security"
	"go-jobboard-backend/pkg/security/antivirus"
	"go-jobboard-backend/pkg/storage"
	"go-jobboard-backend/pkg/validation"

	"github.com/hibiken/asynq"
	goredis "github.com/redis/go-redis/v9"
)

// @title           Job Board Candidate API
// @version         1.0
// @description     Notifications, profile editing and resume uploads for job-board candidates.
// @host            localhost:8080
// @BasePath        /v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// 1. Load Config
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 2. Setup Logger
	logger.Init(cfg.LogLevel)
	logger.Log.Info("Starting job board backend", "port", cfg.Port, "env", cfg.Environment)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 3. Setup Database
	dbPool, err := database.NewPostgresConnection(ctx, cfg.DBUrl)
	if err != nil {
		logger.Log.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer dbPool.Close()

	// LISTEN needs a session-mode connection; PgBouncer transaction mode drops it
	listenPool := dbPool
	if cfg.ListenDBUrl != cfg.DBUrl {
		listenPool, err = database.NewPostgresConnection(ctx, cfg.ListenDBUrl)
		if err != nil {
			logger.Log.Error("Failed to connect listen database", "error", err)
			os.Exit(1)
		}
		defer listenPool.Close()
	}

	// 4. Setup Redis (optional)
	var redisClient *goredis.Client
	var feed domain.NotificationFeed
	redisCfg := redis.Config{URL: cfg.RedisURL, Password: cfg.RedisPassword}
	redisClient, err = redis.Connect(ctx, redisCfg)
	if err != nil {
		logger.Log.Warn("Redis unavailable, using in-process feed and rate limits", "error", err)
		redisClient = nil
		memFeed := realtime.NewMemoryFeed()
		defer memFeed.Close()
		feed = memFeed
	} else {
		defer redisClient.Close()
		feed = realtime.NewRedisFeed(redisClient)
	}

	// Email tasks need Redis too; without it notifications are in-app only
	var mailer domain.NotificationMailer
	if redisClient != nil {
		connOpt, err := worker.RedisConnOpt(redisCfg)
		if err == nil {
			asynqClient := asynq.NewClient(connOpt)
			defer asynqClient.Close()
			mailer = worker.NewEnqueuer(asynqClient)
		}
	}

	// 5. Setup Object Storage
	store, err := storage.NewFromConfig(ctx, cfg)
	if err != nil {
		logger.Log.Error("Failed to initialize object storage", "provider", cfg.StorageProvider, "error", err)
		os.Exit(1)
	}

	// 6. Setup Security
	audit := security.NewSecurityLogger("jobboard-api", cfg.Environment)
	defer audit.Sync()

	var scanner antivirus.Scanner = antivirus.NewNoOpScanner()
	if cfg.ClamAVAddress != "" {
		clam := antivirus.NewClamAVScanner(cfg.ClamAVAddress, cfg.ClamAVTimeout)
		if !clam.Available(ctx) {
			logger.Log.Warn("ClamAV not reachable at startup, uploads will fail until it is", "address", cfg.ClamAVAddress)
		}
		// The chain fails closed when no scanner answers
		scanner = antivirus.NewChainScanner(clam)
	}
	uploadLimiter := security.NewUploadLimiter(redisClient, cfg.UploadLimitPerMinute, cfg.UploadLimitPerDay)

	// 7. Setup Repositories
	userRepo := postgres.NewUserRepository(dbPool)
	notificationRepo := postgres.NewNotificationRepository(dbPool)
	profileRepo := postgres.NewProfileRepository(dbPool)

	// 8. Setup UseCases
	validate := validation.New()
	verifier := auth.NewVerifier(cfg.SupabaseJWTSecret, auth.NewProvider(cfg.SupabaseUrl+"/auth/v1/.well-known/jwks.json"))
	authUC := usecase.NewAuthUsecase(userRepo, verifier)
	notificationUC := usecase.NewNotificationUsecase(notificationRepo, profileRepo, feed, mailer, audit, validate, cfg.NotificationListLimit)
	profileUC := usecase.NewProfileUsecase(profileRepo, validate)
	resumeUC := usecase.NewResumeUsecase(profileRepo, store, scanner, uploadLimiter, audit)

	checks := map[string]usecase.Pinger{"database": dbPool}
	if redisClient != nil {
		checks["redis"] = usecase.PingFunc(func(ctx context.Context) error { return redis.HealthCheck(ctx, redisClient) })
	}
	if p, ok := store.(usecase.Pinger); ok {
		checks["storage"] = p
	}
	healthUC := usecase.NewHealthUsecase(checks)

	// 9. Start the change-feed relay
	relay := realtime.NewPGRelay(listenPool, cfg.NotificationFeedChannel, feed, notificationRepo)
	go func() {
		if err := relay.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Log.Error("Notification relay stopped", slog.Any("error", err))
		}
	}()

	// 10. Setup Router
	router := v1.NewRouter(v1.RouterDeps{
		AuthUC:         authUC,
		NotificationUC: notificationUC,
		ProfileUC:      profileUC,
		ResumeUC:       resumeUC,
		HealthUC:       healthUC,
		Redis:          redisClient,
		Audit:          audit,
		Config:         cfg,
	})

	// 11. Start Server
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Error("Listen failed", "error", err)
			stop()
		}
	}()

	// Graceful Shutdown
	<-ctx.Done()
	logger.Log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error("Server forced to shutdown", "error", err)
	}

	logger.Log.Info("Server exiting")
}
