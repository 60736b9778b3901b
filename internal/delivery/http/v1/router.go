package v1

import (
	"net/http"
	"time"

	"go-jobboard-backend/config"
	"go-jobboard-backend/internal/delivery/http/middleware"
	"go-jobboard-backend/internal/delivery/http/response"
	"go-jobboard-backend/internal/domain"
	"go-jobboard-backend/internal/metrics"
	"go-jobboard-backend/internal/usecase"
	"go-jobboard-backend/pkg/security"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	goredis "github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

type RouterDeps struct {
	AuthUC         domain.AuthUsecase
	NotificationUC domain.NotificationUsecase
	ProfileUC      domain.ProfileUsecase
	ResumeUC       domain.ResumeUsecase
	HealthUC       usecase.HealthUsecase
	Redis          *goredis.Client // nil means in-memory rate limiting
	Audit          *security.SecurityLogger
	Config         *config.Config
}

func NewRouter(deps RouterDeps) *gin.Engine {
	r := gin.New()
	production := deps.Config.IsProduction()

	// Global Middlewares
	r.Use(middleware.CORSMiddleware(deps.Config.FrontendURL, production)) // CORS must be first!
	r.Use(gin.Recovery())
	r.Use(gin.Logger())
	r.Use(middleware.RequestID())
	r.Use(middleware.SecurityHeadersMiddleware())
	r.Use(metrics.GinMiddleware())
	r.Use(middleware.ErrorHandler())

	limiter := middleware.NewRateLimiter(deps.Redis, deps.Audit)
	window := time.Duration(deps.Config.RateLimitWindowSeconds) * time.Second

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.Group("/v1")

	v1.GET("/health", func(c *gin.Context) {
		status := deps.HealthUC.Check(c.Request.Context())
		if status["status"] != "ok" {
			response.Error(c, http.StatusServiceUnavailable, "System degraded", status)
			return
		}
		response.Success(c, http.StatusOK, "System operational", status)
	})

	v1.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Browsers cannot set headers on a WebSocket upgrade; the stream
	// authenticates its own first frame
	NewNotificationStreamHandler(v1, deps.AuthUC, deps.NotificationUC, deps.Config.NotificationListLimit,
		middleware.AllowedOrigin(deps.Config.FrontendURL, production))

	// Protected routes
	protected := v1.Group("")
	protected.Use(middleware.AuthMiddleware(deps.AuthUC, deps.Audit))
	protected.Use(limiter.Middleware(middleware.DefaultRateLimitConfig(deps.Config.RateLimitGlobalThreshold, window)))
	{
		NewAuthHandler(protected, deps.AuthUC)
		NewNotificationHandler(protected, deps.NotificationUC, limiter.Middleware(middleware.PublishRateLimitConfig()))
		NewProfileHandler(protected, deps.ProfileUC, deps.ResumeUC)
	}

	return r
}
