package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port              string
	LogLevel          string
	DBUrl             string
	ListenDBUrl       string // session-mode connection for LISTEN; PgBouncer transaction mode drops notifications
	SupabaseUrl       string
	SupabaseJWTSecret string
	FrontendURL       string
	// Redis/Upstash Configuration
	RedisURL      string
	RedisPassword string
	// Real-time feed
	NotificationFeedChannel string // Postgres NOTIFY channel written by the notifications trigger
	NotificationListLimit   int
	// Object storage
	StorageProvider      string // aws | wasabi | minio
	ResumeBucket         string
	StoragePublicBaseURL string
	S3Region             string
	S3AccessKeyID        string
	S3SecretAccessKey    string
	WasabiEndpoint       string
	MinIOEndpoint        string
	MinIOAccessKeyID     string
	MinIOSecretAccessKey string
	MinIOUseSSL          bool
	MinIOAutoCreate      bool
	// Resume uploads
	ClamAVAddress        string
	ClamAVTimeout        time.Duration
	UploadLimitPerMinute int
	UploadLimitPerDay    int
	// SMTP Configuration (Brevo)
	SMTPHost      string
	SMTPPort      string
	SMTPUsername  string
	SMTPPassword  string
	SMTPFromEmail string
	// Rate Limiting Configuration
	RateLimitWindowSeconds   int
	RateLimitGlobalThreshold int
	// Worker
	WorkerConcurrency int
	Environment       string
}

func LoadConfig() (*Config, error) {
	// .env is only present locally; production injects the environment directly
	_ = godotenv.Load()

	dbURL := getEnv("DATABASE_URL", "")

	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		LogLevel:    getEnv("LOG_LEVEL", "debug"),
		DBUrl:       dbURL,
		ListenDBUrl: getEnv("DATABASE_LISTEN_URL", dbURL),
		// Trailing slash would produce ".co//auth" when building JWKS URLs
		SupabaseUrl:       strings.TrimRight(getEnv("SUPABASE_URL", ""), "/"),
		SupabaseJWTSecret: getEnv("SUPABASE_JWT_SECRET", getEnv("SUPABASE_JWT_KEY", "")),
		FrontendURL:       strings.TrimRight(getEnv("FRONTEND_URL", "http://localhost:3000"), "/"),
		// Redis
		RedisURL:      getEnv("REDIS_URL", getEnv("UPSTASH_REDIS_URL", "")),
		RedisPassword: getEnv("REDIS_PASSWORD", getEnv("UPSTASH_REDIS_PASSWORD", "")),
		// Real-time feed
		NotificationFeedChannel: getEnv("NOTIFICATION_FEED_CHANNEL", "notification_changes"),
		NotificationListLimit:   getEnvInt("NOTIFICATION_LIST_LIMIT", 50),
		// Object storage
		StorageProvider:      strings.ToLower(getEnv("STORAGE_PROVIDER", "aws")),
		ResumeBucket:         getEnv("RESUME_BUCKET", "resumes"),
		StoragePublicBaseURL: strings.TrimRight(getEnv("STORAGE_PUBLIC_BASE_URL", ""), "/"),
		S3Region:             getEnv("S3_REGION", "ap-southeast-1"),
		S3AccessKeyID:        getEnv("S3_ACCESS_KEY_ID", ""),
		S3SecretAccessKey:    getEnv("S3_SECRET_ACCESS_KEY", ""),
		WasabiEndpoint:       getEnv("WASABI_ENDPOINT", ""),
		MinIOEndpoint:        getEnv("MINIO_ENDPOINT", "localhost:9000"),
		MinIOAccessKeyID:     getEnv("MINIO_ACCESS_KEY_ID", ""),
		MinIOSecretAccessKey: getEnv("MINIO_SECRET_ACCESS_KEY", ""),
		MinIOUseSSL:          getEnvBool("MINIO_USE_SSL", false),
		MinIOAutoCreate:      getEnvBool("MINIO_AUTO_CREATE_BUCKET", true),
		// Resume uploads
		ClamAVAddress:        getEnv("CLAMAV_ADDRESS", ""),
		ClamAVTimeout:        time.Duration(getEnvInt("CLAMAV_TIMEOUT_SECONDS", 30)) * time.Second,
		UploadLimitPerMinute: getEnvInt("UPLOAD_LIMIT_PER_MINUTE", 10),
		UploadLimitPerDay:    getEnvInt("UPLOAD_LIMIT_PER_DAY", 50),
		// SMTP
		SMTPHost:      getEnv("SMTP_HOST", "smtp-relay.brevo.com"),
		SMTPPort:      getEnv("SMTP_PORT", "587"),
		SMTPUsername:  getEnv("SMTP_USERNAME", ""),
		SMTPPassword:  getEnv("SMTP_PASSWORD", ""),
		SMTPFromEmail: getEnv("SMTP_FROM_EMAIL", "noreply@jobboard.local"),
		// Rate limiting
		RateLimitWindowSeconds:   getEnvInt("RATE_LIMIT_WINDOW_SECONDS", 60),
		RateLimitGlobalThreshold: getEnvInt("RATE_LIMIT_GLOBAL_THRESHOLD", 100),
		// Worker
		WorkerConcurrency: getEnvInt("WORKER_CONCURRENCY", 5),
		Environment:       getEnv("APP_ENV", "development"),
	}

	if cfg.DBUrl == "" {
		log.Println("WARNING: DATABASE_URL is missing. Application may fail to connect.")
	}

	if cfg.RedisURL == "" {
		log.Println("WARNING: REDIS_URL not configured. Real-time feed and rate limiting will use in-memory fallback.")
	}

	if cfg.NotificationListLimit <= 0 || cfg.NotificationListLimit > 50 {
		cfg.NotificationListLimit = 50
	}

	return cfg, nil
}

// IsProduction reports whether the service runs with production settings.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// getEnvInt returns an integer environment variable or fallback if not set/invalid
func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return fallback
}

// getEnvBool returns a boolean environment variable or fallback if not set/invalid
func getEnvBool(key string, fallback bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return fallback
}
