package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"anoa.com/alumnihub/pkg/database"
	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv         string
	Port           string
	AllowedOrigins string
	LogLevel       string

	Database database.Options
	RedisURL string

	MeiliSearchHost string
	MeiliMasterKey  string

	CloudinaryURL          string
	CloudinaryCloudName    string
	CloudinaryUploadFolder string

	TicketSecret string
	TicketTTL    time.Duration

	StoreTimeout  time.Duration
	NotifyTimeout time.Duration

	RateLimitMessage time.Duration
	AuthRatePerSec   float64
	AuthRateBurst    int

	PushTitle  string
	BcryptCost int

	ReindexSchedule string
	JobTimeout      time.Duration
}

func Load() (*Config, error) {
	// Don't fail if .env doesn't exist (might be prod env vars)
	_ = godotenv.Load()

	cfg := &Config{
		AppEnv:         getEnv("APP_ENV", "development"),
		Port:           getEnv("PORT", "8080"),
		AllowedOrigins: getEnv("ALLOWED_ORIGINS", "http://localhost:3000"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),

		Database: database.Options{
			Host:     getEnv("DB_HOST", "localhost"),
			User:     getEnv("DB_USER", "postgres"),
			Password: os.Getenv("DB_PASS"),
			Name:     getEnv("DB_NAME", "alumnihub"),
			Port:     getEnv("DB_PORT", "5432"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		RedisURL: os.Getenv("REDIS_URL"),

		MeiliSearchHost: os.Getenv("MEILISEARCH_HOST"),
		MeiliMasterKey:  os.Getenv("MEILI_MASTER_KEY"),

		CloudinaryURL:          os.Getenv("CLOUDINARY_URL"),
		CloudinaryCloudName:    os.Getenv("CLOUDINARY_CLOUD_NAME"),
		CloudinaryUploadFolder: getEnv("CLOUDINARY_UPLOAD_FOLDER", "alumnihub/photos"),

		TicketSecret: getEnv("TICKET_SECRET", "change-me"),
		PushTitle:    getEnv("PUSH_TITLE", "Ikamantab Forum"),

		ReindexSchedule: getEnv("REINDEX_SCHEDULE", "0 3 * * *"),
	}
	cfg.Database.Debug = cfg.AppEnv == "development"

	var err error
	if cfg.TicketTTL, err = parseDuration("TICKET_TTL", "2m"); err != nil {
		return nil, err
	}
	if cfg.StoreTimeout, err = parseDuration("STORE_TIMEOUT", "5s"); err != nil {
		return nil, err
	}
	if cfg.NotifyTimeout, err = parseDuration("NOTIFY_TIMEOUT", "10s"); err != nil {
		return nil, err
	}
	// Zero leaves messaging unthrottled.
	if cfg.RateLimitMessage, err = parseDuration("RATE_LIMIT_MESSAGE", "0s"); err != nil {
		return nil, err
	}
	if cfg.JobTimeout, err = parseDuration("JOB_TIMEOUT", "10m"); err != nil {
		return nil, err
	}
	if cfg.Database.ConnMaxLifetime, err = parseDuration("DB_CONN_MAX_LIFETIME", "30m"); err != nil {
		return nil, err
	}

	if cfg.AuthRatePerSec, err = strconv.ParseFloat(getEnv("AUTH_RATE_PER_SEC", "5"), 64); err != nil {
		return nil, fmt.Errorf("invalid AUTH_RATE_PER_SEC: %w", err)
	}
	if cfg.AuthRateBurst, err = strconv.Atoi(getEnv("AUTH_RATE_BURST", "10")); err != nil {
		return nil, fmt.Errorf("invalid AUTH_RATE_BURST: %w", err)
	}
	if cfg.BcryptCost, err = strconv.Atoi(getEnv("BCRYPT_COST", "10")); err != nil {
		return nil, fmt.Errorf("invalid BCRYPT_COST: %w", err)
	}
	if cfg.Database.MaxOpenConns, err = strconv.Atoi(getEnv("DB_MAX_OPEN_CONNS", "25")); err != nil {
		return nil, fmt.Errorf("invalid DB_MAX_OPEN_CONNS: %w", err)
	}
	if cfg.Database.MaxIdleConns, err = strconv.Atoi(getEnv("DB_MAX_IDLE_CONNS", "5")); err != nil {
		return nil, fmt.Errorf("invalid DB_MAX_IDLE_CONNS: %w", err)
	}

	if cfg.AppEnv == "production" && cfg.TicketSecret == "change-me" {
		return nil, fmt.Errorf("TICKET_SECRET must be set in production")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func parseDuration(key, fallback string) (time.Duration, error) {
	d, err := time.ParseDuration(getEnv(key, fallback))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
