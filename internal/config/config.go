package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Storage  StorageConfig
	Worker   WorkerConfig
	Reaper   ReaperConfig
	Token    TokenConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
}

type DatabaseConfig struct {
	Connection string
}

type StorageConfig struct {
	Bucket    string
	Prefix    string
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
}

type WorkerConfig struct {
	MaxConcurrentJobs int
	PollInterval      time.Duration
	JobTimeout        time.Duration
	StuckAfter        time.Duration
	StageDelay        time.Duration
}

type ReaperConfig struct {
	Interval      time.Duration
	LeaderLockTTL time.Duration
}

type TokenConfig struct {
	DefaultTTL      time.Duration
	SignedURLExpiry time.Duration
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Storage: StorageConfig{
			Bucket:    getEnv("S3_BUCKET", "quantcloud-models"),
			Prefix:    getEnv("S3_PREFIX", ""),
			Region:    getEnv("S3_REGION", "us-east-1"),
			Endpoint:  getEnv("S3_ENDPOINT", ""),
			AccessKey: getEnv("S3_ACCESS_KEY", ""),
			SecretKey: getEnv("S3_SECRET_KEY", ""),
		},
		Worker: WorkerConfig{
			MaxConcurrentJobs: getEnvAsInt("WORKER_MAX_CONCURRENT_JOBS", 2),
			PollInterval:      getEnvAsDuration("WORKER_POLL_INTERVAL", 5*time.Second),
			JobTimeout:        getEnvAsDuration("WORKER_JOB_TIMEOUT", 120*time.Minute),
			StuckAfter:        getEnvAsDuration("WORKER_STUCK_AFTER", 30*time.Minute),
			StageDelay:        getEnvAsDuration("WORKER_STAGE_DELAY", 2*time.Second),
		},
		Reaper: ReaperConfig{
			Interval:      getEnvAsDuration("REAPER_INTERVAL", 300*time.Second),
			LeaderLockTTL: getEnvAsDuration("REAPER_LEADER_LOCK_TTL", 60*time.Second),
		},
		Token: TokenConfig{
			DefaultTTL:      getEnvAsDuration("DOWNLOAD_TOKEN_TTL", 24*time.Hour),
			SignedURLExpiry: getEnvAsDuration("SIGNED_URL_EXPIRY", 15*time.Minute),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	return fallback
}
