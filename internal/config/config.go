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
	Collab   CollabConfig
	Sync     SyncConfig
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

type CollabConfig struct {
	// TokenSecret signs the room access tokens handed out by /api/collab-auth.
	TokenSecret   string
	TokenLifetime time.Duration
	HubLogPath    string
}

type SyncConfig struct {
	FlushInterval    time.Duration
	TransferInterval time.Duration
	TeardownTimeout  time.Duration
	MaxSearchRows    int
	MaxSearchCols    int
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "5000"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:5000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", ""), // empty disables the relay
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Collab: CollabConfig{
			TokenSecret:   getEnv("COLLAB_TOKEN_SECRET", "dev-secret-do-not-ship"),
			TokenLifetime: getEnvAsDuration("COLLAB_TOKEN_LIFETIME", time.Hour),
			HubLogPath:    getEnv("COLLAB_HUB_LOG_PATH", "logs/collab.log"),
		},
		Sync: SyncConfig{
			FlushInterval:    getEnvAsDuration("SYNC_FLUSH_INTERVAL", 30*time.Second),
			TransferInterval: getEnvAsDuration("SYNC_TRANSFER_INTERVAL", 2*time.Second),
			TeardownTimeout:  getEnvAsDuration("SYNC_TEARDOWN_TIMEOUT", 5*time.Second),
			MaxSearchRows:    getEnvAsInt("PLACEMENT_MAX_ROWS", 1000),
			MaxSearchCols:    getEnvAsInt("PLACEMENT_MAX_COLS", 100),
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
