package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	LLM      LLMConfig
	Storage  StorageConfig
	Upload   UploadConfig
	Logger   LoggerConfig
}

type LoggerConfig struct {
	Level string
	// Format is "json" (default) or "console".
	Format string
}

type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	BodyLimit    int
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
	MaxConns int32
}

// LLMConfig describes the OpenAI-compatible chat completion provider.
type LLMConfig struct {
	APIKey          string
	BaseURL         string
	ExtractionModel string
	ChatModel       string
	// Timeout bounds a single upstream call. Zero disables it.
	Timeout           time.Duration
	RequestsPerSecond float64
	Burst             int

	BreakerEnabled      bool
	BreakerMinRequests  uint32
	BreakerFailureRatio float64
	BreakerOpenTimeout  time.Duration
}

type StorageConfig struct {
	Bucket         string
	Region         string
	Endpoint       string
	AccessKey      string
	SecretKey      string
	FolderPrefix   string
	SignedURLTTL   time.Duration
	ForcePathStyle bool
}

type UploadConfig struct {
	MaxBytes     int64
	AllowedTypes []string
}

func Load() (*Config, error) {
	// .env is optional; plain environment variables work for Docker/K8s
	envFiles := []string{".env", "../.env", "../../.env"}
	for _, envFile := range envFiles {
		if err := godotenv.Load(envFile); err == nil {
			break
		}
	}

	readTimeout, _ := strconv.Atoi(getEnv("SERVER_READ_TIMEOUT", "30"))
	writeTimeout, _ := strconv.Atoi(getEnv("SERVER_WRITE_TIMEOUT", "300"))
	maxConns, _ := strconv.Atoi(getEnv("DB_MAX_CONNS", "10"))
	llmTimeout, _ := strconv.Atoi(getEnv("LLM_TIMEOUT_SECONDS", "120"))
	llmRPS, _ := strconv.ParseFloat(getEnv("LLM_REQUESTS_PER_SECOND", "2"), 64)
	llmBurst, _ := strconv.Atoi(getEnv("LLM_BURST", "4"))
	breakerMin, _ := strconv.Atoi(getEnv("LLM_BREAKER_MIN_REQUESTS", "10"))
	breakerRatio, _ := strconv.ParseFloat(getEnv("LLM_BREAKER_FAILURE_RATIO", "0.5"), 64)
	breakerOpen, _ := strconv.Atoi(getEnv("LLM_BREAKER_OPEN_SECONDS", "30"))
	signedTTL, _ := strconv.Atoi(getEnv("STORAGE_SIGNED_URL_TTL_SECONDS", "3600"))
	maxUploadMB, _ := strconv.Atoi(getEnv("UPLOAD_MAX_MB", "10"))

	return &Config{
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8080"),
			ReadTimeout:  time.Duration(readTimeout) * time.Second,
			WriteTimeout: time.Duration(writeTimeout) * time.Second,
			// multipart overhead on top of the largest accepted file
			BodyLimit: (maxUploadMB + 1) * 1024 * 1024,
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "purchase_control"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
			MaxConns: int32(maxConns),
		},
		LLM: LLMConfig{
			APIKey:              getEnv("LLM_API_KEY", ""),
			BaseURL:             getEnv("LLM_BASE_URL", "https://apps.abacus.ai/v1"),
			ExtractionModel:     getEnv("LLM_EXTRACTION_MODEL", "gpt-4o"),
			ChatModel:           getEnv("LLM_CHAT_MODEL", "gpt-4o-mini"),
			Timeout:             time.Duration(llmTimeout) * time.Second,
			RequestsPerSecond:   llmRPS,
			Burst:               llmBurst,
			BreakerEnabled:      getEnv("LLM_BREAKER_ENABLED", "true") == "true",
			BreakerMinRequests:  uint32(breakerMin),
			BreakerFailureRatio: breakerRatio,
			BreakerOpenTimeout:  time.Duration(breakerOpen) * time.Second,
		},
		Storage: StorageConfig{
			Bucket:         getEnv("AWS_BUCKET_NAME", "purchase-control"),
			Region:         getEnv("AWS_REGION", "us-east-1"),
			Endpoint:       getEnv("AWS_ENDPOINT", ""),
			AccessKey:      getEnv("AWS_ACCESS_KEY_ID", ""),
			SecretKey:      getEnv("AWS_SECRET_ACCESS_KEY", ""),
			FolderPrefix:   getEnv("AWS_FOLDER_PREFIX", ""),
			SignedURLTTL:   time.Duration(signedTTL) * time.Second,
			ForcePathStyle: getEnv("AWS_FORCE_PATH_STYLE", "false") == "true",
		},
		Upload: UploadConfig{
			MaxBytes:     int64(maxUploadMB) * 1024 * 1024,
			AllowedTypes: splitList(getEnv("UPLOAD_ALLOWED_TYPES", "image/jpeg,image/png,image/jpg,application/pdf")),
		},
		Logger: LoggerConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
