package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	StorageDriverS3     = "s3"
	StorageDriverMemory = "memory"
)

type Config struct {
	Port         string
	DatabasePath string
	LogLevel     string

	// Object storage backing the document ledger
	StorageDriver     string
	S3Endpoint        string
	S3AccessKeyID     string
	S3SecretAccessKey string
	S3BucketName      string
	S3UseSSL          bool

	// Remote OCR engine; empty endpoint means native text extraction only
	OCREndpoint  string
	OCRAPIKey    string
	OCRTimeout   time.Duration
	OCRRateLimit float64

	// Candidate file providers
	ProviderDir      string
	ProviderCacheTTL time.Duration

	// Alternative requirement tables (YAML); empty uses the built-in tables
	RequirementsFile string

	PipelineWorkers int
	ProgressTTL     time.Duration

	// Upload limits
	MaxFileSize int64
}

// Load reads configuration from the environment, after merging a local .env
// file when one exists.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	cfg := &Config{
		Port:              getEnv("PORT", "8080"),
		DatabasePath:      getEnv("DATABASE_PATH", "data/loan-documents.db"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		StorageDriver:     getEnv("STORAGE_DRIVER", StorageDriverS3),
		S3Endpoint:        getEnv("S3_ENDPOINT", "localhost:9000"),
		S3AccessKeyID:     getEnv("S3_ACCESS_KEY_ID", "minioadmin"),
		S3SecretAccessKey: getEnv("S3_SECRET_ACCESS_KEY", "minioadmin"),
		S3BucketName:      getEnv("S3_BUCKET_NAME", "loan-documents"),
		S3UseSSL:          getEnv("S3_USE_SSL", "false") == "true",
		OCREndpoint:       getEnv("OCR_ENDPOINT", ""),
		OCRAPIKey:         getEnv("OCR_API_KEY", ""),
		ProviderDir:       getEnv("PROVIDER_DIR", ""),
		RequirementsFile:  getEnv("REQUIREMENTS_FILE", ""),
	}

	var err error
	if cfg.OCRTimeout, err = getDuration("OCR_TIMEOUT", 60*time.Second); err != nil {
		return nil, err
	}
	if cfg.ProviderCacheTTL, err = getDuration("PROVIDER_CACHE_TTL", 5*time.Minute); err != nil {
		return nil, err
	}
	if cfg.ProgressTTL, err = getDuration("PROGRESS_TTL", 15*time.Minute); err != nil {
		return nil, err
	}
	if cfg.OCRRateLimit, err = getFloat("OCR_RATE_LIMIT", 2); err != nil {
		return nil, err
	}
	workers, err := getInt("PIPELINE_WORKERS", 4)
	if err != nil {
		return nil, err
	}
	cfg.PipelineWorkers = workers
	maxSize, err := getInt("MAX_FILE_SIZE", 5*1024*1024)
	if err != nil {
		return nil, err
	}
	cfg.MaxFileSize = int64(maxSize)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	switch c.StorageDriver {
	case StorageDriverS3, StorageDriverMemory:
	default:
		return fmt.Errorf("STORAGE_DRIVER must be %q or %q, got %q", StorageDriverS3, StorageDriverMemory, c.StorageDriver)
	}
	if c.OCREndpoint != "" && c.OCRAPIKey == "" {
		return fmt.Errorf("OCR_API_KEY is required when OCR_ENDPOINT is set")
	}
	if c.PipelineWorkers <= 0 {
		return fmt.Errorf("PIPELINE_WORKERS must be positive, got %d", c.PipelineWorkers)
	}
	if c.MaxFileSize <= 0 {
		return fmt.Errorf("MAX_FILE_SIZE must be positive, got %d", c.MaxFileSize)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}

func getFloat(key string, defaultValue float64) (float64, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}

func getDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}
