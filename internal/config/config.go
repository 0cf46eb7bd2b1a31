package config

import (
	"errors"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Server        ServerConfig
	Gemini        GeminiConfig
	Storage       StorageConfig
	Drive         DriveConfig
	ObjectStorage ObjectStorageConfig
	CORS          CORSConfig
	Demo          DemoConfig
	Log           LogConfig
}

type ServerConfig struct {
	Port string
	Env  string
}

type GeminiConfig struct {
	APIKey      string
	Model       string
	Temperature float32
	BaseURL     string
}

type StorageConfig struct {
	UploadPath  string
	MaxFileSize int64
}

type DriveConfig struct {
	BaseURL string
}

// ObjectStorageConfig describes the optional S3-compatible bucket resumes can
// be fetched from. The source is disabled while Bucket is empty.
type ObjectStorageConfig struct {
	Endpoint        string
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
}

type CORSConfig struct {
	AllowOrigins []string
}

type DemoConfig struct {
	UserEmail string
}

type LogConfig struct {
	JSON  bool
	Debug bool
}

var defaultAllowOrigins = []string{
	"http://localhost:5173",
	"http://127.0.0.1:5173",
	"http://localhost:5174",
	"http://127.0.0.1:5174",
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found. Using default values.")
	}

	env := getEnv("ENV", "development")

	return &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "8000"),
			Env:  env,
		},
		Gemini: GeminiConfig{
			APIKey:      getEnv("GEMINI_API_KEY", ""),
			Model:       getEnv("GEMINI_MODEL", "gemini-1.5-flash"),
			Temperature: 0,
			BaseURL:     getEnv("GEMINI_BASE_URL", ""),
		},
		Storage: StorageConfig{
			UploadPath:  getEnv("UPLOAD_PATH", os.TempDir()),
			MaxFileSize: getEnvAsInt64("MAX_FILE_SIZE", 10485760),
		},
		Drive: DriveConfig{
			BaseURL: getEnv("DRIVE_API_URL", "https://www.googleapis.com/drive/v3"),
		},
		ObjectStorage: ObjectStorageConfig{
			Endpoint:        getEnv("S3_ENDPOINT", ""),
			Region:          getEnv("S3_REGION", "auto"),
			Bucket:          getEnv("S3_BUCKET", ""),
			AccessKeyID:     getEnv("S3_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("S3_SECRET_ACCESS_KEY", ""),
		},
		CORS: CORSConfig{
			AllowOrigins: getEnvAsList("CORS_ALLOW_ORIGINS", defaultAllowOrigins),
		},
		Demo: DemoConfig{
			UserEmail: getEnv("DEMO_USER_EMAIL", "demo.user@example.com"),
		},
		Log: LogConfig{
			JSON:  getEnvAsBool("LOG_JSON", env != "development"),
			Debug: getEnvAsBool("LOG_DEBUG", env == "development"),
		},
	}
}

// Validate reports configuration the service cannot start without.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Gemini.APIKey) == "" {
		return errors.New("GEMINI_API_KEY not found in environment variables")
	}
	if c.Storage.MaxFileSize <= 0 {
		return errors.New("MAX_FILE_SIZE must be positive")
	}
	return nil
}

func (c *ObjectStorageConfig) Enabled() bool {
	return c.Bucket != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseInt(valueStr, 10, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	var values []string
	for _, part := range strings.Split(valueStr, ",") {
		if part = strings.TrimSpace(part); part != "" {
			values = append(values, part)
		}
	}
	if len(values) == 0 {
		return defaultValue
	}
	return values
}
