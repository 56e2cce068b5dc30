package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application level configuration loaded from environment variables.
// It is built once at startup and treated as read-only afterwards.
type Config struct {
	ServerPort string
	MySQLDSN   string
	RedisAddr  string
	RedisDB    int
	RedisPass  string

	AWSRegion          string
	AWSAccessKeyID     string
	AWSSecretAccessKey string
	S3Bucket           string
	S3Endpoint         string
	SNSTopicARN        string

	BaseURL     string
	SecretKey   string
	TokenMaxAge time.Duration

	SwaggerHost string
	ResetDB     bool
	LogLevel    string
}

// requiredKeys must be present for the process to start.
var requiredKeys = []string{
	"AWS_REGION",
	"BASE_URL",
	"SNS_TOPIC_ARN",
	"SECRET_KEY",
	"TOKEN_MAX_AGE",
	"S3_BUCKET_NAME",
}

// Load reads an optional .env file and builds Config from the environment.
// Missing required settings are reported together in a single error.
func Load() (*Config, error) {
	// .env is optional; real deployments inject the environment directly.
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv builds Config from the current process environment only.
func FromEnv() (*Config, error) {
	var missing []string
	for _, key := range requiredKeys {
		if strings.TrimSpace(os.Getenv(key)) == "" {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}

	maxAge, err := strconv.Atoi(os.Getenv("TOKEN_MAX_AGE"))
	if err != nil || maxAge <= 0 {
		return nil, fmt.Errorf("TOKEN_MAX_AGE must be a positive number of seconds, got %q", os.Getenv("TOKEN_MAX_AGE"))
	}

	return &Config{
		ServerPort: getEnv("SERVER_PORT", "8080"),
		MySQLDSN:   getEnv("MYSQL_DSN", "user:password@tcp(localhost:3306)/webapp?charset=utf8mb4&parseTime=True&loc=UTC"),
		RedisAddr:  getEnv("REDIS_ADDR", "localhost:6379"),
		RedisDB:    getEnvInt("REDIS_DB", 0),
		RedisPass:  os.Getenv("REDIS_PASSWORD"),

		AWSRegion:          os.Getenv("AWS_REGION"),
		AWSAccessKeyID:     os.Getenv("AWS_ACCESS_KEY_ID"),
		AWSSecretAccessKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
		S3Bucket:           os.Getenv("S3_BUCKET_NAME"),
		S3Endpoint:         os.Getenv("S3_ENDPOINT"),
		SNSTopicARN:        os.Getenv("SNS_TOPIC_ARN"),

		BaseURL:     strings.TrimRight(os.Getenv("BASE_URL"), "/"),
		SecretKey:   os.Getenv("SECRET_KEY"),
		TokenMaxAge: time.Duration(maxAge) * time.Second,

		SwaggerHost: os.Getenv("SWAGGER_HOST"),
		ResetDB:     os.Getenv("RESET_DB") == "true",
		LogLevel:    getEnv("LOG_LEVEL", "info"),
	}, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return def
}
