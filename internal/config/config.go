package config

import (
	"os"
	"strconv"
	"time"
)

// DatabaseConfig holds PostgreSQL database connection settings.
type DatabaseConfig struct {
	Host               string
	Port               string
	User               string
	Password           string
	Name               string
	SSLMode            string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeSec int
}

// MinIOConfig holds object storage settings for MinIO.
// PublicBaseURL, when set, is the prefix used to build public object URLs
// (e.g. a CDN or reverse proxy in front of the bucket).
type MinIOConfig struct {
	Endpoint      string
	AccessKey     string
	SecretKey     string
	Bucket        string
	UseSSL        bool
	PublicBaseURL string
}

// ReportConfig tunes PDF export.
type ReportConfig struct {
	MaxPages         int
	FetchTimeoutSec  int
	FetchConcurrency int
	MaxImageBytes    int
	MaxImagePixels   int
}

// AppConfig is the centralized configuration struct for the application.
// It is populated from environment variables. Sensitive values are not hardcoded.
type AppConfig struct {
	AppHost       string
	Port          string
	Timezone      string
	LogLevel      string
	MaxMediaBytes int
	BodyLimit     int
	Database      DatabaseConfig
	MinIO         MinIOConfig
	Report        ReportConfig
}

// ClientConfig is used by the command line client.
type ClientConfig struct {
	APIURL     string
	TimeoutSec int
	Timezone   string
	Report     ReportConfig
}

// Load reads configuration from environment variables.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
// This function does not require a .env file; real environment variables take precedence.
func Load() *AppConfig {
	return &AppConfig{
		AppHost:       getEnv("APP_HOST", "localhost:8080"),
		Port:          getEnv("PORT", "8080"),
		Timezone:      getEnv("APP_TIMEZONE", "America/Sao_Paulo"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		MaxMediaBytes: getEnvInt("MAX_MEDIA_BYTES", 10<<20),
		BodyLimit:     getEnvInt("HTTP_BODY_LIMIT_BYTES", 64<<20),
		Database: DatabaseConfig{
			Host:               getEnv("DB_HOST", ""),
			Port:               getEnv("DB_PORT", "5432"),
			User:               getEnv("DB_USER", ""),
			Password:           getEnv("DB_PASSWORD", ""),
			Name:               getEnv("DB_NAME", ""),
			SSLMode:            getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:       getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:       getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetimeSec: getEnvInt("DB_CONN_MAX_LIFETIME_SEC", 300),
		},
		MinIO: MinIOConfig{
			Endpoint:      getEnv("MINIO_ENDPOINT", ""),
			AccessKey:     getEnv("MINIO_ACCESS_KEY", ""),
			SecretKey:     getEnv("MINIO_SECRET_KEY", ""),
			Bucket:        getEnv("MINIO_BUCKET", "checklist-images"),
			UseSSL:        getEnvBool("MINIO_USE_SSL", false),
			PublicBaseURL: getEnv("MINIO_PUBLIC_BASE_URL", ""),
		},
		Report: loadReport(),
	}
}

// LoadClient reads the command line client configuration.
func LoadClient() *ClientConfig {
	return &ClientConfig{
		APIURL:     getEnv("CHECKLIST_API_URL", "http://localhost:8080"),
		TimeoutSec: getEnvInt("CHECKLIST_API_TIMEOUT_SEC", 60),
		Timezone:   getEnv("APP_TIMEZONE", "America/Sao_Paulo"),
		Report:     loadReport(),
	}
}

func loadReport() ReportConfig {
	return ReportConfig{
		MaxPages:         getEnvInt("REPORT_MAX_PAGES", 3),
		FetchTimeoutSec:  getEnvInt("REPORT_FETCH_TIMEOUT_SEC", 10),
		FetchConcurrency: getEnvInt("REPORT_FETCH_CONCURRENCY", 4),
		MaxImageBytes:    getEnvInt("REPORT_MAX_IMAGE_BYTES", 10<<20),
		MaxImagePixels:   getEnvInt("REPORT_MAX_IMAGE_PIXELS", 48_000_000),
	}
}

// Location resolves the configured time zone, falling back to UTC when unknown.
func Location(name string) *time.Location {
	if name == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
	}
	return def
}
