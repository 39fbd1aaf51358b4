package common

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig
	LLM      LLMConfig
	Store    StoreConfig
	Pipeline PipelineConfig
	Export   ExportConfig
	Log      LogConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	HTTPAddr string
	GRPCAddr string
}

// LLMConfig holds analysis-service configuration. An empty APIKey selects offline mode.
type LLMConfig struct {
	BaseURL     string
	Model       string
	APIKey      string
	Temperature float32
	Timeout     time.Duration
}

// StoreConfig selects the job store backend.
type StoreConfig struct {
	Driver string // "memory" | "sqlite"
	DSN    string
}

// PipelineConfig holds pipeline tuning.
type PipelineConfig struct {
	CatalogFile   string
	StageDelay    time.Duration
	MaxDocumentMB int
	// PdftotextBin enables pdftotext for offline text extraction; empty keeps printable-byte extraction.
	PdftotextBin string
}

// ExportConfig holds export defaults.
type ExportConfig struct {
	Dir    string
	Format string
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level  string
	Format string // "text" | "json"
}

const (
	StoreMemory = "memory"
	StoreSQLite = "sqlite"
)

// LoadConfig loads configuration from environment variables. A .env file in the
// working directory is applied first when present.
func LoadConfig() *Config {
	_ = godotenv.Load()
	return configFromEnv()
}

// LoadConfigFile is LoadConfig with an explicit .env path; a missing file is an error.
func LoadConfigFile(envFile string) (*Config, error) {
	if err := godotenv.Load(envFile); err != nil {
		return nil, NewAppError(CodeConfig, "load env file "+envFile, err)
	}
	return configFromEnv(), nil
}

func configFromEnv() *Config {
	return &Config{
		Server: ServerConfig{
			HTTPAddr: getEnv("HTTP_ADDR", ":8080"),
			GRPCAddr: getEnv("GRPC_ADDR", ":9090"),
		},
		LLM: LLMConfig{
			BaseURL:     getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
			Model:       getEnv("OPENAI_MODEL", "gpt-4o-mini"),
			APIKey:      getEnv("OPENAI_API_KEY", ""),
			Temperature: getEnvAsFloat32("OPENAI_TEMPERATURE", 0.0),
			Timeout:     getEnvAsDuration("OPENAI_TIMEOUT", 60*time.Second),
		},
		Store: StoreConfig{
			Driver: strings.ToLower(getEnv("JOB_STORE", StoreMemory)),
			DSN:    getEnv("JOB_STORE_DSN", "file::memory:?cache=shared"),
		},
		Pipeline: PipelineConfig{
			CatalogFile:   getEnv("CATALOG_FILE", ""),
			StageDelay:    getEnvAsDuration("PIPELINE_STAGE_DELAY", 0),
			MaxDocumentMB: getEnvAsInt("MAX_DOCUMENT_MB", 25),
			PdftotextBin:  getEnv("PDFTOTEXT_BIN", ""),
		},
		Export: ExportConfig{
			Dir:    getEnv("EXPORT_DIR", "./exports"),
			Format: strings.ToLower(getEnv("EXPORT_FORMAT", "xlsx")),
		},
		Log: LogConfig{
			Level:  strings.ToLower(getEnv("LOG_LEVEL", "info")),
			Format: strings.ToLower(getEnv("LOG_FORMAT", "text")),
		},
	}
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat32(key string, defaultValue float32) float32 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 32); err == nil {
			return float32(floatVal)
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// OfflineMode reports whether no analysis service is configured.
func (c *Config) OfflineMode() bool {
	return strings.TrimSpace(c.LLM.APIKey) == ""
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	v := NewValidator().
		Field("HTTP_ADDR", c.Server.HTTPAddr, Required).
		Field("GRPC_ADDR", c.Server.GRPCAddr, Required).
		Field("JOB_STORE", c.Store.Driver, OneOf(StoreMemory, StoreSQLite)).
		Check(c.Store.Driver != StoreSQLite || c.Store.DSN != "", "JOB_STORE_DSN", c.Store.DSN, "is required for sqlite").
		Check(c.Pipeline.MaxDocumentMB > 0, "MAX_DOCUMENT_MB", c.Pipeline.MaxDocumentMB, "must be positive").
		Field("EXPORT_FORMAT", c.Export.Format, OneOf("xlsx", "tsv"))
	if v.HasErrors() {
		return NewAppError(CodeConfig, v.ErrorMessage(), ErrInvalidRequest)
	}
	return nil
}
