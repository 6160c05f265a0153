package common

import (
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig
	Store    StoreConfig
	LLM      LLMConfig
	Embed    EmbedConfig
	Pipeline PipelineConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	HTTPAddr        string
	ShutdownTimeout time.Duration
}

// StoreConfig holds local persistence configuration
type StoreConfig struct {
	Path string
}

// LLMConfig holds inference-service configuration
type LLMConfig struct {
	BaseURL     string
	Model       string
	APIKey      string
	Temperature float32
	Timeout     time.Duration
}

// EmbedConfig holds embedding-service configuration
type EmbedConfig struct {
	BaseURL string
	Model   string
	APIKey  string
	Timeout time.Duration
}

// PipelineConfig holds pipeline tuning knobs
type PipelineConfig struct {
	ChunkSize       int
	ChunkOverlap    int
	MinTextLength   int
	MinContextChars int
	MaxIndexedDocs  int
	Workers         int
	RunTimeout      time.Duration
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Server: ServerConfig{
			HTTPAddr:        getEnv("HTTP_ADDR", ":8080"),
			ShutdownTimeout: getEnvAsDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Store: StoreConfig{
			Path: getEnv("STORE_PATH", "./docintel.db"),
		},
		LLM: LLMConfig{
			BaseURL:     getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
			Model:       getEnv("OPENAI_MODEL", "gpt-4o-mini"),
			APIKey:      getEnv("OPENAI_API_KEY", ""),
			Temperature: getEnvAsFloat32("OPENAI_TEMPERATURE", 0.1),
			Timeout:     getEnvAsDuration("OPENAI_TIMEOUT", 60*time.Second),
		},
		Embed: EmbedConfig{
			BaseURL: getEnv("EMBEDDINGS_BASE_URL", getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1")),
			Model:   getEnv("EMBEDDINGS_MODEL", "text-embedding-3-small"),
			APIKey:  getEnv("OPENAI_API_KEY", ""),
			Timeout: getEnvAsDuration("EMBEDDINGS_TIMEOUT", 60*time.Second),
		},
		Pipeline: PipelineConfig{
			ChunkSize:       getEnvAsInt("CHUNK_SIZE", 1000),
			ChunkOverlap:    getEnvAsInt("CHUNK_OVERLAP", 100),
			MinTextLength:   getEnvAsInt("MIN_TEXT_LENGTH", 20),
			MinContextChars: getEnvAsInt("MIN_CONTEXT_CHARS", 200),
			MaxIndexedDocs:  getEnvAsInt("MAX_INDEXED_DOCS", 32),
			Workers:         getEnvAsInt("PIPELINE_WORKERS", 4),
			RunTimeout:      getEnvAsDuration("RUN_TIMEOUT", 3*time.Minute),
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

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	if c.LLM.APIKey == "" {
		return NewAppError("CONFIG_ERROR", "OPENAI_API_KEY is required", ErrInvalidInput)
	}
	if c.Server.HTTPAddr == "" {
		return NewAppError("CONFIG_ERROR", "HTTP_ADDR is required", ErrInvalidInput)
	}
	if c.Pipeline.ChunkOverlap >= c.Pipeline.ChunkSize {
		return NewAppError("CONFIG_ERROR", "CHUNK_OVERLAP must be smaller than CHUNK_SIZE", ErrInvalidInput)
	}
	return nil
}
