package common

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Server    ServerConfig
	LLM       LLMConfig
	Reference ReferenceConfig
	Document  DocumentConfig
	Pipeline  PipelineConfig
	Log       LogConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	HTTPAddr        string
	GRPCAddr        string // empty disables the gRPC health listener
	ShutdownTimeout time.Duration
}

// LLMConfig holds LLM-related configuration
type LLMConfig struct {
	Provider     string // openai | gemini
	BaseURL      string
	Model        string
	APIKey       string
	MaxTokens    int
	Temperature  float32
	Timeout      time.Duration
	GeminiAPIKey string
	GeminiModel  string
	StrictSchema bool
}

// ReferenceConfig points at the domain-context documents fed to the model.
type ReferenceConfig struct {
	Dir              string
	MaterialsFile    string
	InstructionsFile string
}

// DocumentConfig holds defaults for generated quote documents.
type DocumentConfig struct {
	Format         string // docx | xlsx
	SenderName     string
	SenderContacts string
}

// PipelineConfig bounds concurrent quote requests.
type PipelineConfig struct {
	Workers         int
	QueueSize       int
	JobTimeout      time.Duration
	MaxPromptLength int
}

type LogConfig struct {
	Level  string
	Format string // json | text
}

// LoadConfig loads configuration from environment variables. A .env file in
// the working directory is applied first when present; real env wins.
func LoadConfig() *Config {
	_ = godotenv.Load()

	return &Config{
		Server: ServerConfig{
			HTTPAddr:        getEnv("HTTP_ADDR", ":3000"),
			GRPCAddr:        getEnv("GRPC_ADDR", ""),
			ShutdownTimeout: getEnvAsDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		LLM: LLMConfig{
			Provider:     strings.ToLower(getEnv("LLM_PROVIDER", "openai")),
			BaseURL:      getEnv("LLM_BASE_URL", "http://localhost:1234/v1"),
			Model:        getEnv("LLM_MODEL", "qwen/qwen3-4b-thinking-2507"),
			APIKey:       getEnv("LLM_API_KEY", ""),
			MaxTokens:    getEnvAsInt("LLM_MAX_TOKENS", 4096),
			Temperature:  getEnvAsFloat32("LLM_TEMPERATURE", 0.1),
			Timeout:      getEnvAsDuration("LLM_TIMEOUT", 120*time.Second),
			GeminiAPIKey: getEnv("GEMINI_API_KEY", ""),
			GeminiModel:  getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
			StrictSchema: getEnvAsBool("STRICT_SCHEMA", false),
		},
		Reference: ReferenceConfig{
			Dir:              getEnv("REFERENCE_DIR", "public"),
			MaterialsFile:    getEnv("MATERIALS_FILE", "materials.csv"),
			InstructionsFile: getEnv("INSTRUCTIONS_FILE", "instructions.txt"),
		},
		Document: DocumentConfig{
			Format:         strings.ToLower(getEnv("DOCUMENT_FORMAT", "docx")),
			SenderName:     getEnv("SENDER_NAME", "Команда Без названия"),
			SenderContacts: getEnv("SENDER_CONTACTS", "noNameCommand@example.com"),
		},
		Pipeline: PipelineConfig{
			Workers:         getEnvAsInt("PIPELINE_WORKERS", 2),
			QueueSize:       getEnvAsInt("PIPELINE_QUEUE_SIZE", 64),
			JobTimeout:      getEnvAsDuration("PIPELINE_JOB_TIMEOUT", 3*time.Minute),
			MaxPromptLength: getEnvAsInt("MAX_PROMPT_LENGTH", 4000),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
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

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
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
	if c.Server.HTTPAddr == "" {
		return NewAppError("CONFIG_ERROR", "HTTP_ADDR is required", ErrInput)
	}
	switch c.LLM.Provider {
	case "openai":
		if c.LLM.BaseURL == "" {
			return NewAppError("CONFIG_ERROR", "LLM_BASE_URL is required", ErrInput)
		}
	case "gemini":
		if c.LLM.GeminiAPIKey == "" {
			return NewAppError("CONFIG_ERROR", "GEMINI_API_KEY is required for LLM_PROVIDER=gemini", ErrInput)
		}
	default:
		return NewAppError("CONFIG_ERROR", "LLM_PROVIDER must be openai or gemini", ErrInput)
	}
	if c.LLM.MaxTokens <= 0 {
		return NewAppError("CONFIG_ERROR", "LLM_MAX_TOKENS must be positive", ErrInput)
	}
	if c.Pipeline.Workers <= 0 {
		return NewAppError("CONFIG_ERROR", "PIPELINE_WORKERS must be positive", ErrInput)
	}
	switch c.Document.Format {
	case "docx", "xlsx":
	default:
		return NewAppError("CONFIG_ERROR", "DOCUMENT_FORMAT must be docx or xlsx", ErrInput)
	}
	return nil
}

// NewLogger builds the process logger from LogConfig.
func NewLogger(cfg LogConfig) *slog.Logger {
	level := slog.LevelInfo
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	opts := &slog.HandlerOptions{Level: level}
	if strings.ToLower(cfg.Format) == "text" {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}
