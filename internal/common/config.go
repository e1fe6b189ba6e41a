package common

import (
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	Store    StoreConfig
	OCR      OCRConfig
	AI       AIConfig
	Pipeline PipelineConfig
}

// StoreConfig holds calendar-store configuration
type StoreConfig struct {
	DBPath string
}

// OCRConfig holds OCR-related configuration
type OCRConfig struct {
	Pdftotext string
	Pdftoppm  string
	Tesseract string

	TesseractLang string
	DPI           int
	MaxPages      int

	// MinPageTextLen is the embedded-text length below which a PDF page
	// is treated as scanned and routed through OCR.
	MinPageTextLen int

	Timeout time.Duration
}

// AIConfig holds the Anthropic model configuration
type AIConfig struct {
	APIKey    string
	BaseURL   string
	Model     string
	Version   string
	MaxTokens int
	Timeout   time.Duration
}

// PipelineConfig holds cross-stage pipeline limits
type PipelineConfig struct {
	MaxCandidates int
	MaxTextChars  int
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Store: StoreConfig{
			DBPath: getEnv("CALSHARE_DB", "calendars.db"),
		},
		OCR: OCRConfig{
			Pdftotext:      getEnv("PDFTOTEXT_BIN", "pdftotext"),
			Pdftoppm:       getEnv("PDFTOPPM_BIN", "pdftoppm"),
			Tesseract:      getEnv("TESSERACT_BIN", "tesseract"),
			TesseractLang:  getEnv("TESSERACT_LANG", "eng"),
			DPI:            getEnvAsInt("OCR_DPI", 300),
			MaxPages:       getEnvAsInt("OCR_MAX_PAGES", 0),
			MinPageTextLen: getEnvAsInt("OCR_MIN_PAGE_TEXT", 16),
			Timeout:        getEnvAsDuration("OCR_TIMEOUT", 60*time.Second),
		},
		AI: AIConfig{
			APIKey:    getEnv("ANTHROPIC_API_KEY", ""),
			BaseURL:   getEnv("ANTHROPIC_BASE_URL", "https://api.anthropic.com/v1"),
			Model:     getEnv("ANTHROPIC_MODEL", "claude-sonnet-4-20250514"),
			Version:   getEnv("ANTHROPIC_VERSION", "2023-06-01"),
			MaxTokens: getEnvAsInt("ANTHROPIC_MAX_TOKENS", 4096),
			Timeout:   getEnvAsDuration("ANTHROPIC_TIMEOUT", 45*time.Second),
		},
		Pipeline: PipelineConfig{
			MaxCandidates: getEnvAsInt("PIPELINE_MAX_CANDIDATES", 200),
			MaxTextChars:  getEnvAsInt("PIPELINE_MAX_TEXT_CHARS", 10000),
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
	if c.AI.APIKey == "" {
		return NewAppError(CodeConfigError, "ANTHROPIC_API_KEY is required", ErrInvalidInput)
	}
	if c.Store.DBPath == "" {
		return NewAppError(CodeConfigError, "CALSHARE_DB is required", ErrInvalidInput)
	}
	return nil
}
