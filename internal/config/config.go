package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/halcyonv/prompt-video-generator/internal/llm"
)

// Config holds all application configuration.
// Values come from environment variables with sensible defaults.
//
// Environment Variables:
// LLM Configuration:
// - LLM_API_KEY: API key for the LLM provider (required)
// - LLM_API_URL: API endpoint URL (default: https://openrouter.ai/api/v1)
// - LLM_MODEL: Model name to use (default: openai/gpt-4o-mini)
// - LLM_MAX_TOKENS: Maximum tokens for responses (default: 8000)
// - LLM_TEMPERATURE: Temperature for responses (default: 0.7)
// - LLM_TIMEOUT: Request timeout in seconds (default: 60)
// - LLM_SITE_URL: Site URL for HTTP referer header (optional)
// - LLM_APP_NAME: Application name for X-Title header (optional)
//
// TTS Configuration:
// - TTS_PROVIDER: Synthesis backend, "openai" or "edge" (default: edge)
// - TTS_API_KEY: API key for the TTS provider (required for openai)
// - TTS_API_URL: TTS API endpoint URL (default: https://api.openai.com/v1)
// - TTS_MODEL: TTS model name (default: tts-1)
// - TTS_TIMEOUT: Request timeout in seconds (default: 120)
//
// Pipeline Configuration:
// - WORKSPACE_DIR: Root for per-run workspaces (default: ./workspaces)
// - CACHE_DIR: Synthesis cache root (default: ./cache)
// - STYLES_DIR: Directory of style preset YAML files (default: ./styles)
// - STYLE_PRESET: Default style preset name (default: default)
// - RENDERER_CMD: Visual renderer executable (default: render-scene)
// - VIDEO_QUALITY: ffmpeg quality preset, low/medium/high (default: medium)
//
// Daemon Configuration:
// - DB_PATH: SQLite database path (default: ./data/pvgen.db)
// - WORKER_COUNT: Queue worker count (default: 1)
// - CACHE_JANITOR_CRON: Cache prune schedule, six fields with seconds (default: 0 0 3 * * *)
// - CACHE_MAX_AGE_DAYS: Prune cache entries older than this (default: 30)

type Config struct {
	LLM      llm.Config     `json:"llm"`
	TTS      TTSConfig      `json:"tts"`
	Pipeline PipelineConfig `json:"pipeline"`
	Daemon   DaemonConfig   `json:"daemon"`
}

// TTSConfig holds the configuration for the speech synthesis provider.
type TTSConfig struct {
	Provider string `json:"provider"`
	APIKey   string `json:"api_key"`
	APIURL   string `json:"api_url"`
	Model    string `json:"model"`
	Timeout  int    `json:"timeout"`
}

// PipelineConfig holds paths and knobs for generation runs.
type PipelineConfig struct {
	WorkspaceDir string `json:"workspace_dir"`
	CacheDir     string `json:"cache_dir"`
	StylesDir    string `json:"styles_dir"`
	StylePreset  string `json:"style_preset"`
	RendererCmd  string `json:"renderer_cmd"`
	VideoQuality string `json:"video_quality"`
}

// DaemonConfig holds the configuration for daemon mode.
type DaemonConfig struct {
	DBPath          string `json:"db_path"`
	WorkerCount     int    `json:"worker_count"`
	JanitorCronExpr string `json:"janitor_cron_expr"`
	CacheMaxAgeDays int    `json:"cache_max_age_days"`
}

// Option is a function type for configuring Config
type Option func(*Config)

// NewFromEnv creates a new Config instance with values from environment variables and options
func NewFromEnv(opts ...Option) (*Config, error) {
	config := &Config{
		LLM: llm.Config{
			APIKey:      getEnvString("LLM_API_KEY", ""),
			APIURL:      getEnvString("LLM_API_URL", "https://openrouter.ai/api/v1"),
			Model:       getEnvString("LLM_MODEL", "openai/gpt-4o-mini"),
			MaxTokens:   getEnvInt("LLM_MAX_TOKENS", 8000),
			Temperature: getEnvFloat("LLM_TEMPERATURE", 0.7),
			Timeout:     getEnvInt("LLM_TIMEOUT", 60),
			SiteURL:     getEnvString("LLM_SITE_URL", ""),
			AppName:     getEnvString("LLM_APP_NAME", ""),
		},
		TTS: TTSConfig{
			Provider: getEnvString("TTS_PROVIDER", "edge"),
			APIKey:   getEnvString("TTS_API_KEY", ""),
			APIURL:   getEnvString("TTS_API_URL", "https://api.openai.com/v1"),
			Model:    getEnvString("TTS_MODEL", "tts-1"),
			Timeout:  getEnvInt("TTS_TIMEOUT", 120),
		},
		Pipeline: PipelineConfig{
			WorkspaceDir: getEnvString("WORKSPACE_DIR", "./workspaces"),
			CacheDir:     getEnvString("CACHE_DIR", "./cache"),
			StylesDir:    getEnvString("STYLES_DIR", "./styles"),
			StylePreset:  getEnvString("STYLE_PRESET", "default"),
			RendererCmd:  getEnvString("RENDERER_CMD", "render-scene"),
			VideoQuality: getEnvString("VIDEO_QUALITY", "medium"),
		},
		Daemon: DaemonConfig{
			DBPath:          getEnvString("DB_PATH", "./data/pvgen.db"),
			WorkerCount:     getEnvInt("WORKER_COUNT", 1),
			JanitorCronExpr: getEnvString("CACHE_JANITOR_CRON", "0 0 3 * * *"),
			CacheMaxAgeDays: getEnvInt("CACHE_MAX_AGE_DAYS", 30),
		},
	}

	// Apply custom options
	for _, opt := range opts {
		opt(config)
	}

	// Validate required configuration
	if err := config.validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// validate checks if all required configuration is properly set
func (c *Config) validate() error {
	if c.LLM.APIKey == "" {
		return fmt.Errorf("LLM_API_KEY is required")
	}
	if c.TTS.Provider == "openai" && c.TTS.APIKey == "" {
		return fmt.Errorf("TTS_API_KEY is required when TTS_PROVIDER is openai")
	}
	if c.Daemon.WorkerCount < 1 {
		return fmt.Errorf("WORKER_COUNT must be at least 1")
	}
	if c.Daemon.CacheMaxAgeDays < 1 {
		return fmt.Errorf("CACHE_MAX_AGE_DAYS must be at least 1")
	}
	return nil
}

// getEnvString gets a string value from environment variables with default
func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt gets an integer value from environment variables with default
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvFloat gets a float value from environment variables with default
func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}
