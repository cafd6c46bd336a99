package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	// Timeline defaults
	FPS     int     // Frames per second for new timelines (default: 30)
	MinZoom float64 // Minimum zoom in pixels per frame (default: 0.5)
	MaxZoom float64 // Maximum zoom in pixels per frame (default: 10)

	// Analysis service (cut detection)
	AnalysisURL string // Base URL of the cut analysis service (optional)
	AnalysisKey string // API key for the analysis service

	// Background jobs
	AutosaveIntervalSeconds int // Seconds between autosave flushes (default: 30)
	CutRefreshMinutes       int // Minutes between cut re-fetches (default: 5)

	// Server
	ServerPort string

	// Paths
	DatabaseFile string // $CONFIG_DIR/cutarr.db

	// Logging
	LogLevel string
}

// Load loads configuration from environment variables and .env file
func Load() (*Config, error) {
	// Setup viper FIRST to load .env file
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AutomaticEnv()

	// Load .env file if it exists (ignore if not found)
	_ = viper.ReadInConfig()

	// Set defaults
	viper.SetDefault("FPS", 30)
	viper.SetDefault("MIN_ZOOM", 0.5)
	viper.SetDefault("MAX_ZOOM", 10.0)
	viper.SetDefault("AUTOSAVE_INTERVAL_SECONDS", 30)
	viper.SetDefault("CUT_REFRESH_MINUTES", 5)
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("LOG_LEVEL", "info")

	// NOW read CONFIG_DIR from viper (which has loaded .env file)
	configDir := viper.GetString("CONFIG_DIR")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		configDir = filepath.Join(homeDir, ".config", "cutarr")
	} else {
		// Convert relative path to absolute path
		absPath, err := filepath.Abs(configDir)
		if err != nil {
			return nil, fmt.Errorf("failed to get absolute path for CONFIG_DIR: %w", err)
		}
		configDir = absPath
	}

	// Create config directory if it doesn't exist
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	config := &Config{
		// Timeline defaults
		FPS:     viper.GetInt("FPS"),
		MinZoom: viper.GetFloat64("MIN_ZOOM"),
		MaxZoom: viper.GetFloat64("MAX_ZOOM"),

		// Analysis service
		AnalysisURL: viper.GetString("ANALYSIS_URL"),
		AnalysisKey: viper.GetString("ANALYSIS_KEY"),

		// Background jobs
		AutosaveIntervalSeconds: viper.GetInt("AUTOSAVE_INTERVAL_SECONDS"),
		CutRefreshMinutes:       viper.GetInt("CUT_REFRESH_MINUTES"),

		// Server
		ServerPort: viper.GetString("SERVER_PORT"),

		// Paths
		DatabaseFile: filepath.Join(configDir, "cutarr.db"),

		// Logging
		LogLevel: viper.GetString("LOG_LEVEL"),
	}

	// Validate fields
	if config.FPS <= 0 {
		return nil, fmt.Errorf("FPS must be positive, got %d", config.FPS)
	}
	if config.MinZoom <= 0 || config.MaxZoom < config.MinZoom {
		return nil, fmt.Errorf("invalid zoom bounds: min=%g max=%g", config.MinZoom, config.MaxZoom)
	}
	if config.AutosaveIntervalSeconds <= 0 {
		return nil, fmt.Errorf("AUTOSAVE_INTERVAL_SECONDS must be positive, got %d", config.AutosaveIntervalSeconds)
	}
	if config.CutRefreshMinutes <= 0 {
		return nil, fmt.Errorf("CUT_REFRESH_MINUTES must be positive, got %d", config.CutRefreshMinutes)
	}

	return config, nil
}
