package config

import (
	"log"
	"strings"

	"github.com/spf13/viper"
)

// Config holds the full application configuration loaded from environment
// variables or a .env file.
//
// It is composed of smaller structs that represent different concerns of the
// system: the HTTP server (api mode), the CoinGecko vendor endpoint, and the
// on-disk storage layout used by the sync pipeline.
//
// Example YAML/ENV equivalent:
//
//	SERVER_PORT=8080
//	COINGECKO_BASE_URL=https://api.coingecko.com/api/v3/
//	COINGECKO_API_KEY=CG-xxxx
//	COINGECKO_API_TIER=demo
//	RATE_LIMIT_PER_MINUTE=25
//	MAX_HISTORY_DAYS=365
//	DATA_DIR=./data/output
//	PROCESSED_DIR=./data/processed
//	CACHE_DIR=./data/cache
//	REFERENCE_FILE=./data/symbol-properties.csv
type Config struct {
	Server ServerConfig // HTTP server configuration (api mode)
	Gecko  GeckoConfig  // CoinGecko REST API settings
	Store  StoreConfig  // Filesystem layout for outputs and caches
}

// ServerConfig holds HTTP server settings such as the port to listen on.
type ServerConfig struct {
	Port string // The TCP port the HTTP server will listen on (e.g., "8080")
}

// GeckoConfig defines how the vendor API is reached and throttled.
//
// Fields:
//   - BaseURL: versioned API root, trailing slash required (requests append
//     relative paths such as "coins/list").
//   - APIKey: vendor API key; may be empty for keyless access.
//   - APITier: "demo" or "pro"; selects the API-key header name.
//   - RatePerMinute: outbound request quota per rolling minute.
//   - MaxHistoryDays: full-history cap for first-time fetches (API tiers
//     below enterprise only serve 365 daily points).
type GeckoConfig struct {
	BaseURL        string
	APIKey         string
	APITier        string
	RatePerMinute  int
	MaxHistoryDays int
}

// StoreConfig defines the on-disk layout consumed by the sync pipeline.
//
// Fields:
//   - DataDir: destination for <ticker>.csv, universe/ and blacklist.csv.
//   - ProcessedDir: mirror of already-delivered series files; consulted as
//     the source of truth when computing incremental lookback windows.
//   - CacheDir: raw vendor responses (<id>.json, list.json).
//   - ReferenceFile: symbol reference CSV the supported set is derived from.
type StoreConfig struct {
	DataDir       string
	ProcessedDir  string
	CacheDir      string
	ReferenceFile string
}

// AppConfig is the globally accessible configuration instance.
//
// It is populated once via LoadConfig() and used throughout the application.
// All packages should read from AppConfig instead of re-reading environment
// variables directly.
var AppConfig Config

// LoadConfig initializes the global AppConfig by reading from a .env file
// or directly from environment variables.
//
// Precedence (from lowest to highest):
//  1. Defaults set in this function.
//  2. Values from .env file (if present).
//  3. Environment variables.
//
// Fatal exit:
//   - If required variables are missing or invalid, validateConfig()
//     terminates the process with a descriptive log message.
func LoadConfig() {
	// Default values
	viper.SetDefault("SERVER_PORT", "8080")

	viper.SetDefault("COINGECKO_BASE_URL", "https://api.coingecko.com/api/v3/")
	viper.SetDefault("COINGECKO_API_KEY", "")
	viper.SetDefault("COINGECKO_API_TIER", "demo")
	viper.SetDefault("RATE_LIMIT_PER_MINUTE", 25)
	viper.SetDefault("MAX_HISTORY_DAYS", 365)

	viper.SetDefault("DATA_DIR", "./data/output")
	viper.SetDefault("PROCESSED_DIR", "./data/processed")
	viper.SetDefault("CACHE_DIR", "./data/cache")
	viper.SetDefault("REFERENCE_FILE", "./data/symbol-properties.csv")

	// Optionally read from .env if present (common in local dev)
	viper.SetConfigFile(".env")
	_ = viper.ReadInConfig() // ignore error if no .env

	// Read environment variables automatically
	viper.AutomaticEnv()

	// Populate global config instance
	AppConfig = Config{
		Server: ServerConfig{
			Port: viper.GetString("SERVER_PORT"),
		},
		Gecko: GeckoConfig{
			BaseURL:        viper.GetString("COINGECKO_BASE_URL"),
			APIKey:         viper.GetString("COINGECKO_API_KEY"),
			APITier:        strings.ToLower(viper.GetString("COINGECKO_API_TIER")),
			RatePerMinute:  viper.GetInt("RATE_LIMIT_PER_MINUTE"),
			MaxHistoryDays: viper.GetInt("MAX_HISTORY_DAYS"),
		},
		Store: StoreConfig{
			DataDir:       viper.GetString("DATA_DIR"),
			ProcessedDir:  viper.GetString("PROCESSED_DIR"),
			CacheDir:      viper.GetString("CACHE_DIR"),
			ReferenceFile: viper.GetString("REFERENCE_FILE"),
		},
	}

	// Validate critical fields
	validateConfig()
}

// validateConfig ensures required variables are present and terminates
// the application if they are missing.
//
// This avoids unexpected runtime failures due to incomplete configuration.
func validateConfig() {
	var missing []string

	if AppConfig.Server.Port == "" {
		missing = append(missing, "SERVER_PORT")
	}
	if AppConfig.Gecko.BaseURL == "" {
		missing = append(missing, "COINGECKO_BASE_URL")
	}
	if AppConfig.Gecko.APITier != "demo" && AppConfig.Gecko.APITier != "pro" {
		missing = append(missing, "COINGECKO_API_TIER")
	}
	if AppConfig.Gecko.RatePerMinute <= 0 {
		missing = append(missing, "RATE_LIMIT_PER_MINUTE")
	}
	if AppConfig.Gecko.MaxHistoryDays <= 0 {
		missing = append(missing, "MAX_HISTORY_DAYS")
	}
	if AppConfig.Store.DataDir == "" {
		missing = append(missing, "DATA_DIR")
	}
	if AppConfig.Store.CacheDir == "" {
		missing = append(missing, "CACHE_DIR")
	}
	if AppConfig.Store.ReferenceFile == "" {
		missing = append(missing, "REFERENCE_FILE")
	}

	if len(missing) > 0 {
		log.Fatalf("missing or invalid environment variables: %v\n", missing)
	}

	if !strings.HasPrefix(AppConfig.Gecko.BaseURL, "http://") && !strings.HasPrefix(AppConfig.Gecko.BaseURL, "https://") {
		log.Fatalf("COINGECKO_BASE_URL must be an absolute http(s) URL, got %q\n", AppConfig.Gecko.BaseURL)
	}
}
