package config

import (
	"os"
	"strconv"
)

// Config holds the process configuration. It is read once at startup and not
// re-read afterward; credential changes require a restart.
type Config struct {
	// TradingView session cookie pair. Both optional; captures run
	// unauthenticated (and may see delayed data) when absent.
	SessionID     string
	SessionIDSign string

	// StorageStatePath points at a persisted authentication snapshot. It is
	// only consulted if the file exists, and it is never written.
	StorageStatePath string

	Headless     bool
	WindowWidth  int
	WindowHeight int

	// ChartPageID is an optional saved chart layout inserted into the chart
	// URL as a path segment.
	ChartPageID string

	// MaxConcurrent bounds simultaneous captures against the shared browser
	// process. Zero disables the bound.
	MaxConcurrent int

	Debug bool

	// StatsAddr enables the debug HTTP surface when non-empty.
	StatsAddr string
}

// Load loads configuration from environment variables.
func Load() *Config {
	return &Config{
		SessionID:        getEnv("TRADINGVIEW_SESSION_ID", ""),
		SessionIDSign:    getEnv("TRADINGVIEW_SESSION_ID_SIGN", ""),
		StorageStatePath: getEnv("TRADINGVIEW_STORAGE_STATE", "storage_state.json"),
		Headless:         getEnvAsBool("MCP_SCRAPER_HEADLESS", true),
		WindowWidth:      getEnvAsInt("MCP_SCRAPER_WINDOW_WIDTH", 1920),
		WindowHeight:     getEnvAsInt("MCP_SCRAPER_WINDOW_HEIGHT", 1080),
		ChartPageID:      getEnv("MCP_SCRAPER_CHART_PAGE_ID", ""),
		MaxConcurrent:    getEnvAsInt("MCP_SCRAPER_MAX_CONCURRENT", 2),
		Debug:            getEnvAsBool("MCP_SCRAPER_DEBUG", false),
		StatsAddr:        getEnv("STATS_HTTP_ADDR", ""),
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	if value, err := strconv.Atoi(getEnv(key, "")); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	if value, err := strconv.ParseBool(getEnv(key, "")); err == nil {
		return value
	}
	return fallback
}
