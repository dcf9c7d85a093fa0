// Package config reads the application settings from the environment.
package config

import (
	"io"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/olablt/gio-openmaps/geocode"
	"github.com/olablt/gio-openmaps/internal/permission"
	"github.com/olablt/gio-openmaps/location"
	"github.com/olablt/gio-openmaps/tiles"
)

const defaultUserAgent = "gio-openmaps/1.0 (+https://github.com/olablt/gio-openmaps)"

type Config struct {
	DevMode bool

	TileURL       string
	TileWorkers   int
	TileCacheSize int
	UserAgent     string
	HTTPTimeout   time.Duration

	NominatimURL string
	Language     string

	Start     tiles.LatLng
	StartZoom int
	MinZoom   int
	MaxZoom   int

	// MyLocation, when set, feeds the location overlay a fixed position.
	MyLocation *tiles.LatLng
	// DeniedPermissions are refused by the desktop permission requester.
	DeniedPermissions []permission.Permission

	MetricsAddr string

	Logger *slog.Logger
}

// NewLogger returns a text logger at debug level in dev mode and a JSON
// logger otherwise.
func NewLogger(devMode bool, w io.Writer) *slog.Logger {
	if devMode {
		return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
	}
	return slog.New(slog.NewJSONHandler(w, nil))
}

// Load reads an optional .env file and the environment.
func Load() *Config {
	return load()
}

// load reads the given env files (.env when none) before anything else so
// that DEV_MODE may come from the file too.
func load(files ...string) *Config {
	envErr := godotenv.Load(files...)

	devMode, err := strconv.ParseBool(os.Getenv("DEV_MODE"))
	if err != nil {
		devMode = false
	}
	logger := NewLogger(devMode, os.Stderr)
	if envErr != nil {
		logger.Info("no .env file found, relying on environment variables")
	}

	cfg := FromEnv(logger)
	cfg.DevMode = devMode
	return cfg
}

// FromEnv builds the configuration from environment variables, falling
// back to defaults for anything unset or invalid.
func FromEnv(logger *slog.Logger) *Config {
	cfg := &Config{
		TileURL:       getEnv("TILE_URL", tiles.DefaultTileURL, logger),
		TileWorkers:   getEnvAsInt("TILE_WORKERS", 4, logger),
		TileCacheSize: getEnvAsInt("TILE_CACHE_SIZE", tiles.DefaultCacheSize, logger),
		UserAgent:     getEnv("USER_AGENT", defaultUserAgent, logger),
		HTTPTimeout:   getEnvAsDuration("HTTP_TIMEOUT", 10*time.Second, logger),
		NominatimURL:  getEnv("NOMINATIM_URL", geocode.DefaultBaseURL, logger),
		Language:      getEnv("LANGUAGE", "", logger),
		Start: tiles.LatLng{
			Lat: getEnvAsFloat("START_LAT", 48.8583, logger),
			Lng: getEnvAsFloat("START_LNG", 2.2944, logger),
		},
		StartZoom:   getEnvAsInt("START_ZOOM", 15, logger),
		MinZoom:     getEnvAsInt("MIN_ZOOM", 2, logger),
		MaxZoom:     getEnvAsInt("MAX_ZOOM", 19, logger),
		MetricsAddr: getEnv("METRICS_ADDR", "", logger),
		Logger:      logger,
	}

	if cfg.MinZoom < 0 || cfg.MaxZoom > 22 || cfg.MinZoom > cfg.MaxZoom {
		logger.Warn("invalid zoom range, using defaults", "min", cfg.MinZoom, "max", cfg.MaxZoom)
		cfg.MinZoom, cfg.MaxZoom = 2, 19
	}
	cfg.StartZoom = max(cfg.MinZoom, min(cfg.StartZoom, cfg.MaxZoom))

	if s, ok := os.LookupEnv("MY_LOCATION"); ok && s != "" {
		pos, err := location.ParseLatLng(s)
		if err != nil {
			logger.Warn("ignoring MY_LOCATION", "value", s, "error", err)
		} else {
			cfg.MyLocation = &pos
		}
	}
	cfg.DeniedPermissions = permission.Parse(os.Getenv("DENY_PERMISSIONS"))

	return cfg
}

func getEnv(key, fallback string, logger *slog.Logger) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	logger.Debug("environment variable not set, using fallback", "key", key, "fallback", fallback)
	return fallback
}

func getEnvAsInt(key string, fallback int, logger *slog.Logger) int {
	valStr, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	val, err := strconv.Atoi(valStr)
	if err != nil {
		logger.Warn("invalid integer value for environment variable, using fallback", "key", key, "value", valStr, "error", err)
		return fallback
	}
	return val
}

func getEnvAsFloat(key string, fallback float64, logger *slog.Logger) float64 {
	valStr, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	val, err := strconv.ParseFloat(valStr, 64)
	if err != nil {
		logger.Warn("invalid float value for environment variable, using fallback", "key", key, "value", valStr, "error", err)
		return fallback
	}
	return val
}

func getEnvAsDuration(key string, fallback time.Duration, logger *slog.Logger) time.Duration {
	valStr, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	val, err := time.ParseDuration(valStr)
	if err != nil || val <= 0 {
		logger.Warn("invalid duration for environment variable, using fallback", "key", key, "value", valStr, "error", err)
		return fallback
	}
	return val
}
