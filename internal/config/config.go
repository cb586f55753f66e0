package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Theme bus backends.
const (
	ThemeBusMemory = "memory"
	ThemeBusKafka  = "kafka"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Settings persistence. An empty path keeps settings in memory.
	SettingsDBPath string
	SettingsKey    string

	SimulatedLatency time.Duration

	// Place search configuration.
	GeocoderEnabled   bool
	GeocoderBaseURL   string
	GeocoderUserAgent string
	GeocoderTimeout   time.Duration
	GeocoderCacheSize int
	GeocoderRateLimit float64

	// Theme bus configuration.
	ThemeBus        string
	KafkaBrokers    []string
	KafkaThemeTopic string
	KafkaGroupID    string
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	latency, err := parseDuration("SIMULATED_LATENCY", "1s", true)
	if err != nil {
		return nil, err
	}

	geocoderTimeout, err := parseDuration("GEOCODER_TIMEOUT", "5s", false)
	if err != nil {
		return nil, err
	}

	cacheSize, err := parsePositiveInt("GEOCODER_CACHE_SIZE", 1000)
	if err != nil {
		return nil, err
	}

	rateLimit, err := parseRate("GEOCODER_RATE_LIMIT", 1)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		SettingsDBPath: os.Getenv("SETTINGS_DB_PATH"),
		SettingsKey:    sharedcfg.EnvOrDefault("SETTINGS_KEY", "weatherwise_settings"),

		SimulatedLatency: latency,

		GeocoderEnabled:   os.Getenv("GEOCODER_ENABLED") != "false",
		GeocoderBaseURL:   sharedcfg.EnvOrDefault("GEOCODER_BASE_URL", "https://nominatim.openstreetmap.org"),
		GeocoderUserAgent: sharedcfg.EnvOrDefault("GEOCODER_USER_AGENT", "weatherwise-service/1.0"),
		GeocoderTimeout:   geocoderTimeout,
		GeocoderCacheSize: cacheSize,
		GeocoderRateLimit: rateLimit,

		ThemeBus:        sharedcfg.EnvOrDefault("THEME_BUS", ThemeBusMemory),
		KafkaBrokers:    sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaThemeTopic: sharedcfg.EnvOrDefault("KAFKA_THEME_TOPIC", "weatherwise-theme-changes"),
		KafkaGroupID:    os.Getenv("KAFKA_GROUP_ID"),
	}

	if cfg.SettingsKey == "" {
		return nil, errors.New("SETTINGS_KEY is required")
	}
	if cfg.GeocoderEnabled && cfg.GeocoderUserAgent == "" {
		return nil, errors.New("GEOCODER_USER_AGENT is required when GEOCODER_ENABLED is true")
	}
	switch cfg.ThemeBus {
	case ThemeBusMemory:
	case ThemeBusKafka:
		if len(cfg.KafkaBrokers) == 0 {
			return nil, errors.New("KAFKA_BROKERS is required when THEME_BUS is kafka")
		}
		if cfg.KafkaThemeTopic == "" {
			return nil, errors.New("KAFKA_THEME_TOPIC is required when THEME_BUS is kafka")
		}
	default:
		return nil, fmt.Errorf("invalid THEME_BUS %q: must be memory or kafka", cfg.ThemeBus)
	}

	return cfg, nil
}

func parseDuration(key, def string, allowZero bool) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, def))
	if err != nil || d < 0 || (d == 0 && !allowZero) {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parsePositiveInt(key string, def int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s: must be a positive integer", key)
	}
	return n, nil
}

func parseRate(key string, def float64) (float64, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f <= 0 {
		return 0, fmt.Errorf("invalid %s: must be a positive number", key)
	}
	return f, nil
}
