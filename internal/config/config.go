package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	CatalogPath     string
	DBPath          string
	CacheEnabled    bool
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration
	HTTPTimeout     time.Duration
	TopSites        int

	// Digest publishing. Disabled when no brokers are set.
	KafkaBrokers []string
	KafkaTopic   string

	// Upstream identification and zone provisioning.
	NWSUserAgent         string
	MarineZonesShapefile string
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := parseDuration("SHUTDOWN_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}

	httpTimeout, err := parseDuration("HTTP_TIMEOUT", "15s")
	if err != nil {
		return nil, err
	}

	topSites, err := strconv.Atoi(envOrDefault("TOP_SITES", "5"))
	if err != nil || topSites <= 0 {
		return nil, errors.New("invalid TOP_SITES")
	}

	cacheEnabled, err := strconv.ParseBool(envOrDefault("REEFCAST_CACHE", "true"))
	if err != nil {
		return nil, errors.New("invalid REEFCAST_CACHE")
	}

	cfg := &Config{
		CatalogPath:     envOrDefault("REEFCAST_CATALOG", "data/sites.yaml"),
		DBPath:          envOrDefault("REEFCAST_DB", "data/reefcast.db"),
		CacheEnabled:    cacheEnabled,
		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("LOG_FORMAT", "text"),
		ShutdownTimeout: shutdownTimeout,
		HTTPTimeout:     httpTimeout,
		TopSites:        topSites,

		KafkaBrokers: parseBrokers(os.Getenv("KAFKA_BROKERS")),
		KafkaTopic:   envOrDefault("KAFKA_TOPIC", "dive-digests"),

		NWSUserAgent:         envOrDefault("NWS_USER_AGENT", "reefcast (github.com/ngmaloney/reefcast)"),
		MarineZonesShapefile: os.Getenv("MARINE_ZONES_SHAPEFILE"),
	}

	if cfg.CatalogPath == "" {
		return nil, errors.New("REEFCAST_CATALOG is required")
	}
	if cfg.CacheEnabled && cfg.DBPath == "" {
		return nil, errors.New("REEFCAST_DB is required when the cache is enabled")
	}
	switch strings.ToLower(cfg.LogFormat) {
	case "json", "text":
	default:
		return nil, errors.New("LOG_FORMAT must be json or text")
	}
	if cfg.PublishEnabled() && cfg.KafkaTopic == "" {
		return nil, errors.New("KAFKA_TOPIC is required when KAFKA_BROKERS is set")
	}

	return cfg, nil
}

// PublishEnabled reports whether digests should be written to Kafka
func (c *Config) PublishEnabled() bool {
	return len(c.KafkaBrokers) > 0
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(envOrDefault(key, def))
	if err != nil || d <= 0 {
		return 0, errors.New("invalid " + key)
	}
	return d, nil
}

func parseBrokers(s string) []string {
	var brokers []string
	for _, b := range strings.Split(s, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}
