// Package config loads service configuration from an optional YAML file and
// environment variable overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	App struct {
		Port     string `yaml:"port"`
		Env      string `yaml:"env"`
		LogLevel string `yaml:"log_level"`
	} `yaml:"app"`
	HTTP struct {
		RequireTLS     bool     `yaml:"require_tls"`
		AllowedOrigins []string `yaml:"allowed_origins"`
	} `yaml:"http"`
	GoogleMaps struct {
		APIKey  string        `yaml:"api_key"`
		BaseURL string        `yaml:"base_url"`
		Timeout time.Duration `yaml:"timeout"`
	} `yaml:"google_maps"`
	OpenRouter struct {
		APIKey  string        `yaml:"api_key"`
		BaseURL string        `yaml:"base_url"`
		Model   string        `yaml:"model"`
		Referer string        `yaml:"referer"`
		Timeout time.Duration `yaml:"timeout"`
	} `yaml:"openrouter"`
	Wallet struct {
		InitialBalance *int `yaml:"initial_balance"`
	} `yaml:"wallet"`
	Routes struct {
		CacheTTL time.Duration `yaml:"cache_ttl"`
	} `yaml:"routes"`
	Schedule struct {
		ChallengeRolloverCron string `yaml:"challenge_rollover_cron"`
		DigestCron            string `yaml:"digest_cron"`
	} `yaml:"schedule"`
	Telemetry struct {
		Enabled      bool    `yaml:"enabled"`
		OTLPEndpoint string  `yaml:"otlp_endpoint"`
		SampleRatio  float64 `yaml:"sample_ratio"`
	} `yaml:"telemetry"`
	PubSub struct {
		ProjectID    string `yaml:"project_id"`
		Topic        string `yaml:"topic"`
		Subscription string `yaml:"subscription"`
	} `yaml:"pubsub"`
}

// Defaults.
const (
	DefaultPort                  = "8080"
	DefaultEnv                   = "development"
	DefaultLogLevel              = "info"
	DefaultInitialBalance        = 2500
	DefaultRouteCacheTTL         = 5 * time.Minute
	DefaultChallengeRolloverCron = "0 * * * * *"
	DefaultDigestCron            = "0 0 * * * *"
	DefaultOTLPEndpoint          = "localhost:4317"
	DefaultPubSubTopic           = "onejourney-events"
	DefaultPubSubSubscription    = "onejourney-events-worker"
)

// Load reads config from a YAML file, then applies environment variable
// overrides and defaults. A missing file or empty path is not an error.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if len(data) > 0 {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config: %w", err)
			}
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()

	if *cfg.Wallet.InitialBalance < 0 {
		return nil, fmt.Errorf("wallet initial balance must not be negative, got %d", *cfg.Wallet.InitialBalance)
	}

	return cfg, nil
}

func (c *Config) applyEnv() error {
	setString(&c.App.Port, "APP_PORT")
	setString(&c.App.Env, "APP_ENV")
	setString(&c.App.LogLevel, "LOG_LEVEL")
	setString(&c.GoogleMaps.APIKey, "GOOGLE_MAPS_API_KEY")
	setString(&c.GoogleMaps.BaseURL, "GOOGLE_MAPS_BASE_URL")
	setString(&c.OpenRouter.APIKey, "OPENROUTER_API_KEY")
	setString(&c.OpenRouter.BaseURL, "OPENROUTER_BASE_URL")
	setString(&c.OpenRouter.Model, "OPENROUTER_MODEL")
	setString(&c.OpenRouter.Referer, "OPENROUTER_REFERER")
	setString(&c.Schedule.ChallengeRolloverCron, "CHALLENGE_ROLLOVER_CRON")
	setString(&c.Schedule.DigestCron, "DIGEST_CRON")
	setString(&c.Telemetry.OTLPEndpoint, "OTEL_EXPORTER_OTLP_ENDPOINT")
	setString(&c.PubSub.ProjectID, "PUBSUB_PROJECT_ID")
	setString(&c.PubSub.Topic, "PUBSUB_TOPIC")
	setString(&c.PubSub.Subscription, "PUBSUB_SUBSCRIPTION")

	if v := os.Getenv("WALLET_INITIAL_BALANCE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("WALLET_INITIAL_BALANCE: %w", err)
		}
		c.Wallet.InitialBalance = &n
	}
	if v := os.Getenv("ROUTE_CACHE_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("ROUTE_CACHE_TTL: %w", err)
		}
		c.Routes.CacheTTL = d
	}
	if v := os.Getenv("OTEL_ENABLED"); v != "" {
		c.Telemetry.Enabled = parseBool(v)
	}
	if v := os.Getenv("REQUIRE_TLS"); v != "" {
		c.HTTP.RequireTLS = parseBool(v)
	}
	if v := os.Getenv("CORS_ALLOWED_ORIGINS"); v != "" {
		c.HTTP.AllowedOrigins = splitList(v)
	}

	return nil
}

func (c *Config) applyDefaults() {
	if c.App.Port == "" {
		c.App.Port = DefaultPort
	}
	if c.App.Env == "" {
		c.App.Env = DefaultEnv
	}
	if c.App.LogLevel == "" {
		c.App.LogLevel = DefaultLogLevel
	}
	if len(c.HTTP.AllowedOrigins) == 0 {
		c.HTTP.AllowedOrigins = []string{"*"}
	}
	if c.Wallet.InitialBalance == nil {
		balance := DefaultInitialBalance
		c.Wallet.InitialBalance = &balance
	}
	if c.Routes.CacheTTL <= 0 {
		c.Routes.CacheTTL = DefaultRouteCacheTTL
	}
	if c.Schedule.ChallengeRolloverCron == "" {
		c.Schedule.ChallengeRolloverCron = DefaultChallengeRolloverCron
	}
	if c.Schedule.DigestCron == "" {
		c.Schedule.DigestCron = DefaultDigestCron
	}
	if c.Telemetry.OTLPEndpoint == "" {
		c.Telemetry.OTLPEndpoint = DefaultOTLPEndpoint
	}
	if c.PubSub.Topic == "" {
		c.PubSub.Topic = DefaultPubSubTopic
	}
	if c.PubSub.Subscription == "" {
		c.PubSub.Subscription = DefaultPubSubSubscription
	}
}

// PubSubEnabled reports whether events should be published to Pub/Sub.
func (c *Config) PubSubEnabled() bool {
	return c.PubSub.ProjectID != ""
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func parseBool(v string) bool {
	return strings.EqualFold(v, "true") || v == "1"
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
