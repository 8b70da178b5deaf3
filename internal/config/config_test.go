package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/onejourney/onejourney/internal/config"
)

// clearEnv blanks every variable Load reads so the host environment cannot leak in.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"APP_PORT", "APP_ENV", "LOG_LEVEL",
		"GOOGLE_MAPS_API_KEY", "GOOGLE_MAPS_BASE_URL",
		"OPENROUTER_API_KEY", "OPENROUTER_BASE_URL", "OPENROUTER_MODEL", "OPENROUTER_REFERER",
		"WALLET_INITIAL_BALANCE", "ROUTE_CACHE_TTL",
		"CHALLENGE_ROLLOVER_CRON", "DIGEST_CRON",
		"OTEL_ENABLED", "OTEL_EXPORTER_OTLP_ENDPOINT",
		"PUBSUB_PROJECT_ID", "PUBSUB_TOPIC", "PUBSUB_SUBSCRIPTION",
		"REQUIRE_TLS", "CORS_ALLOWED_ORIGINS",
	} {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.App.Port)
	assert.Equal(t, "development", cfg.App.Env)
	assert.Equal(t, "info", cfg.App.LogLevel)
	require.NotNil(t, cfg.Wallet.InitialBalance)
	assert.Equal(t, 2500, *cfg.Wallet.InitialBalance)
	assert.Equal(t, 5*time.Minute, cfg.Routes.CacheTTL)
	assert.Equal(t, config.DefaultChallengeRolloverCron, cfg.Schedule.ChallengeRolloverCron)
	assert.Equal(t, "localhost:4317", cfg.Telemetry.OTLPEndpoint)
	assert.False(t, cfg.Telemetry.Enabled)
	assert.Empty(t, cfg.GoogleMaps.APIKey)
	assert.Empty(t, cfg.OpenRouter.APIKey)
	assert.False(t, cfg.PubSubEnabled())
	assert.False(t, cfg.HTTP.RequireTLS)
	assert.Equal(t, []string{"*"}, cfg.HTTP.AllowedOrigins)
}

func TestLoad_MissingFile(t *testing.T) {
	clearEnv(t)

	cfg, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.App.Port)
}

func TestLoad_YAMLThenEnv(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
app:
  port: "9000"
  env: staging
google_maps:
  api_key: yaml-maps-key
openrouter:
  api_key: yaml-ai-key
  model: openai/gpt-4o-mini
wallet:
  initial_balance: 1000
routes:
  cache_ttl: 90s
pubsub:
  project_id: onejourney-dev
`), 0o600))

	t.Setenv("APP_PORT", "7000")
	t.Setenv("OPENROUTER_API_KEY", "env-ai-key")
	t.Setenv("OTEL_ENABLED", "true")

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "7000", cfg.App.Port)
	assert.Equal(t, "staging", cfg.App.Env)
	assert.Equal(t, "yaml-maps-key", cfg.GoogleMaps.APIKey)
	assert.Equal(t, "env-ai-key", cfg.OpenRouter.APIKey)
	assert.Equal(t, "openai/gpt-4o-mini", cfg.OpenRouter.Model)
	assert.Equal(t, 1000, *cfg.Wallet.InitialBalance)
	assert.Equal(t, 90*time.Second, cfg.Routes.CacheTTL)
	assert.True(t, cfg.Telemetry.Enabled)
	assert.True(t, cfg.PubSubEnabled())
	assert.Equal(t, config.DefaultPubSubTopic, cfg.PubSub.Topic)
}

func TestLoad_ZeroInitialBalance(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("wallet:\n  initial_balance: 0\n"), 0o600))

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, 0, *cfg.Wallet.InitialBalance)

	t.Setenv("WALLET_INITIAL_BALANCE", "0")
	cfg, err = config.Load("")
	require.NoError(t, err)
	assert.Equal(t, 0, *cfg.Wallet.InitialBalance)
}

func TestLoad_NegativeInitialBalance(t *testing.T) {
	clearEnv(t)
	t.Setenv("WALLET_INITIAL_BALANCE", "-5")

	_, err := config.Load("")
	assert.ErrorContains(t, err, "must not be negative")
}

func TestLoad_InvalidYAML(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("app: [unclosed"), 0o600))

	_, err := config.Load(path)
	assert.Error(t, err)
}

func TestLoad_InvalidEnvValues(t *testing.T) {
	tests := []struct {
		key   string
		value string
	}{
		{"WALLET_INITIAL_BALANCE", "lots"},
		{"ROUTE_CACHE_TTL", "five minutes"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.value)

			_, err := config.Load("")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.key)
		})
	}
}

func TestLoad_HTTPOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("REQUIRE_TLS", "1")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://app.onejourney.in, ,http://localhost:5000")

	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.True(t, cfg.HTTP.RequireTLS)
	assert.Equal(t, []string{"https://app.onejourney.in", "http://localhost:5000"}, cfg.HTTP.AllowedOrigins)
}
