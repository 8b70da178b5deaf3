package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/onejourney/onejourney/internal/api"
	"github.com/onejourney/onejourney/internal/api/handler"
	"github.com/onejourney/onejourney/internal/api/middleware"
	"github.com/onejourney/onejourney/internal/api/models"
	"github.com/onejourney/onejourney/internal/assistant"
	"github.com/onejourney/onejourney/internal/assistant/openrouter"
	"github.com/onejourney/onejourney/internal/config"
	"github.com/onejourney/onejourney/internal/events"
	"github.com/onejourney/onejourney/internal/provider/resilience"
	"github.com/onejourney/onejourney/internal/routing"
	"github.com/onejourney/onejourney/internal/routing/googlemaps"
	"github.com/onejourney/onejourney/internal/scheduler"
	"github.com/onejourney/onejourney/internal/telemetry"
	"github.com/onejourney/onejourney/internal/wallet"
)

const shutdownTimeout = 30 * time.Second

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringP("config", "c", "config.yaml", "Path to the YAML config file")
	serveCmd.Flags().StringP("port", "p", "", "Listen port (overrides APP_PORT and the config file)")
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API server",
	Long: `Run the OneJourney HTTP API. Google Maps and OpenRouter are used when
their API keys are configured; otherwise routes come from the built-in
generator and the assistant answers with a fixed message.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	configPath, _ := cmd.Flags().GetString("config")
	port, _ := cmd.Flags().GetString("port")

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if port != "" {
		cfg.App.Port = port
	}

	log := newLogger(cfg)
	log.Info().
		Str("build_time", BuildTime).
		Str("env", cfg.App.Env).
		Msg("starting OneJourney API")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize OpenTelemetry
	tp, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName:    serviceName,
		ServiceVersion: Version,
		Environment:    cfg.App.Env,
		OTLPEndpoint:   cfg.Telemetry.OTLPEndpoint,
		Enabled:        cfg.Telemetry.Enabled,
		SampleRatio:    cfg.Telemetry.SampleRatio,
	})
	if err != nil {
		return fmt.Errorf("initialize telemetry: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := tp.Shutdown(shutdownCtx); shutdownErr != nil {
			log.Error().Err(shutdownErr).Msg("failed to shutdown telemetry")
		}
	}()
	if cfg.Telemetry.Enabled {
		log.Info().
			Str("otlp_endpoint", cfg.Telemetry.OTLPEndpoint).
			Msg("OpenTelemetry initialized")
	}

	// Metrics: OTel for HTTP and provider calls, Prometheus for domain counters.
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	domainMetrics, err := telemetry.NewDomainMetrics(reg)
	if err != nil {
		return fmt.Errorf("initialize domain metrics: %w", err)
	}
	providerMetrics, err := telemetry.NewProviderMetrics()
	if err != nil {
		return fmt.Errorf("initialize provider metrics: %w", err)
	}
	httpMetrics, err := middleware.NewMetrics()
	if err != nil {
		return fmt.Errorf("initialize http metrics: %w", err)
	}

	registry := resilience.NewRegistry()

	routes := newRouteService(cfg, registry, domainMetrics, providerMetrics, log)
	chat := newAssistant(cfg, registry, domainMetrics, providerMetrics, log)

	publisher, publisherName, err := newPublisher(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := publisher.Close(); closeErr != nil {
			log.Error().Err(closeErr).Msg("failed to close event publisher")
		}
	}()

	walletService := wallet.NewService(wallet.Config{
		InitialBalance: cfg.Wallet.InitialBalance,
		Publisher:      publisher,
		Metrics:        domainMetrics,
		Logger:         log.With().Str("component", "wallet").Logger(),
	})
	log.Info().Int("initial_balance", walletService.State().Balance).Msg("wallet initialized")

	sched, err := scheduler.New(scheduler.Config{
		RolloverSchedule: cfg.Schedule.ChallengeRolloverCron,
		Roller:           walletService,
		Logger:           log.With().Str("component", "scheduler").Logger(),
	})
	if err != nil {
		return err
	}
	sched.Start()

	ops := handler.NewOpsHandler(handler.OpsConfig{
		Version:   Version,
		BuildTime: BuildTime,
		Registry:  registry,
		Features: models.FeatureStatus{
			RouteSource:       routes.ProviderName(),
			RealRoutes:        routes.HasProvider(),
			AssistantEnabled:  chat.Configured(),
			EventsPublisher:   publisherName,
			ChallengeRollover: cfg.Schedule.ChallengeRolloverCron,
		},
	})

	router := api.NewRouter(api.RouterConfig{
		Logger:         log,
		ServiceName:    serviceName,
		Metrics:        httpMetrics,
		MetricsHandler: promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}),
		RequireTLS:     cfg.HTTP.RequireTLS,
		AllowedOrigins: cfg.HTTP.AllowedOrigins,
		Routes:         routes,
		Wallet:         walletService,
		Assistant:      chat,
		Ops:            ops,
	})

	server := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 45 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info().
			Str("addr", server.Addr).
			Msg("server listening")

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case <-ctx.Done():
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	}

	log.Info().Msg("shutting down server")
	ops.Drain()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := sched.Stop(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("scheduler did not stop in time")
	}
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Info().Msg("server stopped")
	return nil
}

func newLogger(cfg *config.Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.App.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	return zerolog.New(os.Stdout).
		Level(level).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()
}

func newRouteService(
	cfg *config.Config,
	registry *resilience.Registry,
	domainMetrics *telemetry.DomainMetrics,
	providerMetrics *telemetry.ProviderMetrics,
	log zerolog.Logger,
) *routing.Service {
	logger := log.With().Str("component", "routing").Logger()

	var provider routing.Provider
	if cfg.GoogleMaps.APIKey != "" {
		provider = googlemaps.NewClient(googlemaps.ClientConfig{
			APIKey:   cfg.GoogleMaps.APIKey,
			BaseURL:  cfg.GoogleMaps.BaseURL,
			Timeout:  cfg.GoogleMaps.Timeout,
			Registry: registry,
			Logger:   logger,
		})
		log.Info().Msg("Google Maps directions enabled")
	} else {
		log.Warn().Msg("GOOGLE_MAPS_API_KEY not set - serving generated routes")
	}

	return routing.NewService(routing.ServiceConfig{
		Provider:        provider,
		Logger:          logger,
		CacheTTL:        cfg.Routes.CacheTTL,
		Metrics:         domainMetrics,
		ProviderMetrics: providerMetrics,
	})
}

func newAssistant(
	cfg *config.Config,
	registry *resilience.Registry,
	domainMetrics *telemetry.DomainMetrics,
	providerMetrics *telemetry.ProviderMetrics,
	log zerolog.Logger,
) *assistant.Service {
	logger := log.With().Str("component", "assistant").Logger()

	var provider assistant.Provider
	if cfg.OpenRouter.APIKey != "" {
		provider = openrouter.NewClient(openrouter.ClientConfig{
			APIKey:   cfg.OpenRouter.APIKey,
			BaseURL:  cfg.OpenRouter.BaseURL,
			Model:    cfg.OpenRouter.Model,
			Referer:  cfg.OpenRouter.Referer,
			Timeout:  cfg.OpenRouter.Timeout,
			Registry: registry,
			Logger:   logger,
		})
		log.Info().Msg("OpenRouter assistant enabled")
	} else {
		log.Warn().Msg("OPENROUTER_API_KEY not set - assistant disabled")
	}

	return assistant.NewService(assistant.Config{
		Provider:        provider,
		Metrics:         domainMetrics,
		ProviderMetrics: providerMetrics,
		Logger:          logger,
	})
}

func newPublisher(ctx context.Context, cfg *config.Config, log zerolog.Logger) (events.Publisher, string, error) {
	if !cfg.PubSubEnabled() {
		return events.NopPublisher{}, "none", nil
	}

	publisher, err := events.NewPubSubPublisher(ctx, events.PubSubConfig{
		ProjectID: cfg.PubSub.ProjectID,
		Topic:     cfg.PubSub.Topic,
		Logger:    log.With().Str("component", "events").Logger(),
	})
	if err != nil {
		return nil, "", fmt.Errorf("initialize pubsub publisher: %w", err)
	}
	log.Info().
		Str("project_id", cfg.PubSub.ProjectID).
		Str("topic", cfg.PubSub.Topic).
		Msg("publishing events to Pub/Sub")

	return publisher, "pubsub", nil
}
