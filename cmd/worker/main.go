// Package main provides the entrypoint for the OneJourney event worker.
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

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/onejourney/onejourney/internal/api/models"
	"github.com/onejourney/onejourney/internal/api/response"
	"github.com/onejourney/onejourney/internal/config"
	"github.com/onejourney/onejourney/internal/worker"
)

// Version and BuildTime are set at compile time via ldflags
var (
	Version   = "dev"
	BuildTime = "unknown"
)

const serviceName = "onejourney-worker"

var rootCmd = &cobra.Command{
	Use:   "onejourney-worker",
	Short: "Consume OneJourney events and report travel digests",
	Long: `The worker subscribes to the OneJourney event topic, folds trip, wallet
and challenge events into running totals and logs a digest on a cron
schedule. It exposes /health and /metrics for the platform.`,
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE:         runWorker,
}

func init() {
	rootCmd.Flags().StringP("config", "c", "config.yaml", "Path to the YAML config file")
	rootCmd.Flags().StringP("port", "p", "", "Health server port (overrides APP_PORT and the config file)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runWorker(cmd *cobra.Command, _ []string) error {
	configPath, _ := cmd.Flags().GetString("config")
	port, _ := cmd.Flags().GetString("port")

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if port != "" {
		cfg.App.Port = port
	}
	if !cfg.PubSubEnabled() {
		return errors.New("PUBSUB_PROJECT_ID is required to run the worker")
	}

	level, err := zerolog.ParseLevel(cfg.App.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	log := zerolog.New(os.Stdout).
		Level(level).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	log.Info().Str("build_time", BuildTime).Msg("starting OneJourney worker")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics, err := worker.NewMetrics(reg)
	if err != nil {
		return fmt.Errorf("initialize metrics: %w", err)
	}

	workerCfg := worker.DefaultConfig()
	workerCfg.DigestSchedule = cfg.Schedule.DigestCron

	digest := worker.NewDigest(time.Now, workerCfg.MaxTrackedEvents)
	processor := worker.NewProcessor(digest, metrics, log.With().Str("component", "processor").Logger())

	handler, err := worker.NewPubSubHandler(ctx, worker.PubSubConfig{
		ProjectID:        cfg.PubSub.ProjectID,
		SubscriptionName: cfg.PubSub.Subscription,
		Processor:        processor,
		Worker:           workerCfg,
		Logger:           log.With().Str("component", "pubsub").Logger(),
	})
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := handler.Close(); closeErr != nil {
			log.Error().Err(closeErr).Msg("failed to close pubsub client")
		}
	}()

	reporter, err := worker.NewReporter(workerCfg.DigestSchedule, digest, metrics, log.With().Str("component", "digest").Logger())
	if err != nil {
		return err
	}
	reporter.Start()

	// Worker also exposes health endpoint for Cloud Run
	server := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      newHealthRouter(reg),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}
	go func() {
		log.Info().Str("addr", server.Addr).Msg("health server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("health server error")
		}
	}()

	receiveErr := handler.Start(ctx)

	log.Info().Msg("shutting down worker")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := reporter.Stop(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("digest reporter did not stop in time")
	}
	reporter.Report()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("health server forced to shutdown")
	}

	if receiveErr != nil && !errors.Is(receiveErr, context.Canceled) {
		return fmt.Errorf("receive events: %w", receiveErr)
	}
	log.Info().Msg("worker stopped")
	return nil
}

func newHealthRouter(reg *prometheus.Registry) http.Handler {
	r := chi.NewRouter()
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		response.JSON(w, r, http.StatusOK, models.Health{
			Status:  models.HealthStatusOK,
			Time:    models.Timestamp(time.Now()),
			Details: map[string]string{"version": Version},
		})
	})
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	return r
}
