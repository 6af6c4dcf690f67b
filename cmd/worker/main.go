package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	temporalclient "go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"

	"github.com/meshfoundry/datamesh/internal/activity"
	"github.com/meshfoundry/datamesh/internal/catalog"
	"github.com/meshfoundry/datamesh/internal/config"
	"github.com/meshfoundry/datamesh/internal/core"
	"github.com/meshfoundry/datamesh/internal/db"
	"github.com/meshfoundry/datamesh/internal/eventbus"
	"github.com/meshfoundry/datamesh/internal/logging"
	"github.com/meshfoundry/datamesh/internal/metrics"
	"github.com/meshfoundry/datamesh/internal/storage"
	"github.com/meshfoundry/datamesh/internal/workflow"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := cfg.Validate("worker"); err != nil {
		fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.NewLogger(cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()

	tc, err := temporalclient.Dial(temporalclient.Options{HostPort: cfg.TemporalAddress})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to temporal")
	}
	defer tc.Close()

	var bus eventbus.Bus
	if cfg.AMQPURL != "" {
		amqpBus, err := eventbus.NewAMQP(logger, cfg.AMQPURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to event bus")
		}
		defer amqpBus.Close()
		bus = amqpBus
	} else {
		logger.Warn().Msg("AMQP_URL not set, using in-memory event bus")
		bus = eventbus.NewMemory()
	}

	var verifier storage.Verifier = storage.NoopVerifier{}
	if cfg.S3Endpoint != "" {
		verifier = storage.NewS3Verifier(logger, cfg.S3Endpoint, cfg.S3AccessKey, cfg.S3SecretKey)
		logger.Info().Str("endpoint", cfg.S3Endpoint).Msg("location verification enabled")
	}

	if cfg.MetricsAddr != "" {
		metricsServer := metrics.NewServer(cfg.MetricsAddr)
		go func() {
			logger.Info().Str("addr", cfg.MetricsAddr).Msg("starting metrics server")
			if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error().Err(err).Msg("metrics server failed")
			}
		}()
	}

	w := worker.New(tc, core.TaskQueue, worker.Options{})

	// Register activities
	w.RegisterActivity(activity.NewCatalogActivities(catalog.NewMemory(), verifier, cfg.AdminPrincipal))
	w.RegisterActivity(activity.NewRegistrationDB(pool))
	w.RegisterActivity(activity.NewNotify(bus))

	// Register workflows
	w.RegisterWorkflow(workflow.RegisterDataProductWorkflow)

	logger.Info().Str("task_queue", core.TaskQueue).Msg("starting worker")
	if err := w.Run(worker.InterruptCh()); err != nil {
		logger.Fatal().Err(err).Msg("worker failed")
	}
}
