// The export-worker consumes export requests and keeps the configured
// mirror targets in sync, with a periodic full refresh as a safety net.
package main

import (
	"context"
	"errors"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"relocationos/internal/amqp"
	"relocationos/internal/cli"
	"relocationos/internal/log"
	"relocationos/internal/mirror/factory"
	"relocationos/internal/worker"
)

func main() {
	cli.LoadEnvFile()

	bootLogger := log.New(log.DefaultConfig())
	cfg := cli.LoadAndValidateConfig(bootLogger)
	logger := cli.SetupLogger(cfg, log.ComponentWorker)

	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the export worker")
		os.Exit(1)
	}

	repo := cli.InitStorage(logger, cfg.DatabasePath)
	defer repo.Close()

	ctx, stop := cli.SignalContext()
	defer stop()

	targets, err := factory.BuildTargets(ctx, cfg)
	if err != nil {
		logger.Error("Failed to build mirror targets", "error", err)
		os.Exit(1)
	}
	if len(targets) == 0 {
		logger.Error("No mirror targets configured")
		os.Exit(1)
	}

	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to connect to AMQP", "error", err)
		os.Exit(1)
	}
	defer client.Close()

	w := worker.NewExportWorker(repo, targets)
	logger.Info("Export worker started",
		"targets", len(targets),
		"refresh_interval", cfg.ExportRefreshInterval.String())

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return client.ConsumeExportRequests(gctx, func(msg *amqp.ExportRequest) error {
			return w.HandleExportRequest(gctx, msg)
		})
	})

	g.Go(func() error {
		// One refresh at startup covers requests missed while down.
		if err := w.RefreshAll(gctx); err != nil {
			logger.Warn("Initial mirror refresh incomplete", "error", err)
		}
		ticker := time.NewTicker(cfg.ExportRefreshInterval)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return gctx.Err()
			case <-ticker.C:
				if err := w.RefreshAll(gctx); err != nil {
					logger.Warn("Mirror refresh incomplete", "error", err)
				}
			}
		}
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Export worker failed", "error", err)
		os.Exit(1)
	}
	logger.Info("Export worker stopped")
}
