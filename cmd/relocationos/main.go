// The relocationos server hosts the relocation planner web interface.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"

	"relocationos/internal/amqp"
	"relocationos/internal/cli"
	"relocationos/internal/currency"
	apphttp "relocationos/internal/http"
	"relocationos/internal/log"
	"relocationos/internal/services"
)

func main() {
	cli.LoadEnvFile()

	bootLogger := log.New(log.DefaultConfig())
	cfg := cli.LoadAndValidateConfig(bootLogger)
	logger := cli.SetupLogger(cfg, log.ComponentApp)

	repo := cli.InitStorage(logger, cfg.DatabasePath)
	defer repo.Close()

	// The export pipeline is optional: without AMQP the server still
	// works, mutations just don't reach the mirrors until a worker
	// refresh.
	var publisher services.ExportPublisher
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("AMQP unavailable, export publishing disabled", "error", err)
		} else {
			defer client.Close()
			publisher = client
		}
	}

	rates := currency.NewService(cfg.RateAPIBaseURL, cfg.RateAPITimeout)

	srv, err := apphttp.NewServer(apphttp.Options{
		Addr:           ":" + cfg.Port,
		Storage:        repo,
		Profiles:       services.NewProfileService(repo, publisher),
		Tasks:          services.NewTaskService(repo),
		Expenses:       services.NewExpenseService(repo, publisher),
		Rates:          rates,
		DashboardLimit: cfg.DashboardLimit,
		CacheTTL:       cfg.CacheTTL,
	})
	if err != nil {
		logger.Error("Failed to build server", "error", err)
		os.Exit(1)
	}

	ctx, stop := cli.SignalContext()
	defer stop()

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("Server listening", "port", cfg.Port)
		serverErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server failed", "error", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cli.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Shutdown failed", "error", err)
			os.Exit(1)
		}
		logger.Info("Shutdown complete")
	}
}
