// The reminder-worker periodically scans every profile and logs a digest
// of overdue and due-soon tasks and expenses.
package main

import (
	"os"
	"time"

	"relocationos/internal/cli"
	"relocationos/internal/log"
	"relocationos/internal/services"
)

func main() {
	cli.LoadEnvFile()

	bootLogger := log.New(log.DefaultConfig())
	cfg := cli.LoadAndValidateConfig(bootLogger)
	logger := cli.SetupLogger(cfg, log.ComponentReminder)

	repo := cli.InitStorage(logger, cfg.DatabasePath)
	defer repo.Close()

	ctx, stop := cli.SignalContext()
	defer stop()

	processor := services.NewReminderProcessor(repo)
	logger.Info("Reminder worker started", "interval", cfg.ReminderInterval.String())

	if err := processor.Run(ctx); err != nil {
		logger.Error("Reminder scan failed", "error", err)
	}

	ticker := time.NewTicker(cfg.ReminderInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			logger.Info("Reminder worker stopped")
			os.Exit(0)
		case <-ticker.C:
			if err := processor.Run(ctx); err != nil {
				logger.Error("Reminder scan failed", "error", err)
			}
		}
	}
}
