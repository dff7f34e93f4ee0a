// The relocationos-menu binary offers a text interface over the same
// database the web server uses.
package main

import (
	"os"

	"relocationos/internal/cli"
	"relocationos/internal/log"
	"relocationos/internal/menu"
	"relocationos/internal/services"
)

func main() {
	cli.LoadEnvFile()

	bootLogger := log.New(log.DefaultConfig())
	cfg := cli.LoadAndValidateConfig(bootLogger)
	logger := cli.SetupLogger(cfg, log.ComponentMenu)

	repo := cli.InitStorage(logger, cfg.DatabasePath)
	defer repo.Close()

	ctx, stop := cli.SignalContext()
	defer stop()

	m := menu.New(os.Stdin, os.Stdout,
		services.NewProfileService(repo, nil),
		services.NewExpenseService(repo, nil))
	if err := m.Run(ctx); err != nil {
		logger.Error("Menu failed", "error", err)
		os.Exit(1)
	}
}
