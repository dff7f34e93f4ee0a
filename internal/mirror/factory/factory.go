// Package factory builds mirror targets from configuration.
package factory

import (
	"context"
	"fmt"
	"os"

	"relocationos/internal/config"
	"relocationos/internal/mirror"
	"relocationos/internal/mirror/google"
	"relocationos/internal/mirror/memory"
	"relocationos/internal/mirror/workbook"
)

// BuildTargets constructs the configured mirror targets. Configuration is
// validated up front, so an unknown name here is a programming error.
func BuildTargets(ctx context.Context, cfg *config.Config) ([]mirror.Target, error) {
	targets := make([]mirror.Target, 0, len(cfg.MirrorTargets))
	for _, name := range cfg.MirrorTargets {
		switch name {
		case config.MirrorWorkbook:
			t, err := workbook.New(cfg.ExportDir)
			if err != nil {
				return nil, fmt.Errorf("workbook mirror: %w", err)
			}
			targets = append(targets, t)
		case config.MirrorGoogle:
			creds, err := googleCredentials(cfg)
			if err != nil {
				return nil, fmt.Errorf("google mirror: %w", err)
			}
			t, err := google.New(ctx, cfg.GoogleSpreadsheetID, creds)
			if err != nil {
				return nil, fmt.Errorf("google mirror: %w", err)
			}
			targets = append(targets, t)
		case config.MirrorMemory:
			targets = append(targets, memory.New())
		default:
			return nil, fmt.Errorf("unknown mirror target %q", name)
		}
	}
	return targets, nil
}

func googleCredentials(cfg *config.Config) ([]byte, error) {
	if cfg.GoogleServiceAccountJSON != "" {
		return []byte(cfg.GoogleServiceAccountJSON), nil
	}
	if cfg.GoogleServiceAccountFile != "" {
		creds, err := os.ReadFile(cfg.GoogleServiceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		return creds, nil
	}
	return nil, fmt.Errorf("missing service account credentials")
}
