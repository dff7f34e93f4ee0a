// Package workbook mirrors profile budgets as spreadsheet files on disk.
package workbook

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"relocationos/internal/export"
	"relocationos/internal/mirror"
)

type Target struct {
	dir string
}

func New(dir string) (*Target, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create export directory: %w", err)
	}
	return &Target{dir: dir}, nil
}

func (t *Target) Name() string { return "workbook" }

// WriteSnapshot rebuilds the profile's workbook file from scratch. The
// write goes through a temp file so readers never see a half-written
// spreadsheet.
func (t *Target) WriteSnapshot(ctx context.Context, snap mirror.Snapshot) error {
	f, err := export.BuildWorkbook(snap)
	if err != nil {
		return fmt.Errorf("build workbook: %w", err)
	}
	defer f.Close()

	path := t.Path(snap.Profile.ID)
	tmp := path + ".tmp"
	if err := f.SaveAs(tmp); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replace workbook: %w", err)
	}

	slog.InfoContext(ctx, "Wrote budget workbook",
		"component", "mirror",
		"mirror", t.Name(),
		"profile_id", snap.Profile.ID,
		"path", path)
	return nil
}

// RemoveProfile deletes the profile's workbook file if present.
func (t *Target) RemoveProfile(ctx context.Context, profileID int64) error {
	path := t.Path(profileID)
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("remove workbook: %w", err)
	}

	slog.InfoContext(ctx, "Removed budget workbook",
		"component", "mirror",
		"mirror", t.Name(),
		"profile_id", profileID,
		"path", path)
	return nil
}

// Path returns where the profile's workbook lives on disk.
func (t *Target) Path(profileID int64) string {
	return filepath.Join(t.dir, fmt.Sprintf("%d-budget.xlsx", profileID))
}
