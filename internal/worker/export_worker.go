// Package worker drives the async export pipeline: it turns export
// requests into profile snapshots and fans them out to mirror targets.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"relocationos/internal/amqp"
	"relocationos/internal/core"
	"relocationos/internal/mirror"
	"relocationos/internal/storage"
)

// ExportWorker loads profile snapshots from storage and hands them to the
// configured mirror targets.
type ExportWorker struct {
	storage *storage.SQLiteRepository
	targets []mirror.Target
	now     func() time.Time
}

func NewExportWorker(storage *storage.SQLiteRepository, targets []mirror.Target) *ExportWorker {
	return &ExportWorker{
		storage: storage,
		targets: targets,
		now:     time.Now,
	}
}

// HandleExportRequest processes one export request from the queue. A
// profile-deleted reason, or a profile that no longer exists, turns into
// a removal on every target; anything else rebuilds the snapshot.
func (w *ExportWorker) HandleExportRequest(ctx context.Context, msg *amqp.ExportRequest) error {
	slog.InfoContext(ctx, "Processing export request",
		"component", "worker",
		"profile_id", msg.ProfileID,
		"reason", msg.Reason)

	if msg.Reason == amqp.ReasonProfileDeleted {
		return w.removeProfile(ctx, msg.ProfileID)
	}

	profile, err := w.storage.GetProfile(ctx, msg.ProfileID)
	if err != nil {
		return fmt.Errorf("load profile %d: %w", msg.ProfileID, err)
	}
	if profile == nil {
		// Deleted between publish and consume.
		slog.WarnContext(ctx, "Profile gone before export, removing mirrors",
			"component", "worker",
			"profile_id", msg.ProfileID)
		return w.removeProfile(ctx, msg.ProfileID)
	}

	snap, err := w.buildSnapshot(ctx, *profile)
	if err != nil {
		return err
	}
	return w.writeSnapshot(ctx, snap)
}

// RefreshAll rebuilds every profile's mirrors. Run periodically as a
// backstop against lost queue messages.
func (w *ExportWorker) RefreshAll(ctx context.Context) error {
	profiles, err := w.storage.ListProfiles(ctx)
	if err != nil {
		return fmt.Errorf("list profiles: %w", err)
	}

	slog.InfoContext(ctx, "Refreshing all profile mirrors",
		"component", "worker",
		"profiles", len(profiles))

	var failures int
	for _, profile := range profiles {
		snap, err := w.buildSnapshot(ctx, profile)
		if err != nil {
			slog.ErrorContext(ctx, "Failed to build snapshot during refresh",
				"component", "worker",
				"profile_id", profile.ID,
				"error", err)
			failures++
			continue
		}
		if err := w.writeSnapshot(ctx, snap); err != nil {
			slog.ErrorContext(ctx, "Failed to write snapshot during refresh",
				"component", "worker",
				"profile_id", profile.ID,
				"error", err)
			failures++
		}
	}

	if failures > 0 {
		return fmt.Errorf("refresh: %d of %d profiles failed", failures, len(profiles))
	}
	return nil
}

func (w *ExportWorker) buildSnapshot(ctx context.Context, profile core.Profile) (mirror.Snapshot, error) {
	phases, err := w.storage.ListPhases(ctx, profile.ID)
	if err != nil {
		return mirror.Snapshot{}, fmt.Errorf("list phases for profile %d: %w", profile.ID, err)
	}
	tasks, err := w.storage.ListTasks(ctx, profile.ID, storage.TaskFilter{})
	if err != nil {
		return mirror.Snapshot{}, fmt.Errorf("list tasks for profile %d: %w", profile.ID, err)
	}
	expenses, err := w.storage.ListExpenses(ctx, profile.ID, storage.ExpenseFilter{})
	if err != nil {
		return mirror.Snapshot{}, fmt.Errorf("list expenses for profile %d: %w", profile.ID, err)
	}

	return mirror.Snapshot{
		Profile:     profile,
		Phases:      phases,
		Tasks:       tasks,
		Expenses:    expenses,
		Summary:     core.ComputeBudgetSummary(expenses, core.DateOf(w.now())),
		GeneratedAt: w.now(),
	}, nil
}

func (w *ExportWorker) writeSnapshot(ctx context.Context, snap mirror.Snapshot) error {
	var firstErr error
	for _, target := range w.targets {
		if err := target.WriteSnapshot(ctx, snap); err != nil {
			slog.ErrorContext(ctx, "Mirror write failed",
				"component", "worker",
				"mirror", target.Name(),
				"profile_id", snap.Profile.ID,
				"error", err)
			if firstErr == nil {
				firstErr = fmt.Errorf("mirror %s: %w", target.Name(), err)
			}
		}
	}
	return firstErr
}

func (w *ExportWorker) removeProfile(ctx context.Context, profileID int64) error {
	var firstErr error
	for _, target := range w.targets {
		if err := target.RemoveProfile(ctx, profileID); err != nil {
			slog.ErrorContext(ctx, "Mirror removal failed",
				"component", "worker",
				"mirror", target.Name(),
				"profile_id", profileID,
				"error", err)
			if firstErr == nil {
				firstErr = fmt.Errorf("mirror %s: %w", target.Name(), err)
			}
		}
	}
	return firstErr
}
