// Package mirror defines the export targets that keep external copies of
// a profile's budget in step with storage, and the snapshot they consume.
package mirror

import (
	"context"
	"time"

	"relocationos/internal/core"
)

// Snapshot is one profile's full exportable state, loaded from storage at
// export time so targets never query the database themselves.
type Snapshot struct {
	Profile     core.Profile
	Phases      []core.Phase
	Tasks       []core.Task
	Expenses    []core.Expense
	Summary     core.BudgetSummary
	GeneratedAt time.Time
}

// Target receives snapshots for profiles that changed and removals for
// profiles that no longer exist.
type Target interface {
	// Name identifies the target in logs and configuration.
	Name() string

	// WriteSnapshot replaces the target's copy of the profile's budget.
	WriteSnapshot(ctx context.Context, snap Snapshot) error

	// RemoveProfile drops whatever the target holds for the profile.
	RemoveProfile(ctx context.Context, profileID int64) error
}
