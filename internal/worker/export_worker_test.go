package worker

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"relocationos/internal/amqp"
	"relocationos/internal/core"
	"relocationos/internal/mirror"
	"relocationos/internal/mirror/memory"
	"relocationos/internal/storage"
)

func newTestRepo(t *testing.T) *storage.SQLiteRepository {
	t.Helper()
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func seedProfileWithExpense(t *testing.T, repo *storage.SQLiteRepository) *core.Profile {
	t.Helper()
	ctx := context.Background()

	profile, err := repo.CreateProfile(ctx, core.Profile{
		RelocationName:     "Vienna move",
		OriginCountry:      "CH",
		DestinationCountry: "AT",
		FamilySize:         2,
		PrimaryCurrency:    "EUR",
	})
	if err != nil {
		t.Fatalf("create profile: %v", err)
	}
	phase, err := repo.CreatePhase(ctx, core.Phase{
		ProfileID:          profile.ID,
		Name:               "Settling in",
		RelativeStartMonth: 0,
		RelativeEndMonth:   3,
		OrderIndex:         1,
	})
	if err != nil {
		t.Fatalf("create phase: %v", err)
	}
	if _, err := repo.CreateExpense(ctx, core.Expense{
		ProfileID:       profile.ID,
		PhaseID:         phase.ID,
		Title:           "Registration fee",
		EstimatedAmount: core.Money{Cents: 5000},
		Currency:        "EUR",
		CostCertainty:   core.CostConfirmed,
		PaymentStatus:   core.PaymentUnpaid,
		IncludeInBudget: true,
	}); err != nil {
		t.Fatalf("create expense: %v", err)
	}
	return profile
}

func TestExportWorker_HandleExportRequest(t *testing.T) {
	repo := newTestRepo(t)
	store := memory.New()
	w := NewExportWorker(repo, []mirror.Target{store})
	w.now = func() time.Time { return time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC) }
	ctx := context.Background()

	profile := seedProfileWithExpense(t, repo)

	msg := amqp.NewExportRequest(profile.ID, amqp.ReasonExpenseCreated)
	if err := w.HandleExportRequest(ctx, msg); err != nil {
		t.Fatalf("HandleExportRequest() error = %v", err)
	}

	snap, ok := store.Snapshot(profile.ID)
	if !ok {
		t.Fatal("no snapshot recorded")
	}
	if snap.Profile.RelocationName != "Vienna move" {
		t.Errorf("snapshot profile = %q", snap.Profile.RelocationName)
	}
	if len(snap.Expenses) != 1 || len(snap.Phases) != 1 {
		t.Errorf("snapshot has %d expenses, %d phases; want 1 and 1", len(snap.Expenses), len(snap.Phases))
	}
	if snap.Summary.TotalEstimated != 50 {
		t.Errorf("snapshot summary estimated = %v, want 50", snap.Summary.TotalEstimated)
	}
}

func TestExportWorker_ProfileDeletedRemovesMirrors(t *testing.T) {
	repo := newTestRepo(t)
	store := memory.New()
	w := NewExportWorker(repo, []mirror.Target{store})
	ctx := context.Background()

	profile := seedProfileWithExpense(t, repo)
	if err := w.HandleExportRequest(ctx, amqp.NewExportRequest(profile.ID, amqp.ReasonExpenseCreated)); err != nil {
		t.Fatalf("HandleExportRequest() error = %v", err)
	}

	if err := w.HandleExportRequest(ctx, amqp.NewExportRequest(profile.ID, amqp.ReasonProfileDeleted)); err != nil {
		t.Fatalf("HandleExportRequest(deleted) error = %v", err)
	}

	if _, ok := store.Snapshot(profile.ID); ok {
		t.Error("snapshot should be removed after profile deletion")
	}
	removed := store.Removed()
	if len(removed) != 1 || removed[0] != profile.ID {
		t.Errorf("Removed() = %v, want [%d]", removed, profile.ID)
	}
}

func TestExportWorker_MissingProfileRemovesMirrors(t *testing.T) {
	repo := newTestRepo(t)
	store := memory.New()
	w := NewExportWorker(repo, []mirror.Target{store})

	// Profile 42 never existed; the worker must still clean up mirrors.
	if err := w.HandleExportRequest(context.Background(), amqp.NewExportRequest(42, amqp.ReasonExpenseUpdated)); err != nil {
		t.Fatalf("HandleExportRequest() error = %v", err)
	}
	removed := store.Removed()
	if len(removed) != 1 || removed[0] != 42 {
		t.Errorf("Removed() = %v, want [42]", removed)
	}
}

func TestExportWorker_RefreshAll(t *testing.T) {
	repo := newTestRepo(t)
	store := memory.New()
	w := NewExportWorker(repo, []mirror.Target{store})
	ctx := context.Background()

	first := seedProfileWithExpense(t, repo)
	second := seedProfileWithExpense(t, repo)

	if err := w.RefreshAll(ctx); err != nil {
		t.Fatalf("RefreshAll() error = %v", err)
	}
	if store.Writes() != 2 {
		t.Errorf("Writes() = %d, want 2", store.Writes())
	}
	for _, id := range []int64{first.ID, second.ID} {
		if _, ok := store.Snapshot(id); !ok {
			t.Errorf("no snapshot for profile %d", id)
		}
	}
}
