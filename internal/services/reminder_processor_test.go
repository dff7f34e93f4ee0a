package services

import (
	"context"
	"testing"
	"time"

	"relocationos/internal/core"
)

func TestReminderProcessor_BuildDigest(t *testing.T) {
	repo := newTestRepo(t)
	proc := NewReminderProcessor(repo)
	proc.now = func() time.Time { return time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC) }
	ctx := context.Background()

	profile := seedProfile(t, repo)
	phase := seedPhase(t, repo, profile.ID)

	overduePlanned := core.NewDate(2026, 3, 1)
	if _, err := repo.CreateTask(ctx, core.Task{
		ProfileID:   profile.ID,
		PhaseID:     phase.ID,
		Title:       "Submit visa forms",
		Status:      core.TaskInProgress,
		PlannedDate: &overduePlanned,
	}); err != nil {
		t.Fatalf("create task: %v", err)
	}

	// Completed on time: must not appear even though the date passed.
	donePlanned := core.NewDate(2026, 3, 1)
	doneDate := core.NewDate(2026, 2, 28)
	if _, err := repo.CreateTask(ctx, core.Task{
		ProfileID:     profile.ID,
		PhaseID:       phase.ID,
		Title:         "Order packing boxes",
		Status:        core.TaskCompleted,
		PlannedDate:   &donePlanned,
		CompletedDate: &doneDate,
	}); err != nil {
		t.Fatalf("create task: %v", err)
	}

	dueSoon := core.NewDate(2026, 3, 15)
	if _, err := repo.CreateExpense(ctx, core.Expense{
		ProfileID:       profile.ID,
		PhaseID:         phase.ID,
		Title:           "First month rent",
		EstimatedAmount: core.Money{Cents: 150000},
		Currency:        "EUR",
		CostCertainty:   core.CostConfirmed,
		PaymentStatus:   core.PaymentUnpaid,
		IncludeInBudget: true,
		DueDate:         &dueSoon,
	}); err != nil {
		t.Fatalf("create expense: %v", err)
	}

	digest, err := proc.BuildDigest(ctx)
	if err != nil {
		t.Fatalf("BuildDigest() error = %v", err)
	}

	if len(digest.OverdueTasks) != 1 {
		t.Fatalf("overdue tasks = %d, want 1", len(digest.OverdueTasks))
	}
	if digest.OverdueTasks[0].Title != "Submit visa forms" {
		t.Errorf("overdue task = %q", digest.OverdueTasks[0].Title)
	}
	if digest.OverdueTasks[0].ProfileName != profile.RelocationName {
		t.Errorf("profile name = %q, want %q", digest.OverdueTasks[0].ProfileName, profile.RelocationName)
	}
	if len(digest.DueSoonTasks) != 0 {
		t.Errorf("due-soon tasks = %d, want 0", len(digest.DueSoonTasks))
	}
	if len(digest.DueSoonExpenses) != 1 {
		t.Fatalf("due-soon expenses = %d, want 1", len(digest.DueSoonExpenses))
	}
	if digest.DueSoonExpenses[0].Due.String() != "2026-03-15" {
		t.Errorf("due-soon expense date = %s", digest.DueSoonExpenses[0].Due)
	}
	if digest.IsEmpty() {
		t.Error("digest should not be empty")
	}
}

func TestReminderProcessor_EmptyDigest(t *testing.T) {
	repo := newTestRepo(t)
	proc := NewReminderProcessor(repo)

	digest, err := proc.BuildDigest(context.Background())
	if err != nil {
		t.Fatalf("BuildDigest() error = %v", err)
	}
	if !digest.IsEmpty() {
		t.Error("digest of empty database should be empty")
	}
	if err := proc.Run(context.Background()); err != nil {
		t.Errorf("Run() error = %v", err)
	}
}
