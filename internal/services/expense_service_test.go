package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"relocationos/internal/amqp"
	"relocationos/internal/core"
)

func TestExpenseService_CreatePublishesAndNotifies(t *testing.T) {
	repo := newTestRepo(t)
	pub := &recordingPublisher{}
	svc := NewExpenseService(repo, pub)
	ctx := context.Background()

	var invalidated []int64
	svc.OnMutation(func(profileID int64) { invalidated = append(invalidated, profileID) })

	profile := seedProfile(t, repo)
	phase := seedPhase(t, repo, profile.ID)

	created, err := svc.CreateExpense(ctx, core.Expense{
		ProfileID:       profile.ID,
		PhaseID:         phase.ID,
		Title:           "Flight tickets",
		EstimatedAmount: core.Money{Cents: 85000},
		Currency:        "EUR",
		IncludeInBudget: true,
	})
	if err != nil {
		t.Fatalf("CreateExpense() error = %v", err)
	}
	if created.PaymentStatus != core.PaymentUnpaid {
		t.Errorf("default payment status = %v, want unpaid", created.PaymentStatus)
	}
	if created.CostCertainty != core.CostEstimated {
		t.Errorf("default cost certainty = %v, want estimated", created.CostCertainty)
	}

	reqs := pub.published()
	if len(reqs) != 1 || reqs[0].reason != amqp.ReasonExpenseCreated {
		t.Errorf("published = %+v, want one %s request", reqs, amqp.ReasonExpenseCreated)
	}
	if len(invalidated) != 1 || invalidated[0] != profile.ID {
		t.Errorf("mutation hooks got %v, want [%d]", invalidated, profile.ID)
	}
}

func TestExpenseService_CreateChecksOwnership(t *testing.T) {
	repo := newTestRepo(t)
	svc := NewExpenseService(repo, nil)
	ctx := context.Background()

	profile := seedProfile(t, repo)
	phase := seedPhase(t, repo, profile.ID)

	t.Run("missing phase", func(t *testing.T) {
		_, err := svc.CreateExpense(ctx, core.Expense{
			ProfileID:       profile.ID,
			PhaseID:         999,
			Title:           "Orphan",
			EstimatedAmount: core.Money{Cents: 100},
			Currency:        "EUR",
		})
		if !errors.Is(err, ErrPhaseNotFound) {
			t.Errorf("error = %v, want ErrPhaseNotFound", err)
		}
	})

	t.Run("related task from another profile", func(t *testing.T) {
		other, err := repo.CreateProfile(ctx, core.Profile{
			RelocationName:     "Dublin move",
			OriginCountry:      "US",
			DestinationCountry: "IE",
			FamilySize:         1,
			PrimaryCurrency:    "EUR",
		})
		if err != nil {
			t.Fatalf("create second profile: %v", err)
		}
		otherPhase := seedPhase(t, repo, other.ID)
		otherTask, err := repo.CreateTask(ctx, core.Task{
			ProfileID: other.ID,
			PhaseID:   otherPhase.ID,
			Title:     "Foreign task",
			Status:    core.TaskNotStarted,
		})
		if err != nil {
			t.Fatalf("create task: %v", err)
		}

		_, err = svc.CreateExpense(ctx, core.Expense{
			ProfileID:       profile.ID,
			PhaseID:         phase.ID,
			RelatedTaskID:   &otherTask.ID,
			Title:           "Cross-profile",
			EstimatedAmount: core.Money{Cents: 100},
			Currency:        "EUR",
		})
		if !errors.Is(err, ErrTaskOwnership) {
			t.Errorf("error = %v, want ErrTaskOwnership", err)
		}
	})
}

func TestExpenseService_MarkPaid(t *testing.T) {
	repo := newTestRepo(t)
	pub := &recordingPublisher{}
	svc := NewExpenseService(repo, pub)
	ctx := context.Background()

	profile := seedProfile(t, repo)
	phase := seedPhase(t, repo, profile.ID)
	expense, err := svc.CreateExpense(ctx, core.Expense{
		ProfileID:       profile.ID,
		PhaseID:         phase.ID,
		Title:           "Movers deposit",
		EstimatedAmount: core.Money{Cents: 50000},
		Currency:        "EUR",
		IncludeInBudget: true,
	})
	if err != nil {
		t.Fatalf("CreateExpense() error = %v", err)
	}

	paid, err := svc.MarkPaid(ctx, expense.ID)
	if err != nil {
		t.Fatalf("MarkPaid() error = %v", err)
	}
	if paid.PaymentStatus != core.PaymentPaid {
		t.Errorf("payment status = %v, want paid", paid.PaymentStatus)
	}

	reqs := pub.published()
	if len(reqs) != 2 || reqs[1].reason != amqp.ReasonExpensePaid {
		t.Errorf("published = %+v, want create then paid", reqs)
	}

	if _, err := svc.MarkPaid(ctx, 999); !errors.Is(err, ErrExpenseNotFound) {
		t.Errorf("MarkPaid(missing) error = %v, want ErrExpenseNotFound", err)
	}
}

func TestExpenseService_DeletePublishesWithProfileID(t *testing.T) {
	repo := newTestRepo(t)
	pub := &recordingPublisher{}
	svc := NewExpenseService(repo, pub)
	ctx := context.Background()

	profile := seedProfile(t, repo)
	phase := seedPhase(t, repo, profile.ID)
	expense, err := svc.CreateExpense(ctx, core.Expense{
		ProfileID:       profile.ID,
		PhaseID:         phase.ID,
		Title:           "Storage unit",
		EstimatedAmount: core.Money{Cents: 12000},
		Currency:        "EUR",
	})
	if err != nil {
		t.Fatalf("CreateExpense() error = %v", err)
	}

	if err := svc.DeleteExpense(ctx, expense.ID); err != nil {
		t.Fatalf("DeleteExpense() error = %v", err)
	}

	reqs := pub.published()
	if len(reqs) != 2 {
		t.Fatalf("published %d requests, want 2", len(reqs))
	}
	if reqs[1].reason != amqp.ReasonExpenseDeleted || reqs[1].profileID != profile.ID {
		t.Errorf("delete request = %+v", reqs[1])
	}

	if err := svc.DeleteExpense(ctx, expense.ID); !errors.Is(err, ErrExpenseNotFound) {
		t.Errorf("second DeleteExpense() error = %v, want ErrExpenseNotFound", err)
	}
}

func TestExpenseService_PublisherFailureDoesNotFailMutation(t *testing.T) {
	repo := newTestRepo(t)
	pub := &recordingPublisher{err: errors.New("broker down")}
	svc := NewExpenseService(repo, pub)
	ctx := context.Background()

	profile := seedProfile(t, repo)
	phase := seedPhase(t, repo, profile.ID)

	if _, err := svc.CreateExpense(ctx, core.Expense{
		ProfileID:       profile.ID,
		PhaseID:         phase.ID,
		Title:           "Customs fees",
		EstimatedAmount: core.Money{Cents: 30000},
		Currency:        "EUR",
	}); err != nil {
		t.Errorf("CreateExpense() should not fail on publish error, got %v", err)
	}
}

func TestExpenseService_BudgetSummary(t *testing.T) {
	repo := newTestRepo(t)
	svc := NewExpenseService(repo, nil)
	svc.now = func() time.Time { return time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC) }
	ctx := context.Background()

	profile := seedProfile(t, repo)
	phase := seedPhase(t, repo, profile.ID)

	if _, err := svc.CreateExpense(ctx, core.Expense{
		ProfileID:       profile.ID,
		PhaseID:         phase.ID,
		Title:           "Deposit",
		EstimatedAmount: core.Money{Cents: 200000},
		Currency:        "EUR",
		IncludeInBudget: true,
	}); err != nil {
		t.Fatalf("CreateExpense() error = %v", err)
	}
	paidExpense, err := svc.CreateExpense(ctx, core.Expense{
		ProfileID:       profile.ID,
		PhaseID:         phase.ID,
		Title:           "Visa fee",
		EstimatedAmount: core.Money{Cents: 50000},
		Currency:        "EUR",
		IncludeInBudget: true,
	})
	if err != nil {
		t.Fatalf("CreateExpense() error = %v", err)
	}
	if _, err := svc.MarkPaid(ctx, paidExpense.ID); err != nil {
		t.Fatalf("MarkPaid() error = %v", err)
	}
	// Outside the budget: contributes nothing.
	if _, err := svc.CreateExpense(ctx, core.Expense{
		ProfileID:       profile.ID,
		PhaseID:         phase.ID,
		Title:           "Optional tour",
		EstimatedAmount: core.Money{Cents: 99900},
		Currency:        "EUR",
		IncludeInBudget: false,
	}); err != nil {
		t.Fatalf("CreateExpense() error = %v", err)
	}

	summary, err := svc.BudgetSummary(ctx, profile.ID)
	if err != nil {
		t.Fatalf("BudgetSummary() error = %v", err)
	}
	if summary.TotalExpenses != 2 {
		t.Errorf("TotalExpenses = %d, want 2", summary.TotalExpenses)
	}
	if summary.TotalEstimated != 2500 {
		t.Errorf("TotalEstimated = %v, want 2500", summary.TotalEstimated)
	}
	if summary.TotalPaid != 500 {
		t.Errorf("TotalPaid = %v, want 500", summary.TotalPaid)
	}
	if summary.Remaining != 2000 {
		t.Errorf("Remaining = %v, want 2000", summary.Remaining)
	}
	if summary.BudgetProgressPct != 20 {
		t.Errorf("BudgetProgressPct = %v, want 20", summary.BudgetProgressPct)
	}
}
