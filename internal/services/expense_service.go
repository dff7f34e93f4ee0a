package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"relocationos/internal/amqp"
	"relocationos/internal/core"
	"relocationos/internal/storage"
)

// ExpenseService orchestrates expense operations across SQLite and the
// async export pipeline. Every successful mutation publishes an export
// request (best effort) and notifies registered mutation hooks so the
// web layer can drop cached summaries.
type ExpenseService struct {
	storage   *storage.SQLiteRepository
	publisher ExportPublisher
	now       func() time.Time

	onMutation []func(profileID int64)
}

func NewExpenseService(storage *storage.SQLiteRepository, publisher ExportPublisher) *ExpenseService {
	return &ExpenseService{
		storage:   storage,
		publisher: publisher,
		now:       time.Now,
	}
}

// OnMutation registers a hook invoked after every successful expense
// mutation. Hooks run synchronously on the request path; keep them cheap.
func (s *ExpenseService) OnMutation(fn func(profileID int64)) {
	s.onMutation = append(s.onMutation, fn)
}

func (s *ExpenseService) CreateExpense(ctx context.Context, e core.Expense) (*core.Expense, error) {
	if err := s.checkOwnership(ctx, e); err != nil {
		return nil, err
	}
	if e.PaymentStatus == "" {
		e.PaymentStatus = core.PaymentUnpaid
	}
	if e.CostCertainty == "" {
		e.CostCertainty = core.CostEstimated
	}
	if err := e.Validate(); err != nil {
		return nil, err
	}
	created, err := s.storage.CreateExpense(ctx, e)
	if err != nil {
		return nil, fmt.Errorf("create expense: %w", err)
	}
	s.mutated(ctx, created.ProfileID, amqp.ReasonExpenseCreated)
	return created, nil
}

func (s *ExpenseService) GetExpense(ctx context.Context, id int64) (*core.Expense, error) {
	return s.storage.GetExpense(ctx, id)
}

func (s *ExpenseService) ListExpenses(ctx context.Context, profileID int64, f storage.ExpenseFilter) ([]core.Expense, error) {
	return s.storage.ListExpenses(ctx, profileID, f)
}

// ListUnpaidExpenses returns the dashboard's cross-profile expense list.
func (s *ExpenseService) ListUnpaidExpenses(ctx context.Context, limit int) ([]core.Expense, error) {
	return s.storage.ListUnpaidExpenses(ctx, limit)
}

func (s *ExpenseService) UpdateExpense(ctx context.Context, id int64, u core.ExpenseUpdate) (*core.Expense, error) {
	updated, err := s.storage.UpdateExpense(ctx, id, u)
	if err != nil {
		return nil, fmt.Errorf("update expense: %w", err)
	}
	if updated == nil {
		return nil, ErrExpenseNotFound
	}
	s.mutated(ctx, updated.ProfileID, amqp.ReasonExpenseUpdated)
	return updated, nil
}

// MarkPaid flips the expense to paid.
func (s *ExpenseService) MarkPaid(ctx context.Context, id int64) (*core.Expense, error) {
	paid := core.PaymentPaid
	updated, err := s.storage.UpdateExpense(ctx, id, core.ExpenseUpdate{PaymentStatus: &paid})
	if err != nil {
		return nil, fmt.Errorf("mark expense paid: %w", err)
	}
	if updated == nil {
		return nil, ErrExpenseNotFound
	}
	s.mutated(ctx, updated.ProfileID, amqp.ReasonExpensePaid)
	return updated, nil
}

func (s *ExpenseService) DeleteExpense(ctx context.Context, id int64) error {
	// Load first: the profile id is needed for the export event and the
	// row is gone after the delete.
	existing, err := s.storage.GetExpense(ctx, id)
	if err != nil {
		return fmt.Errorf("load expense: %w", err)
	}
	if existing == nil {
		return ErrExpenseNotFound
	}

	found, err := s.storage.DeleteExpense(ctx, id)
	if err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	if !found {
		return ErrExpenseNotFound
	}
	s.mutated(ctx, existing.ProfileID, amqp.ReasonExpenseDeleted)
	return nil
}

// BudgetSummary aggregates a profile's budget-included expenses.
func (s *ExpenseService) BudgetSummary(ctx context.Context, profileID int64) (core.BudgetSummary, error) {
	expenses, err := s.storage.ListExpenses(ctx, profileID, storage.ExpenseFilter{})
	if err != nil {
		return core.BudgetSummary{}, fmt.Errorf("list expenses: %w", err)
	}
	return core.ComputeBudgetSummary(expenses, core.DateOf(s.now())), nil
}

func (s *ExpenseService) checkOwnership(ctx context.Context, e core.Expense) error {
	phase, err := s.storage.GetPhase(ctx, e.PhaseID)
	if err != nil {
		return fmt.Errorf("load phase: %w", err)
	}
	if phase == nil {
		return ErrPhaseNotFound
	}
	if phase.ProfileID != e.ProfileID {
		return ErrPhaseOwnership
	}

	if e.RelatedTaskID != nil {
		task, err := s.storage.GetTask(ctx, *e.RelatedTaskID)
		if err != nil {
			return fmt.Errorf("load related task: %w", err)
		}
		if task == nil {
			return ErrTaskNotFound
		}
		if task.ProfileID != e.ProfileID {
			return ErrTaskOwnership
		}
	}
	return nil
}

func (s *ExpenseService) mutated(ctx context.Context, profileID int64, reason string) {
	for _, fn := range s.onMutation {
		fn(profileID)
	}
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishExportRequest(ctx, profileID, reason); err != nil {
		// Best effort: the expense mutation already succeeded.
		slog.ErrorContext(ctx, "Failed to publish export request",
			"component", "services",
			"profile_id", profileID,
			"reason", reason,
			"error", err)
	}
}
