package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"relocationos/internal/core"
)

// ExpenseFilter narrows ListExpenses; nil fields match everything.
type ExpenseFilter struct {
	PhaseID       *int64
	PaymentStatus *core.PaymentStatus
	CostCertainty *core.CostCertainty
}

const expenseColumns = `id, profile_id, phase_id, related_task_id, title, COALESCE(category, ''),
	estimated_amount, actual_amount, currency, exchange_rate, cost_certainty, payment_status,
	include_in_budget, one_time_relocation_cost, due_date, COALESCE(notes, ''), created_at, updated_at`

func scanExpense(row interface{ Scan(...any) error }) (*core.Expense, error) {
	var e core.Expense
	var relatedTask, actual, rate sql.NullInt64
	var due sql.NullString
	var createdAt, updatedAt string
	err := row.Scan(&e.ID, &e.ProfileID, &e.PhaseID, &relatedTask, &e.Title, &e.Category,
		&e.EstimatedAmount.Cents, &actual, &e.Currency, &rate, &e.CostCertainty, &e.PaymentStatus,
		&e.IncludeInBudget, &e.OneTimeCost, &due, &e.Notes, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	e.RelatedTaskID = idVal(relatedTask)
	e.ActualAmount = moneyVal(actual)
	e.ExchangeRate = rateVal(rate)
	e.DueDate = dateVal(due)
	e.CreatedAt = parseTime(createdAt)
	e.UpdatedAt = parseTime(updatedAt)
	return &e, nil
}

func (r *SQLiteRepository) CreateExpense(ctx context.Context, e core.Expense) (*core.Expense, error) {
	now := fmtTime(time.Now())
	res, err := r.db.ExecContext(ctx, `INSERT INTO expenses
		(profile_id, phase_id, related_task_id, title, category, estimated_amount, actual_amount,
		 currency, exchange_rate, cost_certainty, payment_status, include_in_budget,
		 one_time_relocation_cost, due_date, notes, created_at, updated_at)
		VALUES (?, ?, ?, ?, NULLIF(?, ''), ?, ?, ?, ?, ?, ?, ?, ?, ?, NULLIF(?, ''), ?, ?)`,
		e.ProfileID, e.PhaseID, nullID(e.RelatedTaskID), e.Title, e.Category,
		e.EstimatedAmount.Cents, nullMoney(e.ActualAmount), e.Currency, nullRate(e.ExchangeRate),
		string(e.CostCertainty), string(e.PaymentStatus), e.IncludeInBudget, e.OneTimeCost,
		nullDate(e.DueDate), e.Notes, now, now)
	if err != nil {
		return nil, fmt.Errorf("create expense: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("create expense id: %w", err)
	}

	slog.InfoContext(ctx, "Expense created",
		"component", "storage",
		"expense_id", id,
		"profile_id", e.ProfileID,
		"title", e.Title,
		"estimated_cents", e.EstimatedAmount.Cents,
		"currency", e.Currency)

	return r.GetExpense(ctx, id)
}

func (r *SQLiteRepository) GetExpense(ctx context.Context, id int64) (*core.Expense, error) {
	return getExpense(ctx, r.db, id)
}

func getExpense(ctx context.Context, q querier, id int64) (*core.Expense, error) {
	row := q.QueryRowContext(ctx, `SELECT `+expenseColumns+` FROM expenses WHERE id = ?`, id)
	e, err := scanExpense(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get expense: %w", err)
	}
	return e, nil
}

// ListExpenses returns a profile's expenses by due date, then title.
func (r *SQLiteRepository) ListExpenses(ctx context.Context, profileID int64, f ExpenseFilter) ([]core.Expense, error) {
	query := `SELECT ` + expenseColumns + ` FROM expenses WHERE profile_id = ?`
	args := []any{profileID}
	if f.PhaseID != nil {
		query += ` AND phase_id = ?`
		args = append(args, *f.PhaseID)
	}
	if f.PaymentStatus != nil {
		query += ` AND payment_status = ?`
		args = append(args, string(*f.PaymentStatus))
	}
	if f.CostCertainty != nil {
		query += ` AND cost_certainty = ?`
		args = append(args, string(*f.CostCertainty))
	}
	query += ` ORDER BY due_date, title`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close()

	var expenses []core.Expense
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		expenses = append(expenses, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate expenses: %w", err)
	}
	return expenses, nil
}

// ListUnpaidExpenses feeds the dashboard: unpaid expenses across all
// profiles, earliest due first, capped at limit.
func (r *SQLiteRepository) ListUnpaidExpenses(ctx context.Context, limit int) ([]core.Expense, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+expenseColumns+` FROM expenses WHERE payment_status = ? ORDER BY due_date LIMIT ?`,
		string(core.PaymentUnpaid), limit)
	if err != nil {
		return nil, fmt.Errorf("list unpaid expenses: %w", err)
	}
	defer rows.Close()

	var expenses []core.Expense
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		expenses = append(expenses, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate expenses: %w", err)
	}
	return expenses, nil
}

func (r *SQLiteRepository) UpdateExpense(ctx context.Context, id int64, u core.ExpenseUpdate) (*core.Expense, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin expense update: %w", err)
	}
	defer tx.Rollback()

	e, err := getExpense(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, nil
	}

	u.ApplyTo(e)
	if err := e.Validate(); err != nil {
		return nil, err
	}

	_, err = tx.ExecContext(ctx, `UPDATE expenses SET related_task_id = ?, title = ?,
		category = NULLIF(?, ''), estimated_amount = ?, actual_amount = ?, currency = ?,
		exchange_rate = ?, cost_certainty = ?, payment_status = ?, include_in_budget = ?,
		one_time_relocation_cost = ?, due_date = ?, notes = NULLIF(?, ''), updated_at = ?
		WHERE id = ?`,
		nullID(e.RelatedTaskID), e.Title, e.Category, e.EstimatedAmount.Cents,
		nullMoney(e.ActualAmount), e.Currency, nullRate(e.ExchangeRate), string(e.CostCertainty),
		string(e.PaymentStatus), e.IncludeInBudget, e.OneTimeCost, nullDate(e.DueDate), e.Notes,
		fmtTime(time.Now()), id)
	if err != nil {
		return nil, fmt.Errorf("update expense: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit expense update: %w", err)
	}
	return r.GetExpense(ctx, id)
}

func (r *SQLiteRepository) DeleteExpense(ctx context.Context, id int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM expenses WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete expense: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete expense rows: %w", err)
	}
	if n > 0 {
		slog.InfoContext(ctx, "Expense deleted",
			"component", "storage",
			"expense_id", id)
	}
	return n > 0, nil
}
