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

// TaskFilter narrows ListTasks; nil fields match everything.
type TaskFilter struct {
	PhaseID *int64
	Status  *core.TaskStatus
}

const taskColumns = `id, profile_id, phase_id, title, COALESCE(description, ''), status, critical,
	planned_date, completed_date, COALESCE(notes, ''), created_at, updated_at`

func scanTask(row interface{ Scan(...any) error }) (*core.Task, error) {
	var t core.Task
	var planned, completed sql.NullString
	var createdAt, updatedAt string
	err := row.Scan(&t.ID, &t.ProfileID, &t.PhaseID, &t.Title, &t.Description, &t.Status, &t.Critical,
		&planned, &completed, &t.Notes, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	t.PlannedDate = dateVal(planned)
	t.CompletedDate = dateVal(completed)
	t.CreatedAt = parseTime(createdAt)
	t.UpdatedAt = parseTime(updatedAt)
	return &t, nil
}

func (r *SQLiteRepository) CreateTask(ctx context.Context, t core.Task) (*core.Task, error) {
	now := fmtTime(time.Now())
	res, err := r.db.ExecContext(ctx, `INSERT INTO tasks
		(profile_id, phase_id, title, description, status, critical, planned_date, completed_date,
		 notes, created_at, updated_at)
		VALUES (?, ?, ?, NULLIF(?, ''), ?, ?, ?, ?, NULLIF(?, ''), ?, ?)`,
		t.ProfileID, t.PhaseID, t.Title, t.Description, string(t.Status), t.Critical,
		nullDate(t.PlannedDate), nullDate(t.CompletedDate), t.Notes, now, now)
	if err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("create task id: %w", err)
	}

	slog.InfoContext(ctx, "Task created",
		"component", "storage",
		"task_id", id,
		"profile_id", t.ProfileID,
		"phase_id", t.PhaseID,
		"title", t.Title)

	return r.GetTask(ctx, id)
}

func (r *SQLiteRepository) GetTask(ctx context.Context, id int64) (*core.Task, error) {
	return getTask(ctx, r.db, id)
}

func getTask(ctx context.Context, q querier, id int64) (*core.Task, error) {
	row := q.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id)
	t, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get task: %w", err)
	}
	return t, nil
}

// ListTasks returns a profile's tasks, critical ones first, then by
// planned date.
func (r *SQLiteRepository) ListTasks(ctx context.Context, profileID int64, f TaskFilter) ([]core.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE profile_id = ?`
	args := []any{profileID}
	if f.PhaseID != nil {
		query += ` AND phase_id = ?`
		args = append(args, *f.PhaseID)
	}
	if f.Status != nil {
		query += ` AND status = ?`
		args = append(args, string(*f.Status))
	}
	query += ` ORDER BY critical DESC, planned_date`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []core.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tasks: %w", err)
	}
	return tasks, nil
}

// ListIncompleteTasks feeds the dashboard: every not-yet-completed task
// across all profiles, earliest planned first, capped at limit.
func (r *SQLiteRepository) ListIncompleteTasks(ctx context.Context, limit int) ([]core.Task, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE status != ? ORDER BY planned_date LIMIT ?`,
		string(core.TaskCompleted), limit)
	if err != nil {
		return nil, fmt.Errorf("list incomplete tasks: %w", err)
	}
	defer rows.Close()

	var tasks []core.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tasks: %w", err)
	}
	return tasks, nil
}

func (r *SQLiteRepository) UpdateTask(ctx context.Context, id int64, u core.TaskUpdate) (*core.Task, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin task update: %w", err)
	}
	defer tx.Rollback()

	t, err := getTask(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, nil
	}

	u.ApplyTo(t)
	if err := t.Validate(); err != nil {
		return nil, err
	}

	_, err = tx.ExecContext(ctx, `UPDATE tasks SET title = ?, description = NULLIF(?, ''), status = ?,
		critical = ?, planned_date = ?, completed_date = ?, notes = NULLIF(?, ''), updated_at = ?
		WHERE id = ?`,
		t.Title, t.Description, string(t.Status), t.Critical, nullDate(t.PlannedDate),
		nullDate(t.CompletedDate), t.Notes, fmtTime(time.Now()), id)
	if err != nil {
		return nil, fmt.Errorf("update task: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit task update: %w", err)
	}
	return r.GetTask(ctx, id)
}

func (r *SQLiteRepository) DeleteTask(ctx context.Context, id int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete task: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete task rows: %w", err)
	}
	if n > 0 {
		slog.InfoContext(ctx, "Task deleted",
			"component", "storage",
			"task_id", id)
	}
	return n > 0, nil
}
