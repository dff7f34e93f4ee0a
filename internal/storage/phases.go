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

const phaseColumns = `id, profile_id, name, COALESCE(description, ''), relative_start_month,
	relative_end_month, order_index, created_at`

func scanPhase(row interface{ Scan(...any) error }) (*core.Phase, error) {
	var p core.Phase
	var createdAt string
	err := row.Scan(&p.ID, &p.ProfileID, &p.Name, &p.Description, &p.RelativeStartMonth,
		&p.RelativeEndMonth, &p.OrderIndex, &createdAt)
	if err != nil {
		return nil, err
	}
	p.CreatedAt = parseTime(createdAt)
	return &p, nil
}

func (r *SQLiteRepository) CreatePhase(ctx context.Context, p core.Phase) (*core.Phase, error) {
	res, err := r.db.ExecContext(ctx, `INSERT INTO relocation_phases
		(profile_id, name, description, relative_start_month, relative_end_month, order_index, created_at)
		VALUES (?, ?, NULLIF(?, ''), ?, ?, ?, ?)`,
		p.ProfileID, p.Name, p.Description, p.RelativeStartMonth, p.RelativeEndMonth, p.OrderIndex,
		fmtTime(time.Now()))
	if err != nil {
		return nil, fmt.Errorf("create phase: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("create phase id: %w", err)
	}

	slog.InfoContext(ctx, "Phase created",
		"component", "storage",
		"phase_id", id,
		"profile_id", p.ProfileID,
		"name", p.Name)

	return r.GetPhase(ctx, id)
}

func (r *SQLiteRepository) GetPhase(ctx context.Context, id int64) (*core.Phase, error) {
	return getPhase(ctx, r.db, id)
}

func getPhase(ctx context.Context, q querier, id int64) (*core.Phase, error) {
	row := q.QueryRowContext(ctx, `SELECT `+phaseColumns+` FROM relocation_phases WHERE id = ?`, id)
	p, err := scanPhase(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get phase: %w", err)
	}
	return p, nil
}

// ListPhases returns a profile's phases ordered by their position on the
// timeline.
func (r *SQLiteRepository) ListPhases(ctx context.Context, profileID int64) ([]core.Phase, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+phaseColumns+` FROM relocation_phases WHERE profile_id = ? ORDER BY order_index`,
		profileID)
	if err != nil {
		return nil, fmt.Errorf("list phases: %w", err)
	}
	defer rows.Close()

	var phases []core.Phase
	for rows.Next() {
		p, err := scanPhase(rows)
		if err != nil {
			return nil, fmt.Errorf("scan phase: %w", err)
		}
		phases = append(phases, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate phases: %w", err)
	}
	return phases, nil
}

// NextOrderIndex suggests the position for a new phase: one past the
// profile's highest index, starting at 1.
func (r *SQLiteRepository) NextOrderIndex(ctx context.Context, profileID int64) (int, error) {
	var next int
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(order_index), 0) + 1 FROM relocation_phases WHERE profile_id = ?`,
		profileID).Scan(&next)
	if err != nil {
		return 0, fmt.Errorf("next order index: %w", err)
	}
	return next, nil
}

// UpdatePhase merges the set fields and re-validates before writing, so
// an update can never leave an inverted month window behind.
func (r *SQLiteRepository) UpdatePhase(ctx context.Context, id int64, u core.PhaseUpdate) (*core.Phase, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin phase update: %w", err)
	}
	defer tx.Rollback()

	p, err := getPhase(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, nil
	}

	u.ApplyTo(p)
	if err := p.Validate(); err != nil {
		return nil, err
	}

	_, err = tx.ExecContext(ctx, `UPDATE relocation_phases SET name = ?, description = NULLIF(?, ''),
		relative_start_month = ?, relative_end_month = ?, order_index = ? WHERE id = ?`,
		p.Name, p.Description, p.RelativeStartMonth, p.RelativeEndMonth, p.OrderIndex, id)
	if err != nil {
		return nil, fmt.Errorf("update phase: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit phase update: %w", err)
	}
	return r.GetPhase(ctx, id)
}

// DeletePhase removes the phase and cascades to its tasks and expenses.
func (r *SQLiteRepository) DeletePhase(ctx context.Context, id int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM relocation_phases WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete phase: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete phase rows: %w", err)
	}
	if n > 0 {
		slog.InfoContext(ctx, "Phase deleted",
			"component", "storage",
			"phase_id", id)
	}
	return n > 0, nil
}
