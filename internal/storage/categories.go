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

const categoryColumns = `id, profile_id, name, COALESCE(description, ''), created_at`

func scanCategory(row interface{ Scan(...any) error }) (*core.Category, error) {
	var c core.Category
	var createdAt string
	err := row.Scan(&c.ID, &c.ProfileID, &c.Name, &c.Description, &createdAt)
	if err != nil {
		return nil, err
	}
	c.CreatedAt = parseTime(createdAt)
	return &c, nil
}

func (r *SQLiteRepository) CreateCategory(ctx context.Context, c core.Category) (*core.Category, error) {
	res, err := r.db.ExecContext(ctx, `INSERT INTO expense_categories
		(profile_id, name, description, created_at) VALUES (?, ?, NULLIF(?, ''), ?)`,
		c.ProfileID, c.Name, c.Description, fmtTime(time.Now()))
	if err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("create category id: %w", err)
	}

	slog.InfoContext(ctx, "Category created",
		"component", "storage",
		"category_id", id,
		"profile_id", c.ProfileID,
		"name", c.Name)

	return r.GetCategory(ctx, id)
}

func (r *SQLiteRepository) GetCategory(ctx context.Context, id int64) (*core.Category, error) {
	return getCategory(ctx, r.db, id)
}

func getCategory(ctx context.Context, q querier, id int64) (*core.Category, error) {
	row := q.QueryRowContext(ctx, `SELECT `+categoryColumns+` FROM expense_categories WHERE id = ?`, id)
	c, err := scanCategory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get category: %w", err)
	}
	return c, nil
}

// ListCategories returns a profile's categories alphabetically.
func (r *SQLiteRepository) ListCategories(ctx context.Context, profileID int64) ([]core.Category, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+categoryColumns+` FROM expense_categories WHERE profile_id = ? ORDER BY name`,
		profileID)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var categories []core.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate categories: %w", err)
	}
	return categories, nil
}

func (r *SQLiteRepository) UpdateCategory(ctx context.Context, id int64, u core.CategoryUpdate) (*core.Category, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin category update: %w", err)
	}
	defer tx.Rollback()

	c, err := getCategory(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, nil
	}

	u.ApplyTo(c)
	if err := c.Validate(); err != nil {
		return nil, err
	}

	_, err = tx.ExecContext(ctx, `UPDATE expense_categories SET name = ?, description = NULLIF(?, '')
		WHERE id = ?`, c.Name, c.Description, id)
	if err != nil {
		return nil, fmt.Errorf("update category: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit category update: %w", err)
	}
	return r.GetCategory(ctx, id)
}

func (r *SQLiteRepository) DeleteCategory(ctx context.Context, id int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM expense_categories WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete category: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete category rows: %w", err)
	}
	if n > 0 {
		slog.InfoContext(ctx, "Category deleted",
			"component", "storage",
			"category_id", id)
	}
	return n > 0, nil
}
