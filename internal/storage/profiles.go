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

const profileColumns = `id, relocation_name, origin_country, destination_country, target_arrival_date,
	family_size, number_of_children, pets, primary_currency, COALESCE(secondary_currency, ''),
	COALESCE(notes, ''), created_at, updated_at`

func scanProfile(row interface{ Scan(...any) error }) (*core.Profile, error) {
	var p core.Profile
	var arrival sql.NullString
	var createdAt, updatedAt string
	err := row.Scan(&p.ID, &p.RelocationName, &p.OriginCountry, &p.DestinationCountry, &arrival,
		&p.FamilySize, &p.NumberOfChildren, &p.Pets, &p.PrimaryCurrency, &p.SecondaryCurrency,
		&p.Notes, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	p.TargetArrivalDate = dateVal(arrival)
	p.CreatedAt = parseTime(createdAt)
	p.UpdatedAt = parseTime(updatedAt)
	return &p, nil
}

func (r *SQLiteRepository) CreateProfile(ctx context.Context, p core.Profile) (*core.Profile, error) {
	now := fmtTime(time.Now())
	res, err := r.db.ExecContext(ctx, `INSERT INTO relocation_profiles
		(relocation_name, origin_country, destination_country, target_arrival_date, family_size,
		 number_of_children, pets, primary_currency, secondary_currency, notes, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, NULLIF(?, ''), NULLIF(?, ''), ?, ?)`,
		p.RelocationName, p.OriginCountry, p.DestinationCountry, nullDate(p.TargetArrivalDate),
		p.FamilySize, p.NumberOfChildren, p.Pets, p.PrimaryCurrency, p.SecondaryCurrency, p.Notes,
		now, now)
	if err != nil {
		return nil, fmt.Errorf("create profile: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("create profile id: %w", err)
	}

	slog.InfoContext(ctx, "Profile created",
		"component", "storage",
		"profile_id", id,
		"name", p.RelocationName)

	return r.GetProfile(ctx, id)
}

func (r *SQLiteRepository) GetProfile(ctx context.Context, id int64) (*core.Profile, error) {
	return getProfile(ctx, r.db, id)
}

func getProfile(ctx context.Context, q querier, id int64) (*core.Profile, error) {
	row := q.QueryRowContext(ctx, `SELECT `+profileColumns+` FROM relocation_profiles WHERE id = ?`, id)
	p, err := scanProfile(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return p, nil
}

// ListProfiles returns every profile in insertion order.
func (r *SQLiteRepository) ListProfiles(ctx context.Context) ([]core.Profile, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+profileColumns+` FROM relocation_profiles ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	defer rows.Close()

	var profiles []core.Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("scan profile: %w", err)
		}
		profiles = append(profiles, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate profiles: %w", err)
	}
	return profiles, nil
}

// UpdateProfile applies the set fields, re-validates, and writes the
// merged row back. A missing id returns (nil, nil).
func (r *SQLiteRepository) UpdateProfile(ctx context.Context, id int64, u core.ProfileUpdate) (*core.Profile, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin profile update: %w", err)
	}
	defer tx.Rollback()

	p, err := getProfile(ctx, tx, id)
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

	_, err = tx.ExecContext(ctx, `UPDATE relocation_profiles SET relocation_name = ?, origin_country = ?,
		destination_country = ?, target_arrival_date = ?, family_size = ?, number_of_children = ?,
		pets = ?, primary_currency = ?, secondary_currency = NULLIF(?, ''), notes = NULLIF(?, ''),
		updated_at = ? WHERE id = ?`,
		p.RelocationName, p.OriginCountry, p.DestinationCountry, nullDate(p.TargetArrivalDate),
		p.FamilySize, p.NumberOfChildren, p.Pets, p.PrimaryCurrency, p.SecondaryCurrency, p.Notes,
		fmtTime(time.Now()), id)
	if err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit profile update: %w", err)
	}
	return r.GetProfile(ctx, id)
}

// DeleteProfile removes the profile and, through the schema cascades,
// every phase, task, expense, and category it owns.
func (r *SQLiteRepository) DeleteProfile(ctx context.Context, id int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM relocation_profiles WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete profile: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete profile rows: %w", err)
	}
	if n > 0 {
		slog.InfoContext(ctx, "Profile deleted",
			"component", "storage",
			"profile_id", id)
	}
	return n > 0, nil
}
