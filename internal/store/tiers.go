package store

import (
	"context"
	"fmt"

	"github.com/Sydnec/MyAnimeTierList/pkg/models"
)

// ListTiers returns every tier ordered by position.
func (s *Store) ListTiers(ctx context.Context) ([]models.Tier, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT id, name, color, position FROM tiers ORDER BY position ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list tiers: %w", err)
	}
	defer rows.Close()

	var out []models.Tier
	for rows.Next() {
		var t models.Tier
		if err := rows.Scan(&t.ID, &t.Name, &t.Color, &t.Position); err != nil {
			return nil, fmt.Errorf("scan tier row: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}
	return out, nil
}

// ReplaceTiers swaps the whole tier set: delete everything, re-insert in
// order with position = index. Runs in one transaction so a failed insert
// never leaves the board without tiers.
func (s *Store) ReplaceTiers(ctx context.Context, tiers []models.Tier) error {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	// surviving tiers are re-inserted before commit, so assignments
	// pointing at them must not fail the intermediate delete
	if _, err := tx.ExecContext(ctx, `PRAGMA defer_foreign_keys = ON`); err != nil {
		return fmt.Errorf("defer foreign keys: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM tiers`); err != nil {
		return fmt.Errorf("delete tiers: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO tiers (id, name, color, position) VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, t := range tiers {
		if _, err := stmt.ExecContext(ctx, t.ID, t.Name, t.Color, i); err != nil {
			return fmt.Errorf("insert tier %s: %w", t.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// SeedDefaultTiers inserts the default tier set when the table is empty.
func (s *Store) SeedDefaultTiers(ctx context.Context) error {
	var count int
	if err := s.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM tiers`).Scan(&count); err != nil {
		return fmt.Errorf("count tiers: %w", err)
	}
	if count > 0 {
		return nil
	}

	for _, t := range models.DefaultTiers() {
		if _, err := s.DB.ExecContext(ctx, `
			INSERT OR IGNORE INTO tiers (id, name, color, position) VALUES (?, ?, ?, ?)
		`, t.ID, t.Name, t.Color, t.Position); err != nil {
			return fmt.Errorf("seed tier %s: %w", t.ID, err)
		}
	}
	return nil
}
