package store

import (
	"context"
	"fmt"
	"strings"
)

// Assign records an anime's tier membership. At most one tier per anime
// (anime_id is the primary key), so INSERT OR REPLACE moves it.
func (s *Store) Assign(ctx context.Context, animeID, tierID string, position int) error {
	_, err := s.DB.ExecContext(ctx, `
		INSERT OR REPLACE INTO tier_assignments (anime_id, tier_id, position, updated_at)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP)
	`, animeID, tierID, position)
	if err != nil {
		return fmt.Errorf("assign %s to %s: %w", animeID, tierID, err)
	}
	return nil
}

// Unassign drops an anime back to unranked.
func (s *Store) Unassign(ctx context.Context, animeID string) error {
	if _, err := s.DB.ExecContext(ctx, `
		DELETE FROM tier_assignments WHERE anime_id = ?
	`, animeID); err != nil {
		return fmt.Errorf("unassign %s: %w", animeID, err)
	}
	return nil
}

// RemoveAssignmentsForTiers unassigns every member of the given tiers.
// Called when tiers disappear from the board.
func (s *Store) RemoveAssignmentsForTiers(ctx context.Context, tierIDs []string) error {
	if len(tierIDs) == 0 {
		return nil
	}

	placeholders := strings.Repeat("?,", len(tierIDs))
	placeholders = placeholders[:len(placeholders)-1]

	args := make([]any, len(tierIDs))
	for i, id := range tierIDs {
		args[i] = id
	}

	if _, err := s.DB.ExecContext(ctx,
		`DELETE FROM tier_assignments WHERE tier_id IN (`+placeholders+`)`, args...); err != nil {
		return fmt.Errorf("remove assignments for tiers: %w", err)
	}
	return nil
}

// ListAssignments returns the anime→tier mapping plus per-tier ordering,
// ordered by (tier_id, position).
func (s *Store) ListAssignments(ctx context.Context) (map[string]string, map[string][]string, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT anime_id, tier_id FROM tier_assignments ORDER BY tier_id, position ASC
	`)
	if err != nil {
		return nil, nil, fmt.Errorf("list assignments: %w", err)
	}
	defer rows.Close()

	assignments := make(map[string]string)
	orders := make(map[string][]string)

	for rows.Next() {
		var animeID, tierID string
		if err := rows.Scan(&animeID, &tierID); err != nil {
			return nil, nil, fmt.Errorf("scan assignment row: %w", err)
		}
		assignments[animeID] = tierID
		orders[tierID] = append(orders[tierID], animeID)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("rows err: %w", err)
	}
	return assignments, orders, nil
}
