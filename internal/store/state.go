package store

import (
	"context"
	"fmt"
	"time"

	"github.com/Sydnec/MyAnimeTierList/pkg/models"
)

// FullState reconstructs the collaborative state from the database.
// The tiers table is seeded with the default set when empty, so a fresh
// install starts with a usable board.
func (s *Store) FullState(ctx context.Context) (*models.CollaborativeState, error) {
	if err := s.SeedDefaultTiers(ctx); err != nil {
		return nil, fmt.Errorf("seed default tiers: %w", err)
	}

	animes, err := s.ListAnimes(ctx)
	if err != nil {
		return nil, err
	}
	tiers, err := s.ListTiers(ctx)
	if err != nil {
		return nil, err
	}
	assignments, orders, err := s.ListAssignments(ctx)
	if err != nil {
		return nil, err
	}

	state := models.NewCollaborativeState()
	state.Animes = animes
	state.Tiers = tiers
	state.TierAssignments = assignments
	state.TierOrders = orders
	state.LastModified = time.Now().UnixMilli()
	return state, nil
}
