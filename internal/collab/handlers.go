package collab

import (
	"context"
	"log"
	"strconv"

	"github.com/Sydnec/MyAnimeTierList/pkg/models"
)

// handleAnimeAdd adds a new entry unless an entity with the same id or
// mal_id already exists; duplicates are ignored silently. The result is
// echoed to every client, sender included.
func (s *Server) handleAnimeAdd(ctx context.Context, c *Client, anime models.Anime) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := FindAnime(s.state.Animes, anime); ok {
		log.Printf("[collab] anime-add ignored, duplicate: %s", anime.Title)
		return
	}

	if anime.ID == "" {
		if anime.MALID != 0 {
			anime.ID = strconv.FormatInt(anime.MALID, 10)
		} else {
			anime.ID = FallbackID(0)
		}
	}

	if err := s.store.UpsertAnime(ctx, anime); err != nil {
		log.Printf("[collab] anime-add persist failed: %v", err)
		s.sendError(c, "failed to add anime")
		return
	}

	s.state.Animes = append(s.state.Animes, anime)
	s.touchLocked()

	if env, err := NewEnvelope(EventAnimeAdded, anime); err == nil {
		s.hub.Broadcast(env)
	}
}

// handleAnimeMove reassigns an anime and reorders the target tier.
// Mirrored to every client except the sender, which already applied the
// move optimistically.
func (s *Server) handleAnimeMove(ctx context.Context, c *Client, mv models.Move) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if mv.TierID != models.UnrankedTierID && !s.tierExistsLocked(mv.TierID) {
		log.Printf("[collab] anime-move to unknown tier %q", mv.TierID)
		s.sendError(c, "unknown tier")
		return
	}

	var err error
	if mv.TierID == models.UnrankedTierID {
		err = s.store.Unassign(ctx, mv.AnimeID)
	} else {
		err = s.store.Assign(ctx, mv.AnimeID, mv.TierID, mv.Position)
	}
	if err != nil {
		log.Printf("[collab] anime-move persist failed: %v", err)
		s.sendError(c, "failed to move anime")
		return
	}

	ApplyMove(s.state.TierAssignments, s.state.TierOrders, mv)
	s.touchLocked()

	if env, err := NewEnvelope(EventAnimeMoved, mv); err == nil {
		s.hub.BroadcastExcept(c, env)
	}
}

// handleTiersUpdate replaces the tier set wholesale. Members of tiers that
// disappear fall back to unranked, in the store and in memory.
func (s *Server) handleTiersUpdate(ctx context.Context, c *Client, tiers []models.Tier) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range tiers {
		tiers[i].Position = i
	}

	keep := make(map[string]bool, len(tiers))
	for _, t := range tiers {
		keep[t.ID] = true
	}
	var removed []string
	for _, t := range s.state.Tiers {
		if !keep[t.ID] {
			removed = append(removed, t.ID)
		}
	}

	// unassign first: members of removed tiers must not reference them
	// once the replace commits
	if err := s.store.RemoveAssignmentsForTiers(ctx, removed); err != nil {
		log.Printf("[collab] tiers-update unassign failed: %v", err)
		s.sendError(c, "failed to update tiers")
		return
	}
	if err := s.store.ReplaceTiers(ctx, tiers); err != nil {
		log.Printf("[collab] tiers-update persist failed: %v", err)
		s.sendError(c, "failed to update tiers")
		return
	}

	s.state.Tiers = tiers
	for _, tid := range removed {
		delete(s.state.TierOrders, tid)
		for animeID, assigned := range s.state.TierAssignments {
			if assigned == tid {
				delete(s.state.TierAssignments, animeID)
			}
		}
	}
	s.touchLocked()

	if env, err := NewEnvelope(EventTiersUpdated, tiers); err == nil {
		s.hub.BroadcastExcept(c, env)
	}
}

// handleBulkImport adds every non-duplicate item, deduplicating against
// the accumulating state so a batch containing the same title twice adds
// it once. The added subset is broadcast to all clients.
func (s *Server) handleBulkImport(ctx context.Context, c *Client, animes []models.Anime) {
	s.mu.Lock()
	defer s.mu.Unlock()

	log.Printf("[collab] bulk-import of %d entries", len(animes))

	var added []models.Anime
	for _, anime := range animes {
		if _, ok := FindAnime(s.state.Animes, anime); ok {
			continue
		}

		if anime.ID == "" {
			if anime.MALID != 0 {
				anime.ID = strconv.FormatInt(anime.MALID, 10)
			} else {
				anime.ID = FallbackID(len(added))
			}
		}

		if err := s.store.UpsertAnime(ctx, anime); err != nil {
			log.Printf("[collab] bulk-import persist failed on %s: %v", anime.Title, err)
			s.sendError(c, "failed to import animes")
			break
		}

		s.state.Animes = append(s.state.Animes, anime)
		added = append(added, anime)
	}

	if len(added) == 0 {
		return
	}
	s.touchLocked()

	log.Printf("[collab] bulk-import added %d of %d", len(added), len(animes))
	if env, err := NewEnvelope(EventBulkImported, added); err == nil {
		s.hub.Broadcast(env)
	}
}

// handleAnimeDelete removes an anime by id, falling back to mal_id when no
// exact row exists. The resolved primary key is mirrored to the others.
func (s *Server) handleAnimeDelete(ctx context.Context, c *Client, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	resolved, deleted, err := s.store.DeleteAnime(ctx, id)
	if err != nil {
		log.Printf("[collab] anime-delete persist failed: %v", err)
		s.sendError(c, "failed to delete anime")
		return
	}
	if !deleted {
		log.Printf("[collab] anime-delete no-op, not found: %s", id)
		return
	}

	s.state.Animes = RemoveAnime(s.state.Animes, s.state.TierAssignments, s.state.TierOrders, resolved)
	s.touchLocked()

	if env, err := NewEnvelope(EventAnimeDeleted, resolved); err == nil {
		s.hub.BroadcastExcept(c, env)
	}
}

// handleAnimeUpdate shallow-merges fields into an existing entry; used for
// late-arriving enrichment such as images. Echoed to every client.
func (s *Server) handleAnimeUpdate(ctx context.Context, c *Client, anime models.Anime) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx, ok := FindAnime(s.state.Animes, anime)
	if !ok {
		log.Printf("[collab] anime-update no-op, not found: %s", anime.Title)
		return
	}

	merged := s.state.Animes[idx]
	merged.MergeFrom(anime)

	if err := s.store.UpsertAnime(ctx, merged); err != nil {
		log.Printf("[collab] anime-update persist failed: %v", err)
		s.sendError(c, "failed to update anime")
		return
	}

	s.state.Animes[idx] = merged
	s.touchLocked()

	if env, err := NewEnvelope(EventAnimeUpdated, merged); err == nil {
		s.hub.Broadcast(env)
	}
}

// handleRequestSync unicasts the full state back to the requester.
func (s *Server) handleRequestSync(c *Client) {
	snap := s.Snapshot()
	if env, err := NewEnvelope(EventFullSync, snap); err == nil {
		s.hub.Send(c, env)
	}
}

func (s *Server) tierExistsLocked(id string) bool {
	for _, t := range s.state.Tiers {
		if t.ID == id {
			return true
		}
	}
	return false
}
