package client

import (
	"fmt"

	"github.com/Sydnec/MyAnimeTierList/internal/collab"
	"github.com/Sydnec/MyAnimeTierList/pkg/models"
)

// EmitAnimeAdd sends a new entry to the server. The echo broadcast
// (anime-added) carries the assigned id back.
func (s *Session) EmitAnimeAdd(anime models.Anime) error {
	return s.emit(collab.EventAnimeAdd, anime)
}

// EmitAnimeMove applies the move locally first so the board never
// flickers while the broadcast makes its round trip, then sends it.
func (s *Session) EmitAnimeMove(animeID, tierID string, position int) error {
	mv := models.Move{AnimeID: animeID, TierID: tierID, Position: position}

	s.mu.Lock()
	collab.ApplyMove(s.state.TierAssignments, s.state.TierOrders, mv)
	s.mu.Unlock()
	s.scheduleSave()

	return s.emit(collab.EventAnimeMove, mv)
}

func (s *Session) EmitTiersUpdate(tiers []models.Tier) error {
	s.mu.Lock()
	s.replaceTiersLocked(tiers)
	s.mu.Unlock()
	s.scheduleSave()

	return s.emit(collab.EventTiersUpdate, tiers)
}

func (s *Session) EmitBulkImport(animes []models.Anime) error {
	return s.emit(collab.EventBulkImport, animes)
}

func (s *Session) EmitAnimeDelete(animeID string) error {
	return s.emit(collab.EventAnimeDelete, animeID)
}

func (s *Session) EmitAnimeUpdate(anime models.Anime) error {
	return s.emit(collab.EventAnimeUpdate, anime)
}

// RequestSync asks the server for a full-sync unicast, used when the
// client suspects it drifted.
func (s *Session) RequestSync() error {
	return s.emit(collab.EventRequestSync, nil)
}

func (s *Session) emit(typ string, v any) error {
	env, err := collab.NewEnvelope(typ, v)
	if err != nil {
		return err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if s.conn == nil {
		return fmt.Errorf("emit %s: not connected", typ)
	}
	if err := s.conn.WriteJSON(env); err != nil {
		return fmt.Errorf("emit %s: %w", typ, err)
	}
	return nil
}
