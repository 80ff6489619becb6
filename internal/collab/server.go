// Package collab owns the authoritative collaborative state: one inbound
// edit event at a time mutates the in-memory board, persists the delta,
// then broadcasts the result to connected clients.
package collab

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/Sydnec/MyAnimeTierList/internal/store"
	"github.com/Sydnec/MyAnimeTierList/pkg/models"
)

// Server processes client events against the single authoritative state.
// The mutex serializes whole events, persistence included, so two edits
// touching the same fields can never interleave.
type Server struct {
	mu    sync.Mutex
	store *store.Store
	hub   *Hub
	state *models.CollaborativeState
}

func NewServer(st *store.Store, hub *Hub) *Server {
	return &Server{
		store: st,
		hub:   hub,
		state: models.NewCollaborativeState(),
	}
}

// LoadState reconstructs the board from the database at process start.
func (s *Server) LoadState(ctx context.Context) error {
	st, err := s.store.FullState(ctx)
	if err != nil {
		return err
	}
	st.ConnectedUsers = 0

	s.mu.Lock()
	s.state = st
	s.mu.Unlock()

	log.Printf("[collab] state loaded: %d animes, %d tiers", len(st.Animes), len(st.Tiers))
	return nil
}

// Snapshot returns a deep copy of the current state, safe to marshal
// outside the lock.
func (s *Server) Snapshot() models.CollaborativeState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Server) snapshotLocked() models.CollaborativeState {
	out := models.CollaborativeState{
		Animes:          append([]models.Anime(nil), s.state.Animes...),
		Tiers:           append([]models.Tier(nil), s.state.Tiers...),
		TierAssignments: make(map[string]string, len(s.state.TierAssignments)),
		TierOrders:      make(map[string][]string, len(s.state.TierOrders)),
		ConnectedUsers:  s.state.ConnectedUsers,
		LastModified:    s.state.LastModified,
	}
	for k, v := range s.state.TierAssignments {
		out.TierAssignments[k] = v
	}
	for k, v := range s.state.TierOrders {
		out.TierOrders[k] = append([]string(nil), v...)
	}
	return out
}

// Connect registers a new session: bump the presence counter, unicast the
// full state to the newcomer, tell everyone the new count.
func (s *Server) Connect(c *Client) {
	s.mu.Lock()
	s.state.ConnectedUsers++
	count := s.state.ConnectedUsers
	snap := s.snapshotLocked()
	s.mu.Unlock()

	log.Printf("[collab] client connected: %s (total %d)", c.ID, count)

	if env, err := NewEnvelope(EventInitialState, snap); err == nil {
		s.hub.Send(c, env)
	}
	if env, err := NewEnvelope(EventUsersCount, count); err == nil {
		s.hub.Broadcast(env)
	}
}

// Disconnect drops the presence counter and notifies remaining clients.
// The hub has already forgotten the connection at this point.
func (s *Server) Disconnect(c *Client) {
	s.mu.Lock()
	s.state.ConnectedUsers--
	count := s.state.ConnectedUsers
	s.mu.Unlock()

	log.Printf("[collab] client disconnected: %s (total %d)", c.ID, count)

	if env, err := NewEnvelope(EventUsersCount, count); err == nil {
		s.hub.Broadcast(env)
	}
}

// Dispatch routes one inbound envelope to its handler.
func (s *Server) Dispatch(ctx context.Context, c *Client, env Envelope) {
	switch env.Type {
	case EventAnimeAdd:
		var anime models.Anime
		if !s.decode(c, env, &anime) {
			return
		}
		s.handleAnimeAdd(ctx, c, anime)
	case EventAnimeMove:
		var mv models.Move
		if !s.decode(c, env, &mv) {
			return
		}
		s.handleAnimeMove(ctx, c, mv)
	case EventTiersUpdate:
		var tiers []models.Tier
		if !s.decode(c, env, &tiers) {
			return
		}
		s.handleTiersUpdate(ctx, c, tiers)
	case EventBulkImport:
		var animes []models.Anime
		if !s.decode(c, env, &animes) {
			return
		}
		s.handleBulkImport(ctx, c, animes)
	case EventAnimeDelete:
		var id string
		if !s.decode(c, env, &id) {
			return
		}
		s.handleAnimeDelete(ctx, c, id)
	case EventAnimeUpdate:
		var anime models.Anime
		if !s.decode(c, env, &anime) {
			return
		}
		s.handleAnimeUpdate(ctx, c, anime)
	case EventRequestSync:
		s.handleRequestSync(c)
	default:
		log.Printf("[collab] unknown event %q from %s", env.Type, c.ID)
	}
}

func (s *Server) decode(c *Client, env Envelope, v any) bool {
	if err := json.Unmarshal(env.Data, v); err != nil {
		log.Printf("[collab] bad %s payload from %s: %v", env.Type, c.ID, err)
		s.sendError(c, "invalid "+env.Type+" payload")
		return false
	}
	return true
}

func (s *Server) sendError(c *Client, msg string) {
	if env, err := NewEnvelope(EventError, ErrorPayload{Message: msg}); err == nil {
		s.hub.Send(c, env)
	}
}

func (s *Server) touchLocked() {
	s.state.LastModified = time.Now().UnixMilli()
}
