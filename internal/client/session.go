// Package client is the Go side of the collaborative board: it mirrors
// server broadcasts into a local replica, applies local edits
// optimistically, and keeps an on-device snapshot for offline resilience.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Sydnec/MyAnimeTierList/internal/collab"
	"github.com/Sydnec/MyAnimeTierList/pkg/models"
)

const snapshotDebounce = 250 * time.Millisecond

// Listeners lets presentation code react to specific remote events
// without polling. All callbacks are optional and run on the read loop.
type Listeners struct {
	OnAnimeAdded   func(models.Anime)
	OnAnimeMoved   func(models.Move)
	OnTiersUpdated func([]models.Tier)
	OnBulkImported func([]models.Anime)
	OnAnimeDeleted func(animeID string)
	OnAnimeUpdated func(models.Anime)
	OnUsersCount   func(int)
	OnFullSync     func(models.CollaborativeState)
	OnError        func(message string)
}

// Session is one connection to the collaboration server.
type Session struct {
	url     string
	storage *Storage

	mu    sync.Mutex
	state *models.CollaborativeState

	writeMu sync.Mutex
	conn    *websocket.Conn

	listeners Listeners
	saveTimer *time.Timer

	done      chan struct{}
	closeOnce sync.Once
}

// NewSession prepares a session against ws://host:port/ws, seeding local
// state from the on-device snapshot when one exists.
func NewSession(url string, storage *Storage) *Session {
	s := &Session{
		url:     url,
		storage: storage,
		state:   models.NewCollaborativeState(),
		done:    make(chan struct{}),
	}

	if storage != nil {
		if saved, err := storage.Load(); err != nil {
			log.Printf("[client] snapshot load failed: %v", err)
		} else if saved != nil {
			s.state = saved
		}
	}
	return s
}

// SetListeners replaces the callback registry. Call before Connect.
func (s *Session) SetListeners(l Listeners) {
	s.listeners = l
}

// Connect dials the server and starts mirroring broadcasts until the
// connection drops or Close is called.
func (s *Session) Connect(ctx context.Context) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, s.url, nil)
	if err != nil {
		return fmt.Errorf("dial %s: %w", s.url, err)
	}
	s.conn = conn

	go s.readLoop()
	return nil
}

// Close tears the connection down.
func (s *Session) Close() error {
	s.closeOnce.Do(func() { close(s.done) })
	if s.conn != nil {
		return s.conn.Close()
	}
	return nil
}

// Done is closed when the read loop ends.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// State returns a copy of the local replica.
func (s *Session) State() models.CollaborativeState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyState(s.state)
}

func (s *Session) readLoop() {
	defer s.closeOnce.Do(func() { close(s.done) })

	for {
		_, payload, err := s.conn.ReadMessage()
		if err != nil {
			log.Printf("[client] connection closed: %v", err)
			return
		}

		var env collab.Envelope
		if err := json.Unmarshal(payload, &env); err != nil {
			log.Printf("[client] bad frame: %v", err)
			continue
		}
		s.handle(env)
	}
}

func (s *Session) handle(env collab.Envelope) {
	switch env.Type {
	case collab.EventInitialState, collab.EventFullSync:
		var state models.CollaborativeState
		if !decode(env, &state) {
			return
		}
		s.mu.Lock()
		replica := copyState(&state)
		s.state = &replica
		s.mu.Unlock()
		s.scheduleSave()
		if s.listeners.OnFullSync != nil {
			s.listeners.OnFullSync(state)
		}

	case collab.EventUsersCount:
		var count int
		if !decode(env, &count) {
			return
		}
		s.mu.Lock()
		s.state.ConnectedUsers = count
		s.mu.Unlock()
		if s.listeners.OnUsersCount != nil {
			s.listeners.OnUsersCount(count)
		}

	case collab.EventAnimeAdded:
		var anime models.Anime
		if !decode(env, &anime) {
			return
		}
		s.mu.Lock()
		if _, ok := collab.FindAnime(s.state.Animes, anime); !ok {
			s.state.Animes = append(s.state.Animes, anime)
		}
		s.mu.Unlock()
		s.scheduleSave()
		if s.listeners.OnAnimeAdded != nil {
			s.listeners.OnAnimeAdded(anime)
		}

	case collab.EventAnimeMoved:
		var mv models.Move
		if !decode(env, &mv) {
			return
		}
		s.mu.Lock()
		collab.ApplyMove(s.state.TierAssignments, s.state.TierOrders, mv)
		s.mu.Unlock()
		s.scheduleSave()
		if s.listeners.OnAnimeMoved != nil {
			s.listeners.OnAnimeMoved(mv)
		}

	case collab.EventTiersUpdated:
		var tiers []models.Tier
		if !decode(env, &tiers) {
			return
		}
		s.mu.Lock()
		s.replaceTiersLocked(tiers)
		s.mu.Unlock()
		s.scheduleSave()
		if s.listeners.OnTiersUpdated != nil {
			s.listeners.OnTiersUpdated(tiers)
		}

	case collab.EventBulkImported:
		var animes []models.Anime
		if !decode(env, &animes) {
			return
		}
		s.mu.Lock()
		for _, anime := range animes {
			if _, ok := collab.FindAnime(s.state.Animes, anime); !ok {
				s.state.Animes = append(s.state.Animes, anime)
			}
		}
		s.mu.Unlock()
		s.scheduleSave()
		if s.listeners.OnBulkImported != nil {
			s.listeners.OnBulkImported(animes)
		}

	case collab.EventAnimeDeleted:
		var id string
		if !decode(env, &id) {
			return
		}
		s.mu.Lock()
		s.state.Animes = collab.RemoveAnime(s.state.Animes, s.state.TierAssignments, s.state.TierOrders, id)
		s.mu.Unlock()
		s.scheduleSave()
		if s.listeners.OnAnimeDeleted != nil {
			s.listeners.OnAnimeDeleted(id)
		}

	case collab.EventAnimeUpdated:
		var anime models.Anime
		if !decode(env, &anime) {
			return
		}
		s.mu.Lock()
		if idx, ok := collab.FindAnime(s.state.Animes, anime); ok {
			merged := s.state.Animes[idx]
			merged.MergeFrom(anime)
			s.state.Animes[idx] = merged
		}
		s.mu.Unlock()
		s.scheduleSave()
		if s.listeners.OnAnimeUpdated != nil {
			s.listeners.OnAnimeUpdated(anime)
		}

	case collab.EventError:
		var p collab.ErrorPayload
		if !decode(env, &p) {
			return
		}
		log.Printf("[client] server error: %s", p.Message)
		if s.listeners.OnError != nil {
			s.listeners.OnError(p.Message)
		}

	default:
		log.Printf("[client] unknown event %q", env.Type)
	}
}

// replaceTiersLocked swaps the tier set and applies the same cascade the
// server does: members of tiers that disappear fall back to unranked and
// their order lists are dropped. Caller holds s.mu.
func (s *Session) replaceTiersLocked(tiers []models.Tier) {
	keep := make(map[string]bool, len(tiers))
	for _, t := range tiers {
		keep[t.ID] = true
	}
	for _, t := range s.state.Tiers {
		if keep[t.ID] {
			continue
		}
		delete(s.state.TierOrders, t.ID)
		for animeID, assigned := range s.state.TierAssignments {
			if assigned == t.ID {
				delete(s.state.TierAssignments, animeID)
			}
		}
	}
	s.state.Tiers = tiers
}

// scheduleSave debounces snapshot writes: every state change arms the
// timer, only the last one in a burst hits the disk.
func (s *Session) scheduleSave() {
	if s.storage == nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.saveTimer != nil {
		s.saveTimer.Stop()
	}
	s.saveTimer = time.AfterFunc(snapshotDebounce, func() {
		state := s.State()
		if err := s.storage.Save(&state); err != nil {
			log.Printf("[client] snapshot save failed: %v", err)
		}
	})
}

func decode(env collab.Envelope, v any) bool {
	if err := json.Unmarshal(env.Data, v); err != nil {
		log.Printf("[client] bad %s payload: %v", env.Type, err)
		return false
	}
	return true
}

func copyState(src *models.CollaborativeState) models.CollaborativeState {
	out := models.CollaborativeState{
		Animes:          append([]models.Anime(nil), src.Animes...),
		Tiers:           append([]models.Tier(nil), src.Tiers...),
		TierAssignments: make(map[string]string, len(src.TierAssignments)),
		TierOrders:      make(map[string][]string, len(src.TierOrders)),
		ConnectedUsers:  src.ConnectedUsers,
		LastModified:    src.LastModified,
	}
	for k, v := range src.TierAssignments {
		out.TierAssignments[k] = v
	}
	for k, v := range src.TierOrders {
		out.TierOrders[k] = append([]string(nil), v...)
	}
	return out
}
