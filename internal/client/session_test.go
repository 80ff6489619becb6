package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sydnec/MyAnimeTierList/internal/collab"
	"github.com/Sydnec/MyAnimeTierList/pkg/models"
)

var testUpgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// fakeServer accepts one connection and hands it to the test.
func fakeServer(t *testing.T) (url string, conns <-chan *websocket.Conn, closeFn func()) {
	t.Helper()

	ch := make(chan *websocket.Conn, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := testUpgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		ch <- conn
	}))
	return "ws" + strings.TrimPrefix(srv.URL, "http"), ch, srv.Close
}

func sendEvent(t *testing.T, conn *websocket.Conn, typ string, v any) {
	t.Helper()
	env, err := collab.NewEnvelope(typ, v)
	require.NoError(t, err)
	require.NoError(t, conn.WriteJSON(env))
}

func waitFor(t *testing.T, ch <-chan struct{}, what string) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for %s", what)
	}
}

func TestSession_InitialStateReplacesReplica(t *testing.T) {
	url, conns, stop := fakeServer(t)
	defer stop()

	sess := NewSession(url, nil)
	synced := make(chan struct{}, 1)
	sess.SetListeners(Listeners{
		OnFullSync: func(models.CollaborativeState) { synced <- struct{}{} },
	})
	require.NoError(t, sess.Connect(context.Background()))
	defer sess.Close()

	server := <-conns
	authoritative := models.NewCollaborativeState()
	authoritative.Animes = []models.Anime{{ID: "21", MALID: 21, Title: "One Piece"}}
	authoritative.TierAssignments["21"] = "S"
	authoritative.TierOrders["S"] = []string{"21"}
	authoritative.ConnectedUsers = 3
	sendEvent(t, server, collab.EventInitialState, authoritative)

	waitFor(t, synced, "initial-state")

	got := sess.State()
	require.Len(t, got.Animes, 1)
	assert.Equal(t, "One Piece", got.Animes[0].Title)
	assert.Equal(t, "S", got.TierAssignments["21"])
	assert.Equal(t, []string{"21"}, got.TierOrders["S"])
	assert.Equal(t, 3, got.ConnectedUsers)
}

func TestSession_RemoteMoveApplied(t *testing.T) {
	url, conns, stop := fakeServer(t)
	defer stop()

	sess := NewSession(url, nil)
	moved := make(chan struct{}, 1)
	sess.SetListeners(Listeners{
		OnAnimeMoved: func(models.Move) { moved <- struct{}{} },
	})
	require.NoError(t, sess.Connect(context.Background()))
	defer sess.Close()

	server := <-conns
	state := models.NewCollaborativeState()
	state.Animes = []models.Anime{{ID: "1", Title: "A"}, {ID: "2", Title: "B"}}
	state.TierAssignments["1"] = "B"
	state.TierOrders["B"] = []string{"1"}
	sendEvent(t, server, collab.EventInitialState, state)
	sendEvent(t, server, collab.EventAnimeMoved, models.Move{AnimeID: "1", TierID: "S", Position: 0})

	waitFor(t, moved, "anime-moved")

	got := sess.State()
	assert.Equal(t, "S", got.TierAssignments["1"])
	assert.Equal(t, []string{"1"}, got.TierOrders["S"])
	assert.Empty(t, got.TierOrders["B"], "moved entry left its old tier")
}

func TestSession_RemoteDeleteAndUpdate(t *testing.T) {
	url, conns, stop := fakeServer(t)
	defer stop()

	sess := NewSession(url, nil)
	deleted := make(chan struct{}, 1)
	updated := make(chan struct{}, 1)
	sess.SetListeners(Listeners{
		OnAnimeDeleted: func(string) { deleted <- struct{}{} },
		OnAnimeUpdated: func(models.Anime) { updated <- struct{}{} },
	})
	require.NoError(t, sess.Connect(context.Background()))
	defer sess.Close()

	server := <-conns
	state := models.NewCollaborativeState()
	state.Animes = []models.Anime{
		{ID: "1", Title: "Stays", Score: 7},
		{ID: "2", Title: "Goes"},
	}
	state.TierAssignments["2"] = "A"
	state.TierOrders["A"] = []string{"2"}
	sendEvent(t, server, collab.EventInitialState, state)
	sendEvent(t, server, collab.EventAnimeDeleted, "2")
	sendEvent(t, server, collab.EventAnimeUpdated, models.Anime{ID: "1", Score: 9.1})

	waitFor(t, deleted, "anime-deleted")
	waitFor(t, updated, "anime-updated")

	got := sess.State()
	require.Len(t, got.Animes, 1)
	assert.Equal(t, "Stays", got.Animes[0].Title, "update merges instead of replacing")
	assert.Equal(t, 9.1, got.Animes[0].Score)
	assert.NotContains(t, got.TierAssignments, "2")
	assert.Empty(t, got.TierOrders["A"])
}

func TestSession_RemovedTierUnassignsMembers(t *testing.T) {
	url, conns, stop := fakeServer(t)
	defer stop()

	sess := NewSession(url, nil)
	updated := make(chan struct{}, 1)
	sess.SetListeners(Listeners{
		OnTiersUpdated: func([]models.Tier) { updated <- struct{}{} },
	})
	require.NoError(t, sess.Connect(context.Background()))
	defer sess.Close()

	server := <-conns
	state := models.NewCollaborativeState()
	state.Animes = []models.Anime{{ID: "1", Title: "X"}}
	state.Tiers = []models.Tier{
		{ID: "S", Name: "S", Color: "#f00", Position: 0},
		{ID: "A", Name: "A", Color: "#0f0", Position: 1},
	}
	state.TierAssignments["1"] = "A"
	state.TierOrders["A"] = []string{"1"}
	sendEvent(t, server, collab.EventInitialState, state)

	// tier A disappears from the set
	sendEvent(t, server, collab.EventTiersUpdated, []models.Tier{
		{ID: "S", Name: "S", Color: "#f00", Position: 0},
	})
	waitFor(t, updated, "tiers-updated")

	got := sess.State()
	require.Len(t, got.Tiers, 1)
	_, assigned := got.TierAssignments["1"]
	assert.False(t, assigned, "members of a deleted tier fall back to unranked")
	_, hasOrder := got.TierOrders["A"]
	assert.False(t, hasOrder, "the deleted tier's order list is dropped")
}

func TestSession_EmitTiersUpdateCascadesLocally(t *testing.T) {
	url, conns, stop := fakeServer(t)
	defer stop()

	sess := NewSession(url, nil)
	synced := make(chan struct{}, 1)
	sess.SetListeners(Listeners{
		OnFullSync: func(models.CollaborativeState) { synced <- struct{}{} },
	})
	require.NoError(t, sess.Connect(context.Background()))
	defer sess.Close()

	server := <-conns
	state := models.NewCollaborativeState()
	state.Animes = []models.Anime{{ID: "1", Title: "X"}}
	state.Tiers = []models.Tier{
		{ID: "S", Name: "S", Color: "#f00", Position: 0},
		{ID: "A", Name: "A", Color: "#0f0", Position: 1},
	}
	state.TierAssignments["1"] = "A"
	state.TierOrders["A"] = []string{"1"}
	sendEvent(t, server, collab.EventInitialState, state)
	waitFor(t, synced, "initial-state")

	require.NoError(t, sess.EmitTiersUpdate([]models.Tier{
		{ID: "S", Name: "S", Color: "#f00", Position: 0},
	}))

	// optimistic apply, before any server echo
	got := sess.State()
	require.Len(t, got.Tiers, 1)
	assert.NotContains(t, got.TierAssignments, "1")
	assert.Empty(t, got.TierOrders["A"])
}

func TestSession_EmitMoveIsOptimistic(t *testing.T) {
	url, conns, stop := fakeServer(t)
	defer stop()

	sess := NewSession(url, nil)
	require.NoError(t, sess.Connect(context.Background()))
	defer sess.Close()

	server := <-conns
	require.NoError(t, sess.EmitAnimeMove("1", "S", 0))

	// local replica reflects the move before any server echo
	got := sess.State()
	assert.Equal(t, "S", got.TierAssignments["1"])
	assert.Equal(t, []string{"1"}, got.TierOrders["S"])

	var env collab.Envelope
	require.NoError(t, server.ReadJSON(&env))
	assert.Equal(t, collab.EventAnimeMove, env.Type)
}

func TestSession_SnapshotDebouncedToDisk(t *testing.T) {
	url, conns, stop := fakeServer(t)
	defer stop()

	storage := &Storage{Path: filepath.Join(t.TempDir(), "state.json")}
	sess := NewSession(url, storage)
	added := make(chan struct{}, 1)
	sess.SetListeners(Listeners{
		OnAnimeAdded: func(models.Anime) { added <- struct{}{} },
	})
	require.NoError(t, sess.Connect(context.Background()))
	defer sess.Close()

	server := <-conns
	sendEvent(t, server, collab.EventAnimeAdded, models.Anime{ID: "5", Title: "Frieren"})
	waitFor(t, added, "anime-added")

	// let the debounce window elapse
	time.Sleep(snapshotDebounce + 200*time.Millisecond)

	saved, err := storage.Load()
	require.NoError(t, err)
	require.NotNil(t, saved)
	require.Len(t, saved.Animes, 1)
	assert.Equal(t, "Frieren", saved.Animes[0].Title)
}

func TestSession_CloseIsIdempotent(t *testing.T) {
	url, conns, stop := fakeServer(t)
	defer stop()

	sess := NewSession(url, nil)
	require.NoError(t, sess.Connect(context.Background()))
	server := <-conns

	// server drop and local close race on the done channel; the second
	// Close may report the already-closed socket but must not panic
	require.NoError(t, server.Close())
	_ = sess.Close()
	_ = sess.Close()

	waitFor(t, sess.Done(), "session teardown")
}

func TestStorage_LoadMissingIsNil(t *testing.T) {
	storage := &Storage{Path: filepath.Join(t.TempDir(), "absent.json")}
	saved, err := storage.Load()
	require.NoError(t, err)
	assert.Nil(t, saved)
}

func TestStorage_RoundTripResetsPresence(t *testing.T) {
	storage := &Storage{Path: filepath.Join(t.TempDir(), "state.json")}

	state := models.NewCollaborativeState()
	state.Animes = []models.Anime{{ID: "1", Title: "A"}}
	state.ConnectedUsers = 4
	require.NoError(t, storage.Save(state))

	saved, err := storage.Load()
	require.NoError(t, err)
	require.NotNil(t, saved)
	assert.Equal(t, "A", saved.Animes[0].Title)
	assert.Zero(t, saved.ConnectedUsers, "presence never survives a restart")
}
