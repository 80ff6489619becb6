package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sydnec/MyAnimeTierList/pkg/database"
	"github.com/Sydnec/MyAnimeTierList/pkg/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	db, err := database.OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, database.Migrate(db))
	return New(db)
}

func TestUpsertAndListAnimes(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, st.UpsertAnime(ctx, models.Anime{
		ID: "1", MALID: 1, Title: "Cowboy Bebop", TitleEnglish: "Cowboy Bebop",
		Image: "https://cdn.example/cb.jpg", Score: 8.75, Year: 1998,
	}))
	require.NoError(t, st.UpsertAnime(ctx, models.Anime{ID: "2", Title: "Aria"}))

	animes, err := st.ListAnimes(ctx)
	require.NoError(t, err)
	require.Len(t, animes, 2)

	// ordered by title
	assert.Equal(t, "Aria", animes[0].Title)
	assert.Equal(t, "Cowboy Bebop", animes[1].Title)
	assert.Equal(t, int64(1), animes[1].MALID)
	assert.Equal(t, 8.75, animes[1].Score)
	assert.Equal(t, 1998, animes[1].Year)

	// upsert replaces in place
	require.NoError(t, st.UpsertAnime(ctx, models.Anime{ID: "2", Title: "Aria the Animation"}))
	animes, err = st.ListAnimes(ctx)
	require.NoError(t, err)
	require.Len(t, animes, 2)
}

func TestDeleteAnime_FallsBackToMALID(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, st.UpsertAnime(ctx, models.Anime{ID: "local-9", MALID: 77, Title: "X"}))
	require.NoError(t, st.SeedDefaultTiers(ctx))
	require.NoError(t, st.Assign(ctx, "local-9", "A", 0))

	resolved, deleted, err := st.DeleteAnime(ctx, "77")
	require.NoError(t, err)
	assert.True(t, deleted)
	assert.Equal(t, "local-9", resolved)

	assignments, _, err := st.ListAssignments(ctx)
	require.NoError(t, err)
	assert.Empty(t, assignments, "assignments are removed with the anime")
}

func TestDeleteAnime_NotFound(t *testing.T) {
	st := newTestStore(t)

	resolved, deleted, err := st.DeleteAnime(context.Background(), "nope")
	require.NoError(t, err)
	assert.False(t, deleted)
	assert.Empty(t, resolved)
}

func TestReplaceTiers(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, st.SeedDefaultTiers(ctx))
	require.NoError(t, st.ReplaceTiers(ctx, []models.Tier{
		{ID: "GOAT", Name: "Peak", Color: "#fff", Position: 7},
		{ID: "MID", Name: "Mid", Color: "#888", Position: 2},
	}))

	tiers, err := st.ListTiers(ctx)
	require.NoError(t, err)
	require.Len(t, tiers, 2)

	// stored position comes from slice order, not the incoming field
	assert.Equal(t, "GOAT", tiers[0].ID)
	assert.Equal(t, 0, tiers[0].Position)
	assert.Equal(t, "MID", tiers[1].ID)
	assert.Equal(t, 1, tiers[1].Position)
}

func TestFullState_SeedsDefaultTiersOnce(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	state, err := st.FullState(ctx)
	require.NoError(t, err)
	assert.Len(t, state.Tiers, len(models.DefaultTiers()))
	assert.Equal(t, "S", state.Tiers[0].ID)
	assert.NotZero(t, state.LastModified)

	// a custom set survives later reloads
	require.NoError(t, st.ReplaceTiers(ctx, []models.Tier{{ID: "ONLY", Name: "Only", Color: "#123"}}))
	state, err = st.FullState(ctx)
	require.NoError(t, err)
	require.Len(t, state.Tiers, 1)
	assert.Equal(t, "ONLY", state.Tiers[0].ID)
}

func TestAssignments(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, st.UpsertAnime(ctx, models.Anime{ID: "1", Title: "A"}))
	require.NoError(t, st.UpsertAnime(ctx, models.Anime{ID: "2", Title: "B"}))
	require.NoError(t, st.SeedDefaultTiers(ctx))

	require.NoError(t, st.Assign(ctx, "1", "S", 0))
	require.NoError(t, st.Assign(ctx, "2", "S", 1))

	// reassigning moves, never duplicates (anime_id is the primary key)
	require.NoError(t, st.Assign(ctx, "1", "A", 0))

	assignments, orders, err := st.ListAssignments(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"1": "A", "2": "S"}, assignments)
	assert.Equal(t, []string{"1"}, orders["A"])
	assert.Equal(t, []string{"2"}, orders["S"])

	require.NoError(t, st.Unassign(ctx, "1"))
	require.NoError(t, st.RemoveAssignmentsForTiers(ctx, []string{"S"}))

	assignments, _, err = st.ListAssignments(ctx)
	require.NoError(t, err)
	assert.Empty(t, assignments)
}
