package daily

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/battleship/apps/go-server/assets"
	"github.com/robalobadob/battleship/apps/go-server/internal/database"
	"github.com/robalobadob/battleship/apps/go-server/internal/game"
)

func TestDateKey(t *testing.T) {
	loc := time.FixedZone("UTC+10", 10*60*60)
	assert.Equal(t, "2026-03-01", DateKey(time.Date(2026, 3, 2, 5, 0, 0, 0, loc)))
}

func TestFleetIsStablePerDay(t *testing.T) {
	day := time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC)
	later := day.Add(10 * time.Hour)
	next := day.Add(24 * time.Hour)

	a, err := Fleet(day, "salt", game.DefaultConfig())
	require.NoError(t, err)
	b, err := Fleet(later, "salt", game.DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, a, b)

	assert.NotEqual(t, Seed(day, "salt"), Seed(next, "salt"))
	assert.NotEqual(t, Seed(day, "salt"), Seed(day, "pepper"))
}

func TestStore(t *testing.T) {
	db, err := database.Open(filepath.Join(t.TempDir(), "app.db"))
	require.NoError(t, err)
	defer db.Close()
	require.NoError(t, database.Migrate(db, assets.Migrations()))

	ctx := context.Background()
	st := NewStore(db)

	played, err := st.AlreadyPlayed(ctx, "u1", "2026-10-19")
	require.NoError(t, err)
	assert.False(t, played)

	require.NoError(t, st.InsertResult(ctx, Result{UserID: "u1", Date: "2026-10-19", Guesses: 20, ElapsedMs: 5000}))
	require.NoError(t, st.InsertResult(ctx, Result{UserID: "u2", Date: "2026-10-19", Guesses: 15, ElapsedMs: 9000}))
	require.NoError(t, st.InsertResult(ctx, Result{UserID: "u3", Date: "2026-10-19", Guesses: 15, ElapsedMs: 4000}))
	require.NoError(t, st.InsertResult(ctx, Result{UserID: "u4", Date: "2026-10-18", Guesses: 9, ElapsedMs: 1000}))
	// Duplicate is ignored.
	require.NoError(t, st.InsertResult(ctx, Result{UserID: "u1", Date: "2026-10-19", Guesses: 9, ElapsedMs: 1}))

	played, err = st.AlreadyPlayed(ctx, "u1", "2026-10-19")
	require.NoError(t, err)
	assert.True(t, played)

	top, err := st.Leaderboard(ctx, "2026-10-19", 0)
	require.NoError(t, err)
	require.Len(t, top, 3)
	assert.Equal(t, []string{"u3", "u2", "u1"}, []string{top[0].UserID, top[1].UserID, top[2].UserID})
	assert.Equal(t, 20, top[2].Guesses)

	empty, err := st.Leaderboard(ctx, "2000-01-01", 5)
	require.NoError(t, err)
	assert.Empty(t, empty)
}
