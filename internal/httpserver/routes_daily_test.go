package httpserver

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/battleship/apps/go-server/internal/daily"
	"github.com/robalobadob/battleship/apps/go-server/internal/game"
	"github.com/robalobadob/battleship/apps/go-server/internal/grid"
	"github.com/robalobadob/battleship/apps/go-server/internal/store"
)

type dailyNewOut struct {
	GameID string `json:"gameId"`
	Date   string `json:"date"`
	Played bool   `json:"played"`
}

type lbOut struct {
	Date string        `json:"date"`
	Top  []daily.LBRow `json:"top"`
}

func TestDailyFlow(t *testing.T) {
	srv := newTestServer(t, testConfig())
	clock := time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)
	srv.now = func() time.Time { return clock }
	c := newClient(t, srv)

	var nw dailyNewOut
	require.Equal(t, http.StatusOK, c.do(http.MethodPost, "/daily/new", nil, &nw))
	assert.Equal(t, "2026-10-19", nw.Date)
	assert.False(t, nw.Played)
	require.NotEmpty(t, nw.GameID)

	// Same session on a second call.
	var again dailyNewOut
	require.Equal(t, http.StatusOK, c.do(http.MethodPost, "/daily/new", nil, &again))
	assert.Equal(t, nw.GameID, again.GameID)

	// The day's fleet is the seeded one.
	want, err := daily.Fleet(clock, "test_salt", game.DefaultConfig())
	require.NoError(t, err)
	cells := fleetCells(t, srv, nw.GameID)
	assert.Equal(t, shipCells(want), cells)

	var errOut map[string]string
	assert.Equal(t, http.StatusConflict, c.do(http.MethodPost, "/daily/guess",
		guessBody{GameID: "other", Guess: "A0"}, &errOut))
	assert.Equal(t, "no_session", errOut["error"])

	var out guessOut
	for _, p := range cells {
		clock = clock.Add(time.Second)
		require.Equal(t, http.StatusOK, c.do(http.MethodPost, "/daily/guess",
			guessBody{GameID: nw.GameID, Guess: grid.Format(p)}, &out))
	}
	assert.Equal(t, "won", out.State)
	assert.Equal(t, len(cells), out.Guesses)

	// The won game leaves memory once the result is stored.
	_, err = srv.store.Get(context.Background(), nw.GameID)
	assert.ErrorIs(t, err, store.ErrNotFound)

	out = guessOut{}
	require.Equal(t, http.StatusOK, c.do(http.MethodPost, "/daily/guess",
		guessBody{GameID: nw.GameID, Guess: "A0"}, &out))
	assert.Equal(t, "locked", out.State)

	var lb lbOut
	require.Equal(t, http.StatusOK, c.do(http.MethodGet, "/daily/leaderboard", nil, &lb))
	assert.Equal(t, "2026-10-19", lb.Date)
	require.Len(t, lb.Top, 1)
	assert.Equal(t, len(cells), lb.Top[0].Guesses)
	assert.Equal(t, len(cells)*1000, lb.Top[0].ElapsedMs)

	require.Equal(t, http.StatusOK, c.do(http.MethodPost, "/daily/new", nil, &nw))
	assert.True(t, nw.Played)
	assert.Empty(t, nw.GameID)

	require.Equal(t, http.StatusOK, c.do(http.MethodGet, "/daily/leaderboard?date=2026-10-18", nil, &lb))
	assert.Empty(t, lb.Top)
}

func TestDailyGameRejectedByClassicRoutes(t *testing.T) {
	srv := newTestServer(t, testConfig())
	c := newClient(t, srv)

	var nw dailyNewOut
	require.Equal(t, http.StatusOK, c.do(http.MethodPost, "/daily/new", nil, &nw))
	cells := fleetCells(t, srv, nw.GameID)

	var errOut map[string]string
	for _, p := range cells {
		assert.Equal(t, http.StatusNotFound, c.do(http.MethodPost, "/game/guess",
			guessBody{GameID: nw.GameID, Guess: grid.Format(p)}, &errOut))
	}
	assert.Equal(t, "not_found", errOut["error"])

	// Nothing was counted; the daily game is still fresh.
	g, err := srv.store.Get(context.Background(), nw.GameID)
	require.NoError(t, err)
	assert.Equal(t, game.ModeDaily, g.Mode)
	assert.Zero(t, g.Guesses)
	assert.False(t, g.Finished)

	var out guessOut
	for _, p := range cells {
		require.Equal(t, http.StatusOK, c.do(http.MethodPost, "/daily/guess",
			guessBody{GameID: nw.GameID, Guess: grid.Format(p)}, &out))
	}
	assert.Equal(t, "won", out.State)

	var lb lbOut
	require.Equal(t, http.StatusOK, c.do(http.MethodGet, "/daily/leaderboard", nil, &lb))
	require.Len(t, lb.Top, 1)
	assert.Equal(t, len(cells), lb.Top[0].Guesses)
}

func TestDailyBadGuess(t *testing.T) {
	srv := newTestServer(t, testConfig())
	c := newClient(t, srv)

	var nw dailyNewOut
	require.Equal(t, http.StatusOK, c.do(http.MethodPost, "/daily/new", nil, &nw))

	var out guessOut
	assert.Equal(t, http.StatusBadRequest, c.do(http.MethodPost, "/daily/guess",
		guessBody{GameID: nw.GameID, Guess: "Q3"}, &out))
	assert.Equal(t, "row_out_of_range", out.Error)
}

func TestSweep(t *testing.T) {
	srv := newTestServer(t, testConfig())
	clock := time.Date(2026, 10, 19, 23, 0, 0, 0, time.UTC)
	srv.now = func() time.Time { return clock }
	c := newClient(t, srv)
	ctx := context.Background()

	var ng struct {
		GameID string `json:"gameId"`
	}
	require.Equal(t, http.StatusOK, c.do(http.MethodPost, "/game/new", nil, &ng))
	require.NoError(t, srv.store.Update(ctx, ng.GameID, func(g *game.Game) error {
		g.StartedAt = clock.Add(-25 * time.Hour)
		return nil
	}))

	var nw dailyNewOut
	require.Equal(t, http.StatusOK, c.do(http.MethodPost, "/daily/new", nil, &nw))
	assert.Len(t, srv.limiter.limiters, 1)

	// Past midnight and well past the limiter idle window.
	clock = clock.Add(2 * time.Hour)
	srv.sweep(ctx)

	_, err := srv.store.Get(ctx, ng.GameID)
	assert.ErrorIs(t, err, store.ErrNotFound)
	_, err = srv.store.Get(ctx, nw.GameID)
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.Empty(t, srv.daily.sessions)
	assert.Empty(t, srv.limiter.limiters)

	// A new day brings a new daily game.
	var next dailyNewOut
	require.Equal(t, http.StatusOK, c.do(http.MethodPost, "/daily/new", nil, &next))
	assert.Equal(t, "2026-10-20", next.Date)
	assert.NotEqual(t, nw.GameID, next.GameID)
}
