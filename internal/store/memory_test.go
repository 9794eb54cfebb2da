package store

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/robalobadob/battleship/apps/go-server/internal/game"
	"github.com/robalobadob/battleship/apps/go-server/internal/grid"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newGame(t *testing.T) *game.Game {
	t.Helper()
	g, err := game.New(game.DefaultConfig(), game.NewSeededRand(3))
	require.NoError(t, err)
	return g
}

func TestSaveGet(t *testing.T) {
	ctx := context.Background()
	st := NewMemoryStore()
	g := newGame(t)

	require.NoError(t, st.Save(ctx, g))
	got, err := st.Get(ctx, g.ID)
	require.NoError(t, err)
	assert.Same(t, g, got)

	_, err = st.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, st.Delete(ctx, g.ID))
	_, err = st.Get(ctx, g.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPrune(t *testing.T) {
	ctx := context.Background()
	st := NewMemoryStore()
	now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)

	old, fresh := newGame(t), newGame(t)
	old.StartedAt = now.Add(-25 * time.Hour)
	fresh.StartedAt = now.Add(-time.Hour)
	require.NoError(t, st.Save(ctx, old))
	require.NoError(t, st.Save(ctx, fresh))

	n, err := st.Prune(ctx, now.Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, err = st.Get(ctx, old.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = st.Get(ctx, fresh.ID)
	assert.NoError(t, err)
}

func TestUpdateMissing(t *testing.T) {
	err := NewMemoryStore().Update(context.Background(), "nope", func(*game.Game) error {
		t.Fatal("callback must not run")
		return nil
	})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	st := NewMemoryStore()
	assert.ErrorIs(t, st.Save(ctx, newGame(t)), context.Canceled)
	_, err := st.Get(ctx, "x")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestUpdateSerialisesShots(t *testing.T) {
	ctx := context.Background()
	st := NewMemoryStore()
	g := newGame(t)
	require.NoError(t, st.Save(ctx, g))

	// Every goroutine fires at a different miss-or-hit cell; the counter must
	// come out exact.
	var wg sync.WaitGroup
	n := g.Config.BoardSize
	for r := range n {
		for c := range n {
			wg.Add(1)
			go func(text string) {
				defer wg.Done()
				_ = st.Update(ctx, g.ID, func(g *game.Game) error {
					_, err := g.ApplyGuess(text)
					return err
				})
			}(grid.Format(grid.At(r, c)))
		}
	}
	wg.Wait()

	assert.True(t, g.Finished)
	assert.Equal(t, g.Config.NumShips, g.ShipsSunk)
	assert.LessOrEqual(t, g.Guesses, n*n)
	assert.Len(t, g.Shots, g.Guesses)
}
