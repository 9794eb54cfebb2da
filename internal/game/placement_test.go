package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/battleship/apps/go-server/internal/grid"
)

// checkFleet asserts the shape, bounds and non-overlap properties of a fleet.
func checkFleet(t *testing.T, cfg Config, f *Fleet) {
	t.Helper()
	require.Len(t, f.Ships, cfg.NumShips)

	seen := map[grid.Position]bool{}
	for _, s := range f.Ships {
		require.Len(t, s.Cells, cfg.ShipLength)
		require.Len(t, s.Hits, cfg.ShipLength)

		sameRow, sameCol := true, true
		for i, c := range s.Cells {
			assert.True(t, c.In(cfg.BoardSize), "cell %v off a %d board", c, cfg.BoardSize)
			assert.False(t, s.Hits[i], "fresh ship has a hit")
			assert.False(t, seen[c], "cell %v used twice", c)
			seen[c] = true

			if i > 0 {
				prev := s.Cells[i-1]
				sameRow = sameRow && c.Row == prev.Row && c.Col == prev.Col+1
				sameCol = sameCol && c.Col == prev.Col && c.Row == prev.Row+1
			}
		}
		if cfg.ShipLength > 1 {
			assert.True(t, sameRow != sameCol, "ship %v is not a straight contiguous run", s.Cells)
		}
	}
	assert.Len(t, seen, cfg.NumShips*cfg.ShipLength)
}

func TestGenerateFleetProperties(t *testing.T) {
	configs := []Config{
		DefaultConfig(),
		{BoardSize: 10, NumShips: 5, ShipLength: 4},
		{BoardSize: 3, NumShips: 3, ShipLength: 3},
		{BoardSize: 4, NumShips: 4, ShipLength: 2},
		{BoardSize: 1, NumShips: 1, ShipLength: 1},
		{BoardSize: 12, NumShips: 6, ShipLength: 5},
	}
	for _, cfg := range configs {
		for seed := uint64(0); seed < 200; seed++ {
			f, err := GenerateFleet(cfg, NewSeededRand(seed))
			require.NoError(t, err, "cfg %+v seed %d", cfg, seed)
			checkFleet(t, cfg, f)
		}
	}
}

func TestGenerateFleetDeterministic(t *testing.T) {
	a, err := GenerateFleet(DefaultConfig(), NewSeededRand(42))
	require.NoError(t, err)
	b, err := GenerateFleet(DefaultConfig(), NewSeededRand(42))
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestGenerateFleetIndependentCalls(t *testing.T) {
	rng := NewSeededRand(7)
	a, err := GenerateFleet(DefaultConfig(), rng)
	require.NoError(t, err)
	b, err := GenerateFleet(DefaultConfig(), rng)
	require.NoError(t, err)

	a.Ships[0].Hits[0] = true
	assert.False(t, b.Ships[0].Hits[0])
}

func TestGenerateFleetReachesEveryEdge(t *testing.T) {
	// One full-width ship on a 3x3 board: 3 rows + 3 columns.
	cfg := Config{BoardSize: 3, NumShips: 1, ShipLength: 3}
	layouts := map[grid.Position]map[bool]bool{}
	for seed := uint64(0); seed < 300; seed++ {
		f, err := GenerateFleet(cfg, NewSeededRand(seed))
		require.NoError(t, err)
		s := f.Ships[0]
		vertical := s.Cells[0].Col == s.Cells[1].Col
		if layouts[s.Cells[0]] == nil {
			layouts[s.Cells[0]] = map[bool]bool{}
		}
		layouts[s.Cells[0]][vertical] = true
	}

	count := 0
	for _, axes := range layouts {
		count += len(axes)
	}
	assert.Equal(t, 6, count)
}

func TestGenerateFleetNilRand(t *testing.T) {
	f, err := GenerateFleet(DefaultConfig(), nil)
	require.NoError(t, err)
	checkFleet(t, DefaultConfig(), f)
}

func TestGenerateFleetImpossible(t *testing.T) {
	// A 6x6 board cannot be tiled by 1x4 ships even though the area fits.
	cfg := Config{BoardSize: 6, NumShips: 9, ShipLength: 4}
	require.NoError(t, cfg.Validate())

	_, err := GenerateFleet(cfg, NewSeededRand(1))
	assert.ErrorIs(t, err, ErrPlacement)
}

func TestConfigValidate(t *testing.T) {
	cases := []struct {
		name string
		cfg  Config
		ok   bool
	}{
		{"default", DefaultConfig(), true},
		{"zero board", Config{BoardSize: 0, NumShips: 1, ShipLength: 1}, false},
		{"zero ships", Config{BoardSize: 7, NumShips: 0, ShipLength: 3}, false},
		{"negative length", Config{BoardSize: 7, NumShips: 3, ShipLength: -1}, false},
		{"ship longer than board", Config{BoardSize: 3, NumShips: 1, ShipLength: 4}, false},
		{"board past Z", Config{BoardSize: 27, NumShips: 1, ShipLength: 1}, false},
		{"too many cells", Config{BoardSize: 3, NumShips: 4, ShipLength: 3}, false},
		{"exactly full", Config{BoardSize: 3, NumShips: 3, ShipLength: 3}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if tc.ok {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, ErrInvalidConfig)

			_, genErr := GenerateFleet(tc.cfg, NewSeededRand(0))
			assert.ErrorIs(t, genErr, ErrInvalidConfig)
		})
	}
}
