// apps/go-server/internal/game/placement.go
//
// Random, non-colliding fleet placement.
//
// Each ship picks an axis at random, then one start uniformly among the runs
// on that axis whose cells are all still free (falling back to the other
// axis when that one is full). Candidates are drawn only from free runs, so
// nothing is ever rejected for overlapping. A greedy layout can still leave
// no room for a later ship; the fleet is then rebuilt from scratch, at most
// MaxFleetAttempts times, before giving up with ErrPlacement.

package game

import (
	crand "crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/battleship/apps/go-server/internal/grid"
)

// MaxFleetAttempts bounds how many times a whole fleet is rebuilt.
const MaxFleetAttempts = 64

// ErrPlacement means the configuration is too dense to place every ship.
var ErrPlacement = errors.New("fleet placement failed")

// NewRand returns a PCG source seeded from crypto/rand.
func NewRand() *rand.Rand {
	var b [16]byte
	_, _ = crand.Read(b[:])
	return rand.New(rand.NewPCG(binary.LittleEndian.Uint64(b[:8]), binary.LittleEndian.Uint64(b[8:])))
}

// NewSeededRand returns a deterministic source for replays and daily boards.
func NewSeededRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// GenerateFleet places cfg.NumShips ships of cfg.ShipLength on the board.
// On success no two ships share a cell and every cell is on the board.
// A nil rng uses NewRand.
func GenerateFleet(cfg Config, rng *rand.Rand) (*Fleet, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if rng == nil {
		rng = NewRand()
	}

	for attempt := 1; attempt <= MaxFleetAttempts; attempt++ {
		if fleet, ok := placeFleet(cfg, rng); ok {
			return fleet, nil
		}
		log.Debug().
			Int("attempt", attempt).
			Int("boardSize", cfg.BoardSize).
			Int("numShips", cfg.NumShips).
			Int("shipLength", cfg.ShipLength).
			Msg("fleet placement hit a dead end, retrying")
	}
	return nil, fmt.Errorf("%w: %d ships of length %d on a %dx%d board after %d attempts",
		ErrPlacement, cfg.NumShips, cfg.ShipLength, cfg.BoardSize, cfg.BoardSize, MaxFleetAttempts)
}

// placeFleet makes one greedy pass. ok is false when some ship had nowhere
// to go on either axis.
func placeFleet(cfg Config, rng *rand.Rand) (*Fleet, bool) {
	taken := make(map[grid.Position]struct{}, cfg.NumShips*cfg.ShipLength)
	fleet := &Fleet{Ships: make([]*Ship, 0, cfg.NumShips)}

	for range cfg.NumShips {
		vertical := rng.IntN(2) == 0
		runs := freeRuns(cfg, taken, vertical)
		if len(runs) == 0 {
			vertical = !vertical
			runs = freeRuns(cfg, taken, vertical)
		}
		if len(runs) == 0 {
			return nil, false
		}

		ship := NewShip(runs[rng.IntN(len(runs))], vertical, cfg.ShipLength)
		for _, c := range ship.Cells {
			taken[c] = struct{}{}
		}
		fleet.Ships = append(fleet.Ships, ship)
	}
	return fleet, true
}

// freeRuns lists the start of every in-bounds run on one axis with no taken
// cell. Starts along the axis of travel range over [0, size-length].
func freeRuns(cfg Config, taken map[grid.Position]struct{}, vertical bool) []grid.Position {
	var out []grid.Position
	span := cfg.BoardSize - cfg.ShipLength + 1
	for along := 0; along < span; along++ {
		for across := 0; across < cfg.BoardSize; across++ {
			start := grid.At(across, along)
			if vertical {
				start = grid.At(along, across)
			}
			if runFree(start, vertical, cfg.ShipLength, taken) {
				out = append(out, start)
			}
		}
	}
	return out
}

func runFree(start grid.Position, vertical bool, length int, taken map[grid.Position]struct{}) bool {
	for i := range length {
		if _, hit := taken[start.Step(vertical, i)]; hit {
			return false
		}
	}
	return true
}
