// apps/go-server/internal/game/types.go
//
// Core type definitions for the Battleship rules engine.
// Defines:
//   - Config: board side, fleet size and ship length for one session.
//   - Ship / Fleet: placed ships and their hit masks.
//   - Result / Outcome: what a single shot did.
//   - Game: state for a single in-progress or finished session.
//   - Board / Cell: a render-ready snapshot of the shots taken so far.

package game

import (
	"errors"
	"fmt"
	"time"

	"github.com/samber/lo"

	"github.com/robalobadob/battleship/apps/go-server/internal/grid"
)

const (
	DefaultBoardSize  = 7
	DefaultNumShips   = 3
	DefaultShipLength = 3
)

// ErrInvalidConfig is wrapped by Config.Validate with the offending detail.
var ErrInvalidConfig = errors.New("invalid game config")

// Config is fixed when a session starts.
type Config struct {
	BoardSize  int `json:"boardSize"`
	NumShips   int `json:"numShips"`
	ShipLength int `json:"shipLength"`
}

// DefaultConfig is the classic 7×7 board with three ships of three cells.
func DefaultConfig() Config {
	return Config{
		BoardSize:  DefaultBoardSize,
		NumShips:   DefaultNumShips,
		ShipLength: DefaultShipLength,
	}
}

// Validate rejects configurations the placement generator cannot serve.
// Passing Validate does not promise a packing exists; GenerateFleet reports
// that case with ErrPlacement.
func (c Config) Validate() error {
	switch {
	case c.BoardSize < 1 || c.NumShips < 1 || c.ShipLength < 1:
		return fmt.Errorf("%w: board size, ship count and ship length must be positive (got %d/%d/%d)",
			ErrInvalidConfig, c.BoardSize, c.NumShips, c.ShipLength)
	case c.BoardSize > grid.MaxSize:
		return fmt.Errorf("%w: board size %d exceeds %d", ErrInvalidConfig, c.BoardSize, grid.MaxSize)
	case c.ShipLength > c.BoardSize:
		return fmt.Errorf("%w: ship length %d does not fit a %dx%d board",
			ErrInvalidConfig, c.ShipLength, c.BoardSize, c.BoardSize)
	case c.NumShips*c.ShipLength > c.BoardSize*c.BoardSize:
		return fmt.Errorf("%w: %d ships of length %d need more than %d cells",
			ErrInvalidConfig, c.NumShips, c.ShipLength, c.BoardSize*c.BoardSize)
	}
	return nil
}

// Ship is a straight run of cells. Cells never change after placement;
// Hits[i] flips to true once Cells[i] is fired upon and stays true.
type Ship struct {
	Cells []grid.Position `json:"cells"`
	Hits  []bool          `json:"hits"`
}

// NewShip lays out length cells from start, down a column when vertical,
// along a row otherwise.
func NewShip(start grid.Position, vertical bool, length int) *Ship {
	s := &Ship{
		Cells: make([]grid.Position, length),
		Hits:  make([]bool, length),
	}
	for i := range length {
		s.Cells[i] = start.Step(vertical, i)
	}
	return s
}

// Index returns the position of p within the ship's cells, or -1.
func (s *Ship) Index(p grid.Position) int {
	return lo.IndexOf(s.Cells, p)
}

// Sunk reports whether every cell has been hit.
func (s *Ship) Sunk() bool {
	return lo.EveryBy(s.Hits, func(h bool) bool { return h })
}

// Fleet is the set of ships for one board, in placement order.
type Fleet struct {
	Ships []*Ship `json:"ships"`
}

// Find returns the ship occupying p and the cell index, or nil and -1.
// Ships never overlap, so at most one can match.
func (f *Fleet) Find(p grid.Position) (*Ship, int) {
	for _, s := range f.Ships {
		if i := s.Index(p); i >= 0 {
			return s, i
		}
	}
	return nil, -1
}

// Remaining counts ships still afloat.
func (f *Fleet) Remaining() int {
	return lo.CountBy(f.Ships, func(s *Ship) bool { return !s.Sunk() })
}

// Result is the evaluation of a single shot.
type Result string

const (
	ResultMiss Result = "miss"
	ResultHit  Result = "hit"
	ResultSunk Result = "sunk" // hit that finished a ship
	ResultWin  Result = "win"  // hit that finished the last ship
)

// Hit reports whether the shot struck a ship.
func (r Result) Hit() bool { return r != ResultMiss }

// Outcome is everything a renderer needs to report one shot.
type Outcome struct {
	Position       grid.Position `json:"position"`
	Coord          string        `json:"coord"`
	Result         Result        `json:"result"`
	Repeat         bool          `json:"repeat"` // cell had already been fired upon
	ShipsRemaining int           `json:"shipsRemaining"`
	Guesses        int           `json:"guesses"`
}

// Mode tells free-play sessions apart from the shared daily board.
type Mode string

const (
	ModeClassic Mode = "classic"
	ModeDaily   Mode = "daily"
)

// Game holds the state of a single Battleship session.
type Game struct {
	ID         string          // Unique game identifier (uuid).
	Mode       Mode            // ModeClassic unless the caller says otherwise.
	Config     Config          // Dimensions, fixed at creation.
	Fleet      *Fleet          // Ship layout and hit masks.
	ShipsSunk  int             // Only increases, 0..NumShips.
	Guesses    int             // Accepted guesses, including repeats.
	Shots      []grid.Position // Every accepted guess in order.
	Finished   bool            // True once every ship is sunk.
	StartedAt  time.Time
	FinishedAt time.Time
}

// Cell is one square of a Board snapshot.
type Cell string

const (
	CellUnknown Cell = ""
	CellMiss    Cell = "miss"
	CellHit     Cell = "hit"
	CellSunk    Cell = "sunk" // hit cell of a ship that went down
)

// Board is a read-only view of the shots taken, safe to send to a player:
// it never reveals unhit ship cells.
type Board struct {
	Size           int      `json:"size"`
	Cells          [][]Cell `json:"cells"`
	ShipsSunk      int      `json:"shipsSunk"`
	ShipsRemaining int      `json:"shipsRemaining"`
	Guesses        int      `json:"guesses"`
	State          string   `json:"state"`
}
