// apps/go-server/internal/game/engine.go
//
// Core game engine for a single Battleship session.
// Responsibilities:
//   - Create new sessions with a freshly placed fleet.
//   - Turn guess text into positions via the grid parser.
//   - Resolve shots into miss/hit/sunk/win and track sink and guess counts.
//   - Produce board snapshots for whoever renders the game.
//
// Notes:
//   - A Game is owned by one caller at a time; it does no locking. The
//     store serialises access when sessions are shared across requests.
//   - Parse failures and shots at a finished game leave the session as it was.

package game

import (
	"errors"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/robalobadob/battleship/apps/go-server/internal/grid"
)

var (
	ErrFinished    = errors.New("game finished")
	ErrOutOfBounds = errors.New("position off the board")
)

// New constructs a session with a randomly placed fleet.
// A nil rng draws from crypto/rand.
func New(cfg Config, rng *rand.Rand) (*Game, error) {
	fleet, err := GenerateFleet(cfg, rng)
	if err != nil {
		return nil, err
	}
	return NewWithFleet(cfg, fleet), nil
}

// NewWithFleet constructs a session around a fleet the caller already laid
// out. NumShips follows the fleet so the win check stays consistent.
func NewWithFleet(cfg Config, fleet *Fleet) *Game {
	cfg.NumShips = len(fleet.Ships)
	return &Game{
		ID:        uuid.NewString(),
		Mode:      ModeClassic,
		Config:    cfg,
		Fleet:     fleet,
		Shots:     []grid.Position{},
		StartedAt: time.Now().UTC(),
	}
}

// Parser returns the coordinate parser matching this board.
func (g *Game) Parser() grid.Parser { return grid.NewParser(g.Config.BoardSize) }

// ApplyGuess parses text, counts it and fires at the result.
//
// Errors:
//   - ErrFinished once every ship is sunk; nothing is counted.
//   - *grid.ParseError for malformed or off-board text; nothing is counted.
//
// Repeat shots are counted like any other guess and flagged on the Outcome.
func (g *Game) ApplyGuess(text string) (Outcome, error) {
	if g.Finished {
		return Outcome{}, ErrFinished
	}
	pos, err := g.Parser().Parse(text)
	if err != nil {
		return Outcome{}, err
	}

	seen := lo.Contains(g.Shots, pos)
	g.Guesses++
	g.Shots = append(g.Shots, pos)

	out, err := g.Fire(pos)
	if err != nil {
		return Outcome{}, err
	}
	out.Repeat = out.Repeat || seen
	return out, nil
}

// Fire resolves a shot at p. It touches only the struck ship's hit mask and
// the sunk counter, and never fails for an on-board position.
func (g *Game) Fire(p grid.Position) (Outcome, error) {
	if !p.In(g.Config.BoardSize) {
		return Outcome{}, ErrOutOfBounds
	}
	out := Outcome{
		Position: p,
		Coord:    g.Parser().Format(p),
		Result:   ResultMiss,
		Guesses:  g.Guesses,
	}

	if ship, i := g.Fleet.Find(p); ship != nil {
		out.Result = ResultHit
		if ship.Hits[i] {
			out.Repeat = true
		} else {
			ship.Hits[i] = true
			if ship.Sunk() {
				g.ShipsSunk++
				out.Result = ResultSunk
				if g.ShipsSunk == g.Config.NumShips {
					out.Result = ResultWin
					g.Finished = true
					g.FinishedAt = time.Now().UTC()
				}
			}
		}
	}

	out.ShipsRemaining = g.Fleet.Remaining()
	return out, nil
}

// State reports "playing" or "won".
func (g *Game) State() string {
	if g.Finished {
		return "won"
	}
	return "playing"
}

// View renders the shots taken so far without exposing unhit ship cells.
func (g *Game) View() Board {
	n := g.Config.BoardSize
	cells := lo.Times(n, func(_ int) []Cell { return make([]Cell, n) })

	for _, p := range g.Shots {
		cells[p.Row][p.Col] = CellMiss
	}
	for _, s := range g.Fleet.Ships {
		mark := CellHit
		if s.Sunk() {
			mark = CellSunk
		}
		for i, c := range s.Cells {
			if s.Hits[i] {
				cells[c.Row][c.Col] = mark
			}
		}
	}

	return Board{
		Size:           n,
		Cells:          cells,
		ShipsSunk:      g.ShipsSunk,
		ShipsRemaining: g.Fleet.Remaining(),
		Guesses:        g.Guesses,
		State:          g.State(),
	}
}
