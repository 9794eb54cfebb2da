// apps/go-server/internal/grid/position.go
//
// Board positions.
// A Position is a real (row, column) pair so boards can grow past ten
// columns without the "rc" string keys becoming ambiguous.

package grid

import "fmt"

// MaxSize is the largest board the letter alphabet can address.
const MaxSize = 26

// Position is a zero-based (row, column) cell on a square board.
type Position struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// At is shorthand for Position{Row: row, Col: col}.
func At(row, col int) Position { return Position{Row: row, Col: col} }

// In reports whether p lies on a size×size board.
func (p Position) In(size int) bool {
	return p.Row >= 0 && p.Row < size && p.Col >= 0 && p.Col < size
}

// Step returns the position n cells further along the given axis.
func (p Position) Step(vertical bool, n int) Position {
	if vertical {
		return Position{Row: p.Row + n, Col: p.Col}
	}
	return Position{Row: p.Row, Col: p.Col + n}
}

func (p Position) String() string { return fmt.Sprintf("(%d,%d)", p.Row, p.Col) }
