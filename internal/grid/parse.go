// apps/go-server/internal/grid/parse.go
//
// Coordinate parsing for human-entered guesses ("B4", "a0", "K10").
//
// Rules:
//   - First character is a row letter, matched case-insensitively
//     ("b4" == "B4"). Its index in the alphabet is the row.
//   - The rest is the column in decimal. Boards up to 10 wide take exactly
//     one digit; wider boards accept two.
//   - Both coordinates must land on the board.
//   - Length is counted in characters, not bytes.
//
// Errors are *ParseError values; errors.Is matches the Err* sentinels so the
// caller can pick the message to show.

package grid

import (
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/samber/lo"
)

// Alphabet is the default row-letter sequence.
const Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"

var (
	ErrLength      = errors.New("wrong length")
	ErrRowLetter   = errors.New("unrecognised row letter")
	ErrRowRange    = errors.New("row out of range")
	ErrColumnDigit = errors.New("column is not a digit")
	ErrColumnRange = errors.New("column out of range")
)

// ParseError reports why a guess could not be turned into a Position.
type ParseError struct {
	Input string
	Kind  error // one of the Err* sentinels
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %q: %v", e.Input, e.Kind)
}

// Is lets errors.Is(err, ErrRowRange) and friends match.
func (e *ParseError) Is(target error) bool { return e.Kind == target }

func (e *ParseError) Unwrap() error { return e.Kind }

// Code is a short machine-readable name for the failure, used in JSON bodies.
func (e *ParseError) Code() string {
	switch e.Kind {
	case ErrLength:
		return "bad_length"
	case ErrRowLetter:
		return "bad_row"
	case ErrRowRange:
		return "row_out_of_range"
	case ErrColumnDigit:
		return "bad_column"
	case ErrColumnRange:
		return "column_out_of_range"
	}
	return "bad_coordinate"
}

// Parser converts between guess text and Positions for one board size.
// Letters and Size are independent: a Letters set longer than Size is what
// makes ErrRowRange reachable.
type Parser struct {
	Size    int
	Letters string
}

// NewParser returns a parser for a size×size board using the A–Z alphabet.
func NewParser(size int) Parser {
	return Parser{Size: size, Letters: Alphabet}
}

// Parse turns text such as "B0" into a Position. It has no side effects.
func (p Parser) Parse(text string) (Position, error) {
	fail := func(kind error) (Position, error) {
		return Position{}, &ParseError{Input: text, Kind: kind}
	}

	if n := utf8.RuneCountInString(text); n < 2 || n > 1+p.colDigits() {
		return fail(ErrLength)
	}
	runes := []rune(text)

	row := lo.IndexOf(p.letters(), upper(runes[0]))
	if row < 0 {
		return fail(ErrRowLetter)
	}

	col := 0
	for _, c := range runes[1:] {
		if c < '0' || c > '9' {
			return fail(ErrColumnDigit)
		}
		col = col*10 + int(c-'0')
	}

	if row >= p.Size {
		return fail(ErrRowRange)
	}
	if col >= p.Size {
		return fail(ErrColumnRange)
	}
	return Position{Row: row, Col: col}, nil
}

// Format is the inverse of Parse for in-bounds positions.
func (p Parser) Format(pos Position) string {
	letters := p.letters()
	if pos.Row < 0 || pos.Row >= len(letters) || pos.Col < 0 {
		return pos.String()
	}
	return fmt.Sprintf("%c%d", letters[pos.Row], pos.Col)
}

// Format renders pos with the default alphabet.
func Format(pos Position) string { return NewParser(MaxSize).Format(pos) }

// colDigits is how many decimal digits the widest column needs.
func (p Parser) colDigits() int {
	n := 1
	for v := p.Size - 1; v >= 10; v /= 10 {
		n++
	}
	return n
}

func (p Parser) letters() []rune {
	if p.Letters == "" {
		return []rune(Alphabet)
	}
	return []rune(p.Letters)
}

// upper folds ASCII a–z to A–Z; anything else passes through.
func upper(r rune) rune {
	if r >= 'a' && r <= 'z' {
		return r - 'a' + 'A'
	}
	return r
}
