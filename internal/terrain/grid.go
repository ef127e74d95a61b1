package terrain

import (
	"fmt"
	"strconv"
	"strings"
)

// GridKey addresses one hex cell in an odd-row offset layout.
type GridKey struct {
	Column int
	Row    int
}

func (k GridKey) String() string {
	return fmt.Sprintf("%d,%d", k.Column, k.Row)
}

func (k GridKey) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *GridKey) UnmarshalText(text []byte) error {
	parsed, err := ParseGridKey(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// ParseGridKey reads the "column,row" form produced by String.
func ParseGridKey(s string) (GridKey, error) {
	parts := strings.Split(strings.TrimSpace(s), ",")
	if len(parts) != 2 {
		return GridKey{}, fmt.Errorf("grid key %q must be column,row", s)
	}
	c, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return GridKey{}, fmt.Errorf("grid key %q: column: %w", s, err)
	}
	r, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return GridKey{}, fmt.Errorf("grid key %q: row: %w", s, err)
	}
	return GridKey{Column: c, Row: r}, nil
}

// Neighbors lists the six adjacent keys. Odd rows are shifted half a hex to
// the right, so their diagonal neighbours sit at the same and the next column.
func (k GridKey) Neighbors() []GridKey {
	diag := -1
	if k.Row%2 != 0 {
		diag = 1
	}
	return []GridKey{
		{Column: k.Column + 1, Row: k.Row},
		{Column: k.Column - 1, Row: k.Row},
		{Column: k.Column, Row: k.Row - 1},
		{Column: k.Column + diag, Row: k.Row - 1},
		{Column: k.Column, Row: k.Row + 1},
		{Column: k.Column + diag, Row: k.Row + 1},
	}
}
