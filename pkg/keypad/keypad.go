// Package keypad decodes a 4x3 matrix keypad.
//
// Scanning drives one row at a time and samples the three column inputs while
// the row is active. The keypad this was built for has a broken middle column:
// pressing 2, 5 or 8 also closes the right column so the scan sees the key
// together with '#'. A Compensation table maps those signatures back to a
// usable key. The broken column can never be read directly, so 2/5/8 are
// approximated by the first-column key of the same row.
package keypad

// Key is a decoded key symbol. None means no key is pressed.
type Key byte

// None is reported when no key is pressed.
const None Key = 0

const (
	Rows = 4
	Cols = 3
)

// Layout maps (row, column) to key symbols.
type Layout [Rows][Cols]Key

// DefaultLayout is the standard telephone keypad layout.
var DefaultLayout = Layout{
	{'1', '2', '3'},
	{'4', '5', '6'},
	{'7', '8', '9'},
	{'*', '0', '#'},
}

// IsDigit reports whether k is '0'..'9'.
func (k Key) IsDigit() bool {
	return k >= '0' && k <= '9'
}

func (k Key) String() string {
	if k == None {
		return ""
	}
	return string(rune(k))
}

// Output is a row line driven by the scanner. machine.Pin satisfies it.
type Output interface {
	High()
	Low()
}

// Input is a column line sampled by the scanner. machine.Pin satisfies it.
type Input interface {
	Get() bool
}

// Source produces the raw, unresolved set of pressed keys.
type Source interface {
	// Candidates appends every pressed key to dst ordered by row, then
	// column, and returns the extended slice.
	Candidates(dst []Key) []Key
}

// Matrix scans physical row/column lines.
type Matrix struct {
	rows   [Rows]Output
	cols   [Cols]Input
	layout Layout
}

var _ Source = (*Matrix)(nil)

// NewMatrix creates a matrix scanner. All rows are driven low.
func NewMatrix(rows [Rows]Output, cols [Cols]Input, layout Layout) *Matrix {
	for _, r := range rows {
		r.Low()
	}
	return &Matrix{rows: rows, cols: cols, layout: layout}
}

// Candidates implements Source.
func (m *Matrix) Candidates(dst []Key) []Key {
	for r, row := range m.rows {
		row.High()
		for c, col := range m.cols {
			if col.Get() {
				dst = append(dst, m.layout[r][c])
			}
		}
		row.Low()
	}
	return dst
}
