package keypad

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSource returns a fixed candidate list.
type fakeSource struct {
	keys []Key
}

func (f *fakeSource) Candidates(dst []Key) []Key {
	return append(dst, f.keys...)
}

func (f *fakeSource) set(keys ...Key) {
	f.keys = keys
}

// wiring is a fake keypad where closed switches connect a row to a column.
type wiring struct {
	active int
	closed map[[2]int]bool
	drives []int
}

type fakeRow struct {
	w   *wiring
	row int
}

func (r fakeRow) High() {
	r.w.active = r.row
	r.w.drives = append(r.w.drives, r.row)
}

func (r fakeRow) Low() {
	if r.w.active == r.row {
		r.w.active = -1
	}
}

type fakeCol struct {
	w   *wiring
	col int
}

func (c fakeCol) Get() bool {
	return c.w.active >= 0 && c.w.closed[[2]int{c.w.active, c.col}]
}

func newWiredMatrix() (*wiring, *Matrix) {
	w := &wiring{active: -1, closed: map[[2]int]bool{}}
	var rows [Rows]Output
	var cols [Cols]Input
	for i := range rows {
		rows[i] = fakeRow{w: w, row: i}
	}
	for i := range cols {
		cols[i] = fakeCol{w: w, col: i}
	}
	m := NewMatrix(rows, cols, DefaultLayout)
	w.drives = nil
	return w, m
}

func TestMatrix_Candidates(t *testing.T) {
	w, m := newWiredMatrix()

	assert.Empty(t, m.Candidates(nil))
	assert.Equal(t, []int{0, 1, 2, 3}, w.drives, "every row is driven once in order")
	assert.Equal(t, -1, w.active, "rows are released after scanning")

	w.closed[[2]int{1, 0}] = true
	assert.Equal(t, []Key{'4'}, m.Candidates(nil))

	// Ordered by row, then column
	w.closed[[2]int{0, 2}] = true
	w.closed[[2]int{3, 1}] = true
	assert.Equal(t, []Key{'3', '4', '0'}, m.Candidates(nil))
}

func TestMatrix_CandidatesAppends(t *testing.T) {
	w, m := newWiredMatrix()
	w.closed[[2]int{2, 2}] = true

	buf := make([]Key, 0, 4)
	buf = m.Candidates(buf)
	require.Len(t, buf, 1)
	assert.Equal(t, Key('9'), buf[0])
}

func TestCompensation_Resolve(t *testing.T) {
	tests := []struct {
		name       string
		candidates []Key
		want       Key
	}{
		{"none", nil, None},
		{"single", []Key{'9'}, '9'},
		{"broken 2", []Key{'2', '#'}, '1'},
		{"broken 5", []Key{'5', '#'}, '4'},
		{"broken 8", []Key{'8', '#'}, '7'},
		{"second not hash", []Key{'2', '1'}, '2'},
		{"hash alone", []Key{'#'}, '#'},
		{"first not in table", []Key{'3', '#'}, '3'},
		{"extra candidates discarded", []Key{'5', '#', '0'}, '4'},
		{"extra candidates no remap", []Key{'1', '6', '#'}, '1'},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BrokenMiddleColumn.Resolve(tt.candidates))
		})
	}
}

func TestCompensation_Disabled(t *testing.T) {
	assert.Equal(t, Key('2'), NoCompensation.Resolve([]Key{'2', '#'}))
	assert.Equal(t, Key('5'), Compensation(nil).Resolve([]Key{'5', '#'}))
}

func TestDecoder_PollEdgeRemap(t *testing.T) {
	for _, tt := range []struct {
		raw  []Key
		want Key
	}{
		{[]Key{'2', '#'}, '1'},
		{[]Key{'5', '#'}, '4'},
		{[]Key{'8', '#'}, '7'},
		{[]Key{'2', '1'}, '2'},
	} {
		src := &fakeSource{}
		d := NewDecoder(src, BrokenMiddleColumn)
		src.set(tt.raw...)
		assert.Equal(t, tt.want, d.PollEdge(), "raw %q", tt.raw)
	}
}

func TestDecoder_HeldKeyReportedOnce(t *testing.T) {
	src := &fakeSource{}
	d := NewDecoder(src, BrokenMiddleColumn)

	src.set('6')
	assert.Equal(t, Key('6'), d.PollEdge())
	for i := 0; i < 10; i++ {
		assert.Equal(t, None, d.PollEdge(), "held key must not repeat (poll %d)", i)
	}

	// Re-pressing without release is still suppressed
	assert.Equal(t, None, d.PollEdge())

	// Release re-arms
	src.set()
	assert.Equal(t, None, d.PollEdge())
	src.set('6')
	assert.Equal(t, Key('6'), d.PollEdge())
}

func TestDecoder_KeyChangeWithoutRelease(t *testing.T) {
	src := &fakeSource{}
	d := NewDecoder(src, BrokenMiddleColumn)

	src.set('1')
	assert.Equal(t, Key('1'), d.PollEdge())
	src.set('3')
	assert.Equal(t, Key('3'), d.PollEdge())
	src.set('3')
	assert.Equal(t, None, d.PollEdge())
}

func TestDecoder_RemappedKeyIsDebounced(t *testing.T) {
	src := &fakeSource{}
	d := NewDecoder(src, BrokenMiddleColumn)

	// 4 and a remapped 5 resolve to the same key
	src.set('4')
	assert.Equal(t, Key('4'), d.PollEdge())
	src.set('5', '#')
	assert.Equal(t, None, d.PollEdge(), "same resolved key while held")
}

func TestDecoder_ScanThroughMatrix(t *testing.T) {
	w, m := newWiredMatrix()
	d := NewDecoder(m, BrokenMiddleColumn)

	assert.Equal(t, None, d.Scan())

	// A middle column press also closes '#'
	w.closed[[2]int{1, 1}] = true
	w.closed[[2]int{3, 2}] = true
	assert.Equal(t, Key('4'), d.Scan())
}

func TestKey(t *testing.T) {
	assert.True(t, Key('0').IsDigit())
	assert.True(t, Key('9').IsDigit())
	assert.False(t, Key('#').IsDigit())
	assert.False(t, None.IsDigit())
	assert.Equal(t, "7", Key('7').String())
	assert.Equal(t, "", None.String())
}
