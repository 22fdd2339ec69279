package sim

import (
	"fmt"
	"sync"
	"time"

	"github.com/itohio/uvdose/pkg/keypad"
)

// Keypad is a virtual 4x3 switch matrix. Row lines are driven by the scanner
// and column lines read back every closed switch on a driven row.
//
// When broken, a key in the middle column also closes the '#' switch, which
// is what the real keypad does.
//
// Pressing while a key is still held lifts the finger first: all switches
// stay open for one full scan before the new press closes.
type Keypad struct {
	mu      sync.Mutex
	layout  keypad.Layout
	broken  bool
	hold    time.Duration
	now     func() time.Time
	pressed keypad.Key
	until   time.Time
	driven  [keypad.Rows]bool
	next    keypad.Key // Press waiting for the release scan
	gap     gapState
}

type gapState int

const (
	gapNone     gapState = iota
	gapArmed             // waiting for a scan to start
	gapScanning          // scan started with all switches open
)

// NewKeypad creates a keypad. A press lasts for hold, or until Release if
// hold is zero.
func NewKeypad(hold time.Duration, broken bool) *Keypad {
	return NewKeypadWithClock(hold, broken, time.Now)
}

// NewKeypadWithClock creates a keypad whose hold time follows clock.
func NewKeypadWithClock(hold time.Duration, broken bool, clock func() time.Time) *Keypad {
	return &Keypad{
		layout: keypad.DefaultLayout,
		broken: broken,
		hold:   hold,
		now:    clock,
	}
}

// Press closes the switch of key.
func (k *Keypad) Press(key keypad.Key) error {
	if _, _, ok := k.position(key); !ok {
		return fmt.Errorf("sim: no key %q on the keypad", rune(key))
	}
	k.mu.Lock()
	defer k.mu.Unlock()
	k.expire()
	if k.pressed != keypad.None || k.gap != gapNone {
		k.pressed = keypad.None
		k.next = key
		k.gap = gapArmed
		return nil
	}
	k.close(key)
	return nil
}

// Release opens all switches.
func (k *Keypad) Release() {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.pressed = keypad.None
	k.next = keypad.None
	k.gap = gapNone
}

// Pressed returns the key currently held, or None. A press waiting for the
// release scan counts as held.
func (k *Keypad) Pressed() keypad.Key {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.gap != gapNone {
		return k.next
	}
	k.expire()
	return k.pressed
}

// close starts a press of key. Caller holds mu.
func (k *Keypad) close(key keypad.Key) {
	k.pressed = key
	if k.hold > 0 {
		k.until = k.now().Add(k.hold)
	}
}

// Matrix returns a scanner wired to the virtual lines.
func (k *Keypad) Matrix() *keypad.Matrix {
	var rows [keypad.Rows]keypad.Output
	for r := range rows {
		rows[r] = &rowLine{k: k, row: r}
	}
	var cols [keypad.Cols]keypad.Input
	for c := range cols {
		cols[c] = &colLine{k: k, col: c}
	}
	return keypad.NewMatrix(rows, cols, k.layout)
}

func (k *Keypad) position(key keypad.Key) (int, int, bool) {
	for r, row := range k.layout {
		for c, v := range row {
			if v == key {
				return r, c, true
			}
		}
	}
	return 0, 0, false
}

// expire releases a timed press. Caller holds mu.
func (k *Keypad) expire() {
	if k.pressed != keypad.None && k.hold > 0 && !k.now().Before(k.until) {
		k.pressed = keypad.None
	}
}

// closed reports whether switch (r, c) conducts. Caller holds mu.
func (k *Keypad) closed(r, c int) bool {
	k.expire()
	if k.pressed == keypad.None {
		return false
	}
	pr, pc, _ := k.position(k.pressed)
	if r == pr && c == pc {
		return true
	}
	// Middle column keys of the top three rows short to '#'.
	return k.broken && pc == 1 && pr < keypad.Rows-1 && r == keypad.Rows-1 && c == keypad.Cols-1
}

type rowLine struct {
	k   *Keypad
	row int
}

func (l *rowLine) High() {
	l.k.mu.Lock()
	defer l.k.mu.Unlock()
	l.k.driven[l.row] = true
	if l.row == 0 && l.k.gap == gapArmed {
		l.k.gap = gapScanning
	}
}

func (l *rowLine) Low() {
	l.k.mu.Lock()
	defer l.k.mu.Unlock()
	l.k.driven[l.row] = false
	if l.row == keypad.Rows-1 && l.k.gap == gapScanning {
		l.k.gap = gapNone
		l.k.close(l.k.next)
		l.k.next = keypad.None
	}
}

type colLine struct {
	k   *Keypad
	col int
}

func (l *colLine) Get() bool {
	l.k.mu.Lock()
	defer l.k.mu.Unlock()
	for r, on := range l.k.driven {
		if on && l.k.closed(r, l.col) {
			return true
		}
	}
	return false
}
