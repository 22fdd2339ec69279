package dose

import (
	"errors"
	"image/color"
	"sync"

	"github.com/itohio/uvdose/pkg/keypad"
)

var errBus = errors.New("i2c: nack")

// fakeSensor returns queued readings, repeating the last one.
type fakeSensor struct {
	mu     sync.Mutex
	values []uint32
	errs   []error
	calls  int
}

func (s *fakeSensor) Read() (uint32, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.calls
	s.calls++
	if i < len(s.errs) && s.errs[i] != nil {
		return 0, s.errs[i]
	}
	if len(s.values) == 0 {
		return 0, nil
	}
	if i >= len(s.values) {
		i = len(s.values) - 1
	}
	return s.values[i], nil
}

type rect struct {
	x0, y0, x1, y1 int16
}

type textOp struct {
	text string
	x, y int16
}

// fakeDisplay records the last presented frame.
type fakeDisplay struct {
	mu        sync.Mutex
	texts     []textOp
	rects     []rect
	presented [][]textOp
	rectsSeen []int
	err       error
}

func (d *fakeDisplay) Clear() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.texts = nil
	d.rects = nil
}

func (d *fakeDisplay) DrawText(text string, x, y int16, c color.RGBA) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.texts = append(d.texts, textOp{text: text, x: x, y: y})
}

func (d *fakeDisplay) FillRect(x0, y0, x1, y1 int16, c color.RGBA) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.rects = append(d.rects, rect{x0, y0, x1, y1})
}

func (d *fakeDisplay) Present() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.presented = append(d.presented, d.texts)
	d.rectsSeen = append(d.rectsSeen, len(d.rects))
	return d.err
}

func (d *fakeDisplay) frames() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.presented)
}

type fakeBuzzer struct {
	mu    sync.Mutex
	on    bool
	calls int
}

func (b *fakeBuzzer) Buzz(on bool) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.on = on
	b.calls++
	return nil
}

func (b *fakeBuzzer) isOn() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.on
}

type fakeButton struct {
	pressed bool
}

func (b *fakeButton) Get() bool {
	return b.pressed
}

// fakeKeypad returns queued keys, then None.
type fakeKeypad struct {
	keys []keypad.Key
}

func (k *fakeKeypad) PollEdge() keypad.Key {
	if len(k.keys) == 0 {
		return keypad.None
	}
	key := k.keys[0]
	k.keys = k.keys[1:]
	return key
}

func (k *fakeKeypad) push(keys ...keypad.Key) {
	k.keys = append(k.keys, keys...)
}
