// Package screen is a fyne widget emulating the instrument's 128x64
// monochrome OLED.
package screen

import (
	"image/color"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/widget"

	"github.com/itohio/uvdose/pkg/dose"
)

// Panel size in pixels.
const (
	Width  = 128
	Height = 64
)

// OpKind is the kind of a drawing operation.
type OpKind int

const (
	OpText OpKind = iota
	OpRect
)

// Op is one recorded drawing operation in panel pixels.
type Op struct {
	Kind           OpKind
	Text           string
	X0, Y0, X1, Y1 int16
	Color          color.RGBA
}

// OLED is a widget implementing dose.Display. Drawing calls are collected
// into a back buffer and shown on Present.
type OLED struct {
	widget.BaseWidget

	mu    sync.RWMutex
	back  []Op
	front []Op

	refresh func()
}

var _ dose.Display = (*OLED)(nil)

// New creates an OLED widget.
func New() *OLED {
	s := &OLED{}
	s.refresh = func() { fyne.Do(s.Refresh) }
	s.ExtendBaseWidget(s)
	return s
}

// Clear implements dose.Display.
func (s *OLED) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.back = s.back[:0]
}

// DrawText implements dose.Display. (x, y) is the top-left corner of the line.
func (s *OLED) DrawText(text string, x, y int16, c color.RGBA) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.back = append(s.back, Op{Kind: OpText, Text: text, X0: x, Y0: y, Color: c})
}

// FillRect implements dose.Display. Both corners are inclusive.
func (s *OLED) FillRect(x0, y0, x1, y1 int16, c color.RGBA) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.back = append(s.back, Op{Kind: OpRect, X0: x0, Y0: y0, X1: x1, Y1: y1, Color: c})
}

// Present implements dose.Display. It may be called from any goroutine.
func (s *OLED) Present() error {
	s.mu.Lock()
	s.front = append(s.front[:0], s.back...)
	s.mu.Unlock()

	s.refresh()
	return nil
}

// Frame returns a copy of the operations currently shown.
func (s *OLED) Frame() []Op {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Op(nil), s.front...)
}

// CreateRenderer creates the widget renderer.
func (s *OLED) CreateRenderer() fyne.WidgetRenderer {
	bg := canvas.NewRectangle(color.Black)
	return &oledRenderer{
		oled:    s,
		bg:      bg,
		objects: []fyne.CanvasObject{bg},
	}
}
