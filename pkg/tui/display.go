package tui

import (
	"image/color"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/itohio/uvdose/pkg/dose"
)

// Rows is the number of text rows on the panel.
const Rows = 64/dose.LineHeight + 1

// PanelMsg carries one presented frame to the model.
type PanelMsg struct {
	Rows     [Rows]string
	Inverted [Rows]bool // Row covered by a filled rectangle
}

// Display implements dose.Display by turning each presented frame into a
// PanelMsg. Pixel rows are mapped to text rows of dose.LineHeight pixels.
type Display struct {
	mu   sync.Mutex
	back PanelMsg
	last PanelMsg
	send func(tea.Msg)
}

var _ dose.Display = (*Display)(nil)

// NewDisplay creates a display. Frames presented before Attach are kept and
// delivered on Attach.
func NewDisplay() *Display {
	return &Display{}
}

// Attach starts forwarding frames to send, usually (*tea.Program).Send.
func (d *Display) Attach(send func(tea.Msg)) {
	d.mu.Lock()
	d.send = send
	last := d.last
	d.mu.Unlock()

	if send != nil {
		send(last)
	}
}

// Clear implements dose.Display.
func (d *Display) Clear() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.back = PanelMsg{}
}

// DrawText implements dose.Display.
func (d *Display) DrawText(text string, x, y int16, c color.RGBA) {
	row := int(y) / dose.LineHeight
	if row < 0 || row >= Rows {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.back.Rows[row] = text
}

// FillRect implements dose.Display.
func (d *Display) FillRect(x0, y0, x1, y1 int16, c color.RGBA) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for row := int(y0) / dose.LineHeight; row <= int(y1)/dose.LineHeight && row < Rows; row++ {
		if row >= 0 {
			d.back.Inverted[row] = true
		}
	}
}

// Present implements dose.Display.
func (d *Display) Present() error {
	d.mu.Lock()
	d.last = d.back
	msg, send := d.last, d.send
	d.mu.Unlock()

	if send != nil {
		send(msg)
	}
	return nil
}

// Last returns the most recently presented frame.
func (d *Display) Last() PanelMsg {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.last
}
