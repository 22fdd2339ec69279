// Package dose implements the dose accumulation core: a sampling loop that
// integrates sensor readings and drives the display and alarm, and an input
// loop that handles the reset button and target entry. Both loops share one
// Session.
package dose

import (
	"image/color"
	"time"

	"github.com/itohio/uvdose/pkg/keypad"
)

// Sensor reads the instantaneous intensity in raw counts.
type Sensor interface {
	Read() (uint32, error)
}

// Display draws monochrome text frames. Coordinates are in pixels of a 128x64
// panel.
type Display interface {
	Clear()
	DrawText(text string, x, y int16, c color.RGBA)
	FillRect(x0, y0, x1, y1 int16, c color.RGBA)
	Present() error
}

// Buzzer switches the audible alarm.
type Buzzer interface {
	Buzz(on bool) error
}

// Button is a level input; true while pressed.
type Button interface {
	Get() bool
}

// Keypad reports one key per physical press.
type Keypad interface {
	PollEdge() keypad.Key
}

var (
	White = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	Black = color.RGBA{A: 255}
)

// Clock is a minutes:seconds pair for display.
type Clock struct {
	Minutes int
	Seconds int
}

// Frame is an immutable snapshot of one sampling tick.
type Frame struct {
	Time      time.Time
	Raw       uint32
	Instant   float32 // Scaled reading of this tick
	Total     float32
	Target    uint32
	Average   float32
	Elapsed   Clock
	Remaining Clock
	Alarm     bool  // Target reached
	Flash     bool  // Current flash phase while Alarm is set
	Fault     error // Sensor read failed this tick; nothing was accumulated
}
