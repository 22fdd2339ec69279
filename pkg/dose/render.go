package dose

import (
	"fmt"
)

// Panel layout.
const (
	LineHeight = 10
	AlarmTop   = 50
	PanelRight = 127
	PanelBot   = 63
)

// Lines formats the five text rows of a frame.
func (f Frame) Lines() [5]string {
	instant := fmt.Sprintf("Instant: %7.1f", f.Instant)
	if f.Fault != nil {
		instant = "Sensor:    ERROR"
	}
	return [5]string{
		instant,
		fmt.Sprintf("Total: %9.0f", f.Total),
		fmt.Sprintf("Target: %d", f.Target),
		fmt.Sprintf("Elapsed: %d:%02d", f.Elapsed.Minutes, f.Elapsed.Seconds),
		fmt.Sprintf("Remain: %d:%02d", f.Remaining.Minutes, f.Remaining.Seconds),
	}
}

// Render draws a frame and presents it.
func Render(d Display, f Frame) error {
	d.Clear()
	for i, line := range f.Lines() {
		d.DrawText(line, 0, int16(i*LineHeight), White)
	}
	if f.Alarm && f.Flash {
		d.FillRect(0, AlarmTop, PanelRight, PanelBot, White)
	}
	return d.Present()
}
