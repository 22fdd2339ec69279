package sim

import (
	"sync"
	"time"

	"github.com/itohio/uvdose/pkg/config"
	"github.com/itohio/uvdose/pkg/dose"
)

// Button is a momentary push button.
type Button struct {
	mu      sync.Mutex
	hold    time.Duration
	now     func() time.Time
	pressed bool
	until   time.Time
}

// NewButton creates a button. Press holds it down for hold; zero means until
// Release.
func NewButton(hold time.Duration) *Button {
	return &Button{hold: hold, now: time.Now}
}

// Press pushes the button.
func (b *Button) Press() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pressed = true
	if b.hold > 0 {
		b.until = b.now().Add(b.hold)
	}
}

// Release lets the button go.
func (b *Button) Release() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pressed = false
}

// Get implements dose.Button.
func (b *Button) Get() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.pressed && b.hold > 0 && !b.now().Before(b.until) {
		b.pressed = false
	}
	return b.pressed
}

// Buzzer records the buzzer state.
type Buzzer struct {
	mu       sync.Mutex
	on       bool
	switches int
	onChange func(bool)
}

// OnChange registers a callback invoked whenever the buzzer turns on or off.
func (b *Buzzer) OnChange(cb func(on bool)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.onChange = cb
}

// Buzz implements dose.Buzzer.
func (b *Buzzer) Buzz(on bool) error {
	b.mu.Lock()
	changed := b.on != on
	b.on = on
	if changed {
		b.switches++
	}
	cb := b.onChange
	b.mu.Unlock()

	if changed && cb != nil {
		cb(on)
	}
	return nil
}

// On reports whether the buzzer is sounding.
func (b *Buzzer) On() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.on
}

// Switches returns how many times the buzzer changed state.
func (b *Buzzer) Switches() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.switches
}

// Board bundles a full set of simulated peripherals.
type Board struct {
	Sensor *Sensor
	Keypad *Keypad
	Button *Button
	Buzzer *Buzzer
}

// NewBoard creates simulated hardware from cfg. The keypad column is broken
// unless cfg.Input.Repaired is set.
func NewBoard(cfg *config.Config) *Board {
	return &Board{
		Sensor: NewSensor(cfg),
		Keypad: NewKeypad(cfg.Sim.KeyHold, !cfg.Input.Repaired),
		Button: NewButton(cfg.Sim.KeyHold),
		Buzzer: &Buzzer{},
	}
}

// Hardware returns the peripherals as seen by dose.New, rendering to display.
func (b *Board) Hardware(cfg *config.Config, display dose.Display) dose.Hardware {
	return dose.Hardware{
		Sensor:  b.Sensor,
		Display: display,
		Buzzer:  b.Buzzer,
		Button:  b.Button,
		Keypad:  dose.NewKeypad(cfg, b.Keypad.Matrix()),
	}
}
