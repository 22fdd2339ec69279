// Package board runs the instrument on a Linux single-board computer through
// periph.io: the LTR390 on an I2C bus, the keypad and reset button on GPIO and
// the buzzer on a PWM capable pin.
package board

import (
	"fmt"
	"log"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/host/v3"

	"github.com/itohio/uvdose/pkg/config"
	"github.com/itohio/uvdose/pkg/dose"
	"github.com/itohio/uvdose/pkg/keypad"
	"github.com/itohio/uvdose/pkg/ltr390"
)

// PinLookup resolves a pin name. gpioreg.ByName is the production lookup.
type PinLookup func(name string) gpio.PinIO

// Board holds the opened peripherals.
type Board struct {
	bus    i2c.BusCloser
	Sensor *ltr390.Dev
	Keypad *keypad.Matrix
	Button *Button
	Buzzer *Buzzer
}

// Open initializes periph host drivers, opens the configured I2C bus and
// claims the configured pins.
func Open(cfg *config.Config) (*Board, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize periph host: %w", err)
	}

	bus, err := i2creg.Open(cfg.Board.I2C)
	if err != nil {
		return nil, fmt.Errorf("failed to open i2c bus %q: %w", cfg.Board.I2C, err)
	}

	b, err := New(cfg, bus, gpioreg.ByName)
	if err != nil {
		bus.Close()
		return nil, err
	}
	b.bus = bus
	return b, nil
}

// New configures the sensor on bus and claims pins through lookup.
func New(cfg *config.Config, bus i2c.Bus, lookup PinLookup) (*Board, error) {
	if len(cfg.Board.Rows) != keypad.Rows || len(cfg.Board.Cols) != keypad.Cols {
		return nil, fmt.Errorf("keypad needs %d row and %d column pins, got %d and %d",
			keypad.Rows, keypad.Cols, len(cfg.Board.Rows), len(cfg.Board.Cols))
	}

	sensorCfg, err := ltr390.ParseConfig(cfg.Sensor.Mode, cfg.Sensor.Gain, cfg.Sensor.Resolution, cfg.Sensor.Rate)
	if err != nil {
		return nil, fmt.Errorf("invalid sensor config: %w", err)
	}
	sensor := ltr390.New(bus, cfg.Sensor.Address)
	if err := sensor.Configure(sensorCfg); err != nil {
		return nil, fmt.Errorf("failed to configure sensor: %w", err)
	}

	find := func(name string) (gpio.PinIO, error) {
		p := lookup(name)
		if p == nil {
			return nil, fmt.Errorf("unknown pin %q", name)
		}
		return p, nil
	}

	var rows [keypad.Rows]keypad.Output
	for i, name := range cfg.Board.Rows {
		p, err := find(name)
		if err != nil {
			return nil, err
		}
		rows[i] = &outPin{p}
	}

	var cols [keypad.Cols]keypad.Input
	for i, name := range cfg.Board.Cols {
		p, err := find(name)
		if err != nil {
			return nil, err
		}
		if err := p.In(gpio.PullDown, gpio.NoEdge); err != nil {
			return nil, fmt.Errorf("failed to configure column %s: %w", name, err)
		}
		cols[i] = &inPin{p}
	}

	btn, err := find(cfg.Board.Button)
	if err != nil {
		return nil, err
	}
	if err := btn.In(gpio.PullDown, gpio.NoEdge); err != nil {
		return nil, fmt.Errorf("failed to configure button %s: %w", cfg.Board.Button, err)
	}

	bz, err := find(cfg.Board.Buzzer)
	if err != nil {
		return nil, err
	}

	return &Board{
		Sensor: sensor,
		Keypad: keypad.NewMatrix(rows, cols, keypad.DefaultLayout),
		Button: &Button{pin: btn},
		Buzzer: NewBuzzer(bz, cfg.Alarm.Frequency, cfg.Alarm.Duty),
	}, nil
}

// Hardware returns the peripherals as seen by dose.New, rendering to display.
func (b *Board) Hardware(cfg *config.Config, display dose.Display) dose.Hardware {
	return dose.Hardware{
		Sensor:  b.Sensor,
		Display: display,
		Buzzer:  b.Buzzer,
		Button:  b.Button,
		Keypad:  dose.NewKeypad(cfg, b.Keypad),
	}
}

// Close silences the buzzer and releases the bus.
func (b *Board) Close() error {
	if err := b.Buzzer.Buzz(false); err != nil {
		log.Printf("Failed to silence buzzer: %v", err)
	}
	if b.bus == nil {
		return nil
	}
	return b.bus.Close()
}

// Button is an active-high push button with a pull-down.
type Button struct {
	pin gpio.PinIn
}

// Get implements dose.Button.
func (b *Button) Get() bool {
	return b.pin.Read() == gpio.High
}

// Buzzer drives a passive buzzer with PWM.
type Buzzer struct {
	pin  gpio.PinOut
	freq physic.Frequency
	duty gpio.Duty
}

// NewBuzzer creates a buzzer sounding at hz with duty cycle 0..1.
func NewBuzzer(pin gpio.PinOut, hz, duty float64) *Buzzer {
	if duty <= 0 || duty > 1 {
		duty = 0.5
	}
	return &Buzzer{
		pin:  pin,
		freq: physic.Frequency(hz * float64(physic.Hertz)),
		duty: gpio.Duty(duty * float64(gpio.DutyMax)),
	}
}

// Buzz implements dose.Buzzer.
func (b *Buzzer) Buzz(on bool) error {
	if !on {
		return b.pin.Out(gpio.Low)
	}
	return b.pin.PWM(b.duty, b.freq)
}

type outPin struct {
	p gpio.PinOut
}

func (o *outPin) High() {
	if err := o.p.Out(gpio.High); err != nil {
		log.Printf("Failed to drive %s high: %v", o.p, err)
	}
}

func (o *outPin) Low() {
	if err := o.p.Out(gpio.Low); err != nil {
		log.Printf("Failed to drive %s low: %v", o.p, err)
	}
}

type inPin struct {
	p gpio.PinIn
}

func (i *inPin) Get() bool {
	return i.p.Read() == gpio.High
}
