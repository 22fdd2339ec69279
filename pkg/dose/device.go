package dose

import (
	"context"
	"fmt"
	"log"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/itohio/uvdose/pkg/config"
	"github.com/itohio/uvdose/pkg/keypad"
)

// Hardware bundles the peripherals the loops drive.
type Hardware struct {
	Sensor  Sensor
	Display Display
	Buzzer  Buzzer
	Button  Button
	Keypad  Keypad
}

// Device wires the session, sampling loop and input loop together.
type Device struct {
	session *Session
	sampler *Sampler
	input   *Input
	clock   func() time.Time
}

// Option configures a Device.
type Option func(*Device)

// WithClock replaces time.Now, mostly for tests.
func WithClock(clock func() time.Time) Option {
	return func(d *Device) {
		d.clock = clock
	}
}

// New creates a device. Sensor reads are retried per cfg.Sensor; the average
// is seeded from one initial read, or zero if that read fails.
func New(cfg *config.Config, hw Hardware, opts ...Option) (*Device, error) {
	if hw.Sensor == nil {
		return nil, fmt.Errorf("dose: sensor is required")
	}

	d := &Device{clock: time.Now}
	for _, opt := range opts {
		opt(d)
	}

	sensor := Sensor(NewRetrySensor(hw.Sensor, cfg.Sensor.Retries, cfg.Sensor.RetryInitial))

	var seed float32
	if raw, err := sensor.Read(); err != nil {
		log.Printf("Initial sensor read failed, seeding average with 0: %v", err)
	} else if cfg.Sampling.Divisor > 0 {
		seed = float32(raw) / cfg.Sampling.Divisor
	}

	d.session = NewSession(d.clock(), cfg.Sampling.Alpha, seed, cfg.Input.MaxDigits)
	d.sampler = NewSampler(cfg, d.session, sensor, hw.Display, hw.Buzzer)
	d.input = NewInput(cfg, d.session, hw.Button, hw.Keypad, hw.Buzzer)

	return d, nil
}

// NewKeypad builds the decoder for a matrix, compensating for the broken
// middle column unless cfg.Input.Repaired is set.
func NewKeypad(cfg *config.Config, src keypad.Source) *keypad.Decoder {
	comp := keypad.BrokenMiddleColumn
	if cfg.Input.Repaired {
		comp = keypad.NoCompensation
	}
	return keypad.NewDecoder(src, comp)
}

// Session returns the shared session.
func (d *Device) Session() *Session {
	return d.session
}

// Sampler returns the sampling loop.
func (d *Device) Sampler() *Sampler {
	return d.sampler
}

// Input returns the input loop.
func (d *Device) Input() *Input {
	return d.input
}

// OnFrame registers a callback invoked after every sampling tick.
func (d *Device) OnFrame(cb func(Frame)) {
	d.sampler.OnFrame(cb)
}

// Run runs both loops until ctx is cancelled.
func (d *Device) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return d.sampler.Run(ctx, d.clock)
	})
	g.Go(func() error {
		return d.input.Run(ctx, d.clock)
	})
	return g.Wait()
}
