package dose

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/itohio/uvdose/pkg/config"
	"github.com/itohio/uvdose/pkg/sample"
)

// Sampler is the sampling loop: read, accumulate, smooth, estimate, alarm,
// render.
type Sampler struct {
	period   time.Duration
	session  *Session
	sensor   Sensor
	display  Display
	buzzer   Buzzer
	convert  sample.Converter
	estimate Estimator

	callbacks []func(Frame)
	cbMu      sync.RWMutex
}

// NewSampler creates a sampling loop over a session.
func NewSampler(cfg *config.Config, session *Session, sensor Sensor, display Display, buzzer Buzzer) *Sampler {
	return &Sampler{
		period:  cfg.Sampling.Period,
		session: session,
		sensor:  sensor,
		display: display,
		buzzer:  buzzer,
		convert: sample.NewConverter(cfg.Sampling.Divisor),
		estimate: Estimator{
			TicksPerSecond: cfg.TicksPerSecond(),
			MinRate:        cfg.Sampling.MinRate,
			MaxMinutes:     cfg.Sampling.MaxMinutes,
		},
	}
}

// OnFrame registers a callback invoked after every tick with the rendered
// frame. Callbacks run on the sampling goroutine and should return quickly.
func (s *Sampler) OnFrame(cb func(Frame)) {
	s.cbMu.Lock()
	defer s.cbMu.Unlock()
	s.callbacks = append(s.callbacks, cb)
}

// Tick runs one sampling step at time now.
func (s *Sampler) Tick(now time.Time) Frame {
	raw, err := s.sensor.Read()

	s.session.mu.Lock()
	frame := s.update(now, raw, err)
	s.session.mu.Unlock()

	if frame.Fault != nil {
		log.Printf("Sensor read failed: %v", frame.Fault)
	}
	if s.display != nil {
		if err := Render(s.display, frame); err != nil {
			log.Printf("Failed to present frame: %v", err)
		}
	}
	s.notify(frame)

	return frame
}

// update mutates the session for one tick. Caller holds session.mu.
func (s *Sampler) update(now time.Time, raw uint32, readErr error) Frame {
	ss := s.session
	frame := Frame{Time: now, Raw: raw, Fault: readErr}

	if readErr == nil {
		frame.Instant = s.convert(raw)
		ss.accumulate(frame.Instant)
	} else {
		frame.Raw = 0
	}

	frame.Total = ss.total
	frame.Target = ss.target
	frame.Average = ss.avg.Value()
	frame.Elapsed = Elapsed(ss.start, now)
	frame.Remaining = s.estimate.Remaining(ss.total, ss.target, frame.Average)

	// The flash follows the loop cadence: one phase per tick. The phase
	// flips before it drives the outputs, so the first alarm tick is lit and
	// sounding rather than dark.
	if ss.reached() {
		ss.alarm = !ss.alarm
		frame.Alarm = true
	} else {
		ss.alarm = false
	}
	frame.Flash = ss.alarm
	s.buzz(ss.alarm)

	return frame
}

func (s *Sampler) buzz(on bool) {
	if s.buzzer == nil {
		return
	}
	if err := s.buzzer.Buzz(on); err != nil {
		log.Printf("Failed to switch buzzer: %v", err)
	}
}

func (s *Sampler) notify(frame Frame) {
	s.cbMu.RLock()
	callbacks := make([]func(Frame), len(s.callbacks))
	copy(callbacks, s.callbacks)
	s.cbMu.RUnlock()

	for _, cb := range callbacks {
		if cb != nil {
			cb(frame)
		}
	}
}

// Run ticks immediately and then once per period until ctx is cancelled.
// The period is fixed; time spent in a tick does not stretch it.
func (s *Sampler) Run(ctx context.Context, clock func() time.Time) error {
	return runPeriodic(ctx, s.period, clock, func(now time.Time) { s.Tick(now) })
}

func runPeriodic(ctx context.Context, period time.Duration, clock func() time.Time, tick func(time.Time)) error {
	if clock == nil {
		clock = time.Now
	}
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	tick(clock())
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			tick(clock())
		}
	}
}
