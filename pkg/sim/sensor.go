// Package sim provides simulated instrument hardware: a UV sensor, a keypad
// matrix with the broken middle column reproduced on the wires, a reset button
// and a buzzer.
package sim

import (
	"errors"
	"math/rand"
	"sync"
	"time"

	"github.com/chewxy/math32"

	"github.com/itohio/uvdose/pkg/config"
)

// ErrInjected is returned by reads failed with FailNext.
var ErrInjected = errors.New("sim: injected sensor failure")

// maxRaw is the 20 bit ceiling of the sensor counter.
const maxRaw = 1<<20 - 1

// Sensor simulates a UV sensor under slowly drifting light.
type Sensor struct {
	mu       sync.Mutex
	cfg      config.SimConfig
	divisor  float32
	now      func() time.Time
	start    time.Time
	rnd      *rand.Rand
	failNext int
	reads    int
}

// NewSensor creates a simulated sensor. Level, swing and noise are in
// engineering units; Read returns them scaled back to raw counts.
func NewSensor(cfg *config.Config) *Sensor {
	return NewSensorWithClock(cfg, time.Now)
}

// NewSensorWithClock creates a simulated sensor driven by clock.
func NewSensorWithClock(cfg *config.Config, clock func() time.Time) *Sensor {
	divisor := cfg.Sampling.Divisor
	if divisor <= 0 {
		divisor = 1
	}
	return &Sensor{
		cfg:     cfg.Sim,
		divisor: divisor,
		now:     clock,
		start:   clock(),
		rnd:     rand.New(rand.NewSource(1)),
	}
}

// Read returns the current raw intensity.
func (s *Sensor) Read() (uint32, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.reads++
	if s.failNext > 0 {
		s.failNext--
		return 0, ErrInjected
	}

	v := s.level(s.now().Sub(s.start))
	raw := v * s.divisor
	if raw < 0 {
		raw = 0
	} else if raw > maxRaw {
		raw = maxRaw
	}
	return uint32(raw), nil
}

// level is the light intensity at t since start.
func (s *Sensor) level(t time.Duration) float32 {
	v := s.cfg.Level
	if s.cfg.Period > 0 {
		phase := float32(t) / float32(s.cfg.Period)
		v += s.cfg.Swing * math32.Sin(2*math32.Pi*phase)
	}
	if s.cfg.NoiseLevel > 0 {
		v += (s.rnd.Float32()*2 - 1) * s.cfg.NoiseLevel
	}
	return v
}

// SetLevel changes the mean intensity.
func (s *Sensor) SetLevel(v float32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg.Level = v
}

// Level returns the mean intensity.
func (s *Sensor) Level() float32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg.Level
}

// FailNext makes the next n reads fail with ErrInjected.
func (s *Sensor) FailNext(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failNext = n
}

// Reads returns how many reads were attempted.
func (s *Sensor) Reads() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reads
}
