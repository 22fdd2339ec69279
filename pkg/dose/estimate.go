package dose

import (
	"time"

	"github.com/chewxy/math32"
)

// Estimator computes the time-to-target shown on the display.
type Estimator struct {
	TicksPerSecond float32 // Sampling ticks per second
	MinRate        float32 // Smoothed rate below which the ETA is unknown
	MaxMinutes     int     // Minutes clamp, also the unknown sentinel
}

// Unknown is the remaining time shown when the rate is too low to
// extrapolate.
func (e Estimator) Unknown() Clock {
	return Clock{Minutes: e.MaxMinutes, Seconds: 99}
}

// Remaining estimates the time until total reaches target at the smoothed
// per-tick rate avg.
func (e Estimator) Remaining(total float32, target uint32, avg float32) Clock {
	if target == 0 || total >= float32(target) {
		return Clock{}
	}
	if avg < e.MinRate || avg <= 0 {
		return e.Unknown()
	}

	tps := e.TicksPerSecond
	if tps <= 0 {
		tps = 1
	}
	eta := (float32(target) - total) / avg / tps

	// Stay in float32 until the values are small: int is 32 bits on the
	// firmware and eta can exceed it.
	minutes := e.MaxMinutes
	if m := math32.Floor(eta / 60); m < float32(e.MaxMinutes) {
		minutes = int(m)
	}
	seconds := int(math32.Mod(math32.Floor(eta), 60))

	return Clock{Minutes: minutes, Seconds: seconds}
}

// Elapsed splits the whole seconds between start and now.
func Elapsed(start, now time.Time) Clock {
	secs := int(now.Sub(start) / time.Second)
	if secs < 0 {
		secs = 0
	}
	return Clock{Minutes: secs / 60, Seconds: secs % 60}
}
