package sample

import (
	"time"
)

// Sample is a timestamped raw sensor reading.
type Sample struct {
	Timestamp time.Time
	Raw       uint32 // Raw sensor counts
}

// Converter turns raw counts into engineering units.
type Converter func(raw uint32) float32

// NewConverter creates a converter that divides raw counts by divisor.
// A non-positive divisor leaves the counts unscaled.
func NewConverter(divisor float32) Converter {
	if divisor <= 0 {
		divisor = 1
	}
	return func(raw uint32) float32 {
		return float32(raw) / divisor
	}
}
