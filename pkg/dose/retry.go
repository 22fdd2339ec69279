package dose

import (
	"context"
	"log"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// RetrySensor retries failed reads with exponential backoff.
type RetrySensor struct {
	sensor  Sensor
	tries   uint
	initial time.Duration
}

var _ Sensor = (*RetrySensor)(nil)

// NewRetrySensor wraps a sensor so each Read makes up to tries attempts,
// waiting initial, then roughly twice as long, between them.
func NewRetrySensor(sensor Sensor, tries int, initial time.Duration) *RetrySensor {
	if tries < 1 {
		tries = 1
	}
	if initial <= 0 {
		initial = 10 * time.Millisecond
	}
	return &RetrySensor{sensor: sensor, tries: uint(tries), initial: initial}
}

// Read implements Sensor.
func (r *RetrySensor) Read() (uint32, error) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = r.initial
	b.MaxInterval = 8 * r.initial

	return backoff.Retry(context.Background(), r.sensor.Read,
		backoff.WithBackOff(b),
		backoff.WithMaxTries(r.tries),
		backoff.WithNotify(func(err error, next time.Duration) {
			log.Printf("Sensor read failed, retrying in %v: %v", next, err)
		}),
	)
}
