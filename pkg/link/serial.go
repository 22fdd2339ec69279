// Package link reads the raw sensor stream the firmware prints over USB
// serial and exposes it as a dose sensor.
package link

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.bug.st/serial"

	"github.com/itohio/uvdose/pkg/dose"
	"github.com/itohio/uvdose/pkg/sample"
)

const (
	// DefaultBaudRate is the USB CDC baud rate the firmware uses.
	DefaultBaudRate = 115200
	// DefaultBufferSize is the default size for the samples channel buffer.
	DefaultBufferSize = 100
	// DefaultTimeout is how long Read waits for a fresh line.
	DefaultTimeout = 250 * time.Millisecond
)

var (
	// ErrNotConnected is returned by Read before Connect or after Close.
	ErrNotConnected = errors.New("link: not connected")
	// ErrNoSample is returned by Read when no fresh line arrived in time.
	ErrNoSample = errors.New("link: no fresh sample")
	// ErrStreamEnded is returned by Read once the port stopped delivering
	// lines and every queued sample has been consumed.
	ErrStreamEnded = errors.New("link: stream ended")
)

// Port represents a serial port.
type Port struct {
	Name        string
	Description string
}

// Serial is a sensor bridged over a serial port. Every streamed reading is
// returned by Read at most once.
type Serial struct {
	port     string
	baudRate int

	conn      serial.Port
	samples   chan sample.Sample
	mu        sync.RWMutex
	ctx       context.Context
	cancel    context.CancelFunc
	connected bool
	timeout   time.Duration
	streamErr error
}

var _ dose.Sensor = (*Serial)(nil)

// New creates a bridge for port. A zero baud rate selects DefaultBaudRate.
func New(port string, baudRate int) *Serial {
	if baudRate == 0 {
		baudRate = DefaultBaudRate
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Serial{
		port:     port,
		baudRate: baudRate,
		samples:  make(chan sample.Sample, DefaultBufferSize),
		ctx:      ctx,
		cancel:   cancel,
		timeout:  DefaultTimeout,
	}
}

// Ports returns a list of available serial ports.
func Ports() ([]Port, error) {
	ports, err := serial.GetPortsList()
	if err != nil {
		return nil, fmt.Errorf("failed to list serial ports: %w", err)
	}

	result := make([]Port, 0, len(ports))
	for _, name := range ports {
		result = append(result, Port{Name: name, Description: name})
	}
	return result, nil
}

// SetTimeout sets how long Read waits for a fresh line. Non-positive values
// make Read return immediately.
func (d *Serial) SetTimeout(timeout time.Duration) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.timeout = timeout
}

// Connect opens the serial port and starts reading samples.
func (d *Serial) Connect() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.connected {
		return fmt.Errorf("already connected")
	}

	port, err := serial.Open(d.port, &serial.Mode{BaudRate: d.baudRate})
	if err != nil {
		return fmt.Errorf("failed to open serial port %s: %w", d.port, err)
	}

	d.conn = port
	d.connected = true
	d.streamErr = nil

	go d.readSamples(port)

	return nil
}

// Close closes the port and stops reading samples.
func (d *Serial) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.connected {
		return nil
	}

	d.cancel()

	if d.conn != nil {
		if err := d.conn.Close(); err != nil {
			log.Printf("Error closing serial port: %v", err)
		}
		d.conn = nil
	}

	d.connected = false
	close(d.samples)

	return nil
}

// IsConnected returns whether the port is open.
func (d *Serial) IsConnected() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.connected
}

// Read implements dose.Sensor. It returns the newest reading not returned
// before, waiting up to the timeout for one. Older queued readings are
// discarded.
func (d *Serial) Read() (uint32, error) {
	d.mu.RLock()
	connected, timeout := d.connected, d.timeout
	d.mu.RUnlock()

	if !connected {
		return 0, ErrNotConnected
	}

	s, ok, open := d.drain()
	if !open {
		return 0, ErrNotConnected
	}
	if ok {
		return s.Raw, nil
	}
	if err := d.ended(); err != nil {
		return 0, err
	}
	if timeout <= 0 {
		return 0, ErrNoSample
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case s, open := <-d.samples:
		if !open {
			return 0, ErrNotConnected
		}
		if newer, ok, _ := d.drain(); ok {
			s = newer
		}
		return s.Raw, nil
	case <-timer.C:
		if err := d.ended(); err != nil {
			return 0, err
		}
		return 0, ErrNoSample
	}
}

// drain empties the queue without blocking and returns the newest sample.
// open is false once Close closed the queue.
func (d *Serial) drain() (s sample.Sample, ok, open bool) {
	for {
		select {
		case next, more := <-d.samples:
			if !more {
				return s, ok, false
			}
			s, ok = next, true
		default:
			return s, ok, true
		}
	}
}

func (d *Serial) ended() error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.streamErr
}

// readSamples reads lines from r until EOF or Close. When it stops, Read
// fails with ErrStreamEnded once the queue is empty.
func (d *Serial) readSamples(r io.Reader) {
	var cause error
	defer func() {
		if p := recover(); p != nil {
			log.Printf("Panic in readSamples: %v", p)
			cause = fmt.Errorf("panic: %v", p)
		}
		d.end(cause)
	}()

	scanner := bufio.NewScanner(r)
	for {
		select {
		case <-d.ctx.Done():
			return
		default:
			if !scanner.Scan() {
				if err := scanner.Err(); err != nil && !errors.Is(err, io.EOF) {
					log.Printf("Error reading from serial port: %v", err)
					cause = err
				}
				return
			}

			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				continue
			}

			s, err := parseLine(line)
			if err != nil {
				log.Printf("Failed to parse line '%s': %v", line, err)
				continue
			}

			d.store(s)
		}
	}
}

func (d *Serial) end(cause error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if cause != nil {
		d.streamErr = fmt.Errorf("%w: %w", ErrStreamEnded, cause)
	} else {
		d.streamErr = ErrStreamEnded
	}
}

// store queues s, dropping the oldest queued sample when full.
func (d *Serial) store(s sample.Sample) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.connected {
		return
	}

	select {
	case d.samples <- s:
		return
	default:
	}
	select {
	case <-d.samples:
	default:
	}
	select {
	case d.samples <- s:
	default:
	}
}

// parseLine parses one line printed by the firmware.
// Format: unix_micros,raw
// Example: 1717243200000000,3072
func parseLine(line string) (sample.Sample, error) {
	parts := strings.Split(line, ",")
	if len(parts) != 2 {
		return sample.Sample{}, fmt.Errorf("invalid line format: expected 2 comma-separated values, got %d", len(parts))
	}

	micros, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return sample.Sample{}, fmt.Errorf("invalid timestamp: %w", err)
	}

	raw, err := strconv.ParseUint(parts[1], 10, 32)
	if err != nil {
		return sample.Sample{}, fmt.Errorf("invalid reading: %w", err)
	}

	return sample.Sample{
		Timestamp: time.UnixMicro(micros),
		Raw:       uint32(raw),
	}, nil
}
