// Package ltr390 drives the DFRobot SEN0540 LTR390 UV module.
//
// The DFRobot module is not register compatible with a bare LTR390. Register
// writes are addressed at reg+5 and always carry two bytes, the second being
// zero. Reads return four bytes little-endian.
package ltr390

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// DefaultAddress is the module's I2C address.
const DefaultAddress uint16 = 0x1C

// Input registers.
const (
	regALSDataLow = 0x07
	regUVSDataLow = 0x09
)

// Holding registers.
const (
	regGain        = 0x06
	regMeasureRate = 0x0D
	regMainCtrl    = 0x0E

	writeOffset = 5
)

// Mode selects ambient light or UV measurement.
type Mode uint8

const (
	ModeALS Mode = 0x02
	ModeUVS Mode = 0x0A
)

// Gain is the analog gain setting.
type Gain uint8

const (
	Gain1 Gain = iota
	Gain3
	Gain6
	Gain9
	Gain18
)

// Resolution is the ADC resolution. Higher resolution needs a longer rate.
type Resolution uint8

const (
	Resolution20Bit Resolution = 0  // min 400ms
	Resolution19Bit Resolution = 16 // min 200ms
	Resolution18Bit Resolution = 32 // min 100ms
	Resolution17Bit Resolution = 48 // min 50ms
	Resolution16Bit Resolution = 64 // min 25ms
)

// Rate is the measurement repeat rate.
type Rate uint8

const (
	Rate25ms Rate = iota
	Rate50ms
	Rate100ms
	Rate200ms
	Rate500ms
	Rate1000ms
	Rate2000ms
)

// ErrInvalidSetting is returned for settings the module does not support.
var ErrInvalidSetting = errors.New("ltr390: invalid setting")

// Bus is the minimal I2C transaction interface. machine.I2C (TinyGo) and
// periph i2c.Bus both satisfy it.
type Bus interface {
	Tx(addr uint16, w, r []byte) error
}

// Config holds the module settings applied by Configure.
type Config struct {
	Mode       Mode
	Gain       Gain
	Resolution Resolution
	Rate       Rate
}

// DefaultConfig is UV mode, gain 6, 18 bit, 200ms.
var DefaultConfig = Config{
	Mode:       ModeUVS,
	Gain:       Gain6,
	Resolution: Resolution18Bit,
	Rate:       Rate200ms,
}

// Dev is an LTR390 module on an I2C bus.
type Dev struct {
	bus  Bus
	addr uint16
	mode Mode
	rx   [4]byte
	tx   [3]byte
}

// New creates a device. Call Configure before reading.
func New(bus Bus, addr uint16) *Dev {
	if addr == 0 {
		addr = DefaultAddress
	}
	return &Dev{bus: bus, addr: addr, mode: ModeUVS}
}

// Configure applies mode, measure rate and gain, in that order.
func (d *Dev) Configure(cfg Config) error {
	if err := d.SetMode(cfg.Mode); err != nil {
		return err
	}
	if err := d.SetMeasureRate(cfg.Resolution, cfg.Rate); err != nil {
		return err
	}
	return d.SetGain(cfg.Gain)
}

// SetMode switches between ALS and UVS measurement.
func (d *Dev) SetMode(m Mode) error {
	if m != ModeALS && m != ModeUVS {
		return fmt.Errorf("%w: mode 0x%02x", ErrInvalidSetting, uint8(m))
	}
	if err := d.write(regMainCtrl, uint8(m)); err != nil {
		return err
	}
	d.mode = m
	return nil
}

// SetMeasureRate sets ADC resolution and repeat rate.
func (d *Dev) SetMeasureRate(res Resolution, rate Rate) error {
	if res > Resolution16Bit || res%16 != 0 || rate > Rate2000ms {
		return fmt.Errorf("%w: resolution %d rate %d", ErrInvalidSetting, res, rate)
	}
	return d.write(regMeasureRate, uint8(res)+uint8(rate))
}

// SetGain sets the analog gain.
func (d *Dev) SetGain(g Gain) error {
	if g > Gain18 {
		return fmt.Errorf("%w: gain %d", ErrInvalidSetting, g)
	}
	return d.write(regGain, uint8(g))
}

// Mode returns the active measurement mode.
func (d *Dev) Mode() Mode {
	return d.mode
}

// UVS reads the raw UV intensity.
func (d *Dev) UVS() (uint32, error) {
	return d.read(regUVSDataLow)
}

// ALS reads the raw ambient light intensity.
func (d *Dev) ALS() (uint32, error) {
	return d.read(regALSDataLow)
}

// Read reads the raw intensity for the active mode.
func (d *Dev) Read() (uint32, error) {
	if d.mode == ModeALS {
		return d.ALS()
	}
	return d.UVS()
}

func (d *Dev) write(reg, value uint8) error {
	d.tx = [3]byte{reg + writeOffset, value, 0}
	if err := d.bus.Tx(d.addr, d.tx[:], nil); err != nil {
		return fmt.Errorf("ltr390: write 0x%02x: %w", reg, err)
	}
	return nil
}

func (d *Dev) read(reg uint8) (uint32, error) {
	d.tx[0] = reg
	if err := d.bus.Tx(d.addr, d.tx[:1], d.rx[:]); err != nil {
		return 0, fmt.Errorf("ltr390: read 0x%02x: %w", reg, err)
	}
	return uint32(d.rx[0]) | uint32(d.rx[1])<<8 | uint32(d.rx[2])<<16 | uint32(d.rx[3])<<24, nil
}

// ParseConfig converts human settings (mode name, gain factor, resolution in
// bits, measurement rate) to module settings.
func ParseConfig(mode string, gain, bits int, rate time.Duration) (Config, error) {
	var cfg Config

	switch strings.ToLower(mode) {
	case "uvs", "uv":
		cfg.Mode = ModeUVS
	case "als", "light":
		cfg.Mode = ModeALS
	default:
		return cfg, fmt.Errorf("%w: mode %q", ErrInvalidSetting, mode)
	}

	switch gain {
	case 1:
		cfg.Gain = Gain1
	case 3:
		cfg.Gain = Gain3
	case 6:
		cfg.Gain = Gain6
	case 9:
		cfg.Gain = Gain9
	case 18:
		cfg.Gain = Gain18
	default:
		return cfg, fmt.Errorf("%w: gain %d", ErrInvalidSetting, gain)
	}

	if bits < 16 || bits > 20 {
		return cfg, fmt.Errorf("%w: resolution %d bits", ErrInvalidSetting, bits)
	}
	cfg.Resolution = Resolution((20 - bits) * 16)

	rates := [...]time.Duration{
		25 * time.Millisecond,
		50 * time.Millisecond,
		100 * time.Millisecond,
		200 * time.Millisecond,
		500 * time.Millisecond,
		time.Second,
		2 * time.Second,
	}
	found := false
	for i, r := range rates {
		if r == rate {
			cfg.Rate = Rate(i)
			found = true
			break
		}
	}
	if !found {
		return cfg, fmt.Errorf("%w: rate %v", ErrInvalidSetting, rate)
	}

	return cfg, nil
}
