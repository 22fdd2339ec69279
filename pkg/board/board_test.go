package board

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"
	"periph.io/x/conn/v3/i2c/i2ctest"
	"periph.io/x/conn/v3/physic"

	"github.com/itohio/uvdose/pkg/config"
	"github.com/itohio/uvdose/pkg/keypad"
)

// configureOps is the bus traffic of the default sensor configuration.
var configureOps = []i2ctest.IO{
	{Addr: 0x1C, W: []byte{0x0E + 5, 0x0A, 0}}, // UVS mode
	{Addr: 0x1C, W: []byte{0x0D + 5, 32 + 3, 0}}, // 18 bit, 200ms
	{Addr: 0x1C, W: []byte{0x06 + 5, 2, 0}},      // gain 6
}

type pins map[string]*gpiotest.Pin

func newPins(cfg *config.Config) pins {
	p := pins{}
	names := append(append([]string{}, cfg.Board.Rows...), cfg.Board.Cols...)
	names = append(names, cfg.Board.Button, cfg.Board.Buzzer)
	for i, n := range names {
		p[n] = &gpiotest.Pin{N: n, Num: i}
	}
	return p
}

func (p pins) lookup(name string) gpio.PinIO {
	if pin, ok := p[name]; ok {
		return pin
	}
	return nil
}

func TestNew_ConfiguresSensor(t *testing.T) {
	cfg := config.Default()
	bus := &i2ctest.Playback{
		Ops: append(append([]i2ctest.IO{}, configureOps...),
			i2ctest.IO{Addr: 0x1C, W: []byte{0x09}, R: []byte{0x00, 0x0C, 0x00, 0x00}},
		),
		DontPanic: true,
	}

	b, err := New(cfg, bus, newPins(cfg).lookup)
	require.NoError(t, err)

	raw, err := b.Sensor.Read()
	require.NoError(t, err)
	assert.Equal(t, uint32(3072), raw)
	assert.NoError(t, bus.Close(), "all bus traffic consumed")
}

func TestNew_SensorFailure(t *testing.T) {
	cfg := config.Default()
	bus := &i2ctest.Playback{DontPanic: true}

	_, err := New(cfg, bus, newPins(cfg).lookup)
	assert.Error(t, err)
}

func TestNew_InvalidSensorConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Sensor.Gain = 4
	bus := &i2ctest.Playback{DontPanic: true}

	_, err := New(cfg, bus, newPins(cfg).lookup)
	assert.Error(t, err)
}

func TestNew_MissingPin(t *testing.T) {
	cfg := config.Default()
	p := newPins(cfg)
	delete(p, cfg.Board.Button)
	bus := &i2ctest.Playback{Ops: configureOps, DontPanic: true}

	_, err := New(cfg, bus, p.lookup)
	assert.ErrorContains(t, err, cfg.Board.Button)
}

func TestNew_WrongPinCount(t *testing.T) {
	cfg := config.Default()
	cfg.Board.Cols = cfg.Board.Cols[:2]
	bus := &i2ctest.Playback{DontPanic: true}

	_, err := New(cfg, bus, newPins(cfg).lookup)
	assert.Error(t, err)
}

func TestBoard_KeypadAndButton(t *testing.T) {
	cfg := config.Default()
	p := newPins(cfg)
	bus := &i2ctest.Playback{Ops: configureOps, DontPanic: true}

	b, err := New(cfg, bus, p.lookup)
	require.NoError(t, err)

	for _, name := range cfg.Board.Cols {
		assert.Equal(t, gpio.PullDown, p[name].P)
	}
	assert.Equal(t, gpio.PullDown, p[cfg.Board.Button].P)

	assert.Empty(t, b.Keypad.Candidates(nil))

	// A column stuck high reads on every driven row.
	require.NoError(t, p[cfg.Board.Cols[0]].Out(gpio.High))
	assert.Equal(t, []keypad.Key{'1', '4', '7', '*'}, b.Keypad.Candidates(nil))
	for _, name := range cfg.Board.Rows {
		assert.Equal(t, gpio.Low, p[name].L, "rows idle low after a scan")
	}

	assert.False(t, b.Button.Get())
	require.NoError(t, p[cfg.Board.Button].Out(gpio.High))
	assert.True(t, b.Button.Get())

	hw := b.Hardware(cfg, nil)
	assert.NotNil(t, hw.Keypad)
	assert.Equal(t, b.Sensor, hw.Sensor)
}

func TestBuzzer(t *testing.T) {
	pin := &gpiotest.Pin{N: "PWM0"}
	bz := NewBuzzer(pin, 4000, 0.5)

	require.NoError(t, bz.Buzz(true))
	assert.Equal(t, gpio.DutyHalf, pin.D)
	assert.Equal(t, 4*physic.KiloHertz, pin.F)

	require.NoError(t, bz.Buzz(false))
	assert.Equal(t, gpio.Low, pin.L)
}

func TestBuzzer_InvalidDuty(t *testing.T) {
	pin := &gpiotest.Pin{N: "PWM0"}
	bz := NewBuzzer(pin, 2000, 7)

	require.NoError(t, bz.Buzz(true))
	assert.Equal(t, gpio.DutyHalf, pin.D)
	assert.Equal(t, 2*physic.KiloHertz, pin.F)
}

func TestBoard_CloseSilences(t *testing.T) {
	cfg := config.Default()
	p := newPins(cfg)
	bus := &i2ctest.Playback{Ops: configureOps, DontPanic: true}

	b, err := New(cfg, bus, p.lookup)
	require.NoError(t, err)

	require.NoError(t, b.Buzzer.Buzz(true))
	require.NoError(t, p[cfg.Board.Buzzer].Out(gpio.High))
	assert.NoError(t, b.Close())
	assert.Equal(t, gpio.Low, p[cfg.Board.Buzzer].L)
}
