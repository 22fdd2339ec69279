package ltr390

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type tx struct {
	addr uint16
	w    []byte
	n    int
}

type fakeBus struct {
	txs  []tx
	data []byte
	err  error
}

func (b *fakeBus) Tx(addr uint16, w, r []byte) error {
	b.txs = append(b.txs, tx{addr: addr, w: append([]byte(nil), w...), n: len(r)})
	if b.err != nil {
		return b.err
	}
	copy(r, b.data)
	return nil
}

func TestConfigure_WritesWithOffset(t *testing.T) {
	bus := &fakeBus{}
	d := New(bus, 0)

	require.NoError(t, d.Configure(DefaultConfig))
	require.Len(t, bus.txs, 3)

	// Mode, measure rate, gain; each at reg+5 with a trailing zero byte
	assert.Equal(t, tx{addr: 0x1C, w: []byte{0x13, 0x0A, 0}}, bus.txs[0])
	assert.Equal(t, tx{addr: 0x1C, w: []byte{0x12, 32 + 3, 0}}, bus.txs[1])
	assert.Equal(t, tx{addr: 0x1C, w: []byte{0x0B, 2, 0}}, bus.txs[2])
	assert.Equal(t, ModeUVS, d.Mode())
}

func TestRead_LittleEndian(t *testing.T) {
	bus := &fakeBus{data: []byte{0x78, 0x56, 0x34, 0x12}}
	d := New(bus, 0x1D)

	v, err := d.UVS()
	require.NoError(t, err)
	assert.Equal(t, uint32(0x12345678), v)
	assert.Equal(t, tx{addr: 0x1D, w: []byte{0x09}, n: 4}, bus.txs[0])

	_, err = d.ALS()
	require.NoError(t, err)
	assert.Equal(t, []byte{0x07}, bus.txs[1].w)
}

func TestRead_FollowsMode(t *testing.T) {
	bus := &fakeBus{data: []byte{1, 0, 0, 0}}
	d := New(bus, 0)

	require.NoError(t, d.SetMode(ModeALS))
	v, err := d.Read()
	require.NoError(t, err)
	assert.Equal(t, uint32(1), v)
	assert.Equal(t, []byte{0x07}, bus.txs[len(bus.txs)-1].w)

	require.NoError(t, d.SetMode(ModeUVS))
	_, err = d.Read()
	require.NoError(t, err)
	assert.Equal(t, []byte{0x09}, bus.txs[len(bus.txs)-1].w)
}

func TestBusError(t *testing.T) {
	busErr := errors.New("nack")
	bus := &fakeBus{err: busErr}
	d := New(bus, 0)

	_, err := d.UVS()
	assert.ErrorIs(t, err, busErr)

	err = d.SetGain(Gain3)
	assert.ErrorIs(t, err, busErr)
}

func TestInvalidSettings(t *testing.T) {
	d := New(&fakeBus{}, 0)

	assert.ErrorIs(t, d.SetMode(Mode(0x01)), ErrInvalidSetting)
	assert.ErrorIs(t, d.SetGain(Gain(9)), ErrInvalidSetting)
	assert.ErrorIs(t, d.SetMeasureRate(Resolution(17), Rate25ms), ErrInvalidSetting)
	assert.ErrorIs(t, d.SetMeasureRate(Resolution16Bit, Rate(7)), ErrInvalidSetting)
}

func TestParseConfig(t *testing.T) {
	cfg, err := ParseConfig("uvs", 6, 18, 200*time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig, cfg)

	cfg, err = ParseConfig("ALS", 18, 16, 25*time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, Config{Mode: ModeALS, Gain: Gain18, Resolution: Resolution16Bit, Rate: Rate25ms}, cfg)

	cfg, err = ParseConfig("uv", 1, 20, 2*time.Second)
	require.NoError(t, err)
	assert.Equal(t, Resolution20Bit, cfg.Resolution)
	assert.Equal(t, Rate2000ms, cfg.Rate)

	_, err = ParseConfig("ir", 6, 18, 200*time.Millisecond)
	assert.ErrorIs(t, err, ErrInvalidSetting)
	_, err = ParseConfig("uvs", 4, 18, 200*time.Millisecond)
	assert.ErrorIs(t, err, ErrInvalidSetting)
	_, err = ParseConfig("uvs", 6, 21, 200*time.Millisecond)
	assert.ErrorIs(t, err, ErrInvalidSetting)
	_, err = ParseConfig("uvs", 6, 18, 300*time.Millisecond)
	assert.ErrorIs(t, err, ErrInvalidSetting)
}
