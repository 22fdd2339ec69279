package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.NotNil(t, cfg)
	assert.Equal(t, 500*time.Millisecond, cfg.Sampling.Period)
	assert.Equal(t, float32(0.05), cfg.Sampling.Alpha)
	assert.Equal(t, float32(256), cfg.Sampling.Divisor)
	assert.Equal(t, float32(1), cfg.Sampling.MinRate)
	assert.Equal(t, 999, cfg.Sampling.MaxMinutes)
	assert.Equal(t, 100*time.Millisecond, cfg.Input.Period)
	assert.Equal(t, 9, cfg.Input.MaxDigits)
	assert.False(t, cfg.Input.ResetEdge)
	assert.Equal(t, uint16(0x1C), cfg.Sensor.Address)
	assert.Equal(t, "uvs", cfg.Sensor.Mode)
	assert.Equal(t, 6, cfg.Sensor.Gain)
	assert.Equal(t, 18, cfg.Sensor.Resolution)
	assert.Equal(t, 200*time.Millisecond, cfg.Sensor.Rate)
	assert.Equal(t, float64(4000), cfg.Alarm.Frequency)
	assert.Equal(t, 115200, cfg.Serial.BaudRate)
}

func TestTicksPerSecond(t *testing.T) {
	cfg := Default()
	assert.InDelta(t, 2.0, cfg.TicksPerSecond(), 1e-6)

	cfg.Sampling.Period = 300 * time.Millisecond
	assert.InDelta(t, 1000.0/300.0, cfg.TicksPerSecond(), 1e-4)

	cfg.Sampling.Period = 0
	assert.Equal(t, float32(1), cfg.TicksPerSecond())
}

func TestLoad_FileNotExists(t *testing.T) {
	cfg, err := Load("nonexistent.yaml")
	require.NoError(t, err)
	assert.NotNil(t, cfg)
	assert.Equal(t, "/dev/ttyACM0", cfg.Serial.Port)
}

func TestLoad_ValidYAML(t *testing.T) {
	tmpfile, err := os.CreateTemp("", "test_config_*.yaml")
	require.NoError(t, err)
	defer os.Remove(tmpfile.Name())

	yamlContent := `
sampling:
  period: 300ms
  alpha: 0.03
  divisor: 128
  min_rate: 0.5

input:
  period: 50ms
  max_digits: 6
  reset_edge: true

sensor:
  mode: als
  gain: 18
  rate: 100ms

serial:
  port: "COM4"
`

	_, err = tmpfile.WriteString(yamlContent)
	require.NoError(t, err)
	require.NoError(t, tmpfile.Close())

	cfg, err := Load(tmpfile.Name())
	require.NoError(t, err)
	assert.NotNil(t, cfg)

	assert.Equal(t, 300*time.Millisecond, cfg.Sampling.Period)
	assert.Equal(t, float32(0.03), cfg.Sampling.Alpha)
	assert.Equal(t, float32(128), cfg.Sampling.Divisor)
	assert.Equal(t, float32(0.5), cfg.Sampling.MinRate)
	assert.Equal(t, 50*time.Millisecond, cfg.Input.Period)
	assert.Equal(t, 6, cfg.Input.MaxDigits)
	assert.True(t, cfg.Input.ResetEdge)
	assert.Equal(t, "als", cfg.Sensor.Mode)
	assert.Equal(t, 18, cfg.Sensor.Gain)
	assert.Equal(t, 100*time.Millisecond, cfg.Sensor.Rate)
	assert.Equal(t, "COM4", cfg.Serial.Port)
}

func TestLoad_InvalidYAML(t *testing.T) {
	tmpfile, err := os.CreateTemp("", "test_config_*.yaml")
	require.NoError(t, err)
	defer os.Remove(tmpfile.Name())

	_, err = tmpfile.WriteString("invalid: yaml: content: [")
	require.NoError(t, err)
	require.NoError(t, tmpfile.Close())

	cfg, err := Load(tmpfile.Name())
	assert.Error(t, err)
	assert.Nil(t, cfg)
}

func TestLoad_PartialYAML(t *testing.T) {
	tmpfile, err := os.CreateTemp("", "test_config_*.yaml")
	require.NoError(t, err)
	defer os.Remove(tmpfile.Name())

	yamlContent := `
sampling:
  alpha: 2.5
input:
  max_digits: 40
`

	_, err = tmpfile.WriteString(yamlContent)
	require.NoError(t, err)
	require.NoError(t, tmpfile.Close())

	cfg, err := Load(tmpfile.Name())
	require.NoError(t, err)

	// Out of range values fall back to defaults
	assert.Equal(t, float32(0.05), cfg.Sampling.Alpha)
	assert.Equal(t, 9, cfg.Input.MaxDigits)
	assert.Equal(t, 500*time.Millisecond, cfg.Sampling.Period)
	assert.Equal(t, "/dev/ttyACM0", cfg.Serial.Port)
}

func TestSave(t *testing.T) {
	cfg := Default()
	cfg.Serial.Port = "/dev/ttyUSB0"
	cfg.Sampling.Period = 250 * time.Millisecond

	tmpfile, err := os.CreateTemp("", "test_save_*.yaml")
	require.NoError(t, err)
	defer os.Remove(tmpfile.Name())

	err = cfg.Save(tmpfile.Name())
	require.NoError(t, err)

	loaded, err := Load(tmpfile.Name())
	require.NoError(t, err)
	assert.Equal(t, "/dev/ttyUSB0", loaded.Serial.Port)
	assert.Equal(t, 250*time.Millisecond, loaded.Sampling.Period)
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("UVDOSE_SAMPLING_PERIOD", "300ms")
	t.Setenv("UVDOSE_INPUT_RESET_EDGE", "true")
	t.Setenv("UVDOSE_SERIAL_PORT", "COM7")
	t.Setenv("UVDOSE_SIM_LEVEL", "3.5")

	cfg := Default()
	require.NoError(t, cfg.ApplyEnv())

	assert.Equal(t, 300*time.Millisecond, cfg.Sampling.Period)
	assert.True(t, cfg.Input.ResetEdge)
	assert.Equal(t, "COM7", cfg.Serial.Port)
	assert.Equal(t, float32(3.5), cfg.Sim.Level)
	// Untouched fields keep their values
	assert.Equal(t, float32(0.05), cfg.Sampling.Alpha)
}

func TestApplyEnv_Invalid(t *testing.T) {
	t.Setenv("UVDOSE_SAMPLING_PERIOD", "soon")

	cfg := Default()
	assert.Error(t, cfg.ApplyEnv())
}

func TestApplyEnv_BoardPins(t *testing.T) {
	t.Setenv("UVDOSE_BOARD_ROWS", "GPIO1,GPIO2,GPIO3,GPIO4")
	t.Setenv("UVDOSE_BOARD_I2C", "I2C3")

	cfg := Default()
	require.NoError(t, cfg.ApplyEnv())

	assert.Equal(t, []string{"GPIO1", "GPIO2", "GPIO3", "GPIO4"}, cfg.Board.Rows)
	assert.Equal(t, "I2C3", cfg.Board.I2C)
	assert.Equal(t, Default().Board.Cols, cfg.Board.Cols)
}
