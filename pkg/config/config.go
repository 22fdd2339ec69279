package config

import (
	"time"
)

// Config represents the instrument configuration.
//
// The firmware only ever uses Default(); host tools layer a YAML file and
// UVDOSE_* environment variables on top of it.
type Config struct {
	Sampling SamplingConfig `yaml:"sampling" envPrefix:"SAMPLING_"`
	Input    InputConfig    `yaml:"input" envPrefix:"INPUT_"`
	Sensor   SensorConfig   `yaml:"sensor" envPrefix:"SENSOR_"`
	Alarm    AlarmConfig    `yaml:"alarm" envPrefix:"ALARM_"`
	Serial   SerialConfig   `yaml:"serial" envPrefix:"SERIAL_"`
	Sim      SimConfig      `yaml:"sim" envPrefix:"SIM_"`
	Board    BoardConfig    `yaml:"board" envPrefix:"BOARD_"`
}

// SamplingConfig contains the sampling loop parameters.
type SamplingConfig struct {
	Period     time.Duration `yaml:"period" env:"PERIOD"`           // Sampling loop period
	Alpha      float32       `yaml:"alpha" env:"ALPHA"`             // EMA smoothing factor (0-1)
	Divisor    float32       `yaml:"divisor" env:"DIVISOR"`         // Raw counts per engineering unit
	MinRate    float32       `yaml:"min_rate" env:"MIN_RATE"`       // Below this smoothed rate the ETA is unknown
	MaxMinutes int           `yaml:"max_minutes" env:"MAX_MINUTES"` // ETA minutes clamp
}

// InputConfig contains the input loop parameters.
type InputConfig struct {
	Period    time.Duration `yaml:"period" env:"PERIOD"`         // Input polling period
	MaxDigits int           `yaml:"max_digits" env:"MAX_DIGITS"` // Maximum target digits
	ResetEdge bool          `yaml:"reset_edge" env:"RESET_EDGE"` // Reset once per press instead of while held
	Repaired  bool          `yaml:"repaired" env:"REPAIRED"`     // Keypad middle column works, disable remapping
}

// SensorConfig contains LTR390 configuration.
type SensorConfig struct {
	Address      uint16        `yaml:"address" env:"ADDRESS"`
	Mode         string        `yaml:"mode" env:"MODE"`             // "uvs" or "als"
	Gain         int           `yaml:"gain" env:"GAIN"`             // 1, 3, 6, 9 or 18
	Resolution   int           `yaml:"resolution" env:"RESOLUTION"` // 16..20 bits
	Rate         time.Duration `yaml:"rate" env:"RATE"`             // Measurement rate
	Settle       time.Duration `yaml:"settle" env:"SETTLE"`         // Delay before the seeding read
	Retries      int           `yaml:"retries" env:"RETRIES"`       // Read attempts per sample
	RetryInitial time.Duration `yaml:"retry_initial" env:"RETRY_INITIAL"`
}

// AlarmConfig contains buzzer configuration.
type AlarmConfig struct {
	Frequency float64 `yaml:"frequency" env:"FREQUENCY"` // Buzzer PWM frequency (Hz)
	Duty      float64 `yaml:"duty" env:"DUTY"`           // Buzzer duty cycle when on (0-1)
}

// SerialConfig contains serial bridge configuration.
type SerialConfig struct {
	Port     string `yaml:"port" env:"PORT"`
	BaudRate int    `yaml:"baud_rate" env:"BAUD_RATE"`
}

// SimConfig contains simulated hardware configuration.
type SimConfig struct {
	Level      float32       `yaml:"level" env:"LEVEL"`             // Mean intensity in engineering units
	Swing      float32       `yaml:"swing" env:"SWING"`             // Slow cloud-like modulation amplitude
	NoiseLevel float32       `yaml:"noise_level" env:"NOISE_LEVEL"` // Noise amplitude in engineering units
	Period     time.Duration `yaml:"period" env:"PERIOD"`           // Modulation period
	KeyHold    time.Duration `yaml:"key_hold" env:"KEY_HOLD"`       // How long a simulated key stays pressed
	History    time.Duration `yaml:"history" env:"HISTORY"`         // Dose-rate chart window
}

// BoardConfig names the bus and pins of a Linux single-board computer, as
// known to periph.io (e.g. "GPIO17", "I2C1").
type BoardConfig struct {
	I2C    string   `yaml:"i2c" env:"I2C"` // Empty selects the first bus
	Rows   []string `yaml:"rows" env:"ROWS" envSeparator:","`
	Cols   []string `yaml:"cols" env:"COLS" envSeparator:","`
	Button string   `yaml:"button" env:"BUTTON"`
	Buzzer string   `yaml:"buzzer" env:"BUZZER"` // Must support PWM
}

// Default returns the compiled-in configuration.
func Default() *Config {
	return &Config{
		Sampling: SamplingConfig{
			Period:     500 * time.Millisecond,
			Alpha:      0.05,
			Divisor:    256,
			MinRate:    1,
			MaxMinutes: 999,
		},
		Input: InputConfig{
			Period:    100 * time.Millisecond,
			MaxDigits: 9, // fits uint32
			ResetEdge: false,
			Repaired:  false,
		},
		Sensor: SensorConfig{
			Address:      0x1C,
			Mode:         "uvs",
			Gain:         6,
			Resolution:   18,
			Rate:         200 * time.Millisecond,
			Settle:       500 * time.Millisecond,
			Retries:      3,
			RetryInitial: 10 * time.Millisecond,
		},
		Alarm: AlarmConfig{
			Frequency: 4000,
			Duty:      0.5,
		},
		Serial: SerialConfig{
			Port:     "/dev/ttyACM0",
			BaudRate: 115200,
		},
		Sim: SimConfig{
			Level:      12,
			Swing:      4,
			NoiseLevel: 0.5,
			Period:     60 * time.Second,
			KeyHold:    250 * time.Millisecond,
			History:    2 * time.Minute,
		},
		Board: BoardConfig{
			Rows:   []string{"GPIO5", "GPIO6", "GPIO13", "GPIO19"},
			Cols:   []string{"GPIO12", "GPIO16", "GPIO20"},
			Button: "GPIO21",
			Buzzer: "GPIO18",
		},
	}
}

// TicksPerSecond returns how many sampling ticks happen per second.
func (c *Config) TicksPerSecond() float32 {
	if c.Sampling.Period <= 0 {
		return 1
	}
	return float32(time.Second) / float32(c.Sampling.Period)
}

// ensureDefaults ensures that all required fields have default values if missing.
func (c *Config) ensureDefaults() {
	def := Default()

	if c.Sampling.Period == 0 {
		c.Sampling.Period = def.Sampling.Period
	}
	if c.Sampling.Alpha <= 0 || c.Sampling.Alpha > 1 {
		c.Sampling.Alpha = def.Sampling.Alpha
	}
	if c.Sampling.Divisor == 0 {
		c.Sampling.Divisor = def.Sampling.Divisor
	}
	if c.Sampling.MinRate == 0 {
		c.Sampling.MinRate = def.Sampling.MinRate
	}
	if c.Sampling.MaxMinutes == 0 {
		c.Sampling.MaxMinutes = def.Sampling.MaxMinutes
	}

	if c.Input.Period == 0 {
		c.Input.Period = def.Input.Period
	}
	if c.Input.MaxDigits <= 0 || c.Input.MaxDigits > def.Input.MaxDigits {
		c.Input.MaxDigits = def.Input.MaxDigits
	}

	if c.Sensor.Address == 0 {
		c.Sensor.Address = def.Sensor.Address
	}
	if c.Sensor.Mode == "" {
		c.Sensor.Mode = def.Sensor.Mode
	}
	if c.Sensor.Gain == 0 {
		c.Sensor.Gain = def.Sensor.Gain
	}
	if c.Sensor.Resolution == 0 {
		c.Sensor.Resolution = def.Sensor.Resolution
	}
	if c.Sensor.Rate == 0 {
		c.Sensor.Rate = def.Sensor.Rate
	}
	if c.Sensor.Retries == 0 {
		c.Sensor.Retries = def.Sensor.Retries
	}
	if c.Sensor.RetryInitial == 0 {
		c.Sensor.RetryInitial = def.Sensor.RetryInitial
	}

	if c.Alarm.Frequency == 0 {
		c.Alarm.Frequency = def.Alarm.Frequency
	}
	if c.Alarm.Duty == 0 {
		c.Alarm.Duty = def.Alarm.Duty
	}

	if c.Serial.Port == "" {
		c.Serial.Port = def.Serial.Port
	}
	if c.Serial.BaudRate == 0 {
		c.Serial.BaudRate = def.Serial.BaudRate
	}

	if c.Sim.Period == 0 {
		c.Sim.Period = def.Sim.Period
	}
	if c.Sim.KeyHold == 0 {
		c.Sim.KeyHold = def.Sim.KeyHold
	}
	if c.Sim.History == 0 {
		c.Sim.History = def.Sim.History
	}

	if len(c.Board.Rows) == 0 {
		c.Board.Rows = def.Board.Rows
	}
	if len(c.Board.Cols) == 0 {
		c.Board.Cols = def.Board.Cols
	}
	if c.Board.Button == "" {
		c.Board.Button = def.Board.Button
	}
	if c.Board.Buzzer == "" {
		c.Board.Buzzer = def.Board.Buzzer
	}
}
