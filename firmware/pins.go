//go:build rp2040

package main

import "machine"

const (
	// OLED
	DISPLAY_ADDRESS = 0x3C
	DISPLAY_WIDTH   = 128
	DISPLAY_HEIGHT  = 64

	// Buzzer on GP9, PWM slice 4 channel B
	PIN_BUZZER = machine.GP9

	// Reset button, active high with pull-down
	PIN_BUTTON = machine.GP20

	// Watchdog must be fed at least this often; the sampling loop does it
	WATCHDOG_TIMEOUT_MS = 3000
)

var (
	// Keypad rows (outputs) top to bottom, columns (inputs) left to right
	PIN_ROWS = [4]machine.Pin{machine.GP16, machine.GP11, machine.GP12, machine.GP14}
	PIN_COLS = [3]machine.Pin{machine.GP15, machine.GP17, machine.GP13}

	// Display on I2C0, sensor on I2C1
	displayBus = machine.I2C0
	sensorBus  = machine.I2C1

	displayI2C = machine.I2CConfig{SDA: machine.GP4, SCL: machine.GP5, Frequency: 400 * machine.KHz}
	sensorI2C  = machine.I2CConfig{SDA: machine.GP2, SCL: machine.GP3, Frequency: 100 * machine.KHz}

	buzzerPWM = machine.PWM4
)
