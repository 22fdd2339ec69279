//go:build rp2040

//go:generate tinygo flash -target=pico

package main

import (
	"context"
	"machine"
	"os"
	"time"

	"tinygo.org/x/drivers/ssd1306"

	"github.com/itohio/uvdose/pkg/config"
	"github.com/itohio/uvdose/pkg/dose"
	"github.com/itohio/uvdose/pkg/keypad"
	"github.com/itohio/uvdose/pkg/ltr390"
	"github.com/itohio/uvdose/pkg/sample"
)

func main() {
	cfg := config.Default()

	displayBus.Configure(displayI2C)
	sensorBus.Configure(sensorI2C)

	display := ssd1306.NewI2C(displayBus)
	display.Configure(ssd1306.Config{
		Width:    DISPLAY_WIDTH,
		Height:   DISPLAY_HEIGHT,
		Address:  DISPLAY_ADDRESS,
		VccState: ssd1306.SWITCHCAPVCC,
	})
	display.ClearDisplay()

	sensor := ltr390.New(sensorBus, cfg.Sensor.Address)
	sensorCfg, err := ltr390.ParseConfig(cfg.Sensor.Mode, cfg.Sensor.Gain, cfg.Sensor.Resolution, cfg.Sensor.Rate)
	if err != nil {
		halt("sensor config", err)
	}
	if err := sensor.Configure(sensorCfg); err != nil {
		halt("sensor", err)
	}

	var rows [keypad.Rows]keypad.Output
	for i, p := range PIN_ROWS {
		p.Configure(machine.PinConfig{Mode: machine.PinOutput})
		rows[i] = p
	}
	var cols [keypad.Cols]keypad.Input
	for i, p := range PIN_COLS {
		p.Configure(machine.PinConfig{Mode: machine.PinInputPulldown})
		cols[i] = p
	}
	matrix := keypad.NewMatrix(rows, cols, keypad.DefaultLayout)

	PIN_BUTTON.Configure(machine.PinConfig{Mode: machine.PinInputPulldown})

	buzzer, err := newBuzzer(buzzerPWM, PIN_BUZZER, cfg.Alarm.Frequency, cfg.Alarm.Duty)
	if err != nil {
		halt("buzzer", err)
	}

	// The first reading is off until the sensor settles.
	time.Sleep(cfg.Sensor.Settle)

	dev, err := dose.New(cfg, dose.Hardware{
		Sensor:  sensor,
		Display: &oled{dev: &display},
		Buzzer:  buzzer,
		Button:  PIN_BUTTON,
		Keypad:  dose.NewKeypad(cfg, matrix),
	})
	if err != nil {
		halt("device", err)
	}

	machine.Watchdog.Configure(machine.WatchdogConfig{
		TimeoutMillis: WATCHDOG_TIMEOUT_MS,
	})
	machine.Watchdog.Start()

	// Stream "unix_micros,raw" lines over USB serial for the host bridge.
	var line []byte
	dev.OnFrame(func(f dose.Frame) {
		machine.Watchdog.Update()
		if f.Fault != nil {
			return
		}
		line = append(sample.AppendLine(line[:0], f.Time, f.Raw), '\n')
		os.Stdout.Write(line)
	})

	dev.Run(context.Background())
}

// halt reports a fatal setup error forever.
func halt(what string, err error) {
	for {
		println(what+":", err.Error())
		time.Sleep(time.Second)
	}
}
