package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/itohio/uvdose/pkg/board"
	"github.com/itohio/uvdose/pkg/config"
	"github.com/itohio/uvdose/pkg/dose"
	"github.com/itohio/uvdose/pkg/keypad"
	"github.com/itohio/uvdose/pkg/link"
	"github.com/itohio/uvdose/pkg/sim"
	"github.com/itohio/uvdose/pkg/tui"
)

func main() {
	var (
		configFlag = flag.String("config", "config.yaml", "Configuration file path")
		hwFlag     = flag.Bool("hw", false, "Use the sensor, keypad, button and buzzer wired to this board")
		portFlag   = flag.String("p", "", "Read the sensor from instrument firmware on this serial port (e.g., COM3 or /dev/ttyACM0)")
		logFlag    = flag.String("log", "", "Write log output to this file")
	)
	flag.Parse()

	cfg, err := config.Load(*configFlag)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if err := cfg.ApplyEnv(); err != nil {
		log.Fatalf("Failed to apply environment: %v", err)
	}

	// The terminal belongs to the panel from here on.
	if *logFlag != "" {
		f, err := tea.LogToFile(*logFlag, "uvdose")
		if err != nil {
			log.Fatalf("Failed to open log file: %v", err)
		}
		defer f.Close()
	} else {
		log.SetOutput(io.Discard)
	}

	display := tui.NewDisplay()
	hw, controls, status, cleanup, err := setup(cfg, *hwFlag, *portFlag, display)
	if err != nil {
		log.Fatalf("Failed to set up hardware: %v", err)
	}
	defer cleanup()

	p := tea.NewProgram(tui.New(controls, status), tea.WithAltScreen())
	hw.Buzzer = &notifyBuzzer{Buzzer: hw.Buzzer, send: p.Send}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		// Send blocks until the program is running.
		display.Attach(p.Send)
		done <- run(ctx, cfg, hw)
	}()

	if _, err := p.Run(); err != nil {
		log.Printf("Terminal UI failed: %v", err)
	}
	cancel()
	if err := <-done; err != nil && !errors.Is(err, context.Canceled) {
		log.Printf("Instrument stopped: %v", err)
	}
}

// setup selects the peripherals. Without -hw the keypad, button and buzzer
// are simulated and driven from the terminal; the sensor is simulated unless
// a serial port is given.
func setup(cfg *config.Config, hw bool, port string, display dose.Display) (dose.Hardware, tui.Controls, string, func(), error) {
	if hw {
		b, err := board.Open(cfg)
		if err != nil {
			return dose.Hardware{}, tui.Controls{}, "", nil, err
		}
		return b.Hardware(cfg, display), tui.Controls{}, "board hardware", func() { b.Close() }, nil
	}

	sb := sim.NewBoard(cfg)
	controls := tui.Controls{
		Key: func(k keypad.Key) {
			if err := sb.Keypad.Press(k); err != nil {
				log.Printf("Key %s: %v", k, err)
			}
		},
		Reset: sb.Button.Press,
	}
	hardware := sb.Hardware(cfg, display)

	if port == "" {
		return hardware, controls, "simulated sensor", func() {}, nil
	}

	serial := link.New(port, cfg.Serial.BaudRate)
	serial.SetTimeout(cfg.Sampling.Period / 2)
	if err := serial.Connect(); err != nil {
		return dose.Hardware{}, tui.Controls{}, "", nil, err
	}
	hardware.Sensor = serial
	return hardware, controls, fmt.Sprintf("sensor on %s", port), func() { serial.Close() }, nil
}

// run waits for the sensor to settle and runs the instrument until ctx is
// cancelled.
func run(ctx context.Context, cfg *config.Config, hw dose.Hardware) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(cfg.Sensor.Settle):
	}

	dev, err := dose.New(cfg, hw)
	if err != nil {
		return err
	}
	return dev.Run(ctx)
}

// notifyBuzzer reports buzzer changes to the terminal.
type notifyBuzzer struct {
	dose.Buzzer
	send func(tea.Msg)
	on   bool
}

func (b *notifyBuzzer) Buzz(on bool) error {
	err := b.Buzzer.Buzz(on)
	if err == nil && on != b.on {
		b.on = on
		b.send(tui.BuzzerMsg(on))
	}
	return err
}
