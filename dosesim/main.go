package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/itohio/uvdose/pkg/config"
	"github.com/itohio/uvdose/pkg/dose"
	"github.com/itohio/uvdose/pkg/keypad"
	"github.com/itohio/uvdose/pkg/link"
	"github.com/itohio/uvdose/pkg/scope"
	"github.com/itohio/uvdose/pkg/screen"
	"github.com/itohio/uvdose/pkg/sim"
)

func main() {
	var (
		configFlag   = flag.String("config", "config.yaml", "Configuration file path")
		repairedFlag = flag.Bool("repaired", false, "Simulate a keypad with a working middle column")
		levelFlag    = flag.Float64("level", -1, "Initial light level (overrides config)")
		portFlag     = flag.String("p", "", "Read the sensor from the serial bridge on this port")
	)
	flag.Parse()

	cfg, err := config.Load(*configFlag)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if err := cfg.ApplyEnv(); err != nil {
		log.Fatalf("Failed to apply environment: %v", err)
	}
	if *repairedFlag {
		cfg.Input.Repaired = true
	}
	if *levelFlag >= 0 {
		cfg.Sim.Level = float32(*levelFlag)
	}
	if *portFlag != "" {
		cfg.Serial.Port = *portFlag
	}

	application := app.NewWithID("com.itohio.uvdose")

	window := application.NewWindow("UV Dose Simulator")
	window.Resize(fyne.NewSize(1000, 600))
	window.CenterOnScreen()

	state := &appState{
		cfg:        cfg,
		configPath: *configFlag,
		window:     window,
		oled:       screen.New(),
		chart:      scope.New(cfg.Sim.History),
		usePort:    *portFlag != "",
	}

	toolbar := createToolbar(state)
	controls := createControls(state)

	content := container.NewBorder(
		toolbar,
		nil,
		nil,
		controls,
		container.NewVSplit(state.oled, state.chart),
	)

	window.SetContent(content)
	window.SetOnClosed(state.stop)

	handleRun(state)
	window.ShowAndRun()
}

// appState holds the application state. It is only touched from the UI
// goroutine; the running device reports back through fyne.Do.
type appState struct {
	cfg        *config.Config
	configPath string
	window     fyne.Window

	oled  *screen.OLED
	chart *scope.Chart

	runBtn      *widget.Button
	buzzerIcon  *widget.Icon
	levelSlider *widget.Slider
	levelLabel  *widget.Label

	usePort bool
	serial  *link.Serial

	board  *sim.Board
	cancel context.CancelFunc
	done   chan struct{}
}

func (s *appState) running() bool {
	return s.cancel != nil
}

// createToolbar creates the toolbar with Run/Stop and Settings buttons and the
// buzzer indicator.
func createToolbar(state *appState) fyne.CanvasObject {
	runBtn := widget.NewButtonWithIcon("", theme.MediaPlayIcon(), func() {
		handleRun(state)
	})
	state.runBtn = runBtn

	settingsBtn := widget.NewButtonWithIcon("", theme.SettingsIcon(), func() {
		showSettingsDialog(state)
	})

	state.buzzerIcon = widget.NewIcon(theme.VolumeMuteIcon())

	return container.NewBorder(
		nil,
		nil,
		container.NewHBox(runBtn, settingsBtn),
		state.buzzerIcon,
		nil,
	)
}

// createControls builds the simulated front panel: keypad, reset button and a
// light level slider.
func createControls(state *appState) fyne.CanvasObject {
	keys := container.NewGridWithColumns(keypad.Cols)
	for _, row := range keypad.DefaultLayout {
		for _, k := range row {
			keys.Add(widget.NewButton(k.String(), func() {
				pressKey(state, k)
			}))
		}
	}

	resetBtn := widget.NewButtonWithIcon("Reset", theme.MediaReplayIcon(), func() {
		if state.board != nil {
			state.board.Button.Press()
		}
	})
	resetBtn.Importance = widget.WarningImportance

	state.levelLabel = widget.NewLabel("")
	state.levelSlider = widget.NewSlider(0, 100)
	state.levelSlider.Step = 0.5
	state.levelSlider.OnChanged = func(v float64) {
		state.levelLabel.SetText(fmt.Sprintf("Light level: %.1f", v))
		if state.board != nil {
			state.board.Sensor.SetLevel(float32(v))
		}
	}
	state.levelSlider.SetValue(float64(state.cfg.Sim.Level))
	syncLevel(state)

	return container.NewVBox(
		keys,
		resetBtn,
		widget.NewSeparator(),
		state.levelLabel,
		state.levelSlider,
	)
}

// syncLevel disables the light level slider while the sensor is read from the
// serial bridge.
func syncLevel(state *appState) {
	if state.usePort {
		state.levelSlider.Disable()
		state.levelLabel.SetText("Light level: serial " + state.cfg.Serial.Port)
		return
	}
	state.levelSlider.Enable()
	state.levelLabel.SetText(fmt.Sprintf("Light level: %.1f", state.levelSlider.Value))
}

func pressKey(state *appState, k keypad.Key) {
	if state.board == nil {
		return
	}
	if err := state.board.Keypad.Press(k); err != nil {
		log.Printf("Key %s: %v", k, err)
	}
}

// handleRun starts or stops the simulated instrument.
func handleRun(state *appState) {
	if state.running() {
		state.stop()
		return
	}

	cfg := *state.cfg

	var serial *link.Serial
	if state.usePort {
		serial = link.New(cfg.Serial.Port, cfg.Serial.BaudRate)
		serial.SetTimeout(cfg.Sampling.Period / 2)
		if err := serial.Connect(); err != nil {
			dialog.ShowError(fmt.Errorf("failed to open %s: %w", cfg.Serial.Port, err), state.window)
			return
		}
	}

	board := sim.NewBoard(&cfg)
	if state.levelSlider != nil {
		board.Sensor.SetLevel(float32(state.levelSlider.Value))
	}
	board.Buzzer.OnChange(func(on bool) {
		fyne.Do(func() {
			setBuzzer(state, on)
		})
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	hw := board.Hardware(&cfg, state.oled)
	if serial != nil {
		hw.Sensor = serial
	}

	state.board = board
	state.serial = serial
	state.cancel = cancel
	state.done = done
	state.chart.Clear()
	state.runBtn.SetIcon(theme.MediaStopIcon())
	state.runBtn.Importance = widget.HighImportance
	state.runBtn.Refresh()

	go func() {
		defer close(done)
		if err := runDevice(ctx, &cfg, hw, state.chart); err != nil && !errors.Is(err, context.Canceled) {
			fyne.Do(func() {
				dialog.ShowError(fmt.Errorf("simulator stopped: %w", err), state.window)
			})
		}
	}()
	if serial != nil {
		log.Printf("Simulator started (sensor on %s, keypad repaired: %v)", cfg.Serial.Port, cfg.Input.Repaired)
	} else {
		log.Printf("Simulator started (keypad repaired: %v)", cfg.Input.Repaired)
	}
}

// runDevice waits for the sensor to settle, then runs the instrument on hw
// until ctx is cancelled.
func runDevice(ctx context.Context, cfg *config.Config, hw dose.Hardware, chart *scope.Chart) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(cfg.Sensor.Settle):
	}

	dev, err := dose.New(cfg, hw)
	if err != nil {
		return err
	}
	dev.OnFrame(chart.Push)
	return dev.Run(ctx)
}

// stop cancels the running instrument and waits for it to exit.
func (s *appState) stop() {
	if !s.running() {
		return
	}
	s.cancel()
	<-s.done
	s.cancel = nil
	s.done = nil
	s.board = nil
	if s.serial != nil && s.serial.IsConnected() {
		if err := s.serial.Close(); err != nil {
			log.Printf("Failed to close %s: %v", s.cfg.Serial.Port, err)
		}
	}
	s.serial = nil

	setBuzzer(s, false)
	s.runBtn.SetIcon(theme.MediaPlayIcon())
	s.runBtn.Importance = widget.MediumImportance
	s.runBtn.Refresh()
	log.Printf("Simulator stopped")
}

func setBuzzer(state *appState, on bool) {
	if on {
		state.buzzerIcon.SetResource(theme.VolumeUpIcon())
	} else {
		state.buzzerIcon.SetResource(theme.VolumeMuteIcon())
	}
}
