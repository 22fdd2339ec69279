package main

import (
	"fmt"
	"strconv"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"github.com/itohio/uvdose/pkg/link"
)

// showSettingsDialog displays a settings dialog with tabs for the simulator
// configuration.
func showSettingsDialog(state *appState) {
	tabs := container.NewAppTabs(
		createSamplingTab(state),
		createInputTab(state),
		createAlarmTab(state),
		createSimTab(state),
		createSerialTab(state),
	)

	content := container.NewBorder(nil, nil, nil, nil, tabs)
	content.Resize(fyne.NewSize(500, 400))

	d := dialog.NewCustom("Settings", "Close", content, state.window)
	d.Resize(fyne.NewSize(500, 400))
	d.Show()
}

// applySettings saves the configuration and restarts a running simulator so
// the new values take effect.
func applySettings(state *appState) {
	if err := state.cfg.Save(state.configPath); err != nil {
		dialog.ShowError(fmt.Errorf("failed to save config: %w", err), state.window)
		return
	}
	syncLevel(state)
	if state.running() {
		state.stop()
		handleRun(state)
	}
}

// createSamplingTab creates the Sampling configuration tab.
func createSamplingTab(state *appState) *container.TabItem {
	periodEntry := widget.NewEntry()
	periodEntry.SetText(state.cfg.Sampling.Period.String())

	alphaEntry := widget.NewEntry()
	alphaEntry.SetText(fmt.Sprintf("%.3f", state.cfg.Sampling.Alpha))

	divisorEntry := widget.NewEntry()
	divisorEntry.SetText(fmt.Sprintf("%.0f", state.cfg.Sampling.Divisor))

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Period", Widget: periodEntry},
			{Text: "Smoothing (0-1)", Widget: alphaEntry},
			{Text: "Counts per unit", Widget: divisorEntry},
		},
		OnSubmit: func() {
			if p, err := time.ParseDuration(periodEntry.Text); err == nil && p > 0 {
				state.cfg.Sampling.Period = p
			}
			if a, err := strconv.ParseFloat(alphaEntry.Text, 32); err == nil && a > 0 && a <= 1 {
				state.cfg.Sampling.Alpha = float32(a)
			}
			if d, err := strconv.ParseFloat(divisorEntry.Text, 32); err == nil && d > 0 {
				state.cfg.Sampling.Divisor = float32(d)
			}
			applySettings(state)
		},
	}

	return container.NewTabItem("Sampling", form)
}

// createInputTab creates the Input configuration tab.
func createInputTab(state *appState) *container.TabItem {
	periodEntry := widget.NewEntry()
	periodEntry.SetText(state.cfg.Input.Period.String())

	digitsEntry := widget.NewEntry()
	digitsEntry.SetText(strconv.Itoa(state.cfg.Input.MaxDigits))

	edgeCheck := widget.NewCheck("", nil)
	edgeCheck.SetChecked(state.cfg.Input.ResetEdge)

	repairedCheck := widget.NewCheck("", nil)
	repairedCheck.SetChecked(state.cfg.Input.Repaired)

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Poll period", Widget: periodEntry},
			{Text: "Max target digits", Widget: digitsEntry},
			{Text: "Reset once per press", Widget: edgeCheck},
			{Text: "Keypad repaired", Widget: repairedCheck},
		},
		OnSubmit: func() {
			if p, err := time.ParseDuration(periodEntry.Text); err == nil && p > 0 {
				state.cfg.Input.Period = p
			}
			if n, err := strconv.Atoi(digitsEntry.Text); err == nil && n > 0 && n <= 9 {
				state.cfg.Input.MaxDigits = n
			}
			state.cfg.Input.ResetEdge = edgeCheck.Checked
			state.cfg.Input.Repaired = repairedCheck.Checked
			applySettings(state)
		},
	}

	return container.NewTabItem("Input", form)
}

// createAlarmTab creates the Alarm configuration tab.
func createAlarmTab(state *appState) *container.TabItem {
	frequencyEntry := widget.NewEntry()
	frequencyEntry.SetText(fmt.Sprintf("%.0f", state.cfg.Alarm.Frequency))

	dutyEntry := widget.NewEntry()
	dutyEntry.SetText(fmt.Sprintf("%.2f", state.cfg.Alarm.Duty))

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Frequency (Hz)", Widget: frequencyEntry},
			{Text: "Duty (0-1)", Widget: dutyEntry},
		},
		OnSubmit: func() {
			if f, err := strconv.ParseFloat(frequencyEntry.Text, 64); err == nil && f > 0 {
				state.cfg.Alarm.Frequency = f
			}
			if d, err := strconv.ParseFloat(dutyEntry.Text, 64); err == nil && d > 0 && d <= 1 {
				state.cfg.Alarm.Duty = d
			}
			applySettings(state)
		},
	}

	return container.NewTabItem("Alarm", form)
}

// createSimTab creates the simulated hardware configuration tab.
func createSimTab(state *appState) *container.TabItem {
	swingEntry := widget.NewEntry()
	swingEntry.SetText(fmt.Sprintf("%.1f", state.cfg.Sim.Swing))

	noiseEntry := widget.NewEntry()
	noiseEntry.SetText(fmt.Sprintf("%.2f", state.cfg.Sim.NoiseLevel))

	periodEntry := widget.NewEntry()
	periodEntry.SetText(state.cfg.Sim.Period.String())

	holdEntry := widget.NewEntry()
	holdEntry.SetText(state.cfg.Sim.KeyHold.String())

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Swing", Widget: swingEntry},
			{Text: "Noise", Widget: noiseEntry},
			{Text: "Swing period", Widget: periodEntry},
			{Text: "Key hold", Widget: holdEntry},
		},
		OnSubmit: func() {
			if s, err := strconv.ParseFloat(swingEntry.Text, 32); err == nil && s >= 0 {
				state.cfg.Sim.Swing = float32(s)
			}
			if n, err := strconv.ParseFloat(noiseEntry.Text, 32); err == nil && n >= 0 {
				state.cfg.Sim.NoiseLevel = float32(n)
			}
			if p, err := time.ParseDuration(periodEntry.Text); err == nil && p > 0 {
				state.cfg.Sim.Period = p
			}
			if h, err := time.ParseDuration(holdEntry.Text); err == nil && h > 0 {
				state.cfg.Sim.KeyHold = h
			}
			state.cfg.Sim.Level = float32(state.levelSlider.Value)
			applySettings(state)
		},
	}

	return container.NewTabItem("Simulator", form)
}

// createSerialTab creates the tab that picks the serial bridge port. When
// enabled the simulated sensor is replaced by readings from the bridge.
func createSerialTab(state *appState) *container.TabItem {
	ports, err := link.Ports()
	portOptions := []string{}
	portMap := make(map[string]string) // Display name to port name

	if err == nil {
		for _, port := range ports {
			displayName := port.Name
			if port.Description != "" && port.Description != port.Name {
				displayName = fmt.Sprintf("%s (%s)", port.Name, port.Description)
			}
			portOptions = append(portOptions, displayName)
			portMap[displayName] = port.Name
		}
	}

	currentPort := state.cfg.Serial.Port
	currentDisplay := currentPort
	found := false
	for _, opt := range portOptions {
		if portMap[opt] == currentPort {
			currentDisplay = opt
			found = true
			break
		}
	}
	if !found && currentPort != "" {
		portOptions = append(portOptions, currentPort)
		portMap[currentPort] = currentPort
	}

	portSelect := widget.NewSelect(portOptions, nil)
	if currentDisplay != "" {
		portSelect.SetSelected(currentDisplay)
	}

	baudEntry := widget.NewEntry()
	baudEntry.SetText(strconv.Itoa(state.cfg.Serial.BaudRate))

	useCheck := widget.NewCheck("", nil)
	useCheck.SetChecked(state.usePort)

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Serial port", Widget: portSelect},
			{Text: "Baud rate", Widget: baudEntry},
			{Text: "Read sensor from serial port", Widget: useCheck},
		},
		OnSubmit: func() {
			if portSelect.Selected != "" {
				selected := portMap[portSelect.Selected]
				if selected == "" {
					selected = portSelect.Selected
				}
				state.cfg.Serial.Port = selected
			}
			if b, err := strconv.Atoi(baudEntry.Text); err == nil && b > 0 {
				state.cfg.Serial.BaudRate = b
			}
			state.usePort = useCheck.Checked && state.cfg.Serial.Port != ""
			applySettings(state)
		},
	}

	return container.NewTabItem("Serial", form)
}
