// Package tui emulates the instrument panel in a terminal with bubbletea.
package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/itohio/uvdose/pkg/keypad"
)

// PanelWidth is the panel width in characters.
const PanelWidth = 21

var (
	colorPanel  = lipgloss.Color("#e5e7eb")
	colorBorder = lipgloss.Color("#4b5563")
	colorAlarm  = lipgloss.Color("#dc2626")
	colorDimmed = lipgloss.Color("#6b7280")

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder).
			Foreground(colorPanel)
	rowStyle      = lipgloss.NewStyle().Width(PanelWidth)
	invertedStyle = rowStyle.Reverse(true)
	buzzStyle     = lipgloss.NewStyle().Bold(true).Foreground(colorAlarm)
	statusStyle   = lipgloss.NewStyle().Foreground(colorDimmed)
)

// BuzzerMsg reports the buzzer switching on or off.
type BuzzerMsg bool

// StatusMsg replaces the status line.
type StatusMsg string

// Controls routes keyboard input to the instrument. Nil functions disable the
// corresponding keys, e.g. when a physical keypad is attached.
type Controls struct {
	Key   func(k keypad.Key)
	Reset func()
}

// Model is the bubbletea model of the panel.
type Model struct {
	keys     KeyMap
	help     help.Model
	controls Controls

	panel   PanelMsg
	buzzing bool
	status  string
}

// New creates a model.
func New(controls Controls, status string) Model {
	return Model{
		keys:     DefaultKeyMap(),
		help:     help.New(),
		controls: controls,
		status:   status,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
		return m, nil

	case PanelMsg:
		m.panel = msg
		return m, nil

	case BuzzerMsg:
		m.buzzing = bool(msg)
		return m, nil

	case StatusMsg:
		m.status = string(msg)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Reset):
		if m.controls.Reset != nil {
			m.controls.Reset()
		}

	case key.Matches(msg, m.keys.Keypad):
		if m.controls.Key != nil {
			m.controls.Key(keypad.Key(msg.String()[0]))
		}
	}
	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	var rows []string
	for i, text := range m.panel.Rows {
		if m.panel.Inverted[i] {
			rows = append(rows, invertedStyle.Render(text))
			continue
		}
		rows = append(rows, rowStyle.Render(text))
	}

	var b strings.Builder
	b.WriteString(panelStyle.Render(strings.Join(rows, "\n")))
	b.WriteString("\n")
	if m.buzzing {
		b.WriteString(buzzStyle.Render("BUZZ"))
	}
	b.WriteString("\n")
	if m.status != "" {
		b.WriteString(statusStyle.Render(m.status))
		b.WriteString("\n")
	}
	b.WriteString(m.help.View(m.keys))
	return b.String()
}
