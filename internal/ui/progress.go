// Package ui renders stress progress in the terminal.
package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"ecmacore/internal/stress"
)

type progressModel struct {
	title   string
	events  <-chan stress.Event
	spinner spinner.Model
	prog    progress.Model
	engines []engineItem
	width   int
	done    bool
}

type engineItem struct {
	name   string
	status stress.Status
	step   int
	steps  int
	err    error
}

type eventMsg stress.Event
type doneMsg struct{}

// NewProgressModel returns a Bubble Tea model that renders one line per
// engine and an overall progress bar fed by events.
func NewProgressModel(title string, engines int, events <-chan stress.Event) tea.Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))

	prog := progress.New(progress.WithDefaultGradient())
	prog.Width = 76

	items := make([]engineItem, engines)
	for i := range items {
		items[i] = engineItem{name: fmt.Sprintf("engine %d", i)}
	}
	return &progressModel{
		title:   title,
		events:  events,
		spinner: sp,
		prog:    prog,
		engines: items,
		width:   80,
	}
}

func (m *progressModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.listenForEvent())
}

func (m *progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case eventMsg:
		cmd := m.applyEvent(stress.Event(msg))
		return m, tea.Batch(cmd, m.listenForEvent())
	case doneMsg:
		m.done = true
		return m, tea.Quit
	case spinner.TickMsg:
		if m.done {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.WindowSizeMsg:
		if msg.Width > 0 {
			m.width = msg.Width
			m.prog.Width = msg.Width - 4
		}
		return m, nil
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
	case progress.FrameMsg:
		pm, cmd := m.prog.Update(msg)
		m.prog = pm.(progress.Model)
		return m, cmd
	}
	return m, nil
}

func (m *progressModel) View() string {
	if len(m.engines) == 0 {
		return ""
	}
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("7"))
	header := m.title
	if m.done {
		header = "done: " + header
	} else {
		header = m.spinner.View() + " " + header
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(header))
	b.WriteString("\n\n")

	nameWidth := m.width - 12 - 16
	if nameWidth < 20 {
		nameWidth = 20
	}
	for _, e := range m.engines {
		status := styleStatus(e.status).Render(fmt.Sprintf("%9s", e.status))
		counter := fmt.Sprintf("%7d/%-7d", e.step, e.steps)
		line := e.name
		if e.err != nil {
			line += ": " + e.err.Error()
		}
		fmt.Fprintf(&b, "  %s %s %s\n", status, counter, truncate(line, nameWidth))
	}

	b.WriteString("\n")
	if m.done {
		b.WriteString(m.prog.ViewAs(1.0))
	} else {
		b.WriteString(m.prog.View())
	}
	b.WriteString("\n")
	return b.String()
}

func (m *progressModel) listenForEvent() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-m.events
		if !ok {
			return doneMsg{}
		}
		return eventMsg(ev)
	}
}

func (m *progressModel) applyEvent(ev stress.Event) tea.Cmd {
	if ev.Engine < 0 || ev.Engine >= len(m.engines) {
		return nil
	}
	e := &m.engines[ev.Engine]
	e.status = ev.Status
	e.step = ev.Step
	e.steps = ev.Steps
	e.err = ev.Err
	return m.prog.SetPercent(m.fraction())
}

func (m *progressModel) fraction() float64 {
	total := 0.0
	for _, e := range m.engines {
		switch {
		case e.status == stress.StatusDone || e.status == stress.StatusError:
			total += 1.0
		case e.steps > 0:
			total += float64(e.step) / float64(e.steps)
		}
	}
	return total / float64(len(m.engines))
}

func styleStatus(status stress.Status) lipgloss.Style {
	switch status {
	case stress.StatusDone:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	case stress.StatusError:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	case stress.StatusRunning:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	default:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
	}
}

func truncate(value string, width int) string {
	if width <= 0 {
		return value
	}
	if runewidth.StringWidth(value) <= width {
		return value
	}
	if width <= 3 {
		return runewidth.Truncate(value, width, "")
	}
	return runewidth.Truncate(value, width-3, "...")
}
