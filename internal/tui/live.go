// Package tui is the live run view: a bubbletea program fed with
// diagnostics samples while the driver steps in the background.
package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/mdlab-go/mdrun/internal/diagnostics"
)

const historyCapacity = 600

var (
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true).MarginBottom(1)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(14)
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	graphStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)
	errStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Bold(true)
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(1)
)

// SampleMsg delivers one diagnostics sample to the view.
type SampleMsg diagnostics.Sample

// DoneMsg signals the end of the run.
type DoneMsg struct{ Err error }

// Model renders run progress, the latest diagnostics and an energy
// sparkline.
type Model struct {
	title      string
	totalSteps int

	latest  diagnostics.Sample
	history []float64
	haveOne bool
	done    bool
	err     error
}

func NewModel(title string, totalSteps int) Model {
	return Model{
		title:      title,
		totalSteps: totalSteps,
		history:    make([]float64, 0, historyCapacity),
	}
}

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		}
	case SampleMsg:
		m.latest = diagnostics.Sample(msg)
		m.haveOne = true
		m.history = append(m.history, m.latest.EtotPerAtom)
		if len(m.history) > historyCapacity {
			m.history = m.history[len(m.history)-historyCapacity:]
		}
	case DoneMsg:
		m.done = true
		m.err = msg.Err
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) View() string {
	s := headerStyle.Render(m.title) + "\n"

	if !m.haveOne {
		return s + valueStyle.Render("waiting for first diagnostics sample...") + "\n"
	}

	row := func(label, value string) string {
		return labelStyle.Render(label) + valueStyle.Render(value) + "\n"
	}
	s += row("step", fmt.Sprintf("%d / %d", m.latest.Step, m.totalSteps))
	s += row("Epot/atom", fmt.Sprintf("%.3f eV", m.latest.EpotPerAtom))
	s += row("Ekin/atom", fmt.Sprintf("%.3f eV", m.latest.EkinPerAtom))
	s += row("temperature", fmt.Sprintf("%.0f K", m.latest.TempK))
	s += row("Etot/atom", fmt.Sprintf("%.3f eV", m.latest.EtotPerAtom))
	s += row("elapsed", m.latest.Elapsed.Truncate(1e8).String())

	if len(m.history) > 1 {
		graph := asciigraph.Plot(m.history,
			asciigraph.Height(8),
			asciigraph.Width(70),
			asciigraph.Caption("total energy per atom (eV)"),
		)
		s += graphStyle.Render(graph) + "\n"
	}

	if m.done && m.err != nil {
		s += errStyle.Render("run failed: "+m.err.Error()) + "\n"
	}
	s += helpStyle.Render("q to quit") + "\n"
	return s
}

// Err returns the run error carried by the final DoneMsg.
func (m Model) Err() error { return m.err }
