// Package tui provides an interactive browser over the singular-value
// spectra of a prediction at several parameter points.
package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/predlab/internal/predict"
	"github.com/san-kum/predlab/internal/viz"
)

var (
	titleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true).MarginBottom(1)
	itemStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	selStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true)
	helpStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(1)
)

// Model is the bubbletea model for the spectrum browser.
type Model struct {
	name     string
	pred     *predict.Prediction
	points   [][]float64
	spectra  [][]float64
	errs     []error
	selected int
}

// NewModel precomputes the spectrum at every parameter point.
func NewModel(name string, pred *predict.Prediction, points [][]float64) Model {
	m := Model{
		name:    name,
		pred:    pred,
		points:  points,
		spectra: make([][]float64, len(points)),
		errs:    make([]error, len(points)),
	}
	for i, p := range points {
		m.spectra[i], m.errs[i] = pred.Spectrum(p)
	}
	return m
}

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.selected > 0 {
				m.selected--
			}
		case "down", "j":
			if m.selected < len(m.points)-1 {
				m.selected++
			}
		}
	}
	return m, nil
}

func (m Model) View() string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render(fmt.Sprintf("%s — spectra at %d parameter points", m.name, len(m.points))))
	sb.WriteByte('\n')

	for i, p := range m.points {
		line := fmt.Sprintf("  p[%d] = %v", i, p)
		if i == m.selected {
			sb.WriteString(selStyle.Render("> " + strings.TrimSpace(line)))
		} else {
			sb.WriteString(itemStyle.Render(line))
		}
		sb.WriteByte('\n')
	}
	sb.WriteByte('\n')

	if err := m.errs[m.selected]; err != nil {
		sb.WriteString(itemStyle.Render("spectrum failed: " + err.Error()))
	} else {
		sb.WriteString(viz.SpectrumGraph(m.spectra[m.selected], m.pred.YDim(), m.pred.PDim()))
	}
	sb.WriteByte('\n')
	sb.WriteString(helpStyle.Render("up/down: select point   q: quit"))
	return sb.String()
}

// Run launches the browser.
func Run(name string, pred *predict.Prediction, points [][]float64) error {
	if len(points) == 0 {
		points = [][]float64{pred.P0().Values()}
	}
	_, err := tea.NewProgram(NewModel(name, pred, points)).Run()
	return err
}
