// Package viz renders singular-value spectra in the terminal.
package viz

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/predlab/internal/analysis"
)

var (
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
)

// SpectrumGraph plots one spectrum as log10 singular values against
// index, with a rank summary line.
func SpectrumGraph(sigmas []float64, ydim, pdim int) string {
	if len(sigmas) == 0 {
		return warnStyle.Render("empty spectrum")
	}

	data := make([]float64, len(sigmas))
	for i, s := range sigmas {
		data[i] = safeLog10(s)
	}

	var sb strings.Builder
	sb.WriteString(headerStyle.Render("singular value spectrum (log10)"))
	sb.WriteByte('\n')
	if len(data) > 1 {
		sb.WriteString(asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(60),
			asciigraph.Caption("index"),
		))
		sb.WriteByte('\n')
	}
	sb.WriteString(Summary(sigmas, ydim, pdim))
	return sb.String()
}

// Summary is a one-line rank and conditioning report for a spectrum.
func Summary(sigmas []float64, ydim, pdim int) string {
	rank := analysis.NumericalRank(sigmas, ydim, pdim)
	cond := analysis.ConditionNumber(sigmas)
	line := fmt.Sprintf("rank %d/%d   smax %.3g   smin %.3g   cond %.3g",
		rank, len(sigmas), sigmas[0], sigmas[len(sigmas)-1], cond)
	if rank < len(sigmas) {
		return warnStyle.Render(line + "   (rank deficient)")
	}
	return labelStyle.Render(line)
}

// SpectraTable lists the singular values of several parameter points side
// by side.
func SpectraTable(points [][]float64, spectra [][]float64) string {
	var sb strings.Builder
	for idx, sigmas := range spectra {
		sb.WriteString(headerStyle.Render(fmt.Sprintf("p[%d] = %v", idx, points[idx])))
		sb.WriteByte('\n')
		for _, s := range sigmas {
			fmt.Fprintf(&sb, "  %12.6g\n", s)
		}
	}
	return sb.String()
}

// safeLog10 floors zero singular values at -16 so a rank-deficient
// spectrum still plots on a sane scale.
func safeLog10(v float64) float64 {
	if v <= 0 {
		return -16
	}
	return math.Log10(v)
}
