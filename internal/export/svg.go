// Package export writes spectrum plots and evaluation tables to files.
package export

import (
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/san-kum/predlab/internal/analysis"
)

const (
	svgColWidth  = 60.0
	svgHeight    = 320.0
	svgPadTop    = 30.0
	svgPadBottom = 30.0
	svgPadLeft   = 50.0
)

// SpectrumSVG renders singular-value spectra, one column of horizontal
// ticks per parameter point on a log axis, and writes the image to path.
// When plotTol is set, the numerical-zero threshold is drawn in red under
// each column.
func SpectrumSVG(path string, spectra [][]float64, ydim, pdim int, title string, plotTol bool) error {
	if len(spectra) == 0 {
		return fmt.Errorf("export: no spectra to plot")
	}
	return os.WriteFile(path, []byte(spectrumSVG(spectra, ydim, pdim, title, plotTol)), 0644)
}

func spectrumSVG(spectra [][]float64, ydim, pdim int, title string, plotTol bool) string {
	// Log-scale bounds over all finite positive values, tolerance included.
	lo, hi := math.Inf(1), math.Inf(-1)
	consider := func(v float64) {
		if v <= 0 {
			return
		}
		l := math.Log10(v)
		lo = math.Min(lo, l)
		hi = math.Max(hi, l)
	}
	for _, sigmas := range spectra {
		for _, s := range sigmas {
			consider(s)
		}
		if plotTol {
			consider(analysis.Tolerance(sigmas, ydim, pdim))
		}
	}
	if math.IsInf(lo, 1) {
		lo, hi = -1, 1
	}
	if hi-lo < 1 {
		mid := (hi + lo) / 2
		lo, hi = mid-0.5, mid+0.5
	}

	width := svgPadLeft + svgColWidth*float64(len(spectra)) + 10
	yOf := func(v float64) float64 {
		frac := (math.Log10(v) - lo) / (hi - lo)
		return svgHeight - svgPadBottom - frac*(svgHeight-svgPadTop-svgPadBottom)
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="#ffffff"/>
`, width, svgHeight, width, svgHeight))

	if title != "" {
		sb.WriteString(fmt.Sprintf(`<text x="%.0f" y="18" font-size="13" font-family="sans-serif" text-anchor="middle">%s</text>
`, width/2, title))
	}

	// Axis labels at the decades.
	for d := math.Ceil(lo); d <= math.Floor(hi); d++ {
		y := yOf(math.Pow(10, d))
		sb.WriteString(fmt.Sprintf(`<text x="%.0f" y="%.1f" font-size="10" font-family="sans-serif" text-anchor="end">1e%d</text>
`, svgPadLeft-6, y+3, int(d)))
		sb.WriteString(fmt.Sprintf(`<line x1="%.0f" y1="%.1f" x2="%.0f" y2="%.1f" stroke="#dddddd"/>
`, svgPadLeft, y, width-10, y))
	}

	for idx, sigmas := range spectra {
		x0 := svgPadLeft + svgColWidth*(float64(idx)+0.1)
		x1 := svgPadLeft + svgColWidth*(float64(idx)+0.9)
		for _, s := range sigmas {
			if s <= 0 {
				continue
			}
			y := yOf(s)
			sb.WriteString(fmt.Sprintf(`<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="#000000" stroke-width="1.5"/>
`, x0, y, x1, y))
		}
		if plotTol {
			if tol := analysis.Tolerance(sigmas, ydim, pdim); tol > 0 {
				y := yOf(tol)
				sb.WriteString(fmt.Sprintf(`<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="#cc0000" stroke-width="1"/>
`, x0, y, x1, y))
			}
		}
		sb.WriteString(fmt.Sprintf(`<text x="%.1f" y="%.0f" font-size="10" font-family="sans-serif" text-anchor="middle">%d</text>
`, (x0+x1)/2, svgHeight-10, idx))
	}

	sb.WriteString("</svg>\n")
	return sb.String()
}
