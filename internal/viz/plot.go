// Package viz renders stored diagnostics series as terminal plots.
package viz

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/mdlab-go/mdrun/internal/diagnostics"
)

var (
	titleStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true)
	captionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

// PlotRun draws the per-atom energy and temperature series of a run.
func PlotRun(w io.Writer, runID string, samples []diagnostics.Sample) error {
	if len(samples) == 0 {
		return fmt.Errorf("viz: no samples to plot")
	}

	etot := make([]float64, len(samples))
	temp := make([]float64, len(samples))
	for i, s := range samples {
		etot[i] = s.EtotPerAtom
		temp[i] = s.TempK
	}

	sum := diagnostics.Summarize(samples)
	fmt.Fprintln(w, titleStyle.Render("run: "+runID))
	fmt.Fprintf(w, "%s\n\n", captionStyle.Render(fmt.Sprintf(
		"samples: %d  mean T: %.1fK (±%.1fK)  mean Etot/atom: %.4feV  max drift: %.2g",
		sum.Samples, sum.MeanTempK, sum.StdTempK, sum.MeanEtot, sum.MaxDrift)))

	for _, series := range []struct {
		data    []float64
		caption string
	}{
		{etot, "total energy per atom (eV)"},
		{temp, "temperature (K)"},
	} {
		graph := asciigraph.Plot(series.data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(series.caption),
		)
		fmt.Fprintln(w, graph)
		fmt.Fprintln(w)
	}
	return nil
}
