package viz

import (
	"math"

	"github.com/guptarohit/asciigraph"
)

var seriesColors = []asciigraph.AnsiColor{asciigraph.Cyan, asciigraph.Yellow, asciigraph.Green, asciigraph.Red}

// Plot draws the series on one chart. Non finite values are replaced by
// zero so that a diverged run still renders.
func Plot(series [][]float64, legends []string, caption string, width, height int) string {
	data := make([][]float64, 0, len(series))
	for _, s := range series {
		if len(s) == 0 {
			continue
		}
		clean := make([]float64, len(s))
		for i, v := range s {
			if !math.IsNaN(v) && !math.IsInf(v, 0) {
				clean[i] = v
			}
		}
		data = append(data, clean)
	}
	if len(data) == 0 {
		return ""
	}

	opts := []asciigraph.Option{
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Precision(3),
		asciigraph.SeriesColors(seriesColors[:min(len(data), len(seriesColors))]...),
	}
	if caption != "" {
		opts = append(opts, asciigraph.Caption(caption))
	}
	if len(legends) >= len(data) {
		opts = append(opts, asciigraph.SeriesLegends(legends[:len(data)]...))
	}
	return asciigraph.PlotMany(data, opts...)
}
