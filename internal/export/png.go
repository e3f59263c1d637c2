package export

import (
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/san-kum/lbmsim/internal/analysis"
	"github.com/san-kum/lbmsim/internal/experiment"
	"github.com/san-kum/lbmsim/internal/formula"
)

// maxCurves bounds the number of snapshots drawn on one figure.
const maxCurves = 8

// Figure builds the plot of a field: a line per snapshot and, when exact is
// not nil, the exact solution at the last time as a dashed black line.
func Figure(res *experiment.Result, field string, exact *formula.Formula) (*plot.Plot, error) {
	snaps, ok := res.Fields[field]
	if !ok || len(snaps) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrUnknownField, field)
	}

	p := plot.New()
	p.Title.Text = res.Name
	p.X.Label.Text = "x"
	p.Y.Label.Text = field

	for n, k := range pick(len(snaps), maxCurves) {
		line, err := plotter.NewLine(xys(res.X, snaps[k]))
		if err != nil {
			return nil, err
		}
		line.Color = plotutil.Color(n)
		line.Width = vg.Points(1)
		p.Add(line)
		p.Legend.Add(fmt.Sprintf("t=%.3g", res.Times[k]), line)
	}

	if exact != nil {
		t := res.Times[len(res.Times)-1]
		ref, err := analysis.ExactSolution(exact, t, res.X)
		if err != nil {
			return nil, err
		}
		line, err := plotter.NewLine(xys(res.X, ref))
		if err != nil {
			return nil, err
		}
		line.Color = color.Black
		line.Width = vg.Points(1)
		line.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}
		p.Add(line)
		p.Legend.Add("exact", line)
	}

	p.Legend.Top = true
	p.Legend.Left = false
	p.Legend.XOffs = -10
	p.Legend.YOffs = -10
	p.Add(plotter.NewGrid())
	return p, nil
}

// SavePlot renders the figure of a field to path. The image format follows
// the extension (png, svg, pdf, ...).
func SavePlot(path string, res *experiment.Result, field string, exact *formula.Formula) error {
	p, err := Figure(res, field, exact)
	if err != nil {
		return err
	}
	return p.Save(10*vg.Inch, 5*vg.Inch, path)
}

func xys(x, y []float64) plotter.XYs {
	pts := make(plotter.XYs, 0, len(x))
	for i := range x {
		if i < len(y) {
			pts = append(pts, plotter.XY{X: x[i], Y: y[i]})
		}
	}
	return pts
}

// pick returns at most n indices spread over [0, total), always including
// the first and the last.
func pick(total, n int) []int {
	if total <= n {
		idx := make([]int, total)
		for i := range idx {
			idx[i] = i
		}
		return idx
	}
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i * (total - 1) / (n - 1)
	}
	return idx
}
