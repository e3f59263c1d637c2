package export

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/san-kum/lbmsim/internal/experiment"
)

// WriteHTML renders an interactive page with one line chart per field and a
// bar chart of the metrics.
func WriteHTML(w io.Writer, res *experiment.Result) error {
	if len(res.Fields) == 0 {
		return fmt.Errorf("%w: result has no fields", ErrUnknownField)
	}

	page := components.NewPage()
	page.SetPageTitle("lbmsim " + res.Name)

	for _, field := range res.FieldNames() {
		page.AddCharts(fieldChart(res, field))
	}
	if len(res.Metrics) > 0 {
		page.AddCharts(metricsChart(res))
	}
	return page.Render(w)
}

func fieldChart(res *experiment.Result, field string) *charts.Line {
	xs := make([]string, len(res.X))
	for i, x := range res.X {
		xs[i] = strconv.FormatFloat(x, 'f', 4, 64)
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Theme: "dark", Width: "1000px", Height: "500px"}),
		charts.WithTitleOpts(opts.Title{
			Title:    field,
			Subtitle: fmt.Sprintf("%s dx=%.3g dt=%.3g steps=%d", res.Name, res.Dx, res.Dt, res.Steps),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Bottom: "0"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "x", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Name: field}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "inside"}),
	)
	line.SetXAxis(xs)

	snaps := res.Fields[field]
	for _, k := range pick(len(snaps), maxCurves) {
		data := make([]opts.LineData, len(snaps[k]))
		for i, v := range snaps[k] {
			data[i] = opts.LineData{Value: v}
		}
		line.AddSeries(fmt.Sprintf("t=%.3g", res.Times[k]), data)
	}
	line.SetSeriesOptions(charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false)}))
	return line
}

func metricsChart(res *experiment.Result) *charts.Bar {
	names := make([]string, 0, len(res.Metrics))
	for name, v := range res.Metrics {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)

	data := make([]opts.BarData, len(names))
	for i, name := range names {
		data[i] = opts.BarData{Value: res.Metrics[name]}
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Theme: "dark", Width: "1000px", Height: "400px"}),
		charts.WithTitleOpts(opts.Title{Title: "metrics"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)
	bar.SetXAxis(names).
		AddSeries("value", data,
			charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Position: "top"}),
		)
	return bar
}
