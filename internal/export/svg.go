// Package export writes sampled results as CSV, JSON, SVG, PNG and HTML.
package export

import (
	"fmt"
	"math"
	"strings"
)

// Palette is used for successive snapshots.
var Palette = []string{"#00d7ff", "#5fff87", "#ffaf00", "#ff5f87", "#af87ff", "#ffff5f"}

// ProfileSVG draws every series over the shared abscissa x. Series are
// coloured from colors in turn.
func ProfileSVG(x []float64, series [][]float64, width, height int, colors []string) string {
	if len(x) < 2 || len(series) == 0 {
		return ""
	}
	if len(colors) == 0 {
		colors = Palette
	}

	// Find bounds
	minX, maxX := x[0], x[len(x)-1]
	minY, maxY := math.Inf(1), math.Inf(-1)
	for _, s := range series {
		for _, v := range s {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				continue
			}
			minY = math.Min(minY, v)
			maxY = math.Max(maxY, v)
		}
	}
	if math.IsInf(minY, 1) {
		minY, maxY = 0, 1
	}

	// Add padding
	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeY = maxY - minY

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height))

	if minY < 0 && maxY > 0 {
		y0 := float64(height) - (0-minY)/rangeY*float64(height)
		sb.WriteString(fmt.Sprintf(`<line x1="0" y1="%.1f" x2="%d" y2="%.1f" stroke="#444444" stroke-width="0.5"/>
`, y0, width, y0))
	}

	for k, s := range series {
		sb.WriteString(fmt.Sprintf(`<path fill="none" stroke="%s" stroke-width="1.5" d="`, colors[k%len(colors)]))
		move := true
		for i, v := range s {
			if i >= len(x) {
				break
			}
			if math.IsNaN(v) || math.IsInf(v, 0) {
				move = true
				continue
			}
			px := (x[i] - minX) / rangeX * float64(width)
			py := float64(height) - (v-minY)/rangeY*float64(height)
			if move {
				sb.WriteString(fmt.Sprintf("M%.1f,%.1f", px, py))
				move = false
			} else {
				sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", px, py))
			}
		}
		sb.WriteString("\"/>\n")
	}

	sb.WriteString("</svg>")
	return sb.String()
}
