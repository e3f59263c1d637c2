package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/lbmsim/internal/experiment"
	"github.com/san-kum/lbmsim/internal/formula"
)

func result() *experiment.Result {
	return &experiment.Result{
		Name:  "test",
		Times: []float64{0, 0.5},
		X:     []float64{0.25, 0.75},
		Fields: map[string][][]float64{
			"u": {{1, 0}, {0.5, 0.25}},
		},
		Metrics: map[string]float64{"mass": 0.5, "max": 1},
		Steps:   64,
		Dt:      1.0 / 128,
		Dx:      0.5,
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, result(), "u"))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	want := [][]string{
		{"x", "t=0", "t=0.5"},
		{"0.25", "1", "0.5"},
		{"0.75", "0", "0.25"},
	}
	if diff := cmp.Diff(want, records); diff != "" {
		t.Errorf("CSV mismatch (-want +got):\n%s", diff)
	}

	assert.ErrorIs(t, WriteCSV(&buf, result(), "v"), ErrUnknownField)
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, ExportData{ID: "abc", Result: result()}))

	var got ExportData
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "abc", got.ID)
	assert.Equal(t, result(), got.Result)
}

func TestProfileSVG(t *testing.T) {
	res := result()
	svg := ProfileSVG(res.X, res.Fields["u"], 400, 200, nil)
	assert.True(t, strings.HasPrefix(svg, "<?xml"))
	assert.Equal(t, 2, strings.Count(svg, "<path"))
	assert.Contains(t, svg, Palette[1])

	assert.Empty(t, ProfileSVG([]float64{1}, res.Fields["u"], 400, 200, nil))
}

func TestSavePlot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "u.png")
	exact := formula.MustCompile("1 - x", []string{"t", "x"}, nil)
	require.NoError(t, SavePlot(path, result(), "u", exact))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))

	assert.ErrorIs(t, SavePlot(path, result(), "v", nil), ErrUnknownField)
}

func TestWriteHTML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteHTML(&buf, result()))
	html := buf.String()
	assert.Contains(t, html, "echarts")
	assert.Contains(t, html, "lbmsim test")
	assert.Contains(t, html, "t=0.5")
}

func TestPick(t *testing.T) {
	assert.Equal(t, []int{0, 1, 2}, pick(3, 8))
	assert.Equal(t, []int{0, 3, 6, 9}, pick(10, 4))
}
