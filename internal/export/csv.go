package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/san-kum/lbmsim/internal/experiment"
)

// WriteCSV writes one row per cell: x followed by the field at every
// sampled time.
func WriteCSV(w io.Writer, res *experiment.Result, field string) error {
	snaps, ok := res.Fields[field]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownField, field)
	}

	cw := csv.NewWriter(w)

	header := []string{"x"}
	for _, t := range res.Times {
		header = append(header, "t="+strconv.FormatFloat(t, 'g', 8, 64))
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	row := make([]string, len(header))
	for i, x := range res.X {
		row[0] = strconv.FormatFloat(x, 'g', -1, 64)
		for k, u := range snaps {
			row[k+1] = strconv.FormatFloat(u[i], 'g', -1, 64)
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
