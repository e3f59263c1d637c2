package export

import (
	"encoding/json"
	"errors"
	"io"

	"github.com/san-kum/lbmsim/internal/config"
	"github.com/san-kum/lbmsim/internal/experiment"
)

var ErrUnknownField = errors.New("export: unknown field")

type ExportData struct {
	ID     string             `json:"id,omitempty"`
	Config *config.Config     `json:"config,omitempty"`
	Result *experiment.Result `json:"result"`
}

func WriteJSON(w io.Writer, data ExportData) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}
