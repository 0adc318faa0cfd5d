package export

import (
	"encoding/json"
	"io"
	"os"

	"github.com/san-kum/predlab/internal/predict"
)

// TableData is the JSON layout of an evaluation table.
type TableData struct {
	Model  string    `json:"model"`
	PIDs   []string  `json:"pids"`
	P      []float64 `json:"p"`
	YIDs   []string  `json:"yids"`
	Y      []float64 `json:"y"`
	Sigma  []float64 `json:"sigma"`
	Errors string    `json:"error_model"`
}

// Table builds the JSON layout from evaluation rows.
func Table(model string, pids []string, p []float64, rows []predict.Row, errModel predict.ErrorModel) TableData {
	data := TableData{
		Model:  model,
		PIDs:   pids,
		P:      p,
		YIDs:   make([]string, len(rows)),
		Y:      make([]float64, len(rows)),
		Sigma:  make([]float64, len(rows)),
		Errors: errModel.Kind.String(),
	}
	for i, r := range rows {
		data.YIDs[i] = r.YID
		data.Y[i] = r.Y
		data.Sigma[i] = r.Sigma
	}
	return data
}

// WriteJSON writes any export payload as indented JSON.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// WriteJSONFile writes an export payload to path.
func WriteJSONFile(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return WriteJSON(f, v)
}

// SpectraData is the JSON layout of spectrum diagnostics.
type SpectraData struct {
	Model   string      `json:"model"`
	Points  [][]float64 `json:"points"`
	Spectra [][]float64 `json:"spectra"`
	Ranks   []int       `json:"ranks"`
}
