package storage

import (
	"encoding/json"
	"io"

	"github.com/mdlab-go/mdrun/internal/diagnostics"
)

// ExportData is the machine-readable dump of one run.
type ExportData struct {
	Meta    RunMetadata          `json:"meta"`
	Samples []diagnostics.Sample `json:"samples"`
}

// ExportJSON writes a full run (metadata plus diagnostics series) as
// indented JSON.
func (s *Store) ExportJSON(w io.Writer, runID string) error {
	meta, err := s.Load(runID)
	if err != nil {
		return err
	}
	samples, err := s.LoadSeries(runID)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(ExportData{Meta: *meta, Samples: samples})
}
