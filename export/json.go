package export

import (
	"encoding/json"
	"io"

	"cardlink/debug"
)

// JSONExporter exports sessions in their persisted JSON shape.
type JSONExporter struct{}

// NewJSONExporter creates a new JSON exporter
func NewJSONExporter() *JSONExporter {
	return &JSONExporter{}
}

// Export writes the session as indented JSON.
func (e *JSONExporter) Export(w io.Writer, s debug.Session) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(s)
}

// ExportAll writes a whole history as a JSON array.
func (e *JSONExporter) ExportAll(w io.Writer, sessions []debug.Session) error {
	if sessions == nil {
		sessions = []debug.Session{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(sessions)
}

// FileExtension returns the file extension for JSON
func (e *JSONExporter) FileExtension() string {
	return ".json"
}

// FormatName returns the format name
func (e *JSONExporter) FormatName() string {
	return "JSON"
}
