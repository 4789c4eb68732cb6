package export

import (
	"encoding/json"
	"io"

	"github.com/jtrac-dev/jtrac/internal"
)

// JSONExporter exports a report as one pretty-printed document
type JSONExporter struct{}

// Export exports a report to JSON format
func (e *JSONExporter) Export(report *internal.PDNReport, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(report)
}

// Extension returns the file extension for this format
func (e *JSONExporter) Extension() string {
	return "json"
}
