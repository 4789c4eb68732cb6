package export

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/jtrac-dev/jtrac/internal"
)

// JSONLExporter exports the tracking history, one event per line
type JSONLExporter struct{}

// Export exports a report's tracking entries to JSONL format
func (e *JSONLExporter) Export(report *internal.PDNReport, w io.Writer) error {
	enc := json.NewEncoder(w)

	pdnID := ""
	if report.PDN != nil {
		pdnID = report.PDN.PDNID
	}

	for _, entry := range report.Tracking {
		obj := map[string]interface{}{
			"pdnId":     pdnID,
			"eventCode": entry.EventCode,
		}
		if entry.PDNID != "" {
			obj["pdnId"] = entry.PDNID
		}
		if entry.EventType != "" {
			obj["eventType"] = entry.EventType
		}
		if entry.Details != "" {
			obj["details"] = entry.Details
		}
		if entry.EmpID != "" {
			obj["empId"] = entry.EmpID
		}
		if entry.CreatedDate != "" {
			obj["createdDate"] = entry.CreatedDate
		}

		if err := enc.Encode(obj); err != nil {
			return fmt.Errorf("failed to encode tracking entry: %w", err)
		}
	}

	return nil
}

// Extension returns the file extension for this format
func (e *JSONLExporter) Extension() string {
	return "jsonl"
}
