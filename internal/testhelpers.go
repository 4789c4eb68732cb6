package internal

import (
	"encoding/json"
	"time"
)

// CreateTestPDN creates a PDN with sample data
func CreateTestPDN(id, description, status string, created time.Time) *PDN {
	return &PDN{
		PDNID:                 id,
		Description:           description,
		CurrentStatus:         status,
		CreatedByFirstName:    "Alice",
		CurrentOwnerFirstName: "Bob",
		CreatedDate:           created.UTC().Format(time.RFC3339),
		UpdatedDate:           created.Add(time.Hour).UTC().Format(time.RFC3339),
		Workspace:             "IM-frontend-app",
	}
}

// CreateTestReport creates a report with one component and two tracking events
func CreateTestReport(id string) *PDNReport {
	created := time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)
	return &PDNReport{
		PDN: CreateTestPDN(id, "OAuth Integration", "Open", created),
		Components: []Component{
			{Component: "src/auth/oauth.go\nsrc/auth/token.go", CreatedBy: json.Number("101"), PDNID: id},
		},
		Tracking: []TrackingEntry{
			{EventCode: "CREATE_PDN", Details: "Created", EmpID: json.Number("101"), CreatedDate: "2024-01-15T10:30:00Z", PDNID: id},
			{EventCode: "UPDATE_PDN", Details: "Moved to review", EmpID: json.Number("102"), CreatedDate: "2024-01-16T09:00:00Z", PDNID: id},
		},
		ExportedAt: created.Add(48 * time.Hour).Format(time.RFC3339),
	}
}

// CreateTestNewPDNRequest creates a creation form that passes validation
func CreateTestNewPDNRequest() NewPDNRequest {
	return NewPDNRequest{
		Description:   "Login button unresponsive",
		CreatedBy:     101,
		ProblemSource: "IM",
		ProblemID:     "IM-4711",
		Workspace:     "IM",
		Module:        "Policy",
		SubModule:     "OAuth",
		Product:       "Portal",
		ImpactedArea:  "Policy",
		Component:     "src/auth/login.go",
		EventCode:     "CREATE_PDN",
	}
}
