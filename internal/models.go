package internal

import (
	"encoding/json"
	"strings"
	"time"
)

// SuccessMessage is the envelope message the backend uses for business success.
const SuccessMessage = "Success"

// Envelope is the backend response wrapper: {status, message, data}
type Envelope[T any] struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
	Data    T      `json:"data"`
}

// OK reports whether the backend flagged the call as successful
func (e *Envelope[T]) OK() bool {
	return e != nil && e.Message == SuccessMessage
}

// Session is the signed-in employee as seen by the client
type Session struct {
	EmployeeID string `json:"employee_id" yaml:"employee_id"`
	FirstName  string `json:"first_name" yaml:"first_name"`
	LastName   string `json:"last_name" yaml:"last_name"`
	Role       string `json:"role" yaml:"role"`
	ExpiresAt  int64  `json:"expires_at" yaml:"expires_at"` // seconds since epoch, 0 if unknown
}

// FullName joins first and last name
func (s *Session) FullName() string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(s.FirstName + " " + s.LastName)
}

// AuthData is the payload of a successful login
type AuthData struct {
	EmpID     json.Number `json:"empId"`
	FirstName string      `json:"firstName"`
	LastName  string      `json:"lastName"`
	Role      string      `json:"role"`
	Token     string      `json:"token,omitempty"`
}

// LoginRequest is posted to /auth/login
type LoginRequest struct {
	EmpID    int64  `json:"empId"`
	Password string `json:"password"`
}

// SignupRequest is posted to /auth/signup
type SignupRequest struct {
	EmployeeID string `json:"employeeId"`
	FullName   string `json:"fullName"`
	Email      string `json:"email"`
	Department string `json:"department"`
	Password   string `json:"password"`
}

// PDN is a Problem Description Note as returned by the backend
type PDN struct {
	PDNID                 string `json:"pdnId" yaml:"pdn_id"`
	Description           string `json:"description" yaml:"description"`
	CurrentStatus         string `json:"currentStatus" yaml:"current_status"`
	CreatedByFirstName    string `json:"createdByFirstName" yaml:"created_by"`
	CurrentOwnerFirstName string `json:"currentOwnerFirstName" yaml:"current_owner"`
	CreatedDate           string `json:"createdDate" yaml:"created_date"`
	UpdatedDate           string `json:"updatedDate,omitempty" yaml:"updated_date,omitempty"`
	Workspace             string `json:"workspace" yaml:"workspace"`
	Priority              string `json:"priority,omitempty" yaml:"priority,omitempty"`
	ProblemID             string `json:"problemId,omitempty" yaml:"problem_id,omitempty"`
	ImpactedArea          string `json:"impactedArea,omitempty" yaml:"impacted_area,omitempty"`
	Module                string `json:"module,omitempty" yaml:"module,omitempty"`
	SubModule             string `json:"subModule,omitempty" yaml:"sub_module,omitempty"`
	Product               string `json:"product,omitempty" yaml:"product,omitempty"`
}

// GetCreatedAt parses CreatedDate; the zero time if it cannot be parsed
func (p *PDN) GetCreatedAt() time.Time {
	t, _ := ParseTimestamp(p.CreatedDate)
	return t
}

// GetUpdatedAt parses UpdatedDate, falling back to the creation date
func (p *PDN) GetUpdatedAt() time.Time {
	if t, ok := ParseTimestamp(p.UpdatedDate); ok {
		return t
	}
	return p.GetCreatedAt()
}

// Component lists the source paths a PDN touches
type Component struct {
	Component   string      `json:"component" yaml:"component"` // newline-delimited file paths
	CreatedBy   json.Number `json:"createdBy,omitempty" yaml:"created_by,omitempty"`
	CreatedDate string      `json:"createdDate,omitempty" yaml:"created_date,omitempty"`
	UpdatedDate string      `json:"updatedDate,omitempty" yaml:"updated_date,omitempty"`
	PDNID       string      `json:"pdnId,omitempty" yaml:"pdn_id,omitempty"`
}

// Paths returns the trimmed, non-empty lines of the component text
func (c Component) Paths() []string {
	lines := strings.Split(c.Component, "\n")
	paths := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" {
			paths = append(paths, line)
		}
	}
	return paths
}

// TrackingEntry is one immutable event in a PDN's history
type TrackingEntry struct {
	EventCode   string      `json:"eventCode" yaml:"event_code"`
	EventType   string      `json:"eventType,omitempty" yaml:"event_type,omitempty"`
	Details     string      `json:"details,omitempty" yaml:"details,omitempty"`
	EmpID       json.Number `json:"empId,omitempty" yaml:"emp_id,omitempty"`
	CreatedDate string      `json:"createdDate,omitempty" yaml:"created_date,omitempty"`
	UpdatedDate string      `json:"updatedDate,omitempty" yaml:"updated_date,omitempty"`
	PDNID       string      `json:"pdnId,omitempty" yaml:"pdn_id,omitempty"`
}

// NewPDNRequest is posted to /pdn/create
type NewPDNRequest struct {
	Description   string `json:"description" yaml:"description"`
	CreatedBy     int64  `json:"createdBy" yaml:"created_by"`
	ProblemSource string `json:"problemSource" yaml:"problem_source"`
	ProblemID     string `json:"problemId" yaml:"problem_id"`
	Workspace     string `json:"workspace" yaml:"workspace"`
	Module        string `json:"module" yaml:"module"`
	SubModule     string `json:"subModule" yaml:"sub_module"`
	Product       string `json:"product" yaml:"product"`
	ImpactedArea  string `json:"impactedArea" yaml:"impacted_area"`
	Component     string `json:"component" yaml:"component"`
	EventCode     string `json:"eventCode" yaml:"event_code"`
}

// PDNReport bundles everything the detail view shows, used by exporters
type PDNReport struct {
	PDN        *PDN            `json:"pdn" yaml:"pdn"`
	Components []Component     `json:"components" yaml:"components"`
	Tracking   []TrackingEntry `json:"tracking" yaml:"tracking"`
	ExportedAt string          `json:"exported_at,omitempty" yaml:"exported_at,omitempty"`
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"01/02/2006",
}

// ParseTimestamp parses the date layouts the backend is known to emit.
// Zone-less values are read as UTC.
func ParseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// IsDateOnly reports whether s carries no time-of-day component
func IsDateOnly(s string) bool {
	s = strings.TrimSpace(s)
	if _, err := time.Parse("2006-01-02", s); err == nil {
		return true
	}
	_, err := time.Parse("01/02/2006", s)
	return err == nil
}
