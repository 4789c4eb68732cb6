package views

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/jtrac-dev/jtrac/internal"
)

// CreateEventCode marks a tracking event as the record's creation
const CreateEventCode = "CREATE_PDN"

// ErrCreateFailed is the generic failure shown when a record cannot be created
var ErrCreateFailed = errors.New("failed to create PDN, please try again")

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Creator is the part of the API client the creation form uses
type Creator interface {
	CreatePDN(ctx context.Context, req internal.NewPDNRequest) (string, error)
}

// CreateForm is the new-record form
type CreateForm struct {
	Description   string
	ProblemSource string
	ProblemID     string
	Workspace     string
	Module        string
	SubModule     string
	Product       string
	ImpactedArea  string
	Component     string
}

// CreateFormFromRequest refills a form, e.g. from a saved draft
func CreateFormFromRequest(req internal.NewPDNRequest) CreateForm {
	return CreateForm{
		Description:   req.Description,
		ProblemSource: req.ProblemSource,
		ProblemID:     req.ProblemID,
		Workspace:     req.Workspace,
		Module:        req.Module,
		SubModule:     req.SubModule,
		Product:       req.Product,
		ImpactedArea:  req.ImpactedArea,
		Component:     req.Component,
	}
}

// Validate runs the presence checks that block submission
func (f *CreateForm) Validate() error {
	v := &internal.ValidationError{}
	required := []struct {
		field, value, message string
	}{
		{"description", f.Description, "Description is required"},
		{"problemSource", f.ProblemSource, "Problem source is required"},
		{"problemId", f.ProblemID, "Problem statement is required"},
		{"workspace", f.Workspace, "Workspace is required"},
		{"impactedArea", f.ImpactedArea, "Impacted area is required"},
		{"subModule", f.SubModule, "Sub-module is required"},
		{"component", f.Component, "Components list is required"},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			v.Add(r.field, r.message)
		}
	}
	return v.OrNil()
}

// CheckChoices verifies select-style fields hold one of the configured options
func (f *CreateForm) CheckChoices(cfg *internal.Config) error {
	v := &internal.ValidationError{}
	if f.Workspace != "" && len(cfg.Workspaces) > 0 && !slices.Contains(cfg.Workspaces, f.Workspace) {
		v.Add("workspace", fmt.Sprintf("Workspace must be one of %s", strings.Join(cfg.Workspaces, ", ")))
	}
	if f.ProblemSource != "" && len(cfg.ProblemSources) > 0 && !slices.Contains(cfg.ProblemSources, f.ProblemSource) {
		v.Add("problemSource", fmt.Sprintf("Problem source must be one of %s", strings.Join(cfg.ProblemSources, ", ")))
	}
	if f.ImpactedArea != "" && len(cfg.Modules) > 0 && !slices.Contains(cfg.Modules, f.ImpactedArea) {
		v.Add("impactedArea", fmt.Sprintf("Impacted area must be one of %s", strings.Join(cfg.Modules, ", ")))
	}
	if f.SubModule != "" {
		if subs := cfg.SubModulesFor(f.ImpactedArea); len(subs) > 0 && !slices.Contains(subs, f.SubModule) {
			v.Add("subModule", fmt.Sprintf("Sub-module must be one of %s", strings.Join(subs, ", ")))
		}
	}
	return v.OrNil()
}

// Request builds the create payload on behalf of createdBy
func (f *CreateForm) Request(createdBy int64) internal.NewPDNRequest {
	return internal.NewPDNRequest{
		Description:   strings.TrimSpace(f.Description),
		CreatedBy:     createdBy,
		ProblemSource: f.ProblemSource,
		ProblemID:     strings.TrimSpace(f.ProblemID),
		Workspace:     f.Workspace,
		Module:        f.Module,
		SubModule:     f.SubModule,
		Product:       strings.TrimSpace(f.Product),
		ImpactedArea:  f.ImpactedArea,
		Component:     f.Component,
		EventCode:     CreateEventCode,
	}
}

// Submit validates and posts the form, returning the new record's route.
// On failure the form is left as it was.
func (f *CreateForm) Submit(ctx context.Context, c Creator, session *internal.Session) (string, error) {
	if err := f.Validate(); err != nil {
		return "", err
	}
	if session == nil {
		return "", &RedirectError{To: "/"}
	}
	createdBy, err := strconv.ParseInt(session.EmployeeID, 10, 64)
	if err != nil {
		return "", fmt.Errorf("session employee id %q is not numeric: %w", session.EmployeeID, err)
	}

	id, err := c.CreatePDN(ctx, f.Request(createdBy))
	if err != nil {
		internal.LogError("Error creating PDN: %v", err)
		if errors.Is(err, internal.ErrUnauthorized) {
			return "", &RedirectError{To: "/", Cause: err}
		}
		return "", fmt.Errorf("%w: %w", ErrCreateFailed, err)
	}
	internal.LogInfo("PDN %s created", id)
	return PDNRoute(id), nil
}

// SigninForm holds sign-in credentials
type SigninForm struct {
	EmployeeID string
	Password   string
}

// Validate requires a numeric employee id and a password
func (f *SigninForm) Validate() error {
	v := &internal.ValidationError{}
	id := strings.TrimSpace(f.EmployeeID)
	if id == "" {
		v.Add("employeeId", "Employee ID is required")
	} else if _, err := strconv.ParseInt(id, 10, 64); err != nil {
		v.Add("employeeId", "Employee ID must be numeric")
	}
	if f.Password == "" {
		v.Add("password", "Password is required")
	}
	return v.OrNil()
}

// Request builds the login payload; call after Validate
func (f *SigninForm) Request() internal.LoginRequest {
	id, _ := strconv.ParseInt(strings.TrimSpace(f.EmployeeID), 10, 64)
	return internal.LoginRequest{EmpID: id, Password: f.Password}
}

// SignupForm holds registration details
type SignupForm struct {
	EmployeeID      string
	FullName        string
	Email           string
	Department      string
	Password        string
	ConfirmPassword string
}

// Validate applies the registration rules, one message per field
func (f *SignupForm) Validate() error {
	v := &internal.ValidationError{}
	if len(f.EmployeeID) < 3 {
		v.Add("employeeId", "Employee ID must be at least 3 characters")
	}
	if len(f.FullName) < 2 {
		v.Add("fullName", "Full name must be at least 2 characters")
	}
	if !emailPattern.MatchString(f.Email) {
		v.Add("email", "Please enter a valid email address")
	}
	if f.Department == "" {
		v.Add("department", "Please select a department")
	}
	if len(f.Password) < 8 {
		v.Add("password", "Password must be at least 8 characters")
	}
	if len(f.ConfirmPassword) < 8 {
		v.Add("confirmPassword", "Please confirm your password")
	}
	if f.Password != f.ConfirmPassword {
		v.Set("confirmPassword", "Passwords don't match")
	}
	return v.OrNil()
}

// CheckChoices verifies the department is one of the configured roles
func (f *SignupForm) CheckChoices(cfg *internal.Config) error {
	v := &internal.ValidationError{}
	if f.Department != "" && len(cfg.Roles) > 0 && !slices.Contains(cfg.Roles, f.Department) {
		v.Add("department", fmt.Sprintf("Department must be one of %s", strings.Join(cfg.Roles, ", ")))
	}
	return v.OrNil()
}

// Request builds the signup payload; the confirmation is not sent
func (f *SignupForm) Request() internal.SignupRequest {
	return internal.SignupRequest{
		EmployeeID: f.EmployeeID,
		FullName:   f.FullName,
		Email:      f.Email,
		Department: f.Department,
		Password:   f.Password,
	}
}

// jsonNumber keeps numeric ids numeric on the wire and drops anything else
func jsonNumber(s string) json.Number {
	if _, err := strconv.ParseInt(s, 10, 64); err != nil {
		return ""
	}
	return json.Number(s)
}
