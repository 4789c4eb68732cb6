package views

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/jtrac-dev/jtrac/internal"
	"github.com/jtrac-dev/jtrac/internal/api"
	"github.com/jtrac-dev/jtrac/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validCreateForm() CreateForm {
	return CreateFormFromRequest(internal.CreateTestNewPDNRequest())
}

func TestCreateFormValidate(t *testing.T) {
	form := validCreateForm()
	require.NoError(t, form.Validate())

	var verr *internal.ValidationError
	empty := CreateForm{}
	require.ErrorAs(t, empty.Validate(), &verr)
	for _, field := range []string{"description", "problemSource", "problemId", "workspace", "impactedArea", "subModule", "component"} {
		assert.Contains(t, verr.Fields, field)
	}
	assert.NotContains(t, verr.Fields, "product", "product is optional")
	assert.Equal(t, "Description is required", verr.Fields["description"])

	form.Description = "   "
	require.ErrorAs(t, form.Validate(), &verr)
	assert.Len(t, verr.Fields, 1)
}

func TestCreateFormCheckChoices(t *testing.T) {
	v := internal.NewConfigViper()
	v.Set("state_dir", testutil.CreateTempDir(t))
	cfg, err := internal.LoadConfig(v, "")
	require.NoError(t, err)

	form := validCreateForm()
	require.NoError(t, form.CheckChoices(cfg))

	form.Workspace = "ACME"
	form.SubModule = "Roles" // belongs to Claim, not Policy
	var verr *internal.ValidationError
	require.ErrorAs(t, form.CheckChoices(cfg), &verr)
	assert.Contains(t, verr.Fields, "workspace")
	assert.Contains(t, verr.Fields, "subModule")
}

func TestCreateFormSubmit(t *testing.T) {
	backend := testutil.NewBackend(t)
	backend.HandleJSON(http.MethodPost, "/pdn/create", http.StatusOK, testutil.Envelope(200, "Success", map[string]any{"pdnId": "IM357"}))

	form := validCreateForm()
	route, err := form.Submit(context.Background(), api.New(backend.URL()), &internal.Session{EmployeeID: "2732290"})
	require.NoError(t, err)
	assert.Equal(t, "/app/pdn/IM357", route)

	posted := backend.RequestsTo(http.MethodPost, "/pdn/create")
	require.Len(t, posted, 1)
	var payload map[string]any
	require.NoError(t, json.Unmarshal(posted[0].Body, &payload))
	assert.Equal(t, "CREATE_PDN", payload["eventCode"])
	assert.Equal(t, float64(2732290), payload["createdBy"])
	assert.Equal(t, "IM-4711", payload["problemId"])
}

type failingCreator struct{ err error }

func (f failingCreator) CreatePDN(ctx context.Context, req internal.NewPDNRequest) (string, error) {
	return "", f.err
}

func TestCreateFormSubmitFailures(t *testing.T) {
	form := validCreateForm()
	before := form
	session := &internal.Session{EmployeeID: "101"}

	_, err := form.Submit(context.Background(), failingCreator{errors.New("HTTP error! status: 500")}, session)
	assert.ErrorIs(t, err, ErrCreateFailed)
	assert.Equal(t, before, form, "form intact for correction")

	_, err = form.Submit(context.Background(), failingCreator{&internal.HTTPError{Status: 401}}, session)
	var redirect *RedirectError
	assert.ErrorAs(t, err, &redirect)

	_, err = form.Submit(context.Background(), failingCreator{}, nil)
	assert.ErrorAs(t, err, &redirect)

	invalid := CreateForm{}
	_, err = invalid.Submit(context.Background(), failingCreator{}, session)
	var verr *internal.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestSigninFormValidate(t *testing.T) {
	tests := []struct {
		name   string
		form   SigninForm
		fields []string
	}{
		{"valid", SigninForm{EmployeeID: "101", Password: "secret"}, nil},
		{"missing both", SigninForm{}, []string{"employeeId", "password"}},
		{"non-numeric id", SigninForm{EmployeeID: "abc", Password: "x"}, []string{"employeeId"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.form.Validate()
			if tt.fields == nil {
				assert.NoError(t, err)
				return
			}
			var verr *internal.ValidationError
			require.ErrorAs(t, err, &verr)
			for _, f := range tt.fields {
				assert.Contains(t, verr.Fields, f)
			}
		})
	}

	f := SigninForm{EmployeeID: " 2732290 ", Password: "pw"}
	assert.Equal(t, internal.LoginRequest{EmpID: 2732290, Password: "pw"}, f.Request())
}

func TestSignupFormValidate(t *testing.T) {
	valid := SignupForm{
		EmployeeID:      "101",
		FullName:        "Alice Smith",
		Email:           "alice@example.com",
		Department:      "Developer",
		Password:        "secret123",
		ConfirmPassword: "secret123",
	}
	require.NoError(t, valid.Validate())
	assert.Equal(t, "alice@example.com", valid.Request().Email)

	tests := []struct {
		name   string
		mutate func(f *SignupForm)
		field  string
		msg    string
	}{
		{"short id", func(f *SignupForm) { f.EmployeeID = "12" }, "employeeId", "Employee ID must be at least 3 characters"},
		{"short name", func(f *SignupForm) { f.FullName = "A" }, "fullName", "Full name must be at least 2 characters"},
		{"bad email", func(f *SignupForm) { f.Email = "alice@example" }, "email", "Please enter a valid email address"},
		{"no department", func(f *SignupForm) { f.Department = "" }, "department", "Please select a department"},
		{"short password", func(f *SignupForm) { f.Password, f.ConfirmPassword = "short", "short" }, "password", "Password must be at least 8 characters"},
		{"mismatch", func(f *SignupForm) { f.ConfirmPassword = "secret124" }, "confirmPassword", "Passwords don't match"},
		{"short mismatch", func(f *SignupForm) { f.ConfirmPassword = "x" }, "confirmPassword", "Passwords don't match"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := valid
			tt.mutate(&f)
			var verr *internal.ValidationError
			require.ErrorAs(t, f.Validate(), &verr)
			assert.Equal(t, tt.msg, verr.Fields[tt.field])
		})
	}
}

func TestSignupFormCheckChoices(t *testing.T) {
	v := internal.NewConfigViper()
	v.Set("state_dir", testutil.CreateTempDir(t))
	cfg, err := internal.LoadConfig(v, "")
	require.NoError(t, err)

	form := SignupForm{Department: "Tester"}
	require.NoError(t, form.CheckChoices(cfg))

	form.Department = "Astronaut"
	var verr *internal.ValidationError
	require.ErrorAs(t, form.CheckChoices(cfg), &verr)
	assert.Equal(t, "Department must be one of Developer, Tester, Lead, Manager", verr.Fields["department"])

	// an empty department is reported by Validate
	form.Department = ""
	assert.NoError(t, form.CheckChoices(cfg))
}
