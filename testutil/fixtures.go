package testutil

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenSecret signs tokens minted by MakeToken. The client never verifies it.
var TokenSecret = []byte("jtrac-test-secret")

// MakeToken mints an HS256 token for empID expiring at exp
func MakeToken(t *testing.T, empID int64, exp time.Time) string {
	t.Helper()
	claims := jwt.MapClaims{
		"empId":     empID,
		"firstName": "Alice",
		"lastName":  "Smith",
		"role":      "Developer",
		"iat":       time.Now().Unix(),
		"exp":       exp.Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(TokenSecret)
	if err != nil {
		t.Fatalf("Failed to sign token: %v", err)
	}
	return token
}

// MakeTokenWithoutExpiry mints a token carrying no exp claim
func MakeTokenWithoutExpiry(t *testing.T, empID int64) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"empId": empID}).SignedString(TokenSecret)
	if err != nil {
		t.Fatalf("Failed to sign token: %v", err)
	}
	return token
}

// SamplePDNs returns backend-shaped PDN records used across list tests.
func SamplePDNs() []map[string]interface{} {
	return []map[string]interface{}{
		{
			"pdnId":                 "PDN-001",
			"description":           "OAuth Integration",
			"currentStatus":         "Open",
			"createdByFirstName":    "Alice",
			"currentOwnerFirstName": "Bob",
			"createdDate":           "2024-01-15T10:30:00Z",
			"updatedDate":           "2024-01-20T09:00:00Z",
			"workspace":             "IM-frontend-app",
		},
		{
			"pdnId":                 "PDN-002",
			"description":           "Claim export timeout",
			"currentStatus":         "In Progress",
			"createdByFirstName":    "Carol",
			"currentOwnerFirstName": "Alice",
			"createdDate":           "2024-01-10T08:00:00Z",
			"updatedDate":           "2024-01-25T12:00:00Z",
			"workspace":             "DELL-backend-services",
		},
		{
			"pdnId":                 "PDN-003",
			"description":           "Session refresh loop",
			"currentStatus":         "Closed",
			"createdByFirstName":    "Alice",
			"currentOwnerFirstName": "Dave",
			"createdDate":           "2024-02-01T14:45:00Z",
			"updatedDate":           "2024-02-02T10:00:00Z",
			"workspace":             "IM-frontend-app",
		},
	}
}

// Envelope wraps data in the backend's {status, message, data} shape
func Envelope(status int, message string, data interface{}) map[string]interface{} {
	return map[string]interface{}{
		"status":  status,
		"message": message,
		"data":    data,
	}
}
