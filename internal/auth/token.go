package auth

import (
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jtrac-dev/jtrac/internal"
)

// ErrMalformedToken is returned when a token's claims cannot be decoded
var ErrMalformedToken = errors.New("malformed token")

// Claims are the fields the backend embeds in its tokens
type Claims struct {
	EmpID     json.Number `json:"empId,omitempty"`
	FirstName string      `json:"firstName,omitempty"`
	LastName  string      `json:"lastName,omitempty"`
	Role      string      `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// EmployeeID prefers the empId claim and falls back to the subject
func (c *Claims) EmployeeID() string {
	if c.EmpID != "" {
		return c.EmpID.String()
	}
	return c.Subject
}

// Session builds the client-side session the claims describe
func (c *Claims) Session() *internal.Session {
	s := &internal.Session{
		EmployeeID: c.EmployeeID(),
		FirstName:  c.FirstName,
		LastName:   c.LastName,
		Role:       c.Role,
	}
	if c.ExpiresAt != nil {
		s.ExpiresAt = c.ExpiresAt.Unix()
	}
	return s
}

// DecodeToken reads the claim payload without verifying the signature.
// Signature trust belongs to the backend.
func DecodeToken(token string) (*Claims, error) {
	var claims Claims
	parser := jwt.NewParser(jwt.WithJSONNumber())
	if _, _, err := parser.ParseUnverified(token, &claims); err != nil {
		return nil, errors.Join(ErrMalformedToken, err)
	}
	return &claims, nil
}

// IsTokenExpired reports whether exp is at or before now. Undecodable tokens
// and tokens without exp count as expired.
func IsTokenExpired(token string, now time.Time) bool {
	claims, err := DecodeToken(token)
	if err != nil {
		internal.LogDebug("Token decode failed: %v", err)
		return true
	}
	if claims.ExpiresAt == nil {
		return true
	}
	return !now.Before(claims.ExpiresAt.Time)
}

// IsValidTokenFormat is a structural check: exactly three dot-separated segments
func IsValidTokenFormat(token string) bool {
	return token != "" && len(strings.Split(token, ".")) == 3
}
