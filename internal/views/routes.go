// Package views holds the screen logic of the client: routing, list
// projections, the detail view and the forms. Rendering lives in cmd.
package views

import (
	"fmt"
	"net/url"
	"strings"
)

// Route is one client-side screen
type Route struct {
	Pattern string
	Name    string
	Guarded bool
}

// Routes is the client's route table. Everything under /app is guarded.
var Routes = []Route{
	{Pattern: "/", Name: "signin"},
	{Pattern: "/signup", Name: "signup"},
	{Pattern: "/app", Name: "app", Guarded: true},
	{Pattern: "/app/workspace", Name: "workspace", Guarded: true},
	{Pattern: "/app/new-pdn", Name: "new-pdn", Guarded: true},
	{Pattern: "/app/my-pdn", Name: "my-pdn", Guarded: true},
	{Pattern: "/app/pdn/:id", Name: "pdn", Guarded: true},
	{Pattern: "/app/git/:gitRepo", Name: "git", Guarded: true},
}

// NotFound is returned by Match for unknown paths
var NotFound = Route{Name: "not-found"}

// HomeRoute is where a successful sign-in lands
const HomeRoute = "/app/git/All-GIT"

// Match resolves path to a route and its parameters
func Match(path string) (Route, map[string]string, bool) {
	path = "/" + strings.Trim(path, "/")
	segments := splitPath(path)

	for _, r := range Routes {
		pattern := splitPath(r.Pattern)
		if len(pattern) != len(segments) {
			continue
		}
		params := map[string]string{}
		matched := true
		for i, p := range pattern {
			if strings.HasPrefix(p, ":") {
				v, err := url.PathUnescape(segments[i])
				if err != nil || v == "" {
					matched = false
					break
				}
				params[p[1:]] = v
				continue
			}
			if p != segments[i] {
				matched = false
				break
			}
		}
		if matched {
			return r, params, true
		}
	}
	return NotFound, nil, false
}

func splitPath(p string) []string {
	trimmed := strings.Trim(p, "/")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "/")
}

// PDNRoute is the detail route of one record
func PDNRoute(id string) string {
	return "/app/pdn/" + url.PathEscape(id)
}

// GitRoute is the list route of one repository
func GitRoute(repo string) string {
	return "/app/git/" + url.PathEscape(repo)
}

// RedirectError tells the caller to leave the current screen for To
type RedirectError struct {
	To    string
	Cause error
}

func (e *RedirectError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("redirect to %s: %v", e.To, e.Cause)
	}
	return "redirect to " + e.To
}

func (e *RedirectError) Unwrap() error {
	return e.Cause
}
