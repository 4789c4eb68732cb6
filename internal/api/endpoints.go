package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/jtrac-dev/jtrac/internal"
)

// rawEnvelope defers decoding of data, which is an array on some endpoints
// and an object on others.
type rawEnvelope = internal.Envelope[json.RawMessage]

func (c *Client) getEnvelope(ctx context.Context, path string) (*rawEnvelope, error) {
	return c.sendEnvelope(ctx, path, nil, http.MethodGet)
}

func (c *Client) sendEnvelope(ctx context.Context, path string, body any, method string) (*rawEnvelope, error) {
	resp, err := c.Request(ctx, path, body, RequestOptions{Method: method})
	if err != nil {
		return nil, err
	}
	if !resp.IsJSON() {
		return nil, &internal.ParseError{Source: path, Key: "envelope", Err: fmt.Errorf("expected JSON, got %q", resp.ContentType)}
	}

	var env rawEnvelope
	if err := resp.Decode(&env); err != nil {
		return nil, &internal.ParseError{Source: path, Key: "envelope", Err: err}
	}
	if env.Status == http.StatusUnauthorized {
		return nil, &internal.APIError{Status: env.Status, Message: env.Message}
	}
	return &env, nil
}

// decodeList reads data as an array; a missing or null data is an empty list
func decodeList[T any](path string, env *rawEnvelope) ([]T, error) {
	out := []T{}
	if isNull(env.Data) {
		return out, nil
	}
	if err := json.Unmarshal(env.Data, &out); err != nil {
		return nil, &internal.ParseError{Source: path, Key: "data", Err: err}
	}
	return out, nil
}

func isNull(data json.RawMessage) bool {
	trimmed := bytes.TrimSpace(data)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

// Login posts credentials. The envelope is returned whatever its message;
// deciding success is the session controller's job.
func (c *Client) Login(ctx context.Context, req internal.LoginRequest) (*internal.Envelope[internal.AuthData], error) {
	resp, err := c.Request(ctx, "/auth/login", req, RequestOptions{Method: http.MethodPost})
	if err != nil {
		return nil, err
	}
	var env internal.Envelope[internal.AuthData]
	if err := resp.Decode(&env); err != nil {
		return nil, &internal.ParseError{Source: "/auth/login", Key: "envelope", Err: err}
	}
	return &env, nil
}

// Signup registers a new employee
func (c *Client) Signup(ctx context.Context, req internal.SignupRequest) (*internal.Envelope[json.RawMessage], error) {
	env, err := c.sendEnvelope(ctx, "/auth/signup", req, http.MethodPost)
	if err != nil {
		return nil, err
	}
	if !env.OK() {
		return env, &internal.APIError{Status: env.Status, Message: env.Message}
	}
	return env, nil
}

// ListAll calls GET /pdn/all
func (c *Client) ListAll(ctx context.Context) ([]internal.PDN, error) {
	const path = "/pdn/all"
	env, err := c.getEnvelope(ctx, path)
	if err != nil {
		return nil, err
	}
	return decodeList[internal.PDN](path, env)
}

// ListByWorkspace calls GET /pdn/all/{prefix}
func (c *Client) ListByWorkspace(ctx context.Context, prefix string) ([]internal.PDN, error) {
	path := "/pdn/all/" + url.PathEscape(prefix)
	env, err := c.getEnvelope(ctx, path)
	if err != nil {
		return nil, err
	}
	return decodeList[internal.PDN](path, env)
}

// ListByCreator calls GET /pdn/all/createdBy/{empId}
func (c *Client) ListByCreator(ctx context.Context, empID string) ([]internal.PDN, error) {
	path := "/pdn/all/createdBy/" + url.PathEscape(empID)
	env, err := c.getEnvelope(ctx, path)
	if err != nil {
		return nil, err
	}
	return decodeList[internal.PDN](path, env)
}

// GetPDN calls GET /pdn/all/pdnId/{id}. The backend answers with a
// one-element array or a bare object.
func (c *Client) GetPDN(ctx context.Context, id string) (*internal.PDN, error) {
	path := "/pdn/all/pdnId/" + url.PathEscape(id)
	env, err := c.getEnvelope(ctx, path)
	if err != nil {
		return nil, err
	}

	trimmed := bytes.TrimSpace(env.Data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		list, err := decodeList[internal.PDN](path, env)
		if err != nil {
			return nil, err
		}
		if len(list) == 0 {
			return nil, fmt.Errorf("PDN %s not found", id)
		}
		return &list[0], nil
	}
	if isNull(env.Data) {
		return nil, fmt.Errorf("PDN %s not found", id)
	}

	var pdn internal.PDN
	if err := json.Unmarshal(env.Data, &pdn); err != nil {
		return nil, &internal.ParseError{Source: path, Key: "data", Err: err}
	}
	return &pdn, nil
}

// Components calls GET /pdn/component/{id}
func (c *Client) Components(ctx context.Context, id string) ([]internal.Component, error) {
	path := "/pdn/component/" + url.PathEscape(id)
	env, err := c.getEnvelope(ctx, path)
	if err != nil {
		return nil, err
	}
	return decodeList[internal.Component](path, env)
}

// Tracking calls GET /pdn/tracking/{id}
func (c *Client) Tracking(ctx context.Context, id string) ([]internal.TrackingEntry, error) {
	path := "/pdn/tracking/" + url.PathEscape(id)
	env, err := c.getEnvelope(ctx, path)
	if err != nil {
		return nil, err
	}
	return decodeList[internal.TrackingEntry](path, env)
}

// CreatePDN posts a new record and returns the id the backend assigned
func (c *Client) CreatePDN(ctx context.Context, req internal.NewPDNRequest) (string, error) {
	const path = "/pdn/create"
	resp, err := c.Request(ctx, path, req, RequestOptions{Method: http.MethodPost})
	if err != nil {
		return "", err
	}
	if !resp.IsJSON() {
		return "", &internal.ParseError{Source: path, Key: "body", Err: fmt.Errorf("expected JSON, got %q", resp.ContentType)}
	}

	var env rawEnvelope
	if err := resp.Decode(&env); err == nil && env.Status == http.StatusUnauthorized {
		return "", &internal.APIError{Status: env.Status, Message: env.Message}
	}

	id := createdID(resp.JSON)
	if id == "" {
		return "", &internal.ParseError{Source: path, Key: "pdnId", Err: fmt.Errorf("no id in response")}
	}
	return id, nil
}

// createdID finds the new record's id in data.pdnId, data.id, pdnId or id
func createdID(body json.RawMessage) string {
	type ids struct {
		PDNID json.RawMessage `json:"pdnId"`
		ID    json.RawMessage `json:"id"`
		Data  json.RawMessage `json:"data"`
	}
	var top ids
	if err := json.Unmarshal(body, &top); err != nil {
		return ""
	}
	if !isNull(top.Data) {
		var inner ids
		if err := json.Unmarshal(top.Data, &inner); err == nil {
			if id := scalarString(inner.PDNID); id != "" {
				return id
			}
			if id := scalarString(inner.ID); id != "" {
				return id
			}
		}
	}
	if id := scalarString(top.PDNID); id != "" {
		return id
	}
	return scalarString(top.ID)
}

func scalarString(raw json.RawMessage) string {
	if isNull(raw) {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return ""
}

// UpdatePDN posts a multipart tracking update to /pdn/update/{id}
func (c *Client) UpdatePDN(ctx context.Context, id string, form *Form) error {
	path := "/pdn/update/" + url.PathEscape(id)
	resp, err := c.Request(ctx, path, form, RequestOptions{Method: http.MethodPost})
	if err != nil {
		return err
	}
	if resp.IsJSON() {
		var env rawEnvelope
		if err := resp.Decode(&env); err == nil && env.Status == http.StatusUnauthorized {
			return &internal.APIError{Status: env.Status, Message: env.Message}
		}
	}
	return nil
}

// Ping checks the backend answers at all; any HTTP status counts as reachable
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.Request(ctx, "/pdn/all", nil, RequestOptions{Method: http.MethodGet})
	var httpErr *internal.HTTPError
	if err == nil || errors.As(err, &httpErr) {
		return nil
	}
	return err
}
