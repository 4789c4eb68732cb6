// Package api talks to the PDN backend over HTTP.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jtrac-dev/jtrac/internal"
)

// TokenSource supplies the bearer token, if any
type TokenSource interface {
	GetToken() (string, bool)
}

// Client sends requests to the backend
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	Tokens     TokenSource
}

// Option configures the client
type Option func(*Client)

// WithTokenSource attaches a bearer token to every request when one is present
func WithTokenSource(ts TokenSource) Option {
	return func(c *Client) { c.Tokens = ts }
}

// WithTimeout sets the HTTP timeout
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.HTTPClient.Timeout = d }
}

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.HTTPClient = hc }
}

// New creates a client for the backend rooted at baseURL
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// RequestOptions tunes a single request. Method defaults to POST.
type RequestOptions struct {
	Method  string
	Headers map[string]string
}

// Response is a successful backend answer. JSON bodies land in JSON, all
// other content types in Text.
type Response struct {
	StatusCode  int
	ContentType string
	RequestID   string
	JSON        json.RawMessage
	Text        string
}

// IsJSON reports whether the body was parsed as JSON
func (r *Response) IsJSON() bool {
	return r.JSON != nil
}

// Decode unmarshals a JSON body into v
func (r *Response) Decode(v any) error {
	if !r.IsJSON() {
		return fmt.Errorf("response is %q, not JSON", r.ContentType)
	}
	return json.Unmarshal(r.JSON, v)
}

// Request sends body to url. A *Form goes out as multipart/form-data, a
// string as text/plain, anything else non-nil as JSON. GET never carries a
// body. Relative urls are resolved against BaseURL.
func (c *Client) Request(ctx context.Context, url string, body any, opts RequestOptions) (*Response, error) {
	method := opts.Method
	if method == "" {
		method = http.MethodPost
	}
	if strings.HasPrefix(url, "/") {
		url = c.BaseURL + url
	}

	var (
		reader      io.Reader
		contentType string
	)
	if method != http.MethodGet && body != nil {
		switch b := body.(type) {
		case *Form:
			r, ct, err := b.encode()
			if err != nil {
				return nil, fmt.Errorf("failed to build form: %w", err)
			}
			reader, contentType = r, ct
		case string:
			reader, contentType = strings.NewReader(b), "text/plain; charset=utf-8"
		default:
			data, err := json.Marshal(b)
			if err != nil {
				return nil, fmt.Errorf("failed to encode request body: %w", err)
			}
			reader, contentType = bytes.NewReader(data), "application/json"
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	for k, v := range opts.Headers {
		// multipart needs the writer's boundary
		if _, isForm := body.(*Form); isForm && strings.EqualFold(k, "Content-Type") {
			continue
		}
		req.Header.Set(k, v)
	}
	if c.Tokens != nil {
		if token, ok := c.Tokens.GetToken(); ok {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}
	requestID := uuid.NewString()
	req.Header.Set("X-Request-ID", requestID)

	internal.LogDebug("%s %s (request %s)", method, url, requestID)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		internal.LogFields(internal.LogLevelError, "API request failed", "method", method, "url", url, "request_id", requestID, "error", err)
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// drain so the connection can be reused
		_, _ = io.Copy(io.Discard, resp.Body)
		httpErr := &internal.HTTPError{Status: resp.StatusCode, URL: url}
		internal.LogFields(internal.LogLevelError, "API request failed", "method", method, "url", url, "request_id", requestID, "status", resp.StatusCode)
		return nil, httpErr
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		internal.LogFields(internal.LogLevelError, "API response read failed", "url", url, "request_id", requestID, "error", err)
		return nil, err
	}

	out := &Response{
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		RequestID:   requestID,
	}
	if isJSONContentType(out.ContentType) {
		if !json.Valid(data) {
			parseErr := &internal.ParseError{Source: url, Key: "body", Err: fmt.Errorf("invalid JSON")}
			internal.LogFields(internal.LogLevelError, "API response parse failed", "url", url, "request_id", requestID, "error", parseErr)
			return nil, parseErr
		}
		out.JSON = json.RawMessage(data)
	} else {
		out.Text = string(data)
	}
	return out, nil
}

func isJSONContentType(ct string) bool {
	if ct == "" {
		return false
	}
	mediaType, _, err := mime.ParseMediaType(ct)
	if err != nil {
		return strings.Contains(ct, "application/json")
	}
	return mediaType == "application/json" || strings.HasSuffix(mediaType, "+json")
}
