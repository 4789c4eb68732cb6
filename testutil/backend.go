package testutil

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

// RecordedRequest is a request captured by Backend
type RecordedRequest struct {
	Method        string
	Path          string
	Authorization string
	ContentType   string
	Body          []byte
	Form          map[string]string // multipart values, when the body was a form
	Files         map[string]string // multipart file field -> filename
}

// Backend is an httptest server that answers registered routes and records
// every request it sees.
type Backend struct {
	Server *httptest.Server

	mu       sync.Mutex
	routes   map[string]http.HandlerFunc
	requests []RecordedRequest
}

// NewBackend starts a backend closed automatically at test end
func NewBackend(t *testing.T) *Backend {
	t.Helper()
	b := &Backend{routes: make(map[string]http.HandlerFunc)}
	b.Server = httptest.NewServer(http.HandlerFunc(b.serve))
	t.Cleanup(b.Server.Close)
	return b
}

// URL is the base URL clients should be configured with
func (b *Backend) URL() string {
	return b.Server.URL
}

// Handle registers a handler for "METHOD /path"
func (b *Backend) Handle(method, path string, h http.HandlerFunc) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.routes[method+" "+path] = h
}

// HandleJSON registers a route answering status with v encoded as JSON
func (b *Backend) HandleJSON(method, path string, status int, v interface{}) {
	b.Handle(method, path, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(v)
	})
}

// HandleStatus registers a route answering status with a plain-text body
func (b *Backend) HandleStatus(method, path string, status int) {
	b.Handle(method, path, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, http.StatusText(status), status)
	})
}

// Requests returns a copy of everything recorded so far
func (b *Backend) Requests() []RecordedRequest {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]RecordedRequest, len(b.requests))
	copy(out, b.requests)
	return out
}

// RequestsTo returns recorded requests for one method and path
func (b *Backend) RequestsTo(method, path string) []RecordedRequest {
	var out []RecordedRequest
	for _, r := range b.Requests() {
		if r.Method == method && r.Path == path {
			out = append(out, r)
		}
	}
	return out
}

func (b *Backend) serve(w http.ResponseWriter, r *http.Request) {
	rec := RecordedRequest{
		Method:        r.Method,
		Path:          r.URL.Path,
		Authorization: r.Header.Get("Authorization"),
		ContentType:   r.Header.Get("Content-Type"),
	}

	if err := r.ParseMultipartForm(32 << 20); err == nil && r.MultipartForm != nil {
		rec.Form = make(map[string]string)
		for k, v := range r.MultipartForm.Value {
			if len(v) > 0 {
				rec.Form[k] = v[0]
			}
		}
		rec.Files = make(map[string]string)
		for k, v := range r.MultipartForm.File {
			if len(v) > 0 {
				rec.Files[k] = v[0].Filename
			}
		}
	} else if r.Body != nil {
		rec.Body, _ = io.ReadAll(r.Body)
	}

	b.mu.Lock()
	b.requests = append(b.requests, rec)
	h, ok := b.routes[r.Method+" "+r.URL.Path]
	b.mu.Unlock()

	if !ok {
		http.NotFound(w, r)
		return
	}
	h(w, r)
}
