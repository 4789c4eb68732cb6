package views

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/jtrac-dev/jtrac/internal"
	"github.com/jtrac-dev/jtrac/internal/api"
	"golang.org/x/sync/errgroup"
)

// DetailClient is the part of the API client the detail view uses
type DetailClient interface {
	GetPDN(ctx context.Context, id string) (*internal.PDN, error)
	Components(ctx context.Context, id string) ([]internal.Component, error)
	Tracking(ctx context.Context, id string) ([]internal.TrackingEntry, error)
	UpdatePDN(ctx context.Context, id string, form *api.Form) error
}

// ErrUpdateFailed is the generic failure shown when an update cannot be posted
var ErrUpdateFailed = errors.New("failed to add update, please try again")

// Detail is one record with its components and tracking history
type Detail struct {
	ID string

	Record          *internal.PDN
	Components      []internal.Component
	LocalComponents []internal.Component
	Tracking        []internal.TrackingEntry

	RecordErr     error
	ComponentsErr error
	TrackingErr   error

	client   DetailClient
	mu       sync.Mutex
	expanded map[int]struct{}
}

// NewDetail creates an unloaded detail view for id
func NewDetail(client DetailClient, id string) *Detail {
	return &Detail{
		ID:       id,
		client:   client,
		expanded: make(map[int]struct{}),
	}
}

// Load fetches the record, its components and its tracking history
// concurrently. Each fetch fails on its own; a 401 on the record is
// returned as a redirect.
func (d *Detail) Load(ctx context.Context) error {
	var g errgroup.Group

	g.Go(func() error {
		record, err := d.client.GetPDN(ctx, d.ID)
		d.mu.Lock()
		d.Record, d.RecordErr = record, err
		d.mu.Unlock()
		if err != nil {
			internal.LogError("Failed to fetch PDN details: %v", err)
		}
		return nil
	})

	g.Go(func() error {
		components, err := d.client.Components(ctx, d.ID)
		d.mu.Lock()
		d.Components, d.ComponentsErr = components, err
		d.mu.Unlock()
		if err != nil {
			internal.LogError("Failed to fetch component details: %v", err)
		}
		return nil
	})

	g.Go(func() error {
		return d.fetchTracking(ctx)
	})

	_ = g.Wait()

	// a rejected session on any fetch sends the user back to sign in
	for _, err := range []error{d.RecordErr, d.ComponentsErr, d.TrackingErr} {
		if errors.Is(err, internal.ErrUnauthorized) {
			return &RedirectError{To: "/", Cause: err}
		}
	}
	return nil
}

func (d *Detail) fetchTracking(ctx context.Context) error {
	tracking, err := d.client.Tracking(ctx, d.ID)
	d.mu.Lock()
	defer d.mu.Unlock()
	if err != nil {
		d.TrackingErr = err
		internal.LogError("Failed to fetch tracking details: %v", err)
		return nil
	}
	d.Tracking, d.TrackingErr = tracking, nil
	return nil
}

// AllComponents is the server's components followed by locally added ones
func (d *Detail) AllComponents() []internal.Component {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]internal.Component, 0, len(d.Components)+len(d.LocalComponents))
	out = append(out, d.Components...)
	return append(out, d.LocalComponents...)
}

// AddComponent appends a component locally. It is not sent to the backend
// and disappears on the next load.
func (d *Detail) AddComponent(path, createdBy string) error {
	path = strings.TrimSpace(path)
	if path == "" {
		v := &internal.ValidationError{}
		v.Add("component", "Component path is required")
		return v
	}
	now := time.Now().UTC().Format(time.RFC3339)
	d.mu.Lock()
	defer d.mu.Unlock()
	d.LocalComponents = append(d.LocalComponents, internal.Component{
		Component:   path,
		CreatedBy:   jsonNumber(createdBy),
		CreatedDate: now,
		UpdatedDate: now,
		PDNID:       d.ID,
	})
	return nil
}

// Toggle expands or collapses tracking entry i
func (d *Detail) Toggle(i int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.expanded[i]; ok {
		delete(d.expanded, i)
		return
	}
	d.expanded[i] = struct{}{}
}

// Expanded reports whether tracking entry i is expanded
func (d *Detail) Expanded(i int) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.expanded[i]
	return ok
}

// UpdateForm is a pending tracking update
type UpdateForm struct {
	Comment  string
	Status   string
	Assignee string
	Files    []string // local paths
}

// Validate requires at least one of comment, status, assignee or files
func (f *UpdateForm) Validate() error {
	if strings.TrimSpace(f.Comment) == "" && f.Status == "" && f.Assignee == "" && len(f.Files) == 0 {
		v := &internal.ValidationError{}
		v.Add("update", "Please provide at least a comment, status update, assignment change, or file attachment.")
		return v
	}
	return nil
}

// Clear empties every field
func (f *UpdateForm) Clear() {
	*f = UpdateForm{}
}

// Multipart builds the update body: pdnId, comment, status, assignee and
// one file_<n> part per attachment
func (f *UpdateForm) Multipart(pdnID string) *api.Form {
	form := api.NewForm().
		Set("pdnId", pdnID).
		Set("comment", f.Comment).
		Set("status", f.Status).
		Set("assignee", f.Assignee)
	for i, path := range f.Files {
		form.AddFile(fmt.Sprintf("file_%d", i), path)
	}
	return form
}

// SubmitUpdate validates and posts form. After a successful post the form is
// cleared and tracking re-fetched; a failed re-fetch is only logged. A failed
// post leaves the form untouched and returns ErrUpdateFailed.
func (d *Detail) SubmitUpdate(ctx context.Context, form *UpdateForm) error {
	if err := form.Validate(); err != nil {
		return err
	}

	if err := d.client.UpdatePDN(ctx, d.ID, form.Multipart(d.ID)); err != nil {
		internal.LogError("Failed to add update to %s: %v", d.ID, err)
		if errors.Is(err, internal.ErrUnauthorized) {
			return &RedirectError{To: "/", Cause: err}
		}
		return fmt.Errorf("%w: %w", ErrUpdateFailed, err)
	}

	form.Clear()
	_ = d.fetchTracking(ctx)
	return nil
}
