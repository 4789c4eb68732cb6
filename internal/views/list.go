package views

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/jtrac-dev/jtrac/internal"
)

// Field names a PDN column for searching and sorting
type Field string

const (
	FieldID          Field = "id"
	FieldDescription Field = "description"
	FieldStatus      Field = "status"
	FieldCreatedBy   Field = "createdBy"
	FieldAssignedTo  Field = "assignedTo"
	FieldWorkspace   Field = "workspace"
	FieldDateCreated Field = "dateCreated"
	FieldLastUpdated Field = "lastUpdated"
)

// SortFields lists every field a list can be sorted by
var SortFields = []Field{FieldID, FieldDescription, FieldStatus, FieldCreatedBy, FieldAssignedTo, FieldWorkspace, FieldDateCreated, FieldLastUpdated}

// ParseField accepts a field name case-insensitively
func ParseField(s string) (Field, bool) {
	for _, f := range SortFields {
		if strings.EqualFold(string(f), s) {
			return f, true
		}
	}
	return "", false
}

func (f Field) text(p *internal.PDN) string {
	switch f {
	case FieldID:
		return p.PDNID
	case FieldDescription:
		return p.Description
	case FieldStatus:
		return p.CurrentStatus
	case FieldCreatedBy:
		return p.CreatedByFirstName
	case FieldAssignedTo:
		return p.CurrentOwnerFirstName
	case FieldWorkspace:
		return p.Workspace
	case FieldDateCreated:
		return p.CreatedDate
	case FieldLastUpdated:
		return p.UpdatedDate
	default:
		return ""
	}
}

func (f Field) isDate() bool {
	return f == FieldDateCreated || f == FieldLastUpdated
}

func (f Field) time(p *internal.PDN) time.Time {
	if f == FieldLastUpdated {
		return p.GetUpdatedAt()
	}
	return p.GetCreatedAt()
}

// Direction is a sort direction
type Direction int

const (
	Ascending Direction = iota
	Descending
)

func (d Direction) String() string {
	if d == Descending {
		return "desc"
	}
	return "asc"
}

// Lister is the part of the API client the list views use
type Lister interface {
	ListAll(ctx context.Context) ([]internal.PDN, error)
	ListByWorkspace(ctx context.Context, prefix string) ([]internal.PDN, error)
	ListByCreator(ctx context.Context, empID string) ([]internal.PDN, error)
}

// ListView describes one list screen
type ListView struct {
	Name         string
	Route        string
	SearchFields []Field
	DefaultSort  Field
	DefaultDir   Direction
	Filterable   bool
	load         func(ctx context.Context) ([]internal.PDN, error)
}

// WorkspaceView lists every record
func WorkspaceView(l Lister) ListView {
	return ListView{
		Name:         "workspace",
		Route:        "/app/workspace",
		SearchFields: []Field{FieldID, FieldDescription, FieldStatus, FieldCreatedBy, FieldAssignedTo, FieldWorkspace},
		DefaultSort:  FieldDateCreated,
		DefaultDir:   Descending,
		load:         l.ListAll,
	}
}

// MyPDNView lists the records the signed-in employee created
func MyPDNView(l Lister, empID string) ListView {
	return ListView{
		Name:         "my-pdn",
		Route:        "/app/my-pdn",
		SearchFields: []Field{FieldID, FieldDescription, FieldStatus, FieldAssignedTo},
		DefaultSort:  FieldLastUpdated,
		DefaultDir:   Descending,
		load: func(ctx context.Context) ([]internal.PDN, error) {
			return l.ListByCreator(ctx, empID)
		},
	}
}

// GitView lists the records of one repository; "All-..." lists everything
func GitView(l Lister, gitRepo string) ListView {
	prefix := GitPrefix(gitRepo)
	return ListView{
		Name:         "git",
		Route:        GitRoute(gitRepo),
		SearchFields: []Field{FieldID, FieldDescription, FieldStatus, FieldAssignedTo},
		DefaultSort:  FieldDateCreated,
		DefaultDir:   Descending,
		Filterable:   true,
		load: func(ctx context.Context) ([]internal.PDN, error) {
			if prefix == "All" {
				return l.ListAll(ctx)
			}
			return l.ListByWorkspace(ctx, prefix)
		},
	}
}

// GitPrefix is the workspace prefix of a repository name, the part before
// the first dash
func GitPrefix(gitRepo string) string {
	prefix, _, _ := strings.Cut(gitRepo, "-")
	return prefix
}

// LoadState tells a loading list apart from an empty one
type LoadState int

const (
	StateLoading LoadState = iota
	StateReady
	StateEmpty
	StateFailed
)

// Filters are the structured, conjunctive filters of the git list.
// Empty fields are inactive.
type Filters struct {
	CreatedBy string
	Status    string
	DateFrom  string
	DateTo    string
}

// Active reports whether any filter is set
func (f Filters) Active() bool {
	return f != Filters{}
}

// ListState is a list screen's data plus its view controls
type ListState struct {
	View    ListView
	Records []internal.PDN
	Status  LoadState
	Err     error

	Search    string
	SortField Field
	SortDir   Direction
	Filters   Filters
}

// NewListState creates a loading list with the view's default sort
func NewListState(v ListView) *ListState {
	return &ListState{
		View:      v,
		Status:    StateLoading,
		SortField: v.DefaultSort,
		SortDir:   v.DefaultDir,
	}
}

// Load fetches the collection once. A 401 yields a RedirectError to the
// public entry route; other failures leave an empty, failed list.
func (s *ListState) Load(ctx context.Context) error {
	s.Status = StateLoading
	s.Records = nil
	s.Err = nil

	records, err := s.View.load(ctx)
	if err != nil {
		s.Status = StateFailed
		s.Err = err
		if errors.Is(err, internal.ErrUnauthorized) {
			return &RedirectError{To: "/", Cause: err}
		}
		internal.LogError("Failed to fetch %s list: %v", s.View.Name, err)
		return err
	}

	s.Records = records
	if len(records) == 0 {
		s.Status = StateEmpty
	} else {
		s.Status = StateReady
	}
	return nil
}

// ToggleSort flips the direction when field is already selected, otherwise
// selects field ascending
func (s *ListState) ToggleSort(field Field) {
	if s.SortField == field {
		if s.SortDir == Ascending {
			s.SortDir = Descending
		} else {
			s.SortDir = Ascending
		}
		return
	}
	s.SortField = field
	s.SortDir = Ascending
}

// Project returns the filtered-then-sorted records. It is recomputed from
// the raw collection on every call and never mutates it.
func (s *ListState) Project() []internal.PDN {
	term := strings.ToLower(strings.TrimSpace(s.Search))
	var bounds dateBounds
	if s.View.Filterable {
		bounds = newDateBounds(s.Filters)
	}

	out := make([]internal.PDN, 0, len(s.Records))
	for i := range s.Records {
		p := &s.Records[i]
		if !s.matchesSearch(p, term) {
			continue
		}
		if s.View.Filterable && !matchesFilters(p, s.Filters, bounds) {
			continue
		}
		out = append(out, *p)
	}

	sortRecords(out, s.SortField, s.SortDir)
	return out
}

func (s *ListState) matchesSearch(p *internal.PDN, term string) bool {
	if term == "" {
		return true
	}
	for _, f := range s.View.SearchFields {
		if strings.Contains(strings.ToLower(f.text(p)), term) {
			return true
		}
	}
	return false
}

type dateBounds struct {
	from, to       time.Time
	hasFrom, hasTo bool
}

func newDateBounds(f Filters) dateBounds {
	var b dateBounds
	if t, ok := internal.ParseTimestamp(f.DateFrom); ok {
		b.from, b.hasFrom = t, true
	}
	if t, ok := internal.ParseTimestamp(f.DateTo); ok {
		b.hasTo = true
		b.to = t
		if internal.IsDateOnly(f.DateTo) {
			// inclusive of the whole day
			b.to = t.AddDate(0, 0, 1).Add(-time.Nanosecond)
		}
	}
	return b
}

func matchesFilters(p *internal.PDN, f Filters, b dateBounds) bool {
	if f.CreatedBy != "" && p.CreatedByFirstName != f.CreatedBy {
		return false
	}
	if f.Status != "" && p.CurrentStatus != f.Status {
		return false
	}
	if !b.hasFrom && !b.hasTo {
		return true
	}
	created, ok := internal.ParseTimestamp(p.CreatedDate)
	if !ok {
		return false
	}
	if b.hasFrom && created.Before(b.from) {
		return false
	}
	if b.hasTo && created.After(b.to) {
		return false
	}
	return true
}

// sortRecords orders by field; dates compare chronologically and
// unparseable dates sort as the zero time. Ties keep their order.
func sortRecords(records []internal.PDN, field Field, dir Direction) {
	less := func(a, b *internal.PDN) bool {
		if field.isDate() {
			return field.time(a).Before(field.time(b))
		}
		return field.text(a) < field.text(b)
	}
	sort.SliceStable(records, func(i, j int) bool {
		if dir == Descending {
			return less(&records[j], &records[i])
		}
		return less(&records[i], &records[j])
	})
}

// UniqueCreators lists distinct creator names, sorted, for the filter picker
func (s *ListState) UniqueCreators() []string {
	return uniqueSorted(s.Records, func(p *internal.PDN) string { return p.CreatedByFirstName })
}

// UniqueStatuses lists distinct statuses present in the collection
func (s *ListState) UniqueStatuses() []string {
	return uniqueSorted(s.Records, func(p *internal.PDN) string { return p.CurrentStatus })
}

func uniqueSorted(records []internal.PDN, key func(*internal.PDN) string) []string {
	seen := make(map[string]struct{})
	out := []string{}
	for i := range records {
		k := key(&records[i])
		if k == "" {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
