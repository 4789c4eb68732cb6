package internal

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

const draftKeyPrefix = "draft:"

// Draft is a creation form kept after a failed submission
type Draft struct {
	ID        string        `yaml:"id"`
	Form      NewPDNRequest `yaml:"form"`
	LastError string        `yaml:"last_error,omitempty"`
	CreatedAt time.Time     `yaml:"created_at"`
	UpdatedAt time.Time     `yaml:"updated_at"`
}

// DraftStore keeps drafts as YAML documents in the local-storage table
type DraftStore struct {
	db *sql.DB
}

// NewDraftStore creates a draft store on an open state database
func NewDraftStore(db *sql.DB) *DraftStore {
	return &DraftStore{db: db}
}

func draftKey(id string) string {
	return draftKeyPrefix + id
}

// Save stores a draft, assigning an ID on first save
func (ds *DraftStore) Save(d *Draft) error {
	now := time.Now().UTC()
	if d.ID == "" {
		d.ID = uuid.NewString()[:8]
		d.CreatedAt = now
	}
	d.UpdatedAt = now

	data, err := yaml.Marshal(d)
	if err != nil {
		return fmt.Errorf("failed to marshal draft: %w", err)
	}
	if err := SetItem(ds.db, draftKey(d.ID), string(data)); err != nil {
		return &StorageError{Path: draftKey(d.ID), Op: "write", Err: err}
	}
	return nil
}

// Load reads a draft by ID
func (ds *DraftStore) Load(id string) (*Draft, error) {
	value, ok, err := GetItem(ds.db, draftKey(id))
	if err != nil {
		return nil, &StorageError{Path: draftKey(id), Op: "read", Err: err}
	}
	if !ok {
		return nil, fmt.Errorf("draft not found: %s", id)
	}

	var d Draft
	if err := yaml.Unmarshal([]byte(value), &d); err != nil {
		return nil, &ParseError{Source: "drafts", Key: id, Err: err}
	}
	return &d, nil
}

// List returns all drafts, skipping ones that fail to parse
func (ds *DraftStore) List() ([]*Draft, error) {
	pairs, err := ListItems(ds.db, draftKeyPrefix+"%")
	if err != nil {
		return nil, &StorageError{Path: draftKeyPrefix, Op: "read", Err: err}
	}

	drafts := make([]*Draft, 0, len(pairs))
	for _, pair := range pairs {
		var d Draft
		if err := yaml.Unmarshal([]byte(pair.Value), &d); err != nil {
			LogWarn("Skipping unreadable draft %s: %v", strings.TrimPrefix(pair.Key, draftKeyPrefix), err)
			continue
		}
		drafts = append(drafts, &d)
	}
	return drafts, nil
}

// Delete removes a draft
func (ds *DraftStore) Delete(id string) error {
	if err := RemoveItem(ds.db, draftKey(id)); err != nil {
		return &StorageError{Path: draftKey(id), Op: "delete", Err: err}
	}
	return nil
}
