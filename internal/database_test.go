package internal

import (
	"path/filepath"
	"testing"

	"github.com/jtrac-dev/jtrac/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenDatabase(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(t *testing.T) string
		wantErr bool
	}{
		{
			name: "existing database",
			setup: func(t *testing.T) string {
				dbPath := filepath.Join(testutil.CreateTempDir(t), "state.db")
				testutil.CreateStateDB(t, dbPath, map[string]string{"jtrac.token": "a.b.c"})
				return dbPath
			},
		},
		{
			name: "new database is created",
			setup: func(t *testing.T) string {
				return filepath.Join(testutil.CreateTempDir(t), "fresh.db")
			},
		},
		{
			name: "missing parent directory",
			setup: func(t *testing.T) string {
				return filepath.Join(testutil.CreateTempDir(t), "no", "such", "dir", "state.db")
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dbPath := tt.setup(t)
			db, err := OpenDatabase(dbPath)
			if (err != nil) != tt.wantErr {
				t.Fatalf("OpenDatabase() error = %v, wantErr %v", err, tt.wantErr)
			}
			if db != nil {
				defer db.Close()
				_, _, err := GetItem(db, "anything")
				assert.NoError(t, err, "ItemTable should exist after open")
			}
		})
	}
}

func TestItemRoundTrip(t *testing.T) {
	db := testutil.CreateInMemoryDB(t)

	_, ok, err := GetItem(db, "jtrac.token")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, SetItem(db, "jtrac.token", "first"))
	require.NoError(t, SetItem(db, "jtrac.token", "second"))

	value, ok, err := GetItem(db, "jtrac.token")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "second", value)

	require.NoError(t, RemoveItem(db, "jtrac.token"))
	require.NoError(t, RemoveItem(db, "jtrac.token"), "removing a missing key is not an error")

	_, ok, err = GetItem(db, "jtrac.token")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestListItems(t *testing.T) {
	db := testutil.CreateInMemoryDB(t)
	testutil.InsertItem(t, db, "draft:b", "two")
	testutil.InsertItem(t, db, "draft:a", "one")
	testutil.InsertItem(t, db, "jtrac.token", "x.y.z")

	pairs, err := ListItems(db, "draft:%")
	require.NoError(t, err)
	assert.Equal(t, []KeyValuePair{{Key: "draft:a", Value: "one"}, {Key: "draft:b", Value: "two"}}, pairs)
}
