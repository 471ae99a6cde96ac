package dataset

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/giobyte8/thumbvariants/internal/regen"
)

func createDB(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "app.db")

	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Exec(`
		CREATE TABLE gallery_photo (id INTEGER PRIMARY KEY, image TEXT);
		INSERT INTO gallery_photo (id, image) VALUES
			(3, 'photos/c.png'),
			(1, 'photos/a.png'),
			(2, NULL),
			(4, '');
	`)
	require.NoError(t, err)
	return path
}

func TestSQLiteDataset(t *testing.T) {
	ctx := context.Background()
	db, err := OpenSQLite(ctx, createDB(t))
	require.NoError(t, err)
	defer db.Close()

	ds, err := db.Field("Gallery.Photo", "image")
	require.NoError(t, err)

	n, err := ds.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	var items []regen.Item
	require.NoError(t, ds.Each(ctx, func(item regen.Item) error {
		items = append(items, item)
		return nil
	}))

	assert.Equal(t, []regen.Item{
		{ID: "1", File: "photos/a.png"},
		{ID: "2", File: ""},
		{ID: "3", File: "photos/c.png"},
		{ID: "4", File: ""},
	}, items)
}

func TestSQLiteDatasetStopsOnCallbackError(t *testing.T) {
	ctx := context.Background()
	db, err := OpenSQLite(ctx, createDB(t))
	require.NoError(t, err)
	defer db.Close()

	ds, err := db.Field("gallery.photo", "image")
	require.NoError(t, err)

	stop := errors.New("stop")
	seen := 0
	err = ds.Each(ctx, func(item regen.Item) error {
		seen++
		return stop
	})
	assert.ErrorIs(t, err, stop)
	assert.Equal(t, 1, seen)
}

func TestSQLiteDatasetRejectsBadIdentifiers(t *testing.T) {
	ctx := context.Background()
	db, err := OpenSQLite(ctx, createDB(t))
	require.NoError(t, err)
	defer db.Close()

	for _, tc := range []struct{ model, field string }{
		{"gallery", "image"},
		{"gallery.photo; DROP TABLE x", "image"},
		{"gallery.photo", "image\" --"},
	} {
		_, err := db.Field(tc.model, tc.field)
		assert.Error(t, err, tc.model)
	}
}

func TestSQLiteDatasetUnknownTable(t *testing.T) {
	ctx := context.Background()
	db, err := OpenSQLite(ctx, createDB(t))
	require.NoError(t, err)
	defer db.Close()

	ds, err := db.Field("gallery.album", "cover")
	require.NoError(t, err)

	_, err = ds.Count(ctx)
	assert.Error(t, err)
}

func TestOpenSQLiteMissingFile(t *testing.T) {
	_, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "nope.db"))
	assert.Error(t, err)
}
