package catalog

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ziadkadry99/pageutil/internal/db"
)

func TestPopulateMergesAndFreezes(t *testing.T) {
	tbl := NewTable()
	require.NoError(t, tbl.Populate("core", map[string]string{"a": "1", "b": "2"}))
	require.NoError(t, tbl.Populate("core", map[string]string{"b": "two"}))
	require.NoError(t, tbl.Populate("admin", map[string]string{"x": "X"}))

	assert.Equal(t, []string{"admin", "core"}, tbl.Components())
	assert.Equal(t, 3, tbl.Len())

	s, ok := tbl.Lookup("core", "b")
	assert.True(t, ok)
	assert.Equal(t, "two", s)

	assert.False(t, tbl.Frozen())
	tbl.Freeze()
	assert.True(t, tbl.Frozen())

	err := tbl.Populate("core", map[string]string{"c": "3"})
	assert.ErrorIs(t, err, ErrFrozen)
	_, ok = tbl.Lookup("core", "c")
	assert.False(t, ok)
}

func TestComponentReturnsCopy(t *testing.T) {
	tbl := newTable(t, "core", map[string]string{"a": "1"})
	m := tbl.Component("core")
	m["a"] = "changed"

	s, _ := tbl.Lookup("core", "a")
	assert.Equal(t, "1", s)
	assert.Nil(t, tbl.Component("nope"))
}

func TestLoadFS(t *testing.T) {
	fsys := fstest.MapFS{
		"en/core.yaml":    {Data: []byte("welcome: \"Hello {$a}\"\ncount: 3\n")},
		"en/admin.json":   {Data: []byte(`{"confirmation": "Confirm", "cancel": "Cancel"}`)},
		"en/notes.txt":    {Data: []byte("ignored")},
		"fr/core.yaml":    {Data: []byte("welcome: \"Bonjour {$a}\"\n")},
		"en/nested/x.yml": {Data: []byte("a: b\n")},
	}

	pack, err := LoadFS(fsys, "en")
	require.NoError(t, err)
	assert.Equal(t, []string{"admin", "core"}, pack.Components())
	assert.Equal(t, "Hello {$a}", pack["core"]["welcome"])
	assert.Equal(t, "3", pack["core"]["count"])
	assert.Equal(t, "Confirm", pack["admin"]["confirmation"])

	tbl := NewTable()
	require.NoError(t, pack.Fill(tbl))
	assert.Equal(t, "Hello World", tbl.GetString("welcome", "core", Scalar("World")))
}

func TestLoadFSRejectsNestedValues(t *testing.T) {
	fsys := fstest.MapFS{
		"en/core.yaml": {Data: []byte("welcome:\n  nested: true\n")},
	}
	_, err := LoadFS(fsys, "en")
	assert.Error(t, err)
}

func TestLoadFSUnknownLanguage(t *testing.T) {
	pack, err := LoadFS(fstest.MapFS{}, "de")
	require.NoError(t, err)
	assert.Empty(t, pack)
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "en"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "en", "moodle.yml"), []byte("cancel: Cancel\n"), 0o644))

	pack, err := LoadDir(dir, "en")
	require.NoError(t, err)
	assert.Equal(t, "Cancel", pack["moodle"]["cancel"])
}

func TestStoreRoundTrip(t *testing.T) {
	database, err := db.OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })

	store := NewStore(database)
	ctx := context.Background()

	require.NoError(t, store.Upsert(ctx, "en", "core", map[string]string{"a": "1", "b": "2"}))
	require.NoError(t, store.Upsert(ctx, "en", "core", map[string]string{"b": "two"}))
	require.NoError(t, store.Upsert(ctx, "en", "admin", map[string]string{"x": "X"}))
	require.NoError(t, store.Upsert(ctx, "fr", "core", map[string]string{"a": "un"}))

	n, err := store.Count(ctx, "en")
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	names, err := store.Components(ctx, "en")
	require.NoError(t, err)
	assert.Equal(t, []string{"admin", "core"}, names)

	tbl := NewTable()
	loaded, err := store.LoadTable(ctx, "en", tbl)
	require.NoError(t, err)
	assert.Equal(t, 3, loaded)
	assert.Equal(t, "two", tbl.GetString("b", "core", nil))
	assert.Equal(t, "[[a,fr]]", tbl.GetString("a", "fr", nil))
}
