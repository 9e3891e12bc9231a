package repository

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/chatty-edu-api/internal/models"
)

func newTestPackStore(t *testing.T, now time.Time) (*packStore, string) {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "assigned")
	store := NewPackStore(dir, zerolog.Nop()).(*packStore)
	store.now = func() time.Time { return now }
	return store, dir
}

func TestPackStoreCreateNamesFileByClassAndTime(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	store, dir := newTestPackStore(t, now)

	stored, err := store.Create(context.Background(), "school", "7B", []models.HomeworkAssignment{{ID: "hw-1", Title: "Plants"}})
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "homework_pack_7B_2026-03-01T09-30-00Z.json"), stored.Path)
	require.Equal(t, "2026-03-01T09:30:00Z", stored.Pack.CreatedAt)

	loaded, err := store.Load(context.Background(), stored.Path)
	require.NoError(t, err)
	require.Equal(t, stored.Pack, loaded)
	require.NotNil(t, loaded.Assignments[0].Attachments)
}

func TestPackStoreCreateRequiresAssignments(t *testing.T) {
	store, _ := newTestPackStore(t, time.Now())
	_, err := store.Create(context.Background(), "school", "7B", nil)
	require.Error(t, err)
}

func TestPackStoreExportTemplate(t *testing.T) {
	store, dir := newTestPackStore(t, time.Now())

	stored, err := store.ExportTemplate(context.Background(), "school", "class")
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, PackTemplateFileName), stored.Path)
	require.Len(t, stored.Pack.Assignments, 1)
	require.Equal(t, "hw-sample-001", stored.Pack.Assignments[0].ID)
	require.True(t, stored.Pack.Assignments[0].AllowAIPremark)
	require.Equal(t, 100, *stored.Pack.Assignments[0].MaxScore)
}

func TestPackStoreLatestPrefersEmbeddedTimestamp(t *testing.T) {
	store, dir := newTestPackStore(t, time.Now())
	require.NoError(t, os.MkdirAll(dir, 0o755))

	write := func(name, createdAt string) {
		content := `{"version":"1.0","school_id":"s","class_id":"c","created_at":"` + createdAt + `","assignments":[{"id":"` + name + `","title":"t","subject":"x","year_level":"7","instructions_md":""}]}`
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	write("homework_pack_a.json", "2026-01-01T00:00:00Z")
	write("homework_pack_b.json", "2026-02-01T00:00:00+02:00")
	write("homework_pack_c.json", "2025-12-31T23:59:59Z")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "homework_pack_bad.json"), []byte("nope"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.json"), []byte(`{"created_at":"2030-01-01T00:00:00Z"}`), 0o644))

	latest, ok, err := store.Latest(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, filepath.Join(dir, "homework_pack_b.json"), latest.Path)
	require.Equal(t, "homework_pack_b.json", latest.Pack.Assignments[0].ID)
}

func TestPackStoreLatestFallsBackToModTime(t *testing.T) {
	store, dir := newTestPackStore(t, time.Now())
	require.NoError(t, os.MkdirAll(dir, 0o755))

	older := filepath.Join(dir, "homework_pack_old.json")
	newer := filepath.Join(dir, "homework_pack_new.json")
	require.NoError(t, os.WriteFile(older, []byte(`{"created_at":"not a date","assignments":[]}`), 0o644))
	require.NoError(t, os.WriteFile(newer, []byte(`{"created_at":"","assignments":[]}`), 0o644))
	require.NoError(t, os.Chtimes(older, time.Now().Add(-2*time.Hour), time.Now().Add(-2*time.Hour)))
	require.NoError(t, os.Chtimes(newer, time.Now().Add(-time.Hour), time.Now().Add(-time.Hour)))

	latest, ok, err := store.Latest(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, newer, latest.Path)
}

func TestPackStoreLatestEmpty(t *testing.T) {
	store, _ := newTestPackStore(t, time.Now())
	_, ok, err := store.Latest(context.Background())
	require.NoError(t, err)
	require.False(t, ok)
}

func TestPackStoreImport(t *testing.T) {
	store, dir := newTestPackStore(t, time.Now())
	source := filepath.Join(t.TempDir(), "from-usb.json")
	require.NoError(t, os.WriteFile(source, []byte(`{"version":"1.0","class_id":"7B","created_at":"2026-01-01T00:00:00Z","assignments":[{"id":"hw-9"}]}`), 0o644))

	stored, err := store.Import(context.Background(), source)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "homework_pack_import.json"), stored.Path)
	require.Equal(t, "hw-9", stored.Pack.Assignments[0].ID)

	_, err = store.Import(context.Background(), filepath.Join(t.TempDir(), "missing.json"))
	require.ErrorIs(t, err, ErrPackNotFound)
}

func TestPackStoreImportFromOwnFolderKeepsFile(t *testing.T) {
	store, _ := newTestPackStore(t, time.Now())

	template, err := store.ExportTemplate(context.Background(), "school", "7B")
	require.NoError(t, err)

	stored, err := store.Import(context.Background(), template.Path)
	require.NoError(t, err)
	require.Equal(t, template.Path, stored.Path)

	reloaded, err := store.Load(context.Background(), template.Path)
	require.NoError(t, err)
	require.Equal(t, "hw-sample-001", reloaded.Assignments[0].ID)
}
