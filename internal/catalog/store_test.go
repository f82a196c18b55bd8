package catalog

import (
	"context"
	"path/filepath"
	"testing"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()

	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "state", "cache.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStore failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSQLiteStore_Miss(t *testing.T) {
	store := newTestSQLiteStore(t)

	value, found, err := store.Load(context.Background(), "languages")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if found || value != nil {
		t.Errorf("expected miss, got found=%v value=%q", found, value)
	}
}

func TestSQLiteStore_SaveOverwriteDelete(t *testing.T) {
	ctx := context.Background()
	store := newTestSQLiteStore(t)

	if err := store.Save(ctx, "languages", []byte("first")); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := store.Save(ctx, "languages", []byte("second")); err != nil {
		t.Fatalf("second Save failed: %v", err)
	}

	value, found, err := store.Load(ctx, "languages")
	if err != nil || !found {
		t.Fatalf("Load = %q, %v, %v", value, found, err)
	}
	if string(value) != "second" {
		t.Errorf("Load = %q, want second", value)
	}

	if err := store.Delete(ctx, "languages"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, found, _ := store.Load(ctx, "languages"); found {
		t.Error("value still present after Delete")
	}

	// Deleting again is fine
	if err := store.Delete(ctx, "languages"); err != nil {
		t.Errorf("Delete of missing key returned %v", err)
	}
}

func TestSQLiteStore_PersistsAcrossOpen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "cache.db")

	store, err := NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("NewSQLiteStore failed: %v", err)
	}
	if err := store.Save(ctx, "languages", []byte(`[]`)); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	store.Close()

	reopened, err := NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer reopened.Close()

	value, found, err := reopened.Load(ctx, "languages")
	if err != nil || !found || string(value) != `[]` {
		t.Errorf("Load after reopen = %q, %v, %v", value, found, err)
	}
}
