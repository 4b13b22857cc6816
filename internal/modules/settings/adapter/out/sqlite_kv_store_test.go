package out_test

import (
	"context"
	"path/filepath"
	"testing"

	adapter "toolhub/internal/modules/settings/adapter/out"
	settingsout "toolhub/internal/modules/settings/port/out"
)

func newStore(t *testing.T) settingsout.KVStore {
	t.Helper()
	store, err := adapter.NewSQLiteKVStore(filepath.Join(t.TempDir(), "settings.db"))
	if err != nil {
		t.Fatalf("NewSQLiteKVStore: %v", err)
	}
	return store
}

func TestGetReportsAbsence(t *testing.T) {
	t.Parallel()

	store := newStore(t)
	_, ok, err := store.Get(context.Background(), "nope")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if ok {
		t.Fatal("expected absent key")
	}
}

func TestPutOverwritesByKey(t *testing.T) {
	t.Parallel()

	store := newStore(t)
	ctx := context.Background()

	if err := store.Put(ctx, "theme", "light"); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := store.Put(ctx, "theme", "dark"); err != nil {
		t.Fatalf("Put again: %v", err)
	}

	v, ok, err := store.Get(ctx, "theme")
	if err != nil || !ok {
		t.Fatalf("Get = %v, %v", ok, err)
	}
	if v != "dark" {
		t.Fatalf("value = %q, want dark", v)
	}
}

func TestDeleteIsIdempotent(t *testing.T) {
	t.Parallel()

	store := newStore(t)
	ctx := context.Background()

	if err := store.Put(ctx, "k", "v"); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := store.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := store.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete absent: %v", err)
	}
	if _, ok, _ := store.Get(ctx, "k"); ok {
		t.Fatal("key survived delete")
	}
}
