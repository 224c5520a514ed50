package kv_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/goliatone/go-settings/kv"
)

func TestMemoryRoundTrip(t *testing.T) {
	store := kv.NewMemory()
	ctx := context.Background()

	if _, ok, err := store.Get(ctx, "missing"); err != nil || ok {
		t.Fatalf("expected miss, got ok=%v err=%v", ok, err)
	}

	if err := store.Set(ctx, "settings:refresh:admin", []byte(`{"a":1}`)); err != nil {
		t.Fatalf("set: %v", err)
	}
	value, ok, err := store.Get(ctx, "settings:refresh:admin")
	if err != nil || !ok {
		t.Fatalf("expected hit, got ok=%v err=%v", ok, err)
	}
	if string(value) != `{"a":1}` {
		t.Fatalf("unexpected payload %q", value)
	}

	if err := store.Set(ctx, "settings:refresh:admin", []byte(`{"a":2}`)); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	value, _, _ = store.Get(ctx, "settings:refresh:admin")
	if string(value) != `{"a":2}` {
		t.Fatalf("expected overwrite, got %q", value)
	}
}

func TestMemoryCopiesPayloads(t *testing.T) {
	store := kv.NewMemory()
	ctx := context.Background()

	payload := []byte("original")
	if err := store.Set(ctx, "key", payload); err != nil {
		t.Fatalf("set: %v", err)
	}
	payload[0] = 'X'

	value, _, _ := store.Get(ctx, "key")
	if string(value) != "original" {
		t.Fatalf("stored payload aliases caller slice: %q", value)
	}
	value[0] = 'Y'
	again, _, _ := store.Get(ctx, "key")
	if string(again) != "original" {
		t.Fatalf("returned payload aliases stored slice: %q", again)
	}
}

func TestDirRoundTrip(t *testing.T) {
	store, err := kv.NewDir(t.TempDir())
	if err != nil {
		t.Fatalf("new dir: %v", err)
	}
	ctx := context.Background()

	if _, ok, err := store.Get(ctx, "settings:theme"); err != nil || ok {
		t.Fatalf("expected miss, got ok=%v err=%v", ok, err)
	}
	if err := store.Set(ctx, "settings:theme", []byte(`{"theme":"dark"}`)); err != nil {
		t.Fatalf("set: %v", err)
	}
	value, ok, err := store.Get(ctx, "settings:theme")
	if err != nil || !ok {
		t.Fatalf("expected hit, got ok=%v err=%v", ok, err)
	}
	if string(value) != `{"theme":"dark"}` {
		t.Fatalf("unexpected payload %q", value)
	}
}

func TestDirSanitizesKeys(t *testing.T) {
	root := t.TempDir()
	store, err := kv.NewDir(root)
	if err != nil {
		t.Fatalf("new dir: %v", err)
	}
	if err := store.Set(context.Background(), "settings:refresh/admin", []byte("x")); err != nil {
		t.Fatalf("set: %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, "settings_refresh_admin.json")); err != nil {
		t.Fatalf("expected sanitized file name: %v", err)
	}
}

func TestDirCreatesMissingDirectory(t *testing.T) {
	root := filepath.Join(t.TempDir(), "nested", "store")
	if _, err := kv.NewDir(root); err != nil {
		t.Fatalf("new dir: %v", err)
	}
	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		t.Fatalf("expected directory at %s: %v", root, err)
	}
}

func TestDirRequiresPath(t *testing.T) {
	if _, err := kv.NewDir("  "); err == nil {
		t.Fatalf("expected error for blank path")
	}
}

func TestSQLiteRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.db")
	store, err := kv.OpenSQLite(path)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	ctx := context.Background()

	if _, ok, err := store.Get(ctx, "settings:refresh:user"); err != nil || ok {
		t.Fatalf("expected miss, got ok=%v err=%v", ok, err)
	}
	if err := store.Set(ctx, "settings:refresh:user", []byte(`{"my_refresh_seconds":60}`)); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := store.Set(ctx, "settings:refresh:user", []byte(`{"my_refresh_seconds":90}`)); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	value, ok, err := store.Get(ctx, "settings:refresh:user")
	if err != nil || !ok {
		t.Fatalf("expected hit, got ok=%v err=%v", ok, err)
	}
	if string(value) != `{"my_refresh_seconds":90}` {
		t.Fatalf("unexpected payload %q", value)
	}
}

func TestSQLiteRequiresHandle(t *testing.T) {
	if _, err := kv.NewSQLite(nil); err == nil {
		t.Fatalf("expected error for nil database handle")
	}
	if _, err := kv.OpenSQLite(""); err == nil {
		t.Fatalf("expected error for blank path")
	}
}
