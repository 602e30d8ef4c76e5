package persona

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func testStores(t *testing.T) map[string]Store {
	t.Helper()
	fileStore, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}
	return map[string]Store{
		"inmemory": NewInMemoryStore(),
		"file":     fileStore,
	}
}

func TestGetCreatesDefault(t *testing.T) {
	for name, store := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			cfg, err := store.Get(context.Background())
			if err != nil {
				t.Fatalf("Get() error = %v", err)
			}
			if cfg != Default {
				t.Fatalf("first Get() = %+v, want Default", cfg)
			}
		})
	}
}

func TestGetIsIdempotent(t *testing.T) {
	for name, store := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			first, err := store.Get(ctx)
			if err != nil {
				t.Fatalf("Get() error = %v", err)
			}
			second, err := store.Get(ctx)
			if err != nil {
				t.Fatalf("Get() second error = %v", err)
			}
			if first != second {
				t.Fatalf("Get() not idempotent: %+v vs %+v", first, second)
			}
		})
	}
}

func TestSetReplacesWholesale(t *testing.T) {
	for name, store := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			updated, err := store.Set(ctx, Config{
				Personality:  "a terse oracle",
				Restrictions: "one sentence only",
			})
			if err != nil {
				t.Fatalf("Set() error = %v", err)
			}
			if updated.Personality != "a terse oracle" || updated.Restrictions != "one sentence only" {
				t.Fatalf("Set() = %+v", updated)
			}

			got, err := store.Get(ctx)
			if err != nil {
				t.Fatalf("Get() error = %v", err)
			}
			if got != updated {
				t.Fatalf("Get() after Set() = %+v, want %+v", got, updated)
			}
		})
	}
}

func TestSetKeepsFieldsOmittedFromUpdate(t *testing.T) {
	for name, store := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			if _, err := store.Set(ctx, Config{Personality: "a calm librarian", Restrictions: "whisper"}); err != nil {
				t.Fatalf("Set() error = %v", err)
			}

			updated, err := store.Set(ctx, Config{Personality: "a loud pirate"})
			if err != nil {
				t.Fatalf("Set() partial error = %v", err)
			}
			if updated.Personality != "a loud pirate" {
				t.Fatalf("Personality = %q", updated.Personality)
			}
			if updated.Restrictions != "whisper" {
				t.Fatalf("Restrictions = %q, want previous value kept", updated.Restrictions)
			}
		})
	}
}

func TestFileStorePersistsDefaultOnFirstRead(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}

	if _, err := store.Get(context.Background()); err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, settingsFile)); err != nil {
		t.Fatalf("settings file not persisted on first read: %v", err)
	}
}

func TestFileStoreSurfacesCorruption(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, settingsFile), []byte("][nope"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	_, err = store.Get(context.Background())
	if !errors.Is(err, ErrPersistence) {
		t.Fatalf("Get() on corrupt file err = %v, want ErrPersistence", err)
	}
}
