package record

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/wizardline/wizardline/internal/persona"
)

func errorsIsPersistence(err error) bool {
	return errors.Is(err, ErrPersistence)
}

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

func TestAppendThenListPreservesOrder(t *testing.T) {
	for name, store := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			for i := 0; i < 5; i++ {
				turn := Turn{
					ID:        fmt.Sprintf("turn-%d", i),
					Utterance: fmt.Sprintf("question %d", i),
					Persona:   persona.Default,
					Answer:    fmt.Sprintf("answer %d", i),
				}
				if err := store.Append(ctx, turn); err != nil {
					t.Fatalf("Append() error = %v", err)
				}
			}

			turns, err := store.List(ctx)
			if err != nil {
				t.Fatalf("List() error = %v", err)
			}
			if len(turns) != 5 {
				t.Fatalf("len(turns) = %d, want 5", len(turns))
			}
			for i, turn := range turns {
				if turn.ID != fmt.Sprintf("turn-%d", i) {
					t.Fatalf("turns[%d].ID = %q, want turn-%d", i, turn.ID, i)
				}
			}
		})
	}
}

func TestConcurrentAppendsLoseNothing(t *testing.T) {
	const n = 50
	for name, store := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			var wg sync.WaitGroup
			for i := 0; i < n; i++ {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					turn := Turn{
						ID:        fmt.Sprintf("turn-%d", i),
						Utterance: fmt.Sprintf("question %d", i),
						Persona:   persona.Default,
					}
					if err := store.Append(ctx, turn); err != nil {
						t.Errorf("Append(%d) error = %v", i, err)
					}
				}(i)
			}
			wg.Wait()

			turns, err := store.List(ctx)
			if err != nil {
				t.Fatalf("List() error = %v", err)
			}
			if len(turns) != n {
				t.Fatalf("len(turns) = %d, want %d (lost updates)", len(turns), n)
			}
			seen := make(map[string]bool, n)
			for _, turn := range turns {
				if seen[turn.ID] {
					t.Fatalf("duplicate turn id %q", turn.ID)
				}
				seen[turn.ID] = true
			}
		})
	}
}

func TestAppendFillsIDAndTimestamp(t *testing.T) {
	for name, store := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			if err := store.Append(ctx, Turn{Utterance: "hello", Persona: persona.Default}); err != nil {
				t.Fatalf("Append() error = %v", err)
			}
			turns, err := store.List(ctx)
			if err != nil {
				t.Fatalf("List() error = %v", err)
			}
			if turns[0].ID == "" {
				t.Fatalf("turn ID should be filled in")
			}
			if turns[0].CreatedAt.IsZero() {
				t.Fatalf("turn CreatedAt should be filled in")
			}
		})
	}
}

func TestListReturnsSnapshot(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()
	if err := store.Append(ctx, Turn{ID: "a", Utterance: "q", Persona: persona.Default}); err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	turns, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	turns[0].Answer = "mutated"

	again, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if again[0].Answer == "mutated" {
		t.Fatalf("List() snapshot shares memory with the store")
	}
}

func TestFileStoreSurfacesCorruption(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, recordsFile), []byte("{not json"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	_, err = store.List(context.Background())
	if err == nil {
		t.Fatalf("List() on corrupt file should fail")
	}
	if !errorsIsPersistence(err) {
		t.Fatalf("err = %v, want ErrPersistence", err)
	}
}

func TestFileStorePersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	store, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}
	if err := store.Append(ctx, Turn{ID: "a", Utterance: "q", Persona: persona.Default}); err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	reopened, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore() reopen error = %v", err)
	}
	turns, err := reopened.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(turns) != 1 || turns[0].ID != "a" {
		t.Fatalf("reopened log = %+v, want the appended turn", turns)
	}
}
