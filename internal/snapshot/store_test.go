package snapshot

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDirStoreSave(t *testing.T) {
	dir := t.TempDir()
	store, err := NewDirStore(filepath.Join(dir, "snapshots"))
	if err != nil {
		t.Fatalf("NewDirStore: %v", err)
	}

	payload := []byte(`[{"id":"ent-1"}]`)
	if err := store.Save(context.Background(), "entities", payload); err != nil {
		t.Fatalf("Save: %v", err)
	}

	entries, err := os.ReadDir(filepath.Join(dir, "snapshots"))
	if err != nil {
		t.Fatalf("read snapshot dir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 snapshot, got %d", len(entries))
	}
	name := entries[0].Name()
	if !strings.HasSuffix(name, "-entities.json") {
		t.Fatalf("unexpected snapshot name: %s", name)
	}

	data, err := os.ReadFile(filepath.Join(dir, "snapshots", name))
	if err != nil {
		t.Fatalf("read snapshot: %v", err)
	}
	if string(data) != string(payload) {
		t.Fatalf("unexpected snapshot content: %s", data)
	}

	info, err := os.Stat(filepath.Join(dir, "snapshots", name))
	if err != nil {
		t.Fatalf("stat snapshot: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Fatalf("unexpected snapshot mode: %v", info.Mode().Perm())
	}
}

func TestNewDirStoreRequiresDir(t *testing.T) {
	if _, err := NewDirStore("  "); err == nil {
		t.Fatalf("expected error for blank directory")
	}
}

type failingStore struct{}

func (failingStore) Save(context.Context, string, []byte) error {
	return os.ErrPermission
}

func TestTeeKeepsGoingPastFailures(t *testing.T) {
	dir := t.TempDir()
	dirStore, err := NewDirStore(dir)
	if err != nil {
		t.Fatalf("NewDirStore: %v", err)
	}

	tee := Tee{failingStore{}, dirStore}
	err = tee.Save(context.Background(), "endpoints", []byte(`{}`))
	if err == nil {
		t.Fatalf("expected the failing store's error to surface")
	}

	entries, readErr := os.ReadDir(dir)
	if readErr != nil {
		t.Fatalf("read dir: %v", readErr)
	}
	if len(entries) != 1 {
		t.Fatalf("expected the second store to still receive the payload, got %d files", len(entries))
	}
}
