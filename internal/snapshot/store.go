package snapshot

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Store archives raw listing payloads. Snapshots are write-only audit
// copies of what enumeration saw; nothing ever reads them back.
type Store interface {
	Save(ctx context.Context, name string, data []byte) error
}

// DirStore writes timestamped snapshot files under one directory.
type DirStore struct {
	dir string
}

func NewDirStore(dir string) (*DirStore, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, fmt.Errorf("snapshot directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create snapshot directory: %w", err)
	}
	return &DirStore{dir: dir}, nil
}

func (s *DirStore) Save(_ context.Context, name string, data []byte) error {
	if err := os.WriteFile(filepath.Join(s.dir, objectName(name)), data, 0o600); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	return nil
}

// Tee fans one payload out to several stores, best effort.
type Tee []Store

func (t Tee) Save(ctx context.Context, name string, data []byte) error {
	var errs []error
	for _, store := range t {
		if err := store.Save(ctx, name, data); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func objectName(name string) string {
	return fmt.Sprintf("%s-%s.json", time.Now().UTC().Format("20060102T150405Z"), name)
}
