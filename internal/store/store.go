package store

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Store is the staging payload location extracts are written to and
// bulk loads read from. Paths are slash-separated keys relative to the
// store root.
type Store interface {
	Create(name string) (io.WriteCloser, error)
	Open(name string) (io.ReadCloser, error)
	Exists(name string) (bool, error)
}

// ObjectPath is the payload key convention: one file per entity per
// batch date, e.g. offices/2024-03-05/OFFICES.csv.
func ObjectPath(entity string, batchDate time.Time) string {
	return fmt.Sprintf("%s/%s/%s.csv",
		entity,
		batchDate.UTC().Format("2006-01-02"),
		strings.ToUpper(entity),
	)
}

// FS is a filesystem-backed Store rooted at a directory.
type FS struct {
	root string
}

func NewFS(root string) *FS {
	return &FS{root: root}
}

func (f *FS) path(name string) string {
	return filepath.Join(f.root, filepath.FromSlash(name))
}

func (f *FS) Create(name string) (io.WriteCloser, error) {
	full := f.path(name)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}
	file, err := os.Create(full)
	if err != nil {
		return nil, fmt.Errorf("create store object %s: %w", name, err)
	}
	return file, nil
}

func (f *FS) Open(name string) (io.ReadCloser, error) {
	file, err := os.Open(f.path(name))
	if err != nil {
		return nil, fmt.Errorf("open store object %s: %w", name, err)
	}
	return file, nil
}

func (f *FS) Exists(name string) (bool, error) {
	_, err := os.Stat(f.path(name))
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}
