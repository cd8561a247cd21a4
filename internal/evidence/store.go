// Package evidence stores uploaded attachment files and hands back the
// reference path a record carries. References stay stable for the life
// of the file; records only ever hold the reference, never the bytes.
package evidence

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// RefPrefix is the URL path prefix evidence references resolve under.
const RefPrefix = "/evidence/"

type Store struct {
	dir string
}

// NewStore ensures the storage directory exists.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create evidence directory: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Save writes the uploaded content under a fresh name and returns its
// reference. The original extension is kept so browsers render the
// attachment correctly.
func (s *Store) Save(r io.Reader, originalName string) (string, error) {
	name := uuid.NewString() + sanitizeExt(originalName)

	f, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return "", fmt.Errorf("create evidence file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("write evidence file: %w", err)
	}
	return RefPrefix + name, nil
}

// Open resolves a reference produced by Save back to its content.
func (s *Store) Open(ref string) (io.ReadCloser, error) {
	name, ok := strings.CutPrefix(ref, RefPrefix)
	if !ok || name == "" || name != filepath.Base(name) {
		return nil, fmt.Errorf("invalid evidence reference %q", ref)
	}
	f, err := os.Open(filepath.Join(s.dir, name))
	if err != nil {
		return nil, fmt.Errorf("open evidence %q: %w", ref, err)
	}
	return f, nil
}

// Dir returns the directory files are stored under.
func (s *Store) Dir() string { return s.dir }

func sanitizeExt(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	if ext == "" || len(ext) > 10 || strings.ContainsAny(ext, "/\\") {
		return ""
	}
	return ext
}
