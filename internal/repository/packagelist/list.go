package packagelist

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"iter"
	"os"
	"path/filepath"
	"strings"
)

// ErrNotFound is returned when the package list file does not exist.
var ErrNotFound = errors.New("package list not found")

// commentPrefix starts a line that is ignored.
const commentPrefix = "#"

// utf8BOM is written at the start of text files by Notepad and Windows PowerShell.
var utf8BOM = []byte("\xef\xbb\xbf")

// List is an ordered sequence of package identifiers.
// Duplicates are kept; each occurrence is processed on its own.
type List struct {
	// contents is the raw file body.
	contents []byte
}

// Parse wraps raw list contents, dropping a leading byte-order mark.
// Filtering happens lazily while iterating.
func Parse(contents []byte) *List {
	return &List{contents: bytes.TrimPrefix(contents, utf8BOM)}
}

// All yields trimmed identifiers in file order, skipping blank and comment lines.
func (l *List) All() iter.Seq[string] {
	return func(yield func(string) bool) {
		for line := range bytes.Lines(l.contents) {
			identifier := strings.TrimSpace(string(line))
			if identifier == "" || strings.HasPrefix(identifier, commentPrefix) {
				continue
			}

			if !yield(identifier) {
				return
			}
		}
	}
}

// FileRepository loads a package list from disk.
type FileRepository struct {
	// path is the filesystem location of the list.
	path string
}

// NewFileRepository creates a repository reading the list at path.
func NewFileRepository(path string) *FileRepository {
	return &FileRepository{
		path: filepath.Clean(path),
	}
}

// Path returns the list location.
func (r *FileRepository) Path() string {
	return r.path
}

// Load reads the list. A missing file yields ErrNotFound.
func (r *FileRepository) Load(_ context.Context) (*List, error) {
	contents, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("read package list: %w", err)
	}

	return Parse(contents), nil
}
