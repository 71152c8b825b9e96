package source

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"time"

	"github.com/okian/handicap/internal/domain/naming"
	"github.com/spf13/afero"
)

// FileSource reads <dir>/<document name> from a filesystem.
type FileSource struct {
	dir  string
	opts options
}

// NewFileSource creates a source rooted at dir.
func NewFileSource(dir string, opts ...Option) *FileSource {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &FileSource{dir: dir, opts: o}
}

// Kind implements Source.
func (s *FileSource) Kind() string { return "file" }

// Path returns the document path of player.
func (s *FileSource) Path(player string) string {
	return filepath.Join(s.dir, naming.DocumentName(player, s.opts.suffix))
}

// Fetch implements Source.
func (s *FileSource) Fetch(ctx context.Context, player string) (data []byte, err error) {
	start := time.Now()
	notFound := false
	defer func() { observe(s.Kind(), start, err, notFound) }()

	if cerr := ctx.Err(); cerr != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrFetch, player, cerr)
	}
	path := s.Path(player)
	data, err = afero.ReadFile(s.opts.fs, path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			notFound = true
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("%w: %s: %w", ErrFetch, path, err)
	}
	return data, nil
}
