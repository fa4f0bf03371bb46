// Package file loads the catalog document from the local filesystem.
package file

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/klauspost/pgzip"

	"github.com/xenking/menukart/internal/domain/catalog"
)

var _ catalog.Source = (*Source)(nil)

// Source reads a catalog document from a path. Paths ending in .gz are
// decompressed.
type Source struct {
	path string
}

// New creates a Source for path.
func New(path string) *Source {
	return &Source{path: path}
}

// Load reads and decodes the document.
func (s *Source) Load(ctx context.Context) (*catalog.Catalog, error) {
	data, err := ReadDocument(ctx, s.path)
	if err != nil {
		return nil, &catalog.LoadError{Source: s.path, Err: err}
	}
	return catalog.Decode(data)
}

// ReadDocument returns the raw bytes of the document at path, decompressing
// gzip files.
func ReadDocument(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		zr, err := pgzip.NewReader(f)
		if err != nil {
			return nil, err
		}
		defer func() { _ = zr.Close() }()
		r = zr
	}
	return io.ReadAll(r)
}
