// Package localsource serves ingestion files from a local directory,
// used in development and for manually delivered drops.
package localsource

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/acquirex/reconcile/pkg/ingest"
)

// Source lists and fetches files from one directory, non-recursively.
type Source struct {
	dir string
}

// New creates a source over the given directory.
func New(dir string) *Source {
	return &Source{dir: dir}
}

// List implements ingest.Lister.
func (s *Source) List(_ context.Context) ([]ingest.FileInfo, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, err
	}
	var out []ingest.FileInfo
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			return nil, err
		}
		out = append(out, ingest.FileInfo{
			Name:         entry.Name(),
			Path:         filepath.Join(s.dir, entry.Name()),
			IsCompressed: strings.HasSuffix(entry.Name(), ".gz"),
			Size:         info.Size(),
		})
	}
	return out, nil
}

// Fetch implements ingest.Fetcher.
func (s *Source) Fetch(_ context.Context, path string) ([]byte, error) {
	return os.ReadFile(path)
}
