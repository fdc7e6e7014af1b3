package refstore

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/speechmetrics/cpwer/internal/eval/metrics"
)

// Store reads reference transcripts from a directory of plain-text files,
// one file per reference annotator, named with the recording URI as prefix
// (e.g. EN2002a.A.txt and EN2002a.B.txt for recording EN2002a).
type Store struct {
	dir string
}

// New creates a store over the given reference directory.
func New(dir string) *Store {
	return &Store{dir: dir}
}

// Load returns the raw reference transcripts for a recording. References are
// read fresh on every call; nothing is cached across samples. Zero matching
// files is a precondition violation, not a valid empty reference set.
func (s *Store) Load(uri string) ([]string, error) {
	if uri == "" {
		return nil, fmt.Errorf("recording uri is empty")
	}

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read reference directory: %w", err)
	}

	var texts []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasPrefix(entry.Name(), uri) {
			continue
		}

		data, err := os.ReadFile(filepath.Join(s.dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("failed to read reference file %s: %w", entry.Name(), err)
		}
		texts = append(texts, strings.TrimSpace(string(data)))
	}

	if len(texts) == 0 {
		return nil, &metrics.ReferenceNotFoundError{URI: uri}
	}

	slog.Debug("Loaded reference transcripts", "uri", uri, "count", len(texts))

	return texts, nil
}
