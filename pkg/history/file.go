package history

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/matzehuels/nodedocs/pkg/errors"
)

// FileStore keeps each record as a JSON file in a directory.
type FileStore struct {
	mu      sync.RWMutex
	baseDir string
}

// NewFileStore creates a file-based history store.
// If baseDir is empty, defaults to ~/.config/nodedocs/history/
func NewFileStore(baseDir string) (*FileStore, error) {
	if baseDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home dir: %w", err)
		}
		baseDir = filepath.Join(home, ".config", "nodedocs", "history")
	}
	if err := os.MkdirAll(baseDir, 0700); err != nil {
		return nil, fmt.Errorf("create history dir: %w", err)
	}
	return &FileStore{baseDir: baseDir}, nil
}

func (s *FileStore) recordPath(id string) string {
	return filepath.Join(s.baseDir, id+".json")
}

func (s *FileStore) Add(ctx context.Context, r Record) error {
	if _, err := uuid.Parse(r.ID); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid run id %q", r.ID)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}
	path := s.recordPath(r.ID)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("write record: %w", err)
	}
	return os.Rename(tmp, path)
}

func (s *FileStore) List(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return nil, fmt.Errorf("read history dir: %w", err)
	}

	var out []Record
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.baseDir, entry.Name()))
		if err != nil {
			continue
		}
		var r Record
		if err := json.Unmarshal(data, &r); err != nil {
			continue
		}
		out = append(out, r)
	}

	slices.SortFunc(out, func(a, b Record) int { return b.Finished.Compare(a.Finished) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Clear removes every record and returns how many were removed.
func (s *FileStore) Clear() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return 0, fmt.Errorf("read history dir: %w", err)
	}
	count := 0
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		if os.Remove(filepath.Join(s.baseDir, entry.Name())) == nil {
			count++
		}
	}
	return count, nil
}

func (s *FileStore) Close() error { return nil }

// Path returns the directory holding the records.
func (s *FileStore) Path() string {
	return s.baseDir
}

var _ Store = (*FileStore)(nil)
