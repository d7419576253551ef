package catalogstore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/melking/melking-bfa-go/internal/domain"

	"go.uber.org/zap"
)

// FileStore keeps the catalog in a JSON file. Writes are atomic within a
// process; concurrent writers in different processes follow last-write-wins.
type FileStore struct {
	mu     sync.Mutex
	path   string
	logger *zap.Logger
}

// NewFileStore creates a FileStore at path. The file is created on first save.
func NewFileStore(path string, logger *zap.Logger) *FileStore {
	return &FileStore{path: path, logger: logger}
}

// Load implements port.CatalogStore.
func (s *FileStore) Load(ctx context.Context) ([]domain.ExpenseType, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return load(ctx, s, s.logger)
}

// Save implements port.CatalogStore.
func (s *FileStore) Save(ctx context.Context, types []domain.ExpenseType) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return save(ctx, s, types)
}

func (s *FileStore) get(_ context.Context) ([]byte, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}
	return data, nil
}

func (s *FileStore) put(_ context.Context, data []byte) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create catalog directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".expense_types-*.json")
	if err != nil {
		return fmt.Errorf("failed to write catalog file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write catalog file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write catalog file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to replace catalog file: %w", err)
	}
	return nil
}

func (s *FileStore) remove(_ context.Context) error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to clear catalog file: %w", err)
	}
	return nil
}
