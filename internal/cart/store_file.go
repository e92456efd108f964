package cart

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// FileStore keeps one JSON file per terminal. Writes go to a temp file
// that is renamed over the old one.
type FileStore struct {
	mu   sync.Mutex
	path string
}

// NewFileStore stores the cart at path. With more than one terminal sharing
// a directory, "{terminal}" in path is replaced by the terminal id.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) file(terminalID string) string {
	return strings.ReplaceAll(s.path, "{terminal}", terminalID)
}

func (s *FileStore) Load(ctx context.Context, terminalID string) (Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := os.ReadFile(s.file(terminalID))
	if errors.Is(err, os.ErrNotExist) {
		return Empty(), nil
	}
	if err != nil {
		return Empty(), fmt.Errorf("read cart file: %w", err)
	}
	return decode(raw)
}

func (s *FileStore) Save(ctx context.Context, terminalID string, c Cart) error {
	raw, err := encode(c)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.file(terminalID)
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create cart dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".cart-*")
	if err != nil {
		return fmt.Errorf("create temp cart file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return fmt.Errorf("write cart file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close cart file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace cart file: %w", err)
	}
	return nil
}

func (s *FileStore) Erase(ctx context.Context, terminalID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.file(terminalID)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove cart file: %w", err)
	}
	return nil
}
