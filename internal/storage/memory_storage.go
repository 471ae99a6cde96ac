package storage

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// MemoryStorage keeps files in memory. It is used for dry runs and
// tests.
type MemoryStorage struct {
	mu      sync.RWMutex
	files   map[string][]byte
	baseURL string
}

func NewMemoryStorage(baseURL string) *MemoryStorage {
	return &MemoryStorage{
		files:   make(map[string][]byte),
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}
}

func (s *MemoryStorage) Save(
	ctx context.Context,
	name string,
	data []byte,
) (WriteResult, error) {
	if name == "" {
		return WriteResult{}, fmt.Errorf("%w: empty name", ErrInvalidName)
	}

	buf := make([]byte, len(data))
	copy(buf, data)

	s.mu.Lock()
	s.files[name] = buf
	s.mu.Unlock()

	return WriteResult{Name: name, Size: len(data)}, nil
}

func (s *MemoryStorage) Exists(ctx context.Context, name string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.files[name]
	return ok, nil
}

func (s *MemoryStorage) Delete(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.files[name]; !ok {
		return fmt.Errorf("failed to delete %s: %w", name, ErrNotFound)
	}
	delete(s.files, name)
	return nil
}

func (s *MemoryStorage) Read(ctx context.Context, name string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.files[name]
	if !ok {
		return nil, fmt.Errorf("failed to read %s: %w", name, ErrNotFound)
	}

	buf := make([]byte, len(data))
	copy(buf, data)
	return buf, nil
}

func (s *MemoryStorage) URL(name string) string {
	return s.baseURL + "/" + strings.TrimPrefix(name, "/")
}

// Names returns the stored names, in no particular order.
func (s *MemoryStorage) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.files))
	for name := range s.files {
		names = append(names, name)
	}
	return names
}
