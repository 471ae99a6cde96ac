package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// LocalStorage keeps files under a root directory and serves them from
// a base URL.
type LocalStorage struct {
	root    string
	baseURL string
}

func NewLocalStorage(root, baseURL string) (*LocalStorage, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve storage root %s: %w", root, err)
	}

	if err := os.MkdirAll(abs, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage root %s: %w", abs, err)
	}

	return &LocalStorage{
		root:    abs,
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}, nil
}

func (s *LocalStorage) Save(
	ctx context.Context,
	name string,
	data []byte,
) (WriteResult, error) {
	absPath, err := s.path(name)
	if err != nil {
		return WriteResult{}, err
	}

	if err := os.MkdirAll(filepath.Dir(absPath), 0755); err != nil {
		return WriteResult{}, fmt.Errorf(
			"failed to create directory for %s: %w",
			name,
			err,
		)
	}

	// Readers never observe a partially written file
	tmp, err := os.CreateTemp(filepath.Dir(absPath), ".tmp-*")
	if err != nil {
		return WriteResult{}, fmt.Errorf("failed to create temp file for %s: %w", name, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return WriteResult{}, fmt.Errorf("failed to write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return WriteResult{}, fmt.Errorf("failed to write %s: %w", name, err)
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return WriteResult{}, fmt.Errorf("failed to set mode of %s: %w", name, err)
	}
	if err := os.Rename(tmp.Name(), absPath); err != nil {
		return WriteResult{}, fmt.Errorf("failed to store %s: %w", name, err)
	}

	slog.Debug("Stored file", "name", name, "bytes", len(data))
	return WriteResult{Name: name, Size: len(data)}, nil
}

func (s *LocalStorage) Exists(ctx context.Context, name string) (bool, error) {
	absPath, err := s.path(name)
	if err != nil {
		return false, err
	}

	_, err = os.Stat(absPath)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}

	return false, fmt.Errorf("failed to stat %s: %w", name, err)
}

func (s *LocalStorage) Delete(ctx context.Context, name string) error {
	absPath, err := s.path(name)
	if err != nil {
		return err
	}

	if err := os.Remove(absPath); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to delete %s: %w", name, ErrNotFound)
		}
		return fmt.Errorf("failed to delete %s: %w", name, err)
	}

	return nil
}

func (s *LocalStorage) Read(ctx context.Context, name string) ([]byte, error) {
	absPath, err := s.path(name)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(absPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read %s: %w", name, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}

	return data, nil
}

// URL joins the base URL with the escaped storage name.
func (s *LocalStorage) URL(name string) string {
	segments := strings.Split(path.Clean("/"+name), "/")
	for i, seg := range segments {
		segments[i] = url.PathEscape(seg)
	}

	return s.baseURL + strings.Join(segments, "/")
}

// Maps a storage name to an absolute path inside root.
func (s *LocalStorage) path(name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("%w: empty name", ErrInvalidName)
	}

	cleaned := filepath.Clean(filepath.FromSlash(name))
	if filepath.IsAbs(cleaned) ||
		cleaned == ".." ||
		strings.HasPrefix(cleaned, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", ErrInvalidName, name)
	}

	return filepath.Join(s.root, cleaned), nil
}
