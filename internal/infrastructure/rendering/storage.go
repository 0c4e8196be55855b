package rendering

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ArtifactStorage persists rendered report artifacts
type ArtifactStorage interface {
	// Store saves the artifact and returns a retrieval path or URL
	Store(ctx context.Context, filename string, data []byte) (string, error)
	// Get retrieves a stored artifact
	Get(ctx context.Context, filename string) ([]byte, error)
	// Delete removes a stored artifact
	Delete(ctx context.Context, filename string) error
	// CleanupOlderThan removes artifacts older than the given age and
	// returns the number removed
	CleanupOlderThan(ctx context.Context, age time.Duration) (int, error)
}

// artifactExtensions are the file extensions the cleanup pass considers
var artifactExtensions = map[string]bool{
	".pdf":  true,
	".xlsx": true,
	".csv":  true,
}

// FileSystemStorage stores artifacts in a flat directory on local disk
type FileSystemStorage struct {
	baseDir string
}

// NewFileSystemStorage creates the storage directory if needed
func NewFileSystemStorage(baseDir string) (*FileSystemStorage, error) {
	if baseDir == "" {
		return nil, fmt.Errorf("storage directory cannot be empty")
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return &FileSystemStorage{baseDir: baseDir}, nil
}

// Store writes the artifact to disk and returns its path
func (s *FileSystemStorage) Store(ctx context.Context, filename string, data []byte) (string, error) {
	path, err := s.safePath(filename)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", NewRenderError(ErrCodeStorageFailed, "failed to write artifact", err)
	}
	return path, nil
}

// Get reads a stored artifact from disk
func (s *FileSystemStorage) Get(ctx context.Context, filename string) ([]byte, error) {
	path, err := s.safePath(filename)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, NewRenderError(ErrCodeStorageFailed, "artifact not found: "+filename, err)
		}
		return nil, NewRenderError(ErrCodeStorageFailed, "failed to read artifact", err)
	}
	return data, nil
}

// Delete removes a stored artifact. Deleting a missing artifact is not an error.
func (s *FileSystemStorage) Delete(ctx context.Context, filename string) error {
	path, err := s.safePath(filename)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return NewRenderError(ErrCodeStorageFailed, "failed to delete artifact", err)
	}
	return nil
}

// CleanupOlderThan removes report artifacts whose modification time is
// older than the given age. Only known artifact extensions are touched.
func (s *FileSystemStorage) CleanupOlderThan(ctx context.Context, age time.Duration) (int, error) {
	cutoff := time.Now().Add(-age)
	removed := 0

	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return 0, NewRenderError(ErrCodeStorageFailed, "failed to list storage directory", err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if !artifactExtensions[strings.ToLower(filepath.Ext(entry.Name()))] {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			if err := os.Remove(filepath.Join(s.baseDir, entry.Name())); err == nil {
				removed++
			}
		}
	}
	return removed, nil
}

// safePath validates the filename and resolves it inside the base directory.
// Rejects path traversal attempts and nested paths.
func (s *FileSystemStorage) safePath(filename string) (string, error) {
	if filename == "" {
		return "", NewRenderError(ErrCodeStorageFailed, "filename cannot be empty", nil)
	}
	if containsDotDot(filename) || strings.ContainsAny(filename, `/\`) {
		return "", NewRenderError(ErrCodeStorageFailed, "invalid filename: "+filename, nil)
	}

	absBase, err := filepath.Abs(s.baseDir)
	if err != nil {
		return "", NewRenderError(ErrCodeStorageFailed, "failed to resolve storage directory", err)
	}
	path := filepath.Join(absBase, filename)
	if !strings.HasPrefix(path, absBase+string(filepath.Separator)) {
		return "", NewRenderError(ErrCodeStorageFailed, "invalid filename: "+filename, nil)
	}
	return path, nil
}

func containsDotDot(v string) bool {
	for _, part := range strings.FieldsFunc(v, func(r rune) bool { return r == '/' || r == '\\' }) {
		if part == ".." {
			return true
		}
	}
	return false
}
