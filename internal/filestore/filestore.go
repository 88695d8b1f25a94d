// Package filestore keeps uploaded statement exports on local disk so a
// background job can import them after the upload request has returned.
package filestore

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Store handles local statement file storage
type Store struct {
	basePath string
}

// New creates a file store rooted at basePath, creating the directory if
// needed.
func New(basePath string) (*Store, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("create filestore directory: %w", err)
	}
	return &Store{basePath: basePath}, nil
}

// Save stores an uploaded statement under a collision-free name derived from
// the original filename and returns that name.
func (s *Store) Save(filename string, r io.Reader) (string, error) {
	uniqueID, err := generateID()
	if err != nil {
		return "", fmt.Errorf("generate file id: %w", err)
	}

	ext := filepath.Ext(filename)
	if ext == "" {
		ext = ".csv"
	}
	stored := slug(strings.TrimSuffix(filepath.Base(filename), ext)) + "-" + uniqueID + ext

	fullPath := filepath.Join(s.basePath, stored)
	f, err := os.Create(fullPath)
	if err != nil {
		return "", fmt.Errorf("create file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		os.Remove(fullPath) // Clean up on error
		return "", fmt.Errorf("write file: %w", err)
	}

	return stored, nil
}

// Open returns a reader for a stored statement
func (s *Store) Open(filename string) (*os.File, error) {
	f, err := os.Open(filepath.Join(s.basePath, filename))
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	return f, nil
}

// Delete removes a stored statement; deleting a missing file is not an error
func (s *Store) Delete(filename string) error {
	if filename == "" {
		return nil
	}
	if err := os.Remove(filepath.Join(s.basePath, filename)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete file: %w", err)
	}
	return nil
}

// FullPath returns the full filesystem path for a stored filename
func (s *Store) FullPath(filename string) string {
	return filepath.Join(s.basePath, filename)
}

// slug reduces a filename to lowercase alphanumerics and dashes
func slug(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			if b.Len() > 0 && !strings.HasSuffix(b.String(), "-") {
				b.WriteRune('-')
			}
		}
	}
	out := strings.Trim(b.String(), "-")
	if out == "" {
		return "statement"
	}
	return out
}

// generateID creates a random 16-character hex string
func generateID() (string, error) {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}
