// Package filestore stores report evidence files on the local filesystem.
// Stored names carry a random suffix so concurrent uploads of the same
// original filename never collide.
package filestore

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

var (
	ErrFileNotFound     = errors.New("file not found")
	ErrFileTooLarge     = errors.New("file exceeds maximum allowed size")
	ErrInvalidExtension = errors.New("file extension is not allowed")
	ErrMissingFileName  = errors.New("file name is required")
)

// AllowedExtensions lists the evidence file types users may attach.
var AllowedExtensions = map[string]bool{
	".txt":  true,
	".pdf":  true,
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".doc":  true,
	".docx": true,
	".xls":  true,
	".xlsx": true,
}

// Store writes and removes evidence files under a single directory.
type Store struct {
	dir     string
	maxSize int64
}

func New(dir string, maxSize int64) *Store {
	return &Store{dir: dir, maxSize: maxSize}
}

// Save validates and writes the uploaded content, returning the stored
// filename. The stored name is the sanitized original base name plus a
// random suffix, e.g. "screenshot_1b9f0c2a.png".
func (s *Store) Save(originalName string, content io.Reader) (string, error) {
	base := sanitizeName(originalName)
	if base == "" {
		return "", ErrMissingFileName
	}

	ext := strings.ToLower(filepath.Ext(base))
	if !AllowedExtensions[ext] {
		return "", ErrInvalidExtension
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("create upload directory: %w", err)
	}

	suffix := strings.ReplaceAll(uuid.New().String(), "-", "")[:16]
	name := strings.TrimSuffix(base, ext) + "_" + suffix + ext
	path := filepath.Join(s.dir, name)

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("create file: %w", err)
	}

	written, err := io.Copy(f, io.LimitReader(content, s.maxSize+1))
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(path)
		return "", fmt.Errorf("write file: %w", err)
	}
	if written > s.maxSize {
		os.Remove(path)
		return "", ErrFileTooLarge
	}

	return name, nil
}

// Open returns the stored file for download.
func (s *Store) Open(name string) (io.ReadCloser, error) {
	clean := sanitizeName(name)
	if clean == "" {
		return nil, ErrMissingFileName
	}
	f, err := os.Open(filepath.Join(s.dir, clean))
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrFileNotFound
	}
	return f, err
}

// Delete removes a stored file. A missing file is not an error: the row
// delete must still proceed when the file is already gone.
func (s *Store) Delete(name string) error {
	clean := sanitizeName(name)
	if clean == "" {
		return nil
	}
	err := os.Remove(filepath.Join(s.dir, clean))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("delete file: %w", err)
	}
	return nil
}

// sanitizeName reduces a client-supplied filename to a safe base name.
func sanitizeName(name string) string {
	base := filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	if base == "." || base == ".." || base == "/" {
		return ""
	}
	base = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, base)
	return strings.Trim(base, "._")
}
