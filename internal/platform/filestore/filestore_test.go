package filestore

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return New(t.TempDir(), 1024)
}

func TestSave_StoresWithRandomSuffix(t *testing.T) {
	s := newTestStore(t)

	name, err := s.Save("screenshot.png", strings.NewReader("data"))
	if err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	if !strings.HasPrefix(name, "screenshot_") || !strings.HasSuffix(name, ".png") {
		t.Errorf("unexpected stored name: %s", name)
	}

	content, err := os.ReadFile(filepath.Join(s.dir, name))
	if err != nil {
		t.Fatalf("stored file missing: %v", err)
	}
	if string(content) != "data" {
		t.Errorf("unexpected content: %s", content)
	}
}

func TestSave_SameNameNoCollision(t *testing.T) {
	s := newTestStore(t)

	a, err := s.Save("bukti.pdf", strings.NewReader("one"))
	if err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	b, err := s.Save("bukti.pdf", strings.NewReader("two"))
	if err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	if a == b {
		t.Errorf("expected distinct stored names, both were %s", a)
	}
}

func TestSave_RejectsDisallowedExtension(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Save("malware.exe", strings.NewReader("x"))
	if !errors.Is(err, ErrInvalidExtension) {
		t.Errorf("expected ErrInvalidExtension, got %v", err)
	}
}

func TestSave_RejectsOversized(t *testing.T) {
	s := New(t.TempDir(), 8)

	_, err := s.Save("big.txt", strings.NewReader("way more than eight bytes"))
	if !errors.Is(err, ErrFileTooLarge) {
		t.Errorf("expected ErrFileTooLarge, got %v", err)
	}
}

func TestSave_SanitizesPathTraversal(t *testing.T) {
	s := newTestStore(t)

	name, err := s.Save("../../etc/passwd.txt", strings.NewReader("x"))
	if err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	if strings.Contains(name, "/") || strings.Contains(name, "..") {
		t.Errorf("stored name contains path elements: %s", name)
	}
}

func TestDelete_MissingFileIsNotError(t *testing.T) {
	s := newTestStore(t)

	if err := s.Delete("never_stored.png"); err != nil {
		t.Errorf("unexpected error for missing file: %v", err)
	}
}

func TestDelete_RemovesFile(t *testing.T) {
	s := newTestStore(t)

	name, err := s.Save("note.txt", strings.NewReader("x"))
	if err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	if err := s.Delete(name); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}
	if _, err := os.Stat(filepath.Join(s.dir, name)); !errors.Is(err, os.ErrNotExist) {
		t.Error("expected file to be removed")
	}
}

func TestOpen_ReturnsContent(t *testing.T) {
	s := newTestStore(t)

	name, err := s.Save("note.txt", strings.NewReader("hello"))
	if err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	rc, err := s.Open(name)
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	defer rc.Close()

	content, _ := io.ReadAll(rc)
	if string(content) != "hello" {
		t.Errorf("unexpected content: %s", content)
	}
}

func TestOpen_NotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Open("missing.txt")
	if !errors.Is(err, ErrFileNotFound) {
		t.Errorf("expected ErrFileNotFound, got %v", err)
	}
}
