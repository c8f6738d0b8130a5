package uploads

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/flappyv/platform/internal/core/domain"
)

func TestDir_SaveAndRemove(t *testing.T) {
	d, err := New(filepath.Join(t.TempDir(), "uploads"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	path, err := d.Save(context.Background(), "1.png", strings.NewReader("img"))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil || string(data) != "img" {
		t.Fatalf("unexpected file content %q (%v)", data, err)
	}

	if err := d.Remove("1.png"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("expected file to be gone, got %v", err)
	}
}

func TestDir_RejectsTraversal(t *testing.T) {
	d, _ := New(t.TempDir())

	if _, err := d.Save(context.Background(), "../evil.png", strings.NewReader("x")); err == nil {
		t.Fatalf("expected traversal to be rejected")
	}
}

func TestDir_RejectsOversize(t *testing.T) {
	d, _ := New(t.TempDir())

	big := bytes.Repeat([]byte("a"), MaxSize+1)
	if _, err := d.Save(context.Background(), "big.png", bytes.NewReader(big)); !errors.Is(err, domain.ErrPayloadTooLarge) {
		t.Fatalf("expected ErrPayloadTooLarge, got %v", err)
	}
	if _, err := os.Stat(filepath.Join(d.Root(), "big.png")); !os.IsNotExist(err) {
		t.Fatalf("expected partial file to be removed")
	}
}
