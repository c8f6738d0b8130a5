// Package uploads stores skin images on the local filesystem.
package uploads

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/flappyv/platform/internal/core/domain"
)

// MaxSize is the largest accepted upload.
const MaxSize = 5 << 20

// Dir implements ports.FileStore rooted at a single directory.
type Dir struct {
	root string
}

// New creates root if needed.
func New(root string) (*Dir, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create uploads dir: %w", err)
	}
	return &Dir{root: root}, nil
}

func (d *Dir) Root() string { return d.root }

// Save writes r to root/name. name must be a bare file name.
func (d *Dir) Save(ctx context.Context, name string, r io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if name != filepath.Base(name) || name == "." || name == ".." {
		return "", fmt.Errorf("invalid upload name %q", name)
	}

	path := filepath.Join(d.root, name)
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", name, err)
	}

	n, err := io.Copy(f, io.LimitReader(r, MaxSize+1))
	if err == nil && n > MaxSize {
		err = fmt.Errorf("%w: upload exceeds %d bytes", domain.ErrPayloadTooLarge, MaxSize)
	}
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(path)
		return "", fmt.Errorf("write %s: %w", name, err)
	}
	return path, nil
}

func (d *Dir) Remove(name string) error {
	return os.Remove(filepath.Join(d.root, filepath.Base(name)))
}
