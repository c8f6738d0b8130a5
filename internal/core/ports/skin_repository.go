package ports

import (
	"context"
	"io"

	"github.com/flappyv/platform/internal/core/domain"
)

// SkinRepository stores uploaded skin metadata.
type SkinRepository interface {
	Create(ctx context.Context, filename, path string) (*domain.Skin, error)
	// Latest returns the most recently uploaded skin or domain.ErrSkinNotFound.
	Latest(ctx context.Context) (*domain.Skin, error)
}

// FileStore writes uploaded files under a served directory.
type FileStore interface {
	// Save writes r as name and returns the stored path.
	Save(ctx context.Context, name string, r io.Reader) (string, error)
	Remove(name string) error
}
