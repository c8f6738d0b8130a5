package service

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/flappyv/platform/internal/core/domain"
	"github.com/flappyv/platform/internal/core/ports"
)

// allowedSkinExt are the image types accepted as bird skins.
var allowedSkinExt = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".webp": true,
}

// SkinService stores uploaded skins and tracks the active one.
type SkinService struct {
	repo  ports.SkinRepository
	files ports.FileStore
	log   zerolog.Logger
	now   func() time.Time
}

func NewSkinService(repo ports.SkinRepository, files ports.FileStore, log zerolog.Logger) *SkinService {
	return &SkinService{repo: repo, files: files, log: log, now: time.Now}
}

// Upload stores r as <unix-millis><ext> and makes it the current skin.
func (s *SkinService) Upload(ctx context.Context, originalName string, r io.Reader) (*domain.Skin, error) {
	ext := strings.ToLower(filepath.Ext(originalName))
	if !allowedSkinExt[ext] {
		return nil, fmt.Errorf("%w: unsupported image type %q", domain.ErrInvalidInput, ext)
	}

	name := strconv.FormatInt(s.now().UnixMilli(), 10) + ext
	path, err := s.files.Save(ctx, name, r)
	if err != nil {
		return nil, fmt.Errorf("upload skin: %w", err)
	}

	skin, err := s.repo.Create(ctx, name, path)
	if err != nil {
		if rmErr := s.files.Remove(name); rmErr != nil {
			s.log.Warn().Err(rmErr).Str("filename", name).Msg("failed to remove orphaned upload")
		}
		return nil, fmt.Errorf("upload skin: %w", err)
	}

	s.log.Info().Str("filename", name).Int64("skin_id", skin.ID).Msg("skin uploaded")
	return skin, nil
}

func (s *SkinService) Current(ctx context.Context) (*domain.Skin, error) {
	return s.repo.Latest(ctx)
}
