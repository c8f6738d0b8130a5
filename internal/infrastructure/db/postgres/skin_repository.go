package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/flappyv/platform/internal/core/domain"
)

const skinsSchema = `
CREATE TABLE IF NOT EXISTS skins (
	id         BIGSERIAL PRIMARY KEY,
	filename   TEXT        NOT NULL UNIQUE,
	path       TEXT        NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS skins_created_at_idx ON skins (created_at DESC, id DESC);
`

type SkinRepository struct {
	pool *pgxpool.Pool
}

func NewSkinRepository(pool *pgxpool.Pool) *SkinRepository {
	return &SkinRepository{pool: pool}
}

// EnsureSchema creates the skins table when it does not exist.
func (r *SkinRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, skinsSchema); err != nil {
		return fmt.Errorf("ensure skins schema: %w", err)
	}
	return nil
}

func (r *SkinRepository) Create(ctx context.Context, filename, path string) (*domain.Skin, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	s := &domain.Skin{Filename: filename, Path: path}
	err := r.pool.QueryRow(ctx,
		`INSERT INTO skins (filename, path) VALUES ($1, $2) RETURNING id, created_at`,
		filename, path,
	).Scan(&s.ID, &s.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert skin: %w", err)
	}
	return s, nil
}

func (r *SkinRepository) Latest(ctx context.Context) (*domain.Skin, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var s domain.Skin
	err := r.pool.QueryRow(ctx,
		`SELECT id, filename, path, created_at FROM skins ORDER BY created_at DESC, id DESC LIMIT 1`,
	).Scan(&s.ID, &s.Filename, &s.Path, &s.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrSkinNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("latest skin: %w", err)
	}
	return &s, nil
}
