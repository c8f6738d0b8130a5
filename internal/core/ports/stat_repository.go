package ports

import (
	"context"

	"github.com/flappyv/platform/internal/core/domain"
)

// StatRepository defines persistence operations for game stats.
type StatRepository interface {
	Create(ctx context.Context, s *domain.Stat) (*domain.Stat, error)
	FindByIdempotencyKey(ctx context.Context, key string) (*domain.Stat, error)
	// Latest returns up to limit stats, newest first.
	Latest(ctx context.Context, limit int) ([]*domain.Stat, error)
	DailyJumps(ctx context.Context) ([]domain.DailyJumps, error)
}
