package ports

import (
	"context"

	"github.com/flappyv/platform/internal/core/domain"
)

// RecordStatInput is the DTO passed from the transport layer to StatService.
type RecordStatInput struct {
	PlayerID       string
	PlayerName     string
	Jumps          int
	PipesPassed    int
	GameMode       string
	IdempotencyKey string
}

// RecordStatResult wraps the stored stat. Replayed is true when the
// idempotency key matched an earlier submission.
type RecordStatResult struct {
	Stat     *domain.Stat
	Replayed bool
}

type StatService interface {
	Record(ctx context.Context, in RecordStatInput) (*RecordStatResult, error)
	List(ctx context.Context) ([]*domain.Stat, error)
	Recent(ctx context.Context) (*domain.Stat, error)
	DailyJumps(ctx context.Context) ([]domain.DailyJumps, error)
}
