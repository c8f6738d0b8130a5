package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/flappyv/platform/internal/core/domain"
	"github.com/flappyv/platform/internal/core/ports"
)

// ListLimit caps how many stats List returns.
const ListLimit = 100

// StatDedup abstracts the idempotency store (Redis). Lookup reports the stat
// id previously recorded for key.
type StatDedup interface {
	Lookup(ctx context.Context, key string) (string, bool, error)
	Remember(ctx context.Context, key, statID string) error
}

// StatRecorded is notified after a new stat is stored. Replays are not reported.
type StatRecorded func(s *domain.Stat)

type statService struct {
	repo     ports.StatRepository
	dedup    StatDedup
	recorded StatRecorded
	log      zerolog.Logger
	now      func() time.Time
}

// NewStatService returns a StatService implementation. recorded may be nil.
func NewStatService(repo ports.StatRepository, dedup StatDedup, recorded StatRecorded, log zerolog.Logger) ports.StatService {
	return &statService{
		repo:     repo,
		dedup:    dedup,
		recorded: recorded,
		log:      log,
		now:      time.Now,
	}
}

// Record stores a finished game. A submission carrying an idempotency key
// that was already recorded returns the original stat with Replayed set.
func (s *statService) Record(ctx context.Context, in ports.RecordStatInput) (*ports.RecordStatResult, error) {
	if err := validateStat(in); err != nil {
		return nil, err
	}

	key := strings.TrimSpace(in.IdempotencyKey)
	if key != "" {
		if prior, err := s.replay(ctx, key); err != nil {
			return nil, err
		} else if prior != nil {
			return &ports.RecordStatResult{Stat: prior, Replayed: true}, nil
		}
	}

	created, err := s.repo.Create(ctx, &domain.Stat{
		PlayerID:       in.PlayerID,
		PlayerName:     in.PlayerName,
		Jumps:          in.Jumps,
		PipesPassed:    in.PipesPassed,
		GameMode:       in.GameMode,
		Date:           s.now().UTC(),
		IdempotencyKey: key,
	})
	if errors.Is(err, domain.ErrDuplicateStat) {
		// Lost a race with a concurrent submission of the same key.
		prior, findErr := s.repo.FindByIdempotencyKey(ctx, key)
		if findErr != nil {
			return nil, fmt.Errorf("record stat: %w", findErr)
		}
		return &ports.RecordStatResult{Stat: prior, Replayed: true}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("record stat: %w", err)
	}

	if key != "" {
		if err := s.dedup.Remember(ctx, key, created.ID); err != nil {
			s.log.Warn().Err(err).Str("idempotency_key", key).Msg("failed to set dedup key")
		}
	}
	if s.recorded != nil {
		s.recorded(created)
	}
	s.log.Info().Str("stat_id", created.ID).Str("player_id", created.PlayerID).Int("jumps", created.Jumps).Msg("stat recorded")
	return &ports.RecordStatResult{Stat: created}, nil
}

// replay returns the stat previously stored for key, or nil when key is new.
// A failing dedup store is logged and the request proceeds; the unique
// index on the repository still rejects duplicates.
func (s *statService) replay(ctx context.Context, key string) (*domain.Stat, error) {
	_, found, err := s.dedup.Lookup(ctx, key)
	if err != nil {
		s.log.Warn().Err(err).Str("idempotency_key", key).Msg("dedup check failed, processing anyway")
		return nil, nil
	}
	if !found {
		return nil, nil
	}
	prior, err := s.repo.FindByIdempotencyKey(ctx, key)
	if errors.Is(err, domain.ErrStatNotFound) {
		// Dedup key outlived the document; treat as new.
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("record stat: %w", err)
	}
	s.log.Debug().Str("idempotency_key", key).Msg("duplicate stat submission replayed")
	return prior, nil
}

func validateStat(in ports.RecordStatInput) error {
	var missing []string
	if strings.TrimSpace(in.PlayerID) == "" {
		missing = append(missing, "playerId")
	}
	if strings.TrimSpace(in.PlayerName) == "" {
		missing = append(missing, "playerName")
	}
	if strings.TrimSpace(in.GameMode) == "" {
		missing = append(missing, "gameMode")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", domain.ErrInvalidInput, strings.Join(missing, ", "))
	}
	if in.Jumps < 0 || in.PipesPassed < 0 {
		return fmt.Errorf("%w: jumps and pipesPassed must not be negative", domain.ErrInvalidInput)
	}
	return nil
}

func (s *statService) List(ctx context.Context) ([]*domain.Stat, error) {
	stats, err := s.repo.Latest(ctx, ListLimit)
	if err != nil {
		return nil, fmt.Errorf("list stats: %w", err)
	}
	return stats, nil
}

func (s *statService) Recent(ctx context.Context) (*domain.Stat, error) {
	stats, err := s.repo.Latest(ctx, 1)
	if err != nil {
		return nil, fmt.Errorf("recent stat: %w", err)
	}
	if len(stats) == 0 {
		return nil, domain.ErrStatNotFound
	}
	return stats[0], nil
}

func (s *statService) DailyJumps(ctx context.Context) ([]domain.DailyJumps, error) {
	days, err := s.repo.DailyJumps(ctx)
	if err != nil {
		return nil, fmt.Errorf("daily jumps: %w", err)
	}
	return days, nil
}
