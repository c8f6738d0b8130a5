package service

import (
	"context"
	"fmt"
	"reflect"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/flappyv/platform/internal/core/domain"
	"github.com/flappyv/platform/internal/core/ports"
)

// SettingsStore owns the canonical game settings of this process.
//
// Reads load an atomic snapshot and never wait on a writer. Writes are
// serialized by mu and follow compute, persist, publish: a snapshot only
// becomes visible after the persister accepted it, so a failed save leaves
// readers on the last durable value.
type SettingsStore struct {
	persister   ports.SettingsPersister
	broadcaster ports.SettingsBroadcaster
	log         zerolog.Logger
	now         func() time.Time

	mu      sync.Mutex
	current atomic.Pointer[domain.SettingsSnapshot]
}

// StoreOption configures a SettingsStore.
type StoreOption func(*SettingsStore)

// WithStoreClock overrides the clock used for snapshot timestamps.
func WithStoreClock(now func() time.Time) StoreOption {
	return func(s *SettingsStore) { s.now = now }
}

// NewSettingsStore seeds the store from the persister. A missing document
// yields defaults; corrupt content is logged and also yields defaults.
// broadcaster may be nil until observers exist; see SetBroadcaster.
func NewSettingsStore(
	ctx context.Context,
	persister ports.SettingsPersister,
	broadcaster ports.SettingsBroadcaster,
	log zerolog.Logger,
	opts ...StoreOption,
) *SettingsStore {
	s := &SettingsStore{
		persister:   persister,
		broadcaster: normalizeBroadcaster(broadcaster),
		log:         log,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	settings := domain.DefaultGameSettings()
	stored, err := persister.Load(ctx)
	switch {
	case err != nil:
		log.Warn().Err(err).Msg("stored game settings unreadable, using defaults")
	case stored == nil:
		log.Info().Msg("no stored game settings, using defaults")
	default:
		var skipped []string
		settings, skipped = domain.Merge(stored)
		if len(skipped) > 0 {
			log.Warn().Strs("fields", skipped).Msg("stored game settings had non-numeric fields, defaults applied")
		}
	}

	s.current.Store(&domain.SettingsSnapshot{
		Settings:  settings,
		Version:   1,
		UpdatedAt: s.now().UTC(),
	})
	return s
}

// SetBroadcaster attaches the observer hub. It must be called before the
// store is shared between goroutines.
func (s *SettingsStore) SetBroadcaster(b ports.SettingsBroadcaster) {
	s.broadcaster = normalizeBroadcaster(b)
}

// normalizeBroadcaster turns a typed nil pointer into a nil interface.
func normalizeBroadcaster(b ports.SettingsBroadcaster) ports.SettingsBroadcaster {
	if b == nil {
		return nil
	}
	if v := reflect.ValueOf(b); v.Kind() == reflect.Pointer && v.IsNil() {
		return nil
	}
	return b
}

// Read returns the last committed snapshot.
func (s *SettingsStore) Read() domain.SettingsSnapshot {
	return *s.current.Load()
}

// Write validates candidate, clamps every known field and persists the
// result. A non-numeric value rejects the whole write with
// domain.ErrInvalidInput; a storage failure returns domain.ErrPersistenceFailure.
func (s *SettingsStore) Write(ctx context.Context, candidate map[string]any) (domain.SettingsSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.current.Load()
	next, err := prev.Settings.Apply(candidate)
	if err != nil {
		return domain.SettingsSnapshot{}, err
	}

	if err := s.persister.Save(ctx, next); err != nil {
		s.log.Error().Err(err).Msg("persist game settings")
		return domain.SettingsSnapshot{}, fmt.Errorf("%w: %v", domain.ErrPersistenceFailure, err)
	}

	snap := &domain.SettingsSnapshot{
		Settings:  next,
		Version:   prev.Version + 1,
		UpdatedAt: s.now().UTC(),
	}
	s.current.Store(snap)

	// Broadcast under mu so observers see versions in commit order.
	if s.broadcaster != nil {
		s.broadcaster.Broadcast(*snap)
	}
	s.log.Info().Uint64("version", snap.Version).Interface("settings", next.Fields()).Msg("game settings updated")
	return *snap, nil
}
