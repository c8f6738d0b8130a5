package ports

import (
	"context"

	"github.com/flappyv/platform/internal/core/domain"
)

// SettingsPersister is the durable storage behind the settings store.
type SettingsPersister interface {
	// Load returns the stored flat record. A missing document yields
	// (nil, nil); unreadable or corrupt content yields an error.
	Load(ctx context.Context) (map[string]any, error)
	Save(ctx context.Context, settings domain.GameSettings) error
}

// SettingsBroadcaster pushes committed snapshots to connected observers.
// Implementations must not block the caller.
type SettingsBroadcaster interface {
	Broadcast(snapshot domain.SettingsSnapshot)
}

// SettingsStore is the read/write surface used by handlers.
type SettingsStore interface {
	Read() domain.SettingsSnapshot
	Write(ctx context.Context, candidate map[string]any) (domain.SettingsSnapshot, error)
}
