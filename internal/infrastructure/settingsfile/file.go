// Package settingsfile persists the game settings record as a flat JSON
// document. Reads tolerate comments and trailing commas; writes replace the
// file atomically.
package settingsfile

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/tidwall/jsonc"

	"github.com/flappyv/platform/internal/core/domain"
)

// Persister implements ports.SettingsPersister backed by a single file.
type Persister struct {
	path string
}

func New(path string) *Persister {
	return &Persister{path: path}
}

func (p *Persister) Path() string { return p.path }

// Load returns (nil, nil) when the file does not exist.
func (p *Persister) Load(_ context.Context) (map[string]any, error) {
	data, err := os.ReadFile(p.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", p.path, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}

	var record map[string]any
	if err := json.Unmarshal(jsonc.ToJSON(data), &record); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", p.path, err)
	}
	return record, nil
}

// Save writes settings to a temporary file in the same directory, syncs it
// and renames it over the previous document.
func (p *Persister) Save(ctx context.Context, settings domain.GameSettings) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding settings: %w", err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(p.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}

	file, err := os.CreateTemp(dir, filepath.Base(p.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temporary settings file: %w", err)
	}
	tmp := file.Name()

	if _, err := file.Write(data); err != nil {
		file.Close()
		os.Remove(tmp)
		return fmt.Errorf("writing temporary settings file: %w", err)
	}
	if err := file.Sync(); err != nil {
		file.Close()
		os.Remove(tmp)
		return fmt.Errorf("syncing temporary settings file: %w", err)
	}
	if err := file.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("closing temporary settings file: %w", err)
	}
	if err := os.Rename(tmp, p.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("renaming settings file into place: %w", err)
	}

	if parent, err := os.Open(dir); err == nil {
		parent.Sync()
		parent.Close()
	}
	return nil
}
