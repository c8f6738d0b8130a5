package domain

import (
	"fmt"
	"math"
	"time"
)

// Setting field names as they appear on the wire and in the settings file.
const (
	FieldFlapStrength     = "flapStrength"
	FieldPipeSpawnRate    = "pipeSpawnRate"
	FieldPipeMoveSpeed    = "pipeMoveSpeed"
	FieldEnemySpawnChance = "enemySpawnChance"
)

// Bound is the closed range a numeric setting is clamped to.
type Bound struct {
	Min     float64
	Max     float64
	Default float64
}

// Clamp coerces v into [Min, Max].
func (b Bound) Clamp(v float64) float64 {
	return math.Max(b.Min, math.Min(b.Max, v))
}

// SettingBounds declares every tunable game parameter.
var SettingBounds = map[string]Bound{
	FieldFlapStrength:     {Min: 5, Max: 20, Default: 10},
	FieldPipeSpawnRate:    {Min: 0.5, Max: 5, Default: 2},
	FieldPipeMoveSpeed:    {Min: 1, Max: 30, Default: 9.5},
	FieldEnemySpawnChance: {Min: 0, Max: 100, Default: 25},
}

// GameSettings is the singleton configuration record broadcast to game clients.
type GameSettings struct {
	FlapStrength     float64 `json:"flapStrength"`
	PipeSpawnRate    float64 `json:"pipeSpawnRate"`
	PipeMoveSpeed    float64 `json:"pipeMoveSpeed"`
	EnemySpawnChance float64 `json:"enemySpawnChance"`
}

// DefaultGameSettings returns the hardcoded fallback record.
func DefaultGameSettings() GameSettings {
	return GameSettings{
		FlapStrength:     SettingBounds[FieldFlapStrength].Default,
		PipeSpawnRate:    SettingBounds[FieldPipeSpawnRate].Default,
		PipeMoveSpeed:    SettingBounds[FieldPipeMoveSpeed].Default,
		EnemySpawnChance: SettingBounds[FieldEnemySpawnChance].Default,
	}
}

func (s *GameSettings) field(name string) *float64 {
	switch name {
	case FieldFlapStrength:
		return &s.FlapStrength
	case FieldPipeSpawnRate:
		return &s.PipeSpawnRate
	case FieldPipeMoveSpeed:
		return &s.PipeMoveSpeed
	case FieldEnemySpawnChance:
		return &s.EnemySpawnChance
	}
	return nil
}

// Fields returns the record as a flat field → number mapping.
func (s GameSettings) Fields() map[string]float64 {
	out := make(map[string]float64, len(SettingBounds))
	for name := range SettingBounds {
		out[name] = *s.field(name)
	}
	return out
}

// Clamped returns a copy with every field coerced into its declared range.
func (s GameSettings) Clamped() GameSettings {
	for name, b := range SettingBounds {
		p := s.field(name)
		*p = b.Clamp(*p)
	}
	return s
}

// Apply validates candidate and returns s with every known field of
// candidate clamped and overlaid. A field holding anything other than a
// finite number rejects the whole candidate with ErrInvalidInput and s is
// returned unchanged. Unknown fields are ignored.
func (s GameSettings) Apply(candidate map[string]any) (GameSettings, error) {
	values := make(map[string]float64, len(candidate))
	for name, raw := range candidate {
		if _, known := SettingBounds[name]; !known {
			continue
		}
		v, ok := toFloat(raw)
		if !ok {
			return s, fmt.Errorf("%w: %s must be a number", ErrInvalidInput, name)
		}
		values[name] = v
	}

	next := s
	for name, v := range values {
		*next.field(name) = SettingBounds[name].Clamp(v)
	}
	return next, nil
}

// Merge overlays the numeric fields of stored onto the defaults, one field at
// a time. Fields that are missing or not numbers keep their default; the
// names of those fields are returned so callers can log them.
func Merge(stored map[string]any) (GameSettings, []string) {
	out := DefaultGameSettings()
	var skipped []string
	for name, b := range SettingBounds {
		raw, present := stored[name]
		if !present {
			continue
		}
		v, ok := toFloat(raw)
		if !ok {
			skipped = append(skipped, name)
			continue
		}
		*out.field(name) = b.Clamp(v)
	}
	return out, skipped
}

func toFloat(raw any) (float64, bool) {
	var v float64
	switch n := raw.(type) {
	case float64:
		v = n
	case float32:
		v = float64(n)
	case int:
		v = float64(n)
	case int64:
		v = float64(n)
	default:
		return 0, false
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// SettingsSnapshot is a committed version of the configuration record.
type SettingsSnapshot struct {
	Settings  GameSettings `json:"gameSettings"`
	Version   uint64       `json:"version"`
	UpdatedAt time.Time    `json:"timestamp"`
}
