package token

import (
	"time"
)

// Guard rejects credentials issued before the current process generation.
type Guard struct {
	generation time.Time
}

// NewGuard captures generation, normally the process start time. Credentials
// carry second precision, so a generation with a sub-second part is rounded
// up to the next second. A credential issued in the same second as a restart
// is therefore stale.
func NewGuard(generation time.Time) *Guard {
	g := generation.Truncate(time.Second)
	if g.Before(generation) {
		g = g.Add(time.Second)
	}
	return &Guard{generation: g}
}

func (g *Guard) Generation() time.Time {
	return g.generation
}

// StillLive reports whether c was issued at or after the generation.
func (g *Guard) StillLive(c *Claims) bool {
	if c == nil || c.IssuedAt == nil {
		return false
	}
	return !c.IssuedAt.Time.Before(g.generation)
}
