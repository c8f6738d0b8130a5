package domain

import "time"

// Skin is an uploaded bird sprite. The most recent one is the active skin.
type Skin struct {
	ID        int64
	Filename  string
	Path      string
	CreatedAt time.Time
}

func (s *Skin) URL() string {
	return "/uploads/" + s.Filename
}
