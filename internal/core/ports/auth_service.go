package ports

import (
	"context"
	"time"

	"github.com/flappyv/platform/internal/core/domain"
)

// RegisterInput carries the fields accepted at registration.
type RegisterInput struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
}

// Session is a freshly issued credential and the principal it was issued for.
type Session struct {
	Token     string
	ExpiresAt time.Time
	ExpiresIn int64
	User      *domain.User
}

type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*Session, error)
	Login(ctx context.Context, email, password string, rememberMe bool) (*Session, error)
	// Check validates a raw credential and returns the principal it names.
	Check(ctx context.Context, rawToken string) (*domain.User, error)
	Profile(ctx context.Context, userID string) (*domain.User, error)
}
