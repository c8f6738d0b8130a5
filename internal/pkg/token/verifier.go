package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/flappyv/platform/internal/core/domain"
)

// Verifier validates credentials against the shared secret. It is pure: no
// I/O, no shared state beyond the secret.
type Verifier struct {
	secret []byte
	leeway time.Duration
	now    func() time.Time
}

func NewVerifier(secret string, opts ...Option) (*Verifier, error) {
	if len(secret) < MinSecretLength {
		return nil, ErrWeakSecret
	}
	o := buildOptions(opts)
	return &Verifier{secret: []byte(secret), leeway: o.leeway, now: o.now}, nil
}

// Verify parses raw and returns its claims. Failures wrap one of
// domain.ErrMalformedCredential, domain.ErrInvalidSignature or
// domain.ErrExpired.
func (v *Verifier) Verify(raw string) (*Claims, error) {
	if raw == "" {
		return nil, domain.ErrMalformedCredential
	}

	claims := &Claims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return v.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(v.leeway),
		jwt.WithTimeFunc(v.now),
	)
	if err != nil {
		return nil, classify(err)
	}

	if claims.Subject == "" || claims.IssuedAt == nil {
		return nil, fmt.Errorf("%w: missing subject or issued-at", domain.ErrMalformedCredential)
	}
	return claims, nil
}

func classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return fmt.Errorf("%w: %v", domain.ErrInvalidSignature, err)
	case errors.Is(err, jwt.ErrTokenExpired):
		return fmt.Errorf("%w: %v", domain.ErrExpired, err)
	default:
		return fmt.Errorf("%w: %v", domain.ErrMalformedCredential, err)
	}
}
