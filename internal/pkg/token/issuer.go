package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const issuerName = "flappy-auth"

// MinSecretLength is the smallest signing secret any service accepts.
const MinSecretLength = 16

var ErrWeakSecret = errors.New("signing secret too short")

// Issuer signs credentials. Only the auth service constructs one.
type Issuer struct {
	secret []byte
	now    func() time.Time
}

func NewIssuer(secret string, opts ...Option) (*Issuer, error) {
	if len(secret) < MinSecretLength {
		return nil, ErrWeakSecret
	}
	o := buildOptions(opts)
	return &Issuer{secret: []byte(secret), now: o.now}, nil
}

// Issue returns a signed credential for id that expires after ttl.
func (i *Issuer) Issue(id Identity, ttl time.Duration) (string, time.Time, error) {
	now := i.now()
	expiresAt := now.Add(ttl)
	claims := Claims{
		Email: id.Email,
		Admin: id.Admin,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    issuerName,
			Subject:   id.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}
