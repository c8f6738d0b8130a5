package token

import (
	"github.com/flappyv/platform/internal/core/domain"
)

// Authenticator verifies a credential and checks its liveness for this
// process.
type Authenticator struct {
	verifier *Verifier
	guard    *Guard
}

func NewAuthenticator(v *Verifier, g *Guard) *Authenticator {
	return &Authenticator{verifier: v, guard: g}
}

// Authenticate returns the claims of a valid, live credential.
func (a *Authenticator) Authenticate(raw string) (*Claims, error) {
	claims, err := a.verifier.Verify(raw)
	if err != nil {
		return nil, err
	}
	if !a.guard.StillLive(claims) {
		return nil, domain.ErrStaleGeneration
	}
	return claims, nil
}
