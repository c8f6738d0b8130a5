package token

import (
	"github.com/golang-jwt/jwt/v5"
)

// Claims is the decoded content of a credential. The subject is the user id.
type Claims struct {
	Email string `json:"email,omitempty"`
	Admin bool   `json:"admin"`
	jwt.RegisteredClaims
}

// Identity is what the issuer bakes into a credential.
type Identity struct {
	UserID string
	Email  string
	Admin  bool
}

func (c *Claims) UserID() string {
	return c.Subject
}
