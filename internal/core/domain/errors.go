package domain

import "errors"

// Credential and session errors.
var (
	ErrMalformedCredential = errors.New("malformed credential")
	ErrInvalidSignature    = errors.New("invalid credential signature")
	ErrExpired             = errors.New("credential expired")
	ErrStaleGeneration     = errors.New("credential issued before service restart")
	ErrUnauthenticated     = errors.New("unauthenticated")
	ErrForbidden           = errors.New("access forbidden")
)

// Request and storage errors.
var (
	ErrInvalidInput        = errors.New("invalid input")
	ErrPayloadTooLarge     = errors.New("payload too large")
	ErrPersistenceFailure  = errors.New("persistence failure")
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
	ErrServiceStopped      = errors.New("service stopped")
)

var (
	ErrUserExists         = errors.New("user already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrStatNotFound       = errors.New("stat not found")
	ErrDuplicateStat      = errors.New("stat already recorded for idempotency key")
	ErrSkinNotFound       = errors.New("skin not found")
)
