package token

import "time"

type options struct {
	leeway time.Duration
	now    func() time.Time
}

// Option customises an Issuer or a Verifier.
type Option func(*options)

// WithLeeway tolerates clock skew on the expiry comparison. Ignored by Issuer.
func WithLeeway(d time.Duration) Option {
	return func(o *options) { o.leeway = d }
}

// WithClock overrides the notion of now.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

func buildOptions(opts []Option) options {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
