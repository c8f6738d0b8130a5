// Package db holds the storage adapters and the connection helpers they share.
package db

import (
	"context"
	"fmt"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/rs/zerolog"
)

const (
	defaultAttempts = 5
	retryDelay      = 500 * time.Millisecond
	retryMaxDelay   = 10 * time.Second
)

// Dial runs connect until it succeeds or attempts are exhausted. Every
// failed attempt is logged with the backing store's name.
func Dial(ctx context.Context, name string, attempts uint, log zerolog.Logger, connect func(context.Context) error) error {
	if attempts == 0 {
		attempts = defaultAttempts
	}
	err := retry.Do(func() error {
		return connect(ctx)
	},
		retry.Context(ctx),
		retry.Attempts(attempts),
		retry.Delay(retryDelay),
		retry.MaxDelay(retryMaxDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			log.Warn().Err(err).Str("store", name).Uint("attempt", n+1).Msg("connect failed, retrying")
		}),
	)
	if err != nil {
		return fmt.Errorf("%s unreachable after %d attempts: %w", name, attempts, err)
	}
	return nil
}
