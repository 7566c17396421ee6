package cache

import (
	"context"
	"errors"
	"time"

	"github.com/matzehuels/clawdsign/pkg/httputil"
)

// ErrNetwork is returned when the cache backend cannot be reached.
var ErrNetwork = errors.New("cache: backend unreachable")

// Backend errors are marked retryable with the same wrapper the API client
// uses, so one retry loop serves both.
var (
	Retryable   = httputil.Retryable
	IsRetryable = httputil.IsRetryable
)

// Startup connection attempts are short: a missing cache degrades to no
// caching instead of blocking the server.
const (
	connectAttempts = 3
	connectDelay    = 50 * time.Millisecond
)

// RetryWithBackoff retries fn up to 3 times starting at 50ms, doubling the
// delay. Only errors wrapped with [Retryable] are retried.
func RetryWithBackoff(ctx context.Context, fn func() error) error {
	return httputil.Retry(ctx, connectAttempts, connectDelay, fn)
}
