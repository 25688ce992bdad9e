package client

import (
	"math"
	"time"

	"github.com/sethvargo/go-retry"
)

// RetryPolicy bounds the reissue of requests that failed with a network
// error, a 5xx or a 429. MaxAttempts counts the first try.
type RetryPolicy struct {
	BaseDelay     time.Duration
	Multiplier    float64
	MaxDelay      time.Duration
	MaxAttempts   int
	JitterPercent uint64
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		BaseDelay:     200 * time.Millisecond,
		Multiplier:    2,
		MaxDelay:      5 * time.Second,
		MaxAttempts:   4,
		JitterPercent: 10,
	}
}

// Delay returns the wait before retry n (0-based), without jitter.
func (p RetryPolicy) Delay(n int) time.Duration {
	mult := p.Multiplier
	if mult < 1 {
		mult = 1
	}
	d := float64(p.BaseDelay) * math.Pow(mult, float64(n))
	if p.MaxDelay > 0 && d > float64(p.MaxDelay) {
		return p.MaxDelay
	}
	if d > math.MaxInt64 {
		return time.Duration(math.MaxInt64)
	}
	return time.Duration(d)
}

// backoff builds a fresh go-retry Backoff; one per logical call.
func (p RetryPolicy) backoff() retry.Backoff {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var n int
	var b retry.Backoff = retry.BackoffFunc(func() (time.Duration, bool) {
		d := p.Delay(n)
		n++
		return d, false
	})
	if p.JitterPercent > 0 {
		b = retry.WithJitterPercent(p.JitterPercent, b)
	}
	if p.MaxDelay > 0 {
		b = retry.WithCappedDuration(p.MaxDelay, b)
	}
	return retry.WithMaxRetries(uint64(attempts-1), b)
}
