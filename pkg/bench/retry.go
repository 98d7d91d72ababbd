package bench

import (
	"context"
	"math/rand"
	"time"
)

// RetryPolicy bounds the retry behavior of a network-calling component.
//
// The delay before retry k (1-based) is InitialDelay doubled k-1 times, plus
// a uniform random jitter in [0, Jitter) so simultaneous failures do not
// retry in lockstep.
type RetryPolicy struct {
	// MaxAttempts is the total number of attempts, including the first.
	MaxAttempts int

	// InitialDelay is the wait before the first retry.
	InitialDelay time.Duration

	// Jitter is the exclusive upper bound of the random addition per
	// retry. Zero disables jitter.
	Jitter time.Duration
}

// DefaultRetryPolicy returns the policy used when a manifest leaves retry
// settings unset.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:  3,
		InitialDelay: 2 * time.Second,
		Jitter:       time.Second,
	}
}

// Delay returns the wait before retrying after failed attempt number
// attempt (0-based). The deterministic part doubles per retry; there is no
// explicit ceiling because MaxAttempts already bounds the sequence.
func (p RetryPolicy) Delay(attempt int) time.Duration {
	delay := p.InitialDelay
	for i := 0; i < attempt; i++ {
		delay *= 2
	}
	if p.Jitter > 0 && attempt > 0 {
		delay += time.Duration(rand.Int63n(int64(p.Jitter)))
	}
	return delay
}

// sleep waits for d or until the context is cancelled.
func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
