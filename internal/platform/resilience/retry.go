package resilience

import "github.com/cenkalti/backoff/v5"

// NewBackOff returns a jitter-free exponential schedule: base, 2*base,
// 4*base... capped at MaxDelay. Successive delays never decrease.
func (p RetryPolicy) NewBackOff() backoff.BackOff {
	p = NormalizeRetryPolicy(p)
	b := &backoff.ExponentialBackOff{
		InitialInterval:     p.BaseDelay,
		RandomizationFactor: 0,
		Multiplier:          2,
		MaxInterval:         p.MaxDelay,
	}
	b.Reset()
	return b
}
