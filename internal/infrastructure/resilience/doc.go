/*
Package resilience provides a circuit breaker for outbound calls.

# Overview

Package downloads go to arbitrary hosts; a host that keeps failing should
fail fast instead of tying up install requests. The breaker has three states
(closed, open, half-open), a pluggable failure classifier so client-side
errors do not trip it, and an injectable clock for tests.

# Usage

	breaker := resilience.New("fetch", resilience.Settings{
		Timeout: 30 * time.Second,
		ReadyToTrip: func(c resilience.Counts) bool {
			return c.ConsecutiveFailures >= 10
		},
	})

	body, err := resilience.Do(breaker, func() ([]byte, error) {
		return download(ctx, url)
	})
*/
package resilience
