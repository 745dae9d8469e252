// Package limiter paces API calls from the rate-limit headers GitHub
// returns on every response.

package limiter

import (
	"net/http"
	"strconv"
	"time"
)

// GitHub resets are whole-second timestamps; the grace keeps us from
// firing a request just before the quota actually refills.
const resetGrace = 2 * time.Second

type Governor struct {
	MinDelay time.Duration

	now   func() time.Time
	sleep func(time.Duration)
}

func NewGovernor(minDelay time.Duration) *Governor {
	return &Governor{
		MinDelay: minDelay,
		now:      time.Now,
		sleep:    time.Sleep,
	}
}

// Throttle runs after every API call. Exhausted quota blocks until the
// advertised reset plus a grace period; otherwise the configured
// minimum delay applies. Absent or unparseable headers count as quota
// remaining.
func (g *Governor) Throttle(headers http.Header) {
	remaining := 1
	if v := headers.Get("X-RateLimit-Remaining"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			remaining = parsed
		}
	}

	if remaining <= 0 {
		if v := headers.Get("X-RateLimit-Reset"); v != "" {
			if resetAt, err := strconv.ParseInt(v, 10, 64); err == nil {
				wait := time.Unix(resetAt, 0).Sub(g.now())
				if wait < 0 {
					wait = 0
				}
				g.sleep(wait + resetGrace)
				return
			}
		}
	}

	if g.MinDelay > 0 {
		g.sleep(g.MinDelay)
	}
}
