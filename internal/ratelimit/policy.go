// Package ratelimit implements a fixed-window counter with a minimum spacing
// between accepted calls, keyed by arbitrary strings.
package ratelimit

import (
	"context"
	"time"

	domainErrors "github.com/Linh22400/website-ban-xe-dien-sub000/internal/domain/errors"
)

// Policy bounds how often a single key may be hit.
type Policy struct {
	Window      time.Duration `yaml:"window"`
	MaxCount    int           `yaml:"max"`
	MinInterval time.Duration `yaml:"cooldown"`
}

// Decision is the verdict for one hit.
type Decision struct {
	Allowed       bool
	RetryAfterSec int
	Reason        domainErrors.RateLimitReason
}

// Store keeps per-key counters. Hit must be atomic per key.
type Store interface {
	Hit(ctx context.Context, key string, now time.Time, p Policy) (Decision, error)
	// Sweep drops entries whose window has elapsed.
	Sweep(now time.Time)
}

// entry is the state of a key inside its current window.
type entry struct {
	count   int
	firstAt time.Time
	lastAt  time.Time
	window  time.Duration
}

func (e *entry) expiresAt() time.Time {
	return e.firstAt.Add(e.window)
}

func (e *entry) expired(now time.Time) bool {
	return now.After(e.expiresAt())
}

// evaluate applies the cooldown and window rules to an existing live entry,
// incrementing it when the hit is accepted.
func (e *entry) evaluate(now time.Time, p Policy) Decision {
	if p.MinInterval > 0 {
		if since := now.Sub(e.lastAt); since < p.MinInterval {
			return Decision{
				RetryAfterSec: ceilSeconds(p.MinInterval - since),
				Reason:        domainErrors.ReasonCooldown,
			}
		}
	}

	if e.count >= p.MaxCount {
		return Decision{
			RetryAfterSec: max(1, ceilSeconds(p.Window-now.Sub(e.firstAt))),
			Reason:        domainErrors.ReasonWindow,
		}
	}

	e.count++
	e.lastAt = now
	return Decision{Allowed: true}
}

func ceilSeconds(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int((d + time.Second - 1) / time.Second)
}
