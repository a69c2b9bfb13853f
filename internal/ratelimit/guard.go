package ratelimit

import (
	"context"
	"log/slog"
	"time"

	domainErrors "github.com/Linh22400/website-ban-xe-dien-sub000/internal/domain/errors"
	"github.com/Linh22400/website-ban-xe-dien-sub000/internal/metrics"
)

// Guard applies named tiers to caller supplied keys.
type Guard struct {
	store   Store
	tiers   Tiers
	logger  *slog.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

// NewGuard constructs a guard over store.
func NewGuard(store Store, tiers Tiers, logger *slog.Logger, m *metrics.Metrics) *Guard {
	return &Guard{store: store, tiers: tiers, logger: logger, metrics: m, now: time.Now}
}

// Check records a hit of key on tier. It returns *errors.RateLimitedError
// when the hit is rejected. Store failures let the call through.
func (g *Guard) Check(ctx context.Context, tier, key string) error {
	policy, ok := g.tiers[tier]
	if !ok {
		g.logger.Warn("unknown rate limit tier", slog.String("tier", tier))
		return nil
	}

	d, err := g.store.Hit(ctx, tier+":"+key, g.now(), policy)
	if err != nil {
		g.logger.Warn("rate limit store unavailable, allowing request",
			slog.String("tier", tier),
			slog.String("error", err.Error()),
		)
		return nil
	}
	if d.Allowed {
		return nil
	}

	g.metrics.RateLimitDenied.WithLabelValues(tier, string(d.Reason)).Inc()
	return &domainErrors.RateLimitedError{RetryAfterSec: d.RetryAfterSec, Reason: d.Reason}
}

// Sweep drops expired entries of the underlying store.
func (g *Guard) Sweep(now time.Time) {
	g.store.Sweep(now)
}
