package ratelimit

import (
	"log/slog"

	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"

	"github.com/Linh22400/website-ban-xe-dien-sub000/internal/config"
	"github.com/Linh22400/website-ban-xe-dien-sub000/internal/metrics"
)

// Module wires the guard with a Redis or in-memory store.
var Module = fx.Options(
	fx.Provide(newStore, newGuard),
)

type storeParams struct {
	fx.In

	Config *config.Config
	Redis  redis.UniversalClient `optional:"true"`
}

func newStore(p storeParams) Store {
	if p.Redis != nil {
		return NewRedisStore(p.Redis)
	}
	return NewMemoryStore(p.Config.LimiterShards, p.Config.LimiterCapacity)
}

type guardParams struct {
	fx.In

	Config  *config.Config
	Store   Store
	Logger  *slog.Logger
	Metrics *metrics.Metrics
}

func newGuard(p guardParams) (*Guard, error) {
	tiers, err := LoadTiers(p.Config.RateLimitFile)
	if err != nil {
		return nil, err
	}
	return NewGuard(p.Store, tiers, p.Logger, p.Metrics), nil
}
