package redis

import (
	"context"
	"fmt"
	"log/slog"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/fx"

	"github.com/Linh22400/website-ban-xe-dien-sub000/internal/config"
)

// Module provides a shared Redis client when an address is configured.
// Without one the provided client is nil and consumers fall back to
// in-process stores.
var Module = fx.Options(
	fx.Provide(NewClient),
	fx.Invoke(registerLifecycle),
)

// NewClient builds a client for cfg.RedisAddress or returns nil when unset.
func NewClient(cfg *config.Config) goredis.UniversalClient {
	if cfg.RedisAddress == "" {
		return nil
	}
	return goredis.NewClient(&goredis.Options{
		Addr:     cfg.RedisAddress,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
}

type lifecycleParams struct {
	fx.In

	Lifecycle fx.Lifecycle
	Client    goredis.UniversalClient `optional:"true"`
	Logger    *slog.Logger
}

func registerLifecycle(p lifecycleParams) {
	if p.Client == nil {
		p.Logger.Info("redis not configured, using in-memory limiter and otp stores")
		return
	}
	p.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := p.Client.Ping(ctx).Err(); err != nil {
				return fmt.Errorf("ping redis: %w", err)
			}
			return nil
		},
		OnStop: func(context.Context) error {
			return p.Client.Close()
		},
	})
}
