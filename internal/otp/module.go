package otp

import (
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
)

// Module provides the OTP store, Redis-backed when a client is available.
var Module = fx.Provide(newStore)

type storeParams struct {
	fx.In

	Redis redis.UniversalClient `optional:"true"`
}

func newStore(p storeParams) Store {
	if p.Redis != nil {
		return NewRedisStore(p.Redis)
	}
	return NewMemoryStore(0)
}
