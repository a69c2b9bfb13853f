package auth

import (
	"go.uber.org/fx"

	"github.com/Linh22400/website-ban-xe-dien-sub000/internal/config"
)

// Module provides authentication primitives via fx.
var Module = fx.Options(
	fx.Provide(newCodeHasher),
	fx.Provide(newTokenStrategy),
)

// OtpHashCost is the bcrypt cost for short-lived one-time codes.
const OtpHashCost = 6

func newCodeHasher() CodeHasher {
	return NewBcryptHasher(OtpHashCost)
}

type strategyParams struct {
	fx.In

	Config *config.Config
}

func newTokenStrategy(p strategyParams) Strategy {
	return NewJWTStrategy(p.Config.JWTSecret, Options{TTL: p.Config.TokenTTL})
}
