package di

import (
	"go.uber.org/fx"

	"github.com/Linh22400/website-ban-xe-dien-sub000/internal/adapter/momo"
	"github.com/Linh22400/website-ban-xe-dien-sub000/internal/adapter/vnpay"
	"github.com/Linh22400/website-ban-xe-dien-sub000/internal/app"
	"github.com/Linh22400/website-ban-xe-dien-sub000/internal/config"
	"github.com/Linh22400/website-ban-xe-dien-sub000/internal/logger"
	"github.com/Linh22400/website-ban-xe-dien-sub000/internal/metrics"
	"github.com/Linh22400/website-ban-xe-dien-sub000/internal/notify"
	"github.com/Linh22400/website-ban-xe-dien-sub000/internal/otp"
	"github.com/Linh22400/website-ban-xe-dien-sub000/internal/payment"
	"github.com/Linh22400/website-ban-xe-dien-sub000/internal/pkg/auth"
	"github.com/Linh22400/website-ban-xe-dien-sub000/internal/pricing"
	"github.com/Linh22400/website-ban-xe-dien-sub000/internal/ratelimit"
	"github.com/Linh22400/website-ban-xe-dien-sub000/internal/server/http/router"
	"github.com/Linh22400/website-ban-xe-dien-sub000/internal/storage/postgres"
	redisstore "github.com/Linh22400/website-ban-xe-dien-sub000/internal/storage/redis"
	"github.com/Linh22400/website-ban-xe-dien-sub000/internal/usecase"
)

func Module(opts ...fx.Option) fx.Option {
	modules := []fx.Option{
		config.Module,
		logger.Module,
		metrics.Module,
		redisstore.Module,
		postgres.Module,
		otp.Module,
		ratelimit.Module,
		auth.Module,
		notify.Module,
		pricing.Module,
		momo.Module,
		vnpay.Module,
		payment.Module,
		usecase.Module,
		fx.Provide(
			func(g *ratelimit.Guard) usecase.RateLimiter { return g },
			func(d *notify.Dispatcher) usecase.Notifier { return d },
		),
		router.Module,
		app.Module,
	}
	modules = append(modules, opts...)
	return fx.Options(modules...)
}
