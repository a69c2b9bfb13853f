package vnpay

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/Linh22400/website-ban-xe-dien-sub000/internal/config"
	"github.com/Linh22400/website-ban-xe-dien-sub000/internal/payment"
)

// Module exposes the VNPay adapter to the gateway group.
var Module = fx.Provide(
	fx.Annotate(
		newClient,
		fx.As(new(payment.Gateway)),
		fx.ResultTags(`group:"gateways"`),
	),
)

type clientParams struct {
	fx.In

	Config *config.Config
	Logger *slog.Logger
}

func newClient(p clientParams) (*Client, error) {
	return NewClient(p.Config.VNPay, p.Logger.With(slog.String("gateway", "vnpay")))
}
