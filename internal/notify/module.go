package notify

import (
	"context"
	"log/slog"

	"go.uber.org/fx"

	"github.com/Linh22400/website-ban-xe-dien-sub000/internal/config"
	"github.com/Linh22400/website-ban-xe-dien-sub000/internal/metrics"
)

// Module provides the dispatcher with the senders enabled by config.
var Module = fx.Options(
	fx.Provide(newDispatcher),
	fx.Invoke(registerLifecycle),
)

type dispatcherParams struct {
	fx.In

	Config  *config.Config
	Logger  *slog.Logger
	Metrics *metrics.Metrics
}

func newDispatcher(p dispatcherParams) *Dispatcher {
	senders := []Sender{NewLogSender(ChannelSMS, p.Logger)}
	if smtpCfg := p.Config.SMTP; smtpCfg.Host != "" {
		senders = append(senders, NewSMTPSender(smtpCfg.Host, smtpCfg.Port, smtpCfg.Username, smtpCfg.Password, smtpCfg.From))
	} else {
		senders = append(senders, NewLogSender(ChannelEmail, p.Logger))
	}
	return NewDispatcher(senders, p.Config.NotifyRate, p.Config.NotifyTimeout, p.Logger, p.Metrics)
}

func registerLifecycle(lc fx.Lifecycle, d *Dispatcher) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return d.Wait(ctx)
		},
	})
}
