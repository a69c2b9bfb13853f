package notify

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/Linh22400/website-ban-xe-dien-sub000/internal/metrics"
)

// Dispatcher sends messages in the background. Delivery failures are logged
// and never reach the caller.
type Dispatcher struct {
	senders map[Channel]Sender
	limiter *rate.Limiter
	timeout time.Duration
	logger  *slog.Logger
	metrics *metrics.Metrics

	wg sync.WaitGroup
}

// NewDispatcher builds a dispatcher allowing perSecond sends with a burst of
// the same size. Each send is bounded by timeout.
func NewDispatcher(senders []Sender, perSecond float64, timeout time.Duration, logger *slog.Logger, m *metrics.Metrics) *Dispatcher {
	byChannel := make(map[Channel]Sender, len(senders))
	for _, s := range senders {
		byChannel[s.Channel()] = s
	}
	burst := int(perSecond)
	if burst < 1 {
		burst = 1
	}
	return &Dispatcher{
		senders: byChannel,
		limiter: rate.NewLimiter(rate.Limit(perSecond), burst),
		timeout: timeout,
		logger:  logger,
		metrics: m,
	}
}

// Send schedules msg for delivery and returns immediately.
func (d *Dispatcher) Send(ctx context.Context, msg Message) {
	sender, ok := d.senders[msg.Channel]
	if !ok {
		d.logger.Warn("no sender for channel", slog.String("channel", string(msg.Channel)))
		d.metrics.Notifications.WithLabelValues(string(msg.Channel), "unrouted").Inc()
		return
	}

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()

		sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), d.timeout)
		defer cancel()

		if err := d.limiter.Wait(sendCtx); err != nil {
			d.logger.Warn("notification dropped by throttle",
				slog.String("channel", string(msg.Channel)),
				slog.String("error", err.Error()),
			)
			d.metrics.Notifications.WithLabelValues(string(msg.Channel), "throttled").Inc()
			return
		}

		if err := sender.Send(sendCtx, msg); err != nil {
			d.logger.Error("notification failed",
				slog.String("channel", string(msg.Channel)),
				slog.String("error", err.Error()),
			)
			d.metrics.Notifications.WithLabelValues(string(msg.Channel), "failed").Inc()
			return
		}
		d.metrics.Notifications.WithLabelValues(string(msg.Channel), "sent").Inc()
	}()
}

// Wait blocks until in-flight sends finish or ctx is done.
func (d *Dispatcher) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
