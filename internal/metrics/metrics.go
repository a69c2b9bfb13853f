package metrics

import "github.com/prometheus/client_golang/prometheus"

// Metrics groups the Prometheus collectors of the storefront core.
type Metrics struct {
	Registry *prometheus.Registry

	RateLimitDenied      *prometheus.CounterVec
	OtpEvents            *prometheus.CounterVec
	OrdersCreated        *prometheus.CounterVec
	UnresolvedItems      *prometheus.CounterVec
	PaymentCallbacks     *prometheus.CounterVec
	InventoryAdjustments *prometheus.CounterVec
	Notifications        *prometheus.CounterVec
	HTTPRequests         *prometheus.CounterVec
	HTTPDuration         *prometheus.HistogramVec
}

// New builds collectors on a dedicated registry.
func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		RateLimitDenied: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ratelimit_denied_total",
				Help: "Requests rejected by the rate limiter",
			},
			[]string{"tier", "reason"},
		),
		OtpEvents: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "otp_events_total",
				Help: "OTP issue and verification outcomes",
			},
			[]string{"event"},
		),
		OrdersCreated: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "orders_created_total",
				Help: "Order creation outcomes",
			},
			[]string{"result"},
		),
		UnresolvedItems: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "catalog_unresolved_items_total",
				Help: "Order lines skipped because the catalog item could not be resolved",
			},
			[]string{"kind"},
		),
		PaymentCallbacks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "payment_callbacks_total",
				Help: "Gateway callbacks by outcome",
			},
			[]string{"gateway", "kind", "outcome"},
		),
		InventoryAdjustments: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "inventory_adjustments_total",
				Help: "Deferred stock decrements by result",
			},
			[]string{"result"},
		),
		Notifications: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "notifications_total",
				Help: "Dispatched notifications by channel and result",
			},
			[]string{"channel", "result"},
		),
		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"route", "method", "status"},
		),
		HTTPDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route", "method"},
		),
	}

	m.Registry.MustRegister(
		m.RateLimitDenied,
		m.OtpEvents,
		m.OrdersCreated,
		m.UnresolvedItems,
		m.PaymentCallbacks,
		m.InventoryAdjustments,
		m.Notifications,
		m.HTTPRequests,
		m.HTTPDuration,
		prometheus.NewGoCollector(),
	)
	return m
}
