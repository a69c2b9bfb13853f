package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNewRegistersCollectors(t *testing.T) {
	m := New()
	m.RateLimitDenied.WithLabelValues("otp.send.phone", "cooldown").Inc()
	m.PaymentCallbacks.WithLabelValues("momo", "ipn", "confirmed").Add(2)

	if got := testutil.ToFloat64(m.RateLimitDenied.WithLabelValues("otp.send.phone", "cooldown")); got != 1 {
		t.Fatalf("expected 1 denial, got %v", got)
	}
	if got := testutil.ToFloat64(m.PaymentCallbacks.WithLabelValues("momo", "ipn", "confirmed")); got != 2 {
		t.Fatalf("expected 2 callbacks, got %v", got)
	}

	families, err := m.Registry.Gather()
	if err != nil {
		t.Fatalf("gather failed: %v", err)
	}
	if len(families) == 0 {
		t.Fatal("expected registered metric families")
	}
}

func TestNewUsesIsolatedRegistries(t *testing.T) {
	a, b := New(), New()
	if a.Registry == b.Registry {
		t.Fatal("expected distinct registries")
	}
}
