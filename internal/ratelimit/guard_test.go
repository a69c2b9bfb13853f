package ratelimit

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainErrors "github.com/Linh22400/website-ban-xe-dien-sub000/internal/domain/errors"
	"github.com/Linh22400/website-ban-xe-dien-sub000/internal/metrics"
)

type failingStore struct{}

func (failingStore) Hit(context.Context, string, time.Time, Policy) (Decision, error) {
	return Decision{}, errors.New("connection refused")
}

func (failingStore) Sweep(time.Time) {}

func newTestGuard(store Store) (*Guard, *metrics.Metrics) {
	m := metrics.New()
	g := NewGuard(store, Tiers{
		"test.tier": {Window: time.Minute, MaxCount: 1, MinInterval: 0},
		"other":     {Window: time.Minute, MaxCount: 1},
	}, slog.New(slog.NewTextHandler(io.Discard, nil)), m)
	g.now = func() time.Time { return t0 }
	return g, m
}

func TestGuardCheckRejectsAndRecords(t *testing.T) {
	g, m := newTestGuard(NewMemoryStore(1, 16))
	ctx := context.Background()

	require.NoError(t, g.Check(ctx, "test.tier", "1.2.3.4"))
	err := g.Check(ctx, "test.tier", "1.2.3.4")

	var limited *domainErrors.RateLimitedError
	require.ErrorAs(t, err, &limited)
	assert.Equal(t, domainErrors.ReasonWindow, limited.Reason)
	assert.Equal(t, 60, limited.RetryAfterSec)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RateLimitDenied.WithLabelValues("test.tier", "window")))
}

func TestGuardTiersKeepSeparateCounters(t *testing.T) {
	g, _ := newTestGuard(NewMemoryStore(1, 16))
	ctx := context.Background()

	require.NoError(t, g.Check(ctx, "test.tier", "same-key"))
	assert.NoError(t, g.Check(ctx, "other", "same-key"))
}

func TestGuardFailsOpen(t *testing.T) {
	g, _ := newTestGuard(failingStore{})
	assert.NoError(t, g.Check(context.Background(), "test.tier", "k"))
}

func TestGuardUnknownTierAllows(t *testing.T) {
	g, _ := newTestGuard(NewMemoryStore(1, 16))
	assert.NoError(t, g.Check(context.Background(), "missing", "k"))
}
