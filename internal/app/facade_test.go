package app

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Linh22400/website-ban-xe-dien-sub000/internal/config"
	domainErrors "github.com/Linh22400/website-ban-xe-dien-sub000/internal/domain/errors"
	"github.com/Linh22400/website-ban-xe-dien-sub000/internal/domain/model"
	"github.com/Linh22400/website-ban-xe-dien-sub000/internal/metrics"
	"github.com/Linh22400/website-ban-xe-dien-sub000/internal/otp"
	"github.com/Linh22400/website-ban-xe-dien-sub000/internal/payment"
	"github.com/Linh22400/website-ban-xe-dien-sub000/internal/pricing"
	testhelpers "github.com/Linh22400/website-ban-xe-dien-sub000/internal/test"
	"github.com/Linh22400/website-ban-xe-dien-sub000/internal/usecase"
)

type healthStub struct{ err error }

func (h healthStub) HealthCheck(context.Context) error { return h.err }

type facadeFixture struct {
	facade    *StorefrontFacade
	users     *testhelpers.UserRepositoryStub
	orders    *testhelpers.OrderRepositoryStub
	inventory *testhelpers.InventoryRepositoryStub
	notifier  *testhelpers.NotifierStub
}

func newFacade(t *testing.T, health HealthChecker) *facadeFixture {
	t.Helper()
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	m := metrics.New()
	cfg := &config.Config{Environment: config.EnvironmentDevelopment, PublicURL: "https://api.shop.vn", FrontendURL: "https://shop.vn"}

	f := &facadeFixture{
		users:     testhelpers.NewUserRepositoryStub(),
		orders:    &testhelpers.OrderRepositoryStub{},
		inventory: &testhelpers.InventoryRepositoryStub{},
		notifier:  &testhelpers.NotifierStub{},
	}
	limiter := &testhelpers.LimiterStub{}
	catalog := &testhelpers.CatalogRepositoryStub{
		Vehicles:    []model.Vehicle{{ID: 3, ExternalID: "k9x2mwq7a1", Name: "Evo200", Price: 10_000_000}},
		Accessories: []model.Accessory{{ID: 7, Name: "Helmet", Price: 500_000}},
	}

	authUC := usecase.NewAuthUseCase(usecase.AuthParams{
		Config:   cfg,
		Users:    f.users,
		Codes:    otp.NewMemoryStore(1),
		Hasher:   testhelpers.HasherStub{},
		Tokens:   testhelpers.StrategyStub{},
		Limiter:  limiter,
		Notifier: f.notifier,
		Logger:   logger,
		Metrics:  m,
	})
	orderUC := usecase.NewOrderUseCase(usecase.OrderParams{
		Orders:    f.orders,
		Inventory: f.inventory,
		Pricing:   pricing.NewEngine(catalog, 0, logger, m),
		Limiter:   limiter,
		Notifier:  f.notifier,
		Logger:    logger,
		Metrics:   m,
	})
	paymentUC := usecase.NewPaymentUseCase(usecase.PaymentParams{
		Config:   cfg,
		Orders:   f.orders,
		Payments: &testhelpers.PaymentRepositoryStub{Orders: f.orders},
		Gateways: payment.NewRegistry(),
		Limiter:  limiter,
		Logger:   logger,
		Metrics:  m,
	})

	f.facade = NewStorefrontFacade(authUC, orderUC, paymentUC, health)
	return f
}

func TestStorefrontFacadeOtpFlow(t *testing.T) {
	f := newFacade(t, nil)
	ctx := context.Background()

	issued, err := f.facade.RequestOtp(ctx, "+84 912 345 678", "10.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, "0912345678", issued.Phone)
	require.NotEmpty(t, issued.DevCode)

	identity, err := f.facade.VerifyOtp(ctx, "0912345678", issued.DevCode)
	require.NoError(t, err)
	assert.True(t, identity.NewUser)
	assert.Equal(t, "token", identity.Token)

	stored, err := f.users.GetByPhone(ctx, "0912345678")
	require.NoError(t, err)
	assert.Equal(t, identity.UserID, stored.ID)

	claims, err := f.facade.ParseToken("token")
	require.NoError(t, err)
	assert.Equal(t, "0912345678", claims.Phone)
}

func TestStorefrontFacadeOrders(t *testing.T) {
	f := newFacade(t, nil)
	ctx := context.Background()
	userID := int64(5)

	quote, err := f.facade.QuoteOrder(ctx, []usecase.OrderItemInput{{Type: "accessory", ProductID: "7", Quantity: 2}}, model.PaymentMethodFullPayment)
	require.NoError(t, err)
	assert.EqualValues(t, 1_000_000, quote.BasePrice)

	res, err := f.facade.CreateOrder(ctx, usecase.CreateOrderInput{
		Customer:      model.CustomerInfo{Name: "Nguyen Van A", Phone: "0912345678"},
		PaymentMethod: model.PaymentMethodDeposit,
		Items:         []usecase.OrderItemInput{{Type: "vehicle", ProductID: "k9x2mwq7a1", Quantity: 1}},
		UserID:        &userID,
		IP:            "10.0.0.1",
	})
	require.NoError(t, err)
	require.False(t, res.Deduped)
	assert.Equal(t, 1, f.orders.Count())

	tracked, err := f.facade.TrackOrder(ctx, res.Order.Code, "0912345678", "10.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, res.Order.ID, tracked.ID)

	mine, err := f.facade.CustomerOrders(ctx, userID)
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	none, err := f.facade.CustomerOrders(ctx, 99)
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestStorefrontFacadePayments(t *testing.T) {
	f := newFacade(t, nil)
	ctx := context.Background()

	_, err := f.facade.CreatePayment(ctx, usecase.CreatePaymentInput{Gateway: "momo", OrderCode: "EV250314AAAAAA", Phone: "0912345678"})
	assert.ErrorIs(t, err, domainErrors.ErrUnknownGateway)

	_, err = f.facade.PaymentCallback(ctx, "paypal", payment.KindIPN, url.Values{})
	assert.ErrorIs(t, err, domainErrors.ErrUnknownGateway)

	_, err = f.facade.RejectPaymentCallback("paypal", payment.KindIPN, errors.New("invalid callback body"))
	assert.ErrorIs(t, err, domainErrors.ErrUnknownGateway)
}

func TestStorefrontFacadeHealthCheck(t *testing.T) {
	assert.NoError(t, newFacade(t, nil).facade.HealthCheck(context.Background()))
	assert.NoError(t, newFacade(t, healthStub{}).facade.HealthCheck(context.Background()))

	down := errors.New("db down")
	assert.ErrorIs(t, newFacade(t, healthStub{err: down}).facade.HealthCheck(context.Background()), down)
}
