package app

import (
	"context"
	"net/url"

	"github.com/Linh22400/website-ban-xe-dien-sub000/internal/domain/model"
	"github.com/Linh22400/website-ban-xe-dien-sub000/internal/payment"
	pkgAuth "github.com/Linh22400/website-ban-xe-dien-sub000/internal/pkg/auth"
	"github.com/Linh22400/website-ban-xe-dien-sub000/internal/usecase"
)

// HealthChecker reports whether a backing service is reachable.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// StorefrontFacade is the single entry point the HTTP layer talks to.
type StorefrontFacade struct {
	auth     *usecase.AuthUseCase
	orders   *usecase.OrderUseCase
	payments *usecase.PaymentUseCase
	health   HealthChecker
}

func NewStorefrontFacade(auth *usecase.AuthUseCase, orders *usecase.OrderUseCase, payments *usecase.PaymentUseCase, health HealthChecker) *StorefrontFacade {
	return &StorefrontFacade{auth: auth, orders: orders, payments: payments, health: health}
}

func (f *StorefrontFacade) RequestOtp(ctx context.Context, phone, ip string) (*usecase.OtpIssued, error) {
	return f.auth.RequestOtp(ctx, phone, ip)
}

func (f *StorefrontFacade) VerifyOtp(ctx context.Context, phone, code string) (*usecase.Identity, error) {
	return f.auth.VerifyOtp(ctx, phone, code)
}

func (f *StorefrontFacade) ParseToken(token string) (*pkgAuth.Claims, error) {
	return f.auth.ParseToken(token)
}

func (f *StorefrontFacade) CreateOrder(ctx context.Context, in usecase.CreateOrderInput) (*usecase.CreateOrderResult, error) {
	return f.orders.Create(ctx, in)
}

func (f *StorefrontFacade) QuoteOrder(ctx context.Context, items []usecase.OrderItemInput, method model.PaymentMethod) (*model.Quote, error) {
	return f.orders.Quote(ctx, items, method)
}

func (f *StorefrontFacade) TrackOrder(ctx context.Context, code, phone, ip string) (*model.Order, error) {
	return f.orders.Track(ctx, code, phone, ip)
}

func (f *StorefrontFacade) CustomerOrders(ctx context.Context, userID int64) ([]model.Order, error) {
	orders, err := f.orders.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if orders == nil {
		orders = []model.Order{}
	}
	return orders, nil
}

func (f *StorefrontFacade) CreatePayment(ctx context.Context, in usecase.CreatePaymentInput) (*model.Payment, error) {
	return f.payments.Create(ctx, in)
}

func (f *StorefrontFacade) PaymentCallback(ctx context.Context, gateway string, kind payment.CallbackKind, fields url.Values) (*usecase.CallbackReply, error) {
	return f.payments.HandleCallback(ctx, gateway, kind, fields)
}

func (f *StorefrontFacade) RejectPaymentCallback(gateway string, kind payment.CallbackKind, cause error) (*usecase.CallbackReply, error) {
	return f.payments.RejectCallback(gateway, kind, cause)
}

func (f *StorefrontFacade) HealthCheck(ctx context.Context) error {
	if f.health == nil {
		return nil
	}
	return f.health.HealthCheck(ctx)
}
