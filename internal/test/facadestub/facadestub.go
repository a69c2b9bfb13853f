// Package facadestub holds stubs of the HTTP handler facades. It is separate
// from package test, which usecase tests import.
package facadestub

import (
	"context"
	"net/url"

	"github.com/Linh22400/website-ban-xe-dien-sub000/internal/domain/model"
	"github.com/Linh22400/website-ban-xe-dien-sub000/internal/payment"
	pkgAuth "github.com/Linh22400/website-ban-xe-dien-sub000/internal/pkg/auth"
	"github.com/Linh22400/website-ban-xe-dien-sub000/internal/usecase"
)

// AuthFacadeStub implements handler auth operations via overrides.
type AuthFacadeStub struct {
	RequestFn func(ctx context.Context, phone, ip string) (*usecase.OtpIssued, error)
	VerifyFn  func(ctx context.Context, phone, code string) (*usecase.Identity, error)
	ParseFn   func(token string) (*pkgAuth.Claims, error)
}

// RequestOtp returns a fixed issue result unless overridden.
func (s AuthFacadeStub) RequestOtp(ctx context.Context, phone, ip string) (*usecase.OtpIssued, error) {
	if s.RequestFn != nil {
		return s.RequestFn(ctx, phone, ip)
	}
	return &usecase.OtpIssued{Phone: phone}, nil
}

// VerifyOtp returns a fixed identity unless overridden.
func (s AuthFacadeStub) VerifyOtp(ctx context.Context, phone, code string) (*usecase.Identity, error) {
	if s.VerifyFn != nil {
		return s.VerifyFn(ctx, phone, code)
	}
	return &usecase.Identity{UserID: 1, Phone: phone, Token: "token"}, nil
}

// ParseToken returns user 1 unless overridden.
func (s AuthFacadeStub) ParseToken(token string) (*pkgAuth.Claims, error) {
	if s.ParseFn != nil {
		return s.ParseFn(token)
	}
	return &pkgAuth.Claims{UserID: 1, Phone: "0912345678"}, nil
}

// OrderFacadeStub implements handler order operations via overrides.
type OrderFacadeStub struct {
	CreateFn func(ctx context.Context, in usecase.CreateOrderInput) (*usecase.CreateOrderResult, error)
	QuoteFn  func(ctx context.Context, items []usecase.OrderItemInput, method model.PaymentMethod) (*model.Quote, error)
	TrackFn  func(ctx context.Context, code, phone, ip string) (*model.Order, error)
	ListFn   func(ctx context.Context, userID int64) ([]model.Order, error)
}

// CreateOrder delegates to CreateFn or echoes a stored order.
func (s OrderFacadeStub) CreateOrder(ctx context.Context, in usecase.CreateOrderInput) (*usecase.CreateOrderResult, error) {
	if s.CreateFn != nil {
		return s.CreateFn(ctx, in)
	}
	return &usecase.CreateOrderResult{Order: &model.Order{Code: "EV250314AAAAAA", Customer: in.Customer}}, nil
}

// QuoteOrder delegates to QuoteFn or returns an empty quote.
func (s OrderFacadeStub) QuoteOrder(ctx context.Context, items []usecase.OrderItemInput, method model.PaymentMethod) (*model.Quote, error) {
	if s.QuoteFn != nil {
		return s.QuoteFn(ctx, items, method)
	}
	return &model.Quote{}, nil
}

// TrackOrder delegates to TrackFn or returns an order with code.
func (s OrderFacadeStub) TrackOrder(ctx context.Context, code, phone, ip string) (*model.Order, error) {
	if s.TrackFn != nil {
		return s.TrackFn(ctx, code, phone, ip)
	}
	return &model.Order{Code: code}, nil
}

// CustomerOrders delegates to ListFn.
func (s OrderFacadeStub) CustomerOrders(ctx context.Context, userID int64) ([]model.Order, error) {
	if s.ListFn != nil {
		return s.ListFn(ctx, userID)
	}
	return nil, nil
}

// PaymentFacadeStub implements handler payment operations via overrides.
type PaymentFacadeStub struct {
	CreateFn   func(ctx context.Context, in usecase.CreatePaymentInput) (*model.Payment, error)
	CallbackFn func(ctx context.Context, gateway string, kind payment.CallbackKind, fields url.Values) (*usecase.CallbackReply, error)
	RejectFn   func(gateway string, kind payment.CallbackKind, cause error) (*usecase.CallbackReply, error)
}

// CreatePayment delegates to CreateFn or returns a pending payment.
func (s PaymentFacadeStub) CreatePayment(ctx context.Context, in usecase.CreatePaymentInput) (*model.Payment, error) {
	if s.CreateFn != nil {
		return s.CreateFn(ctx, in)
	}
	return &model.Payment{Gateway: model.Gateway(in.Gateway), PayURL: "https://pay.example/1"}, nil
}

// PaymentCallback delegates to CallbackFn or acknowledges success.
func (s PaymentFacadeStub) PaymentCallback(ctx context.Context, gateway string, kind payment.CallbackKind, fields url.Values) (*usecase.CallbackReply, error) {
	if s.CallbackFn != nil {
		return s.CallbackFn(ctx, gateway, kind, fields)
	}
	return &usecase.CallbackReply{
		Outcome:     payment.OutcomeConfirmed,
		RedirectURL: "https://shop.example/payment/result?status=confirmed",
		Ack:         payment.Ack{Status: 200, Body: map[string]any{"RspCode": "00"}},
	}, nil
}

// RejectPaymentCallback delegates to RejectFn or acknowledges a system error.
func (s PaymentFacadeStub) RejectPaymentCallback(gateway string, kind payment.CallbackKind, cause error) (*usecase.CallbackReply, error) {
	if s.RejectFn != nil {
		return s.RejectFn(gateway, kind, cause)
	}
	return &usecase.CallbackReply{
		Outcome: payment.OutcomeSystemError,
		Ack:     payment.Ack{Status: 200, Body: map[string]any{"RspCode": "99"}},
	}, nil
}

// HealthFacadeStub returns Err from HealthCheck.
type HealthFacadeStub struct {
	Err error
}

// HealthCheck returns the configured error.
func (s HealthFacadeStub) HealthCheck(context.Context) error {
	return s.Err
}

// StorefrontFacadeStub combines every facade stub.
type StorefrontFacadeStub struct {
	AuthFacadeStub
	OrderFacadeStub
	PaymentFacadeStub
	HealthFacadeStub
}
