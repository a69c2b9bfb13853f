package handlers

import (
	"context"
	"net/url"

	"github.com/Linh22400/website-ban-xe-dien-sub000/internal/domain/model"
	"github.com/Linh22400/website-ban-xe-dien-sub000/internal/payment"
	pkgAuth "github.com/Linh22400/website-ban-xe-dien-sub000/internal/pkg/auth"
	"github.com/Linh22400/website-ban-xe-dien-sub000/internal/usecase"
)

// AuthFacade describes the phone OTP login used by handlers.
type AuthFacade interface {
	RequestOtp(ctx context.Context, phone, ip string) (*usecase.OtpIssued, error)
	VerifyOtp(ctx context.Context, phone, code string) (*usecase.Identity, error)
	ParseToken(token string) (*pkgAuth.Claims, error)
}

// OrderFacade encapsulates order operations exposed via HTTP.
type OrderFacade interface {
	CreateOrder(ctx context.Context, in usecase.CreateOrderInput) (*usecase.CreateOrderResult, error)
	QuoteOrder(ctx context.Context, items []usecase.OrderItemInput, method model.PaymentMethod) (*model.Quote, error)
	TrackOrder(ctx context.Context, code, phone, ip string) (*model.Order, error)
	CustomerOrders(ctx context.Context, userID int64) ([]model.Order, error)
}

// PaymentFacade starts gateway payments and takes their callbacks.
type PaymentFacade interface {
	CreatePayment(ctx context.Context, in usecase.CreatePaymentInput) (*model.Payment, error)
	PaymentCallback(ctx context.Context, gateway string, kind payment.CallbackKind, fields url.Values) (*usecase.CallbackReply, error)
	RejectPaymentCallback(gateway string, kind payment.CallbackKind, cause error) (*usecase.CallbackReply, error)
}

// HealthFacade reports dependency health.
type HealthFacade interface {
	HealthCheck(ctx context.Context) error
}

// StorefrontFacade aggregates the full set of operations used across handlers.
type StorefrontFacade interface {
	AuthFacade
	OrderFacade
	PaymentFacade
	HealthFacade
}
