package usecase

import (
	"context"
	"crypto/rand"
	"encoding/base32"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/fx"

	domainErrors "github.com/Linh22400/website-ban-xe-dien-sub000/internal/domain/errors"
	"github.com/Linh22400/website-ban-xe-dien-sub000/internal/domain/model"
	"github.com/Linh22400/website-ban-xe-dien-sub000/internal/domain/repository"
	"github.com/Linh22400/website-ban-xe-dien-sub000/internal/metrics"
	"github.com/Linh22400/website-ban-xe-dien-sub000/internal/notify"
	"github.com/Linh22400/website-ban-xe-dien-sub000/internal/otp"
	"github.com/Linh22400/website-ban-xe-dien-sub000/internal/pricing"
	"github.com/Linh22400/website-ban-xe-dien-sub000/internal/ratelimit"
)

const (
	// DedupeWindow is how far back a matching order suppresses a new one.
	DedupeWindow = 24 * time.Hour

	orderCodePrefix  = "EV"
	orderCodeRandLen = 6
	codeAttempts     = 3
)

var (
	codeEncoding = base32.StdEncoding.WithPadding(base32.NoPadding)
	fieldCheck   = validator.New()
)

// OrderItemInput is a requested line as received from a client.
type OrderItemInput struct {
	Type      string
	ProductID string
	Quantity  int
}

// CreateOrderInput carries everything needed to place an order. VehicleID and
// Quantity form the legacy single-vehicle shape used when Items is empty.
// CallerPhone is the verified phone of an authenticated caller, empty for
// anonymous requests.
type CreateOrderInput struct {
	Customer      model.CustomerInfo
	PaymentMethod model.PaymentMethod
	Items         []OrderItemInput
	VehicleID     string
	Quantity      int
	Note          string
	UserID        *int64
	CallerPhone   string
	IP            string
}

// CreateOrderResult reports the stored order. Deduped is set when an earlier
// order of the same phone and type suppressed this one; Order is then only
// filled for a caller verified as the owner of that phone.
type CreateOrderResult struct {
	Order   *model.Order
	Deduped bool
	Skipped []model.CatalogRef
}

// OrderUseCase encapsulates order lifecycle logic.
type OrderUseCase struct {
	orders    repository.OrderRepository
	inventory repository.InventoryRepository
	pricing   *pricing.Engine
	limiter   RateLimiter
	notifier  Notifier
	logger    *slog.Logger
	metrics   *metrics.Metrics

	now     func() time.Time
	newCode func(time.Time) (string, error)
}

// OrderParams lists OrderUseCase collaborators.
type OrderParams struct {
	fx.In

	Orders    repository.OrderRepository
	Inventory repository.InventoryRepository
	Pricing   *pricing.Engine
	Limiter   RateLimiter
	Notifier  Notifier
	Logger    *slog.Logger
	Metrics   *metrics.Metrics
}

// NewOrderUseCase constructs OrderUseCase.
func NewOrderUseCase(p OrderParams) *OrderUseCase {
	return &OrderUseCase{
		orders:    p.Orders,
		inventory: p.Inventory,
		pricing:   p.Pricing,
		limiter:   p.Limiter,
		notifier:  p.Notifier,
		logger:    p.Logger,
		metrics:   p.Metrics,
		now:       time.Now,
		newCode:   GenerateOrderCode,
	}
}

// Create validates, prices and stores a new order. Stock decrements are queued
// after the order is written and their failure does not fail the call.
func (u *OrderUseCase) Create(ctx context.Context, in CreateOrderInput) (*CreateOrderResult, error) {
	customer, err := normalizeCustomer(in.Customer)
	if err != nil {
		return nil, err
	}
	if !in.PaymentMethod.Valid() {
		return nil, domainErrors.Invalid("paymentMethod", "must be deposit, full_payment or installment")
	}
	items, err := lineItems(in)
	if err != nil {
		return nil, err
	}

	if err := u.limiter.Check(ctx, ratelimit.TierOrderCreateIP, in.IP); err != nil {
		u.metrics.OrdersCreated.WithLabelValues("rate_limited").Inc()
		return nil, err
	}
	if err := u.limiter.Check(ctx, ratelimit.TierOrderCreatePhone, customer.Phone); err != nil {
		u.metrics.OrdersCreated.WithLabelValues("rate_limited").Inc()
		return nil, err
	}

	now := u.now()
	orderType := requestedType(items)
	existing, err := u.orders.FindRecentByPhoneAndType(ctx, customer.Phone, orderType, now.Add(-DedupeWindow))
	switch {
	case err == nil:
		u.logger.Info("duplicate order suppressed",
			slog.String("code", existing.Code),
			slog.String("type", string(orderType)),
		)
		u.metrics.OrdersCreated.WithLabelValues("deduped").Inc()
		if in.CallerPhone != customer.Phone {
			return &CreateOrderResult{Deduped: true}, nil
		}
		return &CreateOrderResult{Order: existing, Deduped: true}, nil
	case !errors.Is(err, domainErrors.ErrNotFound):
		return nil, fmt.Errorf("find recent order: %w", err)
	}

	quote, err := u.pricing.Price(ctx, items, in.PaymentMethod, now)
	if err != nil {
		u.metrics.OrdersCreated.WithLabelValues("rejected").Inc()
		return nil, err
	}

	draft := &model.Order{
		UserID:          in.UserID,
		Type:            quote.OrderType(),
		Customer:        customer,
		Items:           quote.Items(),
		PaymentMethod:   in.PaymentMethod,
		PaymentStatus:   model.PaymentStatusPending,
		Status:          model.OrderStatusNew,
		BasePrice:       quote.BasePrice,
		Discount:        quote.Discount,
		VAT:             quote.VAT,
		TotalAmount:     quote.TotalAmount,
		DepositAmount:   quote.DepositAmount,
		RemainingAmount: quote.RemainingAmount,
		Note:            strings.TrimSpace(in.Note),
		CreatedAt:       now,
	}

	order, err := u.store(ctx, draft, now)
	if err != nil {
		return nil, err
	}
	u.metrics.OrdersCreated.WithLabelValues("created").Inc()
	u.logger.Info("order created",
		slog.String("code", order.Code),
		slog.Int64("total", order.TotalAmount),
		slog.Int("items", len(order.Items)),
	)

	if adj := quote.Adjustments(order.ID); len(adj) > 0 {
		if err := u.inventory.Enqueue(ctx, adj); err != nil {
			u.logger.Error("failed to queue stock adjustments",
				slog.String("code", order.Code),
				slog.Any("error", err),
			)
		}
	}

	u.confirm(ctx, order)
	return &CreateOrderResult{Order: order, Skipped: quote.Skipped}, nil
}

// store writes the order, regenerating the code on the rare collision.
func (u *OrderUseCase) store(ctx context.Context, draft *model.Order, now time.Time) (*model.Order, error) {
	for attempt := 1; ; attempt++ {
		code, err := u.newCode(now)
		if err != nil {
			return nil, err
		}
		draft.Code = code

		order, err := u.orders.Create(ctx, draft)
		if err == nil {
			return order, nil
		}
		if !errors.Is(err, domainErrors.ErrAlreadyExists) || attempt == codeAttempts {
			return nil, fmt.Errorf("create order: %w", err)
		}
	}
}

func (u *OrderUseCase) confirm(ctx context.Context, order *model.Order) {
	body := fmt.Sprintf("Order %s received. Total %d VND, due now %d VND.", order.Code, order.TotalAmount, order.DepositAmount)
	u.notifier.Send(ctx, notify.Message{Channel: notify.ChannelSMS, To: order.Customer.Phone, Body: body})
	if order.Customer.Email != "" {
		u.notifier.Send(ctx, notify.Message{
			Channel: notify.ChannelEmail,
			To:      order.Customer.Email,
			Subject: "Order " + order.Code,
			Body:    body,
		})
	}
}

// Quote prices items without storing anything.
func (u *OrderUseCase) Quote(ctx context.Context, items []OrderItemInput, method model.PaymentMethod) (*model.Quote, error) {
	lines, err := lineItems(CreateOrderInput{Items: items})
	if err != nil {
		return nil, err
	}
	return u.pricing.Price(ctx, lines, method, u.now())
}

// Track returns the order with code when phone matches its customer. A wrong
// phone is reported the same way as an unknown code.
func (u *OrderUseCase) Track(ctx context.Context, code, rawPhone, ip string) (*model.Order, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, domainErrors.Invalid("code", "is required")
	}
	phone, err := otp.NormalizePhone(rawPhone)
	if err != nil {
		return nil, err
	}

	if err := u.limiter.Check(ctx, ratelimit.TierOrderTrackIP, ip); err != nil {
		return nil, err
	}
	if err := u.limiter.Check(ctx, ratelimit.TierOrderTrackCode, code); err != nil {
		return nil, err
	}

	order, err := u.orders.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if order.Customer.Phone != phone {
		return nil, domainErrors.ErrNotFound
	}
	return order, nil
}

// ListByUser returns orders of an authenticated customer, newest first.
func (u *OrderUseCase) ListByUser(ctx context.Context, userID int64) ([]model.Order, error) {
	return u.orders.ListByUser(ctx, userID)
}

// GenerateOrderCode builds a human-readable order code such as EV250314K7Q2XM.
func GenerateOrderCode(now time.Time) (string, error) {
	var buf [4]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return "", fmt.Errorf("generate order code: %w", err)
	}
	return orderCodePrefix + now.Format("060102") + codeEncoding.EncodeToString(buf[:])[:orderCodeRandLen], nil
}

func normalizeCustomer(c model.CustomerInfo) (model.CustomerInfo, error) {
	c.Name = strings.TrimSpace(c.Name)
	c.Email = strings.TrimSpace(c.Email)
	c.Address = strings.TrimSpace(c.Address)
	if c.Name == "" {
		return c, domainErrors.Invalid("customerName", "is required")
	}
	phone, err := otp.NormalizePhone(c.Phone)
	if err != nil {
		return c, err
	}
	c.Phone = phone
	if c.Email != "" {
		if err := fieldCheck.Var(c.Email, "email"); err != nil {
			return c, domainErrors.Invalid("customerEmail", "must be a valid email address")
		}
	}
	return c, nil
}

func lineItems(in CreateOrderInput) ([]model.LineItem, error) {
	if len(in.Items) == 0 {
		if strings.TrimSpace(in.VehicleID) == "" {
			return nil, domainErrors.Invalid("items", "at least one item is required")
		}
		qty := in.Quantity
		if qty == 0 {
			qty = 1
		}
		if qty < 0 {
			return nil, domainErrors.Invalid("quantity", "must be positive")
		}
		return []model.LineItem{{
			Kind:     model.ItemKindVehicle,
			Ref:      model.ParseCatalogRef(strings.TrimSpace(in.VehicleID)),
			Quantity: qty,
		}}, nil
	}

	out := make([]model.LineItem, 0, len(in.Items))
	for i, item := range in.Items {
		kind := model.ItemKind(strings.ToLower(strings.TrimSpace(item.Type)))
		if kind != model.ItemKindVehicle && kind != model.ItemKindAccessory {
			return nil, domainErrors.Invalid(fmt.Sprintf("items[%d].type", i), "must be vehicle or accessory")
		}
		id := strings.TrimSpace(item.ProductID)
		if id == "" {
			return nil, domainErrors.Invalid(fmt.Sprintf("items[%d].productId", i), "is required")
		}
		if item.Quantity <= 0 {
			return nil, domainErrors.Invalid(fmt.Sprintf("items[%d].quantity", i), "must be positive")
		}
		out = append(out, model.LineItem{Kind: kind, Ref: model.ParseCatalogRef(id), Quantity: item.Quantity})
	}
	return out, nil
}

func requestedType(items []model.LineItem) model.OrderType {
	for _, it := range items {
		if it.Kind == model.ItemKindVehicle {
			return model.OrderTypeVehicle
		}
	}
	return model.OrderTypeAccessory
}
