package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/fx"

	"github.com/Linh22400/website-ban-xe-dien-sub000/internal/config"
	domainErrors "github.com/Linh22400/website-ban-xe-dien-sub000/internal/domain/errors"
	"github.com/Linh22400/website-ban-xe-dien-sub000/internal/domain/model"
	"github.com/Linh22400/website-ban-xe-dien-sub000/internal/domain/repository"
	"github.com/Linh22400/website-ban-xe-dien-sub000/internal/metrics"
	"github.com/Linh22400/website-ban-xe-dien-sub000/internal/otp"
	"github.com/Linh22400/website-ban-xe-dien-sub000/internal/payment"
	"github.com/Linh22400/website-ban-xe-dien-sub000/internal/ratelimit"
)

// CreatePaymentInput identifies the order to pay and the payer.
type CreatePaymentInput struct {
	Gateway   string
	OrderCode string
	Phone     string
	IP        string
}

// CallbackReply is what the transport sends back for a gateway callback.
// RedirectURL is set for browser returns, Ack for notifications.
type CallbackReply struct {
	Outcome     payment.Outcome
	OrderCode   string
	RedirectURL string
	Ack         payment.Ack
}

// PaymentUseCase creates gateway payments and reconciles their callbacks.
type PaymentUseCase struct {
	orders   repository.OrderRepository
	payments repository.PaymentRepository
	gateways *payment.Registry
	limiter  RateLimiter
	logger   *slog.Logger
	metrics  *metrics.Metrics

	publicURL   string
	frontendURL string
	newID       func() string
}

// PaymentParams lists PaymentUseCase collaborators.
type PaymentParams struct {
	fx.In

	Config   *config.Config
	Orders   repository.OrderRepository
	Payments repository.PaymentRepository
	Gateways *payment.Registry
	Limiter  RateLimiter
	Logger   *slog.Logger
	Metrics  *metrics.Metrics
}

// NewPaymentUseCase constructs PaymentUseCase.
func NewPaymentUseCase(p PaymentParams) *PaymentUseCase {
	return &PaymentUseCase{
		orders:      p.Orders,
		payments:    p.Payments,
		gateways:    p.Gateways,
		limiter:     p.Limiter,
		logger:      p.Logger,
		metrics:     p.Metrics,
		publicURL:   strings.TrimRight(p.Config.PublicURL, "/"),
		frontendURL: strings.TrimRight(p.Config.FrontendURL, "/"),
		newID:       uuid.NewString,
	}
}

// Create starts a deposit payment for an order owned by the given phone.
func (u *PaymentUseCase) Create(ctx context.Context, in CreatePaymentInput) (*model.Payment, error) {
	gw, err := u.gateways.Get(in.Gateway)
	if err != nil {
		return nil, err
	}
	code := strings.ToUpper(strings.TrimSpace(in.OrderCode))
	if code == "" {
		return nil, domainErrors.Invalid("orderCode", "is required")
	}
	phone, err := otp.NormalizePhone(in.Phone)
	if err != nil {
		return nil, err
	}

	if err := u.limiter.Check(ctx, ratelimit.TierPaymentCreate, code); err != nil {
		return nil, err
	}

	order, err := u.orders.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if order.Customer.Phone != phone {
		return nil, domainErrors.ErrNotFound
	}
	if order.PaymentStatus == model.PaymentStatusCompleted {
		return nil, domainErrors.ErrAlreadyPaid
	}
	if order.DepositAmount <= 0 {
		return nil, domainErrors.Invalid("amount", "order has nothing to pay")
	}

	requestID := u.newID()
	pending, err := u.payments.CreatePayment(ctx, &model.Payment{
		OrderID:   order.ID,
		Gateway:   gw.Name(),
		RequestID: requestID,
		Amount:    order.DepositAmount,
		Status:    model.TransactionPending,
	})
	if err != nil {
		return nil, fmt.Errorf("create payment: %w", err)
	}

	link, err := gw.CreatePayment(ctx, payment.Request{
		OrderCode: order.Code,
		RequestID: requestID,
		Amount:    order.DepositAmount,
		OrderInfo: "Thanh toan don hang " + order.Code,
		ClientIP:  in.IP,
		ReturnURL: u.callbackURL(gw.Name(), payment.KindReturn),
		NotifyURL: u.callbackURL(gw.Name(), payment.KindIPN),
	})
	if err != nil {
		if errors.Is(err, domainErrors.ErrGatewayNotConfigured) {
			return nil, err
		}
		u.logger.Error("gateway rejected payment",
			slog.String("gateway", string(gw.Name())),
			slog.String("code", order.Code),
			slog.Any("error", err),
		)
		return nil, domainErrors.ErrUpstream
	}

	if err := u.payments.UpdatePayURL(ctx, pending.ID, link.PayURL); err != nil {
		return nil, fmt.Errorf("store pay url: %w", err)
	}
	pending.PayURL = link.PayURL
	return pending, nil
}

func (u *PaymentUseCase) callbackURL(gw model.Gateway, kind payment.CallbackKind) string {
	return fmt.Sprintf("%s/api/payments/%s/%s", u.publicURL, gw, kind)
}

// HandleCallback verifies and applies a gateway callback. Every result,
// including internal failures, is turned into an outcome so the gateway
// always receives an acknowledgement it understands.
func (u *PaymentUseCase) HandleCallback(ctx context.Context, gateway string, kind payment.CallbackKind, fields url.Values) (*CallbackReply, error) {
	gw, err := u.gateways.Get(gateway)
	if err != nil {
		return nil, err
	}

	outcome, code := u.reconcile(ctx, gw, kind, fields)
	u.metrics.PaymentCallbacks.WithLabelValues(string(gw.Name()), string(kind), string(outcome)).Inc()

	reply := &CallbackReply{Outcome: outcome, OrderCode: code, Ack: gw.Acknowledge(outcome)}
	if kind == payment.KindReturn {
		q := url.Values{"status": {string(outcome)}}
		if code != "" {
			q.Set("order", code)
		}
		reply.RedirectURL = u.frontendURL + "/payment/result?" + q.Encode()
	}
	return reply, nil
}

// RejectCallback answers a callback whose payload could not be read with the
// gateway's system error acknowledgement.
func (u *PaymentUseCase) RejectCallback(gateway string, kind payment.CallbackKind, cause error) (*CallbackReply, error) {
	gw, err := u.gateways.Get(gateway)
	if err != nil {
		return nil, err
	}

	u.logger.Warn("unreadable callback",
		slog.String("gateway", string(gw.Name())),
		slog.String("kind", string(kind)),
		slog.Any("error", cause),
	)
	u.metrics.PaymentCallbacks.WithLabelValues(string(gw.Name()), string(kind), string(payment.OutcomeSystemError)).Inc()
	return &CallbackReply{Outcome: payment.OutcomeSystemError, Ack: gw.Acknowledge(payment.OutcomeSystemError)}, nil
}

func (u *PaymentUseCase) reconcile(ctx context.Context, gw payment.Gateway, kind payment.CallbackKind, fields url.Values) (payment.Outcome, string) {
	log := u.logger.With(slog.String("gateway", string(gw.Name())), slog.String("kind", string(kind)))

	result, err := gw.VerifyCallback(fields)
	if err != nil {
		if errors.Is(err, domainErrors.ErrGatewayNotConfigured) {
			log.Error("callback for unconfigured gateway")
			return payment.OutcomeSystemError, ""
		}
		log.Warn("rejected callback", slog.Any("error", err))
		return payment.OutcomeInvalidSignature, ""
	}
	log = log.With(slog.String("code", result.OrderCode), slog.String("transaction_id", result.TransactionID))

	if err := u.limiter.Check(ctx, ratelimit.TierPaymentCallback, string(gw.Name())+":"+result.OrderCode); err != nil {
		log.Warn("callback rate limited")
		return payment.OutcomeRateLimited, result.OrderCode
	}

	order, err := u.orders.GetByCode(ctx, result.OrderCode)
	if err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			log.Warn("callback for unknown order")
			return payment.OutcomeNotFound, result.OrderCode
		}
		log.Error("failed to load order", slog.Any("error", err))
		return payment.OutcomeSystemError, result.OrderCode
	}
	if order.PaymentStatus.Terminal() {
		return payment.OutcomeAlreadyConfirmed, order.Code
	}

	pending, err := u.payments.LatestPending(ctx, order.ID, gw.Name())
	if err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			if u.recorded(ctx, order.ID, result) {
				return payment.OutcomeAlreadyConfirmed, order.Code
			}
			log.Warn("callback without pending payment")
			return payment.OutcomeNotFound, order.Code
		}
		log.Error("failed to load payment", slog.Any("error", err))
		return payment.OutcomeSystemError, order.Code
	}
	if result.Amount != pending.Amount {
		log.Warn("callback amount mismatch",
			slog.Int64("expected", pending.Amount),
			slog.Int64("received", result.Amount),
		)
		return payment.OutcomeInvalidAmount, order.Code
	}

	status, txStatus, outcome := model.PaymentStatusFailed, model.TransactionFailed, payment.OutcomeFailed
	if result.Success {
		status, txStatus, outcome = model.PaymentStatusCompleted, model.TransactionSuccess, payment.OutcomeConfirmed
	}

	applied, err := u.payments.ApplyResult(ctx, order.ID, status, model.PaymentTransaction{
		OrderID:         order.ID,
		PaymentID:       &pending.ID,
		TransactionID:   result.TransactionID,
		Gateway:         gw.Name(),
		Amount:          result.Amount,
		Status:          txStatus,
		GatewayResponse: result.Raw,
	})
	if err != nil {
		log.Error("failed to apply payment result", slog.Any("error", err))
		return payment.OutcomeSystemError, order.Code
	}
	if !applied {
		return payment.OutcomeAlreadyConfirmed, order.Code
	}

	log.Info("payment reconciled", slog.String("outcome", string(outcome)), slog.String("result_code", result.ResultCode))
	return outcome, order.Code
}

// recorded reports whether the transaction of result was already stored.
func (u *PaymentUseCase) recorded(ctx context.Context, orderID int64, result *model.CallbackResult) bool {
	txs, err := u.payments.ListTransactions(ctx, orderID)
	if err != nil {
		return false
	}
	for _, tx := range txs {
		if tx.Gateway == result.Gateway && tx.TransactionID == result.TransactionID {
			return true
		}
	}
	return false
}
