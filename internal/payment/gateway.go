// Package payment defines the contract between the reconciliation use case
// and payment gateway adapters.
package payment

import (
	"context"
	"net/url"
	"strings"

	"github.com/Linh22400/website-ban-xe-dien-sub000/internal/domain/model"
)

// Request is a provider-independent payment creation request.
type Request struct {
	OrderCode string
	RequestID string
	Amount    int64
	OrderInfo string
	ClientIP  string
	ReturnURL string
	NotifyURL string
}

// Link is where the customer is sent to complete the payment.
type Link struct {
	PayURL string
}

// CallbackKind tells a browser return apart from a server-to-server notification.
type CallbackKind string

const (
	KindReturn CallbackKind = "return"
	KindIPN    CallbackKind = "ipn"
)

// Outcome is the reconciliation result of a callback.
type Outcome string

const (
	OutcomeConfirmed        Outcome = "confirmed"
	OutcomeFailed           Outcome = "failed"
	OutcomeAlreadyConfirmed Outcome = "already_confirmed"
	OutcomeNotFound         Outcome = "not_found"
	OutcomeInvalidSignature Outcome = "invalid_signature"
	OutcomeInvalidAmount    Outcome = "invalid_amount"
	OutcomeSystemError      Outcome = "system_error"
	OutcomeRateLimited      Outcome = "rate_limited"
)

// Ack is the acknowledgement a gateway expects in reply to a notification.
type Ack struct {
	Status int
	Body   map[string]any
}

// Gateway is implemented by every payment provider adapter.
type Gateway interface {
	Name() model.Gateway
	CreatePayment(ctx context.Context, req Request) (*Link, error)
	// VerifyCallback recomputes the signature from fields and returns the
	// parsed result only when it matches the supplied one.
	VerifyCallback(fields url.Values) (*model.CallbackResult, error)
	Acknowledge(outcome Outcome) Ack
}

const refSeparator = "-"

// Reference builds the provider order reference. Providers reject a reused
// reference, so every attempt carries a suffix of its request id.
func Reference(orderCode, requestID string) string {
	suffix := strings.ReplaceAll(requestID, "-", "")
	if len(suffix) > 8 {
		suffix = suffix[:8]
	}
	return orderCode + refSeparator + suffix
}

// OrderCodeOf extracts the order code from a provider reference.
func OrderCodeOf(ref string) string {
	code, _, _ := strings.Cut(ref, refSeparator)
	return code
}
