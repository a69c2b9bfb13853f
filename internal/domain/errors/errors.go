package errors

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrAlreadyExists        = errors.New("already exists")
	ErrNotFound             = errors.New("not found")
	ErrOtpNotFound          = errors.New("otp not found or expired")
	ErrInvalidOtp           = errors.New("invalid otp code")
	ErrOtpLocked            = errors.New("otp locked after too many attempts")
	ErrAlreadyPaid          = errors.New("order already paid")
	ErrSignatureInvalid     = errors.New("invalid signature")
	ErrGatewayNotConfigured = errors.New("payment gateway not configured")
	ErrUnknownGateway       = errors.New("unknown payment gateway")
	ErrUpstream             = errors.New("upstream call failed")
)

// ValidationError reports malformed or missing input. Field names the offending input.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("invalid %s", e.Field)
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Invalid is a shorthand for constructing ValidationError.
func Invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// RateLimitReason tells which limiter tier rejected the request.
type RateLimitReason string

const (
	ReasonWindow   RateLimitReason = "window"
	ReasonCooldown RateLimitReason = "cooldown"
)

// RateLimitedError is returned when a rate limit rejects the call.
type RateLimitedError struct {
	RetryAfterSec int
	Reason        RateLimitReason
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("too many requests (%s), retry after %ds", e.Reason, e.RetryAfterSec)
}

// InsufficientStockError lists the products whose stock cannot cover the order.
type InsufficientStockError struct {
	Products []string
}

func (e *InsufficientStockError) Error() string {
	return "insufficient stock: " + strings.Join(e.Products, ", ")
}
