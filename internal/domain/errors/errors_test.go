package errors

import (
	stdErrors "errors"
	"fmt"
	"strings"
	"testing"
)

func TestSentinelErrors(t *testing.T) {
	cases := []struct {
		name string
		err  error
	}{
		{"already exists", ErrAlreadyExists},
		{"not found", ErrNotFound},
		{"otp not found", ErrOtpNotFound},
		{"invalid otp", ErrInvalidOtp},
		{"otp locked", ErrOtpLocked},
		{"already paid", ErrAlreadyPaid},
		{"signature", ErrSignatureInvalid},
		{"gateway not configured", ErrGatewayNotConfigured},
		{"upstream", ErrUpstream},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			wrapped := fmt.Errorf("context: %w", tc.err)
			if !stdErrors.Is(wrapped, tc.err) {
				t.Fatalf("expected wrapped error to match: %v", tc.err)
			}
		})
	}
}

func TestValidationError(t *testing.T) {
	err := Invalid("phone", "unsupported format")
	var vErr *ValidationError
	if !stdErrors.As(fmt.Errorf("wrap: %w", err), &vErr) {
		t.Fatal("expected validation error to be extractable")
	}
	if vErr.Field != "phone" {
		t.Fatalf("unexpected field %q", vErr.Field)
	}
	if got := (&ValidationError{Field: "name"}).Error(); got != "invalid name" {
		t.Fatalf("unexpected message %q", got)
	}
}

func TestRateLimitedAndStockErrors(t *testing.T) {
	rl := &RateLimitedError{RetryAfterSec: 3, Reason: ReasonCooldown}
	if !strings.Contains(rl.Error(), "cooldown") || !strings.Contains(rl.Error(), "3s") {
		t.Fatalf("unexpected message %q", rl.Error())
	}

	stock := &InsufficientStockError{Products: []string{"VinFast Evo", "Klara S"}}
	if stock.Error() != "insufficient stock: VinFast Evo, Klara S" {
		t.Fatalf("unexpected message %q", stock.Error())
	}
}
