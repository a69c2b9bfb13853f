package vnpay

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/Linh22400/website-ban-xe-dien-sub000/internal/config"
	domainErrors "github.com/Linh22400/website-ban-xe-dien-sub000/internal/domain/errors"
	"github.com/Linh22400/website-ban-xe-dien-sub000/internal/payment"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func testConfig() config.VNPayConfig {
	return config.VNPayConfig{
		PayURL:     "https://sandbox.vnpayment.vn/paymentv2/vpcpay.html",
		TmnCode:    "2QXUI4J4",
		HashSecret: "SECRETKEYSECRETKEYSECRETKEY12345",
	}
}

func newTestClient(t *testing.T) *Client {
	t.Helper()
	c, err := NewClient(testConfig(), testLogger())
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}
	c.now = func() time.Time { return time.Date(2025, 3, 14, 2, 0, 0, 0, time.UTC) }
	return c
}

func TestNewClientValidatesURL(t *testing.T) {
	if _, err := NewClient(config.VNPayConfig{PayURL: "://bad"}, testLogger()); err == nil {
		t.Fatal("expected error for invalid url")
	}
	if _, err := NewClient(config.VNPayConfig{PayURL: "relative/path"}, testLogger()); err == nil {
		t.Fatal("expected error for relative url")
	}
}

func TestCreatePaymentBuildsSignedURL(t *testing.T) {
	c := newTestClient(t)

	link, err := c.CreatePayment(context.Background(), payment.Request{
		OrderCode: "EV250314K7Q2XM",
		RequestID: "6f1c2a9e-3b4d-4c5e-8f70-112233445566",
		Amount:    3_000_000,
		OrderInfo: "Dat coc EV250314K7Q2XM",
		ClientIP:  "203.0.113.7",
		ReturnURL: "http://shop/api/payments/vnpay/return",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	parsed, err := url.Parse(link.PayURL)
	if err != nil {
		t.Fatalf("pay url does not parse: %v", err)
	}
	if !strings.HasPrefix(link.PayURL, "https://sandbox.vnpayment.vn/paymentv2/vpcpay.html?") {
		t.Fatalf("unexpected base url %s", link.PayURL)
	}
	q := parsed.Query()
	if q.Get("vnp_Amount") != "300000000" {
		t.Fatalf("expected amount in hundredths, got %s", q.Get("vnp_Amount"))
	}
	if q.Get("vnp_TxnRef") != "EV250314K7Q2XM-6f1c2a9e" {
		t.Fatalf("unexpected txn ref %s", q.Get("vnp_TxnRef"))
	}
	if q.Get("vnp_CreateDate") != "20250314090000" {
		t.Fatalf("expected Vietnam local time, got %s", q.Get("vnp_CreateDate"))
	}
	if q.Get("vnp_ExpireDate") != "20250314091500" {
		t.Fatalf("unexpected expiry %s", q.Get("vnp_ExpireDate"))
	}

	hash := q.Get(secureHashKey)
	q.Del(secureHashKey)
	if hash != c.sign(canonical(q)) {
		t.Fatal("secure hash does not match query")
	}
}

func TestCreatePaymentNotConfigured(t *testing.T) {
	c, err := NewClient(config.VNPayConfig{PayURL: testConfig().PayURL}, testLogger())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := c.CreatePayment(context.Background(), payment.Request{}); !errors.Is(err, domainErrors.ErrGatewayNotConfigured) {
		t.Fatalf("expected not configured error, got %v", err)
	}
}

func signedReturn(c *Client, responseCode string) url.Values {
	fields := url.Values{
		"vnp_Amount":            {"300000000"},
		"vnp_BankCode":          {"NCB"},
		"vnp_OrderInfo":         {"Dat coc EV250314K7Q2XM"},
		"vnp_PayDate":           {"20250314091000"},
		"vnp_ResponseCode":      {responseCode},
		"vnp_TmnCode":           {c.tmnCode},
		"vnp_TransactionNo":     {"14422574"},
		"vnp_TransactionStatus": {responseCode},
		"vnp_TxnRef":            {"EV250314K7Q2XM-6f1c2a9e"},
	}
	fields.Set(secureHashKey, c.sign(canonical(fields)))
	fields.Set(hashTypeKey, "HmacSHA512")
	return fields
}

func TestVerifyCallback(t *testing.T) {
	c := newTestClient(t)

	res, err := c.VerifyCallback(signedReturn(c, "00"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.OrderCode != "EV250314K7Q2XM" || res.TransactionID != "14422574" {
		t.Fatalf("unexpected result: %+v", res)
	}
	if !res.Success || res.Amount != 3_000_000 {
		t.Fatalf("expected successful 3,000,000 payment, got %+v", res)
	}

	failed, err := c.VerifyCallback(signedReturn(c, "24"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if failed.Success {
		t.Fatal("expected cancelled payment to be a failure")
	}
}

func TestVerifyCallbackRejectsTampering(t *testing.T) {
	c := newTestClient(t)

	tampered := signedReturn(c, "00")
	tampered.Set("vnp_Amount", "100")
	if _, err := c.VerifyCallback(tampered); !errors.Is(err, domainErrors.ErrSignatureInvalid) {
		t.Fatalf("expected invalid signature, got %v", err)
	}

	tampered = signedReturn(c, "00")
	tampered.Set("vnp_TxnRef", "EV250314OTHER1-6f1c2a9e")
	if _, err := c.VerifyCallback(tampered); !errors.Is(err, domainErrors.ErrSignatureInvalid) {
		t.Fatalf("expected invalid signature, got %v", err)
	}

	upper := signedReturn(c, "00")
	upper.Set(secureHashKey, strings.ToUpper(upper.Get(secureHashKey)))
	if _, err := c.VerifyCallback(upper); !errors.Is(err, domainErrors.ErrSignatureInvalid) {
		t.Fatalf("expected exact comparison, got %v", err)
	}
}

func TestAcknowledgeCodes(t *testing.T) {
	c := newTestClient(t)
	cases := map[payment.Outcome]string{
		payment.OutcomeConfirmed:        "00",
		payment.OutcomeFailed:           "00",
		payment.OutcomeAlreadyConfirmed: "02",
		payment.OutcomeNotFound:         "01",
		payment.OutcomeInvalidSignature: "97",
		payment.OutcomeInvalidAmount:    "04",
		payment.OutcomeSystemError:      "99",
	}
	for outcome, code := range cases {
		ack := c.Acknowledge(outcome)
		if ack.Status != http.StatusOK || ack.Body["RspCode"] != code {
			t.Fatalf("expected %s for %s, got %+v", code, outcome, ack)
		}
	}
}
