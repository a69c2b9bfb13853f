package momo

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"testing"

	"github.com/Linh22400/website-ban-xe-dien-sub000/internal/config"
	domainErrors "github.com/Linh22400/website-ban-xe-dien-sub000/internal/domain/errors"
	"github.com/Linh22400/website-ban-xe-dien-sub000/internal/payment"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func testConfig(endpoint string) config.MoMoConfig {
	return config.MoMoConfig{
		Endpoint:    endpoint,
		PartnerCode: "MOMOBKUN20180529",
		AccessKey:   "klm05TvNBzhg7h7j",
		SecretKey:   "at67qH6mk8w5Y1nAyMoYKMWACiEi2bsa",
	}
}

func newTestClient(t *testing.T, endpoint string) *Client {
	t.Helper()
	c, err := NewClient(testConfig(endpoint), testLogger())
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}
	return c
}

func TestNewClientValidatesURL(t *testing.T) {
	if _, err := NewClient(config.MoMoConfig{Endpoint: "://bad"}, testLogger()); err == nil {
		t.Fatal("expected error for invalid url")
	}
	if _, err := NewClient(config.MoMoConfig{Endpoint: "/relative"}, testLogger()); err == nil {
		t.Fatal("expected error for relative url")
	}
}

func TestCreatePaymentSignsRequest(t *testing.T) {
	var received createRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != createPath {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		_ = json.NewEncoder(w).Encode(createResponse{ResultCode: 0, PayURL: "https://pay.example/momo/abc"})
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	link, err := c.CreatePayment(context.Background(), payment.Request{
		OrderCode: "EV250314K7Q2XM",
		RequestID: "6f1c2a9e-3b4d-4c5e-8f70-112233445566",
		Amount:    3_000_000,
		OrderInfo: "Deposit EV250314K7Q2XM",
		ReturnURL: "http://shop/return",
		NotifyURL: "http://shop/ipn",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if link.PayURL != "https://pay.example/momo/abc" {
		t.Fatalf("unexpected pay url %s", link.PayURL)
	}
	if received.OrderID != "EV250314K7Q2XM-6f1c2a9e" {
		t.Fatalf("unexpected order id %s", received.OrderID)
	}

	raw := "accessKey=klm05TvNBzhg7h7j&amount=3000000&extraData=&ipnUrl=http://shop/ipn" +
		"&orderId=EV250314K7Q2XM-6f1c2a9e&orderInfo=Deposit EV250314K7Q2XM&partnerCode=MOMOBKUN20180529" +
		"&redirectUrl=http://shop/return&requestId=6f1c2a9e-3b4d-4c5e-8f70-112233445566&requestType=captureWallet"
	if received.Signature != c.sign(raw) {
		t.Fatalf("signature does not match canonical string")
	}
}

func TestCreatePaymentRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(createResponse{ResultCode: 41, Message: "duplicated order"})
	}))
	defer srv.Close()

	_, err := newTestClient(t, srv.URL).CreatePayment(context.Background(), payment.Request{OrderCode: "EV1", RequestID: "r1", Amount: 1})
	if err == nil {
		t.Fatal("expected error for rejected payment")
	}
}

func TestCreatePaymentMalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>"))
	}))
	defer srv.Close()

	if _, err := newTestClient(t, srv.URL).CreatePayment(context.Background(), payment.Request{OrderCode: "EV1", RequestID: "r1"}); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestCreatePaymentNotConfigured(t *testing.T) {
	c, err := NewClient(config.MoMoConfig{Endpoint: "https://test-payment.momo.vn"}, testLogger())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := c.CreatePayment(context.Background(), payment.Request{}); !errors.Is(err, domainErrors.ErrGatewayNotConfigured) {
		t.Fatalf("expected not configured error, got %v", err)
	}
	if _, err := c.VerifyCallback(url.Values{}); !errors.Is(err, domainErrors.ErrGatewayNotConfigured) {
		t.Fatalf("expected not configured error, got %v", err)
	}
}

func signedCallback(c *Client, amount int64, resultCode string) url.Values {
	fields := url.Values{
		"partnerCode":  {c.partnerCode},
		"orderId":      {"EV250314K7Q2XM-6f1c2a9e"},
		"requestId":    {"6f1c2a9e-3b4d-4c5e-8f70-112233445566"},
		"amount":       {strconv.FormatInt(amount, 10)},
		"orderInfo":    {"Deposit"},
		"orderType":    {"momo_wallet"},
		"transId":      {"4088878653"},
		"resultCode":   {resultCode},
		"message":      {"Successful."},
		"payType":      {"qr"},
		"responseTime": {"1710406800000"},
		"extraData":    {""},
	}
	pairs := [][2]string{{"accessKey", c.accessKey}}
	for _, k := range callbackFields {
		pairs = append(pairs, [2]string{k, fields.Get(k)})
	}
	fields.Set("signature", c.sign(canonical(pairs)))
	return fields
}

func TestVerifyCallback(t *testing.T) {
	c := newTestClient(t, "https://test-payment.momo.vn")

	res, err := c.VerifyCallback(signedCallback(c, 3_000_000, "0"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.OrderCode != "EV250314K7Q2XM" || res.TransactionID != "4088878653" {
		t.Fatalf("unexpected result: %+v", res)
	}
	if !res.Success || res.Amount != 3_000_000 {
		t.Fatalf("expected successful 3,000,000 payment, got %+v", res)
	}
	if len(res.Raw) == 0 {
		t.Fatal("expected raw payload to be kept")
	}

	failed, err := c.VerifyCallback(signedCallback(c, 3_000_000, "1006"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if failed.Success {
		t.Fatal("expected non-zero result code to be a failure")
	}
}

func TestVerifyCallbackRejectsTampering(t *testing.T) {
	c := newTestClient(t, "https://test-payment.momo.vn")

	tampered := signedCallback(c, 3_000_000, "0")
	tampered.Set("amount", "1000")
	if _, err := c.VerifyCallback(tampered); !errors.Is(err, domainErrors.ErrSignatureInvalid) {
		t.Fatalf("expected invalid signature, got %v", err)
	}

	tampered = signedCallback(c, 3_000_000, "0")
	tampered.Set("orderId", "EV250314OTHER1-6f1c2a9e")
	if _, err := c.VerifyCallback(tampered); !errors.Is(err, domainErrors.ErrSignatureInvalid) {
		t.Fatalf("expected invalid signature, got %v", err)
	}

	unsigned := signedCallback(c, 3_000_000, "0")
	unsigned.Del("signature")
	if _, err := c.VerifyCallback(unsigned); !errors.Is(err, domainErrors.ErrSignatureInvalid) {
		t.Fatalf("expected invalid signature, got %v", err)
	}
}

func TestAcknowledgeCodes(t *testing.T) {
	c := newTestClient(t, "https://test-payment.momo.vn")
	cases := map[payment.Outcome]int{
		payment.OutcomeConfirmed:        0,
		payment.OutcomeFailed:           0,
		payment.OutcomeAlreadyConfirmed: 0,
		payment.OutcomeNotFound:         1,
		payment.OutcomeInvalidSignature: 97,
		payment.OutcomeInvalidAmount:    4,
		payment.OutcomeSystemError:      99,
		payment.OutcomeRateLimited:      99,
	}
	for outcome, code := range cases {
		ack := c.Acknowledge(outcome)
		if ack.Status != http.StatusOK {
			t.Fatalf("expected 200 for %s, got %d", outcome, ack.Status)
		}
		if ack.Body["resultCode"] != code {
			t.Fatalf("expected result code %d for %s, got %v", code, outcome, ack.Body["resultCode"])
		}
	}
}
