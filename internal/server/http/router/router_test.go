package router

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/Linh22400/website-ban-xe-dien-sub000/internal/config"
	domainErrors "github.com/Linh22400/website-ban-xe-dien-sub000/internal/domain/errors"
	"github.com/Linh22400/website-ban-xe-dien-sub000/internal/domain/model"
	"github.com/Linh22400/website-ban-xe-dien-sub000/internal/metrics"
	pkgAuth "github.com/Linh22400/website-ban-xe-dien-sub000/internal/pkg/auth"
	"github.com/Linh22400/website-ban-xe-dien-sub000/internal/test/facadestub"
	"github.com/Linh22400/website-ban-xe-dien-sub000/internal/usecase"
)

func newEngine(t *testing.T, facade facadestub.StorefrontFacadeStub) *gin.Engine {
	t.Helper()
	engine, err := Setup(Params{
		Facade:  facade,
		Logger:  slog.New(slog.NewJSONHandler(io.Discard, nil)),
		Metrics: metrics.New(),
		Config:  &config.Config{FrontendURL: "https://shop.example", RequestTimeout: 0},
	})
	if err != nil {
		t.Fatalf("setup failed: %v", err)
	}
	return engine
}

func serve(engine *gin.Engine, method, target string, body []byte, headers map[string]string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp := httptest.NewRecorder()
	engine.ServeHTTP(resp, req)
	return resp
}

func TestSetupRoutes(t *testing.T) {
	facade := facadestub.StorefrontFacadeStub{
		OrderFacadeStub: facadestub.OrderFacadeStub{
			ListFn: func(context.Context, int64) ([]model.Order, error) {
				return []model.Order{{Code: "EV1"}}, nil
			},
		},
	}
	engine := newEngine(t, facade)

	cases := []struct {
		method string
		target string
		body   string
		status int
	}{
		{http.MethodPost, "/api/otp/send", `{"phone":"0912345678"}`, http.StatusOK},
		{http.MethodPost, "/api/otp/verify", `{"phone":"0912345678","code":"123456"}`, http.StatusOK},
		{http.MethodPost, "/api/orders", `{"customerName":"A","customerPhone":"0912345678","paymentMethod":"deposit","vehicleId":"3"}`, http.StatusCreated},
		{http.MethodPost, "/api/orders/quote", `{"paymentMethod":"deposit","items":[{"type":"vehicle","productId":"3","quantity":1}]}`, http.StatusOK},
		{http.MethodPost, "/api/orders/track", `{"code":"EV1","phone":"0912345678"}`, http.StatusOK},
		{http.MethodGet, "/api/orders/EV1?phone=0912345678", "", http.StatusOK},
		{http.MethodPost, "/api/payments/vnpay/create", `{"orderCode":"EV1","phone":"0912345678"}`, http.StatusOK},
		{http.MethodGet, "/api/payments/vnpay/return?vnp_TxnRef=EV1-a", "", http.StatusFound},
		{http.MethodGet, "/api/payments/vnpay/ipn?vnp_TxnRef=EV1-a", "", http.StatusOK},
		{http.MethodPost, "/api/payments/momo/ipn", `{"orderId":"EV1-a"}`, http.StatusOK},
		{http.MethodGet, "/healthz", "", http.StatusOK},
		{http.MethodGet, "/api/unknown", "", http.StatusNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.method+" "+tc.target, func(t *testing.T) {
			var body []byte
			if tc.body != "" {
				body = []byte(tc.body)
			}
			resp := serve(engine, tc.method, tc.target, body, nil)
			if resp.Code != tc.status {
				t.Fatalf("expected status %d, got %d: %s", tc.status, resp.Code, resp.Body.String())
			}
		})
	}
}

func TestMyOrdersRequiresAuth(t *testing.T) {
	facade := facadestub.StorefrontFacadeStub{
		AuthFacadeStub: facadestub.AuthFacadeStub{ParseFn: func(token string) (*pkgAuth.Claims, error) {
			if token != "good" {
				return nil, pkgAuth.ErrInvalidToken
			}
			return &pkgAuth.Claims{UserID: 5}, nil
		}},
		OrderFacadeStub: facadestub.OrderFacadeStub{ListFn: func(_ context.Context, userID int64) ([]model.Order, error) {
			return []model.Order{{Code: "EV5"}}, nil
		}},
	}
	engine := newEngine(t, facade)

	resp := serve(engine, http.MethodGet, "/api/me/orders", nil, nil)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", resp.Code)
	}

	resp = serve(engine, http.MethodGet, "/api/me/orders", nil, map[string]string{"Authorization": "Bearer good"})
	if resp.Code != http.StatusOK || !strings.Contains(resp.Body.String(), "EV5") {
		t.Fatalf("unexpected response %d %s", resp.Code, resp.Body.String())
	}
}

func TestOrderCreateAttachesOptionalUser(t *testing.T) {
	var got *int64
	facade := facadestub.StorefrontFacadeStub{
		AuthFacadeStub: facadestub.AuthFacadeStub{ParseFn: func(string) (*pkgAuth.Claims, error) {
			return &pkgAuth.Claims{UserID: 9}, nil
		}},
		OrderFacadeStub: facadestub.OrderFacadeStub{CreateFn: func(_ context.Context, in usecase.CreateOrderInput) (*usecase.CreateOrderResult, error) {
			got = in.UserID
			return &usecase.CreateOrderResult{Order: &model.Order{Code: "EV9"}}, nil
		}},
	}
	engine := newEngine(t, facade)

	body := []byte(`{"customerName":"A","customerPhone":"0912345678","paymentMethod":"deposit","vehicleId":"3"}`)
	resp := serve(engine, http.MethodPost, "/api/orders", body, map[string]string{"Authorization": "Bearer any"})
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.Code)
	}
	if got == nil || *got != 9 {
		t.Fatalf("expected user 9 attached, got %v", got)
	}
}

func TestRateLimitResponseShape(t *testing.T) {
	facade := facadestub.StorefrontFacadeStub{
		AuthFacadeStub: facadestub.AuthFacadeStub{RequestFn: func(context.Context, string, string) (*usecase.OtpIssued, error) {
			return nil, &domainErrors.RateLimitedError{RetryAfterSec: 60, Reason: domainErrors.ReasonCooldown}
		}},
	}
	engine := newEngine(t, facade)

	resp := serve(engine, http.MethodPost, "/api/otp/send", []byte(`{"phone":"0912345678"}`), nil)
	if resp.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", resp.Code)
	}
	if resp.Header().Get("Retry-After") != "60" {
		t.Fatalf("expected Retry-After header, got %q", resp.Header().Get("Retry-After"))
	}
	var body struct {
		Error struct {
			Message       string `json:"message"`
			RetryAfterSec int    `json:"retryAfterSec"`
		} `json:"error"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Error.RetryAfterSec != 60 || body.Error.Message == "" {
		t.Fatalf("unexpected body %+v", body)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	engine := newEngine(t, facadestub.StorefrontFacadeStub{})
	serve(engine, http.MethodGet, "/healthz", nil, nil)

	resp := serve(engine, http.MethodGet, "/metrics", nil, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), "http_requests_total") {
		t.Fatalf("expected request counter in exposition")
	}
}

func TestCORSPreflight(t *testing.T) {
	engine := newEngine(t, facadestub.StorefrontFacadeStub{})
	resp := serve(engine, http.MethodOptions, "/api/orders", nil, map[string]string{
		"Origin":                        "https://shop.example",
		"Access-Control-Request-Method": http.MethodPost,
	})
	if got := resp.Header().Get("Access-Control-Allow-Origin"); got != "https://shop.example" {
		t.Fatalf("expected frontend origin allowed, got %q", got)
	}
}
