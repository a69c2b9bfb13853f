// Package momo integrates the MoMo wallet payment gateway.
package momo

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/Linh22400/website-ban-xe-dien-sub000/internal/config"
	domainErrors "github.com/Linh22400/website-ban-xe-dien-sub000/internal/domain/errors"
	"github.com/Linh22400/website-ban-xe-dien-sub000/internal/domain/model"
	"github.com/Linh22400/website-ban-xe-dien-sub000/internal/payment"
)

const (
	createPath  = "/v2/gateway/api/create"
	requestType = "captureWallet"
)

// Client implements payment.Gateway via the MoMo v2 HTTP API.
type Client struct {
	endpoint    *url.URL
	partnerCode string
	accessKey   string
	secretKey   string
	httpClient  *http.Client
	logger      *slog.Logger
}

type createRequest struct {
	PartnerCode string `json:"partnerCode"`
	RequestID   string `json:"requestId"`
	Amount      int64  `json:"amount"`
	OrderID     string `json:"orderId"`
	OrderInfo   string `json:"orderInfo"`
	RedirectURL string `json:"redirectUrl"`
	IpnURL      string `json:"ipnUrl"`
	RequestType string `json:"requestType"`
	ExtraData   string `json:"extraData"`
	Lang        string `json:"lang"`
	Signature   string `json:"signature"`
}

type createResponse struct {
	PartnerCode string `json:"partnerCode"`
	OrderID     string `json:"orderId"`
	RequestID   string `json:"requestId"`
	Amount      int64  `json:"amount"`
	ResultCode  int    `json:"resultCode"`
	Message     string `json:"message"`
	PayURL      string `json:"payUrl"`
}

// NewClient creates MoMo client with default timeout. Missing credentials are
// accepted here and reported by each operation.
func NewClient(cfg config.MoMoConfig, logger *slog.Logger) (*Client, error) {
	parsed, err := url.Parse(cfg.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("parse momo endpoint: %w", err)
	}
	if !parsed.IsAbs() {
		return nil, fmt.Errorf("momo endpoint must be absolute")
	}
	return &Client{
		endpoint:    parsed,
		partnerCode: cfg.PartnerCode,
		accessKey:   cfg.AccessKey,
		secretKey:   cfg.SecretKey,
		logger:      logger,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}, nil
}

func (c *Client) Name() model.Gateway { return model.GatewayMoMo }

func (c *Client) configured() bool {
	return c.partnerCode != "" && c.accessKey != "" && c.secretKey != ""
}

// CreatePayment requests a wallet payment URL.
func (c *Client) CreatePayment(ctx context.Context, req payment.Request) (*payment.Link, error) {
	if !c.configured() {
		return nil, domainErrors.ErrGatewayNotConfigured
	}

	body := createRequest{
		PartnerCode: c.partnerCode,
		RequestID:   req.RequestID,
		Amount:      req.Amount,
		OrderID:     payment.Reference(req.OrderCode, req.RequestID),
		OrderInfo:   req.OrderInfo,
		RedirectURL: req.ReturnURL,
		IpnURL:      req.NotifyURL,
		RequestType: requestType,
		Lang:        "vi",
	}
	body.Signature = c.sign(canonical([][2]string{
		{"accessKey", c.accessKey},
		{"amount", strconv.FormatInt(body.Amount, 10)},
		{"extraData", body.ExtraData},
		{"ipnUrl", body.IpnURL},
		{"orderId", body.OrderID},
		{"orderInfo", body.OrderInfo},
		{"partnerCode", body.PartnerCode},
		{"redirectUrl", body.RedirectURL},
		{"requestId", body.RequestID},
		{"requestType", body.RequestType},
	}))

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	endpoint := *c.endpoint
	endpoint.Path = path.Join(endpoint.Path, createPath)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.String(), bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("momo create: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	var data createResponse
	if err := json.Unmarshal(raw, &data); err != nil {
		c.logger.Error("momo create returned malformed body", slog.Int("status", resp.StatusCode))
		return nil, fmt.Errorf("momo create: decode response: %w", err)
	}
	if data.ResultCode != 0 || data.PayURL == "" {
		c.logger.Error("momo create rejected",
			slog.Int("status", resp.StatusCode),
			slog.Int("result_code", data.ResultCode),
			slog.String("message", data.Message),
		)
		return nil, fmt.Errorf("momo create: result code %d", data.ResultCode)
	}
	return &payment.Link{PayURL: data.PayURL}, nil
}

// callbackFields is the signed field order of return and IPN payloads.
var callbackFields = []string{
	"amount", "extraData", "message", "orderId", "orderInfo", "orderType",
	"partnerCode", "payType", "requestId", "responseTime", "resultCode", "transId",
}

// VerifyCallback validates a redirect query or a flattened IPN body.
func (c *Client) VerifyCallback(fields url.Values) (*model.CallbackResult, error) {
	if !c.configured() {
		return nil, domainErrors.ErrGatewayNotConfigured
	}
	supplied := fields.Get("signature")
	if supplied == "" {
		return nil, fmt.Errorf("momo callback without signature: %w", domainErrors.ErrSignatureInvalid)
	}

	pairs := make([][2]string, 0, len(callbackFields)+1)
	pairs = append(pairs, [2]string{"accessKey", c.accessKey})
	for _, k := range callbackFields {
		pairs = append(pairs, [2]string{k, fields.Get(k)})
	}
	expected := c.sign(canonical(pairs))
	if !hmac.Equal([]byte(expected), []byte(supplied)) {
		return nil, domainErrors.ErrSignatureInvalid
	}

	amount, err := strconv.ParseInt(fields.Get("amount"), 10, 64)
	if err != nil {
		return nil, domainErrors.Invalid("amount", "must be an integer")
	}
	raw, err := json.Marshal(flatten(fields))
	if err != nil {
		return nil, err
	}
	resultCode := fields.Get("resultCode")
	return &model.CallbackResult{
		Gateway:       model.GatewayMoMo,
		OrderCode:     payment.OrderCodeOf(fields.Get("orderId")),
		TransactionID: fields.Get("transId"),
		Amount:        amount,
		Success:       resultCode == "0",
		ResultCode:    resultCode,
		Message:       fields.Get("message"),
		Raw:           raw,
	}, nil
}

// Acknowledge builds the IPN reply MoMo expects.
func (c *Client) Acknowledge(outcome payment.Outcome) payment.Ack {
	code, message := 99, "System error"
	switch outcome {
	case payment.OutcomeConfirmed, payment.OutcomeFailed:
		code, message = 0, "Recorded"
	case payment.OutcomeAlreadyConfirmed:
		code, message = 0, "Already confirmed"
	case payment.OutcomeNotFound:
		code, message = 1, "Order not found"
	case payment.OutcomeInvalidSignature:
		code, message = 97, "Invalid signature"
	case payment.OutcomeInvalidAmount:
		code, message = 4, "Invalid amount"
	}
	return payment.Ack{
		Status: http.StatusOK,
		Body: map[string]any{
			"partnerCode": c.partnerCode,
			"resultCode":  code,
			"message":     message,
		},
	}
}

func (c *Client) sign(raw string) string {
	mac := hmac.New(sha256.New, []byte(c.secretKey))
	mac.Write([]byte(raw))
	return hex.EncodeToString(mac.Sum(nil))
}

func canonical(pairs [][2]string) string {
	var b strings.Builder
	for i, p := range pairs {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(p[0])
		b.WriteByte('=')
		b.WriteString(p[1])
	}
	return b.String()
}

func flatten(fields url.Values) map[string]string {
	out := make(map[string]string, len(fields))
	for k := range fields {
		out[k] = fields.Get(k)
	}
	return out
}
