// Package vnpay integrates the VNPay redirect payment gateway.
package vnpay

import (
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/Linh22400/website-ban-xe-dien-sub000/internal/config"
	domainErrors "github.com/Linh22400/website-ban-xe-dien-sub000/internal/domain/errors"
	"github.com/Linh22400/website-ban-xe-dien-sub000/internal/domain/model"
	"github.com/Linh22400/website-ban-xe-dien-sub000/internal/payment"
)

const (
	version        = "2.1.0"
	dateLayout     = "20060102150405"
	paymentTTL     = 15 * time.Minute
	secureHashKey  = "vnp_SecureHash"
	hashTypeKey    = "vnp_SecureHashType"
	successCode    = "00"
	amountMultiple = 100
)

// VNPay expects timestamps in Vietnam local time.
var vietnam = time.FixedZone("ICT", 7*60*60)

// Client implements payment.Gateway by signing VNPay redirect URLs.
type Client struct {
	payURL     *url.URL
	tmnCode    string
	hashSecret string
	logger     *slog.Logger
	now        func() time.Time
}

// NewClient creates VNPay client. Missing credentials are accepted here and
// reported by each operation.
func NewClient(cfg config.VNPayConfig, logger *slog.Logger) (*Client, error) {
	parsed, err := url.Parse(cfg.PayURL)
	if err != nil {
		return nil, fmt.Errorf("parse vnpay url: %w", err)
	}
	if !parsed.IsAbs() {
		return nil, fmt.Errorf("vnpay url must be absolute")
	}
	return &Client{
		payURL:     parsed,
		tmnCode:    cfg.TmnCode,
		hashSecret: cfg.HashSecret,
		logger:     logger,
		now:        time.Now,
	}, nil
}

func (c *Client) Name() model.Gateway { return model.GatewayVNPay }

func (c *Client) configured() bool {
	return c.tmnCode != "" && c.hashSecret != ""
}

// CreatePayment builds the signed redirect URL. VNPay has no create call.
func (c *Client) CreatePayment(_ context.Context, req payment.Request) (*payment.Link, error) {
	if !c.configured() {
		return nil, domainErrors.ErrGatewayNotConfigured
	}

	now := c.now().In(vietnam)
	params := url.Values{
		"vnp_Version":    {version},
		"vnp_Command":    {"pay"},
		"vnp_TmnCode":    {c.tmnCode},
		"vnp_Amount":     {strconv.FormatInt(req.Amount*amountMultiple, 10)},
		"vnp_CurrCode":   {"VND"},
		"vnp_TxnRef":     {payment.Reference(req.OrderCode, req.RequestID)},
		"vnp_OrderInfo":  {req.OrderInfo},
		"vnp_OrderType":  {"other"},
		"vnp_Locale":     {"vn"},
		"vnp_ReturnUrl":  {req.ReturnURL},
		"vnp_IpAddr":     {clientIP(req.ClientIP)},
		"vnp_CreateDate": {now.Format(dateLayout)},
		"vnp_ExpireDate": {now.Add(paymentTTL).Format(dateLayout)},
	}

	query := canonical(params)
	target := *c.payURL
	target.RawQuery = query + "&" + secureHashKey + "=" + c.sign(query)
	return &payment.Link{PayURL: target.String()}, nil
}

// VerifyCallback validates the vnp_* query of a return or IPN request.
func (c *Client) VerifyCallback(fields url.Values) (*model.CallbackResult, error) {
	if !c.configured() {
		return nil, domainErrors.ErrGatewayNotConfigured
	}
	supplied := fields.Get(secureHashKey)
	if supplied == "" {
		return nil, fmt.Errorf("vnpay callback without signature: %w", domainErrors.ErrSignatureInvalid)
	}

	signed := url.Values{}
	for k, v := range fields {
		if strings.HasPrefix(k, "vnp_") && k != secureHashKey && k != hashTypeKey {
			signed[k] = v
		}
	}
	expected := c.sign(canonical(signed))
	if !hmac.Equal([]byte(expected), []byte(supplied)) {
		return nil, domainErrors.ErrSignatureInvalid
	}

	raw, err := strconv.ParseInt(fields.Get("vnp_Amount"), 10, 64)
	if err != nil {
		return nil, domainErrors.Invalid("vnp_Amount", "must be an integer")
	}
	payload, err := json.Marshal(flatten(signed))
	if err != nil {
		return nil, err
	}

	responseCode := fields.Get("vnp_ResponseCode")
	status := fields.Get("vnp_TransactionStatus")
	return &model.CallbackResult{
		Gateway:       model.GatewayVNPay,
		OrderCode:     payment.OrderCodeOf(fields.Get("vnp_TxnRef")),
		TransactionID: fields.Get("vnp_TransactionNo"),
		Amount:        raw / amountMultiple,
		Success:       responseCode == successCode && (status == "" || status == successCode),
		ResultCode:    responseCode,
		Message:       fields.Get("vnp_OrderInfo"),
		Raw:           payload,
	}, nil
}

// Acknowledge builds the IPN reply VNPay expects.
func (c *Client) Acknowledge(outcome payment.Outcome) payment.Ack {
	code, message := "99", "Unknown error"
	switch outcome {
	case payment.OutcomeConfirmed, payment.OutcomeFailed:
		code, message = "00", "Confirm Success"
	case payment.OutcomeAlreadyConfirmed:
		code, message = "02", "Order already confirmed"
	case payment.OutcomeNotFound:
		code, message = "01", "Order not found"
	case payment.OutcomeInvalidSignature:
		code, message = "97", "Invalid signature"
	case payment.OutcomeInvalidAmount:
		code, message = "04", "Invalid amount"
	}
	return payment.Ack{
		Status: http.StatusOK,
		Body:   map[string]any{"RspCode": code, "Message": message},
	}
}

func (c *Client) sign(raw string) string {
	mac := hmac.New(sha512.New, []byte(c.hashSecret))
	mac.Write([]byte(raw))
	return hex.EncodeToString(mac.Sum(nil))
}

// canonical joins key-sorted, form-encoded pairs the way VNPay hashes them.
func canonical(params url.Values) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		v := params.Get(k)
		if v == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(k))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(v))
	}
	return b.String()
}

func clientIP(ip string) string {
	if ip == "" {
		return "127.0.0.1"
	}
	return ip
}

func flatten(fields url.Values) map[string]string {
	out := make(map[string]string, len(fields))
	for k := range fields {
		out[k] = fields.Get(k)
	}
	return out
}
