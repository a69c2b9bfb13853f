package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Linh22400/website-ban-xe-dien-sub000/internal/payment"
	"github.com/Linh22400/website-ban-xe-dien-sub000/internal/server/http/dto"
	"github.com/Linh22400/website-ban-xe-dien-sub000/internal/usecase"
)

const maxCallbackBody = 64 << 10

// PaymentHandler exposes gateway payments and their callbacks.
type PaymentHandler struct {
	facade PaymentFacade
}

// NewPaymentHandler constructs PaymentHandler.
func NewPaymentHandler(facade PaymentFacade) *PaymentHandler {
	return &PaymentHandler{facade: facade}
}

// Create handles POST /api/payments/:gateway/create.
func (h *PaymentHandler) Create(c *gin.Context) {
	var req dto.CreatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	p, err := h.facade.CreatePayment(c.Request.Context(), usecase.CreatePaymentInput{
		Gateway:   c.Param("gateway"),
		OrderCode: req.OrderCode,
		Phone:     req.Phone,
		IP:        c.ClientIP(),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.CreatePaymentResponse{
		Gateway:   string(p.Gateway),
		OrderCode: strings.ToUpper(strings.TrimSpace(req.OrderCode)),
		RequestID: p.RequestID,
		Amount:    p.Amount,
		PayURL:    p.PayURL,
	})
}

// Return handles GET /api/payments/:gateway/return, the browser redirect
// back from the gateway.
func (h *PaymentHandler) Return(c *gin.Context) {
	reply, err := h.facade.PaymentCallback(c.Request.Context(), c.Param("gateway"), payment.KindReturn, c.Request.URL.Query())
	if err != nil {
		respondError(c, err)
		return
	}
	c.Redirect(http.StatusFound, reply.RedirectURL)
}

// Notify handles GET|POST /api/payments/:gateway/ipn, the server-to-server
// notification. The reply is always the gateway's own acknowledgement format.
func (h *PaymentHandler) Notify(c *gin.Context) {
	fields, err := callbackFields(c)
	if err != nil {
		reply, gwErr := h.facade.RejectPaymentCallback(c.Param("gateway"), payment.KindIPN, err)
		if gwErr != nil {
			respondError(c, gwErr)
			return
		}
		c.JSON(reply.Ack.Status, reply.Ack.Body)
		return
	}

	reply, err := h.facade.PaymentCallback(c.Request.Context(), c.Param("gateway"), payment.KindIPN, fields)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(reply.Ack.Status, reply.Ack.Body)
}

// callbackFields collects the callback parameters from the query string and,
// for POST requests, from a JSON or form body.
func callbackFields(c *gin.Context) (url.Values, error) {
	fields := c.Request.URL.Query()
	if c.Request.Method != http.MethodPost {
		return fields, nil
	}

	if strings.HasPrefix(c.ContentType(), "application/json") {
		dec := json.NewDecoder(io.LimitReader(c.Request.Body, maxCallbackBody))
		dec.UseNumber()
		var payload map[string]any
		if err := dec.Decode(&payload); err != nil {
			return nil, errors.New("invalid callback body")
		}
		for k, v := range payload {
			fields.Set(k, scalarString(v))
		}
		return fields, nil
	}

	if err := c.Request.ParseForm(); err != nil {
		return nil, err
	}
	for k, vs := range c.Request.PostForm {
		for _, v := range vs {
			fields.Add(k, v)
		}
	}
	return fields, nil
}

func scalarString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	case bool:
		if t {
			return "true"
		}
		return "false"
	default:
		raw, _ := json.Marshal(t)
		return string(raw)
	}
}
