package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Linh22400/website-ban-xe-dien-sub000/internal/domain/model"
	"github.com/Linh22400/website-ban-xe-dien-sub000/internal/server/http/dto"
	"github.com/Linh22400/website-ban-xe-dien-sub000/internal/usecase"
)

// OrderHandler handles order placement and lookup.
type OrderHandler struct {
	facade OrderFacade
}

// NewOrderHandler constructs OrderHandler.
func NewOrderHandler(facade OrderFacade) *OrderHandler {
	return &OrderHandler{facade: facade}
}

func itemInputs(items []dto.OrderItemRequest) []usecase.OrderItemInput {
	out := make([]usecase.OrderItemInput, 0, len(items))
	for _, it := range items {
		out = append(out, usecase.OrderItemInput{Type: it.Type, ProductID: it.ProductID, Quantity: it.Quantity})
	}
	return out
}

// Create handles POST /api/orders. A repeat submission inside the dedupe
// window answers 200 with the earlier order; a new order answers 201.
func (h *OrderHandler) Create(c *gin.Context) {
	var req dto.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	result, err := h.facade.CreateOrder(c.Request.Context(), usecase.CreateOrderInput{
		Customer: model.CustomerInfo{
			Name:    req.CustomerName,
			Phone:   req.CustomerPhone,
			Email:   req.CustomerEmail,
			Address: req.CustomerAddress,
		},
		PaymentMethod: model.PaymentMethod(req.PaymentMethod),
		Items:         itemInputs(req.Items),
		VehicleID:     req.VehicleID,
		Quantity:      req.Quantity,
		Note:          req.Note,
		UserID:        currentUserRef(c),
		CallerPhone:   currentPhone(c),
		IP:            c.ClientIP(),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	status := http.StatusCreated
	if result.Deduped {
		status = http.StatusOK
	}
	resp := dto.CreateOrderResponse{
		Deduped: result.Deduped,
		Skipped: dto.RefStrings(result.Skipped),
	}
	if result.Order != nil {
		order := dto.NewOrderResponse(result.Order)
		resp.Order = &order
	}
	c.JSON(status, resp)
}

// Quote handles POST /api/orders/quote.
func (h *OrderHandler) Quote(c *gin.Context) {
	var req dto.QuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	quote, err := h.facade.QuoteOrder(c.Request.Context(), itemInputs(req.Items), model.PaymentMethod(req.PaymentMethod))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewQuoteResponse(quote))
}

// Get handles GET /api/orders/:code?phone=.
func (h *OrderHandler) Get(c *gin.Context) {
	h.track(c, c.Param("code"), c.Query("phone"))
}

// Track handles POST /api/orders/track.
func (h *OrderHandler) Track(c *gin.Context) {
	var req dto.TrackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	h.track(c, req.Code, req.Phone)
}

func (h *OrderHandler) track(c *gin.Context, code, phone string) {
	order, err := h.facade.TrackOrder(c.Request.Context(), code, phone, c.ClientIP())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewOrderResponse(order))
}

// Mine handles GET /api/me/orders.
func (h *OrderHandler) Mine(c *gin.Context) {
	orders, err := h.facade.CustomerOrders(c.Request.Context(), CurrentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	resp := make([]dto.OrderResponse, 0, len(orders))
	for i := range orders {
		resp = append(resp, dto.NewOrderResponse(&orders[i]))
	}
	c.JSON(http.StatusOK, resp)
}
