package dto

import (
	"time"

	"github.com/Linh22400/website-ban-xe-dien-sub000/internal/domain/model"
)

// OrderItemRequest is one requested line.
type OrderItemRequest struct {
	Type      string `json:"type" binding:"omitempty,oneof=vehicle accessory"`
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity" binding:"gte=0,lte=100"`
}

// CreateOrderRequest places an order. VehicleID and Quantity are the legacy
// single-vehicle form used when Items is empty.
type CreateOrderRequest struct {
	CustomerName    string             `json:"customerName" binding:"required,max=200"`
	CustomerPhone   string             `json:"customerPhone" binding:"required,vnphone"`
	CustomerEmail   string             `json:"customerEmail"`
	CustomerAddress string             `json:"customerAddress" binding:"max=500"`
	PaymentMethod   string             `json:"paymentMethod" binding:"required"`
	Items           []OrderItemRequest `json:"items" binding:"omitempty,max=50,dive"`
	VehicleID       string             `json:"vehicleId"`
	Quantity        int                `json:"quantity" binding:"gte=0,lte=100"`
	Note            string             `json:"note" binding:"max=1000"`
}

// QuoteRequest prices items without ordering.
type QuoteRequest struct {
	PaymentMethod string             `json:"paymentMethod" binding:"required"`
	Items         []OrderItemRequest `json:"items" binding:"required,min=1,max=50,dive"`
}

// TrackRequest looks up an order by code and customer phone.
type TrackRequest struct {
	Code  string `json:"code" binding:"required"`
	Phone string `json:"phone" binding:"required"`
}

// CustomerResponse is the buyer snapshot of an order.
type CustomerResponse struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Email   string `json:"email,omitempty"`
	Address string `json:"address,omitempty"`
}

// OrderItemResponse is a priced order line.
type OrderItemResponse struct {
	Kind      string `json:"kind"`
	ProductID int64  `json:"productId"`
	Name      string `json:"name"`
	UnitPrice int64  `json:"unitPrice"`
	Discount  int64  `json:"discount"`
	Quantity  int    `json:"quantity"`
}

// OrderResponse is the public view of an order.
type OrderResponse struct {
	Code            string              `json:"code"`
	Type            string              `json:"type"`
	Status          string              `json:"status"`
	PaymentStatus   string              `json:"paymentStatus"`
	PaymentMethod   string              `json:"paymentMethod"`
	Customer        CustomerResponse    `json:"customer"`
	Items           []OrderItemResponse `json:"items"`
	BasePrice       int64               `json:"basePrice"`
	Discount        int64               `json:"discount"`
	VAT             int64               `json:"vat"`
	TotalAmount     int64               `json:"totalAmount"`
	DepositAmount   int64               `json:"depositAmount"`
	RemainingAmount int64               `json:"remainingAmount"`
	Note            string              `json:"note,omitempty"`
	CreatedAt       time.Time           `json:"createdAt"`
}

// CreateOrderResponse wraps the stored order. Deduped marks a repeat
// submission; Order is omitted unless the caller owns the earlier order.
type CreateOrderResponse struct {
	Order   *OrderResponse `json:"order,omitempty"`
	Deduped bool           `json:"deduped"`
	Skipped []string       `json:"skipped,omitempty"`
}

// QuoteLineResponse is one priced line of a quote.
type QuoteLineResponse struct {
	Kind            string  `json:"kind"`
	ProductID       int64   `json:"productId"`
	Name            string  `json:"name"`
	UnitPrice       int64   `json:"unitPrice"`
	UnitDiscount    int64   `json:"unitDiscount"`
	DiscountPercent float64 `json:"discountPercent"`
	Quantity        int     `json:"quantity"`
}

// QuoteResponse is a price preview.
type QuoteResponse struct {
	BasePrice       int64               `json:"basePrice"`
	Discount        int64               `json:"discount"`
	DiscountPercent float64             `json:"discountPercent"`
	VAT             int64               `json:"vat"`
	TotalAmount     int64               `json:"totalAmount"`
	DepositAmount   int64               `json:"depositAmount"`
	RemainingAmount int64               `json:"remainingAmount"`
	Lines           []QuoteLineResponse `json:"lines"`
	Skipped         []string            `json:"skipped,omitempty"`
}

// NewOrderResponse maps a domain order.
func NewOrderResponse(o *model.Order) OrderResponse {
	items := make([]OrderItemResponse, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, OrderItemResponse{
			Kind:      string(it.Kind),
			ProductID: it.ProductID,
			Name:      it.Name,
			UnitPrice: it.UnitPrice,
			Discount:  it.Discount,
			Quantity:  it.Quantity,
		})
	}
	return OrderResponse{
		Code:          o.Code,
		Type:          string(o.Type),
		Status:        string(o.Status),
		PaymentStatus: string(o.PaymentStatus),
		PaymentMethod: string(o.PaymentMethod),
		Customer: CustomerResponse{
			Name:    o.Customer.Name,
			Phone:   o.Customer.Phone,
			Email:   o.Customer.Email,
			Address: o.Customer.Address,
		},
		Items:           items,
		BasePrice:       o.BasePrice,
		Discount:        o.Discount,
		VAT:             o.VAT,
		TotalAmount:     o.TotalAmount,
		DepositAmount:   o.DepositAmount,
		RemainingAmount: o.RemainingAmount,
		Note:            o.Note,
		CreatedAt:       o.CreatedAt,
	}
}

// NewQuoteResponse maps a pricing quote.
func NewQuoteResponse(q *model.Quote) QuoteResponse {
	lines := make([]QuoteLineResponse, 0, len(q.Lines))
	for _, l := range q.Lines {
		lines = append(lines, QuoteLineResponse{
			Kind:            string(l.Kind),
			ProductID:       l.ProductID,
			Name:            l.Name,
			UnitPrice:       l.UnitPrice,
			UnitDiscount:    l.UnitDiscount,
			DiscountPercent: l.DiscountPercent,
			Quantity:        l.Quantity,
		})
	}
	return QuoteResponse{
		BasePrice:       q.BasePrice,
		Discount:        q.Discount,
		DiscountPercent: q.DiscountPercent,
		VAT:             q.VAT,
		TotalAmount:     q.TotalAmount,
		DepositAmount:   q.DepositAmount,
		RemainingAmount: q.RemainingAmount,
		Lines:           lines,
		Skipped:         RefStrings(q.Skipped),
	}
}

// RefStrings renders catalog refs for clients.
func RefStrings(refs []model.CatalogRef) []string {
	if len(refs) == 0 {
		return nil
	}
	out := make([]string, 0, len(refs))
	for _, r := range refs {
		out = append(out, r.String())
	}
	return out
}
