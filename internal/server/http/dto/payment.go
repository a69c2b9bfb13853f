package dto

// CreatePaymentRequest starts a gateway payment for an order.
type CreatePaymentRequest struct {
	OrderCode string `json:"orderCode" binding:"required"`
	Phone     string `json:"phone" binding:"required,vnphone"`
}

// CreatePaymentResponse returns where to send the customer.
type CreatePaymentResponse struct {
	Gateway   string `json:"gateway"`
	OrderCode string `json:"orderCode"`
	RequestID string `json:"requestId"`
	Amount    int64  `json:"amount"`
	PayURL    string `json:"payUrl"`
}
