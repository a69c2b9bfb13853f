package model

import "time"

// Gateway names a supported payment provider.
type Gateway string

const (
	GatewayMoMo  Gateway = "momo"
	GatewayVNPay Gateway = "vnpay"
)

// TransactionStatus is the state recorded on an immutable transaction row.
type TransactionStatus string

const (
	TransactionPending    TransactionStatus = "pending"
	TransactionProcessing TransactionStatus = "processing"
	TransactionSuccess    TransactionStatus = "success"
	TransactionFailed     TransactionStatus = "failed"
	TransactionCancelled  TransactionStatus = "cancelled"
	TransactionRefunded   TransactionStatus = "refunded"
)

// Payment is one attempt to collect money for an order through a gateway.
type Payment struct {
	ID        int64
	OrderID   int64
	Gateway   Gateway
	RequestID string
	Amount    int64
	Status    TransactionStatus
	PayURL    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// PaymentTransaction is an append-only record of a gateway result.
type PaymentTransaction struct {
	ID              int64
	OrderID         int64
	PaymentID       *int64
	TransactionID   string
	Gateway         Gateway
	Amount          int64
	Status          TransactionStatus
	GatewayResponse []byte
	CreatedAt       time.Time
}

// CallbackResult is a gateway callback whose signature has been verified.
type CallbackResult struct {
	Gateway       Gateway
	OrderCode     string
	TransactionID string
	Amount        int64
	Success       bool
	ResultCode    string
	Message       string
	Raw           []byte
}
