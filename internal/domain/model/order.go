package model

import "time"

// PaymentStatus describes the payment side of an order.
type PaymentStatus string

const (
	PaymentStatusPending             PaymentStatus = "pending"
	PaymentStatusPendingVerification PaymentStatus = "pending_verification"
	PaymentStatusPartial             PaymentStatus = "partial"
	PaymentStatusCompleted           PaymentStatus = "completed"
	PaymentStatusFailed              PaymentStatus = "failed"
	PaymentStatusRefunded            PaymentStatus = "refunded"
)

// Terminal reports whether no further gateway callback may change the status.
func (s PaymentStatus) Terminal() bool {
	return s == PaymentStatusCompleted || s == PaymentStatusRefunded
}

// OrderStatus describes fulfillment lifecycle.
type OrderStatus string

const (
	OrderStatusNew        OrderStatus = "new"
	OrderStatusConfirmed  OrderStatus = "confirmed"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// PaymentMethod selects how the total is split into deposit and remainder.
type PaymentMethod string

const (
	PaymentMethodDeposit     PaymentMethod = "deposit"
	PaymentMethodFullPayment PaymentMethod = "full_payment"
	PaymentMethodInstallment PaymentMethod = "installment"
)

// Valid reports whether the method is one of the supported values.
func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentMethodDeposit, PaymentMethodFullPayment, PaymentMethodInstallment:
		return true
	}
	return false
}

// OrderType is the dedupe bucket of an order.
type OrderType string

const (
	OrderTypeVehicle   OrderType = "vehicle"
	OrderTypeAccessory OrderType = "accessory"
)

// CustomerInfo is a snapshot of the buyer taken when the order is created.
type CustomerInfo struct {
	Name    string
	Phone   string
	Email   string
	Address string
}

// OrderItem is a priced line persisted with the order.
type OrderItem struct {
	ID        int64
	OrderID   int64
	Kind      ItemKind
	ProductID int64
	Name      string
	UnitPrice int64
	Discount  int64
	Quantity  int
}

// Order describes a storefront purchase.
type Order struct {
	ID              int64
	Code            string
	UserID          *int64
	Type            OrderType
	Customer        CustomerInfo
	Items           []OrderItem
	PaymentMethod   PaymentMethod
	PaymentStatus   PaymentStatus
	Status          OrderStatus
	BasePrice       int64
	Discount        int64
	VAT             int64
	TotalAmount     int64
	DepositAmount   int64
	RemainingAmount int64
	Note            string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
