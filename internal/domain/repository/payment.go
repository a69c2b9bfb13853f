package repository

import (
	"context"

	"github.com/Linh22400/website-ban-xe-dien-sub000/internal/domain/model"
)

// PaymentRepository persists payment attempts and their transactions.
type PaymentRepository interface {
	CreatePayment(ctx context.Context, payment *model.Payment) (*model.Payment, error)
	UpdatePayURL(ctx context.Context, paymentID int64, payURL string) error
	LatestPending(ctx context.Context, orderID int64, gateway model.Gateway) (*model.Payment, error)
	// ApplyResult sets the order payment status and appends tx unless the
	// order already reached a terminal status. Applied is false in that case.
	ApplyResult(ctx context.Context, orderID int64, status model.PaymentStatus, tx model.PaymentTransaction) (applied bool, err error)
	ListTransactions(ctx context.Context, orderID int64) ([]model.PaymentTransaction, error)
}
