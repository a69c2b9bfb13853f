package repository

import (
	"context"
	"time"

	"github.com/Linh22400/website-ban-xe-dien-sub000/internal/domain/model"
)

// OrderRepository describes persistence operations with orders.
type OrderRepository interface {
	Create(ctx context.Context, order *model.Order) (*model.Order, error)
	GetByCode(ctx context.Context, code string) (*model.Order, error)
	ListByUser(ctx context.Context, userID int64) ([]model.Order, error)
	FindRecentByPhoneAndType(ctx context.Context, phone string, orderType model.OrderType, since time.Time) (*model.Order, error)
}
