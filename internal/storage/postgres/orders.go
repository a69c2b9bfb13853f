package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	domainErrors "github.com/Linh22400/website-ban-xe-dien-sub000/internal/domain/errors"
	"github.com/Linh22400/website-ban-xe-dien-sub000/internal/domain/model"
)

type orderRepository struct {
	storage *Storage
}

const orderColumns = `id, code, user_id, order_type, customer_name, customer_phone, customer_email,
    customer_address, payment_method, payment_status, status, base_price, discount, vat,
    total_amount, deposit_amount, remaining_amount, note, created_at, updated_at`

func scanOrder(row pgx.Row) (*model.Order, error) {
	var o model.Order
	err := row.Scan(
		&o.ID, &o.Code, &o.UserID, &o.Type,
		&o.Customer.Name, &o.Customer.Phone, &o.Customer.Email, &o.Customer.Address,
		&o.PaymentMethod, &o.PaymentStatus, &o.Status,
		&o.BasePrice, &o.Discount, &o.VAT, &o.TotalAmount, &o.DepositAmount, &o.RemainingAmount,
		&o.Note, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// Create writes the order and its items in one transaction. A duplicate code
// is reported as ErrAlreadyExists.
func (r *orderRepository) Create(ctx context.Context, order *model.Order) (*model.Order, error) {
	const insertOrder = `INSERT INTO orders (code, user_id, order_type, customer_name, customer_phone,
            customer_email, customer_address, payment_method, payment_status, status, base_price,
            discount, vat, total_amount, deposit_amount, remaining_amount, note, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
        RETURNING id, created_at, updated_at`
	const insertItem = `INSERT INTO order_items (order_id, kind, product_id, name, unit_price, discount, quantity)
        VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`

	stored := *order
	stored.Items = make([]model.OrderItem, len(order.Items))
	copy(stored.Items, order.Items)
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = r.storage.now()
	}

	err := r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, insertOrder,
			stored.Code, stored.UserID, stored.Type,
			stored.Customer.Name, stored.Customer.Phone, stored.Customer.Email, stored.Customer.Address,
			stored.PaymentMethod, stored.PaymentStatus, stored.Status,
			stored.BasePrice, stored.Discount, stored.VAT, stored.TotalAmount, stored.DepositAmount, stored.RemainingAmount,
			stored.Note, stored.CreatedAt,
		).Scan(&stored.ID, &stored.CreatedAt, &stored.UpdatedAt)
		if err != nil {
			if isUniqueViolation(err) {
				return domainErrors.ErrAlreadyExists
			}
			return err
		}

		for i := range stored.Items {
			item := &stored.Items[i]
			item.OrderID = stored.ID
			if err := tx.QueryRow(ctx, insertItem,
				item.OrderID, item.Kind, item.ProductID, item.Name, item.UnitPrice, item.Discount, item.Quantity,
			).Scan(&item.ID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &stored, nil
}

func (r *orderRepository) GetByCode(ctx context.Context, code string) (*model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE code=$1`
	order, err := scanOrder(r.storage.pool.QueryRow(ctx, query, code))
	if err != nil {
		return nil, notFound(err)
	}
	if err := r.attachItems(ctx, []*model.Order{order}); err != nil {
		return nil, err
	}
	return order, nil
}

func (r *orderRepository) ListByUser(ctx context.Context, userID int64) ([]model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE user_id=$1 ORDER BY created_at DESC`
	rows, err := r.storage.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var (
		result []model.Order
		refs   []*model.Order
	)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()

	for i := range result {
		refs = append(refs, &result[i])
	}
	if err := r.attachItems(ctx, refs); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *orderRepository) FindRecentByPhoneAndType(ctx context.Context, phone string, orderType model.OrderType, since time.Time) (*model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders
        WHERE customer_phone=$1 AND order_type=$2 AND created_at >= $3
        ORDER BY created_at DESC LIMIT 1`
	order, err := scanOrder(r.storage.pool.QueryRow(ctx, query, phone, orderType, since))
	if err != nil {
		return nil, notFound(err)
	}
	if err := r.attachItems(ctx, []*model.Order{order}); err != nil {
		return nil, err
	}
	return order, nil
}

func (r *orderRepository) attachItems(ctx context.Context, orders []*model.Order) error {
	if len(orders) == 0 {
		return nil
	}
	ids := make([]int64, 0, len(orders))
	byID := make(map[int64]*model.Order, len(orders))
	for _, o := range orders {
		ids = append(ids, o.ID)
		byID[o.ID] = o
	}

	const query = `SELECT id, order_id, kind, product_id, name, unit_price, discount, quantity
        FROM order_items WHERE order_id = ANY($1) ORDER BY id`
	rows, err := r.storage.pool.Query(ctx, query, ids)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var it model.OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.Kind, &it.ProductID, &it.Name, &it.UnitPrice, &it.Discount, &it.Quantity); err != nil {
			return err
		}
		if o, ok := byID[it.OrderID]; ok {
			o.Items = append(o.Items, it)
		}
	}
	return rows.Err()
}
