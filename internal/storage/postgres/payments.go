package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	domainErrors "github.com/Linh22400/website-ban-xe-dien-sub000/internal/domain/errors"
	"github.com/Linh22400/website-ban-xe-dien-sub000/internal/domain/model"
)

type paymentRepository struct {
	storage *Storage
}

func (r *paymentRepository) CreatePayment(ctx context.Context, p *model.Payment) (*model.Payment, error) {
	const query = `INSERT INTO payments (order_id, gateway, request_id, amount, status, pay_url)
        VALUES ($1, $2, $3, $4, $5, $6) RETURNING id, created_at, updated_at`
	stored := *p
	err := r.storage.pool.QueryRow(ctx, query, p.OrderID, p.Gateway, p.RequestID, p.Amount, p.Status, p.PayURL).
		Scan(&stored.ID, &stored.CreatedAt, &stored.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domainErrors.ErrAlreadyExists
		}
		return nil, err
	}
	return &stored, nil
}

func (r *paymentRepository) UpdatePayURL(ctx context.Context, paymentID int64, payURL string) error {
	const query = `UPDATE payments SET pay_url=$2, updated_at=NOW() WHERE id=$1`
	tag, err := r.storage.pool.Exec(ctx, query, paymentID, payURL)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domainErrors.ErrNotFound
	}
	return nil
}

func (r *paymentRepository) LatestPending(ctx context.Context, orderID int64, gateway model.Gateway) (*model.Payment, error) {
	const query = `SELECT id, order_id, gateway, request_id, amount, status, pay_url, created_at, updated_at
        FROM payments WHERE order_id=$1 AND gateway=$2 AND status='pending'
        ORDER BY id DESC LIMIT 1`
	var p model.Payment
	err := r.storage.pool.QueryRow(ctx, query, orderID, gateway).Scan(
		&p.ID, &p.OrderID, &p.Gateway, &p.RequestID, &p.Amount, &p.Status, &p.PayURL, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

// ApplyResult locks the order row, so of two concurrent callbacks only the
// first one sees a non-terminal status.
func (r *paymentRepository) ApplyResult(ctx context.Context, orderID int64, status model.PaymentStatus, tx model.PaymentTransaction) (bool, error) {
	const lockOrder = `SELECT payment_status FROM orders WHERE id=$1 FOR UPDATE`
	const insertTx = `INSERT INTO payment_transactions
            (order_id, payment_id, transaction_id, gateway, amount, status, gateway_response)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        ON CONFLICT (gateway, transaction_id) DO NOTHING
        RETURNING id`
	const updateOrder = `UPDATE orders SET payment_status=$2, updated_at=NOW() WHERE id=$1`
	const updatePayment = `UPDATE payments SET status=$2, updated_at=NOW() WHERE id=$1`

	applied := false
	err := r.storage.WithinTransaction(ctx, func(dbTx pgx.Tx) error {
		var current model.PaymentStatus
		if err := dbTx.QueryRow(ctx, lockOrder, orderID).Scan(&current); err != nil {
			return notFound(err)
		}
		if current.Terminal() {
			return nil
		}

		var id int64
		err := dbTx.QueryRow(ctx, insertTx,
			orderID, tx.PaymentID, tx.TransactionID, tx.Gateway, tx.Amount, tx.Status, tx.GatewayResponse,
		).Scan(&id)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil
			}
			return err
		}

		if _, err := dbTx.Exec(ctx, updateOrder, orderID, status); err != nil {
			return err
		}
		if tx.PaymentID != nil {
			if _, err := dbTx.Exec(ctx, updatePayment, *tx.PaymentID, tx.Status); err != nil {
				return err
			}
		}
		applied = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return applied, nil
}

func (r *paymentRepository) ListTransactions(ctx context.Context, orderID int64) ([]model.PaymentTransaction, error) {
	const query = `SELECT id, order_id, payment_id, transaction_id, gateway, amount, status, gateway_response, created_at
        FROM payment_transactions WHERE order_id=$1 ORDER BY id`
	rows, err := r.storage.pool.Query(ctx, query, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.PaymentTransaction
	for rows.Next() {
		var t model.PaymentTransaction
		if err := rows.Scan(&t.ID, &t.OrderID, &t.PaymentID, &t.TransactionID, &t.Gateway, &t.Amount, &t.Status, &t.GatewayResponse, &t.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
