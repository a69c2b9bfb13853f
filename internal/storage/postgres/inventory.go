package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	domainErrors "github.com/Linh22400/website-ban-xe-dien-sub000/internal/domain/errors"
	"github.com/Linh22400/website-ban-xe-dien-sub000/internal/domain/model"
)

// claimLease is how long a claimed adjustment stays invisible to other
// workers before it is considered abandoned.
const claimLease = 5 * time.Minute

type inventoryRepository struct {
	storage *Storage
}

func (r *inventoryRepository) Enqueue(ctx context.Context, adjustments []model.InventoryAdjustment) error {
	if len(adjustments) == 0 {
		return nil
	}
	const query = `INSERT INTO inventory_adjustments (order_id, vehicle_id, quantity) VALUES ($1, $2, $3)`
	return r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		for _, adj := range adjustments {
			if _, err := tx.Exec(ctx, query, adj.OrderID, adj.VehicleID, adj.Quantity); err != nil {
				return err
			}
		}
		return nil
	})
}

// ClaimPending locks a batch of pending adjustments, skipping rows held by
// other workers, and marks them processing.
func (r *inventoryRepository) ClaimPending(ctx context.Context, limit int) ([]model.InventoryAdjustment, error) {
	const selectQuery = `SELECT id, order_id, vehicle_id, quantity, attempts, created_at
        FROM inventory_adjustments
        WHERE status = 'pending' OR (status = 'processing' AND updated_at < $2)
        ORDER BY id
        LIMIT $1
        FOR UPDATE SKIP LOCKED`
	const claimQuery = `UPDATE inventory_adjustments SET status='processing', updated_at=NOW() WHERE id=$1`

	staleBefore := r.storage.now().Add(-claimLease)
	var batch []model.InventoryAdjustment
	err := r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, selectQuery, limit, staleBefore)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var a model.InventoryAdjustment
			if err := rows.Scan(&a.ID, &a.OrderID, &a.VehicleID, &a.Quantity, &a.Attempts, &a.CreatedAt); err != nil {
				return err
			}
			batch = append(batch, a)
		}
		if err := rows.Err(); err != nil {
			return err
		}
		rows.Close()

		for _, a := range batch {
			if _, err := tx.Exec(ctx, claimQuery, a.ID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return batch, nil
}

// Apply decrements stock and marks the adjustment applied together. Stock never
// drops below zero and unlimited stock stays unlimited. Applying an adjustment
// twice is a no-op.
func (r *inventoryRepository) Apply(ctx context.Context, adj model.InventoryAdjustment) error {
	const markQuery = `UPDATE inventory_adjustments SET status='applied', updated_at=NOW()
        WHERE id=$1 AND status <> 'applied'`
	const stockQuery = `UPDATE vehicles
        SET stock = CASE WHEN stock IS NULL THEN NULL ELSE GREATEST(stock - $2, 0) END,
            sold = sold + $2
        WHERE id=$1`

	return r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, markQuery, adj.ID)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return nil
		}

		tag, err = tx.Exec(ctx, stockQuery, adj.VehicleID, adj.Quantity)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("vehicle %d: %w", adj.VehicleID, domainErrors.ErrNotFound)
		}
		return nil
	})
}

// MarkFailed records a failed attempt. Final failures leave the queue.
func (r *inventoryRepository) MarkFailed(ctx context.Context, id int64, final bool, cause string) error {
	const query = `UPDATE inventory_adjustments
        SET attempts = attempts + 1,
            status = CASE WHEN $2 THEN 'failed' ELSE 'pending' END,
            last_error = $3,
            updated_at = NOW()
        WHERE id=$1`
	_, err := r.storage.pool.Exec(ctx, query, id, final, cause)
	return err
}
