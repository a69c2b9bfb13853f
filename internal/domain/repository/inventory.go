package repository

import (
	"context"

	"github.com/Linh22400/website-ban-xe-dien-sub000/internal/domain/model"
)

// InventoryRepository is the outbox of deferred stock decrements.
type InventoryRepository interface {
	Enqueue(ctx context.Context, adjustments []model.InventoryAdjustment) error
	ClaimPending(ctx context.Context, limit int) ([]model.InventoryAdjustment, error)
	// Apply decrements stock and marks the adjustment applied in one step.
	Apply(ctx context.Context, adjustment model.InventoryAdjustment) error
	MarkFailed(ctx context.Context, id int64, final bool, cause string) error
}
