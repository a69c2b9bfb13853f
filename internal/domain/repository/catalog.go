package repository

import (
	"context"
	"time"

	"github.com/Linh22400/website-ban-xe-dien-sub000/internal/domain/model"
)

// CatalogRepository reads the pricing-relevant view of the catalog.
type CatalogRepository interface {
	FindVehicle(ctx context.Context, ref model.CatalogRef) (*model.Vehicle, error)
	FindAccessory(ctx context.Context, ref model.CatalogRef) (*model.Accessory, error)
	FindActivePromotions(ctx context.Context, vehicleID int64, now time.Time) ([]model.Promotion, error)
}
