package postgres

import (
	"context"
	"time"

	"github.com/Linh22400/website-ban-xe-dien-sub000/internal/domain/model"
)

type catalogRepository struct {
	storage *Storage
}

// refFilter returns the WHERE clause and arguments selecting ref. A numeric
// ref matches either column, with the row id winning.
func refFilter(ref model.CatalogRef) (string, []any) {
	if ref.Kind == model.RefInternal {
		return "(id=$1 OR external_id=$2) ORDER BY (id=$1) DESC LIMIT 1", []any{ref.InternalID, ref.ExternalID}
	}
	return "external_id=$1", []any{ref.ExternalID}
}

func (r *catalogRepository) FindVehicle(ctx context.Context, ref model.CatalogRef) (*model.Vehicle, error) {
	where, args := refFilter(ref)
	query := `SELECT id, COALESCE(external_id, ''), name, price, stock, sold FROM vehicles WHERE ` + where
	var v model.Vehicle
	err := r.storage.pool.QueryRow(ctx, query, args...).Scan(&v.ID, &v.ExternalID, &v.Name, &v.Price, &v.Stock, &v.Sold)
	if err != nil {
		return nil, notFound(err)
	}
	return &v, nil
}

func (r *catalogRepository) FindAccessory(ctx context.Context, ref model.CatalogRef) (*model.Accessory, error) {
	where, args := refFilter(ref)
	query := `SELECT id, COALESCE(external_id, ''), name, price FROM accessories WHERE ` + where
	var a model.Accessory
	err := r.storage.pool.QueryRow(ctx, query, args...).Scan(&a.ID, &a.ExternalID, &a.Name, &a.Price)
	if err != nil {
		return nil, notFound(err)
	}
	return &a, nil
}

func (r *catalogRepository) FindActivePromotions(ctx context.Context, vehicleID int64, now time.Time) ([]model.Promotion, error) {
	const query = `SELECT id, vehicle_id, discount_percent, active, expires_at FROM promotions
        WHERE vehicle_id=$1 AND active AND (expires_at IS NULL OR expires_at > $2)`
	rows, err := r.storage.pool.Query(ctx, query, vehicleID, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.Promotion
	for rows.Next() {
		var p model.Promotion
		if err := rows.Scan(&p.ID, &p.VehicleID, &p.DiscountPercent, &p.Active, &p.ExpiresAt); err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
