package model

import (
	"strconv"
	"time"
)

// ItemKind distinguishes catalog item families.
type ItemKind string

const (
	ItemKindVehicle   ItemKind = "vehicle"
	ItemKindAccessory ItemKind = "accessory"
)

// RefKind tells which identifier a CatalogRef carries.
type RefKind int

const (
	RefInternal RefKind = iota
	RefExternal
)

// CatalogRef identifies a catalog item either by its numeric row id or by its
// external-facing document id. An all-digit ref is ambiguous: it keeps its text
// in ExternalID as well, and lookups prefer the row id.
type CatalogRef struct {
	Kind       RefKind
	InternalID int64
	ExternalID string
}

// ParseCatalogRef picks the identifier variant from its textual form.
func ParseCatalogRef(raw string) CatalogRef {
	if id, err := strconv.ParseInt(raw, 10, 64); err == nil && id > 0 {
		return CatalogRef{Kind: RefInternal, InternalID: id, ExternalID: raw}
	}
	return CatalogRef{Kind: RefExternal, ExternalID: raw}
}

func (r CatalogRef) String() string {
	if r.Kind == RefInternal {
		return strconv.FormatInt(r.InternalID, 10)
	}
	return r.ExternalID
}

// Vehicle is the pricing-relevant view of a vehicle. Nil Stock means unlimited.
type Vehicle struct {
	ID         int64
	ExternalID string
	Name       string
	Price      int64
	Stock      *int
	Sold       int
}

// Accessory is the pricing-relevant view of an accessory.
type Accessory struct {
	ID         int64
	ExternalID string
	Name       string
	Price      int64
}

// Promotion is a percentage discount linked to a vehicle.
type Promotion struct {
	ID              int64
	VehicleID       int64
	DiscountPercent float64
	Active          bool
	ExpiresAt       *time.Time
}

// LineItem is a requested order line before pricing.
type LineItem struct {
	Kind     ItemKind
	Ref      CatalogRef
	Quantity int
}

// InventoryAdjustment is a deferred stock decrement queued after order creation.
type InventoryAdjustment struct {
	ID        int64
	OrderID   int64
	VehicleID int64
	Quantity  int
	Attempts  int
	CreatedAt time.Time
}
