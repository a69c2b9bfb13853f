package model

// QuoteLine is the priced result for one resolved line item.
type QuoteLine struct {
	Kind            ItemKind
	ProductID       int64
	Name            string
	UnitPrice       int64
	UnitDiscount    int64
	DiscountPercent float64
	Quantity        int
}

// Quote is the output of the pricing engine. It is computed per request and
// never cached.
type Quote struct {
	BasePrice       int64
	Discount        int64
	PreVATAmount    int64
	VAT             int64
	TotalAmount     int64
	DepositAmount   int64
	RemainingAmount int64
	DiscountPercent float64
	Lines           []QuoteLine
	Skipped         []CatalogRef
}

// OrderType derives the dedupe bucket from the priced lines.
func (q *Quote) OrderType() OrderType {
	for _, l := range q.Lines {
		if l.Kind == ItemKindVehicle {
			return OrderTypeVehicle
		}
	}
	return OrderTypeAccessory
}

// Items converts quote lines into persisted order items.
func (q *Quote) Items() []OrderItem {
	items := make([]OrderItem, 0, len(q.Lines))
	for _, l := range q.Lines {
		items = append(items, OrderItem{
			Kind:      l.Kind,
			ProductID: l.ProductID,
			Name:      l.Name,
			UnitPrice: l.UnitPrice,
			Discount:  l.UnitDiscount,
			Quantity:  l.Quantity,
		})
	}
	return items
}

// Adjustments lists the stock decrements implied by the vehicle lines.
func (q *Quote) Adjustments(orderID int64) []InventoryAdjustment {
	var out []InventoryAdjustment
	for _, l := range q.Lines {
		if l.Kind != ItemKindVehicle {
			continue
		}
		out = append(out, InventoryAdjustment{OrderID: orderID, VehicleID: l.ProductID, Quantity: l.Quantity})
	}
	return out
}
