// Package pricing turns requested line items into a priced quote.
package pricing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	domainErrors "github.com/Linh22400/website-ban-xe-dien-sub000/internal/domain/errors"
	"github.com/Linh22400/website-ban-xe-dien-sub000/internal/domain/model"
	"github.com/Linh22400/website-ban-xe-dien-sub000/internal/domain/repository"
	"github.com/Linh22400/website-ban-xe-dien-sub000/internal/metrics"
)

const DefaultDepositCap int64 = 3_000_000

var (
	vatRate         = decimal.RequireFromString("0.10")
	installmentRate = decimal.RequireFromString("0.30")
	hundred         = decimal.NewFromInt(100)
)

// Engine prices orders against the catalog.
type Engine struct {
	catalog    repository.CatalogRepository
	depositCap int64
	logger     *slog.Logger
	metrics    *metrics.Metrics
}

// NewEngine constructs Engine. A non-positive depositCap falls back to DefaultDepositCap.
func NewEngine(catalog repository.CatalogRepository, depositCap int64, logger *slog.Logger, m *metrics.Metrics) *Engine {
	if depositCap <= 0 {
		depositCap = DefaultDepositCap
	}
	return &Engine{catalog: catalog, depositCap: depositCap, logger: logger, metrics: m}
}

// Price resolves every item, applies the best promotion per vehicle, adds VAT
// and splits the total by payment method. Stock is checked for all vehicle
// lines before failing so the error names every short product.
func (e *Engine) Price(ctx context.Context, items []model.LineItem, method model.PaymentMethod, now time.Time) (*model.Quote, error) {
	if len(items) == 0 {
		return nil, domainErrors.Invalid("items", "at least one item is required")
	}
	if !method.Valid() {
		return nil, domainErrors.Invalid("paymentMethod", "must be deposit, full_payment or installment")
	}

	quote := &model.Quote{}
	var (
		base, discount decimal.Decimal
		short          []string
		requested      = make(map[int64]int)
		vehicles       = make(map[int64]*model.Vehicle)
		vehicleOrder   []int64
	)

	for i, item := range items {
		if item.Quantity <= 0 {
			return nil, domainErrors.Invalid(fmt.Sprintf("items[%d].quantity", i), "must be positive")
		}
		qty := decimal.NewFromInt(int64(item.Quantity))

		switch item.Kind {
		case model.ItemKindVehicle:
			v, err := e.catalog.FindVehicle(ctx, item.Ref)
			if err != nil {
				if errors.Is(err, domainErrors.ErrNotFound) {
					return nil, domainErrors.Invalid(fmt.Sprintf("items[%d].productId", i), "unknown vehicle "+item.Ref.String())
				}
				return nil, fmt.Errorf("find vehicle: %w", err)
			}
			if _, seen := vehicles[v.ID]; !seen {
				vehicles[v.ID] = v
				vehicleOrder = append(vehicleOrder, v.ID)
			}
			requested[v.ID] += item.Quantity

			percent, err := e.bestPromotion(ctx, v.ID, now)
			if err != nil {
				return nil, err
			}
			price := decimal.NewFromInt(v.Price)
			unitDiscount := percentOf(price, percent)

			base = base.Add(price.Mul(qty))
			discount = discount.Add(unitDiscount.Mul(qty))
			quote.Lines = append(quote.Lines, model.QuoteLine{
				Kind:            model.ItemKindVehicle,
				ProductID:       v.ID,
				Name:            v.Name,
				UnitPrice:       v.Price,
				UnitDiscount:    unitDiscount.IntPart(),
				DiscountPercent: percent.InexactFloat64(),
				Quantity:        item.Quantity,
			})

		case model.ItemKindAccessory:
			a, err := e.catalog.FindAccessory(ctx, item.Ref)
			if err != nil {
				if errors.Is(err, domainErrors.ErrNotFound) {
					e.logger.Warn("skipping unresolved accessory", slog.String("ref", item.Ref.String()))
					e.metrics.UnresolvedItems.WithLabelValues(string(model.ItemKindAccessory)).Inc()
					quote.Skipped = append(quote.Skipped, item.Ref)
					continue
				}
				return nil, fmt.Errorf("find accessory: %w", err)
			}
			base = base.Add(decimal.NewFromInt(a.Price).Mul(qty))
			quote.Lines = append(quote.Lines, model.QuoteLine{
				Kind:      model.ItemKindAccessory,
				ProductID: a.ID,
				Name:      a.Name,
				UnitPrice: a.Price,
				Quantity:  item.Quantity,
			})

		default:
			return nil, domainErrors.Invalid(fmt.Sprintf("items[%d].type", i), "must be vehicle or accessory")
		}
	}

	for _, id := range vehicleOrder {
		v := vehicles[id]
		if v.Stock != nil && requested[id] > *v.Stock {
			short = append(short, fmt.Sprintf("%s (requested %d, available %d)", v.Name, requested[id], *v.Stock))
		}
	}
	if len(short) > 0 {
		return nil, &domainErrors.InsufficientStockError{Products: short}
	}
	if len(quote.Lines) == 0 {
		return nil, domainErrors.Invalid("items", "no item could be resolved")
	}

	for _, line := range quote.Lines {
		if line.Kind == model.ItemKindVehicle {
			quote.DiscountPercent = line.DiscountPercent
			break
		}
	}

	preVAT := base.Sub(discount)
	vat := roundVND(preVAT.Mul(vatRate))
	total := preVAT.Add(vat)

	var deposit decimal.Decimal
	switch method {
	case model.PaymentMethodDeposit:
		deposit = decimal.Min(decimal.NewFromInt(e.depositCap), total)
	case model.PaymentMethodFullPayment:
		deposit = total
	case model.PaymentMethodInstallment:
		deposit = roundVND(total.Mul(installmentRate))
	}

	quote.BasePrice = base.IntPart()
	quote.Discount = discount.IntPart()
	quote.PreVATAmount = preVAT.IntPart()
	quote.VAT = vat.IntPart()
	quote.TotalAmount = total.IntPart()
	quote.DepositAmount = deposit.IntPart()
	quote.RemainingAmount = total.Sub(deposit).IntPart()
	return quote, nil
}

// bestPromotion returns the highest active, unexpired discount percent linked
// to the vehicle, clamped to [0, 100]. Zero when none applies.
func (e *Engine) bestPromotion(ctx context.Context, vehicleID int64, now time.Time) (decimal.Decimal, error) {
	promos, err := e.catalog.FindActivePromotions(ctx, vehicleID, now)
	if err != nil {
		return decimal.Zero, fmt.Errorf("find promotions: %w", err)
	}

	best := decimal.Zero
	for _, p := range promos {
		if !p.Active || p.VehicleID != vehicleID {
			continue
		}
		if p.ExpiresAt != nil && !now.Before(*p.ExpiresAt) {
			continue
		}
		if pct := clampPercent(decimal.NewFromFloat(p.DiscountPercent)); pct.GreaterThan(best) {
			best = pct
		}
	}
	return best, nil
}

func clampPercent(p decimal.Decimal) decimal.Decimal {
	if p.IsNegative() {
		return decimal.Zero
	}
	if p.GreaterThan(hundred) {
		return hundred
	}
	return p
}

func percentOf(amount, percent decimal.Decimal) decimal.Decimal {
	return roundVND(amount.Mul(percent).Div(hundred))
}

// roundVND rounds to whole dong, halves away from zero.
func roundVND(d decimal.Decimal) decimal.Decimal {
	return d.Round(0)
}
