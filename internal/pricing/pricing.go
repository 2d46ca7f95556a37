// Package pricing is the pure computation core for sale discounts. No
// persistence access: functions here operate on Sale/Product values and a
// supplied clock reading only.
package pricing

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/olatunbossun/craftcart/internal/model"
)

var hundred = decimal.NewFromInt(100)

// ComputeDiscount derives the discount amount and sale price from a price
// snapshot and a percentage:
//
//	discountAmount = originalPrice * discountPercentage / 100
//	salePrice      = max(0, originalPrice - discountAmount)
//
// Defined for percentages in [0,100]; callers validate the range first.
// Multiplication-then-subtraction order is deliberate and must not be
// refactored into an equivalent-looking expression: decimal results differ.
func ComputeDiscount(originalPrice, discountPercentage decimal.Decimal) (discountAmount, salePrice decimal.Decimal) {
	discountAmount = originalPrice.Mul(discountPercentage).Div(hundred)
	salePrice = originalPrice.Sub(discountAmount)
	if salePrice.IsNegative() {
		salePrice = decimal.Zero
	}
	return discountAmount, salePrice
}

// IsCurrentlyActive reports whether the sale is in force at the given
// instant: the explicit flag is set, now falls within [StartDate, EndDate],
// and the quantity cap (when present) is not exhausted. Re-evaluated on
// every query; the result is never stored.
func IsCurrentlyActive(sale *model.Sale, now time.Time) bool {
	if !sale.IsActive {
		return false
	}
	if now.Before(sale.StartDate) || now.After(sale.EndDate) {
		return false
	}
	if sale.MaxQuantity != nil && sale.SoldQuantity >= *sale.MaxQuantity {
		return false
	}
	return true
}

// EffectivePrice is what a buyer pays right now: the denormalized sale price
// when the product is on sale, otherwise the list price.
func EffectivePrice(p *model.Product) decimal.Decimal {
	if p.IsOnSale && p.SalePrice != nil {
		return *p.SalePrice
	}
	return p.Price
}

// DiscountAmount is the absolute saving versus list price, zero when the
// product is not on sale.
func DiscountAmount(p *model.Product) decimal.Decimal {
	if p.IsOnSale && p.SalePrice != nil {
		return p.Price.Sub(*p.SalePrice)
	}
	return decimal.Zero
}
