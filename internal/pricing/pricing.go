package pricing

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ErrInvalidDiscount is returned for discount amounts outside the accepted range.
var ErrInvalidDiscount = errors.New("invalid discount")

var hundred = decimal.NewFromInt(100)

// Item is the minimal line view needed for cart arithmetic. Negate marks
// lines whose contribution to totals is subtracted (returns, redeemed
// vouchers).
type Item struct {
	UnitPrice decimal.Decimal
	Quantity  decimal.Decimal
	Original  decimal.Decimal
	HasOrig   bool
	Negate    bool
}

// Summary aggregates computed cart components. Discount is informational:
// Subtotal already reflects discounted unit prices, so Total == Subtotal.
type Summary struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Discount decimal.Decimal `json:"discountTotal"`
	Total    decimal.Decimal `json:"total"`
}

// LineTotal computes one line's signed contribution to the cart.
func LineTotal(it Item) decimal.Decimal {
	total := it.UnitPrice.Mul(it.Quantity)
	if it.Negate {
		return total.Neg()
	}
	return total
}

// Compute calculates cart totals. Return and redeemed-voucher lines
// contribute negatively; the discount total sums price drops on discounted
// lines for receipt display only.
func Compute(items []Item) Summary {
	subtotal := decimal.Zero
	discount := decimal.Zero
	for _, it := range items {
		subtotal = subtotal.Add(LineTotal(it))
		if it.HasOrig {
			discount = discount.Add(it.Original.Sub(it.UnitPrice).Mul(it.Quantity))
		}
	}
	return Summary{Subtotal: subtotal, Discount: discount, Total: subtotal}
}

// Discount computes the new unit price and canonical percentage for a
// discount applied against the original (pre-discount) unit price. Repeated
// discounts must always pass the stored original so they rebase instead of
// compounding.
func Discount(original, amount decimal.Decimal, isPercent bool) (unit, percent decimal.Decimal, err error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, decimal.Zero, fmt.Errorf("amount must be positive: %w", ErrInvalidDiscount)
	}
	if isPercent {
		if amount.GreaterThan(hundred) {
			return decimal.Zero, decimal.Zero, fmt.Errorf("percentage above 100: %w", ErrInvalidDiscount)
		}
		unit = original.Mul(hundred.Sub(amount)).Div(hundred)
		return unit, amount, nil
	}
	unit = original.Sub(amount)
	if unit.IsNegative() {
		unit = decimal.Zero
	}
	if original.IsPositive() {
		percent = original.Sub(unit).Div(original).Mul(hundred)
	}
	return unit, percent, nil
}

// Round2 rounds a monetary amount to two decimals for presentation.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}
