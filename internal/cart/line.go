package cart

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/akovac726-netizen/trgopos-retail-system/internal/pricing"
)

// Kind tags the line variant so illegal field combinations cannot be built.
type Kind string

const (
	// KindStandard is a regular EAN-scanned stock item.
	KindStandard Kind = "standard"
	// KindBakery is a bakery PLU line priced per unit.
	KindBakery Kind = "bakery"
	// KindWeighed is a scale PLU line where quantity encodes weight in kg.
	KindWeighed Kind = "weighed"
	// KindReturn is a returned item; its total is subtracted from the cart.
	KindReturn Kind = "return"
	// KindVoucher is a gift voucher line; redeemed vouchers subtract.
	KindVoucher Kind = "voucher"
)

// LineItem is one entry in the active cart. Build lines through the
// constructors below; they are the only place the variant invariants are
// enforced.
type LineItem struct {
	ID                string          `json:"id"`
	Kind              Kind            `json:"kind"`
	Code              string          `json:"code"`
	Name              string          `json:"name"`
	UnitPrice         decimal.Decimal `json:"unitPrice"`
	Quantity          decimal.Decimal `json:"quantity"`
	OriginalUnitPrice decimal.Decimal `json:"originalUnitPrice,omitzero"`
	DiscountPercent   decimal.Decimal `json:"discountPercent,omitzero"`
	Discounted        bool            `json:"discounted,omitempty"`
	IsReturn          bool            `json:"isReturn,omitempty"`
	Weight            decimal.Decimal `json:"weight,omitzero"`
}

// NewStandardLine builds a regular sale line for a catalog product.
func NewStandardLine(code, name string, unitPrice, quantity decimal.Decimal) (LineItem, error) {
	if err := validateLine(code, unitPrice, quantity); err != nil {
		return LineItem{}, err
	}
	return LineItem{
		ID:        uuid.NewString(),
		Kind:      KindStandard,
		Code:      code,
		Name:      name,
		UnitPrice: unitPrice,
		Quantity:  quantity,
	}, nil
}

// NewBakeryLine builds a bakery PLU line with a synthetic PLU- code.
func NewBakeryLine(plu, name string, unitPrice, quantity decimal.Decimal) (LineItem, error) {
	if err := validateLine(plu, unitPrice, quantity); err != nil {
		return LineItem{}, err
	}
	return LineItem{
		ID:        uuid.NewString(),
		Kind:      KindBakery,
		Code:      "PLU-" + plu,
		Name:      name,
		UnitPrice: unitPrice,
		Quantity:  quantity,
	}, nil
}

// NewWeighedLine builds a scale line where unitPrice is the per-kg price and
// quantity carries the weight.
func NewWeighedLine(plu, name string, pricePerKg, weightKg decimal.Decimal) (LineItem, error) {
	if err := validateLine(plu, pricePerKg, weightKg); err != nil {
		return LineItem{}, err
	}
	return LineItem{
		ID:        uuid.NewString(),
		Kind:      KindWeighed,
		Code:      "PLU-" + plu,
		Name:      name,
		UnitPrice: pricePerKg,
		Quantity:  weightKg,
		Weight:    weightKg,
	}, nil
}

// NewReturnLine builds a return whose total is subtracted from the cart.
func NewReturnLine(code string, quantity, unitPrice decimal.Decimal) (LineItem, error) {
	if err := validateLine(code, unitPrice, quantity); err != nil {
		return LineItem{}, err
	}
	return LineItem{
		ID:        uuid.NewString(),
		Kind:      KindReturn,
		Code:      code,
		Name:      "Vračilo " + code,
		UnitPrice: unitPrice,
		Quantity:  quantity,
		IsReturn:  true,
	}, nil
}

// NewVoucherLine builds a gift voucher line. A redeemed voucher subtracts its
// value from the cart; a sold voucher adds it.
func NewVoucherLine(code string, amount decimal.Decimal, redeem bool) (LineItem, error) {
	if err := validateLine(code, amount, decimal.NewFromInt(1)); err != nil {
		return LineItem{}, err
	}
	name := "Darilni bon " + code
	if redeem {
		name = "Unovčen bon " + code
	}
	return LineItem{
		ID:        uuid.NewString(),
		Kind:      KindVoucher,
		Code:      "GIFT-" + code,
		Name:      name,
		UnitPrice: amount,
		Quantity:  decimal.NewFromInt(1),
		IsReturn:  redeem,
	}, nil
}

// CloneWithNewID copies the line under a fresh id, for cloning a past
// transaction into a new cart without id collisions.
func (li LineItem) CloneWithNewID() LineItem {
	li.ID = uuid.NewString()
	return li
}

// PricingItem projects the line into the pricing engine's value view.
func (li LineItem) PricingItem() pricing.Item {
	return pricing.Item{
		UnitPrice: li.UnitPrice,
		Quantity:  li.Quantity,
		Original:  li.OriginalUnitPrice,
		HasOrig:   li.Discounted,
		Negate:    li.IsReturn,
	}
}

// Total is the line's signed contribution to the cart.
func (li LineItem) Total() decimal.Decimal {
	return pricing.LineTotal(li.PricingItem())
}

// discountable reports whether cart-wide discounts touch this line.
func (li LineItem) discountable() bool {
	return !li.IsReturn && li.Kind != KindVoucher
}

func validateLine(code string, unitPrice, quantity decimal.Decimal) error {
	if strings.TrimSpace(code) == "" {
		return fmt.Errorf("code required: %w", ErrInvalidInput)
	}
	if unitPrice.IsNegative() {
		return fmt.Errorf("unit price negative: %w", ErrInvalidInput)
	}
	if quantity.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("quantity must be positive: %w", ErrInvalidInput)
	}
	return nil
}
