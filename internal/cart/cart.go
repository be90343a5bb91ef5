package cart

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/akovac726-netizen/trgopos-retail-system/internal/pricing"
)

// ErrInvalidIndex is returned for line references outside the cart.
var ErrInvalidIndex = errors.New("invalid line index")

// ErrInvalidInput is returned when the provided payload is invalid.
var ErrInvalidInput = errors.New("invalid input")

// ErrNoSelection indicates a selected-line operation with nothing selected.
var ErrNoSelection = errors.New("no line selected")

// DiscountTarget chooses what a discount applies to.
type DiscountTarget string

const (
	// TargetSelected applies the discount to the selected line only.
	TargetSelected DiscountTarget = "selected"
	// TargetCart applies the discount to every discountable line.
	TargetCart DiscountTarget = "cart"
)

// Cart holds the in-progress sale. Insertion order is display order and
// drives void-last semantics. At most one line is selected.
type Cart struct {
	lines    []LineItem
	selected int
}

// New returns an empty cart.
func New() *Cart {
	return &Cart{selected: -1}
}

// Lines returns a copy of the cart's lines in insertion order.
func (c *Cart) Lines() []LineItem {
	out := make([]LineItem, len(c.lines))
	copy(out, c.lines)
	return out
}

// Len reports the number of lines.
func (c *Cart) Len() int { return len(c.lines) }

// Selected returns the selected index, or false when nothing is selected.
func (c *Cart) Selected() (int, bool) {
	if c.selected < 0 || c.selected >= len(c.lines) {
		return 0, false
	}
	return c.selected, true
}

// AddOrMerge appends the line, or increments the quantity of an existing line
// with the same code and kind. Negative lines (returns, redeemed vouchers)
// always append so they never fold into a positive line of the same code.
// Newly appended lines become selected.
func (c *Cart) AddOrMerge(li LineItem) LineItem {
	if !li.IsReturn {
		for i := range c.lines {
			if c.lines[i].Code == li.Code && !c.lines[i].IsReturn && c.lines[i].Kind == li.Kind {
				c.lines[i].Quantity = c.lines[i].Quantity.Add(li.Quantity)
				if c.lines[i].Kind == KindWeighed {
					c.lines[i].Weight = c.lines[i].Quantity
				}
				return c.lines[i]
			}
		}
	}
	c.lines = append(c.lines, li)
	c.selected = len(c.lines) - 1
	return li
}

// AddReturn appends a return line. Returns are never merged.
func (c *Cart) AddReturn(li LineItem) (LineItem, error) {
	if !li.IsReturn {
		return LineItem{}, fmt.Errorf("line is not a return: %w", ErrInvalidInput)
	}
	c.lines = append(c.lines, li)
	c.selected = len(c.lines) - 1
	return li, nil
}

// SetQuantity replaces a line's quantity. Zero or negative is rejected; a
// line is removed by voiding it, not by zeroing it.
func (c *Cart) SetQuantity(index int, qty decimal.Decimal) error {
	if index < 0 || index >= len(c.lines) {
		return fmt.Errorf("index %d: %w", index, ErrInvalidIndex)
	}
	if qty.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("quantity must be positive: %w", ErrInvalidInput)
	}
	if c.lines[index].Kind != KindWeighed && !qty.IsInteger() {
		return fmt.Errorf("quantity must be a whole number: %w", ErrInvalidInput)
	}
	c.lines[index].Quantity = qty
	if c.lines[index].Kind == KindWeighed {
		c.lines[index].Weight = qty
	}
	return nil
}

// Remove deletes the line at index, clearing the selection if it pointed at
// the removed line.
func (c *Cart) Remove(index int) (LineItem, error) {
	if index < 0 || index >= len(c.lines) {
		return LineItem{}, fmt.Errorf("index %d: %w", index, ErrInvalidIndex)
	}
	removed := c.lines[index]
	c.lines = append(c.lines[:index], c.lines[index+1:]...)
	switch {
	case c.selected == index:
		c.selected = -1
	case c.selected > index:
		c.selected--
	}
	return removed, nil
}

// Select marks a line as selected.
func (c *Cart) Select(index int) error {
	if index < 0 || index >= len(c.lines) {
		return fmt.Errorf("index %d: %w", index, ErrInvalidIndex)
	}
	c.selected = index
	return nil
}

// ClearSelection deselects any selected line.
func (c *Cart) ClearSelection() { c.selected = -1 }

// VoidLast removes the most recently appended line.
func (c *Cart) VoidLast() (LineItem, error) {
	if len(c.lines) == 0 {
		return LineItem{}, fmt.Errorf("cart empty: %w", ErrInvalidIndex)
	}
	return c.Remove(len(c.lines) - 1)
}

// Clear empties the cart and clears the selection.
func (c *Cart) Clear() {
	c.lines = nil
	c.selected = -1
}

// ApplyDiscount discounts the selected line or every discountable line.
// Re-discounting always rebases on the stored original unit price.
func (c *Cart) ApplyDiscount(target DiscountTarget, amount decimal.Decimal, isPercent bool) error {
	switch target {
	case TargetSelected:
		idx, ok := c.Selected()
		if !ok {
			return ErrNoSelection
		}
		return c.discountLine(idx, amount, isPercent)
	case TargetCart:
		// Validate once against a unit base before touching any line, so a
		// rejected amount leaves the whole cart unchanged.
		if _, _, err := pricing.Discount(decimal.NewFromInt(1), amount, isPercent); err != nil {
			return err
		}
		for i := range c.lines {
			if !c.lines[i].discountable() {
				continue
			}
			if err := c.discountLine(i, amount, isPercent); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("unknown discount target %q: %w", target, ErrInvalidInput)
	}
}

func (c *Cart) discountLine(index int, amount decimal.Decimal, isPercent bool) error {
	li := &c.lines[index]
	original := li.UnitPrice
	if li.Discounted {
		original = li.OriginalUnitPrice
	}
	unit, percent, err := pricing.Discount(original, amount, isPercent)
	if err != nil {
		return err
	}
	li.OriginalUnitPrice = original
	li.Discounted = true
	li.UnitPrice = unit
	li.DiscountPercent = percent
	return nil
}

// Totals computes the cart's pricing summary.
func (c *Cart) Totals() pricing.Summary {
	items := make([]pricing.Item, 0, len(c.lines))
	for _, li := range c.lines {
		items = append(items, li.PricingItem())
	}
	return pricing.Compute(items)
}

// ItemCount sums line quantities (weighed lines count their weight).
func (c *Cart) ItemCount() decimal.Decimal {
	total := decimal.Zero
	for _, li := range c.lines {
		total = total.Add(li.Quantity)
	}
	return total
}

// Snapshot returns an independent copy of the lines for freezing into a
// transaction.
func (c *Cart) Snapshot() []LineItem {
	return c.Lines()
}
