package pricing

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestDiscountRebasesOnOriginal(t *testing.T) {
	original := dec("10")

	unit, percent, err := Discount(original, dec("20"), true)
	if err != nil {
		t.Fatalf("first discount: %v", err)
	}
	if !unit.Equal(dec("8")) || !percent.Equal(dec("20")) {
		t.Fatalf("got unit %s percent %s", unit, percent)
	}

	// The second discount passes the stored original, so it replaces the
	// first instead of compounding.
	unit, percent, err = Discount(original, dec("10"), true)
	if err != nil {
		t.Fatalf("second discount: %v", err)
	}
	if !unit.Equal(dec("9")) {
		t.Fatalf("expected 9 after rebase, got %s", unit)
	}
	if !percent.Equal(dec("10")) {
		t.Fatalf("expected percent 10, got %s", percent)
	}
}

func TestDiscountAbsoluteRecomputesPercent(t *testing.T) {
	unit, percent, err := Discount(dec("10"), dec("2.50"), false)
	if err != nil {
		t.Fatalf("absolute discount: %v", err)
	}
	if !unit.Equal(dec("7.50")) {
		t.Fatalf("expected 7.50, got %s", unit)
	}
	if !percent.Equal(dec("25")) {
		t.Fatalf("expected 25 percent, got %s", percent)
	}
}

func TestDiscountAbsoluteClampsAtZero(t *testing.T) {
	unit, percent, err := Discount(dec("1"), dec("5"), false)
	if err != nil {
		t.Fatalf("absolute discount: %v", err)
	}
	if !unit.IsZero() {
		t.Fatalf("expected 0, got %s", unit)
	}
	if !percent.Equal(dec("100")) {
		t.Fatalf("expected 100 percent, got %s", percent)
	}
}

func TestDiscountRejectsBadAmounts(t *testing.T) {
	for _, tc := range []struct {
		amount    string
		isPercent bool
	}{
		{"0", true},
		{"-5", true},
		{"101", true},
		{"0", false},
		{"-1", false},
	} {
		if _, _, err := Discount(dec("10"), dec(tc.amount), tc.isPercent); !errors.Is(err, ErrInvalidDiscount) {
			t.Fatalf("Discount(amount=%s, percent=%v) = %v, want ErrInvalidDiscount", tc.amount, tc.isPercent, err)
		}
	}
}

func TestComputeReturnSign(t *testing.T) {
	items := []Item{
		{UnitPrice: dec("10"), Quantity: dec("2")},
		{UnitPrice: dec("3"), Quantity: dec("1"), Negate: true},
	}
	s := Compute(items)
	if !s.Subtotal.Equal(dec("17")) {
		t.Fatalf("expected subtotal 17, got %s", s.Subtotal)
	}
	if !s.Total.Equal(s.Subtotal) {
		t.Fatalf("total must equal subtotal, got %s", s.Total)
	}
}

func TestComputeDiscountTotalIsInformational(t *testing.T) {
	items := []Item{
		{UnitPrice: dec("8"), Quantity: dec("2"), Original: dec("10"), HasOrig: true},
		{UnitPrice: dec("5"), Quantity: dec("1")},
	}
	s := Compute(items)
	if !s.Subtotal.Equal(dec("21")) {
		t.Fatalf("expected subtotal 21, got %s", s.Subtotal)
	}
	if !s.Discount.Equal(dec("4")) {
		t.Fatalf("expected discount total 4, got %s", s.Discount)
	}
	// The discount is display-only; it is not subtracted again.
	if !s.Total.Equal(dec("21")) {
		t.Fatalf("expected total 21, got %s", s.Total)
	}
}

func TestLineTotalWeighed(t *testing.T) {
	total := LineTotal(Item{UnitPrice: dec("1.99"), Quantity: dec("0.5")})
	if !total.Equal(dec("0.995")) {
		t.Fatalf("expected 0.995, got %s", total)
	}
	if !Round2(total).Equal(dec("1.00")) {
		t.Fatalf("expected display rounding to 1.00, got %s", Round2(total))
	}
}
