package catalog

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestClassify(t *testing.T) {
	cases := map[string]Namespace{
		"3838900015455": NamespaceEAN,
		"1001":          NamespaceBakery,
		"1999":          NamespaceBakery,
		"9001":          NamespaceScale,
		"9999":          NamespaceScale,
		"2001":          NamespaceEAN,
		"100":           NamespaceEAN,
		"10001":         NamespaceEAN,
		"90ab":          NamespaceEAN,
	}
	for code, want := range cases {
		if got := Classify(code); got != want {
			t.Fatalf("Classify(%q) = %v, want %v", code, got, want)
		}
	}
}

func TestLookupAcrossNamespaces(t *testing.T) {
	c, err := New(SeedConfig())
	if err != nil {
		t.Fatalf("build catalog: %v", err)
	}

	p, err := c.Lookup("3838900015455")
	if err != nil {
		t.Fatalf("lookup EAN: %v", err)
	}
	if p.Name != "Mleko 1L" || !p.UnitPrice.Equal(decimal.RequireFromString("1.29")) {
		t.Fatalf("unexpected product %+v", p)
	}

	bakery, err := c.Lookup("1001")
	if err != nil {
		t.Fatalf("lookup bakery PLU: %v", err)
	}
	if bakery.PerKg {
		t.Fatalf("bakery PLU must not be per kg")
	}

	scale, err := c.Lookup("9001")
	if err != nil {
		t.Fatalf("lookup scale PLU: %v", err)
	}
	if !scale.PerKg {
		t.Fatalf("scale PLU must be per kg")
	}
}

func TestLookupNotFound(t *testing.T) {
	c, err := New(SeedConfig())
	if err != nil {
		t.Fatalf("build catalog: %v", err)
	}
	for _, code := range []string{"0000000000000", "1099", "9099"} {
		if _, err := c.Lookup(code); !errors.Is(err, ErrNotFound) {
			t.Fatalf("Lookup(%q) = %v, want ErrNotFound", code, err)
		}
	}
}

func TestLookupScaleRejectsOtherNamespaces(t *testing.T) {
	c, err := New(SeedConfig())
	if err != nil {
		t.Fatalf("build catalog: %v", err)
	}
	if _, err := c.LookupScale("1001"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if _, err := c.LookupBakery("9001"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestLowStock(t *testing.T) {
	c, err := New(SeedConfig())
	if err != nil {
		t.Fatalf("build catalog: %v", err)
	}
	low := c.LowStock()
	if len(low) != 1 || low[0].Code != "3838900067547" {
		t.Fatalf("unexpected low stock list: %+v", low)
	}
}

func TestNewRejectsMisplacedCodes(t *testing.T) {
	_, err := New(Config{
		Products: []Product{{Code: "1001", Name: "x", UnitPrice: decimal.NewFromInt(1)}},
	})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}
