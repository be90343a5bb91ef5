package catalog

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrNotFound indicates no product matches the scanned code in any namespace.
var ErrNotFound = errors.New("product not found")

// ErrInvalidInput is returned when the provided code or seed data is invalid.
var ErrInvalidInput = errors.New("invalid input")

// Namespace identifies which code family a scanned code belongs to.
type Namespace int

const (
	// NamespaceEAN covers full EAN/UPC barcodes for regular stock items.
	NamespaceEAN Namespace = iota
	// NamespaceBakery covers 4-digit bakery PLU codes priced per unit.
	NamespaceBakery
	// NamespaceScale covers 4-digit weighed-goods PLU codes priced per kg.
	NamespaceScale
)

// Bakery PLUs start at 1000, scale PLUs at 9000. Both are 4 digits.
const (
	bakeryPLUStart = 1000
	bakeryPLUEnd   = 1999
	scalePLUStart  = 9000
	scalePLUEnd    = 9999
)

// Product is a sellable catalog entry. Entries are immutable per lookup;
// stock fields are maintained by the inventory subsystem and only read here.
type Product struct {
	Code        string          `json:"code"`
	Name        string          `json:"name"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	StockQty    int             `json:"stockQty"`
	MinStockQty int             `json:"minStockQty"`
	Category    string          `json:"category"`
	PerKg       bool            `json:"perKg,omitempty"`
}

// Catalog resolves scanned codes across the EAN, bakery and scale namespaces.
type Catalog struct {
	byEAN    map[string]Product
	byBakery map[string]Product
	byScale  map[string]Product
}

// Config carries the seed entries for each namespace.
type Config struct {
	Products   []Product
	BakeryPLUs []Product
	ScalePLUs  []Product
}

// New builds a catalog from seed data, validating namespace membership.
func New(cfg Config) (*Catalog, error) {
	c := &Catalog{
		byEAN:    make(map[string]Product, len(cfg.Products)),
		byBakery: make(map[string]Product, len(cfg.BakeryPLUs)),
		byScale:  make(map[string]Product, len(cfg.ScalePLUs)),
	}
	for _, p := range cfg.Products {
		if err := validateProduct(p); err != nil {
			return nil, err
		}
		if Classify(p.Code) != NamespaceEAN {
			return nil, fmt.Errorf("code %q is not an EAN: %w", p.Code, ErrInvalidInput)
		}
		c.byEAN[p.Code] = p
	}
	for _, p := range cfg.BakeryPLUs {
		if err := validateProduct(p); err != nil {
			return nil, err
		}
		if Classify(p.Code) != NamespaceBakery {
			return nil, fmt.Errorf("code %q is not a bakery PLU: %w", p.Code, ErrInvalidInput)
		}
		c.byBakery[p.Code] = p
	}
	for _, p := range cfg.ScalePLUs {
		if err := validateProduct(p); err != nil {
			return nil, err
		}
		if Classify(p.Code) != NamespaceScale {
			return nil, fmt.Errorf("code %q is not a scale PLU: %w", p.Code, ErrInvalidInput)
		}
		p.PerKg = true
		c.byScale[p.Code] = p
	}
	return c, nil
}

// Classify reports which namespace a code belongs to. Classification happens
// before resolution so the three families never collide.
func Classify(code string) Namespace {
	code = strings.TrimSpace(code)
	if len(code) == 4 && allDigits(code) {
		n := int(code[0]-'0')*1000 + int(code[1]-'0')*100 + int(code[2]-'0')*10 + int(code[3]-'0')
		switch {
		case n >= bakeryPLUStart && n <= bakeryPLUEnd:
			return NamespaceBakery
		case n >= scalePLUStart && n <= scalePLUEnd:
			return NamespaceScale
		}
	}
	return NamespaceEAN
}

// Lookup resolves a code within its classified namespace.
func (c *Catalog) Lookup(code string) (Product, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return Product{}, fmt.Errorf("empty code: %w", ErrInvalidInput)
	}
	var p Product
	var ok bool
	switch Classify(code) {
	case NamespaceBakery:
		p, ok = c.byBakery[code]
	case NamespaceScale:
		p, ok = c.byScale[code]
	default:
		p, ok = c.byEAN[code]
	}
	if !ok {
		return Product{}, fmt.Errorf("code %q: %w", code, ErrNotFound)
	}
	return p, nil
}

// LookupBakery resolves a code strictly in the bakery namespace.
func (c *Catalog) LookupBakery(code string) (Product, error) {
	if Classify(code) != NamespaceBakery {
		return Product{}, fmt.Errorf("code %q is not a bakery PLU: %w", code, ErrInvalidInput)
	}
	return c.Lookup(code)
}

// LookupScale resolves a code strictly in the weighed-goods namespace.
func (c *Catalog) LookupScale(code string) (Product, error) {
	if Classify(code) != NamespaceScale {
		return Product{}, fmt.Errorf("code %q is not a scale PLU: %w", code, ErrInvalidInput)
	}
	return c.Lookup(code)
}

// LowStock lists regular stock items at or below their minimum stock level.
func (c *Catalog) LowStock() []Product {
	var out []Product
	for _, p := range c.byEAN {
		if p.StockQty <= p.MinStockQty {
			out = append(out, p)
		}
	}
	return out
}

func validateProduct(p Product) error {
	if strings.TrimSpace(p.Code) == "" {
		return fmt.Errorf("product code required: %w", ErrInvalidInput)
	}
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("product %q name required: %w", p.Code, ErrInvalidInput)
	}
	if p.UnitPrice.IsNegative() {
		return fmt.Errorf("product %q price negative: %w", p.Code, ErrInvalidInput)
	}
	return nil
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
