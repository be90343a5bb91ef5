package ledger

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/akovac726-netizen/trgopos-retail-system/internal/cart"
)

// ErrNotFound indicates the requested transaction does not exist.
var ErrNotFound = errors.New("transaction not found")

// ErrDuplicateID rejects appending a transaction id already in the ledger.
var ErrDuplicateID = errors.New("duplicate transaction id")

// Payment method labels stored on transactions.
const (
	MethodCash = "cash"
	MethodCard = "card"
)

// Transaction is the immutable snapshot of a finalized sale.
type Transaction struct {
	ID             string          `json:"id"`
	Items          []cart.LineItem `json:"items"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	DiscountTotal  decimal.Decimal `json:"discountTotal"`
	Total          decimal.Decimal `json:"total"`
	PaymentMethod  string          `json:"paymentMethod"`
	AmountTendered decimal.Decimal `json:"amountTendered"`
	ChangeGiven    decimal.Decimal `json:"changeGiven"`
	Timestamp      time.Time       `json:"timestamp"`
	CashierID      string          `json:"cashierId"`
	CashierName    string          `json:"cashierName"`
}

// Filter narrows ledger reads. Zero fields match everything.
type Filter struct {
	From      time.Time
	To        time.Time
	CashierID string
}

func (f Filter) matches(tx Transaction) bool {
	if !f.From.IsZero() && tx.Timestamp.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && !tx.Timestamp.Before(f.To) {
		return false
	}
	if f.CashierID != "" && tx.CashierID != f.CashierID {
		return false
	}
	return true
}

// Totals aggregates transactions for shift/day close and reporting.
type Totals struct {
	Count      int             `json:"count"`
	ItemCount  decimal.Decimal `json:"itemCount"`
	CashTotal  decimal.Decimal `json:"cashTotal"`
	CardTotal  decimal.Decimal `json:"cardTotal"`
	OtherTotal decimal.Decimal `json:"otherTotal"`
	GrandTotal decimal.Decimal `json:"grandTotal"`
	Discount   decimal.Decimal `json:"discountTotal"`
}

// Ledger is the append-only store of finalized transactions. Appends keep
// insertion order; reads return newest first.
type Ledger struct {
	mu   sync.RWMutex
	txs  []Transaction
	byID map[string]struct{}
}

// New returns an empty ledger.
func New() *Ledger {
	return &Ledger{byID: make(map[string]struct{})}
}

// Append stores a transaction. The items slice is copied so later cart
// mutation cannot reach into the ledger.
func (l *Ledger) Append(tx Transaction) error {
	if tx.ID == "" {
		return fmt.Errorf("transaction id required")
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, dup := l.byID[tx.ID]; dup {
		return fmt.Errorf("id %q: %w", tx.ID, ErrDuplicateID)
	}
	items := make([]cart.LineItem, len(tx.Items))
	copy(items, tx.Items)
	tx.Items = items
	l.txs = append(l.txs, tx)
	l.byID[tx.ID] = struct{}{}
	return nil
}

// Get returns the transaction with the given id.
func (l *Ledger) Get(id string) (Transaction, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for _, tx := range l.txs {
		if tx.ID == id {
			return tx, nil
		}
	}
	return Transaction{}, fmt.Errorf("id %q: %w", id, ErrNotFound)
}

// List returns matching transactions newest first without mutating the ledger.
func (l *Ledger) List(f Filter) []Transaction {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]Transaction, 0, len(l.txs))
	for i := len(l.txs) - 1; i >= 0; i-- {
		if f.matches(l.txs[i]) {
			out = append(out, l.txs[i])
		}
	}
	return out
}

// Void removes the transaction from the ledger. This is a hard delete;
// callers gate it behind the manager override.
func (l *Ledger) Void(id string) (Transaction, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i, tx := range l.txs {
		if tx.ID == id {
			l.txs = append(l.txs[:i], l.txs[i+1:]...)
			delete(l.byID, id)
			return tx, nil
		}
	}
	return Transaction{}, fmt.Errorf("id %q: %w", id, ErrNotFound)
}

// CloneItems copies a transaction's lines under freshly assigned ids so they
// can seed a new cart without colliding with the original line ids.
func (l *Ledger) CloneItems(id string) ([]cart.LineItem, error) {
	tx, err := l.Get(id)
	if err != nil {
		return nil, err
	}
	out := make([]cart.LineItem, 0, len(tx.Items))
	for _, li := range tx.Items {
		out = append(out, li.CloneWithNewID())
	}
	return out, nil
}

// Stats aggregates matching transactions.
func (l *Ledger) Stats(f Filter) Totals {
	t := Totals{
		ItemCount:  decimal.Zero,
		CashTotal:  decimal.Zero,
		CardTotal:  decimal.Zero,
		OtherTotal: decimal.Zero,
		GrandTotal: decimal.Zero,
		Discount:   decimal.Zero,
	}
	for _, tx := range l.List(f) {
		t.Count++
		t.GrandTotal = t.GrandTotal.Add(tx.Total)
		t.Discount = t.Discount.Add(tx.DiscountTotal)
		for _, li := range tx.Items {
			t.ItemCount = t.ItemCount.Add(li.Quantity)
		}
		switch tx.PaymentMethod {
		case MethodCash:
			t.CashTotal = t.CashTotal.Add(tx.Total)
		case MethodCard:
			t.CardTotal = t.CardTotal.Add(tx.Total)
		default:
			t.OtherTotal = t.OtherTotal.Add(tx.Total)
		}
	}
	return t
}

// DayRange bounds the calendar day containing now, in now's location.
func DayRange(now time.Time) (time.Time, time.Time) {
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return start, start.AddDate(0, 0, 1)
}

// PeriodRange resolves the reporting period keywords used by the sales
// screens: today, yesterday, week, month, all.
func PeriodRange(period string, now time.Time) (time.Time, time.Time, error) {
	day, _ := DayRange(now)
	switch period {
	case "", "all":
		return time.Time{}, time.Time{}, nil
	case "today":
		return day, time.Time{}, nil
	case "yesterday":
		return day.AddDate(0, 0, -1), day, nil
	case "week":
		return day.AddDate(0, 0, -7), time.Time{}, nil
	case "month":
		return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()), time.Time{}, nil
	default:
		return time.Time{}, time.Time{}, fmt.Errorf("unknown period %q", period)
	}
}
