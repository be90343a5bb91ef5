package terminal

import (
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/akovac726-netizen/trgopos-retail-system/internal/authz"
	"github.com/akovac726-netizen/trgopos-retail-system/internal/cart"
	"github.com/akovac726-netizen/trgopos-retail-system/internal/catalog"
	"github.com/akovac726-netizen/trgopos-retail-system/internal/ledger"
	"github.com/akovac726-netizen/trgopos-retail-system/internal/obs"
	"github.com/akovac726-netizen/trgopos-retail-system/internal/pricing"
	"github.com/akovac726-netizen/trgopos-retail-system/internal/session"
)

// ErrIllegalState rejects commands that do not fit the current terminal
// state, like paying an empty cart or completing a payment twice.
var ErrIllegalState = errors.New("illegal state")

// VoucherMode selects gift voucher handling.
type VoucherMode string

const (
	// VoucherUse redeems a voucher against the current sale.
	VoucherUse VoucherMode = "use"
	// VoucherSell sells a new voucher at the entered amount.
	VoucherSell VoucherMode = "sell"
)

type pendingPayment struct {
	method  string
	started time.Time
}

// Terminal is the single-till command surface. All commands run to
// completion under one lock; there is no overlapping in-flight mutation.
type Terminal struct {
	mu sync.Mutex

	catalog  *catalog.Catalog
	cart     *cart.Cart
	sessions *session.Manager
	ledger   *ledger.Ledger

	managerGate *authz.Gate
	drawerGate  *authz.Gate

	printer ReceiptPrinter
	drawer  CashDrawer
	card    CardTerminal

	log     zerolog.Logger
	now     func() time.Time
	payment *pendingPayment
}

// Config wires the terminal's collaborators.
type Config struct {
	Catalog     *catalog.Catalog
	Sessions    *session.Manager
	Ledger      *ledger.Ledger
	ManagerCode string
	Printer     ReceiptPrinter
	Drawer      CashDrawer
	Card        CardTerminal
	Logger      zerolog.Logger
	Now         func() time.Time
}

// New constructs a terminal.
func New(cfg Config) (*Terminal, error) {
	if cfg.Catalog == nil || cfg.Sessions == nil || cfg.Ledger == nil {
		return nil, errors.New("terminal: catalog, sessions and ledger are required")
	}
	if cfg.ManagerCode == "" {
		return nil, errors.New("terminal: manager code is required")
	}
	t := &Terminal{
		catalog:  cfg.Catalog,
		cart:     cart.New(),
		sessions: cfg.Sessions,
		ledger:   cfg.Ledger,
		printer:  cfg.Printer,
		drawer:   cfg.Drawer,
		card:     cfg.Card,
		log:      cfg.Logger,
		now:      cfg.Now,
	}
	if t.printer == nil {
		t.printer = NopPrinter{}
	}
	if t.drawer == nil {
		t.drawer = NopDrawer{}
	}
	if t.card == nil {
		t.card = AutoApproveCard{}
	}
	if t.now == nil {
		t.now = time.Now
	}
	managerCode := cfg.ManagerCode
	t.managerGate = authz.NewGate(func() string { return managerCode })
	t.managerGate.OnAttempt = recordAttempt
	t.drawerGate = authz.NewGate(func() string {
		if c, ok := t.sessions.Active(); ok {
			return c.DrawerCode
		}
		return ""
	})
	t.drawerGate.OnAttempt = recordAttempt
	return t, nil
}

func recordAttempt(ok bool) {
	if ok {
		obs.CountOverride("ok")
	} else {
		obs.CountOverride("rejected")
	}
}

// withOverride runs the action through the manager-override protocol: the
// action is armed, the code submitted, and on match it runs exactly once.
func (t *Terminal) withOverride(g *authz.Gate, code string, action func() error) error {
	var actionErr error
	g.Request(func() { actionErr = action() })
	if err := g.Submit(code); err != nil {
		g.Cancel()
		return err
	}
	return actionErr
}

// Login authenticates a cashier and clears any stale cart from a previous
// session.
func (t *Terminal) Login(id, secret string) (session.Cashier, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	c, err := t.sessions.Login(id, secret)
	if err != nil {
		obs.CountLogin("rejected")
		return session.Cashier{}, err
	}
	obs.CountLogin("ok")
	t.cart.Clear()
	t.payment = nil
	return c, nil
}

// Logout ends the session and discards the in-progress cart.
func (t *Terminal) Logout() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, err := t.sessions.Require(); err != nil {
		return err
	}
	t.logoutLocked()
	return nil
}

func (t *Terminal) logoutLocked() {
	t.sessions.Logout()
	t.cart.Clear()
	t.payment = nil
	t.managerGate.Cancel()
	t.drawerGate.Cancel()
}

// ScanCode resolves a code against the catalog and adds or merges a cart
// line. Scale PLUs must come through AddWeighedGood with a weight.
func (t *Terminal) ScanCode(code string) (cart.LineItem, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, err := t.requireSale(); err != nil {
		return cart.LineItem{}, err
	}
	p, err := t.catalog.Lookup(code)
	if err != nil {
		obs.CountScan("miss")
		return cart.LineItem{}, err
	}
	if p.PerKg {
		obs.CountScan("needs_weight")
		return cart.LineItem{}, fmt.Errorf("scale item %q needs a weight: %w", code, ErrIllegalState)
	}
	var li cart.LineItem
	if catalog.Classify(code) == catalog.NamespaceBakery {
		li, err = cart.NewBakeryLine(p.Code, p.Name, p.UnitPrice, decimal.NewFromInt(1))
	} else {
		li, err = cart.NewStandardLine(p.Code, p.Name, p.UnitPrice, decimal.NewFromInt(1))
	}
	if err != nil {
		return cart.LineItem{}, err
	}
	obs.CountScan("ok")
	return t.cart.AddOrMerge(li), nil
}

// AddWeighedGood adds a scale line priced per kg.
func (t *Terminal) AddWeighedGood(plu string, weightKg decimal.Decimal) (cart.LineItem, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, err := t.requireSale(); err != nil {
		return cart.LineItem{}, err
	}
	p, err := t.catalog.LookupScale(plu)
	if err != nil {
		return cart.LineItem{}, err
	}
	li, err := cart.NewWeighedLine(p.Code, p.Name, p.UnitPrice, weightKg)
	if err != nil {
		return cart.LineItem{}, err
	}
	return t.cart.AddOrMerge(li), nil
}

// AddBakeryGood adds a bakery PLU line at the given quantity.
func (t *Terminal) AddBakeryGood(plu string, qty decimal.Decimal) (cart.LineItem, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, err := t.requireSale(); err != nil {
		return cart.LineItem{}, err
	}
	p, err := t.catalog.LookupBakery(plu)
	if err != nil {
		return cart.LineItem{}, err
	}
	if !qty.IsInteger() {
		return cart.LineItem{}, fmt.Errorf("bakery quantity must be whole: %w", cart.ErrInvalidInput)
	}
	li, err := cart.NewBakeryLine(p.Code, p.Name, p.UnitPrice, qty)
	if err != nil {
		return cart.LineItem{}, err
	}
	return t.cart.AddOrMerge(li), nil
}

// AddReturn appends a return line at the operator-entered price.
func (t *Terminal) AddReturn(code string, qty, unitPrice decimal.Decimal) (cart.LineItem, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, err := t.requireSale(); err != nil {
		return cart.LineItem{}, err
	}
	li, err := cart.NewReturnLine(code, qty, unitPrice)
	if err != nil {
		return cart.LineItem{}, err
	}
	return t.cart.AddReturn(li)
}

// AddGiftVoucher redeems or sells a gift voucher as a cart line.
func (t *Terminal) AddGiftVoucher(code string, amount decimal.Decimal, mode VoucherMode) (cart.LineItem, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, err := t.requireSale(); err != nil {
		return cart.LineItem{}, err
	}
	switch mode {
	case VoucherUse, VoucherSell:
	default:
		return cart.LineItem{}, fmt.Errorf("unknown voucher mode %q: %w", mode, cart.ErrInvalidInput)
	}
	li, err := cart.NewVoucherLine(code, amount, mode == VoucherUse)
	if err != nil {
		return cart.LineItem{}, err
	}
	return t.cart.AddOrMerge(li), nil
}

// SetLineQuantity replaces the quantity of the referenced line.
func (t *Terminal) SetLineQuantity(index int, qty decimal.Decimal) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, err := t.requireSale(); err != nil {
		return err
	}
	return t.cart.SetQuantity(index, qty)
}

// SelectLine marks a line selected; a negative index clears the selection.
func (t *Terminal) SelectLine(index int) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, err := t.sessions.Require(); err != nil {
		return err
	}
	if index < 0 {
		t.cart.ClearSelection()
		return nil
	}
	return t.cart.Select(index)
}

// ApplyDiscount discounts the selected line or the whole cart.
func (t *Terminal) ApplyDiscount(target cart.DiscountTarget, amount decimal.Decimal, isPercent bool) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, err := t.requireSale(); err != nil {
		return err
	}
	return t.cart.ApplyDiscount(target, amount, isPercent)
}

// VoidLine removes a line after manager authorization.
func (t *Terminal) VoidLine(index int, managerCode string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, err := t.requireSale(); err != nil {
		return err
	}
	return t.withOverride(t.managerGate, managerCode, func() error {
		removed, err := t.cart.Remove(index)
		if err != nil {
			return err
		}
		obs.CountVoid("line")
		t.log.Info().Str("code", removed.Code).Msg("line voided")
		return nil
	})
}

// VoidLast removes the most recently added line after manager authorization.
func (t *Terminal) VoidLast(managerCode string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, err := t.requireSale(); err != nil {
		return err
	}
	return t.withOverride(t.managerGate, managerCode, func() error {
		removed, err := t.cart.VoidLast()
		if err != nil {
			return err
		}
		obs.CountVoid("line")
		t.log.Info().Str("code", removed.Code).Msg("last line voided")
		return nil
	})
}

// VoidCart discards the whole in-progress sale.
func (t *Terminal) VoidCart() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, err := t.sessions.Require(); err != nil {
		return err
	}
	t.cart.Clear()
	t.payment = nil
	obs.CountVoid("cart")
	return nil
}

// BeginPayment moves the sale into a pending payment state.
func (t *Terminal) BeginPayment(method string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, err := t.requireSale(); err != nil {
		return err
	}
	if method != ledger.MethodCash && method != ledger.MethodCard {
		return fmt.Errorf("unknown payment method %q: %w", method, cart.ErrInvalidInput)
	}
	if t.cart.Len() == 0 {
		return fmt.Errorf("cart is empty: %w", ErrIllegalState)
	}
	t.payment = &pendingPayment{method: method, started: t.now()}
	return nil
}

// CompleteCashPayment finalizes a pending cash payment, computing change.
func (t *Terminal) CompleteCashPayment(amountTendered decimal.Decimal) (ledger.Transaction, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	cashier, err := t.requireSale()
	if err != nil {
		return ledger.Transaction{}, err
	}
	if t.payment == nil || t.payment.method != ledger.MethodCash {
		return ledger.Transaction{}, fmt.Errorf("no pending cash payment: %w", ErrIllegalState)
	}
	totals := t.cart.Totals()
	// The customer owes the rounded receipt total, so sufficiency and change
	// are both computed against it.
	due := pricing.Round2(totals.Total)
	if amountTendered.LessThan(due) {
		return ledger.Transaction{}, fmt.Errorf("tendered %s below total %s: %w",
			amountTendered.StringFixed(2), due.StringFixed(2), cart.ErrInvalidInput)
	}
	return t.finalizeLocked(cashier, ledger.MethodCash, amountTendered, totals)
}

// CompleteCardPayment resolves a pending card payment through the card
// terminal. A failed charge leaves the payment pending for retry.
func (t *Terminal) CompleteCardPayment() (ledger.Transaction, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	cashier, err := t.requireSale()
	if err != nil {
		return ledger.Transaction{}, err
	}
	if t.payment == nil || t.payment.method != ledger.MethodCard {
		return ledger.Transaction{}, fmt.Errorf("no pending card payment: %w", ErrIllegalState)
	}
	totals := t.cart.Totals()
	due := pricing.Round2(totals.Total)
	if err := t.card.Charge(due); err != nil {
		return ledger.Transaction{}, fmt.Errorf("card terminal: %w", err)
	}
	return t.finalizeLocked(cashier, ledger.MethodCard, due, totals)
}

// finalizeLocked freezes the cart into a transaction, appends it to the
// ledger and resets the sale. The total is rounded once and change derived
// from it, so total + change always reconciles with the tendered amount.
// Caller holds the lock.
func (t *Terminal) finalizeLocked(cashier session.Cashier, method string, tendered decimal.Decimal, totals pricing.Summary) (ledger.Transaction, error) {
	total := pricing.Round2(totals.Total)
	tendered = pricing.Round2(tendered)
	tx := ledger.Transaction{
		ID:             t.nextTransactionID(),
		Items:          t.cart.Snapshot(),
		Subtotal:       pricing.Round2(totals.Subtotal),
		DiscountTotal:  pricing.Round2(totals.Discount),
		Total:          total,
		PaymentMethod:  method,
		AmountTendered: tendered,
		ChangeGiven:    tendered.Sub(total),
		Timestamp:      t.now(),
		CashierID:      cashier.ID,
		CashierName:    cashier.DisplayName,
	}
	if err := t.ledger.Append(tx); err != nil {
		return ledger.Transaction{}, err
	}
	t.cart.Clear()
	t.payment = nil
	obs.CountTransaction(method)
	if err := t.printer.PrintReceipt(tx); err != nil {
		t.log.Warn().Err(err).Str("tx_id", tx.ID).Msg("receipt print failed")
	}
	t.log.Info().Str("tx_id", tx.ID).Str("method", method).
		Str("total", tx.Total.StringFixed(2)).Str("cashier_id", cashier.ID).
		Msg("transaction finalized")
	return tx, nil
}

// nextTransactionID derives a short numeric receipt id, falling back to a
// uuid suffix when the millisecond id collides.
func (t *Terminal) nextTransactionID() string {
	ms := strconv.FormatInt(t.now().UnixMilli(), 10)
	id := ms[len(ms)-6:]
	if _, err := t.ledger.Get(id); err == nil {
		id = id + "-" + uuid.NewString()[:8]
	}
	return id
}

// ReprintReceipt re-sends a finalized transaction to the receipt printer.
// A receipt copy needs no override.
func (t *Terminal) ReprintReceipt(id string) (ledger.Transaction, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, err := t.sessions.Require(); err != nil {
		return ledger.Transaction{}, err
	}
	tx, err := t.ledger.Get(id)
	if err != nil {
		return ledger.Transaction{}, err
	}
	if err := t.printer.PrintReceipt(tx); err != nil {
		t.log.Warn().Err(err).Str("tx_id", tx.ID).Msg("receipt reprint failed")
	}
	return tx, nil
}

// VoidTransaction hard-deletes a finalized transaction after manager
// authorization.
func (t *Terminal) VoidTransaction(id, managerCode string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, err := t.sessions.Require(); err != nil {
		return err
	}
	return t.withOverride(t.managerGate, managerCode, func() error {
		tx, err := t.ledger.Void(id)
		if err != nil {
			return err
		}
		obs.CountVoid("transaction")
		t.log.Warn().Str("tx_id", tx.ID).Str("total", tx.Total.StringFixed(2)).Msg("transaction voided")
		return nil
	})
}

// CloneTransaction copies a past transaction's lines into a fresh cart after
// manager authorization. The current cart must be empty.
func (t *Terminal) CloneTransaction(id, managerCode string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, err := t.requireSale(); err != nil {
		return err
	}
	if t.cart.Len() > 0 {
		return fmt.Errorf("cart not empty: %w", ErrIllegalState)
	}
	return t.withOverride(t.managerGate, managerCode, func() error {
		items, err := t.ledger.CloneItems(id)
		if err != nil {
			return err
		}
		for _, li := range items {
			if li.IsReturn {
				if _, err := t.cart.AddReturn(li); err != nil {
					return err
				}
				continue
			}
			t.cart.AddOrMerge(li)
		}
		t.cart.ClearSelection()
		return nil
	})
}

// EndShift aggregates the active cashier's transactions for today behind the
// drawer-code gate, then forces logout.
func (t *Terminal) EndShift(drawerCode string) (ledger.Totals, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	cashier, err := t.sessions.Require()
	if err != nil {
		return ledger.Totals{}, err
	}
	var totals ledger.Totals
	err = t.withOverride(t.drawerGate, drawerCode, func() error {
		from, to := ledger.DayRange(t.now())
		totals = t.ledger.Stats(ledger.Filter{From: from, To: to, CashierID: cashier.ID})
		t.log.Info().Str("cashier_id", cashier.ID).Int("count", totals.Count).
			Str("grand_total", totals.GrandTotal.StringFixed(2)).Msg("shift closed")
		t.logoutLocked()
		return nil
	})
	if err != nil {
		return ledger.Totals{}, err
	}
	return totals, nil
}

// EndDay aggregates all of today's transactions behind the drawer-code gate,
// then forces logout.
func (t *Terminal) EndDay(drawerCode string) (ledger.Totals, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, err := t.sessions.Require(); err != nil {
		return ledger.Totals{}, err
	}
	var totals ledger.Totals
	err := t.withOverride(t.drawerGate, drawerCode, func() error {
		from, to := ledger.DayRange(t.now())
		totals = t.ledger.Stats(ledger.Filter{From: from, To: to})
		t.log.Info().Int("count", totals.Count).
			Str("grand_total", totals.GrandTotal.StringFixed(2)).Msg("day closed")
		t.logoutLocked()
		return nil
	})
	if err != nil {
		return ledger.Totals{}, err
	}
	return totals, nil
}

// OpenDrawer triggers the cash drawer behind the drawer-code gate.
func (t *Terminal) OpenDrawer(drawerCode string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, err := t.sessions.Require(); err != nil {
		return err
	}
	return t.withOverride(t.drawerGate, drawerCode, func() error {
		return t.drawer.Open()
	})
}

// requireSale checks a session is active. Caller holds the lock.
func (t *Terminal) requireSale() (session.Cashier, error) {
	return t.sessions.Require()
}

// CartView is the query projection of the in-progress sale.
type CartView struct {
	Lines         []cart.LineItem `json:"lines"`
	SelectedIndex *int            `json:"selectedIndex,omitempty"`
}

// Cart returns the current cart lines and selection.
func (t *Terminal) Cart() CartView {
	t.mu.Lock()
	defer t.mu.Unlock()
	view := CartView{Lines: t.cart.Lines()}
	if idx, ok := t.cart.Selected(); ok {
		view.SelectedIndex = &idx
	}
	return view
}

// CartTotals returns the cart's pricing summary rounded for display.
func (t *Terminal) CartTotals() pricing.Summary {
	t.mu.Lock()
	defer t.mu.Unlock()
	s := t.cart.Totals()
	return pricing.Summary{
		Subtotal: pricing.Round2(s.Subtotal),
		Discount: pricing.Round2(s.Discount),
		Total:    pricing.Round2(s.Total),
	}
}

// Transaction looks up a single ledger entry.
func (t *Terminal) Transaction(id string) (ledger.Transaction, error) {
	return t.ledger.Get(id)
}

// ListTransactions returns ledger entries for a reporting period, newest
// first.
func (t *Terminal) ListTransactions(period, cashierID string) ([]ledger.Transaction, error) {
	from, to, err := ledger.PeriodRange(period, t.nowFn())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", err, cart.ErrInvalidInput)
	}
	return t.ledger.List(ledger.Filter{From: from, To: to, CashierID: cashierID}), nil
}

// CashierStats aggregates sales for reporting. Admin role required.
func (t *Terminal) CashierStats(period, cashierID string) (ledger.Totals, error) {
	cashier, err := t.sessions.Require()
	if err != nil {
		return ledger.Totals{}, err
	}
	if err := authz.RequireAdmin(cashier.Role); err != nil {
		return ledger.Totals{}, err
	}
	from, to, err := ledger.PeriodRange(period, t.nowFn())
	if err != nil {
		return ledger.Totals{}, fmt.Errorf("%s: %w", err, cart.ErrInvalidInput)
	}
	return t.ledger.Stats(ledger.Filter{From: from, To: to, CashierID: cashierID}), nil
}

// PriceCheck resolves a code without touching the cart.
func (t *Terminal) PriceCheck(code string) (catalog.Product, error) {
	if _, err := t.sessions.Require(); err != nil {
		return catalog.Product{}, err
	}
	return t.catalog.Lookup(code)
}

// LowStock lists items at or below minimum stock. Admin role required.
func (t *Terminal) LowStock() ([]catalog.Product, error) {
	cashier, err := t.sessions.Require()
	if err != nil {
		return nil, err
	}
	if err := authz.RequireAdmin(cashier.Role); err != nil {
		return nil, err
	}
	return t.catalog.LowStock(), nil
}

// ActiveCashier exposes the current session for the presentation layer.
func (t *Terminal) ActiveCashier() (session.Cashier, bool) {
	return t.sessions.Active()
}

func (t *Terminal) nowFn() time.Time {
	return t.now()
}
