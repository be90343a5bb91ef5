package terminal_test

import (
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/akovac726-netizen/trgopos-retail-system/internal/authz"
	"github.com/akovac726-netizen/trgopos-retail-system/internal/cart"
	"github.com/akovac726-netizen/trgopos-retail-system/internal/catalog"
	"github.com/akovac726-netizen/trgopos-retail-system/internal/ledger"
	"github.com/akovac726-netizen/trgopos-retail-system/internal/session"
	"github.com/akovac726-netizen/trgopos-retail-system/internal/terminal"
)

const managerCode = "58709"

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

type clock struct{ at time.Time }

func (c *clock) now() time.Time { return c.at }

// decliningCard fails the first n charges, then approves.
type decliningCard struct{ declines int }

func (c *decliningCard) Charge(decimal.Decimal) error {
	if c.declines > 0 {
		c.declines--
		return errors.New("declined")
	}
	return nil
}

func newTerminal(t *testing.T, card terminal.CardTerminal) (*terminal.Terminal, *ledger.Ledger, *clock) {
	t.Helper()
	cat, err := catalog.New(catalog.SeedConfig())
	require.NoError(t, err)
	sessions, err := session.NewManager(session.SeedRoster())
	require.NoError(t, err)
	sessions.Log = zerolog.Nop()
	led := ledger.New()
	clk := &clock{at: time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)}
	term, err := terminal.New(terminal.Config{
		Catalog:     cat,
		Sessions:    sessions,
		Ledger:      led,
		ManagerCode: managerCode,
		Card:        card,
		Logger:      zerolog.Nop(),
		Now:         clk.now,
	})
	require.NoError(t, err)
	return term, led, clk
}

func login(t *testing.T, term *terminal.Terminal, id string) {
	t.Helper()
	_, err := term.Login(id, id)
	require.NoError(t, err)
}

func TestCashSaleWithCartDiscount(t *testing.T) {
	term, led, _ := newTerminal(t, nil)
	login(t, term, "20106")

	// Scanning the same EAN twice merges into one line with quantity 2.
	_, err := term.ScanCode("3838900015455")
	require.NoError(t, err)
	_, err = term.ScanCode("3838900015455")
	require.NoError(t, err)

	view := term.Cart()
	require.Len(t, view.Lines, 1)
	require.True(t, view.Lines[0].Quantity.Equal(dec("2")))
	require.True(t, term.CartTotals().Subtotal.Equal(dec("2.58")))

	require.NoError(t, term.ApplyDiscount(cart.TargetCart, dec("50"), true))
	require.True(t, term.CartTotals().Total.Equal(dec("1.29")))

	require.NoError(t, term.BeginPayment(ledger.MethodCash))
	tx, err := term.CompleteCashPayment(dec("2.00"))
	require.NoError(t, err)

	require.True(t, tx.Total.Equal(dec("1.29")))
	require.True(t, tx.AmountTendered.Equal(dec("2.00")))
	require.True(t, tx.ChangeGiven.Equal(dec("0.71")))
	require.Equal(t, ledger.MethodCash, tx.PaymentMethod)
	require.Equal(t, "20106", tx.CashierID)
	require.Equal(t, "Ana Novak", tx.CashierName)

	require.Empty(t, term.Cart().Lines, "finalizing clears the cart")
	stored, err := led.Get(tx.ID)
	require.NoError(t, err)
	require.True(t, stored.Total.Equal(dec("1.29")))
}

func TestCommandsRequireSession(t *testing.T) {
	term, _, _ := newTerminal(t, nil)

	_, err := term.ScanCode("3838900015455")
	require.ErrorIs(t, err, session.ErrNoSession)
	require.ErrorIs(t, term.BeginPayment(ledger.MethodCash), session.ErrNoSession)
	_, err = term.PriceCheck("3838900015455")
	require.ErrorIs(t, err, session.ErrNoSession)
}

func TestScanUnknownCode(t *testing.T) {
	term, _, _ := newTerminal(t, nil)
	login(t, term, "20106")
	_, err := term.ScanCode("0000000000000")
	require.ErrorIs(t, err, catalog.ErrNotFound)
}

func TestScaleItemNeedsWeight(t *testing.T) {
	term, _, _ := newTerminal(t, nil)
	login(t, term, "20106")

	_, err := term.ScanCode("9001")
	require.ErrorIs(t, err, terminal.ErrIllegalState)

	li, err := term.AddWeighedGood("9001", dec("0.5"))
	require.NoError(t, err)
	require.Equal(t, cart.KindWeighed, li.Kind)
	require.True(t, li.Quantity.Equal(dec("0.5")))
}

func TestBakeryQuantityMustBeWhole(t *testing.T) {
	term, _, _ := newTerminal(t, nil)
	login(t, term, "20106")

	_, err := term.AddBakeryGood("1001", dec("1.5"))
	require.ErrorIs(t, err, cart.ErrInvalidInput)

	li, err := term.AddBakeryGood("1001", dec("3"))
	require.NoError(t, err)
	require.Equal(t, cart.KindBakery, li.Kind)
}

func TestVoidLineNeedsManagerCode(t *testing.T) {
	term, _, _ := newTerminal(t, nil)
	login(t, term, "20106")
	_, err := term.ScanCode("3838900015455")
	require.NoError(t, err)

	require.ErrorIs(t, term.VoidLine(0, "11111"), authz.ErrAuthorizationFailed)
	require.Len(t, term.Cart().Lines, 1, "rejected override must not touch the cart")

	require.NoError(t, term.VoidLine(0, managerCode))
	require.Empty(t, term.Cart().Lines)
}

func TestVoidLastNeedsManagerCode(t *testing.T) {
	term, _, _ := newTerminal(t, nil)
	login(t, term, "20106")
	_, err := term.ScanCode("3838900015455")
	require.NoError(t, err)
	_, err = term.AddBakeryGood("1001", dec("1"))
	require.NoError(t, err)

	require.NoError(t, term.VoidLast(managerCode))
	view := term.Cart()
	require.Len(t, view.Lines, 1)
	require.Equal(t, "3838900015455", view.Lines[0].Code)
}

func TestCashPaymentInsufficientTender(t *testing.T) {
	term, _, _ := newTerminal(t, nil)
	login(t, term, "20106")
	_, err := term.ScanCode("3838900015455")
	require.NoError(t, err)
	require.NoError(t, term.BeginPayment(ledger.MethodCash))

	_, err = term.CompleteCashPayment(dec("1.00"))
	require.ErrorIs(t, err, cart.ErrInvalidInput)

	// The payment stays pending; a sufficient amount completes it.
	tx, err := term.CompleteCashPayment(dec("1.29"))
	require.NoError(t, err)
	require.True(t, tx.ChangeGiven.Equal(dec("0.00")))
}

func TestCashChangeReconcilesWithTender(t *testing.T) {
	term, _, _ := newTerminal(t, nil)
	login(t, term, "20106")

	// 3 x 1.29 at 50% is exactly 1.935; the receipt total rounds to 1.94 and
	// change must come off that rounded figure.
	_, err := term.ScanCode("3838900015455")
	require.NoError(t, err)
	require.NoError(t, term.SetLineQuantity(0, dec("3")))
	require.NoError(t, term.ApplyDiscount(cart.TargetCart, dec("50"), true))
	require.NoError(t, term.BeginPayment(ledger.MethodCash))

	_, err = term.CompleteCashPayment(dec("1.93"))
	require.ErrorIs(t, err, cart.ErrInvalidInput, "tender below the rounded total must be rejected")

	tx, err := term.CompleteCashPayment(dec("2.00"))
	require.NoError(t, err)
	require.True(t, tx.Total.Equal(dec("1.94")), "total %s", tx.Total)
	require.True(t, tx.ChangeGiven.Equal(dec("0.06")), "change %s", tx.ChangeGiven)
	require.True(t, tx.Total.Add(tx.ChangeGiven).Equal(tx.AmountTendered),
		"total %s + change %s != tendered %s", tx.Total, tx.ChangeGiven, tx.AmountTendered)
}

func TestBeginPaymentValidation(t *testing.T) {
	term, _, _ := newTerminal(t, nil)
	login(t, term, "20106")

	require.ErrorIs(t, term.BeginPayment(ledger.MethodCash), terminal.ErrIllegalState)

	_, err := term.ScanCode("3838900015455")
	require.NoError(t, err)
	require.ErrorIs(t, term.BeginPayment("cheque"), cart.ErrInvalidInput)
}

func TestPaymentMethodMismatch(t *testing.T) {
	term, _, _ := newTerminal(t, nil)
	login(t, term, "20106")
	_, err := term.ScanCode("3838900015455")
	require.NoError(t, err)
	require.NoError(t, term.BeginPayment(ledger.MethodCard))

	_, err = term.CompleteCashPayment(dec("5.00"))
	require.ErrorIs(t, err, terminal.ErrIllegalState)
}

func TestCardDeclineLeavesPaymentPending(t *testing.T) {
	term, _, _ := newTerminal(t, &decliningCard{declines: 1})
	login(t, term, "20106")
	_, err := term.ScanCode("3838900015455")
	require.NoError(t, err)
	require.NoError(t, term.BeginPayment(ledger.MethodCard))

	_, err = term.CompleteCardPayment()
	require.Error(t, err)
	require.Len(t, term.Cart().Lines, 1, "decline must not consume the cart")

	tx, err := term.CompleteCardPayment()
	require.NoError(t, err)
	require.Equal(t, ledger.MethodCard, tx.PaymentMethod)
	require.True(t, tx.ChangeGiven.Equal(dec("0.00")))
}

func TestCompletePaymentTwice(t *testing.T) {
	term, _, _ := newTerminal(t, nil)
	login(t, term, "20106")
	_, err := term.ScanCode("3838900015455")
	require.NoError(t, err)
	require.NoError(t, term.BeginPayment(ledger.MethodCash))
	_, err = term.CompleteCashPayment(dec("2.00"))
	require.NoError(t, err)

	_, err = term.CompleteCashPayment(dec("2.00"))
	require.ErrorIs(t, err, terminal.ErrIllegalState)
}

func TestReturnReducesTotal(t *testing.T) {
	term, _, _ := newTerminal(t, nil)
	login(t, term, "20106")
	_, err := term.ScanCode("3838900015455")
	require.NoError(t, err)
	_, err = term.AddReturn("3838900015455", dec("1"), dec("1.29"))
	require.NoError(t, err)

	require.True(t, term.CartTotals().Total.Equal(dec("0.00")))
}

func TestVoucherRedeemAndSell(t *testing.T) {
	term, _, _ := newTerminal(t, nil)
	login(t, term, "20106")
	_, err := term.ScanCode("3838900015455")
	require.NoError(t, err)

	_, err = term.AddGiftVoucher("7001", dec("0.50"), terminal.VoucherUse)
	require.NoError(t, err)
	require.True(t, term.CartTotals().Total.Equal(dec("0.79")))

	_, err = term.AddGiftVoucher("7002", dec("10.00"), terminal.VoucherSell)
	require.NoError(t, err)
	require.True(t, term.CartTotals().Total.Equal(dec("10.79")))

	_, err = term.AddGiftVoucher("7003", dec("1.00"), terminal.VoucherMode("refund"))
	require.ErrorIs(t, err, cart.ErrInvalidInput)
}

func TestVoidTransaction(t *testing.T) {
	term, led, _ := newTerminal(t, nil)
	login(t, term, "20106")
	_, err := term.ScanCode("3838900015455")
	require.NoError(t, err)
	require.NoError(t, term.BeginPayment(ledger.MethodCash))
	tx, err := term.CompleteCashPayment(dec("1.29"))
	require.NoError(t, err)

	require.ErrorIs(t, term.VoidTransaction(tx.ID, "00000"), authz.ErrAuthorizationFailed)
	_, err = led.Get(tx.ID)
	require.NoError(t, err, "rejected override must not delete the transaction")

	require.NoError(t, term.VoidTransaction(tx.ID, managerCode))
	_, err = led.Get(tx.ID)
	require.ErrorIs(t, err, ledger.ErrNotFound)
}

func TestCloneTransaction(t *testing.T) {
	term, _, clk := newTerminal(t, nil)
	login(t, term, "20106")
	_, err := term.ScanCode("3838900015455")
	require.NoError(t, err)
	require.NoError(t, term.BeginPayment(ledger.MethodCash))
	tx, err := term.CompleteCashPayment(dec("1.29"))
	require.NoError(t, err)

	clk.at = clk.at.Add(time.Minute)
	require.NoError(t, term.CloneTransaction(tx.ID, managerCode))

	view := term.Cart()
	require.Len(t, view.Lines, 1)
	require.Equal(t, tx.Items[0].Code, view.Lines[0].Code)
	require.NotEqual(t, tx.Items[0].ID, view.Lines[0].ID, "clone must carry fresh line ids")
	require.Nil(t, view.SelectedIndex)

	_, err = term.ScanCode("3838900015455")
	require.NoError(t, err)
	require.ErrorIs(t, term.CloneTransaction(tx.ID, managerCode), terminal.ErrIllegalState)
}

type countingPrinter struct{ prints int }

func (p *countingPrinter) PrintReceipt(ledger.Transaction) error {
	p.prints++
	return nil
}

func TestReprintReceipt(t *testing.T) {
	cat, err := catalog.New(catalog.SeedConfig())
	require.NoError(t, err)
	sessions, err := session.NewManager(session.SeedRoster())
	require.NoError(t, err)
	sessions.Log = zerolog.Nop()
	printer := &countingPrinter{}
	term, err := terminal.New(terminal.Config{
		Catalog:     cat,
		Sessions:    sessions,
		Ledger:      ledger.New(),
		ManagerCode: managerCode,
		Printer:     printer,
		Logger:      zerolog.Nop(),
	})
	require.NoError(t, err)

	login(t, term, "20106")
	_, err = term.ScanCode("3838900015455")
	require.NoError(t, err)
	require.NoError(t, term.BeginPayment(ledger.MethodCash))
	tx, err := term.CompleteCashPayment(dec("1.29"))
	require.NoError(t, err)
	require.Equal(t, 1, printer.prints)

	copyTx, err := term.ReprintReceipt(tx.ID)
	require.NoError(t, err)
	require.Equal(t, tx.ID, copyTx.ID)
	require.Equal(t, 2, printer.prints)

	_, err = term.ReprintReceipt("missing")
	require.ErrorIs(t, err, ledger.ErrNotFound)
}

func TestAdminOnlyQueries(t *testing.T) {
	term, _, _ := newTerminal(t, nil)
	login(t, term, "20106")

	_, err := term.CashierStats("today", "")
	require.ErrorIs(t, err, authz.ErrForbidden)
	_, err = term.LowStock()
	require.ErrorIs(t, err, authz.ErrForbidden)

	login(t, term, "90001")
	stats, err := term.CashierStats("all", "")
	require.NoError(t, err)
	require.Equal(t, 0, stats.Count)

	low, err := term.LowStock()
	require.NoError(t, err)
	require.Len(t, low, 1)
	require.Equal(t, "3838900067547", low[0].Code)
}

func TestEndShiftAggregatesAndLogsOut(t *testing.T) {
	term, _, clk := newTerminal(t, nil)

	// Another cashier's sale earlier today must not count toward this shift.
	login(t, term, "20107")
	_, err := term.ScanCode("3838900015455")
	require.NoError(t, err)
	require.NoError(t, term.BeginPayment(ledger.MethodCash))
	_, err = term.CompleteCashPayment(dec("1.29"))
	require.NoError(t, err)

	login(t, term, "20106")
	clk.at = clk.at.Add(time.Minute)
	_, err = term.ScanCode("3838900015455")
	require.NoError(t, err)
	require.NoError(t, term.BeginPayment(ledger.MethodCash))
	_, err = term.CompleteCashPayment(dec("1.29"))
	require.NoError(t, err)

	_, err = term.EndShift("9999")
	require.ErrorIs(t, err, authz.ErrAuthorizationFailed)
	_, ok := term.ActiveCashier()
	require.True(t, ok, "rejected drawer code must not log out")

	totals, err := term.EndShift("4106")
	require.NoError(t, err)
	require.Equal(t, 1, totals.Count)
	require.True(t, totals.CashTotal.Equal(dec("1.29")))

	_, ok = term.ActiveCashier()
	require.False(t, ok, "shift close forces logout")
}

func TestEndDayAggregatesAllCashiers(t *testing.T) {
	term, _, clk := newTerminal(t, nil)

	login(t, term, "20107")
	_, err := term.ScanCode("3838900015455")
	require.NoError(t, err)
	require.NoError(t, term.BeginPayment(ledger.MethodCash))
	_, err = term.CompleteCashPayment(dec("1.29"))
	require.NoError(t, err)

	login(t, term, "20106")
	clk.at = clk.at.Add(time.Minute)
	_, err = term.ScanCode("3838900015455")
	require.NoError(t, err)
	require.NoError(t, term.BeginPayment(ledger.MethodCard))
	_, err = term.CompleteCardPayment()
	require.NoError(t, err)

	totals, err := term.EndDay("4106")
	require.NoError(t, err)
	require.Equal(t, 2, totals.Count)
	require.True(t, totals.CashTotal.Equal(dec("1.29")))
	require.True(t, totals.CardTotal.Equal(dec("1.29")))

	_, ok := term.ActiveCashier()
	require.False(t, ok)
}

func TestLoginClearsStaleCart(t *testing.T) {
	term, _, _ := newTerminal(t, nil)
	login(t, term, "20106")
	_, err := term.ScanCode("3838900015455")
	require.NoError(t, err)

	login(t, term, "20107")
	require.Empty(t, term.Cart().Lines, "a new session must not inherit the previous cart")
}

func TestListTransactionsByPeriod(t *testing.T) {
	term, _, clk := newTerminal(t, nil)
	login(t, term, "20106")
	_, err := term.ScanCode("3838900015455")
	require.NoError(t, err)
	require.NoError(t, term.BeginPayment(ledger.MethodCash))
	_, err = term.CompleteCashPayment(dec("1.29"))
	require.NoError(t, err)

	today, err := term.ListTransactions("today", "")
	require.NoError(t, err)
	require.Len(t, today, 1)

	yesterday, err := term.ListTransactions("yesterday", "")
	require.NoError(t, err)
	require.Empty(t, yesterday)

	clk.at = clk.at.AddDate(0, 0, 1)
	nowYesterday, err := term.ListTransactions("yesterday", "")
	require.NoError(t, err)
	require.Len(t, nowYesterday, 1)

	_, err = term.ListTransactions("fortnight", "")
	require.ErrorIs(t, err, cart.ErrInvalidInput)
}
