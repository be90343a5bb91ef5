package terminal

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/akovac726-netizen/trgopos-retail-system/internal/ledger"
)

// Devices are the external collaborators the core talks to through abstract
// result callbacks. Real drivers live outside the core; the defaults below
// stand in for them.

// ReceiptPrinter prints finalized transactions.
type ReceiptPrinter interface {
	PrintReceipt(tx ledger.Transaction) error
}

// CashDrawer triggers the till drawer.
type CashDrawer interface {
	Open() error
}

// CardTerminal charges the card terminal for the given amount. Charge blocks
// until the terminal reports a result; an error leaves the payment pending
// for operator retry.
type CardTerminal interface {
	Charge(amount decimal.Decimal) error
}

// NopPrinter discards receipts.
type NopPrinter struct{}

// PrintReceipt implements ReceiptPrinter.
func (NopPrinter) PrintReceipt(ledger.Transaction) error { return nil }

// NopDrawer acknowledges drawer opens without hardware.
type NopDrawer struct{}

// Open implements CashDrawer.
func (NopDrawer) Open() error { return nil }

// AutoApproveCard approves every charge, simulating a terminal that always
// confirms.
type AutoApproveCard struct{}

// Charge implements CardTerminal.
func (AutoApproveCard) Charge(decimal.Decimal) error { return nil }

// SimulatedCard approves every charge after a fixed processing delay, like a
// real terminal waiting on the acquirer.
type SimulatedCard struct {
	Delay time.Duration
}

// Charge implements CardTerminal.
func (c SimulatedCard) Charge(decimal.Decimal) error {
	time.Sleep(c.Delay)
	return nil
}
