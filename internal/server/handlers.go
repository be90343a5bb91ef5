package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/akovac726-netizen/trgopos-retail-system/internal/authz"
	"github.com/akovac726-netizen/trgopos-retail-system/internal/cart"
	"github.com/akovac726-netizen/trgopos-retail-system/internal/catalog"
	"github.com/akovac726-netizen/trgopos-retail-system/internal/common"
	"github.com/akovac726-netizen/trgopos-retail-system/internal/ledger"
	"github.com/akovac726-netizen/trgopos-retail-system/internal/pricing"
	"github.com/akovac726-netizen/trgopos-retail-system/internal/session"
	"github.com/akovac726-netizen/trgopos-retail-system/internal/terminal"
)

// Handler exposes the terminal command/query surface over HTTP.
type Handler struct {
	terminal *terminal.Terminal
	validate *validator.Validate
	log      zerolog.Logger
}

// HandlerConfig configures the Handler dependencies.
type HandlerConfig struct {
	Terminal *terminal.Terminal
	Logger   zerolog.Logger
}

// NewHandler constructs a Handler.
func NewHandler(cfg HandlerConfig) *Handler {
	return &Handler{
		terminal: cfg.Terminal,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		log:      cfg.Logger,
	}
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid JSON body", nil)
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		common.JSONError(w, http.StatusUnprocessableEntity, "VALIDATION", err.Error(), nil)
		return false
	}
	return true
}

// writeError maps domain sentinels onto the canonical error envelope.
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, catalog.ErrNotFound), errors.Is(err, ledger.ErrNotFound):
		common.JSONError(w, http.StatusNotFound, "NOT_FOUND", err.Error(), nil)
	case errors.Is(err, cart.ErrInvalidIndex):
		common.JSONError(w, http.StatusUnprocessableEntity, "INVALID_INDEX", err.Error(), nil)
	case errors.Is(err, cart.ErrNoSelection),
		errors.Is(err, cart.ErrInvalidInput),
		errors.Is(err, catalog.ErrInvalidInput),
		errors.Is(err, pricing.ErrInvalidDiscount):
		common.JSONError(w, http.StatusUnprocessableEntity, "VALIDATION", err.Error(), nil)
	case errors.Is(err, authz.ErrForbidden):
		common.JSONError(w, http.StatusForbidden, "FORBIDDEN", "not allowed for this role", nil)
	case errors.Is(err, authz.ErrAuthorizationFailed), errors.Is(err, authz.ErrNoPendingAction):
		common.JSONError(w, http.StatusUnauthorized, "AUTHORIZATION_FAILED", "authorization code rejected", nil)
	case errors.Is(err, session.ErrUnknownCashier), errors.Is(err, session.ErrInvalidCredential):
		// One message for both so the API does not enumerate valid ids.
		common.JSONError(w, http.StatusUnauthorized, "LOGIN_FAILED", "login failed", nil)
	case errors.Is(err, session.ErrNoSession):
		common.JSONError(w, http.StatusUnauthorized, "NO_SESSION", "no active session", nil)
	case errors.Is(err, terminal.ErrIllegalState):
		common.JSONError(w, http.StatusConflict, "ILLEGAL_STATE", err.Error(), nil)
	default:
		h.log.Error().Err(err).Msg("unhandled command error")
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "internal error", nil)
	}
}

type loginRequest struct {
	CashierID string `json:"cashierId" validate:"required"`
	Secret    string `json:"secret" validate:"required"`
}

// Login handles POST /api/v1/commands/login.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !h.decode(w, r, &req) {
		return
	}
	c, err := h.terminal.Login(req.CashierID, req.Secret)
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSONData(w, http.StatusOK, c)
}

// Logout handles POST /api/v1/commands/logout.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.terminal.Logout(); err != nil {
		h.writeError(w, err)
		return
	}
	common.JSONData(w, http.StatusOK, "ok")
}

type scanRequest struct {
	Code string `json:"code" validate:"required"`
}

// ScanCode handles POST /api/v1/commands/scan.
func (h *Handler) ScanCode(w http.ResponseWriter, r *http.Request) {
	var req scanRequest
	if !h.decode(w, r, &req) {
		return
	}
	li, err := h.terminal.ScanCode(req.Code)
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSONData(w, http.StatusOK, li)
}

type quantityRequest struct {
	Index    int             `json:"index"`
	Quantity decimal.Decimal `json:"quantity" validate:"required"`
}

// SetLineQuantity handles POST /api/v1/commands/set-quantity.
func (h *Handler) SetLineQuantity(w http.ResponseWriter, r *http.Request) {
	var req quantityRequest
	if !h.decode(w, r, &req) {
		return
	}
	if err := h.terminal.SetLineQuantity(req.Index, req.Quantity); err != nil {
		h.writeError(w, err)
		return
	}
	common.JSONData(w, http.StatusOK, "ok")
}

type selectRequest struct {
	Index int `json:"index"`
}

// SelectLine handles POST /api/v1/commands/select-line.
func (h *Handler) SelectLine(w http.ResponseWriter, r *http.Request) {
	var req selectRequest
	if !h.decode(w, r, &req) {
		return
	}
	if err := h.terminal.SelectLine(req.Index); err != nil {
		h.writeError(w, err)
		return
	}
	common.JSONData(w, http.StatusOK, "ok")
}

type discountRequest struct {
	Target    string          `json:"target" validate:"required,oneof=selected cart"`
	Amount    decimal.Decimal `json:"amount" validate:"required"`
	IsPercent bool            `json:"isPercent"`
}

// ApplyDiscount handles POST /api/v1/commands/apply-discount.
func (h *Handler) ApplyDiscount(w http.ResponseWriter, r *http.Request) {
	var req discountRequest
	if !h.decode(w, r, &req) {
		return
	}
	if err := h.terminal.ApplyDiscount(cart.DiscountTarget(req.Target), req.Amount, req.IsPercent); err != nil {
		h.writeError(w, err)
		return
	}
	common.JSONData(w, http.StatusOK, h.terminal.CartTotals())
}

type voidLineRequest struct {
	Index       int    `json:"index"`
	ManagerCode string `json:"managerCode" validate:"required"`
}

// VoidLine handles POST /api/v1/commands/void-line.
func (h *Handler) VoidLine(w http.ResponseWriter, r *http.Request) {
	var req voidLineRequest
	if !h.decode(w, r, &req) {
		return
	}
	if err := h.terminal.VoidLine(req.Index, req.ManagerCode); err != nil {
		h.writeError(w, err)
		return
	}
	common.JSONData(w, http.StatusOK, "ok")
}

type voidLastRequest struct {
	ManagerCode string `json:"managerCode" validate:"required"`
}

// VoidLast handles POST /api/v1/commands/void-last.
func (h *Handler) VoidLast(w http.ResponseWriter, r *http.Request) {
	var req voidLastRequest
	if !h.decode(w, r, &req) {
		return
	}
	if err := h.terminal.VoidLast(req.ManagerCode); err != nil {
		h.writeError(w, err)
		return
	}
	common.JSONData(w, http.StatusOK, "ok")
}

// VoidCart handles POST /api/v1/commands/void-cart.
func (h *Handler) VoidCart(w http.ResponseWriter, r *http.Request) {
	if err := h.terminal.VoidCart(); err != nil {
		h.writeError(w, err)
		return
	}
	common.JSONData(w, http.StatusOK, "ok")
}

type returnRequest struct {
	Code      string          `json:"code" validate:"required"`
	Quantity  decimal.Decimal `json:"quantity" validate:"required"`
	UnitPrice decimal.Decimal `json:"unitPrice" validate:"required"`
}

// AddReturn handles POST /api/v1/commands/add-return.
func (h *Handler) AddReturn(w http.ResponseWriter, r *http.Request) {
	var req returnRequest
	if !h.decode(w, r, &req) {
		return
	}
	li, err := h.terminal.AddReturn(req.Code, req.Quantity, req.UnitPrice)
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSONData(w, http.StatusOK, li)
}

type weighedRequest struct {
	PLU      string          `json:"plu" validate:"required"`
	WeightKg decimal.Decimal `json:"weightKg" validate:"required"`
}

// AddWeighedGood handles POST /api/v1/commands/add-weighed.
func (h *Handler) AddWeighedGood(w http.ResponseWriter, r *http.Request) {
	var req weighedRequest
	if !h.decode(w, r, &req) {
		return
	}
	li, err := h.terminal.AddWeighedGood(req.PLU, req.WeightKg)
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSONData(w, http.StatusOK, li)
}

type bakeryRequest struct {
	PLU      string          `json:"plu" validate:"required"`
	Quantity decimal.Decimal `json:"quantity" validate:"required"`
}

// AddBakeryGood handles POST /api/v1/commands/add-bakery.
func (h *Handler) AddBakeryGood(w http.ResponseWriter, r *http.Request) {
	var req bakeryRequest
	if !h.decode(w, r, &req) {
		return
	}
	li, err := h.terminal.AddBakeryGood(req.PLU, req.Quantity)
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSONData(w, http.StatusOK, li)
}

type voucherRequest struct {
	Code   string          `json:"code" validate:"required"`
	Amount decimal.Decimal `json:"amount" validate:"required"`
	Mode   string          `json:"mode" validate:"required,oneof=use sell"`
}

// AddGiftVoucher handles POST /api/v1/commands/add-voucher.
func (h *Handler) AddGiftVoucher(w http.ResponseWriter, r *http.Request) {
	var req voucherRequest
	if !h.decode(w, r, &req) {
		return
	}
	li, err := h.terminal.AddGiftVoucher(req.Code, req.Amount, terminal.VoucherMode(req.Mode))
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSONData(w, http.StatusOK, li)
}

type beginPaymentRequest struct {
	Method string `json:"method" validate:"required,oneof=cash card"`
}

// BeginPayment handles POST /api/v1/commands/begin-payment.
func (h *Handler) BeginPayment(w http.ResponseWriter, r *http.Request) {
	var req beginPaymentRequest
	if !h.decode(w, r, &req) {
		return
	}
	if err := h.terminal.BeginPayment(req.Method); err != nil {
		h.writeError(w, err)
		return
	}
	common.JSONData(w, http.StatusOK, h.terminal.CartTotals())
}

type cashPaymentRequest struct {
	AmountTendered decimal.Decimal `json:"amountTendered" validate:"required"`
}

// CompleteCashPayment handles POST /api/v1/commands/complete-cash.
func (h *Handler) CompleteCashPayment(w http.ResponseWriter, r *http.Request) {
	var req cashPaymentRequest
	if !h.decode(w, r, &req) {
		return
	}
	tx, err := h.terminal.CompleteCashPayment(req.AmountTendered)
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSONData(w, http.StatusOK, tx)
}

// CompleteCardPayment handles POST /api/v1/commands/complete-card.
func (h *Handler) CompleteCardPayment(w http.ResponseWriter, r *http.Request) {
	tx, err := h.terminal.CompleteCardPayment()
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSONData(w, http.StatusOK, tx)
}

type reprintRequest struct {
	TransactionID string `json:"transactionId" validate:"required"`
}

// ReprintReceipt handles POST /api/v1/commands/reprint-receipt.
func (h *Handler) ReprintReceipt(w http.ResponseWriter, r *http.Request) {
	var req reprintRequest
	if !h.decode(w, r, &req) {
		return
	}
	tx, err := h.terminal.ReprintReceipt(req.TransactionID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSONData(w, http.StatusOK, tx)
}

type transactionActionRequest struct {
	TransactionID string `json:"transactionId" validate:"required"`
	ManagerCode   string `json:"managerCode" validate:"required"`
}

// VoidTransaction handles POST /api/v1/commands/void-transaction.
func (h *Handler) VoidTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionActionRequest
	if !h.decode(w, r, &req) {
		return
	}
	if err := h.terminal.VoidTransaction(req.TransactionID, req.ManagerCode); err != nil {
		h.writeError(w, err)
		return
	}
	common.JSONData(w, http.StatusOK, "ok")
}

// CloneTransaction handles POST /api/v1/commands/clone-transaction.
func (h *Handler) CloneTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionActionRequest
	if !h.decode(w, r, &req) {
		return
	}
	if err := h.terminal.CloneTransaction(req.TransactionID, req.ManagerCode); err != nil {
		h.writeError(w, err)
		return
	}
	common.JSONData(w, http.StatusOK, h.terminal.Cart())
}

type drawerRequest struct {
	DrawerCode string `json:"drawerCode" validate:"required"`
}

// EndShift handles POST /api/v1/commands/end-shift.
func (h *Handler) EndShift(w http.ResponseWriter, r *http.Request) {
	var req drawerRequest
	if !h.decode(w, r, &req) {
		return
	}
	totals, err := h.terminal.EndShift(req.DrawerCode)
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSONData(w, http.StatusOK, totals)
}

// EndDay handles POST /api/v1/commands/end-day.
func (h *Handler) EndDay(w http.ResponseWriter, r *http.Request) {
	var req drawerRequest
	if !h.decode(w, r, &req) {
		return
	}
	totals, err := h.terminal.EndDay(req.DrawerCode)
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSONData(w, http.StatusOK, totals)
}

// OpenDrawer handles POST /api/v1/commands/open-drawer.
func (h *Handler) OpenDrawer(w http.ResponseWriter, r *http.Request) {
	var req drawerRequest
	if !h.decode(w, r, &req) {
		return
	}
	if err := h.terminal.OpenDrawer(req.DrawerCode); err != nil {
		h.writeError(w, err)
		return
	}
	common.JSONData(w, http.StatusOK, "ok")
}

// Cart handles GET /api/v1/cart.
func (h *Handler) Cart(w http.ResponseWriter, r *http.Request) {
	common.JSONData(w, http.StatusOK, h.terminal.Cart())
}

// CartTotals handles GET /api/v1/cart/totals.
func (h *Handler) CartTotals(w http.ResponseWriter, r *http.Request) {
	common.JSONData(w, http.StatusOK, h.terminal.CartTotals())
}

// Transactions handles GET /api/v1/transactions.
func (h *Handler) Transactions(w http.ResponseWriter, r *http.Request) {
	period := r.URL.Query().Get("period")
	cashierID := r.URL.Query().Get("cashierId")
	txs, err := h.terminal.ListTransactions(period, cashierID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSONData(w, http.StatusOK, txs)
}

// TransactionDetail handles GET /api/v1/transactions/{id}.
func (h *Handler) TransactionDetail(w http.ResponseWriter, r *http.Request) {
	tx, err := h.terminal.Transaction(chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSONData(w, http.StatusOK, tx)
}

// Stats handles GET /api/v1/stats.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	period := r.URL.Query().Get("period")
	cashierID := r.URL.Query().Get("cashierId")
	totals, err := h.terminal.CashierStats(period, cashierID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSONData(w, http.StatusOK, totals)
}

// PriceCheck handles GET /api/v1/price-check/{code}.
func (h *Handler) PriceCheck(w http.ResponseWriter, r *http.Request) {
	p, err := h.terminal.PriceCheck(chi.URLParam(r, "code"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSONData(w, http.StatusOK, p)
}

// LowStock handles GET /api/v1/inventory/low-stock.
func (h *Handler) LowStock(w http.ResponseWriter, r *http.Request) {
	products, err := h.terminal.LowStock()
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSONData(w, http.StatusOK, products)
}
