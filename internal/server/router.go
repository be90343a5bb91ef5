package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/akovac726-netizen/trgopos-retail-system/internal/common"
	"github.com/akovac726-netizen/trgopos-retail-system/internal/obs"
)

// RouterConfig configures the HTTP router.
type RouterConfig struct {
	Handler        *Handler
	Logger         zerolog.Logger
	MetricsEnabled bool
}

// NewRouter assembles the terminal API routes and middleware.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(obs.RequestLogger{Logger: cfg.Logger}.Middleware)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		common.JSON(w, http.StatusOK, map[string]any{"status": "ok"})
	})
	if cfg.MetricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	h := cfg.Handler
	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/commands", func(r chi.Router) {
			r.Post("/login", h.Login)
			r.Post("/logout", h.Logout)
			r.Post("/scan", h.ScanCode)
			r.Post("/set-quantity", h.SetLineQuantity)
			r.Post("/select-line", h.SelectLine)
			r.Post("/apply-discount", h.ApplyDiscount)
			r.Post("/void-line", h.VoidLine)
			r.Post("/void-last", h.VoidLast)
			r.Post("/void-cart", h.VoidCart)
			r.Post("/add-return", h.AddReturn)
			r.Post("/add-weighed", h.AddWeighedGood)
			r.Post("/add-bakery", h.AddBakeryGood)
			r.Post("/add-voucher", h.AddGiftVoucher)
			r.Post("/begin-payment", h.BeginPayment)
			r.Post("/complete-cash", h.CompleteCashPayment)
			r.Post("/complete-card", h.CompleteCardPayment)
			r.Post("/reprint-receipt", h.ReprintReceipt)
			r.Post("/void-transaction", h.VoidTransaction)
			r.Post("/clone-transaction", h.CloneTransaction)
			r.Post("/end-shift", h.EndShift)
			r.Post("/end-day", h.EndDay)
			r.Post("/open-drawer", h.OpenDrawer)
		})
		r.Get("/cart", h.Cart)
		r.Get("/cart/totals", h.CartTotals)
		r.Get("/transactions", h.Transactions)
		r.Get("/transactions/{id}", h.TransactionDetail)
		r.Get("/stats", h.Stats)
		r.Get("/price-check/{code}", h.PriceCheck)
		r.Get("/inventory/low-stock", h.LowStock)
	})

	return r
}
