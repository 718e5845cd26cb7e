package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
)

type RouterConfig struct {
	RequestTimeout     time.Duration
	MaxRequestBodySize int64
	Logger             zerolog.Logger
}

// NewRouter wires the cart handler into a chi router with the global middleware stack.
func NewRouter(h *CartHandler, cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(RequestIDHeader)
	r.Use(hlog.NewHandler(cfg.Logger))
	r.Use(AccessLog)
	r.Use(middleware.Recoverer)
	if cfg.RequestTimeout > 0 {
		r.Use(middleware.Timeout(cfg.RequestTimeout))
	}
	if cfg.MaxRequestBodySize > 0 {
		r.Use(middleware.RequestSize(cfg.MaxRequestBodySize))
	}

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Get("/categories", h.ListCategories)
	r.Get("/cart/{user_id}", h.GetCart)

	r.Post("/list-items/", h.ListItems)
	r.Post("/add-to-cart/", h.AddToCart)
	r.Post("/check-inventory/", h.CheckInventory)
	r.Post("/apply-discount/", h.ApplyDiscount)
	r.Post("/place-order/", h.PlaceOrder)

	return r
}
