package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/fjod/go_cart/grocery-service/internal/domain"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/hlog"
)

const noDiscountMessage = "No valid discount code applied"

// CartWorkflow is the set of grocery operations served over HTTP.
type CartWorkflow interface {
	Categories() []string
	ListItems(ctx context.Context, category string) ([]string, error)
	AddToCart(ctx context.Context, userID string, items map[string]int) (*domain.PricedCart, error)
	CheckInventory(ctx context.Context, items map[string]int) domain.InventoryReport
	GetCart(ctx context.Context, userID string) (*domain.PricedCart, error)
	ApplyDiscount(ctx context.Context, userID, code string) (*domain.DiscountResult, error)
	PlaceOrder(ctx context.Context, userID, address string) (*domain.Order, error)
}

type CartHandler struct {
	service CartWorkflow
	timeout time.Duration
}

func NewCartHandler(service CartWorkflow, timeout time.Duration) *CartHandler {
	return &CartHandler{
		service: service,
		timeout: timeout,
	}
}

// GET /categories
func (h *CartHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, r, http.StatusOK, CategoriesResponseDTO{Categories: h.service.Categories()})
}

// POST /list-items/
func (h *CartHandler) ListItems(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req ListItemsRequestDTO
	if !decodeJSON(w, r, &req) {
		return
	}

	items, err := h.service.ListItems(ctx, req.Category)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	respondJSON(w, r, http.StatusOK, ListItemsResponseDTO{
		Category: req.Category,
		Items:    items,
	})
}

// POST /add-to-cart/
func (h *CartHandler) AddToCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req AddToCartRequestDTO
	if !decodeJSON(w, r, &req) {
		return
	}

	res, err := h.service.AddToCart(ctx, req.UserID, req.Items)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	respondJSON(w, r, http.StatusOK, toCartResponse(res))
}

// POST /check-inventory/
func (h *CartHandler) CheckInventory(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req CheckInventoryRequestDTO
	if !decodeJSON(w, r, &req) {
		return
	}

	report := h.service.CheckInventory(ctx, req.Items)
	respondJSON(w, r, http.StatusOK, InventoryResponseDTO{
		Status:  report.Status.String(),
		Details: report.Details,
	})
}

// GET /cart/{user_id}
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	res, err := h.service.GetCart(ctx, chi.URLParam(r, "user_id"))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	respondJSON(w, r, http.StatusOK, toCartResponse(res))
}

// POST /apply-discount/
func (h *CartHandler) ApplyDiscount(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req ApplyDiscountRequestDTO
	if !decodeJSON(w, r, &req) {
		return
	}

	code := ""
	if req.Code != nil {
		code = *req.Code
	}

	res, err := h.service.ApplyDiscount(ctx, req.UserID, code)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	dto := DiscountResponseDTO{
		UserID:     res.Cart.UserID,
		Cart:       res.Cart.Quantities(),
		TotalPrice: res.Total.InexactFloat64(),
	}
	if res.Applied {
		dto.DiscountCode = res.Code
	} else {
		dto.Message = noDiscountMessage
	}
	respondJSON(w, r, http.StatusOK, dto)
}

// POST /place-order/
func (h *CartHandler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req PlaceOrderRequestDTO
	if !decodeJSON(w, r, &req) {
		return
	}

	order, err := h.service.PlaceOrder(ctx, req.UserID, req.Address)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	respondJSON(w, r, http.StatusOK, OrderResponseDTO{
		UserID:            order.UserID,
		OrderID:           order.ID,
		Reference:         order.Reference.String(),
		Cart:              order.Items,
		Address:           order.Address,
		TotalPrice:        order.TotalPrice.InexactFloat64(),
		EstimatedDelivery: order.EstimatedDeliveryDate(),
	})
}

func toCartResponse(res *domain.PricedCart) CartResponseDTO {
	return CartResponseDTO{
		UserID:     res.Cart.UserID,
		Cart:       res.Cart.Quantities(),
		TotalPrice: res.Total.InexactFloat64(),
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			respondError(w, r, http.StatusRequestEntityTooLarge, "request_too_large", "request body too large")
			return false
		}
		respondError(w, r, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return false
	}
	return true
}

func respondJSON(w http.ResponseWriter, r *http.Request, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("failed to encode response")
	}
}

func respondError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	respondJSON(w, r, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}

// handleServiceError converts workflow errors to HTTP status codes
func handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidArgument):
		respondError(w, r, http.StatusBadRequest, "invalid_argument", err.Error())
	case errors.Is(err, domain.ErrEmptyCart):
		respondError(w, r, http.StatusBadRequest, "invalid_state", err.Error())
	case domain.IsNotFound(err):
		respondError(w, r, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		respondError(w, r, http.StatusGatewayTimeout, "timeout", "request timed out")
	default:
		hlog.FromRequest(r).Error().Err(err).Str("request_id", middleware.GetReqID(r.Context())).Msg("request failed")
		respondError(w, r, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}
