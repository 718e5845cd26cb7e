package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/fjod/go_cart/grocery-service/internal/catalog"
	"github.com/fjod/go_cart/grocery-service/internal/domain"
	"github.com/fjod/go_cart/grocery-service/internal/service"
	"github.com/fjod/go_cart/grocery-service/internal/store"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRouter(t *testing.T) http.Handler {
	t.Helper()
	now := time.Date(2025, time.October, 5, 9, 0, 0, 0, time.UTC)
	svc := service.NewCartService(catalog.Default(), store.NewMemoryStore(),
		service.WithClock(func() time.Time { return now }),
		service.WithOrderIDs(func() int { return 1001 }),
	)
	return NewRouter(NewCartHandler(svc, 5*time.Second), RouterConfig{
		RequestTimeout:     5 * time.Second,
		MaxRequestBodySize: 1 << 20,
		Logger:             zerolog.Nop(),
	})
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(method, path, reader)
	request.Header.Set("Content-Type", "application/json")
	h.ServeHTTP(recorder, request)
	return recorder
}

func decode[T any](t *testing.T, recorder *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&out))
	return out
}

func TestHealth(t *testing.T) {
	h := setupRouter(t)

	recorder := doJSON(t, h, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.NotEmpty(t, recorder.Header().Get("X-Request-Id"))
	assert.Equal(t, "ok", decode[map[string]string](t, recorder)["status"])
}

func TestListCategories(t *testing.T) {
	h := setupRouter(t)

	recorder := doJSON(t, h, http.MethodGet, "/categories", nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	resp := decode[CategoriesResponseDTO](t, recorder)
	assert.Contains(t, resp.Categories, "Fruits")
}

func TestListItems_Success(t *testing.T) {
	h := setupRouter(t)

	recorder := doJSON(t, h, http.MethodPost, "/list-items/", ListItemsRequestDTO{Category: "Fruits"})
	require.Equal(t, http.StatusOK, recorder.Code)

	resp := decode[ListItemsResponseDTO](t, recorder)
	assert.Equal(t, "Fruits", resp.Category)
	assert.Equal(t, []string{"Apple", "Banana", "Orange", "Mango"}, resp.Items)
}

func TestListItems_NotFound(t *testing.T) {
	h := setupRouter(t)

	recorder := doJSON(t, h, http.MethodPost, "/list-items/", ListItemsRequestDTO{Category: "Toys"})
	require.Equal(t, http.StatusNotFound, recorder.Code)

	resp := decode[ErrorResponse](t, recorder)
	assert.Equal(t, "not_found", resp.Code)
	assert.Contains(t, resp.Error, "Toys")
}

func TestInvalidJSON(t *testing.T) {
	h := setupRouter(t)

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodPost, "/add-to-cart/", strings.NewReader("{not json"))
	h.ServeHTTP(recorder, request)

	require.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Equal(t, "invalid_request", decode[ErrorResponse](t, recorder).Code)
}

func TestBodyTooLarge(t *testing.T) {
	svc := service.NewCartService(catalog.Default(), store.NewMemoryStore())
	h := NewRouter(NewCartHandler(svc, time.Second), RouterConfig{
		MaxRequestBodySize: 16,
		Logger:             zerolog.Nop(),
	})

	recorder := doJSON(t, h, http.MethodPost, "/add-to-cart/", AddToCartRequestDTO{
		UserID: "alice",
		Items:  map[string]int{"Apple": 1, "Banana": 2, "Orange": 3},
	})
	require.Equal(t, http.StatusRequestEntityTooLarge, recorder.Code)
	assert.Equal(t, "request_too_large", decode[ErrorResponse](t, recorder).Code)
}

func TestAddToCart_Success(t *testing.T) {
	h := setupRouter(t)

	recorder := doJSON(t, h, http.MethodPost, "/add-to-cart/", AddToCartRequestDTO{
		UserID: "alice",
		Items:  map[string]int{"Apple": 2, "Milk": 1},
	})
	require.Equal(t, http.StatusOK, recorder.Code)

	resp := decode[CartResponseDTO](t, recorder)
	assert.Equal(t, "alice", resp.UserID)
	assert.Equal(t, map[string]int{"Apple": 2, "Milk": 1}, resp.Cart)
	assert.Equal(t, 30.0, resp.TotalPrice)
}

func TestAddToCart_UnknownItem(t *testing.T) {
	h := setupRouter(t)

	recorder := doJSON(t, h, http.MethodPost, "/add-to-cart/", AddToCartRequestDTO{
		UserID: "alice",
		Items:  map[string]int{"Apple": 2, "Durian": 1},
	})
	require.Equal(t, http.StatusNotFound, recorder.Code)
	resp := decode[ErrorResponse](t, recorder)
	assert.Equal(t, "not_found", resp.Code)
	assert.Contains(t, resp.Error, "Durian")

	recorder = doJSON(t, h, http.MethodGet, "/cart/alice", nil)
	assert.Equal(t, http.StatusNotFound, recorder.Code, "failed add must not create a cart")
}

func TestAddToCart_InvalidQuantity(t *testing.T) {
	h := setupRouter(t)

	recorder := doJSON(t, h, http.MethodPost, "/add-to-cart/", AddToCartRequestDTO{
		UserID: "alice",
		Items:  map[string]int{"Apple": 0},
	})
	require.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Equal(t, "invalid_argument", decode[ErrorResponse](t, recorder).Code)
}

func TestAddToCart_QuantityLimit(t *testing.T) {
	h := setupRouter(t)

	recorder := doJSON(t, h, http.MethodPost, "/add-to-cart/", AddToCartRequestDTO{
		UserID: "alice",
		Items:  map[string]int{"Apple": math.MaxInt64, "Banana": 1},
	})
	require.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Equal(t, "invalid_argument", decode[ErrorResponse](t, recorder).Code)

	recorder = doJSON(t, h, http.MethodPost, "/add-to-cart/", AddToCartRequestDTO{
		UserID: "alice",
		Items:  map[string]int{"Apple": domain.MaxQuantity},
	})
	require.Equal(t, http.StatusOK, recorder.Code)

	recorder = doJSON(t, h, http.MethodPost, "/add-to-cart/", AddToCartRequestDTO{
		UserID: "alice",
		Items:  map[string]int{"Apple": 1},
	})
	require.Equal(t, http.StatusBadRequest, recorder.Code)

	recorder = doJSON(t, h, http.MethodGet, "/cart/alice", nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	res := decode[CartResponseDTO](t, recorder)
	assert.Equal(t, map[string]int{"Apple": domain.MaxQuantity}, res.Cart)
	assert.Equal(t, 9990.0, res.TotalPrice)
}

func TestCheckInventory(t *testing.T) {
	h := setupRouter(t)

	recorder := doJSON(t, h, http.MethodPost, "/check-inventory/", CheckInventoryRequestDTO{
		Items: map[string]int{"Apple": 1},
	})
	require.Equal(t, http.StatusOK, recorder.Code)
	var raw map[string]any
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&raw))
	assert.Equal(t, "all items available", raw["status"])
	assert.NotContains(t, raw, "details")

	recorder = doJSON(t, h, http.MethodPost, "/check-inventory/", CheckInventoryRequestDTO{
		Items: map[string]int{"Apple": 500, "Durian": 2},
	})
	require.Equal(t, http.StatusOK, recorder.Code)
	resp := decode[InventoryResponseDTO](t, recorder)
	assert.Equal(t, "some items unavailable", resp.Status)
	assert.Equal(t, map[string]domain.Shortage{
		"Apple":  {Requested: 500, Available: 50},
		"Durian": {Requested: 2, Available: 0},
	}, resp.Details)
}

func TestApplyDiscount(t *testing.T) {
	h := setupRouter(t)

	recorder := doJSON(t, h, http.MethodPost, "/add-to-cart/", AddToCartRequestDTO{
		UserID: "alice",
		Items:  map[string]int{"Apple": 2, "Milk": 1},
	})
	require.Equal(t, http.StatusOK, recorder.Code)

	code := "SAVE10"
	recorder = doJSON(t, h, http.MethodPost, "/apply-discount/", ApplyDiscountRequestDTO{UserID: "alice", Code: &code})
	require.Equal(t, http.StatusOK, recorder.Code)
	resp := decode[DiscountResponseDTO](t, recorder)
	assert.InDelta(t, 27.0, resp.TotalPrice, 0.001)
	assert.Equal(t, "SAVE10", resp.DiscountCode)
	assert.Empty(t, resp.Message)

	bogus := "NOPE"
	recorder = doJSON(t, h, http.MethodPost, "/apply-discount/", ApplyDiscountRequestDTO{UserID: "alice", Code: &bogus})
	require.Equal(t, http.StatusOK, recorder.Code)
	resp = decode[DiscountResponseDTO](t, recorder)
	assert.Equal(t, 30.0, resp.TotalPrice)
	assert.Empty(t, resp.DiscountCode)
	assert.Equal(t, noDiscountMessage, resp.Message)
}

func TestApplyDiscount_NoCart(t *testing.T) {
	h := setupRouter(t)

	recorder := doJSON(t, h, http.MethodPost, "/apply-discount/", ApplyDiscountRequestDTO{UserID: "nobody"})
	require.Equal(t, http.StatusNotFound, recorder.Code)
	assert.Equal(t, "not_found", decode[ErrorResponse](t, recorder).Code)
}

func TestPlaceOrder_EmptyCart(t *testing.T) {
	h := setupRouter(t)

	recorder := doJSON(t, h, http.MethodPost, "/place-order/", PlaceOrderRequestDTO{UserID: "nobody", Address: "1 Main St"})
	require.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Equal(t, "invalid_state", decode[ErrorResponse](t, recorder).Code)
}

func TestWorkflow_OverHTTP(t *testing.T) {
	h := setupRouter(t)

	recorder := doJSON(t, h, http.MethodPost, "/add-to-cart/", AddToCartRequestDTO{
		UserID: "alice",
		Items:  map[string]int{"Apple": 2, "Milk": 1},
	})
	require.Equal(t, http.StatusOK, recorder.Code)

	recorder = doJSON(t, h, http.MethodPost, "/place-order/", PlaceOrderRequestDTO{UserID: "alice", Address: "221B Baker St"})
	require.Equal(t, http.StatusOK, recorder.Code)
	order := decode[OrderResponseDTO](t, recorder)
	assert.Equal(t, "alice", order.UserID)
	assert.Equal(t, 1001, order.OrderID)
	assert.NotEmpty(t, order.Reference)
	assert.Equal(t, map[string]int{"Apple": 2, "Milk": 1}, order.Cart)
	assert.Equal(t, "221B Baker St", order.Address)
	assert.Equal(t, 30.0, order.TotalPrice)
	assert.Equal(t, "08-10-2025", order.EstimatedDelivery)

	recorder = doJSON(t, h, http.MethodPost, "/apply-discount/", ApplyDiscountRequestDTO{UserID: "alice"})
	require.Equal(t, http.StatusOK, recorder.Code)
	discount := decode[DiscountResponseDTO](t, recorder)
	assert.Equal(t, 0.0, discount.TotalPrice)
	assert.Empty(t, discount.Cart)

	recorder = doJSON(t, h, http.MethodGet, "/cart/alice", nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Empty(t, decode[CartResponseDTO](t, recorder).Cart)

	recorder = doJSON(t, h, http.MethodPost, "/place-order/", PlaceOrderRequestDTO{UserID: "alice", Address: "221B Baker St"})
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

type failingWorkflow struct {
	CartWorkflow
	err error
}

func (f failingWorkflow) GetCart(context.Context, string) (*domain.PricedCart, error) {
	return nil, f.err
}

func TestGetCart_ErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"store failure", errors.New("redis get failed: connection refused"), http.StatusInternalServerError, "internal_error"},
		{"deadline", context.DeadlineExceeded, http.StatusGatewayTimeout, "timeout"},
		{"invalid", domain.ErrInvalidArgument, http.StatusBadRequest, "invalid_argument"},
		{"missing", domain.ErrCartNotFound, http.StatusNotFound, "not_found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewRouter(NewCartHandler(failingWorkflow{err: tt.err}, time.Second), RouterConfig{Logger: zerolog.Nop()})

			recorder := doJSON(t, h, http.MethodGet, "/cart/alice", nil)
			require.Equal(t, tt.status, recorder.Code)
			resp := decode[ErrorResponse](t, recorder)
			assert.Equal(t, tt.code, resp.Code)
			if tt.status == http.StatusInternalServerError {
				assert.Equal(t, "internal server error", resp.Error, "internal details are not leaked")
			}
		})
	}
}

func TestRequestIDHeader_PreservesClientID(t *testing.T) {
	h := setupRouter(t)

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodGet, "/health", nil)
	request.Header.Set("X-Request-Id", "client-123")
	h.ServeHTTP(recorder, request)

	assert.Equal(t, "client-123", recorder.Header().Get("X-Request-Id"))
}
