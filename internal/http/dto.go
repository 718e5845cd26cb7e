package http

import "github.com/fjod/go_cart/grocery-service/internal/domain"

type ListItemsRequestDTO struct {
	Category string `json:"category"`
}

type ListItemsResponseDTO struct {
	Category string   `json:"category"`
	Items    []string `json:"items"`
}

type CategoriesResponseDTO struct {
	Categories []string `json:"categories"`
}

type AddToCartRequestDTO struct {
	UserID string         `json:"user_id"`
	Items  map[string]int `json:"items"`
}

type CartResponseDTO struct {
	UserID     string         `json:"user_id"`
	Cart       map[string]int `json:"cart"`
	TotalPrice float64        `json:"total_price"`
}

type CheckInventoryRequestDTO struct {
	Items map[string]int `json:"items"`
}

type InventoryResponseDTO struct {
	Status  string                     `json:"status"`
	Details map[string]domain.Shortage `json:"details,omitempty"`
}

type ApplyDiscountRequestDTO struct {
	UserID string  `json:"user_id"`
	Code   *string `json:"code"`
}

type DiscountResponseDTO struct {
	UserID       string         `json:"user_id"`
	Cart         map[string]int `json:"cart"`
	TotalPrice   float64        `json:"total_price"`
	DiscountCode string         `json:"discount_code,omitempty"`
	Message      string         `json:"message,omitempty"`
}

type PlaceOrderRequestDTO struct {
	UserID  string `json:"user_id"`
	Address string `json:"address"`
}

type OrderResponseDTO struct {
	UserID            string         `json:"user_id"`
	OrderID           int            `json:"order_id"`
	Reference         string         `json:"reference"`
	Cart              map[string]int `json:"cart"`
	Address           string         `json:"address"`
	TotalPrice        float64        `json:"total_price"`
	EstimatedDelivery string         `json:"estimated_delivery"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}
