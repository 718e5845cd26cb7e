package publisher

import (
	"time"

	"github.com/fjod/go_cart/grocery-service/internal/domain"
)

const EventTypeOrderPlaced = "order_placed"

// OrderPlacedEvent is the payload published for every placed order.
type OrderPlacedEvent struct {
	Reference         string         `json:"reference"`
	OrderID           int            `json:"order_id"`
	UserID            string         `json:"user_id"`
	Items             map[string]int `json:"items"`
	TotalPrice        string         `json:"total_price"`
	Address           string         `json:"address"`
	EstimatedDelivery string         `json:"estimated_delivery"`
	PlacedAt          time.Time      `json:"placed_at"`
}

func NewOrderPlacedEvent(o domain.Order) OrderPlacedEvent {
	return OrderPlacedEvent{
		Reference:         o.Reference.String(),
		OrderID:           o.ID,
		UserID:            o.UserID,
		Items:             o.Items,
		TotalPrice:        o.TotalPrice.StringFixed(2),
		Address:           o.Address,
		EstimatedDelivery: o.EstimatedDeliveryDate(),
		PlacedAt:          o.PlacedAt,
	}
}
