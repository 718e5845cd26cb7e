package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DeliveryDateFormat renders estimated delivery dates as DD-MM-YYYY.
const DeliveryDateFormat = "02-01-2006"

// Order is the snapshot produced when a cart is checked out. It is handed to the
// caller once and never stored.
type Order struct {
	ID                int
	Reference         uuid.UUID
	UserID            string
	Items             map[string]int
	Address           string
	TotalPrice        decimal.Decimal
	PlacedAt          time.Time
	EstimatedDelivery time.Time
}

func (o Order) EstimatedDeliveryDate() string {
	return o.EstimatedDelivery.Format(DeliveryDateFormat)
}
