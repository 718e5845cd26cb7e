package domain

import (
	"maps"
	"time"

	"github.com/shopspring/decimal"
)

// MaxQuantity is the largest quantity a single cart line may hold.
const MaxQuantity = 999

// Cart holds the quantities a user has requested, keyed by item name.
type Cart struct {
	UserID    string         `json:"user_id" bson:"user_id"`
	Items     map[string]int `json:"items" bson:"items"`
	CreatedAt time.Time      `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time      `json:"updated_at" bson:"updated_at"`
}

func NewCart(userID string, now time.Time) *Cart {
	return &Cart{
		UserID:    userID,
		Items:     make(map[string]int),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Add accumulates qty onto the current quantity of item.
func (c *Cart) Add(item string, qty int) {
	if c.Items == nil {
		c.Items = make(map[string]int)
	}
	c.Items[item] += qty
}

// IsEmpty reports whether the cart has no line with a positive quantity.
func (c *Cart) IsEmpty() bool {
	return len(c.Quantities()) == 0
}

// Quantities returns a copy of the item map, never nil.
func (c *Cart) Quantities() map[string]int {
	out := make(map[string]int, len(c.Items))
	for item, qty := range c.Items {
		if qty > 0 {
			out[item] = qty
		}
	}
	return out
}

func (c *Cart) Clone() *Cart {
	clone := *c
	clone.Items = maps.Clone(c.Items)
	if clone.Items == nil {
		clone.Items = make(map[string]int)
	}
	return &clone
}

// PricedCart is a cart together with its undiscounted total.
type PricedCart struct {
	Cart  *Cart
	Total decimal.Decimal
}

// DiscountResult is the outcome of pricing a cart against an optional code.
type DiscountResult struct {
	Cart    *Cart
	Total   decimal.Decimal
	Code    string
	Applied bool
}
