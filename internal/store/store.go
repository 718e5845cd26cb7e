package store

import (
	"context"

	"github.com/fjod/go_cart/grocery-service/internal/domain"
)

// CartStore keeps one cart per user identifier.
// Get returns domain.ErrCartNotFound when the user never created a cart.
// Save replaces the stored cart as a whole, so a reader never sees a partial update.
type CartStore interface {
	Get(ctx context.Context, userID string) (*domain.Cart, error)
	Save(ctx context.Context, cart *domain.Cart) error
	Ping(ctx context.Context) error
	Close() error
}
