package service

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"math/rand/v2"
	"slices"
	"strings"
	"time"

	"github.com/fjod/go_cart/grocery-service/internal/catalog"
	"github.com/fjod/go_cart/grocery-service/internal/domain"
	"github.com/fjod/go_cart/grocery-service/internal/store"
	"github.com/fjod/go_cart/grocery-service/pkg/logger"
	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

// DefaultDeliveryDays is the lead time added to the order date.
const DefaultDeliveryDays = 3

// OrderPublisher receives every placed order. Consumers define this interface,
// not the Kafka implementation.
type OrderPublisher interface {
	Publish(ctx context.Context, order domain.Order) error
}

type Option func(*CartService)

// WithClock overrides time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *CartService) { s.now = now }
}

// WithOrderIDs overrides the display order number generator.
func WithOrderIDs(next func() int) Option {
	return func(s *CartService) { s.nextOrderID = next }
}

func WithDeliveryDays(days int) Option {
	return func(s *CartService) { s.deliveryDays = days }
}

func WithPublisher(p OrderPublisher) Option {
	return func(s *CartService) { s.publisher = p }
}

// CartService runs the grocery workflow against a read-only catalog and a cart store.
// Mutations of one user's cart are serialised; different users never block each other.
type CartService struct {
	catalog      *catalog.Catalog
	store        store.CartStore
	publisher    OrderPublisher
	locks        *userLocks
	sfg          singleflight.Group // coalesces concurrent cart reads per user
	now          func() time.Time
	nextOrderID  func() int
	deliveryDays int
}

func NewCartService(cat *catalog.Catalog, cartStore store.CartStore, opts ...Option) *CartService {
	s := &CartService{
		catalog:      cat,
		store:        cartStore,
		locks:        newUserLocks(),
		now:          time.Now,
		nextOrderID:  randomOrderID,
		deliveryDays: DefaultDeliveryDays,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// randomOrderID returns a four digit display number. It carries no uniqueness
// guarantee; Order.Reference is the unique handle.
func randomOrderID() int {
	return 1000 + rand.IntN(9000)
}

func (s *CartService) Categories() []string {
	return s.catalog.Categories()
}

func (s *CartService) ListItems(_ context.Context, category string) ([]string, error) {
	return s.catalog.ItemsByCategory(category)
}

// AddToCart accumulates items into the user's cart, creating it on first use.
// The whole request is validated before the cart is saved. Any rejected line,
// including one that would grow past domain.MaxQuantity, leaves the cart unchanged.
func (s *CartService) AddToCart(ctx context.Context, userID string, items map[string]int) (*domain.PricedCart, error) {
	if err := validateUserID(userID); err != nil {
		return nil, err
	}

	// sorted so the first reported problem is deterministic
	names := slices.Sorted(maps.Keys(items))
	for _, item := range names {
		if _, ok := s.catalog.Stock(item); !ok {
			return nil, fmt.Errorf("%w: %q", domain.ErrItemNotFound, item)
		}
		if qty := items[item]; qty <= 0 || qty > domain.MaxQuantity {
			return nil, fmt.Errorf("%w: quantity for %q must be between 1 and %d, got %d",
				domain.ErrInvalidArgument, item, domain.MaxQuantity, qty)
		}
	}

	unlock := s.locks.lock(userID)
	defer unlock()

	cart, err := s.store.Get(ctx, userID)
	if errors.Is(err, domain.ErrCartNotFound) {
		cart = domain.NewCart(userID, s.now())
	} else if err != nil {
		logger.Error().Err(err).Str("user_id", userID).Msg("cart store get failed")
		return nil, err
	}

	for _, item := range names {
		if held := cart.Items[item]; held+items[item] > domain.MaxQuantity {
			return nil, fmt.Errorf("%w: cart would hold %d of %q, limit is %d",
				domain.ErrInvalidArgument, held+items[item], item, domain.MaxQuantity)
		}
	}
	for _, item := range names {
		cart.Add(item, items[item])
	}
	cart.UpdatedAt = s.now()

	if err := s.store.Save(ctx, cart); err != nil {
		logger.Error().Err(err).Str("user_id", userID).Msg("cart store save failed")
		return nil, err
	}
	s.sfg.Forget(userID)

	logger.Debug().Str("user_id", userID).Int("lines", len(names)).Msg("items added to cart")

	return &domain.PricedCart{
		Cart:  cart,
		Total: cartTotal(cart.Items, s.catalog.UnitPrice()),
	}, nil
}

// CheckInventory compares requested quantities with catalog stock. Unknown items
// count as zero stock. It never touches any cart and is not enforced by
// AddToCart or PlaceOrder.
func (s *CartService) CheckInventory(_ context.Context, items map[string]int) domain.InventoryReport {
	details := make(map[string]domain.Shortage)
	for item, requested := range items {
		available, _ := s.catalog.Stock(item)
		if requested > available {
			details[item] = domain.Shortage{Requested: requested, Available: available}
		}
	}

	if len(details) > 0 {
		return domain.InventoryReport{Status: domain.InventorySomeUnavailable, Details: details}
	}
	return domain.InventoryReport{Status: domain.InventoryAllAvailable}
}

// GetCart returns the stored cart with its undiscounted total.
func (s *CartService) GetCart(ctx context.Context, userID string) (*domain.PricedCart, error) {
	if err := validateUserID(userID); err != nil {
		return nil, err
	}

	// the shared read must not inherit one caller's cancellation
	ch := s.sfg.DoChan(userID, func() (interface{}, error) {
		return s.store.Get(context.WithoutCancel(ctx), userID)
	})

	var res singleflight.Result
	select {
	case res = <-ch:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	if res.Err != nil {
		return nil, res.Err
	}

	// the singleflight result may be shared between callers
	cart := res.Val.(*domain.Cart).Clone()
	return &domain.PricedCart{
		Cart:  cart,
		Total: cartTotal(cart.Items, s.catalog.UnitPrice()),
	}, nil
}

// ApplyDiscount prices the user's cart with an optional discount code. Nothing is
// stored: the code has to be supplied again on every call.
func (s *CartService) ApplyDiscount(ctx context.Context, userID, code string) (*domain.DiscountResult, error) {
	priced, err := s.GetCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	result := &domain.DiscountResult{
		Cart:  priced.Cart,
		Total: priced.Total,
	}
	if code == "" {
		return result, nil
	}

	if rate, ok := s.catalog.DiscountRate(code); ok {
		result.Total = discounted(priced.Total, rate)
		result.Code = code
		result.Applied = true
	}
	return result, nil
}

// PlaceOrder snapshots the user's cart into an order and then empties the cart.
// Missing and empty carts are rejected with domain.ErrEmptyCart.
func (s *CartService) PlaceOrder(ctx context.Context, userID, address string) (*domain.Order, error) {
	if err := validateUserID(userID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(address) == "" {
		return nil, fmt.Errorf("%w: address is required", domain.ErrInvalidArgument)
	}

	order, err := s.checkout(ctx, userID, address)
	if err != nil {
		return nil, err
	}

	logger.Info().
		Str("user_id", userID).
		Int("order_id", order.ID).
		Str("reference", order.Reference.String()).
		Str("total", order.TotalPrice.StringFixed(2)).
		Msg("order placed")

	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, *order); err != nil {
			logger.Warn().Err(err).Str("reference", order.Reference.String()).Msg("order event not published")
		}
	}

	return order, nil
}

func (s *CartService) checkout(ctx context.Context, userID, address string) (*domain.Order, error) {
	unlock := s.locks.lock(userID)
	defer unlock()

	cart, err := s.store.Get(ctx, userID)
	if errors.Is(err, domain.ErrCartNotFound) {
		return nil, fmt.Errorf("%w: user %q has no cart", domain.ErrEmptyCart, userID)
	}
	if err != nil {
		logger.Error().Err(err).Str("user_id", userID).Msg("cart store get failed")
		return nil, err
	}
	if cart.IsEmpty() {
		return nil, fmt.Errorf("%w: user %q", domain.ErrEmptyCart, userID)
	}

	now := s.now()
	snapshot := cart.Quantities()
	order := &domain.Order{
		ID:                s.nextOrderID(),
		Reference:         uuid.New(),
		UserID:            userID,
		Items:             snapshot,
		Address:           address,
		TotalPrice:        cartTotal(snapshot, s.catalog.UnitPrice()),
		PlacedAt:          now,
		EstimatedDelivery: now.AddDate(0, 0, s.deliveryDays),
	}

	cart.Items = make(map[string]int)
	cart.UpdatedAt = now
	if err := s.store.Save(ctx, cart); err != nil {
		logger.Error().Err(err).Str("user_id", userID).Msg("cart store save failed")
		return nil, err
	}
	s.sfg.Forget(userID)

	return order, nil
}

func validateUserID(userID string) error {
	if strings.TrimSpace(userID) == "" {
		return fmt.Errorf("%w: user_id is required", domain.ErrInvalidArgument)
	}
	return nil
}
