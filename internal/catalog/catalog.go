package catalog

import (
	"fmt"
	"maps"
	"slices"

	"github.com/fjod/go_cart/grocery-service/internal/domain"
	"github.com/shopspring/decimal"
)

// DefaultUnitPrice is charged per unit when a source does not set one.
var DefaultUnitPrice = decimal.NewFromInt(10)

// Tables is the serialisable form of a catalog, as read from YAML or the database.
type Tables struct {
	Categories    map[string][]string `yaml:"categories"`
	Stock         map[string]int      `yaml:"stock"`
	DiscountRates map[string]float64  `yaml:"discount_rates"`
	UnitPrice     float64             `yaml:"unit_price"`
}

// Catalog is the read-only product configuration shared by every request.
// It is never mutated after New returns, so readers need no locking.
type Catalog struct {
	categories map[string][]string
	stock      map[string]int
	discounts  map[string]decimal.Decimal
	unitPrice  decimal.Decimal
}

// New validates t and builds a catalog from a deep copy of it.
func New(t Tables) (*Catalog, error) {
	c := &Catalog{
		categories: make(map[string][]string, len(t.Categories)),
		stock:      maps.Clone(t.Stock),
		discounts:  make(map[string]decimal.Decimal, len(t.DiscountRates)),
		unitPrice:  DefaultUnitPrice,
	}
	if c.stock == nil {
		c.stock = make(map[string]int)
	}

	for item, qty := range c.stock {
		if item == "" {
			return nil, fmt.Errorf("invalid catalog: empty item name in stock")
		}
		if qty < 0 {
			return nil, fmt.Errorf("invalid catalog: negative stock %d for %q", qty, item)
		}
	}

	for category, items := range t.Categories {
		for _, item := range items {
			if _, ok := c.stock[item]; !ok {
				return nil, fmt.Errorf("invalid catalog: category %q lists %q which has no stock entry", category, item)
			}
		}
		c.categories[category] = slices.Clone(items)
	}

	for code, rate := range t.DiscountRates {
		if rate < 0 || rate >= 1 {
			return nil, fmt.Errorf("invalid catalog: discount %q rate %v outside [0, 1)", code, rate)
		}
		c.discounts[code] = decimal.NewFromFloat(rate)
	}

	if t.UnitPrice != 0 {
		if t.UnitPrice < 0 {
			return nil, fmt.Errorf("invalid catalog: negative unit price %v", t.UnitPrice)
		}
		c.unitPrice = decimal.NewFromFloat(t.UnitPrice)
	}

	return c, nil
}

// MustNew is New for tables known to be valid at compile time.
func MustNew(t Tables) *Catalog {
	c, err := New(t)
	if err != nil {
		panic(err)
	}
	return c
}

// ItemsByCategory returns the configured items of category in configured order.
func (c *Catalog) ItemsByCategory(category string) ([]string, error) {
	items, ok := c.categories[category]
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrCategoryNotFound, category)
	}
	return slices.Clone(items), nil
}

// Categories returns every configured category name, sorted.
func (c *Catalog) Categories() []string {
	return slices.Sorted(maps.Keys(c.categories))
}

// Stock returns the sellable quantity of item and whether the item exists.
func (c *Catalog) Stock(item string) (int, bool) {
	qty, ok := c.stock[item]
	return qty, ok
}

func (c *Catalog) DiscountRate(code string) (decimal.Decimal, bool) {
	rate, ok := c.discounts[code]
	return rate, ok
}

func (c *Catalog) UnitPrice() decimal.Decimal {
	return c.unitPrice
}

// Tables returns a copy of the catalog in its serialisable form.
func (c *Catalog) Tables() Tables {
	t := Tables{
		Categories:    make(map[string][]string, len(c.categories)),
		Stock:         maps.Clone(c.stock),
		DiscountRates: make(map[string]float64, len(c.discounts)),
		UnitPrice:     c.unitPrice.InexactFloat64(),
	}
	for category, items := range c.categories {
		t.Categories[category] = slices.Clone(items)
	}
	for code, rate := range c.discounts {
		t.DiscountRates[code] = rate.InexactFloat64()
	}
	return t
}
