package catalog

import (
	"testing"

	"github.com/fjod/go_cart/grocery-service/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestItemsByCategory_ReturnsConfiguredOrder(t *testing.T) {
	c := Default()

	for category, want := range DefaultTables().Categories {
		items, err := c.ItemsByCategory(category)
		require.NoError(t, err)
		assert.Equal(t, want, items, "category %s", category)
	}
}

func TestItemsByCategory_UnknownCategory(t *testing.T) {
	c := Default()

	items, err := c.ItemsByCategory("Electronics")
	assert.ErrorIs(t, err, domain.ErrCategoryNotFound)
	assert.True(t, domain.IsNotFound(err))
	assert.Nil(t, items)
}

func TestItemsByCategory_ReturnsCopy(t *testing.T) {
	c := Default()

	items, err := c.ItemsByCategory("Fruits")
	require.NoError(t, err)
	items[0] = "Durian"

	again, err := c.ItemsByCategory("Fruits")
	require.NoError(t, err)
	assert.Equal(t, "Apple", again[0])
}

func TestCategories_Sorted(t *testing.T) {
	c := Default()
	assert.Equal(t, []string{"Bakery", "Beverages", "Dairy", "Fruits", "Vegetables"}, c.Categories())
}

func TestStockAndDiscounts(t *testing.T) {
	c := Default()

	qty, ok := c.Stock("Apple")
	assert.True(t, ok)
	assert.Equal(t, 50, qty)

	_, ok = c.Stock("Durian")
	assert.False(t, ok)

	rate, ok := c.DiscountRate("SAVE10")
	assert.True(t, ok)
	assert.True(t, rate.Equal(decimal.RequireFromString("0.1")))

	_, ok = c.DiscountRate("save10")
	assert.False(t, ok, "codes are case sensitive")

	assert.True(t, c.UnitPrice().Equal(decimal.NewFromInt(10)))
}

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name   string
		tables Tables
		errMsg string
	}{
		{
			name: "category item without stock",
			tables: Tables{
				Categories: map[string][]string{"Fruits": {"Apple", "Kiwi"}},
				Stock:      map[string]int{"Apple": 1},
			},
			errMsg: `"Kiwi"`,
		},
		{
			name:   "negative stock",
			tables: Tables{Stock: map[string]int{"Apple": -1}},
			errMsg: "negative stock",
		},
		{
			name:   "rate of one",
			tables: Tables{DiscountRates: map[string]float64{"FREE": 1}},
			errMsg: "outside [0, 1)",
		},
		{
			name:   "negative rate",
			tables: Tables{DiscountRates: map[string]float64{"BAD": -0.1}},
			errMsg: "outside [0, 1)",
		},
		{
			name:   "negative unit price",
			tables: Tables{UnitPrice: -5},
			errMsg: "negative unit price",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := New(tt.tables)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
			assert.Nil(t, c)
		})
	}
}

func TestNew_DefaultsUnitPrice(t *testing.T) {
	c, err := New(Tables{Stock: map[string]int{"Apple": 1}})
	require.NoError(t, err)
	assert.True(t, c.UnitPrice().Equal(DefaultUnitPrice))
}

func TestNew_CopiesInput(t *testing.T) {
	tables := Tables{
		Categories: map[string][]string{"Fruits": {"Apple"}},
		Stock:      map[string]int{"Apple": 3},
	}
	c, err := New(tables)
	require.NoError(t, err)

	tables.Stock["Apple"] = 100
	tables.Categories["Fruits"][0] = "Pear"

	qty, _ := c.Stock("Apple")
	assert.Equal(t, 3, qty)
	items, _ := c.ItemsByCategory("Fruits")
	assert.Equal(t, []string{"Apple"}, items)
}

func TestTables_RoundTrip(t *testing.T) {
	c := Default()
	assert.Equal(t, DefaultTables(), c.Tables())
}
