package catalog

// DefaultTables is the built-in grocery catalog. The seed migration inserts the
// same rows, so every catalog source starts from identical data.
func DefaultTables() Tables {
	return Tables{
		Categories: map[string][]string{
			"Fruits":     {"Apple", "Banana", "Orange", "Mango"},
			"Vegetables": {"Carrot", "Potato", "Tomato", "Onion"},
			"Dairy":      {"Milk", "Cheese", "Butter", "Yogurt"},
			"Bakery":     {"Bread", "Croissant", "Muffin"},
			"Beverages":  {"Coffee", "Tea", "Juice"},
		},
		Stock: map[string]int{
			"Apple":     50,
			"Banana":    40,
			"Orange":    30,
			"Mango":     20,
			"Carrot":    60,
			"Potato":    100,
			"Tomato":    45,
			"Onion":     80,
			"Milk":      25,
			"Cheese":    15,
			"Butter":    20,
			"Yogurt":    30,
			"Bread":     20,
			"Croissant": 10,
			"Muffin":    12,
			"Coffee":    18,
			"Tea":       22,
			"Juice":     35,
		},
		DiscountRates: map[string]float64{
			"SAVE10":   0.10,
			"SAVE20":   0.20,
			"WELCOME5": 0.05,
		},
		UnitPrice: 10,
	}
}

// Default returns the built-in catalog.
func Default() *Catalog {
	return MustNew(DefaultTables())
}
