package service

import "github.com/shopspring/decimal"

// cartTotal is sum(quantity * unitPrice) over the positive lines of items.
func cartTotal(items map[string]int, unitPrice decimal.Decimal) decimal.Decimal {
	units := decimal.Zero
	for _, qty := range items {
		if qty > 0 {
			units = units.Add(decimal.NewFromInt(int64(qty)))
		}
	}
	return unitPrice.Mul(units)
}

// discounted applies total -= total*rate, rounded to cents.
func discounted(total, rate decimal.Decimal) decimal.Decimal {
	return total.Sub(total.Mul(rate)).Round(2)
}
