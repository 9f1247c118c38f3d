// Package units holds the quantity arithmetic shared by the billing cart and the
// quote calculator: amount-to-quantity conversion and the sub-unit display rule.
package units

import (
	"strings"

	"github.com/fjod/shopdesk/internal/domain"
	"github.com/shopspring/decimal"
)

// Quote is the result of converting a money amount into a quantity of one product
type Quote struct {
	ProductID string  `json:"product_id"`
	Amount    float64 `json:"amount"`
	Quantity  float64 `json:"quantity"`
	Display   string  `json:"display"`
}

// ParseAmount reads a user-typed amount. Empty, non-numeric or negative input yields 0.
func ParseAmount(input string) float64 {
	d, err := decimal.NewFromString(strings.TrimSpace(input))
	if err != nil || d.IsNegative() {
		return 0
	}
	return d.InexactFloat64()
}

// QuantityFor returns amount/price, or 0 when the price cannot divide
func QuantityFor(amount, price float64) float64 {
	if price <= 0 || amount <= 0 {
		return 0
	}
	return amount / price
}

// QuoteFor converts the raw amount input into a quantity of p
func QuoteFor(input string, p domain.Product) Quote {
	amount := ParseAmount(input)
	qty := QuantityFor(amount, p.Price)
	return Quote{
		ProductID: p.ID,
		Amount:    amount,
		Quantity:  qty,
		Display:   Format(qty, p.Unit),
	}
}

// Format renders qty for display. Kilograms and liters below 1 are shown scaled by
// 1000 in grams or ml; everything else is shown unscaled with its own unit.
func Format(qty float64, unit domain.Unit) string {
	value, label, scaled := scale(qty, unit)
	if qty == 0 {
		return "0.00 " + label
	}

	d := decimal.NewFromFloat(value).Round(2)
	if scaled && d.IsInteger() {
		return d.StringFixed(0) + " " + label
	}
	return d.StringFixed(2) + " " + label
}

// Label returns the unit label Format would use for qty
func Label(qty float64, unit domain.Unit) string {
	_, label, _ := scale(qty, unit)
	return label
}

func scale(qty float64, unit domain.Unit) (float64, string, bool) {
	switch unit {
	case domain.UnitKg:
		if qty < 1 {
			return qty * 1000, "grams", true
		}
		return qty, "kg", false
	case domain.UnitLiter:
		if qty < 1 {
			return qty * 1000, "ml", true
		}
		return qty, "liter", false
	}
	return qty, unit.String(), false
}
