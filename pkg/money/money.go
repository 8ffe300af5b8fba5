package money

import (
	"github.com/angelmondragon/funnelcart/pkg/enums"
	"github.com/shopspring/decimal"
)

// Amount pairs a decimal value with its display string so collaborators
// never re-implement formatting.
type Amount struct {
	Value     decimal.Decimal `json:"value"`
	Formatted string          `json:"formatted"`
}

var symbolByCurrency = map[enums.Currency]string{
	enums.CurrencyUSD: "$",
	enums.CurrencyEUR: "€",
	enums.CurrencyGBP: "£",
}

// NewAmount rounds the value to two places and attaches the formatted string.
func NewAmount(value decimal.Decimal, currency enums.Currency) Amount {
	rounded := value.Round(2)
	return Amount{
		Value:     rounded,
		Formatted: Format(rounded, currency),
	}
}

// Format renders a decimal as a display price, e.g. "$72.00".
func Format(value decimal.Decimal, currency enums.Currency) string {
	symbol, ok := symbolByCurrency[currency]
	if !ok {
		return currency.String() + " " + value.StringFixed(2)
	}
	if value.IsNegative() {
		return "-" + symbol + value.Neg().StringFixed(2)
	}
	return symbol + value.StringFixed(2)
}

// Zero returns a zero amount in the given currency.
func Zero(currency enums.Currency) Amount {
	return NewAmount(decimal.Zero, currency)
}
