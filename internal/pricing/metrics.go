package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/funnelcart/internal/catalog"
)

// savingsEpsilon keeps float noise in catalog feeds from reporting savings.
var savingsEpsilon = decimal.RequireFromString("0.005")

var hundred = decimal.NewFromInt(100)

// Input carries the raw price fields of one package.
type Input struct {
	Price            decimal.Decimal
	RetailPrice      decimal.Decimal
	Quantity         int
	PriceTotal       decimal.Decimal
	RetailPriceTotal decimal.Decimal
}

// Metrics is the derived per-package price/savings breakdown.
type Metrics struct {
	UnitPrice              decimal.Decimal
	UnitRetailPrice        decimal.Decimal
	TotalPrice             decimal.Decimal
	TotalRetailPrice       decimal.Decimal
	UnitSavings            decimal.Decimal
	TotalSavings           decimal.Decimal
	UnitSavingsPercentage  decimal.Decimal
	TotalSavingsPercentage decimal.Decimal
	HasSavings             bool
	IsBundle               bool
}

// Calculate derives consistent metrics from raw catalog prices. Degenerate
// inputs are clamped, never rejected: display code must not crash on
// malformed catalog data.
func Calculate(input Input) Metrics {
	quantity := input.Quantity
	if quantity < 1 {
		quantity = 1
	}
	qty := decimal.NewFromInt(int64(quantity))

	unitPrice := clampNonNegative(input.Price)
	unitRetail := clampNonNegative(input.RetailPrice)
	if !unitRetail.IsPositive() {
		// Missing retail data must not produce negative savings.
		unitRetail = unitPrice
	}

	totalPrice := input.PriceTotal
	if !totalPrice.IsPositive() {
		totalPrice = unitPrice.Mul(qty)
	}
	totalRetail := input.RetailPriceTotal
	if !totalRetail.IsPositive() {
		totalRetail = unitRetail.Mul(qty)
	}

	totalSavings := decimal.Max(decimal.Zero, totalRetail.Sub(totalPrice))
	unitSavings := totalSavings.Div(qty)

	return Metrics{
		UnitPrice:              unitPrice,
		UnitRetailPrice:        unitRetail,
		TotalPrice:             totalPrice,
		TotalRetailPrice:       totalRetail,
		UnitSavings:            unitSavings,
		TotalSavings:           totalSavings,
		UnitSavingsPercentage:  savingsPercentage(unitSavings, unitRetail),
		TotalSavingsPercentage: savingsPercentage(totalSavings, totalRetail),
		HasSavings:             totalSavings.GreaterThan(savingsEpsilon),
		IsBundle:               quantity > 1,
	}
}

// FromPackage derives metrics for a catalog package using its bundled quantity.
func FromPackage(pkg *catalog.Package) Metrics {
	return Calculate(Input{
		Price:            pkg.UnitPrice,
		RetailPrice:      pkg.UnitRetailPrice,
		Quantity:         pkg.QuantityPerPackage,
		PriceTotal:       pkg.TotalPrice,
		RetailPriceTotal: pkg.TotalRetailPrice,
	})
}

func savingsPercentage(savings, retail decimal.Decimal) decimal.Decimal {
	if !retail.IsPositive() {
		return decimal.Zero
	}
	pct := savings.Div(retail).Mul(hundred)
	if pct.IsNegative() {
		return decimal.Zero
	}
	if pct.GreaterThan(hundred) {
		return hundred
	}
	return pct
}

func clampNonNegative(value decimal.Decimal) decimal.Decimal {
	if value.IsNegative() {
		return decimal.Zero
	}
	return value
}
