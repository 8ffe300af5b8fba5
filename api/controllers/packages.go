package controllers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/funnelcart/api/responses"
	"github.com/angelmondragon/funnelcart/internal/catalog"
	"github.com/angelmondragon/funnelcart/internal/pricing"
	"github.com/angelmondragon/funnelcart/pkg/enums"
	pkgerrors "github.com/angelmondragon/funnelcart/pkg/errors"
	"github.com/angelmondragon/funnelcart/pkg/logger"
	"github.com/angelmondragon/funnelcart/pkg/money"
)

type packageMetricsResponse struct {
	RefID                  int             `json:"ref_id"`
	Quantity               int             `json:"quantity"`
	IsBundle               bool            `json:"is_bundle"`
	HasSavings             bool            `json:"has_savings"`
	UnitPrice              money.Amount    `json:"unit_price"`
	UnitRetailPrice        money.Amount    `json:"unit_retail_price"`
	TotalPrice             money.Amount    `json:"total_price"`
	TotalRetailPrice       money.Amount    `json:"total_retail_price"`
	UnitSavings            money.Amount    `json:"unit_savings"`
	TotalSavings           money.Amount    `json:"total_savings"`
	UnitSavingsPercentage  decimal.Decimal `json:"unit_savings_percentage"`
	TotalSavingsPercentage decimal.Decimal `json:"total_savings_percentage"`
}

// PackageMetrics resolves a catalog package and returns its derived price
// and savings breakdown, formatted in the engine currency.
func PackageMetrics(lookup catalog.Lookup, currency enums.Currency, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw := chi.URLParam(r, "refID")
		refID, err := strconv.Atoi(raw)
		if err != nil || refID <= 0 {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.New(pkgerrors.CodeValidation, "ref id must be a positive integer").
					WithDetails(map[string]any{"ref_id": raw}))
			return
		}

		pkg, err := lookup.GetPackage(r.Context(), refID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		metrics := pricing.FromPackage(pkg)
		responses.WriteSuccess(w, packageMetricsResponse{
			RefID:                  pkg.RefID,
			Quantity:               pkg.QuantityPerPackage,
			IsBundle:               metrics.IsBundle,
			HasSavings:             metrics.HasSavings,
			UnitPrice:              money.NewAmount(metrics.UnitPrice, currency),
			UnitRetailPrice:        money.NewAmount(metrics.UnitRetailPrice, currency),
			TotalPrice:             money.NewAmount(metrics.TotalPrice, currency),
			TotalRetailPrice:       money.NewAmount(metrics.TotalRetailPrice, currency),
			UnitSavings:            money.NewAmount(metrics.UnitSavings, currency),
			TotalSavings:           money.NewAmount(metrics.TotalSavings, currency),
			UnitSavingsPercentage:  metrics.UnitSavingsPercentage.Round(2),
			TotalSavingsPercentage: metrics.TotalSavingsPercentage.Round(2),
		})
	}
}
