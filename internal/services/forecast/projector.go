package forecast

import (
	"math"
	"time"

	"SalesCast/internal/domain/models"

	"github.com/shopspring/decimal"
)

// Project turns a real-unit quantity into a forecast point. Negative or NaN
// quantities clamp to zero, fractions round up, and revenue is truncated to
// whole currency units.
func Project(date time.Time, quantity float64, product models.Product) models.ForecastPoint {
	qty := int64(0)
	if !math.IsNaN(quantity) && quantity > 0 {
		qty = int64(math.Ceil(quantity))
	}
	return models.ForecastPoint{
		Date:              date,
		Product:           product.Name,
		PredictedQuantity: qty,
		PredictedRevenue:  decimal.NewFromInt(qty).Mul(product.UnitPrice).Truncate(0).IntPart(),
	}
}

// Revenue prices an observed quantity, truncated to whole currency units.
func Revenue(quantity float64, product models.Product) int64 {
	return decimal.NewFromFloat(quantity).Mul(product.UnitPrice).Truncate(0).IntPart()
}

// FutureDates returns n weekly dates following last.
func FutureDates(last time.Time, n int) []time.Time {
	out := make([]time.Time, n)
	for i := range out {
		out[i] = last.AddDate(0, 0, 7*(i+1))
	}
	return out
}
