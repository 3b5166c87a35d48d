package features

import (
	"math"

	"SalesCast/internal/domain/models"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Summarize computes totals and spread of the displayed history.
// Standard deviation is the sample estimate and 0 for fewer than two weeks.
func Summarize(points []models.HistoricalPoint) models.HistorySummary {
	s := models.HistorySummary{Weeks: len(points)}
	if len(points) == 0 {
		return s
	}
	qty := make([]float64, len(points))
	for i, p := range points {
		qty[i] = p.Quantity
		s.TotalRevenue += p.Revenue
	}
	s.TotalQuantity = floats.Sum(qty)
	if len(qty) < 2 {
		s.MeanQuantity = qty[0]
		return s
	}
	mean, std := stat.MeanStdDev(qty, nil)
	s.MeanQuantity = mean
	if !math.IsNaN(std) {
		s.StdDevQuantity = std
	}
	return s
}
