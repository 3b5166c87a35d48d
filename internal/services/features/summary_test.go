package features

import (
	"testing"

	"SalesCast/internal/domain/models"

	"github.com/stretchr/testify/assert"
)

func TestSummarize(t *testing.T) {
	pts := []models.HistoricalPoint{
		{Quantity: 2, Revenue: 15000},
		{Quantity: 4, Revenue: 30000},
		{Quantity: 6, Revenue: 45000},
	}
	s := Summarize(pts)
	assert.Equal(t, 3, s.Weeks)
	assert.Equal(t, 12.0, s.TotalQuantity)
	assert.Equal(t, 4.0, s.MeanQuantity)
	assert.InDelta(t, 2.0, s.StdDevQuantity, 1e-9)
	assert.Equal(t, int64(90000), s.TotalRevenue)
}

func TestSummarizeSmallInputs(t *testing.T) {
	assert.Equal(t, models.HistorySummary{}, Summarize(nil))

	s := Summarize([]models.HistoricalPoint{{Quantity: 9, Revenue: 10}})
	assert.Equal(t, 9.0, s.MeanQuantity)
	assert.Zero(t, s.StdDevQuantity)
}
