package features

import (
	"testing"
	"time"

	"SalesCast/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mondays returns n consecutive Mondays starting at 2024-01-01.
func mondays(n int) []time.Time {
	out := make([]time.Time, n)
	for i := range out {
		out[i] = date(2024, 1, 1).AddDate(0, 0, 7*i)
	}
	return out
}

func weeklyRecords(qty ...float64) []models.TransactionRecord {
	ms := mondays(len(qty))
	out := make([]models.TransactionRecord, len(qty))
	for i, q := range qty {
		out[i] = models.TransactionRecord{Date: ms[i], Quantity: q}
	}
	return out
}

func TestAggregateOrderedUniqueMondays(t *testing.T) {
	txs := []models.TransactionRecord{
		{Date: date(2024, 1, 17), Quantity: 3},
		{Date: date(2024, 1, 2), Quantity: 1},
		{Date: date(2024, 1, 9), Quantity: 2},
		{Date: date(2024, 1, 8), Quantity: 5},
		{Date: date(2024, 1, 30), Quantity: 4},
	}
	got := Aggregate(txs, 0, date(2024, 2, 5), nil)
	require.NotEmpty(t, got)
	for i, b := range got {
		assert.Equal(t, time.Monday, b.WeekEnding.Weekday())
		if i > 0 {
			assert.True(t, b.WeekEnding.After(got[i-1].WeekEnding))
			assert.Equal(t, 7*24*time.Hour, b.WeekEnding.Sub(got[i-1].WeekEnding))
		}
	}
}

func TestAggregateSumsWeeksAndShiftsPrior(t *testing.T) {
	txs := []models.TransactionRecord{
		{Date: date(2024, 1, 2), Quantity: 1},  // week ending 2024-01-08
		{Date: date(2024, 1, 8), Quantity: 5},  // same week
		{Date: date(2024, 1, 9), Quantity: 2},  // week ending 2024-01-15
		{Date: date(2024, 1, 17), Quantity: 3}, // week ending 2024-01-22
	}
	got := Aggregate(txs, 0, date(2024, 1, 22), nil)
	require.Len(t, got, 2)

	assert.Equal(t, date(2024, 1, 15), got[0].WeekEnding)
	assert.Equal(t, 2.0, got[0].Quantity)
	assert.Equal(t, 6.0, got[0].PriorWeekQuantity)

	assert.Equal(t, date(2024, 1, 22), got[1].WeekEnding)
	assert.Equal(t, 3.0, got[1].Quantity)
	assert.Equal(t, 2.0, got[1].PriorWeekQuantity)
}

func TestAggregatePriorWeekInvariant(t *testing.T) {
	got := Aggregate(weeklyRecords(10, 20, 30, 40, 50, 60), 0, date(2024, 3, 1), nil)
	require.Len(t, got, 5)
	for i := 1; i < len(got); i++ {
		assert.Equal(t, got[i-1].Quantity, got[i].PriorWeekQuantity)
	}
}

func TestAggregateZeroFillsSilentWeeks(t *testing.T) {
	txs := []models.TransactionRecord{
		{Date: date(2024, 1, 1), Quantity: 7},
		{Date: date(2024, 1, 29), Quantity: 9},
	}
	got := Aggregate(txs, 0, date(2024, 2, 5), nil)
	require.Len(t, got, 4)
	assert.Equal(t, []float64{0, 0, 0, 9}, quantities(got))
	assert.Equal(t, 7.0, got[0].PriorWeekQuantity)
}

func TestAggregateKeepsLastNWeeks(t *testing.T) {
	got := Aggregate(weeklyRecords(100, 120, 90, 110, 130, 95), 4, date(2024, 3, 1), nil)
	require.Len(t, got, 4)
	assert.Equal(t, []float64{90, 110, 130, 95}, quantities(got))
	assert.Equal(t, []float64{120, 90, 110, 130}, priors(got))
}

func TestAggregateShortHistoryIsNotAnError(t *testing.T) {
	got := Aggregate(weeklyRecords(5, 6), 4, date(2024, 3, 1), nil)
	assert.Len(t, got, 1)

	err := CheckHistory(got, 4)
	var ih *models.InsufficientHistoryError
	require.ErrorAs(t, err, &ih)
	assert.Equal(t, 1, ih.Found)
	assert.Equal(t, 4, ih.Needed)
	assert.NoError(t, CheckHistory(got, 1))
}

func TestAggregateEmpty(t *testing.T) {
	assert.Empty(t, Aggregate(nil, 4, date(2024, 3, 1), nil))
	// everything after the cutoff
	assert.Empty(t, Aggregate(weeklyRecords(1, 2, 3), 4, date(2023, 12, 25), nil))
}

func TestAggregateExcludesOpenWeek(t *testing.T) {
	// Monday 2024-01-08 to Wednesday 2024-01-10; "today" is Wednesday so the
	// cutoff is 2024-01-08 and the Tuesday/Wednesday sales are excluded.
	txs := []models.TransactionRecord{
		{Date: date(2023, 12, 25), Quantity: 4},
		{Date: date(2024, 1, 1), Quantity: 5},
		{Date: date(2024, 1, 8), Quantity: 6},
		{Date: date(2024, 1, 9), Quantity: 100},
		{Date: time.Date(2024, 1, 10, 8, 0, 0, 0, time.UTC), Quantity: 100},
	}
	got := Aggregate(txs, 0, date(2024, 1, 8), nil)
	require.Len(t, got, 2)
	last := got[len(got)-1]
	assert.Equal(t, date(2024, 1, 8), last.WeekEnding)
	assert.Equal(t, 6.0, last.Quantity)
}

func TestAggregateComputesCalendarOnWeekEnding(t *testing.T) {
	hol := NewHolidayCalendar(date(2024, 1, 10))
	got := Aggregate(weeklyRecords(1, 1, 1, 1), 0, date(2024, 2, 1), hol)
	require.Len(t, got, 3)

	// week ending 2024-01-08 covers Jan 2..8 -> day 2 and 3 are paydays
	assert.True(t, got[0].IsPaydayWeek)
	assert.False(t, got[0].IsHolidayWeek)
	// week ending 2024-01-15 covers Jan 9..15 -> holiday on the 10th
	assert.False(t, got[1].IsPaydayWeek)
	assert.True(t, got[1].IsHolidayWeek)
}

func TestRows(t *testing.T) {
	b := models.WeeklyBucket{
		Quantity:          12,
		PriorWeekQuantity: 7,
		CalendarFeatures:  models.CalendarFeatures{IsHolidayWeek: true},
	}
	assert.Equal(t, [][]float64{{12, 7, 0, 1}}, Rows([]models.WeeklyBucket{b}))
}

func quantities(bs []models.WeeklyBucket) []float64 {
	out := make([]float64, len(bs))
	for i, b := range bs {
		out[i] = b.Quantity
	}
	return out
}

func priors(bs []models.WeeklyBucket) []float64 {
	out := make([]float64, len(bs))
	for i, b := range bs {
		out[i] = b.PriorWeekQuantity
	}
	return out
}
