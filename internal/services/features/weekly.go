package features

import (
	"time"

	"SalesCast/internal/domain/models"
	"SalesCast/pkg/util"
)

// Aggregate turns raw records into the last nWeeks weekly buckets.
//
// Records dated after cutoff are ignored. Weeks run Tuesday..Monday and are
// labelled by the Monday; weeks without sales inside the observed span are
// zero-filled. The first bucket is dropped because its prior-week quantity is
// undefined. nWeeks <= 0 keeps every bucket. Input order does not matter.
func Aggregate(txs []models.TransactionRecord, nWeeks int, cutoff time.Time, holidays *HolidayCalendar) []models.WeeklyBucket {
	limit := util.DateOnly(cutoff)

	sums := make(map[time.Time]float64)
	var first, last time.Time
	for _, tx := range txs {
		d := util.DateOnly(tx.Date)
		if d.After(limit) {
			continue
		}
		we := util.WeekEnding(d)
		sums[we] += tx.Quantity
		if first.IsZero() || we.Before(first) {
			first = we
		}
		if we.After(last) {
			last = we
		}
	}
	if len(sums) == 0 {
		return []models.WeeklyBucket{}
	}

	series := make([]models.WeeklyBucket, 0, len(sums)+1)
	prev := 0.0
	for we := first; !we.After(last); we = we.AddDate(0, 0, 7) {
		q := sums[we]
		series = append(series, models.WeeklyBucket{
			WeekEnding:        we,
			Quantity:          q,
			PriorWeekQuantity: prev,
			CalendarFeatures:  FeaturesFor(we, holidays),
		})
		prev = q
	}

	series = series[1:]
	if nWeeks > 0 && len(series) > nWeeks {
		series = series[len(series)-nWeeks:]
	}
	return series
}

// CheckHistory returns an *models.InsufficientHistoryError when fewer than needed buckets exist.
func CheckHistory(buckets []models.WeeklyBucket, needed int) error {
	if len(buckets) < needed {
		return &models.InsufficientHistoryError{Found: len(buckets), Needed: needed}
	}
	return nil
}

// Rows converts buckets to model input rows.
func Rows(buckets []models.WeeklyBucket) [][]float64 {
	out := make([][]float64, len(buckets))
	for i, b := range buckets {
		out[i] = b.Row()
	}
	return out
}
