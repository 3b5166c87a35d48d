package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionRecord is one logged sale event. Several records may share a date.
type TransactionRecord struct {
	Date     time.Time
	Quantity float64
}

// CalendarFeatures are the indicator flags of the 7-day window ending on a date.
type CalendarFeatures struct {
	IsPaydayWeek  bool
	IsHolidayWeek bool
}

// Row returns the flags as model inputs in [payday, holiday] order.
func (f CalendarFeatures) Row() []float64 {
	return []float64{boolToFloat(f.IsPaydayWeek), boolToFloat(f.IsHolidayWeek)}
}

// WeeklyBucket is one week of aggregated sales, labelled by its ending Monday.
// Buckets are derived per request and never persisted.
type WeeklyBucket struct {
	WeekEnding        time.Time
	Quantity          float64
	PriorWeekQuantity float64
	CalendarFeatures
}

// Row returns the bucket as a model input row:
// [quantity, prior_week_quantity, is_payday_week, is_holiday_week].
func (b WeeklyBucket) Row() []float64 {
	return []float64{
		b.Quantity,
		b.PriorWeekQuantity,
		boolToFloat(b.IsPaydayWeek),
		boolToFloat(b.IsHolidayWeek),
	}
}

// FeatureCount is the width of a WeeklyBucket row.
const FeatureCount = 4

// Product is a catalog entry. Prices are exact decimals.
type Product struct {
	Name      string
	UnitPrice decimal.Decimal
	Model     string
}

type ForecastPoint struct {
	Date              time.Time
	Product           string
	PredictedQuantity int64
	PredictedRevenue  int64
}

type HistoricalPoint struct {
	Date     time.Time
	Quantity float64
	Revenue  int64
}

// HistorySummary describes the displayed history window.
type HistorySummary struct {
	Weeks          int
	TotalQuantity  float64
	MeanQuantity   float64
	StdDevQuantity float64
	TotalRevenue   int64
}

// ForecastResult is the outcome of one forecast run.
type ForecastResult struct {
	RunID        string
	Product      string
	Cutoff       time.Time
	WindowPolicy string
	GeneratedAt  time.Time
	Historical   []HistoricalPoint
	Forecast     []ForecastPoint
	Summary      HistorySummary
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
