package features

import (
	"time"

	"SalesCast/internal/domain/models"
	"SalesCast/pkg/util"
)

const calendarWindowDays = 7

// HolidayCalendar is an immutable set of holiday dates. A nil calendar has no holidays.
type HolidayCalendar struct {
	days map[time.Time]struct{}
}

// NewHolidayCalendar normalizes dates to calendar days.
func NewHolidayCalendar(dates ...time.Time) *HolidayCalendar {
	c := &HolidayCalendar{days: make(map[time.Time]struct{}, len(dates))}
	for _, d := range dates {
		c.days[util.DateOnly(d)] = struct{}{}
	}
	return c
}

func (c *HolidayCalendar) Contains(t time.Time) bool {
	if c == nil {
		return false
	}
	_, ok := c.days[util.DateOnly(t)]
	return ok
}

func (c *HolidayCalendar) Len() int {
	if c == nil {
		return 0
	}
	return len(c.days)
}

// IsPayday reports whether the day of month falls in the salary window (>= 25 or <= 3).
func IsPayday(t time.Time) bool {
	d := t.Day()
	return d >= 25 || d <= 3
}

// FeaturesFor computes the indicators over the 7 days ending on date, inclusive.
func FeaturesFor(date time.Time, holidays *HolidayCalendar) models.CalendarFeatures {
	end := util.DateOnly(date)
	var f models.CalendarFeatures
	for i := 0; i < calendarWindowDays; i++ {
		d := end.AddDate(0, 0, -i)
		if IsPayday(d) {
			f.IsPaydayWeek = true
		}
		if holidays.Contains(d) {
			f.IsHolidayWeek = true
		}
	}
	return f
}

// FeaturesForDates returns one feature row per date, in input order.
func FeaturesForDates(dates []time.Time, holidays *HolidayCalendar) []models.CalendarFeatures {
	out := make([]models.CalendarFeatures, len(dates))
	for i, d := range dates {
		out[i] = FeaturesFor(d, holidays)
	}
	return out
}
