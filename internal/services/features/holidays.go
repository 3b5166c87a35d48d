package features

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"SalesCast/internal/domain/models"
	"SalesCast/pkg/util"
)

var dateColumns = []string{"tanggal", "date"}

// LoadHolidayCalendar reads a holiday CSV. The date column is named "Tanggal"
// or "date"; without a recognized header the first column is used. Dates
// without a year get the configured year. Every failure wraps
// models.ErrMissingCalendarData so startup can abort.
func LoadHolidayCalendar(path string, year int) (*HolidayCalendar, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrMissingCalendarData, err)
	}
	defer f.Close()

	cal, err := ReadHolidayCalendar(f, year)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cal, nil
}

// ReadHolidayCalendar parses holiday CSV content from r.
func ReadHolidayCalendar(r io.Reader, year int) (*HolidayCalendar, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: empty file", models.ErrMissingCalendarData)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: read header: %v", models.ErrMissingCalendarData, err)
	}

	col := -1
	for i, h := range header {
		name := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		for _, want := range dateColumns {
			if name == want {
				col = i
			}
		}
	}

	var dates []time.Time
	line := 1
	if col < 0 {
		// no header, first row is data
		col = 0
		d, err := util.ParseDate(header[0], year)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", models.ErrMissingCalendarData, line, err)
		}
		dates = append(dates, d)
	}

	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", models.ErrMissingCalendarData, line, err)
		}
		if col >= len(rec) || strings.TrimSpace(rec[col]) == "" {
			continue
		}
		d, err := util.ParseDate(rec[col], year)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", models.ErrMissingCalendarData, line, err)
		}
		dates = append(dates, d)
	}

	if len(dates) == 0 {
		return nil, fmt.Errorf("%w: no holiday dates", models.ErrMissingCalendarData)
	}
	return NewHolidayCalendar(dates...), nil
}
