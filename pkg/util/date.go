package util

import (
    "fmt"
    "strings"
    "time"
)

// DateLayout is the wire format for calendar dates.
const DateLayout = "2006-01-02"

// DateOnly drops the time of day, keeping the calendar date of t in its own location.
func DateOnly(t time.Time) time.Time {
    y, m, d := t.Date()
    return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// WeekEnding returns the Monday that closes the Tuesday..Monday week containing t.
func WeekEnding(t time.Time) time.Time {
    d := DateOnly(t)
    offset := (int(time.Monday) - int(d.Weekday()) + 7) % 7
    return d.AddDate(0, 0, offset)
}

// AuditCutoff returns the most recent Monday strictly before now's calendar date.
// That Monday closes the last completed audit week.
func AuditCutoff(now time.Time) time.Time {
    d := DateOnly(now)
    back := (int(d.Weekday()) - int(time.Monday) + 7) % 7
    if back == 0 {
        back = 7
    }
    return d.AddDate(0, 0, -back)
}

// FormatDate renders t as YYYY-MM-DD.
func FormatDate(t time.Time) string {
    return t.Format(DateLayout)
}

var indonesianMonths = map[string]string{
    "januari":   "January",
    "februari":  "February",
    "maret":     "March",
    "april":     "April",
    "mei":       "May",
    "juni":      "June",
    "juli":      "July",
    "agustus":   "August",
    "september": "September",
    "oktober":   "October",
    "november":  "November",
    "desember":  "December",
}

// ParseDate accepts YYYY-MM-DD, "2 January 2025", or "2 January" completed with year.
// Indonesian month names are accepted as well.
func ParseDate(s string, year int) (time.Time, error) {
    s = strings.TrimSpace(s)
    if s == "" {
        return time.Time{}, fmt.Errorf("empty date")
    }
    if t, err := time.Parse(DateLayout, s); err == nil {
        return t, nil
    }
    parts := strings.Fields(s)
    if len(parts) == 2 {
        if year <= 0 {
            return time.Time{}, fmt.Errorf("date %q has no year and none is configured", s)
        }
        parts = append(parts, fmt.Sprint(year))
    }
    if len(parts) != 3 {
        return time.Time{}, fmt.Errorf("unrecognized date %q", s)
    }
    if en, ok := indonesianMonths[strings.ToLower(parts[1])]; ok {
        parts[1] = en
    }
    t, err := time.Parse("2 January 2006", strings.Join(parts, " "))
    if err != nil {
        return time.Time{}, fmt.Errorf("unrecognized date %q: %w", s, err)
    }
    return t, nil
}
