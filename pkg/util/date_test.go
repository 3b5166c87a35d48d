package util

import (
    "testing"
    "time"
)

func day(y int, m time.Month, d int) time.Time {
    return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestWeekEndingMapsTuesdayThroughMonday(t *testing.T) {
    // 2024-06-04 is a Tuesday, 2024-06-10 a Monday.
    want := day(2024, 6, 10)
    for d := 4; d <= 10; d++ {
        got := WeekEnding(day(2024, 6, d))
        if !got.Equal(want) {
            t.Fatalf("2024-06-%02d: got %s want %s", d, FormatDate(got), FormatDate(want))
        }
    }
    if got := WeekEnding(day(2024, 6, 11)); !got.Equal(day(2024, 6, 17)) {
        t.Fatalf("tuesday should open next week, got %s", FormatDate(got))
    }
}

func TestWeekEndingIgnoresTimeOfDay(t *testing.T) {
    late := time.Date(2024, 6, 10, 23, 59, 59, 0, time.UTC)
    if got := WeekEnding(late); !got.Equal(day(2024, 6, 10)) {
        t.Fatalf("unexpected week ending %s", FormatDate(got))
    }
}

func TestAuditCutoff(t *testing.T) {
    cases := []struct {
        now  time.Time
        want time.Time
    }{
        {day(2024, 6, 12), day(2024, 6, 10)},                        // wednesday
        {day(2024, 6, 11), day(2024, 6, 10)},                        // tuesday
        {time.Date(2024, 6, 10, 15, 0, 0, 0, time.UTC), day(2024, 6, 3)}, // monday
        {day(2024, 6, 16), day(2024, 6, 10)},                        // sunday
    }
    for _, c := range cases {
        if got := AuditCutoff(c.now); !got.Equal(c.want) {
            t.Fatalf("now=%s: got %s want %s", c.now, FormatDate(got), FormatDate(c.want))
        }
    }
}

func TestParseDate(t *testing.T) {
    cases := []struct {
        in   string
        year int
        want time.Time
    }{
        {"2025-08-17", 0, day(2025, 8, 17)},
        {"1 January", 2025, day(2025, 1, 1)},
        {"17 Agustus", 2025, day(2025, 8, 17)},
        {"25 December 2024", 2025, day(2024, 12, 25)},
    }
    for _, c := range cases {
        got, err := ParseDate(c.in, c.year)
        if err != nil {
            t.Fatalf("%q: %v", c.in, err)
        }
        if !got.Equal(c.want) {
            t.Fatalf("%q: got %s want %s", c.in, FormatDate(got), FormatDate(c.want))
        }
    }
}

func TestParseDateRejectsMissingYear(t *testing.T) {
    if _, err := ParseDate("1 January", 0); err == nil {
        t.Fatalf("expected error")
    }
    if _, err := ParseDate("someday", 2025); err == nil {
        t.Fatalf("expected error")
    }
}
