package wikidata

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DateCategory classifies a decoded timestamp by how much of the date
// is actually asserted upstream.
type DateCategory int

const (
	DateYear DateCategory = iota
	DateYearMonth
	DateFull
)

// String implements fmt.Stringer. The values double as the
// date_category column content.
func (c DateCategory) String() string {
	switch c {
	case DateFull:
		return "full"
	case DateYearMonth:
		return "year_month"
	default:
		return "year"
	}
}

// Wikibase time precisions. Only day, month, and year-or-coarser are
// distinguished downstream.
const (
	PrecisionDay   = 11
	PrecisionMonth = 10
	PrecisionYear  = 9
)

// TimeValue is a decoded compact calendar string. Month and Day are
// zero when the precision does not assert them.
type TimeValue struct {
	Year      int
	Month     int
	Day       int
	Precision int
}

// ParseTime decodes a wikibase time string such as
// "+1998-11-23T00:00:00Z" together with its precision. Timestamps
// before year 1 and malformed strings are rejected.
func ParseTime(s string, precision int) (TimeValue, error) {
	var tv TimeValue

	trimmed := strings.TrimPrefix(s, "+")
	if strings.HasPrefix(trimmed, "-") {
		return tv, fmt.Errorf("unsupported negative year in %q", s)
	}

	// +YYYY-MM-DDTHH:MM:SSZ; year may exceed four digits.
	datePart, _, ok := strings.Cut(trimmed, "T")
	if !ok {
		return tv, fmt.Errorf("malformed time %q", s)
	}
	parts := strings.Split(datePart, "-")
	if len(parts) != 3 {
		return tv, fmt.Errorf("malformed date in %q", s)
	}

	year, err := strconv.Atoi(parts[0])
	if err != nil || year < 1 {
		return tv, fmt.Errorf("bad year in %q", s)
	}
	month, err := strconv.Atoi(parts[1])
	if err != nil || month < 0 || month > 12 {
		return tv, fmt.Errorf("bad month in %q", s)
	}
	day, err := strconv.Atoi(parts[2])
	if err != nil || day < 0 || day > 31 {
		return tv, fmt.Errorf("bad day in %q", s)
	}

	tv.Year = year
	tv.Precision = precision

	// The upstream pads unasserted fields with 00; drop them according
	// to precision so category derivation only depends on what is real.
	if precision >= PrecisionMonth && month > 0 {
		tv.Month = month
	}
	if precision >= PrecisionDay && day > 0 {
		tv.Day = day
	}

	return tv, nil
}

// Category classifies the value purely from precision and the presence
// of month/day.
func (t TimeValue) Category() DateCategory {
	switch {
	case t.Precision >= PrecisionDay && t.Day > 0:
		return DateFull
	case t.Precision >= PrecisionMonth && t.Month > 0:
		return DateYearMonth
	default:
		return DateYear
	}
}

// Human renders the value at its asserted precision:
// "1998", "1998-11", or "1998-11-23".
func (t TimeValue) Human() string {
	switch t.Category() {
	case DateFull:
		return fmt.Sprintf("%04d-%02d-%02d", t.Year, t.Month, t.Day)
	case DateYearMonth:
		return fmt.Sprintf("%04d-%02d", t.Year, t.Month)
	default:
		return fmt.Sprintf("%04d", t.Year)
	}
}

// Time converts the value to a UTC time.Time, substituting January 1
// for unasserted fields. Used for the firstReleaseAt column.
func (t TimeValue) Time() time.Time {
	month := t.Month
	if month == 0 {
		month = 1
	}
	day := t.Day
	if day == 0 {
		day = 1
	}
	return time.Date(t.Year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
}
