package wardrobe

import (
	"strings"
	"time"

	"wardrobeapi/errs"
)

const (
	RangeWeek  = "week"
	RangeMonth = "month"

	shortDateLayout = "02/01/2006"
	rangeSeparator  = " - "
)

// FormatCustomRange is the canonical token of a custom range, e.g.
// "01/03/2024 - 15/03/2024".
func FormatCustomRange(start, end time.Time) string {
	return start.Format(shortDateLayout) + rangeSeparator + end.Format(shortDateLayout)
}

// ResolveTimeRange turns a range token into inclusive bounds. Custom ranges
// cover whole days in the location of now.
func ResolveTimeRange(token string, now time.Time) (time.Time, time.Time, error) {
	switch token {
	case RangeWeek:
		return now.AddDate(0, 0, -7), now, nil
	case RangeMonth:
		return now.AddDate(0, -1, 0), now, nil
	}

	parts := strings.Split(token, rangeSeparator)
	if len(parts) != 2 {
		return time.Time{}, time.Time{}, errs.Validation("Unknown time range: " + token)
	}
	start, err := time.ParseInLocation(shortDateLayout, strings.TrimSpace(parts[0]), now.Location())
	if err != nil {
		return time.Time{}, time.Time{}, errs.Validation("Invalid start date: " + parts[0])
	}
	end, err := time.ParseInLocation(shortDateLayout, strings.TrimSpace(parts[1]), now.Location())
	if err != nil {
		return time.Time{}, time.Time{}, errs.Validation("Invalid end date: " + parts[1])
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, errs.Validation("End date must not be before start date")
	}
	return start, endOfDay(end), nil
}

func endOfDay(day time.Time) time.Time {
	return day.AddDate(0, 0, 1).Add(-time.Nanosecond)
}
