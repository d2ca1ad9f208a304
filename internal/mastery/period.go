package mastery

import (
	"time"

	"github.com/basil51/ai-school-sub003/internal/apperr"
)

// Period is the reporting window of a mastery report.
type Period string

const (
	PeriodDaily   Period = "daily"
	PeriodWeekly  Period = "weekly"
	PeriodMonthly Period = "monthly"
)

// DefaultPeriod is used when a request names no period.
const DefaultPeriod = PeriodWeekly

// ParsePeriod validates s. The empty string selects DefaultPeriod.
func ParsePeriod(s string) (Period, error) {
	switch p := Period(s); p {
	case "":
		return DefaultPeriod, nil
	case PeriodDaily, PeriodWeekly, PeriodMonthly:
		return p, nil
	}
	return "", apperr.Validation("period must be one of daily, weekly, monthly; got %q", s)
}

// Days is the length of the period in days.
func (p Period) Days() int {
	switch p {
	case PeriodDaily:
		return 1
	case PeriodMonthly:
		return 30
	default:
		return 7
	}
}

// Since returns the start of the period ending at now.
func (p Period) Since(now time.Time) time.Time {
	return now.AddDate(0, 0, -p.Days())
}
