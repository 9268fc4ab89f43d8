package domain

import (
	"fmt"
	"time"

	"github.com/Cab6701/WaterService/internal/clock"
)

// Period identifies one billing cycle as a (year, quarter) pair.
// Quarters are 1-based: months 1-3 are Q1, months 10-12 are Q4.
type Period struct {
	Year    int `json:"year"`
	Quarter int `json:"quarter"`
}

// CurrentPeriod resolves the billing period containing the clock's now.
func CurrentPeriod(c clock.Clock) Period {
	now := c.Now().UTC()
	return Period{
		Year:    now.Year(),
		Quarter: (int(now.Month()) + 2) / 3,
	}
}

// Valid reports whether the quarter is in range.
func (p Period) Valid() bool {
	return p.Quarter >= 1 && p.Quarter <= 4
}

// Span returns the calendar bounds of the period: the first day of the
// quarter's first month and the first day of the following quarter.
func (p Period) Span() (start, end time.Time) {
	startMonth := time.Month((p.Quarter-1)*3 + 1)
	start = time.Date(p.Year, startMonth, 1, 0, 0, 0, 0, time.UTC)
	end = start.AddDate(0, 3, 0)
	return start, end
}

func (p Period) String() string {
	return fmt.Sprintf("%dQ%d", p.Year, p.Quarter)
}
