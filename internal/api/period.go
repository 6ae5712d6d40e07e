package api

import "fmt"

// Period selects the time window for aggregate stats requests. The
// backend consumes the encoded string literally, so Encode produces
// exactly one of:
//
//	current-year | YYYY | YYYY-MM | last-N-months
type Period struct {
	kind   periodKind
	year   int
	month  int
	months int
}

type periodKind int

const (
	periodCurrentYear periodKind = iota
	periodYear
	periodMonth
	periodLastMonths
)

// CurrentYear selects the running calendar year. It is the zero Period.
func CurrentYear() Period {
	return Period{kind: periodCurrentYear}
}

// ForYear selects one calendar year.
func ForYear(year int) Period {
	return Period{kind: periodYear, year: year}
}

// ForMonth selects one calendar month.
func ForMonth(year, month int) Period {
	return Period{kind: periodMonth, year: year, month: month}
}

// LastMonths selects a rolling window of the last n months.
func LastMonths(n int) Period {
	return Period{kind: periodLastMonths, months: n}
}

// Encode renders the backend filter token.
func (p Period) Encode() string {
	switch p.kind {
	case periodYear:
		return fmt.Sprintf("%d", p.year)
	case periodMonth:
		return fmt.Sprintf("%d-%02d", p.year, p.month)
	case periodLastMonths:
		return fmt.Sprintf("last-%d-months", p.months)
	default:
		return "current-year"
	}
}

func (p Period) String() string { return p.Encode() }
