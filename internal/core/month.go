package core

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"
)

// MonthRef is a parsed "MM/YYYY" reporting period.
type MonthRef struct {
	Year  int
	Month int // 1-12
}

// ParseMonthRef parses "MM/YYYY". A single-digit month is tolerated.
func ParseMonthRef(s string) (MonthRef, error) {
	m, y, ok := strings.Cut(strings.TrimSpace(s), "/")
	if !ok {
		return MonthRef{}, ErrInvalidMonthRef
	}
	month, err := strconv.Atoi(m)
	if err != nil {
		return MonthRef{}, ErrInvalidMonthRef
	}
	year, err := strconv.Atoi(y)
	if err != nil || year < 1 {
		return MonthRef{}, ErrInvalidMonthRef
	}
	if month < 1 || month > 12 {
		return MonthRef{}, ErrInvalidMonth
	}
	return MonthRef{Year: year, Month: month}, nil
}

func (m MonthRef) String() string {
	return fmt.Sprintf("%02d/%04d", m.Month, m.Year)
}

// Compare orders by year, then month.
func (m MonthRef) Compare(o MonthRef) int {
	if m.Year != o.Year {
		return m.Year - o.Year
	}
	return m.Month - o.Month
}

// MonthReference returns the "MM/YYYY" reference for t.
func MonthReference(t time.Time) string {
	return MonthRef{Year: t.Year(), Month: int(t.Month())}.String()
}

// CompareMonthReferences orders references chronologically. Unparsable
// references sort first, lexically among themselves. Ties between distinct
// spellings of the same month ("6/2024", "06/2024") fall back to lexical order.
func CompareMonthReferences(a, b string) int {
	ma, errA := ParseMonthRef(a)
	mb, errB := ParseMonthRef(b)
	switch {
	case errA != nil && errB != nil:
		return strings.Compare(a, b)
	case errA != nil:
		return -1
	case errB != nil:
		return 1
	}
	if c := ma.Compare(mb); c != 0 {
		return c
	}
	return strings.Compare(a, b)
}

// SortMonthReferences sorts refs in place chronologically. Sorting "MM/YYYY"
// strings lexically is wrong across years ("01/2030" < "12/2024").
func SortMonthReferences(refs []string) {
	slices.SortFunc(refs, CompareMonthReferences)
}
