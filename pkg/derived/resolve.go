// Package derived computes month-partitioned views and aggregates from the raw
// records. Everything here is pure; the clock is always passed in.
package derived

import (
	"strconv"
	"strings"
	"time"

	"github.com/amirasaad/finsync/pkg/domain"
)

// todayTokens mark a date string as "today" regardless of what follows.
var todayTokens = []string{"hoje", "today"}

// monthCodes maps lower-case three-letter codes to calendar indexes.
// Portuguese codes are canonical; English ones are accepted on read.
var monthCodes = map[string]int{
	"jan": 0, "fev": 1, "feb": 1, "mar": 2, "abr": 3, "apr": 3,
	"mai": 4, "may": 4, "jun": 5, "jul": 6, "ago": 7, "aug": 7,
	"set": 8, "sep": 8, "out": 9, "oct": 9, "nov": 10, "dez": 11, "dec": 11,
}

// Encoding is the form a transaction date string was written in.
type Encoding int

const (
	EncodingUnknown Encoding = iota
	EncodingToday
	EncodingShort
	EncodingISO
)

// Classify reports which of the three date encodings s uses.
func Classify(s string) Encoding {
	if isToday(s) {
		return EncodingToday
	}
	if _, _, ok := parseISO(s); ok {
		return EncodingISO
	}
	if _, _, ok := parseShort(s); ok {
		return EncodingShort
	}
	return EncodingUnknown
}

// ResolveDate returns the partition a date string belongs to. Short dates
// carry no year, so contextYear (the active month's year) is used; when it is
// empty the current year is assumed.
func ResolveDate(date, contextYear string, now time.Time) (domain.Partition, bool) {
	switch Classify(date) {
	case EncodingToday:
		return domain.PartitionOf(now), true
	case EncodingISO:
		year, month, _ := parseISO(date)
		return domain.Partition{Month: domain.MonthNames[month], Year: strconv.Itoa(year)}, true
	case EncodingShort:
		_, month, _ := parseShort(date)
		if contextYear == "" {
			contextYear = strconv.Itoa(now.Year())
		}
		return domain.Partition{Month: domain.MonthNames[month], Year: contextYear}, true
	default:
		return domain.Partition{}, false
	}
}

// ResolveTransaction prefers the explicit label and falls back to the date.
func ResolveTransaction(tx domain.Transaction, contextYear string, now time.Time) (domain.Partition, bool) {
	if p, ok := tx.Label(); ok {
		return p, true
	}
	return ResolveDate(tx.Date, contextYear, now)
}

// DueOn reports whether a date string denotes the calendar day of today.
func DueOn(date string, today time.Time) bool {
	switch Classify(date) {
	case EncodingToday:
		return true
	case EncodingISO:
		return strings.HasPrefix(strings.TrimSpace(date), today.Format(time.DateOnly))
	case EncodingShort:
		day, month, _ := parseShort(date)
		return day == today.Day() && month == int(today.Month())-1
	default:
		return false
	}
}

func isToday(s string) bool {
	lower := strings.ToLower(s)
	for _, tok := range todayTokens {
		if strings.Contains(lower, tok) {
			return true
		}
	}
	return false
}

// parseISO reads YYYY-MM-DD from the start of s; month is zero-based.
func parseISO(s string) (year, month int, ok bool) {
	s = strings.TrimSpace(s)
	if len(s) < 10 || s[4] != '-' || s[7] != '-' {
		return 0, 0, false
	}
	year, err := strconv.Atoi(s[:4])
	if err != nil {
		return 0, 0, false
	}
	m, err := strconv.Atoi(s[5:7])
	if err != nil || m < 1 || m > 12 {
		return 0, 0, false
	}
	if _, err := strconv.Atoi(s[8:10]); err != nil {
		return 0, 0, false
	}
	return year, m - 1, true
}

// parseShort reads "<day> <code>" such as "24 Jan"; month is zero-based.
func parseShort(s string) (day, month int, ok bool) {
	fields := strings.Fields(s)
	if len(fields) < 2 {
		return 0, 0, false
	}
	day, err := strconv.Atoi(fields[0])
	if err != nil || day < 1 || day > 31 {
		return 0, 0, false
	}
	code := []rune(strings.ToLower(fields[1]))
	if len(code) < 3 {
		return 0, 0, false
	}
	month, ok = monthCodes[string(code[:3])]
	return day, month, ok
}
