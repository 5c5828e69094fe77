package validate

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	reID           = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)
	reJurisdiction = regexp.MustCompile(`^[A-Za-z]{2,3}$`)
	reCategory     = regexp.MustCompile(`^[a-z0-9_-]{1,32}$`)
)

// ID validates a simple resource identifier (component/promotion/supplier ids).
func ID(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, s != "" && reID.MatchString(s)
}

// Jurisdiction accepts a 2-3 letter tax code and upper-cases it.
func Jurisdiction(s string) (string, bool) {
	s = strings.ToUpper(strings.TrimSpace(s))
	return s, reJurisdiction.MatchString(s)
}

// Category is optional; empty means all.
func Category(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, s == "" || reCategory.MatchString(s)
}

// MaxQuantity caps any single requested quantity.
const MaxQuantity = 100000

// Qty parses a positive quantity, capped to keep previews bounded.
func Qty(s string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || !Quantity(n) {
		return 0, false
	}
	return n, true
}

// Quantity reports whether n is within 1..MaxQuantity.
func Quantity(n int) bool { return n >= 1 && n <= MaxQuantity }

// Percent accepts an integer fulfillment level 0..100.
func Percent(n int) bool { return n >= 0 && n <= 100 }

// Date parses YYYY-MM-DD. Empty input yields the zero time and ok.
func Date(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, true
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// Name validates a displayable name with a reasonable max length.
func Name(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" || len(s) > 80 {
		return "", false
	}
	return s, true
}
