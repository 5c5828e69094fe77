package tax

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"cotizador/internal/pricing"
)

var ErrUnknownJurisdiction = errors.New("unknown tax jurisdiction")

var hundred = decimal.NewFromInt(100)

// Table maps a jurisdiction code (e.g. "MX") to a percent rate.
type Table map[string]decimal.Decimal

// Parse reads "MX=16,US=0,CO=19" style rate lists.
func Parse(s string) (Table, error) {
	t := Table{}
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		code, rate, ok := strings.Cut(part, "=")
		if !ok {
			return nil, fmt.Errorf("tax rate %q: expected CODE=PERCENT", part)
		}
		code = strings.ToUpper(strings.TrimSpace(code))
		if code == "" {
			return nil, fmt.Errorf("tax rate %q: empty jurisdiction", part)
		}
		d, err := decimal.NewFromString(strings.TrimSpace(rate))
		if err != nil {
			return nil, fmt.Errorf("tax rate %q: %w", part, err)
		}
		if d.IsNegative() || d.GreaterThan(hundred) {
			return nil, fmt.Errorf("tax rate %q: outside 0-100", part)
		}
		t[code] = d
	}
	return t, nil
}

// Tax returns subtotal * rate, rounded half-up to cents.
func (t Table) Tax(subtotal decimal.Decimal, jurisdiction string) (decimal.Decimal, error) {
	rate, ok := t[strings.ToUpper(strings.TrimSpace(jurisdiction))]
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: %s", ErrUnknownJurisdiction, jurisdiction)
	}
	return pricing.Round(subtotal.Mul(rate).Div(hundred)), nil
}

// Codes lists the configured jurisdictions.
func (t Table) Codes() []string {
	out := make([]string, 0, len(t))
	for k := range t {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func (t Table) String() string {
	parts := make([]string, 0, len(t))
	for _, k := range t.Codes() {
		parts = append(parts, k+"="+t[k].String())
	}
	return strconv.Itoa(len(t)) + " rates: " + strings.Join(parts, ",")
}
