package tax_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cotizador/internal/tax"
)

func TestParse(t *testing.T) {
	tbl, err := tax.Parse(" mx=16, US=0 ,CO=19,")
	require.NoError(t, err)
	assert.Equal(t, []string{"CO", "MX", "US"}, tbl.Codes())

	for _, bad := range []string{"MX", "MX=abc", "=5", "MX=101", "MX=-1"} {
		_, err := tax.Parse(bad)
		assert.Error(t, err, bad)
	}
}

func TestTableTax(t *testing.T) {
	tbl, err := tax.Parse("MX=16,US=0")
	require.NoError(t, err)

	got, err := tbl.Tax(decimal.RequireFromString("7231.03"), "mx")
	require.NoError(t, err)
	assert.True(t, got.Equal(decimal.RequireFromString("1156.96")), "got %s", got)

	got, err = tbl.Tax(decimal.RequireFromString("10"), "US")
	require.NoError(t, err)
	assert.True(t, got.IsZero())

	_, err = tbl.Tax(decimal.RequireFromString("10"), "AR")
	assert.ErrorIs(t, err, tax.ErrUnknownJurisdiction)
}
