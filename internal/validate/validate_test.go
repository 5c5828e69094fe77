package validate_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"cotizador/internal/validate"
)

func TestJurisdiction(t *testing.T) {
	got, ok := validate.Jurisdiction(" mx ")
	assert.True(t, ok)
	assert.Equal(t, "MX", got)

	for _, bad := range []string{"", "M", "MEXI", "M1"} {
		_, ok := validate.Jurisdiction(bad)
		assert.False(t, ok, bad)
	}
}

func TestQty(t *testing.T) {
	n, ok := validate.Qty("12")
	assert.True(t, ok)
	assert.Equal(t, 12, n)

	for _, bad := range []string{"", "0", "-3", "abc", "100001"} {
		_, ok := validate.Qty(bad)
		assert.False(t, ok, bad)
	}

	assert.True(t, validate.Quantity(1))
	assert.True(t, validate.Quantity(validate.MaxQuantity))
	assert.False(t, validate.Quantity(0))
	assert.False(t, validate.Quantity(validate.MaxQuantity+1))
	assert.False(t, validate.Quantity(2e17))
}

func TestDate(t *testing.T) {
	d, ok := validate.Date("")
	assert.True(t, ok)
	assert.True(t, d.IsZero())

	d, ok = validate.Date("2026-02-28")
	assert.True(t, ok)
	assert.Equal(t, 28, d.Day())

	_, ok = validate.Date("28/02/2026")
	assert.False(t, ok)
}

func TestIDAndPercent(t *testing.T) {
	_, ok := validate.ID("gpu-rtx4060")
	assert.True(t, ok)
	_, ok = validate.ID("../etc")
	assert.False(t, ok)

	assert.True(t, validate.Percent(0))
	assert.True(t, validate.Percent(100))
	assert.False(t, validate.Percent(101))
}
