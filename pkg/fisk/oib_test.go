package fisk_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/fiskal-api/pkg/fisk"
)

func TestValidateOIB(t *testing.T) {
	casos := []struct {
		oib string
		ok  bool
	}{
		{"69435151530", true},
		{"12345678903", true},
		{"98765432106", true},
		{"12345678901", false},
		{"1234567890", false},
		{"1234567890a", false},
	}
	for _, c := range casos {
		err := fisk.ValidateOIB(c.oib)
		if c.ok {
			assert.NoError(t, err, c.oib)
		} else {
			assert.Error(t, err, c.oib)
		}
	}
}

func TestComputeOIBControlDigit(t *testing.T) {
	assert.Equal(t, byte('0'), fisk.ComputeOIBControlDigit("6943515153"))
	assert.Equal(t, byte('1'), fisk.ComputeOIBControlDigit("0000000000"))
}

func TestFormatIznos(t *testing.T) {
	assert.Equal(t, "100.00", fisk.FormatIznos(decimal.NewFromInt(100)))
	assert.Equal(t, "12.35", fisk.FormatIznos(decimal.RequireFromString("12.345")))
	assert.Equal(t, "-3.10", fisk.FormatIznos(decimal.RequireFromString("-3.1")))
	assert.Equal(t, "1.24", fisk.FormatIznos(decimal.RequireFromString("1.235")))

	d, err := fisk.ParseIznos("25.00")
	require.NoError(t, err)
	assert.True(t, d.Equal(decimal.NewFromInt(25)))

	_, err = fisk.ParseIznos("x")
	assert.Error(t, err)
	_, err = fisk.ParseIznos("1,00")
	assert.Error(t, err)
}

func TestEndpoint(t *testing.T) {
	assert.Equal(t, fisk.EndpointProd, fisk.Endpoint(fisk.EnvProd))
	assert.Equal(t, fisk.EndpointDemo, fisk.Endpoint(fisk.EnvDemo))
	assert.Equal(t, fisk.EndpointDemo, fisk.Endpoint(""))
}
