package fisk

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// FormatIznos formatea un importe con dos decimales y punto, como exige el esquema.
func FormatIznos(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// ParseIznos interpreta un importe textual del esquema.
func ParseIznos(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("fisk: importe inválido %q: %w", s, err)
	}
	return d, nil
}
