package fisk

import "fmt"

// ValidateOIB valida el dígito de control del OIB (ISO 7064, MOD 11,10).
func ValidateOIB(oib string) error {
	if len(oib) != 11 {
		return fmt.Errorf("fisk: OIB debe tener 11 dígitos, se recibieron %d", len(oib))
	}
	for _, r := range oib {
		if r < '0' || r > '9' {
			return fmt.Errorf("fisk: OIB solo admite dígitos")
		}
	}
	expected := ComputeOIBControlDigit(oib[:10])
	if oib[10] != expected {
		return fmt.Errorf("fisk: dígito de control del OIB inválido: esperado %c, recibido %c", expected, oib[10])
	}
	return nil
}

// ComputeOIBControlDigit calcula el dígito de control para los 10 primeros dígitos.
func ComputeOIBControlDigit(base string) byte {
	a := 10
	for i := 0; i < len(base) && i < 10; i++ {
		a = (a + int(base[i]-'0')) % 10
		if a == 0 {
			a = 10
		}
		a = (a * 2) % 11
	}
	k := 11 - a
	if k == 10 {
		k = 0
	}
	return byte('0' + k)
}
