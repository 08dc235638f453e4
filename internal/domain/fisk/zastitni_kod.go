package fisk

import (
	"crypto"
	"crypto/md5"
	"crypto/rand"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"strings"
)

// ZKIParams contiene los datos que entran en el código de seguridad, en orden.
type ZKIParams struct {
	Oib         string // OIB del emisor
	DatVrijeme  string // dd.MM.yyyyTHH:mm:ss
	BrOznRac    string
	OznPosPr    string
	OznNapUr    string
	IznosUkupno string // con dos decimales, ej. 100.00
}

// ZKICalculator calcula el Zaštitni kod izdavatelja con la llave privada del contribuyente.
type ZKICalculator struct {
	key crypto.Signer
}

// NewZKICalculator crea el calculador. La llave debe ser RSA.
func NewZKICalculator(key crypto.Signer) *ZKICalculator {
	return &ZKICalculator{key: key}
}

// Calculate devuelve el ZKI: MD5 en hexadecimal (minúsculas) de la firma
// RSA PKCS#1 v1.5 con SHA-1 sobre la concatenación sin separadores:
// Oib + DatVrijeme + BrOznRac + OznPosPr + OznNapUr + IznosUkupno.
func (c *ZKICalculator) Calculate(p *ZKIParams) (string, error) {
	if p == nil {
		return "", fmt.Errorf("fisk: ZKIParams es obligatorio")
	}
	if c == nil || c.key == nil {
		return "", fmt.Errorf("fisk: llave privada no configurada para el ZKI")
	}
	campos := [...]struct{ name, value string }{
		{"Oib", p.Oib}, {"DatVrijeme", p.DatVrijeme}, {"BrOznRac", p.BrOznRac},
		{"OznPosPr", p.OznPosPr}, {"OznNapUr", p.OznNapUr}, {"IznosUkupno", p.IznosUkupno},
	}
	for _, campo := range campos {
		if strings.TrimSpace(campo.value) == "" {
			return "", fmt.Errorf("fisk: %s es obligatorio para el ZKI", campo.name)
		}
	}

	cadena := p.Oib + p.DatVrijeme + p.BrOznRac + p.OznPosPr + p.OznNapUr + p.IznosUkupno

	digest := sha1.Sum([]byte(cadena))
	sig, err := c.key.Sign(rand.Reader, digest[:], crypto.SHA1)
	if err != nil {
		return "", fmt.Errorf("fisk: firmar cadena ZKI: %w", err)
	}
	sum := md5.Sum(sig)
	return hex.EncodeToString(sum[:]), nil
}
