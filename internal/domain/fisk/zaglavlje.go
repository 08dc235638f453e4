package fisk

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/fiskal-api/internal/domain/xmlschema"
	pkgfisk "github.com/jhoicas/fiskal-api/pkg/fisk"
)

// Zaglavlje es la cabecera de cada mensaje: identificador único y marca de tiempo.
// Ambos se regeneran en cada serialización.
type Zaglavlje struct {
	*xmlschema.Element
	clock func() time.Time
}

// NewZaglavlje crea la cabecera con valores ya generados.
func NewZaglavlje() *Zaglavlje {
	z := &Zaglavlje{
		Element: xmlschema.New("Zaglavlje", pkgfisk.NamespaceFisk,
			xmlschema.F("IdPoruke", xmlschema.Regex(PatternUUID), req),
			xmlschema.F("DatumVrijeme", vDatumVrijeme, req),
		),
		clock: time.Now,
	}
	z.BeforeGenerate(z.Regenerate)
	_ = z.Regenerate()
	return z
}

// Regenerate asigna un IdPoruke (UUID v4) nuevo y la hora actual.
func (z *Zaglavlje) Regenerate() error {
	if err := z.Set("IdPoruke", uuid.NewString()); err != nil {
		return err
	}
	return z.Set("DatumVrijeme", z.clock().Format(pkgfisk.LayoutDatumVrijeme))
}

// IdPoruke devuelve el identificador de la última generación.
func (z *Zaglavlje) IdPoruke() string { return z.GetString("IdPoruke") }

// DatumVrijeme devuelve la marca de tiempo de la última generación.
func (z *Zaglavlje) DatumVrijeme() (time.Time, error) {
	t, err := time.ParseInLocation(pkgfisk.LayoutDatumVrijeme, z.GetString("DatumVrijeme"), time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("fisk: DatumVrijeme de cabecera: %w", err)
	}
	return t, nil
}
