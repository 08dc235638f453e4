package fisk

import (
	"errors"

	"github.com/jhoicas/fiskal-api/internal/domain/xmlschema"
	pkgfisk "github.com/jhoicas/fiskal-api/pkg/fisk"
)

// PoslovniProstor local comercial que se registra ante el CIS.
type PoslovniProstor struct{ *xmlschema.Element }

// PoslovniProstorPodaci datos de entrada; los textos vacíos quedan sin asignar.
type PoslovniProstorPodaci struct {
	Oib                  string
	OznPoslProstora      string
	AdresniPodatak       *AdresniPodatak
	RadnoVrijeme         string
	DatumPocetkaPrimjene string // dd.MM.yyyy
	OznakaZatvaranja     string // "Z" al cerrar el local
	SpecNamj             string // OIB del proveedor del software
}

func newPoslovniProstorElement() *PoslovniProstor {
	return &PoslovniProstor{xmlschema.New("PoslovniProstor", pkgfisk.NamespaceFisk,
		xmlschema.F("Oib", vOIB, req),
		xmlschema.F("OznPoslProstora", vOznaka, req),
		xmlschema.F("AdresniPodatak", xmlschema.Type[*AdresniPodatak](), req),
		xmlschema.F("RadnoVrijeme", xmlschema.Len(1, 1000), req),
		xmlschema.F("DatumPocetkaPrimjene", vDatum, req),
		xmlschema.F("OznakaZatvaranja", xmlschema.Enum(pkgfisk.OznakaZatvaranjaZatvoren)),
		xmlschema.F("SpecNamj", xmlschema.Len(1, 1000)),
	)}
}

// NewPoslovniProstor construye el local. La obligatoriedad se comprueba al serializar.
func NewPoslovniProstor(p PoslovniProstorPodaci) (*PoslovniProstor, error) {
	pp := newPoslovniProstorElement()
	var errs []error
	if err := setNonEmpty(pp.Element, [][2]string{
		{"Oib", p.Oib},
		{"OznPoslProstora", p.OznPoslProstora},
		{"RadnoVrijeme", p.RadnoVrijeme},
		{"DatumPocetkaPrimjene", p.DatumPocetkaPrimjene},
		{"OznakaZatvaranja", p.OznakaZatvaranja},
		{"SpecNamj", p.SpecNamj},
	}); err != nil {
		errs = append(errs, err)
	}
	if p.AdresniPodatak != nil {
		if err := pp.Set("AdresniPodatak", p.AdresniPodatak); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return pp, nil
}
