package fisk

import (
	"errors"

	"github.com/jhoicas/fiskal-api/internal/domain/xmlschema"
	pkgfisk "github.com/jhoicas/fiskal-api/pkg/fisk"
)

// Adresa dirección postal del local comercial.
type Adresa struct{ *xmlschema.Element }

// AdresaPodaci datos de entrada para NewAdresa; los vacíos quedan sin asignar.
type AdresaPodaci struct {
	Ulica            string
	KucniBroj        string
	KucniBrojDodatak string
	BrojPoste        string
	Naselje          string
	Opcina           string
}

func newAdresaElement() *Adresa {
	return &Adresa{xmlschema.New("Adresa", pkgfisk.NamespaceFisk,
		xmlschema.F("Ulica", xmlschema.Len(1, 100)),
		xmlschema.F("KucniBroj", xmlschema.Regex(`^\d{1,4}$`)),
		xmlschema.F("KucniBrojDodatak", xmlschema.Len(1, 4)),
		xmlschema.F("BrojPoste", xmlschema.Regex(`^\d{1,12}$`)),
		xmlschema.F("Naselje", xmlschema.Len(1, 35)),
		xmlschema.F("Opcina", xmlschema.Len(1, 35)),
	)}
}

// NewAdresa construye la dirección; devuelve todos los errores de validación juntos.
func NewAdresa(p AdresaPodaci) (*Adresa, error) {
	a := newAdresaElement()
	err := setNonEmpty(a.Element, [][2]string{
		{"Ulica", p.Ulica},
		{"KucniBroj", p.KucniBroj},
		{"KucniBrojDodatak", p.KucniBrojDodatak},
		{"BrojPoste", p.BrojPoste},
		{"Naselje", p.Naselje},
		{"Opcina", p.Opcina},
	})
	if err != nil {
		return nil, err
	}
	return a, nil
}

// AdresniPodatak es una unión cerrada: o una Adresa o una descripción libre
// (OstaliTipoviPP). La variante se fija al construir.
type AdresniPodatak struct {
	*xmlschema.Element
	adresa *Adresa
}

// NewAdresniPodatakAdresa variante con dirección postal.
func NewAdresniPodatakAdresa(a *Adresa) (*AdresniPodatak, error) {
	if a == nil {
		return nil, &xmlschema.FieldError{Type: "AdresniPodatak", Field: "Adresa", Err: xmlschema.ErrMissingRequired}
	}
	ap := &AdresniPodatak{
		Element: xmlschema.New("AdresniPodatak", pkgfisk.NamespaceFisk,
			xmlschema.F("Adresa", xmlschema.Type[*Adresa](), req),
		),
		adresa: a,
	}
	if err := ap.Set("Adresa", a); err != nil {
		return nil, err
	}
	return ap, nil
}

// NewAdresniPodatakOstalo variante para locales sin dirección fija (p. ej. venta ambulante).
func NewAdresniPodatakOstalo(opis string) (*AdresniPodatak, error) {
	ap := &AdresniPodatak{
		Element: xmlschema.New("AdresniPodatak", pkgfisk.NamespaceFisk,
			xmlschema.F("OstaliTipoviPP", xmlschema.Len(1, 100), req),
		),
	}
	if err := ap.Set("OstaliTipoviPP", opis); err != nil {
		return nil, err
	}
	return ap, nil
}

// Adresa devuelve la dirección o nil si la variante es OstaliTipoviPP.
func (ap *AdresniPodatak) Adresa() *Adresa { return ap.adresa }

// OstaliTipoviPP devuelve la descripción libre o "" si la variante es Adresa.
func (ap *AdresniPodatak) OstaliTipoviPP() string { return ap.GetString("OstaliTipoviPP") }

// setNonEmpty asigna los pares con valor y acumula los errores.
func setNonEmpty(e *xmlschema.Element, pairs [][2]string) error {
	var errs []error
	for _, kv := range pairs {
		if kv[1] == "" {
			continue
		}
		if err := e.Set(kv[0], kv[1]); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
