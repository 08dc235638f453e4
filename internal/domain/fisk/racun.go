package fisk

import (
	"slices"

	"github.com/jhoicas/fiskal-api/internal/domain/xmlschema"
	pkgfisk "github.com/jhoicas/fiskal-api/pkg/fisk"
)

// ── Elementos auxiliares ─────────────────────────────────────────────────────

// BrRac número de la factura: número secuencial, local y dispositivo de cobro.
type BrRac struct{ *xmlschema.Element }

// NewBrRac construye el número de factura.
func NewBrRac(brOznRac, oznPosPr, oznNapUr string) (*BrRac, error) {
	b := &BrRac{xmlschema.New("BrRac", pkgfisk.NamespaceFisk,
		xmlschema.F("BrOznRac", vBroj, req),
		xmlschema.F("OznPosPr", vOznaka, req),
		xmlschema.F("OznNapUr", vBroj, req),
	)}
	err := setNonEmpty(b.Element, [][2]string{
		{"BrOznRac", brOznRac},
		{"OznPosPr", oznPosPr},
		{"OznNapUr", oznNapUr},
	})
	if err != nil {
		return nil, err
	}
	return b, nil
}

// Porez línea de impuesto (PDV o PNP).
type Porez struct{ *xmlschema.Element }

// NewPorez construye el impuesto; importes con dos decimales.
func NewPorez(stopa, osnovica, iznos string) (*Porez, error) {
	p := &Porez{xmlschema.New("Porez", pkgfisk.NamespaceFisk,
		xmlschema.F("Stopa", vStopa, req),
		xmlschema.F("Osnovica", vIznos, req),
		xmlschema.F("Iznos", vIznos, req),
	)}
	err := setNonEmpty(p.Element, [][2]string{{"Stopa", stopa}, {"Osnovica", osnovica}, {"Iznos", iznos}})
	if err != nil {
		return nil, err
	}
	return p, nil
}

// OstPorez otro impuesto con nombre; se serializa como Porez.
type OstPorez struct{ *xmlschema.Element }

// NewOstPorez construye el impuesto con nombre.
func NewOstPorez(naziv, stopa, osnovica, iznos string) (*OstPorez, error) {
	p := &OstPorez{xmlschema.New("OstPorez", pkgfisk.NamespaceFisk,
		xmlschema.F("Naziv", xmlschema.Len(1, 100), req),
		xmlschema.F("Stopa", vStopa, req),
		xmlschema.F("Osnovica", vIznos, req),
		xmlschema.F("Iznos", vIznos, req),
	)}
	p.SetName("Porez")
	err := setNonEmpty(p.Element, [][2]string{{"Naziv", naziv}, {"Stopa", stopa}, {"Osnovica", osnovica}, {"Iznos", iznos}})
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Naknada cargo adicional (p. ej. retorno de envases).
type Naknada struct{ *xmlschema.Element }

// NewNaknada construye el cargo.
func NewNaknada(naziv, iznos string) (*Naknada, error) {
	n := &Naknada{xmlschema.New("Naknada", pkgfisk.NamespaceFisk,
		xmlschema.F("NazivN", xmlschema.Len(1, 100), req),
		xmlschema.F("IznosN", vIznos, req),
	)}
	if err := setNonEmpty(n.Element, [][2]string{{"NazivN", naziv}, {"IznosN", iznos}}); err != nil {
		return nil, err
	}
	return n, nil
}

// ── Racun ────────────────────────────────────────────────────────────────────

// Campos de los que depende el ZKI.
var zkiDependencias = []string{"Oib", "DatVrijeme", "BrRac", "IznosUkupno"}

// Racun factura fiscalizable. ZastKod es derivado: se recalcula con cada
// escritura de Oib, DatVrijeme, BrRac (o sus subcampos) e IznosUkupno;
// escribirlo directamente no tiene efecto.
type Racun struct {
	*xmlschema.Element
	zki    *ZKICalculator
	hooked map[*BrRac]struct{} // BrRac que ya notifican a esta factura
}

// NewRacun crea una factura vacía. zki puede ser nil: en ese caso ZastKod no se calcula.
func NewRacun(zki *ZKICalculator) *Racun {
	r := &Racun{
		Element: xmlschema.New("Racun", pkgfisk.NamespaceFisk,
			xmlschema.F("Oib", vOIB, req),
			xmlschema.F("USustPdv", vBool, req),
			xmlschema.F("DatVrijeme", vDatumVrijeme, req),
			xmlschema.F("OznSlijed", xmlschema.Enum(pkgfisk.OznSlijedPoslovniProstor, pkgfisk.OznSlijedNaplatniUredaj), req),
			xmlschema.F("BrRac", xmlschema.Type[*BrRac](), req),
			xmlschema.F("Pdv", xmlschema.ListOf[*Porez]()),
			xmlschema.F("Pnp", xmlschema.ListOf[*Porez]()),
			xmlschema.F("OstaliPor", xmlschema.ListOf[*OstPorez]()),
			xmlschema.F("IznosOslobPdv", vIznos),
			xmlschema.F("IznosMarza", vIznos),
			xmlschema.F("IznosNePodlOpor", vIznos),
			xmlschema.F("Naknade", xmlschema.ListOf[*Naknada]()),
			xmlschema.F("IznosUkupno", vIznos, req),
			xmlschema.F("NacinPlac", xmlschema.Enum(pkgfisk.NaciniPlacanja...), req),
			xmlschema.F("OibOper", vOIB, req),
			xmlschema.F("ZastKod", xmlschema.Regex(PatternZastKod)),
			xmlschema.F("NakDost", vBool, req),
			xmlschema.F("ParagonBrRac", xmlschema.Len(1, 100)),
			xmlschema.F("SpecNamj", xmlschema.Len(1, 1000)),
		),
		zki:    zki,
		hooked: map[*BrRac]struct{}{},
	}
	r.MarkComputed("ZastKod")
	r.OnSet(r.onSet)
	return r
}

func (r *Racun) onSet(field string) error {
	if !slices.Contains(zkiDependencias, field) {
		return nil
	}
	if field == "BrRac" {
		if b := r.BrRac(); b != nil && !r.isHooked(b) {
			r.hooked[b] = struct{}{}
			b.OnSet(func(string) error {
				if r.BrRac() != b {
					return nil
				}
				return r.recompute()
			})
		}
	}
	return r.recompute()
}

func (r *Racun) isHooked(b *BrRac) bool {
	_, ok := r.hooked[b]
	return ok
}

// recompute recalcula ZastKod; si falta algún dato lo deja vacío.
func (r *Racun) recompute() error {
	if r.zki == nil {
		return nil
	}
	b := r.BrRac()
	if b == nil {
		return r.SetComputed("ZastKod", nil)
	}
	p := &ZKIParams{
		Oib:         r.GetString("Oib"),
		DatVrijeme:  r.GetString("DatVrijeme"),
		BrOznRac:    b.GetString("BrOznRac"),
		OznPosPr:    b.GetString("OznPosPr"),
		OznNapUr:    b.GetString("OznNapUr"),
		IznosUkupno: r.GetString("IznosUkupno"),
	}
	if p.Oib == "" || p.DatVrijeme == "" || p.BrOznRac == "" || p.OznPosPr == "" || p.OznNapUr == "" || p.IznosUkupno == "" {
		return r.SetComputed("ZastKod", nil)
	}
	zk, err := r.zki.Calculate(p)
	if err != nil {
		return err
	}
	return r.SetComputed("ZastKod", zk)
}

// BrRac devuelve el número de factura asignado o nil.
func (r *Racun) BrRac() *BrRac {
	b, _ := r.Element.Get("BrRac")
	br, _ := b.(*BrRac)
	return br
}

// ZastKod devuelve el código de seguridad vigente.
func (r *Racun) ZastKod() string { return r.GetString("ZastKod") }
