package fiskalizacija

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/unicode/norm"

	"github.com/jhoicas/fiskal-api/internal/application/dto"
	"github.com/jhoicas/fiskal-api/internal/domain"
	domainfisk "github.com/jhoicas/fiskal-api/internal/domain/fisk"
	pkgfisk "github.com/jhoicas/fiskal-api/pkg/fisk"
)

// clean recorta y normaliza a NFC: los textos con č, ć, ž, š, đ llegan a veces descompuestos.
func clean(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}

func boolStr(b bool) string {
	if b {
		return pkgfisk.True
	}
	return pkgfisk.False
}

func checkOIB(campo, oib string) error {
	if err := pkgfisk.ValidateOIB(oib); err != nil {
		return fmt.Errorf("%w: %s: %v", domain.ErrInvalidOIB, campo, err)
	}
	return nil
}

func invalid(err error) error {
	return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
}

// ── PoslovniProstor ──────────────────────────────────────────────────────────

func buildPoslovniProstor(req dto.PoslovniProstorRequest, specNamj string) (*domainfisk.PoslovniProstor, error) {
	var ap *domainfisk.AdresniPodatak
	var err error
	switch {
	case req.Adresa != nil && req.OstaliTipoviPP != "":
		return nil, invalid(errors.New("adresa y ostali_tipovi_pp son excluyentes"))
	case req.Adresa != nil:
		var a *domainfisk.Adresa
		a, err = domainfisk.NewAdresa(domainfisk.AdresaPodaci{
			Ulica:            clean(req.Adresa.Ulica),
			KucniBroj:        clean(req.Adresa.KucniBroj),
			KucniBrojDodatak: clean(req.Adresa.KucniBrojDodatak),
			BrojPoste:        clean(req.Adresa.BrojPoste),
			Naselje:          clean(req.Adresa.Naselje),
			Opcina:           clean(req.Adresa.Opcina),
		})
		if err == nil {
			ap, err = domainfisk.NewAdresniPodatakAdresa(a)
		}
	case req.OstaliTipoviPP != "":
		ap, err = domainfisk.NewAdresniPodatakOstalo(clean(req.OstaliTipoviPP))
	default:
		return nil, invalid(errors.New("falta adresa u ostali_tipovi_pp"))
	}
	if err != nil {
		return nil, invalid(err)
	}

	p := domainfisk.PoslovniProstorPodaci{
		Oib:             req.Oib,
		OznPoslProstora: clean(req.OznPoslProstora),
		AdresniPodatak:  ap,
		RadnoVrijeme:    clean(req.RadnoVrijeme),
		SpecNamj:        firstNonEmpty(req.SpecNamj, specNamj),
	}
	if !req.DatumPocetkaPrimjene.IsZero() {
		p.DatumPocetkaPrimjene = req.DatumPocetkaPrimjene.Format(pkgfisk.LayoutDatum)
	}
	if req.Zatvaranje {
		p.OznakaZatvaranja = pkgfisk.OznakaZatvaranjaZatvoren
	}
	pp, err := domainfisk.NewPoslovniProstor(p)
	if err != nil {
		return nil, invalid(err)
	}
	return pp, nil
}

// ── Racun ────────────────────────────────────────────────────────────────────

// buildRacun traduce el DTO al elemento Racun. ZastKod se calcula solo a medida
// que se asignan sus dependencias.
func buildRacun(zki *domainfisk.ZKICalculator, req dto.RacunRequest, datVrijeme time.Time, oibOper, specNamj string) (*domainfisk.Racun, error) {
	r := domainfisk.NewRacun(zki)
	var errs []error
	set := func(field string, v any) {
		if err := r.Set(field, v); err != nil {
			errs = append(errs, err)
		}
	}

	set("Oib", req.Oib)
	set("USustPdv", boolStr(req.USustPdv))
	set("DatVrijeme", datVrijeme.Format(pkgfisk.LayoutDatumVrijeme))
	set("OznSlijed", strings.ToUpper(req.OznSlijed))

	br, err := domainfisk.NewBrRac(req.BrOznRac, req.OznPosPr, req.OznNapUr)
	if err != nil {
		errs = append(errs, err)
	} else {
		set("BrRac", br)
	}

	if pdv, err := porezi(req.Pdv); err != nil {
		errs = append(errs, err)
	} else if len(pdv) > 0 {
		set("Pdv", pdv)
	}
	if pnp, err := porezi(req.Pnp); err != nil {
		errs = append(errs, err)
	} else if len(pnp) > 0 {
		set("Pnp", pnp)
	}
	if len(req.OstaliPor) > 0 {
		ost := make([]*domainfisk.OstPorez, 0, len(req.OstaliPor))
		for _, p := range req.OstaliPor {
			op, err := domainfisk.NewOstPorez(clean(p.Naziv), pkgfisk.FormatIznos(p.Stopa), pkgfisk.FormatIznos(p.Osnovica), pkgfisk.FormatIznos(p.Iznos))
			if err != nil {
				errs = append(errs, err)
				continue
			}
			ost = append(ost, op)
		}
		set("OstaliPor", ost)
	}

	setIznos := func(field string, d *decimal.Decimal) {
		if d != nil {
			set(field, pkgfisk.FormatIznos(*d))
		}
	}
	setIznos("IznosOslobPdv", req.IznosOslobPdv)
	setIznos("IznosMarza", req.IznosMarza)
	setIznos("IznosNePodlOpor", req.IznosNePodlOpor)

	if len(req.Naknade) > 0 {
		nak := make([]*domainfisk.Naknada, 0, len(req.Naknade))
		for _, n := range req.Naknade {
			nn, err := domainfisk.NewNaknada(clean(n.Naziv), pkgfisk.FormatIznos(n.Iznos))
			if err != nil {
				errs = append(errs, err)
				continue
			}
			nak = append(nak, nn)
		}
		set("Naknade", nak)
	}

	set("IznosUkupno", pkgfisk.FormatIznos(req.IznosUkupno))
	set("NacinPlac", strings.ToUpper(req.NacinPlac))
	set("OibOper", firstNonEmpty(req.OibOper, oibOper))
	set("NakDost", boolStr(req.NakDost))
	if req.ParagonBrRac != "" {
		set("ParagonBrRac", clean(req.ParagonBrRac))
	}
	if s := firstNonEmpty(req.SpecNamj, specNamj); s != "" {
		set("SpecNamj", s)
	}

	if err := errors.Join(errs...); err != nil {
		return nil, invalid(err)
	}
	return r, nil
}

func porezi(in []dto.PorezDTO) ([]*domainfisk.Porez, error) {
	out := make([]*domainfisk.Porez, 0, len(in))
	for _, p := range in {
		pz, err := domainfisk.NewPorez(pkgfisk.FormatIznos(p.Stopa), pkgfisk.FormatIznos(p.Osnovica), pkgfisk.FormatIznos(p.Iznos))
		if err != nil {
			return nil, err
		}
		out = append(out, pz)
	}
	return out, nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
