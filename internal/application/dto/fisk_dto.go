package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// EchoRequest body para POST /api/fisk/echo.
type EchoRequest struct {
	Poruka string `json:"poruka"`
}

// EchoResponse respuesta del CIS.
type EchoResponse struct {
	Poruka string   `json:"poruka"`
	Greske []string `json:"greske,omitempty"`
}

// AdresaDTO dirección del local. Si está vacía se usa OstaliTipoviPP.
type AdresaDTO struct {
	Ulica            string `json:"ulica,omitempty"`
	KucniBroj        string `json:"kucni_broj,omitempty"`
	KucniBrojDodatak string `json:"kucni_broj_dodatak,omitempty"`
	BrojPoste        string `json:"broj_poste,omitempty"`
	Naselje          string `json:"naselje,omitempty"`
	Opcina           string `json:"opcina,omitempty"`
}

// PoslovniProstorRequest body para POST /api/fisk/poslovni-prostori.
type PoslovniProstorRequest struct {
	Oib                  string     `json:"oib"`
	OznPoslProstora      string     `json:"ozn_posl_prostora"`
	Adresa               *AdresaDTO `json:"adresa,omitempty"`
	OstaliTipoviPP       string     `json:"ostali_tipovi_pp,omitempty"`
	RadnoVrijeme         string     `json:"radno_vrijeme"`
	DatumPocetkaPrimjene time.Time  `json:"datum_pocetka_primjene"`
	Zatvaranje           bool       `json:"zatvaranje,omitempty"`
	SpecNamj             string     `json:"spec_namj,omitempty"`
}

// PoslovniProstorResponse resultado del registro.
type PoslovniProstorResponse struct {
	Uspjeh   bool     `json:"uspjeh"`
	IdPoruke string   `json:"id_poruke"`
	Greske   []string `json:"greske,omitempty"`
}

// PorezDTO línea de impuesto.
type PorezDTO struct {
	Naziv    string          `json:"naziv,omitempty"` // solo en ostali_por
	Stopa    decimal.Decimal `json:"stopa"`
	Osnovica decimal.Decimal `json:"osnovica"`
	Iznos    decimal.Decimal `json:"iznos"`
}

// NaknadaDTO cargo adicional.
type NaknadaDTO struct {
	Naziv string          `json:"naziv"`
	Iznos decimal.Decimal `json:"iznos"`
}

// RacunRequest body para POST /api/fisk/racuni y /api/fisk/racuni/provjera.
type RacunRequest struct {
	Oib             string           `json:"oib"`
	USustPdv        bool             `json:"u_sust_pdv"`
	DatVrijeme      time.Time        `json:"dat_vrijeme"`
	OznSlijed       string           `json:"ozn_slijed"`
	BrOznRac        string           `json:"br_ozn_rac"`
	OznPosPr        string           `json:"ozn_pos_pr"`
	OznNapUr        string           `json:"ozn_nap_ur"`
	Pdv             []PorezDTO       `json:"pdv,omitempty"`
	Pnp             []PorezDTO       `json:"pnp,omitempty"`
	OstaliPor       []PorezDTO       `json:"ostali_por,omitempty"`
	IznosOslobPdv   *decimal.Decimal `json:"iznos_oslob_pdv,omitempty"`
	IznosMarza      *decimal.Decimal `json:"iznos_marza,omitempty"`
	IznosNePodlOpor *decimal.Decimal `json:"iznos_ne_podl_opor,omitempty"`
	Naknade         []NaknadaDTO     `json:"naknade,omitempty"`
	IznosUkupno     decimal.Decimal  `json:"iznos_ukupno"`
	NacinPlac       string           `json:"nacin_plac"`
	OibOper         string           `json:"oib_oper"`
	NakDost         bool             `json:"nak_dost"`
	ParagonBrRac    string           `json:"paragon_br_rac,omitempty"`
	SpecNamj        string           `json:"spec_namj,omitempty"`
}

// RacunResponse resultado de la fiscalización de una factura.
type RacunResponse struct {
	ID       string   `json:"id"`
	Status   string   `json:"status"`
	Jir      string   `json:"jir,omitempty"`
	ZastKod  string   `json:"zast_kod"`
	IdPoruke string   `json:"id_poruke,omitempty"`
	Greske   []string `json:"greske,omitempty"`
}

// ProvjeraResponse resultado de la verificación de una factura.
type ProvjeraResponse struct {
	Rezultat string   `json:"rezultat"` // match | mismatch | no_reply
	ZastKod  string   `json:"zast_kod"`
	Greske   []string `json:"greske,omitempty"`
}

// FiskalizacijaResponse registro de auditoría en respuestas.
type FiskalizacijaResponse struct {
	ID           string          `json:"id"`
	Tip          string          `json:"tip"`
	Oib          string          `json:"oib"`
	IdPoruke     string          `json:"id_poruke,omitempty"`
	DatumVrijeme time.Time       `json:"datum_vrijeme"`
	BrojRacuna   string          `json:"broj_racuna,omitempty"`
	ZastKod      string          `json:"zast_kod,omitempty"`
	Jir          string          `json:"jir,omitempty"`
	IznosUkupno  decimal.Decimal `json:"iznos_ukupno"`
	Status       string          `json:"status"`
	Greske       []string        `json:"greske,omitempty"`
}
