package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de intercambio con el CIS.
const (
	FiskTipEcho            = "echo"
	FiskTipPoslovniProstor = "poslovni_prostor"
	FiskTipRacun           = "racun"
	FiskTipProvjera        = "provjera"
)

// Estados de una fiscalización.
const (
	FiskStatusFiskaliziran = "FISKALIZIRAN" // JIR recibido
	FiskStatusOdbijen      = "ODBIJEN"      // el CIS devolvió PorukaGreske
	FiskStatusNaknadno     = "NAKNADNO"     // sin respuesta utilizable (timeout, transporte, firma): reenviar con NakDost=true
	FiskStatusDostavljen   = "DOSTAVLJEN"   // pendiente resuelto por un reenvío posterior con JIR
	FiskStatusGreska       = "GRESKA"       // SOAP Fault
)

// Fiskalizacija registro de auditoría de un intercambio con el CIS.
type Fiskalizacija struct {
	ID           string
	Tip          string
	Oib          string
	IdPoruke     string
	DatumVrijeme time.Time
	BrojRacuna   string // BrOznRac/OznPosPr/OznNapUr
	ZastKod      string
	Jir          string
	IznosUkupno  decimal.Decimal
	NacinPlac    string
	NakDost      bool // envío posterior de una factura ya emitida
	Status       string
	Greske       []string
	Zahtjev      string // sobre enviado (sin firma)
	Odgovor      string // respuesta cruda del CIS
	CreatedAt    time.Time
}
