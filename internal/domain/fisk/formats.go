// Package fisk: elementos del esquema f73 del CIS (Zaglavlje, PoslovniProstor, Racun, ...)
// y el cálculo del código de seguridad ZKI.
package fisk

import "github.com/jhoicas/fiskal-api/internal/domain/xmlschema"

// Patrones del esquema f73.
const (
	PatternOIB          = `^\d{11}$`
	PatternDatumVrijeme = `^[0-9]{2}\.[0-9]{2}\.[1-2][0-9]{3}T[0-9]{2}:[0-9]{2}:[0-9]{2}$`
	PatternDatum        = `^[0-9]{2}\.[0-9]{2}\.[1-2][0-9]{3}$`
	PatternIznos        = `^([+-]?)[0-9]{1,15}\.[0-9]{2}$`
	PatternStopa        = `^([+-]?)[0-9]{1,3}\.[0-9]{2}$`
	PatternUUID         = `^[a-f0-9]{8}-[a-f0-9]{4}-[a-f0-9]{4}-[a-f0-9]{4}-[a-f0-9]{12}$`
	PatternZastKod      = `^[a-f0-9]{32}$`
	PatternOznaka       = `^[0-9a-zA-Z]{1,20}$`
	PatternBroj         = `^\d{1,20}$`
)

// validadores compartidos
var (
	vOIB          = xmlschema.Regex(PatternOIB)
	vDatumVrijeme = xmlschema.Regex(PatternDatumVrijeme)
	vDatum        = xmlschema.Regex(PatternDatum)
	vIznos        = xmlschema.Regex(PatternIznos)
	vStopa        = xmlschema.Regex(PatternStopa)
	vOznaka       = xmlschema.Regex(PatternOznaka)
	vBroj         = xmlschema.Regex(PatternBroj)
	vBool         = xmlschema.Enum("true", "false")
	req           = xmlschema.Required()
)
