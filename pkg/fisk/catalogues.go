package fisk

// =============================================================================
// Namespaces
// =============================================================================

const (
	NamespaceFisk    = "http://www.apis-it.hr/fin/2012/types/f73"
	NamespaceSOAP    = "http://schemas.xmlsoap.org/soap/envelope/"
	NamespaceDSig    = "http://www.w3.org/2000/09/xmldsig#"
	NamespaceExcC14N = "http://www.w3.org/2001/10/xml-exc-c14n#"
)

// =============================================================================
// Entornos CIS
// =============================================================================

const (
	EnvDemo = "demo"
	EnvProd = "prod"

	EndpointDemo = "https://cistest.apis-it.hr:8449/FiskalizacijaServiceTest"
	EndpointProd = "https://cis.porezna-uprava.hr:8449/FiskalizacijaService"
)

// Endpoint devuelve la URL del servicio para el entorno dado.
func Endpoint(env string) string {
	if env == EnvProd {
		return EndpointProd
	}
	return EndpointDemo
}

// =============================================================================
// Catálogos de Racun / PoslovniProstor
// =============================================================================

// Način plaćanja.
const (
	NacinPlacGotovina      = "G" // novčanice
	NacinPlacKartica       = "K" // kartice
	NacinPlacCek           = "C" // ček
	NacinPlacTransakcijski = "T" // transakcijski račun
	NacinPlacOstalo        = "O" // ostalo
)

// NaciniPlacanja en el orden del esquema.
var NaciniPlacanja = []string{NacinPlacGotovina, NacinPlacKartica, NacinPlacCek, NacinPlacTransakcijski, NacinPlacOstalo}

// Oznaka slijednosti: por local (P) o por dispositivo (N).
const (
	OznSlijedPoslovniProstor = "P"
	OznSlijedNaplatniUredaj  = "N"
)

// OznakaZatvaranja del local comercial.
const OznakaZatvaranjaZatvoren = "Z"

// Valores booleanos tal como los espera el esquema.
const (
	True  = "true"
	False = "false"
)

// Formatos de fecha del CIS (layout de Go).
const (
	LayoutDatumVrijeme = "02.01.2006T15:04:05"
	LayoutDatum        = "02.01.2006"
)

// IDs de los elementos firmados.
const (
	IDPoslovniProstorZahtjev = "ppz"
	IDRacunZahtjev           = "rac"
)
