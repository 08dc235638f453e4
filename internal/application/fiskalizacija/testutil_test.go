package fiskalizacija

import (
	"crypto/rand"
	"crypto/rsa"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/beevik/etree"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/fiskal-api/internal/application/dto"
	domainfisk "github.com/jhoicas/fiskal-api/internal/domain/fisk"
	pkgfisk "github.com/jhoicas/fiskal-api/pkg/fisk"
)

const (
	testOIB     = "69435151530"
	testOIBOper = "12345678903"
)

var testKey = sync.OnceValue(func() *rsa.PrivateKey {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		panic(err)
	}
	return key
})

func newTestSession(tr pkgfisk.Transport) *Session {
	return &Session{
		Env:       pkgfisk.EnvDemo,
		Transport: tr,
		ZKI:       domainfisk.NewZKICalculator(testKey()),
		Log:       zerolog.Nop(),
	}
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func testRacunRequest() dto.RacunRequest {
	return dto.RacunRequest{
		Oib:         testOIB,
		USustPdv:    true,
		DatVrijeme:  time.Date(2024, 5, 2, 10, 30, 0, 0, time.Local),
		OznSlijed:   "P",
		BrOznRac:    "1",
		OznPosPr:    "POS1",
		OznNapUr:    "1",
		Pdv:         []dto.PorezDTO{{Stopa: dec("25"), Osnovica: dec("8"), Iznos: dec("2")}},
		IznosUkupno: dec("10"),
		NacinPlac:   "G",
		OibOper:     testOIBOper,
	}
}

func testRacun(t *testing.T) *domainfisk.Racun {
	t.Helper()
	r, err := buildRacun(domainfisk.NewZKICalculator(testKey()), testRacunRequest(), testRacunRequest().DatVrijeme, "", "")
	require.NoError(t, err)
	return r
}

// ── Respuestas del CIS ───────────────────────────────────────────────────────

func envelope(body string) []byte {
	return []byte(`<soap:Envelope xmlns:soap="` + pkgfisk.NamespaceSOAP + `"><soap:Body>` + body + `</soap:Body></soap:Envelope>`)
}

// odgovor construye una respuesta f73 con cabecera y el contenido dado.
func odgovor(name, idPoruke, inner string) []byte {
	return envelope(`<f73:` + name + ` xmlns:f73="` + pkgfisk.NamespaceFisk + `" Id="odg">` +
		`<f73:Zaglavlje><f73:IdPoruke>` + idPoruke + `</f73:IdPoruke>` +
		`<f73:DatumVrijeme>02.05.2024T10:30:01</f73:DatumVrijeme></f73:Zaglavlje>` +
		inner + `</f73:` + name + `>`)
}

func greskeXML(poruke ...string) string {
	var b strings.Builder
	b.WriteString(`<f73:Greske>`)
	for i, p := range poruke {
		b.WriteString(`<f73:Greska><f73:SifraGreske>s00` + string(rune('1'+i)) + `</f73:SifraGreske>`)
		b.WriteString(`<f73:PorukaGreske>` + p + `</f73:PorukaGreske></f73:Greska>`)
	}
	b.WriteString(`</f73:Greske>`)
	return b.String()
}

// idPorukeOf extrae el IdPoruke del sobre enviado.
func idPorukeOf(t *testing.T, payload []byte) string {
	t.Helper()
	doc := etree.NewDocument()
	require.NoError(t, doc.ReadFromBytes(payload))
	el := pkgfisk.FindFirst(doc.Root(), pkgfisk.NamespaceFisk, "IdPoruke")
	require.NotNil(t, el)
	return el.Text()
}

const testJir = "4f4b2a1c-8c2d-4e55-9a3b-1f2e3d4c5b6a"
