package fisk_test

import (
	"crypto"
	"crypto/md5"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"io"
	"regexp"
	"testing"

	"github.com/beevik/etree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/fiskal-api/internal/domain/fisk"
	"github.com/jhoicas/fiskal-api/internal/domain/xmlschema"
)

// ──────────────────────────────────────────────────────────────────────────────
// El ZKI es la pieza que el CIS recalcula para aceptar la factura: si cambia el
// orden de concatenación, el hash o la codificación, estos tests fallan.
//
//	Cadena = Oib + DatVrijeme + BrOznRac + OznPosPr + OznNapUr + IznosUkupno
//	       = "12345678901" + "01.01.2024T10:00:00" + "1" + "PP1" + "2" + "125.50"
//	ZKI    = hex(md5(RSA-PKCS1v15-SHA1(Cadena)))
// ──────────────────────────────────────────────────────────────────────────────

const (
	testOib        = "12345678901"
	testDatVrijeme = "01.01.2024T10:00:00"
	testIznos      = "125.50"
)

var reZastKod = regexp.MustCompile(fisk.PatternZastKod)

func generarLlave(t *testing.T) *rsa.PrivateKey {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	return key
}

// zkiReferencia implementa la fórmula sin pasar por el calculador.
func zkiReferencia(t *testing.T, key *rsa.PrivateKey, cadena string) string {
	t.Helper()
	h := sha1.Sum([]byte(cadena))
	sig, err := rsa.SignPKCS1v15(nil, key, crypto.SHA1, h[:])
	require.NoError(t, err)
	sum := md5.Sum(sig)
	return hex.EncodeToString(sum[:])
}

func nuevaFactura(t *testing.T, key *rsa.PrivateKey) *fisk.Racun {
	t.Helper()
	r := fisk.NewRacun(fisk.NewZKICalculator(key))
	br, err := fisk.NewBrRac("1", "PP1", "2")
	require.NoError(t, err)
	pdv, err := fisk.NewPorez("25.00", "100.40", "25.10")
	require.NoError(t, err)

	require.NoError(t, r.Set("Oib", testOib))
	require.NoError(t, r.Set("USustPdv", "true"))
	require.NoError(t, r.Set("DatVrijeme", testDatVrijeme))
	require.NoError(t, r.Set("OznSlijed", "P"))
	require.NoError(t, r.Set("BrRac", br))
	require.NoError(t, r.Set("Pdv", []*fisk.Porez{pdv}))
	require.NoError(t, r.Set("IznosUkupno", testIznos))
	require.NoError(t, r.Set("NacinPlac", "G"))
	require.NoError(t, r.Set("OibOper", "98765432106"))
	require.NoError(t, r.Set("NakDost", "false"))
	return r
}

func TestZastKod_VectorEscenario(t *testing.T) {
	key := generarLlave(t)
	r := nuevaFactura(t, key)

	want := zkiReferencia(t, key, testOib+testDatVrijeme+"1"+"PP1"+"2"+testIznos)
	assert.Equal(t, want, r.ZastKod())
	assert.Regexp(t, reZastKod, r.ZastKod())

	zk, err := fisk.NewZKICalculator(key).Calculate(&fisk.ZKIParams{
		Oib: testOib, DatVrijeme: testDatVrijeme,
		BrOznRac: "1", OznPosPr: "PP1", OznNapUr: "2", IznosUkupno: testIznos,
	})
	require.NoError(t, err)
	assert.Equal(t, want, zk, "el calculador suelto y el campo derivado deben coincidir")
}

func TestZastKod_SeRecalculaConDependencias(t *testing.T) {
	key := generarLlave(t)
	otroBrRac, err := fisk.NewBrRac("8", "PP3", "4")
	require.NoError(t, err)

	tests := []struct {
		name   string
		set    func(r *fisk.Racun) error
		cadena string
	}{
		{
			name:   "Oib",
			set:    func(r *fisk.Racun) error { return r.Set("Oib", "98765432106") },
			cadena: "98765432106" + testDatVrijeme + "1PP12" + testIznos,
		},
		{
			name:   "DatVrijeme",
			set:    func(r *fisk.Racun) error { return r.Set("DatVrijeme", "02.01.2024T11:30:00") },
			cadena: testOib + "02.01.2024T11:30:00" + "1PP12" + testIznos,
		},
		{
			name:   "BrOznRac",
			set:    func(r *fisk.Racun) error { return r.BrRac().Set("BrOznRac", "2") },
			cadena: testOib + testDatVrijeme + "2PP12" + testIznos,
		},
		{
			name:   "OznPosPr",
			set:    func(r *fisk.Racun) error { return r.BrRac().Set("OznPosPr", "PP9") },
			cadena: testOib + testDatVrijeme + "1PP92" + testIznos,
		},
		{
			name:   "OznNapUr",
			set:    func(r *fisk.Racun) error { return r.BrRac().Set("OznNapUr", "5") },
			cadena: testOib + testDatVrijeme + "1PP15" + testIznos,
		},
		{
			name:   "IznosUkupno",
			set:    func(r *fisk.Racun) error { return r.Set("IznosUkupno", "125.51") },
			cadena: testOib + testDatVrijeme + "1PP12" + "125.51",
		},
		{
			name:   "BrRac completo",
			set:    func(r *fisk.Racun) error { return r.Set("BrRac", otroBrRac) },
			cadena: testOib + testDatVrijeme + "8PP34" + testIznos,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := nuevaFactura(t, key)
			original := r.ZastKod()

			require.NoError(t, tt.set(r))
			assert.NotEqual(t, original, r.ZastKod())
			assert.Equal(t, zkiReferencia(t, key, tt.cadena), r.ZastKod())
		})
	}
}

func TestZastKod_VolverAlValorOriginal(t *testing.T) {
	r := nuevaFactura(t, generarLlave(t))
	original := r.ZastKod()

	require.NoError(t, r.Set("IznosUkupno", "125.51"))
	require.NoError(t, r.Set("IznosUkupno", testIznos))
	assert.Equal(t, original, r.ZastKod())
}

// firmanteContado cuenta las firmas RSA pedidas al calculador.
type firmanteContado struct {
	*rsa.PrivateKey
	firmas int
}

func (f *firmanteContado) Sign(rnd io.Reader, digest []byte, opts crypto.SignerOpts) ([]byte, error) {
	f.firmas++
	return f.PrivateKey.Sign(rnd, digest, opts)
}

func TestZastKod_BrRacReasignadoFirmaUnaVez(t *testing.T) {
	firmante := &firmanteContado{PrivateKey: generarLlave(t)}
	r := fisk.NewRacun(fisk.NewZKICalculator(firmante))
	require.NoError(t, r.Set("Oib", testOib))
	require.NoError(t, r.Set("DatVrijeme", testDatVrijeme))
	require.NoError(t, r.Set("IznosUkupno", testIznos))

	a, err := fisk.NewBrRac("1", "PP1", "2")
	require.NoError(t, err)
	b, err := fisk.NewBrRac("3", "PP1", "2")
	require.NoError(t, err)
	for range 10 {
		require.NoError(t, r.Set("BrRac", a))
	}
	require.NoError(t, r.Set("BrRac", b))
	require.NoError(t, r.Set("BrRac", a))

	firmante.firmas = 0
	require.NoError(t, a.Set("BrOznRac", "5"))
	assert.Equal(t, 1, firmante.firmas)
	assert.Equal(t, zkiReferencia(t, firmante.PrivateKey, testOib+testDatVrijeme+"5PP12"+testIznos), r.ZastKod())
}

func TestZastKod_CamposAjenosNoLoCambian(t *testing.T) {
	r := nuevaFactura(t, generarLlave(t))
	original := r.ZastKod()

	require.NoError(t, r.Set("NacinPlac", "K"))
	require.NoError(t, r.Set("SpecNamj", "12345678903"))
	require.NoError(t, r.Set("NakDost", "true"))
	assert.Equal(t, original, r.ZastKod())
}

func TestZastKod_EscrituraDirectaIgnorada(t *testing.T) {
	r := nuevaFactura(t, generarLlave(t))
	original := r.ZastKod()

	require.NoError(t, r.Set("ZastKod", "00000000000000000000000000000000"))
	assert.Equal(t, original, r.ZastKod())
}

func TestZastKod_BrRacReemplazadoNoPropaga(t *testing.T) {
	r := nuevaFactura(t, generarLlave(t))
	viejo := r.BrRac()
	nuevo, err := fisk.NewBrRac("7", "PP1", "2")
	require.NoError(t, err)
	require.NoError(t, r.Set("BrRac", nuevo))
	actual := r.ZastKod()

	require.NoError(t, viejo.Set("BrOznRac", "99"))
	assert.Equal(t, actual, r.ZastKod())
}

func TestZastKod_SinDatosCompletos(t *testing.T) {
	r := fisk.NewRacun(fisk.NewZKICalculator(generarLlave(t)))
	require.NoError(t, r.Set("Oib", testOib))
	require.NoError(t, r.Set("IznosUkupno", testIznos))
	assert.Empty(t, r.ZastKod())
}

func TestRacun_Generate(t *testing.T) {
	r := nuevaFactura(t, generarLlave(t))
	el, err := r.Generate()
	require.NoError(t, err)

	doc := etree.NewDocument()
	doc.SetRoot(el)
	assert.Equal(t, "tns:Racun", el.FullTag())
	assert.Equal(t, "1", doc.FindElement("//BrRac/BrOznRac").Text())
	assert.Equal(t, "25.10", doc.FindElement("//Pdv/Porez/Iznos").Text())
	assert.Equal(t, r.ZastKod(), doc.FindElement("//ZastKod").Text())

	var tags []string
	for _, c := range el.ChildElements() {
		tags = append(tags, c.Tag)
	}
	assert.Equal(t, []string{"Oib", "USustPdv", "DatVrijeme", "OznSlijed", "BrRac", "Pdv",
		"IznosUkupno", "NacinPlac", "OibOper", "ZastKod", "NakDost"}, tags)
}

func TestRacun_FaltaObligatorio(t *testing.T) {
	r := nuevaFactura(t, generarLlave(t))
	require.NoError(t, r.Set("OibOper", nil))

	_, err := r.Generate()
	var fe *xmlschema.FieldError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, "Racun", fe.Type)
	assert.Equal(t, "OibOper", fe.Field)
	assert.True(t, errors.Is(err, xmlschema.ErrMissingRequired))
}

func TestRacun_ValidacionesDeFormato(t *testing.T) {
	r := fisk.NewRacun(nil)
	assert.Error(t, r.Set("Oib", "1234"))
	assert.Error(t, r.Set("IznosUkupno", "12.5"))
	assert.Error(t, r.Set("NacinPlac", "X"))
	assert.Error(t, r.Set("OznSlijed", "Q"))
	assert.Error(t, r.Set("USustPdv", "da"))
	assert.Error(t, r.Set("DatVrijeme", "2024-01-01T10:00:00"))

	_, err := fisk.NewPorez("250.000", "1.00", "1.00")
	assert.Error(t, err)
	ost, err := fisk.NewOstPorez("Porez na luksuz", "10.00", "10.00", "1.00")
	require.NoError(t, err)
	assert.Equal(t, "Porez", ost.Name())
	assert.NoError(t, r.Set("OstaliPor", []*fisk.OstPorez{ost}))
	assert.Error(t, r.Set("Pdv", []*fisk.OstPorez{ost}))
}
