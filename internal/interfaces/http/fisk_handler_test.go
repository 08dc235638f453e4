package http_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/fiskal-api/internal/application/dto"
	"github.com/jhoicas/fiskal-api/internal/application/fiskalizacija"
	"github.com/jhoicas/fiskal-api/internal/domain"
	apphttp "github.com/jhoicas/fiskal-api/internal/interfaces/http"
	pkgfisk "github.com/jhoicas/fiskal-api/pkg/fisk"
)

// fakeFisk registra lo que recibe y devuelve err en todas las operaciones si está asignado.
type fakeFisk struct {
	err     error
	oib     string
	racun   dto.RacunRequest
	batch   []dto.RacunRequest
	page    dto.PageRequest
	limit   int
	id      string
	pdfBody []byte
}

func (f *fakeFisk) Env() string { return pkgfisk.EnvDemo }

func (f *fakeFisk) Echo(_ context.Context, poruka string) (*dto.EchoResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &dto.EchoResponse{Poruka: poruka}, nil
}

func (f *fakeFisk) RegistrirajPoslovniProstor(_ context.Context, oib string, in dto.PoslovniProstorRequest) (*dto.PoslovniProstorResponse, error) {
	f.oib = oib
	if f.err != nil {
		return nil, f.err
	}
	return &dto.PoslovniProstorResponse{Uspjeh: true, IdPoruke: "id-1"}, nil
}

func (f *fakeFisk) FiskalizirajRacun(_ context.Context, oib string, in dto.RacunRequest) (*dto.RacunResponse, error) {
	f.oib, f.racun = oib, in
	if f.err != nil {
		return nil, f.err
	}
	return &dto.RacunResponse{ID: "r1", Status: "FISKALIZIRAN", Jir: "jir-1", ZastKod: "zki-1"}, nil
}

func (f *fakeFisk) FiskalizirajBatch(_ context.Context, oib string, in []dto.RacunRequest) ([]*dto.RacunResponse, error) {
	f.oib, f.batch = oib, in
	if f.err != nil {
		return nil, f.err
	}
	out := make([]*dto.RacunResponse, len(in))
	for i := range in {
		out[i] = &dto.RacunResponse{ID: fmt.Sprintf("r%d", i), Status: "FISKALIZIRAN"}
	}
	return out, nil
}

func (f *fakeFisk) ProvjeriRacun(_ context.Context, oib string, in dto.RacunRequest) (*dto.ProvjeraResponse, error) {
	f.oib, f.racun = oib, in
	if f.err != nil {
		return nil, f.err
	}
	return &dto.ProvjeraResponse{Rezultat: "match", ZastKod: "zki-1"}, nil
}

func (f *fakeFisk) Get(_ context.Context, oib, id string) (*dto.FiskalizacijaResponse, error) {
	f.oib, f.id = oib, id
	if f.err != nil {
		return nil, f.err
	}
	return &dto.FiskalizacijaResponse{ID: id, Oib: oib}, nil
}

func (f *fakeFisk) List(_ context.Context, oib string, page dto.PageRequest) (*dto.PageResponse[*dto.FiskalizacijaResponse], error) {
	f.oib, f.page = oib, page
	if f.err != nil {
		return nil, f.err
	}
	return &dto.PageResponse[*dto.FiskalizacijaResponse]{Items: []*dto.FiskalizacijaResponse{}, Limit: page.Limit, Offset: page.Offset}, nil
}

func (f *fakeFisk) Pending(_ context.Context, oib string, limit int) ([]*dto.FiskalizacijaResponse, error) {
	f.oib, f.limit = oib, limit
	if f.err != nil {
		return nil, f.err
	}
	return []*dto.FiskalizacijaResponse{}, nil
}

func (f *fakeFisk) ReceiptPDF(_ context.Context, oib, id string) ([]byte, string, error) {
	f.oib, f.id = oib, id
	if f.err != nil {
		return nil, "", f.err
	}
	return f.pdfBody, "racun_" + id + ".pdf", nil
}

func newFiskApp(svc apphttp.FiskService) *fiber.App {
	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{Fisk: svc, JWTSecret: testJWTSecret})
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path, auth, body string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeError(t *testing.T, resp *http.Response) dto.ErrorResponse {
	t.Helper()
	var e dto.ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&e))
	return e
}

// ── Rutas ────────────────────────────────────────────────────────────────────

func TestFisk_Racun_Creado(t *testing.T) {
	svc := &fakeFisk{}
	app := newFiskApp(svc)

	body := `{"oib":"69435151530","br_ozn_rac":"1","ozn_pos_pr":"POS1","ozn_nap_ur":"1","iznos_ukupno":"10.00","nacin_plac":"G"}`
	resp := doJSON(t, app, http.MethodPost, "/api/fisk/racuni", tokenFor(t, testOIB, apphttp.RoleBlagajnik), body)
	defer resp.Body.Close()

	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var out dto.RacunResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, "jir-1", out.Jir)
	assert.Equal(t, testOIB, svc.oib, "el OIB sale del token")
	assert.Equal(t, "POS1", svc.racun.OznPosPr)
	assert.Equal(t, "10", svc.racun.IznosUkupno.String())
}

func TestFisk_Racun_CuerpoInvalido(t *testing.T) {
	app := newFiskApp(&fakeFisk{})
	resp := doJSON(t, app, http.MethodPost, "/api/fisk/racuni", tokenFor(t, testOIB, apphttp.RoleAdmin), `{no es json`)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "INVALID_BODY", decodeError(t, resp).Code)
}

func TestFisk_Racun_SinToken(t *testing.T) {
	app := newFiskApp(&fakeFisk{})
	resp := doJSON(t, app, http.MethodPost, "/api/fisk/racuni", "", `{}`)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestFisk_PoslovniProstor_SoloAdmin(t *testing.T) {
	svc := &fakeFisk{}
	app := newFiskApp(svc)

	resp := doJSON(t, app, http.MethodPost, "/api/fisk/poslovni-prostori", tokenFor(t, testOIB, apphttp.RoleBlagajnik), `{}`)
	resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = doJSON(t, app, http.MethodPost, "/api/fisk/poslovni-prostori", tokenFor(t, testOIB, apphttp.RoleAdmin), `{"oib":"69435151530"}`)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, testOIB, svc.oib)
}

func TestFisk_Batch(t *testing.T) {
	svc := &fakeFisk{}
	app := newFiskApp(svc)

	resp := doJSON(t, app, http.MethodPost, "/api/fisk/racuni/batch", tokenFor(t, testOIB, apphttp.RoleAdmin), `[{"br_ozn_rac":"1"},{"br_ozn_rac":"2"}]`)
	defer resp.Body.Close()

	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var out []dto.RacunResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Len(t, out, 2)
	assert.Len(t, svc.batch, 2)
}

func TestFisk_Echo(t *testing.T) {
	app := newFiskApp(&fakeFisk{})
	resp := doJSON(t, app, http.MethodPost, "/api/fisk/echo", tokenFor(t, testOIB, apphttp.RoleBlagajnik), `{"poruka":"proba"}`)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	var out dto.EchoResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, "proba", out.Poruka)
}

func TestFisk_List_Paginacion(t *testing.T) {
	svc := &fakeFisk{}
	app := newFiskApp(svc)
	resp := doGet(t, app, "/api/fisk/racuni?limit=5&offset=10", tokenFor(t, testOIB, apphttp.RoleAdmin))
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, dto.PageRequest{Limit: 5, Offset: 10}, svc.page)
}

func TestFisk_Pending(t *testing.T) {
	svc := &fakeFisk{}
	app := newFiskApp(svc)
	resp := doGet(t, app, "/api/fisk/racuni/naknadno?limit=7", tokenFor(t, testOIB, apphttp.RoleAdmin))
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 7, svc.limit)
}

func TestFisk_GetByID(t *testing.T) {
	svc := &fakeFisk{}
	app := newFiskApp(svc)
	resp := doGet(t, app, "/api/fisk/racuni/abc", tokenFor(t, testOIB, apphttp.RoleAdmin))
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "abc", svc.id)
}

func TestFisk_ReceiptPDF(t *testing.T) {
	svc := &fakeFisk{pdfBody: []byte("%PDF-1.4 prueba")}
	app := newFiskApp(svc)
	resp := doGet(t, app, "/api/fisk/racuni/abc/pdf", tokenFor(t, testOIB, apphttp.RoleBlagajnik))
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), `"racun_abc.pdf"`)
	b, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "%PDF-1.4 prueba", string(b))
}

// ── Traducción de errores ────────────────────────────────────────────────────

func TestFisk_ErroresHTTP(t *testing.T) {
	casos := []struct {
		nombre string
		err    error
		status int
		code   string
	}{
		{"oib", fmt.Errorf("oib: %w", domain.ErrInvalidOIB), http.StatusBadRequest, "INVALID_OIB"},
		{"validacion", fmt.Errorf("%w: falta NacinPlac", domain.ErrInvalidInput), http.StatusBadRequest, "VALIDATION"},
		{"prohibido", domain.ErrForbidden, http.StatusForbidden, "FORBIDDEN"},
		{"no encontrado", domain.ErrNotFound, http.StatusNotFound, "NOT_FOUND"},
		{"no demo", domain.ErrNotDemo, http.StatusConflict, "NOT_DEMO"},
		{"sin respuesta", fiskalizacija.ErrNoReply, http.StatusBadGateway, "NO_REPLY"},
		{"sin verificador", pkgfisk.ErrUnverifiedReply, http.StatusBadGateway, "NO_REPLY"},
		{"transporte", fmt.Errorf("enviar: %w", &pkgfisk.TransportError{Status: 503, Reason: "Service Unavailable"}), http.StatusBadGateway, "CIS_ERROR"},
		{"fault", &pkgfisk.FaultError{Message: "s004"}, http.StatusBadGateway, "CIS_ERROR"},
		{"timeout", fmt.Errorf("enviar: %w", context.DeadlineExceeded), http.StatusGatewayTimeout, "TIMEOUT"},
		{"otro", fmt.Errorf("boom"), http.StatusInternalServerError, "INTERNAL"},
	}
	for _, c := range casos {
		t.Run(c.nombre, func(t *testing.T) {
			app := newFiskApp(&fakeFisk{err: c.err})
			resp := doJSON(t, app, http.MethodPost, "/api/fisk/racuni/provjera", tokenFor(t, testOIB, apphttp.RoleAdmin), `{}`)
			defer resp.Body.Close()

			assert.Equal(t, c.status, resp.StatusCode)
			assert.Equal(t, c.code, decodeError(t, resp).Code)
		})
	}
}

// ── Métricas ─────────────────────────────────────────────────────────────────

func TestMetrics_Expuestas(t *testing.T) {
	reg := prometheus.NewRegistry()
	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		Fisk:      &fakeFisk{},
		JWTSecret: testJWTSecret,
		Metrics:   apphttp.NewHTTPMetrics(reg),
		Gatherer:  reg,
	})

	resp := doJSON(t, app, http.MethodPost, "/api/fisk/echo", tokenFor(t, testOIB, apphttp.RoleAdmin), `{"poruka":"x"}`)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doGet(t, app, "/metrics", "")
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	b, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(b), `fiskal_api_http_requests_total{code="200",method="POST",route="/api/fisk/echo"} 1`)
}

func TestMetrics_EtiquetasEstablesEntrePeticiones(t *testing.T) {
	reg := prometheus.NewRegistry()
	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		Fisk:      &fakeFisk{},
		JWTSecret: testJWTSecret,
		Metrics:   apphttp.NewHTTPMetrics(reg),
		Gatherer:  reg,
	})
	token := tokenFor(t, testOIB, apphttp.RoleAdmin)

	for range 3 {
		resp := doJSON(t, app, http.MethodPost, "/api/fisk/echo", token, `{"poruka":"x"}`)
		resp.Body.Close()
		resp = doGet(t, app, "/api/fisk/racuni/naknadno", token)
		resp.Body.Close()
	}

	resp := doGet(t, app, "/metrics", "")
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	body := string(b)
	assert.Contains(t, body, `fiskal_api_http_requests_total{code="200",method="POST",route="/api/fisk/echo"} 3`)
	assert.Contains(t, body, `fiskal_api_http_requests_total{code="200",method="GET",route="/api/fisk/racuni/naknadno"} 3`)
	assert.NotContains(t, body, `method="GETT"`)
}
