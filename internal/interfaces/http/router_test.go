package http_test

import (
	"encoding/json"
	"net/http"
	"os"
	"regexp"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apphttp "github.com/jhoicas/fiskal-api/internal/interfaces/http"
)

var reParam = regexp.MustCompile(`:(\w+)`)

// Cada ruta de /api registrada en el router debe estar documentada en docs/swagger.json.
func TestRouter_RutasDocumentadas(t *testing.T) {
	raw, err := os.ReadFile("../../../docs/swagger.json")
	require.NoError(t, err)
	var doc struct {
		Paths map[string]map[string]json.RawMessage `json:"paths"`
	}
	require.NoError(t, json.Unmarshal(raw, &doc))

	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{Fisk: &fakeFisk{}, JWTSecret: testJWTSecret})

	var vistas int
	for _, r := range app.GetRoutes(true) {
		if !strings.HasPrefix(r.Path, "/api/") || r.Method == http.MethodHead {
			continue
		}
		path := strings.TrimSuffix(r.Path, "/")
		path = reParam.ReplaceAllString(path, "{$1}")
		ops, ok := doc.Paths[path]
		if !assert.True(t, ok, "ruta sin documentar: %s %s", r.Method, path) {
			continue
		}
		_, ok = ops[strings.ToLower(r.Method)]
		assert.True(t, ok, "método sin documentar: %s %s", r.Method, path)
		vistas++
	}
	assert.Equal(t, 12, vistas)
}
