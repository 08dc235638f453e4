package http_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/fiskal-api/internal/application/dto"
	"github.com/jhoicas/fiskal-api/internal/domain"
	apphttp "github.com/jhoicas/fiskal-api/internal/interfaces/http"
)

type fakeAuth struct {
	err      error
	oib      string
	register dto.RegisterRequest
}

func (f *fakeAuth) RegisterUser(oib string, in dto.RegisterRequest) (*dto.UserResponse, error) {
	f.oib, f.register = oib, in
	if f.err != nil {
		return nil, f.err
	}
	return &dto.UserResponse{ID: "u1", Oib: oib, Email: in.Email, Role: in.Role}, nil
}

func (f *fakeAuth) Login(in dto.LoginRequest) (*dto.LoginResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &dto.LoginResponse{Token: "tok", User: dto.UserResponse{Email: in.Email}}, nil
}

func (f *fakeAuth) ListUsers(oib string, page dto.PageRequest) (*dto.PageResponse[*dto.UserResponse], error) {
	f.oib = oib
	return &dto.PageResponse[*dto.UserResponse]{Items: []*dto.UserResponse{}}, nil
}

func newAuthApp(a apphttp.AuthService) *fiber.App {
	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{Fisk: &fakeFisk{}, Auth: a, JWTSecret: testJWTSecret})
	return app
}

func TestLogin_Publico(t *testing.T) {
	app := newAuthApp(&fakeAuth{})
	resp := doJSON(t, app, http.MethodPost, "/api/auth/login", "", `{"email":"a@b.hr","password":"lozinka123"}`)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	var out dto.LoginResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, "tok", out.Token)
}

func TestLogin_Errores(t *testing.T) {
	casos := []struct {
		nombre string
		err    error
		body   string
		status int
	}{
		{"faltan campos", nil, `{"email":"a@b.hr"}`, http.StatusBadRequest},
		{"credenciales", domain.ErrUnauthorized, `{"email":"a@b.hr","password":"x"}`, http.StatusUnauthorized},
		{"suspendido", domain.ErrForbidden, `{"email":"a@b.hr","password":"x"}`, http.StatusForbidden},
	}
	for _, c := range casos {
		t.Run(c.nombre, func(t *testing.T) {
			resp := doJSON(t, newAuthApp(&fakeAuth{err: c.err}), http.MethodPost, "/api/auth/login", "", c.body)
			defer resp.Body.Close()
			assert.Equal(t, c.status, resp.StatusCode)
		})
	}
}

func TestRegister_SoloAdminYOibDelToken(t *testing.T) {
	a := &fakeAuth{}
	app := newAuthApp(a)
	body := `{"email":"blagajnik@b.hr","password":"lozinka123","role":"blagajnik"}`

	resp := doJSON(t, app, http.MethodPost, "/api/users", tokenFor(t, testOIB, apphttp.RoleBlagajnik), body)
	resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = doJSON(t, app, http.MethodPost, "/api/users", tokenFor(t, testOIB, apphttp.RoleAdmin), body)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, testOIB, a.oib)
	assert.Equal(t, "blagajnik", a.register.Role)
}

func TestRegister_EmailDuplicado(t *testing.T) {
	app := newAuthApp(&fakeAuth{err: domain.ErrDuplicate})
	resp := doJSON(t, app, http.MethodPost, "/api/users", tokenFor(t, testOIB, apphttp.RoleAdmin), `{"email":"a@b.hr","password":"lozinka123"}`)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "EMAIL_EXISTS", decodeError(t, resp).Code)
}
