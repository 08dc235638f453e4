package auth

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/fiskal-api/internal/application/dto"
	"github.com/jhoicas/fiskal-api/internal/domain"
	"github.com/jhoicas/fiskal-api/internal/domain/entity"
	"github.com/jhoicas/fiskal-api/pkg/jwt"
)

const (
	testSecret = "secreto-de-prueba"
	testOIB    = "69435151530"
)

type fakeUsers struct {
	byEmail map[string]*entity.User
	err     error
}

func newFakeUsers() *fakeUsers { return &fakeUsers{byEmail: map[string]*entity.User{}} }

func (f *fakeUsers) Create(u *entity.User) error {
	if f.err != nil {
		return f.err
	}
	f.byEmail[u.Email] = u
	return nil
}

func (f *fakeUsers) GetByID(id string) (*entity.User, error) {
	for _, u := range f.byEmail {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, nil
}

func (f *fakeUsers) GetByEmail(email string) (*entity.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.byEmail[email], nil
}

func (f *fakeUsers) ListByOib(oib string, limit, offset int) ([]*entity.User, error) {
	var out []*entity.User
	for _, u := range f.byEmail {
		if u.Oib == oib {
			out = append(out, u)
		}
	}
	return out, nil
}

func (f *fakeUsers) Update(u *entity.User) error { f.byEmail[u.Email] = u; return nil }

func newTestUseCase(repo *fakeUsers) *AuthUseCase {
	uc := NewAuthUseCase(repo, JWTConfig{Secret: testSecret, ExpMinutes: 60, Issuer: "test"})
	uc.cost = bcrypt.MinCost
	return uc
}

func TestRegisterUser_HasheaYNormaliza(t *testing.T) {
	repo := newFakeUsers()
	uc := newTestUseCase(repo)

	out, err := uc.RegisterUser(testOIB, dto.RegisterRequest{Email: "  Ana@Primjer.HR ", Password: "lozinka123"})
	require.NoError(t, err)
	assert.Equal(t, "ana@primjer.hr", out.Email)
	assert.Equal(t, testOIB, out.Oib)
	assert.Equal(t, entity.RoleBlagajnik, out.Role, "rol por defecto")
	assert.Equal(t, "ana@primjer.hr", out.Name)

	stored := repo.byEmail["ana@primjer.hr"]
	require.NotNil(t, stored)
	assert.NotEqual(t, "lozinka123", stored.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("lozinka123")))
}

func TestRegisterUser_Validaciones(t *testing.T) {
	uc := newTestUseCase(newFakeUsers())
	casos := []struct {
		nombre string
		oib    string
		in     dto.RegisterRequest
		want   error
	}{
		{"oib", "12345678901", dto.RegisterRequest{Email: "a@b.hr", Password: "lozinka123"}, domain.ErrInvalidOIB},
		{"email", testOIB, dto.RegisterRequest{Email: "no-es-email", Password: "lozinka123"}, domain.ErrInvalidInput},
		{"password corta", testOIB, dto.RegisterRequest{Email: "a@b.hr", Password: "corta"}, domain.ErrInvalidInput},
		{"rol", testOIB, dto.RegisterRequest{Email: "a@b.hr", Password: "lozinka123", Role: "vendedor"}, domain.ErrInvalidInput},
	}
	for _, c := range casos {
		t.Run(c.nombre, func(t *testing.T) {
			_, err := uc.RegisterUser(c.oib, c.in)
			assert.True(t, errors.Is(err, c.want), "got %v", err)
		})
	}
}

func TestRegisterUser_EmailDuplicado(t *testing.T) {
	uc := newTestUseCase(newFakeUsers())
	in := dto.RegisterRequest{Email: "a@b.hr", Password: "lozinka123"}
	_, err := uc.RegisterUser(testOIB, in)
	require.NoError(t, err)

	_, err = uc.RegisterUser(testOIB, in)
	assert.ErrorIs(t, err, domain.ErrDuplicate)
}

func TestLogin_TokenConOibYRol(t *testing.T) {
	uc := newTestUseCase(newFakeUsers())
	_, err := uc.RegisterUser(testOIB, dto.RegisterRequest{Email: "admin@b.hr", Password: "lozinka123", Role: entity.RoleAdmin})
	require.NoError(t, err)

	out, err := uc.Login(dto.LoginRequest{Email: "ADMIN@b.hr", Password: "lozinka123"})
	require.NoError(t, err)

	claims, err := jwt.Parse(testSecret, out.Token)
	require.NoError(t, err)
	assert.Equal(t, testOIB, claims.Oib)
	assert.Equal(t, entity.RoleAdmin, claims.Role)
	assert.Equal(t, out.User.ID, claims.UserID)
}

func TestLogin_Rechazos(t *testing.T) {
	repo := newFakeUsers()
	uc := newTestUseCase(repo)
	_, err := uc.RegisterUser(testOIB, dto.RegisterRequest{Email: "a@b.hr", Password: "lozinka123"})
	require.NoError(t, err)

	_, err = uc.Login(dto.LoginRequest{Email: "a@b.hr", Password: "mala-lozinka"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = uc.Login(dto.LoginRequest{Email: "nadie@b.hr", Password: "lozinka123"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	repo.byEmail["a@b.hr"].Status = entity.UserSuspended
	_, err = uc.Login(dto.LoginRequest{Email: "a@b.hr", Password: "lozinka123"})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestListUsers_SoloDelOib(t *testing.T) {
	uc := newTestUseCase(newFakeUsers())
	_, err := uc.RegisterUser(testOIB, dto.RegisterRequest{Email: "a@b.hr", Password: "lozinka123"})
	require.NoError(t, err)
	_, err = uc.RegisterUser("12345678903", dto.RegisterRequest{Email: "c@d.hr", Password: "lozinka123"})
	require.NoError(t, err)

	page, err := uc.ListUsers(testOIB, dto.PageRequest{})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "a@b.hr", page.Items[0].Email)
	assert.Equal(t, 20, page.Limit)
}
