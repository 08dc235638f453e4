package entity

import "time"

// Roles válidos para User.
const (
	RoleAdmin     = "admin"     // registra locales y usuarios
	RoleBlagajnik = "blagajnik" // fiscaliza facturas
)

// Estados de usuario.
const (
	UserActive    = "active"
	UserSuspended = "suspended"
)

// User usuario de la API; solo puede fiscalizar en nombre de su OIB.
type User struct {
	ID           string
	Oib          string
	Email        string
	PasswordHash string // bcrypt
	Name         string
	Role         string
	Status       string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
