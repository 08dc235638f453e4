package repository

import "github.com/jhoicas/fiskal-api/internal/domain/entity"

// UserRepository define el puerto de persistencia para User (DIP).
type UserRepository interface {
	Create(user *entity.User) error
	GetByID(id string) (*entity.User, error)
	// GetByEmail devuelve nil, nil si no existe.
	GetByEmail(email string) (*entity.User, error)
	ListByOib(oib string, limit, offset int) ([]*entity.User, error)
	Update(user *entity.User) error
}
