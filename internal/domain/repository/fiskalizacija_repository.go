package repository

import "github.com/jhoicas/fiskal-api/internal/domain/entity"

// FiskalizacijaRepository define el puerto de persistencia del registro de fiscalizaciones.
type FiskalizacijaRepository interface {
	Create(f *entity.Fiskalizacija) error
	GetByID(id string) (*entity.Fiskalizacija, error)
	// ListByOib devuelve los registros del emisor, más recientes primero.
	ListByOib(oib string, limit, offset int) ([]*entity.Fiskalizacija, error)
	// ListPending devuelve facturas sin JIR que deben reenviarse.
	ListPending(oib string, limit int) ([]*entity.Fiskalizacija, error)
	// ResolvePending marca como DOSTAVLJEN los pendientes de brojRacuna y devuelve cuántos cambió.
	ResolvePending(oib, brojRacuna string) (int64, error)
}
