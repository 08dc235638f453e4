package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/fiskal-api/internal/domain"
	"github.com/jhoicas/fiskal-api/internal/domain/entity"
	"github.com/jhoicas/fiskal-api/internal/domain/repository"
)

var _ repository.FiskalizacijaRepository = (*FiskalizacijaRepo)(nil)

// FiskalizacijaRepo implementación de FiskalizacijaRepository (usable con pool o tx).
type FiskalizacijaRepo struct {
	q Querier
}

// NewFiskalizacijaRepository construye el adaptador. Pasar pool o tx (Querier).
func NewFiskalizacijaRepository(q Querier) *FiskalizacijaRepo {
	return &FiskalizacijaRepo{q: q}
}

const fiskColumns = `id, tip, oib, id_poruke, datum_vrijeme, broj_racuna, zast_kod, jir,
	iznos_ukupno, nacin_plac, nak_dost, status, greske, zahtjev, odgovor, created_at`

// Create persiste un intercambio con el CIS.
func (r *FiskalizacijaRepo) Create(f *entity.Fiskalizacija) error {
	if f.ID == "" {
		f.ID = uuid.New().String()
	}
	if f.CreatedAt.IsZero() {
		f.CreatedAt = time.Now().UTC()
	}
	greske := f.Greske
	if greske == nil {
		greske = []string{}
	}
	query := `INSERT INTO fiskalizacije (` + fiskColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`
	_, err := r.q.Exec(context.Background(), query,
		f.ID, f.Tip, f.Oib, nullIfEmpty(f.IdPoruke), f.DatumVrijeme,
		nullIfEmpty(f.BrojRacuna), nullIfEmpty(f.ZastKod), nullIfEmpty(f.Jir),
		f.IznosUkupno, nullIfEmpty(f.NacinPlac), f.NakDost, f.Status, greske,
		nullIfEmpty(f.Zahtjev), nullIfEmpty(f.Odgovor), f.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("fiskalizacija %s: %w", f.ID, domain.ErrDuplicate)
		}
		return fmt.Errorf("insert fiskalizacija: %w", err)
	}
	return nil
}

// GetByID obtiene un registro; devuelve nil, nil si no existe.
func (r *FiskalizacijaRepo) GetByID(id string) (*entity.Fiskalizacija, error) {
	row := r.q.QueryRow(context.Background(), `SELECT `+fiskColumns+` FROM fiskalizacije WHERE id = $1`, id)
	f, err := scanFiskalizacija(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get fiskalizacija: %w", err)
	}
	return f, nil
}

// ListByOib lista los registros del emisor, más recientes primero.
func (r *FiskalizacijaRepo) ListByOib(oib string, limit, offset int) ([]*entity.Fiskalizacija, error) {
	query := `SELECT ` + fiskColumns + ` FROM fiskalizacije
		WHERE oib = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	return r.list(query, oib, limit, offset)
}

// ListPending facturas del emisor que quedaron sin JIR por falta de respuesta.
func (r *FiskalizacijaRepo) ListPending(oib string, limit int) ([]*entity.Fiskalizacija, error) {
	query := `SELECT ` + fiskColumns + ` FROM fiskalizacije
		WHERE oib = $1 AND tip = $2 AND status = $3
		ORDER BY created_at ASC LIMIT $4`
	return r.list(query, oib, entity.FiskTipRacun, entity.FiskStatusNaknadno, limit)
}

// ResolvePending cierra los pendientes de una factura que ya obtuvo JIR en un reenvío.
func (r *FiskalizacijaRepo) ResolvePending(oib, brojRacuna string) (int64, error) {
	tag, err := r.q.Exec(context.Background(), `UPDATE fiskalizacije SET status = $1
		WHERE oib = $2 AND tip = $3 AND broj_racuna = $4 AND status = $5`,
		entity.FiskStatusDostavljen, oib, entity.FiskTipRacun, brojRacuna, entity.FiskStatusNaknadno)
	if err != nil {
		return 0, fmt.Errorf("resolve pending %s: %w", brojRacuna, err)
	}
	return tag.RowsAffected(), nil
}

func (r *FiskalizacijaRepo) list(query string, args ...any) ([]*entity.Fiskalizacija, error) {
	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list fiskalizacije: %w", err)
	}
	defer rows.Close()

	var out []*entity.Fiskalizacija
	for rows.Next() {
		f, err := scanFiskalizacija(rows)
		if err != nil {
			return nil, fmt.Errorf("scan fiskalizacija: %w", err)
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

func scanFiskalizacija(row pgx.Row) (*entity.Fiskalizacija, error) {
	var f entity.Fiskalizacija
	var idPoruke, brojRacuna, zastKod, jir, nacinPlac, zahtjev, odgovor *string
	err := row.Scan(
		&f.ID, &f.Tip, &f.Oib, &idPoruke, &f.DatumVrijeme,
		&brojRacuna, &zastKod, &jir,
		&f.IznosUkupno, &nacinPlac, &f.NakDost, &f.Status, &f.Greske,
		&zahtjev, &odgovor, &f.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	f.IdPoruke = derefStr(idPoruke)
	f.BrojRacuna = derefStr(brojRacuna)
	f.ZastKod = derefStr(zastKod)
	f.Jir = derefStr(jir)
	f.NacinPlac = derefStr(nacinPlac)
	f.Zahtjev = derefStr(zahtjev)
	f.Odgovor = derefStr(odgovor)
	return &f, nil
}
