package fiskalizacija

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/fiskal-api/internal/application/dto"
	"github.com/jhoicas/fiskal-api/internal/domain"
	"github.com/jhoicas/fiskal-api/internal/domain/entity"
	"github.com/jhoicas/fiskal-api/internal/domain/repository"
	pkgfisk "github.com/jhoicas/fiskal-api/pkg/fisk"
)

// ErrNoReply el CIS no devolvió una respuesta utilizable (firma inválida,
// IdPoruke distinto o respuesta firmada sin verificador).
var ErrNoReply = errors.New("fiskalizacija: sin respuesta utilizable del CIS")

// MaxBatch límite de facturas por lote.
const MaxBatch = 100

// ServiceConfig valores por defecto que el cliente puede omitir.
type ServiceConfig struct {
	OibOper          string
	SpecNamj         string
	BatchConcurrency int
}

// Service casos de uso de fiscalización: traduce DTOs a elementos, ejecuta el
// intercambio con el CIS y deja registro de cada intento.
type Service struct {
	session *Session
	repo    repository.FiskalizacijaRepository
	tx      TxRunner // opcional: lotes en una sola transacción
	pdf     ReceiptPDFGenerator
	cfg     ServiceConfig
	now     func() time.Time
}

// NewService construye el servicio. tx y pdf pueden ser nil.
func NewService(session *Session, repo repository.FiskalizacijaRepository, tx TxRunner, pdf ReceiptPDFGenerator, cfg ServiceConfig) *Service {
	if cfg.BatchConcurrency <= 0 {
		cfg.BatchConcurrency = 4
	}
	return &Service{session: session, repo: repo, tx: tx, pdf: pdf, cfg: cfg, now: time.Now}
}

// Env entorno CIS de la sesión.
func (s *Service) Env() string { return s.session.Env }

// ── Echo ─────────────────────────────────────────────────────────────────────

// Echo comprueba la disponibilidad del CIS.
func (s *Service) Echo(ctx context.Context, poruka string) (*dto.EchoResponse, error) {
	req, err := NewEchoRequest(s.session, clean(poruka))
	if err != nil {
		return nil, invalid(err)
	}
	text, ok, err := req.Execute(ctx)
	if err != nil {
		return nil, err
	}
	if !ok && len(req.Errors()) == 0 {
		return nil, ErrNoReply
	}
	return &dto.EchoResponse{Poruka: text, Greske: req.Errors()}, nil
}

// ── PoslovniProstor ──────────────────────────────────────────────────────────

// RegistrirajPoslovniProstor registra o cierra un local del emisor autenticado.
func (s *Service) RegistrirajPoslovniProstor(ctx context.Context, oib string, in dto.PoslovniProstorRequest) (*dto.PoslovniProstorResponse, error) {
	if err := s.authorize(oib, in.Oib); err != nil {
		return nil, err
	}
	pp, err := buildPoslovniProstor(in, s.cfg.SpecNamj)
	if err != nil {
		return nil, err
	}
	z, err := NewPoslovniProstorZahtjev(s.session, pp)
	if err != nil {
		return nil, invalid(err)
	}

	ok, execErr := z.Execute(ctx)
	if execErr != nil && IsModelError(execErr) {
		return nil, invalid(execErr)
	}

	rec := s.newRecord(entity.FiskTipPoslovniProstor, in.Oib, z.Request)
	rec.DatumVrijeme = z.DatumVrijeme()
	rec.Status = status(ok, z.Errors(), execErr)
	rec.Greske = greske(z.Errors(), execErr)
	s.persist(rec)

	return &dto.PoslovniProstorResponse{
		Uspjeh:   ok,
		IdPoruke: z.IdPoruke(),
		Greske:   rec.Greske,
	}, nil
}

// ── Racun ────────────────────────────────────────────────────────────────────

// FiskalizirajRacun obtiene el JIR de una factura. El ZKI se devuelve siempre:
// sin JIR la factura se imprime igualmente y se reenvía después con NakDost=true.
func (s *Service) FiskalizirajRacun(ctx context.Context, oib string, in dto.RacunRequest) (*dto.RacunResponse, error) {
	resp, rec, err := s.fiskaliziraj(ctx, oib, in)
	if err != nil {
		return nil, err
	}
	s.persist(rec)
	return resp, nil
}

// FiskalizirajBatch envía varias facturas en paralelo (hasta BatchConcurrency a la vez).
// Un error de una factura no detiene las demás; los registros se guardan juntos.
func (s *Service) FiskalizirajBatch(ctx context.Context, oib string, in []dto.RacunRequest) ([]*dto.RacunResponse, error) {
	if len(in) == 0 || len(in) > MaxBatch {
		return nil, fmt.Errorf("%w: el lote debe tener entre 1 y %d facturas", domain.ErrInvalidInput, MaxBatch)
	}
	results := make([]*dto.RacunResponse, len(in))
	records := make([]*entity.Fiskalizacija, len(in))

	var g errgroup.Group
	g.SetLimit(s.cfg.BatchConcurrency)
	for i := range in {
		g.Go(func() error {
			resp, rec, err := s.fiskaliziraj(ctx, oib, in[i])
			if err != nil {
				results[i] = &dto.RacunResponse{Status: entity.FiskStatusGreska, Greske: []string{err.Error()}}
				return nil
			}
			results[i], records[i] = resp, rec
			return nil
		})
	}
	_ = g.Wait()

	var pending []*entity.Fiskalizacija
	for _, rec := range records {
		if rec != nil {
			pending = append(pending, rec)
		}
	}
	if err := s.persistAll(ctx, pending); err != nil {
		return results, fmt.Errorf("fiskalizacija: guardar lote: %w", err)
	}
	return results, nil
}

func (s *Service) fiskaliziraj(ctx context.Context, oib string, in dto.RacunRequest) (*dto.RacunResponse, *entity.Fiskalizacija, error) {
	if err := s.authorize(oib, in.Oib); err != nil {
		return nil, nil, err
	}
	if in.OibOper != "" {
		if err := checkOIB("oib_oper", in.OibOper); err != nil {
			return nil, nil, err
		}
	}
	datVrijeme := in.DatVrijeme
	if datVrijeme.IsZero() {
		datVrijeme = s.now()
	}
	racun, err := buildRacun(s.session.ZKI, in, datVrijeme, s.cfg.OibOper, s.cfg.SpecNamj)
	if err != nil {
		return nil, nil, err
	}
	z, err := NewRacunZahtjev(s.session, racun)
	if err != nil {
		return nil, nil, invalid(err)
	}

	jir, ok, execErr := z.Execute(ctx)
	if execErr != nil && IsModelError(execErr) {
		return nil, nil, invalid(execErr)
	}

	rec := s.newRecord(entity.FiskTipRacun, in.Oib, z.Request)
	rec.DatumVrijeme = datVrijeme
	rec.BrojRacuna = in.BrOznRac + "/" + in.OznPosPr + "/" + in.OznNapUr
	rec.ZastKod = racun.ZastKod()
	rec.Jir = jir
	rec.IznosUkupno = in.IznosUkupno
	rec.NacinPlac = racun.GetString("NacinPlac")
	rec.NakDost = in.NakDost
	rec.Status = status(ok, z.Errors(), execErr)
	rec.Greske = greske(z.Errors(), execErr)

	log := s.session.logger()
	log.Info().
		Str("tip", entity.FiskTipRacun).
		Str("id_poruke", rec.IdPoruke).
		Str("zast_kod", rec.ZastKod).
		Str("jir", jir).
		Str("status", rec.Status).
		Msg("factura procesada")

	return &dto.RacunResponse{
		ID:       rec.ID,
		Status:   rec.Status,
		Jir:      jir,
		ZastKod:  rec.ZastKod,
		IdPoruke: rec.IdPoruke,
		Greske:   rec.Greske,
	}, rec, nil
}

// ── Provjera ─────────────────────────────────────────────────────────────────

// ProvjeriRacun pide al CIS que interprete la factura y la compara con la local.
// Solo existe en el entorno demo.
func (s *Service) ProvjeriRacun(ctx context.Context, oib string, in dto.RacunRequest) (*dto.ProvjeraResponse, error) {
	if s.session.Env != pkgfisk.EnvDemo {
		return nil, domain.ErrNotDemo
	}
	if err := s.authorize(oib, in.Oib); err != nil {
		return nil, err
	}
	datVrijeme := in.DatVrijeme
	if datVrijeme.IsZero() {
		datVrijeme = s.now()
	}
	racun, err := buildRacun(s.session.ZKI, in, datVrijeme, s.cfg.OibOper, s.cfg.SpecNamj)
	if err != nil {
		return nil, err
	}
	z, err := NewProvjeraZahtjev(s.session, racun)
	if err != nil {
		return nil, invalid(err)
	}
	res, err := z.Execute(ctx)
	if err != nil {
		if IsModelError(err) {
			return nil, invalid(err)
		}
		return nil, err
	}
	return &dto.ProvjeraResponse{
		Rezultat: res.Kind.String(),
		ZastKod:  racun.ZastKod(),
		Greske:   z.Errors(),
	}, nil
}

// ── Consultas ────────────────────────────────────────────────────────────────

// Get devuelve un registro del emisor autenticado.
func (s *Service) Get(ctx context.Context, oib, id string) (*dto.FiskalizacijaResponse, error) {
	f, err := s.load(oib, id)
	if err != nil {
		return nil, err
	}
	return toResponse(f), nil
}

// List pagina los registros del emisor autenticado.
func (s *Service) List(ctx context.Context, oib string, page dto.PageRequest) (*dto.PageResponse[*dto.FiskalizacijaResponse], error) {
	limit, offset := page.Normalize()
	rows, err := s.repo.ListByOib(oib, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("fiskalizacija: listar: %w", err)
	}
	items := make([]*dto.FiskalizacijaResponse, 0, len(rows))
	for _, f := range rows {
		items = append(items, toResponse(f))
	}
	return &dto.PageResponse[*dto.FiskalizacijaResponse]{Items: items, Limit: limit, Offset: offset}, nil
}

// Pending facturas sin JIR por falta de respuesta; deben reenviarse con NakDost=true.
func (s *Service) Pending(ctx context.Context, oib string, limit int) ([]*dto.FiskalizacijaResponse, error) {
	if limit <= 0 || limit > MaxBatch {
		limit = MaxBatch
	}
	rows, err := s.repo.ListPending(oib, limit)
	if err != nil {
		return nil, fmt.Errorf("fiskalizacija: pendientes: %w", err)
	}
	items := make([]*dto.FiskalizacijaResponse, 0, len(rows))
	for _, f := range rows {
		items = append(items, toResponse(f))
	}
	return items, nil
}

// ReceiptPDF genera el recibo de una factura. Sin JIR el QR lleva el ZKI.
func (s *Service) ReceiptPDF(ctx context.Context, oib, id string) ([]byte, string, error) {
	if s.pdf == nil {
		return nil, "", fmt.Errorf("fiskalizacija: generador de PDF no configurado")
	}
	f, err := s.load(oib, id)
	if err != nil {
		return nil, "", err
	}
	if f.Tip != entity.FiskTipRacun || f.ZastKod == "" {
		return nil, "", fmt.Errorf("%w: el registro %s no es una factura con ZKI", domain.ErrInvalidInput, id)
	}
	qr := pkgfisk.ReceiptURL(f.Jir, f.ZastKod, f.DatumVrijeme, f.IznosUkupno)
	pdf, err := s.pdf.GenerateReceiptPDF(ctx, f, qr)
	if err != nil {
		return nil, "", fmt.Errorf("fiskalizacija: generar PDF: %w", err)
	}
	return pdf, fmt.Sprintf("racun_%s.pdf", f.ID), nil
}

// ── Auxiliares ───────────────────────────────────────────────────────────────

// authorize exige un OIB válido y, si el token trae uno, que coincida.
func (s *Service) authorize(tokenOib, oib string) error {
	if err := checkOIB("oib", oib); err != nil {
		return err
	}
	if tokenOib != "" && tokenOib != oib {
		return domain.ErrForbidden
	}
	return nil
}

func (s *Service) load(oib, id string) (*entity.Fiskalizacija, error) {
	f, err := s.repo.GetByID(id)
	if err != nil {
		return nil, fmt.Errorf("fiskalizacija: obtener %s: %w", id, err)
	}
	if f == nil {
		return nil, domain.ErrNotFound
	}
	if oib != "" && f.Oib != oib {
		return nil, domain.ErrForbidden
	}
	return f, nil
}

func (s *Service) newRecord(tip, oib string, r *Request) *entity.Fiskalizacija {
	rec := &entity.Fiskalizacija{
		ID:        uuid.New().String(),
		Tip:       tip,
		Oib:       oib,
		IdPoruke:  r.IdPoruke(),
		Odgovor:   string(r.LastReply()),
		CreatedAt: s.now().UTC(),
	}
	if doc := r.LastRequest(); doc != nil {
		if xml, err := doc.WriteToString(); err == nil {
			rec.Zahtjev = xml
		}
	}
	return rec
}

// persist guarda el registro; un fallo se registra pero no invalida la respuesta del CIS.
func (s *Service) persist(rec *entity.Fiskalizacija) {
	if s.repo == nil {
		return
	}
	if err := s.store(s.repo, rec); err != nil {
		log := s.session.logger()
		log.Error().Err(err).Str("tip", rec.Tip).Str("id_poruke", rec.IdPoruke).Msg("no se pudo guardar el registro")
	}
}

func (s *Service) persistAll(ctx context.Context, recs []*entity.Fiskalizacija) error {
	if len(recs) == 0 {
		return nil
	}
	save := func(repo repository.FiskalizacijaRepository) error {
		for _, rec := range recs {
			if err := s.store(repo, rec); err != nil {
				return err
			}
		}
		return nil
	}
	if s.tx != nil {
		return s.tx.Run(ctx, save)
	}
	if s.repo == nil {
		return nil
	}
	return save(s.repo)
}

// store crea el registro y, si es un reenvío con JIR, cierra los pendientes de la misma factura.
func (s *Service) store(repo repository.FiskalizacijaRepository, rec *entity.Fiskalizacija) error {
	if err := repo.Create(rec); err != nil {
		return err
	}
	if rec.Tip != entity.FiskTipRacun || !rec.NakDost || rec.Status != entity.FiskStatusFiskaliziran {
		return nil
	}
	n, err := repo.ResolvePending(rec.Oib, rec.BrojRacuna)
	if err != nil {
		return err
	}
	if n > 0 {
		log := s.session.logger()
		log.Info().Str("broj_racuna", rec.BrojRacuna).Int64("pendientes", n).Msg("pendientes resueltos")
	}
	return nil
}

// status clasifica el intercambio. Solo un SOAP Fault es un rechazo definitivo;
// cualquier otro error deja la factura pendiente de reenvío.
func status(ok bool, errs []string, err error) string {
	var fault *pkgfisk.FaultError
	switch {
	case errors.As(err, &fault):
		return entity.FiskStatusGreska
	case err != nil:
		return entity.FiskStatusNaknadno
	case ok:
		return entity.FiskStatusFiskaliziran
	case len(errs) > 0:
		return entity.FiskStatusOdbijen
	}
	return entity.FiskStatusNaknadno
}

func greske(errs []string, err error) []string {
	if err != nil {
		return append(errs, err.Error())
	}
	return errs
}

func toResponse(f *entity.Fiskalizacija) *dto.FiskalizacijaResponse {
	return &dto.FiskalizacijaResponse{
		ID:           f.ID,
		Tip:          f.Tip,
		Oib:          f.Oib,
		IdPoruke:     f.IdPoruke,
		DatumVrijeme: f.DatumVrijeme,
		BrojRacuna:   f.BrojRacuna,
		ZastKod:      f.ZastKod,
		Jir:          f.Jir,
		IznosUkupno:  f.IznosUkupno,
		Status:       f.Status,
		Greske:       f.Greske,
	}
}
