package http

import (
	"context"
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/fiskal-api/internal/application/dto"
	"github.com/jhoicas/fiskal-api/internal/application/fiskalizacija"
	"github.com/jhoicas/fiskal-api/internal/domain"
	pkgfisk "github.com/jhoicas/fiskal-api/pkg/fisk"
)

// FiskService casos de uso que expone la API (implementado por *fiskalizacija.Service).
type FiskService interface {
	Env() string
	Echo(ctx context.Context, poruka string) (*dto.EchoResponse, error)
	RegistrirajPoslovniProstor(ctx context.Context, oib string, in dto.PoslovniProstorRequest) (*dto.PoslovniProstorResponse, error)
	FiskalizirajRacun(ctx context.Context, oib string, in dto.RacunRequest) (*dto.RacunResponse, error)
	FiskalizirajBatch(ctx context.Context, oib string, in []dto.RacunRequest) ([]*dto.RacunResponse, error)
	ProvjeriRacun(ctx context.Context, oib string, in dto.RacunRequest) (*dto.ProvjeraResponse, error)
	Get(ctx context.Context, oib, id string) (*dto.FiskalizacijaResponse, error)
	List(ctx context.Context, oib string, page dto.PageRequest) (*dto.PageResponse[*dto.FiskalizacijaResponse], error)
	Pending(ctx context.Context, oib string, limit int) ([]*dto.FiskalizacijaResponse, error)
	ReceiptPDF(ctx context.Context, oib, id string) ([]byte, string, error)
}

var _ FiskService = (*fiskalizacija.Service)(nil)

// FiskHandler maneja las peticiones HTTP de fiscalización (protegido).
type FiskHandler struct {
	svc FiskService
}

// NewFiskHandler construye el handler.
func NewFiskHandler(svc FiskService) *FiskHandler {
	return &FiskHandler{svc: svc}
}

// Echo comprueba la conexión con el CIS.
// @Summary      Echo del CIS
// @Tags         fisk
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.EchoRequest  true  "poruka"
// @Success      200   {object}  dto.EchoResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      502   {object}  dto.ErrorResponse
// @Failure      504   {object}  dto.ErrorResponse
// @Router       /api/fisk/echo [post]
func (h *FiskHandler) Echo(c *fiber.Ctx) error {
	var in dto.EchoRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.svc.Echo(c.UserContext(), in.Poruka)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(out)
}

// RegistrirajPoslovniProstor registra o cierra un local.
// @Summary      Registrar local de negocio
// @Tags         fisk
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.PoslovniProstorRequest  true  "datos del local"
// @Success      200   {object}  dto.PoslovniProstorResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      502   {object}  dto.ErrorResponse
// @Router       /api/fisk/poslovni-prostori [post]
func (h *FiskHandler) RegistrirajPoslovniProstor(c *fiber.Ctx) error {
	var in dto.PoslovniProstorRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.svc.RegistrirajPoslovniProstor(c.UserContext(), GetOib(c), in)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(out)
}

// FiskalizirajRacun fiscaliza una factura. Responde 201 aunque el CIS no conteste:
// el ZKI permite emitir la factura y el registro queda pendiente (NAKNADNO).
// @Summary      Fiscalizar factura
// @Tags         racuni
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RacunRequest  true  "factura"
// @Success      201   {object}  dto.RacunResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Router       /api/fisk/racuni [post]
func (h *FiskHandler) FiskalizirajRacun(c *fiber.Ctx) error {
	var in dto.RacunRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.svc.FiskalizirajRacun(c.UserContext(), GetOib(c), in)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// FiskalizirajBatch fiscaliza un lote de facturas.
// @Summary      Fiscalizar lote de facturas
// @Tags         racuni
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  []dto.RacunRequest  true  "entre 1 y 100 facturas"
// @Success      201   {array}   dto.RacunResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      500   {object}  dto.ErrorResponse
// @Router       /api/fisk/racuni/batch [post]
func (h *FiskHandler) FiskalizirajBatch(c *fiber.Ctx) error {
	var in []dto.RacunRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.svc.FiskalizirajBatch(c.UserContext(), GetOib(c), in)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// ProvjeriRacun contrasta una factura con la interpretación del CIS (solo demo).
// @Summary      Verificar factura (demo)
// @Tags         racuni
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RacunRequest  true  "factura"
// @Success      200   {object}  dto.ProvjeraResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      502   {object}  dto.ErrorResponse
// @Router       /api/fisk/racuni/provjera [post]
func (h *FiskHandler) ProvjeriRacun(c *fiber.Ctx) error {
	var in dto.RacunRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.svc.ProvjeriRacun(c.UserContext(), GetOib(c), in)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(out)
}

// List lista los registros del emisor.
// @Summary      Listar fiscalizaciones
// @Tags         racuni
// @Security     Bearer
// @Produce      json
// @Param        limit   query  int  false  "máximo de registros"
// @Param        offset  query  int  false  "desplazamiento"
// @Success      200   {object}  dto.PageResponse[dto.FiskalizacijaResponse]
// @Failure      401   {object}  dto.ErrorResponse
// @Router       /api/fisk/racuni [get]
func (h *FiskHandler) List(c *fiber.Ctx) error {
	page := dto.PageRequest{Limit: c.QueryInt("limit", 0), Offset: c.QueryInt("offset", 0)}
	out, err := h.svc.List(c.UserContext(), GetOib(c), page)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(out)
}

// Pending facturas a reenviar.
// @Summary      Facturas pendientes de reenvío
// @Tags         racuni
// @Security     Bearer
// @Produce      json
// @Param        limit  query  int  false  "máximo de registros (100)"
// @Success      200   {array}   dto.FiskalizacijaResponse
// @Failure      401   {object}  dto.ErrorResponse
// @Router       /api/fisk/racuni/naknadno [get]
func (h *FiskHandler) Pending(c *fiber.Ctx) error {
	out, err := h.svc.Pending(c.UserContext(), GetOib(c), c.QueryInt("limit", 0))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(out)
}

// GetByID detalle de un registro.
// @Summary      Detalle de una fiscalización
// @Tags         racuni
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID del registro"
// @Success      200   {object}  dto.FiskalizacijaResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/fisk/racuni/{id} [get]
func (h *FiskHandler) GetByID(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "id requerido"})
	}
	out, err := h.svc.Get(c.UserContext(), GetOib(c), id)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(out)
}

// ReceiptPDF recibo imprimible con QR.
// @Summary      Recibo PDF con QR
// @Tags         racuni
// @Security     Bearer
// @Produce      application/pdf
// @Param        id  path  string  true  "ID del registro"
// @Success      200   {file}    binary
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/fisk/racuni/{id}/pdf [get]
func (h *FiskHandler) ReceiptPDF(c *fiber.Ctx) error {
	pdf, filename, err := h.svc.ReceiptPDF(c.UserContext(), GetOib(c), c.Params("id"))
	if err != nil {
		return errorResponse(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, "inline; filename="+strconv.Quote(filename))
	return c.Send(pdf)
}

func invalidBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
}

// errorResponse traduce los errores del dominio y del intercambio a HTTP.
func errorResponse(c *fiber.Ctx, err error) error {
	var (
		te *pkgfisk.TransportError
		fe *pkgfisk.FaultError
	)
	switch {
	case errors.Is(err, domain.ErrInvalidOIB):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_OIB", Message: err.Error()})
	case errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	case errors.Is(err, domain.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "acceso denegado al recurso"})
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "registro no encontrado"})
	case errors.Is(err, domain.ErrNotDemo):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "NOT_DEMO", Message: "operación disponible solo en el entorno demo"})
	case errors.Is(err, fiskalizacija.ErrNoReply), errors.Is(err, pkgfisk.ErrUnverifiedReply):
		return c.Status(fiber.StatusBadGateway).JSON(dto.ErrorResponse{Code: "NO_REPLY", Message: err.Error()})
	case errors.As(err, &te), errors.As(err, &fe):
		return c.Status(fiber.StatusBadGateway).JSON(dto.ErrorResponse{Code: "CIS_ERROR", Message: err.Error()})
	case errors.Is(err, context.DeadlineExceeded):
		return c.Status(fiber.StatusGatewayTimeout).JSON(dto.ErrorResponse{Code: "TIMEOUT", Message: "el CIS no respondió a tiempo"})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
}
