package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/tu-usuario/facturador-afip/internal/application/billing"
	"github.com/tu-usuario/facturador-afip/internal/application/dto"
	"github.com/tu-usuario/facturador-afip/internal/domain"
	"github.com/tu-usuario/facturador-afip/internal/domain/entity"
	"github.com/tu-usuario/facturador-afip/internal/domain/repository"
	pkgafip "github.com/tu-usuario/facturador-afip/pkg/afip"
)

// FacturaHandler maneja emisión individual, lotes y consulta de comprobantes.
type FacturaHandler struct {
	emitir          *billing.EmitirFacturaUseCase
	lote            *billing.ProcesadorLote
	empresaRepo     repository.EmpresaRepository
	comprobanteRepo repository.ComprobanteRepository
}

// NewFacturaHandler construye el handler de facturación.
func NewFacturaHandler(
	emitir *billing.EmitirFacturaUseCase,
	lote *billing.ProcesadorLote,
	empresaRepo repository.EmpresaRepository,
	comprobanteRepo repository.ComprobanteRepository,
) *FacturaHandler {
	return &FacturaHandler{
		emitir:          emitir,
		lote:            lote,
		empresaRepo:     empresaRepo,
		comprobanteRepo: comprobanteRepo,
	}
}

// Emitir factura una venta suelta. El resultado del microservicio (exitoso,
// rechazado o transitorio) vuelve como 201 con el estado en el cuerpo; solo
// los errores de validación o credencial devuelven 4xx.
func (h *FacturaHandler) Emitir(c *fiber.Ctx) error {
	var in dto.VentaRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	empresa, errResp := h.cargarEmpresa(c)
	if errResp != nil {
		return errResp
	}

	comp, err := h.emitir.Emitir(c.Context(), empresa, in.ToVenta(empresa.ID))
	if err != nil {
		return responderErrorEmision(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toComprobanteResponse(comp))
}

// Lote factura un lote de ventas en paralelo. Las fallas son por venta: el
// lote siempre responde 200 con el detalle de cada una.
func (h *FacturaHandler) Lote(c *fiber.Ctx) error {
	var in dto.LoteRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if len(in.Ventas) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "el lote no tiene ventas"})
	}
	empresa, errResp := h.cargarEmpresa(c)
	if errResp != nil {
		return errResp
	}

	ventas := make([]*entity.Venta, len(in.Ventas))
	for i, v := range in.Ventas {
		ventas[i] = v.ToVenta(empresa.ID)
	}

	resumen := h.lote.Procesar(c.Context(), empresa, ventas)

	out := dto.LoteResponse{
		Total:        resumen.Total,
		Exitosos:     resumen.Exitosos,
		Rechazados:   resumen.Rechazados,
		Transitorios: resumen.Transitorios,
		Fallidos:     resumen.Fallidos,
		Resultados:   make([]dto.ResultadoVentaResponse, len(resumen.Resultados)),
	}
	for i, r := range resumen.Resultados {
		rv := dto.ResultadoVentaResponse{VentaID: r.VentaID}
		if r.Comprobante != nil {
			resp := toComprobanteResponse(r.Comprobante)
			rv.Comprobante = &resp
		}
		if r.Error != nil {
			rv.Error = r.Error.Error()
		}
		out.Resultados[i] = rv
	}
	return c.JSON(out)
}

// GetByID devuelve un comprobante emitido.
func (h *FacturaHandler) GetByID(c *fiber.Ctx) error {
	comp, err := h.comprobanteRepo.GetByID(c.Context(), c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	if comp == nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "comprobante no encontrado"})
	}
	return c.JSON(toComprobanteResponse(comp))
}

// List lista los comprobantes de la empresa del token. Acepta ?estado= para
// filtrar (ej. ERROR_TRANSITORIO para reprocesos).
func (h *FacturaHandler) List(c *fiber.Ctx) error {
	empresaID := GetEmpresaID(c)
	if empresaID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "token sin empresa asociada"})
	}
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "parámetros de paginación inválidos"})
	}
	page.DefaultPage()

	var (
		comps []*entity.Comprobante
		err   error
	)
	if estado := c.Query("estado"); estado != "" {
		comps, err = h.comprobanteRepo.ListByEstado(c.Context(), empresaID, estado, page.Limit, page.Offset)
	} else {
		comps, err = h.comprobanteRepo.ListByEmpresa(c.Context(), empresaID, page.Limit, page.Offset)
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}

	out := dto.ListaComprobantesResponse{
		Comprobantes: make([]dto.ComprobanteResponse, 0, len(comps)),
		Limit:        page.Limit,
		Offset:       page.Offset,
	}
	for _, comp := range comps {
		out.Comprobantes = append(out.Comprobantes, toComprobanteResponse(comp))
	}
	return c.JSON(out)
}

// cargarEmpresa resuelve la empresa emisora desde el claim del token.
func (h *FacturaHandler) cargarEmpresa(c *fiber.Ctx) (*entity.Empresa, error) {
	empresaID := GetEmpresaID(c)
	if empresaID == "" {
		return nil, c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "token sin empresa asociada"})
	}
	empresa, err := h.empresaRepo.GetByID(c.Context(), empresaID)
	if err != nil {
		return nil, c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	if empresa == nil {
		return nil, c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "EMPRESA_NOT_FOUND", Message: "la empresa del token no existe"})
	}
	if !empresa.Activa {
		return nil, c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "empresa inactiva"})
	}
	return empresa, nil
}

// responderErrorEmision mapea los errores de preparación a códigos HTTP.
func responderErrorEmision(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrCredencialNoEncontrada):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "SIN_CREDENCIAL", Message: err.Error()})
	case errors.Is(err, domain.ErrCredencialInvalida):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.ErrorResponse{Code: "CREDENCIAL_INVALIDA", Message: err.Error()})
	case errors.Is(err, domain.ErrReceptorIncompatibleConA):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.ErrorResponse{Code: "RECEPTOR_INCOMPATIBLE", Message: err.Error()})
	case errors.Is(err, domain.ErrTipoManualInvalido),
		errors.Is(err, domain.ErrCondicionEmisorNoSoportada),
		errors.Is(err, domain.ErrMontosInconsistentes),
		errors.Is(err, domain.ErrTributoInvalido),
		errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
}

func toComprobanteResponse(comp *entity.Comprobante) dto.ComprobanteResponse {
	return dto.ComprobanteResponse{
		ID:                comp.ID,
		EmpresaID:         comp.EmpresaID,
		VentaID:           comp.VentaID,
		Tipo:              comp.Tipo,
		TipoNombre:        pkgafip.NombreTipoComprobante(comp.Tipo),
		PuntoVenta:        comp.PuntoVenta,
		Numero:            comp.Numero,
		CUITEmisor:        comp.CUITEmisor,
		TipoDocReceptor:   comp.TipoDocReceptor,
		NroDocReceptor:    comp.NroDocReceptor,
		ImporteTotal:      comp.ImporteTotal,
		ImporteNeto:       comp.ImporteNeto,
		ImporteIVA:        comp.ImporteIVA,
		Tributos:          comp.Tributos,
		AplicarDesglose77: comp.AplicarDesglose77,
		Estado:            comp.Estado,
		CAE:               comp.CAE,
		VencimientoCAE:    comp.VencimientoCAE,
		QRURL:             comp.QRURL,
		Errores:           comp.Errores,
		CreatedAt:         comp.CreatedAt,
	}
}
