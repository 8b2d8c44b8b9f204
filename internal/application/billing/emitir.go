package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	domafip "github.com/tu-usuario/facturador-afip/internal/domain/afip"
	"github.com/tu-usuario/facturador-afip/internal/domain/entity"
	"github.com/tu-usuario/facturador-afip/internal/domain/repository"
	infraafip "github.com/tu-usuario/facturador-afip/internal/infrastructure/afip"
	pkgafip "github.com/tu-usuario/facturador-afip/pkg/afip"
	"github.com/tu-usuario/facturador-afip/pkg/logger"
)

// EmitirFacturaUseCase es el pipeline de facturación de una venta:
//
//	Resolver credencial → Normalizar PEM / forzar PKCS#8 → Identidad del
//	receptor → Clasificación → Tipo manual → Reconciliación de montos →
//	Envío al microservicio → Persistir comprobante
//
// Cada invocación es una secuencia síncrona y autocontenida; la concurrencia
// la maneja el procesador de lote por encima. No hay estado mutable compartido.
type EmitirFacturaUseCase struct {
	resolver          *ResolverCredenciales
	emisor            infraafip.Emisor
	comprobanteRepo   repository.ComprobanteRepository
	politica          PoliticaResolucion
	puntoVentaDefecto int
	log               *logger.Logger
}

// NewEmitirFacturaUseCase construye el caso de uso de emisión.
// puntoVentaDefecto se usa cuando la empresa no tiene punto de venta propio;
// <= 0 se normaliza a 1.
func NewEmitirFacturaUseCase(
	resolver *ResolverCredenciales,
	emisor infraafip.Emisor,
	comprobanteRepo repository.ComprobanteRepository,
	politica PoliticaResolucion,
	puntoVentaDefecto int,
	log *logger.Logger,
) *EmitirFacturaUseCase {
	if puntoVentaDefecto <= 0 {
		puntoVentaDefecto = 1
	}
	return &EmitirFacturaUseCase{
		resolver:          resolver,
		emisor:            emisor,
		comprobanteRepo:   comprobanteRepo,
		politica:          politica,
		puntoVentaDefecto: puntoVentaDefecto,
		log:               log,
	}
}

// FacturaPreparada es una venta lista para enviar: credenciales normalizadas y
// datos del comprobante ya clasificados y reconciliados. Separar la
// preparación del envío permite al lote reintentar solo el envío ante errores
// transitorios, sin re-resolver credenciales.
type FacturaPreparada struct {
	Credenciales infraafip.Credenciales
	Datos        infraafip.DatosFactura
	Comprobante  *entity.Comprobante
}

// Preparar ejecuta todos los pasos previos al envío. Cualquier error acá es
// terminal para esa venta (credencial, clasificación o montos) y no se reintenta.
func (uc *EmitirFacturaUseCase) Preparar(ctx context.Context, empresa *entity.Empresa, venta *entity.Venta) (*FacturaPreparada, error) {
	cred, err := uc.resolver.Resolve(ctx, empresa.CUIT, uc.politica)
	if err != nil {
		return nil, err
	}

	certPEM := infraafip.NormalizarPEM(cred.CertificadoPEM, infraafip.BloqueCertificado)
	if err := infraafip.ValidarCertificado(certPEM); err != nil {
		return nil, err
	}
	keyPEM, err := infraafip.ForzarPKCS8(cred.ClavePrivadaPEM)
	if err != nil {
		return nil, err
	}

	identidad := pkgafip.ResolverIdentidadReceptor(venta.DocReceptor,
		pkgafip.ParseCondicionIVA(venta.CondicionIVAReceptor))
	if identidad.Degradado && venta.DocReceptor != "" {
		uc.log.Debug().Str("venta_id", venta.ID).Str("doc", venta.DocReceptor).
			Msg("documento del receptor no identificable: degradado a consumidor final")
	}

	condicionEmisor := pkgafip.ParseCondicionIVA(empresa.CondicionIVA)
	clasif, err := domafip.Clasificar(condicionEmisor, identidad.CondicionIVA, venta.Total)
	if err != nil {
		return nil, err
	}

	if venta.TipoManual != 0 {
		var degradado bool
		clasif, degradado, err = domafip.AplicarTipoManual(clasif, venta.TipoManual, condicionEmisor, identidad)
		if err != nil {
			return nil, err
		}
		if degradado {
			uc.log.Warn().Str("venta_id", venta.ID).
				Int("pedido", venta.TipoManual).Int("final", clasif.Tipo).
				Msg("tipo A pedido con receptor no RI: degradado a B")
		}
	}

	desglose, err := domafip.ReconciliarMontos(clasif, venta.Total, venta.AplicarDesglose77, venta.Tributos)
	if err != nil {
		return nil, err
	}

	puntoVenta := empresa.PuntoVenta
	if puntoVenta == 0 {
		puntoVenta = uc.puntoVentaDefecto
	}

	now := time.Now()
	comprobante := &entity.Comprobante{
		ID:                uuid.New().String(),
		EmpresaID:         empresa.ID,
		VentaID:           venta.ID,
		Tipo:              clasif.Tipo,
		PuntoVenta:        puntoVenta,
		CUITEmisor:        cred.CUIT,
		TipoDocReceptor:   identidad.TipoDoc,
		NroDocReceptor:    identidad.NroDoc,
		ImporteTotal:      desglose.Total,
		ImporteNeto:       desglose.Neto,
		ImporteIVA:        desglose.IVA,
		Tributos:          desglose.Tributos,
		AplicarDesglose77: venta.AplicarDesglose77,
		Estado:            entity.EstadoPendiente,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	return &FacturaPreparada{
		Credenciales: infraafip.Credenciales{
			CUIT:         cred.CUIT,
			Certificado:  certPEM,
			ClavePrivada: keyPEM,
		},
		Datos: infraafip.DatosFactura{
			TipoComprobante:   clasif.Tipo,
			PuntoVenta:        puntoVenta,
			CUITEmisor:        cred.CUIT,
			TipoDocReceptor:   identidad.TipoDoc,
			NroDocReceptor:    identidad.NroDoc,
			ImporteTotal:      desglose.Total,
			ImporteNeto:       desglose.Neto,
			ImporteIVA:        desglose.IVA,
			Tributos:          desglose.Tributos,
			AplicarDesglose77: venta.AplicarDesglose77,
		},
		Comprobante: comprobante,
	}, nil
}

// Enviar hace un único intento de emisión y vuelca el resultado clasificado en
// el comprobante. No persiste ni reintenta.
func (uc *EmitirFacturaUseCase) Enviar(ctx context.Context, prep *FacturaPreparada) error {
	res, err := uc.emisor.Emitir(ctx, prep.Credenciales, prep.Datos)
	if err != nil {
		return fmt.Errorf("emitir venta %s: %w", prep.Comprobante.VentaID, err)
	}

	comp := prep.Comprobante
	comp.Estado = res.Estado
	comp.CAE = res.CAE
	comp.VencimientoCAE = res.VencimientoCAE
	comp.Numero = res.NumeroComprobante
	comp.QRURL = res.QRURL
	comp.Errores = res.Detalle
	comp.UpdatedAt = time.Now()
	return nil
}

// Emitir es el ciclo completo para una venta suelta: preparar, un intento de
// envío y persistencia del comprobante resultante, cualquiera sea su estado.
func (uc *EmitirFacturaUseCase) Emitir(ctx context.Context, empresa *entity.Empresa, venta *entity.Venta) (*entity.Comprobante, error) {
	prep, err := uc.Preparar(ctx, empresa, venta)
	if err != nil {
		return nil, err
	}

	if err := uc.Enviar(ctx, prep); err != nil {
		return nil, err
	}

	if err := uc.comprobanteRepo.Create(ctx, prep.Comprobante); err != nil {
		return nil, fmt.Errorf("persistir comprobante de venta %s: %w", venta.ID, err)
	}

	uc.log.Info().
		Str("venta_id", venta.ID).
		Str("estado", prep.Comprobante.Estado).
		Int("tipo", prep.Comprobante.Tipo).
		Str("cae", prep.Comprobante.CAE).
		Msg("emisión procesada")

	return prep.Comprobante, nil
}

// Persistir guarda un comprobante ya enviado (lo usa el procesador de lote).
func (uc *EmitirFacturaUseCase) Persistir(ctx context.Context, comp *entity.Comprobante) error {
	return uc.comprobanteRepo.Create(ctx, comp)
}
