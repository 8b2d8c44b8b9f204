package billing

import (
	"context"
	"sync"
	"time"

	"github.com/tu-usuario/facturador-afip/internal/domain/entity"
	"github.com/tu-usuario/facturador-afip/pkg/logger"
)

// trabajoLote es una venta encolada para un worker, con su posición original.
type trabajoLote struct {
	Venta  *entity.Venta
	Indice int
}

// ResultadoVenta es el desenlace de una venta del lote. Si la preparación
// falló (credencial, clasificación o montos), Comprobante es nil y Error
// lleva la causa; si hubo envío, Comprobante refleja el estado clasificado.
type ResultadoVenta struct {
	VentaID     string
	Indice      int
	Comprobante *entity.Comprobante
	Error       error
}

// ResumenLote agrega los contadores de un lote procesado.
type ResumenLote struct {
	Total        int
	Exitosos     int
	Rechazados   int
	Transitorios int
	Fallidos     int // errores de preparación o de transporte
	Resultados   []ResultadoVenta
}

// ProcesadorLote emite un lote de ventas en paralelo con un pool de workers
// de tamaño fijo. Cada venta es independiente: una falla no detiene el lote.
// Los envíos con estado ERROR_TRANSITORIO se reintentan con backoff lineal
// hasta agotar los reintentos; rechazos y errores de preparación no se
// reintentan nunca.
type ProcesadorLote struct {
	emitir     *EmitirFacturaUseCase
	workers    int
	reintentos int
	espera     time.Duration // base del backoff lineal entre reintentos
	log        *logger.Logger
}

// NewProcesadorLote construye el procesador. workers <= 0 usa 4;
// reintentos < 0 se trata como 0 (un solo intento).
func NewProcesadorLote(emitir *EmitirFacturaUseCase, workers, reintentos int, log *logger.Logger) *ProcesadorLote {
	if workers <= 0 {
		workers = 4
	}
	if reintentos < 0 {
		reintentos = 0
	}
	return &ProcesadorLote{
		emitir:     emitir,
		workers:    workers,
		reintentos: reintentos,
		espera:     2 * time.Second,
		log:        log,
	}
}

// Procesar emite todas las ventas del lote y bloquea hasta terminar.
// Los resultados vuelven ordenados por el índice original de cada venta.
func (p *ProcesadorLote) Procesar(ctx context.Context, empresa *entity.Empresa, ventas []*entity.Venta) *ResumenLote {
	resumen := &ResumenLote{
		Total:      len(ventas),
		Resultados: make([]ResultadoVenta, len(ventas)),
	}
	if len(ventas) == 0 {
		return resumen
	}

	jobs := make(chan trabajoLote, p.workers*2)

	var wg sync.WaitGroup
	for i := 0; i < p.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobs {
				resumen.Resultados[job.Indice] = p.procesarVenta(ctx, empresa, job)
			}
		}()
	}

encolar:
	for i, v := range ventas {
		select {
		case jobs <- trabajoLote{Venta: v, Indice: i}:
		case <-ctx.Done():
			// Las ventas que no llegaron a encolarse quedan marcadas con el
			// error de contexto; las ya encoladas terminan su ciclo.
			for j := i; j < len(ventas); j++ {
				resumen.Resultados[j] = ResultadoVenta{VentaID: ventas[j].ID, Indice: j, Error: ctx.Err()}
			}
			break encolar
		}
	}
	close(jobs)
	wg.Wait()

	for _, r := range resumen.Resultados {
		switch {
		case r.Error != nil:
			resumen.Fallidos++
		case r.Comprobante == nil:
			resumen.Fallidos++
		case r.Comprobante.Estado == entity.EstadoExitoso:
			resumen.Exitosos++
		case r.Comprobante.Estado == entity.EstadoErrorTransitorio:
			resumen.Transitorios++
		default:
			resumen.Rechazados++
		}
	}

	p.log.Info().
		Int("total", resumen.Total).
		Int("exitosos", resumen.Exitosos).
		Int("rechazados", resumen.Rechazados).
		Int("transitorios", resumen.Transitorios).
		Int("fallidos", resumen.Fallidos).
		Msg("lote procesado")

	return resumen
}

// procesarVenta emite una venta con reintentos solo ante estado transitorio.
func (p *ProcesadorLote) procesarVenta(ctx context.Context, empresa *entity.Empresa, job trabajoLote) ResultadoVenta {
	res := ResultadoVenta{VentaID: job.Venta.ID, Indice: job.Indice}

	prep, err := p.emitir.Preparar(ctx, empresa, job.Venta)
	if err != nil {
		p.log.Error().Err(err).Str("venta_id", job.Venta.ID).Msg("preparación de venta fallida")
		res.Error = err
		return res
	}

	for intento := 0; ; intento++ {
		if err := p.emitir.Enviar(ctx, prep); err != nil {
			res.Error = err
			return res
		}
		if prep.Comprobante.Estado != entity.EstadoErrorTransitorio || intento >= p.reintentos {
			break
		}
		p.log.Warn().
			Str("venta_id", job.Venta.ID).
			Int("intento", intento+1).
			Str("detalle", prep.Comprobante.Errores).
			Msg("error transitorio, reintentando")
		select {
		case <-time.After(p.espera * time.Duration(intento+1)):
		case <-ctx.Done():
			res.Error = ctx.Err()
			return res
		}
	}

	if err := p.emitir.Persistir(ctx, prep.Comprobante); err != nil {
		res.Error = err
		return res
	}
	res.Comprobante = prep.Comprobante
	return res
}
