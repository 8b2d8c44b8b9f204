package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/tu-usuario/facturador-afip/internal/domain/entity"
)

// VentaRequest es una venta a facturar tal como llega por la API.
// Los campos de texto libre (documento y condición IVA del receptor) se
// normalizan en el core, no acá.
type VentaRequest struct {
	VentaID              string           `json:"venta_id"`
	Total                decimal.Decimal  `json:"total"`
	DocReceptor          string           `json:"doc_receptor"`
	CondicionIVAReceptor string           `json:"condicion_iva_receptor"`
	TipoManual           int              `json:"tipo_manual,omitempty"` // 0 = automático
	AplicarDesglose77    bool             `json:"aplicar_desglose_77,omitempty"`
	Tributos             []entity.Tributo `json:"tributos,omitempty"`
}

// ToVenta convierte la petición al modelo de dominio.
func (v VentaRequest) ToVenta(empresaID string) *entity.Venta {
	return &entity.Venta{
		ID:                   v.VentaID,
		EmpresaID:            empresaID,
		Total:                v.Total,
		DocReceptor:          v.DocReceptor,
		CondicionIVAReceptor: v.CondicionIVAReceptor,
		TipoManual:           v.TipoManual,
		AplicarDesglose77:    v.AplicarDesglose77,
		Tributos:             v.Tributos,
	}
}

// LoteRequest es un lote de ventas a facturar en paralelo.
type LoteRequest struct {
	Ventas []VentaRequest `json:"ventas"`
}

// ComprobanteResponse salida de un comprobante fiscal.
type ComprobanteResponse struct {
	ID                string           `json:"id"`
	EmpresaID         string           `json:"empresa_id"`
	VentaID           string           `json:"venta_id"`
	Tipo              int              `json:"tipo"`
	TipoNombre        string           `json:"tipo_nombre"`
	PuntoVenta        int              `json:"punto_venta"`
	Numero            int64            `json:"numero,omitempty"`
	CUITEmisor        string           `json:"cuit_emisor"`
	TipoDocReceptor   int              `json:"tipo_doc_receptor"`
	NroDocReceptor    string           `json:"nro_doc_receptor"`
	ImporteTotal      decimal.Decimal  `json:"importe_total"`
	ImporteNeto       decimal.Decimal  `json:"importe_neto"`
	ImporteIVA        decimal.Decimal  `json:"importe_iva"`
	Tributos          []entity.Tributo `json:"tributos,omitempty"`
	AplicarDesglose77 bool             `json:"aplicar_desglose_77,omitempty"`
	Estado            string           `json:"estado"`
	CAE               string           `json:"cae,omitempty"`
	VencimientoCAE    *time.Time       `json:"vencimiento_cae,omitempty"`
	QRURL             string           `json:"qr_url,omitempty"`
	Errores           string           `json:"errores,omitempty"`
	CreatedAt         time.Time        `json:"created_at"`
}

// ResultadoVentaResponse desenlace de una venta dentro de un lote.
type ResultadoVentaResponse struct {
	VentaID     string               `json:"venta_id"`
	Comprobante *ComprobanteResponse `json:"comprobante,omitempty"`
	Error       string               `json:"error,omitempty"`
}

// LoteResponse resumen de un lote procesado.
type LoteResponse struct {
	Total        int                      `json:"total"`
	Exitosos     int                      `json:"exitosos"`
	Rechazados   int                      `json:"rechazados"`
	Transitorios int                      `json:"transitorios"`
	Fallidos     int                      `json:"fallidos"`
	Resultados   []ResultadoVentaResponse `json:"resultados"`
}

// ListaComprobantesResponse listado paginado de comprobantes.
type ListaComprobantesResponse struct {
	Comprobantes []ComprobanteResponse `json:"comprobantes"`
	Limit        int                   `json:"limit"`
	Offset       int                   `json:"offset"`
}
