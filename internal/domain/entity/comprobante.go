package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados del comprobante frente al microservicio de facturación AFIP.
const (
	EstadoPendiente        = "PENDIENTE"         // Guardado, aún sin enviar
	EstadoExitoso          = "EXITOSO"           // CAE asignado por AFIP
	EstadoRechazado        = "RECHAZADO"         // Rechazo de negocio (AFIP o microservicio)
	EstadoErrorTransitorio = "ERROR_TRANSITORIO" // Falla de infraestructura; reintentable
)

// Tributo es un impuesto adicional al desglose neto/IVA (percepciones,
// impuestos internos). Para ID 99 ("Otros") la descripción es obligatoria.
type Tributo struct {
	ID            int             `json:"id"`
	Descripcion   string          `json:"descripcion,omitempty"`
	BaseImponible decimal.Decimal `json:"base_imponible"`
	Alicuota      decimal.Decimal `json:"alicuota"`
	Importe       decimal.Decimal `json:"importe"`
}

// Comprobante representa el documento fiscal resultante de facturar una venta.
// El core solo escribe acá el resultado; las credenciales nunca se persisten
// junto al comprobante.
type Comprobante struct {
	ID                string
	EmpresaID         string
	VentaID           string
	Tipo              int // afip.TipoFacturaA/B/C
	PuntoVenta        int
	Numero            int64  // número asignado por AFIP (0 hasta autorizar)
	CUITEmisor        string
	TipoDocReceptor   int
	NroDocReceptor    string
	ImporteTotal      decimal.Decimal
	ImporteNeto       decimal.Decimal
	ImporteIVA        decimal.Decimal
	Tributos          []Tributo
	AplicarDesglose77 bool
	Estado            string
	CAE               string     // código de autorización electrónica
	VencimientoCAE    *time.Time
	QRURL             string // URL de verificación devuelta por el microservicio
	Errores           string // detalle del rechazo o del error transitorio
	CreatedAt         time.Time
	UpdatedAt         time.Time
}
