package afip

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tu-usuario/facturador-afip/internal/domain/entity"
	"github.com/tu-usuario/facturador-afip/pkg/logger"
)

// Credenciales es el bloque de credenciales del request de emisión.
type Credenciales struct {
	CUIT         string `json:"cuit"`
	Certificado  string `json:"certificado"`
	ClavePrivada string `json:"clave_privada"`
}

// DatosFactura es el bloque de datos del comprobante a autorizar.
type DatosFactura struct {
	TipoComprobante   int              `json:"tipo_comprobante"`
	PuntoVenta        int              `json:"punto_venta"`
	CUITEmisor        string           `json:"cuit_emisor"`
	TipoDocReceptor   int              `json:"tipo_doc_receptor"`
	NroDocReceptor    string           `json:"nro_doc_receptor"`
	ImporteTotal      decimal.Decimal  `json:"importe_total"`
	ImporteNeto       decimal.Decimal  `json:"importe_neto"`
	ImporteIVA        decimal.Decimal  `json:"importe_iva"`
	Tributos          []entity.Tributo `json:"tributos,omitempty"`
	AplicarDesglose77 bool             `json:"aplicar_desglose_77"`
}

// requestEmision es el envelope completo que espera el microservicio.
type requestEmision struct {
	Credenciales Credenciales `json:"credenciales"`
	DatosFactura DatosFactura `json:"datos_factura"`
}

// respuestaEmision es el JSON de éxito del microservicio.
type respuestaEmision struct {
	CAE               string `json:"cae"`
	VencimientoCAE    string `json:"vencimiento_cae"` // YYYY-MM-DD
	NumeroComprobante int64  `json:"numero_comprobante"`
	QRURLAfip         string `json:"qr_url_afip"`
}

// ResultadoEmision es el resultado clasificado de un intento de emisión.
// Estado usa los estados del comprobante: EXITOSO, RECHAZADO o
// ERROR_TRANSITORIO (reintentable por el orquestador de lote).
type ResultadoEmision struct {
	Estado            string
	CAE               string
	VencimientoCAE    *time.Time
	NumeroComprobante int64
	QRURL             string
	Detalle           string // rechazo o error transitorio: causa legible
}

// Emisor es el puerto de salida hacia el microservicio de facturación.
// La implementación concreta usa HTTP; para tests se inyecta un mock.
type Emisor interface {
	// Emitir hace un único POST de emisión, sin reintentos internos.
	Emitir(ctx context.Context, cred Credenciales, datos DatosFactura) (*ResultadoEmision, error)
}

// ClienteMicroservicio implementa Emisor contra el microservicio HTTP de
// facturación AFIP. Un solo POST por emisión con timeout acotado; la política
// de reintento vive en el caller.
type ClienteMicroservicio struct {
	baseURL    string
	httpClient *http.Client
	log        *logger.Logger
}

// NewClienteMicroservicio construye el cliente. timeout <= 0 usa 30 s.
func NewClienteMicroservicio(baseURL string, timeout time.Duration, log *logger.Logger) *ClienteMicroservicio {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &ClienteMicroservicio{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		log:        log,
	}
}

// Emitir envía el comprobante y clasifica la respuesta. El error de retorno es
// solo para fallas de programación (serialización, request inválido); las
// fallas del servicio remoto vuelven clasificadas dentro del resultado.
func (c *ClienteMicroservicio) Emitir(ctx context.Context, cred Credenciales, datos DatosFactura) (*ResultadoEmision, error) {
	payload, err := json.Marshal(requestEmision{Credenciales: cred, DatosFactura: datos})
	if err != nil {
		return nil, fmt.Errorf("afip: serializar request de emisión: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/facturar",
		bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("afip: crear request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		estado, detalle := ClasificarErrorRed(err)
		c.log.Warn().Err(err).Str("estado", estado).Msg("emisión sin respuesta del microservicio")
		return &ResultadoEmision{Estado: estado, Detalle: detalle}, nil
	}
	defer resp.Body.Close()

	rawBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20)) // max 1 MB
	if err != nil {
		estado, detalle := ClasificarErrorRed(err)
		return &ResultadoEmision{Estado: estado, Detalle: detalle}, nil
	}

	var parsed respuestaEmision
	_ = json.Unmarshal(rawBody, &parsed) // cuerpo no-JSON: se clasifica por marcadores

	estado, detalle := ClasificarRespuesta(resp.StatusCode, rawBody, parsed.CAE != "")
	resultado := &ResultadoEmision{Estado: estado, Detalle: detalle}

	if estado == entity.EstadoExitoso {
		resultado.CAE = parsed.CAE
		resultado.NumeroComprobante = parsed.NumeroComprobante
		resultado.QRURL = parsed.QRURLAfip
		if parsed.VencimientoCAE != "" {
			if venc, err := time.Parse("2006-01-02", parsed.VencimientoCAE); err == nil {
				resultado.VencimientoCAE = &venc
			} else {
				c.log.Warn().Str("vencimiento_cae", parsed.VencimientoCAE).
					Msg("vencimiento de CAE con formato inesperado, se ignora")
			}
		}
	}

	return resultado, nil
}
