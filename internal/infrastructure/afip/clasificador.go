package afip

import (
	"fmt"
	"strings"

	"github.com/tu-usuario/facturador-afip/internal/domain/entity"
)

// Clasificación de respuestas del microservicio de facturación en éxito,
// rechazo de negocio o error transitorio. Es una lista priorizada de reglas
// sobre el cuerpo/estado HTTP, separada del transporte para poder testearla
// sin red. El reintento es responsabilidad del orquestador de lote: acá solo
// se clasifica.

// marcadoresConexion son fragmentos que delatan una falla de conexión de bajo
// nivel dentro del microservicio o en el camino hacia AFIP, incluso cuando el
// HTTP devuelve 200. Se comparan en minúsculas.
var marcadoresConexion = []string{
	"connectionreseterror",
	"connection reset",
	"connection refused",
	"ssl error",
	"sslerror",
	"eof occurred",
	"unexpected eof",
	"broken pipe",
	"timed out",
	"timeout",
}

// marcadoresInicializacion identifican la firma conocida del microservicio
// cuando su cliente AFIP (WSAA) no pudo inicializar: transitorio, porque el
// ticket de acceso suele recuperarse solo.
var marcadoresInicializacion = []string{
	"error al inicializar",
	"no se pudo inicializar",
	"wsaa",
}

const maxDetalleRechazo = 512

// ClasificarRespuesta clasifica una respuesta HTTP completa del microservicio.
// conCAE indica si el JSON traía un CAE no vacío.
//
// Reglas en orden:
//  1. 2xx con CAE -> EXITOSO.
//  2. 2xx sin CAE, o cuerpo con marcador de conexión -> ERROR_TRANSITORIO
//     (un 200 sin CAE es una falla enmascarada, no un éxito).
//  3. no-2xx con firma de inicialización del cliente AFIP -> ERROR_TRANSITORIO.
//  4. no-2xx restante -> RECHAZADO con status y cuerpo truncado.
func ClasificarRespuesta(statusCode int, body []byte, conCAE bool) (estado, detalle string) {
	cuerpo := strings.ToLower(string(body))

	if statusCode >= 200 && statusCode < 300 {
		if contieneAlguno(cuerpo, marcadoresConexion) {
			return entity.EstadoErrorTransitorio,
				"respuesta 2xx con falla de conexión embebida: " + truncar(string(body), maxDetalleRechazo)
		}
		if conCAE {
			return entity.EstadoExitoso, ""
		}
		return entity.EstadoErrorTransitorio,
			"respuesta 2xx sin CAE: " + truncar(string(body), maxDetalleRechazo)
	}

	if contieneAlguno(cuerpo, marcadoresInicializacion) {
		return entity.EstadoErrorTransitorio,
			fmt.Sprintf("el microservicio no pudo inicializar su cliente AFIP (HTTP %d): %s",
				statusCode, truncar(string(body), maxDetalleRechazo))
	}

	return entity.EstadoRechazado,
		fmt.Sprintf("HTTP %d: %s", statusCode, truncar(string(body), maxDetalleRechazo))
}

// ClasificarErrorRed clasifica un error de transporte (el POST nunca obtuvo
// respuesta). Indicadores de conexión/SSL/EOF son transitorios; el resto se
// trata como rechazo envolviendo el error original.
func ClasificarErrorRed(err error) (estado, detalle string) {
	msg := strings.ToLower(err.Error())
	if contieneAlguno(msg, marcadoresConexion) || strings.Contains(msg, "eof") ||
		strings.Contains(msg, "tls") || strings.Contains(msg, "context deadline exceeded") {
		return entity.EstadoErrorTransitorio, "error de red: " + err.Error()
	}
	return entity.EstadoRechazado, "error no clasificado como transitorio: " + err.Error()
}

func contieneAlguno(s string, marcadores []string) bool {
	for _, m := range marcadores {
		if strings.Contains(s, m) {
			return true
		}
	}
	return false
}

func truncar(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
