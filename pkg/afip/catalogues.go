// Package afip contiene catálogos y validaciones de facturación electrónica
// AFIP (Argentina): condiciones frente al IVA, tipos de comprobante y tipos
// de documento del receptor, según las tablas del WSFEv1.
package afip

import "strings"

// =============================================================================
// Condición frente al IVA (emisor y receptor)
// =============================================================================

// CondicionIVA condición del contribuyente frente al IVA.
type CondicionIVA string

const (
	ResponsableInscripto CondicionIVA = "RESPONSABLE_INSCRIPTO"
	Exento               CondicionIVA = "EXENTO"
	ConsumidorFinal      CondicionIVA = "CONSUMIDOR_FINAL"
	Monotributo          CondicionIVA = "MONOTRIBUTO"
	NoCategorizado       CondicionIVA = "NO_CATEGORIZADO"
)

// ParseCondicionIVA normaliza el texto libre de la condición IVA a uno de los
// valores del catálogo. Acepta variantes comunes ("RI", "Responsable Inscripto",
// "monotributista"). Si no reconoce el valor devuelve NoCategorizado.
func ParseCondicionIVA(s string) CondicionIVA {
	normalized := strings.ToUpper(strings.TrimSpace(s))
	normalized = strings.ReplaceAll(normalized, " ", "_")
	switch normalized {
	case "RESPONSABLE_INSCRIPTO", "RI":
		return ResponsableInscripto
	case "EXENTO", "IVA_EXENTO":
		return Exento
	case "CONSUMIDOR_FINAL", "CF":
		return ConsumidorFinal
	case "MONOTRIBUTO", "MONOTRIBUTISTA", "RESPONSABLE_MONOTRIBUTO":
		return Monotributo
	default:
		return NoCategorizado
	}
}

// =============================================================================
// Tipos de comprobante (tabla de comprobantes WSFEv1)
// =============================================================================

const (
	TipoFacturaA = 1  // Factura A: RI a RI
	TipoFacturaB = 6  // Factura B: RI a no-RI
	TipoFacturaC = 11 // Factura C: emisor monotributo o exento
)

// NombreTipoComprobante devuelve el nombre legible del tipo de comprobante.
func NombreTipoComprobante(tipo int) string {
	switch tipo {
	case TipoFacturaA:
		return "Factura A"
	case TipoFacturaB:
		return "Factura B"
	case TipoFacturaC:
		return "Factura C"
	default:
		return "Comprobante desconocido"
	}
}

// TipoComprobanteValido indica si el código pertenece al catálogo soportado.
func TipoComprobanteValido(tipo int) bool {
	return tipo == TipoFacturaA || tipo == TipoFacturaB || tipo == TipoFacturaC
}

// =============================================================================
// Tipos de documento del receptor (tabla de tipos de documento WSFEv1)
// =============================================================================

const (
	TipoDocCUIT            = 80 // CUIT (11 dígitos con dígito verificador)
	TipoDocDNI             = 96 // DNI (7 u 8 dígitos)
	TipoDocSinIdentificar  = 99 // Consumidor final sin identificar
)

// =============================================================================
// Tributos
// =============================================================================

// TributoIDOtros es el código de tributo "Otros" del WSFEv1; exige descripción.
const TributoIDOtros = 99

// DescripcionImpuestoInterno descripción del tributo sintetizado por el
// desglose 77/23 de impuestos internos.
const DescripcionImpuestoInterno = "Impuesto Interno"
