// Package afip contiene la lógica de dominio de facturación AFIP: mapeo de
// condiciones IVA a tipo de comprobante y reconciliación de montos.
// Es puro: sin I/O, sin estado compartido; toda la aritmética es decimal.
package afip

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/tu-usuario/facturador-afip/internal/domain"
	pkgafip "github.com/tu-usuario/facturador-afip/pkg/afip"
)

// tasaIVA es la alícuota general del IVA (21%) como divisor: total = neto * 1.21.
var tasaIVA = decimal.NewFromFloat(1.21)

// Clasificacion es el resultado del mapeo (emisor, receptor) -> tipo + desglose base.
type Clasificacion struct {
	Tipo int // pkgafip.TipoFacturaA/B/C
	Neto decimal.Decimal
	IVA  decimal.Decimal
}

// Clasificar determina el tipo de comprobante y el desglose neto/IVA estándar
// según la condición IVA del emisor y del receptor:
//
//   - emisor RI: neto = total/1.21, IVA = total - neto; A si el receptor
//     también es RI, B en cualquier otro caso.
//   - emisor monotributo o exento: Factura C, neto = total, IVA = 0.
//   - cualquier otra condición de emisor no está soportada.
func Clasificar(emisor, receptor pkgafip.CondicionIVA, total decimal.Decimal) (Clasificacion, error) {
	if total.LessThanOrEqual(decimal.Zero) {
		return Clasificacion{}, fmt.Errorf("%w: el total debe ser mayor que cero, recibido %s", domain.ErrInvalidInput, total)
	}

	switch emisor {
	case pkgafip.ResponsableInscripto:
		neto := total.Div(tasaIVA).Round(2)
		iva := total.Sub(neto).Round(2)
		tipo := pkgafip.TipoFacturaB
		if receptor == pkgafip.ResponsableInscripto {
			tipo = pkgafip.TipoFacturaA
		}
		return Clasificacion{Tipo: tipo, Neto: neto, IVA: iva}, nil

	case pkgafip.Monotributo, pkgafip.Exento:
		return Clasificacion{Tipo: pkgafip.TipoFacturaC, Neto: total, IVA: decimal.Zero}, nil

	default:
		return Clasificacion{}, fmt.Errorf("%w: %s", domain.ErrCondicionEmisorNoSoportada, emisor)
	}
}

// AplicarTipoManual valida un tipo de comprobante pedido manualmente contra la
// clasificación automática. Los montos neto/IVA computados se conservan siempre;
// el override solo puede cambiar el tipo.
//
// Reglas, en orden:
//
//  1. A con receptor degradado (sin documento válido) falla, sin importar el emisor.
//  2. A o B exigen emisor RI.
//  3. A con receptor no-RI se degrada en silencio a B (el caller debe loguearlo:
//     degradado=true). No es un error.
//  4. C se acepta siempre.
//  5. Cualquier otro código es inválido.
func AplicarTipoManual(
	computada Clasificacion,
	pedido int,
	emisor pkgafip.CondicionIVA,
	receptor pkgafip.IdentidadReceptor,
) (final Clasificacion, degradado bool, err error) {
	// Regla 1: se evalúa antes que cualquier otra validación del override.
	if pedido == pkgafip.TipoFacturaA && receptor.Degradado {
		return Clasificacion{}, false, domain.ErrReceptorIncompatibleConA
	}

	switch pedido {
	case pkgafip.TipoFacturaA, pkgafip.TipoFacturaB:
		if emisor != pkgafip.ResponsableInscripto {
			return Clasificacion{}, false, fmt.Errorf("%w: %s exige emisor responsable inscripto",
				domain.ErrTipoManualInvalido, pkgafip.NombreTipoComprobante(pedido))
		}
		if pedido == pkgafip.TipoFacturaA && receptor.CondicionIVA != pkgafip.ResponsableInscripto {
			computada.Tipo = pkgafip.TipoFacturaB
			return computada, true, nil
		}
		computada.Tipo = pedido
		return computada, false, nil

	case pkgafip.TipoFacturaC:
		computada.Tipo = pkgafip.TipoFacturaC
		return computada, false, nil

	default:
		return Clasificacion{}, false, fmt.Errorf("%w: código %d desconocido", domain.ErrTipoManualInvalido, pedido)
	}
}
