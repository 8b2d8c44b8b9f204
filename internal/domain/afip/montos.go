package afip

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/tu-usuario/facturador-afip/internal/domain"
	"github.com/tu-usuario/facturador-afip/internal/domain/entity"
	pkgafip "github.com/tu-usuario/facturador-afip/pkg/afip"
)

var (
	// factorImpInterno es la porción del total que se lleva el impuesto interno
	// en el desglose 77/23.
	factorImpInterno = decimal.NewFromFloat(0.77)
	alicuotaDesglose = decimal.NewFromFloat(77.0)

	// toleranciaTributo es la desviación máxima admitida entre el importe
	// declarado de un tributo y el recalculado (base * alícuota / 100).
	toleranciaTributo = decimal.NewFromFloat(0.01)

	cien = decimal.NewFromInt(100)
)

// Desglose es el resultado final de la reconciliación de montos de una venta.
// Invariante: Neto + IVA + TotalTributos == Total dentro de la tolerancia.
type Desglose struct {
	Total         decimal.Decimal
	Neto          decimal.Decimal
	IVA           decimal.Decimal
	Tributos      []entity.Tributo
	TotalTributos decimal.Decimal
}

// Desglose77 aplica el desglose especial 77/23 de impuestos internos:
// el 77% del total es impuesto interno, y sobre el 23% restante se aplica el
// desglose neto/IVA estándar. El residuo de redondeo se absorbe íntegro en el
// IVA para que neto + IVA + impuesto interno == total sea exacto.
func Desglose77(total decimal.Decimal) (neto, iva decimal.Decimal, tributo entity.Tributo) {
	impInterno := total.Mul(factorImpInterno).Round(2)
	restante := total.Sub(impInterno).Round(2)
	neto = restante.Div(tasaIVA).Round(2)
	iva = total.Sub(impInterno).Sub(neto) // residuo al IVA: la suma cierra exacta

	tributo = entity.Tributo{
		ID:            pkgafip.TributoIDOtros,
		Descripcion:   pkgafip.DescripcionImpuestoInterno,
		BaseImponible: total,
		Alicuota:      alicuotaDesglose,
		Importe:       impInterno,
	}
	return neto, iva, tributo
}

// ValidarTributos recalcula y valida cada tributo declarado:
//
//   - importe autoritativo = round(base * alícuota / 100, 2); si el declarado
//     difiere en más de 0.01 es error, si difiere en 0.01 o menos se corrige
//     en silencio al valor calculado.
//   - base imponible negativa es error.
//   - tributo 99 ("Otros") sin descripción es error.
//
// Devuelve los tributos validados (con importes corregidos) y su suma.
func ValidarTributos(tributos []entity.Tributo) ([]entity.Tributo, decimal.Decimal, error) {
	validados := make([]entity.Tributo, 0, len(tributos))
	suma := decimal.Zero

	for i, t := range tributos {
		if t.BaseImponible.IsNegative() {
			return nil, decimal.Zero, fmt.Errorf("%w: tributo %d (id %d) con base imponible negativa %s",
				domain.ErrTributoInvalido, i, t.ID, t.BaseImponible)
		}
		if t.ID == pkgafip.TributoIDOtros && t.Descripcion == "" {
			return nil, decimal.Zero, fmt.Errorf("%w: tributo %d con id 99 requiere descripción",
				domain.ErrTributoInvalido, i)
		}

		calculado := t.BaseImponible.Mul(t.Alicuota).Div(cien).Round(2)
		if t.Importe.Sub(calculado).Abs().GreaterThan(toleranciaTributo) {
			return nil, decimal.Zero, fmt.Errorf("%w: tributo %d (id %d): importe declarado %s, calculado %s",
				domain.ErrTributoInvalido, i, t.ID, t.Importe, calculado)
		}
		// El valor calculado es el autoritativo, no el declarado.
		t.Importe = calculado

		validados = append(validados, t)
		suma = suma.Add(calculado)
	}
	return validados, suma, nil
}

// ReconciliarMontos produce el desglose final de la venta y verifica que cierre
// contra el total declarado.
//
// Con aplicarDesglose77 el neto/IVA clasificado se reemplaza por el desglose
// 77/23 y se sintetiza el tributo de impuesto interno delante de los tributos
// declarados. La tolerancia del cierre es 0.01 * (1 + cantidad de tributos).
func ReconciliarMontos(
	clasif Clasificacion,
	total decimal.Decimal,
	aplicarDesglose77 bool,
	declarados []entity.Tributo,
) (Desglose, error) {
	tributos, sumaTributos, err := ValidarTributos(declarados)
	if err != nil {
		return Desglose{}, err
	}

	neto, iva := clasif.Neto, clasif.IVA
	if aplicarDesglose77 {
		var impInterno entity.Tributo
		neto, iva, impInterno = Desglose77(total)
		tributos = append([]entity.Tributo{impInterno}, tributos...)
		sumaTributos = sumaTributos.Add(impInterno.Importe)
	}

	tolerancia := toleranciaTributo.Mul(decimal.NewFromInt(int64(1 + len(tributos))))
	delta := total.Sub(neto.Add(iva).Add(sumaTributos))
	if delta.Abs().GreaterThan(tolerancia) {
		return Desglose{}, fmt.Errorf("%w: total declarado %s, calculado %s (neto %s + IVA %s + tributos %s), delta %s",
			domain.ErrMontosInconsistentes,
			total, neto.Add(iva).Add(sumaTributos), neto, iva, sumaTributos, delta)
	}

	return Desglose{
		Total:         total,
		Neto:          neto,
		IVA:           iva,
		Tributos:      tributos,
		TotalTributos: sumaTributos,
	}, nil
}
