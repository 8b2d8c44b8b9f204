package afip_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tu-usuario/facturador-afip/internal/domain"
	domafip "github.com/tu-usuario/facturador-afip/internal/domain/afip"
	"github.com/tu-usuario/facturador-afip/internal/domain/entity"
	pkgafip "github.com/tu-usuario/facturador-afip/pkg/afip"
)

// ── Desglose77 ────────────────────────────────────────────────────────────────

// Vector del caso de referencia: total 100.00 -> impuesto interno 77.00,
// restante 23.00, neto 19.01, IVA 3.99. La suma cierra exacta.
func TestDesglose77_VectorReferencia(t *testing.T) {
	neto, iva, tributo := domafip.Desglose77(d("100.00"))

	assert.True(t, neto.Equal(d("19.01")), "neto = %s", neto)
	assert.True(t, iva.Equal(d("3.99")), "iva = %s", iva)
	assert.True(t, tributo.Importe.Equal(d("77.00")))
	assert.Equal(t, pkgafip.TributoIDOtros, tributo.ID)
	assert.Equal(t, pkgafip.DescripcionImpuestoInterno, tributo.Descripcion)
	assert.True(t, tributo.BaseImponible.Equal(d("100.00")))
	assert.True(t, tributo.Alicuota.Equal(d("77")))
}

// El residuo de redondeo se absorbe en el IVA: para cualquier total la suma
// neto + IVA + impuesto interno debe ser exactamente el total, sin tolerancia.
func TestDesglose77_SumaExactaSiempre(t *testing.T) {
	for _, total := range []string{"0.01", "0.03", "1.00", "99.99", "100.00", "123.45", "777.77", "54321.09"} {
		neto, iva, tributo := domafip.Desglose77(d(total))

		suma := neto.Add(iva).Add(tributo.Importe)
		assert.True(t, suma.Equal(d(total)), "total %s: neto %s + iva %s + interno %s = %s",
			total, neto, iva, tributo.Importe, suma)
		assert.True(t, tributo.Importe.Equal(d(total).Mul(d("0.77")).Round(2)))
	}
}

// ── ValidarTributos ───────────────────────────────────────────────────────────

func tributoPercepcion(importe string) entity.Tributo {
	return entity.Tributo{
		ID:            1,
		Descripcion:   "Percepción IIBB",
		BaseImponible: d("1000.00"),
		Alicuota:      d("3.5"),
		Importe:       d(importe), // calculado: 35.00
	}
}

func TestValidarTributos_ImporteCalculadoEsAutoritativo(t *testing.T) {
	// Declarado con desviación <= 0.01: se corrige en silencio al calculado.
	validados, suma, err := domafip.ValidarTributos([]entity.Tributo{tributoPercepcion("35.01")})
	require.NoError(t, err)

	assert.True(t, validados[0].Importe.Equal(d("35.00")), "importe corregido = %s", validados[0].Importe)
	assert.True(t, suma.Equal(d("35.00")))
}

func TestValidarTributos_DesviacionExcesiva(t *testing.T) {
	_, _, err := domafip.ValidarTributos([]entity.Tributo{tributoPercepcion("35.02")})
	assert.ErrorIs(t, err, domain.ErrTributoInvalido)

	_, _, err = domafip.ValidarTributos([]entity.Tributo{tributoPercepcion("30.00")})
	assert.ErrorIs(t, err, domain.ErrTributoInvalido)
}

func TestValidarTributos_Tributo99SinDescripcion(t *testing.T) {
	_, _, err := domafip.ValidarTributos([]entity.Tributo{{
		ID:            99,
		BaseImponible: d("100.00"),
		Alicuota:      d("10"),
		Importe:       d("10.00"),
	}})
	assert.ErrorIs(t, err, domain.ErrTributoInvalido)
}

func TestValidarTributos_Tributo99ConDescripcion(t *testing.T) {
	validados, _, err := domafip.ValidarTributos([]entity.Tributo{{
		ID:            99,
		Descripcion:   "Tasa municipal",
		BaseImponible: d("100.00"),
		Alicuota:      d("10"),
		Importe:       d("10.00"),
	}})
	require.NoError(t, err)
	assert.Len(t, validados, 1)
}

func TestValidarTributos_BaseNegativa(t *testing.T) {
	_, _, err := domafip.ValidarTributos([]entity.Tributo{{
		ID:            1,
		BaseImponible: d("-1.00"),
		Alicuota:      d("10"),
		Importe:       d("-0.10"),
	}})
	assert.ErrorIs(t, err, domain.ErrTributoInvalido)
}

func TestValidarTributos_Vacio(t *testing.T) {
	validados, suma, err := domafip.ValidarTributos(nil)
	require.NoError(t, err)
	assert.Empty(t, validados)
	assert.True(t, suma.IsZero())
}

// ── ReconciliarMontos ─────────────────────────────────────────────────────────

func TestReconciliarMontos_EstandarSinTributos(t *testing.T) {
	clasif, err := domafip.Clasificar(pkgafip.ResponsableInscripto, pkgafip.ResponsableInscripto, d("1210.00"))
	require.NoError(t, err)

	desglose, err := domafip.ReconciliarMontos(clasif, d("1210.00"), false, nil)
	require.NoError(t, err)

	assert.True(t, desglose.Neto.Equal(d("1000.00")))
	assert.True(t, desglose.IVA.Equal(d("210.00")))
	assert.Empty(t, desglose.Tributos)
	assert.True(t, desglose.TotalTributos.IsZero())
}

func TestReconciliarMontos_ConDesglose77(t *testing.T) {
	clasif, err := domafip.Clasificar(pkgafip.ResponsableInscripto, pkgafip.ConsumidorFinal, d("100.00"))
	require.NoError(t, err)

	desglose, err := domafip.ReconciliarMontos(clasif, d("100.00"), true, nil)
	require.NoError(t, err)

	assert.True(t, desglose.Neto.Equal(d("19.01")))
	assert.True(t, desglose.IVA.Equal(d("3.99")))
	require.Len(t, desglose.Tributos, 1)
	assert.Equal(t, pkgafip.TributoIDOtros, desglose.Tributos[0].ID)
	assert.True(t, desglose.Tributos[0].Importe.Equal(d("77.00")))
	assert.True(t, desglose.Total.Equal(desglose.Neto.Add(desglose.IVA).Add(desglose.TotalTributos)))
}

func TestReconciliarMontos_TributosDeclarados(t *testing.T) {
	// Total = neto 1000 + IVA 210 + percepción 35 = 1245.00
	clasif, err := domafip.Clasificar(pkgafip.ResponsableInscripto, pkgafip.ResponsableInscripto, d("1210.00"))
	require.NoError(t, err)

	desglose, err := domafip.ReconciliarMontos(clasif, d("1245.00"), false,
		[]entity.Tributo{tributoPercepcion("35.00")})
	require.NoError(t, err)

	require.Len(t, desglose.Tributos, 1)
	assert.True(t, desglose.TotalTributos.Equal(d("35.00")))
}

func TestReconciliarMontos_TotalNoCierra(t *testing.T) {
	clasif, err := domafip.Clasificar(pkgafip.ResponsableInscripto, pkgafip.ResponsableInscripto, d("1210.00"))
	require.NoError(t, err)

	// El total declarado difiere en 10 del desglose computado.
	_, err = domafip.ReconciliarMontos(clasif, d("1220.00"), false, nil)
	require.ErrorIs(t, err, domain.ErrMontosInconsistentes)
	// El error lleva los valores computados y el delta para diagnóstico.
	assert.Contains(t, err.Error(), "1220")
	assert.Contains(t, err.Error(), "1210")
}

// La tolerancia del cierre escala con la cantidad de tributos:
// 0.01 * (1 + n). Con un tributo, un delta de 0.02 todavía cierra.
func TestReconciliarMontos_ToleranciaEscalaConTributos(t *testing.T) {
	clasif, err := domafip.Clasificar(pkgafip.ResponsableInscripto, pkgafip.ResponsableInscripto, d("1210.00"))
	require.NoError(t, err)

	_, err = domafip.ReconciliarMontos(clasif, d("1245.02"), false,
		[]entity.Tributo{tributoPercepcion("35.00")})
	assert.NoError(t, err, "delta 0.02 con un tributo está dentro de tolerancia")

	_, err = domafip.ReconciliarMontos(clasif, d("1245.03"), false,
		[]entity.Tributo{tributoPercepcion("35.00")})
	assert.ErrorIs(t, err, domain.ErrMontosInconsistentes, "delta 0.03 con un tributo excede la tolerancia")
}

func TestReconciliarMontos_TributoInvalidoCortaLaReconciliacion(t *testing.T) {
	clasif, err := domafip.Clasificar(pkgafip.ResponsableInscripto, pkgafip.ResponsableInscripto, d("1210.00"))
	require.NoError(t, err)

	_, err = domafip.ReconciliarMontos(clasif, d("1245.00"), false,
		[]entity.Tributo{tributoPercepcion("40.00")})
	assert.ErrorIs(t, err, domain.ErrTributoInvalido)
}
