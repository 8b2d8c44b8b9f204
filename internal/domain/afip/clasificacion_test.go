package afip_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tu-usuario/facturador-afip/internal/domain"
	domafip "github.com/tu-usuario/facturador-afip/internal/domain/afip"
	pkgafip "github.com/tu-usuario/facturador-afip/pkg/afip"
)

func d(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

func TestClasificar_RIaRI(t *testing.T) {
	c, err := domafip.Clasificar(pkgafip.ResponsableInscripto, pkgafip.ResponsableInscripto, d("1210.00"))
	require.NoError(t, err)

	assert.Equal(t, pkgafip.TipoFacturaA, c.Tipo)
	assert.True(t, c.Neto.Equal(d("1000.00")), "neto = %s", c.Neto)
	assert.True(t, c.IVA.Equal(d("210.00")), "iva = %s", c.IVA)
}

func TestClasificar_RIaOtros(t *testing.T) {
	for _, receptor := range []pkgafip.CondicionIVA{
		pkgafip.ConsumidorFinal, pkgafip.Monotributo, pkgafip.Exento, pkgafip.NoCategorizado,
	} {
		c, err := domafip.Clasificar(pkgafip.ResponsableInscripto, receptor, d("121.00"))
		require.NoError(t, err)
		assert.Equal(t, pkgafip.TipoFacturaB, c.Tipo, "receptor %s", receptor)
	}
}

// neto + IVA debe cerrar contra el total dentro de 0.01 para cualquier total,
// incluso cuando total/1.21 no es exacto en dos decimales.
func TestClasificar_NetoMasIVACierra(t *testing.T) {
	for _, total := range []string{"0.01", "1.00", "99.99", "123.45", "1210.00", "999999.99"} {
		c, err := domafip.Clasificar(pkgafip.ResponsableInscripto, pkgafip.ResponsableInscripto, d(total))
		require.NoError(t, err, "total %s", total)

		delta := d(total).Sub(c.Neto.Add(c.IVA)).Abs()
		assert.True(t, delta.LessThanOrEqual(d("0.01")), "total %s: neto %s + iva %s, delta %s",
			total, c.Neto, c.IVA, delta)
	}
}

func TestClasificar_MonotributoYExento(t *testing.T) {
	for _, emisor := range []pkgafip.CondicionIVA{pkgafip.Monotributo, pkgafip.Exento} {
		c, err := domafip.Clasificar(emisor, pkgafip.ConsumidorFinal, d("500.00"))
		require.NoError(t, err)

		assert.Equal(t, pkgafip.TipoFacturaC, c.Tipo)
		assert.True(t, c.Neto.Equal(d("500.00")))
		assert.True(t, c.IVA.IsZero())
	}
}

func TestClasificar_EmisorNoSoportado(t *testing.T) {
	for _, emisor := range []pkgafip.CondicionIVA{
		pkgafip.ConsumidorFinal, pkgafip.NoCategorizado,
	} {
		_, err := domafip.Clasificar(emisor, pkgafip.ConsumidorFinal, d("100.00"))
		assert.ErrorIs(t, err, domain.ErrCondicionEmisorNoSoportada, "emisor %s", emisor)
	}
}

func TestClasificar_TotalNoPositivo(t *testing.T) {
	_, err := domafip.Clasificar(pkgafip.ResponsableInscripto, pkgafip.ResponsableInscripto, d("0"))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = domafip.Clasificar(pkgafip.ResponsableInscripto, pkgafip.ResponsableInscripto, d("-10.00"))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// ── AplicarTipoManual ─────────────────────────────────────────────────────────

func receptorRI() pkgafip.IdentidadReceptor {
	return pkgafip.ResolverIdentidadReceptor("20123456786", pkgafip.ResponsableInscripto)
}

func receptorDegradado() pkgafip.IdentidadReceptor {
	return pkgafip.ResolverIdentidadReceptor("", pkgafip.ConsumidorFinal)
}

func TestAplicarTipoManual_AConReceptorDegradado(t *testing.T) {
	c, _ := domafip.Clasificar(pkgafip.ResponsableInscripto, pkgafip.ConsumidorFinal, d("121.00"))

	_, _, err := domafip.AplicarTipoManual(c, pkgafip.TipoFacturaA, pkgafip.ResponsableInscripto, receptorDegradado())
	assert.ErrorIs(t, err, domain.ErrReceptorIncompatibleConA)

	// La regla aplica antes que la validación del emisor: también falla con
	// emisor monotributo, y con el mismo error.
	_, _, err = domafip.AplicarTipoManual(c, pkgafip.TipoFacturaA, pkgafip.Monotributo, receptorDegradado())
	assert.ErrorIs(t, err, domain.ErrReceptorIncompatibleConA)
}

func TestAplicarTipoManual_AExigeEmisorRI(t *testing.T) {
	c, _ := domafip.Clasificar(pkgafip.Monotributo, pkgafip.ResponsableInscripto, d("121.00"))

	_, _, err := domafip.AplicarTipoManual(c, pkgafip.TipoFacturaA, pkgafip.Monotributo, receptorRI())
	assert.ErrorIs(t, err, domain.ErrTipoManualInvalido)

	_, _, err = domafip.AplicarTipoManual(c, pkgafip.TipoFacturaB, pkgafip.Exento, receptorRI())
	assert.ErrorIs(t, err, domain.ErrTipoManualInvalido)
}

func TestAplicarTipoManual_ADegradaAB(t *testing.T) {
	receptor := pkgafip.ResolverIdentidadReceptor("12345678", pkgafip.ConsumidorFinal)
	c, _ := domafip.Clasificar(pkgafip.ResponsableInscripto, pkgafip.ConsumidorFinal, d("121.00"))

	final, degradado, err := domafip.AplicarTipoManual(c, pkgafip.TipoFacturaA, pkgafip.ResponsableInscripto, receptor)
	require.NoError(t, err)

	assert.True(t, degradado, "el pedido de A con receptor no-RI degrada a B sin error")
	assert.Equal(t, pkgafip.TipoFacturaB, final.Tipo)
	// Los montos del cómputo automático se conservan.
	assert.True(t, final.Neto.Equal(c.Neto))
	assert.True(t, final.IVA.Equal(c.IVA))
}

func TestAplicarTipoManual_AValido(t *testing.T) {
	c, _ := domafip.Clasificar(pkgafip.ResponsableInscripto, pkgafip.ResponsableInscripto, d("1210.00"))

	final, degradado, err := domafip.AplicarTipoManual(c, pkgafip.TipoFacturaA, pkgafip.ResponsableInscripto, receptorRI())
	require.NoError(t, err)
	assert.False(t, degradado)
	assert.Equal(t, pkgafip.TipoFacturaA, final.Tipo)
}

func TestAplicarTipoManual_CSiemprePermitida(t *testing.T) {
	c, _ := domafip.Clasificar(pkgafip.ResponsableInscripto, pkgafip.ResponsableInscripto, d("1210.00"))

	final, degradado, err := domafip.AplicarTipoManual(c, pkgafip.TipoFacturaC, pkgafip.ResponsableInscripto, receptorRI())
	require.NoError(t, err)
	assert.False(t, degradado)
	assert.Equal(t, pkgafip.TipoFacturaC, final.Tipo)
	assert.True(t, final.Neto.Equal(c.Neto), "los montos automáticos se conservan")
}

func TestAplicarTipoManual_CodigoDesconocido(t *testing.T) {
	c, _ := domafip.Clasificar(pkgafip.ResponsableInscripto, pkgafip.ResponsableInscripto, d("121.00"))

	for _, pedido := range []int{0, 2, 3, 12, 99} {
		_, _, err := domafip.AplicarTipoManual(c, pedido, pkgafip.ResponsableInscripto, receptorRI())
		assert.ErrorIs(t, err, domain.ErrTipoManualInvalido, "código %d", pedido)
	}
}
