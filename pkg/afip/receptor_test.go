package afip_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tu-usuario/facturador-afip/pkg/afip"
)

func TestResolverIdentidadReceptor_CUITValido(t *testing.T) {
	id := afip.ResolverIdentidadReceptor("20-12345678-6", afip.ResponsableInscripto)

	assert.Equal(t, afip.TipoDocCUIT, id.TipoDoc)
	assert.Equal(t, "20123456786", id.NroDoc)
	assert.Equal(t, afip.ResponsableInscripto, id.CondicionIVA)
	assert.False(t, id.Degradado)
}

// Un valor de 11 dígitos que no pasa el módulo 11 degrada al receptor a
// consumidor final con nro "0"; no se intenta rescatarlo como DNI.
func TestResolverIdentidadReceptor_CUITChecksumInvalido(t *testing.T) {
	id := afip.ResolverIdentidadReceptor("20123456789", afip.ResponsableInscripto)

	assert.Equal(t, afip.TipoDocSinIdentificar, id.TipoDoc)
	assert.Equal(t, "0", id.NroDoc)
	assert.Equal(t, afip.ConsumidorFinal, id.CondicionIVA)
	assert.True(t, id.Degradado)
}

func TestResolverIdentidadReceptor_DNI(t *testing.T) {
	for _, doc := range []string{"1234567", "12345678", "12.345.678"} {
		id := afip.ResolverIdentidadReceptor(doc, afip.ConsumidorFinal)
		assert.Equal(t, afip.TipoDocDNI, id.TipoDoc, "doc %q", doc)
		assert.False(t, id.Degradado)
	}
}

func TestResolverIdentidadReceptor_SinDocumento(t *testing.T) {
	for _, doc := range []string{"", "abc", "123", "123456789012"} {
		id := afip.ResolverIdentidadReceptor(doc, afip.Monotributo)
		assert.Equal(t, afip.TipoDocSinIdentificar, id.TipoDoc, "doc %q", doc)
		assert.Equal(t, "0", id.NroDoc)
		assert.Equal(t, afip.ConsumidorFinal, id.CondicionIVA, "la degradación pisa la condición declarada")
		assert.True(t, id.Degradado)
	}
}
