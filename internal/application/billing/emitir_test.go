package billing

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"fmt"
	"math/big"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tu-usuario/facturador-afip/internal/domain"
	"github.com/tu-usuario/facturador-afip/internal/domain/entity"
	infraafip "github.com/tu-usuario/facturador-afip/internal/infrastructure/afip"
	pkgafip "github.com/tu-usuario/facturador-afip/pkg/afip"
	"github.com/tu-usuario/facturador-afip/pkg/logger"
)

// credencialDePrueba genera un certificado autofirmado y su llave RSA.
// La llave se devuelve en PKCS#1 para ejercitar la conversión a PKCS#8.
func credencialDePrueba(t *testing.T) (certPEM, keyPEM string) {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	tmpl := &x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject:      pkix.Name{CommonName: "facturador-test"},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(time.Hour),
	}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &key.PublicKey, key)
	require.NoError(t, err)

	certPEM = string(pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der}))
	keyPEM = string(pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(key),
	}))
	return certPEM, keyPEM
}

// fakeEmisor devuelve una secuencia programada de resultados, uno por llamada.
type fakeEmisor struct {
	resultados []*infraafip.ResultadoEmision
	err        error
	llamadas   int
	ultimo     infraafip.DatosFactura
	ultimaCred infraafip.Credenciales
}

func (f *fakeEmisor) Emitir(_ context.Context, cred infraafip.Credenciales, datos infraafip.DatosFactura) (*infraafip.ResultadoEmision, error) {
	f.llamadas++
	f.ultimo = datos
	f.ultimaCred = cred
	if f.err != nil {
		return nil, f.err
	}
	i := f.llamadas - 1
	if i >= len(f.resultados) {
		i = len(f.resultados) - 1
	}
	return f.resultados[i], nil
}

// fakeComprobanteRepo captura los comprobantes persistidos. Con mutex porque
// el procesador de lote persiste desde varios workers.
type fakeComprobanteRepo struct {
	mu       sync.Mutex
	creados  []*entity.Comprobante
	errCrear error
}

func (f *fakeComprobanteRepo) Create(_ context.Context, c *entity.Comprobante) error {
	if f.errCrear != nil {
		return f.errCrear
	}
	f.mu.Lock()
	f.creados = append(f.creados, c)
	f.mu.Unlock()
	return nil
}
func (f *fakeComprobanteRepo) Update(context.Context, *entity.Comprobante) error { return nil }
func (f *fakeComprobanteRepo) GetByID(context.Context, string) (*entity.Comprobante, error) {
	return nil, nil
}
func (f *fakeComprobanteRepo) ListByEmpresa(context.Context, string, int, int) ([]*entity.Comprobante, error) {
	return nil, nil
}
func (f *fakeComprobanteRepo) ListByEstado(context.Context, string, string, int, int) ([]*entity.Comprobante, error) {
	return nil, nil
}

func resultadoExitoso(cae string) *infraafip.ResultadoEmision {
	venc := time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC)
	return &infraafip.ResultadoEmision{
		Estado:            entity.EstadoExitoso,
		CAE:               cae,
		VencimientoCAE:    &venc,
		NumeroComprobante: 42,
		QRURL:             "https://www.afip.gob.ar/fe/qr/?p=xyz",
	}
}

func empresaRI(certPEM, keyPEM string) *entity.Empresa {
	return &entity.Empresa{
		ID:              "emp-1",
		RazonSocial:     "Prueba SA",
		CUIT:            "30111111118",
		CondicionIVA:    "RESPONSABLE_INSCRIPTO",
		PuntoVenta:      3,
		CertificadoPEM:  certPEM,
		ClavePrivadaPEM: keyPEM,
		Activa:          true,
	}
}

func nuevoCasoEmitir(t *testing.T, empresa *entity.Empresa, emisor infraafip.Emisor) (*EmitirFacturaUseCase, *fakeComprobanteRepo) {
	t.Helper()
	emp := &fakeEmpresaRepo{porCUIT: map[string]*entity.Empresa{empresa.CUIT: empresa}}
	resolver := nuevoResolver(&fakeCredRepo{}, emp, nil, CredencialEntorno{})
	repo := &fakeComprobanteRepo{}
	uc := NewEmitirFacturaUseCase(resolver, emisor, repo, PoliticaResolucion{}, 1, logger.Nop())
	return uc, repo
}

func TestEmitir_FacturaAEntreResponsablesInscriptos(t *testing.T) {
	certPEM, keyPEM := credencialDePrueba(t)
	empresa := empresaRI(certPEM, keyPEM)
	emisor := &fakeEmisor{resultados: []*infraafip.ResultadoEmision{resultadoExitoso("71234567890123")}}
	uc, repo := nuevoCasoEmitir(t, empresa, emisor)

	venta := &entity.Venta{
		ID:                   "venta-1",
		EmpresaID:            empresa.ID,
		Total:                decimal.NewFromInt(1210),
		DocReceptor:          "20-12345678-6",
		CondicionIVAReceptor: "RI",
	}

	comp, err := uc.Emitir(context.Background(), empresa, venta)
	require.NoError(t, err)

	assert.Equal(t, pkgafip.TipoFacturaA, comp.Tipo)
	assert.True(t, comp.ImporteNeto.Equal(decimal.NewFromInt(1000)), "neto %s", comp.ImporteNeto)
	assert.True(t, comp.ImporteIVA.Equal(decimal.NewFromInt(210)), "iva %s", comp.ImporteIVA)
	assert.Equal(t, pkgafip.TipoDocCUIT, comp.TipoDocReceptor)
	assert.Equal(t, "20123456786", comp.NroDocReceptor)
	assert.Equal(t, entity.EstadoExitoso, comp.Estado)
	assert.Equal(t, "71234567890123", comp.CAE)
	assert.EqualValues(t, 42, comp.Numero)
	assert.Equal(t, 3, comp.PuntoVenta)

	require.Len(t, repo.creados, 1)
	assert.Same(t, comp, repo.creados[0])

	// La llave enviada al microservicio quedó re-serializada en PKCS#8.
	assert.Contains(t, emisor.ultimaCred.ClavePrivada, "BEGIN PRIVATE KEY")
	assert.Equal(t, "30111111118", emisor.ultimaCred.CUIT)
}

func TestEmitir_ReceptorInvalidoDegradaAFacturaB(t *testing.T) {
	certPEM, keyPEM := credencialDePrueba(t)
	empresa := empresaRI(certPEM, keyPEM)
	emisor := &fakeEmisor{resultados: []*infraafip.ResultadoEmision{resultadoExitoso("7")}}
	uc, _ := nuevoCasoEmitir(t, empresa, emisor)

	// CUIT de 11 dígitos con verificador inválido: consumidor final sin identificar.
	venta := &entity.Venta{
		ID:                   "venta-2",
		Total:                decimal.NewFromInt(1210),
		DocReceptor:          "20123456789",
		CondicionIVAReceptor: "RI",
	}

	comp, err := uc.Emitir(context.Background(), empresa, venta)
	require.NoError(t, err)

	assert.Equal(t, pkgafip.TipoFacturaB, comp.Tipo)
	assert.Equal(t, pkgafip.TipoDocSinIdentificar, comp.TipoDocReceptor)
	assert.Equal(t, "0", comp.NroDocReceptor)
}

func TestEmitir_TipoManualAConReceptorDegradadoFalla(t *testing.T) {
	certPEM, keyPEM := credencialDePrueba(t)
	empresa := empresaRI(certPEM, keyPEM)
	emisor := &fakeEmisor{}
	uc, repo := nuevoCasoEmitir(t, empresa, emisor)

	venta := &entity.Venta{
		ID:         "venta-3",
		Total:      decimal.NewFromInt(100),
		TipoManual: pkgafip.TipoFacturaA,
	}

	_, err := uc.Emitir(context.Background(), empresa, venta)
	assert.ErrorIs(t, err, domain.ErrReceptorIncompatibleConA)
	assert.Zero(t, emisor.llamadas, "no debe llegar al microservicio")
	assert.Empty(t, repo.creados)
}

func TestEmitir_Desglose77(t *testing.T) {
	certPEM, keyPEM := credencialDePrueba(t)
	empresa := empresaRI(certPEM, keyPEM)
	emisor := &fakeEmisor{resultados: []*infraafip.ResultadoEmision{resultadoExitoso("7")}}
	uc, _ := nuevoCasoEmitir(t, empresa, emisor)

	venta := &entity.Venta{
		ID:                "venta-4",
		Total:             decimal.NewFromInt(100),
		DocReceptor:       "20123456786",
		AplicarDesglose77: true,
	}

	comp, err := uc.Emitir(context.Background(), empresa, venta)
	require.NoError(t, err)

	assert.True(t, comp.ImporteNeto.Equal(decimal.NewFromFloat(19.01)), "neto %s", comp.ImporteNeto)
	assert.True(t, comp.ImporteIVA.Equal(decimal.NewFromFloat(3.99)), "iva %s", comp.ImporteIVA)
	require.Len(t, comp.Tributos, 1)
	assert.Equal(t, pkgafip.TributoIDOtros, comp.Tributos[0].ID)
	assert.True(t, comp.Tributos[0].Importe.Equal(decimal.NewFromInt(77)))

	// La suma cierra exacta contra el total.
	suma := comp.ImporteNeto.Add(comp.ImporteIVA).Add(comp.Tributos[0].Importe)
	assert.True(t, suma.Equal(venta.Total), "suma %s", suma)
	assert.True(t, emisor.ultimo.AplicarDesglose77)
}

func TestEmitir_RechazoSePersisteConDetalle(t *testing.T) {
	certPEM, keyPEM := credencialDePrueba(t)
	empresa := empresaRI(certPEM, keyPEM)
	emisor := &fakeEmisor{resultados: []*infraafip.ResultadoEmision{{
		Estado:  entity.EstadoRechazado,
		Detalle: "CUIT del receptor no registrado en padrón",
	}}}
	uc, repo := nuevoCasoEmitir(t, empresa, emisor)

	venta := &entity.Venta{
		ID:          "venta-5",
		Total:       decimal.NewFromInt(1210),
		DocReceptor: "20123456786",
	}

	comp, err := uc.Emitir(context.Background(), empresa, venta)
	require.NoError(t, err, "un rechazo no es un error de ejecución")

	assert.Equal(t, entity.EstadoRechazado, comp.Estado)
	assert.Empty(t, comp.CAE)
	assert.Contains(t, comp.Errores, "padrón")
	require.Len(t, repo.creados, 1)
}

func TestEmitir_LlaveConPassphraseFalla(t *testing.T) {
	certPEM, _ := credencialDePrueba(t)
	// Bloque PEM legado con Proc-Type: exige passphrase y el core lo rechaza.
	llaveEncriptada := string(pem.EncodeToMemory(&pem.Block{
		Type:    "RSA PRIVATE KEY",
		Headers: map[string]string{"Proc-Type": "4,ENCRYPTED", "DEK-Info": "AES-128-CBC,00112233445566778899AABBCCDDEEFF"},
		Bytes:   []byte("no es una llave real"),
	}))
	empresa := empresaRI(certPEM, llaveEncriptada)
	emisor := &fakeEmisor{}
	uc, _ := nuevoCasoEmitir(t, empresa, emisor)

	venta := &entity.Venta{ID: "venta-6", Total: decimal.NewFromInt(100), DocReceptor: "20123456786"}

	_, err := uc.Emitir(context.Background(), empresa, venta)
	assert.ErrorIs(t, err, domain.ErrCredencialInvalida)
	assert.Zero(t, emisor.llamadas)
}

func TestEmitir_ErrorDePersistenciaSePropaga(t *testing.T) {
	certPEM, keyPEM := credencialDePrueba(t)
	empresa := empresaRI(certPEM, keyPEM)
	emisor := &fakeEmisor{resultados: []*infraafip.ResultadoEmision{resultadoExitoso("7")}}

	emp := &fakeEmpresaRepo{porCUIT: map[string]*entity.Empresa{empresa.CUIT: empresa}}
	resolver := nuevoResolver(&fakeCredRepo{}, emp, nil, CredencialEntorno{})
	repo := &fakeComprobanteRepo{errCrear: fmt.Errorf("conexión perdida")}
	uc := NewEmitirFacturaUseCase(resolver, emisor, repo, PoliticaResolucion{}, 1, logger.Nop())

	venta := &entity.Venta{ID: "venta-7", Total: decimal.NewFromInt(1210), DocReceptor: "20123456786"}

	_, err := uc.Emitir(context.Background(), empresa, venta)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "persistir")
}
