package afip_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	infraafip "github.com/tu-usuario/facturador-afip/internal/infrastructure/afip"
)

func escribirPar(t *testing.T, dir, cuit string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, cuit+".crt"), []byte("CERT-"+cuit), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, cuit+".key"), []byte("KEY-"+cuit), 0o600))
}

func TestVaultLocal_ParCompleto(t *testing.T) {
	dir := t.TempDir()
	escribirPar(t, dir, "20123456786")

	vault := infraafip.NewVaultLocal(dir)
	cert, key, err := vault.Get("20123456786")
	require.NoError(t, err)

	assert.Equal(t, "CERT-20123456786", cert)
	assert.Equal(t, "KEY-20123456786", key)
}

func TestVaultLocal_SinEntrada(t *testing.T) {
	vault := infraafip.NewVaultLocal(t.TempDir())
	cert, key, err := vault.Get("20123456786")
	require.NoError(t, err)

	assert.Empty(t, cert)
	assert.Empty(t, key)
}

// Un par incompleto (solo .crt o solo .key) no se selecciona.
func TestVaultLocal_ParIncompleto(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "20123456786.crt"), []byte("CERT"), 0o600))

	vault := infraafip.NewVaultLocal(dir)
	cert, key, err := vault.Get("20123456786")
	require.NoError(t, err)

	assert.Empty(t, cert)
	assert.Empty(t, key)
}

func TestVaultLocal_Deshabilitado(t *testing.T) {
	vault := infraafip.NewVaultLocal("")
	assert.False(t, vault.Habilitado())

	cert, key, err := vault.Get("20123456786")
	require.NoError(t, err)
	assert.Empty(t, cert)
	assert.Empty(t, key)
}
