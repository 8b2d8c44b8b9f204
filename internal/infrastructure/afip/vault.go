package afip

import (
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"golang.org/x/crypto/pkcs12"

	"github.com/tu-usuario/facturador-afip/internal/domain"
)

// VaultLocal es el vault efímero de credenciales en disco: pares
// <cuit>.crt / <cuit>.key (PEM) o un bundle <cuit>.p12 por CUIT.
// Es una fuente de resolución, no un almacén administrado: solo lectura.
type VaultLocal struct {
	dir string
}

// NewVaultLocal crea el vault sobre un directorio. dir vacío deshabilita el vault.
func NewVaultLocal(dir string) *VaultLocal {
	return &VaultLocal{dir: dir}
}

// Habilitado indica si el vault tiene directorio configurado.
func (v *VaultLocal) Habilitado() bool {
	return v != nil && v.dir != ""
}

// Get busca la credencial del CUIT (solo dígitos). Devuelve cert y llave en PEM.
// Si el par no existe o está incompleto devuelve ("", "", nil): el vault no
// decide la falla, decide el resolver con las fuentes restantes.
func (v *VaultLocal) Get(cuit string) (certPEM, keyPEM string, err error) {
	if !v.Habilitado() || cuit == "" {
		return "", "", nil
	}

	certPath := filepath.Join(v.dir, cuit+".crt")
	keyPath := filepath.Join(v.dir, cuit+".key")

	certBytes, certErr := os.ReadFile(certPath)
	keyBytes, keyErr := os.ReadFile(keyPath)
	if certErr == nil && keyErr == nil {
		return string(certBytes), string(keyBytes), nil
	}
	if (certErr == nil) != (keyErr == nil) {
		// Par incompleto: no sirve como credencial, siguen las otras fuentes.
		return "", "", nil
	}
	if !errors.Is(certErr, fs.ErrNotExist) {
		return "", "", fmt.Errorf("vault: leer %s: %w", certPath, certErr)
	}

	// Sin par PEM: intentar bundle PKCS#12 sin passphrase.
	return v.getP12(cuit)
}

func (v *VaultLocal) getP12(cuit string) (certPEM, keyPEM string, err error) {
	data, err := os.ReadFile(filepath.Join(v.dir, cuit+".p12"))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", "", nil
		}
		return "", "", fmt.Errorf("vault: leer p12: %w", err)
	}

	// Solo bundles sin passphrase: el core no maneja passphrases.
	priv, cert, err := pkcs12.Decode(data, "")
	if err != nil {
		return "", "", fmt.Errorf("%w: decodificar p12 del vault: %v", domain.ErrCredencialInvalida, err)
	}

	der, err := x509.MarshalPKCS8PrivateKey(priv)
	if err != nil {
		return "", "", fmt.Errorf("%w: serializar llave del p12: %v", domain.ErrCredencialInvalida, err)
	}

	certPEM = string(pem.EncodeToMemory(&pem.Block{Type: string(BloqueCertificado), Bytes: cert.Raw}))
	keyPEM = string(pem.EncodeToMemory(&pem.Block{Type: string(BloqueLlave), Bytes: der}))
	return certPEM, keyPEM, nil
}
