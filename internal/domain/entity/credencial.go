package entity

import "time"

// Fuentes posibles de una credencial resuelta, en orden de prioridad.
const (
	FuenteAlmacenDedicado = "ALMACEN_DEDICADO" // tabla de credenciales
	FuenteConfigEmpresa   = "CONFIG_EMPRESA"   // cert/llave embebidos en la empresa
	FuenteVaultLocal      = "VAULT_LOCAL"      // par de archivos <cuit>.crt/.key en disco
	FuenteEntorno         = "ENTORNO"          // variables de entorno (último recurso)
)

// CredencialAFIP es un registro del almacén dedicado de credenciales.
// El core nunca muta estos registros: los crea y actualiza la administración;
// el resolver solo selecciona entre los existentes.
type CredencialAFIP struct {
	ID              string
	CUIT            string
	CertificadoPEM  string
	ClavePrivadaPEM string
	Activa          bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Completa indica si el registro tiene certificado y llave.
func (c *CredencialAFIP) Completa() bool {
	return c.CertificadoPEM != "" && c.ClavePrivadaPEM != ""
}
