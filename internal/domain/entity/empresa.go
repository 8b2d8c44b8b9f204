package entity

import "time"

// Empresa es un emisor (tenant) en un despliegue multi-empresa.
// Puede llevar embebidas sus credenciales AFIP; esa es la segunda fuente del
// resolver, después del almacén dedicado de credenciales.
type Empresa struct {
	ID              string
	RazonSocial     string
	CUIT            string
	CondicionIVA    string // afip.CondicionIVA del emisor
	PuntoVenta      int
	CertificadoPEM  string // opcional: credencial embebida en la configuración
	ClavePrivadaPEM string // opcional: idem
	Email           string
	Activa          bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// TieneCredencial indica si la empresa tiene certificado y llave embebidos.
func (e *Empresa) TieneCredencial() bool {
	return e.CertificadoPEM != "" && e.ClavePrivadaPEM != ""
}
