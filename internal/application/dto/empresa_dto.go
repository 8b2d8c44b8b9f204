package dto

import "time"

// CreateEmpresaRequest alta de un emisor. El certificado y la llave son
// opcionales: pueden cargarse después o resolverse desde otra fuente.
type CreateEmpresaRequest struct {
	RazonSocial     string `json:"razon_social"`
	CUIT            string `json:"cuit"`
	CondicionIVA    string `json:"condicion_iva"`
	PuntoVenta      int    `json:"punto_venta"`
	CertificadoPEM  string `json:"certificado_pem,omitempty"`
	ClavePrivadaPEM string `json:"clave_privada_pem,omitempty"`
	Email           string `json:"email,omitempty"`
}

// UpdateEmpresaRequest actualización parcial de un emisor.
type UpdateEmpresaRequest struct {
	RazonSocial     *string `json:"razon_social,omitempty"`
	CondicionIVA    *string `json:"condicion_iva,omitempty"`
	PuntoVenta      *int    `json:"punto_venta,omitempty"`
	CertificadoPEM  *string `json:"certificado_pem,omitempty"`
	ClavePrivadaPEM *string `json:"clave_privada_pem,omitempty"`
	Email           *string `json:"email,omitempty"`
	Activa          *bool   `json:"activa,omitempty"`
}

// EmpresaResponse salida de un emisor. Nunca expone la llave privada.
type EmpresaResponse struct {
	ID           string    `json:"id"`
	RazonSocial  string    `json:"razon_social"`
	CUIT         string    `json:"cuit"`
	CondicionIVA string    `json:"condicion_iva"`
	PuntoVenta   int       `json:"punto_venta"`
	TieneCert    bool      `json:"tiene_certificado"`
	Email        string    `json:"email,omitempty"`
	Activa       bool      `json:"activa"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
