package billing

// PoliticaResolucion gobierna la resolución de credenciales por llamada.
// Estricta prohíbe todo fallback cruzado: con CUIT explícito la resolución
// termina en las fuentes administradas (almacén dedicado y configuración de
// empresa); sin CUIT explícito aborta de inmediato. Es un valor por llamada,
// no un toggle global, para que los tests ejerciten ambas políticas sin tocar
// el entorno.
type PoliticaResolucion struct {
	Estricta bool
}

// VaultCredenciales puerto de lectura del vault local de certificados.
// La implementación de producción es el directorio de pares <cuit>.crt/.key.
type VaultCredenciales interface {
	// Get devuelve cert y llave PEM del CUIT (solo dígitos), o ("", "", nil)
	// si la entrada no existe o está incompleta.
	Get(cuit string) (certPEM, keyPEM string, err error)
	Habilitado() bool
}

// CredencialEntorno es la credencial de último recurso tomada de variables de
// entorno. Usable solo con el flag habilitado y la terna completa.
type CredencialEntorno struct {
	Habilitada   bool
	CUIT         string
	CertPEM      string
	ClavePrivada string
}

// Completa indica si la terna CUIT/cert/llave está íntegra.
func (c CredencialEntorno) Completa() bool {
	return c.CUIT != "" && c.CertPEM != "" && c.ClavePrivada != ""
}
