// Saneo de credenciales PEM y normalización de formato de llave privada.
//
// Las credenciales llegan de fuentes heterogéneas (DB, archivos del vault,
// variables de entorno) con saltos de línea rotos, headers perdidos o llaves
// en encodings legados (PKCS#1, SEC1). El microservicio de firma acepta un
// único formato: PKCS#8 sin encriptar. Acá se normaliza todo a eso.
package afip

import (
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"strings"

	"github.com/tu-usuario/facturador-afip/internal/domain"
)

// BloquePEM tipo de bloque esperado al sanear un PEM sin headers.
type BloquePEM string

const (
	BloqueCertificado BloquePEM = "CERTIFICATE"
	BloqueLlave       BloquePEM = "PRIVATE KEY"
)

// NormalizarPEM sanea un blob PEM de texto:
//
//   - recorta espacios y unifica saltos de línea a \n, descartando líneas vacías;
//   - si la primera y última línea ya son marcadores BEGIN/END, se re-arma tal cual;
//   - si el cuerpo es base64 puro sin marcadores, se envuelve con los del tipo pedido;
//   - cualquier otro formato pasa normalizado sin rechazo: el rechazo ocurre
//     recién al cargar la llave o el certificado.
func NormalizarPEM(texto string, tipo BloquePEM) string {
	texto = strings.TrimSpace(texto)
	if texto == "" {
		return ""
	}
	texto = strings.ReplaceAll(texto, "\r\n", "\n")
	texto = strings.ReplaceAll(texto, "\r", "\n")

	var lineas []string
	for _, l := range strings.Split(texto, "\n") {
		l = strings.TrimSpace(l)
		if l != "" {
			lineas = append(lineas, l)
		}
	}
	if len(lineas) == 0 {
		return ""
	}

	primera, ultima := lineas[0], lineas[len(lineas)-1]
	if strings.HasPrefix(primera, "-----BEGIN ") && strings.HasPrefix(ultima, "-----END ") {
		return strings.Join(lineas, "\n") + "\n"
	}

	if esBase64Puro(lineas) {
		cuerpo := strings.Join(lineas, "\n")
		return fmt.Sprintf("-----BEGIN %s-----\n%s\n-----END %s-----\n", tipo, cuerpo, tipo)
	}

	return strings.Join(lineas, "\n") + "\n"
}

// esBase64Puro acepta solo líneas con alfabeto base64 estándar. No decodifica:
// el objetivo es decidir si envolver con marcadores, no validar la credencial.
func esBase64Puro(lineas []string) bool {
	for _, l := range lineas {
		for _, r := range l {
			ok := (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') ||
				r == '+' || r == '/' || r == '='
			if !ok {
				return false
			}
		}
	}
	return true
}

// ForzarPKCS8 carga una llave privada PEM en cualquiera de los encodings
// comunes (PKCS#8, PKCS#1 RSA, SEC1 EC) y la re-serializa incondicionalmente
// a PKCS#8 sin encriptar, el único formato que acepta el microservicio.
// Una llave protegida con passphrase es ErrCredencialInvalida: el core no
// maneja passphrases.
func ForzarPKCS8(llavePEM string) (string, error) {
	block, _ := pem.Decode([]byte(NormalizarPEM(llavePEM, BloqueLlave)))
	if block == nil {
		return "", fmt.Errorf("%w: el texto no contiene un bloque PEM", domain.ErrCredencialInvalida)
	}

	if strings.Contains(block.Type, "ENCRYPTED") || block.Headers["Proc-Type"] != "" {
		return "", fmt.Errorf("%w: la llave privada requiere passphrase", domain.ErrCredencialInvalida)
	}

	key, err := parsearLlave(block.Bytes)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrCredencialInvalida, err)
	}

	der, err := x509.MarshalPKCS8PrivateKey(key)
	if err != nil {
		return "", fmt.Errorf("%w: re-serializar a PKCS#8: %v", domain.ErrCredencialInvalida, err)
	}

	out := pem.EncodeToMemory(&pem.Block{Type: string(BloqueLlave), Bytes: der})
	return string(out), nil
}

// parsearLlave intenta los encodings de llave privada en orden de frecuencia.
func parsearLlave(der []byte) (interface{}, error) {
	if key, err := x509.ParsePKCS8PrivateKey(der); err == nil {
		switch key.(type) {
		case *rsa.PrivateKey, *ecdsa.PrivateKey, ed25519.PrivateKey:
			return key, nil
		}
		return nil, fmt.Errorf("tipo de llave PKCS#8 no soportado")
	}
	if key, err := x509.ParsePKCS1PrivateKey(der); err == nil {
		return key, nil
	}
	if key, err := x509.ParseECPrivateKey(der); err == nil {
		return key, nil
	}
	return nil, fmt.Errorf("la llave no es PKCS#8, PKCS#1 ni SEC1")
}

// ValidarCertificado verifica que el PEM contenga un certificado X.509 parseable.
func ValidarCertificado(certPEM string) error {
	block, _ := pem.Decode([]byte(NormalizarPEM(certPEM, BloqueCertificado)))
	if block == nil {
		return fmt.Errorf("%w: el certificado no contiene un bloque PEM", domain.ErrCredencialInvalida)
	}
	if _, err := x509.ParseCertificate(block.Bytes); err != nil {
		return fmt.Errorf("%w: certificado X.509 inválido: %v", domain.ErrCredencialInvalida, err)
	}
	return nil
}
