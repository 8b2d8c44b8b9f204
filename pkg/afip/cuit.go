package afip

import (
	"fmt"
	"unicode"
)

// pesos para el cálculo del dígito verificador del CUIT/CUIL (módulo 11, AFIP).
// Se aplican a los 10 primeros dígitos, de izquierda a derecha.
var cuitWeights = [10]int{5, 4, 3, 2, 7, 6, 5, 4, 3, 2}

// ValidarCUIT valida que el CUIT (con o sin guiones/puntos) tenga 11 dígitos y
// un dígito verificador correcto según el algoritmo módulo 11 de AFIP.
// cuit puede ser "20-12345678-6", "20.12345678.6" o "20123456786".
func ValidarCUIT(cuit string) error {
	digits := extraerDigitos(cuit)
	if len(digits) != 11 {
		return fmt.Errorf("afip: CUIT debe tener 11 dígitos, se encontraron %d", len(digits))
	}
	expected := digitoVerificador(digits[:10])
	if digits[10] != expected {
		return fmt.Errorf("afip: dígito verificador del CUIT inválido: esperado %c, recibido %c", expected, digits[10])
	}
	return nil
}

// ComputarDigitoVerificadorCUIT calcula el dígito verificador para los 10
// primeros dígitos del CUIT. Útil para completar el CUIT a partir de prefijo + DNI.
func ComputarDigitoVerificadorCUIT(cuit string) (byte, error) {
	digits := extraerDigitos(cuit)
	if len(digits) < 10 {
		return 0, fmt.Errorf("afip: se requieren al menos 10 dígitos para calcular el dígito verificador, se encontraron %d", len(digits))
	}
	return digitoVerificador(digits[:10]), nil
}

// NormalizarCUIT devuelve el CUIT como 11 dígitos sin separadores, o "" si no
// tiene exactamente 11 dígitos.
func NormalizarCUIT(cuit string) string {
	digits := extraerDigitos(cuit)
	if len(digits) != 11 {
		return ""
	}
	return string(digits)
}

// digitoVerificador aplica los pesos módulo 11 sobre los 10 primeros dígitos.
// Regla AFIP: dv = 11 - (suma mod 11); 11 se reduce a 0 y 10 a 9.
func digitoVerificador(base []byte) byte {
	var sum int
	for i, d := range base {
		sum += int(d-'0') * cuitWeights[i]
	}
	dv := 11 - (sum % 11)
	switch dv {
	case 11:
		return '0'
	case 10:
		return '9'
	default:
		return byte('0' + dv)
	}
}

func extraerDigitos(s string) []byte {
	var out []byte
	for _, r := range s {
		if unicode.IsDigit(r) {
			out = append(out, byte(r))
		}
	}
	return out
}
