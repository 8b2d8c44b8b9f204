package afip

// IdentidadReceptor es el resultado de resolver el documento declarado del
// receptor: tipo de documento AFIP y número normalizado.
type IdentidadReceptor struct {
	DocOriginal   string       // valor crudo declarado en la venta
	TipoDoc       int          // TipoDocCUIT, TipoDocDNI o TipoDocSinIdentificar
	NroDoc        string       // solo dígitos; "0" si quedó sin identificar
	CondicionIVA  CondicionIVA // condición efectiva del receptor tras la resolución
	Degradado     bool         // true si el documento no identificó al receptor
}

// ResolverIdentidadReceptor clasifica el documento del receptor:
//
//   - 11 dígitos con dígito verificador válido -> CUIT (tipo 80)
//   - 7 u 8 dígitos -> DNI (tipo 96)
//   - cualquier otra cosa (incluido CUIT con verificador inválido) -> el
//     receptor se degrada a consumidor final sin identificar (tipo 99, nro "0")
//
// La degradación es irreversible dentro de un mismo cómputo: la condición IVA
// declarada se pisa con ConsumidorFinal y el comprobante no puede ser tipo A.
func ResolverIdentidadReceptor(raw string, declarada CondicionIVA) IdentidadReceptor {
	digits := extraerDigitos(raw)

	if len(digits) == 11 {
		if ValidarCUIT(string(digits)) == nil {
			return IdentidadReceptor{
				DocOriginal:  raw,
				TipoDoc:      TipoDocCUIT,
				NroDoc:       string(digits),
				CondicionIVA: declarada,
			}
		}
		// 11 dígitos con verificador inválido: no se rescata como DNI.
		return degradar(raw)
	}

	if len(digits) == 7 || len(digits) == 8 {
		return IdentidadReceptor{
			DocOriginal:  raw,
			TipoDoc:      TipoDocDNI,
			NroDoc:       string(digits),
			CondicionIVA: declarada,
		}
	}

	return degradar(raw)
}

func degradar(raw string) IdentidadReceptor {
	return IdentidadReceptor{
		DocOriginal:  raw,
		TipoDoc:      TipoDocSinIdentificar,
		NroDoc:       "0",
		CondicionIVA: ConsumidorFinal,
		Degradado:    true,
	}
}
