package domain

import "errors"

// Errores de dominio (sin dependencias externas).
// Cada error es atribuible a un único comprobante dentro de un lote: ninguno
// corrompe el estado de los demás.
var (
	ErrNotFound                   = errors.New("recurso no encontrado")
	ErrUserNotFound               = errors.New("usuario no encontrado")
	ErrInvalidInput               = errors.New("entrada inválida")
	ErrUnauthorized               = errors.New("no autorizado")
	ErrForbidden                  = errors.New("acceso denegado")
	ErrDuplicate                  = errors.New("recurso duplicado")

	// ErrCredencialNoEncontrada: ninguna fuente produjo certificado + llave para
	// el CUIT pedido (o el modo estricto cortó la resolución). No se reintenta.
	ErrCredencialNoEncontrada = errors.New("credencial AFIP no encontrada")

	// ErrCredencialInvalida: PEM malformado o llave protegida con passphrase.
	// Fatal para ese comprobante; no se reintenta.
	ErrCredencialInvalida = errors.New("credencial AFIP inválida")

	// ErrCondicionEmisorNoSoportada: la condición IVA del emisor no mapea a
	// ningún tipo de comprobante soportado.
	ErrCondicionEmisorNoSoportada = errors.New("condición IVA del emisor no soportada")

	// ErrTipoManualInvalido: el tipo de comprobante pedido manualmente no es
	// válido para el emisor, o el código no existe.
	ErrTipoManualInvalido = errors.New("tipo de comprobante manual inválido")

	// ErrReceptorIncompatibleConA: se pidió Factura A con un receptor degradado
	// a consumidor final sin identificar.
	ErrReceptorIncompatibleConA = errors.New("receptor sin CUIT válido: incompatible con Factura A")

	// ErrMontosInconsistentes: neto + IVA + tributos no cierra contra el total
	// dentro de la tolerancia.
	ErrMontosInconsistentes = errors.New("montos inconsistentes")

	// ErrTributoInvalido: tributo con importe fuera de tolerancia, base
	// negativa, o tributo 99 sin descripción.
	ErrTributoInvalido = errors.New("tributo inválido")
)
