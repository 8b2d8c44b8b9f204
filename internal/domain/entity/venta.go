package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Venta es el registro crudo de venta a facturar (espejo de la planilla de
// ventas que sincroniza un colaborador externo; acá solo se lee).
type Venta struct {
	ID                   string
	EmpresaID            string
	Fecha                time.Time
	Total                decimal.Decimal
	DocReceptor          string // CUIT/DNI declarado del comprador, texto libre
	CondicionIVAReceptor string // condición IVA declarada del comprador
	TipoManual           int    // 0 = automático; si no, código de comprobante pedido
	AplicarDesglose77    bool   // activa el desglose 77/23 de impuestos internos
	Tributos             []Tributo
	CreatedAt            time.Time
	UpdatedAt            time.Time
}
