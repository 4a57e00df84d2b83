package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de arqueo (conteo físico de efectivo).
const (
	CountOpening      = "OPENING"
	CountClosing      = "CLOSING"
	CountIntermediate = "INTERMEDIATE"
)

// CashCount es un arqueo de caja por denominaciones dentro de una sesión.
// TotalCounted debe coincidir con la suma de las líneas; un desfase es un
// error de captura y se rechaza antes de reconciliar.
type CashCount struct {
	ID           string
	SessionID    string
	Type         string
	TotalCounted decimal.Decimal
	CountedBy    string
	CreatedAt    time.Time
	Details      []CashCountDetail
}

// CashCountDetail es una línea de arqueo: cuántas piezas de una denominación.
// El importe de la línea siempre se deriva, nunca se almacena aparte.
type CashCountDetail struct {
	CountID           string
	DenominationValue decimal.Decimal
	Quantity          int64
}

// Amount devuelve el importe de la línea: cantidad × valor de la denominación.
func (d CashCountDetail) Amount() decimal.Decimal {
	return d.DenominationValue.Mul(decimal.NewFromInt(d.Quantity))
}

// DetailsTotal suma los importes de todas las líneas del arqueo.
func (c *CashCount) DetailsTotal() decimal.Decimal {
	total := decimal.Zero
	for _, d := range c.Details {
		total = total.Add(d.Amount())
	}
	return total
}
