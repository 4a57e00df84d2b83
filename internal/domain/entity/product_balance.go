package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProductBalance representa el saldo actual de un producto en una ubicación
// (tabla materializada, derivada del ledger de movimientos).
// Se crea con el primer movimiento del par (producto, ubicación) y nunca se
// elimina físicamente: se deja en cero.
type ProductBalance struct {
	ProductID  string
	LocationID string
	Zone       string // zona dentro de la ubicación; "" = sin zona
	OnHand     decimal.Decimal
	Reserved   decimal.Decimal
	UpdatedAt  time.Time
}

// Available devuelve la cantidad disponible: en mano menos reservada.
// Nunca se almacena; siempre se deriva.
func (b *ProductBalance) Available() decimal.Decimal {
	return b.OnHand.Sub(b.Reserved)
}
