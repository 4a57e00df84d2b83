package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de una sesión de caja.
const (
	SessionOpen   = "OPEN"
	SessionClosed = "CLOSED"
)

// CashSession acota una secuencia de movimientos de efectivo entre una
// apertura y un cierre. Solo puede haber una sesión OPEN por caja.
// CLOSED es terminal: una sesión cerrada es inmutable y las correcciones se
// hacen con una sesión nueva más un movimiento de ajuste, preservando la
// auditoría.
type CashSession struct {
	ID            string
	RegisterID    string
	OpenedBy      string
	OpenedAt      time.Time
	OpeningAmount decimal.Decimal
	Status        string

	// Campos de cierre; nil mientras la sesión está abierta.
	ClosedBy       string
	ClosedAt       *time.Time
	ClosingAmount  *decimal.Decimal // monto contado físicamente al cerrar
	ExpectedAmount *decimal.Decimal // derivado del ledger: apertura + Σ movimientos
	Difference     *decimal.Decimal // ClosingAmount - ExpectedAmount
}

// IsOpen informa si la sesión admite movimientos.
func (s *CashSession) IsOpen() bool { return s.Status == SessionOpen }
