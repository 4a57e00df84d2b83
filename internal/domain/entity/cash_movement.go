package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de movimiento de caja.
const (
	CashMovementSale       = "SALE"       // cobro de venta (positivo)
	CashMovementPayment    = "PAYMENT"    // abono de cliente (positivo)
	CashMovementExpense    = "EXPENSE"    // gasto pagado desde caja (negativo)
	CashMovementOpening    = "OPENING"    // fondo inicial al abrir la sesión
	CashMovementClosing    = "CLOSING"    // retiro del efectivo contado al cerrar
	CashMovementWithdrawal = "WITHDRAWAL" // retiro parcial a bóveda (negativo)
	CashMovementDeposit    = "DEPOSIT"    // ingreso manual de efectivo (positivo)
)

// Métodos de pago.
const (
	PaymentMethodCash     = "CASH"
	PaymentMethodCard     = "CARD"
	PaymentMethodTransfer = "TRANSFER"
)

// CashMovement es una entrada inmutable del ledger de caja, siempre ligada a
// una sesión OPEN. Mismo invariante antes/después que StockMovement:
// BalanceAfter = BalanceBefore + Amount.
type CashMovement struct {
	ID            string
	SessionID     string
	Type          string
	Amount        decimal.Decimal // firmado
	BalanceBefore decimal.Decimal
	BalanceAfter  decimal.Decimal
	PaymentMethod string
	DocumentType  string
	DocumentID    string
	Notes         string
	Actor         string
	CreatedAt     time.Time
}
