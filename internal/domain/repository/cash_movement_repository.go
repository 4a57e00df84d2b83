package repository

import (
	"github.com/shopspring/decimal"
	"github.com/tu-usuario/pos-ledger/internal/domain/entity"
)

// CashMovementRepository define el puerto de persistencia del ledger de caja.
// Append-only, igual que el de inventario.
type CashMovementRepository interface {
	Create(movement *entity.CashMovement) error
	ListBySession(sessionID string) ([]*entity.CashMovement, error)
	// SumBySession suma los importes firmados de la sesión. El saldo esperado
	// siempre se deriva de esta suma, nunca de un contador aparte.
	SumBySession(sessionID string) (decimal.Decimal, error)
	// TotalsByType agrupa los importes por tipo de movimiento (resumen de sesión).
	TotalsByType(sessionID string) (map[string]decimal.Decimal, error)
}
