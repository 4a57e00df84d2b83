package repository

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/tu-usuario/pos-ledger/internal/domain/entity"
)

// StockMovementFilter filtros para el historial de movimientos.
type StockMovementFilter struct {
	ProductID  string
	LocationID string
	Type       string
	Reason     string
	From       *time.Time
	To         *time.Time
	Limit      int
	Offset     int
}

// StockMovementRepository define el puerto de persistencia del ledger de
// inventario. Solo altas y lecturas: el ledger es append-only.
type StockMovementRepository interface {
	// Create persiste un movimiento. Un ID ya existente devuelve
	// domain.ErrDuplicate (clave de idempotencia).
	Create(movement *entity.StockMovement) error
	GetByID(id string) (*entity.StockMovement, error)
	List(filter StockMovementFilter) ([]*entity.StockMovement, error)
	// SumDeltas suma quantity_delta de todos los movimientos del par
	// (producto, ubicación). Es la verdad contra la que se reconcilia el saldo.
	SumDeltas(productID, locationID string) (decimal.Decimal, error)
}
