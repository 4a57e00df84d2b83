package repository

import "github.com/tu-usuario/pos-ledger/internal/domain/entity"

// BalanceRepository define el puerto para consultar/actualizar saldos por
// producto+ubicación. Ninguna pieza fuera del motor de movimientos debe
// mutar saldos directamente.
type BalanceRepository interface {
	Get(productID, locationID string) (*entity.ProductBalance, error)
	// GetForUpdate bloquea la fila del saldo (SELECT FOR UPDATE con lock_timeout).
	// Un timeout de bloqueo se devuelve como domain.ErrConflict.
	GetForUpdate(productID, locationID string) (*entity.ProductBalance, error)
	Upsert(balance *entity.ProductBalance) error
	ListByLocation(locationID string) ([]*entity.ProductBalance, error)
}
