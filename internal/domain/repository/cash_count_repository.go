package repository

import "github.com/tu-usuario/pos-ledger/internal/domain/entity"

// CashCountRepository define el puerto de persistencia de arqueos.
type CashCountRepository interface {
	// Create persiste el arqueo con sus líneas de denominación.
	Create(count *entity.CashCount) error
	ListBySession(sessionID string) ([]*entity.CashCount, error)
}
