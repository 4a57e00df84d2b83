package cash

import (
	"context"

	"github.com/tu-usuario/pos-ledger/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD con los
// repositorios de caja atados a esa tx. El nombre del método no colisiona
// con el runner de inventario para que una misma implementación sirva ambos.
type TxRunner interface {
	RunCash(ctx context.Context, fn func(
		sessionRepo repository.CashSessionRepository,
		movementRepo repository.CashMovementRepository,
		countRepo repository.CashCountRepository,
	) error) error
}
