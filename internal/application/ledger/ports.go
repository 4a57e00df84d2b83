package ledger

import (
	"context"

	"github.com/tu-usuario/pos-ledger/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando
// repositorios atados a esa tx. Garantiza que el saldo y la fila del ledger
// se escriban como una sola unidad atómica: o ambos, o ninguno.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		movRepo repository.StockMovementRepository,
		balanceRepo repository.BalanceRepository,
		reservationRepo repository.ReservationRepository,
		productRepo repository.ProductRepository,
	) error) error
}
