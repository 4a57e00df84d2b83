package ledger

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/tu-usuario/pos-ledger/internal/domain"
	"github.com/tu-usuario/pos-ledger/internal/domain/entity"
	"github.com/tu-usuario/pos-ledger/internal/domain/repository"
)

// StockQueryService consultas de solo lectura sobre saldos y ledger.
// No bloquea filas: lee un snapshot consistente. Lo consume reporting,
// que no aporta lógica propia sobre estos datos.
type StockQueryService struct {
	balanceRepo  repository.BalanceRepository
	movementRepo repository.StockMovementRepository
}

// NewStockQueryService construye el servicio de consultas.
func NewStockQueryService(
	balanceRepo repository.BalanceRepository,
	movementRepo repository.StockMovementRepository,
) *StockQueryService {
	return &StockQueryService{balanceRepo: balanceRepo, movementRepo: movementRepo}
}

// GetBalance devuelve el saldo vigente del par (producto, ubicación).
// Un par sin movimientos devuelve saldo cero, no error.
func (s *StockQueryService) GetBalance(_ context.Context, productID, locationID string) (*entity.ProductBalance, error) {
	if productID == "" || locationID == "" {
		return nil, domain.ErrInvalidInput
	}
	return s.balanceRepo.Get(productID, locationID)
}

// ListBalancesByLocation devuelve todos los saldos de una ubicación.
func (s *StockQueryService) ListBalancesByLocation(_ context.Context, locationID string) ([]*entity.ProductBalance, error) {
	if locationID == "" {
		return nil, domain.ErrInvalidInput
	}
	return s.balanceRepo.ListByLocation(locationID)
}

// ListMovements devuelve el historial de movimientos filtrado por
// producto/ubicación/tipo/motivo/fechas.
func (s *StockQueryService) ListMovements(_ context.Context, filter repository.StockMovementFilter) ([]*entity.StockMovement, error) {
	if filter.Limit <= 0 {
		filter.Limit = 50
	}
	return s.movementRepo.List(filter)
}

// BalanceVerification resultado de verificar un saldo contra el ledger.
type BalanceVerification struct {
	ProductID  string
	LocationID string
	OnHand     decimal.Decimal
	LedgerSum  decimal.Decimal
	Consistent bool
}

// VerifyBalance comprueba el invariante central: el saldo en mano debe ser
// igual a la suma de todos los deltas del ledger para el par. Reproducir el
// ledger desde cero reconstruye la tabla de saldos exactamente.
func (s *StockQueryService) VerifyBalance(_ context.Context, productID, locationID string) (*BalanceVerification, error) {
	if productID == "" || locationID == "" {
		return nil, domain.ErrInvalidInput
	}
	balance, err := s.balanceRepo.Get(productID, locationID)
	if err != nil {
		return nil, err
	}
	sum, err := s.movementRepo.SumDeltas(productID, locationID)
	if err != nil {
		return nil, err
	}
	return &BalanceVerification{
		ProductID:  productID,
		LocationID: locationID,
		OnHand:     balance.OnHand,
		LedgerSum:  sum,
		Consistent: balance.OnHand.Equal(sum),
	}, nil
}
