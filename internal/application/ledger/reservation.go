package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tu-usuario/pos-ledger/internal/domain"
	"github.com/tu-usuario/pos-ledger/internal/domain/entity"
	"github.com/tu-usuario/pos-ledger/internal/domain/repository"
)

// ReserveInput entrada para retener cantidad de un saldo.
type ReserveInput struct {
	ProductID    string
	LocationID   string
	Quantity     decimal.Decimal // siempre positiva
	DocumentType string
	DocumentID   string
	Actor        string
}

// Reserve retiene cantidad sin mover stock: solo incrementa Reserved,
// reduciendo lo disponible. Falla con ErrInsufficientAvailable si la cantidad
// supera lo disponible y el producto no admite stock negativo.
func (uc *LedgerUseCase) Reserve(ctx context.Context, input ReserveInput) (*entity.Reservation, error) {
	if input.ProductID == "" || input.LocationID == "" || !input.Quantity.IsPositive() {
		return nil, domain.ErrInvalidInput
	}
	product, err := uc.lookupProduct(input.ProductID)
	if err != nil {
		return nil, err
	}
	if err := uc.checkLocation(input.LocationID); err != nil {
		return nil, err
	}

	var res *entity.Reservation
	err = uc.withRetry(ctx, func() error {
		return uc.txRunner.Run(ctx, func(
			_ repository.StockMovementRepository,
			balanceRepo repository.BalanceRepository,
			reservationRepo repository.ReservationRepository,
			_ repository.ProductRepository,
		) error {
			balance, err := balanceRepo.GetForUpdate(input.ProductID, input.LocationID)
			if err != nil {
				return err
			}
			if input.Quantity.GreaterThan(balance.Available()) && !product.AllowNegativeStock {
				return domain.ErrInsufficientAvailable
			}
			now := time.Now()
			balance.Reserved = balance.Reserved.Add(input.Quantity)
			balance.UpdatedAt = now
			if err := balanceRepo.Upsert(balance); err != nil {
				return err
			}
			res = &entity.Reservation{
				ID:           uuid.New().String(),
				ProductID:    input.ProductID,
				LocationID:   input.LocationID,
				Quantity:     input.Quantity,
				Status:       entity.ReservationActive,
				DocumentType: input.DocumentType,
				DocumentID:   input.DocumentID,
				CreatedBy:    input.Actor,
				CreatedAt:    now,
				UpdatedAt:    now,
			}
			return reservationRepo.Create(res)
		})
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// Release libera una reserva activa (ej. carrito abandonado): decrementa
// Reserved sin escribir ninguna fila en el ledger porque nada se movió
// físicamente.
func (uc *LedgerUseCase) Release(ctx context.Context, reservationID string) error {
	if reservationID == "" {
		return domain.ErrInvalidInput
	}
	return uc.withRetry(ctx, func() error {
		return uc.txRunner.Run(ctx, func(
			_ repository.StockMovementRepository,
			balanceRepo repository.BalanceRepository,
			reservationRepo repository.ReservationRepository,
			_ repository.ProductRepository,
		) error {
			res, err := reservationRepo.GetForUpdate(reservationID)
			if err != nil {
				return err
			}
			if res == nil {
				return domain.ErrReferenceNotFound
			}
			if res.Status != entity.ReservationActive {
				return domain.ErrInvalidInput
			}
			balance, err := balanceRepo.GetForUpdate(res.ProductID, res.LocationID)
			if err != nil {
				return err
			}
			now := time.Now()
			balance.Reserved = balance.Reserved.Sub(res.Quantity)
			balance.UpdatedAt = now
			if err := balanceRepo.Upsert(balance); err != nil {
				return err
			}
			return reservationRepo.UpdateStatus(reservationID, entity.ReservationReleased, now)
		})
	})
}

// Fulfill consuma una reserva activa: en una sola transacción decrementa
// Reserved, escribe el movimiento OUT por el mismo camino que RecordMovement
// y marca la reserva como FULFILLED.
func (uc *LedgerUseCase) Fulfill(ctx context.Context, reservationID, reason string) (*entity.StockMovement, error) {
	if reservationID == "" {
		return nil, domain.ErrInvalidInput
	}
	res, err := uc.reservationRepo.GetByID(reservationID)
	if err != nil {
		return nil, err
	}
	if res == nil {
		return nil, domain.ErrReferenceNotFound
	}
	product, err := uc.lookupProduct(res.ProductID)
	if err != nil {
		return nil, err
	}

	var mov *entity.StockMovement
	err = uc.withRetry(ctx, func() error {
		return uc.txRunner.Run(ctx, func(
			movRepo repository.StockMovementRepository,
			balanceRepo repository.BalanceRepository,
			reservationRepo repository.ReservationRepository,
			productRepo repository.ProductRepository,
		) error {
			// Releer con bloqueo: el estado pudo cambiar desde la consulta.
			locked, err := reservationRepo.GetForUpdate(reservationID)
			if err != nil {
				return err
			}
			if locked == nil {
				return domain.ErrReferenceNotFound
			}
			if locked.Status != entity.ReservationActive {
				return domain.ErrInvalidInput
			}
			balance, err := balanceRepo.GetForUpdate(locked.ProductID, locked.LocationID)
			if err != nil {
				return err
			}
			now := time.Now()
			balance.Reserved = balance.Reserved.Sub(locked.Quantity)
			balance.UpdatedAt = now
			if err := balanceRepo.Upsert(balance); err != nil {
				return err
			}
			m, err := applyMovement(movRepo, balanceRepo, productRepo, product, MovementInput{
				ProductID:    locked.ProductID,
				LocationID:   locked.LocationID,
				Type:         entity.StockMovementOUT,
				Delta:        locked.Quantity.Neg(),
				Reason:       reason,
				DocumentType: locked.DocumentType,
				DocumentID:   locked.DocumentID,
				Actor:        locked.CreatedBy,
			}, now)
			if err != nil {
				return err
			}
			mov = m
			return reservationRepo.UpdateStatus(reservationID, entity.ReservationFulfilled, now)
		})
	})
	if err != nil {
		return nil, err
	}
	uc.publishMovement(ctx, mov)
	return mov, nil
}

// ListActiveReservations expone las reservas vigentes de un par
// (producto, ubicación) para que el caller implemente expiración si la
// necesita; el motor no expira reservas por sí mismo.
func (uc *LedgerUseCase) ListActiveReservations(_ context.Context, productID, locationID string) ([]*entity.Reservation, error) {
	if productID == "" || locationID == "" {
		return nil, domain.ErrInvalidInput
	}
	return uc.reservationRepo.ListActive(productID, locationID)
}
