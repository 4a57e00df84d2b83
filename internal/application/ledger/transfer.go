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

// TransferInput entrada para un traslado entre ubicaciones.
type TransferInput struct {
	ProductID      string
	FromLocationID string
	ToLocationID   string
	Quantity       decimal.Decimal // siempre positiva
	Reason         string
	DocumentType   string
	DocumentID     string
	Lot            string
	Actor          string
}

// TransferResult las dos patas comprometidas de un traslado.
type TransferResult struct {
	TransferID string
	Out        *entity.StockMovement
	In         *entity.StockMovement
}

// Transfer ejecuta un traslado como par TRANSFER_OUT/TRANSFER_IN dentro de
// una sola transacción: o ambas patas comprometen o ninguna. Un traslado
// parcial (origen debitado, destino sin acreditar) nunca es observable.
//
// Los saldos de ambas ubicaciones se bloquean en orden canónico (menor
// location_id primero) para no interbloquearse con un traslado inverso
// concurrente.
func (uc *LedgerUseCase) Transfer(ctx context.Context, input TransferInput) (*TransferResult, error) {
	if input.ProductID == "" || input.FromLocationID == "" || input.ToLocationID == "" {
		return nil, domain.ErrInvalidInput
	}
	if input.FromLocationID == input.ToLocationID || !input.Quantity.IsPositive() {
		return nil, domain.ErrInvalidInput
	}
	product, err := uc.lookupProduct(input.ProductID)
	if err != nil {
		return nil, err
	}
	if err := uc.checkLocation(input.FromLocationID); err != nil {
		return nil, err
	}
	if err := uc.checkLocation(input.ToLocationID); err != nil {
		return nil, err
	}

	transferID := uuid.New().String()
	documentType := input.DocumentType
	documentID := input.DocumentID
	if documentType == "" {
		documentType = entity.DocumentTransfer
		documentID = transferID
	}

	var result *TransferResult
	err = uc.withRetry(ctx, func() error {
		return uc.txRunner.Run(ctx, func(
			movRepo repository.StockMovementRepository,
			balanceRepo repository.BalanceRepository,
			_ repository.ReservationRepository,
			_ repository.ProductRepository,
		) error {
			origin, dest, err := lockPair(balanceRepo, input.ProductID, input.FromLocationID, input.ToLocationID)
			if err != nil {
				return err
			}
			afterOrigin := origin.OnHand.Sub(input.Quantity)
			// El origen respeta el mismo invariante que una salida directa:
			// no puede quedar negativo ni por debajo de lo reservado.
			if afterOrigin.LessThan(origin.Reserved) && !product.AllowNegativeStock {
				return domain.ErrInsufficientStock
			}
			now := time.Now()
			unitCost := product.Cost

			out := &entity.StockMovement{
				ID:             uuid.New().String(),
				ProductID:      input.ProductID,
				LocationID:     input.FromLocationID,
				Type:           entity.StockMovementTransferOut,
				Reason:         input.Reason,
				QuantityBefore: origin.OnHand,
				QuantityDelta:  input.Quantity.Neg(),
				QuantityAfter:  afterOrigin,
				UnitCost:       unitCost,
				DocumentType:   documentType,
				DocumentID:     documentID,
				TransferID:     transferID,
				Lot:            input.Lot,
				Actor:          input.Actor,
				CreatedAt:      now,
			}
			in := &entity.StockMovement{
				ID:             uuid.New().String(),
				ProductID:      input.ProductID,
				LocationID:     input.ToLocationID,
				Type:           entity.StockMovementTransferIn,
				Reason:         input.Reason,
				QuantityBefore: dest.OnHand,
				QuantityDelta:  input.Quantity,
				QuantityAfter:  dest.OnHand.Add(input.Quantity),
				UnitCost:       unitCost,
				DocumentType:   documentType,
				DocumentID:     documentID,
				TransferID:     transferID,
				Lot:            input.Lot,
				Actor:          input.Actor,
				CreatedAt:      now,
			}

			origin.OnHand = afterOrigin
			origin.UpdatedAt = now
			dest.OnHand = dest.OnHand.Add(input.Quantity)
			dest.UpdatedAt = now
			if err := balanceRepo.Upsert(origin); err != nil {
				return err
			}
			if err := balanceRepo.Upsert(dest); err != nil {
				return err
			}
			if err := movRepo.Create(out); err != nil {
				return err
			}
			if err := movRepo.Create(in); err != nil {
				return err
			}
			result = &TransferResult{TransferID: transferID, Out: out, In: in}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	uc.publishMovement(ctx, result.Out)
	uc.publishMovement(ctx, result.In)
	return result, nil
}

// lockPair bloquea los saldos de origen y destino en orden canónico y los
// devuelve en orden lógico (origen, destino).
func lockPair(balanceRepo repository.BalanceRepository, productID, fromID, toID string) (origin, dest *entity.ProductBalance, err error) {
	first, second := fromID, toID
	if second < first {
		first, second = second, first
	}
	balFirst, err := balanceRepo.GetForUpdate(productID, first)
	if err != nil {
		return nil, nil, err
	}
	balSecond, err := balanceRepo.GetForUpdate(productID, second)
	if err != nil {
		return nil, nil, err
	}
	if first == fromID {
		return balFirst, balSecond, nil
	}
	return balSecond, balFirst, nil
}
