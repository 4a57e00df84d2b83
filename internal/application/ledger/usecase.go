package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tu-usuario/pos-ledger/internal/application/event"
	"github.com/tu-usuario/pos-ledger/internal/domain"
	"github.com/tu-usuario/pos-ledger/internal/domain/entity"
	"github.com/tu-usuario/pos-ledger/internal/domain/ledger"
	"github.com/tu-usuario/pos-ledger/internal/domain/repository"
)

// maxAttempts reintentos ante domain.ErrConflict antes de devolverlo al caller.
const maxAttempts = 3

// LedgerUseCase es el único punto de entrada para todo cambio de stock:
// ventas, compras, ajustes, reservas y traslados pasan por aquí. Ningún otro
// código muta saldos directamente; eso elimina por construcción la validación
// duplicada en múltiples call sites.
//
// Cada operación bloquea la fila del saldo (SELECT FOR UPDATE), valida contra
// el saldo vigente y escribe movimiento + saldo en la misma transacción.
// Dos movimientos concurrentes sobre el mismo (producto, ubicación)
// serializan: el segundo lee el saldo solo después del commit del primero.
type LedgerUseCase struct {
	txRunner        TxRunner
	productRepo     repository.ProductRepository
	locationRepo    repository.LocationRepository
	reservationRepo repository.ReservationRepository
	publisher       event.Publisher
}

// NewLedgerUseCase construye el caso de uso.
func NewLedgerUseCase(
	txRunner TxRunner,
	productRepo repository.ProductRepository,
	locationRepo repository.LocationRepository,
	reservationRepo repository.ReservationRepository,
	publisher event.Publisher,
) *LedgerUseCase {
	if publisher == nil {
		publisher = event.NopPublisher{}
	}
	return &LedgerUseCase{
		txRunner:        txRunner,
		productRepo:     productRepo,
		locationRepo:    locationRepo,
		reservationRepo: reservationRepo,
		publisher:       publisher,
	}
}

// MovementInput entrada para registrar un movimiento de stock.
// Delta es firmado: positivo para IN, negativo para OUT; ADJUSTMENT admite
// ambos signos y exige motivo. MovementID es opcional: si el caller lo
// provee actúa como clave de idempotencia (reprocesar el mismo ID no aplica
// el movimiento dos veces).
type MovementInput struct {
	MovementID   string
	ProductID    string
	LocationID   string
	Zone         string
	Type         string // IN, OUT o ADJUSTMENT; las patas TRANSFER_* las escribe Transfer
	Delta        decimal.Decimal
	Reason       string
	UnitCost     *decimal.Decimal // obligatorio en IN
	DocumentType string
	DocumentID   string
	Lot          string
	Actor        string
}

// RecordMovement valida la entrada, abre una transacción con bloqueo de fila
// y escribe movimiento + saldo de forma atómica. Reintenta ante ErrConflict.
func (uc *LedgerUseCase) RecordMovement(ctx context.Context, input MovementInput) (*entity.StockMovement, error) {
	if err := validateMovement(input); err != nil {
		return nil, err
	}
	product, err := uc.lookupProduct(input.ProductID)
	if err != nil {
		return nil, err
	}
	if err := uc.checkLocation(input.LocationID); err != nil {
		return nil, err
	}

	var mov *entity.StockMovement
	err = uc.withRetry(ctx, func() error {
		return uc.txRunner.Run(ctx, func(
			movRepo repository.StockMovementRepository,
			balanceRepo repository.BalanceRepository,
			_ repository.ReservationRepository,
			productRepo repository.ProductRepository,
		) error {
			m, err := applyMovement(movRepo, balanceRepo, productRepo, product, input, time.Now())
			if err != nil {
				return err
			}
			mov = m
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	uc.publishMovement(ctx, mov)
	return mov, nil
}

// validateMovement valida tipo, signo y campos obligatorios antes de tocar la BD.
func validateMovement(input MovementInput) error {
	if input.ProductID == "" || input.LocationID == "" || input.Delta.IsZero() {
		return domain.ErrInvalidInput
	}
	if input.DocumentType == "" || input.DocumentID == "" {
		return domain.ErrInvalidInput
	}
	switch input.Type {
	case entity.StockMovementIN:
		if !input.Delta.IsPositive() {
			return domain.ErrInvalidInput
		}
		if input.UnitCost == nil || input.UnitCost.IsNegative() {
			return domain.ErrInvalidInput
		}
	case entity.StockMovementOUT:
		if !input.Delta.IsNegative() {
			return domain.ErrInvalidInput
		}
	case entity.StockMovementAdjustment:
		// Corregir un saldo sin motivo rompe la trazabilidad del ledger.
		if input.Reason == "" {
			return domain.ErrInvalidInput
		}
	default:
		return domain.ErrInvalidInput
	}
	return nil
}

func (uc *LedgerUseCase) lookupProduct(id string) (*entity.Product, error) {
	product, err := uc.productRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	return product, nil
}

func (uc *LedgerUseCase) checkLocation(id string) error {
	location, err := uc.locationRepo.GetByID(id)
	if err != nil {
		return err
	}
	if location == nil {
		return domain.ErrNotFound
	}
	if !location.Active {
		return domain.ErrInvalidInput
	}
	return nil
}

// applyMovement ejecuta la escritura dentro de la transacción del caller:
// bloquea la fila del saldo, valida no-negatividad, actualiza costo promedio
// en entradas y persiste saldo + movimiento. También la usan Fulfill y
// Transfer para que toda alta al ledger pase por el mismo camino.
func applyMovement(
	movRepo repository.StockMovementRepository,
	balanceRepo repository.BalanceRepository,
	productRepo repository.ProductRepository,
	product *entity.Product,
	input MovementInput,
	now time.Time,
) (*entity.StockMovement, error) {
	// Idempotencia: un ID ya comprometido no se re-aplica.
	if input.MovementID != "" {
		existing, err := movRepo.GetByID(input.MovementID)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return existing, nil
		}
	}

	balance, err := balanceRepo.GetForUpdate(input.ProductID, input.LocationID)
	if err != nil {
		return nil, err
	}
	after := balance.OnHand.Add(input.Delta)
	if input.Delta.IsNegative() && !product.AllowNegativeStock {
		// Una salida no puede dejar el saldo negativo ni consumir cantidad
		// retenida por reservas activas: OnHand - Reserved nunca baja de cero.
		if after.LessThan(balance.Reserved) {
			return nil, domain.ErrInsufficientStock
		}
	}

	unitCost := product.Cost
	if input.UnitCost != nil && input.Delta.IsPositive() {
		unitCost = *input.UnitCost
		newCost := ledger.AverageCost(balance.OnHand, product.Cost, input.Delta, unitCost)
		if err := productRepo.UpdateCost(product.ID, newCost); err != nil {
			return nil, err
		}
	}

	id := input.MovementID
	if id == "" {
		id = uuid.New().String()
	}
	mov := &entity.StockMovement{
		ID:             id,
		ProductID:      input.ProductID,
		LocationID:     input.LocationID,
		Zone:           input.Zone,
		Type:           input.Type,
		Reason:         input.Reason,
		QuantityBefore: balance.OnHand,
		QuantityDelta:  input.Delta,
		QuantityAfter:  after,
		UnitCost:       unitCost,
		DocumentType:   input.DocumentType,
		DocumentID:     input.DocumentID,
		Lot:            input.Lot,
		Actor:          input.Actor,
		CreatedAt:      now,
	}

	balance.OnHand = after
	balance.UpdatedAt = now
	if err := balanceRepo.Upsert(balance); err != nil {
		return nil, err
	}
	if err := movRepo.Create(mov); err != nil {
		return nil, err
	}
	return mov, nil
}

// withRetry reintenta fn solo ante domain.ErrConflict (escritura concurrente
// detectada), hasta maxAttempts. Cualquier otro error es del caller y se
// devuelve sin reintento.
func (uc *LedgerUseCase) withRetry(ctx context.Context, fn func() error) error {
	var err error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err = fn()
		if err == nil || !errors.Is(err, domain.ErrConflict) {
			return err
		}
		if ctx.Err() != nil {
			return err
		}
	}
	return err
}

func (uc *LedgerUseCase) publishMovement(ctx context.Context, mov *entity.StockMovement) {
	uc.publisher.PublishMovement(ctx, event.MovementEvent{
		MovementID: mov.ID,
		ProductID:  mov.ProductID,
		LocationID: mov.LocationID,
		Type:       mov.Type,
		Delta:      mov.QuantityDelta,
		Reason:     mov.Reason,
		Actor:      mov.Actor,
		OccurredAt: mov.CreatedAt,
	})
}
