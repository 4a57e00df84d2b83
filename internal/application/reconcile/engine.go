package reconcile

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tu-usuario/pos-ledger/internal/application/event"
	"github.com/tu-usuario/pos-ledger/internal/domain"
	"github.com/tu-usuario/pos-ledger/internal/domain/repository"
)

// Engine compara el saldo esperado (derivado del ledger) contra un conteo
// físico y registra la variación. Nunca corrige automáticamente: una
// diferencia requiere un movimiento ADJUSTMENT explícito con motivo, para que
// todo cambio de saldo tenga causa trazable.
type Engine struct {
	sessionRepo  repository.CashSessionRepository
	cashMovRepo  repository.CashMovementRepository
	stockMovRepo repository.StockMovementRepository
	publisher    event.Publisher
}

// NewEngine construye el motor de reconciliación.
func NewEngine(
	sessionRepo repository.CashSessionRepository,
	cashMovRepo repository.CashMovementRepository,
	stockMovRepo repository.StockMovementRepository,
	publisher event.Publisher,
) *Engine {
	if publisher == nil {
		publisher = event.NopPublisher{}
	}
	return &Engine{
		sessionRepo:  sessionRepo,
		cashMovRepo:  cashMovRepo,
		stockMovRepo: stockMovRepo,
		publisher:    publisher,
	}
}

// CashReconciliation resultado de reconciliar una sesión de caja.
type CashReconciliation struct {
	SessionID  string
	Expected   decimal.Decimal
	Counted    decimal.Decimal
	Difference decimal.Decimal
}

// ReconcileSession compara lo contado contra el esperado de la sesión.
// Para una sesión abierta el esperado se suma del ledger; para una cerrada se
// usa el esperado congelado al cierre.
func (e *Engine) ReconcileSession(ctx context.Context, sessionID string, counted decimal.Decimal) (*CashReconciliation, error) {
	if sessionID == "" || counted.IsNegative() {
		return nil, domain.ErrInvalidInput
	}
	session, err := e.sessionRepo.GetByID(sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, domain.ErrNotFound
	}
	var expected decimal.Decimal
	if session.IsOpen() {
		expected, err = e.cashMovRepo.SumBySession(sessionID)
		if err != nil {
			return nil, err
		}
	} else if session.ExpectedAmount != nil {
		expected = *session.ExpectedAmount
	}
	difference := counted.Sub(expected)
	if !difference.IsZero() {
		e.publisher.PublishVariance(ctx, event.VarianceEvent{
			Scope:      event.ScopeCash,
			SessionID:  sessionID,
			Expected:   expected,
			Counted:    counted,
			Delta:      difference,
			DetectedAt: time.Now(),
		})
	}
	return &CashReconciliation{
		SessionID:  sessionID,
		Expected:   expected,
		Counted:    counted,
		Difference: difference,
	}, nil
}

// Variance diferencia entre ledger y conteo físico para un producto.
type Variance struct {
	ProductID  string
	LocationID string
	Expected   decimal.Decimal
	Counted    decimal.Decimal
	Delta      decimal.Decimal
}

// ReconcileInventory compara cantidades contadas contra la suma del ledger,
// producto por producto. Procesa unidad por unidad y honra la cancelación del
// contexto entre productos: al cancelar devuelve lo ya reconciliado sin dejar
// estado parcial sin registrar.
func (e *Engine) ReconcileInventory(ctx context.Context, locationID string, counted map[string]decimal.Decimal) ([]Variance, error) {
	if locationID == "" || len(counted) == 0 {
		return nil, domain.ErrInvalidInput
	}
	productIDs := make([]string, 0, len(counted))
	for id := range counted {
		productIDs = append(productIDs, id)
	}
	sort.Strings(productIDs)

	variances := make([]Variance, 0, len(productIDs))
	for _, productID := range productIDs {
		if err := ctx.Err(); err != nil {
			return variances, err
		}
		// Esperado siempre derivado del ledger, nunca de la tabla de saldos:
		// la verificación debe detectar también un saldo materializado corrupto.
		expected, err := e.stockMovRepo.SumDeltas(productID, locationID)
		if err != nil {
			return nil, err
		}
		countedQty := counted[productID]
		delta := countedQty.Sub(expected)
		variances = append(variances, Variance{
			ProductID:  productID,
			LocationID: locationID,
			Expected:   expected,
			Counted:    countedQty,
			Delta:      delta,
		})
		if !delta.IsZero() {
			e.publisher.PublishVariance(ctx, event.VarianceEvent{
				Scope:      event.ScopeInventory,
				ProductID:  productID,
				LocationID: locationID,
				Expected:   expected,
				Counted:    countedQty,
				Delta:      delta,
				DetectedAt: time.Now(),
			})
		}
	}
	return variances, nil
}
