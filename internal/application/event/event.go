package event

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Ámbitos de variación detectada por la reconciliación.
const (
	ScopeCash      = "CASH"
	ScopeInventory = "INVENTORY"
)

// MovementEvent se publica tras el commit de cada movimiento de stock.
type MovementEvent struct {
	MovementID string
	ProductID  string
	LocationID string
	Type       string
	Delta      decimal.Decimal
	Reason     string
	Actor      string
	OccurredAt time.Time
}

// CashMovementEvent se publica tras el commit de cada movimiento de caja.
type CashMovementEvent struct {
	MovementID string
	SessionID  string
	RegisterID string
	Type       string
	Amount     decimal.Decimal
	Actor      string
	OccurredAt time.Time
}

// VarianceEvent se publica cuando la reconciliación detecta una diferencia
// entre el saldo esperado (ledger) y el conteo físico.
type VarianceEvent struct {
	Scope      string // CASH o INVENTORY
	SessionID  string // solo CASH
	ProductID  string // solo INVENTORY
	LocationID string // solo INVENTORY
	Expected   decimal.Decimal
	Counted    decimal.Decimal
	Delta      decimal.Decimal
	DetectedAt time.Time
}

// Publisher es el puerto de salida hacia el subsistema de auditoría y
// notificaciones. El motor publica; persistir o alertar es problema de otro.
// El diseño original arrastraba dos mecanismos de auditoría con esquemas
// divergentes; aquí hay una sola interfaz de publicación.
type Publisher interface {
	PublishMovement(ctx context.Context, e MovementEvent)
	PublishCashMovement(ctx context.Context, e CashMovementEvent)
	PublishVariance(ctx context.Context, e VarianceEvent)
}

// NopPublisher descarta todos los eventos. Útil en tests.
type NopPublisher struct{}

func (NopPublisher) PublishMovement(context.Context, MovementEvent)         {}
func (NopPublisher) PublishCashMovement(context.Context, CashMovementEvent) {}
func (NopPublisher) PublishVariance(context.Context, VarianceEvent)         {}
