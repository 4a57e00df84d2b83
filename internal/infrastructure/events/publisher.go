// Package events implementa el puerto de publicación de eventos sobre el
// logger estructurado. Cada evento sale como una línea JSON con un campo
// "event" estable, lista para ser recogida por el pipeline de auditoría.
package events

import (
	"context"

	"github.com/tu-usuario/pos-ledger/internal/application/event"
	"github.com/tu-usuario/pos-ledger/pkg/logger"
)

var _ event.Publisher = (*LogPublisher)(nil)

// LogPublisher publica eventos del motor como entradas de log estructuradas.
type LogPublisher struct {
	log *logger.Logger
}

// NewLogPublisher crea el publicador sobre el logger dado.
func NewLogPublisher(log *logger.Logger) *LogPublisher {
	return &LogPublisher{log: log.Component("events")}
}

func (p *LogPublisher) PublishMovement(_ context.Context, e event.MovementEvent) {
	p.log.Info().
		Str("event", "stock_movement").
		Str("movement_id", e.MovementID).
		Str("product_id", e.ProductID).
		Str("location_id", e.LocationID).
		Str("type", e.Type).
		Str("delta", e.Delta.String()).
		Str("reason", e.Reason).
		Str("actor", e.Actor).
		Time("occurred_at", e.OccurredAt).
		Msg("movimiento de stock registrado")
}

func (p *LogPublisher) PublishCashMovement(_ context.Context, e event.CashMovementEvent) {
	p.log.Info().
		Str("event", "cash_movement").
		Str("movement_id", e.MovementID).
		Str("session_id", e.SessionID).
		Str("register_id", e.RegisterID).
		Str("type", e.Type).
		Str("amount", e.Amount.String()).
		Str("actor", e.Actor).
		Time("occurred_at", e.OccurredAt).
		Msg("movimiento de caja registrado")
}

func (p *LogPublisher) PublishVariance(_ context.Context, e event.VarianceEvent) {
	evt := p.log.Warn().
		Str("event", "variance").
		Str("scope", e.Scope).
		Str("expected", e.Expected.String()).
		Str("counted", e.Counted.String()).
		Str("delta", e.Delta.String()).
		Time("detected_at", e.DetectedAt)
	if e.Scope == event.ScopeCash {
		evt = evt.Str("session_id", e.SessionID)
	} else {
		evt = evt.Str("product_id", e.ProductID).Str("location_id", e.LocationID)
	}
	evt.Msg("variación detectada en reconciliación")
}
