package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de una reserva.
const (
	ReservationActive    = "ACTIVE"
	ReservationFulfilled = "FULFILLED"
	ReservationReleased  = "RELEASED"
)

// Reservation es una retención de cantidad sobre un saldo: reduce lo
// disponible sin mover stock. Al cumplirse genera el movimiento OUT; al
// liberarse (carrito abandonado) no deja rastro en el ledger porque nada se
// movió físicamente. Las reservas no expiran solas; el caller implementa la
// expiración con ListActive.
type Reservation struct {
	ID           string
	ProductID    string
	LocationID   string
	Quantity     decimal.Decimal
	Status       string
	DocumentType string
	DocumentID   string
	CreatedBy    string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
