package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de movimiento de stock.
const (
	StockMovementIN          = "IN"           // entrada (compra, devolución)
	StockMovementOUT         = "OUT"          // salida (venta, merma)
	StockMovementTransferOut = "TRANSFER_OUT" // pata de salida de un traslado
	StockMovementTransferIn  = "TRANSFER_IN"  // pata de entrada de un traslado
	StockMovementAdjustment  = "ADJUSTMENT"   // ajuste tras conteo físico (motivo obligatorio)
)

// Tipos de documento de origen de un movimiento.
const (
	DocumentSale        = "SALE"
	DocumentPurchase    = "PURCHASE"
	DocumentTransfer    = "TRANSFER"
	DocumentAdjustment  = "ADJUSTMENT"
	DocumentReservation = "RESERVATION"
)

// StockMovement es una entrada inmutable del ledger de inventario.
// Una vez escrita nunca se actualiza ni se borra; las correcciones se hacen
// con un movimiento nuevo en sentido contrario.
// Invariante: QuantityAfter = QuantityBefore + QuantityDelta, y QuantityBefore
// es el OnHand del saldo al momento de escribir (misma transacción).
type StockMovement struct {
	ID             string
	ProductID      string
	LocationID     string
	Zone           string
	Type           string
	Reason         string
	QuantityBefore decimal.Decimal
	QuantityDelta  decimal.Decimal // firmado: positivo entrada, negativo salida
	QuantityAfter  decimal.Decimal
	UnitCost       decimal.Decimal
	DocumentType   string
	DocumentID     string
	TransferID     string // comparten las dos patas de un traslado; "" si no aplica
	Lot            string
	Actor          string
	CreatedAt      time.Time
}
