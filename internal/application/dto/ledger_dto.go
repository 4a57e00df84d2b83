package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/tu-usuario/pos-ledger/internal/domain/entity"
)

// RecordMovementRequest body para POST /api/stock/movements.
// MovementID es opcional: si el cliente lo envía, reintentar la misma
// petición no duplica el movimiento.
type RecordMovementRequest struct {
	MovementID   string           `json:"movement_id" validate:"omitempty,uuid4"`
	ProductID    string           `json:"product_id" validate:"required"`
	LocationID   string           `json:"location_id" validate:"required"`
	Zone         string           `json:"zone"`
	Type         string           `json:"type" validate:"required,oneof=IN OUT ADJUSTMENT"`
	Delta        decimal.Decimal  `json:"delta" validate:"required"`
	Reason       string           `json:"reason"`
	UnitCost     *decimal.Decimal `json:"unit_cost,omitempty"`
	DocumentType string           `json:"document_type" validate:"required"`
	DocumentID   string           `json:"document_id" validate:"required"`
	Lot          string           `json:"lot"`
}

// StockMovementResponse salida de un movimiento del ledger.
type StockMovementResponse struct {
	ID             string          `json:"id"`
	ProductID      string          `json:"product_id"`
	LocationID     string          `json:"location_id"`
	Zone           string          `json:"zone,omitempty"`
	Type           string          `json:"type"`
	Reason         string          `json:"reason,omitempty"`
	QuantityBefore decimal.Decimal `json:"quantity_before"`
	QuantityDelta  decimal.Decimal `json:"quantity_delta"`
	QuantityAfter  decimal.Decimal `json:"quantity_after"`
	UnitCost       decimal.Decimal `json:"unit_cost"`
	DocumentType   string          `json:"document_type"`
	DocumentID     string          `json:"document_id"`
	TransferID     string          `json:"transfer_id,omitempty"`
	Lot            string          `json:"lot,omitempty"`
	Actor          string          `json:"actor"`
	CreatedAt      time.Time       `json:"created_at"`
}

// ToStockMovementResponse mapea la entidad a la respuesta HTTP.
func ToStockMovementResponse(m *entity.StockMovement) *StockMovementResponse {
	return &StockMovementResponse{
		ID:             m.ID,
		ProductID:      m.ProductID,
		LocationID:     m.LocationID,
		Zone:           m.Zone,
		Type:           m.Type,
		Reason:         m.Reason,
		QuantityBefore: m.QuantityBefore,
		QuantityDelta:  m.QuantityDelta,
		QuantityAfter:  m.QuantityAfter,
		UnitCost:       m.UnitCost,
		DocumentType:   m.DocumentType,
		DocumentID:     m.DocumentID,
		TransferID:     m.TransferID,
		Lot:            m.Lot,
		Actor:          m.Actor,
		CreatedAt:      m.CreatedAt,
	}
}

// ListMovementsRequest filtros de query para GET /api/stock/movements.
type ListMovementsRequest struct {
	ProductID  string     `query:"product_id"`
	LocationID string     `query:"location_id"`
	Type       string     `query:"type" validate:"omitempty,oneof=IN OUT TRANSFER_OUT TRANSFER_IN ADJUSTMENT"`
	Reason     string     `query:"reason"`
	From       *time.Time `query:"from"`
	To         *time.Time `query:"to"`
	PageRequest
}

// BalanceResponse saldo de un producto en una ubicación. Available siempre
// se deriva de OnHand - Reserved.
type BalanceResponse struct {
	ProductID  string          `json:"product_id"`
	LocationID string          `json:"location_id"`
	Zone       string          `json:"zone,omitempty"`
	OnHand     decimal.Decimal `json:"on_hand"`
	Reserved   decimal.Decimal `json:"reserved"`
	Available  decimal.Decimal `json:"available"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// ToBalanceResponse mapea el saldo a la respuesta HTTP.
func ToBalanceResponse(b *entity.ProductBalance) *BalanceResponse {
	return &BalanceResponse{
		ProductID:  b.ProductID,
		LocationID: b.LocationID,
		Zone:       b.Zone,
		OnHand:     b.OnHand,
		Reserved:   b.Reserved,
		Available:  b.Available(),
		UpdatedAt:  b.UpdatedAt,
	}
}

// VerifyBalanceResponse resultado de verificar un saldo contra el ledger.
type VerifyBalanceResponse struct {
	ProductID  string          `json:"product_id"`
	LocationID string          `json:"location_id"`
	OnHand     decimal.Decimal `json:"on_hand"`
	LedgerSum  decimal.Decimal `json:"ledger_sum"`
	Consistent bool            `json:"consistent"`
}

// ReserveRequest body para POST /api/stock/reservations.
type ReserveRequest struct {
	ProductID    string          `json:"product_id" validate:"required"`
	LocationID   string          `json:"location_id" validate:"required"`
	Quantity     decimal.Decimal `json:"quantity" validate:"required"`
	DocumentType string          `json:"document_type" validate:"required"`
	DocumentID   string          `json:"document_id" validate:"required"`
}

// FulfillRequest body para POST /api/stock/reservations/:id/fulfill.
type FulfillRequest struct {
	Reason string `json:"reason"`
}

// ReservationResponse salida de una reserva.
type ReservationResponse struct {
	ID           string          `json:"id"`
	ProductID    string          `json:"product_id"`
	LocationID   string          `json:"location_id"`
	Quantity     decimal.Decimal `json:"quantity"`
	Status       string          `json:"status"`
	DocumentType string          `json:"document_type"`
	DocumentID   string          `json:"document_id"`
	CreatedBy    string          `json:"created_by"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// ToReservationResponse mapea la reserva a la respuesta HTTP.
func ToReservationResponse(r *entity.Reservation) *ReservationResponse {
	return &ReservationResponse{
		ID:           r.ID,
		ProductID:    r.ProductID,
		LocationID:   r.LocationID,
		Quantity:     r.Quantity,
		Status:       r.Status,
		DocumentType: r.DocumentType,
		DocumentID:   r.DocumentID,
		CreatedBy:    r.CreatedBy,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

// TransferRequest body para POST /api/stock/transfers.
type TransferRequest struct {
	ProductID      string          `json:"product_id" validate:"required"`
	FromLocationID string          `json:"from_location_id" validate:"required"`
	ToLocationID   string          `json:"to_location_id" validate:"required"`
	Quantity       decimal.Decimal `json:"quantity" validate:"required"`
	Reason         string          `json:"reason"`
	DocumentType   string          `json:"document_type"`
	DocumentID     string          `json:"document_id"`
	Lot            string          `json:"lot"`
}

// TransferResponse las dos patas comprometidas de un traslado.
type TransferResponse struct {
	TransferID string                 `json:"transfer_id"`
	Out        *StockMovementResponse `json:"out"`
	In         *StockMovementResponse `json:"in"`
}

// InventoryReconciliationRequest body para POST /api/reconciliation/inventory.
type InventoryReconciliationRequest struct {
	LocationID string                      `json:"location_id" validate:"required"`
	Counts     []InventoryCountLineRequest `json:"counts" validate:"required,min=1,dive"`
}

// InventoryCountLineRequest conteo físico de un producto.
type InventoryCountLineRequest struct {
	ProductID string          `json:"product_id" validate:"required"`
	Counted   decimal.Decimal `json:"counted"`
}

// VarianceResponse diferencia detectada entre ledger y conteo físico.
type VarianceResponse struct {
	ProductID  string          `json:"product_id"`
	LocationID string          `json:"location_id"`
	Expected   decimal.Decimal `json:"expected"`
	Counted    decimal.Decimal `json:"counted"`
	Delta      decimal.Decimal `json:"delta"`
}
