package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/tu-usuario/pos-ledger/internal/domain/entity"
)

// CountLineRequest línea de arqueo: cuántas piezas de una denominación.
type CountLineRequest struct {
	Denomination decimal.Decimal `json:"denomination" validate:"required"`
	Quantity     int64           `json:"quantity" validate:"min=0"`
}

// OpenSessionRequest body para POST /api/cash/sessions.
// OpeningCount es opcional; si viene, debe cuadrar con OpeningAmount.
type OpenSessionRequest struct {
	RegisterID    string             `json:"register_id" validate:"required"`
	OpeningAmount decimal.Decimal    `json:"opening_amount"`
	OpeningCount  []CountLineRequest `json:"opening_count" validate:"omitempty,dive"`
}

// CashMovementRequest body para POST /api/cash/sessions/:id/movements.
type CashMovementRequest struct {
	Type          string          `json:"type" validate:"required,oneof=SALE PAYMENT EXPENSE WITHDRAWAL DEPOSIT"`
	Amount        decimal.Decimal `json:"amount" validate:"required"`
	PaymentMethod string          `json:"payment_method" validate:"omitempty,oneof=CASH CARD TRANSFER"`
	DocumentType  string          `json:"document_type"`
	DocumentID    string          `json:"document_id"`
	Notes         string          `json:"notes"`
}

// RegisterCountRequest body para POST /api/cash/sessions/:id/counts.
type RegisterCountRequest struct {
	TotalCounted decimal.Decimal    `json:"total_counted"`
	Lines        []CountLineRequest `json:"lines" validate:"required,min=1,dive"`
}

// CloseSessionRequest body para POST /api/cash/sessions/:id/close.
type CloseSessionRequest struct {
	CountedAmount decimal.Decimal    `json:"counted_amount"`
	ClosingCount  []CountLineRequest `json:"closing_count" validate:"omitempty,dive"`
}

// ReconcileSessionRequest body para POST /api/reconciliation/cash.
type ReconcileSessionRequest struct {
	SessionID string          `json:"session_id" validate:"required"`
	Counted   decimal.Decimal `json:"counted"`
}

// CashSessionResponse salida de una sesión de caja.
type CashSessionResponse struct {
	ID             string           `json:"id"`
	RegisterID     string           `json:"register_id"`
	OpenedBy       string           `json:"opened_by"`
	OpenedAt       time.Time        `json:"opened_at"`
	OpeningAmount  decimal.Decimal  `json:"opening_amount"`
	Status         string           `json:"status"`
	ClosedBy       string           `json:"closed_by,omitempty"`
	ClosedAt       *time.Time       `json:"closed_at,omitempty"`
	ClosingAmount  *decimal.Decimal `json:"closing_amount,omitempty"`
	ExpectedAmount *decimal.Decimal `json:"expected_amount,omitempty"`
	Difference     *decimal.Decimal `json:"difference,omitempty"`
}

// ToCashSessionResponse mapea la sesión a la respuesta HTTP.
func ToCashSessionResponse(s *entity.CashSession) *CashSessionResponse {
	return &CashSessionResponse{
		ID:             s.ID,
		RegisterID:     s.RegisterID,
		OpenedBy:       s.OpenedBy,
		OpenedAt:       s.OpenedAt,
		OpeningAmount:  s.OpeningAmount,
		Status:         s.Status,
		ClosedBy:       s.ClosedBy,
		ClosedAt:       s.ClosedAt,
		ClosingAmount:  s.ClosingAmount,
		ExpectedAmount: s.ExpectedAmount,
		Difference:     s.Difference,
	}
}

// CashMovementResponse salida de un movimiento de caja.
type CashMovementResponse struct {
	ID            string          `json:"id"`
	SessionID     string          `json:"session_id"`
	Type          string          `json:"type"`
	Amount        decimal.Decimal `json:"amount"`
	BalanceBefore decimal.Decimal `json:"balance_before"`
	BalanceAfter  decimal.Decimal `json:"balance_after"`
	PaymentMethod string          `json:"payment_method,omitempty"`
	DocumentType  string          `json:"document_type,omitempty"`
	DocumentID    string          `json:"document_id,omitempty"`
	Notes         string          `json:"notes,omitempty"`
	Actor         string          `json:"actor"`
	CreatedAt     time.Time       `json:"created_at"`
}

// ToCashMovementResponse mapea el movimiento a la respuesta HTTP.
func ToCashMovementResponse(m *entity.CashMovement) *CashMovementResponse {
	return &CashMovementResponse{
		ID:            m.ID,
		SessionID:     m.SessionID,
		Type:          m.Type,
		Amount:        m.Amount,
		BalanceBefore: m.BalanceBefore,
		BalanceAfter:  m.BalanceAfter,
		PaymentMethod: m.PaymentMethod,
		DocumentType:  m.DocumentType,
		DocumentID:    m.DocumentID,
		Notes:         m.Notes,
		Actor:         m.Actor,
		CreatedAt:     m.CreatedAt,
	}
}

// CashCountResponse salida de un arqueo con sus líneas.
type CashCountResponse struct {
	ID           string              `json:"id"`
	SessionID    string              `json:"session_id"`
	Type         string              `json:"type"`
	TotalCounted decimal.Decimal     `json:"total_counted"`
	CountedBy    string              `json:"counted_by"`
	CreatedAt    time.Time           `json:"created_at"`
	Details      []CashCountLineItem `json:"details"`
}

// CashCountLineItem línea de arqueo con su importe derivado.
type CashCountLineItem struct {
	Denomination decimal.Decimal `json:"denomination"`
	Quantity     int64           `json:"quantity"`
	Amount       decimal.Decimal `json:"amount"`
}

// ToCashCountResponse mapea el arqueo a la respuesta HTTP.
func ToCashCountResponse(c *entity.CashCount) *CashCountResponse {
	details := make([]CashCountLineItem, 0, len(c.Details))
	for _, d := range c.Details {
		details = append(details, CashCountLineItem{
			Denomination: d.DenominationValue,
			Quantity:     d.Quantity,
			Amount:       d.Amount(),
		})
	}
	return &CashCountResponse{
		ID:           c.ID,
		SessionID:    c.SessionID,
		Type:         c.Type,
		TotalCounted: c.TotalCounted,
		CountedBy:    c.CountedBy,
		CreatedAt:    c.CreatedAt,
		Details:      details,
	}
}

// SessionSummaryResponse resumen de una sesión: esperado, totales por tipo y arqueos.
type SessionSummaryResponse struct {
	Session  *CashSessionResponse       `json:"session"`
	Expected decimal.Decimal            `json:"expected"`
	Totals   map[string]decimal.Decimal `json:"totals"`
	Counts   []*CashCountResponse       `json:"counts"`
}

// CashReconciliationResponse resultado de reconciliar una sesión.
type CashReconciliationResponse struct {
	SessionID  string          `json:"session_id"`
	Expected   decimal.Decimal `json:"expected"`
	Counted    decimal.Decimal `json:"counted"`
	Difference decimal.Decimal `json:"difference"`
}
