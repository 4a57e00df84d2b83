package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/tu-usuario/pos-ledger/internal/domain"
	"github.com/tu-usuario/pos-ledger/internal/domain/entity"
	"github.com/tu-usuario/pos-ledger/internal/domain/repository"
)

var _ repository.CashMovementRepository = (*CashMovementRepo)(nil)

const cashMovementColumns = `id, session_id, type, amount, balance_before, balance_after,
	payment_method, document_type, document_id, notes, actor, created_at`

// CashMovementRepo implementación del ledger de caja sobre PostgreSQL
// (usable con pool o tx). Append-only.
type CashMovementRepo struct {
	q Querier
}

// NewCashMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewCashMovementRepository(q Querier) *CashMovementRepo {
	return &CashMovementRepo{q: q}
}

// Create persiste un movimiento de caja.
func (r *CashMovementRepo) Create(movement *entity.CashMovement) error {
	query := `
		INSERT INTO cash_movements (` + cashMovementColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := r.q.Exec(context.Background(), query,
		movement.ID, movement.SessionID, movement.Type, movement.Amount,
		movement.BalanceBefore, movement.BalanceAfter, movement.PaymentMethod,
		nullable(movement.DocumentType), nullable(movement.DocumentID),
		nullable(movement.Notes), nullable(movement.Actor), movement.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("create cash movement: %w", err)
	}
	return nil
}

// ListBySession movimientos de una sesión en orden cronológico.
func (r *CashMovementRepo) ListBySession(sessionID string) ([]*entity.CashMovement, error) {
	query := `SELECT ` + cashMovementColumns + ` FROM cash_movements WHERE session_id = $1 ORDER BY created_at`
	rows, err := r.q.Query(context.Background(), query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list cash movements: %w", err)
	}
	defer rows.Close()
	var list []*entity.CashMovement
	for rows.Next() {
		m, err := scanCashMovement(rows)
		if err != nil {
			return nil, fmt.Errorf("scan cash movement: %w", err)
		}
		list = append(list, m)
	}
	return list, rows.Err()
}

// SumBySession suma los importes firmados de la sesión.
func (r *CashMovementRepo) SumBySession(sessionID string) (decimal.Decimal, error) {
	query := `SELECT COALESCE(SUM(amount), 0) FROM cash_movements WHERE session_id = $1`
	var sum decimal.Decimal
	if err := r.q.QueryRow(context.Background(), query, sessionID).Scan(&sum); err != nil {
		return decimal.Zero, fmt.Errorf("sum cash movements: %w", err)
	}
	return sum, nil
}

// TotalsByType agrupa los importes de la sesión por tipo de movimiento.
func (r *CashMovementRepo) TotalsByType(sessionID string) (map[string]decimal.Decimal, error) {
	query := `SELECT type, COALESCE(SUM(amount), 0) FROM cash_movements WHERE session_id = $1 GROUP BY type`
	rows, err := r.q.Query(context.Background(), query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("totals by type: %w", err)
	}
	defer rows.Close()
	totals := make(map[string]decimal.Decimal)
	for rows.Next() {
		var movType string
		var total decimal.Decimal
		if err := rows.Scan(&movType, &total); err != nil {
			return nil, fmt.Errorf("scan total: %w", err)
		}
		totals[movType] = total
	}
	return totals, rows.Err()
}

func scanCashMovement(row pgx.Row) (*entity.CashMovement, error) {
	var m entity.CashMovement
	var docType, docID, notes, actor *string
	err := row.Scan(
		&m.ID, &m.SessionID, &m.Type, &m.Amount, &m.BalanceBefore, &m.BalanceAfter,
		&m.PaymentMethod, &docType, &docID, &notes, &actor, &m.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if docType != nil {
		m.DocumentType = *docType
	}
	if docID != nil {
		m.DocumentID = *docID
	}
	if notes != nil {
		m.Notes = *notes
	}
	if actor != nil {
		m.Actor = *actor
	}
	return &m, nil
}
