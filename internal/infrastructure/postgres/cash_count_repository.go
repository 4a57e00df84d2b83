package postgres

import (
	"context"
	"fmt"

	"github.com/tu-usuario/pos-ledger/internal/domain"
	"github.com/tu-usuario/pos-ledger/internal/domain/entity"
	"github.com/tu-usuario/pos-ledger/internal/domain/repository"
)

var _ repository.CashCountRepository = (*CashCountRepo)(nil)

// CashCountRepo implementación de CashCountRepository sobre PostgreSQL
// (usable con pool o tx). El arqueo y sus líneas se insertan juntos; el
// importe por línea nunca se almacena, siempre se deriva.
type CashCountRepo struct {
	q Querier
}

// NewCashCountRepository construye el adaptador. Pasar pool o tx (Querier).
func NewCashCountRepository(q Querier) *CashCountRepo {
	return &CashCountRepo{q: q}
}

// Create persiste el arqueo con sus líneas de denominación.
func (r *CashCountRepo) Create(count *entity.CashCount) error {
	query := `
		INSERT INTO cash_counts (id, session_id, type, total_counted, counted_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.q.Exec(context.Background(), query,
		count.ID, count.SessionID, count.Type, count.TotalCounted, count.CountedBy, count.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("create cash count: %w", err)
	}
	detail := `
		INSERT INTO cash_count_details (count_id, denomination_value, quantity)
		VALUES ($1, $2, $3)`
	for _, d := range count.Details {
		if _, err := r.q.Exec(context.Background(), detail, count.ID, d.DenominationValue, d.Quantity); err != nil {
			return fmt.Errorf("create count detail: %w", err)
		}
	}
	return nil
}

// ListBySession arqueos de una sesión con sus líneas, en orden cronológico.
func (r *CashCountRepo) ListBySession(sessionID string) ([]*entity.CashCount, error) {
	query := `
		SELECT id, session_id, type, total_counted, counted_by, created_at
		FROM cash_counts WHERE session_id = $1 ORDER BY created_at`
	rows, err := r.q.Query(context.Background(), query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list cash counts: %w", err)
	}
	defer rows.Close()
	var list []*entity.CashCount
	for rows.Next() {
		var c entity.CashCount
		if err := rows.Scan(&c.ID, &c.SessionID, &c.Type, &c.TotalCounted, &c.CountedBy, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan cash count: %w", err)
		}
		list = append(list, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, c := range list {
		details, err := r.listDetails(c.ID)
		if err != nil {
			return nil, err
		}
		c.Details = details
	}
	return list, nil
}

func (r *CashCountRepo) listDetails(countID string) ([]entity.CashCountDetail, error) {
	query := `
		SELECT count_id, denomination_value, quantity
		FROM cash_count_details WHERE count_id = $1 ORDER BY denomination_value DESC`
	rows, err := r.q.Query(context.Background(), query, countID)
	if err != nil {
		return nil, fmt.Errorf("list count details: %w", err)
	}
	defer rows.Close()
	var details []entity.CashCountDetail
	for rows.Next() {
		var d entity.CashCountDetail
		if err := rows.Scan(&d.CountID, &d.DenominationValue, &d.Quantity); err != nil {
			return nil, fmt.Errorf("scan count detail: %w", err)
		}
		details = append(details, d)
	}
	return details, rows.Err()
}
