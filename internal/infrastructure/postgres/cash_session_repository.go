package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/tu-usuario/pos-ledger/internal/domain"
	"github.com/tu-usuario/pos-ledger/internal/domain/entity"
	"github.com/tu-usuario/pos-ledger/internal/domain/repository"
)

var _ repository.CashSessionRepository = (*CashSessionRepo)(nil)

const cashSessionColumns = `id, register_id, opened_by, opened_at, opening_amount, status,
	closed_by, closed_at, closing_amount, expected_amount, difference`

// CashSessionRepo implementación de CashSessionRepository sobre PostgreSQL
// (usable con pool o tx). Un índice único parcial sobre (register_id) WHERE
// status = 'OPEN' respalda en la BD la exclusividad de sesión, como último
// recurso; la aplicación es quien la hace cumplir.
type CashSessionRepo struct {
	q Querier
}

// NewCashSessionRepository construye el adaptador. Pasar pool o tx (Querier).
func NewCashSessionRepository(q Querier) *CashSessionRepo {
	return &CashSessionRepo{q: q}
}

// Create persiste una sesión recién abierta.
func (r *CashSessionRepo) Create(session *entity.CashSession) error {
	query := `
		INSERT INTO cash_sessions (id, register_id, opened_by, opened_at, opening_amount, status)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.q.Exec(context.Background(), query,
		session.ID, session.RegisterID, session.OpenedBy, session.OpenedAt,
		session.OpeningAmount, session.Status,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrSessionAlreadyOpen
		}
		return fmt.Errorf("create cash session: %w", err)
	}
	return nil
}

// GetByID obtiene una sesión; nil sin error si no existe.
func (r *CashSessionRepo) GetByID(id string) (*entity.CashSession, error) {
	query := `SELECT ` + cashSessionColumns + ` FROM cash_sessions WHERE id = $1`
	s, err := scanCashSession(r.q.QueryRow(context.Background(), query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get cash session: %w", err)
	}
	return s, nil
}

// GetForUpdate obtiene la sesión y bloquea la fila; los movimientos de la
// sesión serializan sobre este bloqueo.
func (r *CashSessionRepo) GetForUpdate(id string) (*entity.CashSession, error) {
	query := `SELECT ` + cashSessionColumns + ` FROM cash_sessions WHERE id = $1 FOR UPDATE`
	s, err := scanCashSession(r.q.QueryRow(context.Background(), query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		if isLockConflict(err) {
			return nil, domain.ErrConflict
		}
		return nil, fmt.Errorf("get cash session for update: %w", err)
	}
	return s, nil
}

// GetOpenByRegister devuelve la sesión OPEN de una caja, o nil si no hay.
func (r *CashSessionRepo) GetOpenByRegister(registerID string) (*entity.CashSession, error) {
	query := `
		SELECT ` + cashSessionColumns + `
		FROM cash_sessions WHERE register_id = $1 AND status = $2`
	s, err := scanCashSession(r.q.QueryRow(context.Background(), query, registerID, entity.SessionOpen))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get open session: %w", err)
	}
	return s, nil
}

// Close persiste el cierre. El WHERE sobre status garantiza que una sesión
// solo transiciona a CLOSED una vez; una segunda pasada no afecta filas.
func (r *CashSessionRepo) Close(session *entity.CashSession) error {
	query := `
		UPDATE cash_sessions
		SET status = $2, closed_by = $3, closed_at = $4,
		    closing_amount = $5, expected_amount = $6, difference = $7
		WHERE id = $1 AND status = $8`
	tag, err := r.q.Exec(context.Background(), query,
		session.ID, session.Status, nullable(session.ClosedBy), session.ClosedAt,
		session.ClosingAmount, session.ExpectedAmount, session.Difference,
		entity.SessionOpen,
	)
	if err != nil {
		return fmt.Errorf("close cash session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrSessionClosed
	}
	return nil
}

// ListByRegister historial de sesiones de una caja, de la más reciente a la más antigua.
func (r *CashSessionRepo) ListByRegister(registerID string, limit, offset int) ([]*entity.CashSession, error) {
	query := `
		SELECT ` + cashSessionColumns + `
		FROM cash_sessions WHERE register_id = $1
		ORDER BY opened_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(context.Background(), query, registerID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list cash sessions: %w", err)
	}
	defer rows.Close()
	var list []*entity.CashSession
	for rows.Next() {
		s, err := scanCashSession(rows)
		if err != nil {
			return nil, fmt.Errorf("scan cash session: %w", err)
		}
		list = append(list, s)
	}
	return list, rows.Err()
}

func scanCashSession(row pgx.Row) (*entity.CashSession, error) {
	var s entity.CashSession
	var closedBy *string
	err := row.Scan(
		&s.ID, &s.RegisterID, &s.OpenedBy, &s.OpenedAt, &s.OpeningAmount, &s.Status,
		&closedBy, &s.ClosedAt, &s.ClosingAmount, &s.ExpectedAmount, &s.Difference,
	)
	if err != nil {
		return nil, err
	}
	if closedBy != nil {
		s.ClosedBy = *closedBy
	}
	return &s, nil
}
