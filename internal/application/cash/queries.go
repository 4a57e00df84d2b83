package cash

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/tu-usuario/pos-ledger/internal/domain"
	"github.com/tu-usuario/pos-ledger/internal/domain/entity"
)

// SessionSummary resumen de una sesión para reporting: totales por tipo y el
// esperado derivado del ledger al momento de la consulta.
type SessionSummary struct {
	Session  *entity.CashSession
	Expected decimal.Decimal
	Totals   map[string]decimal.Decimal
	Counts   []*entity.CashCount
}

// GetSession devuelve la sesión con sus movimientos.
func (uc *SessionUseCase) GetSession(_ context.Context, sessionID string) (*entity.CashSession, []*entity.CashMovement, error) {
	if sessionID == "" {
		return nil, nil, domain.ErrInvalidInput
	}
	session, err := uc.sessionRepo.GetByID(sessionID)
	if err != nil {
		return nil, nil, err
	}
	if session == nil {
		return nil, nil, domain.ErrNotFound
	}
	movements, err := uc.movementRepo.ListBySession(sessionID)
	if err != nil {
		return nil, nil, err
	}
	return session, movements, nil
}

// Summary arma el resumen de sesión. Para una sesión abierta el esperado se
// deriva del ledger; para una cerrada se usa el esperado congelado al cierre.
func (uc *SessionUseCase) Summary(ctx context.Context, sessionID string) (*SessionSummary, error) {
	session, _, err := uc.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	totals, err := uc.movementRepo.TotalsByType(sessionID)
	if err != nil {
		return nil, err
	}
	counts, err := uc.countRepo.ListBySession(sessionID)
	if err != nil {
		return nil, err
	}
	expected := decimal.Zero
	if session.IsOpen() {
		expected, err = uc.movementRepo.SumBySession(sessionID)
		if err != nil {
			return nil, err
		}
	} else if session.ExpectedAmount != nil {
		expected = *session.ExpectedAmount
	}
	return &SessionSummary{
		Session:  session,
		Expected: expected,
		Totals:   totals,
		Counts:   counts,
	}, nil
}

// ListSessions historial de sesiones de una caja.
func (uc *SessionUseCase) ListSessions(_ context.Context, registerID string, limit, offset int) ([]*entity.CashSession, error) {
	if registerID == "" {
		return nil, domain.ErrInvalidInput
	}
	if limit <= 0 {
		limit = 20
	}
	return uc.sessionRepo.ListByRegister(registerID, limit, offset)
}
