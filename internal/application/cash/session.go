package cash

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tu-usuario/pos-ledger/internal/application/event"
	"github.com/tu-usuario/pos-ledger/internal/domain"
	"github.com/tu-usuario/pos-ledger/internal/domain/entity"
	"github.com/tu-usuario/pos-ledger/internal/domain/repository"
)

const maxAttempts = 3

// SessionUseCase gestiona el ciclo de vida de las sesiones de caja y su
// ledger de movimientos. Las sesiones serializan por caja: operaciones sobre
// cajas distintas nunca compiten. El saldo esperado siempre se deriva sumando
// el ledger de la sesión, nunca de un contador aparte que pueda divergir.
type SessionUseCase struct {
	txRunner     TxRunner
	sessionRepo  repository.CashSessionRepository
	movementRepo repository.CashMovementRepository
	countRepo    repository.CashCountRepository
	publisher    event.Publisher
}

// NewSessionUseCase construye el caso de uso.
func NewSessionUseCase(
	txRunner TxRunner,
	sessionRepo repository.CashSessionRepository,
	movementRepo repository.CashMovementRepository,
	countRepo repository.CashCountRepository,
	publisher event.Publisher,
) *SessionUseCase {
	if publisher == nil {
		publisher = event.NopPublisher{}
	}
	return &SessionUseCase{
		txRunner:     txRunner,
		sessionRepo:  sessionRepo,
		movementRepo: movementRepo,
		countRepo:    countRepo,
		publisher:    publisher,
	}
}

// CountLine línea de arqueo: piezas de una denominación.
type CountLine struct {
	Denomination decimal.Decimal
	Quantity     int64
}

// OpenSessionInput entrada para abrir sesión. OpeningCount es opcional; si se
// envía, la suma de denominaciones debe coincidir con OpeningAmount.
type OpenSessionInput struct {
	RegisterID    string
	OpeningAmount decimal.Decimal
	OpenedBy      string
	OpeningCount  []CountLine
}

// OpenSession crea la sesión OPEN y deja trazado el fondo inicial como
// movimiento OPENING. Falla con ErrSessionAlreadyOpen si la caja ya tiene
// una sesión abierta.
func (uc *SessionUseCase) OpenSession(ctx context.Context, input OpenSessionInput) (*entity.CashSession, error) {
	if input.RegisterID == "" || input.OpenedBy == "" || input.OpeningAmount.IsNegative() {
		return nil, domain.ErrInvalidInput
	}
	var session *entity.CashSession
	err := uc.withRetry(ctx, func() error {
		return uc.txRunner.RunCash(ctx, func(
			sessionRepo repository.CashSessionRepository,
			movementRepo repository.CashMovementRepository,
			countRepo repository.CashCountRepository,
		) error {
			existing, err := sessionRepo.GetOpenByRegister(input.RegisterID)
			if err != nil {
				return err
			}
			if existing != nil {
				return domain.ErrSessionAlreadyOpen
			}
			now := time.Now()
			session = &entity.CashSession{
				ID:            uuid.New().String(),
				RegisterID:    input.RegisterID,
				OpenedBy:      input.OpenedBy,
				OpenedAt:      now,
				OpeningAmount: input.OpeningAmount,
				Status:        entity.SessionOpen,
			}
			if err := sessionRepo.Create(session); err != nil {
				return err
			}
			opening := &entity.CashMovement{
				ID:            uuid.New().String(),
				SessionID:     session.ID,
				Type:          entity.CashMovementOpening,
				Amount:        input.OpeningAmount,
				BalanceBefore: decimal.Zero,
				BalanceAfter:  input.OpeningAmount,
				PaymentMethod: entity.PaymentMethodCash,
				Actor:         input.OpenedBy,
				CreatedAt:     now,
			}
			if err := movementRepo.Create(opening); err != nil {
				return err
			}
			if len(input.OpeningCount) == 0 {
				return nil
			}
			count, err := buildCount(session.ID, entity.CountOpening, input.OpeningAmount, input.OpeningCount, input.OpenedBy, now)
			if err != nil {
				return err
			}
			return countRepo.Create(count)
		})
	})
	if err != nil {
		return nil, err
	}
	uc.publisher.PublishCashMovement(ctx, event.CashMovementEvent{
		SessionID:  session.ID,
		RegisterID: session.RegisterID,
		Type:       entity.CashMovementOpening,
		Amount:     session.OpeningAmount,
		Actor:      session.OpenedBy,
		OccurredAt: session.OpenedAt,
	})
	return session, nil
}

// MovementInput entrada para un movimiento de caja contra una sesión OPEN.
type MovementInput struct {
	SessionID     string
	Type          string
	Amount        decimal.Decimal // firmado
	PaymentMethod string
	DocumentType  string
	DocumentID    string
	Notes         string
	Actor         string
}

// RecordMovement escribe un movimiento contra una sesión abierta, con el
// saldo antes/después derivado del ledger de la sesión. Una sesión CLOSED
// rechaza con ErrSessionClosed.
func (uc *SessionUseCase) RecordMovement(ctx context.Context, input MovementInput) (*entity.CashMovement, error) {
	if err := validateCashMovement(input); err != nil {
		return nil, err
	}
	var (
		mov        *entity.CashMovement
		registerID string
	)
	err := uc.withRetry(ctx, func() error {
		return uc.txRunner.RunCash(ctx, func(
			sessionRepo repository.CashSessionRepository,
			movementRepo repository.CashMovementRepository,
			_ repository.CashCountRepository,
		) error {
			session, err := sessionRepo.GetForUpdate(input.SessionID)
			if err != nil {
				return err
			}
			if session == nil {
				return domain.ErrNotFound
			}
			if !session.IsOpen() {
				return domain.ErrSessionClosed
			}
			registerID = session.RegisterID
			before, err := movementRepo.SumBySession(input.SessionID)
			if err != nil {
				return err
			}
			method := input.PaymentMethod
			if method == "" {
				method = entity.PaymentMethodCash
			}
			mov = &entity.CashMovement{
				ID:            uuid.New().String(),
				SessionID:     input.SessionID,
				Type:          input.Type,
				Amount:        input.Amount,
				BalanceBefore: before,
				BalanceAfter:  before.Add(input.Amount),
				PaymentMethod: method,
				DocumentType:  input.DocumentType,
				DocumentID:    input.DocumentID,
				Notes:         input.Notes,
				Actor:         input.Actor,
				CreatedAt:     time.Now(),
			}
			return movementRepo.Create(mov)
		})
	})
	if err != nil {
		return nil, err
	}
	uc.publisher.PublishCashMovement(ctx, event.CashMovementEvent{
		MovementID: mov.ID,
		SessionID:  mov.SessionID,
		RegisterID: registerID,
		Type:       mov.Type,
		Amount:     mov.Amount,
		Actor:      mov.Actor,
		OccurredAt: mov.CreatedAt,
	})
	return mov, nil
}

// validateCashMovement valida tipo y signo. OPENING y CLOSING los escribe el
// propio motor en la apertura y el cierre; no se aceptan desde fuera.
func validateCashMovement(input MovementInput) error {
	if input.SessionID == "" || input.Amount.IsZero() {
		return domain.ErrInvalidInput
	}
	switch input.Type {
	case entity.CashMovementSale, entity.CashMovementPayment, entity.CashMovementDeposit:
		if !input.Amount.IsPositive() {
			return domain.ErrInvalidInput
		}
	case entity.CashMovementExpense, entity.CashMovementWithdrawal:
		if !input.Amount.IsNegative() {
			return domain.ErrInvalidInput
		}
	default:
		return domain.ErrInvalidInput
	}
	return nil
}

// CountInput entrada para un arqueo intermedio.
type CountInput struct {
	SessionID    string
	TotalCounted decimal.Decimal
	Lines        []CountLine
	CountedBy    string
}

// RegisterCount registra un arqueo INTERMEDIATE sobre una sesión abierta.
// El total declarado debe coincidir con la suma de denominaciones.
func (uc *SessionUseCase) RegisterCount(ctx context.Context, input CountInput) (*entity.CashCount, error) {
	if input.SessionID == "" || input.CountedBy == "" || len(input.Lines) == 0 {
		return nil, domain.ErrInvalidInput
	}
	var count *entity.CashCount
	err := uc.withRetry(ctx, func() error {
		return uc.txRunner.RunCash(ctx, func(
			sessionRepo repository.CashSessionRepository,
			_ repository.CashMovementRepository,
			countRepo repository.CashCountRepository,
		) error {
			session, err := sessionRepo.GetForUpdate(input.SessionID)
			if err != nil {
				return err
			}
			if session == nil {
				return domain.ErrNotFound
			}
			if !session.IsOpen() {
				return domain.ErrSessionClosed
			}
			c, err := buildCount(input.SessionID, entity.CountIntermediate, input.TotalCounted, input.Lines, input.CountedBy, time.Now())
			if err != nil {
				return err
			}
			count = c
			return countRepo.Create(c)
		})
	})
	if err != nil {
		return nil, err
	}
	return count, nil
}

// CloseInput entrada para cerrar sesión. ClosingCount es opcional; si se
// envía, la suma de denominaciones debe coincidir con CountedAmount.
type CloseInput struct {
	SessionID     string
	CountedAmount decimal.Decimal
	ClosingCount  []CountLine
	ClosedBy      string
}

// CloseSession cierra la sesión exactamente una vez: deriva el esperado del
// ledger, registra la diferencia contra lo contado y escribe la pata CLOSING
// que retira el efectivo. Una sesión cerrada no se reabre; las correcciones
// van en una sesión nueva más un movimiento de ajuste.
func (uc *SessionUseCase) CloseSession(ctx context.Context, input CloseInput) (*entity.CashSession, error) {
	if input.SessionID == "" || input.ClosedBy == "" || input.CountedAmount.IsNegative() {
		return nil, domain.ErrInvalidInput
	}
	var session *entity.CashSession
	err := uc.withRetry(ctx, func() error {
		return uc.txRunner.RunCash(ctx, func(
			sessionRepo repository.CashSessionRepository,
			movementRepo repository.CashMovementRepository,
			countRepo repository.CashCountRepository,
		) error {
			s, err := sessionRepo.GetForUpdate(input.SessionID)
			if err != nil {
				return err
			}
			if s == nil {
				return domain.ErrNotFound
			}
			if !s.IsOpen() {
				return domain.ErrSessionClosed
			}
			now := time.Now()
			if len(input.ClosingCount) > 0 {
				count, err := buildCount(s.ID, entity.CountClosing, input.CountedAmount, input.ClosingCount, input.ClosedBy, now)
				if err != nil {
					return err
				}
				if err := countRepo.Create(count); err != nil {
					return err
				}
			}
			// Esperado siempre derivado del ledger: apertura + Σ movimientos.
			expected, err := movementRepo.SumBySession(s.ID)
			if err != nil {
				return err
			}
			counted := input.CountedAmount
			difference := counted.Sub(expected)

			// La pata CLOSING retira lo contado; si el arqueo cuadra, el
			// saldo de la sesión termina en cero.
			closing := &entity.CashMovement{
				ID:            uuid.New().String(),
				SessionID:     s.ID,
				Type:          entity.CashMovementClosing,
				Amount:        counted.Neg(),
				BalanceBefore: expected,
				BalanceAfter:  expected.Sub(counted),
				PaymentMethod: entity.PaymentMethodCash,
				Actor:         input.ClosedBy,
				CreatedAt:     now,
			}
			if err := movementRepo.Create(closing); err != nil {
				return err
			}

			s.Status = entity.SessionClosed
			s.ClosedBy = input.ClosedBy
			s.ClosedAt = &now
			s.ClosingAmount = &counted
			s.ExpectedAmount = &expected
			s.Difference = &difference
			if err := sessionRepo.Close(s); err != nil {
				return err
			}
			session = s
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	if session.Difference != nil && !session.Difference.IsZero() {
		uc.publisher.PublishVariance(ctx, event.VarianceEvent{
			Scope:      event.ScopeCash,
			SessionID:  session.ID,
			Expected:   *session.ExpectedAmount,
			Counted:    *session.ClosingAmount,
			Delta:      *session.Difference,
			DetectedAt: *session.ClosedAt,
		})
	}
	return session, nil
}

// buildCount arma el arqueo validando que el total declarado coincida con la
// suma de denominaciones; un desfase es un error de captura local.
func buildCount(sessionID, countType string, total decimal.Decimal, lines []CountLine, countedBy string, now time.Time) (*entity.CashCount, error) {
	count := &entity.CashCount{
		ID:           uuid.New().String(),
		SessionID:    sessionID,
		Type:         countType,
		TotalCounted: total,
		CountedBy:    countedBy,
		CreatedAt:    now,
	}
	for _, line := range lines {
		if line.Quantity < 0 || !line.Denomination.IsPositive() {
			return nil, domain.ErrInvalidInput
		}
		count.Details = append(count.Details, entity.CashCountDetail{
			CountID:           count.ID,
			DenominationValue: line.Denomination,
			Quantity:          line.Quantity,
		})
	}
	if !count.DetailsTotal().Equal(total) {
		return nil, domain.ErrInvalidDenominationTotal
	}
	return count, nil
}

func (uc *SessionUseCase) withRetry(ctx context.Context, fn func() error) error {
	var err error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err = fn()
		if err == nil || !errors.Is(err, domain.ErrConflict) {
			return err
		}
		if ctx.Err() != nil {
			return err
		}
	}
	return err
}
