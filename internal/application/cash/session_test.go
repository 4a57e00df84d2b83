package cash_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tu-usuario/pos-ledger/internal/application/cash"
	"github.com/tu-usuario/pos-ledger/internal/domain"
	"github.com/tu-usuario/pos-ledger/internal/domain/entity"
	"github.com/tu-usuario/pos-ledger/internal/infrastructure/memory"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const (
	registerID = "CAJA-01"
	cashier    = "cajero-1"
)

func newSessionFixture(t *testing.T) (*memory.Store, *cash.SessionUseCase) {
	t.Helper()
	store := memory.NewStore()
	uc := cash.NewSessionUseCase(store, store.Sessions(), store.CashMovements(), store.Counts(), nil)
	return store, uc
}

func openSession(t *testing.T, uc *cash.SessionUseCase, opening int64) *entity.CashSession {
	t.Helper()
	session, err := uc.OpenSession(context.Background(), cash.OpenSessionInput{
		RegisterID:    registerID,
		OpeningAmount: decimal.NewFromInt(opening),
		OpenedBy:      cashier,
	})
	require.NoError(t, err)
	return session
}

func recordCash(t *testing.T, uc *cash.SessionUseCase, sessionID, movType string, amount int64) *entity.CashMovement {
	t.Helper()
	mov, err := uc.RecordMovement(context.Background(), cash.MovementInput{
		SessionID: sessionID,
		Type:      movType,
		Amount:    decimal.NewFromInt(amount),
		Actor:     cashier,
	})
	require.NoError(t, err)
	return mov
}

// ──────────────────────────────────────────────────────────────────────────────
// Ciclo de vida de la sesión
// ──────────────────────────────────────────────────────────────────────────────

// Escenario completo: abrir con 1000, vender 500, gastar 200; el esperado es
// 1300 y un cierre contando 1300 no arroja diferencia.
func TestCloseSession_ArqueoCuadrado(t *testing.T) {
	_, uc := newSessionFixture(t)
	session := openSession(t, uc, 1000)

	sale := recordCash(t, uc, session.ID, entity.CashMovementSale, 500)
	assert.True(t, sale.BalanceBefore.Equal(decimal.NewFromInt(1000)),
		"el saldo antes debe incluir el fondo de apertura")
	assert.True(t, sale.BalanceAfter.Equal(decimal.NewFromInt(1500)))

	expense := recordCash(t, uc, session.ID, entity.CashMovementExpense, -200)
	assert.True(t, expense.BalanceAfter.Equal(decimal.NewFromInt(1300)))

	closed, err := uc.CloseSession(context.Background(), cash.CloseInput{
		SessionID:     session.ID,
		CountedAmount: decimal.NewFromInt(1300),
		ClosedBy:      cashier,
	})
	require.NoError(t, err)
	assert.Equal(t, entity.SessionClosed, closed.Status)
	require.NotNil(t, closed.ExpectedAmount)
	assert.True(t, closed.ExpectedAmount.Equal(decimal.NewFromInt(1300)))
	require.NotNil(t, closed.Difference)
	assert.True(t, closed.Difference.IsZero(), "arqueo cuadrado: sin diferencia")
}

func TestCloseSession_RegistraFaltante(t *testing.T) {
	_, uc := newSessionFixture(t)
	session := openSession(t, uc, 1000)
	recordCash(t, uc, session.ID, entity.CashMovementSale, 500)

	closed, err := uc.CloseSession(context.Background(), cash.CloseInput{
		SessionID:     session.ID,
		CountedAmount: decimal.NewFromInt(1450),
		ClosedBy:      cashier,
	})
	require.NoError(t, err)
	require.NotNil(t, closed.Difference)
	assert.True(t, closed.Difference.Equal(decimal.NewFromInt(-50)),
		"faltan 50: diferencia negativa")
}

// La pata CLOSING retira lo contado: con el arqueo cuadrado el ledger de la
// sesión suma cero después del cierre.
func TestCloseSession_PataClosingDejaLedgerEnCero(t *testing.T) {
	store, uc := newSessionFixture(t)
	session := openSession(t, uc, 1000)
	recordCash(t, uc, session.ID, entity.CashMovementSale, 300)

	_, err := uc.CloseSession(context.Background(), cash.CloseInput{
		SessionID:     session.ID,
		CountedAmount: decimal.NewFromInt(1300),
		ClosedBy:      cashier,
	})
	require.NoError(t, err)

	sum, err := store.CashMovements().SumBySession(session.ID)
	require.NoError(t, err)
	assert.True(t, sum.IsZero())

	movements, err := store.CashMovements().ListBySession(session.ID)
	require.NoError(t, err)
	require.Len(t, movements, 3, "OPENING + SALE + CLOSING")
	last := movements[len(movements)-1]
	assert.Equal(t, entity.CashMovementClosing, last.Type)
	assert.True(t, last.Amount.Equal(decimal.NewFromInt(-1300)))
}

func TestOpenSession_SegundaSesionEnLaMismaCajaFalla(t *testing.T) {
	_, uc := newSessionFixture(t)
	openSession(t, uc, 1000)

	_, err := uc.OpenSession(context.Background(), cash.OpenSessionInput{
		RegisterID:    registerID,
		OpeningAmount: decimal.NewFromInt(500),
		OpenedBy:      cashier,
	})
	assert.ErrorIs(t, err, domain.ErrSessionAlreadyOpen)

	// Otra caja sí puede abrir en paralelo.
	_, err = uc.OpenSession(context.Background(), cash.OpenSessionInput{
		RegisterID:    "CAJA-02",
		OpeningAmount: decimal.NewFromInt(500),
		OpenedBy:      cashier,
	})
	assert.NoError(t, err)
}

func TestRecordMovement_SesionCerradaRechaza(t *testing.T) {
	_, uc := newSessionFixture(t)
	session := openSession(t, uc, 1000)
	_, err := uc.CloseSession(context.Background(), cash.CloseInput{
		SessionID:     session.ID,
		CountedAmount: decimal.NewFromInt(1000),
		ClosedBy:      cashier,
	})
	require.NoError(t, err)

	_, err = uc.RecordMovement(context.Background(), cash.MovementInput{
		SessionID: session.ID,
		Type:      entity.CashMovementSale,
		Amount:    decimal.NewFromInt(100),
	})
	assert.ErrorIs(t, err, domain.ErrSessionClosed)
}

func TestCloseSession_CierreDobleFalla(t *testing.T) {
	_, uc := newSessionFixture(t)
	session := openSession(t, uc, 1000)

	_, err := uc.CloseSession(context.Background(), cash.CloseInput{
		SessionID:     session.ID,
		CountedAmount: decimal.NewFromInt(1000),
		ClosedBy:      cashier,
	})
	require.NoError(t, err)

	_, err = uc.CloseSession(context.Background(), cash.CloseInput{
		SessionID:     session.ID,
		CountedAmount: decimal.NewFromInt(1000),
		ClosedBy:      cashier,
	})
	assert.ErrorIs(t, err, domain.ErrSessionClosed, "CLOSED es terminal")
}

// ──────────────────────────────────────────────────────────────────────────────
// Validación de movimientos
// ──────────────────────────────────────────────────────────────────────────────

func TestRecordMovement_SignosPorTipo(t *testing.T) {
	_, uc := newSessionFixture(t)
	session := openSession(t, uc, 1000)
	ctx := context.Background()

	cases := []struct {
		name    string
		movType string
		amount  int64
	}{
		{"SALE negativa", entity.CashMovementSale, -100},
		{"PAYMENT negativo", entity.CashMovementPayment, -100},
		{"DEPOSIT negativo", entity.CashMovementDeposit, -100},
		{"EXPENSE positivo", entity.CashMovementExpense, 100},
		{"WITHDRAWAL positivo", entity.CashMovementWithdrawal, 100},
		{"OPENING desde fuera", entity.CashMovementOpening, 100},
		{"CLOSING desde fuera", entity.CashMovementClosing, -100},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := uc.RecordMovement(ctx, cash.MovementInput{
				SessionID: session.ID,
				Type:      tc.movType,
				Amount:    decimal.NewFromInt(tc.amount),
			})
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}

func TestRecordMovement_SesionInexistente(t *testing.T) {
	_, uc := newSessionFixture(t)
	_, err := uc.RecordMovement(context.Background(), cash.MovementInput{
		SessionID: "00000000-0000-0000-0000-0000000000ee",
		Type:      entity.CashMovementSale,
		Amount:    decimal.NewFromInt(100),
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ──────────────────────────────────────────────────────────────────────────────
// Arqueos por denominaciones
// ──────────────────────────────────────────────────────────────────────────────

func TestRegisterCount_DenominacionesCuadran(t *testing.T) {
	_, uc := newSessionFixture(t)
	session := openSession(t, uc, 260)

	// 2 billetes de 100 + 3 monedas de 20 = 260.
	count, err := uc.RegisterCount(context.Background(), cash.CountInput{
		SessionID:    session.ID,
		TotalCounted: decimal.NewFromInt(260),
		Lines: []cash.CountLine{
			{Denomination: decimal.NewFromInt(100), Quantity: 2},
			{Denomination: decimal.NewFromInt(20), Quantity: 3},
		},
		CountedBy: cashier,
	})
	require.NoError(t, err)
	assert.Equal(t, entity.CountIntermediate, count.Type)
	assert.True(t, count.DetailsTotal().Equal(decimal.NewFromInt(260)))
}

func TestRegisterCount_TotalDeclaradoNoCuadra(t *testing.T) {
	_, uc := newSessionFixture(t)
	session := openSession(t, uc, 300)

	_, err := uc.RegisterCount(context.Background(), cash.CountInput{
		SessionID:    session.ID,
		TotalCounted: decimal.NewFromInt(300),
		Lines: []cash.CountLine{
			{Denomination: decimal.NewFromInt(100), Quantity: 2},
			{Denomination: decimal.NewFromInt(20), Quantity: 3},
		},
		CountedBy: cashier,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidDenominationTotal,
		"declaró 300 pero las denominaciones suman 260")
}

func TestRegisterCount_LineasInvalidas(t *testing.T) {
	_, uc := newSessionFixture(t)
	session := openSession(t, uc, 100)
	ctx := context.Background()

	_, err := uc.RegisterCount(ctx, cash.CountInput{
		SessionID:    session.ID,
		TotalCounted: decimal.NewFromInt(100),
		Lines:        []cash.CountLine{{Denomination: decimal.NewFromInt(-100), Quantity: 1}},
		CountedBy:    cashier,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "denominación negativa")

	_, err = uc.RegisterCount(ctx, cash.CountInput{
		SessionID:    session.ID,
		TotalCounted: decimal.NewFromInt(100),
		Lines:        []cash.CountLine{{Denomination: decimal.NewFromInt(100), Quantity: -1}},
		CountedBy:    cashier,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "cantidad negativa")
}

func TestOpenSession_ArqueoDeAperturaDebeCuadrarConElFondo(t *testing.T) {
	store, uc := newSessionFixture(t)

	_, err := uc.OpenSession(context.Background(), cash.OpenSessionInput{
		RegisterID:    registerID,
		OpeningAmount: decimal.NewFromInt(1000),
		OpenedBy:      cashier,
		OpeningCount:  []cash.CountLine{{Denomination: decimal.NewFromInt(100), Quantity: 9}},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidDenominationTotal)

	// El rechazo revierte también la sesión y el movimiento OPENING.
	open, gerr := store.Sessions().GetOpenByRegister(registerID)
	require.NoError(t, gerr)
	assert.Nil(t, open, "la apertura fallida no debe dejar sesión abierta")
}

// ──────────────────────────────────────────────────────────────────────────────
// Resumen de sesión
// ──────────────────────────────────────────────────────────────────────────────

func TestSummary_TotalesPorTipoYEsperado(t *testing.T) {
	_, uc := newSessionFixture(t)
	session := openSession(t, uc, 1000)
	recordCash(t, uc, session.ID, entity.CashMovementSale, 500)
	recordCash(t, uc, session.ID, entity.CashMovementSale, 250)
	recordCash(t, uc, session.ID, entity.CashMovementExpense, -200)

	summary, err := uc.Summary(context.Background(), session.ID)
	require.NoError(t, err)
	assert.True(t, summary.Expected.Equal(decimal.NewFromInt(1550)))
	assert.True(t, summary.Totals[entity.CashMovementSale].Equal(decimal.NewFromInt(750)))
	assert.True(t, summary.Totals[entity.CashMovementExpense].Equal(decimal.NewFromInt(-200)))
	assert.True(t, summary.Totals[entity.CashMovementOpening].Equal(decimal.NewFromInt(1000)))
}

func TestSummary_SesionCerradaUsaElEsperadoCongelado(t *testing.T) {
	_, uc := newSessionFixture(t)
	session := openSession(t, uc, 1000)
	_, err := uc.CloseSession(context.Background(), cash.CloseInput{
		SessionID:     session.ID,
		CountedAmount: decimal.NewFromInt(900),
		ClosedBy:      cashier,
	})
	require.NoError(t, err)

	summary, err := uc.Summary(context.Background(), session.ID)
	require.NoError(t, err)
	// El esperado congelado al cierre, no la suma post-CLOSING (que es 100).
	assert.True(t, summary.Expected.Equal(decimal.NewFromInt(1000)))
}
