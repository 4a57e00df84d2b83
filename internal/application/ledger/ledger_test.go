package ledger_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tu-usuario/pos-ledger/internal/application/ledger"
	"github.com/tu-usuario/pos-ledger/internal/domain"
	"github.com/tu-usuario/pos-ledger/internal/domain/entity"
	"github.com/tu-usuario/pos-ledger/internal/domain/repository"
	"github.com/tu-usuario/pos-ledger/internal/infrastructure/memory"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const (
	productID  = "00000000-0000-0000-0000-0000000000aa"
	locationA  = "00000000-0000-0000-0000-0000000000b1"
	locationB  = "00000000-0000-0000-0000-0000000000b2"
	testActor  = "cajero-1"
	testDocSal = "SALE"
)

type fixture struct {
	store   *memory.Store
	uc      *ledger.LedgerUseCase
	queries *ledger.StockQueryService
}

// newFixture levanta el motor completo sobre el store en memoria con un
// producto y dos ubicaciones sembrados.
func newFixture(t *testing.T, allowNegative bool) *fixture {
	t.Helper()
	store := memory.NewStore()
	require.NoError(t, store.Products().Create(&entity.Product{
		ID:                 productID,
		SKU:                "SKU-001",
		Name:               "Café molido 500g",
		Cost:               decimal.NewFromInt(10),
		AllowNegativeStock: allowNegative,
		Active:             true,
	}))
	require.NoError(t, store.Locations().Create(&entity.Location{
		ID: locationA, Code: "BOD-01", Name: "Bodega principal", Active: true,
	}))
	require.NoError(t, store.Locations().Create(&entity.Location{
		ID: locationB, Code: "SAL-01", Name: "Sala de venta", Active: true,
	}))
	uc := ledger.NewLedgerUseCase(store, store.Products(), store.Locations(), store.Reservations(), nil)
	queries := ledger.NewStockQueryService(store.Balances(), store.StockMovements())
	return &fixture{store: store, uc: uc, queries: queries}
}

// recordIn registra una entrada de qty unidades a costo unitCost.
func (f *fixture) recordIn(t *testing.T, qty, unitCost int64) *entity.StockMovement {
	t.Helper()
	cost := decimal.NewFromInt(unitCost)
	mov, err := f.uc.RecordMovement(context.Background(), ledger.MovementInput{
		ProductID:    productID,
		LocationID:   locationA,
		Type:         entity.StockMovementIN,
		Delta:        decimal.NewFromInt(qty),
		UnitCost:     &cost,
		DocumentType: entity.DocumentPurchase,
		DocumentID:   "OC-100",
		Actor:        testActor,
	})
	require.NoError(t, err)
	return mov
}

// ──────────────────────────────────────────────────────────────────────────────
// RecordMovement
// ──────────────────────────────────────────────────────────────────────────────

func TestRecordMovement_EntradaActualizaSaldoYEncadenaAntesDespues(t *testing.T) {
	f := newFixture(t, false)

	mov := f.recordIn(t, 10, 12)
	assert.True(t, mov.QuantityBefore.IsZero(), "el primer movimiento parte de saldo cero")
	assert.True(t, mov.QuantityAfter.Equal(decimal.NewFromInt(10)))

	balance, err := f.queries.GetBalance(context.Background(), productID, locationA)
	require.NoError(t, err)
	assert.True(t, balance.OnHand.Equal(decimal.NewFromInt(10)))

	// Segundo movimiento: before debe ser el after del anterior.
	out, err := f.uc.RecordMovement(context.Background(), ledger.MovementInput{
		ProductID:    productID,
		LocationID:   locationA,
		Type:         entity.StockMovementOUT,
		Delta:        decimal.NewFromInt(-3),
		DocumentType: testDocSal,
		DocumentID:   "FAC-001",
		Actor:        testActor,
	})
	require.NoError(t, err)
	assert.True(t, out.QuantityBefore.Equal(decimal.NewFromInt(10)),
		"before del segundo movimiento debe ser el after del primero")
	assert.True(t, out.QuantityAfter.Equal(decimal.NewFromInt(7)))
}

func TestRecordMovement_EntradaActualizaCostoPromedio(t *testing.T) {
	f := newFixture(t, false)

	// 10 unidades a 12: el costo promedio pasa de 10 (sin stock) a 12.
	f.recordIn(t, 10, 12)
	product, err := f.store.Products().GetByID(productID)
	require.NoError(t, err)
	assert.True(t, product.Cost.Equal(decimal.NewFromInt(12)))

	// 10 unidades más a 18: promedio ponderado (10*12 + 10*18) / 20 = 15.
	f.recordIn(t, 10, 18)
	product, err = f.store.Products().GetByID(productID)
	require.NoError(t, err)
	assert.True(t, product.Cost.Equal(decimal.NewFromInt(15)),
		"el costo promedio ponderado debe ser 15, fue %s", product.Cost)
}

func TestRecordMovement_SalidaSinStockFalla(t *testing.T) {
	f := newFixture(t, false)
	f.recordIn(t, 5, 10)

	_, err := f.uc.RecordMovement(context.Background(), ledger.MovementInput{
		ProductID:    productID,
		LocationID:   locationA,
		Type:         entity.StockMovementOUT,
		Delta:        decimal.NewFromInt(-8),
		DocumentType: testDocSal,
		DocumentID:   "FAC-002",
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	// El rechazo no deja rastro: ni saldo ni movimiento.
	balance, berr := f.queries.GetBalance(context.Background(), productID, locationA)
	require.NoError(t, berr)
	assert.True(t, balance.OnHand.Equal(decimal.NewFromInt(5)), "el saldo no debe cambiar")
}

// Una salida directa tampoco puede consumir lo retenido por reservas activas:
// con 10 en mano y 6 reservadas solo hay 4 disponibles para salir.
func TestRecordMovement_SalidaNoConsumeLoReservado(t *testing.T) {
	f := newFixture(t, false)
	f.recordIn(t, 10, 10)
	reserve(t, f, 6)

	_, err := f.uc.RecordMovement(context.Background(), ledger.MovementInput{
		ProductID:    productID,
		LocationID:   locationA,
		Type:         entity.StockMovementOUT,
		Delta:        decimal.NewFromInt(-8),
		DocumentType: testDocSal,
		DocumentID:   "FAC-004",
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	balance, err := f.queries.GetBalance(context.Background(), productID, locationA)
	require.NoError(t, err)
	assert.True(t, balance.OnHand.Equal(decimal.NewFromInt(10)), "el rechazo no toca el saldo")
	assert.False(t, balance.Available().IsNegative(), "el disponible nunca queda negativo")

	// Hasta agotar el disponible sí se puede salir.
	out, err := f.uc.RecordMovement(context.Background(), ledger.MovementInput{
		ProductID:    productID,
		LocationID:   locationA,
		Type:         entity.StockMovementOUT,
		Delta:        decimal.NewFromInt(-4),
		DocumentType: testDocSal,
		DocumentID:   "FAC-005",
	})
	require.NoError(t, err)
	assert.True(t, out.QuantityAfter.Equal(decimal.NewFromInt(6)))
}

func TestRecordMovement_StockNegativoPermitidoPorProducto(t *testing.T) {
	f := newFixture(t, true)

	mov, err := f.uc.RecordMovement(context.Background(), ledger.MovementInput{
		ProductID:    productID,
		LocationID:   locationA,
		Type:         entity.StockMovementOUT,
		Delta:        decimal.NewFromInt(-4),
		DocumentType: testDocSal,
		DocumentID:   "FAC-003",
	})
	require.NoError(t, err, "el producto permite stock negativo")
	assert.True(t, mov.QuantityAfter.Equal(decimal.NewFromInt(-4)))
}

func TestRecordMovement_Validaciones(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()
	cost := decimal.NewFromInt(10)

	cases := []struct {
		name  string
		input ledger.MovementInput
	}{
		{"IN con delta negativo", ledger.MovementInput{
			ProductID: productID, LocationID: locationA, Type: entity.StockMovementIN,
			Delta: decimal.NewFromInt(-1), UnitCost: &cost, DocumentType: "PURCHASE", DocumentID: "X",
		}},
		{"IN sin costo unitario", ledger.MovementInput{
			ProductID: productID, LocationID: locationA, Type: entity.StockMovementIN,
			Delta: decimal.NewFromInt(1), DocumentType: "PURCHASE", DocumentID: "X",
		}},
		{"OUT con delta positivo", ledger.MovementInput{
			ProductID: productID, LocationID: locationA, Type: entity.StockMovementOUT,
			Delta: decimal.NewFromInt(1), DocumentType: testDocSal, DocumentID: "X",
		}},
		{"ADJUSTMENT sin motivo", ledger.MovementInput{
			ProductID: productID, LocationID: locationA, Type: entity.StockMovementAdjustment,
			Delta: decimal.NewFromInt(1), DocumentType: "ADJUSTMENT", DocumentID: "X",
		}},
		{"sin documento de origen", ledger.MovementInput{
			ProductID: productID, LocationID: locationA, Type: entity.StockMovementOUT,
			Delta: decimal.NewFromInt(-1),
		}},
		{"delta cero", ledger.MovementInput{
			ProductID: productID, LocationID: locationA, Type: entity.StockMovementOUT,
			Delta: decimal.Zero, DocumentType: testDocSal, DocumentID: "X",
		}},
		{"tipo TRANSFER_OUT directo", ledger.MovementInput{
			ProductID: productID, LocationID: locationA, Type: entity.StockMovementTransferOut,
			Delta: decimal.NewFromInt(-1), DocumentType: "TRANSFER", DocumentID: "X",
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.uc.RecordMovement(ctx, tc.input)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}

func TestRecordMovement_ProductoInexistente(t *testing.T) {
	f := newFixture(t, false)
	cost := decimal.NewFromInt(10)
	_, err := f.uc.RecordMovement(context.Background(), ledger.MovementInput{
		ProductID:    "00000000-0000-0000-0000-0000000000ff",
		LocationID:   locationA,
		Type:         entity.StockMovementIN,
		Delta:        decimal.NewFromInt(1),
		UnitCost:     &cost,
		DocumentType: "PURCHASE",
		DocumentID:   "OC-1",
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRecordMovement_AjusteConMotivoAdmiteAmbosSignos(t *testing.T) {
	f := newFixture(t, false)
	f.recordIn(t, 10, 10)

	mov, err := f.uc.RecordMovement(context.Background(), ledger.MovementInput{
		ProductID:    productID,
		LocationID:   locationA,
		Type:         entity.StockMovementAdjustment,
		Delta:        decimal.NewFromInt(-2),
		Reason:       "merma detectada en conteo físico",
		DocumentType: entity.DocumentAdjustment,
		DocumentID:   "CNT-01",
		Actor:        testActor,
	})
	require.NoError(t, err)
	assert.True(t, mov.QuantityAfter.Equal(decimal.NewFromInt(8)))
}

// ──────────────────────────────────────────────────────────────────────────────
// Idempotencia
// ──────────────────────────────────────────────────────────────────────────────

func TestRecordMovement_MismoMovementIDNoDuplica(t *testing.T) {
	f := newFixture(t, false)
	cost := decimal.NewFromInt(10)
	input := ledger.MovementInput{
		MovementID:   "11111111-1111-1111-1111-111111111111",
		ProductID:    productID,
		LocationID:   locationA,
		Type:         entity.StockMovementIN,
		Delta:        decimal.NewFromInt(5),
		UnitCost:     &cost,
		DocumentType: entity.DocumentPurchase,
		DocumentID:   "OC-200",
	}

	first, err := f.uc.RecordMovement(context.Background(), input)
	require.NoError(t, err)

	// Reprocesar la misma petición devuelve el movimiento original sin
	// volver a aplicar el delta.
	second, err := f.uc.RecordMovement(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.True(t, second.QuantityAfter.Equal(first.QuantityAfter))

	balance, err := f.queries.GetBalance(context.Background(), productID, locationA)
	require.NoError(t, err)
	assert.True(t, balance.OnHand.Equal(decimal.NewFromInt(5)), "el delta se aplica una sola vez")
}

// ──────────────────────────────────────────────────────────────────────────────
// Reintentos ante conflicto concurrente
// ──────────────────────────────────────────────────────────────────────────────

// flakyTxRunner devuelve ErrConflict las primeras n ejecuciones y después
// delega en el runner real, simulando contención transitoria de bloqueos.
type flakyTxRunner struct {
	inner    ledger.TxRunner
	failures int
	calls    int
}

func (f *flakyTxRunner) Run(ctx context.Context, fn func(
	repository.StockMovementRepository,
	repository.BalanceRepository,
	repository.ReservationRepository,
	repository.ProductRepository,
) error) error {
	f.calls++
	if f.failures > 0 {
		f.failures--
		return domain.ErrConflict
	}
	return f.inner.Run(ctx, fn)
}

func TestRecordMovement_ReintentaAnteConflicto(t *testing.T) {
	store := memory.NewStore()
	require.NoError(t, store.Products().Create(&entity.Product{
		ID: productID, SKU: "SKU-001", Name: "Café", Cost: decimal.NewFromInt(10), Active: true,
	}))
	require.NoError(t, store.Locations().Create(&entity.Location{
		ID: locationA, Code: "BOD-01", Name: "Bodega", Active: true,
	}))

	flaky := &flakyTxRunner{inner: store, failures: 2}
	uc := ledger.NewLedgerUseCase(flaky, store.Products(), store.Locations(), store.Reservations(), nil)

	cost := decimal.NewFromInt(10)
	_, err := uc.RecordMovement(context.Background(), ledger.MovementInput{
		ProductID:    productID,
		LocationID:   locationA,
		Type:         entity.StockMovementIN,
		Delta:        decimal.NewFromInt(3),
		UnitCost:     &cost,
		DocumentType: entity.DocumentPurchase,
		DocumentID:   "OC-300",
	})
	require.NoError(t, err, "dos conflictos transitorios deben superarse con reintentos")
	assert.Equal(t, 3, flaky.calls)
}

func TestRecordMovement_ConflictoPersistenteSeDevuelve(t *testing.T) {
	store := memory.NewStore()
	require.NoError(t, store.Products().Create(&entity.Product{
		ID: productID, SKU: "SKU-001", Name: "Café", Cost: decimal.NewFromInt(10), Active: true,
	}))
	require.NoError(t, store.Locations().Create(&entity.Location{
		ID: locationA, Code: "BOD-01", Name: "Bodega", Active: true,
	}))

	flaky := &flakyTxRunner{inner: store, failures: 99}
	uc := ledger.NewLedgerUseCase(flaky, store.Products(), store.Locations(), store.Reservations(), nil)

	cost := decimal.NewFromInt(10)
	_, err := uc.RecordMovement(context.Background(), ledger.MovementInput{
		ProductID:    productID,
		LocationID:   locationA,
		Type:         entity.StockMovementIN,
		Delta:        decimal.NewFromInt(3),
		UnitCost:     &cost,
		DocumentType: entity.DocumentPurchase,
		DocumentID:   "OC-301",
	})
	assert.ErrorIs(t, err, domain.ErrConflict, "agotados los reintentos, el conflicto sube al caller")
	assert.Equal(t, 3, flaky.calls, "los reintentos están acotados")
}

// ──────────────────────────────────────────────────────────────────────────────
// Verificación saldo contra ledger
// ──────────────────────────────────────────────────────────────────────────────

func TestVerifyBalance_SaldoConsistenteConElLedger(t *testing.T) {
	f := newFixture(t, false)
	f.recordIn(t, 10, 10)
	_, err := f.uc.RecordMovement(context.Background(), ledger.MovementInput{
		ProductID:    productID,
		LocationID:   locationA,
		Type:         entity.StockMovementOUT,
		Delta:        decimal.NewFromInt(-3),
		DocumentType: testDocSal,
		DocumentID:   "FAC-010",
	})
	require.NoError(t, err)

	v, err := f.queries.VerifyBalance(context.Background(), productID, locationA)
	require.NoError(t, err)
	assert.True(t, v.Consistent, "replay del ledger debe reproducir el saldo materializado")
	assert.True(t, v.LedgerSum.Equal(decimal.NewFromInt(7)))
}

func TestVerifyBalance_DetectaSaldoCorrupto(t *testing.T) {
	f := newFixture(t, false)
	f.recordIn(t, 10, 10)

	// Corromper la tabla materializada por fuera del motor.
	f.store.SetBalance(entity.ProductBalance{
		ProductID:  productID,
		LocationID: locationA,
		OnHand:     decimal.NewFromInt(99),
	})

	v, err := f.queries.VerifyBalance(context.Background(), productID, locationA)
	require.NoError(t, err)
	assert.False(t, v.Consistent)
	assert.True(t, v.OnHand.Equal(decimal.NewFromInt(99)))
	assert.True(t, v.LedgerSum.Equal(decimal.NewFromInt(10)), "el ledger es la verdad")
}
