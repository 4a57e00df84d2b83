package ledger_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tu-usuario/pos-ledger/internal/application/ledger"
	"github.com/tu-usuario/pos-ledger/internal/domain"
	"github.com/tu-usuario/pos-ledger/internal/domain/entity"
)

func TestTransfer_MueveStockEntreUbicaciones(t *testing.T) {
	f := newFixture(t, false)
	f.recordIn(t, 10, 10) // A: 10

	// Sembrar 2 en B vía entrada normal.
	cost := decimal.NewFromInt(10)
	_, err := f.uc.RecordMovement(context.Background(), ledger.MovementInput{
		ProductID:    productID,
		LocationID:   locationB,
		Type:         entity.StockMovementIN,
		Delta:        decimal.NewFromInt(2),
		UnitCost:     &cost,
		DocumentType: entity.DocumentPurchase,
		DocumentID:   "OC-101",
	})
	require.NoError(t, err)

	result, err := f.uc.Transfer(context.Background(), ledger.TransferInput{
		ProductID:      productID,
		FromLocationID: locationA,
		ToLocationID:   locationB,
		Quantity:       decimal.NewFromInt(5),
		Actor:          testActor,
	})
	require.NoError(t, err)

	assert.Equal(t, entity.StockMovementTransferOut, result.Out.Type)
	assert.Equal(t, entity.StockMovementTransferIn, result.In.Type)
	assert.Equal(t, result.TransferID, result.Out.TransferID, "ambas patas comparten transfer_id")
	assert.Equal(t, result.TransferID, result.In.TransferID)
	assert.True(t, result.Out.QuantityDelta.Equal(decimal.NewFromInt(-5)))
	assert.True(t, result.In.QuantityDelta.Equal(decimal.NewFromInt(5)))

	balA, err := f.queries.GetBalance(context.Background(), productID, locationA)
	require.NoError(t, err)
	balB, err := f.queries.GetBalance(context.Background(), productID, locationB)
	require.NoError(t, err)
	assert.True(t, balA.OnHand.Equal(decimal.NewFromInt(5)))
	assert.True(t, balB.OnHand.Equal(decimal.NewFromInt(7)))

	// Sin documento explícito, el traslado se autodocumenta.
	assert.Equal(t, entity.DocumentTransfer, result.Out.DocumentType)
	assert.Equal(t, result.TransferID, result.Out.DocumentID)
}

func TestTransfer_OrigenSinStockFalla(t *testing.T) {
	f := newFixture(t, false)
	f.recordIn(t, 3, 10)

	_, err := f.uc.Transfer(context.Background(), ledger.TransferInput{
		ProductID:      productID,
		FromLocationID: locationA,
		ToLocationID:   locationB,
		Quantity:       decimal.NewFromInt(5),
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
}

// El origen de un traslado respeta lo reservado igual que una salida directa.
func TestTransfer_OrigenNoConsumeLoReservado(t *testing.T) {
	f := newFixture(t, false)
	f.recordIn(t, 10, 10)
	reserve(t, f, 6)

	_, err := f.uc.Transfer(context.Background(), ledger.TransferInput{
		ProductID:      productID,
		FromLocationID: locationA,
		ToLocationID:   locationB,
		Quantity:       decimal.NewFromInt(8),
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	balA, err := f.queries.GetBalance(context.Background(), productID, locationA)
	require.NoError(t, err)
	assert.True(t, balA.OnHand.Equal(decimal.NewFromInt(10)), "el rechazo no debita el origen")
	assert.False(t, balA.Available().IsNegative())

	// Mover justo el disponible sí procede.
	result, err := f.uc.Transfer(context.Background(), ledger.TransferInput{
		ProductID:      productID,
		FromLocationID: locationA,
		ToLocationID:   locationB,
		Quantity:       decimal.NewFromInt(4),
	})
	require.NoError(t, err)
	assert.True(t, result.Out.QuantityAfter.Equal(decimal.NewFromInt(6)))
}

func TestTransfer_MismaUbicacionInvalida(t *testing.T) {
	f := newFixture(t, false)
	_, err := f.uc.Transfer(context.Background(), ledger.TransferInput{
		ProductID:      productID,
		FromLocationID: locationA,
		ToLocationID:   locationA,
		Quantity:       decimal.NewFromInt(1),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// Si la segunda pata no puede persistirse, la transacción se revierte entera:
// un traslado parcial (origen debitado, destino sin acreditar) nunca es
// observable.
func TestTransfer_FalloEnSegundaPataNoDejaEstadoParcial(t *testing.T) {
	f := newFixture(t, false)
	f.recordIn(t, 10, 10)

	boom := errors.New("fallo simulado de escritura")
	f.store.MovementCreateHook = func(m *entity.StockMovement) error {
		if m.Type == entity.StockMovementTransferIn {
			return boom
		}
		return nil
	}

	_, err := f.uc.Transfer(context.Background(), ledger.TransferInput{
		ProductID:      productID,
		FromLocationID: locationA,
		ToLocationID:   locationB,
		Quantity:       decimal.NewFromInt(5),
	})
	require.ErrorIs(t, err, boom)
	f.store.MovementCreateHook = nil

	balA, err := f.queries.GetBalance(context.Background(), productID, locationA)
	require.NoError(t, err)
	balB, err := f.queries.GetBalance(context.Background(), productID, locationB)
	require.NoError(t, err)
	assert.True(t, balA.OnHand.Equal(decimal.NewFromInt(10)), "el origen no debe quedar debitado")
	assert.True(t, balB.OnHand.IsZero(), "el destino no debe quedar acreditado")

	// Tampoco debe sobrevivir la pata OUT en el ledger.
	v, err := f.queries.VerifyBalance(context.Background(), productID, locationA)
	require.NoError(t, err)
	assert.True(t, v.Consistent)
	assert.True(t, v.LedgerSum.Equal(decimal.NewFromInt(10)))
}
