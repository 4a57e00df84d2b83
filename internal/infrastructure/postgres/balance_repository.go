package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/tu-usuario/pos-ledger/internal/domain"
	"github.com/tu-usuario/pos-ledger/internal/domain/entity"
	"github.com/tu-usuario/pos-ledger/internal/domain/repository"
)

var _ repository.BalanceRepository = (*BalanceRepo)(nil)

// BalanceRepo implementación de BalanceRepository sobre PostgreSQL (usable con pool o tx).
type BalanceRepo struct {
	q Querier
}

// NewBalanceRepository construye el adaptador de saldos. Pasar pool o tx (Querier).
func NewBalanceRepository(q Querier) *BalanceRepo {
	return &BalanceRepo{q: q}
}

// Get obtiene el saldo vigente de un producto en una ubicación. Un par sin
// fila todavía devuelve saldo cero: la fila nace con el primer movimiento.
func (r *BalanceRepo) Get(productID, locationID string) (*entity.ProductBalance, error) {
	query := `
		SELECT product_id, location_id, zone, on_hand, reserved, updated_at
		FROM product_balances WHERE product_id = $1 AND location_id = $2`
	var b entity.ProductBalance
	err := r.q.QueryRow(context.Background(), query, productID, locationID).Scan(
		&b.ProductID, &b.LocationID, &b.Zone, &b.OnHand, &b.Reserved, &b.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return zeroBalance(productID, locationID), nil
		}
		return nil, fmt.Errorf("get balance: %w", err)
	}
	return &b, nil
}

// GetForUpdate obtiene el saldo y bloquea la fila (SELECT FOR UPDATE).
// Un lock_timeout vencido se devuelve como domain.ErrConflict.
func (r *BalanceRepo) GetForUpdate(productID, locationID string) (*entity.ProductBalance, error) {
	query := `
		SELECT product_id, location_id, zone, on_hand, reserved, updated_at
		FROM product_balances WHERE product_id = $1 AND location_id = $2
		FOR UPDATE`
	var b entity.ProductBalance
	err := r.q.QueryRow(context.Background(), query, productID, locationID).Scan(
		&b.ProductID, &b.LocationID, &b.Zone, &b.OnHand, &b.Reserved, &b.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		// La fila nace con el primer movimiento del par. Materializarla en
		// cero y releer con bloqueo: dos primeros movimientos concurrentes
		// serializan sobre la fila igual que el resto, en lugar de leer
		// ambos before=0 y pisarse el saldo.
		if err := r.insertZero(productID, locationID); err != nil {
			return nil, err
		}
		err = r.q.QueryRow(context.Background(), query, productID, locationID).Scan(
			&b.ProductID, &b.LocationID, &b.Zone, &b.OnHand, &b.Reserved, &b.UpdatedAt,
		)
	}
	if err != nil {
		if isLockConflict(err) {
			return nil, domain.ErrConflict
		}
		return nil, fmt.Errorf("get balance for update: %w", err)
	}
	return &b, nil
}

// insertZero crea la fila de saldo en cero si aún no existe. Ante un insert
// concurrente del mismo par, el perdedor espera el commit del ganador y sigue
// sin error.
func (r *BalanceRepo) insertZero(productID, locationID string) error {
	query := `
		INSERT INTO product_balances (product_id, location_id)
		VALUES ($1, $2)
		ON CONFLICT (product_id, location_id) DO NOTHING`
	_, err := r.q.Exec(context.Background(), query, productID, locationID)
	if err != nil {
		if isLockConflict(err) {
			return domain.ErrConflict
		}
		return fmt.Errorf("insert zero balance: %w", err)
	}
	return nil
}

// Upsert inserta o actualiza el saldo del par (producto, ubicación).
func (r *BalanceRepo) Upsert(balance *entity.ProductBalance) error {
	query := `
		INSERT INTO product_balances (product_id, location_id, zone, on_hand, reserved, updated_at)
		VALUES ($1, $2, $3, $4, $5, now())
		ON CONFLICT (product_id, location_id)
		DO UPDATE SET on_hand = EXCLUDED.on_hand, reserved = EXCLUDED.reserved, updated_at = now()`
	_, err := r.q.Exec(context.Background(), query,
		balance.ProductID, balance.LocationID, balance.Zone, balance.OnHand, balance.Reserved,
	)
	if err != nil {
		if isLockConflict(err) {
			return domain.ErrConflict
		}
		return fmt.Errorf("upsert balance: %w", err)
	}
	return nil
}

// ListByLocation lista los saldos de una ubicación.
func (r *BalanceRepo) ListByLocation(locationID string) ([]*entity.ProductBalance, error) {
	query := `
		SELECT product_id, location_id, zone, on_hand, reserved, updated_at
		FROM product_balances WHERE location_id = $1
		ORDER BY product_id`
	rows, err := r.q.Query(context.Background(), query, locationID)
	if err != nil {
		return nil, fmt.Errorf("list balances: %w", err)
	}
	defer rows.Close()
	var list []*entity.ProductBalance
	for rows.Next() {
		var b entity.ProductBalance
		if err := rows.Scan(&b.ProductID, &b.LocationID, &b.Zone, &b.OnHand, &b.Reserved, &b.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan balance: %w", err)
		}
		list = append(list, &b)
	}
	return list, rows.Err()
}

func zeroBalance(productID, locationID string) *entity.ProductBalance {
	return &entity.ProductBalance{
		ProductID:  productID,
		LocationID: locationID,
		OnHand:     decimal.Zero,
		Reserved:   decimal.Zero,
	}
}
