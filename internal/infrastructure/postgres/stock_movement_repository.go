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

var _ repository.StockMovementRepository = (*StockMovementRepo)(nil)

const stockMovementColumns = `id, product_id, location_id, zone, type, reason,
	quantity_before, quantity_delta, quantity_after, unit_cost,
	document_type, document_id, transfer_id, lot, actor, created_at`

// StockMovementRepo implementación del ledger de inventario sobre PostgreSQL
// (usable con pool o tx). Solo INSERT y SELECT: la tabla es append-only.
type StockMovementRepo struct {
	q Querier
}

// NewStockMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockMovementRepository(q Querier) *StockMovementRepo {
	return &StockMovementRepo{q: q}
}

// Create persiste un movimiento. Un ID repetido devuelve domain.ErrDuplicate
// (la PK actúa como clave de idempotencia).
func (r *StockMovementRepo) Create(movement *entity.StockMovement) error {
	query := `
		INSERT INTO stock_movements (` + stockMovementColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`
	_, err := r.q.Exec(context.Background(), query,
		movement.ID, movement.ProductID, movement.LocationID, movement.Zone,
		movement.Type, movement.Reason,
		movement.QuantityBefore, movement.QuantityDelta, movement.QuantityAfter, movement.UnitCost,
		movement.DocumentType, movement.DocumentID, nullable(movement.TransferID), nullable(movement.Lot),
		nullable(movement.Actor), movement.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("create stock movement: %w", err)
	}
	return nil
}

// GetByID obtiene un movimiento por ID; nil sin error si no existe.
func (r *StockMovementRepo) GetByID(id string) (*entity.StockMovement, error) {
	query := `SELECT ` + stockMovementColumns + ` FROM stock_movements WHERE id = $1`
	m, err := scanStockMovement(r.q.QueryRow(context.Background(), query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get stock movement: %w", err)
	}
	return m, nil
}

// List devuelve el historial según el filtro, del más reciente al más antiguo.
func (r *StockMovementRepo) List(filter repository.StockMovementFilter) ([]*entity.StockMovement, error) {
	query := `SELECT ` + stockMovementColumns + ` FROM stock_movements WHERE 1=1`
	var args []any
	pos := 1
	add := func(cond string, val any) {
		query += fmt.Sprintf(" AND "+cond, pos)
		args = append(args, val)
		pos++
	}
	if filter.ProductID != "" {
		add("product_id = $%d", filter.ProductID)
	}
	if filter.LocationID != "" {
		add("location_id = $%d", filter.LocationID)
	}
	if filter.Type != "" {
		add("type = $%d", filter.Type)
	}
	if filter.Reason != "" {
		add("reason = $%d", filter.Reason)
	}
	if filter.From != nil {
		add("created_at >= $%d", *filter.From)
	}
	if filter.To != nil {
		add("created_at <= $%d", *filter.To)
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", pos, pos+1)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list stock movements: %w", err)
	}
	defer rows.Close()
	var list []*entity.StockMovement
	for rows.Next() {
		m, err := scanStockMovement(rows)
		if err != nil {
			return nil, fmt.Errorf("scan stock movement: %w", err)
		}
		list = append(list, m)
	}
	return list, rows.Err()
}

// SumDeltas suma quantity_delta de todos los movimientos del par.
func (r *StockMovementRepo) SumDeltas(productID, locationID string) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(quantity_delta), 0)
		FROM stock_movements WHERE product_id = $1 AND location_id = $2`
	var sum decimal.Decimal
	if err := r.q.QueryRow(context.Background(), query, productID, locationID).Scan(&sum); err != nil {
		return decimal.Zero, fmt.Errorf("sum deltas: %w", err)
	}
	return sum, nil
}

func scanStockMovement(row pgx.Row) (*entity.StockMovement, error) {
	var m entity.StockMovement
	var transferID, lot, actor *string
	err := row.Scan(
		&m.ID, &m.ProductID, &m.LocationID, &m.Zone, &m.Type, &m.Reason,
		&m.QuantityBefore, &m.QuantityDelta, &m.QuantityAfter, &m.UnitCost,
		&m.DocumentType, &m.DocumentID, &transferID, &lot, &actor, &m.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if transferID != nil {
		m.TransferID = *transferID
	}
	if lot != nil {
		m.Lot = *lot
	}
	if actor != nil {
		m.Actor = *actor
	}
	return &m, nil
}

// nullable convierte "" en NULL para columnas opcionales.
func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
